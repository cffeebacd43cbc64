package db

import (
	"context"
	"encoding/json"
	"time"

	"tendorai/internal/domain"

	"gorm.io/gorm"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, p domain.VendorProduct) (string, error) {
	if r.db == nil {
		return "", errDBUnavailable
	}
	if p.ID == "" {
		p.ID = newID()
	}
	now := time.Now().UTC()
	model := VendorProductModel{
		ID:          p.ID,
		VendorID:    p.VendorID, // new writes always use the bare handle
		Category:    p.Category,
		Name:        p.Name,
		Description: p.Description,
		Status:      string(p.Status),
		PricingJSON: marshalJSON(p.Pricing),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return "", err
	}
	return p.ID, nil
}

// ListByVendor returns the vendor's active products, OR-matching the legacy
// stringified vendor id form alongside the handle.
func (r *ProductRepository) ListByVendor(ctx context.Context, vendorID string) ([]domain.VendorProduct, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	forms := legacyVendorIDForms(vendorID)
	var models []VendorProductModel
	err := r.db.WithContext(ctx).
		Where("vendor_id IN ?", forms).
		Where("status = ?", string(domain.ProductActive)).
		Order("created_at asc").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	products := make([]domain.VendorProduct, 0, len(models))
	for _, m := range models {
		products = append(products, productFromModel(m, vendorID))
	}
	return products, nil
}

func (r *ProductRepository) Deactivate(ctx context.Context, productID string) error {
	if r.db == nil {
		return errDBUnavailable
	}
	res := r.db.WithContext(ctx).Model(&VendorProductModel{}).
		Where("id = ?", productID).
		Updates(map[string]any{"status": string(domain.ProductInactive), "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func productFromModel(m VendorProductModel, vendorID string) domain.VendorProduct {
	var pricing domain.Pricing
	if len(m.PricingJSON) > 0 {
		_ = json.Unmarshal(m.PricingJSON, &pricing)
	}
	return domain.VendorProduct{
		ID:          m.ID,
		VendorID:    vendorID,
		Category:    m.Category,
		Name:        m.Name,
		Description: m.Description,
		Status:      domain.ProductStatus(m.Status),
		Pricing:     pricing,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
