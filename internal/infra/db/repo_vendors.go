package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"tendorai/internal/domain"

	"gorm.io/gorm"
)

type VendorRepository struct {
	db *gorm.DB
}

func NewVendorRepository(db *gorm.DB) *VendorRepository {
	return &VendorRepository{db: db}
}

func (r *VendorRepository) Create(ctx context.Context, v domain.Vendor) (string, error) {
	if r.db == nil {
		return "", errDBUnavailable
	}
	if len(v.Services) == 0 && len(v.PracticeAreas) == 0 {
		return "", errors.New("vendor needs at least one service tag or practice area")
	}
	if v.ID == "" {
		v.ID = newID()
	}
	now := time.Now().UTC()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now
	}
	model := vendorToModel(v)
	model.UpdatedAt = now
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return "", err
	}
	return v.ID, nil
}

func (r *VendorRepository) Update(ctx context.Context, v domain.Vendor) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := vendorToModel(v)
	model.UpdatedAt = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&VendorModel{}).Where("id = ?", v.ID).Updates(&model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *VendorRepository) GetByID(ctx context.Context, id string) (*domain.Vendor, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model VendorModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	v := vendorFromModel(model)
	return &v, nil
}

// CountByPracticeArea counts active vendors in a professional vertical with
// an exact practice area and case-insensitive city match.
func (r *VendorRepository) CountByPracticeArea(ctx context.Context, category, practiceArea, city string) (int, error) {
	if r.db == nil {
		return 0, errDBUnavailable
	}
	var models []VendorModel
	q := r.db.WithContext(ctx).
		Where("status = ?", string(domain.VendorActive)).
		Where("category = ?", category)
	if city != "" {
		q = q.Where("LOWER(city) = ?", strings.ToLower(city))
	}
	if err := q.Find(&models).Error; err != nil {
		return 0, err
	}
	count := 0
	for _, m := range models {
		for _, area := range unmarshalStrings(m.PracticeAreasJSON) {
			if strings.EqualFold(area, practiceArea) {
				count++
				break
			}
		}
	}
	return count, nil
}

// CountByService counts active equipment vendors carrying a service tag whose
// city or coverage list matches the given city.
func (r *VendorRepository) CountByService(ctx context.Context, service, city string) (int, error) {
	if r.db == nil {
		return 0, errDBUnavailable
	}
	var models []VendorModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(domain.VendorActive)).
		Find(&models).Error; err != nil {
		return 0, err
	}
	count := 0
	for _, m := range models {
		if !containsFold(unmarshalStrings(m.ServicesJSON), service) {
			continue
		}
		if city == "" || strings.EqualFold(m.City, city) || containsFold(unmarshalStrings(m.CoverageJSON), city) {
			count++
		}
	}
	return count, nil
}

// ListDigestEligible returns active vendors with an email that have not
// unsubscribed from the weekly digest.
func (r *VendorRepository) ListDigestEligible(ctx context.Context) ([]domain.Vendor, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []VendorModel
	err := r.db.WithContext(ctx).
		Where("status = ?", string(domain.VendorActive)).
		Where("email <> ''").
		Where("unsubscribed = ?", false).
		Order("created_at asc").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	vendors := make([]domain.Vendor, 0, len(models))
	for _, m := range models {
		vendors = append(vendors, vendorFromModel(m))
	}
	return vendors, nil
}

func (r *VendorRepository) SetUnsubscribed(ctx context.Context, vendorID string, unsubscribed bool) error {
	if r.db == nil {
		return errDBUnavailable
	}
	res := r.db.WithContext(ctx).Model(&VendorModel{}).
		Where("id = ?", vendorID).
		Updates(map[string]any{"unsubscribed": unsubscribed, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

func vendorToModel(v domain.Vendor) VendorModel {
	return VendorModel{
		ID:                 v.ID,
		Name:               v.Name,
		Company:            v.Company,
		Email:              strings.ToLower(strings.TrimSpace(v.Email)),
		Phone:              v.Phone,
		Website:            v.Website,
		Category:           v.Category,
		ServicesJSON:       marshalJSON(v.Services),
		PracticeAreasJSON:  marshalJSON(v.PracticeAreas),
		Address:            v.Location.Address,
		City:               v.Location.City,
		Postcode:           v.Location.Postcode,
		Region:             v.Location.Region,
		CoverageJSON:       marshalJSON(dedupe(v.Location.Coverage)),
		YearsInBusiness:    v.YearsInBusiness,
		CertificationsJSON: marshalJSON(v.Certifications),
		AccreditationsJSON: marshalJSON(v.Accreditations),
		BrandsJSON:         marshalJSON(v.Brands),
		Description:        v.Description,
		Status:             string(v.Status),
		VerificationStatus: v.VerificationStatus,
		Tier:               string(domain.NormalizeTier(string(v.Tier))),
		Unsubscribed:       v.Unsubscribed,
		CreatedAt:          v.CreatedAt,
	}
}

func vendorFromModel(m VendorModel) domain.Vendor {
	return domain.Vendor{
		ID:            m.ID,
		Name:          m.Name,
		Company:       m.Company,
		Email:         m.Email,
		Phone:         m.Phone,
		Website:       m.Website,
		Category:      m.Category,
		Services:      unmarshalStrings(m.ServicesJSON),
		PracticeAreas: unmarshalStrings(m.PracticeAreasJSON),
		Location: domain.Location{
			Address:  m.Address,
			City:     m.City,
			Postcode: m.Postcode,
			Region:   m.Region,
			Coverage: unmarshalStrings(m.CoverageJSON),
		},
		YearsInBusiness:    m.YearsInBusiness,
		Certifications:     unmarshalStrings(m.CertificationsJSON),
		Accreditations:     unmarshalStrings(m.AccreditationsJSON),
		Brands:             unmarshalStrings(m.BrandsJSON),
		Description:        m.Description,
		Status:             domain.VendorStatus(m.Status),
		VerificationStatus: m.VerificationStatus,
		Tier:               domain.NormalizeTier(m.Tier),
		Unsubscribed:       m.Unsubscribed,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func dedupe(list []string) []string {
	if len(list) == 0 {
		return list
	}
	seen := make(map[string]bool, len(list))
	out := make([]string, 0, len(list))
	for _, v := range list {
		key := strings.ToLower(v)
		if !seen[key] {
			seen[key] = true
			out = append(out, v)
		}
	}
	return out
}
