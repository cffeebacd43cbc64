package db

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"tendorai/internal/domain"

	"gorm.io/gorm"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(ctx context.Context, audit domain.AeoAudit) (*domain.AeoAudit, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	if audit.ID == "" {
		audit.ID = newID()
	}
	if audit.CreatedAt.IsZero() {
		audit.CreatedAt = time.Now().UTC()
	}
	model := AeoAuditModel{
		ID:                     audit.ID,
		VendorID:               audit.VendorID,
		WebsiteURL:             audit.WebsiteURL,
		OverallScore:           audit.OverallScore,
		ChecksJSON:             marshalJSON(audit.Checks),
		RecommendationsJSON:    marshalJSON(audit.Recommendations),
		TendoraiSchemaDetected: audit.TendoraiSchemaDetected,
		CreatedAt:              audit.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return nil, err
	}
	return &audit, nil
}

func (r *AuditRepository) LatestByVendor(ctx context.Context, vendorID string) (*domain.AeoAudit, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model AeoAuditModel
	err := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("created_at desc").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	audit := auditFromModel(model)
	return &audit, nil
}

func (r *AuditRepository) HistoryByVendor(ctx context.Context, vendorID string, limit int) ([]domain.AeoAudit, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	if limit <= 0 {
		limit = 10
	}
	var models []AeoAuditModel
	err := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("created_at desc").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	audits := make([]domain.AeoAudit, 0, len(models))
	for _, m := range models {
		audits = append(audits, auditFromModel(m))
	}
	return audits, nil
}

func (r *AuditRepository) CountByVendor(ctx context.Context, vendorID string) (int64, error) {
	if r.db == nil {
		return 0, errDBUnavailable
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&AeoAuditModel{}).
		Where("vendor_id = ?", vendorID).
		Count(&count).Error
	return count, err
}

func auditFromModel(m AeoAuditModel) domain.AeoAudit {
	var checks []domain.AuditCheck
	if len(m.ChecksJSON) > 0 {
		_ = json.Unmarshal(m.ChecksJSON, &checks)
	}
	return domain.AeoAudit{
		ID:                     m.ID,
		VendorID:               m.VendorID,
		WebsiteURL:             m.WebsiteURL,
		OverallScore:           m.OverallScore,
		Checks:                 checks,
		Recommendations:        unmarshalStrings(m.RecommendationsJSON),
		TendoraiSchemaDetected: m.TendoraiSchemaDetected,
		CreatedAt:              m.CreatedAt,
	}
}
