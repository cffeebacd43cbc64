package db

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DigestRepository records weekly digest sends. One row per vendor per ISO
// week; re-recording the same week updates the row in place, so a failed
// attempt never blocks the retry's success from landing.
type DigestRepository struct {
	db *gorm.DB
}

func NewDigestRepository(db *gorm.DB) *DigestRepository {
	return &DigestRepository{db: db}
}

// AlreadySent reports whether a successful send is recorded for the week.
func (r *DigestRepository) AlreadySent(ctx context.Context, vendorID, week string) (bool, error) {
	if r.db == nil {
		return false, errDBUnavailable
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&DigestSendModel{}).
		Where("vendor_id = ? AND week = ? AND succeeded = ?", vendorID, week, true).
		Count(&count).Error
	return count > 0, err
}

func (r *DigestRepository) Record(ctx context.Context, vendorID, week, subject string, succeeded bool, sendErr string) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := DigestSendModel{
		ID:        newID(),
		VendorID:  vendorID,
		Week:      week,
		Subject:   subject,
		SentAt:    time.Now().UTC(),
		Succeeded: succeeded,
		Error:     sendErr,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "vendor_id"}, {Name: "week"}},
			DoUpdates: clause.AssignmentColumns([]string{"subject", "sent_at", "succeeded", "error"}),
		}).
		Create(&model).Error
}
