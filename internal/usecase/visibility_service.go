package usecase

import (
	"context"
	"time"

	"tendorai/internal/domain"
)

// VisibilityService assembles the inputs for the composite score: vendor
// record, active products, and the recent mention signal.
type VisibilityService struct {
	Vendors    VendorRepository
	Products   ProductRepository
	Mentions   MentionRepository
	Calculator *VisibilityCalculator

	now func() time.Time
}

func NewVisibilityService(vendors VendorRepository, products ProductRepository, mentions MentionRepository) *VisibilityService {
	return &VisibilityService{
		Vendors:    vendors,
		Products:   products,
		Mentions:   mentions,
		Calculator: &VisibilityCalculator{},
		now:        time.Now,
	}
}

func (v *VisibilityService) Snapshot(ctx context.Context, vendorID string) (*domain.VisibilitySnapshot, error) {
	vendor, err := v.Vendors.GetByID(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	products, err := v.Products.ListByVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	signals, err := v.mentionSignals(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	snapshot := v.Calculator.Score(*vendor, products, signals, nil)
	return &snapshot, nil
}

func (v *VisibilityService) mentionSignals(ctx context.Context, vendorID string) (*domain.MentionSignals, error) {
	if v.Mentions == nil {
		return nil, nil
	}
	now := v.now()
	mentioned := true
	total30, err := v.Mentions.Count(ctx, vendorID, domain.MentionCountFilter{
		Mentioned: &mentioned,
		From:      now.AddDate(0, 0, -30),
	})
	if err != nil {
		return nil, err
	}
	thisWeek, err := v.Mentions.Count(ctx, vendorID, domain.MentionCountFilter{
		Mentioned: &mentioned,
		From:      now.AddDate(0, 0, -7),
	})
	if err != nil {
		return nil, err
	}
	return &domain.MentionSignals{
		Total30d:  total30,
		ThisWeek:  thisWeek,
		Mentioned: total30 > 0,
	}, nil
}
