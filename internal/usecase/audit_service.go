package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tendorai/internal/domain"

	"go.uber.org/zap"
)

// auditCooldown is the minimum gap between audits on paid tiers. Listed
// vendors get a single audit ever.
const auditCooldown = 7 * 24 * time.Hour

const auditHistoryLimit = 10

// AuditGateError reports why an audit run was refused. It unwraps to
// domain.ErrRateLimited so transport mapping stays uniform.
type AuditGateError struct {
	Message       string
	NextAvailable *time.Time
	UpgradeHint   bool
}

func (e *AuditGateError) Error() string { return e.Message }

func (e *AuditGateError) Unwrap() error { return domain.ErrRateLimited }

// AuditStatus is the read-side view of a vendor's audit allowance.
type AuditStatus struct {
	Audit         *domain.AeoAudit
	CanRunAgain   bool
	NextAvailable *time.Time
	Tier          domain.Tier
}

// AuditService runs site audits behind the tier gate: fetch the vendor's
// page, analyse it, persist the outcome. A run that fails before persistence
// does not consume the vendor's allowance.
type AuditService struct {
	Vendors  VendorRepository
	Audits   AuditRepository
	Fetcher  PageFetcher
	Analyzer *SiteAnalyzer
	Logger   *zap.Logger

	now func() time.Time
}

func NewAuditService(vendors VendorRepository, audits AuditRepository, fetcher PageFetcher, logger *zap.Logger) *AuditService {
	return &AuditService{
		Vendors:  vendors,
		Audits:   audits,
		Fetcher:  fetcher,
		Analyzer: &SiteAnalyzer{},
		Logger:   logger,
		now:      time.Now,
	}
}

// Run executes one audit for the vendor. rawURL overrides the vendor's
// stored website when non-empty.
func (s *AuditService) Run(ctx context.Context, vendorID, rawURL string) (*domain.AeoAudit, error) {
	vendor, err := s.Vendors.GetByID(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	if err := s.gate(ctx, vendor); err != nil {
		return nil, err
	}

	target := rawURL
	if target == "" {
		target = vendor.Website
	}
	if target == "" {
		return nil, fmt.Errorf("%w: vendor has no website to audit", domain.ErrValidation)
	}

	html, finalURL, err := s.Fetcher.Fetch(ctx, target)
	if err != nil {
		return nil, err
	}

	outcome := s.Analyzer.Analyze(html, finalURL)

	audit := domain.AeoAudit{
		VendorID:               vendor.ID,
		WebsiteURL:             finalURL,
		OverallScore:           outcome.OverallScore,
		Checks:                 outcome.Checks,
		Recommendations:        outcome.Recommendations,
		TendoraiSchemaDetected: outcome.TendoraiSchemaDetected,
	}
	stored, err := s.Audits.Create(ctx, audit)
	if err != nil {
		return nil, err
	}

	s.Logger.Info("audit completed",
		zap.String("vendorId", vendor.ID),
		zap.String("url", finalURL),
		zap.Int("score", stored.OverallScore),
	)
	return stored, nil
}

// gate enforces the per-tier allowance. Only persisted audits count against
// it, so a fetch failure never burns the free audit.
func (s *AuditService) gate(ctx context.Context, vendor *domain.Vendor) error {
	last, err := s.Audits.LatestByVendor(ctx, vendor.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if !vendor.Tier.Paid() {
		return &AuditGateError{
			Message:     "Free accounts include one audit. Upgrade to Visible for weekly audits.",
			UpgradeHint: true,
		}
	}

	next := last.CreatedAt.Add(auditCooldown)
	if s.now().Before(next) {
		return &AuditGateError{
			Message:       fmt.Sprintf("Next audit available %s.", next.Format("2 Jan 2006")),
			NextAvailable: &next,
		}
	}
	return nil
}

// Latest returns the most recent audit together with the vendor's current
// allowance.
func (s *AuditService) Latest(ctx context.Context, vendorID string) (*AuditStatus, error) {
	vendor, err := s.Vendors.GetByID(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	status := &AuditStatus{Tier: vendor.Tier}
	last, err := s.Audits.LatestByVendor(ctx, vendorID)
	if errors.Is(err, domain.ErrNotFound) {
		status.CanRunAgain = true
		return status, nil
	}
	if err != nil {
		return nil, err
	}

	status.Audit = last
	if vendor.Tier.Paid() {
		next := last.CreatedAt.Add(auditCooldown)
		if s.now().Before(next) {
			status.NextAvailable = &next
		} else {
			status.CanRunAgain = true
		}
	}
	return status, nil
}

// History returns up to the ten most recent audits, newest first.
func (s *AuditService) History(ctx context.Context, vendorID string) ([]domain.AeoAudit, error) {
	return s.Audits.HistoryByVendor(ctx, vendorID, auditHistoryLimit)
}
