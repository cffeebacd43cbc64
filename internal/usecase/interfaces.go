package usecase

import (
	"context"
	"time"

	"tendorai/internal/domain"
)

// Repository interfaces are declared here, on the consumer side; the gorm
// repositories in internal/infra/db satisfy them.

type VendorRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Vendor, error)
	CountByPracticeArea(ctx context.Context, category, practiceArea, city string) (int, error)
	CountByService(ctx context.Context, service, city string) (int, error)
	ListDigestEligible(ctx context.Context) ([]domain.Vendor, error)
	SetUnsubscribed(ctx context.Context, vendorID string, unsubscribed bool) error
}

type ProductRepository interface {
	ListByVendor(ctx context.Context, vendorID string) ([]domain.VendorProduct, error)
}

type AuditRepository interface {
	Create(ctx context.Context, audit domain.AeoAudit) (*domain.AeoAudit, error)
	LatestByVendor(ctx context.Context, vendorID string) (*domain.AeoAudit, error)
	HistoryByVendor(ctx context.Context, vendorID string, limit int) ([]domain.AeoAudit, error)
}

type MentionRepository interface {
	Count(ctx context.Context, vendorID string, f domain.MentionCountFilter) (int, error)
	ListLatest(ctx context.Context, vendorID string, mentioned bool, limit int) ([]domain.AIMentionScan, error)
	AggregateByWeek(ctx context.Context, vendorID string, from time.Time) ([]domain.WeeklyMentions, error)
	RankInCategory(ctx context.Context, vendorID, category, location string, from time.Time) (domain.CategoryRank, error)
	UniqueCompetitorCount(ctx context.Context, vendorID string, from time.Time) (int, error)
}

type ReportRepository interface {
	Create(ctx context.Context, report domain.AeoReport) (*domain.AeoReport, error)
}

type DigestRepository interface {
	AlreadySent(ctx context.Context, vendorID, week string) (bool, error)
	Record(ctx context.Context, vendorID, week, subject string, succeeded bool, sendErr string) error
}

// PageFetcher retrieves a single page of HTML for auditing.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (html string, finalURL string, err error)
}

// SearchChat is the web-search-capable research provider (primary).
type SearchChat interface {
	Name() string
	Research(ctx context.Context, prompt string) (string, error)
}

// PlainChat is the tool-free fallback provider.
type PlainChat interface {
	Name() string
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// CountCache memoises directory-join counts.
type CountCache interface {
	Get(ctx context.Context, key string) (int, bool, error)
	Put(ctx context.Context, key string, value int, ttl time.Duration) error
}

// MailSender delivers one rendered digest email.
type MailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// UnsubscribeTokenSigner mints the signed tokens embedded in digest emails.
type UnsubscribeTokenSigner interface {
	Sign(vendorID string) (string, error)
}
