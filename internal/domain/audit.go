package domain

import "time"

// AuditCheckKey identifies one of the ten static-analysis signal checks.
// Order matters: results are always emitted in this sequence.
type AuditCheckKey string

const (
	CheckSchema        AuditCheckKey = "schema"
	CheckMeta          AuditCheckKey = "meta"
	CheckHeadings      AuditCheckKey = "headings"
	CheckViewport      AuditCheckKey = "viewport"
	CheckSSL           AuditCheckKey = "ssl"
	CheckSpeed         AuditCheckKey = "speed"
	CheckSocial        AuditCheckKey = "social"
	CheckContact       AuditCheckKey = "contact"
	CheckFAQ           AuditCheckKey = "faq"
	CheckContentLength AuditCheckKey = "content"
)

type AuditCheck struct {
	Name           string        `json:"name"`
	Key            AuditCheckKey `json:"key"`
	Score          int           `json:"score"`
	MaxScore       int           `json:"maxScore"`
	Passed         bool          `json:"passed"`
	Details        string        `json:"details"`
	Recommendation string        `json:"recommendation,omitempty"`
}

type AeoAudit struct {
	ID                     string
	VendorID               string
	WebsiteURL             string
	OverallScore           int
	Checks                 []AuditCheck
	Recommendations        []string
	TendoraiSchemaDetected bool
	CreatedAt              time.Time
}

// AuditOutcome is the pure result of the signal analyser before it is bound
// to a vendor and persisted.
type AuditOutcome struct {
	OverallScore           int
	Checks                 []AuditCheck
	Recommendations        []string
	TendoraiSchemaDetected bool
}
