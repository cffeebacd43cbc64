package db

import "time"

type VendorModel struct {
	ID                 string `gorm:"type:uuid;primaryKey"`
	Name               string `gorm:"not null"`
	Company            string
	Email              string `gorm:"uniqueIndex;not null"`
	Phone              string
	Website            string
	Category           string `gorm:"index"`
	ServicesJSON       []byte `gorm:"type:jsonb"`
	PracticeAreasJSON  []byte `gorm:"type:jsonb"`
	Address            string
	City               string `gorm:"index"`
	Postcode           string
	Region             string
	CoverageJSON       []byte `gorm:"type:jsonb"`
	YearsInBusiness    int
	CertificationsJSON []byte `gorm:"type:jsonb"`
	AccreditationsJSON []byte `gorm:"type:jsonb"`
	BrandsJSON         []byte `gorm:"type:jsonb"`
	Description        string
	Status             string `gorm:"index;not null"`
	VerificationStatus string
	Tier               string `gorm:"not null"`
	Unsubscribed       bool
	CreatedAt          time.Time `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"not null"`
}

func (VendorModel) TableName() string { return "vendors" }

// VendorProductModel keeps vendor_id as text: legacy rows imported from the
// original document store carry the ObjectId("...") literal instead of the
// bare handle, and readers must match both forms.
type VendorProductModel struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	VendorID    string `gorm:"index;not null"`
	Category    string
	Name        string `gorm:"not null"`
	Description string
	Status      string    `gorm:"index;not null"`
	PricingJSON []byte    `gorm:"type:jsonb"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (VendorProductModel) TableName() string { return "vendor_products" }

type AeoAuditModel struct {
	ID                     string `gorm:"type:uuid;primaryKey"`
	VendorID               string `gorm:"type:uuid;index;not null"`
	WebsiteURL             string `gorm:"not null"`
	OverallScore           int    `gorm:"not null"`
	ChecksJSON             []byte `gorm:"type:jsonb;not null"`
	RecommendationsJSON    []byte `gorm:"type:jsonb"`
	TendoraiSchemaDetected bool
	CreatedAt              time.Time `gorm:"index;not null"`
}

func (AeoAuditModel) TableName() string { return "aeo_audits" }

type AIMentionScanModel struct {
	ID                       string    `gorm:"type:uuid;primaryKey"`
	VendorID                 string    `gorm:"index;not null"`
	ScanDate                 time.Time `gorm:"index;not null"`
	Prompt                   string
	Mentioned                bool
	Position                 string
	CompetitorsMentionedJSON []byte `gorm:"type:jsonb"`
	Category                 string `gorm:"index"`
	Location                 string
}

func (AIMentionScanModel) TableName() string { return "ai_mention_scans" }

type AeoReportModel struct {
	ID                    string `gorm:"type:uuid;primaryKey"`
	CompanyName           string `gorm:"index;not null"`
	Category              string `gorm:"not null"`
	CustomIndustry        string
	City                  string
	Email                 string
	ReportType            string `gorm:"not null"`
	AIMentioned           bool
	AIPosition            string
	AIRecommendationsJSON []byte `gorm:"type:jsonb"`
	CompetitorsOnTendorAI int
	Score                 int       `gorm:"not null"`
	BreakdownJSON         []byte    `gorm:"type:jsonb;not null"`
	SearchedCompanyJSON   []byte    `gorm:"type:jsonb;not null"`
	CompetitorsJSON       []byte    `gorm:"type:jsonb"`
	GapsJSON              []byte    `gorm:"type:jsonb"`
	CreatedAt             time.Time `gorm:"not null"`
}

func (AeoReportModel) TableName() string { return "aeo_reports" }

// DigestSendModel records one weekly digest send per vendor per ISO week.
// The unique index makes repeated sends within a week idempotent.
type DigestSendModel struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	VendorID  string `gorm:"uniqueIndex:idx_digest_vendor_week;not null"`
	Week      string `gorm:"uniqueIndex:idx_digest_vendor_week;not null"`
	Subject   string
	SentAt    time.Time `gorm:"not null"`
	Succeeded bool
	Error     string
}

func (DigestSendModel) TableName() string { return "digest_sends" }
