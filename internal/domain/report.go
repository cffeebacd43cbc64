package domain

import (
	"strings"
	"time"
)

// VendorType is the closed variant set driving per-category prompt and
// scoring strategy.
type VendorType string

const (
	VendorTypeEquipment       VendorType = "equipment"
	VendorTypeSolicitor       VendorType = "solicitor"
	VendorTypeAccountant      VendorType = "accountant"
	VendorTypeMortgageAdvisor VendorType = "mortgage-advisor"
	VendorTypeEstateAgent     VendorType = "estate-agent"
	VendorTypeOther           VendorType = "other"
)

// VendorTypeForCategory resolves a report category onto its vendor type.
func VendorTypeForCategory(category string) VendorType {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "photocopiers", "telecoms", "cctv", "it", "security", "software":
		return VendorTypeEquipment
	case "solicitor", "solicitors", "legal":
		return VendorTypeSolicitor
	case "accountant", "accountants", "accounting":
		return VendorTypeAccountant
	case "mortgage-advisor", "mortgage advisor", "mortgage-advisors", "mortgages":
		return VendorTypeMortgageAdvisor
	case "estate-agent", "estate agent", "estate-agents":
		return VendorTypeEstateAgent
	default:
		return VendorTypeOther
	}
}

type ReportRequest struct {
	CompanyName    string
	Category       string
	CustomIndustry string
	City           string
	Email          string
}

type ScoreBreakdown struct {
	WebsiteOptimisation int `json:"websiteOptimisation"`
	ContentAuthority    int `json:"contentAuthority"`
	DirectoryPresence   int `json:"directoryPresence"`
	ReviewSignals       int `json:"reviewSignals"`
	LocalRelevance      int `json:"localRelevance"`
	StructuredData      int `json:"structuredData"`
}

type SearchedCompany struct {
	WebsiteFound        bool   `json:"websiteFound"`
	HasSchema           bool   `json:"hasSchema"`
	HasFAQ              bool   `json:"hasFAQ"`
	HasReviews          bool   `json:"hasReviews"`
	ListedInDirectories bool   `json:"listedInDirectories"`
	HasLocalPresence    bool   `json:"hasLocalPresence"`
	MentionedByAI       bool   `json:"mentionedByAI"`
	RecentContent       bool   `json:"recentContent"`
	Website             string `json:"website"`
	Summary             string `json:"summary"`
}

type ReportCompetitor struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Reason      string   `json:"reason"`
	Website     string   `json:"website"`
	Strengths   []string `json:"strengths"`
}

type ReportGap struct {
	Title       string `json:"title"`
	Explanation string `json:"explanation"`
}

// AeoReport is one LLM-generated competitor study. Immutable once created.
type AeoReport struct {
	ID                    string
	CompanyName           string
	Category              string
	CustomIndustry        string
	City                  string
	Email                 string
	ReportType            string
	AIMentioned           bool
	AIPosition            string
	AIRecommendations     []string
	CompetitorsOnTendorAI int
	Score                 int
	ScoreBreakdown        ScoreBreakdown
	SearchedCompany       SearchedCompany
	Competitors           []ReportCompetitor
	Gaps                  []ReportGap
	CreatedAt             time.Time
}
