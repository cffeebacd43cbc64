package domain

import (
	"strings"
	"time"
)

type Tier string

const (
	TierListed   Tier = "listed"
	TierVisible  Tier = "visible"
	TierVerified Tier = "verified"
)

// NormalizeTier maps legacy tier aliases onto the three canonical values.
// Unknown values fall back to listed.
func NormalizeTier(raw string) Tier {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "visible", "premium", "plus":
		return TierVisible
	case "verified", "pro", "enterprise":
		return TierVerified
	default:
		return TierListed
	}
}

// Paid reports whether the tier unlocks paid features (weekly audits,
// full mention analytics).
func (t Tier) Paid() bool {
	return t == TierVisible || t == TierVerified
}

func (t Tier) DisplayName() string {
	switch t {
	case TierVisible:
		return "Visible"
	case TierVerified:
		return "Verified"
	default:
		return "Listed"
	}
}

type VendorStatus string

const (
	VendorActive    VendorStatus = "active"
	VendorPending   VendorStatus = "pending"
	VendorSuspended VendorStatus = "suspended"
)

// ServiceCategories is the closed set of equipment service tags.
var ServiceCategories = []string{"Photocopiers", "Telecoms", "CCTV", "IT", "Security", "Software"}

// PracticeAreas holds the closed vocabularies for professional verticals,
// keyed by vendor category.
var PracticeAreas = map[string][]string{
	"solicitor": {
		"Conveyancing", "Family Law", "Wills & Probate", "Commercial Law",
		"Employment Law", "Personal Injury", "Immigration", "Litigation",
	},
	"accountant": {
		"Bookkeeping", "Tax Returns", "Payroll", "VAT", "Audit",
		"Management Accounts", "Company Formation",
	},
	"mortgage-advisor": {
		"First-Time Buyers", "Remortgage", "Buy-to-Let", "Commercial Mortgages",
		"Equity Release", "Protection",
	},
	"estate-agent": {
		"Residential Sales", "Lettings", "Property Management", "Commercial Property",
		"Auctions", "Valuations",
	},
}

func ValidServiceCategory(s string) bool {
	for _, c := range ServiceCategories {
		if strings.EqualFold(c, s) {
			return true
		}
	}
	return false
}

type Location struct {
	Address  string
	City     string
	Postcode string
	Region   string
	Coverage []string
}

// PostcodeArea returns the first token of the postcode, e.g. "CF10" from
// "CF10 1AA".
func (l Location) PostcodeArea() string {
	fields := strings.Fields(l.Postcode)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}

type Vendor struct {
	ID            string
	Name          string
	Company       string
	Email         string
	Phone         string
	Website       string
	Services      []string
	PracticeAreas []string
	Category      string
	Location      Location

	YearsInBusiness int
	Certifications  []string
	Accreditations  []string
	Brands          []string
	Description     string

	Status             VendorStatus
	VerificationStatus string
	Tier               Tier
	Unsubscribed       bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// YearsFromFounding translates a founding year into years in business,
// clamped to [0,100]. Values outside 1900..now are treated as already being
// a year count.
func YearsFromFounding(value int, now time.Time) int {
	years := value
	if value >= 1900 && value <= now.Year() {
		years = now.Year() - value
	}
	if years < 0 {
		years = 0
	}
	if years > 100 {
		years = 100
	}
	return years
}

type ProductStatus string

const (
	ProductActive   ProductStatus = "active"
	ProductInactive ProductStatus = "inactive"
)

// Pricing carries the equipment pricing substructure used by copier and
// telecoms verticals. Professional verticals keep free-form pricing in Extra.
type Pricing struct {
	Manufacturer     string         `json:"manufacturer,omitempty"`
	Model            string         `json:"model,omitempty"`
	Speed            int            `json:"speed,omitempty"`
	Cost             float64        `json:"cost,omitempty"`
	Installation     float64        `json:"installation,omitempty"`
	ProfitMargin     float64        `json:"profitMargin,omitempty"`
	MinVolume        int            `json:"minVolume,omitempty"`
	MaxVolume        int            `json:"maxVolume,omitempty"`
	TotalMachineCost float64        `json:"totalMachineCost,omitempty"`
	Extra            map[string]any `json:"extra,omitempty"`
}

// HasData reports whether any pricing signal is present.
func (p Pricing) HasData() bool {
	return p.Manufacturer != "" || p.Model != "" || p.Cost > 0 ||
		p.TotalMachineCost > 0 || len(p.Extra) > 0
}

type VendorProduct struct {
	ID          string
	VendorID    string
	Category    string
	Name        string
	Description string
	Status      ProductStatus
	Pricing     Pricing
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
