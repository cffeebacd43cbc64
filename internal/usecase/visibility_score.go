package usecase

import (
	"fmt"
	"sort"

	"tendorai/internal/domain"
)

// VisibilityCalculator blends profile completeness, product data, trust
// signals and subscription tier into a single 0-100 score. Optional mention
// and review signals add guidance rows without changing the 100-point scale.
type VisibilityCalculator struct{}

const (
	maxProfilePoints = 25
	maxProductPoints = 25
	maxTrustPoints   = 20
	maxTierPoints    = 30
	maxTotalPoints   = 100
)

type scoreGap struct {
	action string
	points int
	url    string
}

// Score computes the snapshot. mention and review may be nil.
func (VisibilityCalculator) Score(vendor domain.Vendor, products []domain.VendorProduct, mention *domain.MentionSignals, review *domain.ReviewSignals) domain.VisibilitySnapshot {
	tier := domain.NormalizeTier(string(vendor.Tier))

	var gaps []scoreGap

	// Profile: weighted field checks, 25 points.
	profile := 0
	addCheck := func(present bool, points int, action string) {
		if present {
			profile += points
		} else {
			gaps = append(gaps, scoreGap{action: action, points: points, url: "/vendor/profile"})
		}
	}
	addCheck(vendor.Company != "", 3, "Add your company name")
	addCheck(vendor.Phone != "", 4, "Add a contact phone number")
	addCheck(vendor.Email != "", 3, "Add a contact email")
	addCheck(vendor.Website != "", 5, "Add your website address")
	addCheck(vendor.YearsInBusiness >= 1, 3, "Add your years in business")
	addCheck(len(vendor.Description) >= 20, 4, "Write a business description of at least 20 characters")
	addCheck(vendor.Location.Postcode != "", 3, "Add your business postcode")

	// Products: 25 points.
	product := 0
	hasPricing := false
	for _, p := range products {
		if p.Pricing.HasData() {
			hasPricing = true
			break
		}
	}
	if len(products) >= 1 {
		product += 10
	} else {
		gaps = append(gaps, scoreGap{action: "Add your first product or service", points: 10, url: "/vendor/products"})
	}
	if hasPricing {
		product += 10
	} else {
		gaps = append(gaps, scoreGap{action: "Add pricing data to a product", points: 10, url: "/vendor/products"})
	}
	if len(products) >= 3 {
		product += 5
	} else {
		gaps = append(gaps, scoreGap{action: "List at least three products", points: 5, url: "/vendor/products"})
	}

	// Trust: 20 points.
	trust := 0
	addTrust := func(present bool, action string) {
		if present {
			trust += 5
		} else {
			gaps = append(gaps, scoreGap{action: action, points: 5, url: "/vendor/profile"})
		}
	}
	addTrust(len(vendor.Certifications) > 0, "Add industry certifications")
	addTrust(len(vendor.Accreditations) > 0, "Add accreditations")
	addTrust(len(vendor.Brands) > 0, "List the brands you supply")
	addTrust(len(vendor.Location.Coverage) > 0, "Add your coverage areas")

	// Tier bonus: 30 points.
	tierBonus := 0
	switch tier {
	case domain.TierVisible:
		tierBonus = 15
	case domain.TierVerified:
		tierBonus = 30
	}

	total := profile + product + trust + tierBonus
	if total > maxTotalPoints {
		total = maxTotalPoints
	}

	breakdown := []domain.ScoreSection{
		{Name: "Profile completeness", Score: profile, MaxScore: maxProfilePoints, Guidance: "Complete contact and business details so buyers and AI assistants can verify you."},
		{Name: "Products", Score: product, MaxScore: maxProductPoints, Guidance: "Products with pricing make your listing answerable, not just findable."},
		{Name: "Trust signals", Score: trust, MaxScore: maxTrustPoints, Guidance: "Certifications, accreditations, brands and coverage build citation confidence."},
		{Name: "Plan tier", Score: tierBonus, MaxScore: maxTierPoints, Guidance: "Higher tiers are surfaced first in directory answers."},
	}
	if mention != nil {
		breakdown = append(breakdown, domain.ScoreSection{
			Name:     "AI mentions",
			Score:    mention.Total30d,
			MaxScore: 0,
			Guidance: fmt.Sprintf("%d AI mention(s) recorded in the last 30 days.", mention.Total30d),
		})
	}
	if review != nil {
		breakdown = append(breakdown, domain.ScoreSection{
			Name:     "Reviews",
			Score:    review.Count,
			MaxScore: 0,
			Guidance: fmt.Sprintf("%d review(s) with a %.1f average rating.", review.Count, review.Average),
		})
	}

	recs := buildRecommendations(tier, gaps)

	return domain.VisibilitySnapshot{
		Score:           total,
		MaxScore:        maxTotalPoints,
		Breakdown:       breakdown,
		Recommendations: recs,
		Tier:            tier,
		TierDisplayName: tier.DisplayName(),
		Colour:          scoreColour(total),
		Label:           scoreLabel(total),
		NextMilestone:   nextMilestone(total),
	}
}

// buildRecommendations orders gaps by points unlocked and caps the list at
// five. Below the top tier, the upgrade recommendation always leads.
func buildRecommendations(tier domain.Tier, gaps []scoreGap) []domain.ScoreRecommendation {
	sort.SliceStable(gaps, func(i, j int) bool { return gaps[i].points > gaps[j].points })

	var recs []domain.ScoreRecommendation
	switch tier {
	case domain.TierListed:
		recs = append(recs, domain.ScoreRecommendation{
			Action:    "Upgrade to Visible for +15 pts",
			Points:    15,
			ActionURL: "/vendor/upgrade",
			Impact:    "high",
		})
	case domain.TierVisible:
		recs = append(recs, domain.ScoreRecommendation{
			Action:    "Upgrade to Verified for +15 pts",
			Points:    15,
			ActionURL: "/vendor/upgrade",
			Impact:    "high",
		})
	}
	for _, g := range gaps {
		if len(recs) >= 5 {
			break
		}
		recs = append(recs, domain.ScoreRecommendation{
			Action:    g.action,
			Points:    g.points,
			ActionURL: g.url,
			Impact:    impactForPoints(g.points),
		})
	}
	return recs
}

func impactForPoints(points int) string {
	switch {
	case points >= 10:
		return "high"
	case points >= 4:
		return "medium"
	default:
		return "low"
	}
}

func scoreLabel(total int) string {
	switch {
	case total <= 20:
		return "Poor"
	case total <= 40:
		return "Fair"
	case total <= 60:
		return "Good"
	case total <= 80:
		return "Strong"
	default:
		return "Excellent"
	}
}

func scoreColour(total int) string {
	switch {
	case total <= 20:
		return "#dc2626"
	case total <= 40:
		return "#f59e0b"
	case total <= 60:
		return "#eab308"
	case total <= 80:
		return "#22c55e"
	default:
		return "#16a34a"
	}
}

func nextMilestone(total int) int {
	for _, m := range []int{25, 50, 70, 85, 100} {
		if total < m {
			return m
		}
	}
	return 100
}
