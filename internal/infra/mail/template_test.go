package mail

import (
	"strings"
	"testing"

	"tendorai/internal/domain"
	"tendorai/internal/usecase"
)

func digestData() usecase.DigestEmailData {
	return usecase.DigestEmailData{
		VendorName:         "Acme Copiers",
		TierName:           "Visible",
		WeekOf:             "Sep 1, 2026",
		Score:              62,
		ScoreLabel:         "Good",
		MentionsThisWeek:   4,
		CompetitorMentions: 2,
		Recommendations: []domain.ScoreRecommendation{
			{Action: "Add FAQ schema to your website", Points: 10},
			{Action: "Collect 5 more reviews", Points: 6},
		},
		DashboardURL:   "https://tendorai.com/dashboard/visibility",
		UpgradeURL:     "https://tendorai.com/pricing",
		UnsubscribeURL: "https://api.tendorai.com/api/public/unsubscribe?token=abc",
	}
}

func TestRenderDigest(t *testing.T) {
	html, err := NewDigestRenderer().Render(digestData())
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, want := range []string{
		"Week of Sep 1, 2026",
		"62",
		"Good",
		"Add FAQ schema to your website",
		"+10 pts",
		"https://tendorai.com/dashboard/visibility",
		"https://api.tendorai.com/api/public/unsubscribe?token=abc",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("rendered digest missing %q", want)
		}
	}

	// Visible tier still sees the Verified upsell.
	if !strings.Contains(html, "https://tendorai.com/pricing") {
		t.Fatalf("upgrade link missing for Visible tier")
	}
}

func TestRenderDigestOmitsUpsellForVerified(t *testing.T) {
	data := digestData()
	data.TierName = "Verified"
	html, err := NewDigestRenderer().Render(data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(html, data.UpgradeURL) {
		t.Fatalf("Verified digest still carries the upgrade link")
	}
}

func TestRenderDigestEscapesVendorInput(t *testing.T) {
	data := digestData()
	data.VendorName = `<script>alert("x")</script>`
	html, err := NewDigestRenderer().Render(data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Fatalf("vendor name not escaped")
	}
}
