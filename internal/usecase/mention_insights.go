package usecase

import (
	"context"
	"math"
	"time"

	"tendorai/internal/domain"
)

const (
	mentionLatestLimit  = 10
	mentionHistoryWeeks = 12
)

// MentionSummary is the vendor-facing mention rollup. Paid tiers get the
// full analytics block; listed vendors see counts and trend only.
type MentionSummary struct {
	Total    int    `json:"total"`
	ThisWeek int    `json:"thisWeek"`
	LastWeek int    `json:"lastWeek"`
	Trend    string `json:"trend"`
	Locked   bool   `json:"locked"`

	MentionRate30d *int                    `json:"mentionRate30d,omitempty"`
	Latest         []domain.AIMentionScan  `json:"latest,omitempty"`
	WeeklyHistory  []domain.WeeklyMentions `json:"weeklyHistory,omitempty"`
}

// CompetitorView is the vendor-facing competitor standing. The locked form
// reveals only how many competitors are being mentioned.
type CompetitorView struct {
	Locked          bool                        `json:"locked"`
	CompetitorCount int                         `json:"competitorCount"`
	Rank            int                         `json:"rank,omitempty"`
	MentionCount    int                         `json:"mentionCount,omitempty"`
	TopCompetitors  []domain.CompetitorMentions `json:"topCompetitors,omitempty"`
}

// MentionInsights answers the mention-store queries. Scans are written by an
// external process; everything here is read-only.
type MentionInsights struct {
	Vendors  VendorRepository
	Mentions MentionRepository

	now func() time.Time
}

func NewMentionInsights(vendors VendorRepository, mentions MentionRepository) *MentionInsights {
	return &MentionInsights{Vendors: vendors, Mentions: mentions, now: time.Now}
}

func (m *MentionInsights) Summary(ctx context.Context, vendorID string) (*MentionSummary, error) {
	vendor, err := m.Vendors.GetByID(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	now := m.now()
	mentioned := true

	total, err := m.Mentions.Count(ctx, vendorID, domain.MentionCountFilter{Mentioned: &mentioned})
	if err != nil {
		return nil, err
	}
	thisWeek, err := m.Mentions.Count(ctx, vendorID, domain.MentionCountFilter{
		Mentioned: &mentioned,
		From:      now.AddDate(0, 0, -7),
	})
	if err != nil {
		return nil, err
	}
	lastWeek, err := m.Mentions.Count(ctx, vendorID, domain.MentionCountFilter{
		Mentioned: &mentioned,
		From:      now.AddDate(0, 0, -14),
		To:        now.AddDate(0, 0, -7),
	})
	if err != nil {
		return nil, err
	}

	summary := &MentionSummary{
		Total:    total,
		ThisWeek: thisWeek,
		LastWeek: lastWeek,
		Trend:    trend(thisWeek, lastWeek),
		Locked:   !vendor.Tier.Paid(),
	}
	if summary.Locked {
		return summary, nil
	}

	from30 := now.AddDate(0, 0, -30)
	scans30, err := m.Mentions.Count(ctx, vendorID, domain.MentionCountFilter{From: from30})
	if err != nil {
		return nil, err
	}
	hits30, err := m.Mentions.Count(ctx, vendorID, domain.MentionCountFilter{Mentioned: &mentioned, From: from30})
	if err != nil {
		return nil, err
	}
	rate := 0
	if scans30 > 0 {
		rate = int(math.Round(float64(hits30) / float64(scans30) * 100))
	}
	summary.MentionRate30d = &rate

	summary.Latest, err = m.Mentions.ListLatest(ctx, vendorID, true, mentionLatestLimit)
	if err != nil {
		return nil, err
	}
	summary.WeeklyHistory, err = m.Mentions.AggregateByWeek(ctx, vendorID, now.AddDate(0, 0, -7*mentionHistoryWeeks))
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (m *MentionInsights) Competitors(ctx context.Context, vendorID string) (*CompetitorView, error) {
	vendor, err := m.Vendors.GetByID(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	now := m.now()
	from := now.AddDate(0, 0, -30)

	rank, err := m.Mentions.RankInCategory(ctx, vendorID, vendor.Category, vendor.Location.City, from)
	if err != nil {
		return nil, err
	}

	if !vendor.Tier.Paid() {
		// Free tier sees its standing and the competitor counts, but the
		// names stay behind the paywall.
		masked := make([]domain.CompetitorMentions, 0, len(rank.TopCompetitors))
		for _, c := range rank.TopCompetitors {
			masked = append(masked, domain.CompetitorMentions{Mentions: c.Mentions})
		}
		return &CompetitorView{
			Locked:          true,
			CompetitorCount: rank.CompetitorCount,
			Rank:            rank.Rank,
			MentionCount:    rank.MentionCount,
			TopCompetitors:  masked,
		}, nil
	}

	return &CompetitorView{
		CompetitorCount: rank.CompetitorCount,
		Rank:            rank.Rank,
		MentionCount:    rank.MentionCount,
		TopCompetitors:  rank.TopCompetitors,
	}, nil
}

func trend(thisWeek, lastWeek int) string {
	switch {
	case thisWeek > lastWeek:
		return "up"
	case thisWeek < lastWeek:
		return "down"
	default:
		return "stable"
	}
}
