package domain

import (
	"fmt"
	"time"
)

type MentionPosition string

const (
	PositionFirst     MentionPosition = "first"
	PositionTop3      MentionPosition = "top3"
	PositionMentioned MentionPosition = "mentioned"
)

// AIMentionScan records one probe prompt sent to a public AI assistant and
// whether the vendor (or competitors) appeared in the answer. Scans are
// written by an external scanner; this process only reads them.
type AIMentionScan struct {
	ID                   string
	VendorID             string
	ScanDate             time.Time
	Prompt               string
	Mentioned            bool
	Position             MentionPosition
	CompetitorsMentioned []string
	Category             string
	Location             string
}

// MentionCountFilter bounds a mention count query. Mentioned nil means
// "any outcome".
type MentionCountFilter struct {
	Mentioned *bool
	From      time.Time
	To        time.Time
}

// ISOWeek formats a time as its ISO 8601 week key, e.g. "2026-W35".
func ISOWeek(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

type WeeklyMentions struct {
	Week     string `json:"week"`
	Mentions int    `json:"mentions"`
}

type CompetitorMentions struct {
	VendorID string `json:"vendorId,omitempty"`
	Name     string `json:"name,omitempty"`
	Mentions int    `json:"mentions"`
}

type CategoryRank struct {
	Rank            int
	MentionCount    int
	CompetitorCount int
	TopCompetitors  []CompetitorMentions
}
