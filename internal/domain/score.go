package domain

// ScoreSection is one row of the visibility score breakdown.
type ScoreSection struct {
	Name     string `json:"name"`
	Score    int    `json:"score"`
	MaxScore int    `json:"maxScore"`
	Guidance string `json:"guidance,omitempty"`
}

type ScoreRecommendation struct {
	Action    string `json:"action"`
	Points    int    `json:"points"`
	ActionURL string `json:"actionUrl,omitempty"`
	Impact    string `json:"impact"`
}

// VisibilitySnapshot is the computed composite score returned to callers.
// It is never stored directly.
type VisibilitySnapshot struct {
	Score           int                   `json:"score"`
	MaxScore        int                   `json:"maxScore"`
	Breakdown       []ScoreSection        `json:"breakdown"`
	Recommendations []ScoreRecommendation `json:"recommendations"`
	Tier            Tier                  `json:"tier"`
	TierDisplayName string                `json:"tierDisplayName"`
	Colour          string                `json:"colour"`
	Label           string                `json:"label"`
	NextMilestone   int                   `json:"nextMilestone"`
}

// MentionSignals is the optional AI-mention input to the score calculator.
type MentionSignals struct {
	Total30d  int
	ThisWeek  int
	Mentioned bool
}

// ReviewSignals is the optional review input to the score calculator.
type ReviewSignals struct {
	Count   int
	Average float64
}
