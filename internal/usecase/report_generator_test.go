package usecase

import (
	"context"
	"errors"
	"testing"

	"tendorai/internal/domain"

	"go.uber.org/zap"
)

const reportPayload = `{
  "aiMentioned": true,
  "aiPosition": "top3",
  "aiRecommendations": ["Add FAQ schema", "Publish pricing"],
  "score": 150,
  "scoreBreakdown": {
    "websiteOptimisation": "25",
    "contentAuthority": 12,
    "directoryPresence": -3,
    "reviewSignals": 9,
    "localRelevance": 14,
    "structuredData": 8
  },
  "searchedCompany": {
    "websiteFound": true,
    "hasSchema": false,
    "hasFAQ": false,
    "hasReviews": true,
    "listedInDirectories": true,
    "hasLocalPresence": true,
    "mentionedByAI": true,
    "recentContent": false,
    "website": "https://acme.example",
    "summary": "Established copier dealer."
  },
  "competitors": [
    {"name": "Rival Print", "description": "d", "reason": "r", "website": "https://rival.example",
     "strengths": ["a", "b", "c", "d", "e", "f", "g"]}
  ],
  "gaps": [
    {"title": "No FAQ schema", "explanation": "AI assistants cannot quote answers."}
  ]
}`

func copierRequest() domain.ReportRequest {
	return domain.ReportRequest{
		CompanyName: "Acme Copiers",
		Category:    "Photocopiers",
		City:        "Manchester",
	}
}

func newTestGenerator(t *testing.T, primary SearchChat, fallback PlainChat, vendors *fakeVendors) (*ReportGenerator, *fakeReports) {
	t.Helper()
	reports := &fakeReports{}
	gen, err := NewReportGenerator(primary, fallback, vendors, reports, newFakeCache(), zap.NewNop())
	if err != nil {
		t.Fatalf("NewReportGenerator: %v", err)
	}
	return gen, reports
}

func TestGenerateClampsModelOutput(t *testing.T) {
	vendors := newFakeVendors()
	vendors.serviceCount = 4
	gen, reports := newTestGenerator(t, &fakeSearch{text: reportPayload}, nil, vendors)

	report, err := gen.Generate(context.Background(), copierRequest())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if report.Score != 100 {
		t.Fatalf("score = %d, want clamped 100", report.Score)
	}
	if report.ScoreBreakdown.WebsiteOptimisation != 17 {
		t.Fatalf("websiteOptimisation = %d, want 17 from numeric string %q", report.ScoreBreakdown.WebsiteOptimisation, "25")
	}
	if report.ScoreBreakdown.DirectoryPresence != 0 {
		t.Fatalf("directoryPresence = %d, want 0 from negative input", report.ScoreBreakdown.DirectoryPresence)
	}
	if got := len(report.Competitors[0].Strengths); got != 5 {
		t.Fatalf("strengths truncated to %d, want 5", got)
	}
	if report.CompetitorsOnTendorAI != 4 {
		t.Fatalf("competitorsOnTendorAI = %d, want directory count 4", report.CompetitorsOnTendorAI)
	}
	if len(reports.created) != 1 {
		t.Fatalf("persisted %d reports, want 1", len(reports.created))
	}
}

func TestGenerateExtractsJSONFromProse(t *testing.T) {
	wrapped := "Here is my assessment of the company.\n\n" + reportPayload + "\n\nLet me know if you need more."
	gen, _ := newTestGenerator(t, &fakeSearch{text: wrapped}, nil, newFakeVendors())

	report, err := gen.Generate(context.Background(), copierRequest())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !report.AIMentioned || report.AIPosition != "top3" {
		t.Fatalf("parsed wrong object: mentioned=%t position=%q", report.AIMentioned, report.AIPosition)
	}
}

func TestGenerateFallsBackWhenPrimaryFails(t *testing.T) {
	primary := &fakeSearch{err: domain.ErrUpstreamTemporary}
	fallback := &fakePlain{text: reportPayload}
	gen, _ := newTestGenerator(t, primary, fallback, newFakeVendors())

	if _, err := gen.Generate(context.Background(), copierRequest()); err != nil {
		t.Fatalf("Generate with fallback: %v", err)
	}
	if primary.calls != 1 || fallback.calls != 1 {
		t.Fatalf("primary calls=%d fallback calls=%d, want 1 and 1", primary.calls, fallback.calls)
	}
}

func TestGenerateUnparseableOutputIsPermanent(t *testing.T) {
	gen, _ := newTestGenerator(t, &fakeSearch{text: "I could not find anything useful."}, nil, newFakeVendors())

	_, err := gen.Generate(context.Background(), copierRequest())
	if !errors.Is(err, domain.ErrUpstreamPermanent) {
		t.Fatalf("err = %v, want ErrUpstreamPermanent", err)
	}
}

func TestGenerateRejectsMissingFields(t *testing.T) {
	gen, _ := newTestGenerator(t, &fakeSearch{text: reportPayload}, nil, newFakeVendors())
	for _, req := range []domain.ReportRequest{
		{Category: "Photocopiers", City: "Leeds"},
		{CompanyName: "Acme", City: "Leeds"},
		{CompanyName: "Acme", Category: "Photocopiers"},
	} {
		if _, err := gen.Generate(context.Background(), req); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("req %+v: err = %v, want ErrValidation", req, err)
		}
	}
}

func TestGenerateRequiresAProvider(t *testing.T) {
	_, err := NewReportGenerator(nil, nil, newFakeVendors(), &fakeReports{}, newFakeCache(), zap.NewNop())
	if !errors.Is(err, domain.ErrConfig) {
		t.Fatalf("err = %v, want ErrConfig", err)
	}
}

func TestGenerateMemoisesDirectoryJoin(t *testing.T) {
	vendors := newFakeVendors()
	vendors.serviceCount = 2
	gen, _ := newTestGenerator(t, &fakeSearch{text: reportPayload}, nil, vendors)

	for i := 0; i < 3; i++ {
		if _, err := gen.Generate(context.Background(), copierRequest()); err != nil {
			t.Fatalf("Generate #%d: %v", i, err)
		}
	}
	if vendors.countCalls != 1 {
		t.Fatalf("directory counted %d times, want 1 (memoised)", vendors.countCalls)
	}
}

func TestGenerateSurvivesDirectoryOutage(t *testing.T) {
	vendors := newFakeVendors()
	vendors.countErr = errors.New("db down")
	gen, _ := newTestGenerator(t, &fakeSearch{text: reportPayload}, nil, vendors)

	report, err := gen.Generate(context.Background(), copierRequest())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if report.CompetitorsOnTendorAI != 0 {
		t.Fatalf("competitorsOnTendorAI = %d, want 0 on join failure", report.CompetitorsOnTendorAI)
	}
}
