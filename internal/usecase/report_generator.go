package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"tendorai/internal/domain"

	"go.uber.org/zap"
)

const (
	maxSubScore        = 17
	maxStrengths       = 5
	competitorCacheTTL = 10 * time.Minute
)

// ReportGenerator orchestrates the LLM-backed visibility report: research
// via the web-search provider, fallback to the plain provider, tolerant JSON
// extraction, clamping, and the internal directory join.
type ReportGenerator struct {
	Primary  SearchChat
	Fallback PlainChat
	Vendors  VendorRepository
	Reports  ReportRepository
	Cache    CountCache
	Logger   *zap.Logger
}

func NewReportGenerator(primary SearchChat, fallback PlainChat, vendors VendorRepository, reports ReportRepository, cache CountCache, logger *zap.Logger) (*ReportGenerator, error) {
	if primary == nil && fallback == nil {
		return nil, fmt.Errorf("%w: no LLM provider configured", domain.ErrConfig)
	}
	return &ReportGenerator{
		Primary:  primary,
		Fallback: fallback,
		Vendors:  vendors,
		Reports:  reports,
		Cache:    cache,
		Logger:   logger,
	}, nil
}

// Generate produces and persists one report. Provider errors already carry
// their retry budget; a primary failure of any kind falls through to the
// fallback provider before the invocation fails.
func (g *ReportGenerator) Generate(ctx context.Context, req domain.ReportRequest) (*domain.AeoReport, error) {
	if err := validateReportRequest(req); err != nil {
		return nil, err
	}

	text, err := g.research(ctx, req)
	if err != nil {
		return nil, err
	}

	raw, err := extractReportJSON(text)
	if err != nil {
		g.Logger.Error("report JSON extraction failed",
			zap.String("company", req.CompanyName),
			zap.Error(err),
		)
		return nil, err
	}

	report := sanitizeReport(raw, req)

	onPlatform, err := g.competitorsOnPlatform(ctx, req)
	if err != nil {
		// The join is best-effort: a directory outage should not void an
		// otherwise complete report.
		g.Logger.Warn("directory join failed", zap.Error(err))
	}
	report.CompetitorsOnTendorAI = onPlatform

	if g.Reports != nil {
		stored, err := g.Reports.Create(ctx, report)
		if err != nil {
			return nil, err
		}
		return stored, nil
	}
	return &report, nil
}

func (g *ReportGenerator) research(ctx context.Context, req domain.ReportRequest) (string, error) {
	if g.Primary != nil {
		text, err := g.Primary.Research(ctx, ComposeResearchPrompt(req))
		if err == nil {
			return text, nil
		}
		if errors.Is(err, domain.ErrCancelled) {
			return "", err
		}
		if g.Fallback == nil {
			return "", err
		}
		g.Logger.Warn("primary provider failed, using fallback",
			zap.String("primary", g.Primary.Name()),
			zap.Error(err),
		)
	}
	system, prompt := ComposeFallbackPrompt(req)
	return g.Fallback.Complete(ctx, system, prompt)
}

func validateReportRequest(req domain.ReportRequest) error {
	if strings.TrimSpace(req.CompanyName) == "" {
		return fmt.Errorf("%w: companyName is required", domain.ErrValidation)
	}
	if strings.TrimSpace(req.Category) == "" {
		return fmt.Errorf("%w: category is required", domain.ErrValidation)
	}
	if strings.TrimSpace(req.City) == "" {
		return fmt.Errorf("%w: city is required", domain.ErrValidation)
	}
	return nil
}

// extractReportJSON locates the JSON object in the model's output. First
// choice: the object spanning the "searchedCompany" key. Fallback: the first
// balanced-brace substring. Parse failure after both is permanent.
func extractReportJSON(text string) (map[string]any, error) {
	if idx := strings.Index(text, `"searchedCompany"`); idx >= 0 {
		if start := strings.LastIndex(text[:idx], "{"); start >= 0 {
			if candidate := balancedFrom(text, outermostOpen(text, start)); candidate != "" {
				var out map[string]any
				if err := json.Unmarshal([]byte(candidate), &out); err == nil {
					return out, nil
				}
			}
		}
	}
	if start := strings.Index(text, "{"); start >= 0 {
		if candidate := balancedFrom(text, start); candidate != "" {
			var out map[string]any
			if err := json.Unmarshal([]byte(candidate), &out); err == nil {
				return out, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: no parseable JSON object in model output", domain.ErrUpstreamPermanent)
}

// outermostOpen walks back from an opening brace to the outermost brace that
// still encloses it, so a "searchedCompany" match inside a nested object
// resolves to the whole report object.
func outermostOpen(text string, from int) int {
	depth := 0
	outer := from
	for i := from; i >= 0; i-- {
		switch text[i] {
		case '}':
			depth++
		case '{':
			if depth == 0 {
				outer = i
			} else {
				depth--
			}
		}
	}
	return outer
}

// balancedFrom returns the substring from start through its matching close
// brace, respecting strings and escapes. Empty when unbalanced.
func balancedFrom(text string, start int) string {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

// sanitizeReport coerces and clamps the raw model object into a valid
// AeoReport. Missing fields default; numeric strings are accepted.
func sanitizeReport(raw map[string]any, req domain.ReportRequest) domain.AeoReport {
	report := domain.AeoReport{
		CompanyName:    req.CompanyName,
		Category:       req.Category,
		CustomIndustry: req.CustomIndustry,
		City:           req.City,
		Email:          req.Email,
		ReportType:     "full",
		AIMentioned:    toBool(raw["aiMentioned"]),
		AIPosition:     toString(raw["aiPosition"]),
		Score:          clampInt(toInt(raw["score"]), 0, 100),
	}

	for _, v := range toSlice(raw["aiRecommendations"]) {
		if s := toString(v); s != "" {
			report.AIRecommendations = append(report.AIRecommendations, s)
		}
	}

	if bd, ok := raw["scoreBreakdown"].(map[string]any); ok {
		report.ScoreBreakdown = domain.ScoreBreakdown{
			WebsiteOptimisation: clampInt(toInt(bd["websiteOptimisation"]), 0, maxSubScore),
			ContentAuthority:    clampInt(toInt(bd["contentAuthority"]), 0, maxSubScore),
			DirectoryPresence:   clampInt(toInt(bd["directoryPresence"]), 0, maxSubScore),
			ReviewSignals:       clampInt(toInt(bd["reviewSignals"]), 0, maxSubScore),
			LocalRelevance:      clampInt(toInt(bd["localRelevance"]), 0, maxSubScore),
			StructuredData:      clampInt(toInt(bd["structuredData"]), 0, maxSubScore),
		}
	}

	if sc, ok := raw["searchedCompany"].(map[string]any); ok {
		report.SearchedCompany = domain.SearchedCompany{
			WebsiteFound:        toBool(sc["websiteFound"]),
			HasSchema:           toBool(sc["hasSchema"]),
			HasFAQ:              toBool(sc["hasFAQ"]),
			HasReviews:          toBool(sc["hasReviews"]),
			ListedInDirectories: toBool(sc["listedInDirectories"]),
			HasLocalPresence:    toBool(sc["hasLocalPresence"]),
			MentionedByAI:       toBool(sc["mentionedByAI"]),
			RecentContent:       toBool(sc["recentContent"]),
			Website:             toString(sc["website"]),
			Summary:             toString(sc["summary"]),
		}
	}

	for _, v := range toSlice(raw["competitors"]) {
		cm, ok := v.(map[string]any)
		if !ok {
			continue
		}
		comp := domain.ReportCompetitor{
			Name:        toString(cm["name"]),
			Description: toString(cm["description"]),
			Reason:      toString(cm["reason"]),
			Website:     toString(cm["website"]),
		}
		for _, s := range toSlice(cm["strengths"]) {
			if len(comp.Strengths) >= maxStrengths {
				break
			}
			if str := toString(s); str != "" {
				comp.Strengths = append(comp.Strengths, str)
			}
		}
		if comp.Name != "" {
			report.Competitors = append(report.Competitors, comp)
		}
	}

	for _, v := range toSlice(raw["gaps"]) {
		gm, ok := v.(map[string]any)
		if !ok {
			continue
		}
		gap := domain.ReportGap{
			Title:       toString(gm["title"]),
			Explanation: toString(gm["explanation"]),
		}
		if gap.Title != "" {
			report.Gaps = append(report.Gaps, gap)
		}
	}

	return report
}

// competitorsOnPlatform joins the report against the internal directory:
// professional verticals match exact practice area plus city, equipment
// verticals match service tag plus city or coverage.
func (g *ReportGenerator) competitorsOnPlatform(ctx context.Context, req domain.ReportRequest) (int, error) {
	if g.Vendors == nil {
		return 0, nil
	}
	vt := domain.VendorTypeForCategory(req.Category)
	cacheKey := fmt.Sprintf("dirjoin:%s:%s:%s", vt, strings.ToLower(req.Category), strings.ToLower(req.City))

	if g.Cache != nil {
		if v, ok, err := g.Cache.Get(ctx, cacheKey); err == nil && ok {
			return v, nil
		}
	}

	var count int
	var err error
	switch vt {
	case domain.VendorTypeSolicitor, domain.VendorTypeAccountant, domain.VendorTypeMortgageAdvisor, domain.VendorTypeEstateAgent:
		practiceArea := req.CustomIndustry
		if practiceArea == "" {
			practiceArea = req.Category
		}
		count, err = g.Vendors.CountByPracticeArea(ctx, string(vt), practiceArea, req.City)
	case domain.VendorTypeEquipment:
		count, err = g.Vendors.CountByService(ctx, req.Category, req.City)
	default:
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if g.Cache != nil {
		_ = g.Cache.Put(ctx, cacheKey, count, competitorCacheTTL)
	}
	return count, nil
}

func toString(v any) string {
	s, _ := v.(string)
	return s
}

func toBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.EqualFold(t, "true") || strings.EqualFold(t, "yes")
	case float64:
		return t != 0
	default:
		return false
	}
}

func toInt(v any) int {
	switch t := v.(type) {
	case float64:
		return int(math.Round(t))
	case int:
		return t
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return int(math.Round(f))
		}
	}
	return 0
}

func toSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
