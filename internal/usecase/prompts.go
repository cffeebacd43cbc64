package usecase

import (
	"fmt"
	"strings"

	"tendorai/internal/domain"
)

// promptStrategy is the per-vendor-type variant driving search queries,
// scoring hints and gap hints. The set is closed; categories map onto it via
// domain.VendorTypeForCategory.
type promptStrategy struct {
	searchQueries []string
	clarification string
	checklist     []string
	scoringHints  string
	gapHints      string
}

func strategyFor(vt domain.VendorType, category, customIndustry, city string) promptStrategy {
	industry := category
	if vt == domain.VendorTypeOther && customIndustry != "" {
		industry = customIndustry
	}

	switch vt {
	case domain.VendorTypeEquipment:
		return promptStrategy{
			searchQueries: []string{
				fmt.Sprintf("%s suppliers %s", category, city),
				fmt.Sprintf("best %s dealers near %s", category, city),
				fmt.Sprintf("%s lease and maintenance %s", category, city),
			},
			clarification: "Only include businesses that SELL, LEASE or SERVICE this equipment to other businesses. Exclude manufacturers' corporate sites, marketplaces, and consumer retailers.",
			checklist: []string{
				"Does the company list specific machine models and brands it supplies?",
				"Is there pricing, lease or quote information?",
				"Does the site name the areas the company covers?",
				"Are service and maintenance contracts described?",
			},
			scoringHints: "Weight directoryPresence and localRelevance highly: equipment buyers search by area.",
			gapHints:     "Typical gaps: no brand/model pages, no coverage-area page, no lease pricing, no response-time commitments.",
		}
	case domain.VendorTypeSolicitor:
		return promptStrategy{
			searchQueries: []string{
				fmt.Sprintf("solicitors %s", city),
				fmt.Sprintf("law firm %s reviews", city),
			},
			clarification: "Only include SRA-regulated law firms serving clients directly. Exclude barristers' chambers, legal directories and claims-management companies.",
			checklist: []string{
				"Are practice areas individually described?",
				"Are SRA number and accreditations (Lexcel, CQS) visible?",
				"Are fee structures or fixed-fee services published?",
				"Do individual solicitors have profile pages?",
			},
			scoringHints: "Weight reviewSignals and contentAuthority highly: legal clients rely on reputation.",
			gapHints:     "Typical gaps: no fee transparency page, no individual practice-area pages, no client review schema.",
		}
	case domain.VendorTypeAccountant:
		return promptStrategy{
			searchQueries: []string{
				fmt.Sprintf("accountants %s", city),
				fmt.Sprintf("small business accountant %s", city),
			},
			clarification: "Only include accountancy practices serving businesses or individuals. Exclude bookkeeping software vendors and national franchise headquarters pages.",
			checklist: []string{
				"Are services (tax, payroll, VAT, audit) individually described?",
				"Are professional body memberships (ICAEW, ACCA) visible?",
				"Is there sector specialisation content?",
				"Are fixed-fee packages published?",
			},
			scoringHints: "Weight contentAuthority and structuredData highly: accountancy queries are service-specific.",
			gapHints:     "Typical gaps: no package pricing, no sector pages, no accreditation schema.",
		}
	case domain.VendorTypeMortgageAdvisor:
		return promptStrategy{
			searchQueries: []string{
				fmt.Sprintf("mortgage advisor %s", city),
				fmt.Sprintf("mortgage broker %s whole of market", city),
			},
			clarification: "Only include FCA-authorised mortgage advisors or brokers. Exclude lenders' own sites and comparison aggregators.",
			checklist: []string{
				"Is FCA authorisation stated with the register number?",
				"Is whole-of-market vs tied status clear?",
				"Are specialisms (first-time buyer, buy-to-let) described?",
				"Are typical fees disclosed?",
			},
			scoringHints: "Weight reviewSignals and localRelevance highly: advice is trust- and area-driven.",
			gapHints:     "Typical gaps: no FCA number on page, no fee disclosure, no specialism pages.",
		}
	case domain.VendorTypeEstateAgent:
		return promptStrategy{
			searchQueries: []string{
				fmt.Sprintf("estate agents %s", city),
				fmt.Sprintf("letting agents %s fees", city),
			},
			clarification: "Only include estate or letting agencies operating branches. Exclude property portals (Rightmove, Zoopla) and developers.",
			checklist: []string{
				"Are sales and lettings fees published?",
				"Is redress-scheme membership (TPO, PRS) visible?",
				"Are branch addresses and opening hours listed?",
				"Is there local market commentary or sold-price content?",
			},
			scoringHints: "Weight localRelevance and directoryPresence highly: agency searches are postcode-led.",
			gapHints:     "Typical gaps: no fees page, no redress scheme mention, no local market content.",
		}
	default:
		return promptStrategy{
			searchQueries: []string{
				fmt.Sprintf("%s %s", industry, city),
				fmt.Sprintf("best %s companies %s", industry, city),
			},
			clarification: "Only include companies that directly provide this product or service to business customers in the stated area.",
			checklist: []string{
				"Does the site clearly state what the company does and for whom?",
				"Is there verifiable contact and location information?",
				"Is there evidence of real trading (case studies, reviews, news)?",
			},
			scoringHints: "Score conservatively when evidence is thin.",
			gapHints:     "Typical gaps: vague proposition, missing structured data, no review presence.",
		}
	}
}

// reportJSONSchema documents the exact object the model must return. Kept as
// a literal so prompt and parser stay in sync.
const reportJSONSchema = `{
  "aiMentioned": boolean,
  "aiPosition": "first" | "top3" | "mentioned" | "",
  "aiRecommendations": [string],
  "score": number (0-100),
  "scoreBreakdown": {
    "websiteOptimisation": number (0-17),
    "contentAuthority": number (0-17),
    "directoryPresence": number (0-17),
    "reviewSignals": number (0-17),
    "localRelevance": number (0-17),
    "structuredData": number (0-17)
  },
  "searchedCompany": {
    "websiteFound": boolean,
    "hasSchema": boolean,
    "hasFAQ": boolean,
    "hasReviews": boolean,
    "listedInDirectories": boolean,
    "hasLocalPresence": boolean,
    "mentionedByAI": boolean,
    "recentContent": boolean,
    "website": string,
    "summary": string
  },
  "competitors": [
    {"name": string, "description": string, "reason": string, "website": string, "strengths": [string, max 5]}
  ],
  "gaps": [
    {"title": string, "explanation": string}
  ]
}`

// ComposeResearchPrompt builds the deterministic web-search prompt for the
// primary provider.
func ComposeResearchPrompt(req domain.ReportRequest) string {
	vt := domain.VendorTypeForCategory(req.Category)
	strat := strategyFor(vt, req.Category, req.CustomIndustry, req.City)

	var b strings.Builder
	fmt.Fprintf(&b, "You are auditing the AI-search visibility of %q, a %s business in %s, UK.\n\n", req.CompanyName, displayIndustry(req), req.City)
	fmt.Fprintf(&b, "Step 1: Search the web for %q %s to assess the company's own presence.\n", req.CompanyName, req.City)
	b.WriteString("Step 2: Search the web for competitors using these queries:\n")
	for _, q := range strat.searchQueries {
		fmt.Fprintf(&b, "  - %q\n", q)
	}
	fmt.Fprintf(&b, "\nCritical clarification: %s\n\n", strat.clarification)
	b.WriteString("Assess the searched company against this checklist:\n")
	for _, item := range strat.checklist {
		fmt.Fprintf(&b, "  - %s\n", item)
	}
	fmt.Fprintf(&b, "\nScoring guidance: %s\n", strat.scoringHints)
	fmt.Fprintf(&b, "Gap guidance: %s\n\n", strat.gapHints)
	b.WriteString("Return ONLY one JSON object matching this schema exactly. No markdown fences, no commentary before or after:\n")
	b.WriteString(reportJSONSchema)
	return b.String()
}

// ComposeFallbackPrompt rewrites the research prompt for a provider without
// web search: the search instructions are dropped and the model answers from
// its own knowledge.
func ComposeFallbackPrompt(req domain.ReportRequest) (system, prompt string) {
	vt := domain.VendorTypeForCategory(req.Category)
	strat := strategyFor(vt, req.Category, req.CustomIndustry, req.City)

	var b strings.Builder
	fmt.Fprintf(&b, "Assess the AI-search visibility of %q, a %s business in %s, UK, using your existing knowledge of the market.\n\n", req.CompanyName, displayIndustry(req), req.City)
	fmt.Fprintf(&b, "Critical clarification: %s\n\n", strat.clarification)
	b.WriteString("Consider this checklist:\n")
	for _, item := range strat.checklist {
		fmt.Fprintf(&b, "  - %s\n", item)
	}
	fmt.Fprintf(&b, "\nScoring guidance: %s\n", strat.scoringHints)
	fmt.Fprintf(&b, "Gap guidance: %s\n\n", strat.gapHints)
	b.WriteString("Return ONLY one JSON object matching this schema exactly:\n")
	b.WriteString(reportJSONSchema)

	return "You respond with a single bare JSON object. Never use markdown fences. Never add prose.", b.String()
}

func displayIndustry(req domain.ReportRequest) string {
	if domain.VendorTypeForCategory(req.Category) == domain.VendorTypeOther && req.CustomIndustry != "" {
		return req.CustomIndustry
	}
	return req.Category
}
