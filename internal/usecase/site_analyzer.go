package usecase

import (
	"fmt"
	"regexp"
	"strings"

	"tendorai/internal/domain"

	"golang.org/x/net/html"
)

// SiteAnalyzer scores a single page of static HTML across the ten AEO signal
// categories. It is deterministic and side-effect free; malformed HTML
// degrades to partial scores rather than errors.
type SiteAnalyzer struct{}

const checkMaxScore = 10

var (
	jsonLDRe      = regexp.MustCompile(`(?is)<script[^>]*type\s*=\s*["']application/ld\+json["'][^>]*>(.*?)</script>`)
	titleRe       = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	metaDescRe    = regexp.MustCompile(`(?is)<meta[^>]+name\s*=\s*["']description["'][^>]*>`)
	metaContentRe = regexp.MustCompile(`(?is)content\s*=\s*["']([^"']*)["']`)
	h1Re          = regexp.MustCompile(`(?is)<h1[^>]*>`)
	viewportRe    = regexp.MustCompile(`(?is)<meta[^>]+name\s*=\s*["']viewport["']`)

	phoneRe    = regexp.MustCompile(`(?:\+44\s?\d|\(?0\d{2,4}\)?[\s-]?)\d[\d\s-]{6,}\d`)
	emailRe    = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	postcodeRe = regexp.MustCompile(`(?i)\b[A-Z]{1,2}\d[A-Z\d]?\s*\d[A-Z]{2}\b`)
	streetRe   = regexp.MustCompile(`(?i)\b\d+[\w\s,]*\b(street|road|lane|avenue|close|drive|way|court|place)\b`)

	faqSchemaRe  = regexp.MustCompile(`(?i)["']@type["']\s*:\s*["']FAQPage["']`)
	faqVisibleRe = regexp.MustCompile(`(?i)(?:id|class)\s*=\s*["'][^"']*faq[^"']*["']|frequently\s+asked\s+questions`)

	tendoraiRefRe    = regexp.MustCompile(`(?i)tendorai\.(?:com|co\.uk)|schema\.tendorai`)
	tendoraiScriptRe = regexp.MustCompile(`(?i)<script[^>]+src\s*=\s*["'][^"']*schema\.tendorai[^"']*["']`)
	tagRe            = regexp.MustCompile(`<[^>]*>`)
)

var socialHosts = []*regexp.Regexp{
	regexp.MustCompile(`(?i)facebook\.com`),
	regexp.MustCompile(`(?i)twitter\.com|//(?:www\.)?x\.com/`),
	regexp.MustCompile(`(?i)linkedin\.com`),
	regexp.MustCompile(`(?i)instagram\.com`),
	regexp.MustCompile(`(?i)youtube\.com|youtu\.be`),
}

// Analyze runs the ten checks in their stable order and sums their scores.
func (SiteAnalyzer) Analyze(rawHTML, pageURL string) domain.AuditOutcome {
	checks := []domain.AuditCheck{
		checkSchema(rawHTML),
		checkMeta(rawHTML),
		checkHeadings(rawHTML),
		checkViewport(rawHTML),
		checkSSL(pageURL),
		checkSpeed(rawHTML),
		checkSocial(rawHTML),
		checkContact(rawHTML),
		checkFAQ(rawHTML),
		checkContent(rawHTML),
	}

	total := 0
	var recs []string
	seen := map[string]bool{}
	for _, c := range checks {
		total += c.Score
		if !c.Passed && c.Recommendation != "" && !seen[c.Recommendation] {
			seen[c.Recommendation] = true
			recs = append(recs, c.Recommendation)
		}
	}

	return domain.AuditOutcome{
		OverallScore:           total,
		Checks:                 checks,
		Recommendations:        recs,
		TendoraiSchemaDetected: detectTendoraiSchema(rawHTML),
	}
}

func checkSchema(rawHTML string) domain.AuditCheck {
	blocks := jsonLDRe.FindAllString(rawHTML, -1)
	score := 0
	switch {
	case len(blocks) >= 3:
		score = 10
	case len(blocks) == 2:
		score = 8
	case len(blocks) == 1:
		score = 5
	}
	c := domain.AuditCheck{
		Name:     "Schema.org structured data",
		Key:      domain.CheckSchema,
		Score:    score,
		MaxScore: checkMaxScore,
		Passed:   score >= 5,
		Details:  fmt.Sprintf("%d JSON-LD block(s) found", len(blocks)),
	}
	if !c.Passed {
		c.Recommendation = "Add Schema.org JSON-LD markup (LocalBusiness, Service, FAQPage) so AI assistants can read your business data directly."
	}
	return c
}

func checkMeta(rawHTML string) domain.AuditCheck {
	title := ""
	if m := titleRe.FindStringSubmatch(rawHTML); m != nil {
		title = strings.TrimSpace(stripTags(m[1]))
	}
	desc := ""
	if m := metaDescRe.FindString(rawHTML); m != "" {
		if cm := metaContentRe.FindStringSubmatch(m); cm != nil {
			desc = strings.TrimSpace(cm[1])
		}
	}

	score := 0
	switch {
	case len(title) >= 20 && len(title) <= 70:
		score += 5
	case title != "":
		score += 2
	}
	switch {
	case len(desc) >= 50 && len(desc) <= 160:
		score += 5
	case desc != "":
		score += 2
	}

	c := domain.AuditCheck{
		Name:     "Meta title and description",
		Key:      domain.CheckMeta,
		Score:    score,
		MaxScore: checkMaxScore,
		Passed:   score >= 7,
		Details:  fmt.Sprintf("title %d chars, description %d chars", len(title), len(desc)),
	}
	if !c.Passed {
		c.Recommendation = "Write a 20-70 character title and a 50-160 character meta description that state what you do and where."
	}
	return c
}

func checkHeadings(rawHTML string) domain.AuditCheck {
	count := len(h1Re.FindAllString(rawHTML, -1))
	score := 0
	switch {
	case count == 1:
		score = 10
	case count > 1:
		score = 6
	}
	c := domain.AuditCheck{
		Name:     "H1 heading",
		Key:      domain.CheckHeadings,
		Score:    score,
		MaxScore: checkMaxScore,
		Passed:   score >= 6,
		Details:  fmt.Sprintf("%d H1 heading(s)", count),
	}
	if !c.Passed {
		c.Recommendation = "Add exactly one H1 heading that names your service and location."
	}
	return c
}

func checkViewport(rawHTML string) domain.AuditCheck {
	found := viewportRe.MatchString(rawHTML)
	score := 0
	details := "no viewport meta tag"
	if found {
		score = 10
		details = "viewport meta tag present"
	}
	c := domain.AuditCheck{
		Name:     "Mobile viewport",
		Key:      domain.CheckViewport,
		Score:    score,
		MaxScore: checkMaxScore,
		Passed:   found,
		Details:  details,
	}
	if !c.Passed {
		c.Recommendation = "Add a viewport meta tag so the page renders correctly on mobile devices."
	}
	return c
}

func checkSSL(pageURL string) domain.AuditCheck {
	secure := strings.HasPrefix(strings.ToLower(pageURL), "https://")
	score := 0
	details := "site is not served over HTTPS"
	if secure {
		score = 10
		details = "site served over HTTPS"
	}
	c := domain.AuditCheck{
		Name:     "HTTPS",
		Key:      domain.CheckSSL,
		Score:    score,
		MaxScore: checkMaxScore,
		Passed:   secure,
		Details:  details,
	}
	if !c.Passed {
		c.Recommendation = "Serve your site over HTTPS; AI assistants discount insecure sources."
	}
	return c
}

func checkSpeed(rawHTML string) domain.AuditCheck {
	kb := len(rawHTML) / 1024
	score := 1
	switch {
	case kb < 100:
		score = 10
	case kb < 200:
		score = 8
	case kb < 500:
		score = 5
	case kb < 1000:
		score = 3
	}
	c := domain.AuditCheck{
		Name:     "Page weight",
		Key:      domain.CheckSpeed,
		Score:    score,
		MaxScore: checkMaxScore,
		Passed:   score >= 5,
		Details:  fmt.Sprintf("HTML payload is %d kB", kb),
	}
	if !c.Passed {
		c.Recommendation = "Reduce page weight below 500 kB of HTML; heavy pages are truncated by crawlers."
	}
	return c
}

func checkSocial(rawHTML string) domain.AuditCheck {
	count := 0
	for _, re := range socialHosts {
		if re.MatchString(rawHTML) {
			count++
		}
	}
	score := 0
	switch {
	case count >= 4:
		score = 10
	case count == 3:
		score = 8
	case count == 2:
		score = 5
	case count == 1:
		score = 3
	}
	c := domain.AuditCheck{
		Name:     "Social profiles",
		Key:      domain.CheckSocial,
		Score:    score,
		MaxScore: checkMaxScore,
		Passed:   score >= 5,
		Details:  fmt.Sprintf("%d social platform link(s) found", count),
	}
	if !c.Passed {
		c.Recommendation = "Link at least two active social profiles (LinkedIn and Facebook at minimum) to corroborate your business identity."
	}
	return c
}

func checkContact(rawHTML string) domain.AuditCheck {
	count := 0
	if phoneRe.MatchString(rawHTML) {
		count++
	}
	if emailRe.MatchString(rawHTML) {
		count++
	}
	if postcodeRe.MatchString(rawHTML) || streetRe.MatchString(rawHTML) {
		count++
	}
	score := 0
	switch {
	case count == 3:
		score = 10
	case count == 2:
		score = 7
	case count == 1:
		score = 4
	}
	c := domain.AuditCheck{
		Name:     "Contact information",
		Key:      domain.CheckContact,
		Score:    score,
		MaxScore: checkMaxScore,
		Passed:   score >= 7,
		Details:  fmt.Sprintf("%d of 3 contact signals (phone, email, address)", count),
	}
	if !c.Passed {
		c.Recommendation = "Publish phone, email and a full postal address on the page; assistants prefer verifiable businesses."
	}
	return c
}

func checkFAQ(rawHTML string) domain.AuditCheck {
	score := 0
	details := "no FAQ content found"
	switch {
	case faqSchemaRe.MatchString(rawHTML):
		score = 10
		details = "FAQPage schema present"
	case faqVisibleRe.MatchString(rawHTML):
		score = 6
		details = "visible FAQ section without schema"
	}
	c := domain.AuditCheck{
		Name:     "FAQ content",
		Key:      domain.CheckFAQ,
		Score:    score,
		MaxScore: checkMaxScore,
		Passed:   score >= 6,
		Details:  details,
	}
	if !c.Passed {
		c.Recommendation = "Add an FAQ section with FAQPage schema; question-and-answer content is quoted verbatim by AI assistants."
	}
	return c
}

func checkContent(rawHTML string) domain.AuditCheck {
	words := countWords(rawHTML)
	score := 1
	switch {
	case words >= 1000:
		score = 10
	case words >= 500:
		score = 8
	case words >= 300:
		score = 5
	case words >= 100:
		score = 3
	}
	c := domain.AuditCheck{
		Name:     "Content length",
		Key:      domain.CheckContentLength,
		Score:    score,
		MaxScore: checkMaxScore,
		Passed:   score >= 5,
		Details:  fmt.Sprintf("approximately %d words of visible text", words),
	}
	if !c.Passed {
		c.Recommendation = "Expand page copy to 300+ words describing your services, coverage area and credentials."
	}
	return c
}

func detectTendoraiSchema(rawHTML string) bool {
	for _, m := range jsonLDRe.FindAllStringSubmatch(rawHTML, -1) {
		if tendoraiRefRe.MatchString(m[1]) {
			return true
		}
	}
	// Script tags loading the hosted schema snippet count as well.
	return tendoraiScriptRe.MatchString(rawHTML)
}

// countWords extracts visible text with a tolerant tokenizer walk, skipping
// script and style bodies.
func countWords(rawHTML string) int {
	if strings.TrimSpace(rawHTML) == "" {
		return 0
	}
	tz := html.NewTokenizer(strings.NewReader(rawHTML))
	words := 0
	skipDepth := 0
	for {
		tt := tz.Next()
		switch tt {
		case html.ErrorToken:
			return words
		case html.StartTagToken:
			name, _ := tz.TagName()
			switch string(name) {
			case "script", "style", "noscript":
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := tz.TagName()
			switch string(name) {
			case "script", "style", "noscript":
				if skipDepth > 0 {
					skipDepth--
				}
			}
		case html.TextToken:
			if skipDepth == 0 {
				words += len(strings.Fields(string(tz.Text())))
			}
		}
	}
}

func stripTags(s string) string {
	return tagRe.ReplaceAllString(s, "")
}
