package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tendorai/internal/config"
	"tendorai/internal/domain"
	"tendorai/internal/infra/ratelimit"
	"tendorai/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testSigningKey = "test-auth-key"

type stubVendors struct {
	vendors      map[string]*domain.Vendor
	unsubscribed map[string]bool
}

func (s *stubVendors) GetByID(_ context.Context, id string) (*domain.Vendor, error) {
	v, ok := s.vendors[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *v
	return &copied, nil
}

func (s *stubVendors) CountByPracticeArea(context.Context, string, string, string) (int, error) {
	return 0, nil
}

func (s *stubVendors) CountByService(context.Context, string, string) (int, error) {
	return 0, nil
}

func (s *stubVendors) ListDigestEligible(context.Context) ([]domain.Vendor, error) {
	return nil, nil
}

func (s *stubVendors) SetUnsubscribed(_ context.Context, vendorID string, unsubscribed bool) error {
	if _, ok := s.vendors[vendorID]; !ok {
		return domain.ErrNotFound
	}
	if s.unsubscribed == nil {
		s.unsubscribed = map[string]bool{}
	}
	s.unsubscribed[vendorID] = unsubscribed
	return nil
}

type stubProducts struct{}

func (stubProducts) ListByVendor(context.Context, string) ([]domain.VendorProduct, error) {
	return nil, nil
}

type stubAudits struct {
	latest  *domain.AeoAudit
	created []domain.AeoAudit
}

func (s *stubAudits) Create(_ context.Context, audit domain.AeoAudit) (*domain.AeoAudit, error) {
	if audit.ID == "" {
		audit.ID = "audit-1"
	}
	s.created = append(s.created, audit)
	s.latest = &audit
	return &audit, nil
}

func (s *stubAudits) LatestByVendor(context.Context, string) (*domain.AeoAudit, error) {
	if s.latest == nil {
		return nil, domain.ErrNotFound
	}
	return s.latest, nil
}

func (s *stubAudits) HistoryByVendor(context.Context, string, int) ([]domain.AeoAudit, error) {
	if s.latest == nil {
		return nil, nil
	}
	return []domain.AeoAudit{*s.latest}, nil
}

type stubMentions struct{}

func (stubMentions) Count(context.Context, string, domain.MentionCountFilter) (int, error) {
	return 0, nil
}

func (stubMentions) ListLatest(context.Context, string, bool, int) ([]domain.AIMentionScan, error) {
	return nil, nil
}

func (stubMentions) AggregateByWeek(context.Context, string, time.Time) ([]domain.WeeklyMentions, error) {
	return nil, nil
}

func (stubMentions) RankInCategory(context.Context, string, string, string, time.Time) (domain.CategoryRank, error) {
	return domain.CategoryRank{}, nil
}

func (stubMentions) UniqueCompetitorCount(context.Context, string, time.Time) (int, error) {
	return 0, nil
}

type stubFetcher struct{ html string }

func (s stubFetcher) Fetch(_ context.Context, rawURL string) (string, string, error) {
	return s.html, rawURL, nil
}

type stubVerifier struct {
	vendorID string
	err      error
}

func (s stubVerifier) Verify(string) (string, error) {
	return s.vendorID, s.err
}

type serverFixture struct {
	srv     *Server
	vendors *stubVendors
	audits  *stubAudits
}

func newTestServer(t *testing.T, mutate func(*ServerDeps)) *serverFixture {
	t.Helper()
	vendors := &stubVendors{vendors: map[string]*domain.Vendor{
		"v1": {
			ID:       "v1",
			Name:     "Acme Copiers",
			Email:    "sales@acme.example",
			Website:  "https://acme.example",
			Services: []string{"Photocopiers"},
			Tier:     domain.TierListed,
			Status:   domain.VendorActive,
		},
	}}
	audits := &stubAudits{}
	logger := zap.NewNop()

	deps := ServerDeps{
		Audits:     usecase.NewAuditService(vendors, audits, stubFetcher{html: "<html><body>hello world</body></html>"}, logger),
		Visibility: usecase.NewVisibilityService(vendors, stubProducts{}, stubMentions{}),
		Mentions:   usecase.NewMentionInsights(vendors, stubMentions{}),
		Vendors:    vendors,
		Unsub:      stubVerifier{vendorID: "v1"},
	}
	if mutate != nil {
		mutate(&deps)
	}

	cfg := config.Config{AuthSigningKey: testSigningKey}
	srv := NewServerWithDeps(cfg, deps, logger)
	return &serverFixture{srv: srv, vendors: vendors, audits: audits}
}

func mintToken(t *testing.T, key, vendorID string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"vendorId": vendorID,
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte(key))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func doRequest(t *testing.T, srv *Server, method, path, bearer, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealthz(t *testing.T) {
	fx := newTestServer(t, nil)
	rec := doRequest(t, fx.srv, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["status"] != "ok" || body["mode"] != "no-db" {
		t.Fatalf("body = %v", body)
	}
}

func TestVendorRoutesRequireAuth(t *testing.T) {
	fx := newTestServer(t, nil)

	rec := doRequest(t, fx.srv, http.MethodGet, "/api/vendors/visibility/score", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token status = %d, want 401", rec.Code)
	}
	if body := decodeBody(t, rec); body["code"] != "UNAUTHORIZED" {
		t.Fatalf("code = %v", body["code"])
	}

	wrongKey := mintToken(t, "some-other-key", "v1")
	rec = doRequest(t, fx.srv, http.MethodGet, "/api/vendors/visibility/score", wrongKey, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("forged token status = %d, want 401", rec.Code)
	}
}

func TestSubjectClaimFallback(t *testing.T) {
	fx := newTestServer(t, nil)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "v1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte(testSigningKey))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	rec := doRequest(t, fx.srv, http.MethodGet, "/api/vendors/visibility/score", signed, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestRunAudit(t *testing.T) {
	fx := newTestServer(t, nil)
	token := mintToken(t, testSigningKey, "v1")

	rec := doRequest(t, fx.srv, http.MethodPost, "/api/vendors/aeo/audit", token, `{"url":"https://acme.example"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["websiteUrl"] != "https://acme.example" {
		t.Fatalf("websiteUrl = %v", body["websiteUrl"])
	}
	checks, ok := body["checks"].([]any)
	if !ok || len(checks) != 10 {
		t.Fatalf("checks = %v, want all 10", body["checks"])
	}
	if len(fx.audits.created) != 1 {
		t.Fatalf("persisted %d audits, want 1", len(fx.audits.created))
	}
}

func TestRunAuditFreeTierGate(t *testing.T) {
	fx := newTestServer(t, nil)
	token := mintToken(t, testSigningKey, "v1")

	first := doRequest(t, fx.srv, http.MethodPost, "/api/vendors/aeo/audit", token, "")
	if first.Code != http.StatusOK {
		t.Fatalf("first audit status = %d: %s", first.Code, first.Body.String())
	}

	second := doRequest(t, fx.srv, http.MethodPost, "/api/vendors/aeo/audit", token, "")
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second audit status = %d, want 429", second.Code)
	}
	body := decodeBody(t, second)
	if body["limited"] != true || body["success"] != false {
		t.Fatalf("body = %v", body)
	}
	if body["upgradeUrl"] != "/pricing" {
		t.Fatalf("upgradeUrl = %v, want /pricing for a free account", body["upgradeUrl"])
	}
	if _, present := body["nextAvailable"]; present {
		t.Fatalf("free gate carries nextAvailable: %v", body)
	}
}

func TestVisibilityEndpoints(t *testing.T) {
	fx := newTestServer(t, nil)
	token := mintToken(t, testSigningKey, "v1")

	rec := doRequest(t, fx.srv, http.MethodGet, "/api/vendors/visibility/score", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("score status = %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["maxScore"] != float64(100) {
		t.Fatalf("maxScore = %v, want 100", body["maxScore"])
	}
	if body["tier"] != "listed" || body["tierDisplayName"] != "Listed" {
		t.Fatalf("tier fields = %v / %v", body["tier"], body["tierDisplayName"])
	}

	rec = doRequest(t, fx.srv, http.MethodGet, "/api/vendors/visibility/recommendations", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("recommendations status = %d", rec.Code)
	}
	body = decodeBody(t, rec)
	recs, ok := body["recommendations"].([]any)
	if !ok || len(recs) == 0 {
		t.Fatalf("recommendations = %v, want a non-empty list for a thin profile", body["recommendations"])
	}
	milestone, ok := body["nextMilestone"].(float64)
	if !ok || milestone <= 0 {
		t.Fatalf("nextMilestone = %v, want a positive milestone", body["nextMilestone"])
	}
}

func TestMentionSummaryLockedForFreeTier(t *testing.T) {
	fx := newTestServer(t, nil)
	token := mintToken(t, testSigningKey, "v1")

	rec := doRequest(t, fx.srv, http.MethodGet, "/api/vendors/mentions/summary", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["locked"] != true {
		t.Fatalf("locked = %v, want true for listed tier", body["locked"])
	}
}

func TestPublicReportDisabledAndRateLimited(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	limiter := ratelimit.NewMemoryLimiter(ratelimit.MemoryLimiterConfig{
		Now: func() time.Time { return now },
	})

	vendors := &stubVendors{vendors: map[string]*domain.Vendor{}}
	logger := zap.NewNop()
	cfg := config.Config{
		AuthSigningKey:       testSigningKey,
		ReportRateLimit:      2,
		ReportRateWindowSecs: 3600,
	}
	srv := NewServerWithDeps(cfg, ServerDeps{
		Mentions: usecase.NewMentionInsights(vendors, stubMentions{}),
		Vendors:  vendors,
		Limiter:  limiter,
	}, logger)

	payload := `{"companyName":"Acme","category":"photocopiers","city":"Manchester"}`

	// No LLM provider configured: the handler refuses, but each attempt
	// still consumes the caller's window.
	for i := 0; i < 2; i++ {
		rec := doRequest(t, srv, http.MethodPost, "/api/public/aeo-report", "", payload)
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("attempt %d status = %d, want 503", i, rec.Code)
		}
		if body := decodeBody(t, rec); body["code"] != "REPORTS_DISABLED" {
			t.Fatalf("code = %v", body["code"])
		}
	}

	rec := doRequest(t, srv, http.MethodPost, "/api/public/aeo-report", "", payload)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("limited status = %d, want 429", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["limited"] != true || body["success"] != false {
		t.Fatalf("limited body = %v", body)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("missing Retry-After header")
	}
}

func TestUnsubscribe(t *testing.T) {
	fx := newTestServer(t, nil)

	rec := doRequest(t, fx.srv, http.MethodGet, "/api/public/unsubscribe?token=abc", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "You're unsubscribed") {
		t.Fatalf("confirmation page missing: %s", rec.Body.String())
	}
	if !fx.vendors.unsubscribed["v1"] {
		t.Fatalf("vendor not flagged as unsubscribed")
	}
}

func TestUnsubscribeRejectsBadToken(t *testing.T) {
	fx := newTestServer(t, func(deps *ServerDeps) {
		deps.Unsub = stubVerifier{err: domain.ErrValidation}
	})

	rec := doRequest(t, fx.srv, http.MethodGet, "/api/public/unsubscribe?token=tampered", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body := decodeBody(t, rec); body["code"] != "INVALID_REQUEST" {
		t.Fatalf("code = %v", body["code"])
	}
}

func TestNoRoute(t *testing.T) {
	fx := newTestServer(t, nil)
	rec := doRequest(t, fx.srv, http.MethodGet, "/api/nope", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if body := decodeBody(t, rec); body["code"] != "NOT_FOUND" {
		t.Fatalf("code = %v", body["code"])
	}
}
