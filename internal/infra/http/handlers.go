package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"tendorai/internal/domain"
	"tendorai/internal/usecase"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type errorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type runAuditRequest struct {
	URL string `json:"url,omitempty"`
}

type auditResponse struct {
	ID                     string              `json:"id"`
	WebsiteURL             string              `json:"websiteUrl"`
	OverallScore           int                 `json:"overallScore"`
	Checks                 []domain.AuditCheck `json:"checks"`
	Recommendations        []string            `json:"recommendations"`
	TendoraiSchemaDetected bool                `json:"tendoraiSchemaDetected"`
	CreatedAt              time.Time           `json:"createdAt"`
}

type auditStatusResponse struct {
	Audit         *auditResponse `json:"audit,omitempty"`
	CanRunAgain   bool           `json:"canRunAgain"`
	NextAvailable *time.Time     `json:"nextAvailable,omitempty"`
	Tier          string         `json:"tier"`
}

type scoreResponse struct {
	Score           int    `json:"score"`
	MaxScore        int    `json:"maxScore"`
	Label           string `json:"label"`
	Colour          string `json:"colour"`
	NextMilestone   int    `json:"nextMilestone"`
	Tier            string `json:"tier"`
	TierDisplayName string `json:"tierDisplayName"`
}

type publicReportRequest struct {
	CompanyName    string `json:"companyName"`
	Category       string `json:"category"`
	CustomIndustry string `json:"customIndustry,omitempty"`
	City           string `json:"city"`
	Email          string `json:"email,omitempty"`
}

func (s *Server) handleRunAudit(c *gin.Context) {
	vendorID := c.GetString(ctxVendorID)
	var req runAuditRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
			return
		}
	}

	audit, err := s.audits.Run(c.Request.Context(), vendorID, req.URL)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildAuditResponse(audit))
}

func (s *Server) handleLatestAudit(c *gin.Context) {
	status, err := s.audits.Latest(c.Request.Context(), c.GetString(ctxVendorID))
	if err != nil {
		writeError(c, err)
		return
	}
	out := auditStatusResponse{
		CanRunAgain:   status.CanRunAgain,
		NextAvailable: status.NextAvailable,
		Tier:          string(status.Tier),
	}
	if status.Audit != nil {
		resp := buildAuditResponse(status.Audit)
		out.Audit = &resp
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleAuditHistory(c *gin.Context) {
	audits, err := s.audits.History(c.Request.Context(), c.GetString(ctxVendorID))
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]auditResponse, 0, len(audits))
	for i := range audits {
		out = append(out, buildAuditResponse(&audits[i]))
	}
	c.JSON(http.StatusOK, gin.H{"audits": out})
}

func (s *Server) handleVisibilityScore(c *gin.Context) {
	snapshot, err := s.visibility.Snapshot(c.Request.Context(), c.GetString(ctxVendorID))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, scoreResponse{
		Score:           snapshot.Score,
		MaxScore:        snapshot.MaxScore,
		Label:           snapshot.Label,
		Colour:          snapshot.Colour,
		NextMilestone:   snapshot.NextMilestone,
		Tier:            string(snapshot.Tier),
		TierDisplayName: snapshot.TierDisplayName,
	})
}

func (s *Server) handleVisibilityBreakdown(c *gin.Context) {
	snapshot, err := s.visibility.Snapshot(c.Request.Context(), c.GetString(ctxVendorID))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (s *Server) handleVisibilityRecommendations(c *gin.Context) {
	snapshot, err := s.visibility.Snapshot(c.Request.Context(), c.GetString(ctxVendorID))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"score":           snapshot.Score,
		"nextMilestone":   snapshot.NextMilestone,
		"recommendations": snapshot.Recommendations,
	})
}

func (s *Server) handleMentionSummary(c *gin.Context) {
	summary, err := s.mentions.Summary(c.Request.Context(), c.GetString(ctxVendorID))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleMentionCompetitors(c *gin.Context) {
	view, err := s.mentions.Competitors(c.Request.Context(), c.GetString(ctxVendorID))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handlePublicReport(c *gin.Context) {
	if s.reports == nil {
		writeErrorCode(c, http.StatusServiceUnavailable, "REPORTS_DISABLED", "report generation is not configured")
		return
	}
	var req publicReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}

	report, err := s.reports.Generate(c.Request.Context(), domain.ReportRequest{
		CompanyName:    req.CompanyName,
		Category:       req.Category,
		CustomIndustry: req.CustomIndustry,
		City:           req.City,
		Email:          req.Email,
	})
	if err != nil {
		s.logger.Warn("public report failed",
			zap.String("company", req.CompanyName),
			zap.Error(err),
		)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleUnsubscribe(c *gin.Context) {
	if s.unsub == nil {
		writeErrorCode(c, http.StatusServiceUnavailable, "UNSUBSCRIBE_DISABLED", "unsubscribe is not configured")
		return
	}
	vendorID, err := s.unsub.Verify(c.Query("token"))
	if err != nil {
		writeError(c, err)
		return
	}
	if err := s.vendors.SetUnsubscribed(c.Request.Context(), vendorID, true); err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, unsubscribeConfirmationHTML)
}

func (s *Server) handleNoRoute(c *gin.Context) {
	writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "route not found")
}

// reportRateLimitMiddleware caps public report generation per client IP.
func (s *Server) reportRateLimitMiddleware(c *gin.Context) {
	if s.rateLimiter == nil || s.reportRateLimit <= 0 {
		c.Next()
		return
	}
	key := "report:" + c.ClientIP()
	decision, err := s.rateLimiter.Allow(c.Request.Context(), key, s.reportRateLimit, s.reportRateWindow)
	if err != nil {
		// Fail open: a limiter outage should not take down report generation.
		s.logger.Warn("rate limiter unavailable", zap.Error(err))
		c.Next()
		return
	}
	c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
	if !decision.Allowed {
		c.Header("Retry-After", strconv.Itoa(decision.RetryAfter(time.Now())))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"success": false,
			"limited": true,
			"message": "Too many report requests. Please try again later.",
		})
		return
	}
	c.Next()
}

func buildAuditResponse(a *domain.AeoAudit) auditResponse {
	return auditResponse{
		ID:                     a.ID,
		WebsiteURL:             a.WebsiteURL,
		OverallScore:           a.OverallScore,
		Checks:                 a.Checks,
		Recommendations:        a.Recommendations,
		TendoraiSchemaDetected: a.TendoraiSchemaDetected,
		CreatedAt:              a.CreatedAt,
	}
}

func writeError(c *gin.Context, err error) {
	var gateErr *usecase.AuditGateError
	if errors.As(err, &gateErr) {
		body := gin.H{
			"success": false,
			"limited": true,
			"message": gateErr.Message,
		}
		if gateErr.NextAvailable != nil {
			body["nextAvailable"] = gateErr.NextAvailable
		}
		if gateErr.UpgradeHint {
			body["upgradeUrl"] = "/pricing"
		}
		c.AbortWithStatusJSON(http.StatusTooManyRequests, body)
		return
	}

	status, code := http.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrValidation):
		status, code = http.StatusBadRequest, "INVALID_REQUEST"
	case errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrRateLimited):
		status, code = http.StatusTooManyRequests, "RATE_LIMITED"
	case errors.Is(err, domain.ErrUpstreamTemporary):
		status, code = http.StatusUnprocessableEntity, "UPSTREAM_TEMPORARY"
	case errors.Is(err, domain.ErrUpstreamPermanent):
		status, code = http.StatusUnprocessableEntity, "UPSTREAM_PERMANENT"
	case errors.Is(err, domain.ErrConfig):
		status, code = http.StatusInternalServerError, "CONFIG"
	case errors.Is(err, domain.ErrCancelled):
		status, code = 499, "CANCELLED"
	}
	writeErrorCode(c, status, code, err.Error())
}

func writeErrorCode(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorResponse{
		Code:    code,
		Message: message,
	})
}

const unsubscribeConfirmationHTML = `<!DOCTYPE html>
<html>
<body style="font-family:Arial,Helvetica,sans-serif;background-color:#f4f5f7;padding:48px;">
<div style="max-width:480px;margin:0 auto;background:#ffffff;border-radius:8px;padding:32px;text-align:center;">
<h1 style="font-size:20px;color:#1a1f36;">You're unsubscribed</h1>
<p style="font-size:14px;color:#4a5268;">You will no longer receive weekly AI visibility reports from TendorAI.</p>
<p style="font-size:13px;color:#6b7385;">Changed your mind? Re-enable reports any time from your dashboard settings.</p>
</div>
</body>
</html>`
