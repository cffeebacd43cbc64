package http

import (
	"net/http"
	"time"

	"tendorai/internal/config"
	"tendorai/internal/domain"
	"tendorai/internal/infra/cachemem"
	"tendorai/internal/infra/db"
	"tendorai/internal/infra/fetch"
	"tendorai/internal/infra/llm"
	"tendorai/internal/infra/ratelimit"
	"tendorai/internal/infra/token"
	"tendorai/internal/usecase"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.Config
	store  *db.Store
	r      *gin.Engine
	logger *zap.Logger

	audits     *usecase.AuditService
	visibility *usecase.VisibilityService
	mentions   *usecase.MentionInsights
	reports    *usecase.ReportGenerator
	vendors    usecase.VendorRepository
	unsub      UnsubscribeVerifier

	rateLimiter      domain.RateLimiter
	reportRateLimit  int
	reportRateWindow time.Duration
}

// UnsubscribeVerifier resolves a signed unsubscribe token to its vendor id.
type UnsubscribeVerifier interface {
	Verify(tokenString string) (string, error)
}

func NewServer(cfg config.Config, store *db.Store, logger *zap.Logger) (*Server, error) {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{cfg: cfg, store: store, r: r, logger: logger}
	if err := s.initDeps(); err != nil {
		return nil, err
	}
	s.routes()
	return s, nil
}

// ServerDeps lets tests assemble a server from fakes.
type ServerDeps struct {
	Audits     *usecase.AuditService
	Visibility *usecase.VisibilityService
	Mentions   *usecase.MentionInsights
	Reports    *usecase.ReportGenerator
	Vendors    usecase.VendorRepository
	Unsub      UnsubscribeVerifier
	Limiter    domain.RateLimiter
}

func NewServerWithDeps(cfg config.Config, deps ServerDeps, logger *zap.Logger) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		cfg:        cfg,
		r:          r,
		logger:     logger,
		audits:     deps.Audits,
		visibility: deps.Visibility,
		mentions:   deps.Mentions,
		reports:    deps.Reports,
		vendors:    deps.Vendors,
		unsub:      deps.Unsub,
	}
	s.initRateLimit(deps.Limiter)
	s.routes()
	return s
}

func (s *Server) initDeps() error {
	vendorRepo := db.NewVendorRepository(s.store.DB)
	productRepo := db.NewProductRepository(s.store.DB)
	auditRepo := db.NewAuditRepository(s.store.DB)
	mentionRepo := db.NewMentionRepository(s.store.DB)
	reportRepo := db.NewReportRepository(s.store.DB)

	s.vendors = vendorRepo
	s.audits = usecase.NewAuditService(vendorRepo, auditRepo, fetch.NewPageFetcher(s.logger), s.logger)
	s.visibility = usecase.NewVisibilityService(vendorRepo, productRepo, mentionRepo)
	s.mentions = usecase.NewMentionInsights(vendorRepo, mentionRepo)

	var primary usecase.SearchChat
	if s.cfg.AnthropicAPIKey != "" {
		primary = llm.NewAnthropicClient(s.cfg.AnthropicAPIKey, s.cfg.AnthropicModel, s.logger)
	}
	var fallback usecase.PlainChat
	if s.cfg.OpenAIAPIKey != "" {
		fallback = llm.NewOpenAIClient(s.cfg.OpenAIAPIKey, s.cfg.OpenAIModel, s.logger)
	}
	if primary != nil || fallback != nil {
		gen, err := usecase.NewReportGenerator(primary, fallback, vendorRepo, reportRepo, cachemem.New(), s.logger)
		if err != nil {
			return err
		}
		s.reports = gen
	}

	signer, err := token.NewUnsubscribeSigner(s.cfg.EmailSigningKey)
	if err != nil {
		s.logger.Warn("unsubscribe endpoint disabled", zap.Error(err))
	} else {
		s.unsub = signer
	}

	s.initRateLimit(nil)
	return nil
}

func (s *Server) initRateLimit(override domain.RateLimiter) {
	if override != nil {
		s.rateLimiter = override
	}
	if s.rateLimiter == nil && s.cfg.ReportRateLimit > 0 {
		if s.cfg.RedisAddr != "" {
			if limiter, err := ratelimit.NewRedisLimiter(s.cfg.RedisAddr, s.cfg.RedisPassword, s.cfg.RedisDB, nil); err == nil {
				s.rateLimiter = limiter
			}
		}
		if s.rateLimiter == nil {
			s.rateLimiter = ratelimit.NewMemoryLimiter(ratelimit.MemoryLimiterConfig{
				MaxKeys: s.cfg.RateLimitMaxKeys,
			})
		}
	}
	s.reportRateLimit = s.cfg.ReportRateLimit
	if s.cfg.ReportRateWindowSecs > 0 {
		s.reportRateWindow = time.Duration(s.cfg.ReportRateWindowSecs) * time.Second
	}
}

func (s *Server) routes() {
	s.r.GET("/healthz", func(c *gin.Context) {
		dbMode := "no-db"
		if s.store != nil && s.store.DB != nil {
			dbMode = "db"
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "mode": dbMode})
	})

	api := s.r.Group("/api")

	vendors := api.Group("/vendors", s.requireVendor)
	{
		vendors.POST("/aeo/audit", s.handleRunAudit)
		vendors.GET("/aeo/audit/latest", s.handleLatestAudit)
		vendors.GET("/aeo/audit/history", s.handleAuditHistory)
		vendors.GET("/visibility/score", s.handleVisibilityScore)
		vendors.GET("/visibility/breakdown", s.handleVisibilityBreakdown)
		vendors.GET("/visibility/recommendations", s.handleVisibilityRecommendations)
		vendors.GET("/mentions/summary", s.handleMentionSummary)
		vendors.GET("/mentions/competitors", s.handleMentionCompetitors)
	}

	public := api.Group("/public")
	{
		public.POST("/aeo-report", s.reportRateLimitMiddleware, s.handlePublicReport)
		public.GET("/unsubscribe", s.handleUnsubscribe)
	}

	s.r.NoRoute(s.handleNoRoute)
}

func (s *Server) Run() error {
	return s.r.Run(s.cfg.HTTPAddr)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.r
}
