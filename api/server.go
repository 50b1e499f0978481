// Package api is the HTTP layer. It decodes requests, delegates to the
// calculator and the workflow service, and serializes their results. It
// never computes fees itself.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Sofsavdo/BiznesYordam.uz-sub000/adapters/auth"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/adapters/cache"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/cost"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/workflow"
)

// Deps are the collaborators the server delegates to
type Deps struct {
	Calculator *cost.Calculator
	Workflow   *workflow.Service
	Cache      cache.Cache
	Tokens     *auth.Tokens
	Logger     *zap.Logger
	Version    string
}

// Server is the API server
type Server struct {
	engine   *gin.Engine
	calc     *cost.Calculator
	workflow *workflow.Service
	cache    cache.Cache
	tokens   *auth.Tokens
	logger   *zap.Logger
	version  string
}

// NewServer creates the server and registers every route
func NewServer(deps Deps) *Server {
	if deps.Cache == nil {
		deps.Cache = cache.Nop{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	s := &Server{
		engine:   gin.New(),
		calc:     deps.Calculator,
		workflow: deps.Workflow,
		cache:    deps.Cache,
		tokens:   deps.Tokens,
		logger:   deps.Logger,
		version:  deps.Version,
	}
	s.engine.Use(gin.Recovery(), requestID(), s.accessLog())
	s.registerRoutes()
	return s
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	v1 := s.engine.Group("/api/v1")

	// Public
	v1.GET("/health", s.handleHealth)
	v1.GET("/version", s.handleVersion)
	v1.GET("/tiers", s.handleListTiers)
	v1.GET("/tiers/:id", s.handleGetTier)
	v1.GET("/marketplaces/:mp/commission", s.handleCommission)
	v1.POST("/calculate", s.handleCalculate)
	v1.POST("/analytics/summary", s.handleSummary)
	v1.POST("/partners", s.handleRegisterPartner)

	// Partner
	me := v1.Group("/partners/me", s.authenticate(), requireRole(auth.RolePartner))
	me.GET("", s.handleGetMe)
	me.POST("/calculate", s.handlePartnerCalculate)
	me.POST("/tier-upgrades", s.handleSubmitUpgrade)
	me.GET("/tier-upgrades", s.handleListMyUpgrades)

	// Admin
	admin := v1.Group("/admin", s.authenticate(), requireRole(auth.RoleAdmin))
	admin.GET("/partners", s.handleListPartners)
	admin.POST("/partners/:id/approve", s.handleReviewPartner(workflow.StatusApproved))
	admin.POST("/partners/:id/reject", s.handleReviewPartner(workflow.StatusRejected))
	admin.GET("/tier-upgrades", s.handleListUpgrades)
	admin.POST("/tier-upgrades/:id/approve", s.handleReviewUpgrade(workflow.StatusApproved))
	admin.POST("/tier-upgrades/:id/reject", s.handleReviewUpgrade(workflow.StatusRejected))
}

// handleHealth handles GET /health
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"version": s.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// handleVersion handles GET /version
func (s *Server) handleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":     s.version,
		"engine":      "biznesyordam-pricing",
		"api_version": "v1",
	})
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("api shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
