package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/agriplanner/internal/config"
	"github.com/mamadbah2/agriplanner/internal/metrics"
	"github.com/mamadbah2/agriplanner/internal/server/handlers"
	"github.com/mamadbah2/agriplanner/internal/server/middleware"
)

// Handlers groups the HTTP adapters mounted by the router.
type Handlers struct {
	Auth         *handlers.AuthHandler
	Prices       *handlers.PriceHandler
	Calculations *handlers.CalculationHandler
	Profile      *handlers.ProfileHandler
	Info         *handlers.InfoHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, tokens middleware.TokenParser, authCfg config.AuthConfig, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger, m))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	authGroup := r.Group("/auth", middleware.RateLimit(authCfg.LoginRatePerMinute, authCfg.LoginRateBurst))
	authGroup.POST("/signup", h.Auth.SignUp)
	authGroup.POST("/login", h.Auth.Login)

	api := r.Group("/api", middleware.RequireAuth(tokens))
	api.GET("/prices", h.Prices.List)

	calcs := api.Group("/calculations")
	calcs.POST("/evaluate", h.Calculations.Evaluate)
	calcs.POST("/advice", h.Calculations.Advise)
	calcs.POST("", h.Calculations.Create)
	calcs.GET("", h.Calculations.List)
	calcs.DELETE("/:id", h.Calculations.Delete)
	calcs.POST("/:id/share", h.Calculations.Share)

	api.GET("/profile", h.Profile.Get)
	api.PUT("/profile", h.Profile.Update)

	api.GET("/checklist", h.Info.Checklist)
	api.GET("/risks", h.Info.Risks)
	api.GET("/alerts", h.Info.Alerts)
	api.POST("/alerts", h.Info.CreateAlert)

	logger.Info("router initialized", zap.Int("routes", len(r.Routes())))

	return r
}
