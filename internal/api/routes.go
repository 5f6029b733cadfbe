package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quantdesk/quantdesk-go/internal/api/handlers"
	"github.com/quantdesk/quantdesk-go/internal/database"
	"github.com/quantdesk/quantdesk-go/internal/middleware"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Services  Services  `json:"services"`
}

type Services struct {
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

// Handlers bundles the route handlers wired by SetupRoutes.
type Handlers struct {
	Backtest     *handlers.BacktestHandler
	Analysis     *handlers.AnalysisHandler
	Risk         *handlers.RiskHandler
	Fundamentals *handlers.FundamentalsHandler
	Ml           *handlers.MlHandler
	Macro        *handlers.MacroHandler
	User         *handlers.UserHandler
	Registry     *handlers.RegistryHandler
}

func SetupRoutes(router *gin.Engine, db *database.PostgresDB, redis *database.RedisClient, auth *middleware.AuthMiddleware, h Handlers) {
	// Health check endpoint
	router.GET("/health", healthCheck(db, redis))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		backtest := v1.Group("/backtest")
		{
			backtest.POST("/run", h.Backtest.RunBacktest)
			backtest.GET("/runs", h.Backtest.ListRuns)
		}

		analysis := v1.Group("/analysis")
		{
			analysis.GET("/indicators", h.Analysis.GetIndicators)
		}

		risk := v1.Group("/risk")
		{
			risk.POST("/metrics", h.Risk.ComputeMetrics)
		}

		fundamentals := v1.Group("/fundamentals")
		{
			fundamentals.POST("/dcf", h.Fundamentals.ComputeDcf)
		}

		ml := v1.Group("/ml")
		{
			ml.POST("/train-baseline", h.Ml.TrainBaseline)
		}

		macro := v1.Group("/macro")
		{
			macro.POST("/dashboard", h.Macro.Dashboard)
		}

		accounts := v1.Group("/auth")
		{
			accounts.POST("/register", h.User.Register)
			accounts.POST("/login", h.User.Login)
		}

		data := v1.Group("/data")
		{
			data.GET("/registry", h.Registry.ListEntries)
			// Registry writes require a valid token.
			data.POST("/registry", auth.RequireAuth(), h.Registry.UpsertEntry)
		}
	}
}

func healthCheck(db *database.PostgresDB, redis *database.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := HealthResponse{
			Status:    "ok",
			Timestamp: time.Now(),
			Version:   "1.0.0",
			Services: Services{
				Database: "ok",
				Redis:    "ok",
			},
		}

		if err := db.HealthCheck(c.Request.Context()); err != nil {
			response.Services.Database = "error"
			response.Status = "degraded"
		}

		if err := redis.HealthCheck(c.Request.Context()); err != nil {
			response.Services.Redis = "error"
			response.Status = "degraded"
		}

		statusCode := http.StatusOK
		if response.Status == "degraded" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, response)
	}
}
