package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/recipe-catalog/backend/internal/database"
	"github.com/pageza/recipe-catalog/backend/internal/metrics"
	"github.com/pageza/recipe-catalog/backend/internal/middleware"
	"github.com/pageza/recipe-catalog/backend/internal/service"
	"github.com/pageza/recipe-catalog/backend/internal/types"
)

const version = "v1.0.0"

// Dependencies wires the HTTP layer. Only Service is required.
type Dependencies struct {
	Service service.IRecipeService
	Logger  *zap.Logger
	// DB is pinged by the health check when set
	DB      *gorm.DB
	Metrics *metrics.Metrics
	// Auth protects write routes when set
	Auth middleware.TokenValidator
	// Limiter throttles write routes when set
	Limiter middleware.Limiter
	// Exporter enables POST /api/v1/exports when set
	Exporter SnapshotExporter
}

var (
	validatorsOnce sync.Once
	validatorsErr  error
)

// RegisterValidators installs the request validation rules on gin's validator
func RegisterValidators() error {
	validatorsOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			validatorsErr = types.RegisterValidators(v)
		}
	})
	return validatorsErr
}

// HealthCheck returns the health status of the API
func HealthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{
			"status":  "healthy",
			"message": "Recipe catalog API is running",
			"version": version,
		}
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := database.HealthCheck(ctx, db); err != nil {
				body["status"] = "unhealthy"
				body["database"] = "down"
				c.JSON(http.StatusServiceUnavailable, body)
				return
			}
			body["database"] = "up"
		}
		c.JSON(http.StatusOK, body)
	}
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, deps Dependencies) error {
	if err := RegisterValidators(); err != nil {
		return err
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// Health check and metrics endpoints (no auth required)
	router.GET("/health", HealthCheck(deps.DB))
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	var write []gin.HandlerFunc
	if deps.Auth != nil {
		write = append(write, middleware.AuthMiddleware(deps.Auth))
	}
	if deps.Limiter != nil {
		write = append(write, middleware.RateLimit("writes", deps.Limiter, deps.Metrics, logger))
	}

	v1 := router.Group("/api/v1")
	NewRecipeHandler(deps.Service, logger).RegisterRoutes(v1, write...)
	NewIngredientHandler(deps.Service, logger).RegisterRoutes(v1)
	if deps.Exporter != nil {
		NewExportHandler(deps.Exporter, logger).RegisterRoutes(v1, write...)
	}
	return nil
}

// chain returns mw followed by h in a new slice
func chain(mw []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(mw)+1)
	out = append(out, mw...)
	return append(out, h)
}
