// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/demandloop/backend-go/internal/api/handlers"
	"github.com/demandloop/backend-go/internal/api/middleware"
	"github.com/demandloop/backend-go/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	ForecastService *service.ForecastService
	BullwhipService *service.BullwhipService
	EchelonService  *service.EchelonService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderTenantID, middleware.HeaderUserID, middleware.HeaderRole},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")
	apiGroup.Use(middleware.Auth())

	if services != nil {
		if services.ForecastService != nil {
			forecastHandler := handlers.NewForecastHandler(services.ForecastService)
			demandGroup := apiGroup.Group("/analytics/demand")
			{
				demandGroup.GET("/:product_id", forecastHandler.GetDemandSeries)
				demandGroup.GET("/:product_id/seasonality", forecastHandler.GetSeasonality)
				demandGroup.GET("/:product_id/forecast", forecastHandler.GetForecast)
			}
			apiGroup.POST("/analytics/accuracy/evaluate", forecastHandler.EvaluateAccuracy)
		}

		if services.BullwhipService != nil {
			bullwhipHandler := handlers.NewBullwhipHandler(services.BullwhipService)
			bullwhipGroup := apiGroup.Group("/analytics/bullwhip")
			{
				bullwhipGroup.GET("/report", bullwhipHandler.GetReport)
				bullwhipGroup.GET("/dashboard", bullwhipHandler.GetDashboard)
			}
		}

		if services.EchelonService != nil {
			echelonHandler := handlers.NewEchelonHandler(services.EchelonService)
			echelonGroup := apiGroup.Group("/analytics/echelon")
			{
				echelonGroup.GET("/dashboard", echelonHandler.GetDashboard)
				echelonGroup.GET("/alerts", echelonHandler.GetAlerts)
			}
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
