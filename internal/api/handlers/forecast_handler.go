package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/demandloop/backend-go/internal/api/middleware"
	"github.com/demandloop/backend-go/internal/domain"
	"github.com/demandloop/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type ForecastHandler struct {
	service *service.ForecastService
}

func NewForecastHandler(service *service.ForecastService) *ForecastHandler {
	return &ForecastHandler{service: service}
}

func (h *ForecastHandler) GetDemandSeries(c *gin.Context) {
	auth := middleware.AuthFrom(c)
	productID := c.Param("product_id")
	lookback := parseIntQuery(c, "lookback_days", 30)
	locationID := strings.TrimSpace(c.Query("location_id"))

	series, err := h.service.GetDemandSeries(c.Request.Context(), auth, productID, lookback, locationID)
	if err != nil {
		respondAnalyticsError(c, err, "failed to build demand series")
		return
	}

	c.JSON(http.StatusOK, series)
}

func (h *ForecastHandler) GetSeasonality(c *gin.Context) {
	auth := middleware.AuthFrom(c)
	productID := c.Param("product_id")
	lookback := parseIntQuery(c, "lookback_days", 90)

	profile, err := h.service.GetSeasonality(c.Request.Context(), auth, productID, lookback)
	if err != nil {
		respondAnalyticsError(c, err, "failed to detect seasonality")
		return
	}
	if profile == nil {
		c.JSON(http.StatusOK, gin.H{
			"product_id": productID,
			"profile":    nil,
			"reason":     "series too short to judge seasonality",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product_id": productID,
		"profile":    profile,
	})
}

func (h *ForecastHandler) GetForecast(c *gin.Context) {
	auth := middleware.AuthFrom(c)
	productID := c.Param("product_id")
	lookback := parseIntQuery(c, "lookback_days", 90)
	horizon := parseIntQuery(c, "horizon_days", 14)

	results, err := h.service.GetForecast(c.Request.Context(), auth, productID, lookback, horizon)
	if err != nil {
		respondAnalyticsError(c, err, "failed to compute forecast")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product_id": productID,
		"forecasts":  results,
	})
}

// EvaluateAccuracy triggers the batch feedback loop. Viewers are read-only
// callers and may not run it.
func (h *ForecastHandler) EvaluateAccuracy(c *gin.Context) {
	auth := middleware.AuthFrom(c)
	if !auth.CanEvaluate() {
		c.JSON(http.StatusForbidden, gin.H{"error": "role " + string(auth.Role) + " may not run accuracy evaluation"})
		return
	}

	summary, err := h.service.EvaluateAccuracy(c.Request.Context(), auth)
	if err != nil {
		respondAnalyticsError(c, err, "failed to evaluate accuracy")
		return
	}

	c.JSON(http.StatusOK, summary)
}

func parseIntQuery(c *gin.Context, name string, fallback int) int {
	if v, err := strconv.Atoi(c.DefaultQuery(name, strconv.Itoa(fallback))); err == nil && v > 0 {
		return v
	}
	return fallback
}

func parseFloatQuery(c *gin.Context, name string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(c.DefaultQuery(name, ""), 64); err == nil && v > 0 {
		return v
	}
	return fallback
}

// respondAnalyticsError maps domain errors onto HTTP statuses. Thin data is
// a client-resolvable condition, a bad hierarchy is a tenant configuration
// problem, and upstream fetch failures surface as bad gateway.
func respondAnalyticsError(c *gin.Context, err error, message string) {
	var hierarchyErr *domain.InvalidHierarchyError
	var upstreamErr *domain.UpstreamDataError

	switch {
	case errors.Is(err, domain.ErrInsufficientData):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "insufficient demand history", "details": err.Error()})
	case errors.As(err, &hierarchyErr):
		c.JSON(http.StatusConflict, gin.H{"error": "invalid location hierarchy", "details": err.Error()})
	case errors.As(err, &upstreamErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": message, "details": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": message, "details": err.Error()})
	}
}
