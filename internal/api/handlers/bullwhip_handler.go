package handlers

import (
	"net/http"

	"github.com/demandloop/backend-go/internal/api/middleware"
	"github.com/demandloop/backend-go/internal/domain"
	"github.com/demandloop/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type BullwhipHandler struct {
	service *service.BullwhipService
}

func NewBullwhipHandler(service *service.BullwhipService) *BullwhipHandler {
	return &BullwhipHandler{service: service}
}

func (h *BullwhipHandler) GetReport(c *gin.Context) {
	auth := middleware.AuthFrom(c)
	lookback := parseIntQuery(c, "lookback_days", 30)
	limit := parseIntQuery(c, "limit", 100)

	metrics, skipped, err := h.service.GetReport(c.Request.Context(), auth, lookback, limit)
	if err != nil {
		respondAnalyticsError(c, err, "failed to compute bullwhip report")
		return
	}
	if metrics == nil {
		metrics = make([]domain.BullwhipMetric, 0)
	}

	c.JSON(http.StatusOK, gin.H{
		"metrics": metrics,
		"skipped": skipped,
	})
}

func (h *BullwhipHandler) GetDashboard(c *gin.Context) {
	auth := middleware.AuthFrom(c)
	filter := domain.ReportFilter{
		LookbackDays: parseIntQuery(c, "lookback_days", 30),
		Page:         parseIntQuery(c, "page", 1),
		PageSize:     parseIntQuery(c, "page_size", 50),
	}

	dashboard, err := h.service.GetDashboard(c.Request.Context(), auth, filter)
	if err != nil {
		respondAnalyticsError(c, err, "failed to fetch bullwhip dashboard")
		return
	}

	c.JSON(http.StatusOK, dashboard)
}
