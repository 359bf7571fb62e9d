package handlers

import (
	"net/http"

	"github.com/demandloop/backend-go/internal/api/middleware"
	"github.com/demandloop/backend-go/internal/domain"
	"github.com/demandloop/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type EchelonHandler struct {
	service *service.EchelonService
}

func NewEchelonHandler(service *service.EchelonService) *EchelonHandler {
	return &EchelonHandler{service: service}
}

func (h *EchelonHandler) GetDashboard(c *gin.Context) {
	auth := middleware.AuthFrom(c)
	filter := domain.ReportFilter{
		LookbackDays: parseIntQuery(c, "lookback_days", 30),
		ServiceLevel: parseFloatQuery(c, "service_level", 0),
	}

	dashboard, err := h.service.GetDashboard(c.Request.Context(), auth, filter)
	if err != nil {
		respondAnalyticsError(c, err, "failed to fetch echelon dashboard")
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

func (h *EchelonHandler) GetAlerts(c *gin.Context) {
	auth := middleware.AuthFrom(c)

	alerts, err := h.service.GetAlerts(c.Request.Context(), auth)
	if err != nil {
		respondAnalyticsError(c, err, "failed to fetch stock alerts")
		return
	}
	if alerts == nil {
		alerts = make([]domain.StockAlert, 0)
	}

	c.JSON(http.StatusOK, gin.H{
		"alerts": alerts,
		"total":  len(alerts),
	})
}
