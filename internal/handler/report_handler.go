package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService service.ReportService
}

func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/api/reports")
	reports.Use(middleware.RequireAuth())
	{
		reports.GET("/purchase-outstanding", h.PurchaseOutstanding)
		reports.GET("/deal-progress", h.DealProgress)
	}
}

// PurchaseOutstanding lists purchases with unpaid delivery amounts
// @Summary      Purchase outstanding report
// @Tags         reports
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/reports/purchase-outstanding [get]
func (h *ReportHandler) PurchaseOutstanding(c *gin.Context) {
	rows, err := h.reportService.PurchaseOutstanding(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rows))
}

// DealProgress lists active deals with their completion counts
// @Summary      Deal progress report
// @Tags         reports
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/reports/deal-progress [get]
func (h *ReportHandler) DealProgress(c *gin.Context) {
	rows, err := h.reportService.DealProgress(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rows))
}
