package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type DealHandler struct {
	dealService service.DealService
}

func NewDealHandler(dealService service.DealService) *DealHandler {
	return &DealHandler{dealService: dealService}
}

func (h *DealHandler) RegisterRoutes(router *gin.RouterGroup) {
	deals := router.Group("/api/deals")
	deals.Use(middleware.RequireAuth())
	{
		deals.GET("", h.ListDeals)
		deals.POST("", h.CreateDeal)
		deals.GET("/next-number", h.NextDealNumber)
		deals.GET("/:id", h.GetDeal)
		deals.PUT("/:id", h.UpdateDeal)
		deals.POST("/:id/challans", h.LinkChallan)
		deals.DELETE("/:id", h.DeleteDeal)
	}
}

// ListDeals returns paginated deals with optional filters
// @Summary      List deals
// @Tags         deals
// @Security     BearerAuth
// @Produce      json
// @Param        page      query  int     false  "Page number (default: 1)"
// @Param        limit     query  int     false  "Items per page (default: 20)"
// @Param        status    query  string  false  "Filter by status: ACTIVE, COMPLETED, CANCELLED"
// @Param        party_id  query  string  false  "Filter by party"
// @Success      200  {object}  response.Response
// @Router       /api/deals [get]
func (h *DealHandler) ListDeals(c *gin.Context) {
	params := pagination.Parse(c)

	filter := service.DealFilter{
		Status:  c.Query("status"),
		PartyID: c.Query("party_id"),
		Page:    params.Page,
		Limit:   params.Limit,
	}

	deals, total, err := h.dealService.ListDeals(c.Request.Context(), middleware.UserID(c), filter)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, deals, params.Page, params.Limit, total))
}

// CreateDeal creates a new deal with party/quality snapshots
// @Summary      Create deal
// @Tags         deals
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateDealRequest  true  "Deal payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/deals [post]
func (h *DealHandler) CreateDeal(c *gin.Context) {
	var req service.CreateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	deal, err := h.dealService.CreateDeal(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, deal))
}

// NextDealNumber previews the next deal number without consuming it
// @Summary      Next deal number
// @Tags         deals
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/deals/next-number [get]
func (h *DealHandler) NextDealNumber(c *gin.Context) {
	next, err := h.dealService.NextDealNumber(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"next_deal_number": next}))
}

// GetDeal returns one deal with its challans and invoices
// @Summary      Get deal
// @Tags         deals
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Deal ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/deals/{id} [get]
func (h *DealHandler) GetDeal(c *gin.Context) {
	deal, err := h.dealService.GetDeal(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, deal))
}

// UpdateDeal updates an active deal, or reverts a completed one to active
// @Summary      Update deal
// @Tags         deals
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                     true  "Deal ID"
// @Param        payload  body  service.UpdateDealRequest  true  "Update payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/deals/{id} [put]
func (h *DealHandler) UpdateDeal(c *gin.Context) {
	var req service.UpdateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	deal, err := h.dealService.UpdateDeal(c.Request.Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, deal))
}

// LinkChallan attaches an existing challan to an active deal
// @Summary      Link challan to deal
// @Tags         deals
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                      true  "Deal ID"
// @Param        payload  body  service.LinkChallanRequest  true  "Challan reference"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/deals/{id}/challans [post]
func (h *DealHandler) LinkChallan(c *gin.Context) {
	var req service.LinkChallanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	deal, err := h.dealService.LinkChallan(c.Request.Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, deal))
}

// DeleteDeal removes a deal with no linked challans or invoices
// @Summary      Delete deal
// @Tags         deals
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Deal ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/deals/{id} [delete]
func (h *DealHandler) DeleteDeal(c *gin.Context) {
	if err := h.dealService.DeleteDeal(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Deal deleted successfully"}))
}
