package handler

import (
	"net/http"
	"strconv"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ChallanHandler struct {
	challanService service.ChallanService
}

func NewChallanHandler(challanService service.ChallanService) *ChallanHandler {
	return &ChallanHandler{challanService: challanService}
}

func (h *ChallanHandler) RegisterRoutes(router *gin.RouterGroup) {
	challans := router.Group("/api/challans")
	challans.Use(middleware.RequireAuth())
	{
		challans.GET("", h.ListChallans)
		challans.POST("", h.CreateChallan)
		challans.GET("/:id", h.GetChallan)
		challans.DELETE("/:id", h.DeleteChallan)
		challans.POST("/:id/bales", h.AddBales)
		challans.PUT("/:id/bales/:baleId", h.UpdateBale)
		challans.DELETE("/:id/bales/:baleId", h.DeleteBale)
	}
}

// ListChallans returns paginated challans with optional filters
// @Summary      List delivery challans
// @Tags         challans
// @Security     BearerAuth
// @Produce      json
// @Param        page        query  int     false  "Page number (default: 1)"
// @Param        limit       query  int     false  "Items per page (default: 20)"
// @Param        quality_id  query  string  false  "Filter by quality"
// @Param        status      query  string  false  "Filter by status: INCOMPLETE, COMPLETE"
// @Param        is_sold     query  bool    false  "Filter by sold flag"
// @Success      200  {object}  response.Response
// @Router       /api/challans [get]
func (h *ChallanHandler) ListChallans(c *gin.Context) {
	params := pagination.Parse(c)

	filter := service.ChallanFilter{
		QualityID: c.Query("quality_id"),
		Status:    c.Query("status"),
		Page:      params.Page,
		Limit:     params.Limit,
	}
	if raw := c.Query("is_sold"); raw != "" {
		if sold, err := strconv.ParseBool(raw); err == nil {
			filter.IsSold = &sold
		}
	}

	challans, total, err := h.challanService.ListChallans(c.Request.Context(), middleware.UserID(c), filter)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, challans, params.Page, params.Limit, total))
}

// CreateChallan opens a new delivery challan for a quality
// @Summary      Create challan
// @Tags         challans
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateChallanRequest  true  "Challan payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/challans [post]
func (h *ChallanHandler) CreateChallan(c *gin.Context) {
	var req service.CreateChallanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	challan, err := h.challanService.CreateChallan(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, challan))
}

// GetChallan returns one challan with its bales
// @Summary      Get challan
// @Tags         challans
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Challan ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/challans/{id} [get]
func (h *ChallanHandler) GetChallan(c *gin.Context) {
	challan, err := h.challanService.GetChallan(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, challan))
}

// AddBales appends bales to an incomplete challan
// @Summary      Add bales
// @Tags         challans
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                    true  "Challan ID"
// @Param        payload  body  service.AddBalesRequest   true  "Bales payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/challans/{id}/bales [post]
func (h *ChallanHandler) AddBales(c *gin.Context) {
	var req service.AddBalesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	challan, err := h.challanService.AddBales(c.Request.Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, challan))
}

// UpdateBale replaces the cloth list of one bale
// @Summary      Update bale
// @Tags         challans
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                     true  "Challan ID"
// @Param        baleId   path  string                     true  "Bale ID"
// @Param        payload  body  service.UpdateBaleRequest  true  "Bale payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/challans/{id}/bales/{baleId} [put]
func (h *ChallanHandler) UpdateBale(c *gin.Context) {
	var req service.UpdateBaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	challan, err := h.challanService.UpdateBale(c.Request.Context(), middleware.UserID(c), c.Param("id"), c.Param("baleId"), req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, challan))
}

// DeleteBale removes one bale from an unsold challan
// @Summary      Delete bale
// @Tags         challans
// @Security     BearerAuth
// @Produce      json
// @Param        id      path  string  true  "Challan ID"
// @Param        baleId  path  string  true  "Bale ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/challans/{id}/bales/{baleId} [delete]
func (h *ChallanHandler) DeleteBale(c *gin.Context) {
	challan, err := h.challanService.DeleteBale(c.Request.Context(), middleware.UserID(c), c.Param("id"), c.Param("baleId"))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, challan))
}

// DeleteChallan removes an unsold challan and its bales
// @Summary      Delete challan
// @Tags         challans
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Challan ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/challans/{id} [delete]
func (h *ChallanHandler) DeleteChallan(c *gin.Context) {
	if err := h.challanService.DeleteChallan(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Challan deleted successfully"}))
}
