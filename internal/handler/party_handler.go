package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type PartyHandler struct {
	partyService service.PartyService
}

func NewPartyHandler(partyService service.PartyService) *PartyHandler {
	return &PartyHandler{partyService: partyService}
}

func (h *PartyHandler) RegisterRoutes(router *gin.RouterGroup) {
	parties := router.Group("/api/parties")
	parties.Use(middleware.RequireAuth())
	{
		parties.GET("", h.ListParties)
		parties.POST("", h.CreateParty)
		parties.GET("/:id", h.GetParty)
		parties.PUT("/:id", h.UpdateParty)
		parties.DELETE("/:id", h.DeleteParty)
	}
}

// ListParties returns paginated parties with optional name search
// @Summary      List parties
// @Tags         parties
// @Security     BearerAuth
// @Produce      json
// @Param        page    query  int     false  "Page number (default: 1)"
// @Param        limit   query  int     false  "Items per page (default: 20)"
// @Param        search  query  string  false  "Search by name"
// @Success      200  {object}  response.Response
// @Router       /api/parties [get]
func (h *PartyHandler) ListParties(c *gin.Context) {
	params := pagination.Parse(c)
	search := c.Query("search")

	parties, total, err := h.partyService.ListParties(c.Request.Context(), middleware.UserID(c), search, params.Page, params.Limit)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, parties, params.Page, params.Limit, total))
}

// CreateParty creates a new party
// @Summary      Create party
// @Tags         parties
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreatePartyRequest  true  "Party payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/parties [post]
func (h *PartyHandler) CreateParty(c *gin.Context) {
	var req service.CreatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	party, err := h.partyService.CreateParty(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, party))
}

// GetParty returns one party by id
// @Summary      Get party
// @Tags         parties
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Party ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/parties/{id} [get]
func (h *PartyHandler) GetParty(c *gin.Context) {
	party, err := h.partyService.GetParty(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, party))
}

// UpdateParty updates an existing party
// @Summary      Update party
// @Tags         parties
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                      true  "Party ID"
// @Param        payload  body  service.UpdatePartyRequest  true  "Update payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/parties/{id} [put]
func (h *PartyHandler) UpdateParty(c *gin.Context) {
	var req service.UpdatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	party, err := h.partyService.UpdateParty(c.Request.Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, party))
}

// DeleteParty deletes a party
// @Summary      Delete party
// @Tags         parties
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Party ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/parties/{id} [delete]
func (h *PartyHandler) DeleteParty(c *gin.Context) {
	if err := h.partyService.DeleteParty(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Party deleted successfully"}))
}
