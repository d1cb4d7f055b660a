package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type PurchaseHandler struct {
	purchaseService service.PurchaseService
}

func NewPurchaseHandler(purchaseService service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService}
}

func (h *PurchaseHandler) RegisterRoutes(router *gin.RouterGroup) {
	purchases := router.Group("/api/purchases")
	purchases.Use(middleware.RequireAuth())
	{
		purchases.GET("", h.ListPurchases)
		purchases.POST("", h.CreatePurchase)
		purchases.GET("/next-number", h.NextPurchaseNumber)
		purchases.GET("/:id", h.GetPurchase)
		purchases.PUT("/:id", h.UpdatePurchase)
		purchases.DELETE("/:id", h.DeletePurchase)
		purchases.POST("/:id/deliveries", h.CreateDelivery)
		purchases.PUT("/:id/deliveries/:deliveryId", h.UpdateDelivery)
		purchases.DELETE("/:id/deliveries/:deliveryId", h.DeleteDelivery)
	}
}

// ListPurchases returns paginated yarn purchases with optional filters
// @Summary      List purchases
// @Tags         purchases
// @Security     BearerAuth
// @Produce      json
// @Param        page      query  int     false  "Page number (default: 1)"
// @Param        limit     query  int     false  "Items per page (default: 20)"
// @Param        status    query  string  false  "Filter by status: PENDING, PARTIAL, COMPLETED"
// @Param        party_id  query  string  false  "Filter by party"
// @Success      200  {object}  response.Response
// @Router       /api/purchases [get]
func (h *PurchaseHandler) ListPurchases(c *gin.Context) {
	params := pagination.Parse(c)

	filter := service.PurchaseFilter{
		Status:  c.Query("status"),
		PartyID: c.Query("party_id"),
		Page:    params.Page,
		Limit:   params.Limit,
	}

	purchases, total, err := h.purchaseService.ListPurchases(c.Request.Context(), middleware.UserID(c), filter)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, purchases, params.Page, params.Limit, total))
}

// CreatePurchase records a new yarn purchase
// @Summary      Create purchase
// @Tags         purchases
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreatePurchaseRequest  true  "Purchase payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/purchases [post]
func (h *PurchaseHandler) CreatePurchase(c *gin.Context) {
	var req service.CreatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	purchase, err := h.purchaseService.CreatePurchase(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, purchase))
}

// NextPurchaseNumber previews the next purchase number without consuming it
// @Summary      Next purchase number
// @Tags         purchases
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/purchases/next-number [get]
func (h *PurchaseHandler) NextPurchaseNumber(c *gin.Context) {
	next, err := h.purchaseService.NextPurchaseNumber(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"next_purchase_number": next}))
}

// GetPurchase returns one purchase with its deliveries and payments
// @Summary      Get purchase
// @Tags         purchases
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Purchase ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/purchases/{id} [get]
func (h *PurchaseHandler) GetPurchase(c *gin.Context) {
	purchase, err := h.purchaseService.GetPurchase(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, purchase))
}

// UpdatePurchase updates purchase terms and recomputes derived fields
// @Summary      Update purchase
// @Tags         purchases
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                         true  "Purchase ID"
// @Param        payload  body  service.UpdatePurchaseRequest  true  "Update payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/purchases/{id} [put]
func (h *PurchaseHandler) UpdatePurchase(c *gin.Context) {
	var req service.UpdatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	purchase, err := h.purchaseService.UpdatePurchase(c.Request.Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, purchase))
}

// DeletePurchase removes a purchase and all its deliveries
// @Summary      Delete purchase
// @Tags         purchases
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Purchase ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/purchases/{id} [delete]
func (h *PurchaseHandler) DeletePurchase(c *gin.Context) {
	if err := h.purchaseService.DeletePurchase(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Purchase deleted successfully"}))
}

// CreateDelivery records a weighed delivery against a purchase
// @Summary      Create delivery
// @Tags         purchases
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                         true  "Purchase ID"
// @Param        payload  body  service.CreateDeliveryRequest  true  "Delivery payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/purchases/{id}/deliveries [post]
func (h *PurchaseHandler) CreateDelivery(c *gin.Context) {
	var req service.CreateDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	purchase, err := h.purchaseService.CreateDelivery(c.Request.Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, purchase))
}

// UpdateDelivery updates a delivery and recomputes its amounts
// @Summary      Update delivery
// @Tags         purchases
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id          path  string                         true  "Purchase ID"
// @Param        deliveryId  path  string                         true  "Delivery ID"
// @Param        payload     body  service.UpdateDeliveryRequest  true  "Update payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/purchases/{id}/deliveries/{deliveryId} [put]
func (h *PurchaseHandler) UpdateDelivery(c *gin.Context) {
	var req service.UpdateDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	purchase, err := h.purchaseService.UpdateDelivery(c.Request.Context(), middleware.UserID(c), c.Param("id"), c.Param("deliveryId"), req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, purchase))
}

// DeleteDelivery removes a delivery and recomputes the purchase aggregates
// @Summary      Delete delivery
// @Tags         purchases
// @Security     BearerAuth
// @Produce      json
// @Param        id          path  string  true  "Purchase ID"
// @Param        deliveryId  path  string  true  "Delivery ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/purchases/{id}/deliveries/{deliveryId} [delete]
func (h *PurchaseHandler) DeleteDelivery(c *gin.Context) {
	purchase, err := h.purchaseService.DeleteDelivery(c.Request.Context(), middleware.UserID(c), c.Param("id"), c.Param("deliveryId"))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, purchase))
}
