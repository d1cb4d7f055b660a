package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type QualityHandler struct {
	qualityService service.QualityService
}

func NewQualityHandler(qualityService service.QualityService) *QualityHandler {
	return &QualityHandler{qualityService: qualityService}
}

func (h *QualityHandler) RegisterRoutes(router *gin.RouterGroup) {
	qualities := router.Group("/api/qualities")
	qualities.Use(middleware.RequireAuth())
	{
		qualities.GET("", h.ListQualities)
		qualities.POST("", h.CreateQuality)
		qualities.GET("/:id", h.GetQuality)
		qualities.PUT("/:id", h.UpdateQuality)
		qualities.DELETE("/:id", h.DeleteQuality)
	}
}

// ListQualities returns the caller's qualities, paginated
// @Summary      List qualities
// @Tags         qualities
// @Security     BearerAuth
// @Produce      json
// @Param        page   query  int  false  "Page number (default: 1)"
// @Param        limit  query  int  false  "Items per page (default: 20)"
// @Success      200  {object}  response.Response
// @Router       /api/qualities [get]
func (h *QualityHandler) ListQualities(c *gin.Context) {
	params := pagination.Parse(c)

	qualities, total, err := h.qualityService.ListQualities(c.Request.Context(), middleware.UserID(c), params.Page, params.Limit)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, qualities, params.Page, params.Limit, total))
}

// CreateQuality creates a new quality
// @Summary      Create quality
// @Tags         qualities
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateQualityRequest  true  "Quality payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/qualities [post]
func (h *QualityHandler) CreateQuality(c *gin.Context) {
	var req service.CreateQualityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	quality, err := h.qualityService.CreateQuality(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, quality))
}

// GetQuality returns one quality by id
// @Summary      Get quality
// @Tags         qualities
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Quality ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/qualities/{id} [get]
func (h *QualityHandler) GetQuality(c *gin.Context) {
	quality, err := h.qualityService.GetQuality(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, quality))
}

// UpdateQuality updates an existing quality
// @Summary      Update quality
// @Tags         qualities
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                        true  "Quality ID"
// @Param        payload  body  service.UpdateQualityRequest  true  "Update payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/qualities/{id} [put]
func (h *QualityHandler) UpdateQuality(c *gin.Context) {
	var req service.UpdateQualityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	quality, err := h.qualityService.UpdateQuality(c.Request.Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, quality))
}

// DeleteQuality deletes a quality with no challans
// @Summary      Delete quality
// @Tags         qualities
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Quality ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/qualities/{id} [delete]
func (h *QualityHandler) DeleteQuality(c *gin.Context) {
	if err := h.qualityService.DeleteQuality(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Quality deleted successfully"}))
}
