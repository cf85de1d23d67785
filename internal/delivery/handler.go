package delivery

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"swift-dispatch/internal/pkg/apperrors"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// -------------------------------------------------------------------------------------------------
func (h *Handler) Book(c *gin.Context) {
	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "VALIDATION", "message": err.Error()}})
		return
	}

	d, err := h.service.Book(c.Request.Context(), req.PickupAddress, req.DeliveryAddress, req.Package)
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Delivery: d})
}

// -------------------------------------------------------------------------------------------------
func (h *Handler) List(c *gin.Context) {
	var statusPtr *Status
	if s := c.Query("status"); s != "" {
		st := Status(s)
		if !ValidStatus(st) {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "VALIDATION", "message": "unknown status filter"}})
			return
		}
		statusPtr = &st
	}

	deliveries, err := h.service.List(c.Request.Context(), statusPtr)
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deliveries": deliveries, "total": len(deliveries)})
}

// -------------------------------------------------------------------------------------------------
func (h *Handler) Get(c *gin.Context) {
	d, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Delivery: d})
}

// -------------------------------------------------------------------------------------------------
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "VALIDATION", "message": err.Error()}})
		return
	}

	d, err := h.service.UpdateDetails(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Delivery: d})
}

// -------------------------------------------------------------------------------------------------
func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Remove(c.Request.Context(), c.Param("id")); err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "delivery removed"})
}
