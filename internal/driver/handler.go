package driver

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
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "VALIDATION", "message": err.Error()}})
		return
	}

	d, err := h.service.Register(c.Request.Context(), req.Name, req.VehicleType, req.Location)
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Driver: d})
}

// -------------------------------------------------------------------------------------------------
func (h *Handler) List(c *gin.Context) {
	if c.Query("available") == "true" {
		drivers, err := h.service.ListAvailable(c.Request.Context())
		if err != nil {
			apperrors.ToHTTPError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"drivers": drivers, "total": len(drivers)})
		return
	}

	var statusPtr *Status
	if s := c.Query("status"); s != "" {
		st := Status(s)
		statusPtr = &st
	}

	drivers, err := h.service.List(c.Request.Context(), statusPtr)
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"drivers": drivers, "total": len(drivers)})
}

// -------------------------------------------------------------------------------------------------
func (h *Handler) Get(c *gin.Context) {
	d, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Driver: d})
}

// -------------------------------------------------------------------------------------------------
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "VALIDATION", "message": err.Error()}})
		return
	}

	d, err := h.service.UpdateProfile(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Driver: d})
}

// -------------------------------------------------------------------------------------------------
func (h *Handler) SetStatus(c *gin.Context) {
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "VALIDATION", "message": err.Error()}})
		return
	}

	d, err := h.service.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Driver: d})
}

// -------------------------------------------------------------------------------------------------
func (h *Handler) Heartbeat(c *gin.Context) {
	var req LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "VALIDATION", "message": err.Error()}})
		return
	}

	d, err := h.service.Heartbeat(c.Request.Context(), c.Param("id"), req.Lat, req.Lng)
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Driver: d})
}

// -------------------------------------------------------------------------------------------------
func (h *Handler) GetLocation(c *gin.Context) {
	loc, err := h.service.GetLocation(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"location": loc})
}

// -------------------------------------------------------------------------------------------------
func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Remove(c.Request.Context(), c.Param("id")); err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "driver removed"})
}
