package dispatch

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"swift-dispatch/internal/delivery"
	"swift-dispatch/internal/pkg/apperrors"
)

type AssignRequest struct {
	// DriverID is optional: when omitted the engine falls back to the
	// nearest-match policy.
	DriverID string `json:"driver_id"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// -------------------------------------------------------------------------------------------------
func (h *Handler) Candidates(c *gin.Context) {
	candidates, err := h.service.RankCandidates(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"candidates": candidates, "total": len(candidates)})
}

// -------------------------------------------------------------------------------------------------
func (h *Handler) Assign(c *gin.Context) {
	// The body is optional; no driver_id means "pick the nearest".
	var req AssignRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "VALIDATION", "message": err.Error()}})
			return
		}
	}

	var (
		d   *delivery.Delivery
		err error
	)
	if req.DriverID != "" {
		d, err = h.service.Assign(c.Request.Context(), c.Param("id"), req.DriverID)
	} else {
		d, err = h.service.AssignNearest(c.Request.Context(), c.Param("id"))
	}
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}

	c.JSON(http.StatusOK, delivery.Response{Delivery: d})
}

// -------------------------------------------------------------------------------------------------
func (h *Handler) AssignAll(c *gin.Context) {
	result, err := h.service.AssignAll(c.Request.Context())
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// -------------------------------------------------------------------------------------------------
func (h *Handler) Advance(c *gin.Context) {
	// The body is optional; proof only matters on the final transition.
	var req delivery.AdvanceRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "VALIDATION", "message": err.Error()}})
			return
		}
	}

	d, err := h.service.AdvanceStatus(c.Request.Context(), c.Param("id"), req.Proof)
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}

	c.JSON(http.StatusOK, delivery.Response{Delivery: d})
}

// -------------------------------------------------------------------------------------------------
func (h *Handler) Cancel(c *gin.Context) {
	d, err := h.service.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}

	c.JSON(http.StatusOK, delivery.Response{Delivery: d})
}

// -------------------------------------------------------------------------------------------------
// ForceStatus is the admin-only raw override; it skips the transition table.
func (h *Handler) ForceStatus(c *gin.Context) {
	var req delivery.ForceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "VALIDATION", "message": err.Error()}})
		return
	}

	d, err := h.service.ForceStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}

	c.JSON(http.StatusOK, delivery.Response{Delivery: d})
}
