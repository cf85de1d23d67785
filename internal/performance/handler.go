package performance

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"swift-dispatch/internal/pkg/apperrors"
)

type Handler struct {
	engine *Engine
}

func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

// -------------------------------------------------------------------------------------------------
func (h *Handler) DriverPerformance(c *gin.Context) {
	m, err := h.engine.GetPerformance(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"metrics": m})
}

// -------------------------------------------------------------------------------------------------
func (h *Handler) FleetEfficiency(c *gin.Context) {
	metrics, err := h.engine.FleetEfficiency(c.Request.Context())
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"fleet": metrics, "total": len(metrics)})
}

// -------------------------------------------------------------------------------------------------
func (h *Handler) Comparison(c *gin.Context) {
	summary, err := h.engine.Comparison(c.Request.Context())
	if err != nil {
		apperrors.ToHTTPError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
