package syncdelta

import (
	"errors"
	"net/http"

	httperr "github.com/aevon-lab/callstats/internal/core/errors"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the shared-counter read route.
func (e *Engine) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/global", e.HandleGlobal)
}

// HandleGlobal handles GET /v1/global.
func (e *Engine) HandleGlobal(c *gin.Context) {
	state, err := e.Global(c.Request.Context())
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			c.JSON(http.StatusServiceUnavailable, httperr.ErrorResponse{
				ErrorType: httperr.HttpBackendUnavailable,
				Message:   "Shared counter backend is disabled or unreachable",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to read shared counters",
			Details:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, state)
}
