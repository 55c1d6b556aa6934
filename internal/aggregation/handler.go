package aggregation

import (
	"errors"
	"net/http"

	httperr "github.com/aevon-lab/callstats/internal/core/errors"
	"github.com/aevon-lab/callstats/internal/projection"
	"github.com/gin-gonic/gin"
)

// SnapshotResponse is the body of GET /v1/snapshot.
type SnapshotResponse struct {
	Callers []projection.CallerStatistic `json:"callers"`
	Rollups []projection.DailyRollup     `json:"rollups"`
}

// RegisterRoutes registers the refresh trigger and snapshot read routes.
func (j *RefreshJob) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/refresh", j.HandleRefresh)
	r.GET("/v1/snapshot", j.HandleSnapshot)
	r.DELETE("/v1/snapshot", j.HandleReset)
}

// HandleReset handles DELETE /v1/snapshot.
func (j *RefreshJob) HandleReset(c *gin.Context) {
	if err := j.Reset(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to reset snapshot",
			Details:   err.Error(),
		})
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleRefresh handles POST /v1/refresh.
func (j *RefreshJob) HandleRefresh(c *gin.Context) {
	res, err := j.TryRun(c.Request.Context())
	if err != nil {
		if errors.Is(err, ErrRefreshInProgress) {
			c.JSON(http.StatusConflict, httperr.ErrorResponse{
				ErrorType: httperr.HttpSyncInProgressError,
				Message:   "A refresh is already running",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Refresh failed",
			Details:   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, res)
}

// HandleSnapshot handles GET /v1/snapshot?days=N
func (j *RefreshJob) HandleSnapshot(c *gin.Context) {
	var query struct {
		Days int `form:"days" binding:"gte=0,lte=366"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidQueryError,
			Message:   "Invalid query parameters",
			Details:   err.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	stats, err := j.snapshots.Statistics(ctx)
	if err == nil {
		var rollups []projection.DailyRollup
		rollups, err = j.snapshots.DailyRollups(ctx, query.Days)
		if err == nil {
			c.JSON(http.StatusOK, SnapshotResponse{Callers: stats, Rollups: rollups})
			return
		}
	}

	c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
		ErrorType: httperr.HttpInternalError,
		Message:   "Failed to read snapshot",
		Details:   err.Error(),
	})
}
