package projection

import (
	"errors"
	"net/http"

	httperr "github.com/aevon-lab/callstats/internal/core/errors"
	"github.com/gin-gonic/gin"
)

// RankingsResponse is the body of GET /v1/rankings.
type RankingsResponse struct {
	Order   Order             `json:"order"`
	Callers []CallerStatistic `json:"callers"`
}

// RegisterRoutes registers all projection API routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/rankings", s.HandleRankings)
	r.GET("/v1/summary", s.HandleSummary)
}

// HandleRankings handles GET /v1/rankings?by=count|duration&limit=N
func (s *Service) HandleRankings(c *gin.Context) {
	var query struct {
		By    string `form:"by"`
		Limit int    `form:"limit" binding:"gte=0"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidQueryError,
			Message:   "Invalid query parameters",
			Details:   err.Error(),
		})
		return
	}

	order, err := ParseOrder(query.By)
	if err == nil {
		var callers []CallerStatistic
		callers, err = s.TopBy(c.Request.Context(), order, query.Limit)
		if err == nil {
			c.JSON(http.StatusOK, RankingsResponse{Order: order, Callers: callers})
			return
		}
	}

	if errors.Is(err, ErrInvalidQuery) {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidQueryError,
			Message:   "Invalid rankings query",
			Details:   err.Error(),
		})
		return
	}
	c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
		ErrorType: httperr.HttpInternalError,
		Message:   "Failed to rank callers",
		Details:   err.Error(),
	})
}

// HandleSummary handles GET /v1/summary
func (s *Service) HandleSummary(c *gin.Context) {
	report := s.BuildReport(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"generated_at": report.GeneratedAt,
		"summary":      report.Summary,
	})
}
