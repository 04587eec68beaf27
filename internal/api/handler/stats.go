package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/statside/sportschat/internal/extract"
	"github.com/statside/sportschat/internal/pkg/response"
	"github.com/statside/sportschat/internal/service"
)

type StatsHandler struct {
	statsService *service.StatsService
}

func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

// Analyze ranks players on a metric.
// GET /api/v1/stats/analyze?sport=basketball&metric=points&season=2023-24&limit=10
func (h *StatsHandler) Analyze(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	resp, err := h.statsService.Analyze(
		c.Query("sport"),
		c.Query("season"),
		c.Query("metric"),
		limit,
	)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, resp)
}

// Trends returns per-season averages for a metric.
// GET /api/v1/stats/trends?sport=basketball&metric=points
func (h *StatsHandler) Trends(c *gin.Context) {
	resp, err := h.statsService.Trends(c.Query("sport"), c.Query("metric"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, resp)
}

// Visualize renders a chart for a metric.
// GET /api/v1/stats/visualize?sport=basketball&metric=points&type=leaderboard
func (h *StatsHandler) Visualize(c *gin.Context) {
	resp, err := h.statsService.Visualize(
		c.Query("sport"),
		c.Query("season"),
		c.Query("metric"),
		c.Query("type"),
	)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, resp)
}

func (h *StatsHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, extract.ErrUnknownSport),
		errors.Is(err, service.ErrUnknownMetric),
		errors.Is(err, service.ErrUnknownChartType):
		response.ParamError(c, err.Error())
	case errors.Is(err, service.ErrNoData):
		response.NotFoundError(c, err.Error())
	default:
		response.ServerError(c, "")
	}
}
