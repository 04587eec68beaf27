package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/statside/sportschat/internal/model"
	"github.com/statside/sportschat/internal/model/dto"
	"github.com/statside/sportschat/internal/pkg/response"
	"github.com/statside/sportschat/internal/service"
)

type ScrapeHandler struct {
	scrapeService *service.ScrapeService
}

func NewScrapeHandler(scrapeService *service.ScrapeService) *ScrapeHandler {
	return &ScrapeHandler{
		scrapeService: scrapeService,
	}
}

// Run starts a scrape for an arbitrary scope.
// POST /api/v1/scrape/run
func (h *ScrapeHandler) Run(c *gin.Context) {
	var req dto.StartScrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	jobID, err := h.scrapeService.Start(c.Request.Context(), req.Scope, req.Season)
	if err != nil {
		if errors.Is(err, service.ErrUnknownScope) {
			response.ParamError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, dto.StartScrapeResponse{JobID: jobID})
}

// RunBasketball starts a basketball-only scrape.
// POST /api/v1/scrape/ncaa/basketball
func (h *ScrapeHandler) RunBasketball(c *gin.Context) {
	h.runSport(c, model.SportBasketball)
}

// RunFootball starts a football-only scrape.
// POST /api/v1/scrape/ncaa/football
func (h *ScrapeHandler) RunFootball(c *gin.Context) {
	h.runSport(c, model.SportFootball)
}

func (h *ScrapeHandler) runSport(c *gin.Context, sport string) {
	jobID, err := h.scrapeService.RunSport(c.Request.Context(), sport)
	if err != nil {
		if errors.Is(err, service.ErrUnknownScope) {
			response.ParamError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}
	response.Success(c, dto.StartScrapeResponse{JobID: jobID})
}

// Status returns a job's lifecycle state and accumulated errors.
// GET /api/v1/scrape/jobs/:id
func (h *ScrapeHandler) Status(c *gin.Context) {
	jobID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid job id")
		return
	}

	resp, err := h.scrapeService.Status(jobID)
	if err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, resp)
}

// Cancel requests cancellation of a queued or running job.
// POST /api/v1/scrape/jobs/:id/cancel
func (h *ScrapeHandler) Cancel(c *gin.Context) {
	jobID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid job id")
		return
	}

	if err := h.scrapeService.Cancel(jobID); err != nil {
		switch {
		case errors.Is(err, service.ErrJobNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrJobTerminal):
			response.ConflictError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "cancellation requested", nil)
}
