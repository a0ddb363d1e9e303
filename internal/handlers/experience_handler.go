package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/justsurfingit/goodjob-api/internal/dtos"
	"github.com/justsurfingit/goodjob-api/internal/middleware"
	"github.com/justsurfingit/goodjob-api/internal/models"
	"github.com/justsurfingit/goodjob-api/internal/services"
)

type ExperienceHandler struct {
	ExperienceService *services.ExperienceService
	Logger            *zap.Logger
}

func NewExperienceHandler(e *services.ExperienceService, logger *zap.Logger) *ExperienceHandler {
	return &ExperienceHandler{ExperienceService: e, Logger: logger}
}

func (h *ExperienceHandler) created(c *gin.Context, e *models.Experience, err error) {
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dtos.CreateExperienceResponse{
		Success:    true,
		Experience: dtos.ExperienceID{ID: e.ID},
	})
}

// CreateWork is the POST /work_experiences endpoint
func (h *ExperienceHandler) CreateWork(c *gin.Context) {
	var req dtos.WorkExperienceRequest
	if !bindJSON(c, &req) {
		return
	}
	e, err := h.ExperienceService.CreateWorkExperience(c.Request.Context(), middleware.CurrentUser(c), &req, requestMeta(c))
	h.created(c, e, err)
}

// CreateInterview is the POST /interview_experiences endpoint
func (h *ExperienceHandler) CreateInterview(c *gin.Context) {
	var req dtos.InterviewExperienceRequest
	if !bindJSON(c, &req) {
		return
	}
	e, err := h.ExperienceService.CreateInterviewExperience(c.Request.Context(), middleware.CurrentUser(c), &req, requestMeta(c))
	h.created(c, e, err)
}

// Like is the POST /experiences/:id/likes endpoint
func (h *ExperienceHandler) Like(c *gin.Context) {
	count, err := h.ExperienceService.Like(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dtos.LikeResponse{Success: true, LikeCount: count})
}

// Unlike is the DELETE /experiences/:id/likes endpoint
func (h *ExperienceHandler) Unlike(c *gin.Context) {
	count, err := h.ExperienceService.Unlike(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dtos.LikeResponse{Success: true, LikeCount: count})
}
