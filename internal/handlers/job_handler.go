package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/justsurfingit/goodjob-api/internal/dtos"
	"github.com/justsurfingit/goodjob-api/internal/middleware"
	"github.com/justsurfingit/goodjob-api/internal/models"
	"github.com/justsurfingit/goodjob-api/internal/services"
)

type JobHandler struct {
	JobService  *services.JobService
	UserService *services.UserService
	Logger      *zap.Logger
}

func NewJobHandler(j *services.JobService, u *services.UserService, logger *zap.Logger) *JobHandler {
	return &JobHandler{JobService: j, UserService: u, Logger: logger}
}

// SearchJobTitles is the GET /jobs/search endpoint. A page that is not a
// number reads as the first page.
func (h *JobHandler) SearchJobTitles(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	titles, err := h.JobService.Search(c.Request.Context(), c.Query("key"), page)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	if titles == nil {
		titles = []models.JobTitle{}
	}
	c.JSON(http.StatusOK, titles)
}

// Recommendations is the GET /me/recommendations endpoint
func (h *JobHandler) Recommendations(c *gin.Context) {
	user := middleware.CurrentUser(c)
	rec, err := h.UserService.Recommendation(c.Request.Context(), user.ID)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dtos.RecommendationResponse{
		UserID:               user.ID,
		RecommendationString: user.ID,
		Count:                rec.Count,
	})
}
