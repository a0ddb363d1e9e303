package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/justsurfingit/goodjob-api/internal/apperrors"
	"github.com/justsurfingit/goodjob-api/internal/dtos"
	"github.com/justsurfingit/goodjob-api/internal/middleware"
	"github.com/justsurfingit/goodjob-api/internal/services"
)

type WorkingHandler struct {
	WorkingService *services.SalaryWorkTimeService
	Logger         *zap.Logger
}

func NewWorkingHandler(w *services.SalaryWorkTimeService, logger *zap.Logger) *WorkingHandler {
	return &WorkingHandler{WorkingService: w, Logger: logger}
}

func intQuery(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.Invalid("query: %s error", name)
	}
	return n, nil
}

// List is the GET /workings endpoint
func (h *WorkingHandler) List(c *gin.Context) {
	page, err := intQuery(c, "page")
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	limit, err := intQuery(c, "limit")
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}

	total, rows, err := h.WorkingService.List(c.Request.Context(), services.ListQuery{
		SortBy: c.Query("sort_by"),
		Order:  c.Query("order"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}

	views := make([]dtos.WorkingView, len(rows))
	for i := range rows {
		views[i] = dtos.NewPublicWorkingView(&rows[i])
	}
	c.JSON(http.StatusOK, dtos.ListWorkingsResponse{Total: total, TimeAndSalary: views})
}

// Create is the POST /workings endpoint
func (h *WorkingHandler) Create(c *gin.Context) {
	var req dtos.WorkingRequest
	if !bindJSON(c, &req) {
		return
	}
	w, err := h.WorkingService.Create(c.Request.Context(), middleware.CurrentUser(c), &req, requestMeta(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dtos.CreateWorkingResponse{Working: dtos.NewWorkingView(w)})
}
