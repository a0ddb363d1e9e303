// Package handlers holds the REST endpoints. Each handler binds its input,
// calls one service and writes JSON.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/justsurfingit/goodjob-api/internal/apperrors"
	"github.com/justsurfingit/goodjob-api/internal/middleware"
	"github.com/justsurfingit/goodjob-api/internal/services"
)

// HealthCheck is the GET /health endpoint
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// writeError answers with the error's status and public message. Server
// side failures are logged with their cause.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	status := apperrors.StatusOf(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.JSON(status, gin.H{"error": apperrors.PublicMessage(err)})
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return false
	}
	return true
}

func requestMeta(c *gin.Context) services.RequestMeta {
	return services.RequestMeta{IP: c.ClientIP(), IPs: middleware.ForwardedIPs(c)}
}

// Set is every REST handler the API serves.
type Set struct {
	Auth        *AuthHandler
	Experiences *ExperienceHandler
	Workings    *WorkingHandler
	Jobs        *JobHandler
}

// Register mounts the REST routes on r. write runs before every route that
// creates or changes data.
func (s *Set) Register(r gin.IRouter, write ...gin.HandlerFunc) {
	authed := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append(append([]gin.HandlerFunc{}, write...), middleware.RequireUser()), h)
	}
	open := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, write...), h)
	}

	r.GET("/health", HealthCheck)

	r.POST("/auth/facebook", open(s.Auth.Facebook)...)
	r.POST("/auth/google", open(s.Auth.Google)...)

	r.POST("/work_experiences", authed(s.Experiences.CreateWork)...)
	r.POST("/interview_experiences", authed(s.Experiences.CreateInterview)...)
	r.POST("/experiences/:id/likes", authed(s.Experiences.Like)...)
	r.DELETE("/experiences/:id/likes", authed(s.Experiences.Unlike)...)

	r.GET("/workings", s.Workings.List)
	r.POST("/workings", authed(s.Workings.Create)...)

	r.GET("/jobs/search", s.Jobs.SearchJobTitles)
	r.GET("/me/recommendations", middleware.RequireUser(), s.Jobs.Recommendations)
}
