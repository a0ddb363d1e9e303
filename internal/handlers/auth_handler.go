package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/justsurfingit/goodjob-api/internal/dtos"
	"github.com/justsurfingit/goodjob-api/internal/services"
)

type AuthHandler struct {
	AuthService *services.AuthService
	Logger      *zap.Logger
}

func NewAuthHandler(a *services.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{AuthService: a, Logger: logger}
}

// Facebook is the POST /auth/facebook endpoint
func (h *AuthHandler) Facebook(c *gin.Context) {
	var req dtos.FacebookAuthRequest
	if !bindJSON(c, &req) {
		return
	}
	user, token, err := h.AuthService.LoginFacebook(c.Request.Context(), req.AccessToken)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dtos.NewAuthResponse(user, token))
}

// Google is the POST /auth/google endpoint
func (h *AuthHandler) Google(c *gin.Context) {
	var req dtos.GoogleAuthRequest
	if !bindJSON(c, &req) {
		return
	}
	user, token, err := h.AuthService.LoginGoogle(c.Request.Context(), req.IDToken)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dtos.NewAuthResponse(user, token))
}
