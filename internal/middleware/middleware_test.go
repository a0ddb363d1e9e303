package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/justsurfingit/goodjob-api/internal/auth"
	"github.com/justsurfingit/goodjob-api/internal/database/memory"
	"github.com/justsurfingit/goodjob-api/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(t *testing.T) (*gin.Engine, *auth.TokenIssuer, *models.User) {
	t.Helper()
	db := memory.New()
	fb := "fb-1"
	user := &models.User{Name: "Ann", FacebookID: &fb}
	require.NoError(t, db.CreateUser(context.Background(), user))

	tokens := auth.NewTokenIssuer("secret", 0)
	r := gin.New()
	r.Use(Authenticate(tokens, db, zap.NewNop()))
	r.GET("/open", func(c *gin.Context) {
		if u := CurrentUser(c); u != nil {
			c.String(http.StatusOK, u.ID)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})
	r.GET("/closed", RequireUser(), func(c *gin.Context) { c.String(http.StatusOK, CurrentUser(c).Name) })
	return r, tokens, user
}

func TestAuthenticate(t *testing.T) {
	r, tokens, user := newAuthRouter(t)
	token, err := tokens.Issue(user.ID)
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		header string
		code   int
		body   string
	}{
		{"anonymous open route", "/open", "", http.StatusOK, "anonymous"},
		{"valid token", "/open", "Bearer " + token, http.StatusOK, user.ID},
		{"invalid token is anonymous", "/open", "Bearer nope", http.StatusOK, "anonymous"},
		{"closed route without user", "/closed", "", http.StatusUnauthorized, "Unauthorized"},
		{"closed route with user", "/closed", "bearer " + token, http.StatusOK, "Ann"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.code, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
		})
	}
}

func TestAuthenticateUnknownUser(t *testing.T) {
	r, tokens, _ := newAuthRouter(t)
	token, err := tokens.Issue(models.NewID())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/closed", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2, zap.NewNop())
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	r := gin.New()
	r.POST("/workings", rl.Handler(), func(c *gin.Context) { c.Status(http.StatusCreated) })

	send := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/workings", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusCreated, send().Code)
	assert.Equal(t, http.StatusCreated, send().Code)
	w := send()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusCreated, send().Code)
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(1, 1, zap.NewNop())
	now := time.Now()
	rl.now = func() time.Time { return now }
	rl.limiter("a")

	now = now.Add(time.Hour)
	rl.limiter("b")
	rl.Cleanup()

	assert.Len(t, rl.entries, 1)
	assert.Contains(t, rl.entries, "b")
}

func TestForwardedIPs(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("X-Forwarded-For", "1.1.1.1, 2.2.2.2,")
	assert.Equal(t, []string{"1.1.1.1", "2.2.2.2"}, ForwardedIPs(c))
}
