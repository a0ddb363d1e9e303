package services

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justsurfingit/goodjob-api/internal/auth"
	"github.com/justsurfingit/goodjob-api/internal/database/memory"
	"github.com/justsurfingit/goodjob-api/internal/models"
)

type fakeVerifier map[string]*auth.Account

func (f fakeVerifier) Verify(_ context.Context, credential string) (*auth.Account, error) {
	if a, ok := f[credential]; ok {
		return a, nil
	}
	return nil, auth.ErrProviderRejected
}

func newAuthService(t *testing.T) (*AuthService, *memory.Store, *recordingMailer) {
	t.Helper()
	s := newTestStore(t)
	m := &recordingMailer{}
	facebook := fakeVerifier{
		"fb-token": {ID: "fb-1", Name: "Mark", Email: "mark@example.com", Raw: map[string]any{"id": "fb-1"}},
	}
	google := fakeVerifier{
		"google-token": {ID: "g-1", Name: "", Email: "g@example.com"},
	}
	svc := NewAuthService(s, facebook, google,
		auth.NewTokenIssuer("login-secret", 0),
		auth.NewTokenIssuer("verify-secret", 0),
		m, nopLogger)
	return svc, s, m
}

func TestLoginFacebookCreatesThenFindsUser(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthService(t)

	user, token, err := svc.LoginFacebook(ctx, "fb-token")
	require.NoError(t, err)
	assert.Equal(t, "Mark", user.Name)
	assert.Equal(t, "mark@example.com", user.Email)
	assert.Equal(t, models.EmailStatusUnverified, user.EmailStatus)
	require.NotNil(t, user.FacebookID)
	assert.Equal(t, "fb-1", *user.FacebookID)

	claims, err := svc.Tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	again, _, err := svc.LoginFacebook(ctx, "fb-token")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthService(t)

	_, _, err := svc.LoginFacebook(ctx, "")
	assertStatus(t, err, 401)
	_, _, err = svc.LoginFacebook(ctx, "forged")
	assertStatus(t, err, 401)
	_, _, err = svc.LoginGoogle(ctx, "forged")
	assertStatus(t, err, 401)
}

func TestLoginBackfillsMissingEmail(t *testing.T) {
	ctx := context.Background()
	svc, s, _ := newAuthService(t)
	googleID := "g-1"
	existing := &models.User{Name: "Old", GoogleID: &googleID}
	require.NoError(t, s.CreateUser(ctx, existing))

	user, _, err := svc.LoginGoogle(ctx, "google-token")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, user.ID)
	assert.Equal(t, "Old", user.Name)
	assert.Equal(t, "g@example.com", user.Email)

	stored, err := s.FindUserByID(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "g@example.com", stored.Email)
}

var tokenParam = regexp.MustCompile(`token=([A-Za-z0-9_.\-]+)`)

func TestVerifyEmailFlow(t *testing.T) {
	ctx := context.Background()
	svc, s, m := newAuthService(t)
	user := newTestUser(t, s, "mark")

	err := svc.SendVerifyEmail(ctx, user, "new@example.com", "https://www.goodjob.life/verify?from=mail")
	require.NoError(t, err)

	stored, err := s.FindUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EmailStatusSentVerificationLink, stored.EmailStatus)

	sent := m.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "new@example.com", sent[0].To)
	assert.Contains(t, sent[0].Text, "from=mail")
	match := tokenParam.FindStringSubmatch(sent[0].Text)
	require.Len(t, match, 2)

	verified, err := svc.VerifyEmail(ctx, match[1])
	require.NoError(t, err)
	assert.Equal(t, models.EmailStatusVerified, verified.EmailStatus)
	assert.Equal(t, "new@example.com", verified.Email)

	loginToken, err := svc.Tokens.Issue(user.ID)
	require.NoError(t, err)
	_, err = svc.VerifyEmail(ctx, loginToken)
	assertStatus(t, err, 422)
}

func TestSendVerifyEmailValidation(t *testing.T) {
	ctx := context.Background()
	svc, s, m := newAuthService(t)
	user := newTestUser(t, s, "mark")

	assertStatus(t, svc.SendVerifyEmail(ctx, nil, "a@example.com", "https://goodjob.life"), 401)
	assertStatus(t, svc.SendVerifyEmail(ctx, user, "nope", "https://goodjob.life"), 422)
	assertStatus(t, svc.SendVerifyEmail(ctx, user, "a@example.com", "not a url"), 422)

	m.err = errors.New("smtp down")
	assertStatus(t, svc.SendVerifyEmail(ctx, user, "a@example.com", "https://goodjob.life"), 500)
}
