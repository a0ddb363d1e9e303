package services

import (
	"context"
	"errors"
	"net/url"

	"go.uber.org/zap"

	"github.com/justsurfingit/goodjob-api/internal/apperrors"
	"github.com/justsurfingit/goodjob-api/internal/auth"
	"github.com/justsurfingit/goodjob-api/internal/mailer"
	"github.com/justsurfingit/goodjob-api/internal/metrics"
	"github.com/justsurfingit/goodjob-api/internal/models"
	"github.com/justsurfingit/goodjob-api/internal/store"
)

// AccountVerifier checks a provider credential and returns the account it
// belongs to.
type AccountVerifier interface {
	Verify(ctx context.Context, credential string) (*auth.Account, error)
}

type AuthService struct {
	Store        store.UserStore
	Facebook     AccountVerifier
	Google       AccountVerifier
	Tokens       *auth.TokenIssuer
	VerifyTokens *auth.TokenIssuer
	Mailer       mailer.Mailer
	Logger       *zap.Logger
}

func NewAuthService(s store.UserStore, facebook, google AccountVerifier, tokens, verifyTokens *auth.TokenIssuer, m mailer.Mailer, logger *zap.Logger) *AuthService {
	return &AuthService{
		Store:        s,
		Facebook:     facebook,
		Google:       google,
		Tokens:       tokens,
		VerifyTokens: verifyTokens,
		Mailer:       m,
		Logger:       logger,
	}
}

// provider describes how one login provider maps onto users.
type provider struct {
	name     string
	verifier AccountVerifier
	find     func(ctx context.Context, id string) (*models.User, error)
	newUser  func(a *auth.Account) *models.User
}

func (s *AuthService) LoginFacebook(ctx context.Context, accessToken string) (*models.User, string, error) {
	return s.login(ctx, provider{
		name:     "facebook",
		verifier: s.Facebook,
		find:     s.Store.FindUserByFacebookID,
		newUser: func(a *auth.Account) *models.User {
			return &models.User{FacebookID: &a.ID, Facebook: a.Raw}
		},
	}, accessToken)
}

func (s *AuthService) LoginGoogle(ctx context.Context, idToken string) (*models.User, string, error) {
	return s.login(ctx, provider{
		name:     "google",
		verifier: s.Google,
		find:     s.Store.FindUserByGoogleID,
		newUser: func(a *auth.Account) *models.User {
			return &models.User{GoogleID: &a.ID, Google: a.Raw}
		},
	}, idToken)
}

func (s *AuthService) login(ctx context.Context, p provider, credential string) (*models.User, string, error) {
	if credential == "" {
		metrics.Logins.WithLabelValues(p.name, "rejected").Inc()
		return nil, "", apperrors.Unauthorized("Unauthorized")
	}
	account, err := p.verifier.Verify(ctx, credential)
	if err != nil {
		metrics.Logins.WithLabelValues(p.name, "rejected").Inc()
		s.Logger.Info("provider login rejected", zap.String("provider", p.name), zap.Error(err))
		return nil, "", apperrors.Unauthorized("Unauthorized")
	}

	user, err := p.find(ctx, account.ID)
	if errors.Is(err, apperrors.ErrNotFound) {
		user = p.newUser(account)
		user.Name = account.Name
		user.Email = account.Email
		user.EmailStatus = models.EmailStatusUnverified
		if err := s.Store.CreateUser(ctx, user); err != nil {
			metrics.Logins.WithLabelValues(p.name, "error").Inc()
			return nil, "", unexpected("create user", err)
		}
	} else if err != nil {
		metrics.Logins.WithLabelValues(p.name, "error").Inc()
		return nil, "", unexpected("find user", err)
	}

	if err := s.backfill(ctx, user, account); err != nil {
		metrics.Logins.WithLabelValues(p.name, "error").Inc()
		return nil, "", err
	}

	token, err := s.Tokens.Issue(user.ID)
	if err != nil {
		metrics.Logins.WithLabelValues(p.name, "error").Inc()
		return nil, "", apperrors.Internal("sign token", err)
	}
	metrics.Logins.WithLabelValues(p.name, "ok").Inc()
	return user, token, nil
}

// backfill fills in a name or email the user is missing from the provider
// account.
func (s *AuthService) backfill(ctx context.Context, user *models.User, account *auth.Account) error {
	var update store.UserUpdate
	if user.Name == "" && account.Name != "" {
		update.Name = &account.Name
	}
	if user.Email == "" && account.Email != "" {
		update.Email = &account.Email
	}
	if update.Name == nil && update.Email == nil {
		return nil
	}
	if err := s.Store.UpdateUser(ctx, user.ID, update); err != nil {
		return unexpected("update user", err)
	}
	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Email != nil {
		user.Email = *update.Email
	}
	return nil
}

// SendVerifyEmail stores email on the user and mails a verification link
// pointing at redirectURL with a token query parameter.
func (s *AuthService) SendVerifyEmail(ctx context.Context, user *models.User, email, redirectURL string) error {
	if user == nil {
		return apperrors.Unauthorized("Unauthorized")
	}
	if !isEmail(email) {
		return apperrors.Invalid("email is not valid")
	}
	link, err := url.Parse(redirectURL)
	if err != nil || !isURL(redirectURL) {
		return apperrors.Invalid("redirect_url is not valid")
	}

	status := models.EmailStatusSentVerificationLink
	if err := s.Store.UpdateUser(ctx, user.ID, store.UserUpdate{Email: &email, EmailStatus: &status}); err != nil {
		return unexpected("update user", err)
	}

	token, err := s.VerifyTokens.IssueWithEmail(user.ID, email)
	if err != nil {
		return apperrors.Internal("sign verify token", err)
	}
	q := link.Query()
	q.Set("token", token)
	link.RawQuery = q.Encode()

	name := user.Name
	if name == "" {
		name = email
	}
	msg, err := mailer.AccountVerify.Render(email, mailer.AccountVerifyVars{UserName: name, VerificationURL: link.String()})
	if err != nil {
		return apperrors.Internal("render verify email", err)
	}
	err = s.Mailer.Send(ctx, msg)
	metrics.EmailsSent.WithLabelValues(msg.Template, metrics.Result(err)).Inc()
	if err != nil {
		s.Logger.Error("send verify email failed", zap.String("user_id", user.ID), zap.Error(err))
		return apperrors.Internal("send verify email", err)
	}
	return nil
}

// VerifyEmail marks the email carried by token as verified and returns the
// updated user.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.VerifyTokens.Parse(token)
	if err != nil || claims.Email == "" {
		return nil, apperrors.Invalid("token is not valid")
	}
	status := models.EmailStatusVerified
	err = s.Store.UpdateUser(ctx, claims.UserID, store.UserUpdate{Email: &claims.Email, EmailStatus: &status})
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.Invalid("token is not valid")
	}
	if err != nil {
		return nil, unexpected("update user", err)
	}
	user, err := s.Store.FindUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, unexpected("find user", err)
	}
	return user, nil
}
