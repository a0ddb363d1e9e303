package dtos

import "github.com/justsurfingit/goodjob-api/internal/models"

type FacebookAuthRequest struct {
	AccessToken string `json:"access_token"`
}

type GoogleAuthRequest struct {
	IDToken string `json:"id_token"`
}

type AuthUser struct {
	ID         string  `json:"_id"`
	FacebookID *string `json:"facebook_id,omitempty"`
	GoogleID   *string `json:"google_id,omitempty"`
	Email      string  `json:"email,omitempty"`
}

type AuthResponse struct {
	User  AuthUser `json:"user"`
	Token string   `json:"token"`
}

func NewAuthResponse(user *models.User, token string) AuthResponse {
	return AuthResponse{
		User: AuthUser{
			ID:         user.ID,
			FacebookID: user.FacebookID,
			GoogleID:   user.GoogleID,
			Email:      user.Email,
		},
		Token: token,
	}
}

type RecommendationResponse struct {
	UserID               string `json:"user_id"`
	RecommendationString string `json:"recommendation_string"`
	Count                int    `json:"count"`
}
