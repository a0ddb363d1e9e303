package services

import (
	"context"
	"errors"

	"github.com/justsurfingit/goodjob-api/internal/apperrors"
	"github.com/justsurfingit/goodjob-api/internal/models"
	"github.com/justsurfingit/goodjob-api/internal/store"
)

type UserService struct {
	Store store.RecommendationStore
}

func NewUserService(s store.RecommendationStore) *UserService {
	return &UserService{Store: s}
}

// Recommendation returns how many reports named userID as their
// recommender. The user's id doubles as their recommendation string.
func (s *UserService) Recommendation(ctx context.Context, userID string) (*models.Recommendation, error) {
	rec, err := s.Store.FindRecommendation(ctx, userID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return &models.Recommendation{UserID: userID}, nil
	}
	if err != nil {
		return nil, unexpected("find recommendation", err)
	}
	return rec, nil
}
