package database

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/justsurfingit/goodjob-api/internal/models"
	"github.com/justsurfingit/goodjob-api/internal/store"
)

func (s *Store) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) FindUserByFacebookID(ctx context.Context, facebookID string) (*models.User, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).First(&u, "facebook_id = ?", facebookID).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) FindUserByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).First(&u, "google_id = ?", googleID).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return translate(s.DB.WithContext(ctx).Create(user).Error)
}

func (s *Store) UpdateUser(ctx context.Context, id string, update store.UserUpdate) error {
	fields := map[string]any{}
	if update.Name != nil {
		fields["name"] = *update.Name
	}
	if update.Email != nil {
		fields["email"] = *update.Email
	}
	if update.EmailStatus != nil {
		fields["email_status"] = *update.EmailStatus
	}
	if update.SubscribeEmail != nil {
		fields["subscribe_email"] = *update.SubscribeEmail
	}
	if len(fields) == 0 {
		return nil
	}
	return affected(s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields))
}

func (s *Store) IncrementSalaryWorkTimeCount(ctx context.Context, userID string) error {
	return affected(s.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("time_and_salary_count", gorm.Expr("time_and_salary_count + 1")))
}

func (s *Store) IncrementRecommendation(ctx context.Context, userID string) error {
	rec := models.Recommendation{UserID: userID, Count: 1}
	return translate(s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]any{"count": gorm.Expr("recommendations.count + 1")}),
	}).Create(&rec).Error)
}

func (s *Store) FindRecommendation(ctx context.Context, userID string) (*models.Recommendation, error) {
	var rec models.Recommendation
	if err := s.DB.WithContext(ctx).First(&rec, "user_id = ?", userID).Error; err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}
