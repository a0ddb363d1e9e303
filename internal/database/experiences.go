package database

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/justsurfingit/goodjob-api/internal/apperrors"
	"github.com/justsurfingit/goodjob-api/internal/models"
)

func experienceScope(f models.ExperienceFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.AuthorID != "" {
			db = db.Where("author_id = ?", f.AuthorID)
		}
		if f.Type != "" {
			db = db.Where("type = ?", f.Type)
		}
		if len(f.CompanyNames) > 0 {
			db = db.Where("company_name IN ?", f.CompanyNames)
		}
		if len(f.JobTitles) > 0 {
			db = db.Where("job_title IN ?", f.JobTitles)
		}
		if f.OnlyVisible {
			db = db.Where(visible)
		}
		return db
	}
}

func paginate(offset, limit int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if offset > 0 {
			db = db.Offset(offset)
		}
		if limit > 0 {
			db = db.Limit(limit)
		}
		return db
	}
}

func (s *Store) CreateExperience(ctx context.Context, e *models.Experience) error {
	return translate(s.DB.WithContext(ctx).Create(e).Error)
}

func (s *Store) FindExperience(ctx context.Context, id string) (*models.Experience, error) {
	var e models.Experience
	if err := s.DB.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (s *Store) ListExperiences(ctx context.Context, f models.ExperienceFilter) ([]models.Experience, error) {
	var out []models.Experience
	err := s.DB.WithContext(ctx).
		Scopes(experienceScope(f), paginate(f.Offset, f.Limit)).
		Order("created_at DESC").
		Find(&out).Error
	return out, translate(err)
}

func (s *Store) CountExperiences(ctx context.Context, f models.ExperienceFilter) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.Experience{}).Scopes(experienceScope(f)).Count(&n).Error
	return n, translate(err)
}

func (s *Store) LongestVisibleExperiences(ctx context.Context, since time.Time, limit int) ([]models.Experience, error) {
	var out []models.Experience
	err := s.DB.WithContext(ctx).
		Where(visible).
		Where("created_at >= ?", since).
		Order("content_length DESC").
		Limit(limit).
		Find(&out).Error
	return out, translate(err)
}

func (s *Store) UpdateExperienceStatus(ctx context.Context, id, status string) error {
	return affected(s.DB.WithContext(ctx).Model(&models.Experience{}).Where("id = ?", id).Update("status", status))
}

func (s *Store) IncrementExperienceViews(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return translate(s.DB.WithContext(ctx).Model(&models.Experience{}).
		Where("id IN ?", ids).
		Update("view_count", gorm.Expr("view_count + 1")).Error)
}

func (s *Store) LikeExperience(ctx context.Context, experienceID, userID string) (int, error) {
	return s.changeLike(ctx, experienceID, 1, func(tx *gorm.DB) error {
		like := models.ExperienceLike{ExperienceID: experienceID, UserID: userID}
		return tx.Create(&like).Error
	})
}

func (s *Store) UnlikeExperience(ctx context.Context, experienceID, userID string) (int, error) {
	return s.changeLike(ctx, experienceID, -1, func(tx *gorm.DB) error {
		return affected(tx.Where("experience_id = ? AND user_id = ?", experienceID, userID).
			Delete(&models.ExperienceLike{}))
	})
}

func (s *Store) HasExperienceLike(ctx context.Context, experienceID, userID string) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.ExperienceLike{}).
		Where("experience_id = ? AND user_id = ?", experienceID, userID).
		Count(&n).Error
	return n > 0, translate(err)
}

// changeLike runs the like row write and the like_count update in one
// transaction.
func (s *Store) changeLike(ctx context.Context, experienceID string, delta int, write func(tx *gorm.DB) error) (int, error) {
	var counts []int
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := write(tx); err != nil {
			return err
		}
		res := tx.Model(&models.Experience{}).
			Where("id = ?", experienceID).
			Update("like_count", gorm.Expr("GREATEST(like_count + ?, 0)", delta))
		if err := affected(res); err != nil {
			return err
		}
		return tx.Model(&models.Experience{}).Where("id = ?", experienceID).Pluck("like_count", &counts).Error
	})
	if err != nil {
		return 0, translate(err)
	}
	if len(counts) == 0 {
		return 0, apperrors.ErrNotFound
	}
	return counts[0], nil
}
