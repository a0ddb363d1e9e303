package database

import (
	"context"

	"gorm.io/gorm"

	"github.com/justsurfingit/goodjob-api/internal/models"
)

var sortColumns = map[string]string{
	"created_at":            "created_at",
	"week_work_time":        "week_work_time",
	"estimated_hourly_wage": "estimated_hourly_wage",
}

func salaryWorkTimeScope(f models.SalaryWorkTimeFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.UserID != "" {
			db = db.Where("user_id = ?", f.UserID)
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

// orderClause sorts missing values lowest in both directions.
func orderClause(sortBy string, ascending bool) string {
	column, ok := sortColumns[sortBy]
	if !ok {
		column = "created_at"
	}
	if ascending {
		return column + " ASC NULLS FIRST, id"
	}
	return column + " DESC NULLS LAST, id"
}

func (s *Store) CreateSalaryWorkTime(ctx context.Context, w *models.SalaryWorkTime) error {
	return translate(s.DB.WithContext(ctx).Create(w).Error)
}

func (s *Store) FindSalaryWorkTime(ctx context.Context, id string) (*models.SalaryWorkTime, error) {
	var w models.SalaryWorkTime
	if err := s.DB.WithContext(ctx).First(&w, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &w, nil
}

func (s *Store) ListSalaryWorkTimes(ctx context.Context, f models.SalaryWorkTimeFilter) ([]models.SalaryWorkTime, error) {
	var out []models.SalaryWorkTime
	err := s.DB.WithContext(ctx).
		Scopes(salaryWorkTimeScope(f), paginate(f.Offset, f.Limit)).
		Order(orderClause(f.SortBy, f.Ascending)).
		Find(&out).Error
	return out, translate(err)
}

func (s *Store) CountSalaryWorkTimes(ctx context.Context, f models.SalaryWorkTimeFilter) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.SalaryWorkTime{}).Scopes(salaryWorkTimeScope(f)).Count(&n).Error
	return n, translate(err)
}

func (s *Store) UpdateSalaryWorkTimeStatus(ctx context.Context, id, status string) error {
	return affected(s.DB.WithContext(ctx).Model(&models.SalaryWorkTime{}).Where("id = ?", id).Update("status", status))
}
