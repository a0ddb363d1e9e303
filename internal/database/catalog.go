package database

import (
	"context"
	"strings"

	"github.com/justsurfingit/goodjob-api/internal/models"
)

// keywordWindow is how many recent searches feed the keyword ranking.
const keywordWindow = 10000

func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func (s *Store) FindCompanyByID(ctx context.Context, id string) (*models.Company, error) {
	var c models.Company
	if err := s.DB.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *Store) FindCompaniesByNameOrID(ctx context.Context, query string) ([]models.Company, error) {
	var out []models.Company
	err := s.DB.WithContext(ctx).Where("name = ? OR id = ?", query, query).Find(&out).Error
	return out, translate(err)
}

func (s *Store) SearchCompanies(ctx context.Context, nameContains string) ([]models.CompanyRef, error) {
	out := []models.CompanyRef{}
	err := s.DB.WithContext(ctx).Model(&models.SalaryWorkTime{}).
		Distinct("company_id AS id", "company_name AS name").
		Where(visible).
		Where("company_name LIKE ?", likePattern(nameContains)).
		Order("name").
		Scan(&out).Error
	return out, translate(err)
}

func (s *Store) CompanyHasData(ctx context.Context, name string) (bool, error) {
	var found bool
	err := s.DB.WithContext(ctx).Raw(`SELECT EXISTS (
		SELECT 1 FROM salary_work_times WHERE `+visible+` AND company_name = @name
		UNION ALL
		SELECT 1 FROM experiences WHERE `+visible+` AND company_name = @name
	)`, map[string]any{"name": name}).Scan(&found).Error
	return found, translate(err)
}

func (s *Store) CompanyNamesHavingData(ctx context.Context) ([]string, error) {
	var names []string
	err := s.DB.WithContext(ctx).Raw(`
		SELECT company_name FROM salary_work_times WHERE ` + visible + `
		UNION
		SELECT company_name FROM experiences WHERE ` + visible + `
		ORDER BY 1`).Scan(&names).Error
	return names, translate(err)
}

func (s *Store) PopularCompanyNames(ctx context.Context, limit int) ([]string, error) {
	var names []string
	err := s.DB.WithContext(ctx).Raw(`
		SELECT company_name FROM (
			SELECT company_name, job_title
			FROM salary_work_times
			WHERE `+visible+` AND estimated_monthly_wage IS NOT NULL
			GROUP BY company_name, job_title
			HAVING COUNT(*) >= 3
		) AS titles
		GROUP BY company_name
		HAVING COUNT(*) >= 3
		ORDER BY random()
		LIMIT ?`, limit).Scan(&names).Error
	return names, translate(err)
}

func (s *Store) SearchJobTitles(ctx context.Context, nameContains string) ([]string, error) {
	var names []string
	err := s.DB.WithContext(ctx).Model(&models.SalaryWorkTime{}).
		Distinct("job_title").
		Where(visible).
		Where("job_title LIKE ?", likePattern(nameContains)).
		Order("job_title").
		Pluck("job_title", &names).Error
	return names, translate(err)
}

func (s *Store) JobTitleHasData(ctx context.Context, name string) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.SalaryWorkTime{}).
		Where(visible).
		Where("job_title = ?", name).
		Limit(1).
		Count(&n).Error
	return n > 0, translate(err)
}

func (s *Store) JobTitleNamesHavingData(ctx context.Context) ([]string, error) {
	var names []string
	err := s.DB.WithContext(ctx).Raw(`
		SELECT job_title FROM salary_work_times WHERE ` + visible + `
		UNION
		SELECT job_title FROM experiences WHERE ` + visible + `
		ORDER BY 1`).Scan(&names).Error
	return names, translate(err)
}

func (s *Store) PopularJobTitles(ctx context.Context, limit int) ([]models.JobTitleCount, error) {
	var out []models.JobTitleCount
	err := s.DB.WithContext(ctx).Raw(`
		SELECT job_title AS name, COUNT(*) AS count
		FROM salary_work_times
		WHERE `+visible+` AND estimated_monthly_wage IS NOT NULL
		GROUP BY job_title
		HAVING COUNT(*) >= 5
		ORDER BY random()
		LIMIT ?`, limit).Scan(&out).Error
	return out, translate(err)
}

func (s *Store) MonthlyWages(ctx context.Context, jobTitle string) ([]float64, error) {
	var wages []float64
	err := s.DB.WithContext(ctx).Model(&models.SalaryWorkTime{}).
		Where(visible).
		Where("job_title = ? AND estimated_monthly_wage IS NOT NULL", jobTitle).
		Order("estimated_monthly_wage").
		Pluck("estimated_monthly_wage", &wages).Error
	return wages, translate(err)
}

func (s *Store) ListJobTitles(ctx context.Context, nameContains string, offset, limit int) ([]models.JobTitle, error) {
	var out []models.JobTitle
	err := s.DB.WithContext(ctx).
		Where("name LIKE ?", likePattern(nameContains)).
		Order("id").
		Scopes(paginate(offset, limit)).
		Find(&out).Error
	return out, translate(err)
}

func (s *Store) AddCompanyKeyword(ctx context.Context, word string) error {
	return translate(s.DB.WithContext(ctx).Create(&models.CompanyKeyword{Word: word}).Error)
}

func (s *Store) AddJobTitleKeyword(ctx context.Context, word string) error {
	return translate(s.DB.WithContext(ctx).Create(&models.JobTitleKeyword{Word: word}).Error)
}

func (s *Store) TopCompanyKeywords(ctx context.Context, limit int) ([]string, error) {
	return s.topKeywords(ctx, "company_keywords", limit)
}

func (s *Store) TopJobTitleKeywords(ctx context.Context, limit int) ([]string, error) {
	return s.topKeywords(ctx, "job_title_keywords", limit)
}

func (s *Store) topKeywords(ctx context.Context, table string, limit int) ([]string, error) {
	var words []string
	err := s.DB.WithContext(ctx).Raw(`
		SELECT word FROM (
			SELECT word FROM `+table+` ORDER BY created_at DESC, id DESC LIMIT ?
		) AS recent
		GROUP BY word
		ORDER BY COUNT(*) DESC, word
		LIMIT ?`, keywordWindow, limit).Scan(&words).Error
	return words, translate(err)
}
