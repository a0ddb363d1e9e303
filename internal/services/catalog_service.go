package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/justsurfingit/goodjob-api/internal/apperrors"
	"github.com/justsurfingit/goodjob-api/internal/cache"
	"github.com/justsurfingit/goodjob-api/internal/models"
	"github.com/justsurfingit/goodjob-api/internal/store"
)

const catalogCacheTTL = 10 * time.Minute

// CatalogService answers company and job title questions and records what
// people search for.
type CatalogService struct {
	Store  store.Store
	Cache  *cache.Redis
	Logger *zap.Logger
}

func NewCatalogService(s store.Store, c *cache.Redis, logger *zap.Logger) *CatalogService {
	return &CatalogService{Store: s, Cache: c, Logger: logger}
}

// cached serves key from Redis, loading and storing it on a miss. Cache
// failures are logged and the value is loaded from the store.
func cached[T any](ctx context.Context, s *CatalogService, key string, load func() (T, error)) (T, error) {
	var v T
	hit, err := s.Cache.Get(ctx, key, &v)
	if err != nil {
		s.Logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}
	if hit {
		return v, nil
	}

	v, err = load()
	if err != nil {
		return v, err
	}
	if err := s.Cache.Set(ctx, key, v, catalogCacheTTL); err != nil {
		s.Logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return v, nil
}

func (s *CatalogService) SearchCompanies(ctx context.Context, query string) ([]models.CompanyRef, error) {
	s.recordKeyword(ctx, s.Store.AddCompanyKeyword, query)
	out, err := s.Store.SearchCompanies(ctx, strings.ToUpper(query))
	if err != nil {
		return nil, unexpected("search companies", err)
	}
	return out, nil
}

// Company returns the company when any visible record carries its name.
func (s *CatalogService) Company(ctx context.Context, name string) (*models.CompanyRef, error) {
	ok, err := s.Store.CompanyHasData(ctx, name)
	if err != nil {
		return nil, unexpected("find company", err)
	}
	if !ok {
		return nil, nil
	}
	return &models.CompanyRef{Name: name}, nil
}

func (s *CatalogService) CompaniesHavingData(ctx context.Context) ([]string, error) {
	return cached(ctx, s, "companies_having_data", func() ([]string, error) {
		names, err := s.Store.CompanyNamesHavingData(ctx)
		if err != nil {
			return nil, unexpected("list companies having data", err)
		}
		return names, nil
	})
}

func (s *CatalogService) PopularCompanies(ctx context.Context, limit int) ([]string, error) {
	if limit < 0 {
		return nil, apperrors.Invalid("limit must be >= 0")
	}
	names, err := s.Store.PopularCompanyNames(ctx, limit)
	if err != nil {
		return nil, unexpected("list popular companies", err)
	}
	return names, nil
}

func (s *CatalogService) SearchJobTitles(ctx context.Context, query string) ([]string, error) {
	s.recordKeyword(ctx, s.Store.AddJobTitleKeyword, query)
	out, err := s.Store.SearchJobTitles(ctx, strings.ToUpper(query))
	if err != nil {
		return nil, unexpected("search job titles", err)
	}
	return out, nil
}

func (s *CatalogService) JobTitle(ctx context.Context, name string) (*string, error) {
	ok, err := s.Store.JobTitleHasData(ctx, name)
	if err != nil {
		return nil, unexpected("find job title", err)
	}
	if !ok {
		return nil, nil
	}
	return &name, nil
}

func (s *CatalogService) JobTitlesHavingData(ctx context.Context) ([]string, error) {
	return cached(ctx, s, "job_titles_having_data", func() ([]string, error) {
		names, err := s.Store.JobTitleNamesHavingData(ctx)
		if err != nil {
			return nil, unexpected("list job titles having data", err)
		}
		return names, nil
	})
}

func (s *CatalogService) PopularJobTitles(ctx context.Context, limit int) ([]models.JobTitleCount, error) {
	if limit < 0 {
		return nil, apperrors.Invalid("limit must be >= 0")
	}
	out, err := s.Store.PopularJobTitles(ctx, limit)
	if err != nil {
		return nil, unexpected("list popular job titles", err)
	}
	return out, nil
}

func checkKeywordLimit(limit int) error {
	if limit < 1 || limit > 20 {
		return apperrors.Invalid("limit must be between 1 and 20")
	}
	return nil
}

// CompanyKeywords returns the most searched company words.
func (s *CatalogService) CompanyKeywords(ctx context.Context, limit int) ([]string, error) {
	if err := checkKeywordLimit(limit); err != nil {
		return nil, err
	}
	return cached(ctx, s, fmt.Sprintf("company_keywords:%d", limit), func() ([]string, error) {
		words, err := s.Store.TopCompanyKeywords(ctx, limit)
		if err != nil {
			return nil, unexpected("list company keywords", err)
		}
		return words, nil
	})
}

func (s *CatalogService) JobTitleKeywords(ctx context.Context, limit int) ([]string, error) {
	if err := checkKeywordLimit(limit); err != nil {
		return nil, err
	}
	return cached(ctx, s, fmt.Sprintf("job_title_keywords:%d", limit), func() ([]string, error) {
		words, err := s.Store.TopJobTitleKeywords(ctx, limit)
		if err != nil {
			return nil, unexpected("list job title keywords", err)
		}
		return words, nil
	})
}

// recordKeyword stores a search word. Failing to record never fails the
// search itself.
func (s *CatalogService) recordKeyword(ctx context.Context, add func(context.Context, string) error, query string) {
	word := strings.TrimSpace(query)
	if word == "" {
		return
	}
	if err := add(ctx, word); err != nil {
		s.Logger.Warn("record keyword failed", zap.String("keyword", word), zap.Error(err))
	}
}

func (s *CatalogService) SalaryDistribution(ctx context.Context, jobTitle string) ([]SalaryDistributionBin, error) {
	wages, err := s.Store.MonthlyWages(ctx, jobTitle)
	if err != nil {
		return nil, unexpected("list monthly wages", err)
	}
	return SalaryDistribution(wages), nil
}

// SalaryWorkTimesByCompanies fetches visible reports for every name in one
// query, grouped by company name.
func (s *CatalogService) SalaryWorkTimesByCompanies(ctx context.Context, names []string) (map[string][]models.SalaryWorkTime, error) {
	rows, err := s.Store.ListSalaryWorkTimes(ctx, models.SalaryWorkTimeFilter{OnlyVisible: true, CompanyNames: names})
	if err != nil {
		return nil, unexpected("list salary work times", err)
	}
	return groupBy(rows, func(w *models.SalaryWorkTime) string { return w.CompanyName }), nil
}

func (s *CatalogService) SalaryWorkTimesByJobTitles(ctx context.Context, names []string) (map[string][]models.SalaryWorkTime, error) {
	rows, err := s.Store.ListSalaryWorkTimes(ctx, models.SalaryWorkTimeFilter{OnlyVisible: true, JobTitles: names})
	if err != nil {
		return nil, unexpected("list salary work times", err)
	}
	return groupBy(rows, func(w *models.SalaryWorkTime) string { return w.JobTitle }), nil
}

// ExperiencesByCompanies fetches visible experiences of one type for every
// company name in one query.
func (s *CatalogService) ExperiencesByCompanies(ctx context.Context, typ string, names []string) (map[string][]models.Experience, error) {
	rows, err := s.Store.ListExperiences(ctx, models.ExperienceFilter{OnlyVisible: true, Type: typ, CompanyNames: names})
	if err != nil {
		return nil, unexpected("list experiences", err)
	}
	return groupBy(rows, func(e *models.Experience) string { return e.CompanyName }), nil
}

func (s *CatalogService) ExperiencesByJobTitles(ctx context.Context, typ string, names []string) (map[string][]models.Experience, error) {
	rows, err := s.Store.ListExperiences(ctx, models.ExperienceFilter{OnlyVisible: true, Type: typ, JobTitles: names})
	if err != nil {
		return nil, unexpected("list experiences", err)
	}
	return groupBy(rows, func(e *models.Experience) string { return e.JobTitle }), nil
}

func groupBy[T any](rows []T, key func(*T) string) map[string][]T {
	out := make(map[string][]T)
	for i := range rows {
		k := key(&rows[i])
		out[k] = append(out[k], rows[i])
	}
	return out
}
