package memory

import (
	"context"
	"slices"
	"sort"

	"github.com/justsurfingit/goodjob-api/internal/apperrors"
	"github.com/justsurfingit/goodjob-api/internal/models"
)

func (s *Store) CreateSalaryWorkTime(_ context.Context, w *models.SalaryWorkTime) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w.ID == "" {
		w.ID = models.NewID()
	}
	s.stamp(&w.CreatedAt)
	s.workings = append(s.workings, *w)
	return nil
}

func (s *Store) FindSalaryWorkTime(_ context.Context, id string) (*models.SalaryWorkTime, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.workingIndex(id)
	if i < 0 {
		return nil, apperrors.ErrNotFound
	}
	w := s.workings[i]
	return &w, nil
}

func (s *Store) workingIndex(id string) int {
	for i := range s.workings {
		if s.workings[i].ID == id {
			return i
		}
	}
	return -1
}

func matchWorking(w models.SalaryWorkTime, f models.SalaryWorkTimeFilter) bool {
	if f.UserID != "" && w.UserID != f.UserID {
		return false
	}
	if len(f.CompanyNames) > 0 && !slices.Contains(f.CompanyNames, w.CompanyName) {
		return false
	}
	if len(f.JobTitles) > 0 && !slices.Contains(f.JobTitles, w.JobTitle) {
		return false
	}
	if f.OnlyVisible && !w.IsVisible() {
		return false
	}
	return true
}

func (s *Store) filterWorkings(f models.SalaryWorkTimeFilter) []models.SalaryWorkTime {
	var out []models.SalaryWorkTime
	for _, w := range s.workings {
		if matchWorking(w, f) {
			out = append(out, w)
		}
	}
	return out
}

// compareWorkings orders by the filter's sort column. Missing values sort lowest.
func compareWorkings(a, b models.SalaryWorkTime, sortBy string) int {
	cmpOptional := func(x, y *float64) int {
		switch {
		case x == nil && y == nil:
			return 0
		case x == nil:
			return -1
		case y == nil:
			return 1
		case *x < *y:
			return -1
		case *x > *y:
			return 1
		}
		return 0
	}
	switch sortBy {
	case "week_work_time":
		return cmpOptional(a.WeekWorkTime, b.WeekWorkTime)
	case "estimated_hourly_wage":
		return cmpOptional(a.EstimatedHourlyWage, b.EstimatedHourlyWage)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func (s *Store) ListSalaryWorkTimes(_ context.Context, f models.SalaryWorkTimeFilter) ([]models.SalaryWorkTime, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.filterWorkings(f)
	sort.SliceStable(out, func(i, j int) bool {
		c := compareWorkings(out[i], out[j], f.SortBy)
		if f.Ascending {
			return c < 0
		}
		return c > 0
	})
	return page(out, f.Offset, f.Limit), nil
}

func (s *Store) CountSalaryWorkTimes(_ context.Context, f models.SalaryWorkTimeFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.filterWorkings(f))), nil
}

func (s *Store) UpdateSalaryWorkTimeStatus(_ context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.workingIndex(id)
	if i < 0 {
		return apperrors.ErrNotFound
	}
	s.workings[i].Status = status
	return nil
}
