package memory

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/justsurfingit/goodjob-api/internal/apperrors"
	"github.com/justsurfingit/goodjob-api/internal/models"
)

func (s *Store) CreateExperience(_ context.Context, e *models.Experience) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = models.NewID()
	}
	s.stamp(&e.CreatedAt)
	s.experiences = append(s.experiences, *e)
	return nil
}

func (s *Store) FindExperience(_ context.Context, id string) (*models.Experience, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.experienceIndex(id)
	if i < 0 {
		return nil, apperrors.ErrNotFound
	}
	e := s.experiences[i]
	return &e, nil
}

func (s *Store) experienceIndex(id string) int {
	for i := range s.experiences {
		if s.experiences[i].ID == id {
			return i
		}
	}
	return -1
}

func matchExperience(e models.Experience, f models.ExperienceFilter) bool {
	if f.AuthorID != "" && e.AuthorID != f.AuthorID {
		return false
	}
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	if len(f.CompanyNames) > 0 && !slices.Contains(f.CompanyNames, e.CompanyName) {
		return false
	}
	if len(f.JobTitles) > 0 && !slices.Contains(f.JobTitles, e.JobTitle) {
		return false
	}
	if f.OnlyVisible && !e.IsVisible() {
		return false
	}
	return true
}

func (s *Store) filterExperiences(f models.ExperienceFilter) []models.Experience {
	var out []models.Experience
	for _, e := range s.experiences {
		if matchExperience(e, f) {
			out = append(out, e)
		}
	}
	return out
}

func (s *Store) ListExperiences(_ context.Context, f models.ExperienceFilter) ([]models.Experience, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.filterExperiences(f)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, f.Offset, f.Limit), nil
}

func (s *Store) CountExperiences(_ context.Context, f models.ExperienceFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.filterExperiences(f))), nil
}

func (s *Store) LongestVisibleExperiences(_ context.Context, since time.Time, limit int) ([]models.Experience, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Experience
	for _, e := range s.experiences {
		if e.IsVisible() && !e.CreatedAt.Before(since) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ContentLength > out[j].ContentLength })
	return page(out, 0, limit), nil
}

func (s *Store) UpdateExperienceStatus(_ context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.experienceIndex(id)
	if i < 0 {
		return apperrors.ErrNotFound
	}
	s.experiences[i].Status = status
	return nil
}

func (s *Store) IncrementExperienceViews(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if i := s.experienceIndex(id); i >= 0 {
			s.experiences[i].ViewCount++
		}
	}
	return nil
}

func (s *Store) LikeExperience(_ context.Context, experienceID, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.experienceIndex(experienceID)
	if i < 0 {
		return 0, apperrors.ErrNotFound
	}
	key := likeKey{experienceID: experienceID, userID: userID}
	if _, ok := s.likes[key]; ok {
		return 0, apperrors.ErrDuplicate
	}
	s.likes[key] = struct{}{}
	s.experiences[i].LikeCount++
	return s.experiences[i].LikeCount, nil
}

func (s *Store) UnlikeExperience(_ context.Context, experienceID, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.experienceIndex(experienceID)
	if i < 0 {
		return 0, apperrors.ErrNotFound
	}
	key := likeKey{experienceID: experienceID, userID: userID}
	if _, ok := s.likes[key]; !ok {
		return 0, apperrors.ErrNotFound
	}
	delete(s.likes, key)
	s.experiences[i].LikeCount = max(0, s.experiences[i].LikeCount-1)
	return s.experiences[i].LikeCount, nil
}

func (s *Store) HasExperienceLike(_ context.Context, experienceID, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.likes[likeKey{experienceID: experienceID, userID: userID}]
	return ok, nil
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
