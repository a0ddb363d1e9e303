package services

import (
	"context"
	"strings"

	"github.com/justsurfingit/goodjob-api/internal/models"
	"github.com/justsurfingit/goodjob-api/internal/store"
)

const jobTitlesPerPage = 25

// JobService searches the job title list.
type JobService struct {
	Store store.CatalogStore
}

func NewJobService(s store.CatalogStore) *JobService {
	return &JobService{
		Store: s,
	}
}

// Search returns one page of job titles containing key. An empty key
// matches every title.
func (s *JobService) Search(ctx context.Context, key string, page int) ([]models.JobTitle, error) {
	if page < 0 {
		page = 0
	}
	titles, err := s.Store.ListJobTitles(ctx, strings.TrimSpace(key), page*jobTitlesPerPage, jobTitlesPerPage)
	if err != nil {
		return nil, unexpected("list job titles", err)
	}
	return titles, nil
}
