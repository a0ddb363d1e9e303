package database

import (
	"context"

	"github.com/justsurfingit/goodjob-api/internal/models"
)

func (s *Store) PerformanceCandidates(ctx context.Context, minViews int) ([]models.PerformanceCandidate, error) {
	db := s.DB.WithContext(ctx)

	var experiences []models.Experience
	err := db.Select("experiences.*").
		Joins("JOIN users ON users.id = experiences.author_id").
		Where("experiences.status = 'published' AND experiences.is_archived = false").
		Where("experiences.view_count >= ?", minViews).
		Where("users.subscribe_email = true AND users.email <> ''").
		Order("experiences.created_at").
		Find(&experiences).Error
	if err != nil {
		return nil, translate(err)
	}
	if len(experiences) == 0 {
		return nil, nil
	}

	var order []string
	byAuthor := make(map[string]*models.PerformanceCandidate)
	for _, e := range experiences {
		c, ok := byAuthor[e.AuthorID]
		if !ok {
			c = &models.PerformanceCandidate{}
			byAuthor[e.AuthorID] = c
			order = append(order, e.AuthorID)
		}
		c.Experiences = append(c.Experiences, e)
	}

	var users []models.User
	if err := db.Where("id IN ?", order).Find(&users).Error; err != nil {
		return nil, translate(err)
	}
	for _, u := range users {
		byAuthor[u.ID].User = u
	}

	var logs []models.EmailLog
	if err := db.Where("user_id IN ?", order).Order("created_at").Find(&logs).Error; err != nil {
		return nil, translate(err)
	}
	for _, l := range logs {
		byAuthor[l.UserID].EmailLogs = append(byAuthor[l.UserID].EmailLogs, l)
	}

	out := make([]models.PerformanceCandidate, 0, len(order))
	for _, id := range order {
		out = append(out, *byAuthor[id])
	}
	return out, nil
}

func (s *Store) CreateEmailLog(ctx context.Context, log *models.EmailLog) error {
	return translate(s.DB.WithContext(ctx).Create(log).Error)
}
