// Package memory is an in-memory implementation of store.Store. It is safe
// for concurrent use and is meant for tests and local development.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/justsurfingit/goodjob-api/internal/apperrors"
	"github.com/justsurfingit/goodjob-api/internal/models"
	"github.com/justsurfingit/goodjob-api/internal/store"
)

type likeKey struct {
	experienceID string
	userID       string
}

type Store struct {
	mu sync.RWMutex

	users            map[string]models.User
	experiences      []models.Experience
	likes            map[likeKey]struct{}
	workings         []models.SalaryWorkTime
	companies        []models.Company
	jobTitles        []models.JobTitle
	companyKeywords  []models.CompanyKeyword
	jobTitleKeywords []models.JobTitleKeyword
	recommendations  map[string]int
	emailLogs        []models.EmailLog

	now func() time.Time
}

var _ store.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		users:           make(map[string]models.User),
		likes:           make(map[likeKey]struct{}),
		recommendations: make(map[string]int),
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// SeedCompanies registers known companies, as the company registry import would.
func (s *Store) SeedCompanies(companies ...models.Company) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companies = append(s.companies, companies...)
}

// SeedJobTitles registers job titles for the job title search.
func (s *Store) SeedJobTitles(names ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range names {
		s.jobTitles = append(s.jobTitles, models.JobTitle{ID: uint(len(s.jobTitles) + 1), Name: name})
	}
}

// EmailLogs returns every email log, oldest first.
func (s *Store) EmailLogs() []models.EmailLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.EmailLog(nil), s.emailLogs...)
}

func (s *Store) stamp(t *time.Time) {
	if t.IsZero() {
		*t = s.now()
	}
}

// Users -----------------------------------------------------------------------

func (s *Store) FindUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &u, nil
}

func (s *Store) FindUserByFacebookID(_ context.Context, facebookID string) (*models.User, error) {
	return s.findUser(func(u models.User) bool { return u.FacebookID != nil && *u.FacebookID == facebookID })
}

func (s *Store) FindUserByGoogleID(_ context.Context, googleID string) (*models.User, error) {
	return s.findUser(func(u models.User) bool { return u.GoogleID != nil && *u.GoogleID == googleID })
}

func (s *Store) findUser(match func(models.User) bool) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID == "" {
		user.ID = models.NewID()
	}
	if _, exists := s.users[user.ID]; exists {
		return apperrors.ErrDuplicate
	}
	for _, u := range s.users {
		if user.FacebookID != nil && u.FacebookID != nil && *u.FacebookID == *user.FacebookID {
			return apperrors.ErrDuplicate
		}
		if user.GoogleID != nil && u.GoogleID != nil && *u.GoogleID == *user.GoogleID {
			return apperrors.ErrDuplicate
		}
	}
	s.stamp(&user.CreatedAt)
	s.users[user.ID] = *user
	return nil
}

func (s *Store) UpdateUser(_ context.Context, id string, update store.UserUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Email != nil {
		u.Email = *update.Email
	}
	if update.EmailStatus != nil {
		u.EmailStatus = *update.EmailStatus
	}
	if update.SubscribeEmail != nil {
		u.SubscribeEmail = *update.SubscribeEmail
	}
	s.users[id] = u
	return nil
}

func (s *Store) IncrementSalaryWorkTimeCount(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.TimeAndSalaryCount++
	s.users[userID] = u
	return nil
}

// Recommendations ---------------------------------------------------------------

func (s *Store) IncrementRecommendation(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recommendations[userID]++
	return nil
}

func (s *Store) FindRecommendation(_ context.Context, userID string) (*models.Recommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count, ok := s.recommendations[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &models.Recommendation{UserID: userID, Count: count}, nil
}

// Notifications -----------------------------------------------------------------

func (s *Store) PerformanceCandidates(_ context.Context, minViews int) ([]models.PerformanceCandidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var order []string
	byAuthor := make(map[string]*models.PerformanceCandidate)
	for _, e := range s.experiences {
		if !e.IsVisible() || e.ViewCount < minViews {
			continue
		}
		u, ok := s.users[e.AuthorID]
		if !ok || !u.SubscribeEmail || u.Email == "" {
			continue
		}
		c, ok := byAuthor[u.ID]
		if !ok {
			c = &models.PerformanceCandidate{User: u}
			byAuthor[u.ID] = c
			order = append(order, u.ID)
		}
		c.Experiences = append(c.Experiences, e)
	}

	out := make([]models.PerformanceCandidate, 0, len(order))
	for _, id := range order {
		c := byAuthor[id]
		for _, log := range s.emailLogs {
			if log.UserID == id {
				c.EmailLogs = append(c.EmailLogs, log)
			}
		}
		out = append(out, *c)
	}
	return out, nil
}

func (s *Store) CreateEmailLog(_ context.Context, log *models.EmailLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log.ID = uint(len(s.emailLogs) + 1)
	s.stamp(&log.CreatedAt)
	s.emailLogs = append(s.emailLogs, *log)
	return nil
}
