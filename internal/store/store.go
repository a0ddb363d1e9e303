// Package store declares the persistence contract used by the services.
// internal/database implements it on Postgres, internal/database/memory in
// process memory.
package store

import (
	"context"
	"time"

	"github.com/justsurfingit/goodjob-api/internal/models"
)

// UserUpdate lists the user columns that can change after sign-up. Nil
// fields are left alone.
type UserUpdate struct {
	Name           *string
	Email          *string
	EmailStatus    *string
	SubscribeEmail *bool
}

type UserStore interface {
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByFacebookID(ctx context.Context, facebookID string) (*models.User, error)
	FindUserByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, id string, update UserUpdate) error
	IncrementSalaryWorkTimeCount(ctx context.Context, userID string) error
}

type ExperienceStore interface {
	CreateExperience(ctx context.Context, e *models.Experience) error
	FindExperience(ctx context.Context, id string) (*models.Experience, error)
	// ListExperiences returns the newest experiences first.
	ListExperiences(ctx context.Context, f models.ExperienceFilter) ([]models.Experience, error)
	CountExperiences(ctx context.Context, f models.ExperienceFilter) (int64, error)
	// LongestVisibleExperiences returns visible experiences created after
	// since, longest content first.
	LongestVisibleExperiences(ctx context.Context, since time.Time, limit int) ([]models.Experience, error)
	UpdateExperienceStatus(ctx context.Context, id, status string) error
	IncrementExperienceViews(ctx context.Context, ids []string) error

	// LikeExperience records the like and bumps like_count atomically,
	// returning the new count. A second like by the same user is
	// ErrDuplicate.
	LikeExperience(ctx context.Context, experienceID, userID string) (int, error)
	// UnlikeExperience removes the like and lowers like_count (never below
	// zero) atomically. A missing like is ErrNotFound.
	UnlikeExperience(ctx context.Context, experienceID, userID string) (int, error)
	HasExperienceLike(ctx context.Context, experienceID, userID string) (bool, error)
}

type SalaryWorkTimeStore interface {
	CreateSalaryWorkTime(ctx context.Context, w *models.SalaryWorkTime) error
	FindSalaryWorkTime(ctx context.Context, id string) (*models.SalaryWorkTime, error)
	ListSalaryWorkTimes(ctx context.Context, f models.SalaryWorkTimeFilter) ([]models.SalaryWorkTime, error)
	CountSalaryWorkTimes(ctx context.Context, f models.SalaryWorkTimeFilter) (int64, error)
	UpdateSalaryWorkTimeStatus(ctx context.Context, id, status string) error
}

// CatalogStore answers the company and job title questions that span both
// experiences and salary/work-time records.
type CatalogStore interface {
	FindCompanyByID(ctx context.Context, id string) (*models.Company, error)
	// FindCompaniesByNameOrID matches an exact (upper-cased) name or tax id.
	FindCompaniesByNameOrID(ctx context.Context, query string) ([]models.Company, error)

	SearchCompanies(ctx context.Context, nameContains string) ([]models.CompanyRef, error)
	CompanyHasData(ctx context.Context, name string) (bool, error)
	CompanyNamesHavingData(ctx context.Context) ([]string, error)
	PopularCompanyNames(ctx context.Context, limit int) ([]string, error)

	SearchJobTitles(ctx context.Context, nameContains string) ([]string, error)
	JobTitleHasData(ctx context.Context, name string) (bool, error)
	JobTitleNamesHavingData(ctx context.Context) ([]string, error)
	PopularJobTitles(ctx context.Context, limit int) ([]models.JobTitleCount, error)
	// MonthlyWages returns the job title's estimated monthly wages ascending.
	MonthlyWages(ctx context.Context, jobTitle string) ([]float64, error)

	ListJobTitles(ctx context.Context, nameContains string, offset, limit int) ([]models.JobTitle, error)

	AddCompanyKeyword(ctx context.Context, word string) error
	AddJobTitleKeyword(ctx context.Context, word string) error
	TopCompanyKeywords(ctx context.Context, limit int) ([]string, error)
	TopJobTitleKeywords(ctx context.Context, limit int) ([]string, error)
}

type RecommendationStore interface {
	IncrementRecommendation(ctx context.Context, userID string) error
	FindRecommendation(ctx context.Context, userID string) (*models.Recommendation, error)
}

type NotificationStore interface {
	// PerformanceCandidates groups visible experiences with at least
	// minViews views by author, keeping authors who subscribe and have an
	// email, together with each author's email logs.
	PerformanceCandidates(ctx context.Context, minViews int) ([]models.PerformanceCandidate, error)
	CreateEmailLog(ctx context.Context, log *models.EmailLog) error
}

// Store is everything the API needs from persistence.
type Store interface {
	UserStore
	ExperienceStore
	SalaryWorkTimeStore
	CatalogStore
	RecommendationStore
	NotificationStore
}
