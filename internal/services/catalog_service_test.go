package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justsurfingit/goodjob-api/internal/database/memory"
	"github.com/justsurfingit/goodjob-api/internal/models"
)

func seedWorkings(t *testing.T, s *memory.Store, rows ...models.SalaryWorkTime) {
	t.Helper()
	for i := range rows {
		if rows[i].Status == "" {
			rows[i].Status = models.StatusPublished
		}
		require.NoError(t, s.CreateSalaryWorkTime(context.Background(), &rows[i]))
	}
}

func TestSearchCompaniesRecordsKeywords(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedWorkings(t, s,
		models.SalaryWorkTime{CompanyName: "GOODJOB", JobTitle: "ENGINEER"},
		models.SalaryWorkTime{CompanyName: "BADJOB", JobTitle: "ENGINEER", Status: models.StatusHidden},
	)
	svc := NewCatalogService(s, nil, nopLogger)

	got, err := svc.SearchCompanies(ctx, "job")
	require.NoError(t, err)
	assert.Equal(t, []models.CompanyRef{{Name: "GOODJOB"}}, got)

	_, err = svc.SearchCompanies(ctx, "good")
	require.NoError(t, err)
	_, err = svc.SearchCompanies(ctx, "good")
	require.NoError(t, err)
	_, err = svc.SearchCompanies(ctx, "  ")
	require.NoError(t, err)

	words, err := svc.CompanyKeywords(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"good", "job"}, words)

	_, err = svc.CompanyKeywords(ctx, 0)
	assertStatus(t, err, 422)
	_, err = svc.JobTitleKeywords(ctx, 21)
	assertStatus(t, err, 422)
}

func TestCompanyAndJobTitleLookups(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedWorkings(t, s, models.SalaryWorkTime{CompanyName: "GOODJOB", JobTitle: "ENGINEER"})
	require.NoError(t, s.CreateExperience(ctx, &models.Experience{
		Type: models.ExperienceTypeInterview, CompanyName: "SOMEPLACE", JobTitle: "DESIGNER", Status: models.StatusPublished,
	}))
	svc := NewCatalogService(s, nil, nopLogger)

	c, err := svc.Company(ctx, "SOMEPLACE")
	require.NoError(t, err)
	assert.Equal(t, &models.CompanyRef{Name: "SOMEPLACE"}, c)

	c, err = svc.Company(ctx, "NOWHERE")
	require.NoError(t, err)
	assert.Nil(t, c)

	title, err := svc.JobTitle(ctx, "ENGINEER")
	require.NoError(t, err)
	require.NotNil(t, title)

	names, err := svc.CompaniesHavingData(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"GOODJOB", "SOMEPLACE"}, names)

	titles, err := svc.JobTitlesHavingData(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ENGINEER", "DESIGNER"}, titles)

	found, err := svc.SearchJobTitles(ctx, "engin")
	require.NoError(t, err)
	assert.Equal(t, []string{"ENGINEER"}, found)
}

func TestBatchFetchersGroupByName(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedWorkings(t, s,
		models.SalaryWorkTime{CompanyName: "A", JobTitle: "X"},
		models.SalaryWorkTime{CompanyName: "A", JobTitle: "Y"},
		models.SalaryWorkTime{CompanyName: "B", JobTitle: "X"},
		models.SalaryWorkTime{CompanyName: "C", JobTitle: "X"},
	)
	require.NoError(t, s.CreateExperience(ctx, &models.Experience{Type: models.ExperienceTypeWork, CompanyName: "A", JobTitle: "X", Status: models.StatusPublished}))
	require.NoError(t, s.CreateExperience(ctx, &models.Experience{Type: models.ExperienceTypeInterview, CompanyName: "A", JobTitle: "X", Status: models.StatusPublished}))
	svc := NewCatalogService(s, nil, nopLogger)

	byCompany, err := svc.SalaryWorkTimesByCompanies(ctx, []string{"A", "B"})
	require.NoError(t, err)
	assert.Len(t, byCompany["A"], 2)
	assert.Len(t, byCompany["B"], 1)
	assert.NotContains(t, byCompany, "C")

	byTitle, err := svc.SalaryWorkTimesByJobTitles(ctx, []string{"X"})
	require.NoError(t, err)
	assert.Len(t, byTitle["X"], 3)

	work, err := svc.ExperiencesByCompanies(ctx, models.ExperienceTypeWork, []string{"A"})
	require.NoError(t, err)
	assert.Len(t, work["A"], 1)

	interviews, err := svc.ExperiencesByJobTitles(ctx, models.ExperienceTypeInterview, []string{"X"})
	require.NoError(t, err)
	assert.Len(t, interviews["X"], 1)
}

func TestCatalogSalaryDistribution(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	for _, w := range []float64{50000, 30000, 40000} {
		seedWorkings(t, s, models.SalaryWorkTime{CompanyName: "A", JobTitle: "X", EstimatedMonthlyWage: ptr(w)})
	}
	svc := NewCatalogService(s, nil, nopLogger)

	bins, err := svc.SalaryDistribution(ctx, "X")
	require.NoError(t, err)
	require.Len(t, bins, 4)
	total := 0
	for _, b := range bins {
		total += b.DataCount
	}
	assert.Equal(t, 2, total)

	bins, err = svc.SalaryDistribution(ctx, "NONE")
	require.NoError(t, err)
	assert.Empty(t, bins)
}

func TestJobServiceSearch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	for i := 0; i < 30; i++ {
		s.SeedJobTitles("ENGINEER " + string(rune('A'+i)))
	}
	s.SeedJobTitles("DESIGNER")
	svc := NewJobService(s)

	first, err := svc.Search(ctx, "ENGINEER", 0)
	require.NoError(t, err)
	assert.Len(t, first, 25)

	second, err := svc.Search(ctx, "ENGINEER", 1)
	require.NoError(t, err)
	assert.Len(t, second, 5)

	all, err := svc.Search(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 25)
}

func TestUserRecommendation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	svc := NewUserService(s)

	rec, err := svc.Recommendation(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, &models.Recommendation{UserID: "u1"}, rec)

	require.NoError(t, s.IncrementRecommendation(ctx, "u1"))
	rec, err = svc.Recommendation(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Count)
}
