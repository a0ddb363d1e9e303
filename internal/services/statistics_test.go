package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justsurfingit/goodjob-api/internal/models"
)

func TestSalaryWorkTimeStats(t *testing.T) {
	records := []models.SalaryWorkTime{
		{JobTitle: "A", WeekWorkTime: ptr(40.0), EstimatedHourlyWage: ptr(200.0), EstimatedMonthlyWage: ptr(30000.0), HasOvertimeSalary: "yes", OvertimeFrequency: ptr(0)},
		{JobTitle: "A", WeekWorkTime: ptr(50.0), EstimatedMonthlyWage: ptr(40000.0), HasOvertimeSalary: "no", OvertimeFrequency: ptr(3)},
		{JobTitle: "B", EstimatedHourlyWage: ptr(300.0), HasOvertimeSalary: "don't know", OvertimeFrequency: ptr(3)},
		{JobTitle: "B", HasOvertimeSalary: "yes"},
		{JobTitle: "C"},
	}

	stats := SalaryWorkTimeStats(records)
	assert.Equal(t, 5, stats.Count)
	require.NotNil(t, stats.AverageWeekWorkTime)
	assert.Equal(t, 45.0, *stats.AverageWeekWorkTime)
	require.NotNil(t, stats.AverageEstimatedHourlyWage)
	assert.Equal(t, 250.0, *stats.AverageEstimatedHourlyWage)

	assert.Equal(t, &YesNoOrUnknownCount{Yes: 2, No: 1, Unknown: 1}, stats.HasOvertimeSalaryCount)
	assert.Equal(t, &YesNoOrUnknownCount{}, stats.HasCompensatoryDayoffCount)
	assert.Equal(t, &OvertimeFrequencyCount{Seldom: 1, AlmostEveryday: 2}, stats.OvertimeFrequencyCount)

	require.Len(t, stats.JobAverageSalaries, 1)
	assert.Equal(t, "A", stats.JobAverageSalaries[0].JobTitle)
	assert.Equal(t, 2, stats.JobAverageSalaries[0].DataCount)
	assert.Equal(t, models.Salary{Type: "month", Amount: 35000}, stats.JobAverageSalaries[0].AverageSalary)
}

func TestSalaryWorkTimeStatsWithFewRecords(t *testing.T) {
	stats := SalaryWorkTimeStats([]models.SalaryWorkTime{{HasOvertimeSalary: "yes"}})
	assert.Nil(t, stats.HasOvertimeSalaryCount)
	assert.Nil(t, stats.AverageWeekWorkTime)
	assert.Empty(t, stats.JobAverageSalaries)
}

func TestJobAverageSalariesPicksAtMostThree(t *testing.T) {
	var records []models.SalaryWorkTime
	for _, title := range []string{"A", "B", "C", "D", "E"} {
		records = append(records, models.SalaryWorkTime{JobTitle: title, EstimatedMonthlyWage: ptr(30000.0)})
	}
	got := jobAverageSalaries(records)
	assert.Len(t, got, 3)
	seen := map[string]bool{}
	for _, j := range got {
		assert.False(t, seen[j.JobTitle])
		seen[j.JobTitle] = true
	}
}

func TestExperienceStats(t *testing.T) {
	work := WorkExperienceStats([]models.Experience{
		{RecommendToOthers: "yes"}, {RecommendToOthers: "yes"}, {RecommendToOthers: "no"}, {},
	})
	assert.Equal(t, WorkExperienceStatistics{Count: 4, RecommendToOthers: YesNoOrUnknownCount{Yes: 2, No: 1, Unknown: 1}}, work)

	interview := InterviewExperienceStats([]models.Experience{{OverallRating: ptr(4.0)}, {OverallRating: ptr(3.0)}})
	assert.Equal(t, 2, interview.Count)
	require.NotNil(t, interview.AverageOverallRating)
	assert.Equal(t, 3.5, *interview.AverageOverallRating)

	assert.Nil(t, InterviewExperienceStats(nil).AverageOverallRating)
}

func TestSalaryDistribution(t *testing.T) {
	var wages []float64
	for w := 10000.0; w < 30000; w += 1000 {
		wages = append(wages, w)
	}

	bins := SalaryDistribution(wages)
	require.Len(t, bins, 4)
	assert.Equal(t, []int{5, 4, 4, 5}, []int{bins[0].DataCount, bins[1].DataCount, bins[2].DataCount, bins[3].DataCount})
	assert.Equal(t, SalaryRange{Type: "month", From: 11000, To: 15000}, bins[0].Range)
	assert.Equal(t, SalaryRange{Type: "month", From: 23000, To: 28000}, bins[3].Range)
}

func TestSalaryDistributionSmallInputs(t *testing.T) {
	assert.Empty(t, SalaryDistribution(nil))
	assert.Empty(t, SalaryDistribution([]float64{30000}))

	bins := SalaryDistribution([]float64{30000, 50000})
	require.Len(t, bins, 4)
	assert.Equal(t, 1, bins[0].DataCount)
	assert.Equal(t, SalaryRange{Type: "month", From: 30000, To: 30000}, bins[3].Range)
}
