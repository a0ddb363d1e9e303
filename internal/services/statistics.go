package services

import (
	"math"
	"math/rand/v2"

	"github.com/justsurfingit/goodjob-api/internal/models"
	"github.com/justsurfingit/goodjob-api/internal/wage"
)

// Yes/no/unknown counts are only reported for at least this many records.
const minYesNoCount = 5

const maxJobAverageSalaries = 3

type YesNoOrUnknownCount struct {
	Yes     int `json:"yes"`
	No      int `json:"no"`
	Unknown int `json:"unknown"`
}

type OvertimeFrequencyCount struct {
	Seldom         int `json:"seldom"`
	Sometimes      int `json:"sometimes"`
	Usually        int `json:"usually"`
	AlmostEveryday int `json:"almost_everyday"`
}

type JobAverageSalary struct {
	JobTitle      string        `json:"job_title"`
	DataCount     int           `json:"data_count"`
	AverageSalary models.Salary `json:"average_salary"`
}

type SalaryWorkTimeStatistics struct {
	Count                      int                     `json:"count"`
	AverageWeekWorkTime        *float64                `json:"average_week_work_time"`
	AverageEstimatedHourlyWage *float64                `json:"average_estimated_hourly_wage"`
	HasCompensatoryDayoffCount *YesNoOrUnknownCount    `json:"has_compensatory_dayoff_count"`
	HasOvertimeSalaryCount     *YesNoOrUnknownCount    `json:"has_overtime_salary_count"`
	IsOvertimeSalaryLegalCount *YesNoOrUnknownCount    `json:"is_overtime_salary_legal_count"`
	OvertimeFrequencyCount     *OvertimeFrequencyCount `json:"overtime_frequency_count"`
	JobAverageSalaries         []JobAverageSalary      `json:"job_average_salaries"`
}

type WorkExperienceStatistics struct {
	Count             int                 `json:"count"`
	RecommendToOthers YesNoOrUnknownCount `json:"recommend_to_others"`
}

type InterviewExperienceStatistics struct {
	Count                int      `json:"count"`
	AverageOverallRating *float64 `json:"overall_rating"`
}

func average(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	avg := sum / float64(len(values))
	return &avg
}

// yesNoOrUnknown counts the answers picked out by field. "don't know"
// counts as unknown, blanks are not counted.
func yesNoOrUnknown(records []models.SalaryWorkTime, field func(*models.SalaryWorkTime) string) *YesNoOrUnknownCount {
	if len(records) < minYesNoCount {
		return nil
	}
	var c YesNoOrUnknownCount
	for i := range records {
		switch field(&records[i]) {
		case "yes":
			c.Yes++
		case "no":
			c.No++
		case "don't know":
			c.Unknown++
		}
	}
	return &c
}

func overtimeFrequencies(records []models.SalaryWorkTime) *OvertimeFrequencyCount {
	c := &OvertimeFrequencyCount{}
	for _, r := range records {
		if r.OvertimeFrequency == nil {
			continue
		}
		switch *r.OvertimeFrequency {
		case 0:
			c.Seldom++
		case 1:
			c.Sometimes++
		case 2:
			c.Usually++
		case 3:
			c.AlmostEveryday++
		}
	}
	return c
}

// jobAverageSalaries averages the estimated monthly wage per job title and
// returns a random pick of at most three titles.
func jobAverageSalaries(records []models.SalaryWorkTime) []JobAverageSalary {
	wages := map[string][]float64{}
	var titles []string
	for _, r := range records {
		if r.EstimatedMonthlyWage == nil || *r.EstimatedMonthlyWage == 0 || math.IsNaN(*r.EstimatedMonthlyWage) {
			continue
		}
		if _, ok := wages[r.JobTitle]; !ok {
			titles = append(titles, r.JobTitle)
		}
		wages[r.JobTitle] = append(wages[r.JobTitle], *r.EstimatedMonthlyWage)
	}
	rand.Shuffle(len(titles), func(i, j int) { titles[i], titles[j] = titles[j], titles[i] })
	if len(titles) > maxJobAverageSalaries {
		titles = titles[:maxJobAverageSalaries]
	}

	out := make([]JobAverageSalary, 0, len(titles))
	for _, title := range titles {
		avg := average(wages[title])
		out = append(out, JobAverageSalary{
			JobTitle:      title,
			DataCount:     len(wages[title]),
			AverageSalary: models.Salary{Type: wage.TypeMonth, Amount: math.Round(*avg)},
		})
	}
	return out
}

// SalaryWorkTimeStats aggregates a list of salary and working time reports.
func SalaryWorkTimeStats(records []models.SalaryWorkTime) SalaryWorkTimeStatistics {
	var weekTimes, hourlyWages []float64
	for _, r := range records {
		if r.WeekWorkTime != nil && !math.IsNaN(*r.WeekWorkTime) {
			weekTimes = append(weekTimes, *r.WeekWorkTime)
		}
		if r.EstimatedHourlyWage != nil && !math.IsNaN(*r.EstimatedHourlyWage) {
			hourlyWages = append(hourlyWages, *r.EstimatedHourlyWage)
		}
	}

	return SalaryWorkTimeStatistics{
		Count:                      len(records),
		AverageWeekWorkTime:        average(weekTimes),
		AverageEstimatedHourlyWage: average(hourlyWages),
		HasCompensatoryDayoffCount: yesNoOrUnknown(records, func(r *models.SalaryWorkTime) string { return r.HasCompensatoryDayoff }),
		HasOvertimeSalaryCount:     yesNoOrUnknown(records, func(r *models.SalaryWorkTime) string { return r.HasOvertimeSalary }),
		IsOvertimeSalaryLegalCount: yesNoOrUnknown(records, func(r *models.SalaryWorkTime) string { return r.IsOvertimeSalaryLegal }),
		OvertimeFrequencyCount:     overtimeFrequencies(records),
		JobAverageSalaries:         jobAverageSalaries(records),
	}
}

func WorkExperienceStats(experiences []models.Experience) WorkExperienceStatistics {
	stats := WorkExperienceStatistics{Count: len(experiences)}
	for _, e := range experiences {
		switch e.RecommendToOthers {
		case "yes":
			stats.RecommendToOthers.Yes++
		case "no":
			stats.RecommendToOthers.No++
		default:
			stats.RecommendToOthers.Unknown++
		}
	}
	return stats
}

func InterviewExperienceStats(experiences []models.Experience) InterviewExperienceStatistics {
	var ratings []float64
	for _, e := range experiences {
		if e.OverallRating != nil {
			ratings = append(ratings, *e.OverallRating)
		}
	}
	return InterviewExperienceStatistics{Count: len(experiences), AverageOverallRating: average(ratings)}
}

type SalaryDistributionBin struct {
	DataCount int         `json:"data_count"`
	Range     SalaryRange `json:"range"`
}

type SalaryRange struct {
	Type string  `json:"type"`
	From float64 `json:"from"`
	To   float64 `json:"to"`
}

const distributionBins = 4

// SalaryDistribution buckets ascending monthly wages into four bins after
// trimming the lowest 5% and keeping the next 90%. Bin width is a multiple of
// 1000, a bin's upper bound is inclusive and the last bin takes whatever the
// others leave.
func SalaryDistribution(wages []float64) []SalaryDistributionBin {
	n := len(wages)
	if n < 2 {
		return []SalaryDistributionBin{}
	}
	skip := n * 5 / 100
	keep := n * 90 / 100
	kept := wages[skip : skip+keep]
	min, max := kept[0], kept[len(kept)-1]
	width := 1000 * math.Floor((max-min)/distributionBins/1000)

	counts := make([]int, distributionBins)
	bin := 0
	for i := 0; i < len(kept); {
		if kept[i] <= min+width*float64(bin+1) {
			counts[bin]++
			i++
			continue
		}
		bin++
		if bin >= distributionBins-1 {
			counts[bin] += len(kept) - i
			break
		}
	}

	bins := make([]SalaryDistributionBin, distributionBins)
	for i := range bins {
		to := math.Floor(min + float64(i+1)*width)
		if i == distributionBins-1 {
			to = math.Floor(max)
		}
		bins[i] = SalaryDistributionBin{
			DataCount: counts[i],
			Range:     SalaryRange{Type: wage.TypeMonth, From: math.Floor(min + float64(i)*width), To: to},
		}
	}
	return bins
}
