// Package wage estimates comparable hourly and monthly wages from a salary
// report and checks that reported amounts are plausible.
package wage

import (
	"math"

	"github.com/justsurfingit/goodjob-api/internal/apperrors"
	"github.com/justsurfingit/goodjob-api/internal/models"
)

const (
	TypeHour  = "hour"
	TypeDay   = "day"
	TypeMonth = "month"
	TypeYear  = "year"
)

// Types lists the accepted salary types.
var Types = []string{TypeYear, TypeMonth, TypeDay, TypeHour}

// Twelve national holidays plus seven days of annual leave.
const daysOff = 12 + 7

// Input is what the estimates need from a report. Zero or missing work
// times count as unknown.
type Input struct {
	SalaryType      string
	Amount          float64
	WeekWorkTime    *float64
	DayRealWorkTime *float64
}

func FromSalaryWorkTime(w *models.SalaryWorkTime) Input {
	return Input{
		SalaryType:      w.SalaryType,
		Amount:          w.SalaryAmount,
		WeekWorkTime:    w.WeekWorkTime,
		DayRealWorkTime: w.DayRealWorkTime,
	}
}

func known(v *float64) (float64, bool) {
	if v == nil || *v == 0 || math.IsNaN(*v) {
		return 0, false
	}
	return *v, true
}

// yearlyHours is the yearly working hours implied by the weekly and daily
// work times.
func (in Input) yearlyHours() (float64, bool) {
	week, okWeek := known(in.WeekWorkTime)
	day, okDay := known(in.DayRealWorkTime)
	if !okWeek || !okDay {
		return 0, false
	}
	hours := 52*week - daysOff*day
	if hours <= 0 {
		return 0, false
	}
	return hours, true
}

// Hourly estimates the hourly wage. The second result is false when the
// report does not carry enough information.
func Hourly(in Input) (float64, bool) {
	switch in.SalaryType {
	case TypeHour:
		return in.Amount, true
	case TypeDay:
		day, ok := known(in.DayRealWorkTime)
		if !ok {
			return 0, false
		}
		return in.Amount / day, true
	case TypeMonth:
		hours, ok := in.yearlyHours()
		if !ok {
			return 0, false
		}
		return in.Amount * 12 / hours, true
	case TypeYear:
		hours, ok := in.yearlyHours()
		if !ok {
			return 0, false
		}
		return in.Amount / hours, true
	}
	return 0, false
}

// Monthly estimates the monthly wage.
func Monthly(in Input) (float64, bool) {
	switch in.SalaryType {
	case TypeHour:
		hours, ok := in.yearlyHours()
		if !ok {
			return 0, false
		}
		return in.Amount * hours / 12, true
	case TypeDay:
		hours, ok := in.yearlyHours()
		if !ok {
			return 0, false
		}
		return in.Amount / *in.DayRealWorkTime * hours / 12, true
	case TypeMonth:
		return in.Amount, true
	case TypeYear:
		return in.Amount / 12, true
	}
	return 0, false
}

// Range is the plausible amount window for one salary type.
type Range struct {
	Min, Max float64
}

var Ranges = map[string]Range{
	TypeHour:  {Min: 10, Max: 10000},
	TypeDay:   {Min: 100, Max: 120000},
	TypeMonth: {Min: 1000, Max: 1000000},
	TypeYear:  {Min: 10000, Max: 12000000},
}

// CheckRange rejects amounts that are very likely a typo for the given type.
func CheckRange(salaryType string, amount float64) error {
	r, ok := Ranges[salaryType]
	if !ok {
		return apperrors.Invalid("salary type must be one of year, month, day, hour")
	}
	if amount != math.Trunc(amount) {
		return apperrors.Invalid("salary amount must be an integer")
	}
	if amount < r.Min {
		return apperrors.Invalid("salary is too low. A zero may be missing, or the salary type (year/month/day/hour) may be wrong, please check again")
	}
	if amount > r.Max {
		return apperrors.Invalid("salary is too high. There may be an extra zero, or the salary type (year/month/day/hour) may be wrong, please check again")
	}
	return nil
}
