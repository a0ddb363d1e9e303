package wage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/justsurfingit/goodjob-api/internal/apperrors"
)

func f(v float64) *float64 { return &v }

func TestHourly(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want float64
		ok   bool
	}{
		{"hour is the amount", Input{SalaryType: TypeHour, Amount: 180}, 180, true},
		{"day divides by real work time", Input{SalaryType: TypeDay, Amount: 1600, DayRealWorkTime: f(8)}, 200, true},
		{"day without work time", Input{SalaryType: TypeDay, Amount: 1600}, 0, false},
		{"month", Input{SalaryType: TypeMonth, Amount: 22000, WeekWorkTime: f(40), DayRealWorkTime: f(8)}, 22000 * 12 / (52*40 - 19*8.0), true},
		{"year", Input{SalaryType: TypeYear, Amount: 1000000, WeekWorkTime: f(40), DayRealWorkTime: f(8)}, 1000000 / (52*40 - 19*8.0), true},
		{"month without week", Input{SalaryType: TypeMonth, Amount: 22000, DayRealWorkTime: f(8)}, 0, false},
		{"zero work time is unknown", Input{SalaryType: TypeMonth, Amount: 22000, WeekWorkTime: f(0), DayRealWorkTime: f(8)}, 0, false},
		{"non positive hours", Input{SalaryType: TypeYear, Amount: 1000000, WeekWorkTime: f(1), DayRealWorkTime: f(24)}, 0, false},
		{"unknown type", Input{SalaryType: "week", Amount: 1}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Hourly(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestMonthly(t *testing.T) {
	hours := 52*40 - 19*8.0
	tests := []struct {
		name string
		in   Input
		want float64
		ok   bool
	}{
		{"hour", Input{SalaryType: TypeHour, Amount: 200, WeekWorkTime: f(40), DayRealWorkTime: f(8)}, 200 * hours / 12, true},
		{"hour without times", Input{SalaryType: TypeHour, Amount: 200}, 0, false},
		{"day", Input{SalaryType: TypeDay, Amount: 1600, WeekWorkTime: f(40), DayRealWorkTime: f(8)}, 200 * hours / 12, true},
		{"month", Input{SalaryType: TypeMonth, Amount: 45000}, 45000, true},
		{"year", Input{SalaryType: TypeYear, Amount: 1200000}, 100000, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Monthly(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCheckRange(t *testing.T) {
	assert.NoError(t, CheckRange(TypeHour, 10))
	assert.NoError(t, CheckRange(TypeYear, 12000000))
	assert.NoError(t, CheckRange(TypeMonth, 40000))

	for _, tc := range []struct {
		typ    string
		amount float64
	}{
		{TypeHour, 9},
		{TypeDay, 120001},
		{TypeMonth, 999},
		{TypeYear, 12000001},
		{TypeMonth, 40000.5},
		{"week", 100},
	} {
		err := CheckRange(tc.typ, tc.amount)
		httpErr, ok := apperrors.As(err)
		if assert.True(t, ok, "%s %v", tc.typ, tc.amount) {
			assert.Equal(t, 422, httpErr.Status)
		}
	}
}
