package dtos

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/justsurfingit/goodjob-api/internal/models"
)

// FlexString accepts a JSON string or number and keeps its text, so form
// posts that send "40" and JSON clients that send 40 read the same.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected a string or a number, got %s", b)
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

// WorkingRequest is the salary and working time form.
type WorkingRequest struct {
	CompanyID           FlexString `json:"company_id"`
	Company             FlexString `json:"company"`
	JobTitle            FlexString `json:"job_title"`
	Sector              FlexString `json:"sector"`
	Gender              FlexString `json:"gender"`
	EmploymentType      FlexString `json:"employment_type"`
	IsCurrentlyEmployed FlexString `json:"is_currently_employed"`
	JobEndingTimeYear   FlexString `json:"job_ending_time_year"`
	JobEndingTimeMonth  FlexString `json:"job_ending_time_month"`

	WeekWorkTime          FlexString `json:"week_work_time"`
	OvertimeFrequency     FlexString `json:"overtime_frequency"`
	DayPromisedWorkTime   FlexString `json:"day_promised_work_time"`
	DayRealWorkTime       FlexString `json:"day_real_work_time"`
	HasOvertimeSalary     FlexString `json:"has_overtime_salary"`
	IsOvertimeSalaryLegal FlexString `json:"is_overtime_salary_legal"`
	HasCompensatoryDayoff FlexString `json:"has_compensatory_dayoff"`

	SalaryType       FlexString `json:"salary_type"`
	SalaryAmount     FlexString `json:"salary_amount"`
	ExperienceInYear FlexString `json:"experience_in_year"`

	CampaignName         FlexString             `json:"campaign_name"`
	AboutThisJob         FlexString             `json:"about_this_job"`
	Email                FlexString             `json:"email"`
	ExtraInfo            []models.ExtraInfoItem `json:"extra_info"`
	RecommendationString FlexString             `json:"recommendation_string"`
}

// WorkingView is a salary and working time record as the REST API shows it.
// The reporter's user id and recommendation never leave the server.
type WorkingView struct {
	ID                    string                 `json:"_id"`
	Company               models.CompanyRef      `json:"company"`
	JobTitle              string                 `json:"job_title"`
	Sector                string                 `json:"sector,omitempty"`
	Gender                string                 `json:"gender,omitempty"`
	EmploymentType        string                 `json:"employment_type,omitempty"`
	IsCurrentlyEmployed   string                 `json:"is_currently_employed,omitempty"`
	JobEndingTime         *models.YearMonth      `json:"job_ending_time,omitempty"`
	DataTime              *models.YearMonth      `json:"data_time,omitempty"`
	WeekWorkTime          *float64               `json:"week_work_time,omitempty"`
	OvertimeFrequency     *int                   `json:"overtime_frequency,omitempty"`
	DayPromisedWorkTime   *float64               `json:"day_promised_work_time,omitempty"`
	DayRealWorkTime       *float64               `json:"day_real_work_time,omitempty"`
	HasOvertimeSalary     string                 `json:"has_overtime_salary,omitempty"`
	IsOvertimeSalaryLegal string                 `json:"is_overtime_salary_legal,omitempty"`
	HasCompensatoryDayoff string                 `json:"has_compensatory_dayoff,omitempty"`
	ExperienceInYear      *int                   `json:"experience_in_year,omitempty"`
	Salary                *models.Salary         `json:"salary,omitempty"`
	EstimatedHourlyWage   *float64               `json:"estimated_hourly_wage,omitempty"`
	EstimatedMonthlyWage  *float64               `json:"estimated_monthly_wage,omitempty"`
	CampaignName          string                 `json:"campaign_name,omitempty"`
	AboutThisJob          string                 `json:"about_this_job,omitempty"`
	Email                 string                 `json:"email,omitempty"`
	ExtraInfo             []models.ExtraInfoItem `json:"extra_info,omitempty"`
	Status                string                 `json:"status"`
	Archive               models.Archive         `json:"archive"`
	CreatedAt             time.Time              `json:"created_at"`
}

func NewWorkingView(w *models.SalaryWorkTime) WorkingView {
	return WorkingView{
		ID:                    w.ID,
		Company:               w.Company(),
		JobTitle:              w.JobTitle,
		Sector:                w.Sector,
		Gender:                w.Gender,
		EmploymentType:        w.EmploymentType,
		IsCurrentlyEmployed:   w.IsCurrentlyEmployed,
		JobEndingTime:         w.JobEndingTime(),
		DataTime:              w.DataTime(),
		WeekWorkTime:          w.WeekWorkTime,
		OvertimeFrequency:     w.OvertimeFrequency,
		DayPromisedWorkTime:   w.DayPromisedWorkTime,
		DayRealWorkTime:       w.DayRealWorkTime,
		HasOvertimeSalary:     w.HasOvertimeSalary,
		IsOvertimeSalaryLegal: w.IsOvertimeSalaryLegal,
		HasCompensatoryDayoff: w.HasCompensatoryDayoff,
		ExperienceInYear:      w.ExperienceInYear,
		Salary:                w.Salary(),
		EstimatedHourlyWage:   w.EstimatedHourlyWage,
		EstimatedMonthlyWage:  w.EstimatedMonthlyWage,
		CampaignName:          w.CampaignName,
		AboutThisJob:          w.AboutThisJob,
		Email:                 w.Email,
		ExtraInfo:             w.ExtraInfo,
		Status:                w.Status,
		Archive:               w.Archive(),
		CreatedAt:             w.CreatedAt,
	}
}

// NewPublicWorkingView is the list form of a record. Reports are anonymous,
// so the reporter's email is only echoed back to whoever created it.
func NewPublicWorkingView(w *models.SalaryWorkTime) WorkingView {
	v := NewWorkingView(w)
	v.Email = ""
	return v
}

type CreateWorkingResponse struct {
	Working WorkingView `json:"working"`
}

type ListWorkingsResponse struct {
	Total         int64         `json:"total"`
	TimeAndSalary []WorkingView `json:"time_and_salary"`
}
