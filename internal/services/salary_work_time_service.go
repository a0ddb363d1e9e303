package services

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/justsurfingit/goodjob-api/internal/apperrors"
	"github.com/justsurfingit/goodjob-api/internal/dtos"
	"github.com/justsurfingit/goodjob-api/internal/metrics"
	"github.com/justsurfingit/goodjob-api/internal/models"
	"github.com/justsurfingit/goodjob-api/internal/store"
	"github.com/justsurfingit/goodjob-api/internal/wage"
)

var (
	Genders         = []string{"male", "female", "other"}
	EmploymentTypes = []string{"full-time", "part-time", "intern", "temporary", "contract", "dispatched-labor"}
	yesNoDontKnow   = []string{"yes", "no", "don't know"}
	overtimeLevels  = []string{"0", "1", "2", "3"}
	SortFields      = []string{"created_at", "week_work_time", "estimated_hourly_wage"}
)

const (
	maxSalaryAmount     = 100000000
	defaultWorkingLimit = 25
	maxWorkingLimit     = 50
)

type SalaryWorkTimeService struct {
	Store   store.Store
	Matcher *CompanyMatcher
	Logger  *zap.Logger

	now func() time.Time
}

func NewSalaryWorkTimeService(s store.Store, matcher *CompanyMatcher, logger *zap.Logger) *SalaryWorkTimeService {
	return &SalaryWorkTimeService{Store: s, Matcher: matcher, Logger: logger, now: time.Now}
}

// workingDraft carries a report through the create pipeline.
type workingDraft struct {
	working      *models.SalaryWorkTime
	companyQuery string
	endingYear   string
	endingMonth  string
	salaryType   string
	salaryAmount string
	recommendBy  string
	// raw strings of the numeric fields, parsed during validation
	weekWorkTime, overtimeFrequency, dayPromised, dayReal, experienceInYear string
}

func checkWorkingInput(req *dtos.WorkingRequest) error {
	if !runeLenIn(req.JobTitle.String(), 1, 100) {
		return apperrors.Invalid("job_title must be 1 to 100 characters")
	}
	if req.Gender != "" && !oneOf(req.Gender.String(), Genders) {
		return apperrors.Invalid("gender must be one of %s", strings.Join(Genders, ", "))
	}
	if !oneOf(req.EmploymentType.String(), EmploymentTypes) {
		return apperrors.Invalid("employment_type must be one of %s", strings.Join(EmploymentTypes, ", "))
	}
	if !oneOf(req.IsCurrentlyEmployed.String(), yesNo) {
		return apperrors.Invalid("is_currently_employed must be yes or no")
	}
	return nil
}

func (s *SalaryWorkTimeService) collect(user *models.User, req *dtos.WorkingRequest) *workingDraft {
	w := &models.SalaryWorkTime{
		ID:                    models.NewID(),
		CreatedAt:             s.now(),
		UserID:                user.ID,
		CompanyID:             req.CompanyID.String(),
		JobTitle:              strings.ToUpper(req.JobTitle.String()),
		Sector:                req.Sector.String(),
		Gender:                req.Gender.String(),
		EmploymentType:        req.EmploymentType.String(),
		IsCurrentlyEmployed:   req.IsCurrentlyEmployed.String(),
		HasOvertimeSalary:     req.HasOvertimeSalary.String(),
		IsOvertimeSalaryLegal: req.IsOvertimeSalaryLegal.String(),
		HasCompensatoryDayoff: req.HasCompensatoryDayoff.String(),
		CampaignName:          req.CampaignName.String(),
		AboutThisJob:          req.AboutThisJob.String(),
		Email:                 req.Email.String(),
		ExtraInfo:             req.ExtraInfo,
		Status:                models.StatusPublished,
	}
	return &workingDraft{
		working:           w,
		companyQuery:      req.Company.String(),
		endingYear:        req.JobEndingTimeYear.String(),
		endingMonth:       req.JobEndingTimeMonth.String(),
		salaryType:        req.SalaryType.String(),
		salaryAmount:      req.SalaryAmount.String(),
		recommendBy:       req.RecommendationString.String(),
		weekWorkTime:      req.WeekWorkTime.String(),
		overtimeFrequency: req.OvertimeFrequency.String(),
		dayPromised:       req.DayPromisedWorkTime.String(),
		dayReal:           req.DayRealWorkTime.String(),
		experienceInYear:  req.ExperienceInYear.String(),
	}
}

// parseInt reads the leading integer of s, so "12.5" reads as 12.
func parseInt(s string) (int, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(math.Trunc(f)), true
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func (s *SalaryWorkTimeService) validateCommon(d *workingDraft) error {
	w := d.working
	if w.CompanyID == "" && d.companyQuery == "" {
		return apperrors.Invalid("company is required")
	}
	if w.IsCurrentlyEmployed == "yes" && (d.endingYear != "" || d.endingMonth != "") {
		return apperrors.Invalid("job ending time does not apply while currently employed")
	}
	if w.IsCurrentlyEmployed == "no" {
		if d.endingYear == "" {
			return apperrors.Invalid("job_ending_time_year is required")
		}
		if d.endingMonth == "" {
			return apperrors.Invalid("job_ending_time_month is required")
		}
		year, ok := parseInt(d.endingYear)
		if !ok {
			return apperrors.Invalid("job_ending_time_year must be a number")
		}
		month, ok := parseInt(d.endingMonth)
		if !ok {
			return apperrors.Invalid("job_ending_time_month must be a number")
		}
		if err := checkPastYearMonth("job_ending_time", year, month, s.now()); err != nil {
			return err
		}
		w.JobEndingYear, w.JobEndingMonth = year, month
	}
	for _, item := range w.ExtraInfo {
		if item.Key == "" {
			return apperrors.Invalid("extra_info data structure is wrong")
		}
	}
	if w.Email != "" && !isEmail(w.Email) {
		return apperrors.Invalid("email is not valid")
	}
	return nil
}

func (d *workingDraft) hasWorkingTimeData() bool {
	w := d.working
	return d.weekWorkTime != "" || d.overtimeFrequency != "" || d.dayPromised != "" || d.dayReal != "" ||
		w.HasOvertimeSalary != "" || w.IsOvertimeSalaryLegal != "" || w.HasCompensatoryDayoff != ""
}

func (d *workingDraft) hasSalaryData() bool {
	return d.salaryType != "" || d.salaryAmount != "" || d.experienceInYear != ""
}

func hoursInRange(raw, field string, max float64) (*float64, error) {
	if raw == "" {
		return nil, apperrors.Invalid("%s is required", field)
	}
	v, ok := parseFloat(raw)
	if !ok {
		return nil, apperrors.Invalid("%s must be a number", field)
	}
	if v < 0 || v > max {
		return nil, apperrors.Invalid("%s must be between 0 and %g", field, max)
	}
	return &v, nil
}

func validateWorkingTime(d *workingDraft) error {
	w := d.working
	var err error
	if w.WeekWorkTime, err = hoursInRange(d.weekWorkTime, "week_work_time", 168); err != nil {
		return err
	}

	if d.overtimeFrequency == "" {
		return apperrors.Invalid("overtime_frequency is required")
	}
	if !oneOf(d.overtimeFrequency, overtimeLevels) {
		return apperrors.Invalid("overtime_frequency must be 0, 1, 2 or 3")
	}
	freq, _ := strconv.Atoi(d.overtimeFrequency)
	w.OvertimeFrequency = &freq

	if w.DayPromisedWorkTime, err = hoursInRange(d.dayPromised, "day_promised_work_time", 24); err != nil {
		return err
	}
	if w.DayRealWorkTime, err = hoursInRange(d.dayReal, "day_real_work_time", 24); err != nil {
		return err
	}

	if w.HasOvertimeSalary != "" && !oneOf(w.HasOvertimeSalary, yesNoDontKnow) {
		return apperrors.Invalid("has_overtime_salary must be yes, no or don't know")
	}
	if w.IsOvertimeSalaryLegal != "" {
		if w.HasOvertimeSalary != "yes" {
			return apperrors.Invalid("is_overtime_salary_legal only applies when has_overtime_salary is yes")
		}
		if !oneOf(w.IsOvertimeSalaryLegal, yesNoDontKnow) {
			return apperrors.Invalid("is_overtime_salary_legal must be yes, no or don't know")
		}
	}
	if w.HasCompensatoryDayoff != "" && !oneOf(w.HasCompensatoryDayoff, yesNoDontKnow) {
		return apperrors.Invalid("has_compensatory_dayoff must be yes, no or don't know")
	}
	return nil
}

func validateSalary(d *workingDraft) error {
	w := d.working
	if d.salaryType == "" {
		return apperrors.Invalid("salary_type is required")
	}
	if !oneOf(d.salaryType, wage.Types) {
		return apperrors.Invalid("salary_type must be year, month, day or hour")
	}
	if d.salaryAmount == "" {
		return apperrors.Invalid("salary_amount is required")
	}
	amount, ok := parseInt(d.salaryAmount)
	if !ok {
		return apperrors.Invalid("salary_amount must be an integer")
	}
	if amount < 0 {
		return apperrors.Invalid("salary_amount must be >= 0")
	}
	if amount > maxSalaryAmount {
		return apperrors.Invalid("salary_amount must be <= %d", maxSalaryAmount)
	}
	w.SalaryType, w.SalaryAmount = d.salaryType, float64(amount)

	if d.experienceInYear == "" {
		return apperrors.Invalid("experience_in_year is required")
	}
	years, ok := parseInt(d.experienceInYear)
	if !ok {
		return apperrors.Invalid("experience_in_year must be an integer")
	}
	if years < 0 || years > 50 {
		return apperrors.Invalid("experience_in_year must be between 0 and 50")
	}
	w.ExperienceInYear = &years
	return nil
}

func (s *SalaryWorkTimeService) validate(d *workingDraft, meta RequestMeta) error {
	if err := s.validateCommon(d); err != nil {
		s.Logger.Info("validating fail", zap.String("ip", meta.IP), zap.Strings("ips", meta.IPs))
		return err
	}

	hasWorkingTime, hasSalary := d.hasWorkingTimeData(), d.hasSalaryData()
	if hasWorkingTime {
		if err := validateWorkingTime(d); err != nil {
			return err
		}
	}
	if hasSalary {
		if err := validateSalary(d); err != nil {
			return err
		}
	}
	if !hasWorkingTime && !hasSalary {
		return apperrors.Invalid("either salary or working time is required")
	}
	return nil
}

func (s *SalaryWorkTimeService) normalize(ctx context.Context, d *workingDraft) error {
	w := d.working
	if w.SalaryType != "" {
		in := wage.FromSalaryWorkTime(w)
		if v, ok := wage.Hourly(in); ok {
			w.EstimatedHourlyWage = &v
		}
		if v, ok := wage.Monthly(in); ok {
			w.EstimatedMonthlyWage = &v
		}
	}

	if w.IsCurrentlyEmployed == "no" {
		w.DataTimeYear, w.DataTimeMonth = w.JobEndingYear, w.JobEndingMonth
	} else {
		w.DataTimeYear, w.DataTimeMonth = w.CreatedAt.Year(), int(w.CreatedAt.Month())
	}

	company, err := s.Matcher.Match(ctx, w.CompanyID, d.companyQuery)
	if err != nil {
		return err
	}
	w.CompanyID, w.CompanyName = company.ID, company.Name
	return nil
}

// resolveRecommendation links the report to the recommending user when the
// string is one's id, and otherwise keeps the string as given.
func (s *SalaryWorkTimeService) resolveRecommendation(ctx context.Context, d *workingDraft) error {
	if d.recommendBy == "" {
		return nil
	}
	d.working.RecommendedBy = d.recommendBy
	if !models.IsValidID(d.recommendBy) {
		return nil
	}
	_, err := s.Store.FindUserByID(ctx, d.recommendBy)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil
	}
	if err != nil {
		return unexpected("find recommending user", err)
	}
	if err := s.Store.IncrementRecommendation(ctx, d.recommendBy); err != nil {
		return unexpected("count recommendation", err)
	}
	return nil
}

// Create runs a salary and working time report through input checks,
// validation and normalization, then stores it for user.
func (s *SalaryWorkTimeService) Create(ctx context.Context, user *models.User, req *dtos.WorkingRequest, meta RequestMeta) (*models.SalaryWorkTime, error) {
	if err := checkWorkingInput(req); err != nil {
		return nil, err
	}
	d := s.collect(user, req)
	if err := s.validate(d, meta); err != nil {
		return nil, err
	}
	if err := s.normalize(ctx, d); err != nil {
		return nil, err
	}
	w := d.working
	if w.SalaryType != "" {
		if err := wage.CheckRange(w.SalaryType, w.SalaryAmount); err != nil {
			return nil, err
		}
	}
	if err := s.resolveRecommendation(ctx, d); err != nil {
		return nil, err
	}

	if err := s.Store.CreateSalaryWorkTime(ctx, w); err != nil {
		s.Logger.Info("workings insert data fail", append(meta.fields(w.ID), zap.Error(err))...)
		return nil, unexpected("create salary work time", err)
	}
	if err := s.Store.IncrementSalaryWorkTimeCount(ctx, user.ID); err != nil {
		return nil, unexpected("count salary work time", err)
	}
	if w.Email != "" {
		if err := subscribeEmail(ctx, s.Store, user.ID, w.Email); err != nil {
			return nil, unexpected("update subscribe email", err)
		}
	}

	metrics.SalaryWorkTimesCreated.Inc()
	s.Logger.Info("workings insert data success", meta.fields(w.ID)...)
	return w, nil
}

// ListQuery is the GET /workings query string.
type ListQuery struct {
	SortBy string
	Order  string
	Page   int
	Limit  int
}

// List pages through visible reports in the requested order.
func (s *SalaryWorkTimeService) List(ctx context.Context, q ListQuery) (int64, []models.SalaryWorkTime, error) {
	if q.SortBy == "" {
		q.SortBy = "created_at"
	}
	if !oneOf(q.SortBy, SortFields) {
		return 0, nil, apperrors.Invalid("query: sort_by error")
	}
	if q.Order == "" {
		q.Order = "descending"
	}
	if !oneOf(q.Order, []string{"descending", "ascending"}) {
		return 0, nil, apperrors.Invalid("query: order error")
	}
	if q.Limit == 0 {
		q.Limit = defaultWorkingLimit
	}
	if q.Limit < 0 || q.Limit > maxWorkingLimit {
		return 0, nil, apperrors.Invalid("limit is not allow")
	}
	if q.Page < 0 {
		q.Page = 0
	}

	filter := models.SalaryWorkTimeFilter{
		OnlyVisible: true,
		SortBy:      q.SortBy,
		Ascending:   q.Order == "ascending",
		Offset:      q.Page * q.Limit,
		Limit:       q.Limit,
	}
	total, err := s.Store.CountSalaryWorkTimes(ctx, filter)
	if err != nil {
		return 0, nil, unexpected("count salary work times", err)
	}
	items, err := s.Store.ListSalaryWorkTimes(ctx, filter)
	if err != nil {
		return 0, nil, unexpected("list salary work times", err)
	}
	return total, items, nil
}

// Latest returns visible reports newest first.
func (s *SalaryWorkTimeService) Latest(ctx context.Context, start, limit int) ([]models.SalaryWorkTime, error) {
	if err := checkPage(start, limit); err != nil {
		return nil, err
	}
	out, err := s.Store.ListSalaryWorkTimes(ctx, models.SalaryWorkTimeFilter{OnlyVisible: true, Offset: start, Limit: limit})
	if err != nil {
		return nil, unexpected("list salary work times", err)
	}
	return out, nil
}

func (s *SalaryWorkTimeService) Count(ctx context.Context) (int64, error) {
	n, err := s.Store.CountSalaryWorkTimes(ctx, models.SalaryWorkTimeFilter{OnlyVisible: true})
	if err != nil {
		return 0, unexpected("count salary work times", err)
	}
	return n, nil
}

func (s *SalaryWorkTimeService) ListByUser(ctx context.Context, userID string) ([]models.SalaryWorkTime, error) {
	out, err := s.Store.ListSalaryWorkTimes(ctx, models.SalaryWorkTimeFilter{UserID: userID})
	if err != nil {
		return nil, unexpected("list salary work times", err)
	}
	return out, nil
}

func (s *SalaryWorkTimeService) CountByUser(ctx context.Context, userID string) (int64, error) {
	n, err := s.Store.CountSalaryWorkTimes(ctx, models.SalaryWorkTimeFilter{UserID: userID})
	if err != nil {
		return 0, unexpected("count salary work times", err)
	}
	return n, nil
}

// ChangeStatus publishes or hides a report. Only its reporter may do so.
func (s *SalaryWorkTimeService) ChangeStatus(ctx context.Context, user *models.User, id, status string) (*models.SalaryWorkTime, error) {
	if user == nil {
		return nil, apperrors.Unauthorized("Unauthorized")
	}
	if !oneOf(status, publishStatuses) {
		return nil, apperrors.Invalid("status must be published or hidden")
	}
	if !models.IsValidID(id) {
		return nil, apperrors.NotFound("salary work time %s not found", id)
	}
	w, err := s.Store.FindSalaryWorkTime(ctx, id)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.NotFound("salary work time %s not found", id)
	}
	if err != nil {
		return nil, unexpected("find salary work time", err)
	}
	if w.UserID != user.ID {
		return nil, apperrors.Unauthorized("user is unauthorized")
	}
	if err := s.Store.UpdateSalaryWorkTimeStatus(ctx, id, status); err != nil {
		return nil, unexpected("update salary work time status", err)
	}
	w.Status = status
	return w, nil
}
