package services

import (
	"context"
	"errors"
	"math/rand/v2"
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

var Regions = []string{
	"彰化縣", "嘉義市", "嘉義縣", "新竹市", "新竹縣",
	"花蓮縣", "高雄市", "基隆市", "金門縣", "連江縣",
	"苗栗縣", "南投縣", "新北市", "澎湖縣", "屏東縣",
	"臺中市", "臺南市", "臺北市", "臺東縣", "桃園市",
	"宜蘭縣", "雲林縣",
}

var Educations = []string{
	"大學", "碩士", "博士", "高職", "五專", "二專", "二技", "高中", "國中", "國小",
}

var publishStatuses = []string{models.StatusPublished, models.StatusHidden}

const (
	maxInterviewQAs       = 30
	popularWindow         = 30 * 24 * time.Hour
	maxPopularReturnCount = 20
)

type ExperienceService struct {
	Store   store.Store
	Matcher *CompanyMatcher
	Logger  *zap.Logger

	now func() time.Time
}

func NewExperienceService(s store.Store, matcher *CompanyMatcher, logger *zap.Logger) *ExperienceService {
	return &ExperienceService{Store: s, Matcher: matcher, Logger: logger, now: time.Now}
}

func validateExperience(req *dtos.ExperienceRequest) error {
	if strings.TrimSpace(req.CompanyQuery) == "" {
		return apperrors.Invalid("company_query is required")
	}
	if req.Region == "" {
		return apperrors.Invalid("region is required")
	}
	if !oneOf(req.Region, Regions) {
		return apperrors.Invalid("region %s is not allowed", req.Region)
	}
	if strings.TrimSpace(req.JobTitle) == "" {
		return apperrors.Invalid("job_title is required")
	}
	if !runeLenIn(req.Title, 1, 50) {
		return apperrors.Invalid("title must be 1 to 50 characters")
	}
	if len(req.Sections) == 0 {
		return apperrors.Invalid("sections are required")
	}
	for _, section := range req.Sections {
		if strings.TrimSpace(section.Content) == "" {
			return apperrors.Invalid("section content is required")
		}
		if section.Subtitle != nil && !runeLenIn(*section.Subtitle, 1, 25) {
			return apperrors.Invalid("section subtitle must be 1 to 25 characters")
		}
		if !runeLenIn(section.Content, 1, 5000) {
			return apperrors.Invalid("section content must be 1 to 5000 characters")
		}
	}
	if y := req.ExperienceInYear; y != nil && (*y < 0 || *y > 50) {
		return apperrors.Invalid("experience_in_year must be between 0 and 50")
	}
	if req.Education != "" && !oneOf(req.Education, Educations) {
		return apperrors.Invalid("education %s is not allowed", req.Education)
	}
	if req.Email != "" && !isEmail(req.Email) {
		return apperrors.Invalid("email is not valid")
	}
	if req.Status != "" && !oneOf(req.Status, publishStatuses) {
		return apperrors.Invalid("status must be published or hidden")
	}
	if req.Salary != nil {
		if !oneOf(req.Salary.Type, wage.Types) {
			return apperrors.Invalid("salary type must be year, month, day or hour")
		}
		if req.Salary.Amount < 0 {
			return apperrors.Invalid("salary amount must be >= 0")
		}
		if err := wage.CheckRange(req.Salary.Type, req.Salary.Amount); err != nil {
			return err
		}
	}
	return nil
}

func (s *ExperienceService) validateWork(req *dtos.WorkExperienceRequest) error {
	if err := validateExperience(&req.ExperienceRequest); err != nil {
		return err
	}
	if req.IsCurrentlyEmployed == "" {
		return apperrors.Invalid("is_currently_employed is required")
	}
	if !oneOf(req.IsCurrentlyEmployed, yesNo) {
		return apperrors.Invalid("is_currently_employed must be yes or no")
	}
	if req.IsCurrentlyEmployed == "no" {
		if req.JobEndingTime == nil {
			return apperrors.Invalid("job_ending_time is required")
		}
		if err := checkPastYearMonth("job_ending_time", req.JobEndingTime.Year, req.JobEndingTime.Month, s.now()); err != nil {
			return err
		}
	}
	if w := req.WeekWorkTime; w != nil && (*w < 0 || *w > 168) {
		return apperrors.Invalid("week_work_time must be between 0 and 168")
	}
	if req.RecommendToOthers != "" && !oneOf(req.RecommendToOthers, yesNo) {
		return apperrors.Invalid("recommend_to_others must be yes or no")
	}
	return nil
}

func (s *ExperienceService) validateInterview(req *dtos.InterviewExperienceRequest) error {
	if err := validateExperience(&req.ExperienceRequest); err != nil {
		return err
	}
	if req.InterviewTime == nil {
		return apperrors.Invalid("interview_time is required")
	}
	if err := checkPastYearMonth("interview_time", req.InterviewTime.Year, req.InterviewTime.Month, s.now()); err != nil {
		return err
	}
	if !runeLenIn(req.InterviewResult, 1, 100) {
		return apperrors.Invalid("interview_result must be 1 to 100 characters")
	}
	if req.OverallRating == nil {
		return apperrors.Invalid("overall_rating is required")
	}
	if *req.OverallRating < 1 || *req.OverallRating > 5 {
		return apperrors.Invalid("overall_rating must be between 1 and 5")
	}
	if len(req.InterviewQAs) > maxInterviewQAs {
		return apperrors.Invalid("at most %d interview_qas", maxInterviewQAs)
	}
	for _, qa := range req.InterviewQAs {
		if !runeLenIn(qa.Question, 1, 250) {
			return apperrors.Invalid("interview question must be 1 to 250 characters")
		}
		if !runeLenIn(qa.Answer, 0, 5000) {
			return apperrors.Invalid("interview answer must be at most 5000 characters")
		}
	}
	for _, q := range req.InterviewSensitiveQuestions {
		if !runeLenIn(q, 1, 20) {
			return apperrors.Invalid("interview sensitive question must be 1 to 20 characters")
		}
	}
	return nil
}

// newExperience fills the fields every experience type shares.
func (s *ExperienceService) newExperience(ctx context.Context, typ string, author *models.User, req *dtos.ExperienceRequest) (*models.Experience, error) {
	company, err := s.Matcher.Match(ctx, req.CompanyID, req.CompanyQuery)
	if err != nil {
		return nil, err
	}

	sections := make(models.Sections, 0, len(req.Sections))
	for _, section := range req.Sections {
		sections = append(sections, models.Section{Subtitle: section.Subtitle, Content: section.Content})
	}

	e := &models.Experience{
		ID:               models.NewID(),
		CreatedAt:        s.now(),
		Type:             typ,
		AuthorID:         author.ID,
		CompanyID:        company.ID,
		CompanyName:      company.Name,
		JobTitle:         strings.ToUpper(strings.TrimSpace(req.JobTitle)),
		Region:           req.Region,
		Title:            req.Title,
		Sections:         sections,
		ContentLength:    models.SectionsLength(sections),
		ExperienceInYear: req.ExperienceInYear,
		Education:        req.Education,
		Email:            req.Email,
		Status:           req.Status,
	}
	if e.Status == "" {
		e.Status = models.StatusPublished
	}
	if req.Salary != nil {
		e.SalaryType = req.Salary.Type
		e.SalaryAmount = req.Salary.Amount
	}
	return e, nil
}

func (s *ExperienceService) insert(ctx context.Context, author *models.User, e *models.Experience, meta RequestMeta) error {
	if err := s.Store.CreateExperience(ctx, e); err != nil {
		s.Logger.Info(e.Type+" experiences insert data fail", append(meta.fields(e.ID), zap.Error(err))...)
		return unexpected("create experience", err)
	}
	if e.Email != "" {
		if err := subscribeEmail(ctx, s.Store, author.ID, e.Email); err != nil {
			return unexpected("update subscribe email", err)
		}
	}
	metrics.ExperiencesCreated.WithLabelValues(e.Type).Inc()
	s.Logger.Info(e.Type+" experiences insert data success", meta.fields(e.ID)...)
	return nil
}

func (s *ExperienceService) CreateWorkExperience(ctx context.Context, author *models.User, req *dtos.WorkExperienceRequest, meta RequestMeta) (*models.Experience, error) {
	if err := s.validateWork(req); err != nil {
		return nil, err
	}
	e, err := s.newExperience(ctx, models.ExperienceTypeWork, author, &req.ExperienceRequest)
	if err != nil {
		return nil, err
	}

	e.IsCurrentlyEmployed = req.IsCurrentlyEmployed
	e.WeekWorkTime = req.WeekWorkTime
	e.RecommendToOthers = req.RecommendToOthers
	if req.IsCurrentlyEmployed == "yes" {
		e.DataTimeYear, e.DataTimeMonth = e.CreatedAt.Year(), int(e.CreatedAt.Month())
	} else {
		e.JobEndingYear, e.JobEndingMonth = req.JobEndingTime.Year, req.JobEndingTime.Month
		e.DataTimeYear, e.DataTimeMonth = e.JobEndingYear, e.JobEndingMonth
	}

	if err := s.insert(ctx, author, e, meta); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *ExperienceService) CreateInterviewExperience(ctx context.Context, author *models.User, req *dtos.InterviewExperienceRequest, meta RequestMeta) (*models.Experience, error) {
	if err := s.validateInterview(req); err != nil {
		return nil, err
	}
	e, err := s.newExperience(ctx, models.ExperienceTypeInterview, author, &req.ExperienceRequest)
	if err != nil {
		return nil, err
	}

	e.InterviewYear, e.InterviewMonth = req.InterviewTime.Year, req.InterviewTime.Month
	e.InterviewResult = req.InterviewResult
	rating := float64(*req.OverallRating)
	e.OverallRating = &rating
	for _, qa := range req.InterviewQAs {
		e.InterviewQAs = append(e.InterviewQAs, models.InterviewQA{Question: qa.Question, Answer: qa.Answer})
	}
	e.InterviewSensitiveQuestions = req.InterviewSensitiveQuestions

	if err := s.insert(ctx, author, e, meta); err != nil {
		return nil, err
	}
	return e, nil
}

// Get returns a visible experience, or nil when id is malformed or names
// nothing public.
func (s *ExperienceService) Get(ctx context.Context, id string) (*models.Experience, error) {
	if !models.IsValidID(id) {
		return nil, nil
	}
	e, err := s.Store.FindExperience(ctx, id)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, unexpected("find experience", err)
	}
	if !e.IsVisible() {
		return nil, nil
	}
	return e, nil
}

// Popular samples returnNumber of the sampleNumber longest experiences
// published in the last 30 days.
func (s *ExperienceService) Popular(ctx context.Context, returnNumber, sampleNumber int) ([]models.Experience, error) {
	if returnNumber < 0 || returnNumber > maxPopularReturnCount {
		return nil, apperrors.Invalid("returnNumber must be between 0 and %d", maxPopularReturnCount)
	}
	if sampleNumber < 0 {
		return nil, apperrors.Invalid("sampleNumber must be >= 0")
	}

	longest, err := s.Store.LongestVisibleExperiences(ctx, s.now().Add(-popularWindow), sampleNumber)
	if err != nil {
		return nil, unexpected("popular experiences", err)
	}
	rand.Shuffle(len(longest), func(i, j int) { longest[i], longest[j] = longest[j], longest[i] })
	return longest[:min(returnNumber, len(longest))], nil
}

func (s *ExperienceService) ListByAuthor(ctx context.Context, authorID string, start, limit int) ([]models.Experience, error) {
	if err := checkPage(start, limit); err != nil {
		return nil, err
	}
	out, err := s.Store.ListExperiences(ctx, models.ExperienceFilter{AuthorID: authorID, Offset: start, Limit: limit})
	if err != nil {
		return nil, unexpected("list experiences", err)
	}
	return out, nil
}

func (s *ExperienceService) CountByAuthor(ctx context.Context, authorID string) (int64, error) {
	n, err := s.Store.CountExperiences(ctx, models.ExperienceFilter{AuthorID: authorID})
	if err != nil {
		return 0, unexpected("count experiences", err)
	}
	return n, nil
}

// ChangeStatus publishes or hides an experience. Only its author may do so.
func (s *ExperienceService) ChangeStatus(ctx context.Context, user *models.User, id, status string) (*models.Experience, error) {
	if user == nil {
		return nil, apperrors.Unauthorized("Unauthorized")
	}
	if !oneOf(status, publishStatuses) {
		return nil, apperrors.Invalid("status must be published or hidden")
	}
	e, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.AuthorID != user.ID {
		return nil, apperrors.Unauthorized("user is unauthorized")
	}
	if err := s.Store.UpdateExperienceStatus(ctx, id, status); err != nil {
		return nil, unexpected("update experience status", err)
	}
	e.Status = status
	return e, nil
}

func (s *ExperienceService) find(ctx context.Context, id string) (*models.Experience, error) {
	if !models.IsValidID(id) {
		return nil, apperrors.NotFound("experience %s not found", id)
	}
	e, err := s.Store.FindExperience(ctx, id)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.NotFound("experience %s not found", id)
	}
	if err != nil {
		return nil, unexpected("find experience", err)
	}
	return e, nil
}

// View counts one read of each experience. Malformed ids are skipped.
func (s *ExperienceService) View(ctx context.Context, ids []string) error {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if models.IsValidID(id) {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return nil
	}
	if err := s.Store.IncrementExperienceViews(ctx, valid); err != nil {
		return unexpected("view experiences", err)
	}
	return nil
}

// Like records the user's like and returns the new like count.
func (s *ExperienceService) Like(ctx context.Context, user *models.User, id string) (int, error) {
	if _, err := s.find(ctx, id); err != nil {
		return 0, err
	}
	count, err := s.Store.LikeExperience(ctx, id, user.ID)
	if errors.Is(err, apperrors.ErrDuplicate) {
		return 0, apperrors.Forbidden("this experience has been liked")
	}
	if err != nil {
		return 0, unexpected("like experience", err)
	}
	return count, nil
}

// Unlike removes the user's like and returns the new like count.
func (s *ExperienceService) Unlike(ctx context.Context, user *models.User, id string) (int, error) {
	if _, err := s.find(ctx, id); err != nil {
		return 0, err
	}
	count, err := s.Store.UnlikeExperience(ctx, id, user.ID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return 0, apperrors.NotFound("this experience has not been liked")
	}
	if err != nil {
		return 0, unexpected("unlike experience", err)
	}
	return count, nil
}

// Liked reports whether user liked the experience, or nil without a user.
func (s *ExperienceService) Liked(ctx context.Context, user *models.User, id string) (*bool, error) {
	if user == nil {
		return nil, nil
	}
	liked, err := s.Store.HasExperienceLike(ctx, id, user.ID)
	if err != nil {
		return nil, unexpected("find like", err)
	}
	return &liked, nil
}
