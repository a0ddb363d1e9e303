package graph

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/justsurfingit/goodjob-api/internal/auth"
	"github.com/justsurfingit/goodjob-api/internal/database/memory"
	"github.com/justsurfingit/goodjob-api/internal/mailer"
	"github.com/justsurfingit/goodjob-api/internal/middleware"
	"github.com/justsurfingit/goodjob-api/internal/models"
	"github.com/justsurfingit/goodjob-api/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubVerifier map[string]*auth.Account

func (v stubVerifier) Verify(_ context.Context, credential string) (*auth.Account, error) {
	if a, ok := v[credential]; ok {
		return a, nil
	}
	return nil, auth.ErrProviderRejected
}

type fixture struct {
	schema *Schema
	store  *memory.Store
	user   *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memory.New()
	s.SeedCompanies(models.Company{ID: "12345678", Name: "GOODJOB"})
	logger := zap.NewNop()
	matcher := services.NewCompanyMatcher(s)

	svc := Services{
		Experiences: services.NewExperienceService(s, matcher, logger),
		Workings:    services.NewSalaryWorkTimeService(s, matcher, logger),
		Catalog:     services.NewCatalogService(s, nil, logger),
		Auth: services.NewAuthService(s,
			stubVerifier{"fb-token": {ID: "fb-1", Name: "Mark", Email: "mark@example.com"}},
			stubVerifier{},
			auth.NewTokenIssuer("secret", 0),
			auth.NewTokenIssuer("verify-secret", 0),
			mailer.Log{Logger: logger},
			logger,
		),
	}
	schema, err := NewSchema(svc, logger)
	require.NoError(t, err)

	user := &models.User{Name: "ann", EmailStatus: models.EmailStatusUnverified}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return &fixture{schema: schema, store: s, user: user}
}

func (f *fixture) run(t *testing.T, ctx context.Context, query string, vars map[string]any) *graphql.Result {
	t.Helper()
	return f.schema.Execute(ctx, Request{Query: query, Variables: vars})
}

func (f *fixture) asUser() context.Context {
	return middleware.WithUser(context.Background(), f.user)
}

func decodeData(t *testing.T, res *graphql.Result, dst any) {
	t.Helper()
	require.Empty(t, res.Errors)
	raw, err := json.Marshal(res.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, dst))
}

func errorCode(t *testing.T, res *graphql.Result) string {
	t.Helper()
	require.NotEmpty(t, res.Errors)
	code, _ := res.Errors[0].Extensions["code"].(string)
	return code
}

func (f *fixture) seedWorking(t *testing.T, w models.SalaryWorkTime) {
	t.Helper()
	if w.Status == "" {
		w.Status = models.StatusPublished
	}
	require.NoError(t, f.store.CreateSalaryWorkTime(context.Background(), &w))
}

func ptr[T any](v T) *T { return &v }

func TestCompanyQueryBatchesAndAggregates(t *testing.T) {
	f := newFixture(t)
	for _, wage := range []float64{30000, 40000} {
		f.seedWorking(t, models.SalaryWorkTime{
			CompanyName: "GOODJOB", JobTitle: "ENGINEER",
			SalaryType: "month", SalaryAmount: wage, EstimatedMonthlyWage: ptr(wage),
			WeekWorkTime: ptr(40.0), DataTimeYear: 2024, DataTimeMonth: 1,
		})
	}
	f.seedWorking(t, models.SalaryWorkTime{CompanyName: "OTHER", JobTitle: "ENGINEER", DataTimeYear: 2024, DataTimeMonth: 1})

	res := f.run(t, context.Background(), `{
		companies_having_data {
			name
			salary_work_times { job_title { name } salary { type amount } }
			salary_work_time_statistics { count average_week_work_time has_overtime_salary_count { yes } }
		}
	}`, nil)

	var data struct {
		CompaniesHavingData []struct {
			Name            string `json:"name"`
			SalaryWorkTimes []struct {
				JobTitle struct{ Name string } `json:"job_title"`
				Salary   models.Salary         `json:"salary"`
			} `json:"salary_work_times"`
			Statistics struct {
				Count               int      `json:"count"`
				AverageWeekWorkTime *float64 `json:"average_week_work_time"`
				HasOvertimeSalary   any      `json:"has_overtime_salary_count"`
			} `json:"salary_work_time_statistics"`
		} `json:"companies_having_data"`
	}
	decodeData(t, res, &data)

	byName := map[string]int{}
	for i, c := range data.CompaniesHavingData {
		byName[c.Name] = i
	}
	require.Contains(t, byName, "GOODJOB")
	goodjob := data.CompaniesHavingData[byName["GOODJOB"]]
	require.Len(t, goodjob.SalaryWorkTimes, 2)
	assert.Equal(t, "ENGINEER", goodjob.SalaryWorkTimes[0].JobTitle.Name)
	assert.Equal(t, "month", goodjob.SalaryWorkTimes[0].Salary.Type)
	assert.Equal(t, 2, goodjob.Statistics.Count)
	require.NotNil(t, goodjob.Statistics.AverageWeekWorkTime)
	assert.Equal(t, 40.0, *goodjob.Statistics.AverageWeekWorkTime)
	assert.Nil(t, goodjob.Statistics.HasOvertimeSalary)

	other := data.CompaniesHavingData[byName["OTHER"]]
	assert.Len(t, other.SalaryWorkTimes, 1)
}

func TestJobTitleSalaryDistribution(t *testing.T) {
	f := newFixture(t)
	for _, wage := range []float64{30000, 50000} {
		f.seedWorking(t, models.SalaryWorkTime{CompanyName: "GOODJOB", JobTitle: "ENGINEER", EstimatedMonthlyWage: ptr(wage), DataTimeYear: 2024, DataTimeMonth: 1})
	}

	res := f.run(t, context.Background(), `{
		job_title(name: "ENGINEER") { name salary_distribution { bins { data_count range { type from to } } } }
		missing: job_title(name: "NOBODY") { name }
	}`, nil)

	var data struct {
		JobTitle struct {
			Name         string `json:"name"`
			Distribution struct {
				Bins []struct {
					DataCount int `json:"data_count"`
				} `json:"bins"`
			} `json:"salary_distribution"`
		} `json:"job_title"`
		Missing *struct{} `json:"missing"`
	}
	decodeData(t, res, &data)
	assert.Equal(t, "ENGINEER", data.JobTitle.Name)
	assert.Len(t, data.JobTitle.Distribution.Bins, 4)
	assert.Nil(t, data.Missing)
}

func TestMeRequiresUser(t *testing.T) {
	f := newFixture(t)

	res := f.run(t, context.Background(), `{ me { _id } }`, nil)
	assert.Equal(t, "UNAUTHENTICATED", errorCode(t, res))

	res = f.run(t, f.asUser(), `{ me { _id name email_status experience_count salary_work_time_count experiences { id } } }`, nil)
	var data struct {
		Me struct {
			ID                  string `json:"_id"`
			Name                string `json:"name"`
			EmailStatus         string `json:"email_status"`
			ExperienceCount     int    `json:"experience_count"`
			SalaryWorkTimeCount int    `json:"salary_work_time_count"`
			Experiences         []any  `json:"experiences"`
		} `json:"me"`
	}
	decodeData(t, res, &data)
	assert.Equal(t, f.user.ID, data.Me.ID)
	assert.Equal(t, "UNVERIFIED", data.Me.EmailStatus)
	assert.Zero(t, data.Me.ExperienceCount)
	assert.Empty(t, data.Me.Experiences)
}

const createWork = `mutation ($input: CreateWorkExperienceInput!) {
	createWorkExperience(input: $input) { success experience { id company { name } job_title { name } data_time { year month } } }
}`

func workInput() map[string]any {
	return map[string]any{
		"company_query":         "goodjob",
		"region":                "臺北市",
		"job_title":             "backend engineer",
		"title":                 "Good place to grow",
		"sections":              []any{map[string]any{"subtitle": "Team", "content": "Friendly people"}},
		"salary":                map[string]any{"type": "month", "amount": 50000},
		"is_currently_employed": "no",
		"job_ending_time":       map[string]any{"year": 2024, "month": 1},
		"week_work_time":        45,
		"recommend_to_others":   "yes",
	}
}

func TestCreateAndReadWorkExperience(t *testing.T) {
	f := newFixture(t)

	res := f.run(t, context.Background(), createWork, map[string]any{"input": workInput()})
	assert.Equal(t, "UNAUTHENTICATED", errorCode(t, res))

	res = f.run(t, f.asUser(), createWork, map[string]any{"input": workInput()})
	var created struct {
		Create struct {
			Success    bool `json:"success"`
			Experience struct {
				ID       string                `json:"id"`
				Company  struct{ Name string } `json:"company"`
				JobTitle struct{ Name string } `json:"job_title"`
				DataTime models.YearMonth      `json:"data_time"`
			} `json:"experience"`
		} `json:"createWorkExperience"`
	}
	decodeData(t, res, &created)
	assert.True(t, created.Create.Success)
	assert.Equal(t, "GOODJOB", created.Create.Experience.Company.Name)
	assert.Equal(t, "BACKEND ENGINEER", created.Create.Experience.JobTitle.Name)
	assert.Equal(t, models.YearMonth{Year: 2024, Month: 1}, created.Create.Experience.DataTime)
	id := created.Create.Experience.ID

	query := `query ($id: ID!) { experience(id: $id) { __typename id liked preview like_count ... on WorkExperience { recommend_to_others } } }`

	res = f.run(t, context.Background(), query, map[string]any{"id": id})
	var anonymous struct {
		Experience map[string]any `json:"experience"`
	}
	decodeData(t, res, &anonymous)
	assert.Equal(t, "WorkExperience", anonymous.Experience["__typename"])
	assert.Nil(t, anonymous.Experience["liked"])
	assert.Equal(t, "Friendly people", anonymous.Experience["preview"])
	assert.Equal(t, "yes", anonymous.Experience["recommend_to_others"])

	res = f.run(t, f.asUser(), query, map[string]any{"id": id})
	var signedIn struct {
		Experience map[string]any `json:"experience"`
	}
	decodeData(t, res, &signedIn)
	assert.Equal(t, false, signedIn.Experience["liked"])

	res = f.run(t, context.Background(), query, map[string]any{"id": "not-an-id"})
	var none struct {
		Experience map[string]any `json:"experience"`
	}
	decodeData(t, res, &none)
	assert.Nil(t, none.Experience)
}

func TestCreateWorkExperienceValidationError(t *testing.T) {
	f := newFixture(t)
	input := workInput()
	input["region"] = "Atlantis"

	res := f.run(t, f.asUser(), createWork, map[string]any{"input": input})
	assert.Equal(t, "BAD_USER_INPUT", errorCode(t, res))
}

func TestCreateWorkExperienceRequiresCompanyQuery(t *testing.T) {
	f := newFixture(t)
	input := workInput()
	delete(input, "company_query")
	input["company_id"] = "12345678"

	res := f.run(t, f.asUser(), createWork, map[string]any{"input": input})
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0].Message, "company_query")

	input["company_query"] = "  "
	res = f.run(t, f.asUser(), createWork, map[string]any{"input": input})
	assert.Equal(t, "BAD_USER_INPUT", errorCode(t, res))
}

func TestViewAndChangeStatusMutations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := &models.Experience{Type: models.ExperienceTypeWork, AuthorID: f.user.ID, CompanyName: "GOODJOB", JobTitle: "ENGINEER", Status: models.StatusPublished}
	require.NoError(t, f.store.CreateExperience(ctx, e))

	res := f.run(t, ctx, `mutation ($ids: [ID!]!) { viewExperiences(input: {experience_ids: $ids}) { success } }`,
		map[string]any{"ids": []any{e.ID, "junk"}})
	require.Empty(t, res.Errors)
	stored, err := f.store.FindExperience(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.ViewCount)

	change := `mutation ($id: ID!) { changeExperienceStatus(input: {id: $id, status: hidden}) { experience { status } } }`
	res = f.run(t, ctx, change, map[string]any{"id": e.ID})
	assert.Equal(t, "UNAUTHENTICATED", errorCode(t, res))

	res = f.run(t, f.asUser(), change, map[string]any{"id": e.ID})
	var data struct {
		Change struct {
			Experience struct{ Status string } `json:"experience"`
		} `json:"changeExperienceStatus"`
	}
	decodeData(t, res, &data)
	assert.Equal(t, "hidden", data.Change.Experience.Status)
}

func TestSalaryWorkTimesQuery(t *testing.T) {
	f := newFixture(t)
	f.seedWorking(t, models.SalaryWorkTime{CompanyName: "GOODJOB", JobTitle: "ENGINEER", EmploymentType: "full-time", DataTimeYear: 2024, DataTimeMonth: 3})

	res := f.run(t, context.Background(), `{ salary_work_times(start: 0, limit: 10) { employment_type data_time { year } } salary_work_time_count }`, nil)
	var data struct {
		Items []struct {
			EmploymentType string `json:"employment_type"`
		} `json:"salary_work_times"`
		Count int `json:"salary_work_time_count"`
	}
	decodeData(t, res, &data)
	require.Len(t, data.Items, 1)
	assert.Equal(t, "full_time", data.Items[0].EmploymentType)
	assert.Equal(t, 1, data.Count)

	res = f.run(t, context.Background(), `{ salary_work_times(start: 0, limit: 101) { id } }`, nil)
	assert.Equal(t, "BAD_USER_INPUT", errorCode(t, res))
}

func TestFacebookLoginMutation(t *testing.T) {
	f := newFixture(t)

	res := f.run(t, context.Background(), `mutation { facebookLogin(input: {accessToken: "fb-token"}) { token user { name facebook_id email } } }`, nil)
	var data struct {
		Login struct {
			Token string `json:"token"`
			User  struct {
				Name       string `json:"name"`
				FacebookID string `json:"facebook_id"`
				Email      string `json:"email"`
			} `json:"user"`
		} `json:"facebookLogin"`
	}
	decodeData(t, res, &data)
	assert.NotEmpty(t, data.Login.Token)
	assert.Equal(t, "Mark", data.Login.User.Name)
	assert.Equal(t, "fb-1", data.Login.User.FacebookID)

	res = f.run(t, context.Background(), `mutation { facebookLogin(input: {accessToken: "forged"}) { token } }`, nil)
	assert.Equal(t, "UNAUTHENTICATED", errorCode(t, res))
}

func TestHandler(t *testing.T) {
	f := newFixture(t)
	r := gin.New()
	f.schema.Register(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"{ salary_work_time_count }"}`)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":{"salary_work_time_count":0}}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/graphql?query=%7B%20company_keywords%20%7D", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":{"company_keywords":[]}}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerRejectsMutationsOverGet(t *testing.T) {
	f := newFixture(t)
	r := gin.New()
	f.schema.Register(r)

	mutation := url.QueryEscape(`mutation { viewExperiences(input: {experience_ids: []}) { success } }`)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/graphql?query="+mutation, nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, http.MethodPost, w.Header().Get("Allow"))

	named := url.QueryEscape(`query Count { salary_work_time_count } mutation View { viewExperiences(input: {experience_ids: []}) { success } }`)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/graphql?operationName=Count&query="+named, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/graphql?operationName=View&query="+named, nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHandlerLimitsPostRequests(t *testing.T) {
	f := newFixture(t)
	r := gin.New()
	f.schema.Register(r, middleware.NewRateLimiter(0.001, 1, zap.NewNop()).Handler())

	post := func() int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"{ salary_work_time_count }"}`)))
		return w.Code
	}
	assert.Equal(t, http.StatusOK, post())
	assert.Equal(t, http.StatusTooManyRequests, post())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/graphql?query=%7B%20salary_work_time_count%20%7D", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOperationType(t *testing.T) {
	tests := []struct {
		query, name, want string
	}{
		{"{ me { id } }", "", "query"},
		{"mutation { viewExperiences(input: {experience_ids: []}) { success } }", "", "mutation"},
		{"query A { me { id } } mutation B { x }", "B", "mutation"},
		{"query A { me { id } } mutation B { x }", "", ""},
		{"{ broken", "", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, operationType(tt.query, tt.name), tt.query)
	}
}
