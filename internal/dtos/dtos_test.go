package dtos

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justsurfingit/goodjob-api/internal/models"
)

func TestFlexStringAcceptsStringsAndNumbers(t *testing.T) {
	var req WorkingRequest
	err := json.Unmarshal([]byte(`{"week_work_time": 40.5, "overtime_frequency": "2", "salary_amount": null}`), &req)
	require.NoError(t, err)
	assert.Equal(t, FlexString("40.5"), req.WeekWorkTime)
	assert.Equal(t, FlexString("2"), req.OvertimeFrequency)
	assert.Equal(t, FlexString(""), req.SalaryAmount)

	err = json.Unmarshal([]byte(`{"week_work_time": true}`), &req)
	assert.Error(t, err)
}

func TestWorkingViewHidesReporter(t *testing.T) {
	w := &models.SalaryWorkTime{ID: "w1", UserID: "u1", RecommendedBy: "u2", CompanyName: "GOODJOB", SalaryType: "month", SalaryAmount: 40000}
	b, err := json.Marshal(NewWorkingView(w))
	require.NoError(t, err)
	s := string(b)
	assert.NotContains(t, s, "u1")
	assert.NotContains(t, s, "u2")
	assert.Contains(t, s, `"salary":{"type":"month","amount":40000}`)
}

func TestEmbeddedExperienceFieldsDecode(t *testing.T) {
	var req WorkExperienceRequest
	err := json.Unmarshal([]byte(`{"company_query":"goodjob","is_currently_employed":"yes","sections":[{"subtitle":null,"content":"hi"}]}`), &req)
	require.NoError(t, err)
	assert.Equal(t, "goodjob", req.CompanyQuery)
	assert.Equal(t, "yes", req.IsCurrentlyEmployed)
	require.Len(t, req.Sections, 1)
	assert.Nil(t, req.Sections[0].Subtitle)
}
