package mailer

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
)

func TestSurveyRender(t *testing.T) {
	msg, err := Survey.Render("a@example.com", SurveyVars{UserName: "Ann", SurveyURL: "https://forms.example.com/?e=a@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", msg.To)
	assert.Equal(t, "Ann, help us make GoodJob better", msg.Subject)
	assert.Contains(t, msg.HTML, `href="https://forms.example.com/?e=a@example.com"`)
	assert.Equal(t, "survey", msg.Template)
}

func TestRenderRejectsBadVariables(t *testing.T) {
	_, err := Survey.Render("a@example.com", SurveyVars{UserName: "Ann", SurveyURL: "not a url"})
	var varsErr *VariablesError
	assert.ErrorAs(t, err, &varsErr)

	_, err = AccountVerify.Render("a@example.com", AccountVerifyVars{VerificationURL: "https://goodjob.life/verify"})
	assert.ErrorAs(t, err, &varsErr)
}

func TestExperienceNotificationSanitizesContent(t *testing.T) {
	msg, err := ExperienceViewLogNotification.Render("a@example.com", ExperienceViewLogVars{
		UserName: "Ann",
		Experience: ExperienceSummary{
			Title:     "Backend engineer",
			ViewCount: 1200,
			URL:       "https://www.goodjob.life/experiences/1",
			TypeName:  "work experience",
			Content:   "first line\n<script>alert(1)</script>",
		},
	})
	require.NoError(t, err)
	assert.Contains(t, msg.Subject, "1200")
	assert.Contains(t, msg.HTML, "<blockquote>")
	assert.NotContains(t, msg.HTML, "<script>")
}

func TestEncodeProducesRawMessage(t *testing.T) {
	raw, err := Encode("GoodJob <no-reply@goodjob.life>", Message{To: "a@example.com", Subject: "職場經驗", Text: "hi", HTML: "<p>hi</p>"})
	require.NoError(t, err)

	decoded, err := base64.URLEncoding.DecodeString(raw)
	require.NoError(t, err)
	s := string(decoded)
	assert.True(t, strings.HasPrefix(s, "From: GoodJob <no-reply@goodjob.life>\r\n"))
	assert.Contains(t, s, "To: a@example.com\r\n")
	assert.Contains(t, s, "Subject: =?UTF-8?b?")
	assert.Contains(t, s, "multipart/alternative")
}

func TestRetryStopsOnClientError(t *testing.T) {
	calls := 0
	err := retry(context.Background(), 3, time.Millisecond, zap.NewNop(), func() error {
		calls++
		return &googleapi.Error{Code: 400}
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryRecovers(t *testing.T) {
	calls := 0
	err := retry(context.Background(), 3, time.Millisecond, zap.NewNop(), func() error {
		calls++
		if calls < 2 {
			return errors.New("temporary")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestLogMailer(t *testing.T) {
	assert.NoError(t, Log{Logger: zap.NewNop()}.Send(context.Background(), Message{To: "a@example.com"}))
}
