package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/justsurfingit/goodjob-api/internal/apperrors"
	"github.com/justsurfingit/goodjob-api/internal/database/memory"
	"github.com/justsurfingit/goodjob-api/internal/mailer"
	"github.com/justsurfingit/goodjob-api/internal/models"
)

var testNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func ptr[T any](v T) *T { return &v }

func newTestStore(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.New()
	s.SeedCompanies(models.Company{ID: "12345678", Name: "GOODJOB"})
	return s
}

func newTestUser(t *testing.T, s *memory.Store, name string) *models.User {
	t.Helper()
	u := &models.User{Name: name, EmailStatus: models.EmailStatusUnverified}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, status, apperrors.StatusOf(err), err.Error())
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) messages() []mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mailer.Message(nil), m.sent...)
}

func TestCheckPastYearMonth(t *testing.T) {
	assert.NoError(t, checkPastYearMonth("t", 2024, 6, testNow))
	assert.NoError(t, checkPastYearMonth("t", 2015, 1, testNow))
	assertStatus(t, checkPastYearMonth("t", 2014, 12, testNow), 422)
	assertStatus(t, checkPastYearMonth("t", 2024, 7, testNow), 422)
	assertStatus(t, checkPastYearMonth("t", 2023, 13, testNow), 422)
}

func TestCheckPage(t *testing.T) {
	assert.NoError(t, checkPage(0, 100))
	assertStatus(t, checkPage(-1, 20), 422)
	assertStatus(t, checkPage(0, 0), 422)
	assertStatus(t, checkPage(0, 101), 422)
}

func TestCompanyMatcher(t *testing.T) {
	ctx := context.Background()
	m := NewCompanyMatcher(newTestStore(t))

	ref, err := m.Match(ctx, "", " goodjob ")
	require.NoError(t, err)
	assert.Equal(t, models.CompanyRef{ID: "12345678", Name: "GOODJOB"}, ref)

	ref, err = m.Match(ctx, "", "12345678")
	require.NoError(t, err)
	assert.Equal(t, "GOODJOB", ref.Name)

	ref, err = m.Match(ctx, "", "Unknown Inc")
	require.NoError(t, err)
	assert.Equal(t, models.CompanyRef{Name: "UNKNOWN INC"}, ref)

	_, err = m.Match(ctx, "87654321", "")
	assertStatus(t, err, 422)

	_, err = m.Match(ctx, "", "  ")
	assertStatus(t, err, 422)
}

var nopLogger = zap.NewNop()
