package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/justsurfingit/goodjob-api/internal/mailer"
	"github.com/justsurfingit/goodjob-api/internal/metrics"
	"github.com/justsurfingit/goodjob-api/internal/models"
	"github.com/justsurfingit/goodjob-api/internal/store"
)

// Thresholds are checked highest first so an experience that jumped past
// several of them is mailed once, for the highest.
var performanceThresholds = []int{1000, 500, 100}

const (
	performanceQuietPeriod = 14 * 24 * time.Hour
	maxConcurrentSends     = 10
)

var experienceTypeNames = map[string]string{
	models.ExperienceTypeIntern:    "intern experience",
	models.ExperienceTypeInterview: "interview experience",
	models.ExperienceTypeWork:      "work experience",
}

// NotificationService sends the emails that are not a direct answer to a
// request: experience performance notices and survey letters.
type NotificationService struct {
	Store         store.NotificationStore
	Mailer        mailer.Mailer
	SiteURL       string
	SurveyFormURL string
	Logger        *zap.Logger

	now func() time.Time
}

func NewNotificationService(s store.NotificationStore, m mailer.Mailer, siteURL, surveyFormURL string, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		Store:         s,
		Mailer:        m,
		SiteURL:       strings.TrimRight(siteURL, "/"),
		SurveyFormURL: surveyFormURL,
		Logger:        logger,
		now:           time.Now,
	}
}

// StartScheduler runs SendPerformanceEmails on the cron schedule until ctx
// is done. The returned cron is already started.
func (s *NotificationService) StartScheduler(ctx context.Context, schedule string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		runCtx, cancel := context.WithTimeout(ctx, 30*time.Minute)
		defer cancel()
		sent, err := s.SendPerformanceEmails(runCtx)
		if err != nil {
			s.Logger.Error("performance email run failed", zap.Int("sent", sent), zap.Error(err))
			return
		}
		s.Logger.Info("performance email run finished", zap.Int("sent", sent))
	})
	if err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", schedule, err)
	}
	c.Start()

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()
	return c, nil
}

// SendPerformanceEmails tells authors how often their experiences have been
// read, once per threshold crossed, and returns how many emails were sent.
func (s *NotificationService) SendPerformanceEmails(ctx context.Context) (int, error) {
	total := 0
	for _, threshold := range performanceThresholds {
		sent, err := s.sendForThreshold(ctx, threshold)
		total += sent
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

type performanceNotice struct {
	user       models.User
	experience models.Experience
}

func (s *NotificationService) sendForThreshold(ctx context.Context, threshold int) (int, error) {
	candidates, err := s.Store.PerformanceCandidates(ctx, threshold)
	if err != nil {
		return 0, fmt.Errorf("find candidates for %d views: %w", threshold, err)
	}

	var notices []performanceNotice
	quietSince := s.now().Add(-performanceQuietPeriod)
	for _, c := range candidates {
		if mailedSince(c.EmailLogs, quietSince) {
			continue
		}
		fresh := unmailedExperiences(c.Experiences, c.EmailLogs, threshold)
		if len(fresh) == 0 {
			continue
		}
		notices = append(notices, performanceNotice{user: c.User, experience: fresh[0]})
	}

	var sent atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentSends)
	for _, n := range notices {
		g.Go(func() error {
			if err := s.sendPerformanceNotice(gctx, n, threshold); err != nil {
				return err
			}
			sent.Add(1)
			return nil
		})
	}
	err = g.Wait()
	return int(sent.Load()), err
}

func mailedSince(logs []models.EmailLog, since time.Time) bool {
	for _, l := range logs {
		if !l.CreatedAt.Before(since) {
			return true
		}
	}
	return false
}

// unmailedExperiences keeps experiences that were never mailed about, or
// only at thresholds below both their view count and threshold.
func unmailedExperiences(experiences []models.Experience, logs []models.EmailLog, threshold int) []models.Experience {
	var out []models.Experience
	for _, e := range experiences {
		ok := true
		for _, l := range logs {
			if l.ExperienceID == e.ID && (l.Threshold >= e.ViewCount || l.Threshold >= threshold) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, e)
		}
	}
	return out
}

func (s *NotificationService) sendPerformanceNotice(ctx context.Context, n performanceNotice, threshold int) error {
	typeName, ok := experienceTypeNames[n.experience.Type]
	if !ok {
		typeName = experienceTypeNames[models.ExperienceTypeWork]
	}
	name := n.user.Name
	if name == "" {
		name = n.user.Email
	}
	msg, err := mailer.ExperienceViewLogNotification.Render(n.user.Email, mailer.ExperienceViewLogVars{
		UserName: name,
		Experience: mailer.ExperienceSummary{
			Title:     n.experience.Title,
			ViewCount: n.experience.ViewCount,
			URL:       s.SiteURL + "/experiences/" + n.experience.ID,
			TypeName:  typeName,
			Content:   n.experience.Content(),
		},
	})
	if err != nil {
		s.Logger.Warn("skip performance email", zap.String("user_id", n.user.ID), zap.String("experience_id", n.experience.ID), zap.Error(err))
		return nil
	}

	err = s.Mailer.Send(ctx, msg)
	metrics.EmailsSent.WithLabelValues(msg.Template, metrics.Result(err)).Inc()
	if err != nil {
		return fmt.Errorf("send performance email to %s: %w", n.user.ID, err)
	}

	log := &models.EmailLog{UserID: n.user.ID, ExperienceID: n.experience.ID, Threshold: threshold}
	if err := s.Store.CreateEmailLog(ctx, log); err != nil {
		return fmt.Errorf("record email log for %s: %w", n.user.ID, err)
	}
	s.Logger.Info("performance email sent",
		zap.String("user_id", n.user.ID),
		zap.String("experience_id", n.experience.ID),
		zap.Int("threshold", threshold),
	)
	return nil
}

// SurveyRecipient is one entry of a survey letter mailing list.
type SurveyRecipient struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SendSurveyLetters mails the survey to every recipient with a name and a
// valid email. It stops at the first failed send and returns how many were
// sent.
func (s *NotificationService) SendSurveyLetters(ctx context.Context, recipients []SurveyRecipient) (int, error) {
	sent := 0
	for _, r := range recipients {
		if r.Name == "" || !isEmail(r.Email) {
			continue
		}
		msg, err := mailer.Survey.Render(r.Email, mailer.SurveyVars{
			UserName:  r.Name,
			SurveyURL: s.SurveyFormURL + url.QueryEscape(r.Email),
		})
		if err != nil {
			s.Logger.Warn("skip survey letter", zap.String("user_id", r.ID), zap.Error(err))
			continue
		}
		err = s.Mailer.Send(ctx, msg)
		metrics.EmailsSent.WithLabelValues(msg.Template, metrics.Result(err)).Inc()
		if err != nil {
			return sent, fmt.Errorf("send survey letter to %s: %w", r.ID, err)
		}
		s.Logger.Info("survey letter sent", zap.String("user_id", r.ID), zap.String("name", r.Name), zap.String("email", r.Email))
		sent++
	}
	s.Logger.Info("survey letters finished", zap.Int("sent", sent), zap.Int("total", len(recipients)))
	return sent, nil
}
