// Package mailer renders notification templates and delivers them through
// the Gmail API.
package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

type Message struct {
	To       string
	Subject  string
	Text     string
	HTML     string
	Template string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Gmail sends mail as the account that owns the OAuth token.
type Gmail struct {
	svc    *gmail.Service
	from   string
	logger *zap.Logger
}

func NewGmail(ctx context.Context, client *http.Client, from string, logger *zap.Logger) (*Gmail, error) {
	svc, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return &Gmail{svc: svc, from: from, logger: logger}, nil
}

func (g *Gmail) Send(ctx context.Context, msg Message) error {
	raw, err := Encode(g.from, msg)
	if err != nil {
		return err
	}
	return retry(ctx, 3, time.Second, g.logger, func() error {
		_, err := g.svc.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do()
		return err
	})
}

// Encode builds a multipart/alternative RFC 2822 message, base64url encoded
// as the Gmail API expects.
func Encode(from string, msg Message) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	parts := []struct {
		contentType string
		content     string
	}{
		{"text/plain; charset=UTF-8", msg.Text},
		{"text/html; charset=UTF-8", msg.HTML},
	}
	for _, p := range parts {
		pw, err := w.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {p.contentType},
			"Content-Transfer-Encoding": {"base64"},
		})
		if err != nil {
			return "", err
		}
		if _, err := pw.Write([]byte(wrapBase64(p.content))); err != nil {
			return "", err
		}
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	var out bytes.Buffer
	fmt.Fprintf(&out, "From: %s\r\n", from)
	fmt.Fprintf(&out, "To: %s\r\n", msg.To)
	fmt.Fprintf(&out, "Subject: %s\r\n", mime.BEncoding.Encode("UTF-8", msg.Subject))
	out.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&out, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", w.Boundary())
	out.Write(body.Bytes())

	return base64.URLEncoding.EncodeToString(out.Bytes()), nil
}

func wrapBase64(s string) string {
	enc := base64.StdEncoding.EncodeToString([]byte(s))
	var b bytes.Buffer
	for len(enc) > 76 {
		b.WriteString(enc[:76])
		b.WriteString("\r\n")
		enc = enc[76:]
	}
	b.WriteString(enc)
	return b.String()
}

// retry runs f with exponential backoff. Client errors are not retried.
func retry(ctx context.Context, attempts int, sleep time.Duration, logger *zap.Logger, f func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = f(); err == nil {
			return nil
		}
		var gErr *googleapi.Error
		if errors.As(err, &gErr) && gErr.Code >= 400 && gErr.Code < 500 && gErr.Code != http.StatusTooManyRequests {
			return err
		}
		if i == attempts-1 {
			break
		}
		logger.Warn("gmail api error, retrying", zap.Error(err), zap.Duration("in", sleep))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
		sleep *= 2
	}
	return fmt.Errorf("send failed after %d attempts: %w", attempts, err)
}

// Log writes messages to the logger instead of sending them. It is used
// when Gmail credentials are not configured.
type Log struct {
	Logger *zap.Logger
}

func (l Log) Send(_ context.Context, msg Message) error {
	l.Logger.Info("email not sent, no mail transport configured",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("template", msg.Template),
	)
	return nil
}

// FromGmailClient returns a Gmail mailer over client, or a Log mailer when
// the client could not be built.
func FromGmailClient(ctx context.Context, client *http.Client, clientErr error, from string, logger *zap.Logger) Mailer {
	if clientErr != nil {
		logger.Warn("gmail is not configured, emails will only be logged", zap.Error(clientErr))
		return Log{Logger: logger}
	}
	g, err := NewGmail(ctx, client, from, logger)
	if err != nil {
		logger.Warn("gmail service unavailable, emails will only be logged", zap.Error(err))
		return Log{Logger: logger}
	}
	logger.Info("gmail service connected")
	return g
}
