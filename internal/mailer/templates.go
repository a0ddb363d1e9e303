package mailer

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

var (
	validate = validator.New()
	markdown = goldmark.New()
	sanitize = bluemonday.UGCPolicy()
)

// VariablesError is returned when a template is rendered with missing or
// malformed variables.
type VariablesError struct {
	Template string
	Err      error
}

func (e *VariablesError) Error() string {
	return fmt.Sprintf("email template %s: invalid variables: %v", e.Template, e.Err)
}

func (e *VariablesError) Unwrap() error { return e.Err }

var funcs = template.FuncMap{
	// quote turns text into a markdown block quote.
	"quote": func(s string) string {
		return "> " + strings.ReplaceAll(strings.TrimSpace(s), "\n", "\n> ")
	},
}

// Template renders a subject line and a markdown body into a Message.
type Template[T any] struct {
	Name    string
	subject *template.Template
	body    *template.Template
}

func newTemplate[T any](name, subject, body string) *Template[T] {
	return &Template[T]{
		Name:    name,
		subject: template.Must(template.New(name + ".subject").Parse(subject)),
		body:    template.Must(template.New(name + ".body").Funcs(funcs).Parse(body)),
	}
}

// Render validates vars and builds a message addressed to to.
func (t *Template[T]) Render(to string, vars T) (Message, error) {
	if err := validate.Struct(vars); err != nil {
		return Message{}, &VariablesError{Template: t.Name, Err: err}
	}

	var subject, body bytes.Buffer
	if err := t.subject.Execute(&subject, vars); err != nil {
		return Message{}, err
	}
	if err := t.body.Execute(&body, vars); err != nil {
		return Message{}, err
	}

	var html bytes.Buffer
	if err := markdown.Convert(body.Bytes(), &html); err != nil {
		return Message{}, err
	}

	return Message{
		To:       to,
		Subject:  strings.TrimSpace(subject.String()),
		Text:     body.String(),
		HTML:     sanitize.Sanitize(html.String()),
		Template: t.Name,
	}, nil
}

type AccountVerifyVars struct {
	UserName        string `validate:"required"`
	VerificationURL string `validate:"required,url"`
}

type ExperienceSummary struct {
	Title     string `validate:"required"`
	ViewCount int    `validate:"gte=0"`
	URL       string `validate:"required,url"`
	TypeName  string `validate:"required"`
	Content   string
}

type ExperienceViewLogVars struct {
	UserName   string `validate:"required"`
	Experience ExperienceSummary
}

type SurveyVars struct {
	UserName  string `validate:"required"`
	SurveyURL string `validate:"required,url"`
}

var AccountVerify = newTemplate[AccountVerifyVars]("account_verify",
	`GoodJob account email verification`,
	`Hi {{.UserName}},

Please confirm this is your email address by opening the link below:

[Verify my email]({{.VerificationURL}})

The link is valid for 7 days. If you did not ask for this, ignore this email.

GoodJob
`)

var ExperienceViewLogNotification = newTemplate[ExperienceViewLogVars]("experience_view_log_notification",
	`{{.UserName}}, your {{.Experience.TypeName}} has been read {{.Experience.ViewCount}} times`,
	`Hi {{.UserName}},

Your {{.Experience.TypeName}} **{{.Experience.Title}}** has now been read **{{.Experience.ViewCount}}** times.
Thank you for sharing it with everyone looking for a good job.

{{quote .Experience.Content}}

[Read it on GoodJob]({{.Experience.URL}})

GoodJob
`)

var Survey = newTemplate[SurveyVars]("survey",
	`{{.UserName}}, help us make GoodJob better`,
	`Hi {{.UserName}},

We are running a short survey about how you use GoodJob. It takes about five minutes:

[Take the survey]({{.SurveyURL}})

GoodJob
`)
