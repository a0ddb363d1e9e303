package services

import (
	"context"
	"slices"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/justsurfingit/goodjob-api/internal/apperrors"
	"github.com/justsurfingit/goodjob-api/internal/store"
)

var validate = validator.New()

func isEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}

func isURL(s string) bool {
	return validate.Var(s, "required,url") == nil
}

func runeLenIn(s string, min, max int) bool {
	n := utf8.RuneCountInString(s)
	return n >= min && n <= max
}

// RequestMeta identifies the client for the insert logs.
type RequestMeta struct {
	IP  string
	IPs []string
}

func (m RequestMeta) fields(id string) []zap.Field {
	return []zap.Field{zap.String("id", id), zap.String("ip", m.IP), zap.Strings("ips", m.IPs)}
}

var yesNo = []string{"yes", "no"}

func oneOf(v string, allowed []string) bool {
	return slices.Contains(allowed, v)
}

// checkPastYearMonth accepts months within the last ten years that are not in
// the future. label names the field in messages.
func checkPastYearMonth(label string, year, month int, now time.Time) error {
	if year <= now.Year()-10 {
		return apperrors.Invalid("%s year must be within the last 10 years", label)
	}
	if month < 1 || month > 12 {
		return apperrors.Invalid("%s month must be between 1 and 12", label)
	}
	if year > now.Year() || (year == now.Year() && month > int(now.Month())) {
		return apperrors.Invalid("%s cannot be later than now", label)
	}
	return nil
}

// checkPage validates GraphQL start/limit arguments.
func checkPage(start, limit int) error {
	if start < 0 {
		return apperrors.Invalid("start must be >= 0")
	}
	if limit < 1 || limit > 100 {
		return apperrors.Invalid("limit must be between 1 and 100")
	}
	return nil
}

// subscribeEmail stores the email the author left on a post and opts them in
// to notifications.
func subscribeEmail(ctx context.Context, users store.UserStore, userID, email string) error {
	subscribe := true
	return users.UpdateUser(ctx, userID, store.UserUpdate{Email: &email, SubscribeEmail: &subscribe})
}

func unexpected(op string, err error) error {
	if _, ok := apperrors.As(err); ok {
		return err
	}
	return apperrors.Internal(op, err)
}
