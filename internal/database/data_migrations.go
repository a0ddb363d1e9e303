package database

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/justsurfingit/goodjob-api/internal/models"
	"github.com/justsurfingit/goodjob-api/internal/wage"
)

// DataMigration rewrites existing rows once. Applied migrations are recorded
// in the data_migrations table by name.
type DataMigration struct {
	Name string
	Up   func(ctx context.Context, tx *gorm.DB, logger *zap.Logger) error
}

// DataMigrations run in this order.
var DataMigrations = []DataMigration{
	{Name: "2017-05-26-remove-nan-estimated-hourly-wage", Up: removeNaNHourlyWage},
	{Name: "2019-04-28-move-workings-email-to-user", Up: moveWorkingEmailsToUsers},
	{Name: "2019-05-01-add-email-status-to-users", Up: addEmailStatus},
	{Name: "2019-07-02-add-missing-report-count", Up: addMissingReportCount},
	{Name: "2019-11-28-update-user-name", Up: backfillUserNames},
	{Name: "2019-12-04-normalize-working-author", Up: linkWorkingsToUsers},
	{Name: "2019-12-13-add-estimated-monthly-wage", Up: backfillMonthlyWage},
}

// RunDataMigrations applies every migration not yet recorded and returns
// the names it applied.
func RunDataMigrations(ctx context.Context, db *gorm.DB, migrations []DataMigration, logger *zap.Logger) ([]string, error) {
	var applied []string
	for _, m := range migrations {
		var done int64
		if err := db.WithContext(ctx).Model(&models.DataMigration{}).Where("name = ?", m.Name).Count(&done).Error; err != nil {
			return applied, err
		}
		if done > 0 {
			continue
		}

		log := logger.With(zap.String("migration", m.Name))
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := m.Up(ctx, tx, log); err != nil {
				return err
			}
			return tx.Create(&models.DataMigration{Name: m.Name}).Error
		})
		if err != nil {
			return applied, err
		}
		log.Info("data migration applied")
		applied = append(applied, m.Name)
	}
	return applied, nil
}

func removeNaNHourlyWage(_ context.Context, tx *gorm.DB, logger *zap.Logger) error {
	res := tx.Model(&models.SalaryWorkTime{}).
		Where("estimated_hourly_wage = 'NaN'::double precision").
		Update("estimated_hourly_wage", nil)
	logger.Info("cleared hourly wages", zap.Int64("rows", res.RowsAffected))
	return res.Error
}

func moveWorkingEmailsToUsers(_ context.Context, tx *gorm.DB, logger *zap.Logger) error {
	var rows []models.SalaryWorkTime
	err := tx.Select("author_id", "author_email").
		Where("author_type = ? AND author_id <> '' AND author_email <> ''", "facebook").
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return err
	}

	validate := validator.New()
	newest := make(map[string]string)
	for _, row := range rows {
		email := strings.ToLower(strings.TrimSpace(row.LegacyAuthorEmail))
		if validate.Var(email, "required,email") != nil {
			logger.Info("skip invalid email", zap.String("email", email))
			continue
		}
		if _, ok := newest[row.LegacyAuthorID]; !ok {
			newest[row.LegacyAuthorID] = email
		}
	}

	var modified int64
	for facebookID, email := range newest {
		res := tx.Model(&models.User{}).Where("facebook_id = ?", facebookID).Update("email", email)
		if res.Error != nil {
			return res.Error
		}
		modified += res.RowsAffected
	}
	logger.Info("moved emails", zap.Int64("rows", modified))
	return nil
}

func addEmailStatus(_ context.Context, tx *gorm.DB, logger *zap.Logger) error {
	res := tx.Model(&models.User{}).Where("email_status = ''").Update("email_status", models.EmailStatusUnverified)
	logger.Info("set email status", zap.Int64("rows", res.RowsAffected))
	return res.Error
}

func addMissingReportCount(_ context.Context, tx *gorm.DB, logger *zap.Logger) error {
	res := tx.Exec("UPDATE experiences SET report_count = 0 WHERE report_count IS NULL")
	logger.Info("set report counts", zap.Int64("rows", res.RowsAffected))
	return res.Error
}

func backfillUserNames(_ context.Context, tx *gorm.DB, logger *zap.Logger) error {
	res := tx.Exec(`UPDATE users
		SET name = COALESCE(NULLIF(facebook->>'name', ''), google->>'name')
		WHERE name = ''
		AND COALESCE(NULLIF(facebook->>'name', ''), google->>'name', '') <> ''`)
	logger.Info("backfilled user names", zap.Int64("rows", res.RowsAffected))
	return res.Error
}

func linkWorkingsToUsers(_ context.Context, tx *gorm.DB, logger *zap.Logger) error {
	res := tx.Exec(`UPDATE salary_work_times AS w
		SET user_id = u.id
		FROM users AS u
		WHERE w.author_type = 'facebook' AND w.author_id <> '' AND u.facebook_id = w.author_id`)
	logger.Info("linked workings", zap.Int64("rows", res.RowsAffected))
	return res.Error
}

// monthlyWageCeiling drops estimates that can only come from bad input.
const monthlyWageCeiling = 100000000

func backfillMonthlyWage(_ context.Context, tx *gorm.DB, logger *zap.Logger) error {
	var modified int64
	var batch []models.SalaryWorkTime
	res := tx.Where("salary_type <> '' AND week_work_time IS NOT NULL AND day_real_work_time IS NOT NULL").
		FindInBatches(&batch, 500, func(_ *gorm.DB, _ int) error {
			for i := range batch {
				monthly, ok := wage.Monthly(wage.FromSalaryWorkTime(&batch[i]))
				if !ok || monthly > monthlyWageCeiling {
					continue
				}
				err := tx.Model(&models.SalaryWorkTime{}).
					Where("id = ?", batch[i].ID).
					Update("estimated_monthly_wage", monthly).Error
				if err != nil {
					return err
				}
				modified++
			}
			return nil
		})
	logger.Info("backfilled monthly wages", zap.Int64("rows", modified))
	return res.Error
}
