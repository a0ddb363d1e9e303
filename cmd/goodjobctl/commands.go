package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/justsurfingit/goodjob-api/internal/auth"
	"github.com/justsurfingit/goodjob-api/internal/database"
	"github.com/justsurfingit/goodjob-api/internal/mailer"
	"github.com/justsurfingit/goodjob-api/internal/services"
)

func (e *env) connect() (*gorm.DB, error) {
	if e.cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	return database.Connect(e.cfg.DatabaseURL, e.logger)
}

// notifications builds the notification service over Postgres and Gmail.
func (e *env) notifications(ctx context.Context) (*services.NotificationService, error) {
	db, err := e.connect()
	if err != nil {
		return nil, err
	}
	client, clientErr := auth.GmailClient(ctx, e.cfg.GmailCredentialsFile, e.cfg.GmailTokenFile)
	m := mailer.FromGmailClient(ctx, client, clientErr, e.cfg.MailFrom, e.logger)
	return services.NewNotificationService(database.NewStore(db), m, e.cfg.SiteURL, e.cfg.SurveyFormURL, e.logger), nil
}

func migrateCmd() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply schema and data migrations",
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Apply every pending schema migration",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					e, err := loadEnv(cmd)
					if err != nil {
						return err
					}
					db, err := e.connect()
					if err != nil {
						return err
					}
					m, err := database.NewMigrator(db)
					if err != nil {
						return err
					}
					return database.MigrateUp(m, e.logger)
				},
			},
			{
				Name:  "down",
				Usage: "Roll back schema migrations",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "steps", Usage: "Number of migrations to roll back", Value: 1},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					e, err := loadEnv(cmd)
					if err != nil {
						return err
					}
					db, err := e.connect()
					if err != nil {
						return err
					}
					m, err := database.NewMigrator(db)
					if err != nil {
						return err
					}
					return database.MigrateDown(m, int(cmd.Int("steps")), e.logger)
				},
			},
			{
				Name:  "data",
				Usage: "Run the data migrations that have not been applied yet",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					e, err := loadEnv(cmd)
					if err != nil {
						return err
					}
					db, err := e.connect()
					if err != nil {
						return err
					}
					applied, err := database.RunDataMigrations(ctx, db, database.DataMigrations, e.logger)
					if err != nil {
						return err
					}
					e.logger.Info("data migrations finished", zap.Strings("applied", applied))
					return nil
				},
			},
		},
	}
}

func sendPerformanceEmailCmd() *cli.Command {
	return &cli.Command{
		Name:  "send-performance-email",
		Usage: "Tell authors how many times their experiences have been read",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			svc, err := e.notifications(ctx)
			if err != nil {
				return err
			}
			sent, err := svc.SendPerformanceEmails(ctx)
			e.logger.Info("performance emails sent", zap.Int("sent", sent))
			return err
		},
	}
}

func sendSurveyLetterCmd() *cli.Command {
	return &cli.Command{
		Name:      "send-survey-letter",
		Usage:     "Mail the survey to every user in a JSON list of {_id, name, email}",
		ArgsUsage: "FILE",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			file := cmd.Args().First()
			if file == "" {
				return fmt.Errorf("a recipients file is required")
			}
			recipients, err := readRecipients(file)
			if err != nil {
				return err
			}

			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			svc, err := e.notifications(ctx)
			if err != nil {
				return err
			}
			sent, err := svc.SendSurveyLetters(ctx, recipients)
			e.logger.Info("survey letters sent", zap.Int("sent", sent), zap.Int("recipients", len(recipients)))
			return err
		},
	}
}

func readRecipients(file string) ([]services.SurveyRecipient, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	var recipients []services.SurveyRecipient
	if err := json.Unmarshal(b, &recipients); err != nil {
		return nil, fmt.Errorf("parse %s: %w", file, err)
	}
	return recipients, nil
}

func gmailAuthorizeCmd() *cli.Command {
	return &cli.Command{
		Name:  "gmail-authorize",
		Usage: "Authorize the Gmail account that sends notifications and save its token",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			if err := auth.AuthorizeGmail(ctx, e.cfg.GmailCredentialsFile, e.cfg.GmailTokenFile, os.Stdin, os.Stdout); err != nil {
				return err
			}
			e.logger.Info("gmail token saved", zap.String("file", e.cfg.GmailTokenFile))
			return nil
		},
	}
}
