// Command goodjobctl runs the operator tasks of the GoodJob API: schema and
// data migrations, notification emails and the Gmail authorization.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/justsurfingit/goodjob-api/internal/config"
	"github.com/justsurfingit/goodjob-api/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "goodjobctl:", err)
		os.Exit(1)
	}
}

// env is what every command needs: the configuration and a logger.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
}

func loadEnv(cmd *cli.Command) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	level := cfg.LogLevel
	if cmd.Bool("debug") {
		level = "debug"
	}
	logger, err := logging.New(level, cfg.IsDevelopment())
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger}, nil
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:                  "goodjobctl",
		Usage:                 "Operate the GoodJob API database and notification jobs",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "Log at debug level",
				Sources: cli.EnvVars("GOODJOB_DEBUG"),
			},
		},
		Commands: []*cli.Command{
			migrateCmd(),
			sendPerformanceEmailCmd(),
			sendSurveyLetterCmd(),
			gmailAuthorizeCmd(),
		},
	}
}
