package app

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/olivoil/botdeck/internal/backend"
	"github.com/olivoil/botdeck/internal/logging"
	"github.com/olivoil/botdeck/internal/ui"
)

// Runner starts the UI; Run in production, a recorder in tests.
type Runner func(Options) error

// NewCLI builds the command line front end around run.
func NewCLI(run Runner) *cli.App {
	return &cli.App{
		Name:    AppName,
		Usage:   "terminal control panel for the comment bot server",
		Version: AppVersion,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "config file",
				Value:   backend.DefaultConfigPath(AppName),
			},
			&cli.StringFlag{
				Name:  "server",
				Usage: "bot server base URL (overrides the config file)",
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "bearer token sent to the server",
				EnvVars: []string{"BOTDECK_TOKEN"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "developer log level: debug, info, warn, error",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "developer log file",
			},
			&cli.StringFlag{
				Name:  "theme",
				Usage: "colors.toml theme file",
				Value: ui.ThemePath(AppName),
			},
		},
		Action: func(ctx *cli.Context) error {
			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}

			f, err := logging.OpenFile(cfg.Log.File)
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			defer f.Close()
			logger := logging.NewLogger(logging.Options{Level: cfg.Log.Level, Writer: f, Component: AppName})

			return run(Options{Config: cfg, Logger: logger, ThemePath: ctx.String("theme")})
		},
	}
}

func loadConfig(ctx *cli.Context) (backend.Config, error) {
	cfg, err := backend.LoadConfig(AppName, ctx.String("config"))
	if err != nil {
		return cfg, err
	}
	if v := ctx.String("server"); v != "" {
		cfg.Server.URL = strings.TrimRight(v, "/")
	}
	if v := ctx.String("token"); v != "" {
		cfg.Server.Token = v
	}
	if v := ctx.String("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if v := ctx.String("log-file"); v != "" {
		cfg.Log.File = v
	}
	return cfg, nil
}
