package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/programme-lv/scraper-instance/internal/environment"
	"github.com/programme-lv/scraper-instance/internal/gatherer/termgath"
	"github.com/programme-lv/scraper-instance/internal/scraper"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.SetDefault(newLogger(os.Stderr, slog.LevelInfo))
	loadDotEnv(slog.Default())

	cmd := newCommand(os.Stdout, os.Stderr)
	if err := cmd.Run(ctx, os.Args); err != nil {
		slog.Error("scraper instance failed", "error", err)
		stop()
		os.Exit(1)
	}
}

// loadDotEnv loads .env files before flags read the environment. A file that
// cannot be loaded is reported and skipped.
func loadDotEnv(logger *slog.Logger, filenames ...string) {
	if err := environment.LoadDotEnv(filenames...); err != nil {
		logger.Warn("ignoring .env file", "error", err)
	}
}

func newCommand(stdout io.Writer, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "scraper-instance",
		Usage:     "run one mock scraping job and print its run record",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "manager-id",
				Usage:   "id of the launching manager",
				Value:   environment.DefaultManagerId,
				Sources: cli.EnvVars("MANAGER_ID"),
			},
			&cli.StringFlag{
				Name:    "spawn-time",
				Usage:   "time the manager launched this instance",
				Value:   environment.DefaultSpawnTime,
				Sources: cli.EnvVars("SPAWN_TIME"),
			},
			&cli.StringFlag{
				Name:    "container-id",
				Usage:   "id of this instance, generated when empty",
				Sources: cli.EnvVars("HOSTNAME"),
			},
			// steps and step-interval are parsed in readConfig so that a
			// malformed value falls back to the default instead of failing.
			&cli.StringFlag{
				Name:    "steps",
				Usage:   "number of progress steps to simulate",
				Value:   strconv.Itoa(environment.DefaultSteps),
				Sources: cli.EnvVars("SCRAPER_STEPS"),
			},
			&cli.StringFlag{
				Name:    "step-interval",
				Usage:   "pause after each progress step",
				Value:   environment.DefaultStepInterval.String(),
				Sources: cli.EnvVars("SCRAPER_STEP_INTERVAL"),
			},
			&cli.StringFlag{
				Name:      "config",
				Usage:     "optional TOML file with instance settings",
				Sources:   cli.EnvVars("SCRAPER_CONFIG"),
				TakesFile: true,
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: run,
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	term := termgath.New(cmd.Root().Writer)
	term.Alive()

	level, levelErr := parseLevel(cmd.String("log-level"))
	logger := newLogger(cmd.Root().ErrWriter, level)
	slog.SetDefault(logger)
	if levelErr != nil {
		logger.Warn("falling back to info log level", "error", levelErr)
	}

	cfg := readConfig(cmd, logger)
	logger.Debug("configuration read",
		"manager_id", cfg.ManagerId,
		"spawn_time", cfg.SpawnTime,
		"container_id", cfg.ContainerId,
		"steps", cfg.Steps,
		"step_interval", cfg.StepInterval)

	s := scraper.New(cfg, scraper.WithLogger(logger))
	rec, err := s.Run(ctx, term)
	if err != nil {
		return err
	}
	logger.Info("scraper instance finished",
		"container_id", rec.ContainerId,
		"completion_time", rec.CompletionTime,
		"took", time.Since(term.StartedAt).Round(time.Millisecond))
	return nil
}

// readConfig layers defaults, the optional TOML file and flags or their
// environment variables, in increasing priority. Unusable values are logged
// and replaced by defaults.
func readConfig(cmd *cli.Command, logger *slog.Logger) *environment.Config {
	cfg := environment.Default()
	if path := cmd.String("config"); path != "" {
		if err := environment.ReadFile(path, cfg); err != nil {
			logger.Warn("ignoring config file", "path", path, "error", err)
		}
	}

	if cmd.IsSet("manager-id") {
		cfg.ManagerId = cmd.String("manager-id")
	}
	if cmd.IsSet("spawn-time") {
		cfg.SpawnTime = cmd.String("spawn-time")
	}
	if cmd.IsSet("container-id") {
		cfg.ContainerId = cmd.String("container-id")
	}
	if cmd.IsSet("steps") {
		steps, err := strconv.Atoi(cmd.String("steps"))
		if err != nil {
			logger.Warn("ignoring step count", "error", fmt.Errorf("%w: %w", environment.ErrInvalidSteps, err))
		} else {
			cfg.Steps = steps
		}
	}
	if cmd.IsSet("step-interval") {
		d, err := time.ParseDuration(cmd.String("step-interval"))
		if err != nil {
			logger.Warn("ignoring step interval", "error", fmt.Errorf("%w: %w", environment.ErrInvalidInterval, err))
		} else {
			cfg.StepInterval = d
		}
	}

	if err := cfg.Resolve(); err != nil {
		logger.Warn("task options replaced by defaults", "error", err)
	}
	return cfg
}

func parseLevel(level string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	noColor := true
	if f, ok := w.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd())
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.DateTime,
		NoColor:    noColor,
	}))
}
