package environment

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultManagerId    = "unknown_manager"
	DefaultSpawnTime    = "unknown_time"
	DefaultSteps        = 5
	DefaultStepInterval = time.Second

	MaxSteps = 100
)

var (
	ErrInvalidSteps    = errors.New("invalid step count")
	ErrInvalidInterval = errors.New("invalid step interval")
)

// Config is everything a single instance run needs. It is read once at
// startup and handed to the task runner.
type Config struct {
	ManagerId   string
	SpawnTime   string
	ContainerId string

	Steps        int
	StepInterval time.Duration
}

// Default returns the configuration used when the manager supplies nothing.
func Default() *Config {
	return &Config{
		ManagerId:    DefaultManagerId,
		SpawnTime:    DefaultSpawnTime,
		Steps:        DefaultSteps,
		StepInterval: DefaultStepInterval,
	}
}

// LoadDotEnv loads variables from the given .env files (".env" when none are
// given) without overriding ones already set. Missing files are skipped.
func LoadDotEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	for _, name := range filenames {
		err := godotenv.Load(name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", name, err)
		}
	}
	return nil
}

type fileConfig struct {
	ManagerId   string `toml:"manager_id"`
	SpawnTime   string `toml:"spawn_time"`
	ContainerId string `toml:"container_id"`
	Task        struct {
		Steps        *int   `toml:"steps"`
		StepInterval string `toml:"step_interval"`
	} `toml:"task"`
}

// ReadFile overlays the values present in a TOML file onto cfg.
func ReadFile(path string, cfg *Config) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(content, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fc.ManagerId != "" {
		cfg.ManagerId = fc.ManagerId
	}
	if fc.SpawnTime != "" {
		cfg.SpawnTime = fc.SpawnTime
	}
	if fc.ContainerId != "" {
		cfg.ContainerId = fc.ContainerId
	}
	if fc.Task.Steps != nil {
		cfg.Steps = *fc.Task.Steps
	}
	if fc.Task.StepInterval != "" {
		d, err := time.ParseDuration(fc.Task.StepInterval)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInterval, err)
		}
		cfg.StepInterval = d
	}
	return nil
}

// Resolve generates a container id when none was given and replaces invalid
// task options with their defaults. The returned error lists what was
// replaced; cfg is usable either way. Manager supplied values are passed
// through as they are.
func (c *Config) Resolve() error {
	if c.ContainerId == "" {
		c.ContainerId = uuid.NewString()
	}

	var errs []error
	if c.Steps < 0 || c.Steps > MaxSteps {
		errs = append(errs, fmt.Errorf("%w: %d not in [0, %d], using %d", ErrInvalidSteps, c.Steps, MaxSteps, DefaultSteps))
		c.Steps = DefaultSteps
	}
	if c.StepInterval < 0 {
		errs = append(errs, fmt.Errorf("%w: %s is negative, using %s", ErrInvalidInterval, c.StepInterval, DefaultStepInterval))
		c.StepInterval = DefaultStepInterval
	}
	return errors.Join(errs...)
}
