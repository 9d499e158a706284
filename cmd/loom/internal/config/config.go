// Package config resolves loom.yaml and command-line overrides into the
// settings the CLI runs with.
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/loom/pkg/errors"
	"github.com/go-drift/loom/pkg/scheduler"
)

// FileName is the optional project configuration file.
const FileName = "loom.yaml"

// Config represents loom.yaml.
type Config struct {
	App       AppConfig       `yaml:"app"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// AppConfig contains application metadata.
type AppConfig struct {
	Name string `yaml:"name,omitempty"`
}

// SchedulerConfig tunes the event loop.
type SchedulerConfig struct {
	// FrameBudget is a duration string such as "8ms".
	FrameBudget string `yaml:"frame_budget,omitempty"`
}

// LogConfig selects the logger.
type LogConfig struct {
	Level       string `yaml:"level,omitempty"`
	Development bool   `yaml:"development,omitempty"`
}

// MetricsConfig enables the Prometheus collector.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root        string
	ModulePath  string
	AppName     string
	FrameBudget time.Duration
	LogLevel    zapcore.Level
	Development bool
	Metrics     bool
}

// Load reads the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, configError("config.Load", fmt.Errorf("failed to read %s: %w", path, err))
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, configError("config.Load", fmt.Errorf("failed to parse %s: %w", path, err))
	}
	return &cfg, nil
}

// LoadOptional reads loom.yaml from dir if present.
func LoadOptional(dir string) (*Config, error) {
	cfg, err := Load(filepath.Join(dir, FileName))
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}
	return cfg, nil
}

// Resolve loads the configuration and fills in defaults. When path is
// empty, loom.yaml in dir is used if it exists. The module path from
// dir's go.mod, if any, names the app when app.name is unset.
func Resolve(dir, path string) (*Resolved, error) {
	var (
		cfg *Config
		err error
	)
	if path != "" {
		cfg, err = Load(path)
	} else {
		cfg, err = LoadOptional(dir)
	}
	if err != nil {
		return nil, err
	}

	modulePath := modulePath(dir)
	appName := strings.TrimSpace(cfg.App.Name)
	if appName == "" {
		appName = defaultAppName(modulePath, dir)
	}

	budget := scheduler.DefaultFrameBudget
	if s := strings.TrimSpace(cfg.Scheduler.FrameBudget); s != "" {
		budget, err = time.ParseDuration(s)
		if err != nil {
			return nil, configError("config.Resolve", fmt.Errorf("scheduler.frame_budget: %w", err))
		}
		if budget <= 0 {
			return nil, configError("config.Resolve", fmt.Errorf("scheduler.frame_budget must be positive (got %s)", s))
		}
	}

	level := zapcore.InfoLevel
	if s := strings.TrimSpace(cfg.Log.Level); s != "" {
		if level, err = zapcore.ParseLevel(s); err != nil {
			return nil, configError("config.Resolve", fmt.Errorf("log.level: %w", err))
		}
	}

	return &Resolved{
		Root:        dir,
		ModulePath:  modulePath,
		AppName:     appName,
		FrameBudget: budget,
		LogLevel:    level,
		Development: cfg.Log.Development,
		Metrics:     cfg.Metrics.Enabled,
	}, nil
}

// FindProjectRoot walks up from the current directory to find go.mod or
// loom.yaml. It falls back to the current directory.
func FindProjectRoot() (string, error) {
	start, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for dir := start; ; {
		for _, name := range []string{"go.mod", FileName} {
			if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start, nil
		}
		dir = parent
	}
}

func modulePath(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return ""
	}
	return modfile.ModulePath(data)
}

func defaultAppName(modulePath, dir string) string {
	base := filepath.Base(dir)
	if modulePath != "" {
		prefix, _, ok := module.SplitPathVersion(modulePath)
		if ok {
			parts := strings.Split(prefix, "/")
			base = parts[len(parts)-1]
		}
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "loom_app"
	}
	return base
}

func configError(op string, err error) error {
	return &errors.EngineError{
		Op:        op,
		Kind:      errors.KindConfig,
		Err:       err,
		Timestamp: time.Now(),
	}
}
