// Package logging hands out per-component logrus loggers that share one
// configuration.
package logging

import (
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

// Config controls level, format and destination of every component logger.
type Config struct {
	// Level is the minimum level ("debug", "info", "warn", "error").
	// BARSWITCH_LOG_LEVEL overrides it.
	Level string `mapstructure:"level"`
	// Format is "text" (default) or "json".
	Format string `mapstructure:"format"`
	// Output defaults to stderr.
	Output io.Writer `mapstructure:"-"`
}

var (
	mu      sync.Mutex
	current = Config{Level: "warn"}
	loggers = make(map[string]*logrus.Entry)
	bases   = make(map[string]*logrus.Logger)
)

// Configure applies cfg to all existing and future component loggers.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	current = cfg
	for _, l := range bases {
		apply(l, cfg)
	}
}

// NewLogger returns the logger for component, creating it on first use.
func NewLogger(component string) *logrus.Entry {
	mu.Lock()
	defer mu.Unlock()

	if entry, ok := loggers[component]; ok {
		return entry
	}
	logger := logrus.New()
	apply(logger, current)
	entry := logger.WithField("component", component)
	loggers[component] = entry
	bases[component] = logger
	return entry
}

func apply(logger *logrus.Logger, cfg Config) {
	levelStr := cfg.Level
	if env := os.Getenv("BARSWITCH_LOG_LEVEL"); env != "" {
		levelStr = env
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.WarnLevel
	}
	logger.SetLevel(level)

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	logger.SetOutput(out)

	switch cfg.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&TextFormatter{Color: isTerminal(out)})
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
