// Package logging provides component-scoped logging for rompatch.
//
// Basic usage:
//
//	logging.Init(logging.Config{Level: "info"})
//	logger := logging.Get("engine")
//	logger.Info("batch started", "base", basePath)
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// Level represents a logging level.
type Level int

// Log levels from least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// toCharmLevel converts our Level to charmbracelet/log level.
func (l Level) toCharmLevel() log.Level {
	switch l {
	case LevelDebug:
		return log.DebugLevel
	case LevelInfo:
		return log.InfoLevel
	case LevelWarn:
		return log.WarnLevel
	case LevelError:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// ErrInvalidLevel is returned when an invalid log level string is provided.
var ErrInvalidLevel = errors.New("invalid log level")

// ParseLevel parses a string into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("%w: %s", ErrInvalidLevel, s)
	}
}

// Config configures the logging system.
type Config struct {
	// Level is the default log level (debug, info, warn, error).
	Level string

	// Writer receives log output. Defaults to os.Stderr.
	Writer io.Writer
}

// state holds the global logging state.
type state struct {
	mu          sync.RWMutex
	initialized bool
	level       Level
	writer      io.Writer
	loggers     map[string]*log.Logger
}

var globalState = &state{
	loggers: make(map[string]*log.Logger),
}

// Init initializes the logging system with the given configuration.
// Before Init is called, all loggers write to io.Discard.
func Init(cfg Config) error {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}

	writer := cfg.Writer
	if writer == nil {
		writer = os.Stderr
	}

	globalState.level = level
	globalState.writer = writer
	globalState.loggers = make(map[string]*log.Logger)
	globalState.initialized = true
	return nil
}

// Get returns a logger for the named component. Loggers are cached per
// component and share the writer and level configured by Init.
func Get(component string) *log.Logger {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if logger, ok := globalState.loggers[component]; ok {
		return logger
	}

	if !globalState.initialized {
		// Uncached so the component picks up configuration once Init runs.
		return log.NewWithOptions(io.Discard, log.Options{Prefix: component})
	}

	logger := log.NewWithOptions(globalState.writer, log.Options{
		Level:           globalState.level.toCharmLevel(),
		Prefix:          component,
		ReportTimestamp: false,
	})
	globalState.loggers[component] = logger
	return logger
}
