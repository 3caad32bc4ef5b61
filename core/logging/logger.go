/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package logging provides the process-wide structured logger.
//
// Engine packages obtain loggers through WithComponent and only ever emit
// informational and warning messages; discarding the output never changes a
// result. The command layer calls Init once at startup.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Level is a logging verbosity name as it appears in configuration.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Config holds logger configuration.
type Config struct {
	Level      Level
	Format     string // "json" or "text"
	OutputPath string // empty for stderr
}

var (
	mu      sync.RWMutex
	logger  *slog.Logger
	logFile *os.File
)

// Init replaces the global logger according to config. A previously opened
// log file is closed.
func Init(config Config) error {
	var w io.Writer = os.Stderr
	var file *os.File
	if config.OutputPath != "" {
		if err := os.MkdirAll(filepath.Dir(config.OutputPath), 0o750); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(config.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		w = f
		file = f
	}

	l := newLogger(w, config.Format, parseLevel(config.Level))

	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
	}
	logFile = file
	logger = l
	return nil
}

// InitDefault installs a text logger at INFO on stderr.
func InitDefault() {
	SetOutput(os.Stderr)
}

// SetOutput installs a text logger at INFO writing to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(w, "text", slog.LevelInfo)
}

// Discard silences all logging.
func Discard() {
	SetOutput(io.Discard)
}

// Close closes the log file opened by Init, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	logger = nil
	return err
}

// GetLogger returns the global logger, installing the default on first use.
func GetLogger() *slog.Logger {
	mu.RLock()
	l := logger
	mu.RUnlock()
	if l != nil {
		return l
	}
	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		logger = newLogger(os.Stderr, "text", slog.LevelInfo)
	}
	return logger
}

// WithComponent returns a logger tagged with an engine component name.
func WithComponent(component string) *slog.Logger {
	return GetLogger().With("component", component)
}

// WithTable returns a logger tagged with a table name, usually an input path.
func WithTable(name string) *slog.Logger {
	return GetLogger().With("table", name)
}

func newLogger(w io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(l Level) slog.Level {
	switch Level(strings.ToUpper(string(l))) {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
