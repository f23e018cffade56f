// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package output defines the status sink the pipeline reports through.
// Normal runs get terse colored one-line statuses; verbose runs get
// leveled log lines instead. The sink is injected, never a package
// global, so tests can capture output without touching process stdout.
package output

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
)

// Sink receives one-line status events from the pipeline.
type Sink interface {
	Successf(format string, args ...any)
	Errorf(format string, args ...any)
	Warnf(format string, args ...any)
	Infof(format string, args ...any)
	Progressf(format string, args ...any)
	Skipf(format string, args ...any)
	Generatef(format string, args ...any)
}

// Console writes colored one-line statuses. Errors go to ErrW, everything
// else to W.
type Console struct {
	W    io.Writer
	ErrW io.Writer
}

// NewConsole returns a Console writing to the given writers.
func NewConsole(w, errW io.Writer) *Console {
	return &Console{W: w, ErrW: errW}
}

var (
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	blue   = color.New(color.FgBlue)
	cyan   = color.New(color.FgCyan)
	faint  = color.New(color.Faint)
)

func (c *Console) Successf(format string, args ...any) {
	fmt.Fprintf(c.W, "%s %s\n", green.Sprint("✓"), green.Sprintf(format, args...))
}

func (c *Console) Errorf(format string, args ...any) {
	fmt.Fprintf(c.ErrW, "%s %s\n", red.Sprint("✗"), red.Sprintf(format, args...))
}

func (c *Console) Warnf(format string, args ...any) {
	fmt.Fprintf(c.W, "%s %s\n", yellow.Sprint("⚠"), yellow.Sprintf(format, args...))
}

func (c *Console) Infof(format string, args ...any) {
	fmt.Fprintf(c.W, "%s %s\n", blue.Sprint("ℹ"), faint.Sprintf(format, args...))
}

func (c *Console) Progressf(format string, args ...any) {
	fmt.Fprintf(c.W, "%s %s\n", blue.Sprint("→"), fmt.Sprintf(format, args...))
}

func (c *Console) Skipf(format string, args ...any) {
	fmt.Fprintf(c.W, "%s %s\n", yellow.Sprint("⏭"), faint.Sprintf(format, args...))
}

func (c *Console) Generatef(format string, args ...any) {
	fmt.Fprintf(c.W, "%s %s\n", cyan.Sprint("🎨"), fmt.Sprintf(format, args...))
}

// Logger adapts a slog.Logger to the Sink interface for verbose mode.
// Status kinds map to levels; the event kind is kept as an attribute.
type Logger struct {
	L *slog.Logger
}

// NewLogger returns a Sink backed by the given slog logger.
func NewLogger(l *slog.Logger) *Logger {
	return &Logger{L: l}
}

func (s *Logger) Successf(format string, args ...any) {
	s.L.Info(fmt.Sprintf(format, args...), "event", "success")
}

func (s *Logger) Errorf(format string, args ...any) {
	s.L.Error(fmt.Sprintf(format, args...), "event", "error")
}

func (s *Logger) Warnf(format string, args ...any) {
	s.L.Warn(fmt.Sprintf(format, args...), "event", "warning")
}

func (s *Logger) Infof(format string, args ...any) {
	s.L.Info(fmt.Sprintf(format, args...), "event", "info")
}

func (s *Logger) Progressf(format string, args ...any) {
	s.L.Info(fmt.Sprintf(format, args...), "event", "progress")
}

func (s *Logger) Skipf(format string, args ...any) {
	s.L.Info(fmt.Sprintf(format, args...), "event", "skip")
}

func (s *Logger) Generatef(format string, args ...any) {
	s.L.Info(fmt.Sprintf(format, args...), "event", "generate")
}

// Discard swallows all statuses. Used by tests that only care about
// pipeline results.
type Discard struct{}

func (Discard) Successf(string, ...any)  {}
func (Discard) Errorf(string, ...any)    {}
func (Discard) Warnf(string, ...any)     {}
func (Discard) Infof(string, ...any)     {}
func (Discard) Progressf(string, ...any) {}
func (Discard) Skipf(string, ...any)     {}
func (Discard) Generatef(string, ...any) {}
