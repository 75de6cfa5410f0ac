// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	lineIndent   = 4  // spaces to indent entries
	nameWidth    = 24 // Width for category and item names
	sourceWidth  = 8  // Width for the category source
	countWidth   = 6  // Width for counts
	weightWidth  = 8  // Width for weights
	clippedLabel = "clipped"
)

// 📂 CategoryEntry is one category line of a catalog load summary
type CategoryEntry struct {
	Name     string // Category name
	Source   string // file, folder or missing
	IDs      int    // Identifiers loaded
	Rejected int    // Lines that failed to parse or resolve
	Failed   int    // Files that could not be read
}

// 📦 ItemMove is one line of a transfer
type ItemMove struct {
	Name    string  // Item display name
	Count   int     // Units moved
	Weight  float64 // Total weight of the units
	Clipped bool    // Cut short by destination capacity
	Err     error   // Set when the host refused the move
}

// 🚚 TransferOperation describes one transfer request
type TransferOperation struct {
	Category    string
	Source      string
	Destination string
	RequestID   string
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog      zerolog.Logger
	console   io.Writer
	mu        sync.Mutex
	currentOp *TransferOperation
	moves     []ItemMove
}

// 🏭 New creates a new logger
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
		mu:      sync.Mutex{},
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 formatCategory formats a category entry for display
func (l *Logger) formatCategory(e CategoryEntry) string {
	var symbol rune
	var symbolColor color.Attribute
	switch {
	case e.Failed > 0:
		symbol = '✗'
		symbolColor = color.FgRed
	case e.Source == "missing":
		symbol = '-'
		symbolColor = color.FgYellow
	case e.Rejected > 0:
		symbol = '⟳'
		symbolColor = color.FgBlue
	default:
		symbol = '✓'
		symbolColor = color.FgGreen
	}

	line := fmt.Sprintf("%s%s %s %s %*d ids",
		fmt.Sprintf("%*s", lineIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, e.Name),
		color.New(color.FgCyan).Sprint(fmt.Sprintf("%-*s", sourceWidth, e.Source)),
		countWidth, e.IDs)
	if e.Rejected > 0 {
		line += color.New(color.Faint).Sprintf(" (%d rejected)", e.Rejected)
	}
	return line
}

// 📝 LogCategory logs one category of a catalog load
func (l *Logger) LogCategory(ctx context.Context, e CategoryEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.console, l.formatCategory(e))

	l.zlog.Info().
		Str("category", e.Name).
		Str("source", e.Source).
		Int("ids", e.IDs).
		Int("rejected", e.Rejected).
		Int("failed", e.Failed).
		Msg("category loaded")
}

// 📝 formatMove formats an item move for display
func (l *Logger) formatMove(m ItemMove) string {
	symbol, symbolColor := '✓', color.FgGreen
	status := ""
	switch {
	case m.Err != nil:
		symbol, symbolColor = '✗', color.FgRed
		status = m.Err.Error()
	case m.Clipped:
		symbol, symbolColor = '⟳', color.FgBlue
		status = clippedLabel
	}

	return fmt.Sprintf("%s%s %s %s %s %s",
		fmt.Sprintf("%*s", lineIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, m.Name),
		fmt.Sprintf("x%-*d", countWidth, m.Count),
		color.New(color.FgYellow).Sprint(fmt.Sprintf("%*.2f", weightWidth, m.Weight)),
		status)
}

// 📝 LogMove logs a single item move of the current transfer
func (l *Logger) LogMove(ctx context.Context, m ItemMove) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.moves = append(l.moves, m)
	fmt.Fprintln(l.console, l.formatMove(m))

	ev := l.zlog.Info()
	if m.Err != nil {
		ev = l.zlog.Error().Err(m.Err)
	}
	ev.Str("item", m.Name).
		Int("count", m.Count).
		Float64("weight", m.Weight).
		Bool("clipped", m.Clipped).
		Msg("item moved")
}

// 📝 StartTransfer starts a new transfer operation
func (l *Logger) StartTransfer(ctx context.Context, op TransferOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.currentOp = &op
	l.moves = nil

	fmt.Fprintf(l.console, "%s %s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(op.Category),
		color.New(color.FgCyan).Sprint(op.Source),
		color.New(color.Faint).Sprint("→"),
		color.New(color.FgCyan).Sprint(op.Destination))

	l.zlog.Info().
		Str("category", op.Category).
		Str("source", op.Source).
		Str("destination", op.Destination).
		Str("request_id", op.RequestID).
		Msg("starting transfer")
}

// 📝 EndTransfer ends the current transfer operation
func (l *Logger) EndTransfer(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentOp == nil {
		return
	}

	units := 0
	for _, m := range l.moves {
		if m.Err == nil {
			units += m.Count
		}
	}
	if len(l.moves) == 0 {
		fmt.Fprintf(l.console, "%*s%s\n", lineIndent, "", color.New(color.Faint).Sprint("nothing to move"))
	}

	l.zlog.Info().
		Str("category", l.currentOp.Category).
		Int("lines", len(l.moves)).
		Int("units", units).
		Msg("transfer complete")

	l.currentOp = nil
	l.moves = nil
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("quickxfer")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
