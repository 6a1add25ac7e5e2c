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
	fileIndent  = 4  // spaces to indent file entries
	nameWidth   = 35 // Base width for destination path
	kindWidth   = 8  // Width for content kind
	statusWidth = 10 // Width for status text
)

// Status values reported for a file
const (
	StatusSaved   = "saved"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// 🎯 FileOperation is one file transfer of an item
type FileOperation struct {
	Path   string // Destination path
	Kind   string // Content kind (text/markup/image/video)
	Source string // Source url, empty for in-memory payloads
	Status string // Operation status
	Err    error  // Failure cause when Status is StatusFailed
}

// 📦 ItemOperation is the download of one feed item
type ItemOperation struct {
	Author     string // Author id
	ID         string // Item id
	DownloadID string // Per-call correlation id
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog       zerolog.Logger
	console    io.Writer
	mu         sync.Mutex
	currentOp  *ItemOperation
	operations []FileOperation
}

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// WithZerolog replaces the structured sink
func (l *Logger) WithZerolog(zlog zerolog.Logger) *Logger {
	l.zlog = zlog
	return l
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

var discard = &Logger{zlog: zerolog.Nop(), console: io.Discard}

// 🎯 FromContext gets the logger from context. Without one, output is discarded.
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		return discard
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 formatFileOperation formats a file operation for display
func (l *Logger) formatFileOperation(op FileOperation) string {
	var symbol rune
	var symbolColor color.Attribute
	switch op.Status {
	case StatusFailed:
		symbol = '✗'
		symbolColor = color.FgRed
	case StatusSaved:
		symbol = '✓'
		symbolColor = color.FgGreen
	default:
		symbol = '-'
		symbolColor = color.FgYellow
	}

	var kindColor color.Attribute
	switch op.Kind {
	case "text", "markup":
		kindColor = color.FgCyan
	case "image":
		kindColor = color.FgMagenta
	default:
		kindColor = color.FgBlue
	}

	line := fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, op.Path),
		color.New(kindColor).Sprint(fmt.Sprintf("%-*s", kindWidth, op.Kind)),
		fmt.Sprintf("%-*s", statusWidth, op.Status))

	if op.Err != nil {
		line += color.New(color.Faint).Sprint(op.Err.Error())
	}
	return line
}

// 📝 LogFileOperation logs a file operation
func (l *Logger) LogFileOperation(ctx context.Context, op FileOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.operations = append(l.operations, op)

	fmt.Fprintln(l.console, l.formatFileOperation(op))

	event := l.zlog.Info()
	if op.Err != nil {
		event = l.zlog.Warn().Err(op.Err)
	}
	event.
		Str("file", op.Path).
		Str("kind", op.Kind).
		Str("source", op.Source).
		Str("status", op.Status).
		Msg("file operation")
}

// 📝 StartItemOperation starts a new item download
func (l *Logger) StartItemOperation(ctx context.Context, op ItemOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.currentOp = &op
	l.operations = nil

	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(op.Author),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprint(op.ID))

	l.zlog.Info().
		Str("author", op.Author).
		Str("id", op.ID).
		Str("download_id", op.DownloadID).
		Msg("starting item download")
}

// 📝 EndItemOperation ends the current item download and returns how many
// files were reported for it and how many of those failed
func (l *Logger) EndItemOperation(ctx context.Context) (files, failed int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentOp == nil {
		return 0, 0
	}

	for _, op := range l.operations {
		if op.Status == StatusFailed {
			failed++
		}
	}
	files = len(l.operations)

	l.zlog.Info().
		Str("author", l.currentOp.Author).
		Str("id", l.currentOp.ID).
		Int("files", files).
		Int("failed", failed).
		Msg("item download complete")

	l.currentOp = nil
	l.operations = nil
	return files, failed
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
	name := color.New(color.Bold, color.FgCyan).Sprint("feedgrab")
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
