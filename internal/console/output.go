package console

import (
	"fmt"
	"io"
	"sync"
)

const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorGray  = "\033[90m"
)

// Output writes user-facing lines. It is safe for concurrent use.
type Output struct {
	mu       sync.Mutex
	writer   io.Writer
	useColor bool
}

// NewOutput creates an Output writing to w.
func NewOutput(w io.Writer, useColor bool) *Output {
	return &Output{writer: w, useColor: useColor}
}

// SetWriter redirects output, e.g. to the readline stdout.
func (o *Output) SetWriter(w io.Writer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.writer = w
}

// Line prints a plain line.
func (o *Output) Line(format string, args ...interface{}) {
	o.print("", format, args...)
}

// Success prints a line prefixed with ✓.
func (o *Output) Success(format string, args ...interface{}) {
	o.print(colorGreen, "✓ "+format, args...)
}

// Error prints a line prefixed with ✗.
func (o *Output) Error(format string, args ...interface{}) {
	o.print(colorRed, "✗ "+format, args...)
}

// Dim prints a line in gray.
func (o *Output) Dim(format string, args ...interface{}) {
	o.print(colorGray, format, args...)
}

func (o *Output) print(color, format string, args ...interface{}) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	if o.useColor && color != "" {
		msg = color + msg + colorReset
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprintln(o.writer, msg)
}
