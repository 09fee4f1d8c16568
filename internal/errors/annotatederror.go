// Package errors carries slog annotations and call-site information on
// wrapped errors so that the top-level logger can report where an error was
// raised without stack traces in every message.
package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
)

// Re-exports so callers don't need to import both error packages.

// New returns an error with the given message.
func New(msg string) error { return errors.New(msg) }

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool { return errors.As(err, target) }

// Join wraps the given errors into one, discarding nils.
func Join(errs ...error) error { return errors.Join(errs...) }

// Unwrap returns the result of calling err's Unwrap method, if any.
func Unwrap(err error) error { return errors.Unwrap(err) }

// NewSentinel creates an error meant for errors.Is comparisons.
func NewSentinel(msg string) error {
	return &sentinelError{msg: msg}
}

type sentinelError struct {
	msg string
}

func (e *sentinelError) Error() string {
	return e.msg
}

// annotatedError decorates a wrapped error with slog attributes and the
// location of the Wrap call.
type annotatedError struct {
	msg         string
	wrapped     error
	annotations []slog.Attr
	file        string
	line        int
}

// Wrap adds a message and optional slog annotations to an error, recording
// the caller's location for logging.
func Wrap(err error, msg string, annotations ...slog.Attr) error {
	file, line := callerLocation()
	return &annotatedError{
		msg:         msg,
		wrapped:     err,
		annotations: annotations,
		file:        file,
		line:        line,
	}
}

func (e *annotatedError) Error() string {
	if e.wrapped == nil {
		return e.msg
	}
	return e.msg + ": " + e.wrapped.Error()
}

func (e *annotatedError) Unwrap() error {
	return e.wrapped
}

// SlogError renders an error as an attribute group containing the message,
// the closest recorded call site, and every annotation found in the error
// tree. Safe to call with nil.
func SlogError(err error) slog.Attr {
	message := "<nil>"
	if err != nil {
		message = err.Error()
	}

	var annotations []slog.Attr
	file, line := "", 0
	collect(err, &annotations, &file, &line)

	attrs := []slog.Attr{slog.String("message", message)}
	if file != "" {
		attrs = append(attrs, slog.String("source", fmt.Sprintf("%s:%d", filepath.Base(file), line)))
	}
	if len(annotations) > 0 {
		attrs = append(attrs, slog.Attr{Key: "annotations", Value: slog.GroupValue(annotations...)})
	}

	return slog.Attr{Key: "error", Value: slog.GroupValue(attrs...)}
}

// collect walks the error tree gathering annotations. The first annotated
// error encountered contributes the source location.
func collect(err error, annotations *[]slog.Attr, file *string, line *int) {
	if err == nil {
		return
	}

	var annotated *annotatedError
	if errors.As(err, &annotated) {
		// As finds the shallowest annotated error, not necessarily err
		// itself, so record and continue from there.
		if *file == "" {
			*file = annotated.file
			*line = annotated.line
		}
		*annotations = append(*annotations, annotated.annotations...)
		collect(annotated.wrapped, annotations, file, line)
		return
	}

	switch unwrapped := err.(type) { //nolint:errorlint // walking the tree needs the raw shape.
	case interface{ Unwrap() error }:
		collect(unwrapped.Unwrap(), annotations, file, line)
	case interface{ Unwrap() []error }:
		for _, child := range unwrapped.Unwrap() {
			collect(child, annotations, file, line)
		}
	}
}

// DecoratePanic converts a recovered panic value into an error annotated
// with the location of the panic call.
func DecoratePanic(excp any) error {
	const maxFrames = 64
	pcs := make([]uintptr, maxFrames)
	n := runtime.Callers(2, pcs) //nolint:mnd // skip runtime.Callers and DecoratePanic.
	frames := runtime.CallersFrames(pcs[:n])

	var (
		file, fallbackFile string
		line, fallbackLine int
		pastPanic          bool
	)
	for {
		frame, more := frames.Next()
		switch {
		case frame.Function == "runtime.gopanic":
			pastPanic = true
		case strings.HasPrefix(frame.Function, "runtime."):
			// Skip other runtime frames.
		case pastPanic:
			file, line = frame.File, frame.Line
		case fallbackFile == "":
			fallbackFile, fallbackLine = frame.File, frame.Line
		}
		if file != "" || !more {
			break
		}
	}
	if file == "" {
		file, line = fallbackFile, fallbackLine
	}

	return &annotatedError{
		msg:  fmt.Sprintf("panic: %v", excp),
		file: file,
		line: line,
	}
}

// callerLocation finds the first stack frame outside this package.
func callerLocation() (string, int) {
	const maxFrames = 16
	pcs := make([]uintptr, maxFrames)
	n := runtime.Callers(2, pcs) //nolint:mnd // skip runtime.Callers and the caller inside this package.
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if !strings.HasSuffix(frame.File, "annotatederror.go") {
			return frame.File, frame.Line
		}
		if !more {
			return "", 0
		}
	}
}
