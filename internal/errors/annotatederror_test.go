package errors_test

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rishi1508/zenith/internal/errors"
	"github.com/rishi1508/zenith/internal/testhelpers"
)

func TestAnnotatedErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "sentinel only",
			err:  errors.NewSentinel("workout not found"),
			want: "workout not found",
		},
		{
			name: "wrapped once",
			err:  errors.Wrap(errors.NewSentinel("workout not found"), "save workout", slog.String("id", "w1")),
			want: "save workout: workout not found",
		},
		{
			name: "wrapped twice",
			err: errors.Wrap(
				errors.Wrap(errors.NewSentinel("workout not found"), "load session"),
				"finish workout",
			),
			want: "finish workout: load session: workout not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	sentinel := errors.NewSentinel("workout not found")
	wrapped := fmt.Errorf("list workouts: %w", sentinel)

	if unwrapped := errors.Unwrap(wrapped); !errors.Is(unwrapped, sentinel) {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, sentinel)
	}

	if unwrapped := errors.Unwrap(sentinel); unwrapped != nil {
		t.Errorf("Unwrap() = %v, want nil", unwrapped)
	}
}

func TestIs(t *testing.T) {
	sentinel := errors.NewSentinel("workout not found")
	wrapped := errors.Wrap(sentinel, "delete workout")

	if !errors.Is(wrapped, sentinel) {
		t.Error("Is() = false, want true for wrapped sentinel")
	}

	if errors.Is(wrapped, errors.NewSentinel("exercise not found")) {
		t.Error("Is() = true, want false for unrelated sentinel")
	}
}

func TestAs(t *testing.T) {
	cause := &rowError{"row 3: invalid date"}
	wrapped := errors.Wrap(cause, "import sheet")

	var target *rowError
	if !errors.As(wrapped, &target) {
		t.Error("As() = false, want true")
	}

	if target != cause {
		t.Errorf("As() target = %v, want %v", target, cause)
	}

	var wrong *otherError
	if errors.As(wrapped, &wrong) {
		t.Error("As() = true, want false for unrelated error type")
	}
}

func TestSlogError(t *testing.T) {
	err := errors.Wrap(errors.NewSentinel("workout not found"), "finish workout",
		slog.String("id", "w1"), slog.Duration("elapsed", time.Second))
	var buf bytes.Buffer
	l := testhelpers.NewLogger(&buf)
	l.Info("test", errors.SlogError(err))
	logLine := buf.String()
	wantContent := []string{
		"error.annotations.id=w1",
		"error.annotations.elapsed=1s",
		"annotatederror_test.go:96",
	}
	for _, content := range wantContent {
		if !strings.Contains(logLine, content) {
			t.Errorf("expected log line %s to contain %s", logLine, content)
		}
	}

	// The stack trace skip must point at the caller, not our own frames.
	if strings.Contains(logLine, "annotatederror.go") {
		t.Fatal("expected annotatederror.go NOT to be in log line")
	}

	// Degenerate inputs must not panic.
	errors.SlogError(errors.Join(nil, nil, errors.NewSentinel("sentinel"), errors.New("plain")))
	errors.SlogError(nil)
	errors.SlogError(fmt.Errorf("wrapped: %w", errors.NewSentinel("sentinel")))
	errors.SlogError(errors.Join(errors.NewSentinel("first"), errors.NewSentinel("second")))
	errors.SlogError(errors.Wrap(nil, "wrap nil"))
	errors.SlogError(errors.Wrap(errors.Join(nil, nil), "wrap empty join"))
	_ = errors.Unwrap(errors.Wrap(errors.NewSentinel("sentinel"), "wrapped"))
}

type rowError struct {
	msg string
}

func (e *rowError) Error() string {
	return e.msg
}

type otherError struct{}

func (e *otherError) Error() string {
	return "other error"
}

func TestDecoratePanic(t *testing.T) {
	defer func() {
		excp := recover()
		err := errors.DecoratePanic(excp)
		if err == nil {
			t.Fatal("expected error")
		}
		if got, want := err.Error(), "panic: boom"; got != want {
			t.Errorf("err.Error(): got %q, want %q", got, want)
		}
		attr := errors.SlogError(err)
		if got, contains := attr.String(), "annotatederror_test.go:157"; !strings.Contains(got, contains) {
			t.Errorf("attr.String(): expected %q to contain %q", got, contains)
		}
	}()
	panic("boom")
}
