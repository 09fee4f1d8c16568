package ptr_test

import (
	"testing"
	"time"

	"github.com/rishi1508/zenith/internal/ptr"
)

func TestRefCopiesValue(t *testing.T) {
	t.Parallel()
	weight := 62.5
	p := ptr.Ref(weight)
	if p == nil {
		t.Fatal("expected non-nil pointer")
	}
	if *p != weight {
		t.Errorf("got %v, want %v", *p, weight)
	}

	// The pointer holds a copy, not the original variable.
	weight = 65
	if *p == weight {
		t.Error("pointer followed the original variable")
	}
}

func TestRefStruct(t *testing.T) {
	t.Parallel()
	startedAt := time.Date(2026, 1, 5, 18, 30, 0, 0, time.UTC)
	p := ptr.Ref(startedAt)
	if p == nil {
		t.Fatal("expected non-nil pointer")
	}
	if !p.Equal(startedAt) {
		t.Errorf("got %v, want %v", *p, startedAt)
	}
}
