package circuitbreaker

import (
	"errors"
	"testing"
	"time"
)

// fakeClock lets tests move time without sleeping.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(threshold int, open time.Duration) (*Breaker, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	b := New(threshold, open)
	b.now = clock.now
	return b, clock
}

func TestBreaker_AllowWhenClosed(t *testing.T) {
	b, _ := newTestBreaker(3, time.Minute)
	if !b.Allow("mainnet") {
		t.Fatal("expected closed circuit to allow")
	}
}

func TestBreaker_TripsAfterThreshold(t *testing.T) {
	b, _ := newTestBreaker(3, time.Minute)

	b.RecordFailure("mainnet")
	b.RecordFailure("mainnet")
	if !b.Allow("mainnet") {
		t.Fatal("should still allow before threshold")
	}

	b.RecordFailure("mainnet")
	if b.Allow("mainnet") {
		t.Fatal("should be open after 3 failures")
	}
	if b.State("mainnet") != StateOpen {
		t.Fatalf("expected StateOpen, got %v", b.State("mainnet"))
	}
}

func TestBreaker_OpenToHalfOpenAfterDuration(t *testing.T) {
	b, clock := newTestBreaker(2, time.Minute)

	b.RecordFailure("mainnet")
	b.RecordFailure("mainnet")
	if b.Allow("mainnet") {
		t.Fatal("should be open")
	}

	clock.advance(61 * time.Second)

	if !b.Allow("mainnet") {
		t.Fatal("should allow probe in half-open")
	}
	if b.State("mainnet") != StateHalfOpen {
		t.Fatalf("expected StateHalfOpen, got %v", b.State("mainnet"))
	}
	if b.Allow("mainnet") {
		t.Fatal("should reject second request in half-open")
	}
}

func TestBreaker_HalfOpenSuccessCloses(t *testing.T) {
	b, clock := newTestBreaker(2, time.Minute)

	b.RecordFailure("mainnet")
	b.RecordFailure("mainnet")
	clock.advance(time.Minute)
	b.Allow("mainnet")

	b.RecordSuccess("mainnet")
	if b.State("mainnet") != StateClosed {
		t.Fatalf("expected StateClosed after success, got %v", b.State("mainnet"))
	}
	if !b.Allow("mainnet") {
		t.Fatal("should allow after recovery")
	}
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	b, clock := newTestBreaker(2, time.Minute)

	b.RecordFailure("mainnet")
	b.RecordFailure("mainnet")
	clock.advance(time.Minute)
	b.Allow("mainnet")

	b.RecordFailure("mainnet")
	if b.State("mainnet") != StateOpen {
		t.Fatalf("expected StateOpen after half-open failure, got %v", b.State("mainnet"))
	}
}

func TestBreaker_SuccessResets(t *testing.T) {
	b, _ := newTestBreaker(3, time.Minute)

	b.RecordFailure("mainnet")
	b.RecordFailure("mainnet")
	b.RecordSuccess("mainnet")

	b.RecordFailure("mainnet")
	if !b.Allow("mainnet") {
		t.Fatal("should still be closed after reset")
	}
}

func TestBreaker_IndependentNetworks(t *testing.T) {
	b, _ := newTestBreaker(2, time.Minute)

	b.RecordFailure("mainnet")
	b.RecordFailure("mainnet")

	if b.Allow("mainnet") {
		t.Fatal("mainnet should be open")
	}
	if !b.Allow("sepolia") {
		t.Fatal("sepolia should be closed")
	}
}

func TestBreaker_Guard(t *testing.T) {
	b, _ := newTestBreaker(1, time.Minute)
	if err := b.Guard("mainnet"); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	b.RecordFailure("mainnet")
	if err := b.Guard("mainnet"); !errors.Is(err, ErrOpen) {
		t.Fatalf("expected ErrOpen, got %v", err)
	}

	var nilBreaker *Breaker
	if err := nilBreaker.Guard("mainnet"); err != nil {
		t.Fatalf("nil breaker should allow, got %v", err)
	}
	nilBreaker.RecordFailure("mainnet")
	nilBreaker.RecordSuccess("mainnet")
}

func TestBreaker_Defaults(t *testing.T) {
	b := New(0, 0)
	if b.threshold != 5 || b.openDuration != 30*time.Second {
		t.Fatalf("unexpected defaults: %d, %v", b.threshold, b.openDuration)
	}
	if b.State("unknown") != StateClosed {
		t.Fatalf("expected StateClosed for unknown key, got %v", b.State("unknown"))
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{StateClosed, "closed"},
		{StateOpen, "open"},
		{StateHalfOpen, "half_open"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}
