package bucket

import (
	"testing"
	"time"

	"github.com/vnykmshr/robocmd/internal/testutil"
	"github.com/vnykmshr/robocmd/pkg/common/errors"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		rate    Limit
		burst   int
		wantErr bool
	}{
		{"valid parameters", 10, 5, false},
		{"zero rate", 0, 5, false},
		{"infinite rate", Inf, 5, false},
		{"negative rate", -1, 5, true},
		{"zero burst", 10, 0, true},
		{"negative burst", 10, -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter, err := New(tt.rate, tt.burst)
			if tt.wantErr {
				testutil.AssertEqual(t, errors.IsValidationError(err), true)
				if limiter != nil {
					t.Error("expected nil limiter on error")
				}
				return
			}
			testutil.AssertNoError(t, err)
			testutil.AssertEqual(t, limiter.Limit(), tt.rate)
			testutil.AssertEqual(t, limiter.Burst(), tt.burst)
			testutil.AssertEqual(t, limiter.Tokens(), float64(tt.burst))
		})
	}
}

func TestAllowRefills(t *testing.T) {
	clock := testutil.NewMockClock(time.Unix(0, 0))
	limiter, err := NewWithConfig(Config{Rate: 2, Burst: 2, Clock: clock, InitialTokens: -1})
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, limiter.Allow(), true)
	testutil.AssertEqual(t, limiter.Allow(), true)
	testutil.AssertEqual(t, limiter.Allow(), false)

	clock.Advance(500 * time.Millisecond)
	testutil.AssertEqual(t, limiter.Allow(), true)
	testutil.AssertEqual(t, limiter.Allow(), false)

	// Refill is capped at burst.
	clock.Advance(10 * time.Second)
	testutil.AssertEqual(t, limiter.Tokens(), 2.0)
	testutil.AssertEqual(t, limiter.AllowN(3), false)
	testutil.AssertEqual(t, limiter.AllowN(2), true)
	testutil.AssertEqual(t, limiter.AllowN(0), true)
}

func TestZeroAndInfiniteRate(t *testing.T) {
	clock := testutil.NewMockClock(time.Unix(0, 0))

	zero, err := NewWithConfig(Config{Rate: 0, Burst: 3, Clock: clock, InitialTokens: 1})
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, zero.Allow(), true)
	clock.Advance(time.Hour)
	testutil.AssertEqual(t, zero.Allow(), false)

	inf, err := NewWithConfig(Config{Rate: Inf, Burst: 1, Clock: clock})
	testutil.AssertNoError(t, err)
	for i := 0; i < 100; i++ {
		if !inf.Allow() {
			t.Fatalf("infinite limiter denied event %d", i)
		}
	}
}

func TestSetLimit(t *testing.T) {
	clock := testutil.NewMockClock(time.Unix(0, 0))
	limiter, err := NewWithConfig(Config{Rate: 1, Burst: 4, Clock: clock, InitialTokens: 0})
	testutil.AssertNoError(t, err)

	clock.Advance(time.Second)
	limiter.SetLimit(Every(250 * time.Millisecond))
	testutil.AssertEqual(t, limiter.Tokens(), 1.0)

	clock.Advance(500 * time.Millisecond)
	testutil.AssertEqual(t, limiter.Tokens(), 3.0)
	testutil.AssertEqual(t, Every(0), Inf)
}
