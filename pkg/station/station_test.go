package station

import (
	"testing"
	"time"

	"github.com/vnykmshr/robocmd/internal/testutil"
	rcerrors "github.com/vnykmshr/robocmd/pkg/common/errors"
)

func TestModeNames(t *testing.T) {
	for _, m := range Modes() {
		parsed, err := ParseMode(m.String())
		testutil.AssertNoError(t, err)
		testutil.AssertEqual(t, parsed, m)
	}

	m, err := ParseMode("TeleOp")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, m, Teleop)

	_, err = ParseMode("practice")
	testutil.AssertErrorIs(t, err, rcerrors.ErrInvalidConfiguration)
	testutil.AssertEqual(t, Mode(42).String(), "unknown")
}

func TestSetMode(t *testing.T) {
	s, err := New(Config{})
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, s.Mode(), Disabled)
	testutil.AssertEqual(t, s.Disabled(), true)

	testutil.AssertEqual(t, s.SetMode(Teleop), true)
	testutil.AssertEqual(t, s.SetMode(Teleop), false)
	testutil.AssertEqual(t, s.Enabled(), true)
}

func TestNewValidation(t *testing.T) {
	_, err := New(Config{InitialMode: Mode(9)})
	testutil.AssertErrorIs(t, err, rcerrors.ErrInvalidConfiguration)

	_, err = New(Config{Schedule: []Entry{{Spec: "not a cron", Mode: Teleop}}})
	testutil.AssertErrorIs(t, err, rcerrors.ErrInvalidConfiguration)

	testutil.AssertNoError(t, ValidateSpec("*/5 * * * * *"))
	testutil.AssertNoError(t, ValidateSpec("@every 15s"))
	testutil.AssertError(t, ValidateSpec("* * *"))
}

func TestScheduledMatch(t *testing.T) {
	clock := testutil.NewMockClock(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
	s, err := New(Config{
		Clock: clock,
		Schedule: []Entry{
			{Spec: "@every 15s", Mode: Autonomous},
			{Spec: "@every 2m", Mode: Disabled},
		},
	})
	testutil.AssertNoError(t, err)

	next, ok := s.Next()
	testutil.AssertEqual(t, ok, true)
	testutil.AssertEqual(t, next.Equal(clock.Now().Add(15*time.Second)), true)

	clock.Advance(10 * time.Second)
	testutil.AssertEqual(t, s.Update(), Disabled)

	clock.Advance(5 * time.Second)
	testutil.AssertEqual(t, s.Update(), Autonomous)

	// Driver takes over between scheduled changes.
	s.SetMode(Teleop)
	clock.Advance(5 * time.Second)
	testutil.AssertEqual(t, s.Update(), Teleop)

	clock.Set(time.Date(2026, 3, 14, 9, 2, 0, 0, time.UTC))
	// Both entries are due; the later one wins.
	testutil.AssertEqual(t, s.Update(), Disabled)
}

func TestCronSpecWithSeconds(t *testing.T) {
	clock := testutil.NewMockClock(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
	s, err := New(Config{
		Clock:       clock,
		InitialMode: Teleop,
		Schedule:    []Entry{{Spec: "30 0 9 * * *", Mode: Disabled}},
	})
	testutil.AssertNoError(t, err)

	clock.Advance(29 * time.Second)
	testutil.AssertEqual(t, s.Update(), Teleop)
	clock.Advance(time.Second)
	testutil.AssertEqual(t, s.Update(), Disabled)
}
