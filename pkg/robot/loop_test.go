package robot

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/goleak"

	"github.com/vnykmshr/robocmd/internal/testutil"
	rcerrors "github.com/vnykmshr/robocmd/pkg/common/errors"
	"github.com/vnykmshr/robocmd/pkg/command"
	"github.com/vnykmshr/robocmd/pkg/command/commandtest"
	"github.com/vnykmshr/robocmd/pkg/metrics"
	"github.com/vnykmshr/robocmd/pkg/scheduling/scheduler"
	"github.com/vnykmshr/robocmd/pkg/station"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNewValidation(t *testing.T) {
	_, err := New(Config{})
	testutil.AssertErrorIs(t, err, rcerrors.ErrInvalidConfiguration)

	_, err = New(Config{Scheduler: scheduler.New(scheduler.Config{}), Period: -time.Millisecond})
	testutil.AssertErrorIs(t, err, rcerrors.ErrInvalidConfiguration)
}

func TestStepRunsScheduler(t *testing.T) {
	s := scheduler.New(scheduler.Config{})
	loop, err := New(Config{Scheduler: s})
	testutil.AssertNoError(t, err)

	cmd := commandtest.Finishing("c", 2, nil)
	_, err = s.Schedule(cmd)
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, loop.Step())
	testutil.AssertNoError(t, loop.Step())

	testutil.AssertEqual(t, cmd.Ends, 1)
	testutil.AssertEqual(t, loop.Ticks(), uint64(2))
	testutil.AssertEqual(t, loop.Mode(), station.Teleop)
}

func TestModeHooks(t *testing.T) {
	st, err := station.New(station.Config{})
	testutil.AssertNoError(t, err)
	s := scheduler.New(scheduler.Config{Disabled: st.Disabled})

	var events []string
	auto := commandtest.New("auto", nil)
	loop, err := New(Config{
		Scheduler: s,
		Station:   st,
		Hooks: Hooks{
			ModeInit: func(m station.Mode) {
				events = append(events, "init:"+m.String())
				if m == station.Autonomous {
					_, _ = s.Schedule(auto)
				}
			},
			ModeExit: func(m station.Mode) { events = append(events, "exit:"+m.String()) },
		},
	})
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, loop.Step())
	st.SetMode(station.Autonomous)
	testutil.AssertNoError(t, loop.Step())
	testutil.AssertNoError(t, loop.Step())
	testutil.AssertEqual(t, auto.Executes, 2)

	st.SetMode(station.Disabled)
	testutil.AssertNoError(t, loop.Step())

	testutil.AssertSliceEqual(t, events, []string{
		"init:disabled",
		"exit:disabled", "init:autonomous",
		"exit:autonomous", "init:disabled",
	})
	testutil.AssertEqual(t, auto.Interruptions, 1)
	testutil.AssertEqual(t, s.IsScheduled(auto), false)
}

func TestStepRecoversPanic(t *testing.T) {
	s := scheduler.New(scheduler.Config{})
	loop, err := New(Config{Scheduler: s})
	testutil.AssertNoError(t, err)

	bad := command.Run("bad", func() { panic("motor fault") })
	_, err = s.Schedule(bad)
	testutil.AssertNoError(t, err)

	err = loop.Step()
	testutil.AssertError(t, err)
	var opErr *rcerrors.OperationError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected OperationError, got %T", err)
	}
	testutil.AssertEqual(t, opErr.Operation, "step")

	// The scheduler is usable after the panic.
	s.Cancel(bad)
	testutil.AssertNoError(t, loop.Step())
}

func TestOverrunCountedAndRateLimited(t *testing.T) {
	clock := testutil.NewMockClock(time.Unix(0, 0))
	reg := metrics.NewRegistry(prometheus.NewRegistry())
	s := scheduler.New(scheduler.Config{})
	loop, err := New(Config{Name: "test", Scheduler: s, Period: 20 * time.Millisecond, Clock: clock, Metrics: reg})
	testutil.AssertNoError(t, err)

	slow := command.Run("slow", func() { clock.Advance(30 * time.Millisecond) })
	_, err = s.Schedule(slow)
	testutil.AssertNoError(t, err)

	for i := 0; i < 3; i++ {
		testutil.AssertNoError(t, loop.Step())
	}

	testutil.AssertEqual(t, promtest.ToFloat64(reg.LoopTicks.WithLabelValues("test")), 3.0)
	testutil.AssertEqual(t, promtest.ToFloat64(reg.LoopOverruns.WithLabelValues("test")), 3.0)
	testutil.AssertEqual(t, promtest.ToFloat64(reg.LoopMode.WithLabelValues("test", "teleop")), 1.0)
	testutil.AssertEqual(t, promtest.ToFloat64(reg.LoopMode.WithLabelValues("test", "disabled")), 0.0)
}

func TestRunStopsOnCancel(t *testing.T) {
	s := scheduler.New(scheduler.Config{})
	loop, err := New(Config{Scheduler: s, Period: time.Millisecond})
	testutil.AssertNoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		testutil.AssertNoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
}

func TestRunReturnsTickError(t *testing.T) {
	s := scheduler.New(scheduler.Config{})
	loop, err := New(Config{Scheduler: s, Period: time.Millisecond})
	testutil.AssertNoError(t, err)

	n := 0
	_, err = s.Schedule(command.Run("flaky", func() {
		n++
		if n == 3 {
			panic(fmt.Sprintf("tick %d", n))
		}
	}))
	testutil.AssertNoError(t, err)

	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()
	err = loop.Run(ctx)
	testutil.AssertError(t, err)
	testutil.AssertEqual(t, loop.Ticks(), uint64(2))
}
