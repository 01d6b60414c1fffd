package dashboard

import (
	"context"
	"errors"
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
	"github.com/vnykmshr/robocmd/pkg/scheduling/workerpool"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newPool(t *testing.T) *workerpool.Pool {
	t.Helper()
	pool, err := workerpool.New(workerpool.Config{Name: "dashboard", Workers: 1, QueueSize: 4})
	testutil.AssertNoError(t, err)
	t.Cleanup(func() { <-pool.Shutdown() })
	return pool
}

func TestCapture(t *testing.T) {
	s := scheduler.New(scheduler.Config{Name: "main"})
	arm := command.NewSubsystem("arm")
	drive := command.NewSubsystem("drive")
	s.Register(arm, drive)

	hold := commandtest.New("hold", nil, arm)
	hold.SetInterruptionBehavior(command.CancelIncoming)
	_, err := s.Schedule(hold)
	testutil.AssertNoError(t, err)

	now := time.Unix(100, 0)
	snap := Capture(s, 7, now)

	testutil.AssertEqual(t, snap.Scheduler, "main")
	testutil.AssertEqual(t, snap.Tick, uint64(7))
	testutil.AssertEqual(t, len(snap.Commands), 1)
	testutil.AssertEqual(t, snap.Commands[0].ID, hold.ID())
	testutil.AssertEqual(t, snap.Commands[0].Interruption, "cancel_incoming")
	testutil.AssertSliceEqual(t, snap.Commands[0].Requirements, []string{"arm"})
	testutil.AssertEqual(t, snap.Owners["arm"], hold.ID())
	testutil.AssertEqual(t, snap.Owners["drive"], "")
}

func TestNewValidation(t *testing.T) {
	s := scheduler.New(scheduler.Config{})
	pool := newPool(t)

	_, err := New(Config{Store: NewMemoryStore(), Pool: pool})
	testutil.AssertErrorIs(t, err, rcerrors.ErrInvalidConfiguration)

	_, err = New(Config{Scheduler: s, Pool: pool})
	testutil.AssertErrorIs(t, err, rcerrors.ErrInvalidConfiguration)

	_, err = New(Config{Scheduler: s, Store: NewMemoryStore(), Pool: pool, PublishEvery: -1})
	testutil.AssertErrorIs(t, err, rcerrors.ErrInvalidConfiguration)
}

func TestPublishEveryN(t *testing.T) {
	s := scheduler.New(scheduler.Config{})
	store := NewMemoryStore()
	reg := metrics.NewRegistry(prometheus.NewRegistry())
	pub, err := New(Config{
		Scheduler:    s,
		Store:        store,
		Pool:         newPool(t),
		PublishEvery: 3,
		Mode:         func() string { return "teleop" },
		Metrics:      reg,
	})
	testutil.AssertNoError(t, err)

	pub.Update()
	pub.Update()
	time.Sleep(10 * time.Millisecond)
	_, n := store.Latest()
	testutil.AssertEqual(t, n, 0)

	pub.Update()
	testutil.Eventually(t, func() bool {
		_, n := store.Latest()
		return n == 1
	}, time.Second, 5*time.Millisecond)

	snap, _ := store.Latest()
	testutil.AssertEqual(t, snap.Tick, uint64(3))
	testutil.AssertEqual(t, snap.Mode, "teleop")
	testutil.Eventually(t, func() bool {
		return promtest.ToFloat64(reg.DashboardPublishes.WithLabelValues("dashboard")) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestRemoteCancel(t *testing.T) {
	s := scheduler.New(scheduler.Config{})
	store := NewMemoryStore()
	pub, err := New(Config{Scheduler: s, Store: store, Pool: newPool(t), PublishEvery: 1})
	testutil.AssertNoError(t, err)

	cmd := commandtest.New("spin", nil)
	_, err = s.Schedule(cmd)
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, store.RequestCancel(context.Background(), cmd.ID()))
	testutil.AssertNoError(t, store.RequestCancel(context.Background(), "unknown"))

	// The worker collects the request; a later Update applies it on this goroutine.
	testutil.Eventually(t, func() bool {
		pub.Update()
		return !s.IsScheduled(cmd)
	}, time.Second, 5*time.Millisecond)
	testutil.AssertEqual(t, cmd.Interruptions, 1)
}

type failingStore struct{ MemoryStore }

func (f *failingStore) Publish(ctx context.Context, snap Snapshot) error {
	return errors.New("connection refused")
}

func TestPublishErrorsCounted(t *testing.T) {
	s := scheduler.New(scheduler.Config{})
	reg := metrics.NewRegistry(prometheus.NewRegistry())
	pub, err := New(Config{Scheduler: s, Store: &failingStore{}, Pool: newPool(t), PublishEvery: 1, Metrics: reg})
	testutil.AssertNoError(t, err)

	pub.Update()
	testutil.Eventually(t, func() bool {
		return promtest.ToFloat64(reg.DashboardErrors.WithLabelValues("dashboard", "publish")) == 1
	}, time.Second, 5*time.Millisecond)
}
