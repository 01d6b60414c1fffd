package testutil

import (
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestEventually(t *testing.T) {
	var counter int32
	go func() {
		time.Sleep(20 * time.Millisecond)
		atomic.StoreInt32(&counter, 1)
	}()

	Eventually(t, func() bool {
		return atomic.LoadInt32(&counter) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestMockClock(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)

	AssertEqual(t, clock.Now(), start)

	clock.Advance(20 * time.Millisecond)
	AssertEqual(t, clock.Now(), start.Add(20*time.Millisecond))

	clock.Set(start)
	AssertEqual(t, clock.Now(), start)
}

func TestMockWriter(t *testing.T) {
	w := NewMockWriter()

	n, err := w.Write([]byte("hello"))
	AssertNoError(t, err)
	AssertEqual(t, n, 5)
	AssertEqual(t, w.String(), "hello")

	boom := errors.New("disk full")
	w.SetAlwaysError(boom)
	_, err = w.Write([]byte("more"))
	AssertErrorIs(t, err, boom)
	AssertEqual(t, w.WriteCount(), 2)
	if strings.Contains(w.String(), "more") {
		t.Error("failed write should not reach the buffer")
	}
}

func TestAssertSliceEqual(t *testing.T) {
	AssertSliceEqual(t, []string{"a", "b"}, []string{"a", "b"})
}
