package phoneauth_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/foodcar/pkg/phoneauth"
	"github.com/stretchr/testify/require"
)

func newTestTimer(cooldown time.Duration) (*phoneauth.ResendTimer, *fakeClock, chan int) {
	clock := &fakeClock{}
	timer := phoneauth.NewResendTimer(cooldown, clock.NewTicker)
	changes := make(chan int, 64)
	timer.OnChange(func(n int) { changes <- n })
	return timer, clock, changes
}

func next(t *testing.T, ch chan int) int {
	t.Helper()
	select {
	case n := <-ch:
		return n
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not change")
		return -1
	}
}

func TestResendTimerCountsDownToZero(t *testing.T) {
	timer, clock, changes := newTestTimer(3 * time.Second)
	require.True(t, timer.Ready())

	timer.Start()
	require.Equal(t, 3, next(t, changes))
	require.False(t, timer.Ready())

	for want := 2; want >= 0; want-- {
		clock.tick()
		require.Equal(t, want, next(t, changes))
	}
	require.True(t, timer.Ready())
	require.Eventually(t, clock.last().stopped.Load, time.Second, 5*time.Millisecond)
}

func TestResendTimerStartResetsCountdown(t *testing.T) {
	timer, clock, changes := newTestTimer(phoneauth.DefaultCooldown)

	timer.Start()
	require.Equal(t, 30, next(t, changes))
	clock.tick()
	require.Equal(t, 29, next(t, changes))

	first := clock.last()
	timer.Start()
	require.Equal(t, 30, next(t, changes))
	require.Equal(t, 30, timer.Remaining())
	require.True(t, first.stopped.Load(), "restart stops the old ticker")
	timer.Stop()
}

func TestResendTimerStopFreezes(t *testing.T) {
	timer, clock, changes := newTestTimer(5 * time.Second)

	timer.Start()
	require.Equal(t, 5, next(t, changes))
	clock.tick()
	require.Equal(t, 4, next(t, changes))

	timer.Stop()
	require.True(t, clock.last().stopped.Load())
	require.Equal(t, 4, timer.Remaining())

	select {
	case clock.last().ch <- time.Now():
		t.Fatal("a stopped timer still reads ticks")
	case <-time.After(20 * time.Millisecond):
	}
	require.Equal(t, 4, timer.Remaining())

	timer.Reset()
	require.True(t, timer.Ready())
}

func TestResendTimerStopIsIdempotent(t *testing.T) {
	timer, _, _ := newTestTimer(time.Second)
	timer.Stop()
	timer.Start()
	timer.Stop()
	timer.Stop()
}
