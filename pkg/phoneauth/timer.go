package phoneauth

import (
	"sync"
	"time"
)

// DefaultCooldown is how long resend stays disabled after a send.
const DefaultCooldown = 30 * time.Second

// Ticker is the part of *time.Ticker the resend timer needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct{ *time.Ticker }

func (t realTicker) C() <-chan time.Time { return t.Ticker.C }

// NewRealTicker is the default ticker factory.
func NewRealTicker(d time.Duration) Ticker { return realTicker{time.NewTicker(d)} }

// ResendTimer counts whole seconds down to zero. Start resets it; Stop
// cancels it and returns only once the counting goroutine has exited, so no
// tick lands after Stop.
type ResendTimer struct {
	cooldown  int
	newTicker func(time.Duration) Ticker

	mu        sync.Mutex
	remaining int
	run       uint64
	onChange  func(remaining int)
	stop      chan struct{}
	done      chan struct{}
}

// NewResendTimer builds a stopped timer at zero. newTicker may be nil.
func NewResendTimer(cooldown time.Duration, newTicker func(time.Duration) Ticker) *ResendTimer {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	if newTicker == nil {
		newTicker = NewRealTicker
	}
	return &ResendTimer{
		cooldown:  int(cooldown / time.Second),
		newTicker: newTicker,
	}
}

// OnChange registers fn to be called after every change of the remaining
// seconds. fn runs on the timer goroutine and must not call Start or Stop.
func (t *ResendTimer) OnChange(fn func(remaining int)) {
	t.mu.Lock()
	t.onChange = fn
	t.mu.Unlock()
}

// Remaining returns the whole seconds left.
func (t *ResendTimer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// Ready reports whether resend is allowed.
func (t *ResendTimer) Ready() bool { return t.Remaining() == 0 }

// Start (re)starts the countdown at the full cooldown.
func (t *ResendTimer) Start() {
	t.Stop()

	t.mu.Lock()
	t.run++
	run := t.run
	t.remaining = t.cooldown
	stop, done := make(chan struct{}), make(chan struct{})
	t.stop, t.done = stop, done
	fn := t.onChange
	ticker := t.newTicker(time.Second)
	t.mu.Unlock()

	if fn != nil {
		fn(t.cooldown)
	}
	go t.loop(run, ticker, stop, done)
}

// Stop cancels the countdown, leaving Remaining where it was. Use Reset to
// also zero it.
func (t *ResendTimer) Stop() {
	t.mu.Lock()
	stop, done := t.stop, t.done
	t.stop, t.done = nil, nil
	t.run++
	t.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// Reset stops the countdown and zeroes it.
func (t *ResendTimer) Reset() {
	t.Stop()
	t.mu.Lock()
	t.remaining = 0
	t.mu.Unlock()
}

func (t *ResendTimer) loop(run uint64, ticker Ticker, stop, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
			t.mu.Lock()
			if t.run != run || t.remaining == 0 {
				t.mu.Unlock()
				return
			}
			t.remaining--
			left := t.remaining
			fn := t.onChange
			t.mu.Unlock()

			if fn != nil {
				fn(left)
			}
			if left == 0 {
				return
			}
		}
	}
}
