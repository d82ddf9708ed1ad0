package playback

import (
	"sync"
	"time"
)

// Scheduler arms repeating timers. Every calls fn once per period until the
// returned cancel function is called. cancel must be idempotent; fn may still
// be running, or about to run, when cancel returns.
type Scheduler interface {
	Every(period time.Duration, fn func()) (cancel func())
}

// TickerScheduler runs fn on its own goroutine driven by a time.Ticker.
type TickerScheduler struct{}

func (TickerScheduler) Every(period time.Duration, fn func()) func() {
	t := time.NewTicker(period)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-t.C:
				fn()
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.Stop()
			close(done)
		})
	}
}
