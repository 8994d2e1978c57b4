package gameserver

import (
	"context"
	"sync"
	"time"
)

// Ticker invokes a callback on a fixed wall-clock interval.
//
// The interval is independent of the simulated game speed: each tick advances
// one engine step, and the game speed only scales how much game time a step
// consumes.
type Ticker struct {
	interval time.Duration
	fn       func(context.Context)
}

// NewTicker returns a stopped Ticker.
//
// Precondition: interval > 0 and fn non-nil.
func NewTicker(interval time.Duration, fn func(context.Context)) *Ticker {
	if interval <= 0 {
		panic("gameserver.NewTicker: interval must be > 0")
	}
	if fn == nil {
		panic("gameserver.NewTicker: fn must not be nil")
	}
	return &Ticker{interval: interval, fn: fn}
}

// Start launches the tick goroutine and returns a stop function.
// Calling stop() is idempotent and safe from inside fn.
//
// Postcondition: fn is invoked once per interval, never concurrently with
// itself, until stop() is called or ctx is cancelled.
func (t *Ticker) Start(ctx context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	var once sync.Once
	go func() {
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t.fn(ctx)
			}
		}
	}()
	return func() {
		once.Do(cancel)
	}
}
