// Package watcher reconciles generation status by polling at a fixed interval.
// Each tick fetches a fresh snapshot and replaces the previous one wholesale,
// so deletions and regenerations on the server side are always reflected. The
// loop stops on its own once every item reaches a terminal state.
package watcher

import (
	"context"
	"sync"
	"time"

	"storyframe-ai/log"

	"go.uber.org/zap"
)

const DefaultInterval = 3 * time.Second

// Item is one watched generation row.
type Item struct {
	Id     int64
	Status string
}

func (i Item) Terminal() bool {
	return i.Status == "completed" || i.Status == "failed"
}

// FetchFunc returns the current snapshot of watched items.
type FetchFunc func(ctx context.Context) ([]Item, error)

type Watcher struct {
	interval time.Duration
	fetch    FetchFunc

	mu       sync.Mutex
	items    []Item
	running  bool
	cancel   context.CancelFunc
	done     chan struct{}
	onUpdate func([]Item)
}

func New(interval time.Duration, fetch FetchFunc) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Watcher{interval: interval, fetch: fetch}
}

// OnUpdate registers a callback invoked with each fresh snapshot. Must be set
// before Start.
func (w *Watcher) OnUpdate(fn func([]Item)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onUpdate = fn
}

// Start begins the polling loop. Calling Start while already running is a
// no-op.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}
	w.running = true

	loopCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	go w.loop(loopCtx)
}

// Stop tears down the loop and waits for it to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	cancel()
	<-done
}

// Running reports whether the loop is active.
func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Items returns the latest snapshot.
func (w *Watcher) Items() []Item {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Item, len(w.items))
	copy(out, w.items)
	return out
}

func (w *Watcher) loop(ctx context.Context) {
	defer func() {
		w.mu.Lock()
		w.running = false
		close(w.done)
		w.mu.Unlock()
	}()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		items, err := w.fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.GetLogger().Warn("状态轮询失败", zap.Error(err))
			continue
		}

		w.mu.Lock()
		w.items = items
		onUpdate := w.onUpdate
		w.mu.Unlock()

		if onUpdate != nil {
			onUpdate(items)
		}

		if allTerminal(items) {
			return
		}
	}
}

func allTerminal(items []Item) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if !item.Terminal() {
			return false
		}
	}
	return true
}
