package feed

import (
	"context"
	"errors"
	"sync"
	"time"

	"postfeed/internal/logging"
)

var ErrHubClosed = errors.New("hub closed")

// Hub shares a single upstream change stream between many watchers. Every
// watcher channel holds at most one pending notification.
type Hub struct {
	logger     logging.Logger
	retryDelay time.Duration

	mu       sync.Mutex
	watchers map[chan struct{}]struct{}
	closed   bool
}

func NewHub(logger logging.Logger) *Hub {
	return &Hub{
		logger:     logger.With("module", "hub"),
		retryDelay: 2 * time.Second,
		watchers:   make(map[chan struct{}]struct{}),
	}
}

// Run pumps upstream into the hub until ctx is done, re-opening the upstream
// stream when it ends. A re-open counts as a change.
func (h *Hub) Run(ctx context.Context, upstream Watcher) {
	defer h.close()

	for {
		notes, err := upstream.Watch(ctx)
		if err != nil {
			h.logger.Error(ctx, "failed to watch posts", "error", err)
		} else if !h.pump(ctx, notes) {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(h.retryDelay):
		}

		h.logger.Warn(ctx, "re-opening posts change stream")
		h.Broadcast()
	}
}

// pump forwards notes until the stream ends. It returns false once ctx is done.
func (h *Hub) pump(ctx context.Context, notes <-chan struct{}) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case _, ok := <-notes:
			if !ok {
				return ctx.Err() == nil
			}
			h.Broadcast()
		}
	}
}

// Watch registers a watcher. It is removed and its channel closed when ctx is
// done or the hub stops.
func (h *Hub) Watch(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrHubClosed
	}
	h.watchers[ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.remove(ch)
	}()

	return ch, nil
}

func (h *Hub) remove(ch chan struct{}) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.watchers[ch]; ok {
		delete(h.watchers, ch)
		close(ch)
	}
}

// Broadcast notifies every watcher.
func (h *Hub) Broadcast() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Len is the number of registered watchers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.watchers)
}

func (h *Hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for ch := range h.watchers {
		delete(h.watchers, ch)
		close(ch)
	}
}
