package feed

import (
	"context"
	"fmt"
	"sync"

	"postfeed/internal/logging"
	"postfeed/internal/models"
)

// Subscription is one live materialization of the post collection for a fixed
// tag filter. Every upstream change triggers a full re-read. Reads run one at
// a time and changes that arrive during a read collapse into one follow-up
// read, so the published feed always reflects the latest completed read.
type Subscription struct {
	src    Source
	tag    string
	logger logging.Logger

	cancel context.CancelFunc
	once   sync.Once
	done   chan struct{}

	mu      sync.RWMutex
	posts   []models.Post
	err     error
	ready   bool
	closed  bool
	updates chan []models.Post
}

// Subscribe opens exactly one push subscription on src and starts
// materializing it. An empty tag means no narrowing.
func Subscribe(ctx context.Context, src Source, tag string, logger logging.Logger) (*Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)

	notes, err := src.Watch(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("watch posts: %w", err)
	}

	s := &Subscription{
		src:     src,
		tag:     tag,
		logger:  logger.With("module", "feed", "tag", tag),
		cancel:  cancel,
		done:    make(chan struct{}),
		updates: make(chan []models.Post, 1),
	}

	go s.run(ctx, notes)

	return s, nil
}

func (s *Subscription) run(ctx context.Context, notes <-chan struct{}) {
	defer func() {
		s.mu.Lock()
		s.closed = true
		close(s.updates)
		s.mu.Unlock()
		close(s.done)
	}()

	s.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-notes:
			if !ok {
				return
			}
			drain(notes)
			s.refresh(ctx)
		}
	}
}

func drain(notes <-chan struct{}) {
	for {
		select {
		case _, ok := <-notes:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

func (s *Subscription) refresh(ctx context.Context) {
	posts, err := s.src.List(ctx)
	if ctx.Err() != nil {
		return
	}

	if err != nil {
		s.logger.Error(ctx, "failed to read posts", "error", err)
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	s.posts = Filter(posts, s.tag)
	s.err = nil
	s.ready = true
	s.publishLocked()
	s.mu.Unlock()
}

// publishLocked replaces any unread snapshot with the current one.
func (s *Subscription) publishLocked() {
	if s.closed {
		return
	}

	select {
	case <-s.updates:
	default:
	}

	snapshot := make([]models.Post, len(s.posts))
	copy(snapshot, s.posts)

	select {
	case s.updates <- snapshot:
	default:
	}
}

// Tag is the filter the subscription was opened with.
func (s *Subscription) Tag() string {
	return s.tag
}

// Posts returns a copy of the current feed.
func (s *Subscription) Posts() []models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Post, len(s.posts))
	copy(out, s.posts)
	return out
}

// Ready reports whether at least one read has completed.
func (s *Subscription) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Updates delivers feed snapshots, newest only. It is closed after the
// subscription ends.
func (s *Subscription) Updates() <-chan []models.Post {
	return s.updates
}

func (s *Subscription) Lookup(postID string) (models.Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, post := range s.posts {
		if post.ID == postID {
			return post, true
		}
	}
	return models.Post{}, false
}

// Remove drops a post from the local feed ahead of the next upstream change.
func (s *Subscription) Remove(postID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, post := range s.posts {
		if post.ID == postID {
			posts := make([]models.Post, 0, len(s.posts)-1)
			posts = append(posts, s.posts[:i]...)
			s.posts = append(posts, s.posts[i+1:]...)
			s.publishLocked()
			return true
		}
	}
	return false
}

// Err is the error of the last failed read, cleared by the next good one.
func (s *Subscription) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Unsubscribe releases the push subscription and waits for the reader to
// stop. Calling it again is a no-op.
func (s *Subscription) Unsubscribe() {
	s.once.Do(s.cancel)
	<-s.done
}
