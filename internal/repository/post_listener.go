package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"

	"postfeed/internal/logging"
)

// PostsChannel is the NOTIFY channel fired by the posts_notify trigger.
const PostsChannel = "posts_changed"

// PostgresPostWatcher listens for posts_changed notifications.
type PostgresPostWatcher struct {
	dsn    string
	logger logging.Logger
}

func NewPostgresPostWatcher(dsn string, logger logging.Logger) *PostgresPostWatcher {
	return &PostgresPostWatcher{dsn: dsn, logger: logger.With("module", "post_watcher")}
}

func (w *PostgresPostWatcher) Watch(ctx context.Context) (<-chan struct{}, error) {
	listener := pq.NewListener(w.dsn, 2*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			w.logger.Warn(ctx, "listener event", "event", ev, "error", err)
		}
	})

	if err := listener.Listen(PostsChannel); err != nil {
		listener.Close()
		return nil, fmt.Errorf("listen %s: %w", PostsChannel, err)
	}

	out := make(chan struct{}, 1)

	go func() {
		defer close(out)
		defer listener.Close()

		for {
			select {
			case <-ctx.Done():
				return
			// a nil notification means the connection was re-established and
			// changes may have been missed, so it counts as a change too
			case <-listener.Notify:
				select {
				case out <- struct{}{}:
				default:
				}
			case <-time.After(90 * time.Second):
				go listener.Ping()
			}
		}
	}()

	return out, nil
}
