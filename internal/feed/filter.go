// Package feed materializes the live post collection for consumers. A
// Subscription re-reads the whole collection on every upstream change, a View
// swaps subscriptions when the tag filter changes and a Hub fans one upstream
// change stream out to many watchers.
package feed

import (
	"context"

	"postfeed/internal/models"
)

// Watcher delivers one value per upstream change. The channel is closed when
// the stream ends or ctx is done.
type Watcher interface {
	Watch(ctx context.Context) (<-chan struct{}, error)
}

// Lister reads the whole collection in the store's enumeration order.
type Lister interface {
	List(ctx context.Context) ([]models.Post, error)
}

type Source interface {
	Watcher
	Lister
}

type joined struct {
	Watcher
	Lister
}

// Join builds a Source from separate halves, e.g. a Hub and a repository.
func Join(w Watcher, l Lister) Source {
	return joined{Watcher: w, Lister: l}
}

// Filter returns a fresh slice with the posts whose tag set contains tag. An
// empty tag keeps every post. Order is preserved.
func Filter(posts []models.Post, tag string) []models.Post {
	out := make([]models.Post, 0, len(posts))
	for _, post := range posts {
		if tag == "" || post.HasTag(tag) {
			out = append(out, post)
		}
	}
	return out
}
