// Package gateway is the client-side write path for posts. Every mutation is
// attributed to the identity currently held by the session and ownership is
// checked before anything is sent to the store.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"postfeed/internal/common"
	"postfeed/internal/logging"
	"postfeed/internal/models"
)

// Store is the remote document store as seen by the client.
type Store interface {
	// CreatePost returns the stored post with its ID and CreatedAt filled in.
	CreatePost(ctx context.Context, post models.Post) (models.Post, error)
	GetPost(ctx context.Context, postID string) (models.Post, error)
	UpdatePostContent(ctx context.Context, postID, content string) error
	DeletePost(ctx context.Context, postID string) error
}

// IdentitySource yields the acting identity. session.Holder implements it.
type IdentitySource interface {
	Current() (models.Identity, bool)
}

// LocalFeed is the materialized feed the gateway reads from and trims.
type LocalFeed interface {
	Lookup(postID string) (models.Post, bool)
	Remove(postID string) bool
}

type Gateway struct {
	store   Store
	session IdentitySource
	feed    LocalFeed
	logger  logging.Logger

	mu      sync.Mutex
	lastErr error
	closed  atomic.Bool
}

// New builds a gateway. feed may be nil when no local feed is shown.
func New(store Store, session IdentitySource, feed LocalFeed, logger logging.Logger) *Gateway {
	return &Gateway{
		store:   store,
		session: session,
		feed:    feed,
		logger:  logger.With("module", "gateway"),
	}
}

// CreatePost publishes a post authored by the acting identity. Without one it
// does nothing and returns a zero Post.
func (g *Gateway) CreatePost(ctx context.Context, content string, tags []string) (models.Post, error) {
	identity, ok := g.session.Current()
	if !ok {
		g.logger.Debug(ctx, "create skipped, no identity")
		return models.Post{}, nil
	}

	post := models.Post{
		Author:  identity,
		Content: content,
		Tags:    models.NormalizeTags(tags),
	}

	created, err := g.store.CreatePost(ctx, post)
	if err != nil {
		err = remoteErr("create post", err)
		g.logger.Error(ctx, "failed to create post", "error", err)
		g.record(err)
		return models.Post{}, err
	}

	g.record(nil)
	return created, nil
}

// UpdatePost replaces the content of a post the acting identity owns.
func (g *Gateway) UpdatePost(ctx context.Context, postID, content string) error {
	if _, err := g.authorize(ctx, postID); err != nil {
		return err
	}

	if err := g.store.UpdatePostContent(ctx, postID, content); err != nil {
		err = remoteErr("update post", err)
		g.logger.Error(ctx, "failed to update post", "post_id", postID, "error", err)
		g.record(err)
		return err
	}

	g.record(nil)
	return nil
}

// DeletePost removes a post the acting identity owns and drops it from the
// local feed.
func (g *Gateway) DeletePost(ctx context.Context, postID string) error {
	if _, err := g.authorize(ctx, postID); err != nil {
		return err
	}

	if err := g.store.DeletePost(ctx, postID); err != nil {
		err = remoteErr("delete post", err)
		g.logger.Error(ctx, "failed to delete post", "post_id", postID, "error", err)
		g.record(err)
		return err
	}

	if g.closed.Load() {
		return nil
	}

	if g.feed != nil {
		g.feed.Remove(postID)
	}
	g.record(nil)
	return nil
}

// authorize resolves the post from the local feed, then from the store, and
// checks the acting identity owns it. No write happens on failure.
func (g *Gateway) authorize(ctx context.Context, postID string) (models.Post, error) {
	identity, ok := g.session.Current()
	if !ok {
		return models.Post{}, common.ErrUnauthenticated
	}

	post, found := models.Post{}, false
	if g.feed != nil {
		post, found = g.feed.Lookup(postID)
	}

	if !found {
		var err error
		post, err = g.store.GetPost(ctx, postID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return models.Post{}, fmt.Errorf("post %s: %w", postID, common.ErrNotFound)
			}
			return models.Post{}, fmt.Errorf("read post %s: %w", postID, err)
		}
	}

	if !post.OwnedBy(identity.ID) {
		return models.Post{}, fmt.Errorf("post %s: %w", postID, common.ErrForbidden)
	}

	return post, nil
}

// Err is the local error flag: the last failed write, cleared by a good one.
func (g *Gateway) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastErr
}

func (g *Gateway) record(err error) {
	if g.closed.Load() {
		return
	}

	g.mu.Lock()
	g.lastErr = err
	g.mu.Unlock()
}

// Close marks the consumer gone. Writes still in flight complete but their
// results no longer touch local state.
func (g *Gateway) Close() {
	g.closed.Store(true)
}

var knownErrs = []error{
	common.ErrUnauthenticated,
	common.ErrForbidden,
	common.ErrNotFound,
	common.ErrValidation,
	common.ErrRemoteWrite,
}

// remoteErr classifies anything the store did not name as a remote write
// failure.
func remoteErr(op string, err error) error {
	for _, known := range knownErrs {
		if errors.Is(err, known) {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return fmt.Errorf("%s: %w: %w", op, common.ErrRemoteWrite, err)
}
