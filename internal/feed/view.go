package feed

import (
	"context"
	"sync"

	"postfeed/internal/logging"
	"postfeed/internal/models"
)

// View owns the subscription shown to a consumer. Changing the filter tears
// the current subscription down and opens a new one.
type View struct {
	src    Source
	logger logging.Logger

	mu  sync.Mutex
	sub *Subscription
}

func NewView(src Source, logger logging.Logger) *View {
	return &View{src: src, logger: logger}
}

func (v *View) SetFilter(ctx context.Context, tag string) (*Subscription, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.sub != nil {
		v.sub.Unsubscribe()
		v.sub = nil
	}

	sub, err := Subscribe(ctx, v.src, tag, v.logger)
	if err != nil {
		return nil, err
	}

	v.sub = sub
	return sub, nil
}

// Current returns the active subscription or nil.
func (v *View) Current() *Subscription {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sub
}

func (v *View) Lookup(postID string) (models.Post, bool) {
	if sub := v.Current(); sub != nil {
		return sub.Lookup(postID)
	}
	return models.Post{}, false
}

func (v *View) Remove(postID string) bool {
	if sub := v.Current(); sub != nil {
		return sub.Remove(postID)
	}
	return false
}

func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.sub != nil {
		v.sub.Unsubscribe()
		v.sub = nil
	}
}
