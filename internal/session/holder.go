// Package session keeps the signed-in identity of a client process.
package session

import (
	"context"
	"sync"

	"postfeed/internal/logging"
	"postfeed/internal/models"
)

// AuthUser is what the auth provider reports on sign-in.
type AuthUser struct {
	UID         string
	Email       string
	DisplayName string
}

// AuthProvider reports sign-in (non-nil user) and sign-out (nil) events.
type AuthProvider interface {
	OnAuthStateChanged(fn func(user *AuthUser)) (unsubscribe func())
}

// IdentityStore persists users/{id} documents.
type IdentityStore interface {
	SaveIdentity(ctx context.Context, identity models.Identity) error
}

// Holder is the single source of truth for "who is acting" in the process.
type Holder struct {
	store  IdentityStore
	logger logging.Logger

	mu          sync.RWMutex
	identity    *models.Identity
	unsubscribe func()
	observers   []func(models.Identity, bool)

	pending sync.WaitGroup
}

func NewHolder(store IdentityStore, logger logging.Logger) *Holder {
	return &Holder{
		store:  store,
		logger: logger.With("module", "session"),
	}
}

// Current returns the live identity, ok=false when signed out.
func (h *Holder) Current() (models.Identity, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.identity == nil {
		return models.Identity{}, false
	}
	return *h.identity, true
}

// Attach installs the auth-state subscription, replacing any previous one.
func (h *Holder) Attach(provider AuthProvider) {
	h.Detach()

	unsubscribe := provider.OnAuthStateChanged(h.onAuthChange)

	h.mu.Lock()
	h.unsubscribe = unsubscribe
	h.mu.Unlock()
}

// Detach releases the auth-state subscription. It is safe to call twice.
func (h *Holder) Detach() {
	h.mu.Lock()
	unsubscribe := h.unsubscribe
	h.unsubscribe = nil
	h.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// OnChange registers fn to be called after every identity transition.
func (h *Holder) OnChange(fn func(identity models.Identity, ok bool)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.observers = append(h.observers, fn)
}

func (h *Holder) onAuthChange(user *AuthUser) {
	if user == nil {
		h.set(nil)
		return
	}

	h.set(&models.Identity{
		ID:    user.UID,
		Name:  user.DisplayName,
		Email: user.Email,
	})
}

func (h *Holder) set(identity *models.Identity) {
	h.mu.Lock()
	h.identity = identity
	observers := make([]func(models.Identity, bool), len(h.observers))
	copy(observers, h.observers)
	h.mu.Unlock()

	var current models.Identity
	if identity != nil {
		current = *identity
	}
	for _, fn := range observers {
		fn(current, identity != nil)
	}
}

// UpdateIdentity replaces the local identity right away and writes the full
// document in the background. A failed write is logged and the local state
// is kept as is; nothing is retried.
func (h *Holder) UpdateIdentity(ctx context.Context, updated models.Identity) {
	identity := updated
	h.set(&identity)

	persistCtx := context.WithoutCancel(ctx)

	h.pending.Add(1)
	go func() {
		defer h.pending.Done()

		if err := h.store.SaveIdentity(persistCtx, updated); err != nil {
			h.logger.Error(persistCtx, "failed to persist identity", "user_id", updated.ID, "error", err)
			return
		}
		h.logger.Debug(persistCtx, "identity persisted", "user_id", updated.ID)
	}()
}

// Wait blocks until background identity writes have finished.
func (h *Holder) Wait() {
	h.pending.Wait()
}
