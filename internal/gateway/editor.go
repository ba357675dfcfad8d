package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"postfeed/internal/common"
	"postfeed/internal/models"
)

var ErrNotEditing = errors.New("no post is being edited")

type EditState int

const (
	Idle EditState = iota
	Editing
)

func (s EditState) String() string {
	if s == Editing {
		return "editing"
	}
	return "idle"
}

// Editor is the edit workflow. Only one post can be edited at a time.
type Editor struct {
	gw *Gateway

	mu      sync.Mutex
	state   EditState
	post    models.Post
	draft   string
	message string
}

func NewEditor(gw *Gateway) *Editor {
	return &Editor{gw: gw}
}

// Begin opens the edit of post with its current content as the draft. Only
// the author may edit.
func (e *Editor) Begin(post models.Post) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == Editing {
		return fmt.Errorf("post %s: %w", e.post.ID, common.ErrEditInProgress)
	}

	identity, ok := e.gw.session.Current()
	if !ok {
		e.message = "sign in to edit posts"
		return common.ErrUnauthenticated
	}

	if !post.OwnedBy(identity.ID) {
		e.message = "you can only edit your own posts"
		return fmt.Errorf("post %s: %w", post.ID, common.ErrForbidden)
	}

	e.state = Editing
	e.post = post
	e.draft = post.Content
	e.message = ""
	return nil
}

func (e *Editor) SetDraft(content string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Editing {
		return ErrNotEditing
	}
	e.draft = content
	return nil
}

func (e *Editor) Draft() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft
}

func (e *Editor) State() EditState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Post is the post under edit.
func (e *Editor) Post() (models.Post, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.post, e.state == Editing
}

// Message is the last user-facing error of the workflow.
func (e *Editor) Message() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.message
}

// Save sends the draft and closes the edit whatever the outcome.
func (e *Editor) Save(ctx context.Context) error {
	e.mu.Lock()
	if e.state != Editing {
		e.mu.Unlock()
		return ErrNotEditing
	}
	postID, draft := e.post.ID, e.draft
	e.mu.Unlock()

	err := e.gw.UpdatePost(ctx, postID, draft)

	e.mu.Lock()
	e.reset()
	if err != nil {
		e.message = err.Error()
	}
	e.mu.Unlock()

	return err
}

// Cancel discards the draft.
func (e *Editor) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reset()
}

func (e *Editor) reset() {
	e.state = Idle
	e.post = models.Post{}
	e.draft = ""
}
