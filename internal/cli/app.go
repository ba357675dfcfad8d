// Package cli is the interactive terminal client. It keeps the signed-in
// identity, shows a live feed narrowed by tag and publishes, edits and
// deletes posts through the mutation gateway.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"postfeed/internal/client"
	"postfeed/internal/config"
	"postfeed/internal/feed"
	"postfeed/internal/gateway"
	"postfeed/internal/logging"
	"postfeed/internal/models"
	"postfeed/internal/session"
)

// Backend is everything the terminal client needs from the server.
// client.Client implements it.
type Backend interface {
	session.AuthProvider
	session.IdentityStore
	gateway.Store
	feed.Source

	Register(ctx context.Context, email, password, name string) (*session.AuthUser, error)
	SignIn(ctx context.Context, email, password string) (*session.AuthUser, error)
	SignOut(ctx context.Context) error
	GetIdentity(ctx context.Context, userID string) (models.Identity, error)
}

type App struct {
	backend Backend
	holder  *session.Holder
	view    *feed.View
	gateway *gateway.Gateway
	editor  *gateway.Editor
	logger  logging.Logger

	reader *bufio.Reader
	out    io.Writer
	outMu  sync.Mutex

	announcers sync.WaitGroup
}

func NewApp(cfg *config.ClientConfig, logger logging.Logger) *App {
	return newApp(client.New(cfg, logger), os.Stdin, os.Stdout, logger)
}

func newApp(backend Backend, in io.Reader, out io.Writer, logger logging.Logger) *App {
	holder := session.NewHolder(backend, logger)
	view := feed.NewView(backend, logger)
	gw := gateway.New(backend, holder, view, logger)

	return &App{
		backend: backend,
		holder:  holder,
		view:    view,
		gateway: gw,
		editor:  gateway.NewEditor(gw),
		logger:  logger,
		reader:  bufio.NewReader(in),
		out:     out,
	}
}

// Run starts the session and the live feed, then serves the prompt until the
// user leaves.
func (a *App) Run(ctx context.Context) {
	a.holder.Attach(a.backend)
	defer a.close()

	if err := a.showTag(ctx, ""); err != nil {
		a.printf("live feed unavailable: %s\n", describe(err))
	}

	runREPL(ctx, a, a.status, a.reader, a)
}

func (a *App) close() {
	a.gateway.Close()
	a.view.Close()
	a.announcers.Wait()
	a.holder.Detach()
	a.holder.Wait()
}

// Write lets the REPL share the output lock with feed announcements.
func (a *App) Write(p []byte) (int, error) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	return a.out.Write(p)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a, format, args...)
}

func (a *App) isLoggedIn() bool {
	_, ok := a.holder.Current()
	return ok
}

func (a *App) status() string {
	tag := ""
	if sub := a.view.Current(); sub != nil && sub.Tag() != "" {
		tag = " #" + sub.Tag()
	}

	identity, ok := a.holder.Current()
	if !ok {
		return "(signed out)" + tag
	}
	return "(" + authorName(identity) + ")" + tag
}

// showTag switches the live feed to tag and announces its later changes.
func (a *App) showTag(ctx context.Context, tag string) error {
	sub, err := a.view.SetFilter(ctx, tag)
	if err != nil {
		return err
	}

	a.announcers.Add(1)
	go func() {
		defer a.announcers.Done()
		a.announce(sub)
	}()

	return nil
}

// announce reports every feed snapshot after the first one until the
// subscription ends.
func (a *App) announce(sub *feed.Subscription) {
	first := true
	for posts := range sub.Updates() {
		if first {
			first = false
			continue
		}
		a.printf("\n* feed updated: %d posts, type \"feed\" to show\n", len(posts))
	}
}
