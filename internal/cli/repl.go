package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL drives. App implements it.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Profile(ctx context.Context) error
	SetProfile(ctx context.Context) error
	Post(ctx context.Context) error
	Feed(ctx context.Context) error
	Tag(ctx context.Context, tag string) error
	Edit(ctx context.Context, postID string) error
	Delete(ctx context.Context, postID string) error
}

const (
	helpSignedOut = "Available commands: register, login, feed, tag <tag>, help, exit"
	helpSignedIn  = "Available commands: whoami, profile, setprofile, post, feed, tag [tag], edit <id>, delete <id>, logout, help, exit"
)

// runREPL reads one command per line and dispatches it to a. Command errors
// are printed and the loop goes on. It returns on EOF, "exit" or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "postfeed %s> ", statusFn())

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			fmt.Fprintln(w)
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, arg := parts[0], ""
		if len(parts) > 1 {
			arg = parts[1]
		}

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, helpSignedIn)
			} else {
				fmt.Fprintln(w, helpSignedOut)
			}

		case "register":
			cmdErr = a.Register(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "whoami":
			cmdErr = a.WhoAmI(ctx)

		case "profile":
			cmdErr = a.Profile(ctx)

		case "setprofile":
			cmdErr = a.SetProfile(ctx)

		case "post":
			cmdErr = a.Post(ctx)

		case "l", "feed":
			cmdErr = a.Feed(ctx)

		case "tag":
			cmdErr = a.Tag(ctx, arg)

		case "edit":
			if arg == "" {
				fmt.Fprintln(w, "usage: edit <post id>")
				continue
			}
			cmdErr = a.Edit(ctx, arg)

		case "delete":
			if arg == "" {
				fmt.Fprintln(w, "usage: delete <post id>")
				continue
			}
			cmdErr = a.Delete(ctx, arg)

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}

		if cmdErr != nil {
			fmt.Fprintln(w, "error:", describe(cmdErr))
		}
	}
}
