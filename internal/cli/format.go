package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"postfeed/internal/client"
	"postfeed/internal/common"
	"postfeed/internal/models"
)

// now is a test seam for relative times.
var now = time.Now

func age(t time.Time) string {
	if t.IsZero() {
		return "pending"
	}
	return humanize.RelTime(t, now(), "ago", "from now")
}

func formatPost(post models.Post) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s, %s", post.ID, authorName(post.Author), age(post.CreatedAt))
	for _, tag := range post.Tags {
		b.WriteString(" #" + tag)
	}
	b.WriteString("\n")

	for _, line := range strings.Split(post.Content, "\n") {
		b.WriteString("  " + line + "\n")
	}

	if n := len(post.Images); n > 0 {
		fmt.Fprintf(&b, "  %s attached\n", english.Plural(n, "image", "images"))
	}

	return b.String()
}

func authorName(identity models.Identity) string {
	if identity.Name != "" {
		return identity.Name
	}
	if identity.Email != "" {
		return identity.Email
	}
	return identity.ID
}

func printFeed(w io.Writer, posts []models.Post, tag string) {
	header := "All posts"
	if tag != "" {
		header = "Posts tagged #" + tag
	}
	fmt.Fprintf(w, "%s (%s)\n", header, humanize.Comma(int64(len(posts))))

	for _, post := range posts {
		fmt.Fprintln(w, formatPost(post))
	}
}

func printIdentity(w io.Writer, identity models.Identity) {
	fmt.Fprintf(w, "id:     %s\n", identity.ID)
	fmt.Fprintf(w, "name:   %s\n", identity.Name)
	rows := []struct{ label, value string }{
		{"email", identity.Email},
		{"avatar", identity.Avatar},
		{"about", identity.About},
		{"city", identity.City},
		{"gender", identity.Gender},
	}
	for _, row := range rows {
		if row.value != "" {
			fmt.Fprintf(w, "%-7s %s\n", row.label+":", row.value)
		}
	}
}

// describe turns an error into a short message for the prompt.
func describe(err error) string {
	switch {
	case errors.Is(err, common.ErrUnauthenticated):
		return "please sign in first"
	case errors.Is(err, common.ErrForbidden):
		return "you can only change your own posts and profile"
	case errors.Is(err, common.ErrNotFound):
		return "not found"
	case errors.Is(err, common.ErrEditInProgress):
		return "another edit is in progress"
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable"
	default:
		return err.Error()
	}
}
