package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"postfeed/internal/common"
	"postfeed/internal/models"
)

func (a *App) Register(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "-Enter email", a)
	if err != nil {
		return err
	}
	name, err := GetSimpleText(a.reader, "-Enter display name", a)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.reader, a)
	if err != nil {
		return err
	}

	user, err := a.backend.Register(ctx, email, password, name)
	if err != nil {
		return err
	}

	a.printf("Welcome, %s!\n", user.DisplayName)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "-Enter email", a)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.reader, a)
	if err != nil {
		return err
	}

	user, err := a.backend.SignIn(ctx, email, password)
	if err != nil {
		if errors.Is(err, common.ErrUnauthenticated) {
			return errors.New("wrong email or password")
		}
		return err
	}

	a.printf("Signed in as %s\n", user.DisplayName)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.editor.Cancel()
	if err := a.backend.SignOut(ctx); err != nil {
		return err
	}
	a.printf("Signed out\n")
	return nil
}

func (a *App) WhoAmI(context.Context) error {
	identity, ok := a.holder.Current()
	if !ok {
		a.printf("Not signed in\n")
		return nil
	}
	printIdentity(a, identity)
	return nil
}

// Profile shows the stored users/{id} document of the signed-in user.
func (a *App) Profile(ctx context.Context) error {
	identity, ok := a.holder.Current()
	if !ok {
		return common.ErrUnauthenticated
	}

	stored, err := a.backend.GetIdentity(ctx, identity.ID)
	switch {
	case errors.Is(err, common.ErrNotFound):
		a.printf("(profile not saved yet)\n")
		stored = identity
	case err != nil:
		return err
	}

	printIdentity(a, stored)
	return nil
}

// SetProfile edits the identity, starting from the stored users/{id}
// document. Empty answers keep the current value and "-" clears it. The write
// happens in the background.
func (a *App) SetProfile(ctx context.Context) error {
	identity, ok := a.holder.Current()
	if !ok {
		return common.ErrUnauthenticated
	}

	stored, err := a.backend.GetIdentity(ctx, identity.ID)
	switch {
	case errors.Is(err, common.ErrNotFound):
		// not saved yet
	case err != nil:
		return fmt.Errorf("load profile: %w", err)
	default:
		identity = mergeIdentity(identity, stored)
	}

	fields := []struct {
		label string
		value *string
	}{
		{"name", &identity.Name},
		{"about", &identity.About},
		{"city", &identity.City},
		{"gender", &identity.Gender},
		{"avatar url", &identity.Avatar},
	}

	for _, f := range fields {
		answer, err := GetSimpleText(a.reader, "-"+f.label+" ["+*f.value+"]", a)
		if err != nil {
			return err
		}
		switch answer {
		case "":
			// keep
		case "-":
			*f.value = ""
		default:
			*f.value = answer
		}
	}

	if strings.TrimSpace(identity.Name) == "" {
		return errors.New("name must not be empty")
	}

	a.holder.UpdateIdentity(ctx, identity)
	a.printf("Profile updated\n")
	return nil
}

// mergeIdentity fills the fields local lacks from the stored document. The
// local identity wins where both are set.
func mergeIdentity(local, stored models.Identity) models.Identity {
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&local.Name, stored.Name)
	fill(&local.Email, stored.Email)
	fill(&local.Avatar, stored.Avatar)
	fill(&local.About, stored.About)
	fill(&local.City, stored.City)
	fill(&local.Gender, stored.Gender)
	return local
}

func (a *App) Post(ctx context.Context) error {
	if !a.isLoggedIn() {
		return common.ErrUnauthenticated
	}

	content, err := GetMultiline(a.reader, "-Write your post (markdown)", a)
	if err != nil {
		return err
	}
	if content == "" {
		a.printf("Nothing to publish\n")
		return nil
	}

	tags, err := GetSimpleText(a.reader, "-Tags (comma separated, optional)", a)
	if err != nil {
		return err
	}

	post, err := a.gateway.CreatePost(ctx, content, splitTags(tags))
	if err != nil {
		return err
	}

	a.printf("Published %s\n", post.ID)
	return nil
}

func (a *App) Feed(context.Context) error {
	sub := a.view.Current()
	if sub == nil {
		return errors.New("live feed is not open")
	}
	if !sub.Ready() {
		if err := sub.Err(); err != nil {
			return err
		}
		a.printf("Loading...\n")
		return nil
	}

	printFeed(a, sub.Posts(), sub.Tag())
	return nil
}

// Tag narrows the live feed to tag; an empty tag shows everything.
func (a *App) Tag(ctx context.Context, tag string) error {
	tag = strings.TrimPrefix(tag, "#")
	if err := a.showTag(ctx, tag); err != nil {
		return err
	}

	if tag == "" {
		a.printf("Showing all posts\n")
	} else {
		a.printf("Showing posts tagged #%s\n", tag)
	}
	return nil
}

func (a *App) Edit(ctx context.Context, postID string) error {
	post, ok := a.view.Lookup(postID)
	if !ok {
		var err error
		if post, err = a.backend.GetPost(ctx, postID); err != nil {
			return err
		}
	}

	if err := a.editor.Begin(post); err != nil {
		return err
	}

	a.printf("Current content:\n%s\n", post.Content)
	content, err := GetMultiline(a.reader, "-New content (empty to cancel)", a)
	if err != nil {
		a.editor.Cancel()
		return err
	}
	if content == "" {
		a.editor.Cancel()
		a.printf("Edit cancelled\n")
		return nil
	}

	if err := a.editor.SetDraft(content); err != nil {
		return err
	}
	if err := a.editor.Save(ctx); err != nil {
		return err
	}

	a.printf("Saved %s\n", post.ID)
	return nil
}

func (a *App) Delete(ctx context.Context, postID string) error {
	if err := a.gateway.DeletePost(ctx, postID); err != nil {
		return err
	}
	a.printf("Deleted %s\n", postID)
	return nil
}
