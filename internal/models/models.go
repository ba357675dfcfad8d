package models

import (
	"slices"
	"strings"
	"time"
)

// Identity is the users/{id} document. A copy of it is embedded into every
// post as the author snapshot.
type Identity struct {
	ID     string `json:"_id" db:"id" firestore:"_id"`
	Name   string `json:"name" db:"name" firestore:"name"`
	Email  string `json:"email,omitempty" db:"email" firestore:"email,omitempty"`
	Avatar string `json:"avatar,omitempty" db:"avatar" firestore:"avatar,omitempty"`
	About  string `json:"about,omitempty" db:"about" firestore:"about,omitempty"`
	City   string `json:"city,omitempty" db:"city" firestore:"city,omitempty"`
	Gender string `json:"gender,omitempty" db:"gender" firestore:"gender,omitempty"`
}

// Post is the posts/{id} document. ID is assigned by the store.
type Post struct {
	ID        string    `json:"id" firestore:"-"`
	Author    Identity  `json:"author" firestore:"author"`
	Content   string    `json:"content" firestore:"content"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	Images    []string  `json:"images,omitempty" firestore:"images,omitempty"`
	Tags      []string  `json:"tags,omitempty" firestore:"tags,omitempty"`
}

// OwnedBy reports whether userID is the recorded author of the post.
func (p Post) OwnedBy(userID string) bool {
	return userID != "" && p.Author.ID == userID
}

// HasTag reports exact membership of tag in the post's tag set.
func (p Post) HasTag(tag string) bool {
	return slices.Contains(p.Tags, tag)
}

// Credential is what the auth provider keeps about a user. It lives apart
// from the users/{id} document.
type Credential struct {
	UserID                 string     `json:"userId" db:"user_id"`
	Email                  string     `json:"email" db:"email"`
	DisplayName            string     `json:"displayName" db:"display_name"`
	PasswordHash           string     `json:"-" db:"password_hash"`
	RefreshToken           *string    `json:"-" db:"refresh_token"`
	RefreshTokenExpiryTime *time.Time `json:"-" db:"refresh_token_expiry_time"`
	CreatedAt              time.Time  `json:"createdAt" db:"created_at"`
}

// NormalizeTags turns user input into a tag set: trimmed, no empty values,
// no duplicates, first occurrence order kept.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}

	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || slices.Contains(out, tag) {
			continue
		}
		out = append(out, tag)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
