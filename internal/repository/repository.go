package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/jmoiron/sqlx"

	"postfeed/internal/logging"
	"postfeed/internal/models"
)

// UserRepository stores users/{id} documents.
type UserRepository interface {
	// Save writes the full document keyed by its ID, replacing any previous one.
	Save(ctx context.Context, identity *models.Identity) error
	GetByID(ctx context.Context, userID string) (*models.Identity, error)
}

// CredentialRepository is the auth provider's own storage.
type CredentialRepository interface {
	Create(ctx context.Context, cred *models.Credential, password string) error
	GetByID(ctx context.Context, userID string) (*models.Credential, error)
	GetByEmail(ctx context.Context, email string) (*models.Credential, error)
	VerifyPassword(ctx context.Context, email, password string) (*models.Credential, error)
	UpdateRefreshToken(ctx context.Context, userID, refreshToken string, expiryTime time.Time) error
	GetByRefreshToken(ctx context.Context, refreshToken string) (*models.Credential, error)
	ClearRefreshToken(ctx context.Context, userID string) error
}

// PostRepository stores posts/{id} documents. Every write is a single
// unconditional operation; ownership is checked by the caller.
type PostRepository interface {
	// Create assigns ID and CreatedAt.
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, postID string) (*models.Post, error)
	// List returns every post in the store's enumeration order.
	List(ctx context.Context) ([]models.Post, error)
	UpdateContent(ctx context.Context, postID, content string) error
	Delete(ctx context.Context, postID string) error
	AppendImage(ctx context.Context, postID, imageRef string) error
	RemoveImage(ctx context.Context, postID, imageRef string) error
}

// PostWatcher turns upstream changes of the posts collection into a stream of
// notifications. The channel is closed when ctx is done.
type PostWatcher interface {
	Watch(ctx context.Context) (<-chan struct{}, error)
}

// Pinger is satisfied by *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type SchemaRepository interface {
	CountTables(ctx context.Context) (int, error)
}

type Repository struct {
	User        UserRepository
	Credential  CredentialRepository
	Post        PostRepository
	PostWatcher PostWatcher
	Schema      SchemaRepository
	Pinger      Pinger
}

// NewRepository wires the Postgres implementations. Post changes are picked up
// with LISTEN on a dedicated connection opened from dsn.
func NewRepository(db *sqlx.DB, dsn string, logger logging.Logger) *Repository {
	return &Repository{
		User:        NewUserRepository(db),
		Credential:  NewCredentialRepository(db),
		Post:        NewPostRepository(db),
		PostWatcher: NewPostgresPostWatcher(dsn, logger),
		Schema:      NewSchemaRepository(db),
		Pinger:      db,
	}
}

// UseFirestore moves the users and posts documents to Firestore. Credentials
// stay in Postgres.
func (r *Repository) UseFirestore(client *firestore.Client, logger logging.Logger) {
	posts := NewFirestorePostRepository(client, logger)
	r.User = NewFirestoreUserRepository(client)
	r.Post = posts
	r.PostWatcher = posts
}
