package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"postfeed/internal/common"
	"postfeed/internal/models"
)

// authorJSON stores the embedded author snapshot in a JSONB column.
type authorJSON models.Identity

func (a authorJSON) Value() (driver.Value, error) {
	b, err := json.Marshal(models.Identity(a))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *authorJSON) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = authorJSON{}
		return nil
	case []byte:
		return json.Unmarshal(v, (*models.Identity)(a))
	case string:
		return json.Unmarshal([]byte(v), (*models.Identity)(a))
	default:
		return fmt.Errorf("unsupported author type %T", src)
	}
}

type postRow struct {
	ID        string         `db:"id"`
	Author    authorJSON     `db:"author"`
	Content   string         `db:"content"`
	CreatedAt time.Time      `db:"created_at"`
	Images    pq.StringArray `db:"images"`
	Tags      pq.StringArray `db:"tags"`
}

func (r postRow) toModel() models.Post {
	return models.Post{
		ID:        r.ID,
		Author:    models.Identity(r.Author),
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
		Images:    []string(r.Images),
		Tags:      []string(r.Tags),
	}
}

const postColumns = `id, author, content, created_at, images, tags`

type PostRepositoryImpl struct {
	DB *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) *PostRepositoryImpl {
	return &PostRepositoryImpl{DB: db}
}

func (r *PostRepositoryImpl) Create(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = uuid.New().String()
	}

	query := `
		INSERT INTO posts (id, author, content, images, tags)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.DB.QueryRowxContext(ctx, query,
		post.ID,
		authorJSON(post.Author),
		post.Content,
		pq.StringArray(post.Images),
		pq.StringArray(post.Tags),
	).Scan(&post.CreatedAt)
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}

	return nil
}

func (r *PostRepositoryImpl) GetByID(ctx context.Context, postID string) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`

	var row postRow
	err := r.DB.GetContext(ctx, &row, query, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("post %s: %w", postID, common.ErrNotFound)
		}
		return nil, fmt.Errorf("get post: %w", err)
	}

	post := row.toModel()
	return &post, nil
}

// List has no ORDER BY: the feed keeps whatever order the store enumerates.
func (r *PostRepositoryImpl) List(ctx context.Context) ([]models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts`

	var rows []postRow
	if err := r.DB.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	posts := make([]models.Post, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, row.toModel())
	}

	return posts, nil
}

func (r *PostRepositoryImpl) exec(ctx context.Context, op, postID, query string, args ...any) error {
	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: check affected rows: %w", op, err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("post %s: %w", postID, common.ErrNotFound)
	}

	return nil
}

func (r *PostRepositoryImpl) UpdateContent(ctx context.Context, postID, content string) error {
	return r.exec(ctx, "update post", postID,
		`UPDATE posts SET content = $1 WHERE id = $2`, content, postID)
}

func (r *PostRepositoryImpl) Delete(ctx context.Context, postID string) error {
	return r.exec(ctx, "delete post", postID,
		`DELETE FROM posts WHERE id = $1`, postID)
}

func (r *PostRepositoryImpl) AppendImage(ctx context.Context, postID, imageRef string) error {
	return r.exec(ctx, "append image", postID,
		`UPDATE posts SET images = array_append(COALESCE(images, '{}'), $1) WHERE id = $2`, imageRef, postID)
}

func (r *PostRepositoryImpl) RemoveImage(ctx context.Context, postID, imageRef string) error {
	return r.exec(ctx, "remove image", postID,
		`UPDATE posts SET images = array_remove(images, $1) WHERE id = $2`, imageRef, postID)
}
