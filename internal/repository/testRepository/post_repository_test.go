package testRepository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postfeed/internal/common"
	"postfeed/internal/models"
	"postfeed/internal/repository"
)

func setupMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { sqlxDB.Close() })

	return sqlxDB, mock
}

var postColumns = []string{"id", "author", "content", "created_at", "images", "tags"}

func TestNewPostRepository(t *testing.T) {
	db, _ := setupMockDB(t)

	repo := repository.NewPostRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.DB)
}

func TestPostRepositoryImpl_Create(t *testing.T) {
	createdAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		post        *models.Post
		setupMock   func(mock sqlmock.Sqlmock)
		expectError bool
		errorMsg    string
	}{
		{
			name: "creates post with given id",
			post: &models.Post{
				ID:      "post-1",
				Author:  models.Identity{ID: "user-a", Name: "Alice"},
				Content: "hello",
				Tags:    []string{"go"},
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO posts`).
					WithArgs("post-1", sqlmock.AnyArg(), "hello", sqlmock.AnyArg(), sqlmock.AnyArg()).
					WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(createdAt))
			},
		},
		{
			name: "generates id when empty",
			post: &models.Post{
				Author:  models.Identity{ID: "user-a", Name: "Alice"},
				Content: "hello",
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO posts`).
					WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "hello", sqlmock.AnyArg(), sqlmock.AnyArg()).
					WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(createdAt))
			},
		},
		{
			name: "database error",
			post: &models.Post{
				ID:      "post-1",
				Author:  models.Identity{ID: "user-a"},
				Content: "hello",
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO posts`).
					WillReturnError(fmt.Errorf("database error"))
			},
			expectError: true,
			errorMsg:    "create post",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			tc.setupMock(mock)

			repo := repository.NewPostRepository(db)
			err := repo.Create(context.Background(), tc.post)

			if tc.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tc.errorMsg)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, createdAt, tc.post.CreatedAt)
				_, uuidErr := uuid.Parse(tc.post.ID)
				if tc.post.ID != "post-1" {
					assert.NoError(t, uuidErr)
				}
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostRepositoryImpl_GetByID(t *testing.T) {
	createdAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		postID      string
		setupMock   func(mock sqlmock.Sqlmock)
		expectPost  *models.Post
		expectError error
	}{
		{
			name:   "post found",
			postID: "post-1",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(postColumns).
					AddRow("post-1", []byte(`{"_id":"user-a","name":"Alice"}`), "hello", createdAt, "{img-1,img-2}", "{go}")
				mock.ExpectQuery(`SELECT (.+) FROM posts WHERE id = \$1`).
					WithArgs("post-1").
					WillReturnRows(rows)
			},
			expectPost: &models.Post{
				ID:        "post-1",
				Author:    models.Identity{ID: "user-a", Name: "Alice"},
				Content:   "hello",
				CreatedAt: createdAt,
				Images:    []string{"img-1", "img-2"},
				Tags:      []string{"go"},
			},
		},
		{
			name:   "post not found",
			postID: "missing",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM posts WHERE id = \$1`).
					WithArgs("missing").
					WillReturnRows(sqlmock.NewRows(postColumns))
			},
			expectError: common.ErrNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			tc.setupMock(mock)

			repo := repository.NewPostRepository(db)
			post, err := repo.GetByID(context.Background(), tc.postID)

			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, post)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expectPost, post)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostRepositoryImpl_List(t *testing.T) {
	db, mock := setupMockDB(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows(postColumns).
		AddRow("post-2", []byte(`{"_id":"user-b","name":"Bob"}`), "second", now, nil, nil).
		AddRow("post-1", []byte(`{"_id":"user-a","name":"Alice"}`), "first", now, nil, "{go,news}")
	mock.ExpectQuery(`SELECT (.+) FROM posts$`).WillReturnRows(rows)

	repo := repository.NewPostRepository(db)
	posts, err := repo.List(context.Background())

	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "post-2", posts[0].ID)
	assert.Equal(t, "post-1", posts[1].ID)
	assert.Nil(t, posts[0].Tags)
	assert.Equal(t, []string{"go", "news"}, posts[1].Tags)
	assert.Equal(t, "Alice", posts[1].Author.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepositoryImpl_Writes(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		affected    int64
		call        func(repo *repository.PostRepositoryImpl) error
		expectError error
	}{
		{
			name:     "update content",
			query:    `UPDATE posts SET content = \$1 WHERE id = \$2`,
			affected: 1,
			call: func(repo *repository.PostRepositoryImpl) error {
				return repo.UpdateContent(context.Background(), "post-1", "edited")
			},
		},
		{
			name:     "update missing post",
			query:    `UPDATE posts SET content`,
			affected: 0,
			call: func(repo *repository.PostRepositoryImpl) error {
				return repo.UpdateContent(context.Background(), "post-1", "edited")
			},
			expectError: common.ErrNotFound,
		},
		{
			name:     "delete",
			query:    `DELETE FROM posts WHERE id = \$1`,
			affected: 1,
			call: func(repo *repository.PostRepositoryImpl) error {
				return repo.Delete(context.Background(), "post-1")
			},
		},
		{
			name:     "delete missing post",
			query:    `DELETE FROM posts`,
			affected: 0,
			call: func(repo *repository.PostRepositoryImpl) error {
				return repo.Delete(context.Background(), "post-1")
			},
			expectError: common.ErrNotFound,
		},
		{
			name:     "append image",
			query:    `UPDATE posts SET images = array_append`,
			affected: 1,
			call: func(repo *repository.PostRepositoryImpl) error {
				return repo.AppendImage(context.Background(), "post-1", "http://img")
			},
		},
		{
			name:     "remove image",
			query:    `UPDATE posts SET images = array_remove`,
			affected: 1,
			call: func(repo *repository.PostRepositoryImpl) error {
				return repo.RemoveImage(context.Background(), "post-1", "http://img")
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			mock.ExpectExec(tc.query).WillReturnResult(sqlmock.NewResult(0, tc.affected))

			err := tc.call(repository.NewPostRepository(db))

			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
