package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"postfeed/internal/common"
	"postfeed/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { sqlxDB.Close() })

	return sqlxDB, mock
}

func TestUserRepository_Save(t *testing.T) {
	t.Run("upserts the whole document", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewUserRepository(db)

		mock.ExpectExec(`INSERT INTO users`).
			WithArgs("user-a", "Alice", "a@example.com", "", "hi", "Paris", "").
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := repo.Save(context.Background(), &models.Identity{
			ID: "user-a", Name: "Alice", Email: "a@example.com", About: "hi", City: "Paris",
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty id is rejected", func(t *testing.T) {
		db, _ := newMock(t)
		repo := NewUserRepository(db)

		err := repo.Save(context.Background(), &models.Identity{Name: "Alice"})

		assert.ErrorIs(t, err, common.ErrValidation)
	})
}

func TestUserRepository_GetByID(t *testing.T) {
	columns := []string{"id", "name", "email", "avatar", "about", "city", "gender"}

	t.Run("found", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewUserRepository(db)

		mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1`).
			WithArgs("user-a").
			WillReturnRows(sqlmock.NewRows(columns).AddRow("user-a", "Alice", "a@example.com", "", "", "", ""))

		identity, err := repo.GetByID(context.Background(), "user-a")

		require.NoError(t, err)
		assert.Equal(t, &models.Identity{ID: "user-a", Name: "Alice", Email: "a@example.com"}, identity)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewUserRepository(db)

		mock.ExpectQuery(`SELECT (.+) FROM users`).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		identity, err := repo.GetByID(context.Background(), "missing")

		assert.ErrorIs(t, err, common.ErrNotFound)
		assert.Nil(t, identity)
	})
}

func TestCredentialRepository_Create(t *testing.T) {
	t.Run("hashes password and assigns id", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewCredentialRepository(db)

		mock.ExpectExec(`INSERT INTO credentials`).
			WithArgs(sqlmock.AnyArg(), "a@example.com", "Alice", sqlmock.AnyArg(), nil, nil, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		cred := &models.Credential{Email: "a@example.com", DisplayName: "Alice"}
		err := repo.Create(context.Background(), cred, "secret1")

		require.NoError(t, err)
		assert.NotEmpty(t, cred.UserID)
		assert.NotEqual(t, "secret1", cred.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte("secret1")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewCredentialRepository(db)

		mock.ExpectExec(`INSERT INTO credentials`).
			WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Create(context.Background(), &models.Credential{Email: "a@example.com"}, "secret1")

		assert.ErrorIs(t, err, common.ErrAlreadyExists)
	})
}

func credentialRows(hash string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"user_id", "email", "display_name", "password_hash", "refresh_token", "refresh_token_expiry_time", "created_at",
	}).AddRow("user-a", "a@example.com", "Alice", hash, nil, nil, time.Now())
}

func TestCredentialRepository_VerifyPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)

	tests := []struct {
		name        string
		password    string
		setupMock   func(mock sqlmock.Sqlmock)
		expectError error
	}{
		{
			name:     "valid password",
			password: "secret1",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM credentials WHERE email = \$1`).
					WithArgs("a@example.com").
					WillReturnRows(credentialRows(string(hash)))
			},
		},
		{
			name:     "wrong password",
			password: "nope",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM credentials WHERE email = \$1`).
					WillReturnRows(credentialRows(string(hash)))
			},
			expectError: common.ErrUnauthenticated,
		},
		{
			name:     "unknown email",
			password: "secret1",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM credentials WHERE email = \$1`).
					WillReturnError(sql.ErrNoRows)
			},
			expectError: common.ErrNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMock(t)
			tc.setupMock(mock)

			cred, err := NewCredentialRepository(db).VerifyPassword(context.Background(), "a@example.com", tc.password)

			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, cred)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "user-a", cred.UserID)
			}
		})
	}
}

func TestCredentialRepository_RefreshToken(t *testing.T) {
	t.Run("update missing credential", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec(`UPDATE credentials`).
			WithArgs("token", sqlmock.AnyArg(), "user-a").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewCredentialRepository(db).UpdateRefreshToken(context.Background(), "user-a", "token", time.Now())

		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("expired or unknown token", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(`FROM credentials WHERE refresh_token = \$1`).
			WithArgs("token").
			WillReturnError(sql.ErrNoRows)

		cred, err := NewCredentialRepository(db).GetByRefreshToken(context.Background(), "token")

		assert.ErrorIs(t, err, common.ErrInvalidToken)
		assert.Nil(t, cred)
	})

	t.Run("clear", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec(`SET refresh_token = NULL`).
			WithArgs("user-a").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := NewCredentialRepository(db).ClearRefreshToken(context.Background(), "user-a")

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSchemaRepository_CountTables(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`FROM information_schema.tables`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := NewSchemaRepository(db).CountTables(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
