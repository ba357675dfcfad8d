package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"postfeed/internal/common"
	"postfeed/internal/models"
)

const credentialColumns = `user_id, email, display_name, password_hash, refresh_token, refresh_token_expiry_time, created_at`

type credentialRepository struct {
	db *sqlx.DB
}

func NewCredentialRepository(db *sqlx.DB) CredentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) Create(ctx context.Context, cred *models.Credential, password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if cred.UserID == "" {
		cred.UserID = uuid.New().String()
	}
	cred.PasswordHash = string(hashedPassword)
	cred.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO credentials (user_id, email, display_name, password_hash, refresh_token, refresh_token_expiry_time, created_at)
		VALUES (:user_id, :email, :display_name, :password_hash, :refresh_token, :refresh_token_expiry_time, :created_at)
	`

	_, err = r.db.NamedExecContext(ctx, query, cred)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("email %s: %w", cred.Email, common.ErrAlreadyExists)
		}
		return fmt.Errorf("create credential: %w", err)
	}

	return nil
}

func (r *credentialRepository) get(ctx context.Context, where string, arg any) (*models.Credential, error) {
	var cred models.Credential

	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE ` + where

	if err := r.db.GetContext(ctx, &cred, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("get credential: %w", err)
	}

	return &cred, nil
}

func (r *credentialRepository) GetByID(ctx context.Context, userID string) (*models.Credential, error) {
	return r.get(ctx, `user_id = $1`, userID)
}

func (r *credentialRepository) GetByEmail(ctx context.Context, email string) (*models.Credential, error) {
	return r.get(ctx, `email = $1`, email)
}

func (r *credentialRepository) VerifyPassword(ctx context.Context, email, password string) (*models.Credential, error) {
	cred, err := r.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("wrong password: %w", common.ErrUnauthenticated)
	}

	return cred, nil
}

func (r *credentialRepository) UpdateRefreshToken(ctx context.Context, userID, refreshToken string, expiryTime time.Time) error {
	query := `
		UPDATE credentials
		SET refresh_token = $1, refresh_token_expiry_time = $2
		WHERE user_id = $3
	`

	result, err := r.db.ExecContext(ctx, query, refreshToken, expiryTime, userID)
	if err != nil {
		return fmt.Errorf("update refresh token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("credential %s: %w", userID, common.ErrNotFound)
	}

	return nil
}

func (r *credentialRepository) GetByRefreshToken(ctx context.Context, refreshToken string) (*models.Credential, error) {
	cred, err := r.get(ctx, `refresh_token = $1 AND refresh_token_expiry_time > CURRENT_TIMESTAMP`, refreshToken)
	if errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("refresh token is invalid or expired: %w", common.ErrInvalidToken)
	}
	return cred, err
}

func (r *credentialRepository) ClearRefreshToken(ctx context.Context, userID string) error {
	query := `
		UPDATE credentials
		SET refresh_token = NULL, refresh_token_expiry_time = NULL
		WHERE user_id = $1
	`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}

	return nil
}
