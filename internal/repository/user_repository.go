package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"postfeed/internal/common"
	"postfeed/internal/models"
)

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Save(ctx context.Context, identity *models.Identity) error {
	if identity.ID == "" {
		return fmt.Errorf("save user: empty id: %w", common.ErrValidation)
	}

	query := `
		INSERT INTO users (id, name, email, avatar, about, city, gender)
		VALUES (:id, :name, :email, :avatar, :about, :city, :gender)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			avatar = EXCLUDED.avatar,
			about = EXCLUDED.about,
			city = EXCLUDED.city,
			gender = EXCLUDED.gender
	`

	if _, err := r.db.NamedExecContext(ctx, query, identity); err != nil {
		return fmt.Errorf("save user %s: %w", identity.ID, err)
	}

	return nil
}

func (r *userRepository) GetByID(ctx context.Context, userID string) (*models.Identity, error) {
	var identity models.Identity

	query := `SELECT id, name, email, avatar, about, city, gender FROM users WHERE id = $1`

	err := r.db.GetContext(ctx, &identity, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", userID, common.ErrNotFound)
		}
		return nil, fmt.Errorf("get user %s: %w", userID, err)
	}

	return &identity, nil
}
