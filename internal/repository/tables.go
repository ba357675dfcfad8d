package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type schemaRepository struct {
	db *sqlx.DB
}

func NewSchemaRepository(db *sqlx.DB) SchemaRepository {
	return &schemaRepository{db: db}
}

// CountTables counts the application tables present in the public schema.
func (r *schemaRepository) CountTables(ctx context.Context) (int, error) {
	var count int

	err := r.db.GetContext(ctx, &count, `
			SELECT COUNT(*)
			FROM information_schema.tables
			WHERE table_schema = 'public'
			AND table_name IN ('users', 'credentials', 'posts')
		`)

	if err != nil {
		return 0, fmt.Errorf("count schema tables: %w", err)
	}

	return count, nil
}
