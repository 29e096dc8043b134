package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"contact-agenda/internal/domains/category"
	"contact-agenda/pkg/database"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) category.Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Create(ctx context.Context, c *category.Category) error {
	const query = `INSERT INTO categories (name) VALUES ($1) RETURNING id`

	if err := r.pool.QueryRow(ctx, query, c.Name).Scan(&c.ID); err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id int64) (*category.Category, error) {
	const query = `SELECT id, name FROM categories WHERE id = $1`

	var c category.Category
	err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, category.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	return &c, nil
}

func (r *postgresRepository) List(ctx context.Context) ([]category.Category, error) {
	const query = `SELECT id, name FROM categories ORDER BY id DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (category.Category, error) {
		var c category.Category
		err := row.Scan(&c.ID, &c.Name)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan categories: %w", err)
	}
	return out, nil
}

func (r *postgresRepository) Update(ctx context.Context, c *category.Category) error {
	const query = `UPDATE categories SET name = $2 WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, c.ID, c.Name)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return category.ErrCategoryNotFound
	}
	return nil
}

// Delete detaches the contacts and removes the row in one transaction.
func (r *postgresRepository) Delete(ctx context.Context, id int64) (int64, error) {
	return database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (int64, error) {
		detached, err := tx.Exec(ctx, `UPDATE contacts SET category_id = NULL WHERE category_id = $1`, id)
		if err != nil {
			return 0, fmt.Errorf("detach contacts: %w", err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
		if err != nil {
			return 0, fmt.Errorf("delete category: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return 0, category.ErrCategoryNotFound
		}
		return detached.RowsAffected(), nil
	})
}

func (r *postgresRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("category exists: %w", err)
	}
	return exists, nil
}
