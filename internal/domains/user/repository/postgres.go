package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"contact-agenda/internal/domains/user"
	"contact-agenda/pkg/cache"
	"contact-agenda/pkg/database"
)

const (
	userCacheTTL      = 15 * time.Minute
	uniqueViolation   = "23505"
	emailIndexName    = "users_email_lower_key"
	usernameIndexName = "users_username_key"
	selectUserColumns = `id, username, password_hash, first_name, last_name, email, is_staff, is_active, date_joined, last_login`
)

// cachedUser keeps the hash, which User hides from JSON.
type cachedUser struct {
	user.User
	Hash string `json:"password_hash"`
}

type postgresRepository struct {
	pool  *pgxpool.Pool
	cache cache.Cache
}

// NewPostgresRepository returns a user.Repository backed by pgx.
// FindByID is read through cache; writes invalidate it.
func NewPostgresRepository(pool *pgxpool.Pool, cache cache.Cache) user.Repository {
	return &postgresRepository{pool: pool, cache: cache}
}

func cacheKey(id uuid.UUID) string {
	return "user:" + id.String()
}

func (r *postgresRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (username, password_hash, first_name, last_name, email, is_staff, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, date_joined
	`
	err := r.pool.QueryRow(ctx, query,
		u.Username, u.PasswordHash, u.FirstName, u.LastName, u.Email, u.IsStaff, u.IsActive,
	).Scan(&u.ID, &u.DateJoined)
	if err != nil {
		if conflict := mapUniqueViolation(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	var cached cachedUser
	if found, err := r.cache.Get(ctx, cacheKey(id), &cached); err == nil && found {
		u := cached.User
		u.PasswordHash = cached.Hash
		return &u, nil
	}

	u, err := r.findOne(ctx, `SELECT `+selectUserColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}

	// A cache failure must not fail the lookup.
	_ = r.cache.Set(ctx, cacheKey(id), cachedUser{User: *u, Hash: u.PasswordHash}, userCacheTTL)
	return u, nil
}

func (r *postgresRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.findOne(ctx, `SELECT `+selectUserColumns+` FROM users WHERE username = $1`, username)
}

func (r *postgresRepository) findOne(ctx context.Context, query string, args ...any) (*user.User, error) {
	var u user.User
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&u.IsStaff,
		&u.IsActive,
		&u.DateJoined,
		&u.LastLogin,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (r *postgresRepository) Update(ctx context.Context, u *user.User, passwordHash string) error {
	err := database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE users
			SET username = $2, first_name = $3, last_name = $4, email = $5
			WHERE id = $1
		`, u.ID, u.Username, u.FirstName, u.LastName, u.Email)
		if err != nil {
			if conflict := mapUniqueViolation(err); conflict != nil {
				return conflict
			}
			return fmt.Errorf("update user: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return user.ErrUserNotFound
		}

		if passwordHash == "" {
			return nil
		}
		if _, err := tx.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, u.ID, passwordHash); err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		u.PasswordHash = passwordHash
		return nil
	})
	if err != nil {
		return err
	}

	_ = r.cache.Delete(ctx, cacheKey(u.ID))
	return nil
}

func (r *postgresRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET last_login = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	_ = r.cache.Delete(ctx, cacheKey(id))
	return nil
}

func (r *postgresRepository) ExistsByEmail(ctx context.Context, email string, exclude *uuid.UUID) (bool, error) {
	return r.exists(ctx, `lower(email) = lower($1)`, email, exclude)
}

func (r *postgresRepository) ExistsByUsername(ctx context.Context, username string, exclude *uuid.UUID) (bool, error) {
	return r.exists(ctx, `username = $1`, username, exclude)
}

func (r *postgresRepository) exists(ctx context.Context, cond string, value string, exclude *uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE ` + cond + ` AND ($2::uuid IS NULL OR id <> $2))`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, value, exclude).Scan(&exists); err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}

// mapUniqueViolation turns a unique index violation into the matching
// domain conflict. Other errors give nil.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil
	}
	switch {
	case pgErr.ConstraintName == emailIndexName || strings.Contains(pgErr.Detail, "email"):
		return user.ErrEmailAlreadyExists
	case pgErr.ConstraintName == usernameIndexName || strings.Contains(pgErr.Detail, "username"):
		return user.ErrUsernameAlreadyExists
	}
	return nil
}
