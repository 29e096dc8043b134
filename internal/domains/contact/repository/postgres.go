package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"contact-agenda/internal/domains/contact"
	"contact-agenda/internal/shared/utils"
)

const selectColumns = `
	c.id, c.first_name, c.last_name, c.phone, c.email, c.description,
	c.created_date, c.show, c.picture, c.category_id, c.owner_id,
	COALESCE(cat.name, '')`

const fromContacts = `
	FROM contacts c
	LEFT JOIN categories cat ON cat.id = c.category_id`

// adminOrderColumns whitelists ORDER BY targets.
var adminOrderColumns = map[string]string{
	"id":         "c.id",
	"first_name": "c.first_name",
	"last_name":  "c.last_name",
	"phone":      "c.phone",
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) contact.Repository {
	return &postgresRepository{pool: pool}
}

// ========================================
// WRITES
// ========================================

func (r *postgresRepository) Create(ctx context.Context, c *contact.Contact) error {
	const query = `
		INSERT INTO contacts (
			first_name, last_name, phone, email, description,
			show, picture, category_id, owner_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_date`

	err := r.pool.QueryRow(ctx, query,
		c.FirstName,
		c.LastName,
		c.Phone,
		c.Email,
		c.Description,
		c.Show,
		c.Picture,
		c.CategoryID,
		c.OwnerID,
	).Scan(&c.ID, &c.CreatedDate)
	if err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

// Update never writes created_date, owner_id or show.
func (r *postgresRepository) Update(ctx context.Context, c *contact.Contact) error {
	const query = `
		UPDATE contacts SET
			first_name = $2, last_name = $3, phone = $4, email = $5,
			description = $6, picture = $7, category_id = $8
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		c.ID,
		c.FirstName,
		c.LastName,
		c.Phone,
		c.Email,
		c.Description,
		c.Picture,
		c.CategoryID,
	)
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return contact.ErrContactNotFound
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return contact.ErrContactNotFound
	}
	return nil
}

// ========================================
// READS
// ========================================

func (r *postgresRepository) FindOwned(ctx context.Context, id int64, ownerID uuid.UUID) (*contact.Contact, error) {
	query := `SELECT ` + selectColumns + fromContacts + `
		WHERE c.id = $1 AND c.show = TRUE AND c.owner_id = $2`

	return r.findOne(ctx, query, id, ownerID)
}

func (r *postgresRepository) FindByID(ctx context.Context, id int64) (*contact.Contact, error) {
	query := `SELECT ` + selectColumns + fromContacts + ` WHERE c.id = $1`

	return r.findOne(ctx, query, id)
}

func (r *postgresRepository) findOne(ctx context.Context, query string, args ...any) (*contact.Contact, error) {
	c, err := scanContact(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, contact.ErrContactNotFound
		}
		return nil, fmt.Errorf("find contact: %w", err)
	}
	return c, nil
}

func (r *postgresRepository) ListOwned(ctx context.Context, f contact.ListFilter) ([]contact.Contact, int, error) {
	args := []any{f.OwnerID}
	clauses := []string{"c.owner_id = $1", "c.show = TRUE"}

	if f.Query != "" {
		args = append(args, utils.ContainsPattern(f.Query))
		p := "$" + strconv.Itoa(len(args))
		clauses = append(clauses, "("+utils.JoinWithOr([]string{
			"CAST(c.id AS TEXT) ILIKE " + p,
			"c.first_name ILIKE " + p,
			"c.last_name ILIKE " + p,
			"c.phone ILIKE " + p,
			"c.email ILIKE " + p,
		})+")")
	}

	return r.list(ctx, utils.JoinWithAnd(clauses), "c.id DESC", f.Limit, f.Offset, args)
}

func (r *postgresRepository) ListAll(ctx context.Context, f contact.AdminFilter) ([]contact.Contact, int, error) {
	var args []any
	where := "TRUE"

	if f.Query != "" {
		args = append(args, utils.ContainsPattern(f.Query))
		where = utils.JoinWithOr([]string{
			"CAST(c.id AS TEXT) ILIKE $1",
			"c.first_name ILIKE $1",
			"c.last_name ILIKE $1",
		})
	}

	col, ok := adminOrderColumns[f.OrderBy]
	if !ok {
		col = "c.id"
	}
	order := col + " ASC"
	if f.Desc {
		order = col + " DESC"
	}
	if col != "c.id" {
		order += ", c.id DESC"
	}

	return r.list(ctx, where, order, f.Limit, f.Offset, args)
}

// list runs one page query; the total comes from a window count over the same filter.
func (r *postgresRepository) list(ctx context.Context, where, order string, limit, offset int, args []any) ([]contact.Contact, int, error) {
	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s, COUNT(*) OVER() %s WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		selectColumns, fromContacts, where, order, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var (
		out   []contact.Contact
		total int
	)
	for rows.Next() {
		var c contact.Contact
		dest := append(contactDest(&c), &total)
		if err := rows.Scan(dest...); err != nil {
			return nil, 0, fmt.Errorf("scan contact: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate contacts: %w", err)
	}

	if len(out) == 0 && offset > 0 {
		// Past the last page: the window count is unavailable, ask directly.
		countQuery := `SELECT COUNT(*) ` + fromContacts + ` WHERE ` + where
		if err := r.pool.QueryRow(ctx, countQuery, args[:len(args)-2]...).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count contacts: %w", err)
		}
	}

	return out, total, nil
}

func contactDest(c *contact.Contact) []any {
	return []any{
		&c.ID,
		&c.FirstName,
		&c.LastName,
		&c.Phone,
		&c.Email,
		&c.Description,
		&c.CreatedDate,
		&c.Show,
		&c.Picture,
		&c.CategoryID,
		&c.OwnerID,
		&c.CategoryName,
	}
}

func scanContact(row pgx.Row) (*contact.Contact, error) {
	var c contact.Contact
	if err := row.Scan(contactDest(&c)...); err != nil {
		return nil, err
	}
	return &c, nil
}
