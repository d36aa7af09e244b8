package contacts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	mdshared "github.com/invoicedesk/invoicedesk/internal/masterdata/shared"
	"github.com/invoicedesk/invoicedesk/internal/platform/db"
	"github.com/invoicedesk/invoicedesk/internal/shared"
)

// ErrNotFound indicates the contact does not exist.
var ErrNotFound = fmt.Errorf("contact %w", shared.ErrNotFound)

// Repository defines contact persistence for one Owner. A nil partyID lists
// the contacts of every party.
type Repository interface {
	List(ctx context.Context, partyID *int64, filters mdshared.ListFilters) ([]Contact, error)
	Get(ctx context.Context, id int64) (*Contact, error)
	Create(ctx context.Context, c Contact) (int64, error)
	Update(ctx context.Context, c Contact) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db    db.DBTX
	owner Owner
}

// NewRepository builds a pool-backed repository over the owner's table.
func NewRepository(pool *pgxpool.Pool, owner Owner) Repository {
	return &repository{db: pool, owner: owner}
}

func (r *repository) selectContact() string {
	return fmt.Sprintf(`
	SELECT c.id, c.%[2]s, p.company_name, c.name, c.phone, c.email, c.created_at, c.updated_at
	FROM %[1]s c
	JOIN %[3]s p ON p.id = c.%[2]s`, r.owner.Table, r.owner.Column, r.owner.Parent)
}

func scanContact(row pgx.Row) (*Contact, error) {
	var c Contact
	err := row.Scan(&c.ID, &c.PartyID, &c.PartyName, &c.Name, &c.Phone, &c.Email, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) List(ctx context.Context, partyID *int64, filters mdshared.ListFilters) ([]Contact, error) {
	filters = filters.Normalize()
	rows, err := r.db.Query(ctx, r.selectContact()+fmt.Sprintf(`
		WHERE ($1::bigint IS NULL OR c.%s = $1)
		  AND ($2 = '' OR c.name ILIKE '%%' || $2 || '%%' OR c.email ILIKE '%%' || $2 || '%%')
		ORDER BY c.name ASC, c.id ASC
		LIMIT $3 OFFSET $4`, r.owner.Column), partyID, filters.Search, filters.Limit, filters.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Contact, error) {
	return scanContact(r.db.QueryRow(ctx, r.selectContact()+` WHERE c.id = $1`, id))
}

func (r *repository) Create(ctx context.Context, c Contact) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO %s (%s, name, phone, email)
		VALUES ($1, $2, $3, $4)
		RETURNING id`, r.owner.Table, r.owner.Column),
		c.PartyID, c.Name, c.Phone, c.Email,
	).Scan(&id)
	if db.IsForeignKeyViolation(err) {
		return 0, db.ForeignKeyError(err, r.owner.Table)
	}
	return id, err
}

func (r *repository) Update(ctx context.Context, c Contact) error {
	tag, err := r.db.Exec(ctx, fmt.Sprintf(`
		UPDATE %s SET %s = $2, name = $3, phone = $4, email = $5, updated_at = NOW()
		WHERE id = $1`, r.owner.Table, r.owner.Column),
		c.ID, c.PartyID, c.Name, c.Phone, c.Email,
	)
	if db.IsForeignKeyViolation(err) {
		return db.ForeignKeyError(err, r.owner.Table)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.owner.Table), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
