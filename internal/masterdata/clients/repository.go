package clients

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	mdshared "github.com/invoicedesk/invoicedesk/internal/masterdata/shared"
	"github.com/invoicedesk/invoicedesk/internal/masterdata/vendors"
	"github.com/invoicedesk/invoicedesk/internal/platform/db"
	"github.com/invoicedesk/invoicedesk/internal/shared"
)

var (
	// ErrNotFound indicates the client does not exist.
	ErrNotFound = fmt.Errorf("client %w", shared.ErrNotFound)
	// ErrEmailTaken indicates another client uses the email.
	ErrEmailTaken = fmt.Errorf("client email %w", shared.ErrDuplicate)
)

// Repository defines client persistence. Vendors shares the transaction.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Vendors() vendors.Repository
	List(ctx context.Context, filters mdshared.ListFilters) ([]Client, error)
	Get(ctx context.Context, id int64) (*Client, error)
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)
	Create(ctx context.Context, c Client) (int64, error)
	Update(ctx context.Context, c Client) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db      db.DBTX
	pool    *pgxpool.Pool
	vendors vendors.Repository
}

// NewRepository builds a pool-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool, vendors: vendors.NewRepository(pool)}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool, vendors: vendors.Bind(tx)})
	})
}

func (r *repository) Vendors() vendors.Repository {
	return r.vendors
}

const selectClient = `
	SELECT id, company_name, contact_name, phone, email, gst_treatment, gstin, pan, tin, vat, website,
	       billing_address, city, opening_balance, is_vendor, created_at, updated_at
	FROM clients`

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.CompanyName, &c.ContactName, &c.Phone, &c.Email, &c.GSTTreatment, &c.GSTIN, &c.PAN,
		&c.TIN, &c.VAT, &c.Website, &c.BillingAddress, &c.City, &c.OpeningBalance, &c.IsVendor,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) List(ctx context.Context, filters mdshared.ListFilters) ([]Client, error) {
	filters = filters.Normalize()
	rows, err := r.db.Query(ctx, selectClient+`
		WHERE ($1 = '' OR company_name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%')
		ORDER BY company_name ASC, id ASC
		LIMIT $2 OFFSET $3`, filters.Search, filters.Limit, filters.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Client, error) {
	return scanClient(r.db.QueryRow(ctx, selectClient+` WHERE id = $1`, id))
}

func (r *repository) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	var taken bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM clients WHERE lower(email) = lower($1) AND id <> $2)`,
		email, excludeID).Scan(&taken)
	return taken, err
}

func (r *repository) Create(ctx context.Context, c Client) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO clients (company_name, contact_name, phone, email, gst_treatment, gstin, pan, tin, vat,
		                     website, billing_address, city, opening_balance, is_vendor)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`,
		c.CompanyName, c.ContactName, c.Phone, c.Email, c.GSTTreatment, c.GSTIN, c.PAN, c.TIN, c.VAT,
		c.Website, c.BillingAddress, c.City, c.OpeningBalance, c.IsVendor,
	).Scan(&id)
	if db.IsUniqueViolation(err) {
		return 0, ErrEmailTaken
	}
	return id, err
}

func (r *repository) Update(ctx context.Context, c Client) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE clients SET
			company_name = $2, contact_name = $3, phone = $4, email = $5, gst_treatment = $6, gstin = $7,
			pan = $8, tin = $9, vat = $10, website = $11, billing_address = $12, city = $13,
			opening_balance = $14, is_vendor = $15, updated_at = NOW()
		WHERE id = $1`,
		c.ID, c.CompanyName, c.ContactName, c.Phone, c.Email, c.GSTTreatment, c.GSTIN,
		c.PAN, c.TIN, c.VAT, c.Website, c.BillingAddress, c.City, c.OpeningBalance, c.IsVendor,
	)
	if db.IsUniqueViolation(err) {
		return ErrEmailTaken
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
	tag, err := r.db.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if db.IsForeignKeyViolation(err) {
		return mdshared.ErrInUse
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
