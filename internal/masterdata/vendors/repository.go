package vendors

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

var (
	// ErrNotFound indicates the vendor does not exist.
	ErrNotFound = fmt.Errorf("vendor %w", shared.ErrNotFound)
	// ErrEmailTaken indicates another vendor uses the email.
	ErrEmailTaken = fmt.Errorf("vendor email %w", shared.ErrDuplicate)
)

// Repository defines vendor persistence.
type Repository interface {
	List(ctx context.Context, filters mdshared.ListFilters) ([]Vendor, error)
	Get(ctx context.Context, id int64) (*Vendor, error)
	FindByEmail(ctx context.Context, email string) (*Vendor, error)
	Create(ctx context.Context, v Vendor) (int64, error)
	Update(ctx context.Context, v Vendor) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db db.DBTX
}

// NewRepository builds a pool-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

// Bind returns a repository running on an existing transaction.
func Bind(tx pgx.Tx) Repository {
	return &repository{db: tx}
}

const selectVendor = `
	SELECT id, company_name, contact_name, phone, email, gst_treatment, gstin, pan, tin, vat, website,
	       billing_address, shipping_address, city, is_client, created_at, updated_at
	FROM vendors`

func scanVendor(row pgx.Row) (*Vendor, error) {
	var v Vendor
	err := row.Scan(&v.ID, &v.CompanyName, &v.ContactName, &v.Phone, &v.Email, &v.GSTTreatment, &v.GSTIN, &v.PAN,
		&v.TIN, &v.VAT, &v.Website, &v.BillingAddress, &v.ShippingAddress, &v.City, &v.IsClient,
		&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (r *repository) List(ctx context.Context, filters mdshared.ListFilters) ([]Vendor, error) {
	filters = filters.Normalize()
	rows, err := r.db.Query(ctx, selectVendor+`
		WHERE ($1 = '' OR company_name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%')
		ORDER BY company_name ASC, id ASC
		LIMIT $2 OFFSET $3`, filters.Search, filters.Limit, filters.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Vendor
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Vendor, error) {
	return scanVendor(r.db.QueryRow(ctx, selectVendor+` WHERE id = $1`, id))
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*Vendor, error) {
	return scanVendor(r.db.QueryRow(ctx, selectVendor+` WHERE lower(email) = lower($1)`, email))
}

func (r *repository) Create(ctx context.Context, v Vendor) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO vendors (company_name, contact_name, phone, email, gst_treatment, gstin, pan, tin, vat,
		                     website, billing_address, shipping_address, city, is_client)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`,
		v.CompanyName, v.ContactName, v.Phone, v.Email, v.GSTTreatment, v.GSTIN, v.PAN, v.TIN, v.VAT,
		v.Website, v.BillingAddress, v.ShippingAddress, v.City, v.IsClient,
	).Scan(&id)
	if db.IsUniqueViolation(err) {
		return 0, ErrEmailTaken
	}
	return id, err
}

func (r *repository) Update(ctx context.Context, v Vendor) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE vendors SET
			company_name = $2, contact_name = $3, phone = $4, email = $5, gst_treatment = $6, gstin = $7,
			pan = $8, tin = $9, vat = $10, website = $11, billing_address = $12, shipping_address = $13,
			city = $14, is_client = $15, updated_at = NOW()
		WHERE id = $1`,
		v.ID, v.CompanyName, v.ContactName, v.Phone, v.Email, v.GSTTreatment, v.GSTIN,
		v.PAN, v.TIN, v.VAT, v.Website, v.BillingAddress, v.ShippingAddress, v.City, v.IsClient,
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
	tag, err := r.db.Exec(ctx, `DELETE FROM vendors WHERE id = $1`, id)
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
