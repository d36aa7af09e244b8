package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/invoicedesk/invoicedesk/internal/platform/db"
	"github.com/invoicedesk/invoicedesk/internal/shared"
)

var (
	// ErrNotFound indicates the profile does not exist.
	ErrNotFound = fmt.Errorf("profile %w", shared.ErrNotFound)
	// ErrBankDetailNotFound indicates the bank detail does not exist.
	ErrBankDetailNotFound = fmt.Errorf("bank detail %w", shared.ErrNotFound)
	// ErrEmailTaken indicates another profile already uses the email.
	ErrEmailTaken = fmt.Errorf("profile email %w", shared.ErrDuplicate)
)

// Repository defines profile persistence.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	List(ctx context.Context) ([]Profile, error)
	Get(ctx context.Context, id int64) (*Profile, error)
	// First returns the oldest profile, or ErrNotFound when none exists.
	First(ctx context.Context) (*Profile, error)
	// EmailTaken reports whether a profile other than excludeID uses email.
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)
	Create(ctx context.Context, p Profile) (int64, error)
	Update(ctx context.Context, p Profile) error
	Delete(ctx context.Context, id int64) error
	CreateBankDetail(ctx context.Context, b BankDetail) (int64, error)
	UpdateBankDetail(ctx context.Context, b BankDetail) error
	DeleteBankDetail(ctx context.Context, id int64) error
	GetBankDetail(ctx context.Context, id int64) (*BankDetail, error)
}

type repository struct {
	db   db.DBTX
	pool *pgxpool.Pool
}

// NewRepository builds a pool-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const selectProfile = `
	SELECT id, logo, company_name, country, city, pin_code, COALESCE(default_currency, 'INR'), state,
	       address, email, phone, service_tax_no, website, taxation_type, contact_name, company_code,
	       created_at, updated_at
	FROM profiles`

func scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile
	err := row.Scan(&p.ID, &p.Logo, &p.CompanyName, &p.Country, &p.City, &p.PinCode, &p.DefaultCurrency, &p.State,
		&p.Address, &p.Email, &p.Phone, &p.ServiceTaxNo, &p.Website, &p.TaxationType, &p.ContactName, &p.CompanyCode,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) List(ctx context.Context) ([]Profile, error) {
	rows, err := r.db.Query(ctx, selectProfile+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	var out []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, *p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].BankDetails, err = r.bankDetails(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Profile, error) {
	return r.withBankDetails(ctx, r.db.QueryRow(ctx, selectProfile+` WHERE id = $1`, id))
}

func (r *repository) First(ctx context.Context) (*Profile, error) {
	return r.withBankDetails(ctx, r.db.QueryRow(ctx, selectProfile+` ORDER BY id LIMIT 1`))
}

func (r *repository) withBankDetails(ctx context.Context, row pgx.Row) (*Profile, error) {
	p, err := scanProfile(row)
	if err != nil {
		return nil, err
	}
	if p.BankDetails, err = r.bankDetails(ctx, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

const selectBankDetail = `
	SELECT id, profile_id, bank_name, branch_name, ad_code, upi_id, account_number, ifsc_code,
	       swift_code, account_holder_name, created_at, updated_at
	FROM bank_details`

func scanBankDetail(row pgx.Row) (*BankDetail, error) {
	var b BankDetail
	err := row.Scan(&b.ID, &b.ProfileID, &b.BankName, &b.BranchName, &b.ADCode, &b.UPIID, &b.AccountNumber,
		&b.IFSCCode, &b.SwiftCode, &b.AccountHolderName, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBankDetailNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *repository) bankDetails(ctx context.Context, profileID int64) ([]BankDetail, error) {
	rows, err := r.db.Query(ctx, selectBankDetail+` WHERE profile_id = $1 ORDER BY id`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []BankDetail{}
	for rows.Next() {
		b, err := scanBankDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (r *repository) GetBankDetail(ctx context.Context, id int64) (*BankDetail, error) {
	return scanBankDetail(r.db.QueryRow(ctx, selectBankDetail+` WHERE id = $1`, id))
}

func (r *repository) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	var taken bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM profiles WHERE lower(email) = lower($1) AND id <> $2)`,
		email, excludeID).Scan(&taken)
	return taken, err
}

func (r *repository) Create(ctx context.Context, p Profile) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO profiles (logo, company_name, country, city, pin_code, default_currency, state, address,
		                      email, phone, service_tax_no, website, taxation_type, contact_name, company_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id`,
		p.Logo, p.CompanyName, p.Country, p.City, p.PinCode, p.DefaultCurrency, p.State, p.Address,
		p.Email, p.Phone, p.ServiceTaxNo, p.Website, p.TaxationType, p.ContactName, p.CompanyCode,
	).Scan(&id)
	if db.IsUniqueViolation(err) {
		return 0, ErrEmailTaken
	}
	return id, err
}

func (r *repository) Update(ctx context.Context, p Profile) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE profiles SET
			logo = $2, company_name = $3, country = $4, city = $5, pin_code = $6, default_currency = $7,
			state = $8, address = $9, email = $10, phone = $11, service_tax_no = $12, website = $13,
			taxation_type = $14, contact_name = $15, company_code = $16, updated_at = NOW()
		WHERE id = $1`,
		p.ID, p.Logo, p.CompanyName, p.Country, p.City, p.PinCode, p.DefaultCurrency,
		p.State, p.Address, p.Email, p.Phone, p.ServiceTaxNo, p.Website,
		p.TaxationType, p.ContactName, p.CompanyCode,
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
	tag, err := r.db.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if db.IsForeignKeyViolation(err) {
		return fmt.Errorf("%w: profile is referenced by other records", shared.ErrConflict)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) CreateBankDetail(ctx context.Context, b BankDetail) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO bank_details (profile_id, bank_name, branch_name, ad_code, upi_id, account_number,
		                          ifsc_code, swift_code, account_holder_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		b.ProfileID, b.BankName, b.BranchName, b.ADCode, b.UPIID, b.AccountNumber,
		b.IFSCCode, b.SwiftCode, b.AccountHolderName,
	).Scan(&id)
	if db.IsForeignKeyViolation(err) {
		return 0, ErrNotFound
	}
	return id, err
}

func (r *repository) UpdateBankDetail(ctx context.Context, b BankDetail) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE bank_details SET
			bank_name = $2, branch_name = $3, ad_code = $4, upi_id = $5, account_number = $6,
			ifsc_code = $7, swift_code = $8, account_holder_name = $9, updated_at = NOW()
		WHERE id = $1`,
		b.ID, b.BankName, b.BranchName, b.ADCode, b.UPIID, b.AccountNumber,
		b.IFSCCode, b.SwiftCode, b.AccountHolderName,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBankDetailNotFound
	}
	return nil
}

func (r *repository) DeleteBankDetail(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM bank_details WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBankDetailNotFound
	}
	return nil
}
