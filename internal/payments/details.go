package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/invoicedesk/invoicedesk/internal/platform/db"
	"github.com/invoicedesk/invoicedesk/internal/shared"
)

// ErrDetailNotFound indicates the payment detail does not exist.
var ErrDetailNotFound = fmt.Errorf("payment detail %w", shared.ErrNotFound)

// Detail is one installment or bank leg recorded against a payment. Details
// are informational and never reconcile invoices.
type Detail struct {
	ID          int64            `json:"id"`
	PaymentID   int64            `json:"payment_id"`
	ClientID    int64            `json:"client_id"`
	Number      string           `json:"number"`
	Date        time.Time        `json:"date"`
	Amount      decimal.Decimal  `json:"amount"`
	Method      string           `json:"method"`
	BankCharges *decimal.Decimal `json:"bank_charges,omitempty"`
	Reference   *string          `json:"reference,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// DetailRequest records a detail under the payment named in the path.
type DetailRequest struct {
	ClientID    int64            `json:"client_id" validate:"required,gt=0"`
	Number      string           `json:"number" validate:"required,max=64"`
	Date        time.Time        `json:"date" validate:"required"`
	Amount      decimal.Decimal  `json:"amount"`
	Method      string           `json:"method" validate:"required,max=64"`
	BankCharges *decimal.Decimal `json:"bank_charges,omitempty"`
	Reference   *string          `json:"reference,omitempty"`
}

// DetailFilter narrows detail listings. Zero values are ignored.
type DetailFilter struct {
	PaymentID *int64
	ClientID  *int64
}

// DetailRepository persists payment details.
type DetailRepository interface {
	ListDetails(ctx context.Context, filter DetailFilter) ([]Detail, error)
	GetDetail(ctx context.Context, id int64) (*Detail, error)
	CreateDetail(ctx context.Context, d Detail) (int64, error)
	DeleteDetail(ctx context.Context, id int64) error
}

const selectDetail = `
	SELECT id, payment_id, client_id, number, date, amount, method, bank_charges, reference, created_at
	FROM payment_details`

func scanDetail(row pgx.Row) (*Detail, error) {
	var d Detail
	err := row.Scan(&d.ID, &d.PaymentID, &d.ClientID, &d.Number, &d.Date, &d.Amount, &d.Method,
		&d.BankCharges, &d.Reference, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDetailNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *repository) ListDetails(ctx context.Context, filter DetailFilter) ([]Detail, error) {
	rows, err := r.db.Query(ctx, selectDetail+`
		WHERE ($1::bigint IS NULL OR payment_id = $1)
		  AND ($2::bigint IS NULL OR client_id = $2)
		ORDER BY date DESC, id DESC`, filter.PaymentID, filter.ClientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Detail
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (r *repository) GetDetail(ctx context.Context, id int64) (*Detail, error) {
	return scanDetail(r.db.QueryRow(ctx, selectDetail+` WHERE id = $1`, id))
}

func (r *repository) CreateDetail(ctx context.Context, d Detail) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO payment_details (payment_id, client_id, number, date, amount, method, bank_charges, reference)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		d.PaymentID, d.ClientID, d.Number, d.Date, d.Amount, d.Method, d.BankCharges, d.Reference,
	).Scan(&id)
	if db.IsForeignKeyViolation(err) {
		return 0, db.ForeignKeyError(err, "payment_details")
	}
	return id, err
}

func (r *repository) DeleteDetail(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM payment_details WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDetailNotFound
	}
	return nil
}
