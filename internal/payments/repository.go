package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/invoicedesk/invoicedesk/internal/invoices"
	"github.com/invoicedesk/invoicedesk/internal/numbering"
	"github.com/invoicedesk/invoicedesk/internal/platform/db"
	"github.com/invoicedesk/invoicedesk/internal/reconcile"
	"github.com/invoicedesk/invoicedesk/internal/shared"
)

// ErrNotFound indicates the payment does not exist.
var ErrNotFound = fmt.Errorf("payment %w", shared.ErrNotFound)

// Repository defines payment persistence. Inside WithTx, Invoices and
// NumberStore share the payment transaction.
type Repository interface {
	DetailRepository
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	NumberStore() numbering.Store
	Invoices() reconcile.InvoiceStore
	Get(ctx context.Context, id int64) (*Payment, error)
	GetForUpdate(ctx context.Context, id int64) (*Payment, error)
	List(ctx context.Context, filter ListFilter) ([]Payment, error)
	Totals(ctx context.Context) (Totals, error)
	Create(ctx context.Context, p Payment) (int64, error)
	Update(ctx context.Context, p Payment) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db       db.DBTX
	pool     *pgxpool.Pool
	invoices reconcile.InvoiceStore
}

// NewRepository builds a pool-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool, invoices: invoices.NewRepository(pool)}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool, invoices: invoices.Bind(tx)})
	})
}

func (r *repository) NumberStore() numbering.Store {
	return numbering.NewPGStore(r.db)
}

func (r *repository) Invoices() reconcile.InvoiceStore {
	return r.invoices
}

const selectPayment = `
	SELECT id, number, date, type, account_name, document_method, amount, available_credit,
	       invoice_id, client_id, reference, created_at, updated_at
	FROM payments`

func scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.Number, &p.Date, &p.Type, &p.AccountName, &p.DocumentMethod, &p.Amount,
		&p.AvailableCredit, &p.InvoiceID, &p.ClientID, &p.Reference, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Payment, error) {
	return scanPayment(r.db.QueryRow(ctx, selectPayment+` WHERE id = $1`, id))
}

func (r *repository) GetForUpdate(ctx context.Context, id int64) (*Payment, error) {
	return scanPayment(r.db.QueryRow(ctx, selectPayment+` WHERE id = $1 FOR UPDATE`, id))
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Payment, error) {
	query := selectPayment + ` WHERE 1=1`
	var args []any
	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(" AND date <= $%d", len(args))
	}
	if filter.InvoiceID != nil {
		args = append(args, *filter.InvoiceID)
		query += fmt.Sprintf(" AND invoice_id = $%d", len(args))
	}
	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		query += fmt.Sprintf(" AND client_id = $%d", len(args))
	}
	query += " ORDER BY date DESC, id DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *repository) Totals(ctx context.Context) (Totals, error) {
	var t Totals
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0), COALESCE(SUM(available_credit), 0), COUNT(*)
		FROM payments`).Scan(&t.TotalAmount, &t.TotalCredit, &t.TotalCount)
	return t, err
}

func (r *repository) Create(ctx context.Context, p Payment) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO payments (number, date, type, account_name, document_method, amount,
		                      available_credit, invoice_id, client_id, reference)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		p.Number, p.Date, p.Type, p.AccountName, p.DocumentMethod, p.Amount,
		p.AvailableCredit, p.InvoiceID, p.ClientID, p.Reference,
	).Scan(&id)
	if err != nil {
		return 0, translateWriteErr(err, p.Number)
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, p Payment) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE payments SET
			number = $2, date = $3, type = $4, account_name = $5, document_method = $6,
			amount = $7, available_credit = $8, invoice_id = $9, reference = $10, updated_at = NOW()
		WHERE id = $1`,
		p.ID, p.Number, p.Date, p.Type, p.AccountName, p.DocumentMethod,
		p.Amount, p.AvailableCredit, p.InvoiceID, p.Reference,
	)
	if err != nil {
		return translateWriteErr(err, p.Number)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func translateWriteErr(err error, number string) error {
	if db.IsUniqueViolation(err) {
		return &numbering.DuplicateNumberError{Table: numbering.TablePayments, Number: number}
	}
	if db.IsForeignKeyViolation(err) {
		return db.ForeignKeyError(err, "payments")
	}
	return err
}
