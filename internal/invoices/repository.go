package invoices

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/invoicedesk/invoicedesk/internal/numbering"
	"github.com/invoicedesk/invoicedesk/internal/platform/db"
	"github.com/invoicedesk/invoicedesk/internal/shared"
)

// ErrNotFound indicates the invoice does not exist.
var ErrNotFound = fmt.Errorf("invoice %w", shared.ErrNotFound)

// Repository defines invoice persistence.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	NumberStore() numbering.Store
	Get(ctx context.Context, id int64) (*Invoice, error)
	GetForUpdate(ctx context.Context, id int64) (*Invoice, error)
	List(ctx context.Context, filter ListFilter) ([]Invoice, error)
	Create(ctx context.Context, inv Invoice) (int64, error)
	InsertLine(ctx context.Context, line Line) (int64, error)
	Update(ctx context.Context, inv Invoice) error
	ApplyBalance(ctx context.Context, id int64, upd BalanceUpdate) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db   db.DBTX
	pool *pgxpool.Pool
}

// NewRepository builds a pool-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

// Bind returns a repository running on an existing transaction, so other
// packages can touch invoices inside their own unit of work. WithTx on the
// result is not supported.
func Bind(tx pgx.Tx) Repository {
	return &repository{db: tx}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	if r.pool == nil {
		return errors.New("invoices: nested transaction not supported")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

func (r *repository) NumberStore() numbering.Store {
	return numbering.NewPGStore(r.db)
}

const selectInvoice = `
	SELECT id, client_id, number, po_no, invoice_date, po_date, due_date, payment_terms,
	       shipping_charges, subtotal, tax, amount, balance, dr_cr, terms_conditions,
	       status, payment_date, created_at, updated_at
	FROM invoices`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(
		&inv.ID, &inv.ClientID, &inv.Number, &inv.PONo, &inv.InvoiceDate, &inv.PODate, &inv.DueDate, &inv.PaymentTerms,
		&inv.ShippingCharges, &inv.Subtotal, &inv.Tax, &inv.Amount, &inv.Balance, &inv.DrCr, &inv.TermsConditions,
		&inv.Status, &inv.PaymentDate, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Invoice, error) {
	inv, err := scanInvoice(r.db.QueryRow(ctx, selectInvoice+` WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	inv.Lines, err = r.lines(ctx, id)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// GetForUpdate locks the invoice row until the transaction ends.
func (r *repository) GetForUpdate(ctx context.Context, id int64) (*Invoice, error) {
	return scanInvoice(r.db.QueryRow(ctx, selectInvoice+` WHERE id = $1 FOR UPDATE`, id))
}

func (r *repository) lines(ctx context.Context, invoiceID int64) ([]Line, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, document_id, item_id, unit, quantity, price, discount_percent, total, description
		FROM invoice_items WHERE document_id = $1 ORDER BY id`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.ItemID, &l.Unit, &l.Quantity, &l.Price, &l.DiscountPercent, &l.Total, &l.Description); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Invoice, error) {
	query := selectInvoice + ` WHERE 1=1`
	var args []any
	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		query += fmt.Sprintf(" AND client_id = $%d", len(args))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY invoice_date DESC, id DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, inv Invoice) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO invoices (
			client_id, number, po_no, invoice_date, po_date, due_date, payment_terms,
			shipping_charges, subtotal, tax, amount, balance, dr_cr, terms_conditions,
			status, payment_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id`,
		inv.ClientID, inv.Number, inv.PONo, inv.InvoiceDate, inv.PODate, inv.DueDate, inv.PaymentTerms,
		inv.ShippingCharges, inv.Subtotal, inv.Tax, inv.Amount, inv.Balance, inv.DrCr, inv.TermsConditions,
		string(inv.Status), inv.PaymentDate,
	).Scan(&id)
	if err != nil {
		return 0, translateWriteErr(err, inv.Number)
	}
	return id, nil
}

func (r *repository) InsertLine(ctx context.Context, line Line) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO invoice_items (document_id, item_id, unit, quantity, price, discount_percent, total, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		line.InvoiceID, line.ItemID, line.Unit, line.Quantity, line.Price, line.DiscountPercent, line.Total, line.Description,
	).Scan(&id)
	if db.IsForeignKeyViolation(err) {
		return 0, db.ForeignKeyError(err, "invoice_items")
	}
	return id, err
}

func (r *repository) Update(ctx context.Context, inv Invoice) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE invoices SET
			number = $2, po_no = $3, invoice_date = $4, po_date = $5, due_date = $6, payment_terms = $7,
			shipping_charges = $8, subtotal = $9, tax = $10, amount = $11, balance = $12, dr_cr = $13,
			terms_conditions = $14, status = $15, payment_date = $16, updated_at = NOW()
		WHERE id = $1`,
		inv.ID, inv.Number, inv.PONo, inv.InvoiceDate, inv.PODate, inv.DueDate, inv.PaymentTerms,
		inv.ShippingCharges, inv.Subtotal, inv.Tax, inv.Amount, inv.Balance, inv.DrCr,
		inv.TermsConditions, string(inv.Status), inv.PaymentDate,
	)
	if err != nil {
		return translateWriteErr(err, inv.Number)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ApplyBalance writes the reconciled balance and status. PaymentDate is only
// overwritten when set.
func (r *repository) ApplyBalance(ctx context.Context, id int64, upd BalanceUpdate) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE invoices SET
			balance = $2, status = $3, payment_date = COALESCE($4, payment_date), updated_at = NOW()
		WHERE id = $1`,
		id, upd.Balance, string(upd.Status), upd.PaymentDate,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
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
		return &numbering.DuplicateNumberError{Table: numbering.TableInvoices, Number: number}
	}
	if db.IsForeignKeyViolation(err) {
		return db.ForeignKeyError(err, "invoices")
	}
	return err
}
