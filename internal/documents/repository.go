package documents

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

// ErrNotFound indicates the document does not exist.
var ErrNotFound = fmt.Errorf("document %w", shared.ErrNotFound)

// Repository persists documents of any Kind.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	NumberStore() numbering.Store
	Get(ctx context.Context, k Kind, id int64) (*Document, error)
	GetForUpdate(ctx context.Context, k Kind, id int64) (*Document, error)
	List(ctx context.Context, k Kind, filter ListFilter) ([]Document, error)
	Totals(ctx context.Context, k Kind, filter ListFilter) (Totals, error)
	Create(ctx context.Context, k Kind, doc Document) (int64, error)
	Update(ctx context.Context, k Kind, doc Document) error
	Delete(ctx context.Context, k Kind, id int64) error
	InsertLine(ctx context.Context, k Kind, line Line) (int64, error)
	DeleteLines(ctx context.Context, k Kind, documentID int64) error
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

func (r *repository) NumberStore() numbering.Store {
	return numbering.NewPGStore(r.db)
}

func selectDocument(k Kind) string {
	return `
	SELECT id, number, client_id, vendor_id, invoice_id, document_date, valid_until, po_number,
	       subtotal, amount, description, created_at, updated_at
	FROM ` + string(k.Table)
}

func scanDocument(row pgx.Row) (*Document, error) {
	var d Document
	err := row.Scan(&d.ID, &d.Number, &d.ClientID, &d.VendorID, &d.InvoiceID, &d.DocumentDate, &d.ValidUntil,
		&d.PONumber, &d.Subtotal, &d.Amount, &d.Description, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *repository) Get(ctx context.Context, k Kind, id int64) (*Document, error) {
	d, err := scanDocument(r.db.QueryRow(ctx, selectDocument(k)+` WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if k.HasLines() {
		if d.Lines, err = r.lines(ctx, k, id); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// GetForUpdate locks the document row until the transaction ends.
func (r *repository) GetForUpdate(ctx context.Context, k Kind, id int64) (*Document, error) {
	return scanDocument(r.db.QueryRow(ctx, selectDocument(k)+` WHERE id = $1 FOR UPDATE`, id))
}

func (r *repository) lines(ctx context.Context, k Kind, documentID int64) ([]Line, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, document_id, item_id, unit, quantity, price, discount_percent, total, description
		FROM `+k.LineTable+` WHERE document_id = $1 ORDER BY id`, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.DocumentID, &l.ItemID, &l.Unit, &l.Quantity, &l.Price, &l.DiscountPercent, &l.Total, &l.Description); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func where(k Kind, filter ListFilter) (string, []any) {
	clause := ` WHERE 1=1`
	var args []any
	if filter.PartyID != nil {
		args = append(args, *filter.PartyID)
		clause += fmt.Sprintf(" AND %s = $%d", k.Party.column(), len(args))
	}
	if filter.InvoiceID != nil {
		args = append(args, *filter.InvoiceID)
		clause += fmt.Sprintf(" AND invoice_id = $%d", len(args))
	}
	return clause, args
}

func (r *repository) List(ctx context.Context, k Kind, filter ListFilter) ([]Document, error) {
	clause, args := where(k, filter)
	query := selectDocument(k) + clause + " ORDER BY document_date DESC, id DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (r *repository) Totals(ctx context.Context, k Kind, filter ListFilter) (Totals, error) {
	clause, args := where(k, filter)
	var t Totals
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0), COUNT(*) FROM `+string(k.Table)+clause, args...).
		Scan(&t.TotalAmount, &t.TotalCount)
	return t, err
}

func (r *repository) Create(ctx context.Context, k Kind, d Document) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO `+string(k.Table)+` (
			number, client_id, vendor_id, invoice_id, document_date, valid_until, po_number,
			subtotal, amount, description
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		d.Number, d.ClientID, d.VendorID, d.InvoiceID, d.DocumentDate, d.ValidUntil, d.PONumber,
		d.Subtotal, d.Amount, d.Description,
	).Scan(&id)
	if err != nil {
		return 0, translateWriteErr(err, k, d.Number)
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, k Kind, d Document) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE `+string(k.Table)+` SET
			number = $2, client_id = $3, vendor_id = $4, invoice_id = $5, document_date = $6,
			valid_until = $7, po_number = $8, subtotal = $9, amount = $10, description = $11,
			updated_at = NOW()
		WHERE id = $1`,
		d.ID, d.Number, d.ClientID, d.VendorID, d.InvoiceID, d.DocumentDate,
		d.ValidUntil, d.PONumber, d.Subtotal, d.Amount, d.Description,
	)
	if err != nil {
		return translateWriteErr(err, k, d.Number)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, k Kind, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM `+string(k.Table)+` WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) InsertLine(ctx context.Context, k Kind, line Line) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO `+k.LineTable+` (document_id, item_id, unit, quantity, price, discount_percent, total, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		line.DocumentID, line.ItemID, line.Unit, line.Quantity, line.Price, line.DiscountPercent, line.Total, line.Description,
	).Scan(&id)
	if db.IsForeignKeyViolation(err) {
		return 0, db.ForeignKeyError(err, k.LineTable)
	}
	return id, err
}

func (r *repository) DeleteLines(ctx context.Context, k Kind, documentID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM `+k.LineTable+` WHERE document_id = $1`, documentID)
	return err
}

func translateWriteErr(err error, k Kind, number string) error {
	if db.IsUniqueViolation(err) {
		return &numbering.DuplicateNumberError{Table: k.Table, Number: number}
	}
	if db.IsForeignKeyViolation(err) {
		return db.ForeignKeyError(err, string(k.Table))
	}
	return err
}
