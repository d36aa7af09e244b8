package items

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
	// ErrNotFound indicates the item does not exist.
	ErrNotFound = fmt.Errorf("item %w", shared.ErrNotFound)
	// ErrSKUTaken indicates another item uses the SKU.
	ErrSKUTaken = fmt.Errorf("item sku %w", shared.ErrDuplicate)
)

// Repository defines item persistence.
type Repository interface {
	List(ctx context.Context, filters mdshared.ListFilters) ([]Item, error)
	Get(ctx context.Context, id int64) (*Item, error)
	Create(ctx context.Context, it Item) (int64, error)
	Update(ctx context.Context, it Item) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db db.DBTX
}

// NewRepository builds a pool-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const selectItem = `
	SELECT id, name, description, sku, type, unit, opening_quantity, tax, code,
	       sales_unit_price, sales_currency, sales_cess_percentage, sales_cess,
	       purchase_unit_price, purchase_currency, purchase_cess_percentage, purchase_cess,
	       created_at, updated_at
	FROM items`

func scanItem(row pgx.Row) (*Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.Name, &it.Description, &it.SKU, &it.Type, &it.Unit, &it.OpeningQuantity, &it.Tax,
		&it.Code, &it.SalesUnitPrice, &it.SalesCurrency, &it.SalesCessPercentage, &it.SalesCess,
		&it.PurchaseUnitPrice, &it.PurchaseCurrency, &it.PurchaseCessPercentage, &it.PurchaseCess,
		&it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &it, nil
}

func (r *repository) List(ctx context.Context, filters mdshared.ListFilters) ([]Item, error) {
	filters = filters.Normalize()
	rows, err := r.db.Query(ctx, selectItem+`
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR sku ILIKE '%' || $1 || '%')
		ORDER BY name ASC, id ASC
		LIMIT $2 OFFSET $3`, filters.Search, filters.Limit, filters.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Item, error) {
	return scanItem(r.db.QueryRow(ctx, selectItem+` WHERE id = $1`, id))
}

func (r *repository) Create(ctx context.Context, it Item) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO items (name, description, sku, type, unit, opening_quantity, tax, code,
		                   sales_unit_price, sales_currency, sales_cess_percentage, sales_cess,
		                   purchase_unit_price, purchase_currency, purchase_cess_percentage, purchase_cess)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id`,
		it.Name, it.Description, it.SKU, it.Type, it.Unit, it.OpeningQuantity, it.Tax, it.Code,
		it.SalesUnitPrice, it.SalesCurrency, it.SalesCessPercentage, it.SalesCess,
		it.PurchaseUnitPrice, it.PurchaseCurrency, it.PurchaseCessPercentage, it.PurchaseCess,
	).Scan(&id)
	if db.IsUniqueViolation(err) {
		return 0, ErrSKUTaken
	}
	return id, err
}

func (r *repository) Update(ctx context.Context, it Item) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE items SET
			name = $2, description = $3, sku = $4, type = $5, unit = $6, opening_quantity = $7, tax = $8,
			code = $9, sales_unit_price = $10, sales_currency = $11, sales_cess_percentage = $12,
			sales_cess = $13, purchase_unit_price = $14, purchase_currency = $15,
			purchase_cess_percentage = $16, purchase_cess = $17, updated_at = NOW()
		WHERE id = $1`,
		it.ID, it.Name, it.Description, it.SKU, it.Type, it.Unit, it.OpeningQuantity, it.Tax,
		it.Code, it.SalesUnitPrice, it.SalesCurrency, it.SalesCessPercentage,
		it.SalesCess, it.PurchaseUnitPrice, it.PurchaseCurrency,
		it.PurchaseCessPercentage, it.PurchaseCess,
	)
	if db.IsUniqueViolation(err) {
		return ErrSKUTaken
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
	tag, err := r.db.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
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
