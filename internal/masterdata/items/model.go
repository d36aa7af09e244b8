package items

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item types.
const (
	TypeProduct = "PRODUCT"
	TypeService = "SERVICE"
)

// Item is a sellable or purchasable product or service.
type Item struct {
	ID                     int64           `json:"id"`
	Name                   string          `json:"name"`
	Description            *string         `json:"description,omitempty"`
	SKU                    string          `json:"sku"`
	Type                   string          `json:"type"`
	Unit                   string          `json:"unit"`
	OpeningQuantity        decimal.Decimal `json:"opening_quantity"`
	Tax                    decimal.Decimal `json:"tax"`
	Code                   *string         `json:"code,omitempty"`
	SalesUnitPrice         decimal.Decimal `json:"sales_unit_price"`
	SalesCurrency          *string         `json:"sales_currency,omitempty"`
	SalesCessPercentage    decimal.Decimal `json:"sales_cess_percentage"`
	SalesCess              decimal.Decimal `json:"sales_cess"`
	PurchaseUnitPrice      decimal.Decimal `json:"purchase_unit_price"`
	PurchaseCurrency       *string         `json:"purchase_currency,omitempty"`
	PurchaseCessPercentage decimal.Decimal `json:"purchase_cess_percentage"`
	PurchaseCess           decimal.Decimal `json:"purchase_cess"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}

// Request creates or replaces an item.
type Request struct {
	Name                   string          `json:"name" validate:"required"`
	Description            *string         `json:"description,omitempty"`
	SKU                    string          `json:"sku" validate:"required"`
	Type                   string          `json:"type" validate:"required,oneof=PRODUCT SERVICE"`
	Unit                   string          `json:"unit" validate:"required"`
	OpeningQuantity        decimal.Decimal `json:"opening_quantity"`
	Tax                    decimal.Decimal `json:"tax"`
	Code                   *string         `json:"code,omitempty"`
	SalesUnitPrice         decimal.Decimal `json:"sales_unit_price"`
	SalesCurrency          *string         `json:"sales_currency,omitempty" validate:"omitempty,iso4217"`
	SalesCessPercentage    decimal.Decimal `json:"sales_cess_percentage"`
	SalesCess              decimal.Decimal `json:"sales_cess"`
	PurchaseUnitPrice      decimal.Decimal `json:"purchase_unit_price"`
	PurchaseCurrency       *string         `json:"purchase_currency,omitempty" validate:"omitempty,iso4217"`
	PurchaseCessPercentage decimal.Decimal `json:"purchase_cess_percentage"`
	PurchaseCess           decimal.Decimal `json:"purchase_cess"`
}

func (r Request) toItem() Item {
	return Item{
		Name:                   r.Name,
		Description:            r.Description,
		SKU:                    r.SKU,
		Type:                   r.Type,
		Unit:                   r.Unit,
		OpeningQuantity:        r.OpeningQuantity,
		Tax:                    r.Tax,
		Code:                   r.Code,
		SalesUnitPrice:         r.SalesUnitPrice,
		SalesCurrency:          r.SalesCurrency,
		SalesCessPercentage:    r.SalesCessPercentage,
		SalesCess:              r.SalesCess,
		PurchaseUnitPrice:      r.PurchaseUnitPrice,
		PurchaseCurrency:       r.PurchaseCurrency,
		PurchaseCessPercentage: r.PurchaseCessPercentage,
		PurchaseCess:           r.PurchaseCess,
	}
}
