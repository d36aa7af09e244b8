package items

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	mdshared "github.com/invoicedesk/invoicedesk/internal/masterdata/shared"
	"github.com/invoicedesk/invoicedesk/internal/shared"
)

var hundred = decimal.NewFromInt(100)

// Service implements item use cases.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService wires the item service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(ctx context.Context, filters mdshared.ListFilters) ([]Item, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (*Item, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req Request) (*Item, error) {
	it := req.toItem()
	if err := validate(&it); err != nil {
		return nil, err
	}
	id, err := s.repo.Create(ctx, it)
	if err != nil {
		return nil, err
	}
	s.logger.Info("item created", slog.Int64("id", id), slog.String("sku", it.SKU))
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, req Request) (*Item, error) {
	it := req.toItem()
	it.ID = id
	if err := validate(&it); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, it); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// validate normalises the SKU and checks rates and prices.
func validate(it *Item) error {
	it.SKU = strings.ToUpper(strings.TrimSpace(it.SKU))
	if strings.TrimSpace(it.Name) == "" {
		return mdshared.RequiredField("name")
	}
	if it.SKU == "" {
		return mdshared.RequiredField("sku")
	}
	for name, pct := range map[string]decimal.Decimal{
		"tax":                      it.Tax,
		"sales_cess_percentage":    it.SalesCessPercentage,
		"purchase_cess_percentage": it.PurchaseCessPercentage,
	} {
		if pct.IsNegative() || pct.GreaterThan(hundred) {
			return fmt.Errorf("%w: %s must be between 0 and 100", shared.ErrValidation, name)
		}
	}
	for name, v := range map[string]decimal.Decimal{
		"opening_quantity":    it.OpeningQuantity,
		"sales_unit_price":    it.SalesUnitPrice,
		"purchase_unit_price": it.PurchaseUnitPrice,
		"sales_cess":          it.SalesCess,
		"purchase_cess":       it.PurchaseCess,
	} {
		if v.IsNegative() {
			return fmt.Errorf("%w: %s must not be negative", shared.ErrValidation, name)
		}
	}
	return nil
}
