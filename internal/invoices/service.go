package invoices

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/invoicedesk/invoicedesk/internal/numbering"
	"github.com/invoicedesk/invoicedesk/internal/shared"
)

// Service implements invoice use cases.
type Service struct {
	repo     Repository
	resolver *numbering.Resolver
	company  numbering.ConfigSource
	logger   *slog.Logger
}

// NewService wires the invoice service.
func NewService(repo Repository, resolver *numbering.Resolver, company numbering.ConfigSource, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, resolver: resolver, company: company, logger: logger}
}

// Create persists an invoice and its lines. The number is generated in the
// same transaction as the insert unless the caller supplied one.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Invoice, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	inv := Invoice{
		ClientID:        req.ClientID,
		Number:          strings.TrimSpace(req.Number),
		PONo:            req.PONo,
		InvoiceDate:     req.InvoiceDate,
		PODate:          req.PODate,
		DueDate:         req.DueDate,
		PaymentTerms:    req.PaymentTerms,
		ShippingCharges: req.ShippingCharges,
		Subtotal:        req.Subtotal,
		Tax:             req.Tax,
		Amount:          req.Amount,
		Balance:         req.Amount,
		DrCr:            req.DrCr,
		TermsConditions: req.TermsConditions,
		Status:          req.Status,
	}
	if req.Balance != nil {
		inv.Balance = *req.Balance
	}
	if inv.Status == "" {
		inv.Status = StatusDraft
	}

	var cfg *numbering.CompanyConfig
	if inv.Number == "" {
		var err error
		if cfg, err = s.company.CompanyConfig(ctx); err != nil {
			return nil, fmt.Errorf("load company config: %w", err)
		}
	}

	var id int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if inv.Number == "" {
			number, err := s.resolver.Next(ctx, repo.NumberStore(), cfg, numbering.TypeInvoice, inv.InvoiceDate)
			if err != nil {
				return err
			}
			inv.Number = number
		} else if err := s.resolver.Claim(ctx, repo.NumberStore(), numbering.TypeInvoice, inv.Number); err != nil {
			return err
		}

		var err error
		if id, err = repo.Create(ctx, inv); err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		for _, lr := range req.Items {
			line := Line{
				InvoiceID:       id,
				ItemID:          lr.ItemID,
				Unit:            lr.Unit,
				Quantity:        lr.Quantity,
				Price:           lr.Price,
				DiscountPercent: lr.DiscountPercent,
				Total:           lr.Total,
				Description:     lr.Description,
			}
			if _, err := repo.InsertLine(ctx, line); err != nil {
				return fmt.Errorf("insert invoice line: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invoice created", slog.Int64("id", id), slog.String("number", inv.Number))
	return s.repo.Get(ctx, id)
}

// Get returns one invoice with its lines.
func (s *Service) Get(ctx context.Context, id int64) (*Invoice, error) {
	return s.repo.Get(ctx, id)
}

// List returns invoices newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Invoice, error) {
	return s.repo.List(ctx, filter)
}

// Update changes header fields. A changed number is checked for uniqueness.
func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (*Invoice, error) {
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		inv, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if req.Number != nil && strings.TrimSpace(*req.Number) != inv.Number {
			number := strings.TrimSpace(*req.Number)
			if err := s.resolver.Claim(ctx, repo.NumberStore(), numbering.TypeInvoice, number); err != nil {
				return err
			}
			inv.Number = number
		}
		applyUpdate(inv, req)
		if err := validateInvoice(*inv); err != nil {
			return err
		}
		return repo.Update(ctx, *inv)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Delete removes an invoice. Linked payments keep their invoice id; later
// changes to them skip reconciliation for the missing invoice.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func applyUpdate(inv *Invoice, req UpdateRequest) {
	if req.PONo != nil {
		inv.PONo = req.PONo
	}
	if req.InvoiceDate != nil {
		inv.InvoiceDate = *req.InvoiceDate
	}
	if req.PODate != nil {
		inv.PODate = req.PODate
	}
	if req.DueDate != nil {
		inv.DueDate = *req.DueDate
	}
	if req.PaymentTerms != nil {
		inv.PaymentTerms = req.PaymentTerms
	}
	if req.ShippingCharges != nil {
		inv.ShippingCharges = *req.ShippingCharges
	}
	if req.Subtotal != nil {
		inv.Subtotal = *req.Subtotal
	}
	if req.Tax != nil {
		inv.Tax = *req.Tax
	}
	if req.Amount != nil {
		inv.Amount = *req.Amount
	}
	if req.Balance != nil {
		inv.Balance = *req.Balance
	}
	if req.DrCr != nil {
		inv.DrCr = req.DrCr
	}
	if req.TermsConditions != nil {
		inv.TermsConditions = req.TermsConditions
	}
	if req.Status != nil {
		inv.Status = *req.Status
	}
	if req.PaymentDate != nil {
		inv.PaymentDate = req.PaymentDate
	}
}

func validateCreate(req CreateRequest) error {
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: invoice must have at least one item", shared.ErrValidation)
	}
	for i, l := range req.Items {
		if !l.Quantity.IsPositive() {
			return fmt.Errorf("%w: items[%d].quantity must be greater than 0", shared.ErrValidation, i)
		}
		if l.Price.IsNegative() || l.Total.IsNegative() || l.DiscountPercent.IsNegative() || l.DiscountPercent.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("%w: items[%d] has an out of range amount", shared.ErrValidation, i)
		}
	}
	return validateInvoice(Invoice{
		InvoiceDate:     req.InvoiceDate,
		DueDate:         req.DueDate,
		ShippingCharges: req.ShippingCharges,
		Subtotal:        req.Subtotal,
		Tax:             req.Tax,
		Amount:          req.Amount,
		Status:          statusOrDraft(req.Status),
	})
}

func validateInvoice(inv Invoice) error {
	switch {
	case !inv.Amount.IsPositive():
		return fmt.Errorf("%w: invoice amount must be greater than 0", shared.ErrValidation)
	case inv.ShippingCharges.IsNegative() || inv.Subtotal.IsNegative() || inv.Tax.IsNegative():
		return fmt.Errorf("%w: charges, subtotal and tax cannot be negative", shared.ErrValidation)
	case inv.InvoiceDate.IsZero() || inv.DueDate.IsZero():
		return fmt.Errorf("%w: invoice date and due date are required", shared.ErrValidation)
	case !inv.Status.Valid():
		return fmt.Errorf("%w: unknown status %q", shared.ErrValidation, inv.Status)
	}
	return nil
}

func statusOrDraft(s Status) Status {
	if s == "" {
		return StatusDraft
	}
	return s
}
