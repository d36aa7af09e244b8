package documents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/invoicedesk/invoicedesk/internal/numbering"
	"github.com/invoicedesk/invoicedesk/internal/shared"
)

// Service implements the shared document use cases. Every method takes the
// Kind it operates on.
type Service struct {
	repo     Repository
	resolver *numbering.Resolver
	company  numbering.ConfigSource
	logger   *slog.Logger
}

// NewService wires the document service.
func NewService(repo Repository, resolver *numbering.Resolver, company numbering.ConfigSource, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, resolver: resolver, company: company, logger: logger}
}

// Create persists a document and its lines. Without an explicit number one is
// generated from the document date inside the insert transaction.
func (s *Service) Create(ctx context.Context, k Kind, req CreateRequest) (*Document, error) {
	doc := Document{
		Number:       strings.TrimSpace(req.Number),
		ClientID:     req.ClientID,
		VendorID:     req.VendorID,
		InvoiceID:    req.InvoiceID,
		DocumentDate: req.DocumentDate,
		ValidUntil:   req.ValidUntil,
		PONumber:     req.PONumber,
		Subtotal:     req.Subtotal,
		Amount:       req.Amount,
		Description:  req.Description,
	}
	if err := validateDocument(k, doc); err != nil {
		return nil, err
	}
	if err := validateLines(k, req.Items); err != nil {
		return nil, err
	}

	var cfg *numbering.CompanyConfig
	if doc.Number == "" {
		var err error
		if cfg, err = s.company.CompanyConfig(ctx); err != nil {
			return nil, fmt.Errorf("load company config: %w", err)
		}
	}

	var id int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if doc.Number == "" {
			number, err := s.resolver.Next(ctx, repo.NumberStore(), cfg, k.Type, doc.DocumentDate)
			if err != nil {
				return err
			}
			doc.Number = number
		} else if err := s.resolver.Claim(ctx, repo.NumberStore(), k.Type, doc.Number); err != nil {
			return err
		}

		var err error
		if id, err = repo.Create(ctx, k, doc); err != nil {
			return fmt.Errorf("create %s: %w", k.Name, err)
		}
		return insertLines(ctx, repo, k, id, req.Items)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(k.Name+" created", slog.Int64("id", id), slog.String("number", doc.Number))
	return s.repo.Get(ctx, k, id)
}

func (s *Service) Get(ctx context.Context, k Kind, id int64) (*Document, error) {
	return s.repo.Get(ctx, k, id)
}

func (s *Service) List(ctx context.Context, k Kind, filter ListFilter) ([]Document, error) {
	return s.repo.List(ctx, k, filter)
}

// ListByParty returns the documents addressed to one client or vendor.
func (s *Service) ListByParty(ctx context.Context, k Kind, partyID int64) ([]Document, error) {
	return s.repo.List(ctx, k, ListFilter{PartyID: &partyID})
}

// ListByInvoice returns the documents linked to one invoice.
func (s *Service) ListByInvoice(ctx context.Context, k Kind, invoiceID int64) ([]Document, error) {
	return s.repo.List(ctx, k, ListFilter{InvoiceID: &invoiceID})
}

func (s *Service) Totals(ctx context.Context, k Kind, filter ListFilter) (Totals, error) {
	return s.repo.Totals(ctx, k, filter)
}

// Update changes header fields and optionally replaces the lines. A changed
// number is checked for uniqueness first.
func (s *Service) Update(ctx context.Context, k Kind, id int64, req UpdateRequest) (*Document, error) {
	if req.Items != nil {
		if err := validateLines(k, *req.Items); err != nil {
			return nil, err
		}
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		doc, err := repo.GetForUpdate(ctx, k, id)
		if err != nil {
			return err
		}
		if req.Number != nil && strings.TrimSpace(*req.Number) != doc.Number {
			number := strings.TrimSpace(*req.Number)
			if err := s.resolver.Claim(ctx, repo.NumberStore(), k.Type, number); err != nil {
				return err
			}
			doc.Number = number
		}
		applyUpdate(doc, req)
		if err := validateDocument(k, *doc); err != nil {
			return err
		}
		if err := repo.Update(ctx, k, *doc); err != nil {
			return err
		}
		if req.Items == nil || !k.HasLines() {
			return nil
		}
		if err := repo.DeleteLines(ctx, k, id); err != nil {
			return err
		}
		return insertLines(ctx, repo, k, id, *req.Items)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, k, id)
}

func (s *Service) Delete(ctx context.Context, k Kind, id int64) error {
	if err := s.repo.Delete(ctx, k, id); err != nil {
		return err
	}
	s.logger.Info(k.Name+" deleted", slog.Int64("id", id))
	return nil
}

func insertLines(ctx context.Context, repo Repository, k Kind, documentID int64, items []LineRequest) error {
	for _, lr := range items {
		if _, err := repo.InsertLine(ctx, k, lr.toLine(documentID)); err != nil {
			return fmt.Errorf("insert %s line: %w", k.Name, err)
		}
	}
	return nil
}

func applyUpdate(doc *Document, req UpdateRequest) {
	if req.ClientID != nil {
		doc.ClientID = req.ClientID
	}
	if req.VendorID != nil {
		doc.VendorID = req.VendorID
	}
	if req.InvoiceID != nil {
		doc.InvoiceID = req.InvoiceID
	}
	if req.DocumentDate != nil {
		doc.DocumentDate = *req.DocumentDate
	}
	if req.ValidUntil != nil {
		doc.ValidUntil = req.ValidUntil
	}
	if req.PONumber != nil {
		doc.PONumber = req.PONumber
	}
	if req.Subtotal != nil {
		doc.Subtotal = *req.Subtotal
	}
	if req.Amount != nil {
		doc.Amount = *req.Amount
	}
	if req.Description != nil {
		doc.Description = req.Description
	}
}

func validateDocument(k Kind, doc Document) error {
	switch {
	case doc.partyID(k) == nil:
		return fmt.Errorf("%w: %s requires a %s", shared.ErrValidation, k.Name, k.Party)
	case doc.DocumentDate.IsZero():
		return fmt.Errorf("%w: document date is required", shared.ErrValidation)
	case doc.ValidUntil != nil && doc.ValidUntil.Before(doc.DocumentDate):
		return fmt.Errorf("%w: valid until precedes the document date", shared.ErrValidation)
	case doc.Subtotal.IsNegative() || doc.Amount.IsNegative():
		return fmt.Errorf("%w: subtotal and amount cannot be negative", shared.ErrValidation)
	}
	return nil
}

func validateLines(k Kind, items []LineRequest) error {
	if len(items) > 0 && !k.HasLines() {
		return fmt.Errorf("%w: %s does not take line items", shared.ErrValidation, k.Name)
	}
	for i, l := range items {
		if !l.Quantity.IsPositive() {
			return fmt.Errorf("%w: items[%d].quantity must be greater than 0", shared.ErrValidation, i)
		}
		if l.Price.IsNegative() || l.Total.IsNegative() || l.DiscountPercent.IsNegative() || l.DiscountPercent.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("%w: items[%d] has an out of range amount", shared.ErrValidation, i)
		}
	}
	return nil
}
