package payments

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/invoicedesk/invoicedesk/internal/numbering"
	"github.com/invoicedesk/invoicedesk/internal/reconcile"
	"github.com/invoicedesk/invoicedesk/internal/shared"
	"github.com/invoicedesk/invoicedesk/jobs"
)

// ReceiptQueue schedules the receipt notification for a recorded payment.
type ReceiptQueue interface {
	EnqueuePaymentReceipt(ctx context.Context, payload jobs.PaymentReceiptPayload) error
}

// Service implements payment use cases. Every mutation reconciles the linked
// invoice in the same transaction.
type Service struct {
	repo       Repository
	resolver   *numbering.Resolver
	company    numbering.ConfigSource
	reconciler *reconcile.Reconciler
	receipts   ReceiptQueue
	logger     *slog.Logger
}

// NewService wires the payment service. receipts may be nil.
func NewService(repo Repository, resolver *numbering.Resolver, company numbering.ConfigSource, reconciler *reconcile.Reconciler, receipts ReceiptQueue, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, resolver: resolver, company: company, reconciler: reconciler, receipts: receipts, logger: logger}
}

// Create records a payment and reduces the linked invoice balance.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Payment, error) {
	p := Payment{
		Number:          strings.TrimSpace(req.Number),
		Date:            req.Date,
		Type:            strings.TrimSpace(req.Type),
		AccountName:     strings.TrimSpace(req.AccountName),
		DocumentMethod:  req.DocumentMethod,
		Amount:          req.Amount,
		AvailableCredit: req.Amount,
		InvoiceID:       req.InvoiceID,
		ClientID:        req.ClientID,
		Reference:       req.Reference,
	}
	if req.AvailableCredit != nil {
		p.AvailableCredit = *req.AvailableCredit
	}
	if err := validatePayment(p); err != nil {
		return nil, err
	}

	var cfg *numbering.CompanyConfig
	if p.Number == "" {
		var err error
		if cfg, err = s.company.CompanyConfig(ctx); err != nil {
			return nil, fmt.Errorf("load company config: %w", err)
		}
	}

	var result reconcile.Result
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if p.Number == "" {
			number, err := s.resolver.Next(ctx, repo.NumberStore(), cfg, numbering.TypePayment, p.Date)
			if err != nil {
				return err
			}
			p.Number = number
		} else if err := s.resolver.Claim(ctx, repo.NumberStore(), numbering.TypePayment, p.Number); err != nil {
			return err
		}

		id, err := repo.Create(ctx, p)
		if err != nil {
			return fmt.Errorf("create payment: %w", err)
		}
		p.ID = id

		result, err = s.reconciler.Apply(ctx, repo.Invoices(), reconcile.Change{
			Event:       reconcile.PaymentCreated,
			InvoiceID:   p.InvoiceID,
			Amount:      p.Amount,
			PaymentDate: p.Date,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment recorded",
		slog.Int64("id", p.ID),
		slog.String("number", p.Number),
		slog.Bool("invoice_reconciled", result.Applied))
	s.enqueueReceipt(ctx, p, req.NotifyEmail)
	return s.repo.Get(ctx, p.ID)
}

// Get returns one payment.
func (s *Service) Get(ctx context.Context, id int64) (*Payment, error) {
	return s.repo.Get(ctx, id)
}

// List returns payments newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Payment, error) {
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, fmt.Errorf("%w: start date is after end date", shared.ErrValidation)
	}
	return s.repo.List(ctx, filter)
}

// ListByInvoice returns the payments linked to an invoice.
func (s *Service) ListByInvoice(ctx context.Context, invoiceID int64) ([]Payment, error) {
	return s.repo.List(ctx, ListFilter{InvoiceID: &invoiceID})
}

// ListByClient returns the payments received from a client.
func (s *Service) ListByClient(ctx context.Context, clientID int64) ([]Payment, error) {
	return s.repo.List(ctx, ListFilter{ClientID: &clientID})
}

// Totals aggregates amount, credit and count over all payments.
func (s *Service) Totals(ctx context.Context) (Totals, error) {
	return s.repo.Totals(ctx)
}

// Update changes a payment. The difference between the new and old amount is
// applied to the invoice the payment links to after the update.
func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (*Payment, error) {
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		p, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		previous := p.Amount

		if req.Number != nil && strings.TrimSpace(*req.Number) != p.Number {
			number := strings.TrimSpace(*req.Number)
			if err := s.resolver.Claim(ctx, repo.NumberStore(), numbering.TypePayment, number); err != nil {
				return err
			}
			p.Number = number
		}
		applyUpdate(p, req)
		if err := validatePayment(*p); err != nil {
			return err
		}
		if err := repo.Update(ctx, *p); err != nil {
			return err
		}

		_, err = s.reconciler.Apply(ctx, repo.Invoices(), reconcile.Change{
			Event:          reconcile.PaymentUpdated,
			InvoiceID:      p.InvoiceID,
			Amount:         p.Amount,
			PreviousAmount: previous,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Delete removes a payment and restores its amount to the linked invoice.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		p, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := repo.Delete(ctx, id); err != nil {
			return err
		}
		_, err = s.reconciler.Apply(ctx, repo.Invoices(), reconcile.Change{
			Event:     reconcile.PaymentDeleted,
			InvoiceID: p.InvoiceID,
			Amount:    p.Amount,
		})
		return err
	})
}

// AddDetail records a detail under an existing payment. When the payment names
// a client, the detail must name the same one.
func (s *Service) AddDetail(ctx context.Context, paymentID int64, req DetailRequest) (*Detail, error) {
	d := Detail{
		PaymentID:   paymentID,
		ClientID:    req.ClientID,
		Number:      strings.TrimSpace(req.Number),
		Date:        req.Date,
		Amount:      req.Amount,
		Method:      strings.TrimSpace(req.Method),
		BankCharges: req.BankCharges,
		Reference:   req.Reference,
	}
	if err := validateDetail(d); err != nil {
		return nil, err
	}
	p, err := s.repo.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.ClientID != nil && *p.ClientID != d.ClientID {
		return nil, fmt.Errorf("%w: detail client does not match payment client", shared.ErrValidation)
	}
	id, err := s.repo.CreateDetail(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("create payment detail: %w", err)
	}
	s.logger.Info("payment detail recorded", slog.Int64("id", id), slog.Int64("payment_id", paymentID))
	return s.repo.GetDetail(ctx, id)
}

// Details lists payment details newest first.
func (s *Service) Details(ctx context.Context, filter DetailFilter) ([]Detail, error) {
	return s.repo.ListDetails(ctx, filter)
}

// DeleteDetail removes one payment detail. The payment is untouched.
func (s *Service) DeleteDetail(ctx context.Context, id int64) error {
	return s.repo.DeleteDetail(ctx, id)
}

// enqueueReceipt runs after commit. A queue failure never fails the request.
func (s *Service) enqueueReceipt(ctx context.Context, p Payment, email string) {
	if s.receipts == nil {
		return
	}
	payload := jobs.PaymentReceiptPayload{
		PaymentID: p.ID,
		Number:    p.Number,
		Amount:    p.Amount.StringFixed(2),
		Date:      p.Date,
		InvoiceID: p.InvoiceID,
		Email:     email,
	}
	if err := s.receipts.EnqueuePaymentReceipt(ctx, payload); err != nil {
		s.logger.Warn("enqueue payment receipt", slog.Int64("id", p.ID), slog.Any("error", err))
	}
}

func applyUpdate(p *Payment, req UpdateRequest) {
	if req.Date != nil {
		p.Date = *req.Date
	}
	if req.Type != nil {
		p.Type = strings.TrimSpace(*req.Type)
	}
	if req.AccountName != nil {
		p.AccountName = strings.TrimSpace(*req.AccountName)
	}
	if req.DocumentMethod != nil {
		p.DocumentMethod = req.DocumentMethod
	}
	if req.Amount != nil {
		p.Amount = *req.Amount
	}
	if req.AvailableCredit != nil {
		p.AvailableCredit = *req.AvailableCredit
	}
	if req.InvoiceID != nil {
		p.InvoiceID = req.InvoiceID
	}
	if req.Reference != nil {
		p.Reference = req.Reference
	}
}

func validatePayment(p Payment) error {
	switch {
	case !p.Amount.IsPositive():
		return fmt.Errorf("%w: payment amount must be greater than 0", shared.ErrValidation)
	case p.AvailableCredit.IsNegative():
		return fmt.Errorf("%w: available credit cannot be negative", shared.ErrValidation)
	case p.Date.IsZero():
		return fmt.Errorf("%w: payment date is required", shared.ErrValidation)
	case p.Type == "" || p.AccountName == "":
		return fmt.Errorf("%w: payment type and account name are required", shared.ErrValidation)
	}
	return nil
}

func validateDetail(d Detail) error {
	switch {
	case !d.Amount.IsPositive():
		return fmt.Errorf("%w: detail amount must be greater than 0", shared.ErrValidation)
	case d.BankCharges != nil && d.BankCharges.IsNegative():
		return fmt.Errorf("%w: bank charges cannot be negative", shared.ErrValidation)
	case d.Date.IsZero():
		return fmt.Errorf("%w: detail date is required", shared.ErrValidation)
	case d.Number == "" || d.Method == "":
		return fmt.Errorf("%w: detail number and method are required", shared.ErrValidation)
	}
	return nil
}
