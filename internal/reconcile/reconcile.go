package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/invoicedesk/invoicedesk/internal/invoices"
	"github.com/invoicedesk/invoicedesk/internal/shared"
)

// InvoiceStore reads and writes the linked invoice. It must be bound to the
// transaction that persists the payment mutation.
type InvoiceStore interface {
	GetForUpdate(ctx context.Context, id int64) (*invoices.Invoice, error)
	ApplyBalance(ctx context.Context, id int64, upd invoices.BalanceUpdate) error
}

// Change describes one payment mutation.
type Change struct {
	Event Event
	// InvoiceID is the payment's invoice link after the mutation, or the
	// deleted payment's link. Nil means nothing to reconcile.
	InvoiceID *int64
	// Amount is the created or deleted amount, or the new amount on update.
	Amount decimal.Decimal
	// PreviousAmount is the amount before an update.
	PreviousAmount decimal.Decimal
	// PaymentDate is stamped on the invoice for created payments.
	PaymentDate time.Time
}

// delta is the signed change applied to the invoice balance.
func (c Change) delta() decimal.Decimal {
	switch c.Event {
	case PaymentCreated:
		return c.Amount.Neg()
	case PaymentUpdated:
		return c.Amount.Sub(c.PreviousAmount).Neg()
	case PaymentDeleted:
		return c.Amount
	}
	return decimal.Zero
}

// Result reports what reconciliation did.
type Result struct {
	Applied   bool
	InvoiceID int64
	Balance   decimal.Decimal
	Status    invoices.Status
}

// Observer is told about every applied reconciliation.
type Observer interface {
	InvoiceReconciled(event string, status string)
}

// Reconciler recomputes invoice balance and status for payment events.
type Reconciler struct {
	now      func() time.Time
	logger   *slog.Logger
	observer Observer
}

// Option customises a Reconciler.
type Option func(*Reconciler)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

// WithObserver registers an Observer.
func WithObserver(o Observer) Option {
	return func(r *Reconciler) { r.observer = o }
}

// New constructs a Reconciler.
func New(logger *slog.Logger, opts ...Option) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Reconciler{now: time.Now, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Apply performs exactly one invoice read and one invoice write for the
// change. A missing invoice is not an error: the payment may reference an
// invoice that was deleted, and the result reports Applied=false.
func (r *Reconciler) Apply(ctx context.Context, store InvoiceStore, change Change) (Result, error) {
	if change.InvoiceID == nil {
		return Result{}, nil
	}
	id := *change.InvoiceID

	inv, err := store.GetForUpdate(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		r.logger.Warn("reconcile skipped, invoice not found",
			slog.Int64("invoice_id", id), slog.String("event", change.Event.String()))
		return Result{InvoiceID: id}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("reconcile: load invoice %d: %w", id, err)
	}

	balance := inv.Balance.Add(change.delta())
	status := DeriveStatus(change.Event, balance, inv.Amount, inv.DueDate, r.now())
	upd := invoices.BalanceUpdate{Balance: balance, Status: status}
	if change.Event == PaymentCreated && !change.PaymentDate.IsZero() {
		paid := change.PaymentDate
		upd.PaymentDate = &paid
	}

	if err := store.ApplyBalance(ctx, id, upd); err != nil {
		return Result{}, fmt.Errorf("reconcile: update invoice %d: %w", id, err)
	}
	if r.observer != nil {
		r.observer.InvoiceReconciled(change.Event.String(), string(status))
	}
	r.logger.Debug("invoice reconciled",
		slog.Int64("invoice_id", id),
		slog.String("event", change.Event.String()),
		slog.String("balance", balance.StringFixed(2)),
		slog.String("status", string(status)))
	return Result{Applied: true, InvoiceID: id, Balance: balance, Status: status}, nil
}
