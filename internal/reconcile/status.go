// Package reconcile keeps an invoice's balance and status in step with the
// payments recorded against it.
package reconcile

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/invoicedesk/invoicedesk/internal/invoices"
)

// Event is the payment mutation being reconciled.
type Event int

const (
	PaymentCreated Event = iota + 1
	PaymentUpdated
	PaymentDeleted
)

func (e Event) String() string {
	switch e {
	case PaymentCreated:
		return "created"
	case PaymentUpdated:
		return "updated"
	case PaymentDeleted:
		return "deleted"
	}
	return "unknown"
}

// unreduced is the status an invoice takes when its balance is back at (or
// above) the original amount and it is not yet overdue. It is the only row of
// the decision table that differs by event.
var unreduced = map[Event]invoices.Status{
	PaymentCreated: invoices.StatusPartiallyPaid,
	PaymentUpdated: invoices.StatusSent,
	PaymentDeleted: invoices.StatusSent,
}

// DeriveStatus evaluates the decision table, first match wins:
//
//	balance <= 0                       PAID
//	0 < balance < amount               PARTIALLY_PAID
//	balance >= amount, now > dueDate   OVERDUE
//	balance >= amount                  unreduced[event]
func DeriveStatus(event Event, balance, amount decimal.Decimal, dueDate, now time.Time) invoices.Status {
	switch {
	case !balance.IsPositive():
		return invoices.StatusPaid
	case balance.LessThan(amount):
		return invoices.StatusPartiallyPaid
	case now.After(dueDate):
		return invoices.StatusOverdue
	}
	if status, ok := unreduced[event]; ok {
		return status
	}
	return invoices.StatusSent
}
