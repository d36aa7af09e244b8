package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	jobmetrics "github.com/invoicedesk/invoicedesk/internal/jobs"
)

// Receipt is the rendered notification for one payment.
type Receipt struct {
	From    string
	To      string
	Subject string
	Body    string
}

// RenderReceipt formats the payment amount in its currency and builds the
// message. An empty currency falls back to fallbackCurrency.
func RenderReceipt(payload PaymentReceiptPayload, from, fallbackCurrency string) (Receipt, error) {
	code := strings.ToUpper(strings.TrimSpace(payload.Currency))
	if code == "" {
		code = strings.ToUpper(strings.TrimSpace(fallbackCurrency))
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return Receipt{}, fmt.Errorf("receipt currency %q: %w", code, err)
	}
	amount, err := decimal.NewFromString(payload.Amount)
	if err != nil {
		return Receipt{}, fmt.Errorf("receipt amount %q: %w", payload.Amount, err)
	}

	p := message.NewPrinter(language.English)
	formatted := p.Sprint(currency.ISO(unit.Amount(amount.InexactFloat64())))
	body := p.Sprintf("We have received your payment %s of %s on %s.",
		payload.Number, formatted, payload.Date.Format("02 Jan 2006"))
	if payload.InvoiceID != nil {
		body += p.Sprintf(" It has been applied to invoice #%d.", *payload.InvoiceID)
	}
	return Receipt{
		From:    from,
		To:      payload.Email,
		Subject: "Payment receipt " + payload.Number,
		Body:    body,
	}, nil
}

// ReceiptJob handles TaskPaymentReceipt tasks. Delivery is logged only; no
// mail transport is configured.
type ReceiptJob struct {
	From     string
	Currency string
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewReceiptJob wires dependencies for the receipt handler.
func NewReceiptJob(from, defaultCurrency string, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReceiptJob {
	return &ReceiptJob{From: from, Currency: defaultCurrency, Logger: logger, Metrics: metrics}
}

// Handle processes payment receipt tasks.
func (j *ReceiptJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil {
		return errors.New("payment receipt: handler not configured")
	}
	tracker := j.Metrics.Track(TaskPaymentReceipt)
	defer func() { err = tracker.End(err) }()

	var payload PaymentReceiptPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	receipt, err := RenderReceipt(payload, j.From, j.Currency)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	logger := j.logger().With(slog.Int64("payment_id", payload.PaymentID), slog.String("number", payload.Number))
	if receipt.To == "" {
		logger.Info("payment receipt skipped, no recipient")
		return nil
	}
	logger.Info("payment receipt sent",
		slog.String("to", receipt.To),
		slog.String("subject", receipt.Subject),
		slog.String("body", receipt.Body))
	return nil
}

func (j *ReceiptJob) logger() *slog.Logger {
	if j.Logger == nil {
		return slog.Default()
	}
	return j.Logger
}
