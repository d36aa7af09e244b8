package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskPaymentReceipt is the task type for payment receipt notifications.
	TaskPaymentReceipt = "payment:receipt"
)

// PaymentReceiptPayload describes a recorded payment to acknowledge.
type PaymentReceiptPayload struct {
	PaymentID int64     `json:"payment_id"`
	Number    string    `json:"number"`
	Amount    string    `json:"amount"`
	Currency  string    `json:"currency,omitempty"`
	Date      time.Time `json:"date"`
	InvoiceID *int64    `json:"invoice_id,omitempty"`
	Email     string    `json:"email,omitempty"`
}

// NewPaymentReceiptTask constructs an Asynq task.
func NewPaymentReceiptTask(payload PaymentReceiptPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPaymentReceipt, data, asynq.MaxRetry(3)), nil
}
