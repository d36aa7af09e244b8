package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

func TestRenderReceiptFormatsCurrency(t *testing.T) {
	invoiceID := int64(12)
	r, err := RenderReceipt(PaymentReceiptPayload{
		PaymentID: 3,
		Number:    "AB-2526-PMT-003",
		Amount:    "500.00",
		Date:      time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		InvoiceID: &invoiceID,
		Email:     "billing@client.test",
	}, "accounts@acme.test", "inr")
	require.NoError(t, err)
	require.Equal(t, "Payment receipt AB-2526-PMT-003", r.Subject)
	require.Equal(t, "billing@client.test", r.To)
	require.Contains(t, r.Body, "INR")
	require.Contains(t, r.Body, "500.00")
	require.Contains(t, r.Body, "01 Jun 2025")
	require.Contains(t, r.Body, "invoice #12")
}

func TestRenderReceiptRejectsBadInput(t *testing.T) {
	_, err := RenderReceipt(PaymentReceiptPayload{Amount: "10", Currency: "XYZW"}, "", "")
	require.Error(t, err)

	_, err = RenderReceipt(PaymentReceiptPayload{Amount: "ten"}, "", "USD")
	require.Error(t, err)
}

func TestReceiptJobSkipsRetryOnBadPayload(t *testing.T) {
	job := NewReceiptJob("accounts@acme.test", "USD", nil, nil)
	err := job.Handle(context.Background(), asynq.NewTask(TaskPaymentReceipt, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)

	task, err := NewPaymentReceiptTask(PaymentReceiptPayload{Number: "AB-2526-PMT-001", Amount: "10"})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{Type: task.Type()}, nil
}

func (f *fakeEnqueuer) Close() error { return nil }

func TestClientStampsDefaultCurrency(t *testing.T) {
	fake := &fakeEnqueuer{}
	client := NewClientWith(fake, "INR")

	require.NoError(t, client.EnqueuePaymentReceipt(context.Background(), PaymentReceiptPayload{PaymentID: 1, Amount: "5"}))
	require.Len(t, fake.tasks, 1)
	require.Equal(t, TaskPaymentReceipt, fake.tasks[0].Type())

	var payload PaymentReceiptPayload
	require.NoError(t, json.Unmarshal(fake.tasks[0].Payload(), &payload))
	require.Equal(t, "INR", payload.Currency)

	fake.err = errors.New("redis down")
	require.Error(t, client.EnqueuePaymentReceipt(context.Background(), PaymentReceiptPayload{}))
}
