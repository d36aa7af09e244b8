package documents

import (
	"context"
	"errors"
	"maps"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/invoicedesk/invoicedesk/internal/numbering"
	"github.com/invoicedesk/invoicedesk/internal/shared"
)

type memoryRepo struct {
	tables   map[numbering.Table]map[int64]Document
	nextID   int64
	nextLine int64
	failLine bool
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{tables: map[numbering.Table]map[int64]Document{}}
}

func (m *memoryRepo) table(t numbering.Table) map[int64]Document {
	rows, ok := m.tables[t]
	if !ok {
		rows = map[int64]Document{}
		m.tables[t] = rows
	}
	return rows
}

// WithTx restores every table when fn fails.
func (m *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	snapshot := make(map[numbering.Table]map[int64]Document, len(m.tables))
	for t, rows := range m.tables {
		snapshot[t] = maps.Clone(rows)
	}
	if err := fn(ctx, m); err != nil {
		m.tables = snapshot
		return err
	}
	return nil
}

func (m *memoryRepo) NumberStore() numbering.Store { return m }

func (m *memoryRepo) CountWithPrefix(_ context.Context, t numbering.Table, prefix string) (int64, error) {
	var n int64
	for _, d := range m.table(t) {
		if strings.HasPrefix(d.Number, prefix) {
			n++
		}
	}
	return n, nil
}

func (m *memoryRepo) NumberExists(_ context.Context, t numbering.Table, number string) (bool, error) {
	for _, d := range m.table(t) {
		if d.Number == number {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryRepo) Get(_ context.Context, k Kind, id int64) (*Document, error) {
	d, ok := m.table(k.Table)[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (m *memoryRepo) GetForUpdate(ctx context.Context, k Kind, id int64) (*Document, error) {
	return m.Get(ctx, k, id)
}

func (m *memoryRepo) matching(k Kind, filter ListFilter) []Document {
	var out []Document
	for _, d := range m.table(k.Table) {
		if filter.PartyID != nil && (d.partyID(k) == nil || *d.partyID(k) != *filter.PartyID) {
			continue
		}
		if filter.InvoiceID != nil && (d.InvoiceID == nil || *d.InvoiceID != *filter.InvoiceID) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func (m *memoryRepo) List(_ context.Context, k Kind, filter ListFilter) ([]Document, error) {
	return m.matching(k, filter), nil
}

func (m *memoryRepo) Totals(_ context.Context, k Kind, filter ListFilter) (Totals, error) {
	t := Totals{TotalAmount: decimal.Zero}
	for _, d := range m.matching(k, filter) {
		t.TotalAmount = t.TotalAmount.Add(d.Amount)
		t.TotalCount++
	}
	return t, nil
}

func (m *memoryRepo) Create(ctx context.Context, k Kind, d Document) (int64, error) {
	if exists, _ := m.NumberExists(ctx, k.Table, d.Number); exists {
		return 0, &numbering.DuplicateNumberError{Table: k.Table, Number: d.Number}
	}
	m.nextID++
	d.ID = m.nextID
	m.table(k.Table)[d.ID] = d
	return d.ID, nil
}

func (m *memoryRepo) Update(_ context.Context, k Kind, d Document) error {
	old, ok := m.table(k.Table)[d.ID]
	if !ok {
		return ErrNotFound
	}
	d.Lines = old.Lines
	m.table(k.Table)[d.ID] = d
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, k Kind, id int64) error {
	if _, ok := m.table(k.Table)[id]; !ok {
		return ErrNotFound
	}
	delete(m.table(k.Table), id)
	return nil
}

func (m *memoryRepo) InsertLine(_ context.Context, k Kind, line Line) (int64, error) {
	if m.failLine {
		return 0, errors.New("line insert failed")
	}
	m.nextLine++
	line.ID = m.nextLine
	d := m.table(k.Table)[line.DocumentID]
	d.Lines = append(append([]Line(nil), d.Lines...), line)
	m.table(k.Table)[line.DocumentID] = d
	return line.ID, nil
}

func (m *memoryRepo) DeleteLines(_ context.Context, k Kind, documentID int64) error {
	d := m.table(k.Table)[documentID]
	d.Lines = nil
	m.table(k.Table)[documentID] = d
	return nil
}

type staticCompany struct{ cfg *numbering.CompanyConfig }

func (s staticCompany) CompanyConfig(context.Context) (*numbering.CompanyConfig, error) {
	return s.cfg, nil
}

func newTestService(repo *memoryRepo) *Service {
	cfg := &numbering.CompanyConfig{CompanyCode: "AB"}
	return NewService(repo, numbering.NewResolver(numbering.StrategyCount, nil), staticCompany{cfg: cfg}, nil)
}

func int64Ptr(v int64) *int64 { return &v }

func quotationRequest() CreateRequest {
	return CreateRequest{
		ClientID:     int64Ptr(3),
		DocumentDate: time.Date(2025, time.April, 2, 0, 0, 0, 0, time.UTC),
		Subtotal:     decimal.NewFromInt(900),
		Amount:       decimal.NewFromInt(1062),
		Items: []LineRequest{{
			Quantity: decimal.NewFromInt(3),
			Price:    decimal.NewFromInt(300),
			Total:    decimal.NewFromInt(900),
		}},
	}
}

func TestNumbersAreScopedPerKind(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	q1, err := svc.Create(ctx, Quotation, quotationRequest())
	require.NoError(t, err)
	require.Equal(t, "AB-2526-QO-001", q1.Number)
	require.Len(t, q1.Lines, 1)

	q2, err := svc.Create(ctx, Quotation, quotationRequest())
	require.NoError(t, err)
	require.Equal(t, "AB-2526-QO-002", q2.Number)

	req := quotationRequest()
	req.Items = nil
	cn, err := svc.Create(ctx, CreditNote, req)
	require.NoError(t, err)
	require.Equal(t, "AB-2526-CN-001", cn.Number)

	req.DocumentDate = time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC)
	dc, err := svc.Create(ctx, DeliveryChalan, req)
	require.NoError(t, err)
	require.Equal(t, "AB-2425-DC-001", dc.Number)
}

func TestPurchaseOrderRequiresVendor(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	_, err := svc.Create(context.Background(), PurchaseOrder, quotationRequest())
	require.ErrorIs(t, err, shared.ErrValidation)

	req := quotationRequest()
	req.ClientID = nil
	req.VendorID = int64Ptr(8)
	po, err := svc.Create(context.Background(), PurchaseOrder, req)
	require.NoError(t, err)
	require.Equal(t, "AB-2526-PO-001", po.Number)
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	valid := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	cases := map[string]struct {
		kind   Kind
		mutate func(*CreateRequest)
	}{
		"lines on credit note": {CreditNote, func(*CreateRequest) {}},
		"valid until earlier":  {Quotation, func(r *CreateRequest) { r.ValidUntil = &valid }},
		"negative amount":      {Quotation, func(r *CreateRequest) { r.Amount = decimal.NewFromInt(-1) }},
		"zero quantity":        {Proforma, func(r *CreateRequest) { r.Items[0].Quantity = decimal.Zero }},
		"missing client":       {DebitNote, func(r *CreateRequest) { r.ClientID = nil; r.Items = nil }},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := quotationRequest()
			tc.mutate(&req)
			_, err := svc.Create(context.Background(), tc.kind, req)
			require.ErrorIs(t, err, shared.ErrValidation)
		})
	}
}

func TestCreateRollsBackWhenLineFails(t *testing.T) {
	repo := newMemoryRepo()
	repo.failLine = true
	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), Proforma, quotationRequest())
	require.Error(t, err)
	require.Empty(t, repo.table(Proforma.Table))
}

func TestExplicitNumberMustBeUnique(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	req := quotationRequest()
	req.Number = "Q-LEGACY"

	_, err := svc.Create(context.Background(), Quotation, req)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), Quotation, req)
	require.ErrorIs(t, err, numbering.ErrDuplicateNumber)

	// Same number in another table is fine.
	_, err = svc.Create(context.Background(), Proforma, req)
	require.NoError(t, err)
}

func TestUpdateReplacesLines(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	q, err := svc.Create(context.Background(), Quotation, quotationRequest())
	require.NoError(t, err)

	lines := []LineRequest{
		{Quantity: decimal.NewFromInt(1), Price: decimal.NewFromInt(100), Total: decimal.NewFromInt(100)},
		{Quantity: decimal.NewFromInt(2), Price: decimal.NewFromInt(50), Total: decimal.NewFromInt(100)},
	}
	amount := decimal.NewFromInt(200)
	updated, err := svc.Update(context.Background(), Quotation, q.ID, UpdateRequest{Amount: &amount, Items: &lines})
	require.NoError(t, err)
	require.Len(t, updated.Lines, 2)
	require.True(t, updated.Amount.Equal(amount))
}

func TestListByPartyInvoiceAndTotals(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	ctx := context.Background()

	for _, clientID := range []int64{3, 3, 4} {
		req := quotationRequest()
		req.Items = nil
		req.ClientID = int64Ptr(clientID)
		if clientID == 4 {
			req.InvoiceID = int64Ptr(11)
		}
		_, err := svc.Create(ctx, CreditNote, req)
		require.NoError(t, err)
	}

	byParty, err := svc.ListByParty(ctx, CreditNote, 3)
	require.NoError(t, err)
	require.Len(t, byParty, 2)

	byInvoice, err := svc.ListByInvoice(ctx, CreditNote, 11)
	require.NoError(t, err)
	require.Len(t, byInvoice, 1)

	totals, err := svc.Totals(ctx, CreditNote, ListFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(3), totals.TotalCount)
	require.True(t, totals.TotalAmount.Equal(decimal.NewFromInt(3186)))
}

func TestHandlerRoutesPerKind(t *testing.T) {
	r := chi.NewRouter()
	NewHandler(nil, newTestService(newMemoryRepo())).MountRoutes(r)

	body := `{"vendor_id":8,"document_date":"2025-05-01T00:00:00Z","amount":"500",
		"items":[{"quantity":"5","price":"100","total":"500"}]}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/purchase-orders", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), `"number":"AB-2526-PO-001"`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/purchase-orders/vendor/8", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "AB-2526-PO-001")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/credit-notes", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/credit-notes/totals", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"total_count":0`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/quotations/1", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
