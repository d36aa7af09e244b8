package contacts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	mdshared "github.com/invoicedesk/invoicedesk/internal/masterdata/shared"
	"github.com/invoicedesk/invoicedesk/internal/platform/db"
	"github.com/invoicedesk/invoicedesk/internal/platform/httpx"
	"github.com/invoicedesk/invoicedesk/internal/shared"
)

// memoryRepo enforces <table>_<column>_fkey against parties like the schema.
type memoryRepo struct {
	owner   Owner
	parties map[int64]string
	rows    map[int64]Contact
	nextID  int64
}

func newMemoryRepo(owner Owner) *memoryRepo {
	return &memoryRepo{
		owner:   owner,
		parties: map[int64]string{1: "Acme Traders", 2: "Globex"},
		rows:    map[int64]Contact{},
	}
}

func (m *memoryRepo) checkParty(c Contact) error {
	if _, ok := m.parties[c.PartyID]; ok {
		return nil
	}
	err := &pgconn.PgError{Code: "23503", ConstraintName: m.owner.Table + "_" + m.owner.Column + "_fkey"}
	return db.ForeignKeyError(err, m.owner.Table)
}

func (m *memoryRepo) List(_ context.Context, partyID *int64, filters mdshared.ListFilters) ([]Contact, error) {
	var out []Contact
	for _, c := range m.rows {
		if partyID != nil && c.PartyID != *partyID {
			continue
		}
		if filters.Search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(filters.Search)) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (*Contact, error) {
	c, ok := m.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	c.PartyName = m.parties[c.PartyID]
	return &c, nil
}

func (m *memoryRepo) Create(_ context.Context, c Contact) (int64, error) {
	if err := m.checkParty(c); err != nil {
		return 0, err
	}
	m.nextID++
	c.ID = m.nextID
	m.rows[c.ID] = c
	return c.ID, nil
}

func (m *memoryRepo) Update(_ context.Context, c Contact) error {
	if _, ok := m.rows[c.ID]; !ok {
		return ErrNotFound
	}
	if err := m.checkParty(c); err != nil {
		return err
	}
	m.rows[c.ID] = c
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.rows[id]; !ok {
		return ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func person(name string) Request {
	return Request{Name: name, Phone: "+91 98765 43210", Email: strings.ToLower(name) + "@acme.test"}
}

func TestContactLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo(ClientOwner)
	svc := NewService(repo, ClientOwner, nil)

	priya, err := svc.Create(ctx, 1, person("Priya"))
	require.NoError(t, err)
	require.Equal(t, "Acme Traders", priya.PartyName)
	_, err = svc.Create(ctx, 2, person("Ravi"))
	require.NoError(t, err)

	all, err := svc.List(ctx, mdshared.ListFilters{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	mine, err := svc.ListFor(ctx, 1, mdshared.ListFilters{})
	require.NoError(t, err)
	require.Len(t, mine, 1)

	moveTo := int64(2)
	req := person("Priya")
	req.Phone = "+91 91234 56789"
	req.PartyID = &moveTo
	moved, err := svc.Update(ctx, priya.ID, req)
	require.NoError(t, err)
	require.Equal(t, int64(2), moved.PartyID)
	require.Equal(t, "Globex", moved.PartyName)
	require.Equal(t, "+91 91234 56789", moved.Phone)

	require.NoError(t, svc.Delete(ctx, priya.ID))
	require.ErrorIs(t, svc.Delete(ctx, priya.ID), shared.ErrNotFound)
}

func TestContactRejectsUnknownPartyAndBadDetails(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryRepo(VendorOwner), VendorOwner, nil)

	_, err := svc.Create(ctx, 99, person("Priya"))
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Contains(t, err.Error(), "referenced vendor_id does not exist")

	bad := person("Priya")
	bad.Email = "not-an-email"
	_, err = svc.Create(ctx, 1, bad)
	require.ErrorIs(t, err, mdshared.ErrInvalidEmail)

	_, err = svc.Update(ctx, 42, person("Priya"))
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestHandlerRoutesNextToPartyRoutes(t *testing.T) {
	repo := newMemoryRepo(ClientOwner)
	r := chi.NewRouter()
	r.Get("/clients/{id}", func(w http.ResponseWriter, _ *http.Request) {
		httpx.Message(w, http.StatusOK, "client")
	})
	NewHandler(nil, NewService(repo, ClientOwner, nil)).MountRoutes(r)

	body := `{"name":"Priya","phone":"+91 98765 43210","email":"priya@acme.test"}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/clients/1/contacts", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), `"party_name":"Acme Traders"`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/clients/7/contacts", strings.NewReader(body)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/clients/contacts", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "priya@acme.test")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/clients/2/contacts", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/clients/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "client")

	update := `{"name":"Priya S","phone":"+91 98765 43210","email":"priya@acme.test"}`
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/clients/contacts/1", strings.NewReader(update)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "Priya S", repo.rows[1].Name)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/clients/contacts/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, repo.rows)
}
