package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/invoicedesk/invoicedesk/internal/shared"
)

func validRequest() Request {
	billing := "12 MG Road"
	balance := decimal.RequireFromString("1500.50")
	return Request{
		CompanyName:    "Acme Traders",
		Phone:          "+91 98765 43210",
		Email:          "accounts@acme.test",
		BillingAddress: &billing,
		OpeningBalance: &balance,
	}
}

func TestCreateClientWithoutVendor(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	c, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	require.Equal(t, int64(1), c.ID)
	require.True(t, c.OpeningBalance.Equal(decimal.RequireFromString("1500.50")))
	require.Empty(t, repo.vendors.rows)
}

func TestCreateClientAsVendorMirrorsRecord(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	req := validRequest()
	req.IsVendor = true
	_, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, repo.vendors.rows, 1)
	v := repo.vendors.rows[1]
	require.Equal(t, "Acme Traders", v.ContactName)
	require.Equal(t, "12 MG Road", *v.ShippingAddress)
	require.True(t, v.IsClient)
}

func TestUpdateClientRefreshesExistingVendor(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	req := validRequest()
	req.IsVendor = true
	c, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	req.CompanyName = "Acme Traders Pvt Ltd"
	_, err = svc.Update(context.Background(), c.ID, req)
	require.NoError(t, err)

	require.Len(t, repo.vendors.rows, 1)
	require.Equal(t, "Acme Traders Pvt Ltd", repo.vendors.rows[1].CompanyName)
}

func TestVendorFailureRollsBackClient(t *testing.T) {
	repo := newMemoryRepo()
	repo.vendors.failCreate = true
	svc := NewService(repo, nil)

	req := validRequest()
	req.IsVendor = true
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	require.Empty(t, repo.rows)
}

func TestCreateClientValidation(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	_, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), validRequest())
	require.ErrorIs(t, err, shared.ErrDuplicate)

	bad := validRequest()
	bad.Email = "not-an-email"
	_, err = svc.Create(context.Background(), bad)
	require.ErrorIs(t, err, shared.ErrValidation)

	gstin := "bad"
	bad = validRequest()
	bad.Email = "second@acme.test"
	bad.GSTIN = &gstin
	_, err = svc.Create(context.Background(), bad)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestUpdateMissingClient(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	_, err := svc.Update(context.Background(), 42, validRequest())
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestHandlerRoutes(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	r := chi.NewRouter()
	NewHandler(nil, svc).MountRoutes(r)

	body := `{"company_name":"Acme Traders","phone":"9876543210","email":"a@acme.test","is_vendor":true}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/clients", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), `"is_vendor":true`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/clients", strings.NewReader(body)))
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/clients?q=acme", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Acme Traders")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/clients/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/clients/1", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
