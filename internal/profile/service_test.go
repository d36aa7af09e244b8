package profile

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/invoicedesk/invoicedesk/internal/platform/cache"
	"github.com/invoicedesk/invoicedesk/internal/shared"
)

type memoryRepo struct {
	mu         sync.Mutex
	profiles   map[int64]Profile
	banks      map[int64]BankDetail
	nextID     int64
	nextBankID int64
	firstCalls int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{profiles: map[int64]Profile{}, banks: map[int64]BankDetail{}}
}

func (m *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, m)
}

func (m *memoryRepo) attach(p Profile) *Profile {
	p.BankDetails = []BankDetail{}
	for _, b := range m.banks {
		if b.ProfileID == p.ID {
			p.BankDetails = append(p.BankDetails, b)
		}
	}
	sort.Slice(p.BankDetails, func(i, j int) bool { return p.BankDetails[i].ID < p.BankDetails[j].ID })
	return &p
}

func (m *memoryRepo) List(context.Context) ([]Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Profile
	for _, p := range m.profiles {
		out = append(out, *m.attach(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return m.attach(p), nil
}

func (m *memoryRepo) First(context.Context) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.firstCalls++
	var first *Profile
	for _, p := range m.profiles {
		if first == nil || p.ID < first.ID {
			p := p
			first = &p
		}
	}
	if first == nil {
		return nil, ErrNotFound
	}
	return m.attach(*first), nil
}

func (m *memoryRepo) EmailTaken(_ context.Context, email string, excludeID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.profiles {
		if p.ID != excludeID && strings.EqualFold(p.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryRepo) Create(_ context.Context, p Profile) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	p.ID = m.nextID
	m.profiles[p.ID] = p
	return p.ID, nil
}

func (m *memoryRepo) Update(_ context.Context, p Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[p.ID]; !ok {
		return ErrNotFound
	}
	m.profiles[p.ID] = p
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[id]; !ok {
		return ErrNotFound
	}
	delete(m.profiles, id)
	for bid, b := range m.banks {
		if b.ProfileID == id {
			delete(m.banks, bid)
		}
	}
	return nil
}

func (m *memoryRepo) CreateBankDetail(_ context.Context, b BankDetail) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[b.ProfileID]; !ok {
		return 0, ErrNotFound
	}
	m.nextBankID++
	b.ID = m.nextBankID
	m.banks[b.ID] = b
	return b.ID, nil
}

func (m *memoryRepo) UpdateBankDetail(_ context.Context, b BankDetail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.banks[b.ID]; !ok {
		return ErrBankDetailNotFound
	}
	m.banks[b.ID] = b
	return nil
}

func (m *memoryRepo) DeleteBankDetail(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.banks[id]; !ok {
		return ErrBankDetailNotFound
	}
	delete(m.banks, id)
	return nil
}

func (m *memoryRepo) GetBankDetail(_ context.Context, id int64) (*BankDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.banks[id]
	if !ok {
		return nil, ErrBankDetailNotFound
	}
	return &b, nil
}

func newCachedService(t *testing.T, repo *memoryRepo) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(repo, cache.NewJSONCache(client, "invoicedesk", time.Minute), nil), mr
}

func ptr(s string) *string { return &s }

func acmeRequest() Request {
	return Request{
		CompanyName: "Acme Traders",
		Country:     "India",
		City:        "Pune",
		Address:     "1 MG Road",
		Email:       "Accounts@Acme.test",
		Phone:       "+91 98765 43210",
		CompanyCode: ptr("AB"),
		BankDetails: []BankDetailRequest{{
			BankName:          "State Bank",
			AccountNumber:     "0011223344",
			IFSCCode:          "sbin0000001",
			AccountHolderName: "Acme Traders",
		}},
	}
}

func TestCompanyConfigWithoutProfileIsNil(t *testing.T) {
	svc, _ := newCachedService(t, newMemoryRepo())
	cfg, err := svc.CompanyConfig(context.Background())
	require.NoError(t, err)
	require.Nil(t, cfg)
}

func TestCompanyConfigIsCachedAndInvalidatedOnWrite(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc, mr := newCachedService(t, repo)

	created, err := svc.Create(ctx, acmeRequest())
	require.NoError(t, err)

	cfg, err := svc.CompanyConfig(ctx)
	require.NoError(t, err)
	require.Equal(t, "AB", cfg.CompanyCode)
	require.True(t, mr.Exists("invoicedesk:company_config"))

	calls := repo.firstCalls
	_, err = svc.CompanyConfig(ctx)
	require.NoError(t, err)
	require.Equal(t, calls, repo.firstCalls, "second lookup must come from redis")

	req := acmeRequest()
	req.CompanyCode = ptr("XY")
	_, err = svc.Update(ctx, created.ID, req)
	require.NoError(t, err)
	require.False(t, mr.Exists("invoicedesk:company_config"))

	cfg, err = svc.CompanyConfig(ctx)
	require.NoError(t, err)
	require.Equal(t, "XY", cfg.CompanyCode)
}

func TestCompanyConfigWithoutCache(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	_, err := svc.Create(context.Background(), acmeRequest())
	require.NoError(t, err)

	cfg, err := svc.CompanyConfig(context.Background())
	require.NoError(t, err)
	require.Equal(t, "AB", cfg.CompanyCode)
}

func TestCreateSanitizesAndDefaults(t *testing.T) {
	svc, _ := newCachedService(t, newMemoryRepo())
	req := acmeRequest()
	req.CompanyName = strings.Repeat("x", 300)
	req.Logo = ptr("data:image/png;base64," + strings.Repeat("A", 400))

	p, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, []rune(p.CompanyName), 191)
	require.Nil(t, p.Logo)
	require.Equal(t, "INR", p.DefaultCurrency)
	require.Equal(t, "accounts@acme.test", p.Email)
	require.Len(t, p.BankDetails, 1)
	require.Equal(t, "SBIN0000001", p.BankDetails[0].IFSCCode)
}

func TestShortLogoIsKept(t *testing.T) {
	require.Equal(t, "https://cdn.test/logo.png", *sanitizeLogo(ptr("https://cdn.test/logo.png")))
	require.Equal(t, "data:x", *sanitizeLogo(ptr("data:x")))
	require.Len(t, *sanitizeLogo(ptr(strings.Repeat("é", 250))), 191*2)
}

func TestDuplicateEmailConflicts(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCachedService(t, newMemoryRepo())
	first, err := svc.Create(ctx, acmeRequest())
	require.NoError(t, err)

	_, err = svc.Create(ctx, acmeRequest())
	require.ErrorIs(t, err, shared.ErrDuplicate)

	other := acmeRequest()
	other.Email = "other@acme.test"
	second, err := svc.Create(ctx, other)
	require.NoError(t, err)

	_, err = svc.Update(ctx, second.ID, acmeRequest())
	require.ErrorIs(t, err, ErrEmailTaken)

	// A profile may keep its own email.
	_, err = svc.Update(ctx, first.ID, acmeRequest())
	require.NoError(t, err)
}

func TestBankDetailLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCachedService(t, newMemoryRepo())
	p, err := svc.Create(ctx, acmeRequest())
	require.NoError(t, err)

	b, err := svc.AddBankDetail(ctx, p.ID, BankDetailRequest{
		BankName: "HDFC", AccountNumber: "99", IFSCCode: "hdfc0000002", AccountHolderName: "Acme",
	})
	require.NoError(t, err)
	require.Equal(t, p.ID, b.ProfileID)

	updated, err := svc.UpdateBankDetail(ctx, b.ID, BankDetailRequest{
		BankName: "HDFC Bank", AccountNumber: "99", IFSCCode: "HDFC0000002", AccountHolderName: "Acme",
	})
	require.NoError(t, err)
	require.Equal(t, "HDFC Bank", updated.BankName)
	require.Equal(t, p.ID, updated.ProfileID)

	require.NoError(t, svc.DeleteBankDetail(ctx, b.ID))
	require.ErrorIs(t, svc.DeleteBankDetail(ctx, b.ID), shared.ErrNotFound)

	_, err = svc.AddBankDetail(ctx, 999, BankDetailRequest{BankName: "X", AccountNumber: "1", IFSCCode: "X", AccountHolderName: "X"})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestHandlerProfileRoutes(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newCachedService(t, repo)
	r := chi.NewRouter()
	NewHandler(nil, svc).MountRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profiles/current", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	body := `{"company_name":"Acme","country":"India","city":"Pune","address":"1 MG Road",
		"email":"a@acme.test","phone":"9876543210","company_code":"AB"}`
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/profiles", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/profiles", strings.NewReader(body)))
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/profiles", strings.NewReader(`{"company_name":"x"}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profiles/current", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"company_code":"AB"`)

	bank := `{"bank_name":"SBI","account_number":"1","ifsc_code":"SBIN1","account_holder_name":"Acme"}`
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/profiles/1/bank-details", strings.NewReader(bank)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/profiles/bank-details/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/profiles/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, repo.profiles)
}
