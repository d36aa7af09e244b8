package clients

import (
	"context"
	"errors"
	"maps"
	"strings"

	mdshared "github.com/invoicedesk/invoicedesk/internal/masterdata/shared"
	"github.com/invoicedesk/invoicedesk/internal/masterdata/vendors"
)

type memoryVendors struct {
	rows       map[int64]vendors.Vendor
	nextID     int64
	failCreate bool
}

func (m *memoryVendors) List(context.Context, mdshared.ListFilters) ([]vendors.Vendor, error) {
	var out []vendors.Vendor
	for _, v := range m.rows {
		out = append(out, v)
	}
	return out, nil
}

func (m *memoryVendors) Get(_ context.Context, id int64) (*vendors.Vendor, error) {
	v, ok := m.rows[id]
	if !ok {
		return nil, vendors.ErrNotFound
	}
	return &v, nil
}

func (m *memoryVendors) FindByEmail(_ context.Context, email string) (*vendors.Vendor, error) {
	for _, v := range m.rows {
		if strings.EqualFold(v.Email, email) {
			return &v, nil
		}
	}
	return nil, vendors.ErrNotFound
}

func (m *memoryVendors) Create(_ context.Context, v vendors.Vendor) (int64, error) {
	if m.failCreate {
		return 0, errors.New("vendor insert failed")
	}
	m.nextID++
	v.ID = m.nextID
	m.rows[v.ID] = v
	return v.ID, nil
}

func (m *memoryVendors) Update(_ context.Context, v vendors.Vendor) error {
	if _, ok := m.rows[v.ID]; !ok {
		return vendors.ErrNotFound
	}
	m.rows[v.ID] = v
	return nil
}

func (m *memoryVendors) Delete(_ context.Context, id int64) error {
	delete(m.rows, id)
	return nil
}

type memoryRepo struct {
	rows    map[int64]Client
	nextID  int64
	vendors *memoryVendors
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		rows:    map[int64]Client{},
		vendors: &memoryVendors{rows: map[int64]vendors.Vendor{}},
	}
}

// WithTx restores both tables when fn fails.
func (m *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	clients, clientID := maps.Clone(m.rows), m.nextID
	vendorRows, vendorID := maps.Clone(m.vendors.rows), m.vendors.nextID
	if err := fn(ctx, m); err != nil {
		m.rows, m.nextID = clients, clientID
		m.vendors.rows, m.vendors.nextID = vendorRows, vendorID
		return err
	}
	return nil
}

func (m *memoryRepo) Vendors() vendors.Repository { return m.vendors }

func (m *memoryRepo) List(_ context.Context, filters mdshared.ListFilters) ([]Client, error) {
	var out []Client
	for _, c := range m.rows {
		if filters.Search == "" || strings.Contains(strings.ToLower(c.CompanyName), strings.ToLower(filters.Search)) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (*Client, error) {
	c, ok := m.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (m *memoryRepo) EmailTaken(_ context.Context, email string, excludeID int64) (bool, error) {
	for id, c := range m.rows {
		if id != excludeID && strings.EqualFold(c.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryRepo) Create(_ context.Context, c Client) (int64, error) {
	m.nextID++
	c.ID = m.nextID
	m.rows[c.ID] = c
	return c.ID, nil
}

func (m *memoryRepo) Update(_ context.Context, c Client) error {
	if _, ok := m.rows[c.ID]; !ok {
		return ErrNotFound
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
