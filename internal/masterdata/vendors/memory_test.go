package vendors

import (
	"context"
	"strings"

	mdshared "github.com/invoicedesk/invoicedesk/internal/masterdata/shared"
)

type memoryRepo struct {
	rows   map[int64]Vendor
	nextID int64
}

func newMemoryRepo() *memoryRepo { return &memoryRepo{rows: map[int64]Vendor{}} }

func (m *memoryRepo) List(_ context.Context, filters mdshared.ListFilters) ([]Vendor, error) {
	var out []Vendor
	for _, v := range m.rows {
		if filters.Search == "" || strings.Contains(strings.ToLower(v.CompanyName), strings.ToLower(filters.Search)) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (*Vendor, error) {
	v, ok := m.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &v, nil
}

func (m *memoryRepo) FindByEmail(_ context.Context, email string) (*Vendor, error) {
	for _, v := range m.rows {
		if strings.EqualFold(v.Email, email) {
			v := v
			return &v, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryRepo) Create(ctx context.Context, v Vendor) (int64, error) {
	if _, err := m.FindByEmail(ctx, v.Email); err == nil {
		return 0, ErrEmailTaken
	}
	m.nextID++
	v.ID = m.nextID
	m.rows[v.ID] = v
	return v.ID, nil
}

func (m *memoryRepo) Update(_ context.Context, v Vendor) error {
	if _, ok := m.rows[v.ID]; !ok {
		return ErrNotFound
	}
	m.rows[v.ID] = v
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.rows[id]; !ok {
		return ErrNotFound
	}
	delete(m.rows, id)
	return nil
}
