package vendors

import (
	"context"
	"errors"
	"log/slog"

	mdshared "github.com/invoicedesk/invoicedesk/internal/masterdata/shared"
)

// Service implements vendor use cases.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService wires the vendor service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(ctx context.Context, filters mdshared.ListFilters) ([]Vendor, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (*Vendor, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req Request) (*Vendor, error) {
	v := req.toVendor()
	if err := validate(v); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByEmail(ctx, v.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	id, err := s.repo.Create(ctx, v)
	if err != nil {
		return nil, err
	}
	s.logger.Info("vendor created", slog.Int64("id", id))
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, req Request) (*Vendor, error) {
	v := req.toVendor()
	v.ID = id
	if err := validate(v); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func validate(v Vendor) error {
	return mdshared.ValidateContact(mdshared.ContactDetails{
		CompanyName: v.CompanyName,
		Email:       v.Email,
		Phone:       v.Phone,
		GSTIN:       v.GSTIN,
		PAN:         v.PAN,
	})
}

// Upsert creates the vendor or refreshes the one sharing its email. It is
// used when a client is also flagged as a vendor.
func Upsert(ctx context.Context, repo Repository, v Vendor) (int64, error) {
	existing, err := repo.FindByEmail(ctx, v.Email)
	if errors.Is(err, ErrNotFound) {
		return repo.Create(ctx, v)
	}
	if err != nil {
		return 0, err
	}
	v.ID = existing.ID
	return v.ID, repo.Update(ctx, v)
}
