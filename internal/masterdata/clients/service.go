package clients

import (
	"context"
	"fmt"
	"log/slog"

	mdshared "github.com/invoicedesk/invoicedesk/internal/masterdata/shared"
	"github.com/invoicedesk/invoicedesk/internal/masterdata/vendors"
)

// Service implements client use cases.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService wires the client service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(ctx context.Context, filters mdshared.ListFilters) ([]Client, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (*Client, error) {
	return s.repo.Get(ctx, id)
}

// Create stores the client. A client flagged as vendor also gets a vendor
// record in the same transaction.
func (s *Service) Create(ctx context.Context, req Request) (*Client, error) {
	c := req.toClient()
	if err := validate(c); err != nil {
		return nil, err
	}
	var id int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		taken, err := repo.EmailTaken(ctx, c.Email, 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrEmailTaken
		}
		if id, err = repo.Create(ctx, c); err != nil {
			return fmt.Errorf("create client: %w", err)
		}
		return s.syncVendor(ctx, repo, c)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("client created", slog.Int64("id", id), slog.Bool("is_vendor", c.IsVendor))
	return s.repo.Get(ctx, id)
}

// Update replaces the client and keeps the mirrored vendor in step.
func (s *Service) Update(ctx context.Context, id int64, req Request) (*Client, error) {
	c := req.toClient()
	c.ID = id
	if err := validate(c); err != nil {
		return nil, err
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		taken, err := repo.EmailTaken(ctx, c.Email, id)
		if err != nil {
			return err
		}
		if taken {
			return ErrEmailTaken
		}
		if err := repo.Update(ctx, c); err != nil {
			return err
		}
		return s.syncVendor(ctx, repo, c)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) syncVendor(ctx context.Context, repo Repository, c Client) error {
	if !c.IsVendor {
		return nil
	}
	if _, err := vendors.Upsert(ctx, repo.Vendors(), c.asVendor()); err != nil {
		return fmt.Errorf("mirror client as vendor: %w", err)
	}
	return nil
}

func validate(c Client) error {
	return mdshared.ValidateContact(mdshared.ContactDetails{
		CompanyName: c.CompanyName,
		Email:       c.Email,
		Phone:       c.Phone,
		GSTIN:       c.GSTIN,
		PAN:         c.PAN,
	})
}
