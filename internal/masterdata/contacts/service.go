package contacts

import (
	"context"
	"log/slog"
	"strings"

	mdshared "github.com/invoicedesk/invoicedesk/internal/masterdata/shared"
)

// Service implements contact use cases for one Owner.
type Service struct {
	repo   Repository
	owner  Owner
	logger *slog.Logger
}

// NewService wires the contact service.
func NewService(repo Repository, owner Owner, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, owner: owner, logger: logger}
}

// List returns the contacts of every party.
func (s *Service) List(ctx context.Context, filters mdshared.ListFilters) ([]Contact, error) {
	return s.repo.List(ctx, nil, filters)
}

// ListFor returns the contacts of one party.
func (s *Service) ListFor(ctx context.Context, partyID int64, filters mdshared.ListFilters) ([]Contact, error) {
	return s.repo.List(ctx, &partyID, filters)
}

func (s *Service) Create(ctx context.Context, partyID int64, req Request) (*Contact, error) {
	c := Contact{PartyID: partyID}
	apply(&c, req)
	if err := mdshared.ValidatePerson(c.Name, c.Email, c.Phone); err != nil {
		return nil, err
	}
	id, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, err
	}
	s.logger.Info("contact created", slog.String("owner", s.owner.Name), slog.Int64("id", id), slog.Int64("party_id", partyID))
	return s.repo.Get(ctx, id)
}

// Update replaces the contact's details and, when PartyID is set, its party.
func (s *Service) Update(ctx context.Context, id int64, req Request) (*Contact, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(c, req)
	if req.PartyID != nil {
		c.PartyID = *req.PartyID
	}
	if err := mdshared.ValidatePerson(c.Name, c.Email, c.Phone); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, *c); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func apply(c *Contact, req Request) {
	c.Name = strings.TrimSpace(req.Name)
	c.Phone = strings.TrimSpace(req.Phone)
	c.Email = strings.TrimSpace(req.Email)
}
