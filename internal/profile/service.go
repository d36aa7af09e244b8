package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/invoicedesk/invoicedesk/internal/numbering"
	"github.com/invoicedesk/invoicedesk/internal/platform/cache"
)

const companyConfigKey = "company_config"

// Service implements profile use cases and serves the numbering company config.
type Service struct {
	repo   Repository
	cache  *cache.JSONCache
	group  singleflight.Group
	logger *slog.Logger
}

// NewService wires the profile service. cache may be nil.
func NewService(repo Repository, cache *cache.JSONCache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger}
}

// CompanyConfig returns the current profile's numbering configuration, or nil
// when no profile exists. Concurrent callers share one lookup.
func (s *Service) CompanyConfig(ctx context.Context) (*numbering.CompanyConfig, error) {
	v, err, _ := s.group.Do(companyConfigKey, func() (any, error) {
		var cfg *numbering.CompanyConfig
		err := s.cache.Fetch(ctx, companyConfigKey, &cfg, s.loadCompanyConfig)
		return cfg, err
	})
	if err != nil {
		return nil, err
	}
	return v.(*numbering.CompanyConfig), nil
}

func (s *Service) loadCompanyConfig(ctx context.Context) (any, error) {
	p, err := s.repo.First(ctx)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	cfg := &numbering.CompanyConfig{}
	if p.CompanyCode != nil {
		cfg.CompanyCode = *p.CompanyCode
	}
	return cfg, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, companyConfigKey); err != nil {
		s.logger.Warn("invalidate company config", slog.Any("error", err))
	}
}

// List returns every profile with its bank details.
func (s *Service) List(ctx context.Context) ([]Profile, error) {
	return s.repo.List(ctx)
}

// Get returns one profile.
func (s *Service) Get(ctx context.Context, id int64) (*Profile, error) {
	return s.repo.Get(ctx, id)
}

// Current returns the first profile.
func (s *Service) Current(ctx context.Context) (*Profile, error) {
	return s.repo.First(ctx)
}

// Create stores a profile and its bank details. The email must be unused.
func (s *Service) Create(ctx context.Context, req Request) (*Profile, error) {
	p := req.toProfile()
	var id int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		taken, err := repo.EmailTaken(ctx, p.Email, 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrEmailTaken
		}
		if id, err = repo.Create(ctx, p); err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		for _, b := range req.BankDetails {
			if _, err := repo.CreateBankDetail(ctx, b.toBankDetail(id)); err != nil {
				return fmt.Errorf("create bank detail: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.logger.Info("profile created", slog.Int64("id", id))
	return s.repo.Get(ctx, id)
}

// Update replaces the profile fields. Bank details are managed separately.
func (s *Service) Update(ctx context.Context, id int64, req Request) (*Profile, error) {
	p := req.toProfile()
	p.ID = id
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		taken, err := repo.EmailTaken(ctx, p.Email, id)
		if err != nil {
			return err
		}
		if taken {
			return ErrEmailTaken
		}
		return repo.Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return s.repo.Get(ctx, id)
}

// Delete removes a profile and, by cascade, its bank details.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// AddBankDetail attaches a bank detail to a profile.
func (s *Service) AddBankDetail(ctx context.Context, profileID int64, req BankDetailRequest) (*BankDetail, error) {
	id, err := s.repo.CreateBankDetail(ctx, req.toBankDetail(profileID))
	if err != nil {
		return nil, err
	}
	return s.repo.GetBankDetail(ctx, id)
}

// UpdateBankDetail replaces a bank detail.
func (s *Service) UpdateBankDetail(ctx context.Context, id int64, req BankDetailRequest) (*BankDetail, error) {
	existing, err := s.repo.GetBankDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	b := req.toBankDetail(existing.ProfileID)
	b.ID = id
	if err := s.repo.UpdateBankDetail(ctx, b); err != nil {
		return nil, err
	}
	return s.repo.GetBankDetail(ctx, id)
}

// DeleteBankDetail removes a bank detail.
func (s *Service) DeleteBankDetail(ctx context.Context, id int64) error {
	return s.repo.DeleteBankDetail(ctx, id)
}
