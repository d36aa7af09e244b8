package users

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/invoicedesk/invoicedesk/internal/shared"
)

// Service handles registration and login.
type Service struct {
	repo     RepositoryPort
	sessions *shared.SessionManager
	logger   *slog.Logger
	cost     int
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, sessions *shared.SessionManager, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, sessions: sessions, logger: logger, cost: bcrypt.DefaultCost}
}

// Register hashes the password and stores a new account. Role defaults to STAFF.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, err
	}
	u := User{Name: req.Name, Email: req.Email, PasswordHash: string(hash), Role: req.Role}
	if u.Role == "" {
		u.Role = RoleStaff
	}
	id, err := s.repo.Create(ctx, u)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user registered", slog.Int64("id", id), slog.String("role", u.Role))
	return s.repo.Get(ctx, id)
}

// Login validates credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	u, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	sess, err := s.sessions.Create(ctx, shared.Session{UserID: u.ID, Email: u.Email, Role: u.Role})
	if err != nil {
		return nil, err
	}
	return &LoginResponse{Token: sess.Token, ExpiresAt: sess.ExpiresAt, User: *u}, nil
}

// Logout revokes the token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Destroy(ctx, token)
}

// Me returns the account behind a session.
func (s *Service) Me(ctx context.Context, sess *shared.Session) (*User, error) {
	if sess == nil {
		return nil, shared.ErrUnauthorized
	}
	return s.repo.Get(ctx, sess.UserID)
}
