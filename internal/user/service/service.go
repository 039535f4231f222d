package service

import (
	"context"
	"errors"
	"log/slog"

	"smartstore/internal/user/models"
	"smartstore/internal/user/secrets"
	"smartstore/internal/user/store"
	dErrors "smartstore/pkg/domain-errors"
	"smartstore/pkg/requestcontext"
)

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	Save(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Delete(ctx context.Context, email string) error
	ListAll(ctx context.Context) ([]*models.User, error)
}

// Service manages operator accounts.
type Service struct {
	users  UserStore
	logger *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(users UserStore, opts ...Option) *Service {
	s := &Service{users: users, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultUser is an account created on first start.
type DefaultUser struct {
	Email    string
	Password string
	Name     string
}

// DefaultUsers are the accounts every fresh installation starts with.
var DefaultUsers = []DefaultUser{
	{Email: "admin@store.com", Password: "admin123", Name: "Admin User"},
	{Email: "user@store.com", Password: "user123", Name: "Regular User"},
}

// SeedDefaults registers the default users that do not exist yet.
func (s *Service) SeedDefaults(ctx context.Context) error {
	for _, d := range DefaultUsers {
		_, err := s.Register(ctx, d.Email, d.Password, d.Name)
		if err != nil && !dErrors.HasCode(err, dErrors.CodeDuplicateEntity) {
			return err
		}
	}
	return nil
}

// Register creates a user with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	hash, err := secrets.Hash(password)
	if err != nil {
		return nil, dErrors.WithAction(err, "register user")
	}
	u, err := models.NewUser(email, name, hash, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.WithAction(err, "register user")
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyUsed) {
			return nil, dErrors.NewAction(dErrors.CodeDuplicateEntity, "register user", "user "+u.Email+" already exists")
		}
		return nil, dErrors.WithAction(dErrors.Wrap(err, dErrors.CodeInternal, "failed to save user"), "register user")
	}
	s.logAudit(ctx, "user_registered", "email", u.Email)
	return u, nil
}

func (s *Service) Get(ctx context.Context, email string) (*models.User, error) {
	u, err := s.users.FindByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		return nil, s.translate(err, "show user", email)
	}
	return u, nil
}

func (s *Service) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, dErrors.WithAction(dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users"), "list users")
	}
	return users, nil
}

// Update changes the password and/or name. Empty values keep the current field.
func (s *Service) Update(ctx context.Context, email, password, name string) (*models.User, error) {
	u, err := s.users.FindByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		return nil, s.translate(err, "update user", email)
	}
	if password != "" {
		hash, err := secrets.Hash(password)
		if err != nil {
			return nil, dErrors.WithAction(err, "update user")
		}
		u.PasswordHash = hash
	}
	if name != "" {
		u.Name = name
	}
	u.UpdatedAt = requestcontext.Now(ctx)
	if err := s.users.Save(ctx, u); err != nil {
		return nil, s.translate(err, "update user", u.Email)
	}
	s.logAudit(ctx, "user_updated", "email", u.Email, "password_changed", password != "")
	return u, nil
}

func (s *Service) Delete(ctx context.Context, email string) error {
	email = models.NormalizeEmail(email)
	if err := s.users.Delete(ctx, email); err != nil {
		return s.translate(err, "delete user", email)
	}
	s.logAudit(ctx, "user_deleted", "email", email)
	return nil
}

// Authenticate checks a password against the stored hash. Unknown users and
// wrong passwords fail alike.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.users.FindByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.NewAction(dErrors.CodeUnauthorized, "authenticate user", "invalid credentials")
		}
		return nil, s.translate(err, "authenticate user", email)
	}
	if err := secrets.Verify(password, u.PasswordHash); err != nil {
		return nil, dErrors.WithAction(err, "authenticate user")
	}
	return u, nil
}

func (s *Service) translate(err error, action, email string) error {
	if errors.Is(err, store.ErrNotFound) {
		return dErrors.NewAction(dErrors.CodeNotFound, action, "user "+email+" not found")
	}
	return dErrors.WithAction(dErrors.Wrap(err, dErrors.CodeInternal, "user store failure"), action)
}

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	s.logger.InfoContext(ctx, event, args...)
}
