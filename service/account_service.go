package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ridebook/pkg/auth"
	"ridebook/pkg/logger"
	"ridebook/pkg/models"
	"ridebook/storage"
)

type TokenIssuer interface {
	Generate(userID, email string, role models.Role) (*auth.Token, error)
	Validate(token string) (*auth.Claims, error)
	TTL() time.Duration
}

type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	UserID    string      `json:"userId"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	Role      models.Role `json:"role"`
}

type Me struct {
	UserID   string           `json:"userId"`
	Email    string           `json:"email"`
	Name     string           `json:"name"`
	Role     models.Role      `json:"role"`
	Driver   *models.Driver   `json:"driver,omitempty"`
	Customer *models.Customer `json:"customer,omitempty"`
}

type AccountService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, userID string) error
	// Authenticate turns a bearer token into the request-scoped requester.
	Authenticate(ctx context.Context, token string) (auth.Requester, error)
	Me(ctx context.Context, r auth.Requester) (*Me, error)
	ListDrivers(ctx context.Context) ([]*models.Driver, error)
	ListCustomers(ctx context.Context) ([]*models.Customer, error)
	EnsureAdmin(ctx context.Context, email, password string) error
}

type accountService struct {
	stg      storage.IStorage
	sessions storage.ISessionStorage
	tokens   TokenIssuer
	log      logger.ILogger
}

func NewAccountService(stg storage.IStorage, sessions storage.ISessionStorage, tokens TokenIssuer, log logger.ILogger) AccountService {
	return &accountService{
		stg:      stg,
		sessions: sessions,
		tokens:   tokens,
		log:      log,
	}
}

func (s *accountService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, validationError("email and password are required")
	}

	identity, err := s.stg.Identity().Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidCredentials) {
			return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
		}
		return nil, err
	}

	role, err := s.resolveRole(ctx, identity)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate(identity.ID, identity.Email, role)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, identity.ID, token.JTI, s.tokens.TTL()); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.log.Info("user logged in", logger.String("user_id", identity.ID), logger.String("role", role.String()))

	return &LoginResult{
		Token:     token.Signed,
		ExpiresAt: token.ExpiresAt,
		UserID:    identity.ID,
		Email:     identity.Email,
		Name:      identity.Metadata.Name,
		Role:      role,
	}, nil
}

// resolveRole prefers the role flag row and falls back to identity metadata.
func (s *accountService) resolveRole(ctx context.Context, identity *models.Identity) (models.Role, error) {
	role, err := s.stg.Role().Get(ctx, identity.ID)
	if err != nil && !errors.Is(err, storage.ErrMissingRelation) {
		return "", err
	}
	if role == "" {
		role = identity.Metadata.Role
	}
	if !role.Valid() {
		return "", fmt.Errorf("%w: account has no role", ErrForbidden)
	}
	return role, nil
}

func (s *accountService) Logout(ctx context.Context, userID string) error {
	return s.sessions.Delete(ctx, userID)
}

func (s *accountService) Authenticate(ctx context.Context, token string) (auth.Requester, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return auth.Requester{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	active, err := s.sessions.Active(ctx, claims.UserID)
	if err != nil {
		return auth.Requester{}, err
	}
	if active == "" || active != claims.ID {
		return auth.Requester{}, fmt.Errorf("%w: session expired", ErrUnauthorized)
	}

	r := auth.Requester{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
	}

	switch r.Role {
	case models.RoleDriver:
		d, err := s.stg.Driver().GetByUserID(ctx, r.UserID)
		if err != nil {
			return auth.Requester{}, err
		}
		if d == nil {
			return auth.Requester{}, fmt.Errorf("%w: driver profile missing", ErrUnauthorized)
		}
		r.ProfileID = d.ID
	case models.RoleCustomer:
		c, err := s.stg.Customer().GetByUserID(ctx, r.UserID)
		if err != nil {
			return auth.Requester{}, err
		}
		if c == nil {
			return auth.Requester{}, fmt.Errorf("%w: customer profile missing", ErrUnauthorized)
		}
		r.ProfileID = c.ID
	}
	return r, nil
}

func (s *accountService) Me(ctx context.Context, r auth.Requester) (*Me, error) {
	identity, err := s.stg.Identity().GetByID(ctx, r.UserID)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, ErrNotFound
	}

	me := &Me{
		UserID: identity.ID,
		Email:  identity.Email,
		Name:   identity.Metadata.Name,
		Role:   r.Role,
	}
	switch r.Role {
	case models.RoleDriver:
		me.Driver, err = s.stg.Driver().GetByID(ctx, r.ProfileID)
	case models.RoleCustomer:
		me.Customer, err = s.stg.Customer().GetByID(ctx, r.ProfileID)
	}
	if err != nil {
		return nil, err
	}
	return me, nil
}

func (s *accountService) ListDrivers(ctx context.Context) ([]*models.Driver, error) {
	return s.stg.Driver().GetAll(ctx)
}

func (s *accountService) ListCustomers(ctx context.Context) ([]*models.Customer, error) {
	return s.stg.Customer().GetAll(ctx)
}

// EnsureAdmin creates the bootstrap admin identity if it is missing and makes sure
// it carries the admin role flag.
func (s *accountService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if !validEmail(email) || password == "" {
		return validationError("admin email and password are required")
	}

	identity, err := s.stg.Identity().GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if identity == nil {
		identity, err = s.stg.Identity().Create(ctx, email, password, models.IdentityMetadata{
			Name: "Administrator",
			Role: models.RoleAdmin,
		})
		if err != nil {
			return fmt.Errorf("create admin identity: %w", err)
		}
		s.log.Info("admin identity created", logger.String("email", email))
	}

	if err := s.stg.Role().Set(ctx, identity.ID, models.RoleAdmin); err != nil {
		return fmt.Errorf("set admin role: %w", err)
	}
	return nil
}
