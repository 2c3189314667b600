package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ridebook/pkg/logger"
	"ridebook/pkg/mailer"
	"ridebook/pkg/models"
	"ridebook/pkg/password"
	"ridebook/storage"
)

type EmailSender interface {
	SendCredentials(ctx context.Context, to, name, password, role string) mailer.Result
}

type AdminNotifier interface {
	Notify(ctx context.Context, text string)
}

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

type SubmitInput struct {
	Name          string
	Email         string
	Phone         string
	RequestedRole models.Role
	Message       string
}

type ProcessInput struct {
	RequestID     string
	Decision      Decision
	AdminNotes    string
	CreateAccount bool
	// Role overrides the requested role; empty keeps it.
	Role models.Role
}

type AccountInput struct {
	Email         string
	Name          string
	Phone         string
	Role          models.Role
	VehicleType   string
	VehicleNumber string
	LicenseNumber string
	Address       string
}

type AccountResult struct {
	UserID    string        `json:"userId"`
	ProfileID string        `json:"profileId"`
	Email     string        `json:"email"`
	Role      models.Role   `json:"role"`
	EmailSent bool          `json:"emailSent"`
	Delivery  mailer.Result `json:"delivery"`
}

type ProcessResult struct {
	Request        *models.ContactRequest `json:"request"`
	AccountCreated bool                   `json:"accountCreated"`
	Account        *AccountResult         `json:"account,omitempty"`
}

type ProvisioningService interface {
	SubmitRequest(ctx context.Context, in SubmitInput) (*models.ContactRequest, error)
	ListRequests(ctx context.Context, status models.ContactStatus) ([]*models.ContactRequest, error)
	Process(ctx context.Context, in ProcessInput) (*ProcessResult, error)
	CreateAccount(ctx context.Context, in AccountInput) (*AccountResult, error)
}

type provisioningService struct {
	stg      storage.IStorage
	mail     EmailSender
	admin    AdminNotifier
	notify   NotificationService
	log      logger.ILogger
	password func() string
}

func NewProvisioningService(stg storage.IStorage, mail EmailSender, admin AdminNotifier, notify NotificationService, log logger.ILogger) ProvisioningService {
	return &provisioningService{
		stg:      stg,
		mail:     mail,
		admin:    admin,
		notify:   notify,
		log:      log,
		password: password.Generate,
	}
}

func (s *provisioningService) SubmitRequest(ctx context.Context, in SubmitInput) (*models.ContactRequest, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)

	if in.Name == "" {
		return nil, validationError("name is required")
	}
	if !validEmail(in.Email) {
		return nil, validationError("invalid email format")
	}
	if !in.RequestedRole.Provisionable() {
		return nil, validationError("requested role must be customer or driver")
	}

	req, err := s.stg.ContactRequest().Create(ctx, &models.ContactRequest{
		Name:          in.Name,
		Email:         in.Email,
		Phone:         strings.TrimSpace(in.Phone),
		RequestedRole: in.RequestedRole,
		Message:       strings.TrimSpace(in.Message),
	})
	if err != nil {
		return nil, fmt.Errorf("create contact request: %w", err)
	}

	s.admin.Notify(ctx, fmt.Sprintf("New %s request from %s <%s>", req.RequestedRole, req.Name, req.Email))
	return req, nil
}

func (s *provisioningService) ListRequests(ctx context.Context, status models.ContactStatus) ([]*models.ContactRequest, error) {
	if status != "" && !status.Valid() {
		return nil, validationError("unknown status %q", status)
	}
	return s.stg.ContactRequest().GetAll(ctx, status)
}

// Process records an admin decision on a contact request and, for approvals with
// CreateAccount, provisions the account. Reprocessing a decided request runs the
// same steps again; an existing identity makes it fail with ErrConflict.
func (s *provisioningService) Process(ctx context.Context, in ProcessInput) (*ProcessResult, error) {
	if in.RequestID == "" {
		return nil, validationError("request id is required")
	}

	var status models.ContactStatus
	switch in.Decision {
	case DecisionApprove:
		status = models.ContactApproved
	case DecisionReject:
		status = models.ContactRejected
	default:
		return nil, validationError("decision must be approve or reject")
	}
	if in.Role != "" && !in.Role.Provisionable() {
		return nil, validationError("role must be customer or driver")
	}

	req, err := s.stg.ContactRequest().UpdateStatus(ctx, in.RequestID, status, strings.TrimSpace(in.AdminNotes))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update contact request: %w", err)
	}

	s.log.Info("contact request processed",
		logger.String("request_id", req.ID),
		logger.String("status", string(req.Status)),
	)

	result := &ProcessResult{Request: req}
	if in.Decision == DecisionReject || !in.CreateAccount {
		s.admin.Notify(ctx, fmt.Sprintf("Contact request from %s marked %s", req.Email, req.Status))
		return result, nil
	}

	role := in.Role
	if role == "" {
		role = req.RequestedRole
	}

	account, err := s.CreateAccount(ctx, AccountInput{
		Email: req.Email,
		Name:  req.Name,
		Phone: req.Phone,
		Role:  role,
	})
	if err != nil {
		return nil, err
	}

	result.AccountCreated = true
	result.Account = account
	s.admin.Notify(ctx, fmt.Sprintf("Contact request from %s approved, %s account created", req.Email, role))
	return result, nil
}

// CreateAccount provisions identity, role profile, role flag and credential email.
// A failed profile insert deletes the identity created just before it.
func (s *provisioningService) CreateAccount(ctx context.Context, in AccountInput) (*AccountResult, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)

	if !validEmail(in.Email) {
		return nil, validationError("invalid email format")
	}
	if in.Name == "" {
		return nil, validationError("name is required")
	}
	if !in.Role.Provisionable() {
		return nil, validationError("role must be customer or driver")
	}

	existing, err := s.stg.Identity().GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("lookup identity: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: a user with email %s already exists", ErrConflict, in.Email)
	}

	plain := s.password()

	identity, err := s.stg.Identity().Create(ctx, in.Email, plain, models.IdentityMetadata{
		Name:  in.Name,
		Phone: in.Phone,
		Role:  in.Role,
	})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, fmt.Errorf("%w: a user with email %s already exists", ErrConflict, in.Email)
		}
		return nil, fmt.Errorf("%w for %s: %v", ErrIdentityCreation, in.Email, err)
	}

	profileID, err := s.createProfile(ctx, identity.ID, in)
	if err != nil {
		if delErr := s.stg.Identity().Delete(ctx, identity.ID); delErr != nil {
			s.log.Error("compensating identity delete failed, identity is orphaned",
				logger.String("user_id", identity.ID),
				logger.String("email", in.Email),
				logger.Error(delErr),
			)
		} else {
			s.log.Warning("identity deleted after profile creation failure", logger.String("user_id", identity.ID))
		}
		return nil, fmt.Errorf("%w for %s: %v", ErrProfileCreation, in.Role, err)
	}

	if err := s.stg.Role().Set(ctx, identity.ID, in.Role); err != nil {
		if errors.Is(err, storage.ErrMissingRelation) {
			s.log.Warning("role flag table missing, skipping role flag", logger.String("user_id", identity.ID))
		} else {
			s.log.Error("failed to set role flag", logger.String("user_id", identity.ID), logger.Error(err))
		}
	}

	// last-resort recovery channel for the credential
	s.log.Warning("temporary credentials issued",
		logger.String("email", in.Email),
		logger.String("role", in.Role.String()),
		logger.String("password", plain),
	)

	delivery := s.mail.SendCredentials(ctx, in.Email, in.Name, plain, in.Role.String())
	if !delivery.OK() {
		s.log.Warning("credential email not delivered",
			logger.String("email", in.Email),
			logger.String("reason", delivery.Error),
		)
	}

	s.notify.Notify(ctx, identity.ID, "Welcome aboard",
		fmt.Sprintf("Your %s account is ready.", in.Role), models.NotificationAccount)

	s.log.Info("account provisioned",
		logger.String("user_id", identity.ID),
		logger.String("profile_id", profileID),
		logger.String("role", in.Role.String()),
	)

	return &AccountResult{
		UserID:    identity.ID,
		ProfileID: profileID,
		Email:     in.Email,
		Role:      in.Role,
		EmailSent: delivery.OK(),
		Delivery:  delivery,
	}, nil
}

func (s *provisioningService) createProfile(ctx context.Context, userID string, in AccountInput) (string, error) {
	switch in.Role {
	case models.RoleDriver:
		d, err := s.stg.Driver().Create(ctx, &models.Driver{
			UserID:        userID,
			Name:          in.Name,
			Email:         in.Email,
			Phone:         in.Phone,
			Status:        models.ProfileActive,
			Rating:        models.DefaultRating,
			TotalRides:    0,
			VehicleType:   in.VehicleType,
			VehicleNumber: in.VehicleNumber,
			LicenseNumber: in.LicenseNumber,
		})
		if err != nil {
			return "", err
		}
		return d.ID, nil
	case models.RoleCustomer:
		c, err := s.stg.Customer().Create(ctx, &models.Customer{
			UserID:     userID,
			Name:       in.Name,
			Email:      in.Email,
			Phone:      in.Phone,
			Status:     models.ProfileActive,
			Rating:     models.DefaultRating,
			TotalRides: 0,
			Address:    in.Address,
		})
		if err != nil {
			return "", err
		}
		return c.ID, nil
	}
	return "", fmt.Errorf("unsupported role %q", in.Role)
}
