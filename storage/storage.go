package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"ridebook/pkg/models"
)

var (
	// ErrNotFound is returned by updates that matched no row.
	ErrNotFound = errors.New("record not found")
	// ErrMissingRelation means the backing table does not exist in the current schema.
	ErrMissingRelation = errors.New("relation does not exist")
	// ErrDuplicate is returned when a unique key already exists.
	ErrDuplicate = errors.New("duplicate record")
	// ErrInvalidCredentials is returned by Authenticate for an unknown email or wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type IStorage interface {
	ContactRequest() IContactRequestStorage
	Identity() IIdentityStorage
	Role() IRoleStorage
	Driver() IDriverStorage
	Customer() ICustomerStorage
	Ride() IRideStorage
	Notification() INotificationStorage
	SchemaVersion(ctx context.Context) (uint, error)
	Close()
	GetPool() *pgxpool.Pool
}

type IContactRequestStorage interface {
	Create(ctx context.Context, req *models.ContactRequest) (*models.ContactRequest, error)
	GetByID(ctx context.Context, id string) (*models.ContactRequest, error)
	GetAll(ctx context.Context, status models.ContactStatus) ([]*models.ContactRequest, error)
	UpdateStatus(ctx context.Context, id string, status models.ContactStatus, adminNotes string) (*models.ContactRequest, error)
}

// IIdentityStorage is the authentication identity collaborator.
// Get methods return nil, nil when nothing matches.
type IIdentityStorage interface {
	Create(ctx context.Context, email, password string, metadata models.IdentityMetadata) (*models.Identity, error)
	Delete(ctx context.Context, id string) error
	GetByEmail(ctx context.Context, email string) (*models.Identity, error)
	GetByID(ctx context.Context, id string) (*models.Identity, error)
	Authenticate(ctx context.Context, email, password string) (*models.Identity, error)
}

type IRoleStorage interface {
	Set(ctx context.Context, userID string, role models.Role) error
	Get(ctx context.Context, userID string) (models.Role, error)
}

type IDriverStorage interface {
	Create(ctx context.Context, d *models.Driver) (*models.Driver, error)
	GetByID(ctx context.Context, id string) (*models.Driver, error)
	GetByUserID(ctx context.Context, userID string) (*models.Driver, error)
	GetAll(ctx context.Context) ([]*models.Driver, error)
}

type ICustomerStorage interface {
	Create(ctx context.Context, c *models.Customer) (*models.Customer, error)
	GetByID(ctx context.Context, id string) (*models.Customer, error)
	GetByUserID(ctx context.Context, userID string) (*models.Customer, error)
	GetAll(ctx context.Context) ([]*models.Customer, error)
}

// RideScope restricts a ride write to the row owned by a given customer or driver.
// The zero value scopes by ride id only.
type RideScope struct {
	CustomerID string
	DriverID   string
}

type IRideStorage interface {
	Create(ctx context.Context, ride *models.Ride) (*models.Ride, error)
	GetByID(ctx context.Context, id string) (*models.Ride, error)
	GetAll(ctx context.Context, filter models.RideFilter) ([]*models.Ride, error)
	Update(ctx context.Context, id string, scope RideScope, patch models.RidePatch) error
}

type INotificationStorage interface {
	Create(ctx context.Context, n *models.Notification) (*models.Notification, error)
	GetByUser(ctx context.Context, userID string, unreadOnly bool) ([]*models.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
}

// ISessionStorage keeps the active token id per user.
type ISessionStorage interface {
	Save(ctx context.Context, userID, jti string, ttl time.Duration) error
	Active(ctx context.Context, userID string) (string, error)
	Delete(ctx context.Context, userID string) error
	Close() error
}
