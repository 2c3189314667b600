package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"ridebook/pkg/logger"
	"ridebook/pkg/models"
	"ridebook/storage"
)

type identityRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewIdentityRepo(db *pgxpool.Pool, log logger.ILogger) storage.IIdentityStorage {
	return &identityRepo{db: db, log: log}
}

const identityColumns = `id, email, password_hash, metadata, email_confirmed_at, created_at`

func scanIdentity(row pgx.Row) (*models.Identity, error) {
	var i models.Identity
	err := row.Scan(&i.ID, &i.Email, &i.PasswordHash, &i.Metadata, &i.EmailConfirmedAt, &i.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// Create stores a new identity with a bcrypt hash. The email is marked confirmed.
func (r *identityRepo) Create(ctx context.Context, email, password string, metadata models.IdentityMetadata) (*models.Identity, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	query := `
		INSERT INTO identities (id, email, password_hash, metadata, email_confirmed_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING ` + identityColumns

	identity, err := scanIdentity(r.db.QueryRow(ctx, query,
		uuid.NewString(),
		strings.ToLower(strings.TrimSpace(email)),
		string(hash),
		metadata,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: identity %s", storage.ErrDuplicate, email)
		}
		r.log.Error("failed to create identity", logger.String("email", email), logger.Error(err))
		return nil, err
	}
	return identity, nil
}

func (r *identityRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.Exec(ctx, `DELETE FROM identities WHERE id = $1`, id)
	if err != nil {
		r.log.Error("failed to delete identity", logger.String("id", id), logger.Error(err))
		return err
	}
	if res.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *identityRepo) GetByEmail(ctx context.Context, email string) (*models.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE LOWER(email) = LOWER($1)`
	identity, err := scanIdentity(r.db.QueryRow(ctx, query, strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.log.Error("failed to get identity by email", logger.Error(err))
		return nil, err
	}
	return identity, nil
}

func (r *identityRepo) GetByID(ctx context.Context, id string) (*models.Identity, error) {
	if !validID(id) {
		return nil, nil
	}
	query := `SELECT ` + identityColumns + ` FROM identities WHERE id = $1`
	identity, err := scanIdentity(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.log.Error("failed to get identity by id", logger.Error(err))
		return nil, err
	}
	return identity, nil
}

func (r *identityRepo) Authenticate(ctx context.Context, email, password string) (*models.Identity, error) {
	identity, err := r.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, storage.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)); err != nil {
		return nil, storage.ErrInvalidCredentials
	}
	return identity, nil
}
