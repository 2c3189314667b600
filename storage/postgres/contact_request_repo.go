package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ridebook/pkg/logger"
	"ridebook/pkg/models"
	"ridebook/storage"
)

type contactRequestRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewContactRequestRepo(db *pgxpool.Pool, log logger.ILogger) storage.IContactRequestStorage {
	return &contactRequestRepo{db: db, log: log}
}

const contactRequestColumns = `id, name, email, phone, requested_role, message, status, admin_notes, created_at, updated_at`

func scanContactRequest(row pgx.Row) (*models.ContactRequest, error) {
	var c models.ContactRequest
	err := row.Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.RequestedRole, &c.Message, &c.Status, &c.AdminNotes, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *contactRequestRepo) Create(ctx context.Context, req *models.ContactRequest) (*models.ContactRequest, error) {
	query := `
		INSERT INTO contact_requests (id, name, email, phone, requested_role, message, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + contactRequestColumns

	created, err := scanContactRequest(r.db.QueryRow(ctx, query,
		uuid.NewString(),
		req.Name,
		req.Email,
		req.Phone,
		req.RequestedRole,
		req.Message,
		models.ContactPending,
	))
	if err != nil {
		r.log.Error("failed to create contact request", logger.Error(err))
		return nil, err
	}
	return created, nil
}

func (r *contactRequestRepo) GetByID(ctx context.Context, id string) (*models.ContactRequest, error) {
	if !validID(id) {
		return nil, nil
	}
	query := `SELECT ` + contactRequestColumns + ` FROM contact_requests WHERE id = $1`
	c, err := scanContactRequest(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.log.Error("failed to get contact request", logger.String("id", id), logger.Error(err))
		return nil, err
	}
	return c, nil
}

func (r *contactRequestRepo) GetAll(ctx context.Context, status models.ContactStatus) ([]*models.ContactRequest, error) {
	query := `SELECT ` + contactRequestColumns + ` FROM contact_requests`
	var args []interface{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("failed to list contact requests", logger.Error(err))
		return nil, err
	}
	defer rows.Close()

	var list []*models.ContactRequest
	for rows.Next() {
		c, err := scanContactRequest(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (r *contactRequestRepo) UpdateStatus(ctx context.Context, id string, status models.ContactStatus, adminNotes string) (*models.ContactRequest, error) {
	if !validID(id) {
		return nil, storage.ErrNotFound
	}
	query := `
		UPDATE contact_requests
		SET status = $1, admin_notes = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING ` + contactRequestColumns

	c, err := scanContactRequest(r.db.QueryRow(ctx, query, status, adminNotes, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		r.log.Error("failed to update contact request", logger.String("id", id), logger.Error(err))
		return nil, err
	}
	return c, nil
}
