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

type customerRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewCustomerRepo(db *pgxpool.Pool, log logger.ILogger) storage.ICustomerStorage {
	return &customerRepo{db: db, log: log}
}

const customerColumns = `id, user_id, name, email, phone, status, rating, total_rides, address, created_at, updated_at`

func scanCustomer(row pgx.Row) (*models.Customer, error) {
	var c models.Customer
	err := row.Scan(
		&c.ID, &c.UserID, &c.Name, &c.Email, &c.Phone, &c.Status, &c.Rating, &c.TotalRides,
		&c.Address, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *customerRepo) Create(ctx context.Context, c *models.Customer) (*models.Customer, error) {
	query := `
		INSERT INTO customers (id, user_id, name, email, phone, status, rating, total_rides, address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + customerColumns

	created, err := scanCustomer(r.db.QueryRow(ctx, query,
		uuid.NewString(),
		c.UserID,
		c.Name,
		c.Email,
		c.Phone,
		c.Status,
		c.Rating,
		c.TotalRides,
		c.Address,
	))
	if err != nil {
		r.log.Error("failed to create customer profile", logger.String("user_id", c.UserID), logger.Error(err))
		return nil, err
	}
	return created, nil
}

func (r *customerRepo) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
}

func (r *customerRepo) GetByUserID(ctx context.Context, userID string) (*models.Customer, error) {
	return r.getOne(ctx, `SELECT `+customerColumns+` FROM customers WHERE user_id = $1`, userID)
}

func (r *customerRepo) getOne(ctx context.Context, query string, arg string) (*models.Customer, error) {
	c, err := scanCustomer(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.log.Error("failed to get customer", logger.Error(err))
		return nil, err
	}
	return c, nil
}

func (r *customerRepo) GetAll(ctx context.Context) ([]*models.Customer, error) {
	rows, err := r.db.Query(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY created_at DESC`)
	if err != nil {
		r.log.Error("failed to list customers", logger.Error(err))
		return nil, err
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}
