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

type driverRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewDriverRepo(db *pgxpool.Pool, log logger.ILogger) storage.IDriverStorage {
	return &driverRepo{db: db, log: log}
}

const driverColumns = `id, user_id, name, email, phone, status, rating, total_rides, vehicle_type, vehicle_number, license_number, created_at, updated_at`

func scanDriver(row pgx.Row) (*models.Driver, error) {
	var d models.Driver
	err := row.Scan(
		&d.ID, &d.UserID, &d.Name, &d.Email, &d.Phone, &d.Status, &d.Rating, &d.TotalRides,
		&d.VehicleType, &d.VehicleNumber, &d.LicenseNumber, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *driverRepo) Create(ctx context.Context, d *models.Driver) (*models.Driver, error) {
	query := `
		INSERT INTO drivers (id, user_id, name, email, phone, status, rating, total_rides, vehicle_type, vehicle_number, license_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + driverColumns

	created, err := scanDriver(r.db.QueryRow(ctx, query,
		uuid.NewString(),
		d.UserID,
		d.Name,
		d.Email,
		d.Phone,
		d.Status,
		d.Rating,
		d.TotalRides,
		d.VehicleType,
		d.VehicleNumber,
		d.LicenseNumber,
	))
	if err != nil {
		r.log.Error("failed to create driver profile", logger.String("user_id", d.UserID), logger.Error(err))
		return nil, err
	}
	return created, nil
}

func (r *driverRepo) GetByID(ctx context.Context, id string) (*models.Driver, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+driverColumns+` FROM drivers WHERE id = $1`, id)
}

func (r *driverRepo) GetByUserID(ctx context.Context, userID string) (*models.Driver, error) {
	return r.getOne(ctx, `SELECT `+driverColumns+` FROM drivers WHERE user_id = $1`, userID)
}

func (r *driverRepo) getOne(ctx context.Context, query string, arg string) (*models.Driver, error) {
	d, err := scanDriver(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.log.Error("failed to get driver", logger.Error(err))
		return nil, err
	}
	return d, nil
}

func (r *driverRepo) GetAll(ctx context.Context) ([]*models.Driver, error) {
	rows, err := r.db.Query(ctx, `SELECT `+driverColumns+` FROM drivers ORDER BY created_at DESC`)
	if err != nil {
		r.log.Error("failed to list drivers", logger.Error(err))
		return nil, err
	}
	defer rows.Close()

	var drivers []*models.Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}
	return drivers, rows.Err()
}
