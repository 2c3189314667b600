package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ridebook/pkg/logger"
	"ridebook/pkg/models"
	"ridebook/storage"
)

type rideRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewRideRepo(db *pgxpool.Pool, log logger.ILogger) storage.IRideStorage {
	return &rideRepo{db: db, log: log}
}

const rideSelect = `
	SELECT r.id, r.customer_id, r.driver_id, r.pickup_location, r.dropoff_location, r.pickup_date, r.pickup_time,
	       r.status, r.trip_type, r.vehicle_type, r.passengers, r.price, r.payment_status, r.special_requirements,
	       r.admin_notes, r.current_location, r.estimated_arrival_time, r.driver_notes, COALESCE(r.created_by::text, ''),
	       r.created_at, r.updated_at,
	       c.id, c.user_id, c.name, c.email, c.phone,
	       d.id, d.user_id, d.name, d.email, d.phone
	FROM rides r
	JOIN customers c ON c.id = r.customer_id
	LEFT JOIN drivers d ON d.id = r.driver_id
`

func scanRide(row pgx.Row) (*models.Ride, error) {
	var (
		ride     models.Ride
		customer models.PartySummary
		dID      *string
		dUserID  *string
		dName    *string
		dEmail   *string
		dPhone   *string
	)
	err := row.Scan(
		&ride.ID, &ride.CustomerID, &ride.DriverID, &ride.PickupLocation, &ride.DropoffLocation, &ride.PickupDate, &ride.PickupTime,
		&ride.Status, &ride.TripType, &ride.VehicleType, &ride.Passengers, &ride.Price, &ride.PaymentStatus, &ride.SpecialRequirements,
		&ride.AdminNotes, &ride.CurrentLocation, &ride.EstimatedArrivalTime, &ride.DriverNotes, &ride.CreatedBy,
		&ride.CreatedAt, &ride.UpdatedAt,
		&customer.ID, &customer.UserID, &customer.Name, &customer.Email, &customer.Phone,
		&dID, &dUserID, &dName, &dEmail, &dPhone,
	)
	if err != nil {
		return nil, err
	}

	ride.Customer = &customer
	if dID != nil {
		ride.Driver = &models.PartySummary{
			ID:     *dID,
			UserID: deref(dUserID),
			Name:   deref(dName),
			Email:  deref(dEmail),
			Phone:  deref(dPhone),
		}
	}
	return &ride, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *rideRepo) Create(ctx context.Context, ride *models.Ride) (*models.Ride, error) {
	query := `
		INSERT INTO rides (id, customer_id, driver_id, pickup_location, dropoff_location, pickup_date, pickup_time, status,
		                   trip_type, vehicle_type, passengers, price, payment_status, special_requirements, admin_notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NULLIF($16, '')::uuid)
		RETURNING id
	`
	var id string
	err := r.db.QueryRow(ctx, query,
		uuid.NewString(),
		ride.CustomerID,
		ride.DriverID,
		ride.PickupLocation,
		ride.DropoffLocation,
		ride.PickupDate,
		ride.PickupTime,
		ride.Status,
		ride.TripType,
		ride.VehicleType,
		ride.Passengers,
		ride.Price,
		ride.PaymentStatus,
		ride.SpecialRequirements,
		ride.AdminNotes,
		ride.CreatedBy,
	).Scan(&id)
	if err != nil {
		r.log.Error("failed to create ride", logger.Error(err))
		return nil, err
	}

	return r.GetByID(ctx, id)
}

func (r *rideRepo) GetByID(ctx context.Context, id string) (*models.Ride, error) {
	if !validID(id) {
		return nil, nil
	}
	ride, err := scanRide(r.db.QueryRow(ctx, rideSelect+` WHERE r.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.log.Error("failed to get ride by id", logger.String("id", id), logger.Error(err))
		return nil, err
	}
	return ride, nil
}

func (r *rideRepo) GetAll(ctx context.Context, filter models.RideFilter) ([]*models.Ride, error) {
	var (
		where []string
		args  []interface{}
	)
	add := func(cond string, v interface{}) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if filter.Status != "" {
		add("r.status = $%d", filter.Status)
	}
	if filter.CustomerID != "" {
		add("r.customer_id = $%d", filter.CustomerID)
	}
	if filter.DriverID != "" {
		add("r.driver_id = $%d", filter.DriverID)
	}

	query := rideSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY r.created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("failed to list rides", logger.Error(err))
		return nil, err
	}
	defer rows.Close()

	var rides []*models.Ride
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}

func (r *rideRepo) Update(ctx context.Context, id string, scope storage.RideScope, patch models.RidePatch) error {
	if !validID(id) {
		return storage.ErrNotFound
	}
	query, args, err := buildRideUpdate(id, scope, patch)
	if err != nil {
		return err
	}

	res, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		r.log.Error("failed to update ride", logger.String("id", id), logger.Error(err))
		return err
	}
	if res.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

var rideFieldColumns = map[models.RideField]string{
	models.FieldCustomerID:           "customer_id",
	models.FieldDriverID:             "driver_id",
	models.FieldPickupLocation:       "pickup_location",
	models.FieldDropoffLocation:      "dropoff_location",
	models.FieldPickupDate:           "pickup_date",
	models.FieldPickupTime:           "pickup_time",
	models.FieldStatus:               "status",
	models.FieldTripType:             "trip_type",
	models.FieldVehicleType:          "vehicle_type",
	models.FieldPassengers:           "passengers",
	models.FieldPrice:                "price",
	models.FieldPaymentStatus:        "payment_status",
	models.FieldSpecialRequirements:  "special_requirements",
	models.FieldAdminNotes:           "admin_notes",
	models.FieldCurrentLocation:      "current_location",
	models.FieldEstimatedArrivalTime: "estimated_arrival_time",
	models.FieldDriverNotes:          "driver_notes",
}

func rideFieldValue(p models.RidePatch, f models.RideField) interface{} {
	switch f {
	case models.FieldCustomerID:
		return *p.CustomerID
	case models.FieldDriverID:
		if *p.DriverID == "" {
			return nil
		}
		return *p.DriverID
	case models.FieldPickupLocation:
		return *p.PickupLocation
	case models.FieldDropoffLocation:
		return *p.DropoffLocation
	case models.FieldPickupDate:
		return *p.PickupDate
	case models.FieldPickupTime:
		return *p.PickupTime
	case models.FieldStatus:
		return string(*p.Status)
	case models.FieldTripType:
		return *p.TripType
	case models.FieldVehicleType:
		return *p.VehicleType
	case models.FieldPassengers:
		return *p.Passengers
	case models.FieldPrice:
		return *p.Price
	case models.FieldPaymentStatus:
		return string(*p.PaymentStatus)
	case models.FieldSpecialRequirements:
		return *p.SpecialRequirements
	case models.FieldAdminNotes:
		return *p.AdminNotes
	case models.FieldCurrentLocation:
		return *p.CurrentLocation
	case models.FieldEstimatedArrivalTime:
		return *p.EstimatedArrivalTime
	case models.FieldDriverNotes:
		return *p.DriverNotes
	}
	return nil
}

// buildRideUpdate renders the UPDATE for the fields present in patch. The WHERE clause
// always carries the ride id and, when scoped, the owner column.
func buildRideUpdate(id string, scope storage.RideScope, patch models.RidePatch) (string, []interface{}, error) {
	fields := patch.Fields()
	if len(fields) == 0 {
		return "", nil, errors.New("empty ride patch")
	}

	sets := make([]string, 0, len(fields)+1)
	args := make([]interface{}, 0, len(fields)+2)
	for _, f := range fields {
		args = append(args, rideFieldValue(patch, f))
		sets = append(sets, fmt.Sprintf("%s = $%d", rideFieldColumns[f], len(args)))
	}
	sets = append(sets, "updated_at = NOW()")

	args = append(args, id)
	query := fmt.Sprintf("UPDATE rides SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	switch {
	case scope.CustomerID != "":
		args = append(args, scope.CustomerID)
		query += fmt.Sprintf(" AND customer_id = $%d", len(args))
	case scope.DriverID != "":
		args = append(args, scope.DriverID)
		query += fmt.Sprintf(" AND driver_id = $%d", len(args))
	}

	return query, args, nil
}
