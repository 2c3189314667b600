package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ridebook/pkg/auth"
	"ridebook/pkg/logger"
	"ridebook/pkg/models"
	"ridebook/storage"
)

type CreateRideInput struct {
	CustomerID          string  `json:"customerId"`
	DriverID            string  `json:"driverId"`
	PickupLocation      string  `json:"pickupLocation"`
	DropoffLocation     string  `json:"dropoffLocation"`
	PickupDate          string  `json:"pickupDate"`
	PickupTime          string  `json:"pickupTime"`
	TripType            string  `json:"tripType"`
	VehicleType         string  `json:"vehicleType"`
	Passengers          int     `json:"passengers"`
	Price               float64 `json:"price"`
	SpecialRequirements string  `json:"specialRequirements"`
	AdminNotes          string  `json:"adminNotes"`
}

type RideService interface {
	Create(ctx context.Context, r auth.Requester, in CreateRideInput) (*models.Ride, error)
	Get(ctx context.Context, r auth.Requester, id string) (*models.Ride, error)
	List(ctx context.Context, r auth.Requester, filter models.RideFilter) ([]*models.Ride, error)
	Update(ctx context.Context, r auth.Requester, id string, patch models.RidePatch) (*models.Ride, error)
	Cancel(ctx context.Context, r auth.Requester, id string) (*models.Ride, error)
}

type rideService struct {
	stg    storage.IStorage
	notify NotificationService
	log    logger.ILogger
}

func NewRideService(stg storage.IStorage, notify NotificationService, log logger.ILogger) RideService {
	return &rideService{
		stg:    stg,
		notify: notify,
		log:    log,
	}
}

func (s *rideService) Create(ctx context.Context, r auth.Requester, in CreateRideInput) (*models.Ride, error) {
	switch r.Role {
	case models.RoleAdmin:
	case models.RoleCustomer:
		if r.ProfileID == "" {
			return nil, ErrForbidden
		}
		in.CustomerID = r.ProfileID
		in.DriverID = ""
		in.Price = 0
		in.AdminNotes = ""
	default:
		return nil, ErrForbidden
	}

	if err := validateCreateRide(&in); err != nil {
		return nil, err
	}

	if r.IsAdmin() {
		customer, err := s.stg.Customer().GetByID(ctx, in.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, validationError("customer %s does not exist", in.CustomerID)
		}
		if in.DriverID != "" {
			if err := s.checkDriver(ctx, in.DriverID); err != nil {
				return nil, err
			}
		}
	}

	ride := &models.Ride{
		CustomerID:          in.CustomerID,
		PickupLocation:      in.PickupLocation,
		DropoffLocation:     in.DropoffLocation,
		PickupDate:          in.PickupDate,
		PickupTime:          in.PickupTime,
		Status:              models.RidePending,
		TripType:            in.TripType,
		VehicleType:         in.VehicleType,
		Passengers:          in.Passengers,
		Price:               in.Price,
		PaymentStatus:       models.PaymentPending,
		SpecialRequirements: in.SpecialRequirements,
		AdminNotes:          in.AdminNotes,
		CreatedBy:           r.UserID,
	}
	if in.DriverID != "" {
		driverID := in.DriverID
		ride.DriverID = &driverID
	}

	created, err := s.stg.Ride().Create(ctx, ride)
	if err != nil {
		return nil, fmt.Errorf("create ride: %w", err)
	}

	s.log.Info("ride created",
		logger.String("ride_id", created.ID),
		logger.String("customer_id", created.CustomerID),
		logger.String("by", r.Role.String()),
	)

	if created.Driver != nil {
		s.notify.Notify(ctx, created.Driver.UserID, "New ride assigned",
			fmt.Sprintf("%s -> %s on %s at %s", created.PickupLocation, created.DropoffLocation, created.PickupDate, created.PickupTime),
			models.NotificationRide)
	}
	return created, nil
}

func validateCreateRide(in *CreateRideInput) error {
	in.PickupLocation = strings.TrimSpace(in.PickupLocation)
	in.DropoffLocation = strings.TrimSpace(in.DropoffLocation)

	if in.CustomerID == "" {
		return validationError("customerId is required")
	}
	if in.PickupLocation == "" || in.DropoffLocation == "" {
		return validationError("pickupLocation and dropoffLocation are required")
	}
	if !validDate(in.PickupDate) {
		return validationError("pickupDate must be YYYY-MM-DD")
	}
	if !validClock(in.PickupTime) {
		return validationError("pickupTime must be HH:MM")
	}
	if in.Passengers == 0 {
		in.Passengers = 1
	}
	if in.Passengers < 1 {
		return validationError("passengers must be at least 1")
	}
	if in.Price < 0 {
		return validationError("price must not be negative")
	}
	return nil
}

func (s *rideService) Get(ctx context.Context, r auth.Requester, id string) (*models.Ride, error) {
	ride, err := s.stg.Ride().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ride == nil || !ownsRide(ride, r) {
		return nil, ErrNotFound
	}
	return ride, nil
}

func (s *rideService) List(ctx context.Context, r auth.Requester, filter models.RideFilter) ([]*models.Ride, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, validationError("unknown status %q", filter.Status)
	}

	switch r.Role {
	case models.RoleAdmin:
	case models.RoleDriver:
		if r.ProfileID == "" {
			return nil, ErrForbidden
		}
		filter.CustomerID = ""
		filter.DriverID = r.ProfileID
	case models.RoleCustomer:
		if r.ProfileID == "" {
			return nil, ErrForbidden
		}
		filter.DriverID = ""
		filter.CustomerID = r.ProfileID
	default:
		return nil, ErrForbidden
	}

	return s.stg.Ride().GetAll(ctx, filter)
}

// Update writes the permitted part of patch and returns the refreshed ride.
func (s *rideService) Update(ctx context.Context, r auth.Requester, id string, patch models.RidePatch) (*models.Ride, error) {
	ride, err := s.stg.Ride().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ride == nil {
		return nil, ErrNotFound
	}

	allowed, err := AuthorizeRideEdit(ride, r, patch.Fields())
	if err != nil {
		return nil, err
	}
	patch = patch.Only(allowed)

	if err := validateRidePatch(patch); err != nil {
		return nil, err
	}
	if r.IsAdmin() {
		if err := s.checkReferences(ctx, patch); err != nil {
			return nil, err
		}
	}

	if err := s.stg.Ride().Update(ctx, id, scopeFor(r), patch); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update ride: %w", err)
	}

	updated, err := s.stg.Ride().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrNotFound
	}

	s.log.Info("ride updated",
		logger.String("ride_id", id),
		logger.String("by", r.Role.String()),
		logger.Int("fields", len(allowed)),
	)

	if updated.Status != ride.Status {
		s.notifyStatus(ctx, updated)
	}
	if updated.Driver != nil && !ride.AssignedTo(updated.Driver.ID) {
		s.notify.Notify(ctx, updated.Driver.UserID, "New ride assigned",
			fmt.Sprintf("%s -> %s on %s at %s", updated.PickupLocation, updated.DropoffLocation, updated.PickupDate, updated.PickupTime),
			models.NotificationRide)
	}
	return updated, nil
}

// Cancel moves a ride to Cancelled. Customers may cancel only before the trip starts.
func (s *rideService) Cancel(ctx context.Context, r auth.Requester, id string) (*models.Ride, error) {
	if r.Role == models.RoleDriver {
		return nil, ErrForbidden
	}

	ride, err := s.stg.Ride().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ride == nil || !ownsRide(ride, r) {
		return nil, ErrNotFound
	}
	if ride.Status.Closed() {
		return nil, ErrRideClosed
	}
	if r.Role == models.RoleCustomer && ride.Status != models.RidePending && ride.Status != models.RideConfirmed {
		return nil, ErrCancelNotAllowed
	}

	cancelled := models.RideCancelled
	if err := s.stg.Ride().Update(ctx, id, scopeFor(r), models.RidePatch{Status: &cancelled}); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("cancel ride: %w", err)
	}

	updated, err := s.stg.Ride().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrNotFound
	}

	s.log.Info("ride cancelled", logger.String("ride_id", id), logger.String("by", r.Role.String()))
	s.notifyStatus(ctx, updated)
	return updated, nil
}

func scopeFor(r auth.Requester) storage.RideScope {
	switch r.Role {
	case models.RoleCustomer:
		return storage.RideScope{CustomerID: r.ProfileID}
	case models.RoleDriver:
		return storage.RideScope{DriverID: r.ProfileID}
	}
	return storage.RideScope{}
}

func validateRidePatch(p models.RidePatch) error {
	if p.Status != nil && !p.Status.Valid() {
		return validationError("unknown ride status %q", *p.Status)
	}
	if p.PaymentStatus != nil && !p.PaymentStatus.Valid() {
		return validationError("unknown payment status %q", *p.PaymentStatus)
	}
	if p.Passengers != nil && *p.Passengers < 1 {
		return validationError("passengers must be at least 1")
	}
	if p.Price != nil && *p.Price < 0 {
		return validationError("price must not be negative")
	}
	if p.PickupDate != nil && !validDate(*p.PickupDate) {
		return validationError("pickupDate must be YYYY-MM-DD")
	}
	if p.PickupTime != nil && !validClock(*p.PickupTime) {
		return validationError("pickupTime must be HH:MM")
	}
	if p.PickupLocation != nil && strings.TrimSpace(*p.PickupLocation) == "" {
		return validationError("pickupLocation must not be empty")
	}
	if p.DropoffLocation != nil && strings.TrimSpace(*p.DropoffLocation) == "" {
		return validationError("dropoffLocation must not be empty")
	}
	if p.CustomerID != nil && *p.CustomerID == "" {
		return validationError("customerId must not be empty")
	}
	return nil
}

func (s *rideService) checkReferences(ctx context.Context, p models.RidePatch) error {
	if p.DriverID != nil && *p.DriverID != "" {
		if err := s.checkDriver(ctx, *p.DriverID); err != nil {
			return err
		}
	}
	if p.CustomerID != nil {
		c, err := s.stg.Customer().GetByID(ctx, *p.CustomerID)
		if err != nil {
			return err
		}
		if c == nil {
			return validationError("customer %s does not exist", *p.CustomerID)
		}
	}
	return nil
}

func (s *rideService) checkDriver(ctx context.Context, id string) error {
	d, err := s.stg.Driver().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if d == nil {
		return validationError("driver %s does not exist", id)
	}
	return nil
}

func (s *rideService) notifyStatus(ctx context.Context, ride *models.Ride) {
	msg := fmt.Sprintf("Ride %s -> %s is now %s", ride.PickupLocation, ride.DropoffLocation, ride.Status)
	if ride.Customer != nil {
		s.notify.Notify(ctx, ride.Customer.UserID, "Ride status changed", msg, models.NotificationRide)
	}
	if ride.Driver != nil {
		s.notify.Notify(ctx, ride.Driver.UserID, "Ride status changed", msg, models.NotificationRide)
	}
}
