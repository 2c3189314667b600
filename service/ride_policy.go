package service

import (
	"ridebook/pkg/auth"
	"ridebook/pkg/models"
)

var (
	driverEditable = []models.RideField{
		models.FieldCurrentLocation,
		models.FieldEstimatedArrivalTime,
		models.FieldDriverNotes,
	}
	driverEditableInProgress = []models.RideField{
		models.FieldCurrentLocation,
		models.FieldEstimatedArrivalTime,
	}
	customerEditable = []models.RideField{
		models.FieldPickupTime,
		models.FieldPickupDate,
		models.FieldPassengers,
		models.FieldSpecialRequirements,
	}
)

// ownsRide reports whether a requester may see the ride at all.
func ownsRide(ride *models.Ride, r auth.Requester) bool {
	switch r.Role {
	case models.RoleAdmin:
		return true
	case models.RoleDriver:
		return r.ProfileID != "" && ride.AssignedTo(r.ProfileID)
	case models.RoleCustomer:
		return r.ProfileID != "" && ride.CustomerID == r.ProfileID
	default:
		return false
	}
}

// AuthorizeRideEdit checks ownership and then the status rules, returning the
// subset of requested fields the requester may write.
func AuthorizeRideEdit(ride *models.Ride, r auth.Requester, requested []models.RideField) ([]models.RideField, error) {
	if !ownsRide(ride, r) {
		return nil, ErrNotFound
	}
	return EvaluateRideEdit(ride.Status, r.Role, requested)
}

// EvaluateRideEdit applies the per-role field rules for a ride in the given status.
//
// Admins are not blocked on closed rides. Drivers mid-trip lose driverNotes silently,
// while customers mid-trip are rejected unless the request is specialRequirements
// alone. Both behaviours are kept as product currently defines them.
func EvaluateRideEdit(status models.RideStatus, role models.Role, requested []models.RideField) ([]models.RideField, error) {
	if status.Closed() && role != models.RoleAdmin {
		return nil, ErrRideClosed
	}
	if len(requested) == 0 {
		return nil, ErrNoValidFields
	}

	switch role {
	case models.RoleAdmin:
		return requested, nil

	case models.RoleDriver:
		allowed := driverEditable
		if status == models.RideInProgress {
			allowed = driverEditableInProgress
		}
		fields := intersect(requested, allowed)
		if len(fields) == 0 {
			return nil, ErrNoValidFields
		}
		return fields, nil

	case models.RoleCustomer:
		if status == models.RideInProgress {
			if len(requested) == 1 && requested[0] == models.FieldSpecialRequirements {
				return requested, nil
			}
			return nil, ErrInProgressRestricted
		}
		fields := intersect(requested, customerEditable)
		if len(fields) == 0 {
			return nil, ErrNoValidFields
		}
		return fields, nil
	}

	return nil, ErrForbidden
}

func intersect(requested, allowed []models.RideField) []models.RideField {
	var out []models.RideField
	for _, f := range requested {
		for _, a := range allowed {
			if f == a {
				out = append(out, f)
				break
			}
		}
	}
	return out
}
