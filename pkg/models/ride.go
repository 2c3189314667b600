package models

import "time"

type RideStatus string

const (
	RidePending    RideStatus = "Pending"
	RideConfirmed  RideStatus = "Confirmed"
	RideInProgress RideStatus = "In Progress"
	RideCompleted  RideStatus = "Completed"
	RideCancelled  RideStatus = "Cancelled"
)

func (s RideStatus) Valid() bool {
	switch s {
	case RidePending, RideConfirmed, RideInProgress, RideCompleted, RideCancelled:
		return true
	default:
		return false
	}
}

// Closed reports whether the ride reached a terminal status.
func (s RideStatus) Closed() bool {
	return s == RideCompleted || s == RideCancelled
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "Pending"
	PaymentPaid     PaymentStatus = "Paid"
	PaymentRefunded PaymentStatus = "Refunded"
)

func (s PaymentStatus) Valid() bool {
	return s == PaymentPending || s == PaymentPaid || s == PaymentRefunded
}

type Ride struct {
	ID                   string        `json:"id"`
	CustomerID           string        `json:"customerId"`
	DriverID             *string       `json:"driverId"`
	PickupLocation       string        `json:"pickupLocation"`
	DropoffLocation      string        `json:"dropoffLocation"`
	PickupDate           string        `json:"pickupDate"`
	PickupTime           string        `json:"pickupTime"`
	Status               RideStatus    `json:"status"`
	TripType             string        `json:"tripType"`
	VehicleType          string        `json:"vehicleType"`
	Passengers           int           `json:"passengers"`
	Price                float64       `json:"price"`
	PaymentStatus        PaymentStatus `json:"paymentStatus"`
	SpecialRequirements  string        `json:"specialRequirements"`
	AdminNotes           string        `json:"adminNotes"`
	CurrentLocation      string        `json:"currentLocation"`
	EstimatedArrivalTime string        `json:"estimatedArrivalTime"`
	DriverNotes          string        `json:"driverNotes"`
	CreatedBy            string        `json:"createdBy"`
	CreatedAt            time.Time     `json:"createdAt"`
	UpdatedAt            time.Time     `json:"updatedAt"`

	Customer *PartySummary `json:"customer,omitempty"`
	Driver   *PartySummary `json:"driver,omitempty"`
}

// AssignedTo reports whether the ride's driver is the given driver profile.
func (r *Ride) AssignedTo(driverID string) bool {
	return r.DriverID != nil && *r.DriverID != "" && *r.DriverID == driverID
}

type RideFilter struct {
	Status     RideStatus
	CustomerID string
	DriverID   string
}

// RideField names a mutable ride attribute. Values match the JSON keys of RidePatch.
type RideField string

const (
	FieldCustomerID           RideField = "customerId"
	FieldDriverID             RideField = "driverId"
	FieldPickupLocation       RideField = "pickupLocation"
	FieldDropoffLocation      RideField = "dropoffLocation"
	FieldPickupDate           RideField = "pickupDate"
	FieldPickupTime           RideField = "pickupTime"
	FieldStatus               RideField = "status"
	FieldTripType             RideField = "tripType"
	FieldVehicleType          RideField = "vehicleType"
	FieldPassengers           RideField = "passengers"
	FieldPrice                RideField = "price"
	FieldPaymentStatus        RideField = "paymentStatus"
	FieldSpecialRequirements  RideField = "specialRequirements"
	FieldAdminNotes           RideField = "adminNotes"
	FieldCurrentLocation      RideField = "currentLocation"
	FieldEstimatedArrivalTime RideField = "estimatedArrivalTime"
	FieldDriverNotes          RideField = "driverNotes"
)

// RidePatch carries a partial ride update. A nil field is not part of the request.
// An empty DriverID unassigns the driver.
type RidePatch struct {
	CustomerID           *string        `json:"customerId"`
	DriverID             *string        `json:"driverId"`
	PickupLocation       *string        `json:"pickupLocation"`
	DropoffLocation      *string        `json:"dropoffLocation"`
	PickupDate           *string        `json:"pickupDate"`
	PickupTime           *string        `json:"pickupTime"`
	Status               *RideStatus    `json:"status"`
	TripType             *string        `json:"tripType"`
	VehicleType          *string        `json:"vehicleType"`
	Passengers           *int           `json:"passengers"`
	Price                *float64       `json:"price"`
	PaymentStatus        *PaymentStatus `json:"paymentStatus"`
	SpecialRequirements  *string        `json:"specialRequirements"`
	AdminNotes           *string        `json:"adminNotes"`
	CurrentLocation      *string        `json:"currentLocation"`
	EstimatedArrivalTime *string        `json:"estimatedArrivalTime"`
	DriverNotes          *string        `json:"driverNotes"`
}

// Fields lists the fields present in the patch, in declaration order.
func (p RidePatch) Fields() []RideField {
	var fields []RideField
	add := func(set bool, f RideField) {
		if set {
			fields = append(fields, f)
		}
	}
	add(p.CustomerID != nil, FieldCustomerID)
	add(p.DriverID != nil, FieldDriverID)
	add(p.PickupLocation != nil, FieldPickupLocation)
	add(p.DropoffLocation != nil, FieldDropoffLocation)
	add(p.PickupDate != nil, FieldPickupDate)
	add(p.PickupTime != nil, FieldPickupTime)
	add(p.Status != nil, FieldStatus)
	add(p.TripType != nil, FieldTripType)
	add(p.VehicleType != nil, FieldVehicleType)
	add(p.Passengers != nil, FieldPassengers)
	add(p.Price != nil, FieldPrice)
	add(p.PaymentStatus != nil, FieldPaymentStatus)
	add(p.SpecialRequirements != nil, FieldSpecialRequirements)
	add(p.AdminNotes != nil, FieldAdminNotes)
	add(p.CurrentLocation != nil, FieldCurrentLocation)
	add(p.EstimatedArrivalTime != nil, FieldEstimatedArrivalTime)
	add(p.DriverNotes != nil, FieldDriverNotes)
	return fields
}

// Only returns a copy of the patch keeping just the given fields.
func (p RidePatch) Only(fields []RideField) RidePatch {
	var out RidePatch
	for _, f := range fields {
		switch f {
		case FieldCustomerID:
			out.CustomerID = p.CustomerID
		case FieldDriverID:
			out.DriverID = p.DriverID
		case FieldPickupLocation:
			out.PickupLocation = p.PickupLocation
		case FieldDropoffLocation:
			out.DropoffLocation = p.DropoffLocation
		case FieldPickupDate:
			out.PickupDate = p.PickupDate
		case FieldPickupTime:
			out.PickupTime = p.PickupTime
		case FieldStatus:
			out.Status = p.Status
		case FieldTripType:
			out.TripType = p.TripType
		case FieldVehicleType:
			out.VehicleType = p.VehicleType
		case FieldPassengers:
			out.Passengers = p.Passengers
		case FieldPrice:
			out.Price = p.Price
		case FieldPaymentStatus:
			out.PaymentStatus = p.PaymentStatus
		case FieldSpecialRequirements:
			out.SpecialRequirements = p.SpecialRequirements
		case FieldAdminNotes:
			out.AdminNotes = p.AdminNotes
		case FieldCurrentLocation:
			out.CurrentLocation = p.CurrentLocation
		case FieldEstimatedArrivalTime:
			out.EstimatedArrivalTime = p.EstimatedArrivalTime
		case FieldDriverNotes:
			out.DriverNotes = p.DriverNotes
		}
	}
	return out
}

// Apply copies the patch onto the ride.
func (p RidePatch) Apply(r *Ride) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&r.CustomerID, p.CustomerID)
	if p.DriverID != nil {
		if *p.DriverID == "" {
			r.DriverID = nil
		} else {
			id := *p.DriverID
			r.DriverID = &id
		}
	}
	set(&r.PickupLocation, p.PickupLocation)
	set(&r.DropoffLocation, p.DropoffLocation)
	set(&r.PickupDate, p.PickupDate)
	set(&r.PickupTime, p.PickupTime)
	if p.Status != nil {
		r.Status = *p.Status
	}
	set(&r.TripType, p.TripType)
	set(&r.VehicleType, p.VehicleType)
	if p.Passengers != nil {
		r.Passengers = *p.Passengers
	}
	if p.Price != nil {
		r.Price = *p.Price
	}
	if p.PaymentStatus != nil {
		r.PaymentStatus = *p.PaymentStatus
	}
	set(&r.SpecialRequirements, p.SpecialRequirements)
	set(&r.AdminNotes, p.AdminNotes)
	set(&r.CurrentLocation, p.CurrentLocation)
	set(&r.EstimatedArrivalTime, p.EstimatedArrivalTime)
	set(&r.DriverNotes, p.DriverNotes)
}
