package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridebook/pkg/auth"
	"ridebook/pkg/logger"
	"ridebook/pkg/models"
	"ridebook/storage"
)

type rideFixture struct {
	stg       *memStore
	svc       RideService
	admin     auth.Requester
	customer  auth.Requester
	other     auth.Requester
	driver    auth.Requester
	driverRow *models.Driver
	ride      *models.Ride
}

func newRideFixture(status models.RideStatus) *rideFixture {
	stg := newMemStore()
	log := logger.NewNop()

	cus := stg.addCustomer("usr-cus")
	otherCus := stg.addCustomer("usr-other")
	drv := stg.addDriver("usr-drv")
	driverID := drv.ID

	ride := stg.addRide(models.Ride{
		CustomerID:      cus.ID,
		DriverID:        &driverID,
		PickupLocation:  "Airport",
		DropoffLocation: "Hotel",
		PickupDate:      "2026-05-01",
		PickupTime:      "09:30",
		Status:          status,
		Passengers:      2,
		Price:           40,
		PaymentStatus:   models.PaymentPending,
	})

	return &rideFixture{
		stg:       stg,
		svc:       NewRideService(stg, NewNotificationService(stg, log), log),
		admin:     auth.Requester{UserID: "usr-admin", Role: models.RoleAdmin},
		customer:  auth.Requester{UserID: cus.UserID, Role: models.RoleCustomer, ProfileID: cus.ID},
		other:     auth.Requester{UserID: otherCus.UserID, Role: models.RoleCustomer, ProfileID: otherCus.ID},
		driver:    auth.Requester{UserID: drv.UserID, Role: models.RoleDriver, ProfileID: drv.ID},
		driverRow: drv,
		ride:      ride,
	}
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestUpdateForeignRideIsNotFound(t *testing.T) {
	f := newRideFixture(models.RidePending)

	_, err := f.svc.Update(context.Background(), f.other, f.ride.ID, models.RidePatch{PickupTime: strPtr("10:00")})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, f.stg.rideUpdates)

	stored, err := f.stg.Ride().GetByID(context.Background(), f.ride.ID)
	require.NoError(t, err)
	assert.Equal(t, "09:30", stored.PickupTime)
}

func TestUpdateMissingRide(t *testing.T) {
	f := newRideFixture(models.RidePending)
	_, err := f.svc.Update(context.Background(), f.admin, "nope", models.RidePatch{PickupTime: strPtr("10:00")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateCustomerWritesOnlyPermittedFields(t *testing.T) {
	f := newRideFixture(models.RideConfirmed)

	updated, err := f.svc.Update(context.Background(), f.customer, f.ride.ID, models.RidePatch{
		PickupTime: strPtr("11:15"),
		Passengers: intPtr(3),
		AdminNotes: strPtr("vip"),
	})
	require.NoError(t, err)
	assert.Equal(t, "11:15", updated.PickupTime)
	assert.Equal(t, 3, updated.Passengers)
	assert.Empty(t, updated.AdminNotes)
	assert.Equal(t, storage.RideScope{CustomerID: f.customer.ProfileID}, f.stg.lastScope)
}

func TestUpdateCustomerInProgress(t *testing.T) {
	f := newRideFixture(models.RideInProgress)

	_, err := f.svc.Update(context.Background(), f.customer, f.ride.ID, models.RidePatch{
		SpecialRequirements: strPtr("child seat"),
		PickupTime:          strPtr("12:00"),
	})
	assert.ErrorIs(t, err, ErrInProgressRestricted)

	updated, err := f.svc.Update(context.Background(), f.customer, f.ride.ID, models.RidePatch{
		SpecialRequirements: strPtr("child seat"),
	})
	require.NoError(t, err)
	assert.Equal(t, "child seat", updated.SpecialRequirements)
}

func TestUpdateDriverInProgressDropsNotes(t *testing.T) {
	f := newRideFixture(models.RideInProgress)

	updated, err := f.svc.Update(context.Background(), f.driver, f.ride.ID, models.RidePatch{
		CurrentLocation: strPtr("5th Ave"),
		DriverNotes:     strPtr("traffic"),
	})
	require.NoError(t, err)
	assert.Equal(t, "5th Ave", updated.CurrentLocation)
	assert.Empty(t, updated.DriverNotes)
	assert.Equal(t, storage.RideScope{DriverID: f.driver.ProfileID}, f.stg.lastScope)
}

func TestUpdateClosedRide(t *testing.T) {
	f := newRideFixture(models.RideCompleted)

	_, err := f.svc.Update(context.Background(), f.customer, f.ride.ID, models.RidePatch{PickupTime: strPtr("10:00")})
	assert.ErrorIs(t, err, ErrRideClosed)

	updated, err := f.svc.Update(context.Background(), f.admin, f.ride.ID, models.RidePatch{AdminNotes: strPtr("refund issued")})
	require.NoError(t, err)
	assert.Equal(t, "refund issued", updated.AdminNotes)
}

func TestUpdateValidatesValues(t *testing.T) {
	f := newRideFixture(models.RidePending)

	bad := models.RideStatus("Teleported")
	_, err := f.svc.Update(context.Background(), f.admin, f.ride.ID, models.RidePatch{Status: &bad})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.Update(context.Background(), f.customer, f.ride.ID, models.RidePatch{PickupDate: strPtr("01/05/2026")})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.Update(context.Background(), f.admin, f.ride.ID, models.RidePatch{DriverID: strPtr("drv-missing")})
	assert.ErrorIs(t, err, ErrValidation)

	assert.Zero(t, f.stg.rideUpdates)
}

func TestUpdateStatusChangeNotifiesParties(t *testing.T) {
	f := newRideFixture(models.RidePending)

	confirmed := models.RideConfirmed
	_, err := f.svc.Update(context.Background(), f.admin, f.ride.ID, models.RidePatch{Status: &confirmed})
	require.NoError(t, err)

	forCustomer, err := f.stg.Notification().GetByUser(context.Background(), f.customer.UserID, true)
	require.NoError(t, err)
	assert.Len(t, forCustomer, 1)

	forDriver, err := f.stg.Notification().GetByUser(context.Background(), f.driver.UserID, true)
	require.NoError(t, err)
	assert.Len(t, forDriver, 1)
}

func TestUpdateAdminUnassignsDriver(t *testing.T) {
	f := newRideFixture(models.RideConfirmed)

	updated, err := f.svc.Update(context.Background(), f.admin, f.ride.ID, models.RidePatch{DriverID: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, updated.Driver)
	assert.Equal(t, storage.RideScope{}, f.stg.lastScope)
}

func TestGetAndListAreScoped(t *testing.T) {
	f := newRideFixture(models.RidePending)
	f.stg.addRide(models.Ride{CustomerID: f.other.ProfileID, Status: models.RidePending})

	_, err := f.svc.Get(context.Background(), f.other, f.ride.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := f.svc.Get(context.Background(), f.driver, f.ride.ID)
	require.NoError(t, err)
	assert.Equal(t, f.ride.ID, got.ID)

	mine, err := f.svc.List(context.Background(), f.customer, models.RideFilter{CustomerID: f.other.ProfileID})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, f.ride.ID, mine[0].ID)

	all, err := f.svc.List(context.Background(), f.admin, models.RideFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = f.svc.List(context.Background(), f.admin, models.RideFilter{Status: "Lost"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCancelRules(t *testing.T) {
	t.Run("customer before start", func(t *testing.T) {
		f := newRideFixture(models.RideConfirmed)
		ride, err := f.svc.Cancel(context.Background(), f.customer, f.ride.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RideCancelled, ride.Status)
	})

	t.Run("customer in progress", func(t *testing.T) {
		f := newRideFixture(models.RideInProgress)
		_, err := f.svc.Cancel(context.Background(), f.customer, f.ride.ID)
		assert.ErrorIs(t, err, ErrCancelNotAllowed)
	})

	t.Run("admin in progress", func(t *testing.T) {
		f := newRideFixture(models.RideInProgress)
		ride, err := f.svc.Cancel(context.Background(), f.admin, f.ride.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RideCancelled, ride.Status)
	})

	t.Run("already closed", func(t *testing.T) {
		f := newRideFixture(models.RideCompleted)
		_, err := f.svc.Cancel(context.Background(), f.admin, f.ride.ID)
		assert.ErrorIs(t, err, ErrRideClosed)
	})

	t.Run("driver", func(t *testing.T) {
		f := newRideFixture(models.RidePending)
		_, err := f.svc.Cancel(context.Background(), f.driver, f.ride.ID)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("foreign customer", func(t *testing.T) {
		f := newRideFixture(models.RidePending)
		_, err := f.svc.Cancel(context.Background(), f.other, f.ride.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCreateByCustomer(t *testing.T) {
	f := newRideFixture(models.RidePending)

	ride, err := f.svc.Create(context.Background(), f.customer, CreateRideInput{
		CustomerID:      f.other.ProfileID,
		DriverID:        f.driverRow.ID,
		PickupLocation:  " Station ",
		DropoffLocation: "Museum",
		PickupDate:      "2026-06-01",
		PickupTime:      "08:00",
		Price:           99,
	})
	require.NoError(t, err)
	assert.Equal(t, f.customer.ProfileID, ride.CustomerID)
	assert.Nil(t, ride.DriverID)
	assert.Zero(t, ride.Price)
	assert.Equal(t, 1, ride.Passengers)
	assert.Equal(t, "Station", ride.PickupLocation)
	assert.Equal(t, models.RidePending, ride.Status)
	assert.Equal(t, models.PaymentPending, ride.PaymentStatus)
	assert.Equal(t, f.customer.UserID, ride.CreatedBy)
}

func TestCreateByAdminAssignsDriver(t *testing.T) {
	f := newRideFixture(models.RidePending)

	ride, err := f.svc.Create(context.Background(), f.admin, CreateRideInput{
		CustomerID:      f.customer.ProfileID,
		DriverID:        f.driverRow.ID,
		PickupLocation:  "Station",
		DropoffLocation: "Museum",
		PickupDate:      "2026-06-01",
		PickupTime:      "08:00",
		Passengers:      3,
		Price:           55,
	})
	require.NoError(t, err)
	require.NotNil(t, ride.Driver)
	assert.Equal(t, f.driverRow.ID, ride.Driver.ID)

	inbox, err := f.stg.Notification().GetByUser(context.Background(), f.driver.UserID, false)
	require.NoError(t, err)
	assert.Len(t, inbox, 1)
}

func TestCreateValidation(t *testing.T) {
	f := newRideFixture(models.RidePending)
	valid := CreateRideInput{
		CustomerID:      f.customer.ProfileID,
		PickupLocation:  "A",
		DropoffLocation: "B",
		PickupDate:      "2026-06-01",
		PickupTime:      "08:00",
	}

	cases := map[string]func(in *CreateRideInput){
		"missing customer": func(in *CreateRideInput) { in.CustomerID = "" },
		"unknown customer": func(in *CreateRideInput) { in.CustomerID = "cus-missing" },
		"blank pickup":     func(in *CreateRideInput) { in.PickupLocation = "  " },
		"bad date":         func(in *CreateRideInput) { in.PickupDate = "2026-13-01" },
		"bad time":         func(in *CreateRideInput) { in.PickupTime = "8am" },
		"negative price":   func(in *CreateRideInput) { in.Price = -1 },
		"bad passengers":   func(in *CreateRideInput) { in.Passengers = -2 },
		"unknown driver":   func(in *CreateRideInput) { in.DriverID = "drv-missing" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := valid
			mutate(&in)
			_, err := f.svc.Create(context.Background(), f.admin, in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	_, err := f.svc.Create(context.Background(), f.driver, valid)
	assert.ErrorIs(t, err, ErrForbidden)
}
