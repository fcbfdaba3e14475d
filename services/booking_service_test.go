package services

import (
	"context"
	"errors"
	"instaclean-backend/models"
	"instaclean-backend/policy"
	"instaclean-backend/testhelpers"
	"instaclean-backend/utils"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	mu      sync.Mutex
	created []string
	changed []models.BookingStatus
}

func (n *recordingNotifier) BookingCreated(_ context.Context, b *models.Booking) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, b.BookingNumber)
}

func (n *recordingNotifier) BookingStatusChanged(_ context.Context, b *models.Booking) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changed = append(n.changed, b.Status)
}

// scriptedNumbers replays numbers in order and repeats the last one.
type scriptedNumbers struct {
	numbers []string
	calls   int
}

func (s *scriptedNumbers) Next() string {
	n := s.numbers[min(s.calls, len(s.numbers)-1)]
	s.calls++
	return n
}

type bookingFixture struct {
	db           *gorm.DB
	svc          *BookingService
	notifier     *recordingNotifier
	service      models.Service
	propertyType models.PropertyType
	admin        policy.Actor
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	db := testhelpers.NewTestDB(t)
	notifier := &recordingNotifier{}
	admin := testhelpers.CreateUser(t, db, models.RoleAdmin)
	return &bookingFixture{
		db:           db,
		svc:          NewBookingService(db, notifier, NewBookingNumberGenerator("IC")),
		notifier:     notifier,
		service:      testhelpers.CreateService(t, db, "Standard Cleaning", 99, 120),
		propertyType: testhelpers.CreatePropertyType(t, db, "House"),
		admin:        policy.AccountActor(admin.ID, models.RoleAdmin),
	}
}

func (f *bookingFixture) guestInput() CreateBookingInput {
	return CreateBookingInput{
		ServiceID:      f.service.ID,
		PropertyTypeID: f.propertyType.ID,
		ScheduledDate:  time.Now().AddDate(0, 0, 3).Format(utils.DateLayout),
		ScheduledTime:  "09:00 AM",
		Address:        "12 Main Street",
		City:           "Accra",
		State:          "GA",
		GuestName:      "Jane",
		GuestPhone:     "0551234567",
	}
}

func (f *bookingFixture) createGuestBooking(t *testing.T) *models.Booking {
	t.Helper()
	booking, err := f.svc.Create(context.Background(), policy.Anonymous(), f.guestInput())
	require.NoError(t, err)
	return booking
}

func strPtr(s string) *string { return &s }

func statusUpdate(status models.BookingStatus) UpdateBookingInput {
	return UpdateBookingInput{Status: strPtr(string(status))}
}

func TestBookingService_CreateGuestBooking(t *testing.T) {
	f := newBookingFixture(t)

	booking := f.createGuestBooking(t)

	assert.Equal(t, models.BookingStatusPending, booking.Status)
	assert.Equal(t, 99.0, booking.EstimatedPrice)
	assert.Equal(t, 120, booking.EstimatedDuration)
	assert.Nil(t, booking.UserID)
	assert.Nil(t, booking.CompletedAt)
	assert.Equal(t, "Jane", booking.GuestName)
	assert.Equal(t, models.ContactMethodEmail, booking.ContactMethod)
	assert.True(t, strings.HasPrefix(booking.BookingNumber, "IC-"))
	require.NotNil(t, booking.Service)
	assert.Equal(t, "Standard Cleaning", booking.Service.Name)
	assert.Equal(t, []string{booking.BookingNumber}, f.notifier.created)
}

func TestBookingService_CreateSnapshotsServiceTerms(t *testing.T) {
	f := newBookingFixture(t)
	booking := f.createGuestBooking(t)

	require.NoError(t, f.db.Model(&f.service).Updates(map[string]any{"base_price": 149, "duration": 180}).Error)

	reloaded, err := f.svc.Get(context.Background(), f.admin, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, 99.0, reloaded.EstimatedPrice)
	assert.Equal(t, 120, reloaded.EstimatedDuration)
}

func TestBookingService_CreateWithPriceOverride(t *testing.T) {
	f := newBookingFixture(t)
	in := f.guestInput()
	price := 80.0
	in.EstimatedPrice = &price

	booking, err := f.svc.Create(context.Background(), policy.Anonymous(), in)
	require.NoError(t, err)
	assert.Equal(t, 80.0, booking.EstimatedPrice)
}

func TestBookingService_CreateCustomerBookingUsesAccount(t *testing.T) {
	f := newBookingFixture(t)
	customer := testhelpers.CreateUser(t, f.db, models.RoleCustomer)

	booking, err := f.svc.Create(context.Background(), policy.AccountActor(customer.ID, models.RoleCustomer), f.guestInput())
	require.NoError(t, err)

	require.NotNil(t, booking.UserID)
	assert.Equal(t, customer.ID, *booking.UserID)
	assert.Empty(t, booking.GuestName)
	assert.Empty(t, booking.GuestPhone)
}

func TestBookingService_StaffBookingOnBehalfOfGuest(t *testing.T) {
	f := newBookingFixture(t)
	staff := testhelpers.CreateUser(t, f.db, models.RoleStaff)

	booking, err := f.svc.Create(context.Background(), policy.AccountActor(staff.ID, models.RoleStaff), f.guestInput())
	require.NoError(t, err)
	assert.Nil(t, booking.UserID)
	assert.Equal(t, "Jane", booking.GuestName)
}

func TestBookingService_CreateValidation(t *testing.T) {
	f := newBookingFixture(t)

	cases := map[string]func(in *CreateBookingInput){
		"missing guest details": func(in *CreateBookingInput) { in.GuestName, in.GuestPhone = "", "" },
		"short guest name":      func(in *CreateBookingInput) { in.GuestName = " J " },
		"bad phone":             func(in *CreateBookingInput) { in.GuestPhone = "12" },
		"bad email":             func(in *CreateBookingInput) { in.GuestEmail = "not-an-email" },
		"past date":             func(in *CreateBookingInput) { in.ScheduledDate = "2020-01-01" },
		"bad date":              func(in *CreateBookingInput) { in.ScheduledDate = "tomorrow" },
		"bad time":              func(in *CreateBookingInput) { in.ScheduledTime = "25:99" },
		"bad contact method":    func(in *CreateBookingInput) { in.ContactMethod = "PIGEON" },
		"unknown service":       func(in *CreateBookingInput) { in.ServiceID = uuid.New() },
		"unknown property type": func(in *CreateBookingInput) { in.PropertyTypeID = uuid.New() },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := f.guestInput()
			mutate(&in)
			_, err := f.svc.Create(context.Background(), policy.Anonymous(), in)
			assert.True(t, errors.Is(err, utils.ErrValidation), "got %v", err)
		})
	}
}

func TestBookingService_CreateRejectsInactiveService(t *testing.T) {
	f := newBookingFixture(t)
	require.NoError(t, f.db.Model(&f.service).Update("is_active", false).Error)

	_, err := f.svc.Create(context.Background(), policy.Anonymous(), f.guestInput())
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrValidation))
	assert.Contains(t, err.Error(), "Invalid service selected")
}

func TestBookingService_RetriesBookingNumberCollisions(t *testing.T) {
	f := newBookingFixture(t)
	f.svc.numbers = &scriptedNumbers{numbers: []string{"IC-TAKEN-0001"}}
	f.createGuestBooking(t)

	numbers := &scriptedNumbers{numbers: []string{"IC-TAKEN-0001", "IC-TAKEN-0001", "IC-FRESH-0002"}}
	f.svc.numbers = numbers

	booking := f.createGuestBooking(t)
	assert.Equal(t, "IC-FRESH-0002", booking.BookingNumber)
	assert.Equal(t, 3, numbers.calls)
}

func TestBookingService_GivesUpAfterRepeatedCollisions(t *testing.T) {
	f := newBookingFixture(t)
	f.svc.numbers = &scriptedNumbers{numbers: []string{"IC-TAKEN-0001"}}
	f.createGuestBooking(t)

	_, err := f.svc.Create(context.Background(), policy.Anonymous(), f.guestInput())
	assert.True(t, errors.Is(err, utils.ErrConflict))

	var count int64
	require.NoError(t, f.db.Model(&models.Booking{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestBookingService_AdminLifecycle(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	booking := f.createGuestBooking(t)

	confirmed, err := f.svc.Update(ctx, f.admin, booking.ID, statusUpdate(models.BookingStatusConfirmed))
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, confirmed.Status)
	assert.Nil(t, confirmed.CompletedAt)

	_, err = f.svc.Update(ctx, f.admin, booking.ID, statusUpdate(models.BookingStatusInProgress))
	require.NoError(t, err)

	finalPrice := 120.0
	completed, err := f.svc.Update(ctx, f.admin, booking.ID, UpdateBookingInput{
		Status:     strPtr(string(models.BookingStatusCompleted)),
		FinalPrice: &finalPrice,
	})
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)
	assert.WithinDuration(t, time.Now(), *completed.CompletedAt, time.Minute)
	require.NotNil(t, completed.FinalPrice)
	assert.Equal(t, 120.0, *completed.FinalPrice)
	assert.Equal(t, int64(4), completed.RowVersion)

	_, err = f.svc.Update(ctx, f.admin, booking.ID, statusUpdate(models.BookingStatusCancelled))
	assert.True(t, errors.Is(err, utils.ErrInvalidTransition))

	assert.Equal(t, []models.BookingStatus{
		models.BookingStatusConfirmed,
		models.BookingStatusInProgress,
		models.BookingStatusCompleted,
	}, f.notifier.changed)
}

func TestBookingService_AdminCompletesConfirmedBooking(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	booking := f.createGuestBooking(t)

	_, err := f.svc.Update(ctx, f.admin, booking.ID, statusUpdate(models.BookingStatusConfirmed))
	require.NoError(t, err)

	finalPrice := 120.0
	completed, err := f.svc.Update(ctx, f.admin, booking.ID, UpdateBookingInput{
		Status:     strPtr(string(models.BookingStatusCompleted)),
		FinalPrice: &finalPrice,
	})
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)
	require.NotNil(t, completed.FinalPrice)
	assert.Equal(t, 120.0, *completed.FinalPrice)
}

func TestBookingService_OwnerCannotSkipAhead(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	booking := f.createGuestBooking(t)

	_, err := f.svc.Update(ctx, f.admin, booking.ID, statusUpdate(models.BookingStatusConfirmed))
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, policy.GuestActor(booking.ID), booking.ID, statusUpdate(models.BookingStatusCompleted))
	assert.True(t, errors.Is(err, utils.ErrForbidden))
}

func TestBookingService_GuestCancelsOwnBookingOnce(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	booking := f.createGuestBooking(t)
	guest := policy.GuestActor(booking.ID)

	cancelled, err := f.svc.Update(ctx, guest, booking.ID, statusUpdate(models.BookingStatusCancelled))
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)

	_, err = f.svc.Update(ctx, guest, booking.ID, statusUpdate(models.BookingStatusCancelled))
	assert.True(t, errors.Is(err, utils.ErrInvalidTransition))
}

func TestBookingService_UpdateCheckOrder(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	booking := f.createGuestBooking(t)
	stranger := testhelpers.CreateUser(t, f.db, models.RoleCustomer)
	strangerActor := policy.AccountActor(stranger.ID, models.RoleCustomer)

	_, err := f.svc.Update(ctx, policy.Anonymous(), booking.ID, statusUpdate(models.BookingStatusCancelled))
	assert.True(t, errors.Is(err, utils.ErrUnauthorized))

	_, err = f.svc.Update(ctx, strangerActor, uuid.New(), statusUpdate(models.BookingStatusCancelled))
	assert.True(t, errors.Is(err, utils.ErrNotFound))

	_, err = f.svc.Update(ctx, strangerActor, booking.ID, statusUpdate(models.BookingStatusCancelled))
	assert.True(t, errors.Is(err, utils.ErrForbidden))

	_, err = f.svc.Update(ctx, policy.GuestActor(booking.ID), booking.ID, statusUpdate(models.BookingStatusConfirmed))
	assert.True(t, errors.Is(err, utils.ErrForbidden))

	_, err = f.svc.Update(ctx, f.admin, booking.ID, statusUpdate(models.BookingStatusCompleted))
	assert.True(t, errors.Is(err, utils.ErrInvalidTransition))

	_, err = f.svc.Update(ctx, f.admin, booking.ID, UpdateBookingInput{})
	assert.True(t, errors.Is(err, utils.ErrValidation))

	_, err = f.svc.Update(ctx, f.admin, booking.ID, UpdateBookingInput{Status: strPtr("ARCHIVED")})
	assert.True(t, errors.Is(err, utils.ErrValidation))
}

func TestBookingService_FinalPriceRules(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	booking := f.createGuestBooking(t)

	price := 150.0
	_, err := f.svc.Update(ctx, f.admin, booking.ID, UpdateBookingInput{
		Status:     strPtr(string(models.BookingStatusConfirmed)),
		FinalPrice: &price,
	})
	assert.True(t, errors.Is(err, utils.ErrValidation))

	negative := -1.0
	_, err = f.svc.Update(ctx, f.admin, booking.ID, UpdateBookingInput{FinalPrice: &negative})
	assert.True(t, errors.Is(err, utils.ErrValidation))

	for _, status := range []models.BookingStatus{models.BookingStatusConfirmed, models.BookingStatusInProgress, models.BookingStatusCompleted} {
		_, err = f.svc.Update(ctx, f.admin, booking.ID, statusUpdate(status))
		require.NoError(t, err)
	}

	corrected, err := f.svc.Update(ctx, f.admin, booking.ID, UpdateBookingInput{FinalPrice: &price})
	require.NoError(t, err)
	require.NotNil(t, corrected.FinalPrice)
	assert.Equal(t, 150.0, *corrected.FinalPrice)
	assert.NotNil(t, corrected.CompletedAt)
}

func TestBookingService_AssignAndClearStaff(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	booking := f.createGuestBooking(t)
	staff := testhelpers.CreateUser(t, f.db, models.RoleStaff)
	customer := testhelpers.CreateUser(t, f.db, models.RoleCustomer)

	assigned, err := f.svc.Update(ctx, f.admin, booking.ID, UpdateBookingInput{
		AssignedStaffID: OptionalUUID{Set: true, Value: &staff.ID},
	})
	require.NoError(t, err)
	require.NotNil(t, assigned.AssignedStaffID)
	assert.Equal(t, staff.ID, *assigned.AssignedStaffID)
	require.NotNil(t, assigned.AssignedStaff)
	assert.Equal(t, models.BookingStatusPending, assigned.Status)

	_, err = f.svc.Update(ctx, f.admin, booking.ID, UpdateBookingInput{
		AssignedStaffID: OptionalUUID{Set: true, Value: &customer.ID},
	})
	assert.True(t, errors.Is(err, utils.ErrValidation))

	cleared, err := f.svc.Update(ctx, f.admin, booking.ID, UpdateBookingInput{
		AssignedStaffID: OptionalUUID{Set: true},
	})
	require.NoError(t, err)
	assert.Nil(t, cleared.AssignedStaffID)
	assert.Empty(t, f.notifier.changed)
}

// interleaveBookingWrite runs race inside the transaction of the next booking
// update, just before its guarded UPDATE statement.
func interleaveBookingWrite(t *testing.T, db *gorm.DB, race func(tx *gorm.DB)) {
	t.Helper()
	fired := false
	err := db.Callback().Update().Before("gorm:update").Register("test:interleave_booking_write", func(tx *gorm.DB) {
		if fired || tx.Statement.Table != "bookings" {
			return
		}
		fired = true
		race(tx.Session(&gorm.Session{NewDB: true}))
	})
	require.NoError(t, err)
}

func TestBookingService_StaleWriteReportsInvalidTransition(t *testing.T) {
	f := newBookingFixture(t)
	booking := f.createGuestBooking(t)

	// A concurrent cancellation lands between the read and the write.
	interleaveBookingWrite(t, f.db, func(tx *gorm.DB) {
		require.NoError(t, tx.Model(&models.Booking{}).Where("id = ?", booking.ID).
			Updates(map[string]any{"status": models.BookingStatusCancelled, "row_version": 2}).Error)
	})

	_, err := f.svc.Update(context.Background(), f.admin, booking.ID, statusUpdate(models.BookingStatusConfirmed))
	assert.True(t, errors.Is(err, utils.ErrInvalidTransition))

	var stored models.Booking
	require.NoError(t, f.db.First(&stored, "id = ?", booking.ID).Error)
	assert.Equal(t, models.BookingStatusPending, stored.Status)
	assert.Empty(t, f.notifier.changed)
}

func TestBookingService_StaleWriteReportsConflict(t *testing.T) {
	f := newBookingFixture(t)
	booking := f.createGuestBooking(t)

	interleaveBookingWrite(t, f.db, func(tx *gorm.DB) {
		require.NoError(t, tx.Model(&models.Booking{}).Where("id = ?", booking.ID).
			Update("row_version", 2).Error)
	})

	_, err := f.svc.Update(context.Background(), f.admin, booking.ID, statusUpdate(models.BookingStatusConfirmed))
	assert.True(t, errors.Is(err, utils.ErrConflict))
}

func TestBookingService_ListIsScopedByRole(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	customer := testhelpers.CreateUser(t, f.db, models.RoleCustomer)
	staff := testhelpers.CreateUser(t, f.db, models.RoleStaff)
	customerActor := policy.AccountActor(customer.ID, models.RoleCustomer)
	staffActor := policy.AccountActor(staff.ID, models.RoleStaff)

	guestBooking := f.createGuestBooking(t)
	own, err := f.svc.Create(ctx, customerActor, f.guestInput())
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, f.admin, guestBooking.ID, UpdateBookingInput{
		AssignedStaffID: OptionalUUID{Set: true, Value: &staff.ID},
	})
	require.NoError(t, err)

	all, err := f.svc.List(ctx, f.admin, ListBookingsInput{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := f.svc.List(ctx, customerActor, ListBookingsInput{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, own.ID, mine[0].ID)

	assigned, err := f.svc.List(ctx, staffActor, ListBookingsInput{})
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, guestBooking.ID, assigned[0].ID)

	_, err = f.svc.List(ctx, policy.GuestActor(guestBooking.ID), ListBookingsInput{})
	assert.True(t, errors.Is(err, utils.ErrForbidden))

	_, err = f.svc.List(ctx, f.admin, ListBookingsInput{Status: "LOST"})
	assert.True(t, errors.Is(err, utils.ErrValidation))

	pending, err := f.svc.List(ctx, f.admin, ListBookingsInput{Status: "pending", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestBookingService_ListWithoutLimitReturnsEverything(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	for i := 0; i < 60; i++ {
		f.createGuestBooking(t)
	}

	all, err := f.svc.List(ctx, f.admin, ListBookingsInput{})
	require.NoError(t, err)
	assert.Len(t, all, 60)

	page, err := f.svc.List(ctx, f.admin, ListBookingsInput{Limit: 25})
	require.NoError(t, err)
	assert.Len(t, page, 25)

	_, err = f.svc.List(ctx, f.admin, ListBookingsInput{Limit: -1})
	assert.True(t, errors.Is(err, utils.ErrValidation))
}

func TestBookingService_GetRespectsOwnership(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	booking := f.createGuestBooking(t)

	got, err := f.svc.Get(ctx, policy.GuestActor(booking.ID), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.BookingNumber, got.BookingNumber)

	_, err = f.svc.Get(ctx, policy.Anonymous(), booking.ID)
	assert.True(t, errors.Is(err, utils.ErrUnauthorized))

	customer := testhelpers.CreateUser(t, f.db, models.RoleCustomer)
	_, err = f.svc.Get(ctx, policy.AccountActor(customer.ID, models.RoleCustomer), booking.ID)
	assert.True(t, errors.Is(err, utils.ErrForbidden))

	_, err = f.svc.Get(ctx, f.admin, uuid.New())
	assert.True(t, errors.Is(err, utils.ErrNotFound))
}

func TestBookingService_DeleteIsAdminOnly(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	booking := f.createGuestBooking(t)
	staff := testhelpers.CreateUser(t, f.db, models.RoleStaff)

	err := f.svc.Delete(ctx, policy.AccountActor(staff.ID, models.RoleStaff), booking.ID)
	assert.True(t, errors.Is(err, utils.ErrForbidden))

	require.NoError(t, f.svc.Delete(ctx, f.admin, booking.ID))

	err = f.svc.Delete(ctx, f.admin, booking.ID)
	assert.True(t, errors.Is(err, utils.ErrNotFound))
}
