// services/booking_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"instaclean-backend/models"
	"instaclean-backend/policy"
	"instaclean-backend/utils"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	maxBookingNumberAttempts = 5
	maxBookingListLimit      = 100
)

var validate = validator.New()

type CreateBookingInput struct {
	ServiceID           uuid.UUID `json:"serviceId" binding:"required"`
	PropertyTypeID      uuid.UUID `json:"propertyTypeId" binding:"required"`
	PropertySize        string    `json:"propertySize"`
	ScheduledDate       string    `json:"scheduledDate" binding:"required"`
	ScheduledTime       string    `json:"scheduledTime" binding:"required,timeslot"`
	Address             string    `json:"address" binding:"required,min=5"`
	City                string    `json:"city" binding:"required,min=2"`
	State               string    `json:"state" binding:"required,min=2"`
	ZipCode             string    `json:"zipCode"`
	SpecialInstructions string    `json:"specialInstructions"`
	ContactMethod       string    `json:"contactMethod"`
	GuestName           string    `json:"guestName"`
	GuestEmail          string    `json:"guestEmail"`
	GuestPhone          string    `json:"guestPhone"`
	EstimatedPrice      *float64  `json:"estimatedPrice" binding:"omitempty,gte=0"`
}

func (in CreateBookingInput) hasGuestFields() bool {
	return strings.TrimSpace(in.GuestName) != "" ||
		strings.TrimSpace(in.GuestEmail) != "" ||
		strings.TrimSpace(in.GuestPhone) != ""
}

// OptionalUUID tells an absent JSON field apart from an explicit null.
type OptionalUUID struct {
	Set   bool
	Value *uuid.UUID
}

func (o *OptionalUUID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var id uuid.UUID
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	o.Value = &id
	return nil
}

type UpdateBookingInput struct {
	Status          *string      `json:"status"`
	AssignedStaffID OptionalUUID `json:"assignedStaffId"`
	FinalPrice      *float64     `json:"finalPrice"`
}

func (in UpdateBookingInput) empty() bool {
	return in.Status == nil && !in.AssignedStaffID.Set && in.FinalPrice == nil
}

type ListBookingsInput struct {
	Status string
	Limit  int
}

type BookingService struct {
	db       *gorm.DB
	notifier Notifier
	numbers  NumberSource
	now      func() time.Time
}

func NewBookingService(db *gorm.DB, notifier Notifier, numbers NumberSource) *BookingService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &BookingService{db: db, notifier: notifier, numbers: numbers, now: time.Now}
}

// Create books a cleaning for actor. Customers always book on their account,
// staff and admins book on their account unless they pass guest details, and
// everyone else books as a guest.
func (s *BookingService) Create(ctx context.Context, actor policy.Actor, in CreateBookingInput) (*models.Booking, error) {
	if err := policy.Authorize(actor, policy.ActionCreateBooking, nil); err != nil {
		return nil, err
	}

	requester, err := resolveRequester(actor, in)
	if err != nil {
		return nil, err
	}

	scheduledDate, err := utils.ParseDate(in.ScheduledDate)
	if err != nil {
		return nil, utils.NewValidationError("Invalid scheduled date, expected YYYY-MM-DD")
	}
	if scheduledDate.Before(utils.DateOf(s.now())) {
		return nil, utils.NewValidationError("Scheduled date cannot be in the past")
	}
	if _, ok := utils.ParseTimeSlot(in.ScheduledTime); !ok {
		return nil, utils.NewValidationError("Invalid scheduled time")
	}
	contactMethod, err := models.ParseContactMethod(in.ContactMethod)
	if err != nil {
		return nil, utils.NewValidationError("Contact method must be EMAIL, SMS or WHATSAPP")
	}
	if in.EstimatedPrice != nil && *in.EstimatedPrice < 0 {
		return nil, utils.NewValidationError("Estimated price cannot be negative")
	}

	db := s.db.WithContext(ctx)

	var service models.Service
	if err := db.First(&service, "id = ? AND is_active = ?", in.ServiceID, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewValidationError("Invalid service selected")
		}
		return nil, utils.FromDBError(err, "")
	}
	var propertyType models.PropertyType
	if err := db.First(&propertyType, "id = ? AND is_active = ?", in.PropertyTypeID, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewValidationError("Invalid property type selected")
		}
		return nil, utils.FromDBError(err, "")
	}

	price := service.BasePrice
	if in.EstimatedPrice != nil {
		price = *in.EstimatedPrice
	}

	booking := &models.Booking{
		ServiceID:           service.ID,
		PropertyTypeID:      propertyType.ID,
		PropertySize:        strings.TrimSpace(in.PropertySize),
		ScheduledDate:       datatypes.Date(scheduledDate),
		ScheduledTime:       strings.ToUpper(strings.TrimSpace(in.ScheduledTime)),
		EstimatedDuration:   service.Duration,
		Address:             strings.TrimSpace(in.Address),
		City:                strings.TrimSpace(in.City),
		State:               strings.TrimSpace(in.State),
		ZipCode:             strings.TrimSpace(in.ZipCode),
		SpecialInstructions: strings.TrimSpace(in.SpecialInstructions),
		EstimatedPrice:      price,
		Status:              models.BookingStatusPending,
		ContactMethod:       contactMethod,
		RowVersion:          1,
	}
	booking.SetRequester(requester)

	if err := s.insertWithNumber(ctx, booking); err != nil {
		return nil, err
	}

	created, err := s.load(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	utils.Logger.WithFields(logrus.Fields{
		"booking": created.BookingNumber,
		"service": service.Name,
	}).Info("Booking created")

	s.notifier.BookingCreated(ctx, created)
	return created, nil
}

// insertWithNumber draws booking numbers until one is accepted by the unique
// index.
func (s *BookingService) insertWithNumber(ctx context.Context, booking *models.Booking) error {
	for attempt := 1; attempt <= maxBookingNumberAttempts; attempt++ {
		booking.BookingNumber = s.numbers.Next()
		err := s.db.WithContext(ctx).Create(booking).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return utils.FromDBError(err, "")
		}
		utils.Logger.Warnf("Booking number %s already taken (attempt %d)", booking.BookingNumber, attempt)
	}
	return utils.NewConflictError("Could not allocate a unique booking number, please retry")
}

func resolveRequester(actor policy.Actor, in CreateBookingInput) (models.Requester, error) {
	if actor.IsCustomer() || (actor.IsPrivileged() && !in.hasGuestFields()) {
		return models.AccountRequester{UserID: actor.Subject}, nil
	}

	name := strings.TrimSpace(in.GuestName)
	email := strings.TrimSpace(in.GuestEmail)
	phone := strings.TrimSpace(in.GuestPhone)
	if len(name) < 2 {
		return nil, utils.NewValidationError("Guest name must be at least 2 characters")
	}
	if !utils.ValidatePhone(phone) {
		return nil, utils.NewValidationError("A valid guest phone number is required")
	}
	if email != "" {
		if err := validate.Var(email, "email"); err != nil {
			return nil, utils.NewValidationError("Invalid guest email address")
		}
	}
	return models.GuestRequester{Name: name, Email: email, Phone: phone}, nil
}

func (s *BookingService) Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Booking, error) {
	if actor.IsAnonymous() {
		return nil, utils.NewUnauthorizedError("Authentication required")
	}
	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ActionReadBooking, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// List returns the bookings actor may see, newest first.
func (s *BookingService) List(ctx context.Context, actor policy.Actor, in ListBookingsInput) ([]models.Booking, error) {
	scope, err := policy.ListScope(actor)
	if err != nil {
		return nil, err
	}

	if in.Limit < 0 {
		return nil, utils.NewValidationError("Limit must be a positive number")
	}

	// Without a limit every booking in scope is returned.
	query := s.withRelations(s.db.WithContext(ctx)).Order("created_at DESC")
	if in.Limit > 0 {
		query = query.Limit(min(in.Limit, maxBookingListLimit))
	}
	query = applyScope(query, scope)
	if in.Status != "" {
		status, err := models.ParseBookingStatus(in.Status)
		if err != nil {
			return nil, utils.NewValidationError("Invalid status filter: %s", in.Status)
		}
		query = query.Where("status = ?", status)
	}

	var bookings []models.Booking
	if err := query.Find(&bookings).Error; err != nil {
		return nil, utils.FromDBError(err, "")
	}
	return bookings, nil
}

// Update applies a status transition, a staff assignment and a final price
// in one version-guarded write.
func (s *BookingService) Update(ctx context.Context, actor policy.Actor, id uuid.UUID, in UpdateBookingInput) (*models.Booking, error) {
	if actor.IsAnonymous() {
		return nil, utils.NewUnauthorizedError("Authentication required")
	}
	if in.empty() {
		return nil, utils.NewValidationError("No changes supplied")
	}

	var next *models.BookingStatus
	if in.Status != nil {
		status, err := models.ParseBookingStatus(*in.Status)
		if err != nil {
			return nil, utils.NewValidationError("Invalid status: %s", *in.Status)
		}
		next = &status
	}
	if in.FinalPrice != nil && *in.FinalPrice < 0 {
		return nil, utils.NewValidationError("Final price cannot be negative")
	}

	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	change := policy.BookingChange{
		Status:         next,
		AssignsStaff:   in.AssignedStaffID.Set,
		SetsFinalPrice: in.FinalPrice != nil,
	}
	if err := policy.AuthorizeBookingUpdate(actor, booking, change); err != nil {
		return nil, err
	}

	now := s.now()
	previous := booking.Status
	version := booking.RowVersion
	updates := map[string]any{}

	if in.FinalPrice != nil {
		completing := next != nil && *next == models.BookingStatusCompleted
		if !completing && previous != models.BookingStatusCompleted {
			return nil, utils.NewValidationError("Final price can only be set when completing a booking")
		}
	}

	if next != nil {
		if err := booking.ApplyTransition(*next, now, in.FinalPrice); err != nil {
			return nil, err
		}
		updates["status"] = booking.Status
		if booking.Status == models.BookingStatusCompleted {
			updates["completed_at"] = *booking.CompletedAt
		}
	}
	if in.FinalPrice != nil {
		updates["final_price"] = *in.FinalPrice
	}

	if in.AssignedStaffID.Set {
		if staffID := in.AssignedStaffID.Value; staffID != nil {
			if err := s.ensureTeamMember(ctx, *staffID); err != nil {
				return nil, err
			}
			updates["assigned_staff_id"] = *staffID
		} else {
			updates["assigned_staff_id"] = nil
		}
	}

	updates["row_version"] = version + 1
	updates["updated_at"] = now

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Booking{}).
			Where("id = ? AND row_version = ?", booking.ID, version).
			Updates(updates)
		if res.Error != nil {
			return utils.FromDBError(res.Error, "Booking not found")
		}
		if res.RowsAffected > 0 {
			return nil
		}

		var current models.Booking
		if err := tx.First(&current, "id = ?", booking.ID).Error; err != nil {
			return utils.FromDBError(err, "Booking not found")
		}
		if next != nil && !current.Status.CanTransitionTo(*next) {
			return utils.NewInvalidTransitionError("cannot change booking status from %s to %s", current.Status, *next)
		}
		return utils.NewConflictError("Booking was modified by someone else, please retry")
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.load(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	if updated.Status != previous {
		utils.Logger.WithFields(logrus.Fields{
			"booking": updated.BookingNumber,
			"from":    previous,
			"to":      updated.Status,
		}).Info("Booking status changed")
		s.notifier.BookingStatusChanged(ctx, updated)
	}
	return updated, nil
}

func (s *BookingService) ensureTeamMember(ctx context.Context, userID uuid.UUID) error {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !user.Role.IsTeamMember()) {
		return utils.NewValidationError("Assigned staff member not found")
	}
	return utils.FromDBError(err, "")
}

// Delete removes a booking together with its notification history.
func (s *BookingService) Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	if actor.IsAnonymous() {
		return utils.NewUnauthorizedError("Authentication required")
	}
	booking, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(actor, policy.ActionDeleteBooking, booking); err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("booking_id = ?", id).Delete(&models.NotificationLog{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Booking{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return utils.FromDBError(err, "Booking not found")
	}

	utils.Logger.Infof("Booking %s deleted", booking.BookingNumber)
	return nil
}

func (s *BookingService) load(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	if err := s.withRelations(s.db.WithContext(ctx)).First(&booking, "id = ?", id).Error; err != nil {
		return nil, utils.FromDBError(err, "Booking not found")
	}
	return &booking, nil
}

func (s *BookingService) withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Service").Preload("PropertyType").Preload("User").Preload("AssignedStaff")
}

func applyScope(query *gorm.DB, scope policy.BookingScope) *gorm.DB {
	if scope.UserID != nil {
		query = query.Where("user_id = ?", *scope.UserID)
	}
	if scope.AssignedStaffID != nil {
		query = query.Where("assigned_staff_id = ?", *scope.AssignedStaffID)
	}
	return query
}
