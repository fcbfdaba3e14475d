// Package policy holds every role-based access rule of the backend. Handlers
// resolve an Actor once per request and ask this package; no endpoint
// branches on roles by itself.
package policy

import (
	"instaclean-backend/models"
	"instaclean-backend/utils"

	"github.com/google/uuid"
)

// RoleGuest is carried by guest booking tokens. It is never stored on a User.
const RoleGuest models.Role = "GUEST"

// Actor is the resolved caller: a role and a subject id. Account actors carry
// their user id, guest actors the id of the one booking their token names, and
// anonymous actors nothing.
type Actor struct {
	Role    models.Role
	Subject uuid.UUID
}

func Anonymous() Actor {
	return Actor{}
}

func AccountActor(userID uuid.UUID, role models.Role) Actor {
	return Actor{Role: role, Subject: userID}
}

func GuestActor(bookingID uuid.UUID) Actor {
	return Actor{Role: RoleGuest, Subject: bookingID}
}

func (a Actor) IsAnonymous() bool { return a.Role == "" || a.Subject == uuid.Nil }
func (a Actor) IsGuest() bool { return !a.IsAnonymous() && a.Role == RoleGuest }
func (a Actor) IsCustomer() bool { return !a.IsAnonymous() && a.Role == models.RoleCustomer }
func (a Actor) IsStaff() bool { return !a.IsAnonymous() && a.Role == models.RoleStaff }
func (a Actor) IsAdmin() bool { return !a.IsAnonymous() && a.Role == models.RoleAdmin }
func (a Actor) IsPrivileged() bool { return a.IsStaff() || a.IsAdmin() }

// UserID returns the account id; false for guests and anonymous callers.
func (a Actor) UserID() (uuid.UUID, bool) {
	if a.IsAnonymous() || a.IsGuest() {
		return uuid.Nil, false
	}
	return a.Subject, true
}

type Action string

const (
	ActionCreateBooking Action = "booking:create"
	ActionListBookings  Action = "booking:list"
	ActionReadBooking   Action = "booking:read"
	ActionUpdateBooking Action = "booking:update"
	ActionDeleteBooking Action = "booking:delete"
	ActionViewDashboard Action = "dashboard:view"
	ActionViewReports   Action = "reports:view"
	ActionManageCatalog Action = "catalog:manage"
	ActionViewInactive  Action = "catalog:view-inactive"
	ActionManageStaff   Action = "staff:manage"
	ActionViewProfile   Action = "profile:view"
	ActionNotifications Action = "notifications:manage"
)

// Authorize is the capability check consumed by every endpoint. booking is
// required for the single-booking actions and ignored otherwise.
func Authorize(actor Actor, action Action, booking *models.Booking) error {
	if action == ActionCreateBooking {
		return nil
	}
	if actor.IsAnonymous() {
		return utils.NewUnauthorizedError("Authentication required")
	}

	switch action {
	case ActionListBookings, ActionViewDashboard, ActionViewProfile:
		if actor.IsGuest() {
			return utils.NewForbiddenError("Guests cannot access this resource")
		}
		return nil

	case ActionReadBooking, ActionUpdateBooking:
		if actor.IsPrivileged() {
			return nil
		}
		if booking != nil && IsOwner(actor, booking) {
			return nil
		}
		return utils.NewForbiddenError("You do not have access to this booking")

	case ActionDeleteBooking, ActionViewReports, ActionManageCatalog, ActionViewInactive, ActionManageStaff, ActionNotifications:
		if actor.IsAdmin() {
			return nil
		}
		return utils.NewForbiddenError("Admin access required")
	}

	return utils.NewForbiddenError("Action not permitted")
}

// IsOwner reports whether actor is the customer or guest who requested booking.
func IsOwner(actor Actor, booking *models.Booking) bool {
	switch {
	case actor.IsCustomer():
		return booking.OwnedBy(actor.Subject)
	case actor.IsGuest():
		return booking.UserID == nil && booking.ID == actor.Subject
	}
	return false
}

// BookingScope restricts a booking listing. A zero scope means every booking.
type BookingScope struct {
	UserID          *uuid.UUID
	AssignedStaffID *uuid.UUID
}

// ListScope returns the bookings actor may list: admins see everything, staff
// their assignments, customers their own bookings.
func ListScope(actor Actor) (BookingScope, error) {
	if err := Authorize(actor, ActionListBookings, nil); err != nil {
		return BookingScope{}, err
	}
	id := actor.Subject
	switch {
	case actor.IsAdmin():
		return BookingScope{}, nil
	case actor.IsStaff():
		return BookingScope{AssignedStaffID: &id}, nil
	default:
		return BookingScope{UserID: &id}, nil
	}
}

// BookingChange describes which parts of a booking an update touches.
type BookingChange struct {
	Status         *models.BookingStatus
	AssignsStaff   bool
	SetsFinalPrice bool
}

// AuthorizeBookingUpdate extends the update capability with field rules:
// owners may only cancel, and only staff or admins assign staff or set a
// final price. Whether the cancellation is still possible is left to the
// status machine.
func AuthorizeBookingUpdate(actor Actor, booking *models.Booking, change BookingChange) error {
	if err := Authorize(actor, ActionUpdateBooking, booking); err != nil {
		return err
	}
	if actor.IsPrivileged() {
		return nil
	}
	if change.AssignsStaff || change.SetsFinalPrice {
		return utils.NewForbiddenError("Only staff can assign staff or set a final price")
	}
	if change.Status == nil || *change.Status != models.BookingStatusCancelled {
		return utils.NewForbiddenError("You can only cancel your own booking")
	}
	return nil
}
