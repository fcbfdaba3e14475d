package models

import (
	"instaclean-backend/utils"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Booking struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BookingNumber string    `gorm:"uniqueIndex;not null" json:"bookingNumber"`

	// Exactly one requester mode is populated, see Requester.
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"userId"`
	GuestName  string     `json:"guestName,omitempty"`
	GuestEmail string     `json:"guestEmail,omitempty"`
	GuestPhone string     `json:"guestPhone,omitempty"`

	ServiceID      uuid.UUID `gorm:"type:uuid;index;not null" json:"serviceId"`
	PropertyTypeID uuid.UUID `gorm:"type:uuid;index;not null" json:"propertyTypeId"`
	PropertySize   string    `json:"propertySize,omitempty"`

	ScheduledDate     datatypes.Date `gorm:"not null;index" json:"scheduledDate"`
	ScheduledTime     string         `gorm:"type:varchar(10);not null" json:"scheduledTime"`
	EstimatedDuration int            `gorm:"not null" json:"estimatedDuration"` // minutes, frozen at creation

	Address             string `gorm:"not null" json:"address"`
	City                string `gorm:"not null" json:"city"`
	State               string `gorm:"not null" json:"state"`
	ZipCode             string `json:"zipCode,omitempty"`
	SpecialInstructions string `gorm:"type:text" json:"specialInstructions,omitempty"`

	EstimatedPrice float64  `gorm:"type:decimal(10,2);not null" json:"estimatedPrice"`
	FinalPrice     *float64 `gorm:"type:decimal(10,2)" json:"finalPrice"`

	Status          BookingStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	AssignedStaffID *uuid.UUID    `gorm:"type:uuid;index" json:"assignedStaffId"`
	ContactMethod   ContactMethod `gorm:"type:varchar(20);not null;default:'EMAIL'" json:"contactMethod"`
	RowVersion      int64         `gorm:"not null;default:1" json:"rowVersion"`

	CreatedAt   time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt"`

	Service       *Service      `gorm:"foreignKey:ServiceID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"service,omitempty"`
	PropertyType  *PropertyType `gorm:"foreignKey:PropertyTypeID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"propertyType,omitempty"`
	User          *User         `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"user,omitempty"`
	AssignedStaff *User         `gorm:"foreignKey:AssignedStaffID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"assignedStaff,omitempty"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return b.Validate()
}

// Requester identifies who a booking belongs to: an account holder or a guest
// who left contact details.
type Requester interface {
	isRequester()
}

type AccountRequester struct {
	UserID uuid.UUID
}

type GuestRequester struct {
	Name  string
	Email string
	Phone string
}

func (AccountRequester) isRequester() {}
func (GuestRequester) isRequester() {}

// Requester returns nil when the stored row is in neither mode.
func (b *Booking) Requester() Requester {
	if b.UserID != nil {
		return AccountRequester{UserID: *b.UserID}
	}
	if b.GuestName != "" || b.GuestPhone != "" {
		return GuestRequester{Name: b.GuestName, Email: b.GuestEmail, Phone: b.GuestPhone}
	}
	return nil
}

// SetRequester populates one mode and clears the other.
func (b *Booking) SetRequester(r Requester) {
	b.UserID = nil
	b.GuestName, b.GuestEmail, b.GuestPhone = "", "", ""
	switch r := r.(type) {
	case AccountRequester:
		id := r.UserID
		b.UserID = &id
	case GuestRequester:
		b.GuestName, b.GuestEmail, b.GuestPhone = r.Name, r.Email, r.Phone
	}
}

// OwnedBy reports whether the account userID requested the booking.
func (b *Booking) OwnedBy(userID uuid.UUID) bool {
	return b.UserID != nil && *b.UserID == userID
}

// BillableAmount is the final price when one was recorded, the estimate otherwise.
func (b *Booking) BillableAmount() float64 {
	if b.FinalPrice != nil {
		return *b.FinalPrice
	}
	return b.EstimatedPrice
}

// Validate checks the row-level invariants.
func (b *Booking) Validate() error {
	hasAccount := b.UserID != nil
	hasGuest := b.GuestName != "" || b.GuestEmail != "" || b.GuestPhone != ""
	if hasAccount == hasGuest {
		return utils.NewValidationError("booking must belong to exactly one of an account or a guest")
	}
	if hasGuest && (b.GuestName == "" || b.GuestPhone == "") {
		return utils.NewValidationError("guest bookings need a name and a phone number")
	}
	if (b.Status == BookingStatusCompleted) != (b.CompletedAt != nil) {
		return utils.NewValidationError("completedAt must be set exactly when the booking is completed")
	}
	return nil
}

// ApplyTransition moves the booking to next, stamping completion details.
// finalPrice is only recorded on completion.
func (b *Booking) ApplyTransition(next BookingStatus, now time.Time, finalPrice *float64) error {
	if !b.Status.CanTransitionTo(next) {
		return utils.NewInvalidTransitionError("cannot change booking status from %s to %s", b.Status, next)
	}
	b.Status = next
	if next == BookingStatusCompleted {
		completedAt := now
		b.CompletedAt = &completedAt
		if finalPrice != nil {
			price := *finalPrice
			b.FinalPrice = &price
		}
	}
	return nil
}
