package models

import (
	"fmt"
	"strings"
)

type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "PENDING"
	BookingStatusConfirmed  BookingStatus = "CONFIRMED"
	BookingStatusInProgress BookingStatus = "IN_PROGRESS"
	BookingStatusCompleted  BookingStatus = "COMPLETED"
	BookingStatusCancelled  BookingStatus = "CANCELLED"
)

// bookingTransitions is the full lifecycle. Staff may skip one step forward
// (start a booking that was never confirmed, or close a confirmed job without
// recording the start), but a booking must be confirmed or started before it
// completes. COMPLETED and CANCELLED have no way out.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:    {BookingStatusConfirmed, BookingStatusInProgress, BookingStatusCancelled},
	BookingStatusConfirmed:  {BookingStatusInProgress, BookingStatusCompleted, BookingStatusCancelled},
	BookingStatusInProgress: {BookingStatusCompleted},
	BookingStatusCompleted:  {},
	BookingStatusCancelled:  {},
}

func AllBookingStatuses() []BookingStatus {
	return []BookingStatus{
		BookingStatusPending,
		BookingStatusConfirmed,
		BookingStatusInProgress,
		BookingStatusCompleted,
		BookingStatusCancelled,
	}
}

func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := bookingTransitions[status]; !ok {
		return "", fmt.Errorf("unknown booking status: %s", s)
	}
	return status, nil
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return len(bookingTransitions[s]) == 0
}

// CancellableByOwner reports whether the booking's own guest or customer may
// still cancel it.
func (s BookingStatus) CancellableByOwner() bool {
	return s.CanTransitionTo(BookingStatusCancelled)
}

type ContactMethod string

const (
	ContactMethodEmail    ContactMethod = "EMAIL"
	ContactMethodSMS      ContactMethod = "SMS"
	ContactMethodWhatsApp ContactMethod = "WHATSAPP"
)

func ParseContactMethod(s string) (ContactMethod, error) {
	switch m := ContactMethod(strings.ToUpper(strings.TrimSpace(s))); m {
	case "":
		return ContactMethodEmail, nil
	case ContactMethodEmail, ContactMethodSMS, ContactMethodWhatsApp:
		return m, nil
	default:
		return "", fmt.Errorf("unknown contact method: %s", s)
	}
}
