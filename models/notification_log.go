// models/notification_log.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationLog struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BookingID    uuid.UUID `gorm:"type:uuid;index;not null" json:"bookingId"`
	Type         string    `gorm:"type:varchar(20);index" json:"type"` // confirmation, status, reminder
	Channel      string    `gorm:"type:varchar(20)" json:"channel"`    // email, sms, whatsapp
	Recipient    string    `json:"recipient"`
	Message      string    `gorm:"type:text" json:"message"`
	Status       string    `gorm:"type:varchar(20)" json:"status"` // sent, failed, skipped
	ErrorMessage string    `gorm:"type:text" json:"errorMessage,omitempty"`
	SentAt       time.Time `gorm:"index" json:"sentAt"`
}

func (n *NotificationLog) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return
}
