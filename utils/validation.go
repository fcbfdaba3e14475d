// utils/validation.go
package utils

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// ValidatePhone checks a loosely formatted phone number: an optional + and
// 7 to 15 digits once spaces, dashes and parentheses are removed.
func ValidatePhone(phone string) bool {
	cleaned := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(phone)
	return phoneRegex.MatchString(cleaned)
}

var timeSlotLayouts = []string{"03:04 PM", "3:04 PM", "15:04"}

// ParseTimeSlot accepts "09:30 AM" style labels as well as 24h "09:30".
func ParseTimeSlot(value string) (time.Time, bool) {
	value = strings.ToUpper(strings.TrimSpace(value))
	for _, layout := range timeSlotLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// TimeSlots lists the bookable start times.
func TimeSlots() []string {
	slots := make([]string, 0, 20)
	start := time.Date(0, 1, 1, 8, 0, 0, 0, time.UTC)
	for t := start; t.Hour() < 18; t = t.Add(30 * time.Minute) {
		slots = append(slots, t.Format("03:04 PM"))
	}
	return slots
}

// RegisterValidators adds the custom binding tags used by the request structs.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return ValidatePhone(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("timeslot", func(fl validator.FieldLevel) bool {
		_, ok := ParseTimeSlot(fl.Field().String())
		return ok
	})
}
