// services/notification_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"instaclean-backend/models"
	"instaclean-backend/policy"
	"instaclean-backend/utils"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"
)

// Notifier is told about booking lifecycle events. Implementations must not
// fail the operation that triggered them.
type Notifier interface {
	BookingCreated(ctx context.Context, booking *models.Booking)
	BookingStatusChanged(ctx context.Context, booking *models.Booking)
}

// NopNotifier drops every event.
type NopNotifier struct{}

func (NopNotifier) BookingCreated(context.Context, *models.Booking)       {}
func (NopNotifier) BookingStatusChanged(context.Context, *models.Booking) {}

const (
	NotificationConfirmation = "confirmation"
	NotificationStatus       = "status"
	NotificationReminder     = "reminder"

	ChannelEmail    = "email"
	ChannelSMS      = "sms"
	ChannelWhatsApp = "whatsapp"

	DeliverySent    = "sent"
	DeliveryFailed  = "failed"
	DeliverySkipped = "skipped"
)

var messageTemplates = map[string]string{
	NotificationConfirmation: "Hi [Name], we received your booking [BookingNumber] for [Service] on [Date] at [Time]. We will confirm it shortly.",
	NotificationStatus:       "Hi [Name], your booking [BookingNumber] for [Service] is now [Status].",
	NotificationReminder:     "Hi [Name], a reminder that your [Service] booking [BookingNumber] is tomorrow, [Date] at [Time].",
}

var emailSubjects = map[string]string{
	NotificationConfirmation: "We received your booking",
	NotificationStatus:       "Your booking was updated",
	NotificationReminder:     "Your cleaning is tomorrow",
}

type smsSender interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

type emailSender interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

type NotificationSettings struct {
	TwilioAccountSID     string
	TwilioAuthToken      string
	TwilioPhoneNumber    string
	TwilioWhatsAppNumber string
	SendGridAPIKey       string
	FromEmail            string
	FromName             string
}

type NotificationService struct {
	db       *gorm.DB
	sms      smsSender
	email    emailSender
	settings NotificationSettings
	now      func() time.Time
}

func NewNotificationService(db *gorm.DB, settings NotificationSettings) *NotificationService {
	s := &NotificationService{db: db, settings: settings, now: time.Now}

	if settings.TwilioAccountSID != "" && settings.TwilioAuthToken != "" {
		client := twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: settings.TwilioAccountSID,
			Password: settings.TwilioAuthToken,
		})
		s.sms = client.Api
	}
	if settings.SendGridAPIKey != "" {
		s.email = sendgrid.NewSendClient(settings.SendGridAPIKey)
	}
	return s
}

func (s *NotificationService) BookingCreated(ctx context.Context, booking *models.Booking) {
	s.dispatch(ctx, booking, NotificationConfirmation)
}

func (s *NotificationService) BookingStatusChanged(ctx context.Context, booking *models.Booking) {
	switch booking.Status {
	case models.BookingStatusConfirmed, models.BookingStatusCancelled, models.BookingStatusCompleted:
		s.dispatch(ctx, booking, NotificationStatus)
	}
}

// StartScheduler runs SendDailyReminders on the cron schedule until the returned cron is stopped.
func (s *NotificationService) StartScheduler(schedule string) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		if _, err := s.SendDailyReminders(context.Background()); err != nil {
			utils.Logger.WithError(err).Error("Daily reminder run failed")
		}
	}); err != nil {
		return nil, fmt.Errorf("schedule reminders %q: %w", schedule, err)
	}
	c.Start()
	utils.Logger.Infof("Reminder scheduler started (%s)", schedule)
	return c, nil
}

// SendDailyReminders notifies every open booking scheduled for tomorrow that
// has not been reminded today. It returns the number of bookings processed.
func (s *NotificationService) SendDailyReminders(ctx context.Context) (int, error) {
	now := s.now()
	today := utils.DateOf(now)
	tomorrow := today.AddDate(0, 0, 1)

	var bookings []models.Booking
	err := s.db.WithContext(ctx).
		Preload("Service").Preload("User").
		Where("scheduled_date >= ? AND scheduled_date < ?", tomorrow, tomorrow.AddDate(0, 0, 1)).
		Where("status IN ?", []models.BookingStatus{models.BookingStatusPending, models.BookingStatusConfirmed}).
		Where("id NOT IN (?)", s.db.Model(&models.NotificationLog{}).
			Select("booking_id").
			Where("type = ? AND sent_at >= ?", NotificationReminder, today)).
		Find(&bookings).Error
	if err != nil {
		return 0, err
	}

	for i := range bookings {
		s.dispatch(ctx, &bookings[i], NotificationReminder)
	}
	utils.Logger.Infof("Daily reminders processed for %d bookings", len(bookings))
	return len(bookings), nil
}

func (s *NotificationService) dispatch(ctx context.Context, booking *models.Booking, kind string) {
	message := renderMessage(messageTemplates[kind], booking)
	channel, recipient := s.route(booking)

	entry := models.NotificationLog{
		BookingID: booking.ID,
		Type:      kind,
		Channel:   channel,
		Recipient: recipient,
		Message:   message,
		Status:    DeliverySent,
		SentAt:    s.now().UTC(),
	}

	var err error
	switch {
	case recipient == "":
		entry.Status = DeliverySkipped
		entry.ErrorMessage = "no recipient for contact method " + string(booking.ContactMethod)
	case channel == ChannelEmail:
		err = s.sendEmail(recipient, contactName(booking), emailSubjects[kind], message)
	default:
		err = s.sendMessage(channel, recipient, message)
	}

	if errors.Is(err, errProviderNotConfigured) {
		entry.Status = DeliverySkipped
		entry.ErrorMessage = err.Error()
	} else if err != nil {
		entry.Status = DeliveryFailed
		entry.ErrorMessage = err.Error()
		utils.Logger.WithFields(logrus.Fields{
			"booking": booking.BookingNumber,
			"channel": channel,
		}).WithError(err).Warn("Failed to send booking notification")
	}

	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		utils.Logger.WithError(err).Errorf("Failed to log notification for booking %s", booking.ID)
	}
}

var errProviderNotConfigured = errors.New("notification provider not configured")

// route picks the channel from the contact method and the matching address
// from the guest fields or the owning account.
func (s *NotificationService) route(booking *models.Booking) (channel, recipient string) {
	email, phone := booking.GuestEmail, booking.GuestPhone
	if booking.User != nil {
		email, phone = booking.User.Email, booking.User.Phone
	}

	switch booking.ContactMethod {
	case models.ContactMethodSMS:
		return ChannelSMS, phone
	case models.ContactMethodWhatsApp:
		return ChannelWhatsApp, phone
	default:
		return ChannelEmail, email
	}
}

func (s *NotificationService) sendMessage(channel, to, body string) error {
	if s.sms == nil {
		return errProviderNotConfigured
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetBody(body)
	if channel == ChannelWhatsApp {
		params.SetTo("whatsapp:" + to)
		params.SetFrom("whatsapp:" + s.settings.TwilioWhatsAppNumber)
	} else {
		params.SetTo(to)
		params.SetFrom(s.settings.TwilioPhoneNumber)
	}

	resp, err := s.sms.CreateMessage(params)
	if err != nil {
		return err
	}
	if resp != nil && resp.Sid != nil {
		utils.Logger.Debugf("Message sent to %s, SID: %s", to, *resp.Sid)
	}
	return nil
}

func (s *NotificationService) sendEmail(to, name, subject, body string) error {
	if s.email == nil {
		return errProviderNotConfigured
	}

	from := mail.NewEmail(s.settings.FromName, s.settings.FromEmail)
	msg := mail.NewSingleEmail(from, subject, mail.NewEmail(name, to), body, "")
	resp, err := s.email.Send(msg)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid responded %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

func contactName(booking *models.Booking) string {
	if booking.User != nil {
		return booking.User.Name
	}
	return booking.GuestName
}

func renderMessage(template string, booking *models.Booking) string {
	serviceName := "your cleaning"
	if booking.Service != nil {
		serviceName = booking.Service.Name
	}
	return strings.NewReplacer(
		"[Name]", contactName(booking),
		"[BookingNumber]", booking.BookingNumber,
		"[Service]", serviceName,
		"[Date]", time.Time(booking.ScheduledDate).Format("Monday, January 2, 2006"),
		"[Time]", booking.ScheduledTime,
		"[Status]", strings.ReplaceAll(strings.ToLower(string(booking.Status)), "_", " "),
	).Replace(template)
}

// History lists the notifications recorded for a booking, newest first.
func (s *NotificationService) History(ctx context.Context, actor policy.Actor, bookingID uuid.UUID) ([]models.NotificationLog, error) {
	if err := policy.Authorize(actor, policy.ActionNotifications, nil); err != nil {
		return nil, err
	}
	var logs []models.NotificationLog
	err := s.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("sent_at DESC").
		Find(&logs).Error
	if err != nil {
		return nil, utils.FromDBError(err, "")
	}
	return logs, nil
}

// RunReminders sends the daily reminders on demand.
func (s *NotificationService) RunReminders(ctx context.Context, actor policy.Actor) (int, error) {
	if err := policy.Authorize(actor, policy.ActionNotifications, nil); err != nil {
		return 0, err
	}
	sent, err := s.SendDailyReminders(ctx)
	if err != nil {
		return 0, utils.FromDBError(err, "")
	}
	return sent, nil
}
