// services/report_service.go
package services

import (
	"context"
	"instaclean-backend/models"
	"instaclean-backend/policy"
	"instaclean-backend/utils"
	"time"

	"gorm.io/gorm"
)

const recentBookingsLimit = 5

type ReportQuery struct {
	Range string `form:"range"`
	From  string `form:"from"`
	To    string `form:"to"`
}

type Dashboard struct {
	TotalBookings     int              `json:"totalBookings"`
	PendingBookings   int              `json:"pendingBookings"`
	CompletedBookings int              `json:"completedBookings"`
	TotalRevenue      float64          `json:"totalRevenue"`
	TodayBookings     int              `json:"todayBookings"`
	WeeklyBookings    int              `json:"weeklyBookings"`
	RecentBookings    []models.Booking `json:"recentBookings"`
}

type ReportService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Report summarizes the bookings created in the requested range. Explicit
// from/to dates win over a named range; to is inclusive.
func (s *ReportService) Report(ctx context.Context, actor policy.Actor, q ReportQuery) (*BookingReport, error) {
	if err := policy.Authorize(actor, policy.ActionViewReports, nil); err != nil {
		return nil, err
	}

	rng, err := s.resolveRange(q)
	if err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).Preload("Service")
	if !rng.From.IsZero() {
		query = query.Where("created_at >= ?", rng.From)
	}
	if !rng.To.IsZero() {
		query = query.Where("created_at < ?", rng.To)
	}

	var bookings []models.Booking
	if err := query.Find(&bookings).Error; err != nil {
		return nil, utils.FromDBError(err, "")
	}

	report := SummarizeBookings(bookings, rng)
	return &report, nil
}

func (s *ReportService) resolveRange(q ReportQuery) (DateRange, error) {
	if q.From == "" && q.To == "" {
		return RangeFor(q.Range, s.now())
	}

	var rng DateRange
	if q.From != "" {
		from, err := utils.ParseDate(q.From)
		if err != nil {
			return DateRange{}, utils.NewValidationError("Invalid from date: %s", q.From)
		}
		rng.From = from
	}
	if q.To != "" {
		to, err := utils.ParseDate(q.To)
		if err != nil {
			return DateRange{}, utils.NewValidationError("Invalid to date: %s", q.To)
		}
		rng.To = to.AddDate(0, 0, 1)
	}
	if !rng.From.IsZero() && !rng.To.IsZero() && !rng.From.Before(rng.To) {
		return DateRange{}, utils.NewValidationError("from must not be after to")
	}
	return rng, nil
}

// Dashboard gives the headline numbers over the bookings actor may list.
func (s *ReportService) Dashboard(ctx context.Context, actor policy.Actor) (*Dashboard, error) {
	if err := policy.Authorize(actor, policy.ActionViewDashboard, nil); err != nil {
		return nil, err
	}
	scope, err := policy.ListScope(actor)
	if err != nil {
		return nil, err
	}

	var bookings []models.Booking
	query := applyScope(s.db.WithContext(ctx).Preload("Service").Preload("PropertyType"), scope)
	if err := query.Order("created_at DESC").Find(&bookings).Error; err != nil {
		return nil, utils.FromDBError(err, "")
	}

	now := s.now()
	today := utils.DateOf(now)
	weekAgo := now.AddDate(0, 0, -7)
	summary := SummarizeBookings(bookings, DateRange{})

	dashboard := &Dashboard{
		TotalBookings:     summary.TotalBookings,
		PendingBookings:   summary.StatusCounts[models.BookingStatusPending],
		CompletedBookings: summary.CompletedCount,
		TotalRevenue:      summary.Revenue,
		RecentBookings:    bookings[:min(recentBookingsLimit, len(bookings))],
	}
	for i := range bookings {
		if utils.DateOf(time.Time(bookings[i].ScheduledDate)).Equal(today) {
			dashboard.TodayBookings++
		}
		if !bookings[i].CreatedAt.Before(weekAgo) {
			dashboard.WeeklyBookings++
		}
	}
	return dashboard, nil
}
