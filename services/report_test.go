package services

import (
	"context"
	"errors"
	"instaclean-backend/models"
	"instaclean-backend/policy"
	"instaclean-backend/testhelpers"
	"instaclean-backend/utils"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reportBooking(service *models.Service, status models.BookingStatus, estimate float64, final *float64, createdAt time.Time) models.Booking {
	return models.Booking{
		ID:             uuid.New(),
		ServiceID:      service.ID,
		Service:        service,
		Status:         status,
		EstimatedPrice: estimate,
		FinalPrice:     final,
		CreatedAt:      createdAt,
	}
}

func TestSummarizeBookings_RevenueUsesFinalPrice(t *testing.T) {
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)
	regular := &models.Service{ID: uuid.New(), Name: "Standard Cleaning"}
	deep := &models.Service{ID: uuid.New(), Name: "Deep Cleaning"}
	final := 150.0

	bookings := []models.Booking{
		reportBooking(regular, models.BookingStatusCompleted, 100, nil, now),
		reportBooking(regular, models.BookingStatusCompleted, 120, &final, now),
		reportBooking(deep, models.BookingStatusCompleted, 200, nil, now),
		reportBooking(regular, models.BookingStatusPending, 99, nil, now),
		reportBooking(deep, models.BookingStatusPending, 199, nil, now),
	}

	report := SummarizeBookings(bookings, DateRange{})

	assert.Equal(t, 5, report.TotalBookings)
	assert.Equal(t, 450.0, report.Revenue)
	assert.Equal(t, 3, report.CompletedCount)
	assert.Equal(t, 150.0, report.AverageOrderValue)
	assert.Equal(t, map[models.BookingStatus]int{
		models.BookingStatusPending:    2,
		models.BookingStatusConfirmed:  0,
		models.BookingStatusInProgress: 0,
		models.BookingStatusCompleted:  3,
		models.BookingStatusCancelled:  0,
	}, report.StatusCounts)

	require.Len(t, report.Services, 2)
	assert.Equal(t, ServiceSummary{ServiceID: regular.ID, Name: "Standard Cleaning", Count: 3, Revenue: 250}, report.Services[0])
	assert.Equal(t, ServiceSummary{ServiceID: deep.ID, Name: "Deep Cleaning", Count: 2, Revenue: 200}, report.Services[1])
	assert.Equal(t, []DailyCount{{Date: "2026-05-20", Count: 5}}, report.DailyBookings)
}

func TestSummarizeBookings_EmptyHasZeroAverage(t *testing.T) {
	report := SummarizeBookings(nil, DateRange{})
	assert.Zero(t, report.TotalBookings)
	assert.Zero(t, report.AverageOrderValue)
	assert.Len(t, report.StatusCounts, 5)
	assert.Empty(t, report.Services)
	assert.Empty(t, report.DailyBookings)
}

func TestSummarizeBookings_FiltersByRange(t *testing.T) {
	service := &models.Service{ID: uuid.New(), Name: "Standard Cleaning"}
	inside := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	outside := time.Date(2026, 4, 30, 23, 59, 0, 0, time.UTC)

	rng, err := RangeFor("month", time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	report := SummarizeBookings([]models.Booking{
		reportBooking(service, models.BookingStatusCompleted, 100, nil, inside),
		reportBooking(service, models.BookingStatusCompleted, 300, nil, outside),
	}, rng)

	assert.Equal(t, 1, report.TotalBookings)
	assert.Equal(t, 100.0, report.Revenue)
}

func TestSummarizeBookings_KeepsLastSevenDays(t *testing.T) {
	service := &models.Service{ID: uuid.New(), Name: "Standard Cleaning"}
	start := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	var bookings []models.Booking
	for day := 0; day < 10; day++ {
		bookings = append(bookings, reportBooking(service, models.BookingStatusPending, 99, nil, start.AddDate(0, 0, day)))
	}

	report := SummarizeBookings(bookings, DateRange{})
	require.Len(t, report.DailyBookings, 7)
	assert.Equal(t, "2026-05-04", report.DailyBookings[0].Date)
	assert.Equal(t, "2026-05-10", report.DailyBookings[6].Date)
}

func TestRangeFor(t *testing.T) {
	// Wednesday.
	now := time.Date(2026, 5, 20, 15, 30, 0, 0, time.UTC)

	week, err := RangeFor("week", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 17, 0, 0, 0, 0, time.UTC), week.From)
	assert.Equal(t, time.Date(2026, 5, 24, 0, 0, 0, 0, time.UTC), week.To)

	today, err := RangeFor("today", now)
	require.NoError(t, err)
	assert.True(t, today.Contains(now))
	assert.False(t, today.Contains(now.AddDate(0, 0, 1)))

	year, err := RangeFor("year", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), year.From)

	all, err := RangeFor("all", now)
	require.NoError(t, err)
	assert.True(t, all.Contains(time.Time{}.Add(time.Hour)))

	_, err = RangeFor("decade", now)
	assert.True(t, errors.Is(err, utils.ErrValidation))
}

func TestReportService_ReportAndDashboard(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	reports := NewReportService(f.db)

	first := f.createGuestBooking(t)
	f.createGuestBooking(t)
	for _, status := range []models.BookingStatus{models.BookingStatusConfirmed, models.BookingStatusInProgress, models.BookingStatusCompleted} {
		_, err := f.svc.Update(ctx, f.admin, first.ID, statusUpdate(status))
		require.NoError(t, err)
	}

	report, err := reports.Report(ctx, f.admin, ReportQuery{Range: "all"})
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalBookings)
	assert.Equal(t, 99.0, report.Revenue)
	assert.Equal(t, 1, report.StatusCounts[models.BookingStatusPending])
	require.Len(t, report.Services, 1)
	assert.Equal(t, "Standard Cleaning", report.Services[0].Name)

	today := time.Now().UTC().Format(utils.DateLayout)
	byDates, err := reports.Report(ctx, f.admin, ReportQuery{From: today, To: today})
	require.NoError(t, err)
	assert.Equal(t, 2, byDates.TotalBookings)

	_, err = reports.Report(ctx, f.admin, ReportQuery{From: "2026-02-10", To: "2026-02-01"})
	assert.True(t, errors.Is(err, utils.ErrValidation))

	staff := testhelpers.CreateUser(t, f.db, models.RoleStaff)
	_, err = reports.Report(ctx, policy.AccountActor(staff.ID, models.RoleStaff), ReportQuery{})
	assert.True(t, errors.Is(err, utils.ErrForbidden))

	dashboard, err := reports.Dashboard(ctx, f.admin)
	require.NoError(t, err)
	assert.Equal(t, 2, dashboard.TotalBookings)
	assert.Equal(t, 1, dashboard.PendingBookings)
	assert.Equal(t, 1, dashboard.CompletedBookings)
	assert.Equal(t, 99.0, dashboard.TotalRevenue)
	assert.Equal(t, 2, dashboard.WeeklyBookings)
	assert.Len(t, dashboard.RecentBookings, 2)

	staffDashboard, err := reports.Dashboard(ctx, policy.AccountActor(staff.ID, models.RoleStaff))
	require.NoError(t, err)
	assert.Zero(t, staffDashboard.TotalBookings)
	assert.Empty(t, staffDashboard.RecentBookings)

	_, err = reports.Dashboard(ctx, policy.GuestActor(first.ID))
	assert.True(t, errors.Is(err, utils.ErrForbidden))
}
