// services/report.go
package services

import (
	"instaclean-backend/models"
	"instaclean-backend/utils"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

const dailyBookingDays = 7

// DateRange is the half-open interval [From, To). A zero bound is unbounded.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && !t.Before(r.To) {
		return false
	}
	return true
}

// RangeFor resolves a named reporting range around now. Weeks start on Sunday.
func RangeFor(name string, now time.Time) (DateRange, error) {
	today := utils.BeginningOfDay(now)
	switch name {
	case "today":
		return DateRange{From: today, To: today.AddDate(0, 0, 1)}, nil
	case "week":
		start := utils.BeginningOfWeek(now)
		return DateRange{From: start, To: start.AddDate(0, 0, 7)}, nil
	case "", "month":
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return DateRange{From: start, To: start.AddDate(0, 1, 0)}, nil
	case "year":
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		return DateRange{From: start, To: start.AddDate(1, 0, 0)}, nil
	case "all":
		return DateRange{}, nil
	}
	return DateRange{}, utils.NewValidationError("Unknown range %q, expected today, week, month, year or all", name)
}

type ServiceSummary struct {
	ServiceID uuid.UUID `json:"serviceId"`
	Name      string    `json:"name"`
	Count     int       `json:"count"`
	Revenue   float64   `json:"revenue"`
}

type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type BookingReport struct {
	Range             DateRange                    `json:"range"`
	TotalBookings     int                          `json:"totalBookings"`
	StatusCounts      map[models.BookingStatus]int `json:"statusCounts"`
	CompletedCount    int                          `json:"completedCount"`
	Revenue           float64                      `json:"revenue"`
	AverageOrderValue float64                      `json:"averageOrderValue"`
	Services          []ServiceSummary             `json:"services"`
	DailyBookings     []DailyCount                 `json:"dailyBookings"`
}

// SummarizeBookings folds the bookings created within rng into a report.
// Revenue counts completed bookings only, at their billable amount. Service
// revenue follows the same rule while service counts include every status.
func SummarizeBookings(bookings []models.Booking, rng DateRange) BookingReport {
	report := BookingReport{
		Range:        rng,
		StatusCounts: make(map[models.BookingStatus]int, 5),
		Services:     []ServiceSummary{},
	}
	for _, status := range models.AllBookingStatuses() {
		report.StatusCounts[status] = 0
	}

	byService := map[uuid.UUID]*ServiceSummary{}
	byDay := map[string]int{}

	for i := range bookings {
		b := &bookings[i]
		if !rng.Contains(b.CreatedAt) {
			continue
		}

		report.TotalBookings++
		report.StatusCounts[b.Status]++
		byDay[b.CreatedAt.Format(utils.DateLayout)]++

		summary, ok := byService[b.ServiceID]
		if !ok {
			summary = &ServiceSummary{ServiceID: b.ServiceID}
			if b.Service != nil {
				summary.Name = b.Service.Name
			}
			byService[b.ServiceID] = summary
		}
		summary.Count++

		if b.Status == models.BookingStatusCompleted {
			amount := b.BillableAmount()
			report.CompletedCount++
			report.Revenue += amount
			summary.Revenue += amount
		}
	}

	report.Revenue = roundCents(report.Revenue)
	if report.CompletedCount > 0 {
		report.AverageOrderValue = roundCents(report.Revenue / float64(report.CompletedCount))
	}

	for _, summary := range byService {
		summary.Revenue = roundCents(summary.Revenue)
		report.Services = append(report.Services, *summary)
	}
	sort.Slice(report.Services, func(i, j int) bool {
		a, b := report.Services[i], report.Services[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Name < b.Name
	})

	report.DailyBookings = lastDays(byDay, dailyBookingDays)
	return report
}

// lastDays keeps the n most recent days that had bookings, oldest first.
func lastDays(byDay map[string]int, n int) []DailyCount {
	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)
	if len(days) > n {
		days = days[len(days)-n:]
	}

	counts := make([]DailyCount, 0, len(days))
	for _, day := range days {
		counts = append(counts, DailyCount{Date: day, Count: byDay[day]})
	}
	return counts
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
