package report

import (
	"math"
	"sort"
	"time"

	"miru/internal/models"
)

// TopFarmersLimit is how many farmers the top list holds.
const TopFarmersLimit = 5

// Urgency bands an upcoming delivery by days left.
type Urgency string

const (
	UrgencyUrgent Urgency = "urgent" // 7 days or less
	UrgencySoon   Urgency = "soon"   // 14 days or less
	UrgencyLater  Urgency = "later"
)

func urgencyOf(daysLeft int) Urgency {
	switch {
	case daysLeft <= 7:
		return UrgencyUrgent
	case daysLeft <= 14:
		return UrgencySoon
	default:
		return UrgencyLater
	}
}

// MonthStat groups bookings by the calendar month of the booking date.
type MonthStat struct {
	Month    string // YYYY-MM
	Bookings int
	Tubes    int
	Revenue  int
	AvgTubes int
}

// Label renders the month as "Jan 2024".
func (m MonthStat) Label() string {
	t, err := time.Parse("2006-01", m.Month)
	if err != nil {
		return m.Month
	}
	return t.Format("Jan 2006")
}

// LocationStat groups bookings by the exact location string.
type LocationStat struct {
	Location string
	Farmers  int
	Tubes    int
	Share    int // percent of all tubes, rounded
}

// Delivery is a booking whose delivery date has not passed yet.
type Delivery struct {
	models.Booking
	DeliveryDate models.Date
	DaysLeft     int
	Urgency      Urgency
}

// Summary holds every derived view of one booking set.
type Summary struct {
	Today         models.Date
	TotalBookings int
	TotalTubes    int
	TotalRevenue  int

	ByMonth    []MonthStat
	ByLocation []LocationStat
	Upcoming   []Delivery
	TopFarmers []models.Booking
	Register   []models.Booking
}

// Aggregate computes the summary for bookings as of today. It does not modify bookings.
func Aggregate(bookings []models.Booking, today models.Date) Summary {
	s := Summary{
		Today:         today,
		TotalBookings: len(bookings),
	}
	for _, b := range bookings {
		s.TotalTubes += b.Tubes
	}
	s.TotalRevenue = s.TotalTubes * models.PricePerTube

	s.ByMonth = byMonth(bookings)
	s.ByLocation = byLocation(bookings, s.TotalTubes)
	s.Register = sortedByBookingDate(bookings)
	s.Upcoming = upcoming(s.Register, today)
	s.TopFarmers = topFarmers(bookings, TopFarmersLimit)
	return s
}

func byMonth(bookings []models.Booking) []MonthStat {
	idx := make(map[string]int)
	var out []MonthStat
	for _, b := range bookings {
		key := b.BookingDate.MonthKey()
		i, ok := idx[key]
		if !ok {
			i = len(out)
			idx[key] = i
			out = append(out, MonthStat{Month: key})
		}
		out[i].Bookings++
		out[i].Tubes += b.Tubes
	}
	for i := range out {
		out[i].Revenue = out[i].Tubes * models.PricePerTube
		out[i].AvgTubes = roundDiv(out[i].Tubes, out[i].Bookings)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

func byLocation(bookings []models.Booking, totalTubes int) []LocationStat {
	idx := make(map[string]int)
	var out []LocationStat
	for _, b := range bookings {
		i, ok := idx[b.Location]
		if !ok {
			i = len(out)
			idx[b.Location] = i
			out = append(out, LocationStat{Location: b.Location})
		}
		out[i].Farmers++
		out[i].Tubes += b.Tubes
	}
	for i := range out {
		out[i].Share = roundDiv(out[i].Tubes*100, totalTubes)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Tubes > out[j].Tubes })
	return out
}

// upcoming expects register order (booking date ascending).
func upcoming(register []models.Booking, today models.Date) []Delivery {
	var out []Delivery
	for _, b := range register {
		if !b.IsUpcoming(today) {
			continue
		}
		delivery := b.DeliveryDate()
		days := today.DaysUntil(delivery)
		out = append(out, Delivery{
			Booking:      b,
			DeliveryDate: delivery,
			DaysLeft:     days,
			Urgency:      urgencyOf(days),
		})
	}
	return out
}

func topFarmers(bookings []models.Booking, n int) []models.Booking {
	out := append([]models.Booking(nil), bookings...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Tubes > out[j].Tubes })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func sortedByBookingDate(bookings []models.Booking) []models.Booking {
	out := append([]models.Booking(nil), bookings...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].BookingDate.Before(out[j].BookingDate) })
	return out
}

// roundDiv returns a/b rounded half away from zero, or 0 when b is 0.
func roundDiv(a, b int) int {
	if b == 0 {
		return 0
	}
	return int(math.Round(float64(a) / float64(b)))
}
