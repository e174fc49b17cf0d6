package dashboard

import (
	"strings"

	"miru/internal/models"
	"miru/internal/report"
)

// DefaultPageSize is the number of rows the list view shows per page.
const DefaultPageSize = 20

// Search keeps bookings whose name or location contains q, ignoring case,
// or whose phone contains q as typed. An empty query keeps everything.
func Search(bookings []models.Booking, q string) []models.Booking {
	q = strings.TrimSpace(q)
	if q == "" {
		return bookings
	}
	lower := strings.ToLower(q)

	out := []models.Booking{}
	for _, b := range bookings {
		if strings.Contains(strings.ToLower(b.Name), lower) ||
			strings.Contains(strings.ToLower(b.Location), lower) ||
			strings.Contains(b.Phone, q) {
			out = append(out, b)
		}
	}
	return out
}

// Headline holds the numbers shown above the booking list.
type Headline struct {
	Bookings int
	Tubes    int
	Revenue  int
	Upcoming int
}

// KPIs reads the headline numbers off an aggregated summary.
func KPIs(s report.Summary) Headline {
	return Headline{
		Bookings: s.TotalBookings,
		Tubes:    s.TotalTubes,
		Revenue:  s.TotalRevenue,
		Upcoming: len(s.Upcoming),
	}
}

// Page is one window of a longer list.
type Page struct {
	Items  []models.Booking
	Number int // 1-based
	Pages  int
	Offset int // index of Items[0] in the full list
}

// Paginate returns page n (1-based) of size rows. Out of range pages are clamped.
func Paginate(bookings []models.Booking, n, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	pages := (len(bookings) + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	if n < 1 {
		n = 1
	}
	if n > pages {
		n = pages
	}

	start := (n - 1) * size
	end := start + size
	if end > len(bookings) {
		end = len(bookings)
	}
	return Page{Items: bookings[start:end], Number: n, Pages: pages, Offset: start}
}
