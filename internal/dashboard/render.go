package dashboard

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"miru/internal/format"
	"miru/internal/gateway"
	"miru/internal/message"
	"miru/internal/models"
	"miru/internal/report"
)

// Badge labels where the data came from.
func Badge(src gateway.Source) string {
	if src == gateway.SourceLocal {
		return "local (offline)"
	}
	return "remote"
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// RenderList prints the headline numbers and one page of bookings.
func RenderList(w io.Writer, p Page, k Headline, src gateway.Source) error {
	fmt.Fprintf(w, "Bookings [%s]\n", Badge(src))
	fmt.Fprintf(w, "Total: %d  Tubes: %s  Revenue: %s  Upcoming: %d\n\n",
		k.Bookings, format.Number(k.Tubes), format.RWF(k.Revenue), k.Upcoming)

	if len(p.Items) == 0 {
		_, err := fmt.Fprintln(w, "No bookings found.")
		return err
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "#\tID\tFarmer\tPhone\tTubes\tAmount\tBooked\tLocation\tDelivery")
	for i, b := range p.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			p.Offset+i+1, b.ID, b.Name, b.Phone, b.Tubes, format.Number(b.Amount()),
			format.Date(b.BookingDate), b.Location, format.Date(b.DeliveryDate()))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if p.Pages > 1 {
		fmt.Fprintf(w, "\nPage %d of %d\n", p.Number, p.Pages)
	}
	return nil
}

// RenderBooking prints one booking with its derived values.
func RenderBooking(w io.Writer, b models.Booking, src gateway.Source) error {
	tw := newTable(w)
	rows := [][2]string{
		{"ID", b.ID},
		{"Farmer", b.Name},
		{"Phone", b.Phone},
		{"Tubes", format.Number(b.Tubes)},
		{"Booking date", format.Date(b.BookingDate)},
		{"Location", b.Location},
		{"Delivery date", format.Date(b.DeliveryDate())},
		{"Amount", format.RWF(b.Amount())},
		{"Sacks", fmt.Sprint(b.Sacks())},
		{"Loading cost", format.RWF(b.LoadingCost())},
		{"Saved to", Badge(src)},
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s:\t%s\n", r[0], r[1])
	}
	return tw.Flush()
}

// RenderSummary prints the on-screen report.
func RenderSummary(w io.Writer, s report.Summary) error {
	fmt.Fprintf(w, "Miru Mushrooms report as of %s\n", format.Date(s.Today))
	fmt.Fprintf(w, "Bookings: %d  Tubes: %s  Revenue: %s\n",
		s.TotalBookings, format.Number(s.TotalTubes), format.RWF(s.TotalRevenue))

	fmt.Fprintln(w, "\nMonthly breakdown")
	tw := newTable(w)
	fmt.Fprintln(tw, "Month\tBookings\tTubes\tRevenue\tAvg tubes")
	for _, m := range s.ByMonth {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%d\n",
			m.Label(), m.Bookings, format.Number(m.Tubes), format.Number(m.Revenue), m.AvgTubes)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w, "\nBy location")
	tw = newTable(w)
	fmt.Fprintln(tw, "Location\tFarmers\tTubes\tShare")
	for _, l := range s.ByLocation {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%d%%\n", l.Location, l.Farmers, format.Number(l.Tubes), l.Share)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w, "\nTop farmers")
	tw = newTable(w)
	for i, b := range s.TopFarmers {
		fmt.Fprintf(tw, "%d.\t%s\t%s tubes\t%s\n", i+1, b.Name, format.Number(b.Tubes), b.Location)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	return RenderUpcoming(w, s.Upcoming)
}

// RenderUpcoming prints deliveries that are still due, soonest first.
func RenderUpcoming(w io.Writer, deliveries []report.Delivery) error {
	fmt.Fprintln(w, "Upcoming deliveries")
	if len(deliveries) == 0 {
		_, err := fmt.Fprintln(w, "None.")
		return err
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "Farmer\tPhone\tTubes\tLocation\tDelivery\tDays left\tUrgency")
	for _, d := range deliveries {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%d\t%s\n",
			d.Name, d.Phone, d.Tubes, d.Location, format.Date(d.DeliveryDate), d.DaysLeft, d.Urgency)
	}
	return tw.Flush()
}

// RenderReminder prints the WhatsApp text followed by its link.
func RenderReminder(w io.Writer, r message.Reminder) error {
	_, err := fmt.Fprintf(w, "%s\n\n%s\n%s\n", r.Text, strings.Repeat("-", 40), r.Link)
	return err
}

// RenderValidation prints one line per rejected field.
func RenderValidation(w io.Writer, verr *models.ValidationError) error {
	if verr.MissingRequired() {
		fmt.Fprintln(w, "All fields are required.")
	}
	for _, name := range models.FieldNames() {
		if msg, ok := verr.Fields[name]; ok {
			fmt.Fprintf(w, "  %s: %s\n", name, msg)
		}
	}
	return nil
}
