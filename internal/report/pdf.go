package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"miru/internal/format"

	"github.com/phpdave11/gofpdf"
)

const (
	pageW        = 210.0
	pageH        = 297.0
	margin       = 14.0
	contentW     = pageW - margin*2
	footerTop    = 287.0
	contentLimit = footerTop - 4
	newPageAbove = 230.0
)

type rgb [3]int

var (
	colDark   = rgb{0x1a, 0x2e, 0x1a}
	colAccent = rgb{0x4a, 0x7c, 0x59}
	colPale   = rgb{0xe8, 0xf5, 0xe9}
	colLight  = rgb{0xc8, 0xe6, 0xc9}
	colTotal  = rgb{0xd5, 0xed, 0xd6}
	colWhite  = rgb{255, 255, 255}
	colMuted  = rgb{120, 120, 120}
	colBody   = rgb{30, 50, 30}
	colRed    = rgb{0xdc, 0x26, 0x26}
	colGold   = rgb{0xf5, 0x9e, 0x0b}
)

// PDFFilename is the download name of the report generated at t.
func PDFFilename(t time.Time) string {
	return "Miru_Report_" + t.Format("20060102") + ".pdf"
}

// WritePDF renders the booking report for s to w.
func WritePDF(w io.Writer, s Summary, generated time.Time) error {
	r := newPDFRenderer(generated.Format("02 January 2006, 15:04"))

	r.pdf.AddPage()
	r.header()
	r.kpis(s)
	r.monthly(s.ByMonth)
	r.locations(s.ByLocation)

	r.pdf.AddPage()
	r.register(s)
	if len(s.Upcoming) > 0 {
		r.upcoming(s.Upcoming)
	}

	if err := r.pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

type pdfRenderer struct {
	pdf     *gofpdf.Fpdf
	tr      func(string) string
	genDate string
}

func newPDFRenderer(genDate string) *pdfRenderer {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Miru Mushrooms Booking Report", true)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, 0)

	r := &pdfRenderer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), genDate: genDate}
	pdf.SetFooterFunc(r.footer)
	return r
}

func (r *pdfRenderer) fill(c rgb) { r.pdf.SetFillColor(c[0], c[1], c[2]) }
func (r *pdfRenderer) textColor(c rgb) { r.pdf.SetTextColor(c[0], c[1], c[2]) }

func (r *pdfRenderer) footer() {
	p := r.pdf
	r.fill(colDark)
	p.Rect(0, footerTop, pageW, pageH-footerTop, "F")
	p.SetFont("Helvetica", "", 7.5)
	r.textColor(colLight)
	p.SetXY(margin, footerTop+3)
	p.CellFormat(contentW/2, 4, "Miru Mushrooms - Confidential Booking Report", "", 0, "L", false, 0, "")
	p.CellFormat(contentW/2, 4, fmt.Sprintf("Page %d  |  %s", p.PageNo(), r.genDate), "", 0, "R", false, 0, "")
}

func (r *pdfRenderer) header() {
	p := r.pdf
	y := margin
	r.fill(colDark)
	p.Rect(margin, y, contentW, 22, "F")

	p.SetFont("Helvetica", "B", 18)
	r.textColor(colWhite)
	p.SetXY(margin, y+3)
	p.CellFormat(contentW, 8, "MIRU MUSHROOMS", "", 0, "C", false, 0, "")

	p.SetFont("Helvetica", "", 10)
	r.textColor(colLight)
	p.SetXY(margin, y+12)
	p.CellFormat(contentW, 6, "Booking Report", "", 0, "C", false, 0, "")

	p.SetFont("Helvetica", "", 8)
	r.textColor(colMuted)
	p.SetXY(margin, y+24)
	p.CellFormat(contentW, 5, "Generated on "+r.genDate, "", 0, "C", false, 0, "")
	p.SetY(y + 32)
}

func (r *pdfRenderer) kpis(s Summary) {
	p := r.pdf
	cards := []struct{ label, value string }{
		{"TOTAL BOOKINGS", strconv.Itoa(s.TotalBookings)},
		{"TOTAL TUBES", format.Number(s.TotalTubes)},
		{"TOTAL REVENUE (RWF)", format.Number(s.TotalRevenue)},
		{"UPCOMING DELIVERIES", strconv.Itoa(len(s.Upcoming))},
	}
	y := p.GetY()
	cardW := (contentW - 6) / 4
	for i, c := range cards {
		x := margin + float64(i)*(cardW+2)
		r.fill(colPale)
		p.Rect(x, y, cardW, 18, "F")
		r.fill(colAccent)
		p.Rect(x, y+2, 1.2, 14, "F")

		p.SetFont("Helvetica", "B", 14)
		r.textColor(colAccent)
		p.SetXY(x, y+3)
		p.CellFormat(cardW, 7, c.value, "", 0, "C", false, 0, "")

		p.SetFont("Helvetica", "", 6.5)
		r.textColor(colMuted)
		p.SetXY(x, y+11)
		p.CellFormat(cardW, 4, c.label, "", 0, "C", false, 0, "")
	}
	p.SetY(y + 24)
}

func (r *pdfRenderer) section(title string) {
	p := r.pdf
	p.SetFont("Helvetica", "B", 11)
	r.textColor(colDark)
	p.SetX(margin)
	p.CellFormat(contentW, 5, title, "", 1, "L", false, 0, "")
	p.SetDrawColor(colAccent[0], colAccent[1], colAccent[2])
	p.SetLineWidth(0.4)
	y := p.GetY() + 0.5
	p.Line(margin, y, margin+contentW, y)
	p.SetY(y + 1.5)
}

func (r *pdfRenderer) monthly(stats []MonthStat) {
	r.section("Monthly Booking Summary")
	cols := []column{
		{"Month", 0.22, "L"},
		{"Bookings", 0.14, "C"},
		{"Tubes", 0.14, "R"},
		{"Revenue (RWF)", 0.30, "R"},
		{"Avg Tubes", 0.20, "C"},
	}
	rows := make([][]string, 0, len(stats))
	for _, m := range stats {
		rows = append(rows, []string{
			m.Label(),
			strconv.Itoa(m.Bookings),
			format.Number(m.Tubes),
			format.RWF(m.Revenue),
			strconv.Itoa(m.AvgTubes),
		})
	}
	if len(rows) == 0 {
		rows = append(rows, []string{"No data yet", "", "", "", ""})
	}
	r.table(tableLayout{cols: cols, rows: rows, fontSize: 8.5, rowH: 7})
	r.pdf.Ln(8)
}

func (r *pdfRenderer) locations(stats []LocationStat) {
	r.section("Bookings by Location")
	cols := []column{
		{"Location", 0.45, "L"},
		{"Farmers", 0.18, "C"},
		{"Total Tubes", 0.22, "R"},
		{"% of Total", 0.15, "C"},
	}
	rows := make([][]string, 0, len(stats))
	for _, l := range stats {
		rows = append(rows, []string{
			l.Location,
			strconv.Itoa(l.Farmers),
			format.Number(l.Tubes),
			strconv.Itoa(l.Share) + "%",
		})
	}
	if len(rows) == 0 {
		rows = append(rows, []string{"No data", "", "", ""})
	}
	r.table(tableLayout{cols: cols, rows: rows, fontSize: 8.5, rowH: 7})
}

func (r *pdfRenderer) register(s Summary) {
	r.section("Complete Booking Register")
	cols := []column{
		{"#", 0.05, "C"},
		{"Farmer Name", 0.17, "L"},
		{"Phone", 0.13, "L"},
		{"Location", 0.15, "L"},
		{"Tubes", 0.08, "R"},
		{"Amount (RWF)", 0.14, "R"},
		{"Booked", 0.14, "C"},
		{"Delivery", 0.14, "C"},
	}
	rows := make([][]string, 0, len(s.Register)+1)
	for i, b := range s.Register {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			b.Name,
			b.Phone,
			b.Location,
			format.Number(b.Tubes),
			format.RWF(b.Amount()),
			format.Date(b.BookingDate),
			format.Date(b.DeliveryDate()),
		})
	}
	rows = append(rows, []string{"", "TOTAL", "", "", format.Number(s.TotalTubes), format.RWF(s.TotalRevenue), "", ""})
	totalRow := len(rows) - 1

	r.table(tableLayout{
		cols: cols, rows: rows, fontSize: 7.5, rowH: 6,
		style: func(row, col int) cellStyle {
			if row == totalRow {
				return cellStyle{bold: true, fill: &colTotal}
			}
			return cellStyle{bold: col == 1}
		},
	})
	r.pdf.Ln(8)
}

func (r *pdfRenderer) upcoming(list []Delivery) {
	if r.pdf.GetY() > newPageAbove {
		r.pdf.AddPage()
	}
	r.section(fmt.Sprintf("Upcoming Deliveries (%d)", len(list)))
	cols := []column{
		{"Farmer", 0.22, "L"},
		{"Phone", 0.16, "L"},
		{"Location", 0.22, "L"},
		{"Tubes", 0.10, "R"},
		{"Delivery Date", 0.18, "C"},
		{"Days Left", 0.12, "C"},
	}
	rows := make([][]string, 0, len(list))
	for _, u := range list {
		rows = append(rows, []string{
			u.Name,
			u.Phone,
			u.Location,
			format.Number(u.Tubes),
			format.Date(u.DeliveryDate),
			fmt.Sprintf("%dd", u.DaysLeft),
		})
	}
	r.table(tableLayout{
		cols: cols, rows: rows, fontSize: 8, rowH: 7,
		style: func(row, col int) cellStyle {
			switch col {
			case 0, 1:
				return cellStyle{bold: true}
			case 5:
				c := urgencyColor(list[row].Urgency)
				return cellStyle{bold: true, color: &c}
			}
			return cellStyle{}
		},
	})
}

func urgencyColor(u Urgency) rgb {
	switch u {
	case UrgencyUrgent:
		return colRed
	case UrgencySoon:
		return colGold
	default:
		return colAccent
	}
}

type column struct {
	title string
	share float64 // fraction of the content width
	align string
}

type cellStyle struct {
	bold  bool
	fill  *rgb
	color *rgb
}

type tableLayout struct {
	cols     []column
	rows     [][]string
	fontSize float64
	rowH     float64
	style    func(row, col int) cellStyle
}

// table draws a header row and body rows, repeating the header after a page break.
func (r *pdfRenderer) table(t tableLayout) {
	p := r.pdf
	drawHeader := func() {
		p.SetFont("Helvetica", "B", t.fontSize)
		r.fill(colDark)
		r.textColor(colWhite)
		p.SetX(margin)
		for _, c := range t.cols {
			w := contentW * c.share
			p.CellFormat(w, t.rowH, r.fit(c.title, w), "", 0, c.align, true, 0, "")
		}
		p.Ln(-1)
	}

	drawHeader()
	for i, row := range t.rows {
		if p.GetY()+t.rowH > contentLimit {
			p.AddPage()
			drawHeader()
		}
		p.SetX(margin)
		for j, c := range t.cols {
			st := cellStyle{}
			if t.style != nil {
				st = t.style(i, j)
			}
			fill := i%2 == 1
			if st.fill != nil {
				r.fill(*st.fill)
				fill = true
			} else {
				r.fill(colPale)
			}
			if st.color != nil {
				r.textColor(*st.color)
			} else {
				r.textColor(colBody)
			}
			fontStyle := ""
			if st.bold {
				fontStyle = "B"
			}
			p.SetFont("Helvetica", fontStyle, t.fontSize)

			w := contentW * c.share
			text := ""
			if j < len(row) {
				text = row[j]
			}
			p.CellFormat(w, t.rowH, r.tr(r.fit(text, w)), "", 0, c.align, fill, 0, "")
		}
		p.Ln(-1)
	}
}

// fit trims text with an ellipsis until it fits the cell width.
func (r *pdfRenderer) fit(text string, w float64) string {
	const pad = 2
	if r.pdf.GetStringWidth(text) <= w-pad {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 && r.pdf.GetStringWidth(string(runes)+"...") > w-pad {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
