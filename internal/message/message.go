package message

import (
	"fmt"
	"strings"

	"miru/internal/format"
	"miru/internal/models"
)

const whatsAppBase = "https://wa.me/"

const template = `Dear %s,
Thank you for booking %d mushroom tubes with Miru Mushrooms!

Delivery Date: %s
(%d days from your booking date)

Total Amount: %s

--- Additional Costs to Prepare For ---

Loading Manpower: %s
(%d tubes = %d %s x %d RWF per sack)

Transportation: Our team will contact you with the exact cost based on your location in %s.

Thank you for trusting us - Miru Mushrooms Team`

// Reminder is a ready-to-send WhatsApp message for one booking.
type Reminder struct {
	Text string
	Link string
}

// Build renders the reminder text and its wa.me deep link.
func Build(b models.Booking) Reminder {
	text := Text(b)
	return Reminder{
		Text: text,
		Link: whatsAppBase + models.PhoneDigits(b.Phone) + "?text=" + encodeURIComponent(text),
	}
}

// Text renders the reminder body.
func Text(b models.Booking) string {
	sacks := b.Sacks()
	noun := "sack"
	if sacks > 1 {
		noun = "sacks"
	}
	return fmt.Sprintf(template,
		b.Name,
		b.Tubes,
		format.Date(b.DeliveryDate()),
		models.DeliveryWindowDays,
		format.RWF(b.Amount()),
		format.RWF(b.LoadingCost()),
		b.Tubes, sacks, noun, models.LoadingCostPerSack,
		b.Location,
	)
}

const upperhex = "0123456789ABCDEF"

// encodeURIComponent percent-encodes every byte outside A-Z a-z 0-9 - _ . ! ~ * ' ( ).
func encodeURIComponent(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(upperhex[c>>4])
		sb.WriteByte(upperhex[c&15])
	}
	return sb.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
