package models

import (
	"regexp"
	"strconv"
	"strings"
)

// Field names as they appear in validation errors and on the wire.
const (
	FieldName        = "name"
	FieldPhone       = "phone"
	FieldTubes       = "tubes"
	FieldBookingDate = "bookingDate"
	FieldLocation    = "location"
)

const msgRequired = "is required"

var (
	fieldOrder = []string{FieldName, FieldPhone, FieldTubes, FieldBookingDate, FieldLocation}

	phonePattern    = regexp.MustCompile(`^\+?[0-9]{9,15}$`)
	phoneSeparators = strings.NewReplacer("-", "", "(", "", ")", "", ".", "")
)

// FieldNames lists the editable fields in form order.
func FieldNames() []string {
	return append([]string(nil), fieldOrder...)
}

// Draft is unvalidated form input.
type Draft struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Tubes       string `json:"tubes"`
	BookingDate string `json:"bookingDate"`
	Location    string `json:"location"`
}

// DraftFrom fills a draft with the current values of a booking, e.g. for editing.
func DraftFrom(b Booking) Draft {
	return Draft{
		Name:        b.Name,
		Phone:       b.Phone,
		Tubes:       strconv.Itoa(b.Tubes),
		BookingDate: b.BookingDate.String(),
		Location:    b.Location,
	}
}

// ValidationError carries a message per invalid field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range fieldOrder {
		if msg, ok := e.Fields[f]; ok {
			parts = append(parts, f+": "+msg)
		}
	}
	if len(parts) == 0 {
		return "validation error"
	}
	return strings.Join(parts, "; ")
}

// MissingRequired reports whether any field failed because it was blank.
func (e *ValidationError) MissingRequired() bool {
	for _, msg := range e.Fields {
		if msg == msgRequired {
			return true
		}
	}
	return false
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
}

// Validate trims and checks the draft and converts it to typed fields.
func (d Draft) Validate() (Fields, error) {
	var (
		out  Fields
		verr ValidationError
	)

	out.Name = strings.TrimSpace(d.Name)
	if out.Name == "" {
		verr.add(FieldName, msgRequired)
	}

	out.Phone = strings.TrimSpace(d.Phone)
	switch {
	case out.Phone == "":
		verr.add(FieldPhone, msgRequired)
	case !ValidPhone(out.Phone):
		verr.add(FieldPhone, "must contain 9 to 15 digits")
	}

	tubes := strings.TrimSpace(d.Tubes)
	if tubes == "" {
		verr.add(FieldTubes, msgRequired)
	} else if n, err := strconv.Atoi(tubes); err != nil {
		verr.add(FieldTubes, "must be a whole number")
	} else if n < 1 {
		verr.add(FieldTubes, "must be at least 1")
	} else {
		out.Tubes = n
	}

	if strings.TrimSpace(d.BookingDate) == "" {
		verr.add(FieldBookingDate, msgRequired)
	} else if date, err := ParseDate(d.BookingDate); err != nil {
		verr.add(FieldBookingDate, "must be a date in YYYY-MM-DD format")
	} else {
		out.BookingDate = date
	}

	out.Location = strings.TrimSpace(d.Location)
	if out.Location == "" {
		verr.add(FieldLocation, msgRequired)
	}

	if len(verr.Fields) > 0 {
		return Fields{}, &verr
	}
	return out, nil
}

// ValidPhone checks the phone has 9-15 digits once whitespace and separators are removed.
func ValidPhone(phone string) bool {
	compact := strings.Join(strings.Fields(phone), "")
	compact = phoneSeparators.Replace(compact)
	return phonePattern.MatchString(compact)
}

// PhoneDigits strips every non-digit character.
func PhoneDigits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
