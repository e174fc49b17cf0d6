package http

import (
	"bytes"
	"encoding/json"

	"miru/internal/models"
)

// BookingRequest is the body of create and update calls.
type BookingRequest struct {
	Name        string     `json:"name"`
	Phone       string     `json:"phone"`
	Tubes       tubesValue `json:"tubes"`
	BookingDate string     `json:"bookingDate"`
	Location    string     `json:"location"`
}

func (r BookingRequest) Draft() models.Draft {
	return models.Draft{
		Name:        r.Name,
		Phone:       r.Phone,
		Tubes:       string(r.Tubes),
		BookingDate: r.BookingDate,
		Location:    r.Location,
	}
}

// tubesValue accepts a JSON number or a numeric string.
type tubesValue string

func (v *tubesValue) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = tubesValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*v = tubesValue(n.String())
	return nil
}

// DeleteResponse is the data of a successful delete.
type DeleteResponse struct {
	ID string `json:"id"`
}
