package models

import "time"

const (
	// PricePerTube is the fixed price of one tube in RWF.
	PricePerTube = 600
	// TubesPerSack is how many tubes fit in one sack for loading.
	TubesPerSack = 60
	// LoadingCostPerSack is the loading manpower rate in RWF.
	LoadingCostPerSack = 350
	// DeliveryWindowDays is the fulfilment window after the booking date.
	DeliveryWindowDays = 30
)

// Fields are the five editable booking fields. An update always resends all of them.
type Fields struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Tubes       int    `json:"tubes"`
	BookingDate Date   `json:"bookingDate"`
	Location    string `json:"location"`
}

// Booking represents a tube booking record.
type Booking struct {
	ID string `json:"id"`
	Fields
	CreatedAt *time.Time `json:"createdAt,omitempty"` // set by the remote store only
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// DeliveryDate is the booking date plus the delivery window.
func (f Fields) DeliveryDate() Date {
	return f.BookingDate.AddDays(DeliveryWindowDays)
}

// Amount is the total price in RWF.
func (f Fields) Amount() int {
	return f.Tubes * PricePerTube
}

// Sacks is ceil(tubes / TubesPerSack).
func (f Fields) Sacks() int {
	if f.Tubes <= 0 {
		return 0
	}
	return (f.Tubes + TubesPerSack - 1) / TubesPerSack
}

// LoadingCost is the loading manpower cost in RWF.
func (f Fields) LoadingCost() int {
	return f.Sacks() * LoadingCostPerSack
}

// IsUpcoming reports whether the delivery date is today or later.
func (f Fields) IsUpcoming(today Date) bool {
	return !f.DeliveryDate().Before(today)
}

// WithFields returns a copy of b with its editable fields replaced.
func (b Booking) WithFields(f Fields) Booking {
	b.Fields = f
	return b
}

// FindByID returns the index of the booking with id, or -1.
func FindByID(list []Booking, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}
