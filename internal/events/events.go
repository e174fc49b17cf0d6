package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Type names a booking change.
type Type string

const (
	BookingCreated Type = "booking.created"
	BookingUpdated Type = "booking.updated"
	BookingDeleted Type = "booking.deleted"
)

// Event describes one committed change to the booking store.
type Event struct {
	Type      Type
	BookingID string
	Name      string
	Tubes     int
	At        time.Time
}

// Handler reacts to an event.
type Handler func(Event) error

// Bus provides in-process pub/sub for booking events.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[Type][]Handler
	logger      *zerolog.Logger
}

func NewBus(logger *zerolog.Logger) *Bus {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Bus{subscribers: make(map[Type][]Handler), logger: logger}
}

// Subscribe registers h for the given types, or for all of them when none are given.
func (b *Bus) Subscribe(h Handler, types ...Type) {
	if len(types) == 0 {
		types = []Type{BookingCreated, BookingUpdated, BookingDeleted}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range types {
		b.subscribers[t] = append(b.subscribers[t], h)
	}
}

// Publish runs the subscribers of e.Type synchronously. Handler errors are logged, not returned.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[e.Type]...)
	b.mu.RUnlock()

	if e.At.IsZero() {
		e.At = time.Now()
	}
	for _, h := range handlers {
		if err := h(e); err != nil {
			b.logger.Warn().Err(err).Str("event", string(e.Type)).Str("booking_id", e.BookingID).Msg("event handler failed")
		}
	}
}

// AuditLogger returns a handler that writes each event to logger.
func AuditLogger(logger *zerolog.Logger) Handler {
	return func(e Event) error {
		logger.Info().
			Str("event", string(e.Type)).
			Str("booking_id", e.BookingID).
			Str("name", e.Name).
			Int("tubes", e.Tubes).
			Time("at", e.At).
			Msg("booking changed")
		return nil
	}
}
