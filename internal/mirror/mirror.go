package mirror

import (
	"context"
	"encoding/json"

	"miru/internal/models"

	"github.com/rs/zerolog"
)

// DefaultKey is the storage key of the mirrored booking list.
const DefaultKey = "miru_bookings"

// Store persists the whole booking list as one serialized value.
// Read never fails on absent or corrupt data; it returns an empty list instead.
type Store interface {
	Read(ctx context.Context) ([]models.Booking, error)
	Write(ctx context.Context, bookings []models.Booking) error
}

func decode(data []byte, source string, logger *zerolog.Logger) []models.Booking {
	if len(data) == 0 {
		return []models.Booking{}
	}
	var list []models.Booking
	if err := json.Unmarshal(data, &list); err != nil {
		logger.Warn().Err(err).Str("source", source).Msg("mirror data is corrupt, treating as empty")
		return []models.Booking{}
	}
	if list == nil {
		list = []models.Booking{}
	}
	return list
}

func encode(bookings []models.Booking) ([]byte, error) {
	if bookings == nil {
		bookings = []models.Booking{}
	}
	return json.MarshalIndent(bookings, "", "  ")
}
