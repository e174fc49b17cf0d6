package booking

import (
	"context"
	"time"

	"miru/internal/events"
	"miru/internal/models"

	"github.com/google/uuid"
)

type Service interface {
	List(ctx context.Context) ([]models.Booking, error)
	ListForReport(ctx context.Context) ([]models.Booking, error)
	Create(ctx context.Context, f models.Fields) (*models.Booking, error)
	Update(ctx context.Context, id string, f models.Fields) (*models.Booking, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo   Repository
	events *events.Bus
	now    func() time.Time
	newID  func() string
}

type ServiceOption func(*service)

// WithEvents publishes a change event after every committed write.
func WithEvents(bus *events.Bus) ServiceOption {
	return func(s *service) { s.events = bus }
}

func NewService(repo Repository, opts ...ServiceOption) Service {
	s := &service{
		repo:  repo,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns all bookings, newest first.
func (s *service) List(ctx context.Context) ([]models.Booking, error) {
	return s.repo.List(ctx, OrderNewestFirst)
}

// ListForReport returns all bookings by booking date, oldest first.
func (s *service) ListForReport(ctx context.Context) ([]models.Booking, error) {
	return s.repo.List(ctx, OrderByBookingDate)
}

func (s *service) Create(ctx context.Context, f models.Fields) (*models.Booking, error) {
	now := s.now()
	b := &models.Booking{
		ID:        s.newID(),
		Fields:    f,
		CreatedAt: &now,
		UpdatedAt: &now,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	s.publish(events.BookingCreated, b.ID, f, now)
	return b, nil
}

// Update replaces the editable fields and returns the stored record.
func (s *service) Update(ctx context.Context, id string, f models.Fields) (*models.Booking, error) {
	now := s.now()
	b := &models.Booking{ID: id, Fields: f, UpdatedAt: &now}
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	s.publish(events.BookingUpdated, id, f, now)
	return s.repo.GetByID(ctx, id)
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(events.BookingDeleted, id, models.Fields{}, s.now())
	return nil
}

func (s *service) publish(t events.Type, id string, f models.Fields, at time.Time) {
	s.events.Publish(events.Event{Type: t, BookingID: id, Name: f.Name, Tubes: f.Tubes, At: at})
}
