package booking

import (
	"context"
	"testing"
	"time"

	"miru/internal/events"
	"miru/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *mockRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockRepo) List(ctx context.Context, order Order) ([]models.Booking, error) {
	args := m.Called(ctx, order)
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *mockRepo) Update(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *mockRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func TestService_Create(t *testing.T) {
	repo := new(mockRepo)
	svc := NewService(repo)
	ctx := context.Background()
	f := sampleBooking().Fields

	repo.On("Create", ctx, mock.MatchedBy(func(b *models.Booking) bool {
		return b.Fields == f && b.CreatedAt != nil && b.UpdatedAt != nil
	})).Return(nil).Once()

	got, err := svc.Create(ctx, f)
	require.NoError(t, err)
	_, err = uuid.Parse(got.ID)
	assert.NoError(t, err)
	assert.Equal(t, f, got.Fields)
	repo.AssertExpectations(t)
}

func TestService_Update(t *testing.T) {
	repo := new(mockRepo)
	svc := NewService(repo)
	ctx := context.Background()
	f := sampleBooking().Fields

	repo.On("Update", ctx, mock.AnythingOfType("*models.Booking")).Return(nil).Once()
	repo.On("GetByID", ctx, "b1").Return(sampleBooking(), nil).Once()
	repo.On("Update", ctx, mock.AnythingOfType("*models.Booking")).Return(ErrNotFound).Once()

	got, err := svc.Update(ctx, "b1", f)
	require.NoError(t, err)
	assert.Equal(t, "b1", got.ID)

	_, err = svc.Update(ctx, "b1", f)
	assert.ErrorIs(t, err, ErrNotFound)
	repo.AssertExpectations(t)
}

func TestService_ListOrders(t *testing.T) {
	repo := new(mockRepo)
	svc := NewService(repo)
	ctx := context.Background()

	repo.On("List", ctx, OrderNewestFirst).Return([]models.Booking{{ID: "a"}}, nil).Once()
	repo.On("List", ctx, OrderByBookingDate).Return([]models.Booking{{ID: "b"}}, nil).Once()

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", list[0].ID)

	list, err = svc.ListForReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", list[0].ID)
	repo.AssertExpectations(t)
}

func TestService_UsesUTC(t *testing.T) {
	svc := NewService(new(mockRepo)).(*service)
	assert.Equal(t, time.UTC, svc.now().Location())
}

func TestService_PublishesEvents(t *testing.T) {
	repo := new(mockRepo)
	bus := events.NewBus(nil)
	var got []events.Event
	bus.Subscribe(func(e events.Event) error { got = append(got, e); return nil })

	svc := NewService(repo, WithEvents(bus))
	ctx := context.Background()
	f := sampleBooking().Fields

	repo.On("Create", ctx, mock.Anything).Return(nil).Once()
	repo.On("Delete", ctx, "b1").Return(nil).Once()
	repo.On("Delete", ctx, "missing").Return(ErrNotFound).Once()

	created, err := svc.Create(ctx, f)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, "b1"))
	assert.ErrorIs(t, svc.Delete(ctx, "missing"), ErrNotFound)

	require.Len(t, got, 2)
	assert.Equal(t, events.BookingCreated, got[0].Type)
	assert.Equal(t, created.ID, got[0].BookingID)
	assert.Equal(t, f.Tubes, got[0].Tubes)
	assert.Equal(t, events.BookingDeleted, got[1].Type)
	assert.Equal(t, "b1", got[1].BookingID)
	repo.AssertExpectations(t)
}
