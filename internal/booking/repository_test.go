package booking

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"miru/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewSQLRepository(db), mock
}

var ts = time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)

func sampleBooking() *models.Booking {
	return &models.Booking{
		ID: "b1",
		Fields: models.Fields{
			Name: "Claudette", Phone: "250788123456", Tubes: 500,
			BookingDate: models.NewDate(2024, time.January, 1), Location: "Musanze",
		},
		CreatedAt: &ts,
		UpdatedAt: &ts,
	}
}

func rowsOf(bs ...*models.Booking) *sqlmock.Rows {
	rows := sqlmock.NewRows(columns)
	for _, b := range bs {
		rows.AddRow(b.ID, b.Name, b.Phone, b.Tubes, b.BookingDate.String(), b.Location, *b.CreatedAt, *b.UpdatedAt)
	}
	return rows
}

func TestSQLRepository_Create(t *testing.T) {
	repo, mock := newMock(t)
	b := sampleBooking()

	mock.ExpectExec(`INSERT INTO bookings \(id,name,phone,tubes,booking_date,location,created_at,updated_at\)`).
		WithArgs("b1", "Claudette", "250788123456", 500, "2024-01-01", "Musanze", ts, ts).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Create(context.Background(), b))
}

func TestSQLRepository_GetByID(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(`SELECT .* FROM bookings WHERE id = \?`).
		WithArgs("b1").
		WillReturnRows(rowsOf(sampleBooking()))
	mock.ExpectQuery(`SELECT .* FROM bookings WHERE id = \?`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	got, err := repo.GetByID(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, sampleBooking(), got)

	_, err = repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLRepository_List(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(`SELECT .* FROM bookings ORDER BY created_at DESC`).
		WillReturnRows(rowsOf(sampleBooking()))
	mock.ExpectQuery(`SELECT .* FROM bookings ORDER BY booking_date ASC, created_at ASC`).
		WillReturnRows(sqlmock.NewRows(columns))

	list, err := repo.List(context.Background(), OrderNewestFirst)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = repo.List(context.Background(), OrderByBookingDate)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestSQLRepository_UpdateDelete(t *testing.T) {
	repo, mock := newMock(t)
	b := sampleBooking()

	mock.ExpectExec(`UPDATE bookings SET booking_date = \?, location = \?, name = \?, phone = \?, tubes = \?, updated_at = \? WHERE id = \?`).
		WithArgs("2024-01-01", "Musanze", "Claudette", "250788123456", 500, ts, "b1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE bookings SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM bookings WHERE id = \?`).
		WithArgs("b1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM bookings WHERE id = \?`).
		WithArgs("b1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ctx := context.Background()
	require.NoError(t, repo.Update(ctx, b))
	assert.ErrorIs(t, repo.Update(ctx, b), ErrNotFound)
	require.NoError(t, repo.Delete(ctx, "b1"))
	assert.ErrorIs(t, repo.Delete(ctx, "b1"), ErrNotFound)
}
