package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"miru/internal/models"

	"github.com/Masterminds/squirrel"
)

type Repository interface {
	Create(ctx context.Context, b *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	List(ctx context.Context, order Order) ([]models.Booking, error)
	Update(ctx context.Context, b *models.Booking) error
	Delete(ctx context.Context, id string) error
}

type sqlRepository struct {
	db *sql.DB
}

func NewSQLRepository(db *sql.DB) Repository {
	return &sqlRepository{db: db}
}

var columns = []string{"id", "name", "phone", "tubes", "booking_date", "location", "created_at", "updated_at"}

func (r *sqlRepository) Create(ctx context.Context, b *models.Booking) error {
	query, args, err := squirrel.Insert("bookings").
		Columns(columns...).
		Values(b.ID, b.Name, b.Phone, b.Tubes, b.BookingDate.String(), b.Location, b.CreatedAt, b.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create booking failed: %w", err)
	}
	return nil
}

func (r *sqlRepository) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	query, args, err := squirrel.Select(columns...).
		From("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *sqlRepository) List(ctx context.Context, order Order) ([]models.Booking, error) {
	q := squirrel.Select(columns...).From("bookings")
	switch order {
	case OrderByBookingDate:
		q = q.OrderBy("booking_date ASC", "created_at ASC")
	default:
		q = q.OrderBy("created_at DESC")
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	out := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (r *sqlRepository) Update(ctx context.Context, b *models.Booking) error {
	query, args, err := squirrel.Update("bookings").
		SetMap(map[string]any{
			"name":         b.Name,
			"phone":        b.Phone,
			"tubes":        b.Tubes,
			"booking_date": b.BookingDate.String(),
			"location":     b.Location,
			"updated_at":   b.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": b.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update booking query failed: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update booking failed: %w", err)
	}
	return requireAffected(res)
}

func (r *sqlRepository) Delete(ctx context.Context, id string) error {
	query, args, err := squirrel.Delete("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete booking query failed: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete booking failed: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBooking(row scanner) (*models.Booking, error) {
	var (
		b                    models.Booking
		bookingDate          string
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&b.ID, &b.Name, &b.Phone, &b.Tubes, &bookingDate, &b.Location, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	date, err := models.ParseDate(bookingDate)
	if err != nil {
		return nil, err
	}
	b.BookingDate = date
	b.CreatedAt = &createdAt
	b.UpdatedAt = &updatedAt
	return &b, nil
}
