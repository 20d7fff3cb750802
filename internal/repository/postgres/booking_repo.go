package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rentals-service/internal/domain/booking"
	"rentals-service/internal/domain/vehicle"
	xerrors "rentals-service/internal/pkg/errors"
)

type BookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{db: db}
}

// CreateWithTx inserts a booking inside the caller's transaction. The caller
// must already hold the vehicle row lock.
func (r *BookingRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, b *booking.Booking) error {
	query := `
		INSERT INTO bookings (
			booking_reference, vehicle_id, customer_name, customer_phone,
			start_date, end_date, total_amount
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := tx.QueryRow(
		ctx, query,
		b.BookingReference, b.VehicleID, b.CustomerName, b.CustomerPhone,
		b.StartDate.Time, b.EndDate.Time, b.TotalAmount,
	).Scan(&b.ID, &b.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

// UpdateWithTx persists mutable booking fields. booking_reference and
// created_at are immutable and never rewritten.
func (r *BookingRepository) UpdateWithTx(ctx context.Context, tx pgx.Tx, b *booking.Booking) error {
	query := `
		UPDATE bookings
		SET vehicle_id = $1, customer_name = $2, customer_phone = $3,
		    start_date = $4, end_date = $5, total_amount = $6
		WHERE id = $7
	`

	tag, err := tx.Exec(
		ctx, query,
		b.VehicleID, b.CustomerName, b.CustomerPhone,
		b.StartDate.Time, b.EndDate.Time, b.TotalAmount, b.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

func (r *BookingRepository) DeleteWithTx(ctx context.Context, tx pgx.Tx, id int64) error {
	tag, err := tx.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// FindByID retrieves a booking by ID
func (r *BookingRepository) FindByID(ctx context.Context, id int64) (*booking.Booking, error) {
	query := `
		SELECT id, booking_reference, vehicle_id, customer_name, customer_phone,
		       start_date, end_date, total_amount, created_at
		FROM bookings
		WHERE id = $1
	`

	b, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return b, nil
}

func scanBooking(row pgx.Row) (*booking.Booking, error) {
	var b booking.Booking
	var start, end time.Time

	err := row.Scan(
		&b.ID, &b.BookingReference, &b.VehicleID, &b.CustomerName, &b.CustomerPhone,
		&start, &end, &b.TotalAmount, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.StartDate = booking.DateOf(start)
	b.EndDate = booking.DateOf(end)
	return &b, nil
}

// List returns bookings joined with their vehicle summary, newest first.
func (r *BookingRepository) List(ctx context.Context, filters *booking.ListFilters) ([]booking.WithVehicle, int64, error) {
	conditions := []string{"TRUE"}
	args := []interface{}{}
	argPos := 1

	if filters.VehicleID != nil {
		conditions = append(conditions, fmt.Sprintf("b.vehicle_id = $%d", argPos))
		args = append(args, *filters.VehicleID)
		argPos++
	}

	if filters.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("b.start_date = $%d", argPos))
		args = append(args, filters.StartDate.Time)
		argPos++
	}

	if filters.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("b.end_date = $%d", argPos))
		args = append(args, filters.EndDate.Time)
		argPos++
	}

	if filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(b.customer_name ILIKE $%d OR b.customer_phone ILIKE $%d)", argPos, argPos,
		))
		args = append(args, "%"+filters.Search+"%")
		argPos++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM bookings b WHERE %s", whereClause)
	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 20
	}

	offset := (filters.Page - 1) * filters.PageSize
	limit := filters.PageSize

	query := fmt.Sprintf(`
		SELECT b.id, b.booking_reference, b.vehicle_id, b.customer_name, b.customer_phone,
		       b.start_date, b.end_date, b.total_amount, b.created_at,
		       v.id, v.name, v.brand, v.year, v.fuel_type
		FROM bookings b
		JOIN vehicles v ON v.id = b.vehicle_id
		WHERE %s
		ORDER BY b.created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argPos, argPos+1)

	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	bookings := []booking.WithVehicle{}
	for rows.Next() {
		var bw booking.WithVehicle
		var start, end time.Time
		var fuelType string

		err := rows.Scan(
			&bw.ID, &bw.BookingReference, &bw.VehicleID, &bw.CustomerName, &bw.CustomerPhone,
			&start, &end, &bw.TotalAmount, &bw.CreatedAt,
			&bw.Vehicle.ID, &bw.Vehicle.Name, &bw.Vehicle.Brand, &bw.Vehicle.Year, &fuelType,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan booking: %w", err)
		}

		bw.StartDate = booking.DateOf(start)
		bw.EndDate = booking.DateOf(end)
		bw.Vehicle.FuelType = vehicle.FuelType(fuelType)
		bookings = append(bookings, bw)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read bookings: %w", err)
	}

	return bookings, total, nil
}

// CountOverlappingWithTx counts bookings on the vehicle intersecting the
// inclusive interval [start, end], excluding excludeID. Runs on the caller's
// transaction so the result reflects state committed before the vehicle row
// lock was granted.
func (r *BookingRepository) CountOverlappingWithTx(ctx context.Context, tx pgx.Tx, vehicleID int64, start, end booking.Date, excludeID int64) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM bookings
		WHERE vehicle_id = $1
		  AND start_date <= $2
		  AND end_date >= $3
		  AND id <> $4
	`

	var count int64
	err := tx.QueryRow(ctx, query, vehicleID, end.Time, start.Time, excludeID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count overlapping bookings: %w", err)
	}

	return count, nil
}

// CountCoveringWithTx counts bookings whose interval contains asOf.
func (r *BookingRepository) CountCoveringWithTx(ctx context.Context, tx pgx.Tx, vehicleID int64, asOf booking.Date) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM bookings
		WHERE vehicle_id = $1
		  AND start_date <= $2
		  AND end_date >= $2
	`

	var count int64
	err := tx.QueryRow(ctx, query, vehicleID, asOf.Time).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active bookings: %w", err)
	}

	return count, nil
}
