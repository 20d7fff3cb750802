package booking

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type Repository interface {
	CreateWithTx(ctx context.Context, tx pgx.Tx, b *Booking) error
	UpdateWithTx(ctx context.Context, tx pgx.Tx, b *Booking) error
	DeleteWithTx(ctx context.Context, tx pgx.Tx, id int64) error
	FindByID(ctx context.Context, id int64) (*Booking, error)
	List(ctx context.Context, filters *ListFilters) ([]WithVehicle, int64, error)

	// CountOverlappingWithTx counts bookings on the vehicle whose inclusive
	// interval intersects [start, end], excluding excludeID (0 for new
	// records). Must run inside the transaction that holds the vehicle row
	// lock so the count reflects committed state.
	CountOverlappingWithTx(ctx context.Context, tx pgx.Tx, vehicleID int64, start, end Date, excludeID int64) (int64, error)

	// CountCoveringWithTx counts bookings on the vehicle whose interval
	// contains asOf. Used by the availability recompute.
	CountCoveringWithTx(ctx context.Context, tx pgx.Tx, vehicleID int64, asOf Date) (int64, error)
}
