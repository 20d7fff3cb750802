package vehicle

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type Repository interface {
	Create(ctx context.Context, v *Vehicle) error
	FindByID(ctx context.Context, id int64) (*Vehicle, error)
	Update(ctx context.Context, v *Vehicle) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filters *ListFilters) ([]Vehicle, int64, error)

	// LockForUpdate reads the vehicle row with SELECT ... FOR UPDATE,
	// holding an exclusive row lock until the transaction ends. Every
	// booking mutation takes this lock before touching the vehicle's
	// bookings, so mutations on one vehicle are strictly serialized.
	LockForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*Vehicle, error)

	// UpdateAvailabilityWithTx persists only the derived is_available flag.
	UpdateAvailabilityWithTx(ctx context.Context, tx pgx.Tx, id int64, isAvailable bool) error
}
