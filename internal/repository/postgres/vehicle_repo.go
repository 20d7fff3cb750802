package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rentals-service/internal/domain/vehicle"
	xerrors "rentals-service/internal/pkg/errors"
)

type VehicleRepository struct {
	db *pgxpool.Pool
}

func NewVehicleRepository(db *pgxpool.Pool) *VehicleRepository {
	return &VehicleRepository{db: db}
}

const vehicleColumns = `id, name, brand, year, price_per_day, fuel_type, is_available, created_at, updated_at`

func scanVehicle(row pgx.Row) (*vehicle.Vehicle, error) {
	var v vehicle.Vehicle
	var fuelType string

	err := row.Scan(
		&v.ID, &v.Name, &v.Brand, &v.Year, &v.PricePerDay,
		&fuelType, &v.IsAvailable, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	v.FuelType = vehicle.FuelType(fuelType)
	return &v, nil
}

// Create inserts a new vehicle. New vehicles start out available; the flag
// only changes through the availability recompute.
func (r *VehicleRepository) Create(ctx context.Context, v *vehicle.Vehicle) error {
	query := `
		INSERT INTO vehicles (name, brand, year, price_per_day, fuel_type, is_available)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING id, is_available, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		v.Name, v.Brand, v.Year, v.PricePerDay, string(v.FuelType),
	).Scan(&v.ID, &v.IsAvailable, &v.CreatedAt, &v.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create vehicle: %w", err)
	}

	return nil
}

// FindByID retrieves a vehicle by ID
func (r *VehicleRepository) FindByID(ctx context.Context, id int64) (*vehicle.Vehicle, error) {
	query := fmt.Sprintf(`SELECT %s FROM vehicles WHERE id = $1`, vehicleColumns)

	v, err := scanVehicle(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find vehicle: %w", err)
	}

	return v, nil
}

// Update persists catalog fields. is_available is deliberately not touched
// here; only UpdateAvailabilityWithTx writes it.
func (r *VehicleRepository) Update(ctx context.Context, v *vehicle.Vehicle) error {
	query := `
		UPDATE vehicles
		SET name = $1, brand = $2, year = $3, price_per_day = $4, fuel_type = $5, updated_at = NOW()
		WHERE id = $6
	`

	tag, err := r.db.Exec(ctx, query, v.Name, v.Brand, v.Year, v.PricePerDay, string(v.FuelType), v.ID)
	if err != nil {
		return fmt.Errorf("failed to update vehicle: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// Delete removes a vehicle. Bookings referencing it are removed by the
// ON DELETE CASCADE constraint.
func (r *VehicleRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete vehicle: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// List returns vehicles matching the filters plus the unpaginated total.
func (r *VehicleRepository) List(ctx context.Context, filters *vehicle.ListFilters) ([]vehicle.Vehicle, int64, error) {
	// Build WHERE clause
	conditions := []string{"TRUE"}
	args := []interface{}{}
	argPos := 1

	if filters.Brand != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(brand) = LOWER($%d)", argPos))
		args = append(args, filters.Brand)
		argPos++
	}

	if filters.FuelType != "" {
		conditions = append(conditions, fmt.Sprintf("fuel_type = $%d", argPos))
		args = append(args, string(filters.FuelType))
		argPos++
	}

	if filters.IsAvailable != nil {
		conditions = append(conditions, fmt.Sprintf("is_available = $%d", argPos))
		args = append(args, *filters.IsAvailable)
		argPos++
	}

	if filters.MinPrice != nil {
		conditions = append(conditions, fmt.Sprintf("price_per_day >= $%d", argPos))
		args = append(args, *filters.MinPrice)
		argPos++
	}

	if filters.MaxPrice != nil {
		conditions = append(conditions, fmt.Sprintf("price_per_day <= $%d", argPos))
		args = append(args, *filters.MaxPrice)
		argPos++
	}

	if filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR brand ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+filters.Search+"%")
		argPos++
	}

	whereClause := strings.Join(conditions, " AND ")

	// Count total
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM vehicles WHERE %s", whereClause)
	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count vehicles: %w", err)
	}

	// Pagination
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 20
	}

	offset := (filters.Page - 1) * filters.PageSize
	limit := filters.PageSize

	// Sorting; column names come from a whitelist, never from raw input.
	orderBy := "brand, name"
	switch filters.SortBy {
	case "price_per_day", "year":
		orderBy = filters.SortBy
		if strings.EqualFold(filters.SortOrder, "desc") {
			orderBy += " DESC"
		}
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM vehicles
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, vehicleColumns, whereClause, orderBy, argPos, argPos+1)

	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list vehicles: %w", err)
	}
	defer rows.Close()

	vehicles := []vehicle.Vehicle{}
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		vehicles = append(vehicles, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read vehicles: %w", err)
	}

	return vehicles, total, nil
}

// LockForUpdate reads the vehicle row under an exclusive lock. The lock is
// held until the transaction commits or rolls back, serializing booking
// mutations per vehicle while leaving other vehicles untouched.
func (r *VehicleRepository) LockForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*vehicle.Vehicle, error) {
	query := fmt.Sprintf(`SELECT %s FROM vehicles WHERE id = $1 FOR UPDATE`, vehicleColumns)

	v, err := scanVehicle(tx.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock vehicle: %w", err)
	}

	return v, nil
}

// UpdateAvailabilityWithTx persists only the derived availability flag.
func (r *VehicleRepository) UpdateAvailabilityWithTx(ctx context.Context, tx pgx.Tx, id int64, isAvailable bool) error {
	query := `UPDATE vehicles SET is_available = $1, updated_at = NOW() WHERE id = $2`

	tag, err := tx.Exec(ctx, query, isAvailable, id)
	if err != nil {
		return fmt.Errorf("failed to update vehicle availability: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}
