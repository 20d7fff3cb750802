package vehicle

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"rentals-service/internal/domain/booking"
	"rentals-service/internal/domain/vehicle"
	"rentals-service/internal/pkg/validation"
)

// Cache is the slice of the redis vehicle cache the registry uses.
type Cache interface {
	GetVehicle(ctx context.Context, id int64) (*vehicle.Vehicle, error)
	SetVehicle(ctx context.Context, v *vehicle.Vehicle) error
	Invalidate(ctx context.Context, id int64) error
}

// Service is the vehicle registry. It owns vehicle records and is the single
// writer of the derived is_available flag: the booking ledger calls
// RecomputeAvailability inside its transactions, and nothing else touches
// the flag.
type Service struct {
	repo        vehicle.Repository
	bookingRepo booking.Repository
	cache       Cache
	logger      *zap.Logger
}

func NewVehicleService(repo vehicle.Repository, bookingRepo booking.Repository, cache Cache, logger *zap.Logger) *Service {
	return &Service{
		repo:        repo,
		bookingRepo: bookingRepo,
		cache:       cache,
		logger:      logger,
	}
}

func validateVehicle(v *vehicle.Vehicle) validation.Errors {
	var errs validation.Errors

	if strings.TrimSpace(v.Name) == "" {
		errs.Add("name", "name is required")
	}
	if strings.TrimSpace(v.Brand) == "" {
		errs.Add("brand", "brand is required")
	}
	if v.Year < 1900 || v.Year > 2100 {
		errs.Add("year", "year must be between 1900 and 2100")
	}
	if !v.PricePerDay.IsPositive() {
		errs.Add("price_per_day", "price per day must be greater than zero")
	}
	if !v.FuelType.Valid() {
		errs.Add("fuel_type", "fuel type must be one of Petrol, Diesel, Electric, Hybrid")
	}

	return errs
}

// CreateVehicle adds a vehicle to the catalog. New vehicles start available.
func (s *Service) CreateVehicle(ctx context.Context, req *vehicle.CreateVehicleRequest) (*vehicle.Vehicle, error) {
	v := &vehicle.Vehicle{
		Name:        strings.TrimSpace(req.Name),
		Brand:       strings.TrimSpace(req.Brand),
		Year:        req.Year,
		PricePerDay: req.PricePerDay,
		FuelType:    req.FuelType,
	}

	if errs := validateVehicle(v); len(errs) > 0 {
		return nil, errs
	}

	if err := s.repo.Create(ctx, v); err != nil {
		return nil, err
	}

	s.logger.Info("vehicle created",
		zap.Int64("vehicle_id", v.ID),
		zap.String("brand", v.Brand),
		zap.String("name", v.Name),
	)

	return v, nil
}

// GetVehicle serves detail reads through the cache.
func (s *Service) GetVehicle(ctx context.Context, id int64) (*vehicle.Vehicle, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetVehicle(ctx, id); err != nil {
			s.logger.Warn("vehicle cache read failed", zap.Int64("vehicle_id", id), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetVehicle(ctx, v); err != nil {
			s.logger.Warn("vehicle cache write failed", zap.Int64("vehicle_id", id), zap.Error(err))
		}
	}

	return v, nil
}

func (s *Service) ListVehicles(ctx context.Context, filters *vehicle.ListFilters) (*vehicle.ListResponse, error) {
	vehicles, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / filters.PageSize
	if int(total)%filters.PageSize > 0 {
		totalPages++
	}

	return &vehicle.ListResponse{
		Vehicles:   vehicles,
		Total:      total,
		Page:       filters.Page,
		PageSize:   filters.PageSize,
		TotalPages: totalPages,
	}, nil
}

// UpdateVehicle edits catalog fields. The availability flag is not part of
// the request shape and cannot be set here.
func (s *Service) UpdateVehicle(ctx context.Context, id int64, req *vehicle.UpdateVehicleRequest) (*vehicle.Vehicle, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		v.Name = strings.TrimSpace(*req.Name)
	}
	if req.Brand != nil {
		v.Brand = strings.TrimSpace(*req.Brand)
	}
	if req.Year != nil {
		v.Year = *req.Year
	}
	if req.PricePerDay != nil {
		v.PricePerDay = *req.PricePerDay
	}
	if req.FuelType != nil {
		v.FuelType = *req.FuelType
	}

	if errs := validateVehicle(v); len(errs) > 0 {
		return nil, errs
	}

	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)

	s.logger.Info("vehicle updated", zap.Int64("vehicle_id", id))
	return v, nil
}

// DeleteVehicle removes the vehicle; its bookings go with it via the
// cascading foreign key.
func (s *Service) DeleteVehicle(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)

	s.logger.Info("vehicle deleted", zap.Int64("vehicle_id", id))
	return nil
}

// RecomputeAvailability re-derives is_available from the bookings covering
// asOf and persists only that flag, inside the caller's transaction. The
// caller must hold the vehicle row lock. Idempotent: with unchanged booking
// state, repeated calls write the same value.
//
// Availability only moves when a booking mutation lands here. A booking
// whose start date arrives with no accompanying write leaves the flag stale
// until the next mutation on that vehicle.
func (s *Service) RecomputeAvailability(ctx context.Context, tx pgx.Tx, vehicleID int64, asOf booking.Date) (bool, error) {
	active, err := s.bookingRepo.CountCoveringWithTx(ctx, tx, vehicleID, asOf)
	if err != nil {
		return false, err
	}

	isAvailable := active == 0
	if err := s.repo.UpdateAvailabilityWithTx(ctx, tx, vehicleID, isAvailable); err != nil {
		return false, err
	}

	return isAvailable, nil
}

// Invalidate drops the vehicle from the read cache. Exposed for the booking
// ledger, whose mutations change the availability flag.
func (s *Service) Invalidate(ctx context.Context, vehicleID int64) {
	s.invalidate(ctx, vehicleID)
}

func (s *Service) invalidate(ctx context.Context, vehicleID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, vehicleID); err != nil {
		s.logger.Warn("vehicle cache invalidation failed",
			zap.Int64("vehicle_id", vehicleID), zap.Error(err))
	}
}
