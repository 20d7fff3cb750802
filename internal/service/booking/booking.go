package booking

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"rentals-service/internal/domain/booking"
	"rentals-service/internal/domain/vehicle"
	xerrors "rentals-service/internal/pkg/errors"
	"rentals-service/internal/pkg/validation"
	vehicleservice "rentals-service/internal/service/vehicle"
)

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

// ErrDatesUnavailable is returned when the requested interval intersects an
// existing booking on the same vehicle.
var ErrDatesUnavailable = fmt.Errorf("this vehicle is already booked for the selected dates: %w", xerrors.ErrConflict)

// TxBeginner opens the transaction a mutation runs in.
type TxBeginner interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

// AvailabilityNotifier receives availability transitions after commit.
type AvailabilityNotifier interface {
	BroadcastAvailability(vehicleID int64, isAvailable bool)
}

// Service is the booking ledger. Every mutation runs in one transaction:
// lock the vehicle row, re-check overlap against committed state, write the
// booking, recompute the vehicle's availability, commit. Concurrent attempts
// on the same vehicle serialize on the row lock; the loser re-evaluates
// overlap after the winner's commit and observes the conflict. Attempts on
// distinct vehicles never block each other.
type Service struct {
	repo        booking.Repository
	vehicleRepo vehicle.Repository
	registry    *vehicleservice.Service
	db          TxBeginner
	notifier    AvailabilityNotifier
	logger      *zap.Logger
}

func NewBookingService(
	repo booking.Repository,
	vehicleRepo vehicle.Repository,
	registry *vehicleservice.Service,
	db TxBeginner,
	notifier AvailabilityNotifier,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:        repo,
		vehicleRepo: vehicleRepo,
		registry:    registry,
		db:          db,
		notifier:    notifier,
		logger:      logger,
	}
}

// ComputeTotal prices an inclusive interval: price_per_day * day count,
// where a one-day rental (start == end) counts as one day. Pure; the result
// is frozen into the record at write time.
func ComputeTotal(pricePerDay decimal.Decimal, start, end booking.Date) decimal.Decimal {
	days := start.DaysUntil(end) + 1
	return pricePerDay.Mul(decimal.NewFromInt(int64(days))).Round(2)
}

// validate collects every broken field instead of stopping at the first.
// The start-date rule only applies when the start date is being set or
// changed, so editing an unrelated field on a booking that has already
// started does not trip it.
func validate(cand, existing *booking.Booking) validation.Errors {
	var errs validation.Errors
	today := booking.Today()

	startChanged := existing == nil || !cand.StartDate.Equal(existing.StartDate.Time)
	if startChanged && cand.StartDate.Before(today.Time) {
		errs.Add("start_date", "start date cannot be in the past")
	}

	if cand.EndDate.Before(cand.StartDate.Time) {
		errs.Add("end_date", "end date must be on or after start date")
	}

	if !phonePattern.MatchString(cand.CustomerPhone) {
		errs.Add("customer_phone", "phone number must be exactly 10 digits")
	}

	return errs
}

// CreateBooking validates, then reserves the interval atomically.
func (s *Service) CreateBooking(ctx context.Context, req *booking.CreateBookingRequest) (*booking.Info, error) {
	cand := &booking.Booking{
		VehicleID:     req.VehicleID,
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
	}

	if errs := validate(cand, nil); len(errs) > 0 {
		return nil, errs
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// The row lock is the per-vehicle critical section. The overlap count
	// below sees every booking committed before the lock was granted.
	v, err := s.vehicleRepo.LockForUpdate(ctx, tx, cand.VehicleID)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.Wrap(err, "vehicle not found")
		}
		return nil, err
	}

	if err := s.checkOverlap(ctx, tx, cand, 0); err != nil {
		return nil, err
	}

	cand.TotalAmount = ComputeTotal(v.PricePerDay, cand.StartDate, cand.EndDate)
	cand.BookingReference = ulid.Make().String()

	if err := s.repo.CreateWithTx(ctx, tx, cand); err != nil {
		return nil, err
	}

	isAvailable, err := s.registry.RecomputeAvailability(ctx, tx, v.ID, booking.Today())
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.afterMutation(ctx, v.ID, isAvailable)

	s.logger.Info("booking created",
		zap.Int64("booking_id", cand.ID),
		zap.String("booking_reference", cand.BookingReference),
		zap.Int64("vehicle_id", v.ID),
		zap.String("start_date", cand.StartDate.String()),
		zap.String("end_date", cand.EndDate.String()),
		zap.String("total_amount", cand.TotalAmount.StringFixed(2)),
	)

	info := booking.BuildInfo(cand, v.Summary())
	return &info, nil
}

// UpdateBooking edits a booking under the same lock discipline as creation.
// The overlap query only runs when the vehicle or the interval actually
// changed, so an edit to, say, the customer name neither re-queries nor
// false-positives against the booking itself. When the interval does change
// the total is repriced from the current price_per_day; unrelated edits
// leave the frozen total untouched.
func (s *Service) UpdateBooking(ctx context.Context, id int64, req *booking.UpdateBookingRequest) (*booking.Info, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	cand := *existing
	if req.VehicleID != nil {
		cand.VehicleID = *req.VehicleID
	}
	if req.CustomerName != nil {
		cand.CustomerName = strings.TrimSpace(*req.CustomerName)
	}
	if req.CustomerPhone != nil {
		cand.CustomerPhone = strings.TrimSpace(*req.CustomerPhone)
	}
	if req.StartDate != nil {
		cand.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		cand.EndDate = *req.EndDate
	}

	if errs := validate(&cand, existing); len(errs) > 0 {
		return nil, errs
	}

	vehicleChanged := cand.VehicleID != existing.VehicleID
	intervalChanged := vehicleChanged ||
		!cand.StartDate.Equal(existing.StartDate.Time) ||
		!cand.EndDate.Equal(existing.EndDate.Time)

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	vehicles, err := s.lockVehicles(ctx, tx, cand.VehicleID, existing.VehicleID)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.Wrap(err, "vehicle not found")
		}
		return nil, err
	}
	v := vehicles[cand.VehicleID]

	if intervalChanged {
		if err := s.checkOverlap(ctx, tx, &cand, cand.ID); err != nil {
			return nil, err
		}
		cand.TotalAmount = ComputeTotal(v.PricePerDay, cand.StartDate, cand.EndDate)
	}

	if err := s.repo.UpdateWithTx(ctx, tx, &cand); err != nil {
		return nil, err
	}

	today := booking.Today()
	isAvailable, err := s.registry.RecomputeAvailability(ctx, tx, cand.VehicleID, today)
	if err != nil {
		return nil, err
	}

	var oldAvailable bool
	if vehicleChanged {
		// The booking moved off the old vehicle; its flag must re-derive too.
		oldAvailable, err = s.registry.RecomputeAvailability(ctx, tx, existing.VehicleID, today)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.afterMutation(ctx, cand.VehicleID, isAvailable)
	if vehicleChanged {
		s.afterMutation(ctx, existing.VehicleID, oldAvailable)
	}

	s.logger.Info("booking updated",
		zap.Int64("booking_id", cand.ID),
		zap.Int64("vehicle_id", cand.VehicleID),
	)

	info := booking.BuildInfo(&cand, v.Summary())
	return &info, nil
}

// DeleteBooking removes the booking, then recomputes the vehicle's flag —
// after the row is gone, so the freed interval no longer counts.
func (s *Service) DeleteBooking(ctx context.Context, id int64) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := s.vehicleRepo.LockForUpdate(ctx, tx, existing.VehicleID); err != nil {
		return err
	}

	if err := s.repo.DeleteWithTx(ctx, tx, id); err != nil {
		return err
	}

	isAvailable, err := s.registry.RecomputeAvailability(ctx, tx, existing.VehicleID, booking.Today())
	if err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.afterMutation(ctx, existing.VehicleID, isAvailable)

	s.logger.Info("booking deleted",
		zap.Int64("booking_id", id),
		zap.Int64("vehicle_id", existing.VehicleID),
	)

	return nil
}

// GetBooking retrieves one booking with its embedded vehicle summary.
func (s *Service) GetBooking(ctx context.Context, id int64) (*booking.Info, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	v, err := s.registry.GetVehicle(ctx, b.VehicleID)
	if err != nil {
		return nil, err
	}

	info := booking.BuildInfo(b, v.Summary())
	return &info, nil
}

func (s *Service) ListBookings(ctx context.Context, filters *booking.ListFilters) (*booking.ListResponse, error) {
	rows, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, err
	}

	infos := make([]booking.Info, 0, len(rows))
	for i := range rows {
		infos = append(infos, booking.BuildInfo(&rows[i].Booking, rows[i].Vehicle))
	}

	totalPages := int(total) / filters.PageSize
	if int(total)%filters.PageSize > 0 {
		totalPages++
	}

	return &booking.ListResponse{
		Bookings:   infos,
		Total:      total,
		Page:       filters.Page,
		PageSize:   filters.PageSize,
		TotalPages: totalPages,
	}, nil
}

func (s *Service) checkOverlap(ctx context.Context, tx pgx.Tx, cand *booking.Booking, excludeID int64) error {
	count, err := s.repo.CountOverlappingWithTx(ctx, tx, cand.VehicleID, cand.StartDate, cand.EndDate, excludeID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrDatesUnavailable
	}
	return nil
}

// lockVehicles acquires row locks in ascending id order so two transactions
// touching the same pair of vehicles cannot deadlock.
func (s *Service) lockVehicles(ctx context.Context, tx pgx.Tx, ids ...int64) (map[int64]*vehicle.Vehicle, error) {
	uniq := make([]int64, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			uniq = append(uniq, id)
		}
	}
	sort.Slice(uniq, func(i, j int) bool { return uniq[i] < uniq[j] })

	locked := make(map[int64]*vehicle.Vehicle, len(uniq))
	for _, id := range uniq {
		v, err := s.vehicleRepo.LockForUpdate(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		locked[id] = v
	}

	return locked, nil
}

// afterMutation runs the post-commit side effects: cache invalidation and
// the availability broadcast. Neither can fail the already-committed write.
func (s *Service) afterMutation(ctx context.Context, vehicleID int64, isAvailable bool) {
	s.registry.Invalidate(ctx, vehicleID)
	if s.notifier != nil {
		s.notifier.BroadcastAvailability(vehicleID, isAvailable)
	}
}
