package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rentals-service/internal/domain/booking"
	"rentals-service/internal/domain/vehicle"
	xerrors "rentals-service/internal/pkg/errors"
	"rentals-service/internal/pkg/response"
	service "rentals-service/internal/service/booking"
	vehicleservice "rentals-service/internal/service/vehicle"
)

type fakeTx struct {
	pgx.Tx
}

func (fakeTx) Commit(_ context.Context) error   { return nil }
func (fakeTx) Rollback(_ context.Context) error { return nil }

type fakeBeginner struct{}

func (fakeBeginner) BeginTx(_ context.Context) (pgx.Tx, error) { return fakeTx{}, nil }

type fakeVehicleRepo struct {
	v *vehicle.Vehicle
}

func (r *fakeVehicleRepo) Create(_ context.Context, _ *vehicle.Vehicle) error { return nil }
func (r *fakeVehicleRepo) Update(_ context.Context, _ *vehicle.Vehicle) error { return nil }
func (r *fakeVehicleRepo) Delete(_ context.Context, _ int64) error            { return nil }
func (r *fakeVehicleRepo) List(_ context.Context, _ *vehicle.ListFilters) ([]vehicle.Vehicle, int64, error) {
	return nil, 0, nil
}

func (r *fakeVehicleRepo) FindByID(_ context.Context, id int64) (*vehicle.Vehicle, error) {
	if r.v == nil || r.v.ID != id {
		return nil, xerrors.ErrNotFound
	}
	return r.v, nil
}

func (r *fakeVehicleRepo) LockForUpdate(_ context.Context, _ pgx.Tx, id int64) (*vehicle.Vehicle, error) {
	if r.v == nil || r.v.ID != id {
		return nil, xerrors.ErrNotFound
	}
	return r.v, nil
}

func (r *fakeVehicleRepo) UpdateAvailabilityWithTx(_ context.Context, _ pgx.Tx, _ int64, _ bool) error {
	return nil
}

type fakeBookingRepo struct {
	overlapping int64
	stored      *booking.Booking
}

func (r *fakeBookingRepo) CreateWithTx(_ context.Context, _ pgx.Tx, b *booking.Booking) error {
	b.ID = 1
	b.CreatedAt = time.Now()
	r.stored = b
	return nil
}

func (r *fakeBookingRepo) UpdateWithTx(_ context.Context, _ pgx.Tx, b *booking.Booking) error {
	r.stored = b
	return nil
}

func (r *fakeBookingRepo) DeleteWithTx(_ context.Context, _ pgx.Tx, _ int64) error {
	r.stored = nil
	return nil
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id int64) (*booking.Booking, error) {
	if r.stored == nil || r.stored.ID != id {
		return nil, xerrors.ErrNotFound
	}
	return r.stored, nil
}

func (r *fakeBookingRepo) List(_ context.Context, _ *booking.ListFilters) ([]booking.WithVehicle, int64, error) {
	return nil, 0, nil
}

func (r *fakeBookingRepo) CountOverlappingWithTx(_ context.Context, _ pgx.Tx, _ int64, _, _ booking.Date, _ int64) (int64, error) {
	return r.overlapping, nil
}

func (r *fakeBookingRepo) CountCoveringWithTx(_ context.Context, _ pgx.Tx, _ int64, _ booking.Date) (int64, error) {
	return 0, nil
}

func newTestRouter(bRepo *fakeBookingRepo, vRepo *fakeVehicleRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)

	registry := vehicleservice.NewVehicleService(vRepo, bRepo, nil, zap.NewNop())
	ledger := service.NewBookingService(bRepo, vRepo, registry, fakeBeginner{}, nil, zap.NewNop())
	h := NewBookingHandler(ledger)

	r := gin.New()
	r.POST("/bookings", h.CreateBooking)
	r.GET("/bookings/:id", h.GetBooking)
	r.DELETE("/bookings/:id", h.DeleteBooking)
	return r
}

func catalogVehicle() *vehicle.Vehicle {
	return &vehicle.Vehicle{
		ID:          1,
		Name:        "Corolla",
		Brand:       "Toyota",
		Year:        2022,
		PricePerDay: decimal.RequireFromString("100.00"),
		FuelType:    vehicle.FuelTypePetrol,
		IsAvailable: true,
	}
}

func createBody(phone string, startOffset, endOffset int) string {
	start := time.Now().AddDate(0, 0, startOffset).Format("2006-01-02")
	end := time.Now().AddDate(0, 0, endOffset).Format("2006-01-02")
	return fmt.Sprintf(`{
		"vehicle_id": 1,
		"customer_name": "Jane Customer",
		"customer_phone": %q,
		"start_date": %q,
		"end_date": %q
	}`, phone, start, end)
}

func doRequest(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestCreateBookingReturns201(t *testing.T) {
	r := newTestRouter(&fakeBookingRepo{}, &fakeVehicleRepo{v: catalogVehicle()})

	w, resp := doRequest(t, r, http.MethodPost, "/bookings", createBody("0712345678", 1, 3))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(3), data["days"])
	assert.Equal(t, "300", data["total_amount"])
	assert.Len(t, data["booking_reference"], 26)

	details := data["vehicle_details"].(map[string]interface{})
	assert.Equal(t, "Toyota", details["brand"])
}

func TestCreateBookingValidationReturns400WithFields(t *testing.T) {
	r := newTestRouter(&fakeBookingRepo{}, &fakeVehicleRepo{v: catalogVehicle()})

	w, resp := doRequest(t, r, http.MethodPost, "/bookings", createBody("12345", 1, 3))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, resp.Success)

	fields := resp.Data.([]interface{})
	require.Len(t, fields, 1)
	fe := fields[0].(map[string]interface{})
	assert.Equal(t, "customer_phone", fe["field"])
}

func TestCreateBookingConflictReturns409(t *testing.T) {
	r := newTestRouter(&fakeBookingRepo{overlapping: 1}, &fakeVehicleRepo{v: catalogVehicle()})

	w, resp := doRequest(t, r, http.MethodPost, "/bookings", createBody("0712345678", 1, 3))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "already booked")
}

func TestCreateBookingMalformedJSONReturns400(t *testing.T) {
	r := newTestRouter(&fakeBookingRepo{}, &fakeVehicleRepo{v: catalogVehicle()})

	w, resp := doRequest(t, r, http.MethodPost, "/bookings", `{"vehicle_id": "one"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, resp.Success)
}

func TestGetBookingUnknownReturns404(t *testing.T) {
	r := newTestRouter(&fakeBookingRepo{}, &fakeVehicleRepo{v: catalogVehicle()})

	w, resp := doRequest(t, r, http.MethodGet, "/bookings/42", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, resp.Success)
}

func TestDeleteBookingInvalidIDReturns400(t *testing.T) {
	r := newTestRouter(&fakeBookingRepo{}, &fakeVehicleRepo{v: catalogVehicle()})

	w, resp := doRequest(t, r, http.MethodDelete, "/bookings/abc", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, resp.Success)
}
