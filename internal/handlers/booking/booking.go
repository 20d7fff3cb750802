package booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rentals-service/internal/domain/booking"
	xerrors "rentals-service/internal/pkg/errors"
	"rentals-service/internal/pkg/response"
	"rentals-service/internal/pkg/validation"
	service "rentals-service/internal/service/booking"
)

type BookingHandler struct {
	bookingService *service.Service
}

func NewBookingHandler(bookingService *service.Service) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// ListBookings returns bookings matching the query filters, newest first.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	filters := &booking.ListFilters{
		Search: c.Query("search"),
	}

	if raw := c.Query("vehicle"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "invalid vehicle filter", err)
			return
		}
		filters.VehicleID = &id
	}

	if raw := c.Query("start_date"); raw != "" {
		d, err := booking.ParseDate(raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "invalid start_date filter", err)
			return
		}
		filters.StartDate = &d
	}

	if raw := c.Query("end_date"); raw != "" {
		d, err := booking.ParseDate(raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "invalid end_date filter", err)
			return
		}
		filters.EndDate = &d
	}

	filters.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filters.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.bookingService.ListBookings(c.Request.Context(), filters)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "bookings retrieved", result)
}

func (h *BookingHandler) GetBooking(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid booking ID", err)
		return
	}

	result, err := h.bookingService.GetBooking(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "booking retrieved", result)
}

func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req booking.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.bookingService.CreateBooking(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "booking created successfully", result)
}

func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid booking ID", err)
		return
	}

	var req booking.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.bookingService.UpdateBooking(c.Request.Context(), id, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "booking updated successfully", result)
}

func (h *BookingHandler) DeleteBooking(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid booking ID", err)
		return
	}

	if err := h.bookingService.DeleteBooking(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "booking deleted successfully", nil)
}

func parseID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func handleError(c *gin.Context, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		response.ValidationError(c, "validation failed", err, verrs)
	case errors.Is(err, xerrors.ErrConflict):
		response.Conflict(c, "vehicle already booked for the selected dates", err)
	case errors.Is(err, xerrors.ErrNotFound):
		response.NotFound(c, "resource not found")
	default:
		response.Error(c, http.StatusInternalServerError, "internal server error", err)
	}
}
