package vehicle

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"rentals-service/internal/domain/vehicle"
	xerrors "rentals-service/internal/pkg/errors"
	"rentals-service/internal/pkg/response"
	"rentals-service/internal/pkg/validation"
	service "rentals-service/internal/service/vehicle"
)

type VehicleHandler struct {
	vehicleService *service.Service
}

func NewVehicleHandler(vehicleService *service.Service) *VehicleHandler {
	return &VehicleHandler{vehicleService: vehicleService}
}

// ListVehicles returns catalog vehicles matching the query filters.
func (h *VehicleHandler) ListVehicles(c *gin.Context) {
	filters := &vehicle.ListFilters{
		Brand:     c.Query("brand"),
		FuelType:  vehicle.FuelType(c.Query("fuel_type")),
		Search:    c.Query("search"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if raw := c.Query("is_available"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "invalid is_available filter", err)
			return
		}
		filters.IsAvailable = &b
	}

	if raw := c.Query("min_price"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "invalid min_price filter", err)
			return
		}
		filters.MinPrice = &d
	}

	if raw := c.Query("max_price"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "invalid max_price filter", err)
			return
		}
		filters.MaxPrice = &d
	}

	filters.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filters.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.vehicleService.ListVehicles(c.Request.Context(), filters)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "vehicles retrieved", result)
}

func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid vehicle ID", err)
		return
	}

	result, err := h.vehicleService.GetVehicle(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "vehicle retrieved", result)
}

func (h *VehicleHandler) CreateVehicle(c *gin.Context) {
	var req vehicle.CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.vehicleService.CreateVehicle(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "vehicle created successfully", result)
}

func (h *VehicleHandler) UpdateVehicle(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid vehicle ID", err)
		return
	}

	var req vehicle.UpdateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.vehicleService.UpdateVehicle(c.Request.Context(), id, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "vehicle updated successfully", result)
}

func (h *VehicleHandler) DeleteVehicle(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid vehicle ID", err)
		return
	}

	if err := h.vehicleService.DeleteVehicle(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "vehicle deleted successfully", nil)
}

func parseID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func handleError(c *gin.Context, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		response.ValidationError(c, "validation failed", err, verrs)
	case errors.Is(err, xerrors.ErrNotFound):
		response.NotFound(c, "vehicle not found")
	default:
		response.Error(c, http.StatusInternalServerError, "internal server error", err)
	}
}
