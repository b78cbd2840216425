package seats

import (
	"errors"
	"net/http"

	"seatkeeper/internal/availability"
	"seatkeeper/internal/reservation"
	"seatkeeper/internal/shared/utils/response"
	"seatkeeper/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
	log     *logger.Logger
}

func NewController(service Service) *Controller {
	return &Controller{service: service, log: logger.GetDefault()}
}

func (c *Controller) GetFreeSeats(ctx *gin.Context) {
	structureID := ctx.Param("structureId")

	var query FreeSeatsQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	result, err := c.service.FindFreeSeats(ctx.Request.Context(), structureID, query)
	if err != nil {
		c.respondError(ctx, "Failed to get free seats", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Free seats retrieved successfully", result, nil)
}

func (c *Controller) FindCoveringSeats(ctx *gin.Context) {
	structureID := ctx.Param("structureId")

	var req CoveringRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	result, err := c.service.FindCoveringSeats(ctx.Request.Context(), structureID, req)
	if err != nil {
		c.respondError(ctx, "Failed to search seats", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Covering seats retrieved successfully", result, nil)
}

func (c *Controller) AutoBook(ctx *gin.Context) {
	structureID := ctx.Param("structureId")

	var req AutoBookRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	result, err := c.service.AutoBook(ctx.Request.Context(), structureID, req)
	if err != nil {
		c.respondError(ctx, "Failed to book seat", err)
		return
	}

	message := "Seat booked successfully"
	if result.DryRun {
		message = "Seat selected (dry run, nothing booked)"
	}
	response.RespondJSON(ctx, "success", http.StatusOK, message, result, nil)
}

func (c *Controller) respondError(ctx *gin.Context, message string, err error) {
	statusCode := statusFor(err)
	if statusCode >= http.StatusInternalServerError {
		c.log.WithRequestID(ctx.GetString("request_id")).LogHTTPError(ctx, err, statusCode)
	}
	response.RespondError(ctx, statusCode, message, err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, availability.ErrInvalidClock),
		errors.Is(err, availability.ErrInvalidWindow):
		return http.StatusBadRequest
	case errors.Is(err, availability.ErrNoFullyAvailable):
		return http.StatusNotFound
	case errors.Is(err, ErrBookingInProgress):
		return http.StatusConflict
	case errors.Is(err, reservation.ErrLookupFailed),
		errors.Is(err, reservation.ErrReservationFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
