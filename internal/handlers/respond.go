package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/epeers/fundledger/internal/middleware"
	"github.com/epeers/fundledger/internal/models"
	"github.com/epeers/fundledger/internal/services"
	"github.com/gin-gonic/gin"
)

// respondError writes err as an ErrorResponse with the status its sentinel maps to
func respondError(c *gin.Context, err error) {
	var rebalanceErr *services.RebalanceError
	switch {
	case errors.Is(err, services.ErrParticipantNotFound),
		errors.Is(err, services.ErrMonthlyValueNotFound),
		errors.Is(err, services.ErrReturnNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "not_found", Message: err.Error()})
	case errors.Is(err, services.ErrUsernameTaken), errors.Is(err, services.ErrDuplicateDate):
		c.JSON(http.StatusConflict, models.ErrorResponse{Error: "conflict", Message: err.Error()})
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrInvalidCalendar):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "bad_request", Message: err.Error()})
	case errors.Is(err, services.ErrOverAllocated):
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{Error: "over_allocated", Message: err.Error()})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "forbidden", Message: err.Error()})
	case errors.As(err, &rebalanceErr):
		middleware.Logger(c).WithError(err).WithField("applied", rebalanceErr.Applied).Error("Rebalance failed")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "rebalance_failed", Message: err.Error()})
	default:
		middleware.Logger(c).WithError(err).Error("Request failed")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal_error", Message: err.Error()})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "bad_request",
		Message: message,
	})
}

// pathID parses the int64 path parameter name
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

// queryPeriod binds the year and month query parameters
func queryPeriod(c *gin.Context) (models.Period, bool) {
	var q models.PeriodQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "year and month query parameters are required")
		return models.Period{}, false
	}
	period, err := models.NewPeriod(q.Year, q.Month)
	if err != nil {
		badRequest(c, err.Error())
		return models.Period{}, false
	}
	return period, true
}

// pathPeriod parses the :year and :month path parameters
func pathPeriod(c *gin.Context) (models.Period, bool) {
	year, errY := strconv.Atoi(c.Param("year"))
	month, errM := strconv.Atoi(c.Param("month"))
	if errY != nil || errM != nil {
		badRequest(c, "invalid year or month")
		return models.Period{}, false
	}
	period, err := models.NewPeriod(year, month)
	if err != nil {
		badRequest(c, err.Error())
		return models.Period{}, false
	}
	return period, true
}
