package handlers

import (
	"net/http"

	"github.com/epeers/fundledger/internal/middleware"
	"github.com/epeers/fundledger/internal/models"
	"github.com/epeers/fundledger/internal/services"
	"github.com/gin-gonic/gin"
)

// AdminHandler handles fund settings and trading calendar endpoints
type AdminHandler struct {
	settingsSvc *services.SettingsService
	calendarSvc *services.CalendarService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(settingsSvc *services.SettingsService, calendarSvc *services.CalendarService) *AdminHandler {
	return &AdminHandler{
		settingsSvc: settingsSvc,
		calendarSvc: calendarSvc,
	}
}

// GetSettings handles GET /admin/settings
// @Summary Get fund settings
// @Tags admin
// @Produce json
// @Param X-User-ID header int true "Admin participant ID"
// @Success 200 {object} models.FundSettings
// @Failure 500 {object} models.ErrorResponse
// @Router /admin/settings [get]
func (h *AdminHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsSvc.Get(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSettings handles PUT /admin/settings
// @Summary Update fund settings
// @Description Change the total fund value or the fund's current period. Omitted fields are left unchanged.
// @Tags admin
// @Accept json
// @Produce json
// @Param X-User-ID header int true "Admin participant ID"
// @Param request body models.UpdateSettingsRequest true "Settings"
// @Success 200 {object} models.FundSettings
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/settings [put]
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var req models.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	settings, err := h.settingsSvc.Update(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.Logger(c).WithField("current_period", settings.CurrentPeriod.String()).Info("Fund settings updated")
	c.JSON(http.StatusOK, settings)
}

// GetCalendar handles GET /calendar
// @Summary Get trading days
// @Description Trading days of a month. When none are stored every weekday is returned and fallback is true.
// @Tags calendar
// @Produce json
// @Param year query int true "Year"
// @Param month query int true "Month (1-12)"
// @Success 200 {object} models.CalendarResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /calendar [get]
func (h *AdminHandler) GetCalendar(c *gin.Context) {
	period, ok := queryPeriod(c)
	if !ok {
		return
	}

	days, fallback, err := h.calendarSvc.TradingDaysFor(c.Request.Context(), period)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.CalendarResponse{Period: period, Days: days, Fallback: fallback})
}

// InitCalendar handles POST /admin/calendar/init
// @Summary Seed the trading calendar
// @Description Store the built-in exchange calendar when no trading days are stored yet
// @Tags calendar
// @Produce json
// @Param X-User-ID header int true "Admin participant ID"
// @Success 200 {object} models.CalendarInitResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /admin/calendar/init [post]
func (h *AdminHandler) InitCalendar(c *gin.Context) {
	resp, err := h.calendarSvc.Initialize(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CalendarStatus handles GET /admin/calendar/status
// @Summary Trading calendar status
// @Tags calendar
// @Produce json
// @Param X-User-ID header int true "Admin participant ID"
// @Success 200 {object} models.CalendarStatusResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /admin/calendar/status [get]
func (h *AdminHandler) CalendarStatus(c *gin.Context) {
	status, err := h.calendarSvc.Status(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// ImportCalendar handles POST /admin/calendar/import
// @Summary Import trading days from CSV
// @Description Upload a CSV with a date column and an optional is_half_day column
// @Tags calendar
// @Accept multipart/form-data
// @Produce json
// @Param X-User-ID header int true "Admin participant ID"
// @Param file formData file true "CSV file"
// @Success 200 {object} models.CalendarImportResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/calendar/import [post]
func (h *AdminHandler) ImportCalendar(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		badRequest(c, "failed to open uploaded file")
		return
	}
	defer file.Close()

	days, err := ParseCalendarCSV(file)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	written, err := h.calendarSvc.Import(c.Request.Context(), days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.CalendarImportResponse{Written: written})
}
