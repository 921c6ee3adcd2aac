package handlers

import (
	"net/http"

	"github.com/epeers/fundledger/internal/models"
	"github.com/epeers/fundledger/internal/services"
	"github.com/gin-gonic/gin"
)

// ReturnHandler handles fund return and participant return endpoints
type ReturnHandler struct {
	returnSvc *services.ReturnService
}

// NewReturnHandler creates a new ReturnHandler
func NewReturnHandler(returnSvc *services.ReturnService) *ReturnHandler {
	return &ReturnHandler{
		returnSvc: returnSvc,
	}
}

// ListFundReturns handles GET /admin/fund-returns
// @Summary List fund returns
// @Tags fund-returns
// @Produce json
// @Param X-User-ID header int true "Admin participant ID"
// @Param year query int true "Year"
// @Param month query int true "Month (1-12)"
// @Success 200 {array} models.FundReturn
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/fund-returns [get]
func (h *ReturnHandler) ListFundReturns(c *gin.Context) {
	period, ok := queryPeriod(c)
	if !ok {
		return
	}

	returns, err := h.returnSvc.ListFundReturns(c.Request.Context(), period)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, returns)
}

// CreateFundReturn handles POST /admin/fund-returns
// @Summary Record a fund return
// @Description Record the fund's dollar change for a date, measured against the total fund value
// @Tags fund-returns
// @Accept json
// @Produce json
// @Param X-User-ID header int true "Admin participant ID"
// @Param request body models.CreateFundReturnRequest true "Fund return"
// @Success 201 {object} models.FundReturn
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /admin/fund-returns [post]
func (h *ReturnHandler) CreateFundReturn(c *gin.Context) {
	var req models.CreateFundReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	fr, err := h.returnSvc.CreateFundReturn(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fr)
}

// UpdateFundReturn handles PUT /admin/fund-returns/:id
// @Summary Update a fund return
// @Tags fund-returns
// @Accept json
// @Produce json
// @Param X-User-ID header int true "Admin participant ID"
// @Param id path int true "Fund return ID"
// @Param request body models.UpdateFundReturnRequest true "Fund return amounts"
// @Success 200 {object} models.FundReturn
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/fund-returns/{id} [put]
func (h *ReturnHandler) UpdateFundReturn(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateFundReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	fr, err := h.returnSvc.UpdateFundReturn(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fr)
}

// DeleteFundReturn handles DELETE /admin/fund-returns/:id
// @Summary Delete a fund return
// @Tags fund-returns
// @Produce json
// @Param X-User-ID header int true "Admin participant ID"
// @Param id path int true "Fund return ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/fund-returns/{id} [delete]
func (h *ReturnHandler) DeleteFundReturn(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.returnSvc.DeleteFundReturn(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "fund return deleted"})
}

// ImportFundReturns handles POST /admin/fund-returns/import
// @Summary Import fund returns from CSV
// @Description Upload a CSV with date, dollar_change and total_fund_value columns. Dates already recorded are skipped.
// @Tags fund-returns
// @Accept multipart/form-data
// @Produce json
// @Param X-User-ID header int true "Admin participant ID"
// @Param file formData file true "CSV file"
// @Success 200 {object} models.ImportResult
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/fund-returns/import [post]
func (h *ReturnHandler) ImportFundReturns(c *gin.Context) {
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

	returns, err := ParseFundReturnsCSV(file)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.returnSvc.ImportFundReturns(c.Request.Context(), returns)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListDailyReturns handles GET /admin/participants/:id/returns
// @Summary List a participant's returns
// @Tags returns
// @Produce json
// @Param X-User-ID header int true "Admin participant ID"
// @Param id path int true "Participant ID"
// @Param year query int true "Year"
// @Param month query int true "Month (1-12)"
// @Success 200 {array} models.DailyReturn
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/participants/{id}/returns [get]
func (h *ReturnHandler) ListDailyReturns(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	period, ok := queryPeriod(c)
	if !ok {
		return
	}

	returns, err := h.returnSvc.ListDailyReturns(c.Request.Context(), id, period)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, returns)
}

// CreateDailyReturn handles POST /admin/participants/:id/returns
// @Summary Record a participant return
// @Description Record a participant's own return as a percentage or a dollar amount. Dollar amounts are converted against the participant's value before the date.
// @Tags returns
// @Accept json
// @Produce json
// @Param X-User-ID header int true "Admin participant ID"
// @Param id path int true "Participant ID"
// @Param request body models.DailyReturnRequest true "Return"
// @Success 201 {object} models.DailyReturn
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /admin/participants/{id}/returns [post]
func (h *ReturnHandler) CreateDailyReturn(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.DailyReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	dr, err := h.returnSvc.CreateDailyReturn(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dr)
}

// UpdateDailyReturn handles PUT /admin/returns/:id
// @Summary Update a participant return
// @Tags returns
// @Accept json
// @Produce json
// @Param X-User-ID header int true "Admin participant ID"
// @Param id path int true "Return ID"
// @Param request body models.DailyReturnRequest true "Return"
// @Success 200 {object} models.DailyReturn
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/returns/{id} [put]
func (h *ReturnHandler) UpdateDailyReturn(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.DailyReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	dr, err := h.returnSvc.UpdateDailyReturn(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dr)
}

// DeleteDailyReturn handles DELETE /admin/returns/:id
// @Summary Delete a participant return
// @Tags returns
// @Produce json
// @Param X-User-ID header int true "Admin participant ID"
// @Param id path int true "Return ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/returns/{id} [delete]
func (h *ReturnHandler) DeleteDailyReturn(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.returnSvc.DeleteDailyReturn(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "return deleted"})
}
