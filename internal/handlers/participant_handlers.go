package handlers

import (
	"net/http"

	"github.com/epeers/fundledger/internal/models"
	"github.com/epeers/fundledger/internal/services"
	"github.com/gin-gonic/gin"
)

// ParticipantHandler handles participant, monthly value and rebalance endpoints
type ParticipantHandler struct {
	participantSvc *services.ParticipantService
}

// NewParticipantHandler creates a new ParticipantHandler
func NewParticipantHandler(participantSvc *services.ParticipantService) *ParticipantHandler {
	return &ParticipantHandler{
		participantSvc: participantSvc,
	}
}

// List handles GET /admin/participants
// @Summary List participants
// @Description Get every participant except the admin account
// @Tags participants
// @Produce json
// @Param X-User-ID header int true "Admin participant ID"
// @Success 200 {array} models.Participant
// @Failure 500 {object} models.ErrorResponse
// @Router /admin/participants [get]
func (h *ParticipantHandler) List(c *gin.Context) {
	participants, err := h.participantSvc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, participants)
}

// Create handles POST /admin/participants
// @Summary Create a participant
// @Description Create a participant with a profile beginning value and ownership for the current period
// @Tags participants
// @Accept json
// @Produce json
// @Param X-User-ID header int true "Admin participant ID"
// @Param request body models.CreateParticipantRequest true "Participant"
// @Success 201 {object} models.Participant
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /admin/participants [post]
func (h *ParticipantHandler) Create(c *gin.Context) {
	var req models.CreateParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	p, err := h.participantSvc.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// Get handles GET /admin/participants/:id
// @Summary Get a participant
// @Tags participants
// @Produce json
// @Param X-User-ID header int true "Admin participant ID"
// @Param id path int true "Participant ID"
// @Success 200 {object} models.Participant
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/participants/{id} [get]
func (h *ParticipantHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	p, err := h.participantSvc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Update handles PUT /admin/participants/:id
// @Summary Update a participant
// @Description Edit a participant's profile. With rebalance set, ownership for the current period is recomputed for everyone from beginning values.
// @Tags participants
// @Accept json
// @Produce json
// @Param X-User-ID header int true "Admin participant ID"
// @Param id path int true "Participant ID"
// @Param request body models.UpdateParticipantRequest true "Participant"
// @Success 200 {object} models.ParticipantResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /admin/participants/{id} [put]
func (h *ParticipantHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	p, result, err := h.participantSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ParticipantResponse{Participant: p, Rebalance: result})
}

// Delete handles DELETE /admin/participants/:id
// @Summary Delete a participant
// @Description Delete a participant together with its monthly values and returns
// @Tags participants
// @Produce json
// @Param X-User-ID header int true "Admin participant ID"
// @Param id path int true "Participant ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/participants/{id} [delete]
func (h *ParticipantHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.participantSvc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "participant deleted"})
}

// ListMonthlyValues handles GET /admin/participants/:id/monthly-values
// @Summary List monthly values
// @Tags monthly-values
// @Produce json
// @Param X-User-ID header int true "Admin participant ID"
// @Param id path int true "Participant ID"
// @Success 200 {array} models.MonthlyValue
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/participants/{id}/monthly-values [get]
func (h *ParticipantHandler) ListMonthlyValues(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	values, err := h.participantSvc.ListMonthlyValues(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, values)
}

// SetMonthlyValue handles PUT /admin/participants/:id/monthly-values/:year/:month
// @Summary Set a monthly value
// @Description Override a participant's beginning value and ownership for one month
// @Tags monthly-values
// @Accept json
// @Produce json
// @Param X-User-ID header int true "Admin participant ID"
// @Param id path int true "Participant ID"
// @Param year path int true "Year"
// @Param month path int true "Month (1-12)"
// @Param request body models.SetMonthlyValueRequest true "Monthly value"
// @Success 200 {object} models.MonthlyValueResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /admin/participants/{id}/monthly-values/{year}/{month} [put]
func (h *ParticipantHandler) SetMonthlyValue(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	period, ok := pathPeriod(c)
	if !ok {
		return
	}

	var req models.SetMonthlyValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	mv, result, err := h.participantSvc.SetMonthlyValue(c.Request.Context(), id, period, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MonthlyValueResponse{MonthlyValue: mv, Rebalance: result})
}

// DeleteMonthlyValue handles DELETE /admin/participants/:id/monthly-values/:year/:month
// @Summary Delete a monthly value
// @Tags monthly-values
// @Produce json
// @Param X-User-ID header int true "Admin participant ID"
// @Param id path int true "Participant ID"
// @Param year path int true "Year"
// @Param month path int true "Month (1-12)"
// @Success 200 {object} map[string]string
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/participants/{id}/monthly-values/{year}/{month} [delete]
func (h *ParticipantHandler) DeleteMonthlyValue(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	period, ok := pathPeriod(c)
	if !ok {
		return
	}

	if err := h.participantSvc.DeleteMonthlyValue(c.Request.Context(), id, period); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "monthly value deleted"})
}

// Rebalance handles POST /admin/rebalance
// @Summary Rebalance ownership
// @Description Set one participant's beginning value for a month and recompute every participant's ownership as their share of the total
// @Tags participants
// @Accept json
// @Produce json
// @Param X-User-ID header int true "Admin participant ID"
// @Param request body models.RebalanceRequest true "Rebalance"
// @Success 200 {object} models.RebalanceResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /admin/rebalance [post]
func (h *ParticipantHandler) Rebalance(c *gin.Context) {
	var req models.RebalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	period, err := models.NewPeriod(req.Year, req.Month)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.participantSvc.Rebalance(c.Request.Context(), period, req.ParticipantID, *req.BeginningValue)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
