package handlers

import (
	"net/http"

	"github.com/epeers/fundledger/internal/middleware"
	"github.com/epeers/fundledger/internal/models"
	"github.com/epeers/fundledger/internal/services"
	"github.com/gin-gonic/gin"
)

// LedgerHandler serves participant ledgers and the fund summary
type LedgerHandler struct {
	ledgerSvc *services.LedgerService
	admins    middleware.AdminChecker
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledgerSvc *services.LedgerService, admins middleware.AdminChecker) *LedgerHandler {
	return &LedgerHandler{
		ledgerSvc: ledgerSvc,
		admins:    admins,
	}
}

func (h *LedgerHandler) writeLedger(c *gin.Context, participantID int64, period models.Period) {
	ctx, wc := services.NewWarningContext(c.Request.Context())
	ledger, err := h.ledgerSvc.ParticipantLedger(ctx, participantID, period)
	if err != nil {
		respondError(c, err)
		return
	}
	ledger.Warnings = wc.GetWarnings()
	c.JSON(http.StatusOK, ledger)
}

// MyLedger handles GET /me/ledger
// @Summary Get the caller's ledger
// @Description Per-day values and month summary for the authenticated participant
// @Tags ledger
// @Produce json
// @Param X-User-ID header int true "Participant ID"
// @Param year query int true "Year"
// @Param month query int true "Month (1-12)"
// @Success 200 {object} models.Ledger
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /me/ledger [get]
func (h *LedgerHandler) MyLedger(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "unauthorized",
			Message: "authentication required",
		})
		return
	}
	period, ok := queryPeriod(c)
	if !ok {
		return
	}
	h.writeLedger(c, userID, period)
}

// ParticipantLedger handles GET /participants/:id/ledger
// @Summary Get a participant's ledger
// @Description Per-day values and month summary. Participants may read their own ledger; admins may read any.
// @Tags ledger
// @Produce json
// @Param X-User-ID header int true "Participant ID"
// @Param id path int true "Participant ID"
// @Param year query int true "Year"
// @Param month query int true "Month (1-12)"
// @Success 200 {object} models.Ledger
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /participants/{id}/ledger [get]
func (h *LedgerHandler) ParticipantLedger(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "unauthorized",
			Message: "authentication required",
		})
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	period, ok := queryPeriod(c)
	if !ok {
		return
	}

	if id != userID {
		isAdmin, err := h.admins.IsAdmin(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		if !isAdmin {
			respondError(c, services.ErrForbidden)
			return
		}
	}
	h.writeLedger(c, id, period)
}

// FundSummary handles GET /admin/summary
// @Summary Get the fund summary
// @Description Every participant's month summary plus fund totals
// @Tags ledger
// @Produce json
// @Param X-User-ID header int true "Admin participant ID"
// @Param year query int true "Year"
// @Param month query int true "Month (1-12)"
// @Success 200 {object} models.FundSummary
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /admin/summary [get]
func (h *LedgerHandler) FundSummary(c *gin.Context) {
	period, ok := queryPeriod(c)
	if !ok {
		return
	}

	ctx, wc := services.NewWarningContext(c.Request.Context())
	summary, err := h.ledgerSvc.FundSummary(ctx, period)
	if err != nil {
		respondError(c, err)
		return
	}
	summary.Warnings = wc.GetWarnings()
	c.JSON(http.StatusOK, summary)
}
