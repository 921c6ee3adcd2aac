package handlers

import (
	"github.com/epeers/fundledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers groups every handler the API exposes
type Handlers struct {
	Participants *ParticipantHandler
	Returns      *ReturnHandler
	Ledger       *LedgerHandler
	Admin        *AdminHandler
}

// RegisterRoutes mounts the public, participant and admin routes on router.
// Identity middleware (ValidateUser) must already be installed.
func RegisterRoutes(router gin.IRouter, h Handlers, admins middleware.AdminChecker) {
	router.GET("/calendar", h.Admin.GetCalendar)

	authed := router.Group("", middleware.RequireAuth())
	authed.GET("/me/ledger", h.Ledger.MyLedger)
	authed.GET("/participants/:id/ledger", h.Ledger.ParticipantLedger)

	admin := router.Group("/admin", middleware.RequireAuth(), middleware.RequireAdmin(admins))

	admin.GET("/participants", h.Participants.List)
	admin.POST("/participants", h.Participants.Create)
	admin.GET("/participants/:id", h.Participants.Get)
	admin.PUT("/participants/:id", h.Participants.Update)
	admin.DELETE("/participants/:id", h.Participants.Delete)
	admin.GET("/participants/:id/monthly-values", h.Participants.ListMonthlyValues)
	admin.PUT("/participants/:id/monthly-values/:year/:month", h.Participants.SetMonthlyValue)
	admin.DELETE("/participants/:id/monthly-values/:year/:month", h.Participants.DeleteMonthlyValue)
	admin.POST("/rebalance", h.Participants.Rebalance)

	admin.GET("/participants/:id/returns", h.Returns.ListDailyReturns)
	admin.POST("/participants/:id/returns", h.Returns.CreateDailyReturn)
	admin.PUT("/returns/:id", h.Returns.UpdateDailyReturn)
	admin.DELETE("/returns/:id", h.Returns.DeleteDailyReturn)

	admin.GET("/fund-returns", h.Returns.ListFundReturns)
	admin.POST("/fund-returns", h.Returns.CreateFundReturn)
	admin.PUT("/fund-returns/:id", h.Returns.UpdateFundReturn)
	admin.DELETE("/fund-returns/:id", h.Returns.DeleteFundReturn)
	admin.POST("/fund-returns/import", h.Returns.ImportFundReturns)

	admin.GET("/summary", h.Ledger.FundSummary)

	admin.GET("/settings", h.Admin.GetSettings)
	admin.PUT("/settings", h.Admin.UpdateSettings)

	admin.POST("/calendar/init", h.Admin.InitCalendar)
	admin.POST("/calendar/import", h.Admin.ImportCalendar)
	admin.GET("/calendar/status", h.Admin.CalendarStatus)
}
