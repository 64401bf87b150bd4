package router

import "github.com/agence/backoffice/internal/interfaces/http/handler"

// QuoteRoutes registers the quote endpoints under /quotes
func QuoteRoutes(h *handler.QuoteHandler) *DomainGroup {
	return NewDomainGroup("quotes", "/quotes").
		POST("", h.Create).
		GET("", h.List).
		GET("/:id", h.GetByID).
		POST("/:id/send-to-client", h.SendToClient).
		POST("/:id/client-approve", h.ClientApprove).
		POST("/:id/send-to-direction", h.SendToDirection).
		POST("/:id/cancel", h.Cancel).
		POST("/:id/pdf", h.GeneratePDF).
		POST("/:id/tickets", h.CreateTicket).
		GET("/:id/ticket", h.GetTicket)
}

// TicketRoutes registers the ticket header and line endpoints under /tickets
func TicketRoutes(h *handler.TicketHandler) *DomainGroup {
	tickets := NewDomainGroup("tickets", "/tickets").
		GET("", h.List).
		GET("/:id", h.GetByID).
		GET("/:id/progress", h.Progress).
		GET("/:id/export", h.Export).
		POST("/:id/approve-reservation", h.ApproveReservation).
		POST("/:id/emit", h.Emit).
		POST("/:id/invoice", h.Invoice).
		POST("/:id/settle", h.Settle).
		POST("/:id/cancel-reservation", h.CancelReservation).
		POST("/:id/cancel-emission", h.CancelEmission)

	tickets.Group("ticket-lines", "/:id/lines/:lineId").
		POST("/reserve", h.ReserveLine).
		POST("/emit", h.EmitLine).
		POST("/reschedule", h.RescheduleLine).
		GET("/revisions", h.Revisions).
		GET("/attachment", h.Attachment)

	return tickets
}
