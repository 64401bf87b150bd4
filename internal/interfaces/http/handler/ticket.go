package handler

import (
	"context"
	"fmt"
	"net/http"

	apptic "github.com/agence/backoffice/internal/application/ticketing"
	"github.com/agence/backoffice/internal/domain/shared"
	"github.com/agence/backoffice/internal/domain/ticketing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TicketUseCases is the ticket side of the ticketing application layer
type TicketUseCases interface {
	GetByID(ctx context.Context, id uuid.UUID) (*apptic.TicketResponse, error)
	List(ctx context.Context, filter apptic.TicketListFilter) (*shared.Paginated[apptic.TicketResponse], error)
	Progress(ctx context.Context, id uuid.UUID) (*ticketing.Progress, error)
	ReserveLine(ctx context.Context, id, lineID uuid.UUID, req apptic.ReserveLineRequest) (*apptic.TicketResponse, error)
	EmitLine(ctx context.Context, id, lineID uuid.UUID, req apptic.EmitLineRequest) (*apptic.TicketResponse, error)
	RescheduleLine(ctx context.Context, id, lineID uuid.UUID, req apptic.RescheduleLineRequest) (*apptic.TicketResponse, error)
	Revisions(ctx context.Context, id, lineID uuid.UUID) ([]ticketing.LineRevision, error)
	ApproveReservation(ctx context.Context, id uuid.UUID) (*apptic.TicketResponse, error)
	Emit(ctx context.Context, id uuid.UUID) (*apptic.TicketResponse, error)
	Invoice(ctx context.Context, id uuid.UUID, req apptic.IssueInvoiceRequest) (*apptic.TicketResponse, error)
	Settle(ctx context.Context, id uuid.UUID) (*apptic.TicketResponse, error)
	CancelReservation(ctx context.Context, id uuid.UUID, req apptic.CancelReservationRequest) (*apptic.TicketResponse, error)
	CancelEmission(ctx context.Context, id uuid.UUID, req apptic.CancelEmissionRequest) (*apptic.TicketResponse, error)
	AttachmentURL(ctx context.Context, id, lineID uuid.UUID) (*apptic.DocumentResponse, error)
	Export(ctx context.Context, id uuid.UUID) (*apptic.ExportResponse, error)
}

var _ TicketUseCases = (*apptic.TicketService)(nil)

// TicketHandler handles the ticket header and ticket line endpoints
type TicketHandler struct {
	BaseHandler
	tickets TicketUseCases
}

// NewTicketHandler creates a new TicketHandler
func NewTicketHandler(tickets TicketUseCases) *TicketHandler {
	return &TicketHandler{tickets: tickets}
}

// GetByID handles GET /tickets/:id
func (h *TicketHandler) GetByID(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	ticket, err := h.tickets.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ticket)
}

// List handles GET /tickets
func (h *TicketHandler) List(c *gin.Context) {
	var filter apptic.TicketListFilter
	if !h.BindQuery(c, &filter) {
		return
	}

	page, err := h.tickets.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Progress handles GET /tickets/:id/progress
func (h *TicketHandler) Progress(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	progress, err := h.tickets.Progress(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, progress)
}

// Export handles GET /tickets/:id/export and streams the workbook
func (h *TicketHandler) Export(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	export, err := h.tickets.Export(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename))
	c.Data(http.StatusOK, export.ContentType, export.Data)
}

// ApproveReservation handles POST /tickets/:id/approve-reservation
func (h *TicketHandler) ApproveReservation(c *gin.Context) {
	h.transition(c, h.tickets.ApproveReservation)
}

// Emit handles POST /tickets/:id/emit
func (h *TicketHandler) Emit(c *gin.Context) {
	h.transition(c, h.tickets.Emit)
}

// Settle handles POST /tickets/:id/settle
func (h *TicketHandler) Settle(c *gin.Context) {
	h.transition(c, h.tickets.Settle)
}

// Invoice handles POST /tickets/:id/invoice
func (h *TicketHandler) Invoice(c *gin.Context) {
	var req apptic.IssueInvoiceRequest
	withBody(h, c, &req, func(ctx context.Context, id uuid.UUID) (*apptic.TicketResponse, error) {
		return h.tickets.Invoice(ctx, id, req)
	})
}

// CancelReservation handles POST /tickets/:id/cancel-reservation
func (h *TicketHandler) CancelReservation(c *gin.Context) {
	var req apptic.CancelReservationRequest
	withBody(h, c, &req, func(ctx context.Context, id uuid.UUID) (*apptic.TicketResponse, error) {
		return h.tickets.CancelReservation(ctx, id, req)
	})
}

// CancelEmission handles POST /tickets/:id/cancel-emission
func (h *TicketHandler) CancelEmission(c *gin.Context) {
	var req apptic.CancelEmissionRequest
	withBody(h, c, &req, func(ctx context.Context, id uuid.UUID) (*apptic.TicketResponse, error) {
		return h.tickets.CancelEmission(ctx, id, req)
	})
}

// ReserveLine handles POST /tickets/:id/lines/:lineId/reserve
func (h *TicketHandler) ReserveLine(c *gin.Context) {
	var req apptic.ReserveLineRequest
	withLineBody(h, c, &req, func(ctx context.Context, id, lineID uuid.UUID) (*apptic.TicketResponse, error) {
		return h.tickets.ReserveLine(ctx, id, lineID, req)
	})
}

// EmitLine handles POST /tickets/:id/lines/:lineId/emit
func (h *TicketHandler) EmitLine(c *gin.Context) {
	var req apptic.EmitLineRequest
	withLineBody(h, c, &req, func(ctx context.Context, id, lineID uuid.UUID) (*apptic.TicketResponse, error) {
		return h.tickets.EmitLine(ctx, id, lineID, req)
	})
}

// RescheduleLine handles POST /tickets/:id/lines/:lineId/reschedule
func (h *TicketHandler) RescheduleLine(c *gin.Context) {
	var req apptic.RescheduleLineRequest
	withLineBody(h, c, &req, func(ctx context.Context, id, lineID uuid.UUID) (*apptic.TicketResponse, error) {
		return h.tickets.RescheduleLine(ctx, id, lineID, req)
	})
}

// Revisions handles GET /tickets/:id/lines/:lineId/revisions
func (h *TicketHandler) Revisions(c *gin.Context) {
	id, lineID, ok := h.lineParams(c)
	if !ok {
		return
	}

	revisions, err := h.tickets.Revisions(c.Request.Context(), id, lineID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if revisions == nil {
		revisions = []ticketing.LineRevision{}
	}
	h.Success(c, revisions)
}

// Attachment handles GET /tickets/:id/lines/:lineId/attachment
func (h *TicketHandler) Attachment(c *gin.Context) {
	id, lineID, ok := h.lineParams(c)
	if !ok {
		return
	}

	doc, err := h.tickets.AttachmentURL(c.Request.Context(), id, lineID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

func (h *TicketHandler) transition(c *gin.Context, op func(context.Context, uuid.UUID) (*apptic.TicketResponse, error)) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	ticket, err := op(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ticket)
}

func (h *TicketHandler) lineParams(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	lineID, ok := h.ParamUUID(c, "lineId")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return id, lineID, true
}

// withBody parses the id, binds the body into req, then runs op
func withBody[T any](h *TicketHandler, c *gin.Context, req *T, op func(context.Context, uuid.UUID) (*apptic.TicketResponse, error)) {
	id, ok := h.ParamUUID(c, "id")
	if !ok || !h.BindJSON(c, req) {
		return
	}

	ticket, err := op(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ticket)
}

// withLineBody is withBody for line-scoped commands
func withLineBody[T any](h *TicketHandler, c *gin.Context, req *T, op func(context.Context, uuid.UUID, uuid.UUID) (*apptic.TicketResponse, error)) {
	id, lineID, ok := h.lineParams(c)
	if !ok || !h.BindJSON(c, req) {
		return
	}

	ticket, err := op(c.Request.Context(), id, lineID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ticket)
}
