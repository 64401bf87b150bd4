package handler

import (
	"context"

	apptic "github.com/agence/backoffice/internal/application/ticketing"
	"github.com/agence/backoffice/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// QuoteUseCases is the quote side of the ticketing application layer
type QuoteUseCases interface {
	Create(ctx context.Context, req apptic.CreateQuoteRequest) (*apptic.QuoteResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*apptic.QuoteResponse, error)
	List(ctx context.Context, filter apptic.QuoteListFilter) (*shared.Paginated[apptic.QuoteResponse], error)
	SendToClient(ctx context.Context, id uuid.UUID) (*apptic.QuoteResponse, error)
	ClientApprove(ctx context.Context, id uuid.UUID) (*apptic.QuoteResponse, error)
	SendToDirection(ctx context.Context, id uuid.UUID) (*apptic.QuoteResponse, error)
	Cancel(ctx context.Context, id uuid.UUID, req apptic.CancelQuoteRequest) (*apptic.QuoteResponse, error)
	GeneratePDF(ctx context.Context, id uuid.UUID) (*apptic.DocumentResponse, error)
	CreateTicket(ctx context.Context, id uuid.UUID) (*apptic.TicketResponse, error)
	GetTicket(ctx context.Context, id uuid.UUID) (*apptic.TicketResponse, error)
}

var _ QuoteUseCases = (*apptic.QuoteService)(nil)

// QuoteHandler handles the quote endpoints
type QuoteHandler struct {
	BaseHandler
	quotes QuoteUseCases
}

// NewQuoteHandler creates a new QuoteHandler
func NewQuoteHandler(quotes QuoteUseCases) *QuoteHandler {
	return &QuoteHandler{quotes: quotes}
}

// Create handles POST /quotes
func (h *QuoteHandler) Create(c *gin.Context) {
	var req apptic.CreateQuoteRequest
	if !h.BindJSON(c, &req) {
		return
	}

	quote, err := h.quotes.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, quote)
}

// GetByID handles GET /quotes/:id
func (h *QuoteHandler) GetByID(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	quote, err := h.quotes.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}

// List handles GET /quotes
func (h *QuoteHandler) List(c *gin.Context) {
	var filter apptic.QuoteListFilter
	if !h.BindQuery(c, &filter) {
		return
	}

	page, err := h.quotes.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// SendToClient handles POST /quotes/:id/send-to-client
func (h *QuoteHandler) SendToClient(c *gin.Context) {
	h.transition(c, h.quotes.SendToClient)
}

// ClientApprove handles POST /quotes/:id/client-approve
func (h *QuoteHandler) ClientApprove(c *gin.Context) {
	h.transition(c, h.quotes.ClientApprove)
}

// SendToDirection handles POST /quotes/:id/send-to-direction
func (h *QuoteHandler) SendToDirection(c *gin.Context) {
	h.transition(c, h.quotes.SendToDirection)
}

// Cancel handles POST /quotes/:id/cancel
func (h *QuoteHandler) Cancel(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req apptic.CancelQuoteRequest
	if !h.BindJSON(c, &req) {
		return
	}

	quote, err := h.quotes.Cancel(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}

// GeneratePDF handles POST /quotes/:id/pdf
func (h *QuoteHandler) GeneratePDF(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	doc, err := h.quotes.GeneratePDF(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// CreateTicket handles POST /quotes/:id/tickets
func (h *QuoteHandler) CreateTicket(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	ticket, err := h.quotes.CreateTicket(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, ticket)
}

// GetTicket handles GET /quotes/:id/ticket
func (h *QuoteHandler) GetTicket(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	ticket, err := h.quotes.GetTicket(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ticket)
}

func (h *QuoteHandler) transition(c *gin.Context, op func(context.Context, uuid.UUID) (*apptic.QuoteResponse, error)) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	quote, err := op(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}
