package ticketing

import (
	"github.com/agence/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeQuote  = "Quote"
	AggregateTypeTicket = "Ticket"
)

// Quote event types
const (
	EventTypeQuoteCreated         = "QuoteCreated"
	EventTypeQuoteSentToClient    = "QuoteSentToClient"
	EventTypeQuoteClientApproved  = "QuoteClientApproved"
	EventTypeQuoteSentToDirection = "QuoteSentToDirection"
	EventTypeQuoteCancelled       = "QuoteCancelled"
)

// Ticket event types
const (
	EventTypeTicketCreated                  = "TicketCreated"
	EventTypeTicketReservationApproved      = "TicketReservationApproved"
	EventTypeTicketEmitted                  = "TicketEmitted"
	EventTypeTicketInvoiced                 = "TicketInvoiced"
	EventTypeTicketSettled                  = "TicketSettled"
	EventTypeTicketCancelled                = "TicketCancelled"
	EventTypeTicketLineReserved             = "TicketLineReserved"
	EventTypeTicketLineEmitted              = "TicketLineEmitted"
	EventTypeTicketLineReservationCancelled = "TicketLineReservationCancelled"
	EventTypeTicketLineEmissionCancelled    = "TicketLineEmissionCancelled"
	EventTypeTicketLineRescheduled          = "TicketLineRescheduled"
)

// QuoteCreatedEvent is raised when a quote is priced from prospecting lines
type QuoteCreatedEvent struct {
	shared.BaseDomainEvent
	QuoteID     uuid.UUID       `json:"quote_id"`
	Reference   string          `json:"reference"`
	LineCount   int             `json:"line_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewQuoteCreatedEvent creates a new QuoteCreatedEvent
func NewQuoteCreatedEvent(q *Quote) *QuoteCreatedEvent {
	return &QuoteCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteCreated, AggregateTypeQuote, q.ID),
		QuoteID:         q.ID,
		Reference:       q.Reference,
		LineCount:       len(q.Lines),
		TotalAmount:     q.TotalAmount,
	}
}

// QuoteStatusChangedEvent is raised by every quote status transition
type QuoteStatusChangedEvent struct {
	shared.BaseDomainEvent
	QuoteID    uuid.UUID   `json:"quote_id"`
	Reference  string      `json:"reference"`
	FromStatus QuoteStatus `json:"from_status"`
	ToStatus   QuoteStatus `json:"to_status"`
	Reason     string      `json:"reason,omitempty"`
}

// NewQuoteStatusChangedEvent creates a new QuoteStatusChangedEvent
func NewQuoteStatusChangedEvent(eventType string, q *Quote, from QuoteStatus) *QuoteStatusChangedEvent {
	return &QuoteStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeQuote, q.ID),
		QuoteID:         q.ID,
		Reference:       q.Reference,
		FromStatus:      from,
		ToStatus:        q.Status,
		Reason:          q.CancelReason,
	}
}

// QuoteSentToDirectionEvent is raised when the commission report is handed to management
type QuoteSentToDirectionEvent struct {
	shared.BaseDomainEvent
	QuoteID         uuid.UUID       `json:"quote_id"`
	Reference       string          `json:"reference"`
	ReportRef       string          `json:"report_ref"`
	TotalCommission decimal.Decimal `json:"total_commission"`
}

// NewQuoteSentToDirectionEvent creates a new QuoteSentToDirectionEvent
func NewQuoteSentToDirectionEvent(q *Quote) *QuoteSentToDirectionEvent {
	return &QuoteSentToDirectionEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteSentToDirection, AggregateTypeQuote, q.ID),
		QuoteID:         q.ID,
		Reference:       q.Reference,
		ReportRef:       q.CommissionReportRef,
		TotalCommission: q.TotalCommission,
	}
}

// TicketCreatedEvent is raised when an approved quote spawns its ticket
type TicketCreatedEvent struct {
	shared.BaseDomainEvent
	TicketID  uuid.UUID `json:"ticket_id"`
	QuoteID   uuid.UUID `json:"quote_id"`
	LineCount int       `json:"line_count"`
}

// NewTicketCreatedEvent creates a new TicketCreatedEvent
func NewTicketCreatedEvent(h *TicketHeader) *TicketCreatedEvent {
	return &TicketCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTicketCreated, AggregateTypeTicket, h.ID),
		TicketID:        h.ID,
		QuoteID:         h.QuoteID,
		LineCount:       len(h.Lines),
	}
}

// TicketStatusChangedEvent is raised by every header status transition
type TicketStatusChangedEvent struct {
	shared.BaseDomainEvent
	TicketID            uuid.UUID       `json:"ticket_id"`
	FromStatus          HeaderStatus    `json:"from_status"`
	ToStatus            HeaderStatus    `json:"to_status"`
	TotalCompagnie      decimal.Decimal `json:"total_compagnie"`
	CommissionAppliquer decimal.Decimal `json:"commission_appliquer"`
}

// NewTicketStatusChangedEvent creates a new TicketStatusChangedEvent
func NewTicketStatusChangedEvent(eventType string, h *TicketHeader, from HeaderStatus) *TicketStatusChangedEvent {
	return &TicketStatusChangedEvent{
		BaseDomainEvent:     shared.NewBaseDomainEvent(eventType, AggregateTypeTicket, h.ID),
		TicketID:            h.ID,
		FromStatus:          from,
		ToStatus:            h.Status,
		TotalCompagnie:      h.TotalCompagnie,
		CommissionAppliquer: h.CommissionAppliquer,
	}
}

// TicketLineChangedEvent is raised by every line transition
type TicketLineChangedEvent struct {
	shared.BaseDomainEvent
	TicketID   uuid.UUID  `json:"ticket_id"`
	LineID     uuid.UUID  `json:"line_id"`
	FromStatus LineStatus `json:"from_status"`
	ToStatus   LineStatus `json:"to_status"`
}

// NewTicketLineChangedEvent creates a new TicketLineChangedEvent
func NewTicketLineChangedEvent(eventType string, h *TicketHeader, l *TicketLine, from LineStatus) *TicketLineChangedEvent {
	return &TicketLineChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeTicket, h.ID),
		TicketID:        h.ID,
		LineID:          l.ID,
		FromStatus:      from,
		ToStatus:        l.Status,
	}
}
