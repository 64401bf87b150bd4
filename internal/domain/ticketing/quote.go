package ticketing

import (
	"strings"
	"time"

	"github.com/agence/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteLine is one priced flight line frozen into the quote at creation.
// It seeds a ticket line when the quote becomes a ticket.
type QuoteLine struct {
	ID                uuid.UUID
	QuoteID           uuid.UUID
	ProspectionLineID uuid.UUID
	Position          int
	Flight            FlightSegment
	PassengerCount    int
	Pricing           Pricing
}

// QuoteLineInput is a prospecting line selected for the quote
type QuoteLineInput struct {
	ProspectionLineID uuid.UUID
	Flight            FlightSegment
	PassengerCount    int
	Prices            PriceInputs
}

// Quote is the devis aggregate root
type Quote struct {
	shared.BaseAggregateRoot
	Reference           string
	ProspectionHeaderID uuid.UUID
	ClientName          string
	Status              QuoteStatus
	TotalAmount         decimal.Decimal // client total in Ariary
	TotalCommission     decimal.Decimal
	Lines               []QuoteLine
	CancelReason        string
	PDFRef              string
	CommissionReportRef string
	TicketHeaderID      *uuid.UUID
	SentAt              *time.Time
	ApprovedAt          *time.Time
	DirectionSentAt     *time.Time
	CancelledAt         *time.Time
}

// NewQuote prices the selected prospecting lines and creates a quote in CREER
func NewQuote(reference string, prospectionHeaderID uuid.UUID, clientName string, inputs []QuoteLineInput) (*Quote, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, ErrReferenceRequired
	}
	if prospectionHeaderID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("Prospection header is required")
	}
	if len(inputs) == 0 {
		return nil, ErrQuoteLinesRequired
	}

	q := &Quote{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		Reference:           reference,
		ProspectionHeaderID: prospectionHeaderID,
		ClientName:          strings.TrimSpace(clientName),
		Status:              QuoteStatusCreated,
		Lines:               make([]QuoteLine, 0, len(inputs)),
	}

	for i, in := range inputs {
		if err := in.Flight.Validate(); err != nil {
			return nil, err
		}
		if in.PassengerCount < 1 {
			return nil, ErrPassengersRequired.WithMessage("Line %d has no passengers", i+1)
		}
		pricing, err := ComputePricing(in.Prices, in.PassengerCount)
		if err != nil {
			return nil, err
		}
		q.Lines = append(q.Lines, QuoteLine{
			ID:                uuid.New(),
			QuoteID:           q.ID,
			ProspectionLineID: in.ProspectionLineID,
			Position:          i + 1,
			Flight:            in.Flight,
			PassengerCount:    in.PassengerCount,
			Pricing:           pricing,
		})
	}
	q.recalculateTotals()

	q.AddDomainEvent(NewQuoteCreatedEvent(q))
	return q, nil
}

// SendToClient moves the quote from CREER to DEVIS_A_APPROUVER
func (q *Quote) SendToClient() error {
	if !q.Status.CanTransitionTo(QuoteStatusAwaitingClient) {
		return ErrQuoteAlreadySent.WithMessage("Cannot send quote in %s status", q.Status)
	}
	from := q.Status
	now := time.Now()
	q.Status = QuoteStatusAwaitingClient
	q.SentAt = &now
	q.UpdatedAt = now

	q.AddDomainEvent(NewQuoteStatusChangedEvent(EventTypeQuoteSentToClient, q, from))
	return nil
}

// ClientApproves moves the quote from DEVIS_A_APPROUVER to DEVIS_APPROUVE
func (q *Quote) ClientApproves() error {
	if q.Status != QuoteStatusAwaitingClient {
		if q.Status == QuoteStatusCreated {
			return ErrQuoteNotSent
		}
		return ErrAlreadyTerminalOrApproved.WithMessage("Cannot approve quote in %s status", q.Status)
	}
	from := q.Status
	now := time.Now()
	q.Status = QuoteStatusClientApproved
	q.ApprovedAt = &now
	q.UpdatedAt = now

	q.AddDomainEvent(NewQuoteStatusChangedEvent(EventTypeQuoteClientApproved, q, from))
	return nil
}

// SendToDirection records the commission report produced for management.
// Only legal once the client approved; the status does not change.
func (q *Quote) SendToDirection(reportRef string) error {
	if q.Status != QuoteStatusClientApproved {
		return ErrQuoteNotApproved.WithMessage("Cannot send quote in %s status to direction", q.Status)
	}
	reportRef = strings.TrimSpace(reportRef)
	if reportRef == "" {
		return shared.ErrInvalidInput.WithMessage("Commission report reference is required")
	}
	now := time.Now()
	q.CommissionReportRef = reportRef
	q.DirectionSentAt = &now
	q.UpdatedAt = now

	q.AddDomainEvent(NewQuoteSentToDirectionEvent(q))
	return nil
}

// CanSendToDirection reports whether SendToDirection would be accepted
func (q *Quote) CanSendToDirection() error {
	if q.Status != QuoteStatusClientApproved {
		return ErrQuoteNotApproved.WithMessage("Cannot send quote in %s status to direction", q.Status)
	}
	return nil
}

// Cancel moves a quote in CREER or DEVIS_A_APPROUVER to ANNULER
func (q *Quote) Cancel(reason string) error {
	if !q.Status.CanTransitionTo(QuoteStatusCancelled) {
		return ErrAlreadyTerminalOrApproved.WithMessage("Cannot cancel quote in %s status", q.Status)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrReasonRequired
	}
	from := q.Status
	now := time.Now()
	q.Status = QuoteStatusCancelled
	q.CancelReason = reason
	q.CancelledAt = &now
	q.UpdatedAt = now

	q.AddDomainEvent(NewQuoteStatusChangedEvent(EventTypeQuoteCancelled, q, from))
	return nil
}

// AttachPDF stores the reference of the rendered quote document
func (q *Quote) AttachPDF(ref string) {
	q.PDFRef = ref
	q.UpdatedAt = time.Now()
}

// CreateTicketHeader spawns the ticket for an approved quote.
// A quote yields at most one ticket.
func (q *Quote) CreateTicketHeader() (*TicketHeader, error) {
	if q.Status != QuoteStatusClientApproved {
		return nil, ErrQuoteNotApproved.WithMessage("Cannot create a ticket from quote in %s status", q.Status)
	}
	if q.TicketHeaderID != nil {
		return nil, ErrTicketAlreadyCreated.WithMessage("Quote %s already produced ticket %s", q.Reference, *q.TicketHeaderID)
	}

	header := newTicketHeaderFromQuote(q)
	id := header.ID
	q.TicketHeaderID = &id
	q.UpdatedAt = time.Now()

	q.AddDomainEvent(NewTicketCreatedEvent(header))
	return header, nil
}

// IsTerminal returns true if the quote accepts no further status change
func (q *Quote) IsTerminal() bool {
	return q.Status == QuoteStatusClientApproved || q.Status == QuoteStatusCancelled
}

// TotalPassengers sums the quoted passenger counts
func (q *Quote) TotalPassengers() int {
	n := 0
	for _, l := range q.Lines {
		n += l.PassengerCount
	}
	return n
}

func (q *Quote) recalculateTotals() {
	total := decimal.Zero
	commission := decimal.Zero
	for _, l := range q.Lines {
		total = total.Add(l.Pricing.ClientTotalAriary())
		commission = commission.Add(l.Pricing.Commission)
	}
	q.TotalAmount = total
	q.TotalCommission = commission
}
