package ticketing

import (
	"context"
	"fmt"

	"github.com/agence/backoffice/internal/domain/shared"
	"github.com/agence/backoffice/internal/domain/ticketing"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TicketService handles ticket header and line operations
type TicketService struct {
	ticketRepo     ticketing.TicketRepository
	storage        ObjectStorage
	exporter       TicketExporter
	logger         *zap.Logger
	eventPublisher shared.EventPublisher
}

// NewTicketService creates a new TicketService
func NewTicketService(
	ticketRepo ticketing.TicketRepository,
	storage ObjectStorage,
	exporter TicketExporter,
	logger *zap.Logger,
) *TicketService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		ticketRepo: ticketRepo,
		storage:    storage,
		exporter:   exporter,
		logger:     logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *TicketService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// GetByID retrieves a ticket with its lines
func (s *TicketService) GetByID(ctx context.Context, id uuid.UUID) (*TicketResponse, error) {
	header, err := s.ticketRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToTicketResponse(header)
	return &response, nil
}

// List retrieves a page of tickets
func (s *TicketService) List(ctx context.Context, params TicketListFilter) (*shared.Paginated[TicketResponse], error) {
	filter := toFilter(params.Page, params.PageSize, params.Search, params.Status)
	if params.QuoteID != "" {
		filter.Filters["quote_id"] = params.QuoteID
	}

	headers, err := s.ticketRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.ticketRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]TicketResponse, len(headers))
	for i := range headers {
		items[i] = ToTicketResponse(&headers[i])
	}
	result := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &result, nil
}

// Progress returns the aggregate predicates and flight groups of a ticket
func (s *TicketService) Progress(ctx context.Context, id uuid.UUID) (*ticketing.Progress, error) {
	header, err := s.ticketRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	progress := header.Progress()
	return &progress, nil
}

// ReserveLine records the reservation of one line
func (s *TicketService) ReserveLine(ctx context.Context, id, lineID uuid.UUID, req ReserveLineRequest) (*TicketResponse, error) {
	return s.mutate(ctx, id, func(h *ticketing.TicketHeader) error {
		return h.ReserveLine(lineID, req.toDomain())
	})
}

// EmitLine records the emission of one line
func (s *TicketService) EmitLine(ctx context.Context, id, lineID uuid.UUID, req EmitLineRequest) (*TicketResponse, error) {
	return s.mutate(ctx, id, func(h *ticketing.TicketHeader) error {
		return h.EmitLine(lineID, req.toDomain())
	})
}

// RescheduleLine rebooks one line, keeping its previous state as a revision
func (s *TicketService) RescheduleLine(ctx context.Context, id, lineID uuid.UUID, req RescheduleLineRequest) (*TicketResponse, error) {
	terms, err := req.FeeTermsInput.toDomain()
	if err != nil {
		return nil, err
	}
	in := ticketing.RescheduleInput{
		Flight:         req.Flight.toDomain(),
		PassengerIDs:   req.PassengerIDs,
		Terms:          terms,
		ConditionModif: req.ConditionModif,
		ConditionAnnul: req.ConditionAnnul,
		Prices:         req.Prices.toDomain(),
	}
	return s.mutate(ctx, id, func(h *ticketing.TicketHeader) error {
		return h.RescheduleLine(lineID, in)
	})
}

// Revisions returns the reschedule history of a line, oldest first
func (s *TicketService) Revisions(ctx context.Context, id, lineID uuid.UUID) ([]ticketing.LineRevision, error) {
	header, err := s.ticketRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	line, err := header.GetLine(lineID)
	if err != nil {
		return nil, err
	}
	return line.Revisions, nil
}

// ApproveReservation moves the header to BC_CLIENT_A_APPROUVER
func (s *TicketService) ApproveReservation(ctx context.Context, id uuid.UUID) (*TicketResponse, error) {
	return s.mutate(ctx, id, func(h *ticketing.TicketHeader) error {
		return h.ApproveReservation()
	})
}

// Emit assigns the header ticket number and moves the header to BILLET_EMIS
func (s *TicketService) Emit(ctx context.Context, id uuid.UUID) (*TicketResponse, error) {
	number, err := s.ticketRepo.GenerateTicketNumber(ctx)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(h *ticketing.TicketHeader) error {
		return h.EmitHeader(number)
	})
}

// Invoice records the client invoice reference
func (s *TicketService) Invoice(ctx context.Context, id uuid.UUID, req IssueInvoiceRequest) (*TicketResponse, error) {
	return s.mutate(ctx, id, func(h *ticketing.TicketHeader) error {
		return h.IssueClientInvoice(req.ReferenceFacClient)
	})
}

// Settle marks the client invoice as paid
func (s *TicketService) Settle(ctx context.Context, id uuid.UUID) (*TicketResponse, error) {
	return s.mutate(ctx, id, func(h *ticketing.TicketHeader) error {
		return h.SettleInvoice()
	})
}

// CancelReservation cancels the reservation of the selected lines. Either
// every selected line is cancelled or none is.
func (s *TicketService) CancelReservation(ctx context.Context, id uuid.UUID, req CancelReservationRequest) (*TicketResponse, error) {
	terms, err := req.FeeTermsInput.toDomain()
	if err != nil {
		return nil, err
	}
	in := ticketing.CancelReservationInput{
		Reason:         ticketing.CancellationReason{ID: req.ReasonID, Text: req.Reason},
		Terms:          terms,
		ExchangeRate:   req.ExchangeRate,
		ConditionAnnul: req.ConditionAnnul,
	}
	return s.mutate(ctx, id, func(h *ticketing.TicketHeader) error {
		return h.CancelReservation(req.LineIDs, in)
	})
}

// CancelEmission cancels the emission of the selected lines
func (s *TicketService) CancelEmission(ctx context.Context, id uuid.UUID, req CancelEmissionRequest) (*TicketResponse, error) {
	return s.mutate(ctx, id, func(h *ticketing.TicketHeader) error {
		return h.CancelEmission(req.LineIDs, req.Reason)
	})
}

// AttachmentURL returns a presigned link to the e-ticket attached to a line
func (s *TicketService) AttachmentURL(ctx context.Context, id, lineID uuid.UUID) (*DocumentResponse, error) {
	header, err := s.ticketRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	line, err := header.GetLine(lineID)
	if err != nil {
		return nil, err
	}
	if line.AttachmentRef == "" {
		return nil, shared.ErrNotFound.WithMessage("Line %s has no attachment", lineID)
	}

	exists, err := s.storage.ObjectExists(ctx, line.AttachmentRef)
	if err != nil {
		return nil, shared.NewRemoteError("check attachment", err)
	}
	if !exists {
		return nil, shared.ErrNotFound.WithMessage("Attachment %s is missing from storage", line.AttachmentRef)
	}

	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, line.AttachmentRef, DownloadURLExpiry)
	if err != nil {
		return nil, shared.NewRemoteError("generate attachment download URL", err)
	}
	return &DocumentResponse{Ref: line.AttachmentRef, URL: url, ExpiresAt: expiresAt}, nil
}

// Export renders the ticket and its lines as a spreadsheet
func (s *TicketService) Export(ctx context.Context, id uuid.UUID) (*ExportResponse, error) {
	header, err := s.ticketRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := s.exporter.ExportTicket(header)
	if err != nil {
		return nil, renderError("ticket export", err)
	}

	name := header.QuoteReference
	if header.TicketNumber != "" {
		name = header.TicketNumber
	}
	return &ExportResponse{
		Filename:    fmt.Sprintf("billet-%s.xlsx", name),
		ContentType: ContentTypeXLSX,
		Data:        data,
	}, nil
}

// mutate loads the ticket, applies op and saves header and lines under the
// version lock. A stale write is replayed once against a fresh read.
func (s *TicketService) mutate(ctx context.Context, id uuid.UUID, op func(*ticketing.TicketHeader) error) (*TicketResponse, error) {
	for attempt := 0; ; attempt++ {
		header, err := s.ticketRepo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		from := header.Status
		if err := op(header); err != nil {
			s.logger.Debug("Ticket command rejected",
				zap.String("ticket_id", id.String()),
				zap.String("status", string(from)),
				zap.String("code", errorCode(err)),
			)
			return nil, err
		}

		err = s.ticketRepo.SaveWithLock(ctx, header)
		if err == nil {
			s.logger.Info("Ticket transition applied",
				zap.String("ticket_id", id.String()),
				zap.String("from", string(from)),
				zap.String("to", string(header.Status)),
			)
			publishEvents(ctx, s.eventPublisher, s.logger, header)
			response := ToTicketResponse(header)
			return &response, nil
		}
		if !shared.IsStale(err) || attempt >= maxStaleRetries {
			return nil, err
		}
		s.logger.Debug("Ticket modified concurrently, retrying", zap.String("ticket_id", id.String()))
	}
}
