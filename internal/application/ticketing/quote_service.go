package ticketing

import (
	"context"
	"errors"
	"fmt"

	"github.com/agence/backoffice/internal/domain/shared"
	"github.com/agence/backoffice/internal/domain/ticketing"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// QuoteService handles quote business operations
type QuoteService struct {
	quoteRepo      ticketing.QuoteRepository
	ticketRepo     ticketing.TicketRepository
	renderer       DocumentRenderer
	storage        ObjectStorage
	logger         *zap.Logger
	eventPublisher shared.EventPublisher
}

// NewQuoteService creates a new QuoteService
func NewQuoteService(
	quoteRepo ticketing.QuoteRepository,
	ticketRepo ticketing.TicketRepository,
	renderer DocumentRenderer,
	storage ObjectStorage,
	logger *zap.Logger,
) *QuoteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuoteService{
		quoteRepo:  quoteRepo,
		ticketRepo: ticketRepo,
		renderer:   renderer,
		storage:    storage,
		logger:     logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *QuoteService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create prices the selected prospecting lines and stores a new quote
func (s *QuoteService) Create(ctx context.Context, req CreateQuoteRequest) (*QuoteResponse, error) {
	reference := req.Reference
	if reference == "" {
		ref, err := s.quoteRepo.GenerateReference(ctx)
		if err != nil {
			return nil, err
		}
		reference = ref
	}

	inputs := make([]ticketing.QuoteLineInput, len(req.Lines))
	for i, l := range req.Lines {
		inputs[i] = ticketing.QuoteLineInput{
			ProspectionLineID: l.ProspectionLineID,
			Flight:            l.Flight.toDomain(),
			PassengerCount:    l.PassengerCount,
			Prices:            l.Prices.toDomain(),
		}
	}

	quote, err := ticketing.NewQuote(reference, req.ProspectionHeaderID, req.ClientName, inputs)
	if err != nil {
		return nil, err
	}
	if req.Reference != "" {
		if err := s.ensureReferenceFree(ctx, quote.Reference); err != nil {
			return nil, err
		}
	}
	if err := s.quoteRepo.Save(ctx, quote); err != nil {
		return nil, err
	}

	s.logger.Info("Quote created",
		zap.String("quote_id", quote.ID.String()),
		zap.String("reference", quote.Reference),
		zap.Int("lines", len(quote.Lines)),
	)
	publishEvents(ctx, s.eventPublisher, s.logger, quote)

	response := ToQuoteResponse(quote)
	return &response, nil
}

// ensureReferenceFree rejects a caller-chosen reference already held by another quote
func (s *QuoteService) ensureReferenceFree(ctx context.Context, reference string) error {
	existing, err := s.quoteRepo.FindByReference(ctx, reference)
	if err == nil && existing != nil {
		return ticketing.ErrReferenceTaken.WithMessage("Quote reference %s is already used", reference)
	}
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}
	return nil
}

// GetByID retrieves a quote by ID
func (s *QuoteService) GetByID(ctx context.Context, id uuid.UUID) (*QuoteResponse, error) {
	quote, err := s.quoteRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToQuoteResponse(quote)
	return &response, nil
}

// List retrieves a page of quotes
func (s *QuoteService) List(ctx context.Context, params QuoteListFilter) (*shared.Paginated[QuoteResponse], error) {
	filter := toFilter(params.Page, params.PageSize, params.Search, params.Status)

	quotes, err := s.quoteRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.quoteRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]QuoteResponse, len(quotes))
	for i := range quotes {
		items[i] = ToQuoteResponse(&quotes[i])
	}
	result := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &result, nil
}

// SendToClient marks the quote as awaiting client approval
func (s *QuoteService) SendToClient(ctx context.Context, id uuid.UUID) (*QuoteResponse, error) {
	return s.mutate(ctx, id, func(q *ticketing.Quote) error {
		return q.SendToClient()
	})
}

// ClientApprove records the client's approval
func (s *QuoteService) ClientApprove(ctx context.Context, id uuid.UUID) (*QuoteResponse, error) {
	return s.mutate(ctx, id, func(q *ticketing.Quote) error {
		return q.ClientApproves()
	})
}

// Cancel cancels a quote that the client has not approved yet
func (s *QuoteService) Cancel(ctx context.Context, id uuid.UUID, req CancelQuoteRequest) (*QuoteResponse, error) {
	return s.mutate(ctx, id, func(q *ticketing.Quote) error {
		return q.Cancel(req.Reason)
	})
}

// SendToDirection renders the commission report, stores it and records the
// hand-off on the quote. Nothing is recorded when rendering or upload fails.
func (s *QuoteService) SendToDirection(ctx context.Context, id uuid.UUID) (*QuoteResponse, error) {
	quote, err := s.quoteRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := quote.CanSendToDirection(); err != nil {
		return nil, err
	}

	data, err := s.renderer.RenderCommissionReport(quote)
	if err != nil {
		return nil, renderError("commission report", err)
	}
	key := commissionReportKey(quote)
	if err := s.storage.Upload(ctx, key, data, ContentTypePDF); err != nil {
		s.logger.Error("Failed to upload commission report",
			zap.String("quote_id", quote.ID.String()),
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, shared.NewRemoteError("upload commission report", err)
	}

	return s.mutate(ctx, id, func(q *ticketing.Quote) error {
		return q.SendToDirection(key)
	})
}

// GeneratePDF renders the client quote, stores it and returns a download link
func (s *QuoteService) GeneratePDF(ctx context.Context, id uuid.UUID) (*DocumentResponse, error) {
	quote, err := s.quoteRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := s.renderer.RenderQuote(quote)
	if err != nil {
		return nil, renderError("quote", err)
	}
	key := quoteDocumentKey(quote)
	if err := s.storage.Upload(ctx, key, data, ContentTypePDF); err != nil {
		return nil, shared.NewRemoteError("upload quote document", err)
	}

	if _, err := s.mutate(ctx, id, func(q *ticketing.Quote) error {
		q.AttachPDF(key)
		return nil
	}); err != nil {
		return nil, err
	}

	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, key, DownloadURLExpiry)
	if err != nil {
		return nil, shared.NewRemoteError("generate quote download URL", err)
	}
	return &DocumentResponse{Ref: key, URL: url, ExpiresAt: expiresAt}, nil
}

// CreateTicket spawns the ticket of an approved quote. The ticket insert and
// the quote update commit together so a quote never yields two tickets.
func (s *QuoteService) CreateTicket(ctx context.Context, id uuid.UUID) (*TicketResponse, error) {
	for attempt := 0; ; attempt++ {
		quote, err := s.quoteRepo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		header, err := quote.CreateTicketHeader()
		if err != nil {
			return nil, err
		}

		err = s.ticketRepo.CreateFromQuote(ctx, header, quote)
		if err == nil {
			s.logger.Info("Ticket created from quote",
				zap.String("quote_id", quote.ID.String()),
				zap.String("ticket_id", header.ID.String()),
			)
			publishEvents(ctx, s.eventPublisher, s.logger, quote)
			response := ToTicketResponse(header)
			return &response, nil
		}
		if !shared.IsStale(err) || attempt >= maxStaleRetries {
			return nil, err
		}
		s.logger.Debug("Quote modified concurrently, retrying ticket creation", zap.String("quote_id", id.String()))
	}
}

// GetTicket returns the ticket created from a quote
func (s *QuoteService) GetTicket(ctx context.Context, id uuid.UUID) (*TicketResponse, error) {
	header, err := s.ticketRepo.FindByQuoteID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToTicketResponse(header)
	return &response, nil
}

// mutate loads the quote, applies op and saves it under the version lock.
// A stale write is replayed once against a fresh read.
func (s *QuoteService) mutate(ctx context.Context, id uuid.UUID, op func(*ticketing.Quote) error) (*QuoteResponse, error) {
	for attempt := 0; ; attempt++ {
		quote, err := s.quoteRepo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		from := quote.Status
		if err := op(quote); err != nil {
			s.logger.Debug("Quote command rejected",
				zap.String("quote_id", id.String()),
				zap.String("status", string(from)),
				zap.String("code", errorCode(err)),
			)
			return nil, err
		}

		err = s.quoteRepo.SaveWithLock(ctx, quote)
		if err == nil {
			s.logger.Info("Quote transition applied",
				zap.String("quote_id", id.String()),
				zap.String("from", string(from)),
				zap.String("to", string(quote.Status)),
			)
			publishEvents(ctx, s.eventPublisher, s.logger, quote)
			response := ToQuoteResponse(quote)
			return &response, nil
		}
		if !shared.IsStale(err) || attempt >= maxStaleRetries {
			return nil, err
		}
		s.logger.Debug("Quote modified concurrently, retrying", zap.String("quote_id", id.String()))
	}
}

func quoteDocumentKey(q *ticketing.Quote) string {
	return fmt.Sprintf("quotes/%s/devis-%s.pdf", q.ID, q.Reference)
}

func commissionReportKey(q *ticketing.Quote) string {
	return fmt.Sprintf("quotes/%s/commission-%s.pdf", q.ID, q.Reference)
}

func renderError(document string, err error) error {
	return &shared.DomainError{
		Kind:    shared.KindInternal,
		Code:    "RENDER_FAILED",
		Message: "Failed to render " + document,
		Cause:   err,
	}
}
