package handler

import (
	"context"

	apptic "github.com/agence/backoffice/internal/application/ticketing"
	"github.com/agence/backoffice/internal/domain/shared"
	"github.com/agence/backoffice/internal/domain/ticketing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockQuoteUseCases implements QuoteUseCases for testing
type MockQuoteUseCases struct {
	mock.Mock
}

func (m *MockQuoteUseCases) quote(args mock.Arguments) (*apptic.QuoteResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptic.QuoteResponse), args.Error(1)
}

func (m *MockQuoteUseCases) Create(ctx context.Context, req apptic.CreateQuoteRequest) (*apptic.QuoteResponse, error) {
	return m.quote(m.Called(ctx, req))
}

func (m *MockQuoteUseCases) GetByID(ctx context.Context, id uuid.UUID) (*apptic.QuoteResponse, error) {
	return m.quote(m.Called(ctx, id))
}

func (m *MockQuoteUseCases) List(ctx context.Context, filter apptic.QuoteListFilter) (*shared.Paginated[apptic.QuoteResponse], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[apptic.QuoteResponse]), args.Error(1)
}

func (m *MockQuoteUseCases) SendToClient(ctx context.Context, id uuid.UUID) (*apptic.QuoteResponse, error) {
	return m.quote(m.Called(ctx, id))
}

func (m *MockQuoteUseCases) ClientApprove(ctx context.Context, id uuid.UUID) (*apptic.QuoteResponse, error) {
	return m.quote(m.Called(ctx, id))
}

func (m *MockQuoteUseCases) SendToDirection(ctx context.Context, id uuid.UUID) (*apptic.QuoteResponse, error) {
	return m.quote(m.Called(ctx, id))
}

func (m *MockQuoteUseCases) Cancel(ctx context.Context, id uuid.UUID, req apptic.CancelQuoteRequest) (*apptic.QuoteResponse, error) {
	return m.quote(m.Called(ctx, id, req))
}

func (m *MockQuoteUseCases) GeneratePDF(ctx context.Context, id uuid.UUID) (*apptic.DocumentResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptic.DocumentResponse), args.Error(1)
}

func (m *MockQuoteUseCases) CreateTicket(ctx context.Context, id uuid.UUID) (*apptic.TicketResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptic.TicketResponse), args.Error(1)
}

func (m *MockQuoteUseCases) GetTicket(ctx context.Context, id uuid.UUID) (*apptic.TicketResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptic.TicketResponse), args.Error(1)
}

// MockTicketUseCases implements TicketUseCases for testing
type MockTicketUseCases struct {
	mock.Mock
}

func (m *MockTicketUseCases) ticket(args mock.Arguments) (*apptic.TicketResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptic.TicketResponse), args.Error(1)
}

func (m *MockTicketUseCases) GetByID(ctx context.Context, id uuid.UUID) (*apptic.TicketResponse, error) {
	return m.ticket(m.Called(ctx, id))
}

func (m *MockTicketUseCases) List(ctx context.Context, filter apptic.TicketListFilter) (*shared.Paginated[apptic.TicketResponse], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[apptic.TicketResponse]), args.Error(1)
}

func (m *MockTicketUseCases) Progress(ctx context.Context, id uuid.UUID) (*ticketing.Progress, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ticketing.Progress), args.Error(1)
}

func (m *MockTicketUseCases) ReserveLine(ctx context.Context, id, lineID uuid.UUID, req apptic.ReserveLineRequest) (*apptic.TicketResponse, error) {
	return m.ticket(m.Called(ctx, id, lineID, req))
}

func (m *MockTicketUseCases) EmitLine(ctx context.Context, id, lineID uuid.UUID, req apptic.EmitLineRequest) (*apptic.TicketResponse, error) {
	return m.ticket(m.Called(ctx, id, lineID, req))
}

func (m *MockTicketUseCases) RescheduleLine(ctx context.Context, id, lineID uuid.UUID, req apptic.RescheduleLineRequest) (*apptic.TicketResponse, error) {
	return m.ticket(m.Called(ctx, id, lineID, req))
}

func (m *MockTicketUseCases) Revisions(ctx context.Context, id, lineID uuid.UUID) ([]ticketing.LineRevision, error) {
	args := m.Called(ctx, id, lineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ticketing.LineRevision), args.Error(1)
}

func (m *MockTicketUseCases) ApproveReservation(ctx context.Context, id uuid.UUID) (*apptic.TicketResponse, error) {
	return m.ticket(m.Called(ctx, id))
}

func (m *MockTicketUseCases) Emit(ctx context.Context, id uuid.UUID) (*apptic.TicketResponse, error) {
	return m.ticket(m.Called(ctx, id))
}

func (m *MockTicketUseCases) Invoice(ctx context.Context, id uuid.UUID, req apptic.IssueInvoiceRequest) (*apptic.TicketResponse, error) {
	return m.ticket(m.Called(ctx, id, req))
}

func (m *MockTicketUseCases) Settle(ctx context.Context, id uuid.UUID) (*apptic.TicketResponse, error) {
	return m.ticket(m.Called(ctx, id))
}

func (m *MockTicketUseCases) CancelReservation(ctx context.Context, id uuid.UUID, req apptic.CancelReservationRequest) (*apptic.TicketResponse, error) {
	return m.ticket(m.Called(ctx, id, req))
}

func (m *MockTicketUseCases) CancelEmission(ctx context.Context, id uuid.UUID, req apptic.CancelEmissionRequest) (*apptic.TicketResponse, error) {
	return m.ticket(m.Called(ctx, id, req))
}

func (m *MockTicketUseCases) AttachmentURL(ctx context.Context, id, lineID uuid.UUID) (*apptic.DocumentResponse, error) {
	args := m.Called(ctx, id, lineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptic.DocumentResponse), args.Error(1)
}

func (m *MockTicketUseCases) Export(ctx context.Context, id uuid.UUID) (*apptic.ExportResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptic.ExportResponse), args.Error(1)
}
