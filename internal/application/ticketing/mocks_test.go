package ticketing

import (
	"context"
	"time"

	"github.com/agence/backoffice/internal/domain/shared"
	"github.com/agence/backoffice/internal/domain/ticketing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockQuoteRepository is a mock implementation of QuoteRepository
type MockQuoteRepository struct {
	mock.Mock
}

func (m *MockQuoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*ticketing.Quote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ticketing.Quote), args.Error(1)
}

func (m *MockQuoteRepository) FindByReference(ctx context.Context, reference string) (*ticketing.Quote, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ticketing.Quote), args.Error(1)
}

func (m *MockQuoteRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ticketing.Quote, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ticketing.Quote), args.Error(1)
}

func (m *MockQuoteRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQuoteRepository) Save(ctx context.Context, quote *ticketing.Quote) error {
	args := m.Called(ctx, quote)
	return args.Error(0)
}

func (m *MockQuoteRepository) SaveWithLock(ctx context.Context, quote *ticketing.Quote) error {
	args := m.Called(ctx, quote)
	return args.Error(0)
}

func (m *MockQuoteRepository) GenerateReference(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockTicketRepository is a mock implementation of TicketRepository
type MockTicketRepository struct {
	mock.Mock
}

func (m *MockTicketRepository) FindByID(ctx context.Context, id uuid.UUID) (*ticketing.TicketHeader, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ticketing.TicketHeader), args.Error(1)
}

func (m *MockTicketRepository) FindByQuoteID(ctx context.Context, quoteID uuid.UUID) (*ticketing.TicketHeader, error) {
	args := m.Called(ctx, quoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ticketing.TicketHeader), args.Error(1)
}

func (m *MockTicketRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ticketing.TicketHeader, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ticketing.TicketHeader), args.Error(1)
}

func (m *MockTicketRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTicketRepository) SaveWithLock(ctx context.Context, header *ticketing.TicketHeader) error {
	args := m.Called(ctx, header)
	return args.Error(0)
}

func (m *MockTicketRepository) CreateFromQuote(ctx context.Context, header *ticketing.TicketHeader, quote *ticketing.Quote) error {
	args := m.Called(ctx, header, quote)
	return args.Error(0)
}

func (m *MockTicketRepository) GenerateTicketNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockObjectStorage is a mock implementation of ObjectStorage
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	args := m.Called(ctx, key, data, contentType)
	return args.Error(0)
}

func (m *MockObjectStorage) GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, key, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) ObjectExists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// MockRenderer is a mock implementation of DocumentRenderer and TicketExporter
type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) RenderQuote(quote *ticketing.Quote) ([]byte, error) {
	args := m.Called(quote)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockRenderer) RenderCommissionReport(quote *ticketing.Quote) ([]byte, error) {
	args := m.Called(quote)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockRenderer) ExportTicket(header *ticketing.TicketHeader) ([]byte, error) {
	args := m.Called(header)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// Helper functions

func priceInput() PriceInput {
	return PriceInput{
		Currency:     "EUR",
		ExchangeRate: decimal.NewFromInt(4500),
		Billet: CategoryPriceInput{
			Compagnie: decimal.NewFromInt(100),
			Client:    decimal.NewFromInt(110),
		},
	}
}

func flightInput() FlightInput {
	dep := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	return FlightInput{
		NumeroVol:       "MD050",
		Itineraire:      "TNR-CDG",
		Classe:          "Y",
		TypePassager:    "ADT",
		DateHeureDepart: dep,
		DateHeureArrive: dep.Add(11 * time.Hour),
	}
}

func createQuoteRequest(lines int) CreateQuoteRequest {
	req := CreateQuoteRequest{
		Reference:           "DEV-2026-00001",
		ProspectionHeaderID: uuid.New(),
		ClientName:          "Rakoto",
	}
	for i := 0; i < lines; i++ {
		req.Lines = append(req.Lines, CreateQuoteLineInput{
			ProspectionLineID: uuid.New(),
			Flight:            flightInput(),
			PassengerCount:    2,
			Prices:            priceInput(),
		})
	}
	return req
}

func newQuote(lines int) *ticketing.Quote {
	req := createQuoteRequest(lines)
	inputs := make([]ticketing.QuoteLineInput, len(req.Lines))
	for i, l := range req.Lines {
		inputs[i] = ticketing.QuoteLineInput{
			ProspectionLineID: l.ProspectionLineID,
			Flight:            l.Flight.toDomain(),
			PassengerCount:    l.PassengerCount,
			Prices:            l.Prices.toDomain(),
		}
	}
	q, err := ticketing.NewQuote(req.Reference, req.ProspectionHeaderID, req.ClientName, inputs)
	if err != nil {
		panic(err)
	}
	q.ClearDomainEvents()
	return q
}

func newApprovedQuote(lines int) *ticketing.Quote {
	q := newQuote(lines)
	if err := q.SendToClient(); err != nil {
		panic(err)
	}
	if err := q.ClientApproves(); err != nil {
		panic(err)
	}
	q.ClearDomainEvents()
	return q
}

func newTicket(lines int) *ticketing.TicketHeader {
	q := newApprovedQuote(lines)
	h, err := q.CreateTicketHeader()
	if err != nil {
		panic(err)
	}
	return h
}

func reserveRequest() ReserveLineRequest {
	return ReserveLineRequest{
		ReservationNumber: "PNR123",
		PassengerIDs:      []uuid.UUID{uuid.New(), uuid.New()},
		Prices:            priceInput(),
	}
}

func reservedTicket(lines int) *ticketing.TicketHeader {
	h := newTicket(lines)
	for _, l := range h.Lines {
		if err := h.ReserveLine(l.ID, reserveRequest().toDomain()); err != nil {
			panic(err)
		}
	}
	h.ClearDomainEvents()
	return h
}
