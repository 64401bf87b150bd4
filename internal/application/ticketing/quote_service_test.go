package ticketing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agence/backoffice/internal/domain/shared"
	"github.com/agence/backoffice/internal/domain/ticketing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type quoteFixture struct {
	quotes    *MockQuoteRepository
	tickets   *MockTicketRepository
	renderer  *MockRenderer
	storage   *MockObjectStorage
	publisher *MockEventPublisher
	service   *QuoteService
}

func newQuoteFixture() *quoteFixture {
	f := &quoteFixture{
		quotes:    new(MockQuoteRepository),
		tickets:   new(MockTicketRepository),
		renderer:  new(MockRenderer),
		storage:   new(MockObjectStorage),
		publisher: new(MockEventPublisher),
	}
	f.service = NewQuoteService(f.quotes, f.tickets, f.renderer, f.storage, nil)
	f.service.SetEventPublisher(f.publisher)
	return f
}

func TestQuoteService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates quote with Ariary totals", func(t *testing.T) {
		f := newQuoteFixture()
		f.quotes.On("FindByReference", ctx, "DEV-2026-00001").Return(nil, shared.ErrNotFound)
		f.quotes.On("Save", ctx, mock.Anything).Return(nil)
		f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		resp, err := f.service.Create(ctx, createQuoteRequest(2))

		require.NoError(t, err)
		assert.Equal(t, "DEV-2026-00001", resp.Reference)
		assert.Equal(t, "CREER", resp.Status)
		assert.Len(t, resp.Lines, 2)
		// 2 lines * 2 pax * 110 EUR * 4500
		assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(1980000)), resp.TotalAmount.String())
		f.quotes.AssertExpectations(t)
		f.publisher.AssertExpectations(t)
		f.quotes.AssertNotCalled(t, "GenerateReference", mock.Anything)
	})

	t.Run("rejects a reference already in use", func(t *testing.T) {
		f := newQuoteFixture()
		f.quotes.On("FindByReference", ctx, "DEV-2026-00001").Return(newQuote(1), nil)

		_, err := f.service.Create(ctx, createQuoteRequest(1))

		require.Error(t, err)
		assert.ErrorIs(t, err, ticketing.ErrReferenceTaken)
		assert.Equal(t, shared.KindConflict, shared.KindOf(err))
		f.quotes.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("generates reference when missing", func(t *testing.T) {
		f := newQuoteFixture()
		f.quotes.On("GenerateReference", ctx).Return("DEV-2026-00042", nil)
		f.quotes.On("Save", ctx, mock.Anything).Return(nil)
		f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		req := createQuoteRequest(1)
		req.Reference = ""
		resp, err := f.service.Create(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, "DEV-2026-00042", resp.Reference)
	})

	t.Run("rejects invalid exchange rate without saving", func(t *testing.T) {
		f := newQuoteFixture()
		req := createQuoteRequest(1)
		req.Lines[0].Prices.ExchangeRate = decimal.Zero

		_, err := f.service.Create(ctx, req)

		require.Error(t, err)
		assert.Equal(t, shared.KindValidation, shared.KindOf(err))
		f.quotes.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("save error is returned", func(t *testing.T) {
		f := newQuoteFixture()
		f.quotes.On("FindByReference", ctx, "DEV-2026-00001").Return(nil, shared.ErrNotFound)
		f.quotes.On("Save", ctx, mock.Anything).Return(errors.New("db down"))

		_, err := f.service.Create(ctx, createQuoteRequest(1))

		assert.EqualError(t, err, "db down")
		f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})
}

func TestQuoteService_List(t *testing.T) {
	ctx := context.Background()
	f := newQuoteFixture()
	q1, q2 := newQuote(1), newQuote(2)

	f.quotes.On("FindAll", ctx, mock.MatchedBy(func(filter shared.Filter) bool {
		return filter.Page == 2 && filter.PageSize == 1 && filter.Filters["status"] == "CREER"
	})).Return([]ticketing.Quote{*q1, *q2}, nil)
	f.quotes.On("Count", ctx, mock.Anything).Return(int64(5), nil)

	result, err := f.service.List(ctx, QuoteListFilter{Status: "CREER", Page: 2, PageSize: 1})

	require.NoError(t, err)
	assert.Len(t, result.Items, 2)
	assert.Equal(t, int64(5), result.Total)
	assert.Equal(t, 5, result.TotalPages)
}

func TestQuoteService_Transitions(t *testing.T) {
	ctx := context.Background()

	t.Run("send to client publishes event", func(t *testing.T) {
		f := newQuoteFixture()
		q := newQuote(1)
		f.quotes.On("FindByID", ctx, q.ID).Return(q, nil)
		f.quotes.On("SaveWithLock", ctx, q).Return(nil)
		f.publisher.On("Publish", ctx, mock.MatchedBy(func(events []shared.DomainEvent) bool {
			return len(events) == 1 && events[0].EventType() == ticketing.EventTypeQuoteSentToClient
		})).Return(nil)

		resp, err := f.service.SendToClient(ctx, q.ID)

		require.NoError(t, err)
		assert.Equal(t, "DEVIS_A_APPROUVER", resp.Status)
		assert.Empty(t, q.GetDomainEvents())
		f.publisher.AssertExpectations(t)
	})

	t.Run("approve before sending is rejected", func(t *testing.T) {
		f := newQuoteFixture()
		q := newQuote(1)
		f.quotes.On("FindByID", ctx, q.ID).Return(q, nil)

		_, err := f.service.ClientApprove(ctx, q.ID)

		assert.ErrorIs(t, err, ticketing.ErrQuoteNotSent)
		f.quotes.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("cancel requires a reason", func(t *testing.T) {
		f := newQuoteFixture()
		q := newQuote(1)
		f.quotes.On("FindByID", ctx, q.ID).Return(q, nil)

		_, err := f.service.Cancel(ctx, q.ID, CancelQuoteRequest{Reason: "  "})

		assert.ErrorIs(t, err, ticketing.ErrReasonRequired)
	})

	t.Run("not found", func(t *testing.T) {
		f := newQuoteFixture()
		id := uuid.New()
		f.quotes.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		_, err := f.service.SendToClient(ctx, id)

		assert.Equal(t, shared.KindNotFound, shared.KindOf(err))
	})
}

func TestQuoteService_StaleRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("retries once on a fresh read", func(t *testing.T) {
		f := newQuoteFixture()
		first, second := newQuote(1), newQuote(1)
		second.ID = first.ID
		f.quotes.On("FindByID", ctx, first.ID).Return(first, nil).Once()
		f.quotes.On("FindByID", ctx, first.ID).Return(second, nil).Once()
		f.quotes.On("SaveWithLock", ctx, first).Return(shared.NewStaleAggregateError("stale")).Once()
		f.quotes.On("SaveWithLock", ctx, second).Return(nil).Once()
		f.publisher.On("Publish", ctx, mock.Anything).Return(nil).Once()

		resp, err := f.service.SendToClient(ctx, first.ID)

		require.NoError(t, err)
		assert.Equal(t, "DEVIS_A_APPROUVER", resp.Status)
		f.quotes.AssertNumberOfCalls(t, "SaveWithLock", 2)
		f.publisher.AssertExpectations(t)
	})

	t.Run("surfaces the second stale failure", func(t *testing.T) {
		f := newQuoteFixture()
		q, fresh := newQuote(1), newQuote(1)
		fresh.ID = q.ID
		f.quotes.On("FindByID", ctx, q.ID).Return(q, nil).Once()
		f.quotes.On("FindByID", ctx, q.ID).Return(fresh, nil).Once()
		f.quotes.On("SaveWithLock", ctx, mock.Anything).Return(shared.NewStaleAggregateError("stale"))

		_, err := f.service.SendToClient(ctx, q.ID)

		assert.True(t, shared.IsStale(err))
		f.quotes.AssertNumberOfCalls(t, "SaveWithLock", 2)
		f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})
}

func TestQuoteService_SendToDirection(t *testing.T) {
	ctx := context.Background()
	report := []byte("%PDF-report")

	t.Run("renders, uploads and records the report", func(t *testing.T) {
		f := newQuoteFixture()
		q := newApprovedQuote(1)
		f.quotes.On("FindByID", ctx, q.ID).Return(q, nil)
		f.renderer.On("RenderCommissionReport", q).Return(report, nil)
		f.storage.On("Upload", ctx, commissionReportKey(q), report, ContentTypePDF).Return(nil)
		f.quotes.On("SaveWithLock", ctx, q).Return(nil)
		f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		resp, err := f.service.SendToDirection(ctx, q.ID)

		require.NoError(t, err)
		assert.Equal(t, commissionReportKey(q), resp.CommissionReportRef)
		assert.NotNil(t, resp.DirectionSentAt)
		assert.Equal(t, "DEVIS_APPROUVE", resp.Status)
	})

	t.Run("upload failure is a remote error and nothing is saved", func(t *testing.T) {
		f := newQuoteFixture()
		q := newApprovedQuote(1)
		f.quotes.On("FindByID", ctx, q.ID).Return(q, nil)
		f.renderer.On("RenderCommissionReport", q).Return(report, nil)
		f.storage.On("Upload", ctx, mock.Anything, report, ContentTypePDF).Return(errors.New("timeout"))

		_, err := f.service.SendToDirection(ctx, q.ID)

		require.Error(t, err)
		assert.Equal(t, shared.KindRemote, shared.KindOf(err))
		assert.ErrorIs(t, err, shared.ErrRemote)
		assert.Empty(t, q.CommissionReportRef)
		f.quotes.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("quote not approved", func(t *testing.T) {
		f := newQuoteFixture()
		q := newQuote(1)
		f.quotes.On("FindByID", ctx, q.ID).Return(q, nil)

		_, err := f.service.SendToDirection(ctx, q.ID)

		assert.ErrorIs(t, err, ticketing.ErrQuoteNotApproved)
		f.renderer.AssertNotCalled(t, "RenderCommissionReport", mock.Anything)
	})
}

func TestQuoteService_GeneratePDF(t *testing.T) {
	ctx := context.Background()
	f := newQuoteFixture()
	q := newQuote(1)
	pdf := []byte("%PDF-quote")
	expires := time.Now().Add(DownloadURLExpiry)

	f.quotes.On("FindByID", ctx, q.ID).Return(q, nil)
	f.renderer.On("RenderQuote", q).Return(pdf, nil)
	f.storage.On("Upload", ctx, quoteDocumentKey(q), pdf, ContentTypePDF).Return(nil)
	f.quotes.On("SaveWithLock", ctx, q).Return(nil)
	f.storage.On("GenerateDownloadURL", ctx, quoteDocumentKey(q), DownloadURLExpiry).
		Return("https://files.example/devis.pdf", expires, nil)

	doc, err := f.service.GeneratePDF(ctx, q.ID)

	require.NoError(t, err)
	assert.Equal(t, quoteDocumentKey(q), doc.Ref)
	assert.Equal(t, "https://files.example/devis.pdf", doc.URL)
	assert.Equal(t, quoteDocumentKey(q), q.PDFRef)
}

func TestQuoteService_CreateTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("creates one line per quote line", func(t *testing.T) {
		f := newQuoteFixture()
		q := newApprovedQuote(3)
		f.quotes.On("FindByID", ctx, q.ID).Return(q, nil)
		f.tickets.On("CreateFromQuote", ctx, mock.Anything, q).Return(nil)
		f.publisher.On("Publish", ctx, mock.MatchedBy(func(events []shared.DomainEvent) bool {
			return len(events) == 1 && events[0].EventType() == ticketing.EventTypeTicketCreated
		})).Return(nil)

		resp, err := f.service.CreateTicket(ctx, q.ID)

		require.NoError(t, err)
		assert.Equal(t, "CREER", resp.Status)
		assert.Len(t, resp.Lines, 3)
		require.NotNil(t, q.TicketHeaderID)
		assert.Equal(t, resp.ID, *q.TicketHeaderID)
		assert.Equal(t, 3, resp.Progress.RemainingToReserve)
	})

	t.Run("a quote yields at most one ticket", func(t *testing.T) {
		f := newQuoteFixture()
		q := newApprovedQuote(1)
		existing := uuid.New()
		q.TicketHeaderID = &existing
		f.quotes.On("FindByID", ctx, q.ID).Return(q, nil)

		_, err := f.service.CreateTicket(ctx, q.ID)

		assert.ErrorIs(t, err, ticketing.ErrTicketAlreadyCreated)
		assert.Equal(t, shared.KindConflict, shared.KindOf(err))
		f.tickets.AssertNotCalled(t, "CreateFromQuote", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("quote not approved", func(t *testing.T) {
		f := newQuoteFixture()
		q := newQuote(1)
		f.quotes.On("FindByID", ctx, q.ID).Return(q, nil)

		_, err := f.service.CreateTicket(ctx, q.ID)

		assert.ErrorIs(t, err, ticketing.ErrQuoteNotApproved)
	})
}

func TestQuoteService_GetTicket(t *testing.T) {
	ctx := context.Background()
	f := newQuoteFixture()
	q := newApprovedQuote(2)
	header, err := q.CreateTicketHeader()
	require.NoError(t, err)
	f.tickets.On("FindByQuoteID", ctx, q.ID).Return(header, nil)
	missing := uuid.New()
	f.tickets.On("FindByQuoteID", ctx, missing).Return(nil, shared.ErrNotFound)

	resp, err := f.service.GetTicket(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, header.ID, resp.ID)
	assert.Equal(t, q.ID, resp.QuoteID)
	assert.Len(t, resp.Lines, 2)

	_, err = f.service.GetTicket(ctx, missing)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
