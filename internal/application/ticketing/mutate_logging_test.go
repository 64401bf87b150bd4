package ticketing

import (
	"context"
	"testing"

	"github.com/agence/backoffice/internal/domain/shared"
	"github.com/agence/backoffice/internal/domain/ticketing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestTicketService_LogsTransitions(t *testing.T) {
	ctx := context.Background()

	t.Run("accepted command logs from and to at info", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		f := newTicketFixture()
		f.service.logger = zap.New(core)
		h := reservedTicket(1)
		h.ClearDomainEvents()
		f.expectSave(ctx, h)

		_, err := f.service.ApproveReservation(ctx, h.ID)
		require.NoError(t, err)

		entries := recorded.FilterMessage("Ticket transition applied").All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
		fields := entries[0].ContextMap()
		assert.Equal(t, h.ID.String(), fields["ticket_id"])
		assert.Equal(t, "CREER", fields["from"])
		assert.Equal(t, "BC_CLIENT_A_APPROUVER", fields["to"])
		assert.Zero(t, recorded.FilterMessage("Ticket command rejected").Len())
	})

	t.Run("rejected command logs the code at debug", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		f := newTicketFixture()
		f.service.logger = zap.New(core)
		h := approvedTicket(1)
		f.tickets.On("FindByID", ctx, h.ID).Return(h, nil)

		_, err := f.service.Settle(ctx, h.ID)
		require.ErrorIs(t, err, ticketing.ErrInvoiceNotIssued)

		entries := recorded.FilterMessage("Ticket command rejected").All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
		fields := entries[0].ContextMap()
		assert.Equal(t, h.ID.String(), fields["ticket_id"])
		assert.Equal(t, "BC_CLIENT_A_APPROUVER", fields["status"])
		assert.Equal(t, "INVOICE_NOT_ISSUED", fields["code"])
		assert.Zero(t, recorded.FilterMessage("Ticket transition applied").Len())
	})
}

func TestQuoteService_LogsTransitions(t *testing.T) {
	ctx := context.Background()

	t.Run("accepted command logs from and to at info", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		f := newQuoteFixture()
		f.service.logger = zap.New(core)
		q := newQuote(1)
		f.quotes.On("FindByID", ctx, q.ID).Return(q, nil)
		f.quotes.On("SaveWithLock", ctx, q).Return(nil)
		f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		_, err := f.service.SendToClient(ctx, q.ID)
		require.NoError(t, err)

		entries := recorded.FilterMessage("Quote transition applied").All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
		fields := entries[0].ContextMap()
		assert.Equal(t, q.ID.String(), fields["quote_id"])
		assert.Equal(t, "CREER", fields["from"])
		assert.Equal(t, "DEVIS_A_APPROUVER", fields["to"])
	})

	t.Run("rejected command logs the code at debug", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		f := newQuoteFixture()
		f.service.logger = zap.New(core)
		q := newQuote(1)
		f.quotes.On("FindByID", ctx, q.ID).Return(q, nil)

		_, err := f.service.ClientApprove(ctx, q.ID)
		require.ErrorIs(t, err, ticketing.ErrQuoteNotSent)

		entries := recorded.FilterMessage("Quote command rejected").All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
		fields := entries[0].ContextMap()
		assert.Equal(t, q.ID.String(), fields["quote_id"])
		assert.Equal(t, "CREER", fields["status"])
		assert.Equal(t, "QUOTE_NOT_SENT", fields["code"])
		assert.Zero(t, recorded.FilterMessage("Quote transition applied").Len())
	})

	t.Run("stale retry logs one transition", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		f := newQuoteFixture()
		f.service.logger = zap.New(core)
		first, second := newQuote(1), newQuote(1)
		second.ID = first.ID
		f.quotes.On("FindByID", ctx, first.ID).Return(first, nil).Once()
		f.quotes.On("FindByID", ctx, first.ID).Return(second, nil).Once()
		f.quotes.On("SaveWithLock", ctx, first).Return(shared.NewStaleAggregateError("stale")).Once()
		f.quotes.On("SaveWithLock", ctx, second).Return(nil).Once()
		f.publisher.On("Publish", ctx, mock.Anything).Return(nil).Once()

		_, err := f.service.SendToClient(ctx, first.ID)
		require.NoError(t, err)

		assert.Equal(t, 1, recorded.FilterMessage("Quote transition applied").Len())
	})
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "QUOTE_NOT_SENT", errorCode(ticketing.ErrQuoteNotSent.WithMessage("detail")))
	assert.Equal(t, "INTERNAL", errorCode(assert.AnError))
}
