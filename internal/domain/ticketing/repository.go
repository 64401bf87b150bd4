package ticketing

import (
	"context"

	"github.com/agence/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// QuoteRepository defines the interface for quote persistence
type QuoteRepository interface {
	// FindByID finds a quote with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*Quote, error)

	// FindByReference finds a quote by its business reference
	FindByReference(ctx context.Context, reference string) (*Quote, error)

	// FindAll finds quotes matching the filter (supports "status" in Filters)
	FindAll(ctx context.Context, filter shared.Filter) ([]Quote, error)

	// Count counts quotes matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save inserts a new quote with its lines
	Save(ctx context.Context, quote *Quote) error

	// SaveWithLock updates the quote if its version is unchanged since it was read.
	// Returns a stale aggregate error otherwise.
	SaveWithLock(ctx context.Context, quote *Quote) error

	// GenerateReference generates the next quote reference (DEV-YYYY-NNNNN)
	GenerateReference(ctx context.Context) (string, error)
}

// TicketRepository defines the interface for ticket persistence.
// A ticket header is always read and written together with all its lines.
type TicketRepository interface {
	// FindByID finds a ticket header with its lines and their revisions
	FindByID(ctx context.Context, id uuid.UUID) (*TicketHeader, error)

	// FindByQuoteID finds the ticket created from a quote
	FindByQuoteID(ctx context.Context, quoteID uuid.UUID) (*TicketHeader, error)

	// FindAll finds ticket headers matching the filter (supports "status" in Filters)
	FindAll(ctx context.Context, filter shared.Filter) ([]TicketHeader, error)

	// Count counts ticket headers matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// SaveWithLock writes the header and every line in one transaction if the
	// header version is unchanged since it was read
	SaveWithLock(ctx context.Context, header *TicketHeader) error

	// CreateFromQuote inserts the new ticket and updates its quote (version
	// checked) in one transaction
	CreateFromQuote(ctx context.Context, header *TicketHeader, quote *Quote) error

	// GenerateTicketNumber generates the next header ticket number (BIL-YYYY-NNNNN)
	GenerateTicketNumber(ctx context.Context) (string, error)
}

var (
	_ shared.AggregateRoot = (*Quote)(nil)
	_ shared.AggregateRoot = (*TicketHeader)(nil)
)
