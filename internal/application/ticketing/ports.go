package ticketing

import (
	"context"
	"time"

	"github.com/agence/backoffice/internal/domain/ticketing"
)

// ObjectStorage stores generated documents and hands out download links
type ObjectStorage interface {
	// Upload stores data under key
	Upload(ctx context.Context, key string, data []byte, contentType string) error

	// GenerateDownloadURL creates a presigned URL for downloading the object
	GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)

	// ObjectExists reports whether an object exists under key
	ObjectExists(ctx context.Context, key string) (bool, error)
}

// DocumentRenderer renders quote documents as PDF
type DocumentRenderer interface {
	// RenderQuote renders the client-facing quote
	RenderQuote(quote *ticketing.Quote) ([]byte, error)

	// RenderCommissionReport renders the commission report sent to management
	RenderCommissionReport(quote *ticketing.Quote) ([]byte, error)
}

// TicketExporter renders a ticket with its lines as a spreadsheet
type TicketExporter interface {
	ExportTicket(header *ticketing.TicketHeader) ([]byte, error)
}

// Content types of generated documents
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// DownloadURLExpiry is the lifetime of presigned document links
const DownloadURLExpiry = 15 * time.Minute
