package ticketing

import (
	"context"
	"errors"
	"strings"

	"github.com/agence/backoffice/internal/domain/shared"
	"go.uber.org/zap"
)

// maxStaleRetries is how many times a command is replayed on a fresh read
// after losing an optimistic lock race
const maxStaleRetries = 1

// eventSource is implemented by every aggregate root
type eventSource interface {
	GetDomainEvents() []shared.DomainEvent
	ClearDomainEvents()
}

// publishEvents hands the pending events of agg to the publisher and clears them.
// Publication failures are logged; the write they describe has already committed.
func publishEvents(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, agg eventSource) {
	events := agg.GetDomainEvents()
	if publisher != nil && len(events) > 0 {
		if err := publisher.Publish(ctx, events...); err != nil {
			logger.Warn("Failed to publish domain events",
				zap.Int("count", len(events)),
				zap.Error(err),
			)
		}
	}
	agg.ClearDomainEvents()
}

// errorCode returns the domain code carried by err, or INTERNAL
func errorCode(err error) string {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return "INTERNAL"
}

// toFilter maps list parameters onto a repository filter
func toFilter(page, pageSize int, search, status string) shared.Filter {
	filter := shared.DefaultFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}
	filter.Search = strings.TrimSpace(search)
	if status != "" {
		filter.Filters["status"] = status
	}
	return filter
}
