package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// QuoteSortFields contains allowed sort fields for quotes
var QuoteSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"reference":        true,
	"client_name":      true,
	"status":           true,
	"total_amount":     true,
	"total_commission": true,
	"approved_at":      true,
}

// TicketSortFields contains allowed sort fields for ticket headers
var TicketSortFields = map[string]bool{
	"id":                   true,
	"created_at":           true,
	"updated_at":           true,
	"ticket_number":        true,
	"quote_reference":      true,
	"status":               true,
	"total_compagnie":      true,
	"total_commission":     true,
	"commission_appliquer": true,
	"emitted_at":           true,
}
