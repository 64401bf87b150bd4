// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
//   - base.go: BaseModel and AggregateModel (version column for optimistic locking)
//   - ticketing.go: quotes, quote lines, ticket headers, ticket lines and line revisions
//   - json.go: helpers for the jsonb columns that hold pricing and fee snapshots
package models
