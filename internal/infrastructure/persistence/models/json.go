package models

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// modelLogger reports snapshot columns that cannot be encoded. Resolved on
// each call so a logger installed with zap.ReplaceGlobals after init is used.
func modelLogger() *zap.Logger {
	return zap.L().Named("ticketing.models")
}

// encodeJSON marshals v for a not-null jsonb column
func encodeJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		modelLogger().Error("Failed to encode snapshot column", zap.Error(err))
		return "null"
	}
	return string(data)
}

// encodeOptionalJSON marshals v for a nullable jsonb column; nil stays NULL
func encodeOptionalJSON[T any](v *T) *string {
	if v == nil {
		return nil
	}
	s := encodeJSON(v)
	return &s
}

// decodeJSON unmarshals a jsonb column. An undecodable column fails the read.
func decodeJSON(raw string, dest any, column string, id uuid.UUID) error {
	if raw == "" || raw == "null" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return fmt.Errorf("failed to decode %s of row %s: %w", column, id, err)
	}
	return nil
}

// decodeOptionalJSON unmarshals a nullable jsonb column into a fresh *T
func decodeOptionalJSON[T any](raw *string, column string, id uuid.UUID) (*T, error) {
	if raw == nil || *raw == "" || *raw == "null" {
		return nil, nil
	}
	v := new(T)
	if err := decodeJSON(*raw, v, column, id); err != nil {
		return nil, err
	}
	return v, nil
}
