package models

import "github.com/google/uuid"

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// StringPtr returns nil for blank strings so optional media references stay NULL.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
