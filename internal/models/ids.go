package models

import "github.com/google/uuid"

// assignID fills an empty primary key with a random UUID. Callers that need
// a stable id (fixtures, imports) set it themselves.
func assignID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}
