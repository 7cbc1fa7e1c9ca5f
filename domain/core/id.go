package core

import "github.com/google/uuid"

// ID is an opaque domain identifier.
type ID string

// NewID returns a time-sortable UUID v7 identifier, falling back to v4
// when v7 generation fails.
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

func (id ID) String() string { return string(id) }

// RunID identifies a single analysis run.
type RunID ID

func (id RunID) String() string { return ID(id).String() }
