package interfaces

import (
	"github.com/sauraha-lab/parkguide/pkg/domain/model"
	"github.com/sauraha-lab/parkguide/pkg/domain/types"
)

// ConversationMemory is the ordered, mutable log of prior turns
type ConversationMemory interface {
	// Append adds one turn to the end of the log. Content must be
	// non-empty.
	Append(role types.TurnRole, content string) error

	// Clear empties the log. Idempotent.
	Clear()

	// Snapshot returns the current ordered sequence of turns without
	// mutation
	Snapshot() []model.Turn

	// ReplaceLast swaps the content of the most recent turn, keeping its
	// role. Fails with types.ErrEmptyMemory when the log is empty.
	ReplaceLast(content string) error

	// Len returns the number of turns in the log
	Len() int
}
