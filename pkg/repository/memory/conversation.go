package memory

import (
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sauraha-lab/parkguide/pkg/domain/interfaces"
	"github.com/sauraha-lab/parkguide/pkg/domain/model"
	"github.com/sauraha-lab/parkguide/pkg/domain/types"
)

// Conversation is an in-memory conversation log. It holds the single live
// memory for the process's current session. All mutations happen under a
// mutex; Snapshot returns deep copies so callers never alias internal
// state.
type Conversation struct {
	mu    sync.RWMutex
	turns []model.Turn
}

var _ interfaces.ConversationMemory = &Conversation{}

// NewConversation creates an empty conversation log
func NewConversation() *Conversation {
	return &Conversation{}
}

// Append adds one turn to the end of the log
func (c *Conversation) Append(role types.TurnRole, content string) error {
	if err := role.Validate(); err != nil {
		return err
	}
	if content == "" {
		return goerr.New("turn content must not be empty", goerr.V("role", role))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.turns = append(c.turns, model.Turn{
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

// Clear empties the log
func (c *Conversation) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.turns = nil
}

// Snapshot returns a copy of the current ordered sequence of turns
func (c *Conversation) Snapshot() []model.Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()

	copied := make([]model.Turn, len(c.turns))
	copy(copied, c.turns)
	return copied
}

// ReplaceLast removes the most recently appended turn and appends a new
// turn with the same role and the replacement content
func (c *Conversation) ReplaceLast(content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.turns) == 0 {
		return goerr.Wrap(types.ErrEmptyMemory, "cannot replace last turn")
	}

	last := &c.turns[len(c.turns)-1]
	last.Content = content
	return nil
}

// Len returns the number of turns in the log
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.turns)
}
