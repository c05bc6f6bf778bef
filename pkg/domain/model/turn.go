package model

import (
	"time"

	"github.com/sauraha-lab/parkguide/pkg/domain/types"
)

// Turn is one role-tagged message in the conversation log
type Turn struct {
	Role      types.TurnRole
	Content   string
	CreatedAt time.Time
}

// Alternates reports whether the role sequence of turns strictly
// alternates starting with a user turn. An empty sequence alternates.
func Alternates(turns []Turn) bool {
	for i, turn := range turns {
		want := types.RoleUser
		if i%2 == 1 {
			want = types.RoleAssistant
		}
		if turn.Role != want {
			return false
		}
	}
	return true
}
