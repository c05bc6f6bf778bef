package types

import "github.com/m-mizutani/goerr/v2"

// TurnRole identifies the author of a conversation turn
type TurnRole string

const (
	RoleUser      TurnRole = "user"
	RoleAssistant TurnRole = "assistant"
)

// Validate checks if the TurnRole is one of the known roles
func (r TurnRole) Validate() error {
	switch r {
	case RoleUser, RoleAssistant:
		return nil
	default:
		return goerr.New("unknown turn role", goerr.V("role", r))
	}
}

// String returns the string representation of TurnRole
func (r TurnRole) String() string {
	return string(r)
}
