package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/sauraha-lab/parkguide/pkg/domain/model"
	"github.com/sauraha-lab/parkguide/pkg/domain/types"
)

func TestAlternates(t *testing.T) {
	cases := []struct {
		name  string
		roles []types.TurnRole
		want  bool
	}{
		{"empty", nil, true},
		{"single user", []types.TurnRole{types.RoleUser}, true},
		{"one exchange", []types.TurnRole{types.RoleUser, types.RoleAssistant}, true},
		{"two exchanges", []types.TurnRole{types.RoleUser, types.RoleAssistant, types.RoleUser, types.RoleAssistant}, true},
		{"starts with assistant", []types.TurnRole{types.RoleAssistant}, false},
		{"double user", []types.TurnRole{types.RoleUser, types.RoleUser}, false},
		{"double assistant", []types.TurnRole{types.RoleUser, types.RoleAssistant, types.RoleAssistant}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			turns := make([]model.Turn, len(tc.roles))
			for i, role := range tc.roles {
				turns[i] = model.Turn{Role: role, Content: "x"}
			}
			gt.Value(t, model.Alternates(turns)).Equal(tc.want)
		})
	}
}
