package memory_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/sauraha-lab/parkguide/pkg/domain/model"
	"github.com/sauraha-lab/parkguide/pkg/domain/types"
	"github.com/sauraha-lab/parkguide/pkg/repository/memory"
)

func TestConversationAppendAndSnapshot(t *testing.T) {
	conv := memory.NewConversation()

	gt.NoError(t, conv.Append(types.RoleUser, "Tell me about rhinos"))
	gt.NoError(t, conv.Append(types.RoleAssistant, "Rhinos are vulnerable."))

	turns := conv.Snapshot()
	gt.Array(t, turns).Length(2).Required()
	gt.Value(t, turns[0].Role).Equal(types.RoleUser)
	gt.Value(t, turns[0].Content).Equal("Tell me about rhinos")
	gt.Value(t, turns[1].Role).Equal(types.RoleAssistant)
	gt.Value(t, conv.Len()).Equal(2)
	gt.Value(t, model.Alternates(turns)).Equal(true)
}

func TestConversationAppendRejectsEmptyContent(t *testing.T) {
	conv := memory.NewConversation()
	gt.Error(t, conv.Append(types.RoleUser, ""))
	gt.Value(t, conv.Len()).Equal(0)
}

func TestConversationSnapshotDoesNotAliasInternalState(t *testing.T) {
	conv := memory.NewConversation()
	gt.NoError(t, conv.Append(types.RoleUser, "hello"))

	turns := conv.Snapshot()
	turns[0].Content = "mutated"

	fresh := conv.Snapshot()
	gt.Value(t, fresh[0].Content).Equal("hello")
}

func TestConversationClearIsIdempotent(t *testing.T) {
	conv := memory.NewConversation()
	gt.NoError(t, conv.Append(types.RoleUser, "hello"))

	conv.Clear()
	gt.Value(t, conv.Len()).Equal(0)

	conv.Clear()
	gt.Value(t, conv.Len()).Equal(0)
	gt.Array(t, conv.Snapshot()).Length(0)
}

func TestConversationReplaceLast(t *testing.T) {
	conv := memory.NewConversation()
	gt.NoError(t, conv.Append(types.RoleUser, "question"))
	gt.NoError(t, conv.Append(types.RoleAssistant, "raw answer"))

	gt.NoError(t, conv.ReplaceLast("raw answer\n\nYou might also want to know:"))

	turns := conv.Snapshot()
	gt.Array(t, turns).Length(2).Required()
	gt.Value(t, turns[1].Role).Equal(types.RoleAssistant)
	gt.Value(t, turns[1].Content).Equal("raw answer\n\nYou might also want to know:")
}

func TestConversationReplaceLastOnEmptyLog(t *testing.T) {
	conv := memory.NewConversation()

	err := conv.ReplaceLast("anything")
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrEmptyMemory)).True()
}
