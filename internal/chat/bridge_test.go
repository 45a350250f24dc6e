package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finovai/finovai-backend/internal/model"
)

func TestBridgeOmitsSystemRowsFromContext(t *testing.T) {
	store := newFakeStore(model.ConvPrivateAI, 7)
	responder := &fakeResponder{reply: "Entiendo, cuéntame más."}
	bridge := NewBridge(store, responder, time.Second)

	uid := uint64(7)
	now := time.Now().UTC()
	ctx := context.Background()
	_, err := store.Append(ctx, 1, &uid, model.SenderUser, "Quiero ordenar mis finanzas", model.MsgText, nil, now)
	require.NoError(t, err)
	_, err = store.Append(ctx, 1, nil, model.SenderSystem, "Tu Índice de Orden Financiero es 47/100", model.MsgScoreResult, nil, now)
	require.NoError(t, err)
	_, err = store.Append(ctx, 1, nil, model.SenderAI, "¡Buen punto de partida!", model.MsgText, nil, now)
	require.NoError(t, err)

	text, err := bridge.Reply(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Entiendo, cuéntame más.", text)

	turns := responder.sawTurns()
	require.Len(t, turns, 3)
	assert.Equal(t, "system", turns[0].Role)
	assert.Equal(t, SystemPrompt, turns[0].Content)
	assert.Equal(t, Turn{Role: "user", Content: "Quiero ordenar mis finanzas"}, turns[1])
	assert.Equal(t, Turn{Role: "assistant", Content: "¡Buen punto de partida!"}, turns[2])
	for _, turn := range turns[1:] {
		assert.NotContains(t, turn.Content, "Índice de Orden Financiero")
	}
}
