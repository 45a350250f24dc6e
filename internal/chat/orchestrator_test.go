package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finovai/finovai-backend/internal/model"
	"github.com/finovai/finovai-backend/internal/quiz"
	"github.com/finovai/finovai-backend/internal/repository"
)

// fakeStore backs both store interfaces with an in-memory conversation.
type fakeStore struct {
	mu       sync.Mutex
	conv     model.Conversation
	members  map[uint64]bool
	messages []model.Message
	nextID   uint64
}

func newFakeStore(convType string, memberIDs ...uint64) *fakeStore {
	members := make(map[uint64]bool, len(memberIDs))
	for _, id := range memberIDs {
		members[id] = true
	}
	return &fakeStore{
		conv:    model.Conversation{ID: 1, Type: convType},
		members: members,
		nextID:  1,
	}
}

func (f *fakeStore) GetByID(_ context.Context, id uint64) (model.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id != f.conv.ID {
		return model.Conversation{}, errors.New("not found")
	}
	return f.conv, nil
}

func (f *fakeStore) HasAccess(_ context.Context, conversationID, userID uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return conversationID == f.conv.ID && f.members[userID], nil
}

func (f *fakeStore) UpdateMetadata(_ context.Context, _ uint64, metadata string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.conv.Metadata = &metadata
	return nil
}

func (f *fakeStore) Append(_ context.Context, conversationID uint64, senderID *uint64, senderType, content, messageType string, metadata *string, now time.Time) (model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := model.Message{
		ID:             f.nextID,
		ConversationID: conversationID,
		SenderID:       senderID,
		SenderType:     senderType,
		Content:        content,
		Type:           messageType,
		Metadata:       metadata,
		CreatedAt:      now,
	}
	f.nextID++
	f.messages = append(f.messages, m)
	return m, nil
}

func (f *fakeStore) History(_ context.Context, _ uint64, limit int) ([]model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.messages
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]model.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

// fakeResponder returns a fixed reply or error and records what it saw.
type fakeResponder struct {
	mu    sync.Mutex
	reply string
	err   error
	turns []Turn
}

func (f *fakeResponder) Generate(_ context.Context, turns []Turn) (string, error) {
	f.mu.Lock()
	f.turns = turns
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeResponder) sawTurns() []Turn {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.turns
}

func newTestOrchestrator(store *fakeStore, responder *fakeResponder) *Orchestrator {
	bridge := NewBridge(store, responder, time.Second)
	return NewOrchestrator(store, store, bridge)
}

func alice() model.User { return model.User{ID: 7, Phone: "+56911111111"} }

func TestSendMessageForbiddenForNonParticipant(t *testing.T) {
	store := newFakeStore(model.ConvPrivateAI, 99)
	o := newTestOrchestrator(store, &fakeResponder{reply: "hola"})

	_, err := o.SendMessage(context.Background(), alice(), 1, "hola")
	assert.ErrorIs(t, err, repository.ErrForbidden)
	assert.Empty(t, store.messages, "nothing may be persisted on denial")
}

func TestSendMessageRejectsEmptyContent(t *testing.T) {
	store := newFakeStore(model.ConvPrivateAI, 7)
	o := newTestOrchestrator(store, &fakeResponder{reply: "hola"})

	_, err := o.SendMessage(context.Background(), alice(), 1, "   \n  ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Empty(t, store.messages)
}

func TestSendMessageFreeTextGoesThroughBridge(t *testing.T) {
	store := newFakeStore(model.ConvPrivateAI, 7)
	responder := &fakeResponder{reply: "Cuéntame más sobre tus gastos."}
	o := newTestOrchestrator(store, responder)

	res, err := o.SendMessage(context.Background(), alice(), 1, "quiero ordenar mis finanzas")
	require.NoError(t, err)

	assert.Equal(t, model.SenderUser, res.UserMessage.SenderType)
	require.Len(t, res.AIMessages, 1)
	assert.Equal(t, responder.reply, res.AIMessages[0].Content)
	assert.Equal(t, model.MsgText, res.AIMessages[0].Type)

	// The model saw the persona prompt first, then the user's turn.
	require.NotEmpty(t, responder.sawTurns())
	assert.Equal(t, "system", responder.sawTurns()[0].Role)
	assert.Equal(t, "quiero ordenar mis finanzas", responder.sawTurns()[len(responder.sawTurns())-1].Content)
}

func TestSendMessageScriptedCommandSkipsModel(t *testing.T) {
	store := newFakeStore(model.ConvPrivateAI, 7)
	responder := &fakeResponder{err: errors.New("must not be called")}
	o := newTestOrchestrator(store, responder)

	res, err := o.SendMessage(context.Background(), alice(), 1, "start_quiz")
	require.NoError(t, err)
	require.Len(t, res.AIMessages, 1)
	assert.Equal(t, model.MsgButtons, res.AIMessages[0].Type)
	assert.Nil(t, responder.sawTurns(), "scripted commands never reach the model")

	// Quiz state was persisted on the conversation.
	state := quiz.StateFromMetadata(store.conv.Metadata)
	assert.True(t, state.Active)
}

func TestSendMessageFullQuizRun(t *testing.T) {
	store := newFakeStore(model.ConvPrivateAI, 7)
	o := newTestOrchestrator(store, &fakeResponder{err: errors.New("must not be called")})
	ctx := context.Background()
	user := alice()

	_, err := o.SendMessage(ctx, user, 1, "start_quiz")
	require.NoError(t, err)

	ids := []string{"income_tracking", "expense_tracking", "savings", "emergency_fund", "debt"}
	var last SendResult
	for _, id := range ids {
		last, err = o.SendMessage(ctx, user, 1, AnswerToken(id, 2))
		require.NoError(t, err)
	}

	// Completion produces the score message plus the follow-up prompt.
	require.Len(t, last.AIMessages, 2)
	assert.Equal(t, model.MsgScoreResult, last.AIMessages[0].Type)
	assert.Contains(t, last.AIMessages[0].Content, "67/100")

	state := quiz.StateFromMetadata(store.conv.Metadata)
	assert.False(t, state.Active)
	assert.Len(t, state.Answers, quiz.QuestionCount)
}

func TestSendMessageStaleAnswerFallsThroughToModel(t *testing.T) {
	store := newFakeStore(model.ConvPrivateAI, 7)
	responder := &fakeResponder{reply: "Parece que el diagnóstico ya terminó."}
	o := newTestOrchestrator(store, responder)

	res, err := o.SendMessage(context.Background(), alice(), 1, "quiz_answer_debt_2")
	require.NoError(t, err)
	require.Len(t, res.AIMessages, 1)
	assert.Equal(t, responder.reply, res.AIMessages[0].Content)
	assert.NotNil(t, responder.sawTurns(), "stale quiz answers are free text")
}

func TestSendMessageDirectConversationGetsNoReply(t *testing.T) {
	store := newFakeStore(model.ConvCoupleDirect, 7)
	responder := &fakeResponder{err: errors.New("must not be called")}
	o := newTestOrchestrator(store, responder)

	res, err := o.SendMessage(context.Background(), alice(), 1, "start_quiz")
	require.NoError(t, err)
	assert.Empty(t, res.AIMessages)
	require.Len(t, store.messages, 1)
	assert.Equal(t, model.SenderUser, store.messages[0].SenderType)
}

func TestSendMessageGenerationFailureKeepsUserTurn(t *testing.T) {
	store := newFakeStore(model.ConvPrivateAI, 7)
	o := newTestOrchestrator(store, &fakeResponder{err: errors.New("upstream down")})

	res, err := o.SendMessage(context.Background(), alice(), 1, "hola")
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.NotZero(t, res.UserMessage.ID, "user turn survives the failure")
	assert.Empty(t, res.AIMessages)
	require.Len(t, store.messages, 1)
}

func TestSendMessageConcurrentAnswersNeverSkipQuestions(t *testing.T) {
	store := newFakeStore(model.ConvPrivateAI, 7)
	o := newTestOrchestrator(store, &fakeResponder{reply: "ok"})
	ctx := context.Background()
	user := alice()

	_, err := o.SendMessage(ctx, user, 1, "start_quiz")
	require.NoError(t, err)

	// Two racing answers for the first question: exactly one may advance
	// the machine, the other must fall through as stale.
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = o.SendMessage(ctx, user, 1, AnswerToken("income_tracking", 1))
		}()
	}
	wg.Wait()

	state := quiz.StateFromMetadata(store.conv.Metadata)
	assert.True(t, state.Active)
	assert.Equal(t, 1, state.CurrentQuestion)
	assert.Len(t, state.Answers, 1)
}

func TestSeedGreeting(t *testing.T) {
	store := newFakeStore(model.ConvPrivateAI, 7)
	o := newTestOrchestrator(store, &fakeResponder{reply: "ok"})

	msg, err := o.SeedGreeting(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, model.SenderAI, msg.SenderType)
	assert.Equal(t, model.MsgButtons, msg.Type)
	assert.Nil(t, msg.SenderID)
}
