package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/finovai/finovai-backend/internal/model"
	"github.com/finovai/finovai-backend/internal/quiz"
	"github.com/finovai/finovai-backend/internal/repository"
)

// ErrEmptyMessage is returned when inbound content is empty or whitespace.
var ErrEmptyMessage = errors.New("empty message")

// ConversationStore is the slice of the conversation repository the
// orchestrator needs.
type ConversationStore interface {
	GetByID(ctx context.Context, id uint64) (model.Conversation, error)
	HasAccess(ctx context.Context, conversationID, userID uint64) (bool, error)
	UpdateMetadata(ctx context.Context, conversationID uint64, metadata string, now time.Time) error
}

// MessageStore is the slice of the message repository the orchestrator needs.
type MessageStore interface {
	Append(ctx context.Context, conversationID uint64, senderID *uint64, senderType, content, messageType string, metadata *string, now time.Time) (model.Message, error)
}

// SendResult is what one inbound message produced: the persisted user turn
// and zero or more assistant turns, in insertion order.
type SendResult struct {
	UserMessage model.Message
	AIMessages  []model.Message
}

// Orchestrator routes every inbound message: scripted commands are answered
// by the dispatcher, everything else goes through the bridge, and non-AI
// conversation types get no automatic reply at all.  The user's message is
// persisted before any reply is attempted, so a downstream failure never
// loses the turn.
type Orchestrator struct {
	convs  ConversationStore
	msgs   MessageStore
	bridge *Bridge

	// Per-conversation locks serialize the quiz read-modify-write so two
	// simultaneous posts to one conversation cannot lose a transition.
	mu    sync.Mutex
	locks map[uint64]*sync.Mutex
}

func NewOrchestrator(convs ConversationStore, msgs MessageStore, bridge *Bridge) *Orchestrator {
	return &Orchestrator{
		convs:  convs,
		msgs:   msgs,
		bridge: bridge,
		locks:  make(map[uint64]*sync.Mutex),
	}
}

// lockConversation returns the mutex for one conversation id, creating it
// on first use.  Entries are kept for the process lifetime; the set of hot
// conversations is small on this workload.
func (o *Orchestrator) lockConversation(id uint64) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	l, ok := o.locks[id]
	if !ok {
		l = &sync.Mutex{}
		o.locks[id] = l
	}
	return l
}

// SendMessage handles one inbound user message end to end.  Order matters:
// access check, content validation, persist the user turn, then route.  A
// bridge failure after the user turn is saved returns the partial result
// together with ErrGenerationFailed instead of discarding the turn.
func (o *Orchestrator) SendMessage(ctx context.Context, user model.User, conversationID uint64, content string) (SendResult, error) {
	ok, err := o.convs.HasAccess(ctx, conversationID, user.ID)
	if err != nil {
		return SendResult{}, err
	}
	if !ok {
		return SendResult{}, repository.ErrForbidden
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return SendResult{}, ErrEmptyMessage
	}

	conv, err := o.convs.GetByID(ctx, conversationID)
	if err != nil {
		return SendResult{}, err
	}

	senderID := user.ID
	userMsg, err := o.msgs.Append(ctx, conversationID, &senderID, model.SenderUser, content, model.MsgText, nil, time.Now().UTC())
	if err != nil {
		return SendResult{}, err
	}
	result := SendResult{UserMessage: userMsg}

	// Direct couple threads are person-to-person; nothing replies.
	if !model.IsAIType(conv.Type) {
		return result, nil
	}

	lock := o.lockConversation(conversationID)
	lock.Lock()
	defer lock.Unlock()

	// Re-read inside the lock so the quiz transition starts from the
	// state the previous writer left behind.
	conv, err = o.convs.GetByID(ctx, conversationID)
	if err != nil {
		return result, err
	}
	state := quiz.StateFromMetadata(conv.Metadata)

	replies, newState, matched := Dispatch(ParseCommand(content), state)
	if !matched {
		text, err := o.bridge.Reply(ctx, conversationID)
		if err != nil {
			return result, err
		}
		replies = []Reply{{Content: text, Type: model.MsgText}}
	}

	if newState != nil {
		encoded, err := newState.ToMetadata()
		if err != nil {
			return result, err
		}
		if err := o.convs.UpdateMetadata(ctx, conversationID, encoded, time.Now().UTC()); err != nil {
			return result, err
		}
	}

	for _, reply := range replies {
		msg, err := o.msgs.Append(ctx, conversationID, nil, model.SenderAI, reply.Content, reply.Type, reply.Metadata, time.Now().UTC())
		if err != nil {
			return result, err
		}
		result.AIMessages = append(result.AIMessages, msg)
	}
	return result, nil
}

// SeedGreeting persists the assistant's opening message into a freshly
// created AI conversation.
func (o *Orchestrator) SeedGreeting(ctx context.Context, conversationID uint64) (model.Message, error) {
	g := Greeting()
	return o.msgs.Append(ctx, conversationID, nil, model.SenderAI, g.Content, g.Type, g.Metadata, time.Now().UTC())
}
