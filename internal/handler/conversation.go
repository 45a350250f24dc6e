package handler

import (
    "context"      // bounded contexts for DB calls
    "errors"       // errors.Is comparisons against sentinels
    "net/http"     // HTTP status codes
    "strconv"      // parsing path and query parameters
    "time"         // timestamps and DB timeouts

    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/finovai/finovai-backend/internal/chat"       // orchestration core
    "github.com/finovai/finovai-backend/internal/middleware" // authenticated user extraction
    "github.com/finovai/finovai-backend/internal/model"      // domain records
    "github.com/finovai/finovai-backend/internal/repository" // repository layer
)

// defaultPageSize bounds GET /messages when the client sends no limit.
const defaultPageSize = 50

// maxPageSize caps client-requested page sizes.
const maxPageSize = 100

// ConversationHandler bundles everything the conversation endpoints need.
// Listing and pagination talk to the repositories directly; message
// submission goes through the orchestrator, which owns routing between the
// scripted dispatcher and the free-form bridge.
type ConversationHandler struct {
	Convs        *repository.ConversationRepo
	Msgs         *repository.MessageRepo
	Users        *repository.UserRepo
	Orchestrator *chat.Orchestrator
}

func NewConversationHandler(convs *repository.ConversationRepo, msgs *repository.MessageRepo, users *repository.UserRepo, orch *chat.Orchestrator) *ConversationHandler {
	return &ConversationHandler{Convs: convs, Msgs: msgs, Users: users, Orchestrator: orch}
}

// ----- DTOs -----

type createConversationReq struct {
	Type  string  `json:"type"`
	Title *string `json:"title"`
}

type conversationPart struct {
	ID            uint64     `json:"id"`
	Type          string     `json:"type"`
	Title         *string    `json:"title"`
	LastMessage   *string    `json:"last_message,omitempty"`
	UnreadCount   int        `json:"unread_count"`
	CreatedAt     time.Time  `json:"created_at"`
	LastMessageAt *time.Time `json:"last_message_at"`
}

// List handles GET /api/conversations: every thread the caller owns or
// participates in, most recent activity first.
func (h *ConversationHandler) List(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "No autorizado"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	summaries, err := h.Convs.ListForUser(ctx, user.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	out := make([]conversationPart, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, conversationPart{
			ID:            s.ID,
			Type:          s.Type,
			Title:         s.Title,
			LastMessage:   s.LastMessage,
			UnreadCount:   s.UnreadCount,
			CreatedAt:     s.CreatedAt,
			LastMessageAt: s.LastMessageAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"conversations": out})
}

type participantPart struct {
	UserID      uint64     `json:"user_id"`
	Role        string     `json:"role"`
	DisplayName *string    `json:"display_name"`
	Phone       string     `json:"phone"`
	JoinedAt    time.Time  `json:"joined_at"`
	LastReadAt  *time.Time `json:"last_read_at"`
}

type conversationDetail struct {
	conversationPart
	Participants []participantPart `json:"participants"`
}

// Get handles GET /api/conversations/:id: the thread plus who is in it.
// Participant identities are resolved so couple threads can label each
// side without a second round trip.
func (h *ConversationHandler) Get(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "No autorizado"})
	}
	conversationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || conversationID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid conversation id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	allowed, err := h.Convs.HasAccess(ctx, conversationID, user.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !allowed {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "No tienes acceso a esta conversacion"})
	}

	conv, err := h.Convs.GetByID(ctx, conversationID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	participants, err := h.Convs.Participants(ctx, conversationID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	parts := make([]participantPart, 0, len(participants))
	for _, p := range participants {
		part := participantPart{
			UserID:     p.UserID,
			Role:       p.Role,
			JoinedAt:   p.JoinedAt,
			LastReadAt: p.LastReadAt,
		}
		// A participant row can outlive its user; skip identity then.
		if u, err := h.Users.GetByID(ctx, p.UserID); err == nil {
			part.DisplayName = u.DisplayName
			part.Phone = u.Phone
		}
		parts = append(parts, part)
	}

	return c.JSON(http.StatusOK, conversationDetail{
		conversationPart: conversationPart{
			ID:            conv.ID,
			Type:          conv.Type,
			Title:         conv.Title,
			CreatedAt:     conv.CreatedAt,
			LastMessageAt: conv.LastMessageAt,
		},
		Participants: parts,
	})
}

// Create handles POST /api/conversations.  AI-typed conversations are
// seeded with the assistant's greeting so the quiz flow is reachable
// immediately; couple types require the caller to be in a couple.
func (h *ConversationHandler) Create(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "No autorizado"})
	}

	var req createConversationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	conversationType := req.Type
	if conversationType == "" {
		conversationType = model.ConvPrivateAI
	}
	switch conversationType {
	case model.ConvPrivateAI, model.ConvCoupleAI, model.ConvCoupleDirect:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Tipo de conversacion invalido"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	conv, err := h.Convs.Create(ctx, user, conversationType, req.Title, time.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrInvalidCoupleState) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Necesitas estar en pareja para crear esta conversacion"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}

	if model.IsAIType(conv.Type) {
		if _, err := h.Orchestrator.SeedGreeting(ctx, conv.ID); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
		}
	}

	return c.JSON(http.StatusCreated, conversationPart{
		ID:        conv.ID,
		Type:      conv.Type,
		Title:     conv.Title,
		CreatedAt: conv.CreatedAt,
	})
}

// ListMessages handles GET /api/conversations/:id/messages with keyset
// pagination (`before` = message id).  Fetching a page marks the caller's
// participant row as read; the pagination itself is idempotent because the
// cursor is an immutable message id, not a read pointer.
func (h *ConversationHandler) ListMessages(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "No autorizado"})
	}
	conversationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || conversationID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid conversation id"})
	}

	limit := defaultPageSize
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = min(n, maxPageSize)
		}
	}
	var beforeID uint64
	if raw := c.QueryParam("before"); raw != "" {
		if n, err := strconv.ParseUint(raw, 10, 64); err == nil {
			beforeID = n
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	allowed, err := h.Convs.HasAccess(ctx, conversationID, user.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !allowed {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "No tienes acceso a esta conversacion"})
	}

	page, err := h.Msgs.ListPage(ctx, conversationID, limit, beforeID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	// Reading a page moves the unread pointer; best effort by design.
	_ = h.Msgs.MarkRead(ctx, conversationID, user.ID, time.Now().UTC())

	if page == nil {
		page = []model.Message{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"messages": page,
		"hasMore":  len(page) == limit,
	})
}

type sendMessageReq struct {
	Content string `json:"content"`
}

// SendMessage handles POST /api/conversations/:id/messages.  The
// orchestrator persists the user's turn before attempting any reply, so a
// generation failure still returns the saved message with a null aiMessage.
func (h *ConversationHandler) SendMessage(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "No autorizado"})
	}
	conversationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || conversationID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid conversation id"})
	}

	var req sendMessageReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	result, err := h.Orchestrator.SendMessage(c.Request().Context(), user, conversationID, req.Content)
	switch {
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "No tienes acceso a esta conversacion"})
	case errors.Is(err, chat.ErrEmptyMessage):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "El mensaje no puede estar vacio"})
	case errors.Is(err, chat.ErrGenerationFailed):
		// The user's turn is durable; report it with no reply.
		return c.JSON(http.StatusOK, sendMessageResp(result))
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "send failed"})
	}
	return c.JSON(http.StatusOK, sendMessageResp(result))
}

// DeleteMessage handles DELETE /api/conversations/:id/messages/:messageId.
// Only the author can delete, and only their own messages; the row stays in
// place with a deleted_at stamp so ordering of the rest is untouched.
func (h *ConversationHandler) DeleteMessage(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "No autorizado"})
	}
	conversationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || conversationID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid conversation id"})
	}
	messageID, err := strconv.ParseUint(c.Param("messageId"), 10, 64)
	if err != nil || messageID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid message id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	allowed, err := h.Convs.HasAccess(ctx, conversationID, user.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !allowed {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "No tienes acceso a esta conversacion"})
	}

	deleted, err := h.Msgs.SoftDelete(ctx, conversationID, messageID, user.ID, time.Now().UTC())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	if !deleted {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Mensaje no encontrado"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// sendMessageResp shapes the orchestrator result: aiMessage keeps the
// original single-reply contract (first reply or null) while aiMessages
// carries multi-message turns such as quiz completion.
func sendMessageResp(result chat.SendResult) echo.Map {
	var first *model.Message
	if len(result.AIMessages) > 0 {
		first = &result.AIMessages[0]
	}
	return echo.Map{
		"userMessage": result.UserMessage,
		"aiMessage":   first,
		"aiMessages":  result.AIMessages,
	}
}
