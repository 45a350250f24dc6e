package handler

import (
    "context"  // request-scoped deadlines
    "net/http" // HTTP status codes
    "strings"  // email validation
    "time"     // DB timeouts and event timestamps

    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/finovai/finovai-backend/internal/chat"                    // system prompt and Responder
    "github.com/finovai/finovai-backend/internal/queue"                   // lead event payload
    "github.com/finovai/finovai-backend/internal/repository"              // lead persistence
    queue_publisher "github.com/finovai/finovai-backend/internal/service" // broker publisher
)

// LegacyHandler serves the pre-registration landing-page endpoints: an
// unauthenticated stateless chat (the client keeps its own transcript) and
// the lead-capture signup.  Both predate the session flow and keep their
// original request shapes so deployed frontends do not break.
type LegacyHandler struct {
	Responder chat.Responder
	Leads     *repository.LeadRepo
	Timeout   time.Duration
}

func NewLegacyHandler(responder chat.Responder, leads *repository.LeadRepo, timeout time.Duration) *LegacyHandler {
	return &LegacyHandler{Responder: responder, Leads: leads, Timeout: timeout}
}

type legacyChatReq struct {
	Messages []legacyChatTurn `json:"messages"`
}

type legacyChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chat handles POST /api/chat.  The full transcript arrives in the request;
// the server contributes only the persona prompt and the model call.
func (h *LegacyHandler) Chat(c echo.Context) error {
	var req legacyChatReq
	if err := c.Bind(&req); err != nil || len(req.Messages) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Mensajes invalidos"})
	}

	turns := make([]chat.Turn, 0, len(req.Messages)+1)
	turns = append(turns, chat.Turn{Role: "system", Content: chat.SystemPrompt})
	for _, m := range req.Messages {
		role := "user"
		if m.Role == "assistant" {
			role = "assistant"
		}
		turns = append(turns, chat.Turn{Role: role, Content: m.Content})
	}

	ctx := c.Request().Context()
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	text, err := h.Responder.Generate(ctx, turns)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error generando respuesta"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": text})
}

type signupReq struct {
	Email          string `json:"email"`
	Name           string `json:"name"`
	DiagnosticData string `json:"diagnosticData"`
}

// Signup handles POST /api/signup: stores the lead and publishes a
// lead.captured event.  Publishing is fire-and-forget; a broker outage must
// not lose the signup that is already in the database.
func (h *LegacyHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Email invalido"})
	}
	email := strings.TrimSpace(req.Email)
	if !strings.Contains(email, "@") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Email invalido"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	id, err := h.Leads.Create(ctx, email, strings.TrimSpace(req.Name), req.DiagnosticData, now)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "No se pudo guardar el registro"})
	}

	go func() {
		pubCtx, pubCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer pubCancel()
		_ = queue_publisher.PublishLeadCaptured(pubCtx, queue.LeadCapturedEvent{
			LeadID:         id,
			Email:          email,
			Name:           strings.TrimSpace(req.Name),
			DiagnosticData: req.DiagnosticData,
			CapturedAt:     now.Format(time.RFC3339),
		})
	}()

	return c.JSON(http.StatusCreated, echo.Map{"success": true})
}
