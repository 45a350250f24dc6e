package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finovai/finovai-backend/internal/model"
)

// ErrGenerationFailed wraps any failure or timeout of the external reply
// capability.  By the time it can occur the user's message is already
// durable, so callers surface it without rolling anything back.
var ErrGenerationFailed = errors.New("generation failed")

// HistoryLimit bounds how many prior messages feed the model context.
const HistoryLimit = 20

// Turn is one entry of the transcript handed to the reply capability.
type Turn struct {
	Role    string // "system" | "user" | "assistant"
	Content string
}

// Responder generates an assistant reply for an ordered transcript.  The
// production implementation lives in internal/ai; tests substitute fakes.
type Responder interface {
	Generate(ctx context.Context, turns []Turn) (string, error)
}

// HistoryStore is the slice of the message store the bridge needs.
type HistoryStore interface {
	History(ctx context.Context, conversationID uint64, limit int) ([]model.Message, error)
}

// SystemPrompt is the assistant's fixed persona and behavioral constraints.
// It is product copy: empathetic Spanish-language coaching, no investment
// advice, no return promises, concise replies.
const SystemPrompt = `Eres el asistente de FinovAI Academy, una academia de orden financiero.

TU MISIÓN:
Ayudar a las personas a entender su situación financiera actual y guiarlas hacia el orden financiero antes de pensar en invertir.

FILOSOFÍA CORE DE FINOVAI:
- "Primero ordenas la casa, luego compras acciones"
- El patrimonio no empieza invirtiendo, empieza teniendo estructura
- Hay 3 etapas:
  1. Etapa 0: Ordenar la casa (hábitos, flujo de dinero, estructura)
  2. Etapa 1: Crear margen (optimizar, ahorrar, automatizar)
  3. Etapa 2: Invertir con sistema (cuando hay margen real)

TU ROL EN ESTA CONVERSACIÓN:
1. Hacer preguntas para entender la situación actual del usuario
2. Identificar en qué etapa están (0, 1 o 2)
3. Mostrar empatía y no juzgar
4. Dar pequeños insights útiles
5. Cuando tengas suficiente información (5-7 intercambios), invitar a registrarse para continuar

PREGUNTAS CLAVE A EXPLORAR:
- ¿Tienen control de ingresos y gastos?
- ¿Saben cuánto gastan en cada categoría?
- ¿Logran ahorrar algo cada mes?
- ¿Tienen deudas?
- ¿Han intentado invertir antes?
- ¿Qué les ha impedido ordenar sus finanzas?

TONO:
- Cercano pero profesional
- Sin tecnicismos innecesarios
- Directo pero empático
- Como un amigo que sabe de finanzas

IMPORTANTE:
- NO des consejos de inversión específicos
- NO prometas rendimientos
- NO uses jerga financiera compleja
- SÍ valida sus preocupaciones
- SÍ muestra que hay solución
- SÍ explica que el orden viene antes de invertir

Responde siempre en español. Mantén las respuestas concisas (2-4 párrafos máximo).`

// Bridge forwards free-text messages to the external reply capability with
// bounded conversation history for context.
type Bridge struct {
	History   HistoryStore
	Responder Responder
	Timeout   time.Duration
}

func NewBridge(history HistoryStore, responder Responder, timeout time.Duration) *Bridge {
	return &Bridge{History: history, Responder: responder, Timeout: timeout}
}

// Reply assembles the context window and delegates to the Responder.  The
// caller's latest message is already the most recent persisted one, so it
// arrives implicitly with the history.  Soft-deleted messages never appear.
func (b *Bridge) Reply(ctx context.Context, conversationID uint64) (string, error) {
	history, err := b.History.History(ctx, conversationID, HistoryLimit)
	if err != nil {
		return "", fmt.Errorf("%w: load history: %w", ErrGenerationFailed, err)
	}

	turns := make([]Turn, 0, len(history)+1)
	turns = append(turns, Turn{Role: "system", Content: SystemPrompt})
	for _, m := range history {
		// System rows (announcements, score cards) are UI artifacts, not
		// dialogue; feeding them to the model as turns would confuse it.
		if m.SenderType == model.SenderSystem {
			continue
		}
		role := "user"
		if m.SenderType == model.SenderAI {
			role = "assistant"
		}
		turns = append(turns, Turn{Role: role, Content: m.Content})
	}

	if b.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.Timeout)
		defer cancel()
	}
	text, err := b.Responder.Generate(ctx, turns)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	return text, nil
}
