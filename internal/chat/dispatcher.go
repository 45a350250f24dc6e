package chat

import (
	"encoding/json"
	"fmt"

	"github.com/finovai/finovai-backend/internal/model"
	"github.com/finovai/finovai-backend/internal/quiz"
)

// Reply is one outbound assistant message produced by the dispatcher,
// ready for persistence.
type Reply struct {
	Content  string
	Type     string
	Metadata *string
}

// Scripted copy, shown verbatim to users.
const (
	greetingText = `¡Hola! Soy el asistente de FinovAI.

Estoy aquí para ayudarte a entender tu situación financiera actual y ver cómo podemos ayudarte a ordenar tu casa financiera.

¿Te gustaría conocer tu Índice Financiero? Es un diagnóstico rápido de 5 preguntas.`

	skipQuizText = `Sin problema. Cuando quieras conocer tu Índice Financiero, solo dímelo.

Mientras tanto, cuéntame: ¿qué es lo que más te preocupa de tus finanzas hoy?`

	viewPlanText = `¡Excelente decisión! Tu plan parte de la etapa que obtuviste en el diagnóstico.

En FinovAI Academy trabajamos en tres frentes: ordenar tu casa financiera, crear margen cada mes e invertir con sistema.

Un asesor revisará tu resultado y te escribirá por WhatsApp para agendar tu primera sesión.`

	talkAdvisorText = `¡Perfecto! Un asesor de FinovAI te contactará por WhatsApp en las próximas 24 horas.

Mientras tanto, puedes seguir preguntándome lo que quieras sobre orden financiero.`

	followUpText = "¿Qué te gustaría hacer ahora?"
)

// Dispatch pattern-matches a decoded command against the persisted quiz
// state.  It returns the scripted replies, the quiz state to persist (nil
// when the state did not change), and whether the command matched at all.
// Unmatched input falls through to the free-form bridge — including quiz
// answers arriving while the machine is inactive or out of step.
func Dispatch(cmd Command, state quiz.State) ([]Reply, *quiz.State, bool) {
	switch cmd.Kind {
	case CmdStartQuiz:
		next := quiz.Start()
		q, _ := next.Current()
		return []Reply{questionReply(next.CurrentQuestion, q)}, &next, true

	case CmdSkipQuiz:
		return []Reply{{Content: skipQuizText, Type: model.MsgText}}, nil, true

	case CmdQuizAnswer:
		next, done, ok := state.Answer(cmd.QuestionID, cmd.Value)
		if !ok {
			return nil, nil, false
		}
		if done {
			score := next.Score()
			stage := quiz.StageFor(score)
			return []Reply{scoreReply(score, stage), followUpReply()}, &next, true
		}
		q, _ := next.Current()
		return []Reply{questionReply(next.CurrentQuestion, q)}, &next, true

	case CmdViewPlan:
		return []Reply{{Content: viewPlanText, Type: model.MsgText}}, nil, true

	case CmdTalkAdvisor:
		return []Reply{{Content: talkAdvisorText, Type: model.MsgText}}, nil, true
	}
	return nil, nil, false
}

// Greeting is the assistant's opening message, seeded into every new
// AI-typed conversation so the quiz flow is reachable from the first screen.
func Greeting() Reply {
	return buttonsReply(greetingText, []model.ButtonOption{
		{Label: "✨ Sí, vamos", Value: tokenStartQuiz, Variant: "primary"},
		{Label: "Tal vez después", Value: tokenSkipQuiz, Variant: "secondary"},
	})
}

// questionReply renders a question as a buttons prompt.  Option buttons
// send back quiz_answer tokens carrying the question id and chosen value.
func questionReply(index int, q quiz.Question) Reply {
	opts := make([]model.ButtonOption, 0, len(q.Options))
	for _, o := range q.Options {
		opts = append(opts, model.ButtonOption{
			Label:   o.Label,
			Value:   AnswerToken(q.ID, o.Value),
			Variant: "secondary",
		})
	}
	content := fmt.Sprintf("Pregunta %d de %d\n\n%s", index+1, quiz.QuestionCount, q.Text)
	return buttonsReply(content, opts)
}

// scoreReply renders the computed index as a score_result message.
func scoreReply(score int, stage quiz.Stage) Reply {
	meta := model.ScoreResultMetadata{
		Score:        score,
		Stage:        stage.Name,
		StageMessage: stage.Message,
		Color:        stage.Color,
	}
	return Reply{
		Content:  fmt.Sprintf("Tu Índice de Orden Financiero es %d/100", score),
		Type:     model.MsgScoreResult,
		Metadata: marshalMeta(meta),
	}
}

func followUpReply() Reply {
	return buttonsReply(followUpText, []model.ButtonOption{
		{Label: "Ver mi plan", Value: tokenViewPlan, Variant: "primary"},
		{Label: "Hablar con un asesor", Value: tokenTalkAdvisor, Variant: "secondary"},
		{Label: "Volver a calcular", Value: tokenStartQuiz, Variant: "secondary"},
	})
}

func buttonsReply(content string, buttons []model.ButtonOption) Reply {
	return Reply{
		Content:  content,
		Type:     model.MsgButtons,
		Metadata: marshalMeta(model.ButtonsMetadata{Buttons: buttons}),
	}
}

// marshalMeta encodes message metadata right before storage.  The payload
// types cannot fail to marshal, so a nil on error is acceptable here.
func marshalMeta(v any) *string {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	s := string(b)
	return &s
}
