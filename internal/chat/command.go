// Package chat contains the conversation orchestration core: the scripted
// command vocabulary, the dispatcher that answers recognized commands
// without touching the language model, the bridge that forwards free text
// to it, and the orchestrator gluing both to the store.
package chat

import (
	"strconv"
	"strings"
)

// CommandKind enumerates the scripted command vocabulary.  Anything that is
// not an exact token decodes to CmdNone and is treated as free text.
type CommandKind int

const (
	CmdNone CommandKind = iota
	CmdStartQuiz
	CmdSkipQuiz
	CmdQuizAnswer
	CmdViewPlan
	CmdTalkAdvisor
)

// Literal command tokens sent by the client as message content.
const (
	tokenStartQuiz   = "start_quiz"
	tokenSkipQuiz    = "skip_quiz"
	tokenViewPlan    = "view_plan"
	tokenTalkAdvisor = "talk_advisor"
	answerPrefix     = "quiz_answer_"
)

// Command is the decoded form of an inbound scripted token.  QuestionID and
// Value are only meaningful for CmdQuizAnswer.  Decoding happens exactly
// once, at this boundary; business logic never splits strings itself.
type Command struct {
	Kind       CommandKind
	QuestionID string
	Value      int
}

// ParseCommand matches message content against the scripted vocabulary.
// Matching is exact on the trimmed content: arbitrary free text never
// matches, and recognized tokens never reach the language model.
func ParseCommand(content string) Command {
	content = strings.TrimSpace(content)
	switch content {
	case tokenStartQuiz:
		return Command{Kind: CmdStartQuiz}
	case tokenSkipQuiz:
		return Command{Kind: CmdSkipQuiz}
	case tokenViewPlan:
		return Command{Kind: CmdViewPlan}
	case tokenTalkAdvisor:
		return Command{Kind: CmdTalkAdvisor}
	}
	if rest, ok := strings.CutPrefix(content, answerPrefix); ok {
		// Question ids contain underscores, so the value is whatever
		// follows the last one: quiz_answer_<questionId>_<value>.
		idx := strings.LastIndex(rest, "_")
		if idx <= 0 || idx == len(rest)-1 {
			return Command{Kind: CmdNone}
		}
		value, err := strconv.Atoi(rest[idx+1:])
		if err != nil {
			return Command{Kind: CmdNone}
		}
		return Command{Kind: CmdQuizAnswer, QuestionID: rest[:idx], Value: value}
	}
	return Command{Kind: CmdNone}
}

// AnswerToken builds the literal token a quiz option button sends back.
func AnswerToken(questionID string, value int) string {
	return answerPrefix + questionID + "_" + strconv.Itoa(value)
}
