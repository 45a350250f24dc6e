package quiz

import (
	"encoding/json"
	"math"
)

// State is the per-conversation quiz state machine.  While Active,
// CurrentQuestion always equals the number of recorded answers.  Completing
// the last question deactivates the machine but keeps the answers, so the
// result can be recomputed later.
type State struct {
	Active          bool           `json:"active"`
	CurrentQuestion int            `json:"current_question"`
	Answers         map[string]int `json:"answers"`
}

// metadataBlob is the on-disk shape of conversations.metadata.  Keeping the
// quiz under its own key leaves room for other conversation metadata.
type metadataBlob struct {
	Quiz *State `json:"quiz_state,omitempty"`
}

// StateFromMetadata decodes the quiz state out of a conversation's metadata
// blob.  Nil, empty or malformed metadata yields the inactive zero state, so
// business logic never sees raw JSON.
func StateFromMetadata(raw *string) State {
	if raw == nil || *raw == "" {
		return State{}
	}
	var blob metadataBlob
	if err := json.Unmarshal([]byte(*raw), &blob); err != nil || blob.Quiz == nil {
		return State{}
	}
	return *blob.Quiz
}

// ToMetadata encodes the state back into the metadata blob format.
func (s State) ToMetadata() (string, error) {
	b, err := json.Marshal(metadataBlob{Quiz: &s})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Start returns a fresh active state positioned at the first question.
// Starting over an already-active machine restarts the diagnostic.
func Start() State {
	return State{Active: true, CurrentQuestion: 0, Answers: map[string]int{}}
}

// Current returns the question the machine is waiting on.  It reports false
// when the machine is inactive.
func (s State) Current() (Question, bool) {
	if !s.Active {
		return Question{}, false
	}
	return QuestionAt(s.CurrentQuestion)
}

// Answer records a value for the question the machine is currently waiting
// on.  It returns the advanced state, whether the diagnostic just finished,
// and whether the event was accepted at all.  An answer while inactive, for
// the wrong question, or with an out-of-range value is rejected unchanged;
// the machine never advances without an active session.
func (s State) Answer(questionID string, value int) (State, bool, bool) {
	current, ok := s.Current()
	if !ok || current.ID != questionID {
		return s, false, false
	}
	if value < 0 || value > MaxAnswerValue {
		return s, false, false
	}

	next := State{
		Active:          true,
		CurrentQuestion: s.CurrentQuestion + 1,
		Answers:         make(map[string]int, len(s.Answers)+1),
	}
	for k, v := range s.Answers {
		next.Answers[k] = v
	}
	next.Answers[questionID] = value

	if next.CurrentQuestion >= QuestionCount {
		next.Active = false
		return next, true, true
	}
	return next, false, true
}

// Score computes the 0-100 financial index from the recorded answers:
// round(100 * sum / (3 * QuestionCount)).
func (s State) Score() int {
	sum := 0
	for _, v := range s.Answers {
		sum += v
	}
	return int(math.Round(100 * float64(sum) / float64(MaxAnswerValue*QuestionCount)))
}
