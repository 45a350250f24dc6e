package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartPositionsAtFirstQuestion(t *testing.T) {
	s := Start()
	require.True(t, s.Active)
	require.Equal(t, 0, s.CurrentQuestion)

	q, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "income_tracking", q.ID)
}

func TestAnswerAdvancesThroughAllQuestions(t *testing.T) {
	s := Start()
	for i := 0; i < QuestionCount; i++ {
		q, ok := s.Current()
		require.True(t, ok, "question %d should be available", i)

		next, done, accepted := s.Answer(q.ID, 2)
		require.True(t, accepted)
		assert.Equal(t, i == QuestionCount-1, done)

		// Invariant: while active, position equals recorded answers.
		assert.Equal(t, i+1, next.CurrentQuestion)
		assert.Len(t, next.Answers, i+1)
		s = next
	}
	assert.False(t, s.Active, "machine deactivates after the last answer")
}

func TestAnswerRejectsWhenInactive(t *testing.T) {
	var s State // zero value is inactive
	next, done, accepted := s.Answer("income_tracking", 1)
	assert.False(t, accepted)
	assert.False(t, done)
	assert.Equal(t, s, next)
}

func TestAnswerRejectsWrongQuestion(t *testing.T) {
	s := Start()
	next, _, accepted := s.Answer("savings", 1)
	assert.False(t, accepted)
	assert.Equal(t, 0, next.CurrentQuestion)
}

func TestAnswerRejectsOutOfRangeValue(t *testing.T) {
	s := Start()
	for _, v := range []int{-1, MaxAnswerValue + 1, 99} {
		_, _, accepted := s.Answer("income_tracking", v)
		assert.False(t, accepted, "value %d must be rejected", v)
	}
}

func TestAnswerDoesNotMutateReceiver(t *testing.T) {
	s := Start()
	next, _, accepted := s.Answer("income_tracking", 3)
	require.True(t, accepted)

	next.Answers["income_tracking"] = 0
	assert.Empty(t, s.Answers, "original answer map must stay untouched")
}

func TestScoreIsDeterministic(t *testing.T) {
	cases := []struct {
		name    string
		answers map[string]int
		want    int
	}{
		{"all zeros", map[string]int{"income_tracking": 0, "expense_tracking": 0, "savings": 0, "emergency_fund": 0, "debt": 0}, 0},
		{"all max", map[string]int{"income_tracking": 3, "expense_tracking": 3, "savings": 3, "emergency_fund": 3, "debt": 3}, 100},
		{"mixed", map[string]int{"income_tracking": 1, "expense_tracking": 2, "savings": 0, "emergency_fund": 3, "debt": 1}, 47},
		{"rounds down", map[string]int{"income_tracking": 2, "expense_tracking": 2, "savings": 2, "emergency_fund": 2, "debt": 0}, 53},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := State{Answers: tc.answers}
			assert.Equal(t, tc.want, s.Score())
		})
	}
}

func TestStageThresholds(t *testing.T) {
	assert.Equal(t, "Etapa 2", StageFor(100).Name)
	assert.Equal(t, "Etapa 2", StageFor(70).Name)
	assert.Equal(t, "Etapa 1", StageFor(69).Name)
	assert.Equal(t, "Etapa 1", StageFor(40).Name)
	assert.Equal(t, "Etapa 0", StageFor(39).Name)
	assert.Equal(t, "Etapa 0", StageFor(0).Name)
}

func TestMetadataRoundTrip(t *testing.T) {
	s := Start()
	s, _, _ = s.Answer("income_tracking", 2)

	raw, err := s.ToMetadata()
	require.NoError(t, err)

	got := StateFromMetadata(&raw)
	assert.Equal(t, s, got)
}

func TestStateFromMetadataTolerantDecode(t *testing.T) {
	empty := ""
	garbage := "not json"
	unrelated := `{"theme":"dark"}`

	for _, raw := range []*string{nil, &empty, &garbage, &unrelated} {
		s := StateFromMetadata(raw)
		assert.False(t, s.Active)
		assert.Equal(t, 0, s.CurrentQuestion)
	}
}
