// Package quiz implements the five-question financial-index diagnostic: the
// fixed question catalog, the per-conversation state machine, and the score
// and stage computation.  All copy here is product copy, shown to users as-is.
package quiz

// Option is one selectable answer.  Value contributes to the index score.
type Option struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// Question is one step of the diagnostic.
type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []Option `json:"options"`
}

// QuestionCount is the fixed length of the diagnostic.
const QuestionCount = 5

// MaxAnswerValue is the highest score a single answer can contribute.
const MaxAnswerValue = 3

var questions = [QuestionCount]Question{
	{
		ID:   "income_tracking",
		Text: "¿Sabes exactamente cuánto dinero entra cada mes?",
		Options: []Option{
			{Value: 3, Label: "Sí, al centavo"},
			{Value: 2, Label: "Más o menos"},
			{Value: 1, Label: "No realmente"},
			{Value: 0, Label: "No tengo idea"},
		},
	},
	{
		ID:   "expense_tracking",
		Text: "¿Sabes en qué se va tu dinero cada mes?",
		Options: []Option{
			{Value: 3, Label: "Sí, tengo todo categorizado"},
			{Value: 2, Label: "Tengo una idea general"},
			{Value: 1, Label: "Solo las cosas grandes"},
			{Value: 0, Label: "El dinero desaparece"},
		},
	},
	{
		ID:   "savings",
		Text: "¿Logras ahorrar algo cada mes?",
		Options: []Option{
			{Value: 3, Label: "Sí, automáticamente"},
			{Value: 2, Label: "A veces, cuando puedo"},
			{Value: 1, Label: "Rara vez"},
			{Value: 0, Label: "No me queda nada"},
		},
	},
	{
		ID:   "emergency_fund",
		Text: "¿Tienes un fondo de emergencia?",
		Options: []Option{
			{Value: 3, Label: "Sí, más de 3 meses de gastos"},
			{Value: 2, Label: "Algo, pero no suficiente"},
			{Value: 1, Label: "Muy poco"},
			{Value: 0, Label: "No tengo nada guardado"},
		},
	},
	{
		ID:   "debt",
		Text: "¿Cómo está tu situación de deudas?",
		Options: []Option{
			{Value: 3, Label: "No tengo deudas / solo hipoteca"},
			{Value: 2, Label: "Deudas controladas, pago a tiempo"},
			{Value: 1, Label: "Tengo deudas que me cuestan"},
			{Value: 0, Label: "Las deudas me abruman"},
		},
	},
}

// QuestionAt returns the question at a 0-based index.
func QuestionAt(index int) (Question, bool) {
	if index < 0 || index >= QuestionCount {
		return Question{}, false
	}
	return questions[index], true
}

// Stage is one of the three coaching tiers a score maps into.
type Stage struct {
	Name    string
	Message string
	Color   string
}

// Stage thresholds are product constants: the top tier starts at 70, the
// middle at 40, entry below that.
var (
	stageInvest = Stage{Name: "Etapa 2", Message: "Estás listo para invertir con sistema", Color: "emerald"}
	stageMargin = Stage{Name: "Etapa 1", Message: "Tienes base, pero necesitas crear más margen", Color: "amber"}
	stageOrder  = Stage{Name: "Etapa 0", Message: "Empecemos ordenando tu casa financiera", Color: "violet"}
)

// StageFor maps a 0-100 score to its coaching stage.
func StageFor(score int) Stage {
	switch {
	case score >= 70:
		return stageInvest
	case score >= 40:
		return stageMargin
	default:
		return stageOrder
	}
}
