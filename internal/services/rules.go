package services

// The kind of question being asked.
type QuestionKind int

const (
	// Exactly one choice.
	SingleChoice QuestionKind = iota + 1
	// One or more distinct choices.
	MultiChoice
	// One or more distinct choices plus at most one free-text entry.
	MultiChoiceWithText
)

func (k QuestionKind) String() string {
	switch k {
	case SingleChoice:
		return "single-choice"
	case MultiChoice:
		return "multi-choice"
	case MultiChoiceWithText:
		return "multi-choice-with-text"
	default:
		return "unknown"
	}
}

// QuestionRule declares how one question of a survey is answered.
//
// A rule with ConditionalOn is only asked when Condition, an expr expression
// over the first choice of earlier questions, evaluates to true. It must be
// empty otherwise.
type QuestionRule struct {
	ID            string
	Kind          QuestionKind
	Min           int
	Max           int
	ConditionalOn string
	Condition     string
}

// MaxCount is the longest list the question accepts.
func (r QuestionRule) MaxCount() int {
	size := r.Max - r.Min + 1
	switch r.Kind {
	case SingleChoice:
		return 1
	case MultiChoiceWithText:
		return size + 1
	default:
		return size
	}
}

func (r QuestionRule) InRange(choice int) bool {
	return choice >= r.Min && choice <= r.Max
}

// Schema lists a survey's questions in asking order.
type Schema []QuestionRule

// NoSymptomChoice is the q2 answer of survey A that skips q2_1.
const NoSymptomChoice = 1

// DefaultRules is the rule table of every supported survey type.
var DefaultRules = map[SurveyType]Schema{
	// post-vaccination symptom report
	SurveyTypeA: {
		{ID: "q1", Kind: MultiChoiceWithText, Min: 1, Max: 7},
		{ID: "q2", Kind: SingleChoice, Min: 1, Max: 6},
		{ID: "q2_1", Kind: SingleChoice, Min: 1, Max: 4, ConditionalOn: "q2", Condition: "q2 != 1"},
		{ID: "q3", Kind: MultiChoiceWithText, Min: 1, Max: 4},
		{ID: "q4", Kind: MultiChoiceWithText, Min: 1, Max: 5},
		{ID: "q5", Kind: SingleChoice, Min: 1, Max: 4},
	},
	// pre-vaccination intent
	SurveyTypeB: {
		{ID: "q1", Kind: SingleChoice, Min: 1, Max: 3},
		{ID: "q2", Kind: MultiChoiceWithText, Min: 1, Max: 6},
		{ID: "q3", Kind: SingleChoice, Min: 1, Max: 5},
	},
	// not vaccinated
	SurveyTypeC: {
		{ID: "q1", Kind: SingleChoice, Min: 1, Max: 4},
		{ID: "q2", Kind: MultiChoiceWithText, Min: 1, Max: 5},
		{ID: "q3", Kind: MultiChoice, Min: 1, Max: 4},
	},
}
