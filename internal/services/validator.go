package services

import (
	"errors"
	"fmt"
	"sort"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/paulexconde/vaxreview/pkg/fault"
)

// Checks answer sets against a rule table.
type AnswerValidator interface {
	Validate(surveyType SurveyType, raw RawAnswers) (AnswerSet, error)
	Supports(surveyType SurveyType) bool
}

type compiledRule struct {
	QuestionRule
	program *vm.Program
}

type validatorImpl struct {
	schemas map[SurveyType][]compiledRule
}

// NewAnswerValidator compiles every rule condition up front, so a bad table
// fails at startup rather than on the first submission.
func NewAnswerValidator(rules map[SurveyType]Schema) (AnswerValidator, error) {
	v := &validatorImpl{schemas: make(map[SurveyType][]compiledRule, len(rules))}

	for surveyType, schema := range rules {
		seen := make(map[string]bool, len(schema))
		compiled := make([]compiledRule, 0, len(schema))

		for _, rule := range schema {
			if seen[rule.ID] {
				return nil, fmt.Errorf("survey %s: duplicate question %s", surveyType, rule.ID)
			}
			if rule.Min > rule.Max {
				return nil, fmt.Errorf("survey %s: question %s has an empty range", surveyType, rule.ID)
			}

			cr := compiledRule{QuestionRule: rule}
			if rule.ConditionalOn != "" {
				if !seen[rule.ConditionalOn] {
					return nil, fmt.Errorf("survey %s: question %s depends on %s, which is not asked before it", surveyType, rule.ID, rule.ConditionalOn)
				}
				program, err := expr.Compile(rule.Condition, expr.AllowUndefinedVariables(), expr.AsBool())
				if err != nil {
					return nil, fmt.Errorf("survey %s: question %s condition: %w", surveyType, rule.ID, err)
				}
				cr.program = program
			}

			seen[rule.ID] = true
			compiled = append(compiled, cr)
		}

		v.schemas[surveyType] = compiled
	}

	return v, nil
}

func (v *validatorImpl) Supports(surveyType SurveyType) bool {
	_, ok := v.schemas[surveyType]
	return ok
}

// Validate returns the normalized answers, or fault.ValidationErrors with one
// entry per offending question.
func (v *validatorImpl) Validate(surveyType SurveyType, raw RawAnswers) (AnswerSet, error) {
	schema, ok := v.schemas[surveyType]
	if !ok {
		return nil, fault.UnsupportedSurveyType(string(surveyType))
	}

	var errs fault.ValidationErrors
	known := make(map[string]bool, len(schema))
	for _, rule := range schema {
		known[rule.ID] = true
	}
	unknown := make([]string, 0)
	for id := range raw {
		if !known[id] {
			unknown = append(unknown, id)
		}
	}
	sort.Strings(unknown)
	for _, id := range unknown {
		errs = append(errs, fault.NewValidationError(id, raw[id], "unknown question"))
	}

	result := make(AnswerSet, len(schema))
	// first choice of every valid answer, the environment of conditions
	env := make(map[string]any, len(schema))

	for _, rule := range schema {
		value := raw[rule.ID]

		answer, err := checkShape(rule.QuestionRule, value)
		if err != nil {
			errs = append(errs, fault.NewValidationError(rule.ID, value, err.Error()))
			continue
		}

		required := true
		if rule.program != nil {
			if _, ok := env[rule.ConditionalOn]; !ok {
				// the controlling answer is already reported as invalid
				continue
			}
			required, err = evaluateCondition(rule.program, env)
			if err != nil {
				return nil, fault.NewInternalError("evaluate condition of "+rule.ID, err)
			}
		}

		switch {
		case required && answer.Empty():
			errs = append(errs, fault.NewValidationError(rule.ID, value, "answer required"))
			continue
		case !required && !answer.Empty():
			errs = append(errs, fault.NewValidationError(rule.ID, value,
				fmt.Sprintf("must be empty when %s", describeSkip(rule))))
			continue
		case !required:
			continue
		}

		result[rule.ID] = answer
		if first, ok := answer.First(); ok {
			env[rule.ID] = first
		}
	}

	if err := errs.OrNil(); err != nil {
		return nil, err
	}
	return result, nil
}

// checkShape applies range, cardinality and free-text rules. An empty answer
// passes here; whether it may be empty is decided by the caller.
func checkShape(rule QuestionRule, value any) (Answer, error) {
	elems, err := flattenAnswer(value)
	if err != nil {
		return Answer{}, err
	}
	if len(elems) == 0 {
		return Answer{}, nil
	}

	answer, texts := splitElements(elems)

	if len(elems) > rule.MaxCount() {
		return Answer{}, fmt.Errorf("at most %d answers allowed", rule.MaxCount())
	}

	switch rule.Kind {
	case SingleChoice, MultiChoice:
		if len(texts) > 0 {
			return Answer{}, errors.New("free-text answer not allowed")
		}
	case MultiChoiceWithText:
		if len(texts) > 1 {
			return Answer{}, errors.New("at most one free-text answer")
		}
	}

	seen := make(map[int]bool, len(answer.Choices))
	for _, c := range answer.Choices {
		if !rule.InRange(c) {
			return Answer{}, fmt.Errorf("choice %d out of range [%d, %d]", c, rule.Min, rule.Max)
		}
		if seen[c] {
			return Answer{}, fmt.Errorf("choice %d selected twice", c)
		}
		seen[c] = true
	}

	if len(texts) == 1 {
		answer.Text = &texts[0]
	}
	return answer, nil
}

func describeSkip(rule compiledRule) string {
	return fmt.Sprintf("%s is not met", rule.Condition)
}

func evaluateCondition(program *vm.Program, input map[string]any) (bool, error) {
	output, err := expr.Run(program, input)
	if err != nil {
		return false, err
	}

	result, ok := output.(bool)
	if !ok {
		return false, errors.New("expression did not return a boolean")
	}

	return result, nil
}
