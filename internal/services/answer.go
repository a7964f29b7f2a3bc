package services

import (
	"encoding/json"
	"fmt"
	"math"
)

type SurveyType string

const (
	SurveyTypeA SurveyType = "A"
	SurveyTypeB SurveyType = "B"
	SurveyTypeC SurveyType = "C"
)

// RawAnswers is an answer set as the client sent it, keyed by question id.
// Values are a choice number, a free-text string, or a list mixing both.
type RawAnswers map[string]any

// Answer is one validated response: the selected choices in submission order
// and the optional free-text entry.
type Answer struct {
	Choices []int
	Text    *string
}

func (a Answer) Empty() bool {
	return len(a.Choices) == 0 && a.Text == nil
}

// First returns the first selected choice, used by conditional rules.
func (a Answer) First() (int, bool) {
	if len(a.Choices) == 0 {
		return 0, false
	}
	return a.Choices[0], true
}

// MarshalJSON writes the mixed list form clients submit, e.g. [1, 3, "other"].
func (a Answer) MarshalJSON() ([]byte, error) {
	out := make([]any, 0, len(a.Choices)+1)
	for _, c := range a.Choices {
		out = append(out, c)
	}
	if a.Text != nil {
		out = append(out, *a.Text)
	}
	return json.Marshal(out)
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	elems, err := flattenAnswer(raw)
	if err != nil {
		return err
	}
	parsed, texts := splitElements(elems)
	if len(texts) > 1 {
		return fmt.Errorf("answer carries %d free-text entries", len(texts))
	}
	*a = parsed
	if len(texts) == 1 {
		a.Text = &texts[0]
	}
	return nil
}

// AnswerSet is the normalized form of RawAnswers.
type AnswerSet map[string]Answer

// Raw converts the set back into the shape the validator accepts.
func (s AnswerSet) Raw() RawAnswers {
	raw := make(RawAnswers, len(s))
	for id, a := range s {
		list := make([]any, 0, len(a.Choices)+1)
		for _, c := range a.Choices {
			list = append(list, c)
		}
		if a.Text != nil {
			list = append(list, *a.Text)
		}
		raw[id] = list
	}
	return raw
}

// element is a single parsed list entry, either a choice or free text.
type element struct {
	choice int
	text   *string
}

// flattenAnswer accepts a scalar as a one-element list.
func flattenAnswer(raw any) ([]element, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []any:
		elems := make([]element, 0, len(v))
		for _, item := range v {
			e, err := parseElement(item)
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
		}
		return elems, nil
	case []int:
		elems := make([]element, 0, len(v))
		for _, c := range v {
			elems = append(elems, element{choice: c})
		}
		return elems, nil
	default:
		e, err := parseElement(v)
		if err != nil {
			return nil, err
		}
		return []element{e}, nil
	}
}

func parseElement(raw any) (element, error) {
	switch v := raw.(type) {
	case string:
		return element{text: &v}, nil
	case int:
		return element{choice: v}, nil
	case int64:
		return element{choice: int(v)}, nil
	case float64:
		if v != math.Trunc(v) {
			return element{}, fmt.Errorf("choice %v is not a whole number", v)
		}
		return element{choice: int(v)}, nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return element{}, fmt.Errorf("choice %q is not a whole number", v)
		}
		return element{choice: int(n)}, nil
	default:
		return element{}, fmt.Errorf("unsupported answer element %T", raw)
	}
}

func splitElements(elems []element) (Answer, []string) {
	var a Answer
	var texts []string
	for _, e := range elems {
		if e.text != nil {
			texts = append(texts, *e.text)
			continue
		}
		a.Choices = append(a.Choices, e.choice)
	}
	return a, texts
}
