package services

import (
	"strings"
	"time"

	"github.com/paulexconde/vaxreview/internal/models"
)

// FeedFilter lists the optional feed constraints. A nil field means no
// constraint on that attribute.
type FeedFilter struct {
	Q                   *string `json:"q,omitempty"`
	MinAge              *int    `json:"min_age,omitempty"`
	MaxAge              *int    `json:"max_age,omitempty"`
	Gender              *string `json:"gender,omitempty"`
	VaccineType         *string `json:"vaccine_type,omitempty"`
	IsCrossed           *bool   `json:"is_crossed,omitempty"`
	Round               *string `json:"round,omitempty"`
	IsPregnant          *bool   `json:"is_pregnant,omitempty"`
	IsUnderlyingDisease *bool   `json:"is_underlying_disease,omitempty"`
}

const noopClause = "TRUE"

// Predicate is one conjunct of the feed query. Clause uses `?` binds; Match is
// the same test applied to a row already in memory.
type Predicate struct {
	Name   string
	Clause string
	Args   []any
	match  func(row models.FeedRow) bool
}

// Active reports whether the predicate constrains anything.
func (p Predicate) Active() bool {
	return p.match != nil
}

func (p Predicate) Match(row models.FeedRow) bool {
	if p.match == nil {
		return true
	}
	return p.match(row)
}

func noop(name string) Predicate {
	return Predicate{Name: name, Clause: noopClause}
}

// Predicates always has one entry per filter field plus the eligibility rule,
// in a fixed order.
type Predicates []Predicate

// Where joins every active clause with AND.
func (ps Predicates) Where() (string, []any) {
	clauses := make([]string, 0, len(ps))
	var args []any
	for _, p := range ps {
		if !p.Active() {
			continue
		}
		clauses = append(clauses, p.Clause)
		args = append(args, p.Args...)
	}
	if len(clauses) == 0 {
		return noopClause, nil
	}
	return strings.Join(clauses, " AND "), args
}

func (ps Predicates) Match(row models.FeedRow) bool {
	for _, p := range ps {
		if !p.Match(row) {
			return false
		}
	}
	return true
}

// Filter keeps the rows every predicate accepts, preserving order.
func (ps Predicates) Filter(rows []models.FeedRow) []models.FeedRow {
	out := make([]models.FeedRow, 0, len(rows))
	for _, row := range rows {
		if ps.Match(row) {
			out = append(out, row)
		}
	}
	return out
}

// BirthYearForAge converts an age into the matching birth year, counting the
// birth year as age 1.
func BirthYearForAge(age int, now time.Time) int {
	return now.Year() - age + 1
}

// CompileFeedFilter turns f into predicates evaluated against reviews r,
// their authors u and their surveys s.
func CompileFeedFilter(f FeedFilter, now time.Time) Predicates {
	return Predicates{
		eligibility(),
		contentContains(f.Q),
		ageRange(f.MinAge, f.MaxAge, now),
		stringEquals("gender", "u.gender", f.Gender, func(r models.FeedRow) *string { return &r.AuthorGender }),
		stringEquals("vaccine_type", "s.vaccine_type", f.VaccineType, func(r models.FeedRow) *string { return r.VaccineType }),
		boolEquals("is_crossed", "s.is_crossed", f.IsCrossed, func(r models.FeedRow) *bool { return r.IsCrossed }),
		stringEquals("round", "s.vaccine_round", f.Round, func(r models.FeedRow) *string { return r.VaccineRound }),
		boolEquals("is_pregnant", "s.is_pregnant", f.IsPregnant, func(r models.FeedRow) *bool { return r.IsPregnant }),
		boolEquals("is_underlying_disease", "s.is_underlying_disease", f.IsUnderlyingDisease, func(r models.FeedRow) *bool { return r.IsUnderlyingDisease }),
	}
}

// eligibility is injected regardless of the filter.
func eligibility() Predicate {
	return Predicate{
		Name:   "eligibility",
		Clause: "r.is_delete = FALSE AND u.is_active = TRUE",
		match: func(r models.FeedRow) bool {
			return !r.IsDelete && r.AuthorActive
		},
	}
}

// contentContains is a plain case-sensitive substring test.
func contentContains(q *string) Predicate {
	if q == nil || *q == "" {
		return noop("q")
	}
	needle := *q
	return Predicate{
		Name:   "q",
		Clause: "strpos(r.content, ?) > 0",
		Args:   []any{needle},
		match: func(r models.FeedRow) bool {
			return strings.Contains(r.Content, needle)
		},
	}
}

// ageRange needs both bounds. The youngest age maps to the latest birth year.
func ageRange(minAge, maxAge *int, now time.Time) Predicate {
	if minAge == nil || maxAge == nil {
		return noop("age")
	}
	earliest := BirthYearForAge(*maxAge, now)
	latest := BirthYearForAge(*minAge, now)
	return Predicate{
		Name:   "age",
		Clause: "u.birth_year BETWEEN ? AND ?",
		Args:   []any{earliest, latest},
		match: func(r models.FeedRow) bool {
			return r.AuthorBirthYear >= earliest && r.AuthorBirthYear <= latest
		},
	}
}

func stringEquals(name, column string, want *string, get func(models.FeedRow) *string) Predicate {
	if want == nil {
		return noop(name)
	}
	value := *want
	return Predicate{
		Name:   name,
		Clause: column + " = ?",
		Args:   []any{value},
		match: func(r models.FeedRow) bool {
			got := get(r)
			return got != nil && *got == value
		},
	}
}

// boolEquals is tri-state: nil is no constraint, false requires false.
func boolEquals(name, column string, want *bool, get func(models.FeedRow) *bool) Predicate {
	if want == nil {
		return noop(name)
	}
	value := *want
	return Predicate{
		Name:   name,
		Clause: column + " = ?",
		Args:   []any{value},
		match: func(r models.FeedRow) bool {
			got := get(r)
			return got != nil && *got == value
		},
	}
}
