// Package filter derives the visible subset of the drawing collection from a
// search term and a discipline selector.
package filter

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/planroom/drawings/internal/drawings/model"
)

// State is the filter input. The zero value matches everything.
type State struct {
	SearchTerm string
	Discipline model.Discipline // empty or model.DisciplineAll disables the discipline filter
}

// IsZero reports whether the state lets every drawing through.
func (s State) IsZero() bool {
	return strings.TrimSpace(s.SearchTerm) == "" && !s.filtersDiscipline()
}

func (s State) filtersDiscipline() bool {
	return s.Discipline != "" && s.Discipline != model.DisciplineAll
}

// Apply returns the drawings matching state, in collection order. The result
// is always a new, non-nil slice; entries are the same values as in drawings.
func Apply(drawings []model.Drawing, state State) []model.Drawing {
	fold := cases.Fold()
	term := fold.String(strings.TrimSpace(state.SearchTerm))

	out := make([]model.Drawing, 0, len(drawings))
	for _, d := range drawings {
		if state.filtersDiscipline() && d.Discipline != state.Discipline {
			continue
		}
		if term != "" &&
			!strings.Contains(fold.String(d.Code), term) &&
			!strings.Contains(fold.String(d.Title), term) {
			continue
		}
		out = append(out, d)
	}
	return out
}
