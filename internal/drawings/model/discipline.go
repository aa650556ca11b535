package model

import (
	"fmt"
	"strings"
)

// Discipline tags the engineering domain of a drawing.
type Discipline string

const (
	DisciplineArchitecture Discipline = "ARQ"
	DisciplineStructural   Discipline = "EST"
	DisciplineElectrical   Discipline = "ELE"
	DisciplinePlumbing     Discipline = "SAN"
	DisciplineMechanical   Discipline = "MEC"
	DisciplineCivil        Discipline = "CIV"
	DisciplineOther        Discipline = "OTR"

	// DisciplineAll is the filter sentinel. It is never a drawing's discipline.
	DisciplineAll Discipline = "all"
)

var disciplines = []Discipline{
	DisciplineArchitecture,
	DisciplineStructural,
	DisciplineElectrical,
	DisciplinePlumbing,
	DisciplineMechanical,
	DisciplineCivil,
	DisciplineOther,
}

var disciplineLabels = map[Discipline]string{
	DisciplineArchitecture: "architecture",
	DisciplineStructural:   "structural",
	DisciplineElectrical:   "electrical",
	DisciplinePlumbing:     "plumbing",
	DisciplineMechanical:   "mechanical",
	DisciplineCivil:        "civil",
	DisciplineOther:        "other",
}

// Disciplines returns every valid discipline in display order.
func Disciplines() []Discipline {
	out := make([]Discipline, len(disciplines))
	copy(out, disciplines)
	return out
}

// IsValid reports whether d is one of the fixed disciplines.
func (d Discipline) IsValid() bool {
	_, ok := disciplineLabels[d]
	return ok
}

// Label returns the human-readable name.
func (d Discipline) Label() string {
	if l, ok := disciplineLabels[d]; ok {
		return l
	}
	return string(d)
}

// ParseDiscipline accepts a code ("est") or a label ("structural") in any case.
func ParseDiscipline(s string) (Discipline, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, string(DisciplineAll)) {
		return DisciplineAll, nil
	}
	for _, d := range disciplines {
		if strings.EqualFold(s, string(d)) || strings.EqualFold(s, disciplineLabels[d]) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown discipline %q", s)
}

// ParseDisciplineLenient is ParseDiscipline mapping unknown values to other.
func ParseDisciplineLenient(s string) Discipline {
	d, err := ParseDiscipline(s)
	if err != nil || d == DisciplineAll {
		return DisciplineOther
	}
	return d
}
