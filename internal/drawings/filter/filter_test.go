package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/planroom/drawings/internal/drawings/model"
)

func sample() []model.Drawing {
	return []model.Drawing{
		{ID: "1", Code: "A-1", Title: "Plan Norte", Discipline: model.DisciplineArchitecture},
		{ID: "2", Code: "B-2", Title: "Plan Sur", Discipline: model.DisciplineStructural},
	}
}

func ids(ds []model.Drawing) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.ID
	}
	return out
}

func TestApply(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  []string
	}{
		{"search is case-insensitive on title", State{SearchTerm: "norte"}, []string{"1"}},
		{"search matches code", State{SearchTerm: "b-2"}, []string{"2"}},
		{"discipline exact match", State{Discipline: model.DisciplineStructural}, []string{"2"}},
		{"all and empty term keep order", State{Discipline: model.DisciplineAll}, []string{"1", "2"}},
		{"zero state", State{}, []string{"1", "2"}},
		{"common term", State{SearchTerm: "  PLAN "}, []string{"1", "2"}},
		{"term and discipline combine", State{SearchTerm: "plan", Discipline: model.DisciplineArchitecture}, []string{"1"}},
		{"no match", State{SearchTerm: "este"}, []string{}},
		{"discipline with no drawings", State{Discipline: model.DisciplineElectrical}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Apply(sample(), tt.state)))
		})
	}
}

func TestApplyUnicodeFolding(t *testing.T) {
	ds := []model.Drawing{{ID: "1", Code: "E-3", Title: "FACHADA ÑUÑOA"}}
	assert.Len(t, Apply(ds, State{SearchTerm: "ñuñoa"}), 1)
}

func TestApplyReturnsNewSlice(t *testing.T) {
	in := sample()
	out := Apply(in, State{})
	assert.NotNil(t, Apply(nil, State{}))
	out[0] = model.Drawing{ID: "x"}
	assert.Equal(t, "1", in[0].ID)
}

func TestIsZero(t *testing.T) {
	assert.True(t, State{}.IsZero())
	assert.True(t, State{SearchTerm: "  ", Discipline: model.DisciplineAll}.IsZero())
	assert.False(t, State{SearchTerm: "a"}.IsZero())
	assert.False(t, State{Discipline: model.DisciplineCivil}.IsZero())
}
