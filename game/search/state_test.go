package search

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/mcp-training/pacmanplanner/game/maze"
)

func TestCellSet_Immutable(t *testing.T) {
	base := NewCellSet(pos(2, 2), pos(1, 3), pos(2, 2))
	require.Equal(t, 2, base.Len())
	assert.Equal(t, []maze.Position{pos(1, 3), pos(2, 2)}, base.Slice())

	added := base.With(pos(0, 5))
	removed := base.Without(pos(1, 3))

	assert.Equal(t, 2, base.Len())
	assert.Equal(t, 3, added.Len())
	assert.Equal(t, 1, removed.Len())
	assert.True(t, added.Has(pos(0, 5)))
	assert.False(t, removed.Has(pos(1, 3)))
	assert.True(t, base.Has(pos(1, 3)))

	assert.True(t, base.Without(pos(9, 9)).Equal(base))
	assert.True(t, base.With(pos(2, 2)).Equal(base))
	assert.True(t, NewCellSet(pos(4, 4)).Without(pos(4, 4)).Empty())
}

func TestCellSet_JSON(t *testing.T) {
	data, err := json.Marshal(CellSet{})
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))

	var s CellSet
	require.NoError(t, json.Unmarshal([]byte(`[{"row":3,"col":1},{"row":1,"col":2},{"row":3,"col":1}]`), &s))
	assert.Equal(t, []maze.Position{pos(1, 2), pos(3, 1)}, s.Slice())
}

func TestState_KeyIsCanonical(t *testing.T) {
	a := State{
		Position: pos(1, 1),
		Food:     NewCellSet(pos(3, 3), pos(2, 2)),
		Pies:     NewCellSet(pos(1, 4)),
		Phase:    2,
		Vanished: NewCellSet(pos(0, 1)),
	}
	b := State{
		Position: pos(1, 1),
		Food:     NewCellSet(pos(2, 2)).With(pos(3, 3)),
		Pies:     NewCellSet(pos(1, 4)),
		Phase:    2,
		Vanished: NewCellSet(pos(0, 1)),
	}
	assert.Equal(t, a.Key(), b.Key())
	assert.True(t, a.Equal(b))

	variants := []State{
		{Position: pos(1, 2), Food: a.Food, Pies: a.Pies, Phase: 2, Vanished: a.Vanished},
		{Position: a.Position, Food: a.Food.Without(pos(2, 2)), Pies: a.Pies, Phase: 2, Vanished: a.Vanished},
		{Position: a.Position, Food: a.Food, Pies: CellSet{}, Phase: 2, Vanished: a.Vanished},
		{Position: a.Position, Food: a.Food, Pies: a.Pies, Phase: 3, Vanished: a.Vanished},
		{Position: a.Position, Food: a.Food, Pies: a.Pies, Phase: 2, Vanished: CellSet{}},
		// same cells moved between sets
		{Position: a.Position, Food: a.Food.With(pos(1, 4)), Pies: CellSet{}, Phase: 2, Vanished: a.Vanished},
	}
	for i, v := range variants {
		assert.NotEqual(t, a.Key(), v.Key(), "variant %d", i)
		assert.False(t, a.Equal(v), "variant %d", i)
	}
}

func TestInitialState(t *testing.T) {
	g := mustGrid(t, mixedLayout)
	s := InitialState(g)

	assert.Equal(t, pos(1, 1), s.Position)
	assert.Equal(t, 3, s.Food.Len())
	assert.Equal(t, 1, s.Pies.Len())
	assert.Equal(t, 0, s.Phase)
	assert.True(t, s.Vanished.Empty())
	assert.False(t, s.IsGoal())
}

func TestState_Overlay(t *testing.T) {
	g := mustGrid(t, phaseLayout)
	s := State{
		Position: pos(2, 5),
		Food:     NewCellSet(pos(1, 1)),
		Phase:    3,
		Vanished: NewCellSet(pos(2, 4)),
	}

	rows := g.Render(s.Overlay())
	assert.Equal(t, []string{
		"%%%%%%%%",
		"%.   %%%",
		"%   ~P%%",
		"%    %%%",
		"%%%%%%%%",
	}, rows)
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		in   string
		want Action
	}{
		{"North", North},
		{"south", South},
		{" E ", East},
		{"left", West},
		{"STOP", Stop},
	}
	for _, tt := range tests {
		got, err := ParseAction(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseAction("jump")
	assert.ErrorIs(t, err, ErrUnknownAction)

	_, err = ParseActions([]string{"n", "s", "x"})
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.Contains(t, err.Error(), "action 3")
}
