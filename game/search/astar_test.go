package search

import (
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/mcp-training/pacmanplanner/game/maze"
)

func TestSolve_Corridor(t *testing.T) {
	g := mustGrid(t, corridorLayout)

	for _, h := range []string{HeuristicMFD, HeuristicMST} {
		t.Run(h, func(t *testing.T) {
			result, err := Solve(g, h)
			require.NoError(t, err)
			require.True(t, result.Solved())
			assert.NoError(t, result.Err())
			assert.Equal(t, 11, result.Cost)
			assert.Equal(t, []Action{West, West, West, East, East, East, East, East, East, East, East}, result.Actions)
			assert.Equal(t, h, result.Heuristic)
		})
	}
}

func TestSolve_OpenRoomFoodTwoStepsAway(t *testing.T) {
	g := mustGrid(t, []string{
		"P .  ",
		"     ",
		"     ",
		"     ",
		"     ",
	})
	require.Equal(t, 5, g.Height())

	for _, h := range []string{HeuristicNull, HeuristicMFD, HeuristicMST} {
		t.Run(h, func(t *testing.T) {
			result, err := Solve(g, h)
			require.NoError(t, err)
			require.True(t, result.Solved())
			assert.Equal(t, 2, result.Cost)
			assert.Equal(t, []Action{East, East}, result.Actions)

			states, err := Replay(g, result.Actions)
			require.NoError(t, err)
			assert.Equal(t, pos(0, 2), states[len(states)-1].Position)
			assert.True(t, states[len(states)-1].IsGoal())
		})
	}
}

func TestSolve_PieOpensSealedFood(t *testing.T) {
	g := mustGrid(t, phaseLayout)

	result, err := Solve(g, HeuristicMST)
	require.NoError(t, err)
	require.Equal(t, StatusSolved, result.Status)
	assert.Equal(t, 5, result.Cost)

	states, err := Replay(g, result.Actions)
	require.NoError(t, err)
	last := states[len(states)-1]
	assert.True(t, last.IsGoal())
	assert.Equal(t, pos(2, 5), last.Position)
}

func TestSolve_UnsolvableWithoutPie(t *testing.T) {
	layout := append([]string(nil), phaseLayout...)
	layout[2] = "%   %.%%"
	g := mustGrid(t, layout)

	for _, h := range []string{HeuristicMFD, HeuristicMST} {
		result, err := Solve(g, h)
		require.NoError(t, err)
		assert.Equal(t, StatusUnsolvable, result.Status)
		assert.ErrorIs(t, result.Err(), ErrUnsolvable)
		assert.Empty(t, result.Actions)
		assert.Greater(t, result.Expanded, 0)
	}
}

func TestSolve_TeleportShortcut(t *testing.T) {
	g := mustGrid(t, teleportLayout)

	result, err := Solve(g, HeuristicMFD)
	require.NoError(t, err)
	require.True(t, result.Solved())
	assert.Equal(t, 2, result.Cost)
	assert.Equal(t, []Action{South, South}, result.Actions)
}

func TestSolve_AlreadySolved(t *testing.T) {
	g := mustGrid(t, []string{
		"%%%%",
		"%P %",
		"%%%%",
	})

	result, err := Solve(g, HeuristicMST)
	require.NoError(t, err)
	require.True(t, result.Solved())
	assert.Equal(t, 0, result.Cost)
	assert.Empty(t, result.Actions)
	assert.Equal(t, 0, result.Expanded)
}

func TestSolve_ExpansionLimit(t *testing.T) {
	g := mustGrid(t, corridorLayout)

	result, err := Solve(g, HeuristicMFD, WithMaxExpansions(1))
	require.NoError(t, err)
	assert.Equal(t, StatusLimitExceeded, result.Status)
	assert.ErrorIs(t, result.Err(), ErrExpansionLimit)
	assert.NotErrorIs(t, result.Err(), ErrUnsolvable)
	assert.Equal(t, 1, result.Expanded)
	assert.Nil(t, result.Actions)
}

func TestSolve_InvalidArguments(t *testing.T) {
	g := mustGrid(t, corridorLayout)

	_, err := Solve(g, "greedy")
	assert.ErrorIs(t, err, ErrUnknownHeuristic)

	_, err = Solve(nil, HeuristicMFD)
	assert.Error(t, err)
}

func TestSolve_Deterministic(t *testing.T) {
	g := mustGrid(t, mixedLayout)

	first, err := Solve(g, HeuristicMFD)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Solve(g, HeuristicMFD)
		require.NoError(t, err)
		assert.Equal(t, first.Actions, again.Actions)
		assert.Equal(t, first.Expanded, again.Expanded)
	}
}

func TestSolve_MatchesBreadthFirstCost(t *testing.T) {
	layouts := map[string]*maze.Grid{
		"corridor": mustGrid(t, corridorLayout),
		"phase":    mustGrid(t, phaseLayout),
		"teleport": mustGrid(t, teleportLayout),
		"mixed":    mustGrid(t, mixedLayout),
	}
	for seed := int64(1); seed <= 6; seed++ {
		g, err := maze.Generate(maze.GenerateOptions{
			Width: 7, Height: 6, WallDensity: 0.2, Food: 3, Pies: 1, Seed: seed,
		})
		require.NoError(t, err)
		layouts[fmt.Sprintf("generated-%d", seed)] = g
	}

	for name, g := range layouts {
		t.Run(name, func(t *testing.T) {
			sg := exploreStates(t, g, 500000)
			want := sg.optimalCost()

			for _, h := range []string{HeuristicMFD, HeuristicMST, HeuristicNull} {
				result, err := Solve(g, h)
				require.NoError(t, err)
				if want < 0 {
					assert.Equal(t, StatusUnsolvable, result.Status, h)
					continue
				}
				require.True(t, result.Solved(), h)
				assert.Equal(t, want, result.Cost, h)
				assert.Equal(t, PlanCost(result.Actions), result.Cost, h)

				states, err := Replay(g, result.Actions)
				require.NoError(t, err, h)
				assert.True(t, states[len(states)-1].IsGoal(), h)
			}
		})
	}
}

func TestSolve_MSTExpandsNoMoreThanMFD(t *testing.T) {
	g := mustGrid(t, corridorLayout)

	mfd, err := Solve(g, HeuristicMFD)
	require.NoError(t, err)
	mst, err := Solve(g, HeuristicMST)
	require.NoError(t, err)

	assert.Equal(t, mfd.Cost, mst.Cost)
	assert.LessOrEqual(t, mst.Expanded, mfd.Expanded)
}

func TestSearch_FromArbitraryState(t *testing.T) {
	g := mustGrid(t, corridorLayout)
	engine := NewEngine(g, HeuristicMST, MinSpanningTree)

	start := State{Position: pos(2, 8), Food: NewCellSet(pos(2, 9))}
	result := engine.Search(start)
	require.True(t, result.Solved())
	assert.Equal(t, []Action{East}, result.Actions)
}

func TestSearch_LogsProgress(t *testing.T) {
	g := mustGrid(t, corridorLayout)
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	result, err := Solve(g, HeuristicNull, WithLogger(logger), WithProgressEvery(2))
	require.NoError(t, err)
	require.True(t, result.Solved())

	var progress int
	for _, entry := range hook.AllEntries() {
		if entry.Message == "Search progress" {
			progress++
			assert.Equal(t, HeuristicNull, entry.Data["heuristic"])
		}
	}
	assert.Equal(t, result.Expanded/2, progress)
	assert.Equal(t, "Solution found", hook.LastEntry().Message)
	assert.Equal(t, 11, hook.LastEntry().Data["cost"])
}

func TestReplay_IllegalAction(t *testing.T) {
	g := mustGrid(t, phaseLayout)

	states, err := Replay(g, []Action{South, North, North})
	assert.ErrorIs(t, err, ErrIllegalAction)
	assert.Len(t, states, 3)
}

func TestReplay_StopAfterGoal(t *testing.T) {
	g := mustGrid(t, teleportLayout)

	states, err := Replay(g, []Action{South, South, Stop})
	require.NoError(t, err)
	require.Len(t, states, 4)
	assert.True(t, states[3].Equal(states[2]))
}

func TestStatus_Text(t *testing.T) {
	for _, s := range []Status{StatusSolved, StatusUnsolvable, StatusLimitExceeded} {
		text, err := s.MarshalText()
		require.NoError(t, err)
		var back Status
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, s, back)
	}
	var s Status
	assert.Error(t, s.UnmarshalText([]byte("pending")))
}
