package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"mdp-backend/algorithms"
	"mdp-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planOutcome(t *testing.T) *PlanOutcome {
	t.Helper()
	svc := NewPlanService(algorithms.NewPlanner(algorithms.DefaultConfig()), nil)
	outcome, err := svc.Plan(context.Background(), singleObstacleRequest(), "test")
	require.NoError(t, err)
	return outcome
}

func simulationStates(rec *recorder) []string {
	var states []string
	for _, m := range rec.ofType(models.MessageTypeSimulation) {
		states = append(states, m.Data.(models.SimulationData).State)
	}
	return states
}

func TestPlanSimulator_RunsToFinish(t *testing.T) {
	outcome := planOutcome(t)
	rec := &recorder{}
	sim := NewPlanSimulator(rec.broadcast, time.Millisecond)

	require.NoError(t, sim.Start(outcome))
	require.Eventually(t, func() bool {
		states := simulationStates(rec)
		return len(states) == 2 && states[1] == "finished"
	}, 2*time.Second, 5*time.Millisecond)

	positions := rec.ofType(models.MessageTypePosition)
	require.Len(t, positions, len(outcome.Poses))

	first := positions[0].Data.(models.PositionData)
	assert.Equal(t, outcome.PlanID, first.PlanID)
	assert.Equal(t, 0, first.Step)
	assert.Equal(t, outcome.Start.X, first.X)

	last := positions[len(positions)-1].Data.(models.PositionData)
	assert.Equal(t, len(outcome.Poses)-1, last.Step)
	assert.Equal(t, models.PathPoint{X: 5, Y: 2, D: 0, S: 1}, models.PathPoint{X: last.X, Y: last.Y, D: last.D, S: last.S})

	assert.Equal(t, "started", simulationStates(rec)[0])
	assert.False(t, sim.GetStatus()["running"].(bool))
}

func TestPlanSimulator_Stop(t *testing.T) {
	outcome := planOutcome(t)
	rec := &recorder{}
	sim := NewPlanSimulator(rec.broadcast, time.Hour)

	require.NoError(t, sim.Start(outcome))
	assert.True(t, sim.GetStatus()["running"].(bool))

	sim.Stop()
	assert.False(t, sim.GetStatus()["running"].(bool))
	assert.Equal(t, []string{"started", "stopped"}, simulationStates(rec))
	assert.Len(t, rec.ofType(models.MessageTypePosition), 1)

	// 이미 멈춘 재생은 무시
	sim.Stop()
}

func TestPlanSimulator_RejectsMismatchedCommands(t *testing.T) {
	outcome := planOutcome(t)
	broken := *outcome
	broken.Poses = outcome.Poses[:len(outcome.Poses)-1]

	sim := NewPlanSimulator(nil, time.Millisecond)
	assert.Error(t, sim.Start(&broken))
	assert.False(t, sim.GetStatus()["running"].(bool))

	broken = *outcome
	broken.Commands = []algorithms.Command{{Kind: algorithms.CmdFinish}, {Kind: algorithms.CmdFinish}}
	assert.Error(t, sim.Start(&broken))
}

func TestPlanSimulator_ConcurrentStart(t *testing.T) {
	outcome := planOutcome(t)
	rec := &recorder{}
	sim := NewPlanSimulator(rec.broadcast, time.Hour)

	const starts = 8
	var wg sync.WaitGroup
	for i := 0; i < starts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, sim.Start(outcome))
		}()
	}
	wg.Wait()
	sim.Stop()

	// 모든 재생은 다음 Start 또는 마지막 Stop으로 멈춰야 한다
	started, stopped := 0, 0
	for _, state := range simulationStates(rec) {
		switch state {
		case "started":
			started++
		case "stopped":
			stopped++
		}
	}
	assert.Equal(t, starts, started)
	assert.Equal(t, starts, stopped)
	assert.False(t, sim.GetStatus()["running"].(bool))
}
