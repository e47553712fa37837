package services

import (
	"context"
	"sync"
	"testing"

	"mdp-backend/algorithms"
	"mdp-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder - 브로드캐스트 메시지 수집
type recorder struct {
	mu   sync.Mutex
	msgs []models.WebSocketMessage
}

func (r *recorder) broadcast(msg models.WebSocketMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recorder) ofType(msgType string) []models.WebSocketMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.WebSocketMessage
	for _, m := range r.msgs {
		if m.Type == msgType {
			out = append(out, m)
		}
	}
	return out
}

func singleObstacleRequest() models.PathRequest {
	return models.PathRequest{
		Obstacles: []models.ObstacleData{{X: 5, Y: 5, D: 4, ID: 1}},
		RobotX:    1,
		RobotY:    1,
		RobotDir:  0,
	}
}

func intPtr(v int) *int { return &v }

func TestToPlannerRequest(t *testing.T) {
	req := singleObstacleRequest()
	req.Retrying = true
	req.BigTurn = intPtr(2)
	req.RobotSize = intPtr(1)

	out, err := ToPlannerRequest(req)
	require.NoError(t, err)
	assert.Equal(t, algorithms.NewPose(1, 1, algorithms.North), out.Start)
	assert.True(t, out.Retrying)
	assert.Equal(t, algorithms.TurnBoth, out.TurnMode)
	require.NotNil(t, out.RobotRadius)
	assert.Equal(t, 1, *out.RobotRadius)
	require.Len(t, out.Obstacles, 1)
	assert.Equal(t, algorithms.South, out.Obstacles[0].Facing)
	assert.Equal(t, 1, out.Obstacles[0].ID)
}

func TestToPlannerRequest_Errors(t *testing.T) {
	req := singleObstacleRequest()
	req.RobotDir = 3
	_, err := ToPlannerRequest(req)
	assert.ErrorIs(t, err, algorithms.ErrInvalidStartPose)

	req = singleObstacleRequest()
	req.Obstacles[0].D = 5
	_, err = ToPlannerRequest(req)
	assert.ErrorIs(t, err, algorithms.ErrInvalidObstaclePlacement)

	req = singleObstacleRequest()
	req.BigTurn = intPtr(7)
	_, err = ToPlannerRequest(req)
	assert.ErrorIs(t, err, ErrBadRequest)

	req = singleObstacleRequest()
	req.RobotSize = intPtr(-1)
	_, err = ToPlannerRequest(req)
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestSamplePath(t *testing.T) {
	poses := []algorithms.Pose{
		algorithms.NewPose(1, 1, algorithms.North),
		algorithms.NewPose(1, 2, algorithms.North),
		algorithms.NewPose(1, 3, algorithms.North),
		algorithms.NewPose(2, 6, algorithms.East),
	}
	cmds := []algorithms.Command{
		{Kind: algorithms.CmdForward, Steps: 2},
		{Kind: algorithms.CmdTurn, Turn: algorithms.Motion{Kind: algorithms.ForwardRight}},
		{Kind: algorithms.CmdSnap, ObstacleID: 4},
		{Kind: algorithms.CmdFinish},
	}

	got := SamplePath(poses, cmds, map[int]int{3: 4})
	assert.Equal(t, []models.PathPoint{
		{X: 1, Y: 1, D: 0, S: -1},
		{X: 1, Y: 3, D: 0, S: -1},
		{X: 2, Y: 6, D: 2, S: 4},
	}, got)

	assert.Empty(t, SamplePath(nil, cmds, nil))
}

func TestPlanService_Plan(t *testing.T) {
	rec := &recorder{}
	svc := NewPlanService(algorithms.NewPlanner(algorithms.DefaultConfig()), rec.broadcast)

	outcome, err := svc.Plan(context.Background(), singleObstacleRequest(), "test")
	require.NoError(t, err)

	data := outcome.Data
	assert.NotEmpty(t, data.PlanID)
	assert.Equal(t, []int{1}, data.Order)
	assert.Equal(t, "FIN", data.Commands[len(data.Commands)-1])
	assert.Contains(t, data.Commands, "SNAP1")
	assert.Equal(t, "exact-dp", data.Algorithm)

	// 시작 포즈 + SNAP/FIN을 제외한 명령마다 하나
	moves := 0
	for _, c := range data.Commands {
		if c != "FIN" && c != "SNAP1" {
			moves++
		}
	}
	require.Len(t, data.Path, moves+1)
	assert.Equal(t, models.PathPoint{X: 1, Y: 1, D: 0, S: -1}, data.Path[0])
	assert.Equal(t, models.PathPoint{X: 5, Y: 2, D: 0, S: 1}, data.Path[len(data.Path)-1])

	assert.Equal(t, outcome.Poses[0], outcome.Start)
	assert.Equal(t, algorithms.TurnTight, outcome.TurnMode)

	require.Len(t, rec.ofType(models.MessageTypePlanUpdate), 1)
	cmds := rec.ofType(models.MessageTypeCommands)
	require.Len(t, cmds, 1)
	assert.Equal(t, data.Commands, cmds[0].Data.(models.CommandsData).Commands)
}

func TestPlanService_PlanError(t *testing.T) {
	rec := &recorder{}
	svc := NewPlanService(algorithms.NewPlanner(algorithms.DefaultConfig()), rec.broadcast)

	req := singleObstacleRequest()
	req.Obstacles = append(req.Obstacles, models.ObstacleData{X: 5, Y: 18, D: 0, ID: 2})
	_, err := svc.Plan(context.Background(), req, "test")
	assert.ErrorIs(t, err, algorithms.ErrUnreachableObstacle)
	assert.Empty(t, rec.ofType(models.MessageTypePlanUpdate))
}

func TestPlanService_LogsOutcome(t *testing.T) {
	InitLogging(100, 0)
	t.Cleanup(StopLogging)

	svc := NewPlanService(algorithms.NewPlanner(algorithms.DefaultConfig()), nil)
	outcome, err := svc.Plan(context.Background(), singleObstacleRequest(), "test")
	require.NoError(t, err)

	req := singleObstacleRequest()
	req.RobotDir = 5
	_, err = svc.Plan(context.Background(), req, "test")
	require.Error(t, err)

	logs, err := RecentPlanLogs(10)
	require.NoError(t, err)
	require.Len(t, logs, 2)

	// 최신순
	assert.NotEmpty(t, logs[0].Error)
	assert.Equal(t, outcome.PlanID, logs[1].PlanID)
	assert.Equal(t, "exact-dp", logs[1].Algorithm)
	assert.Equal(t, "tight", logs[1].TurnMode)
	assert.Contains(t, logs[1].Commands, "SNAP1")
	assert.Contains(t, logs[1].RequestJSON, `"robot_dir":0`)
}
