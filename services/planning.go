package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"mdp-backend/algorithms"
	"mdp-backend/models"

	"github.com/google/uuid"
)

// ErrBadRequest - 요청 필드 값이 잘못됨
var ErrBadRequest = errors.New("bad request")

// PlanService - 와이어 요청을 플래너 요청으로 바꾸고 결과를 로그/브로드캐스트한다
type PlanService struct {
	planner       *algorithms.Planner
	broadcastFunc func(models.WebSocketMessage)
}

// PlanOutcome - 한 번의 계획 결과 (응답 + 재생용 포즈)
type PlanOutcome struct {
	PlanID   string
	Data     *models.PathData
	Start    algorithms.Pose
	Poses    []algorithms.Pose
	Snaps    map[int]int // 포즈 인덱스 → 장애물 id
	Commands []algorithms.Command
	TurnMode algorithms.TurnMode
	Motions  algorithms.MotionConfig
	Duration time.Duration
}

// NewPlanService - broadcastFunc가 nil이면 브로드캐스트하지 않는다
func NewPlanService(planner *algorithms.Planner, broadcastFunc func(models.WebSocketMessage)) *PlanService {
	return &PlanService{planner: planner, broadcastFunc: broadcastFunc}
}

// Planner - 내부 플래너 반환
func (s *PlanService) Planner() *algorithms.Planner { return s.planner }

// ToPlannerRequest - /path 요청 형식을 플래너 요청으로 변환
func ToPlannerRequest(req models.PathRequest) (algorithms.Request, error) {
	dir, err := algorithms.ParseHeading(req.RobotDir)
	if err != nil {
		return algorithms.Request{}, fmt.Errorf("robot_dir: %w", algorithms.ErrInvalidStartPose)
	}

	out := algorithms.Request{
		Start:     algorithms.NewPose(req.RobotX, req.RobotY, dir),
		Obstacles: make([]algorithms.Obstacle, 0, len(req.Obstacles)),
		Retrying:  req.Retrying,
	}
	for _, ob := range req.Obstacles {
		facing, err := algorithms.ParseHeading(ob.D)
		if err != nil {
			return algorithms.Request{}, &algorithms.ObstacleError{
				ObstacleID: ob.ID,
				Reason:     err.Error(),
				Err:        algorithms.ErrInvalidObstaclePlacement,
			}
		}
		out.Obstacles = append(out.Obstacles, algorithms.Obstacle{
			ID:     ob.ID,
			Cell:   algorithms.Cell{X: ob.X, Y: ob.Y},
			Facing: facing,
		})
	}

	if req.BigTurn != nil {
		switch *req.BigTurn {
		case 0:
			out.TurnMode = algorithms.TurnTight
		case 1:
			out.TurnMode = algorithms.TurnWide
		case 2:
			out.TurnMode = algorithms.TurnBoth
		default:
			return algorithms.Request{}, fmt.Errorf("big_turn %d: %w", *req.BigTurn, ErrBadRequest)
		}
	}
	if req.RobotSize != nil {
		if *req.RobotSize < 0 {
			return algorithms.Request{}, fmt.Errorf("robot_size %d: %w", *req.RobotSize, ErrBadRequest)
		}
		radius := *req.RobotSize
		out.RobotRadius = &radius
	}
	return out, nil
}

// Plan - 계획 실행 후 응답 데이터 구성, 로그 기록, plan_update 브로드캐스트
func (s *PlanService) Plan(ctx context.Context, req models.PathRequest, source string) (*PlanOutcome, error) {
	started := time.Now()
	planID := uuid.New().String()

	entry := models.PlanLog{
		CreatedAt:     started,
		PlanID:        planID,
		Source:        source,
		ObstacleCount: len(req.Obstacles),
		Retrying:      req.Retrying,
		RobotX:        req.RobotX,
		RobotY:        req.RobotY,
		RobotDir:      req.RobotDir,
	}
	if raw, err := json.Marshal(req); err == nil {
		entry.RequestJSON = string(raw)
	}

	outcome, err := s.plan(ctx, planID, req)
	entry.DurationMs = time.Since(started).Milliseconds()
	if err != nil {
		entry.Error = err.Error()
		AddPlanLog(entry)
		log.Printf("❌ 계획 실패 [%s]: %v", planID, err)
		return nil, err
	}
	outcome.Duration = time.Since(started)

	entry.Algorithm = outcome.Data.Algorithm
	entry.Distance = outcome.Data.Distance
	entry.CommandCount = len(outcome.Data.Commands)
	entry.Commands = strings.Join(outcome.Data.Commands, ",")
	entry.Skipped = joinInts(outcome.Data.Skipped)
	entry.TurnMode = string(outcome.TurnMode)
	AddPlanLog(entry)

	s.broadcast(models.MessageTypePlanUpdate, outcome.Data)
	s.broadcast(models.MessageTypeCommands, models.CommandsData{
		PlanID:   planID,
		Commands: outcome.Data.Commands,
	})
	return outcome, nil
}

func (s *PlanService) plan(ctx context.Context, planID string, req models.PathRequest) (*PlanOutcome, error) {
	preq, err := ToPlannerRequest(req)
	if err != nil {
		return nil, err
	}
	res, err := s.planner.Plan(ctx, preq)
	if err != nil {
		return nil, err
	}

	snaps := make(map[int]int, len(res.Plan.Visits))
	for _, v := range res.Plan.Visits {
		snaps[v.PoseIndex] = v.ObstacleID
	}

	commands := make([]string, len(res.Commands))
	for i, c := range res.Commands {
		commands[i] = c.String()
	}

	return &PlanOutcome{
		PlanID: planID,
		Data: &models.PathData{
			PlanID:    planID,
			Distance:  res.Plan.Distance,
			Path:      SamplePath(res.Plan.Path.Poses, res.Commands, snaps),
			Commands:  commands,
			Order:     res.Plan.Order,
			Skipped:   res.Plan.Skipped,
			Algorithm: string(res.Plan.Algorithm),
		},
		Start:    preq.Start,
		Poses:    res.Plan.Path.Poses,
		Snaps:    snaps,
		Commands: res.Commands,
		TurnMode: s.planner.MotionsFor(preq).TurnMode,
		Motions:  s.planner.MotionsFor(preq),
	}, nil
}

// SamplePath - 시작 포즈와 이동/회전 명령 직후의 포즈만 골라 응답 경로를 만든다.
// 포즈 인덱스는 FW/BW는 칸 수만큼, 회전은 1 증가하고 SNAP/FIN은 건너뛴다.
func SamplePath(poses []algorithms.Pose, cmds []algorithms.Command, snaps map[int]int) []models.PathPoint {
	if len(poses) == 0 {
		return []models.PathPoint{}
	}
	out := []models.PathPoint{toPathPoint(poses[0], 0, snaps)}
	idx := 0
	for _, c := range cmds {
		adv := c.PoseAdvance()
		if adv == 0 {
			continue
		}
		idx += adv
		if idx >= len(poses) {
			log.Printf("⚠️ 명령 %s 이후 포즈 인덱스 %d가 경로 길이 %d를 넘음", c, idx, len(poses))
			break
		}
		out = append(out, toPathPoint(poses[idx], idx, snaps))
	}
	return out
}

func toPathPoint(p algorithms.Pose, idx int, snaps map[int]int) models.PathPoint {
	s := -1
	if id, ok := snaps[idx]; ok {
		s = id
	}
	return models.PathPoint{X: p.X, Y: p.Y, D: int(p.Heading), S: s}
}

func (s *PlanService) broadcast(msgType string, data interface{}) {
	if s.broadcastFunc == nil {
		return
	}
	s.broadcastFunc(models.WebSocketMessage{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	})
}

func joinInts(vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
