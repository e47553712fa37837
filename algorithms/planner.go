package algorithms

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// UnreachablePolicy - 촬영 위치를 만들 수 없는 장애물 처리 정책
type UnreachablePolicy string

const (
	UnreachableAbort UnreachablePolicy = "abort" // 계획 전체 중단 (기본)
	UnreachableSkip  UnreachablePolicy = "skip"  // 해당 장애물만 제외하고 Plan.Skipped에 기록
)

// ParseUnreachablePolicy - 문자열을 UnreachablePolicy로 변환
func ParseUnreachablePolicy(s string) (UnreachablePolicy, error) {
	switch UnreachablePolicy(s) {
	case UnreachableAbort, UnreachableSkip:
		return UnreachablePolicy(s), nil
	}
	return "", fmt.Errorf("unknown unreachable policy %q", s)
}

// Config - 플래너 전체 설정
type Config struct {
	Grid        GridConfig        `json:"grid"`
	Motion      MotionConfig      `json:"motion"`
	Optimizer   OptimizerConfig   `json:"optimizer"`
	Commands    CommandOptions    `json:"commands"`
	Unreachable UnreachablePolicy `json:"unreachable"`
	Timeout     time.Duration     `json:"timeout"`
}

// DefaultConfig - 20x20 그리드, 3x3 로봇, 여유 1칸
func DefaultConfig() Config {
	return Config{
		Grid: GridConfig{
			Width:       20,
			Height:      20,
			RobotRadius: 1,
			Clearance:   1,
		},
		Motion: MotionConfig{
			StepCost: 10,
			Tight:    TurnGeometry{Along: 3, Across: 1, Penalty: 20},
			Wide:     TurnGeometry{Along: 4, Across: 2, Penalty: 10},
			TurnMode: TurnTight,
		},
		Optimizer: OptimizerConfig{
			MaxExactObstacles: 10,
			Fallback:          FallbackNearestNeighbor,
			MaxExpansions:     200000,
		},
		Commands:    CommandOptions{MaxMoveSteps: DefaultMaxMoveSteps},
		Unreachable: UnreachableAbort,
		Timeout:     10 * time.Second,
	}
}

// Request - 한 번의 계획 요청
type Request struct {
	Start      Pose
	Obstacles  []Obstacle
	Retrying   bool
	Constraint Constraint // nil이면 재시도 시 DefaultRetryConstraint
	TurnMode   TurnMode   // 비어 있으면 설정값
	// RobotRadius - nil이 아니면 풋프린트 반경을 덮어쓴다
	RobotRadius *int
}

// Result - 계획 결과
type Result struct {
	Plan     Plan      `json:"plan"`
	Commands []Command `json:"commands"`
}

// Planner - 상태 없는 계획 진입점. 요청마다 그리드와 탐색 상태를 새로 만든다.
type Planner struct {
	cfg Config
}

// NewPlanner - Planner 생성
func NewPlanner(cfg Config) *Planner {
	return &Planner{cfg: cfg}
}

// Config - 설정 반환
func (p *Planner) Config() Config { return p.cfg }

// configFor - 요청별 덮어쓰기를 적용한 설정
func (p *Planner) configFor(req Request) Config {
	cfg := p.cfg
	if req.TurnMode != "" {
		cfg.Motion.TurnMode = req.TurnMode
	}
	if req.RobotRadius != nil {
		cfg.Grid.RobotRadius = *req.RobotRadius
	}
	return cfg
}

// MotionsFor - 요청에 적용되는 모션 설정 (명령 재생용)
func (p *Planner) MotionsFor(req Request) MotionConfig {
	return p.configFor(req).Motion
}

// Plan - 장애물 집합과 시작 포즈로 방문 순서, 경로, 명령을 계산한다
func (p *Planner) Plan(ctx context.Context, req Request) (*Result, error) {
	cfg := p.configFor(req)
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	started := time.Now()

	grid := NewGrid(cfg.Grid)
	for _, o := range req.Obstacles {
		grid.AddObstacle(o)
	}
	if err := grid.ValidatePlacement(); err != nil {
		return nil, err
	}
	if !req.Start.Heading.Valid() || !grid.IsValid(req.Start) {
		return nil, fmt.Errorf("start %s: %w", req.Start, ErrInvalidStartPose)
	}

	targets, skipped, err := p.targets(grid, cfg, req.Obstacles)
	if err != nil {
		return nil, err
	}

	graph := NewPoseGraph(grid, cfg.Motion)
	optimizer := NewOptimizer(graph, cfg.Optimizer, req.Constraint)
	plan, err := optimizer.OptimalOrder(ctx, req.Start, targets, req.Retrying)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Printf("⏱️ 계획 시간 초과 (%v)", cfg.Timeout)
		}
		return nil, err
	}
	plan.Skipped = skipped

	cmds, err := GenerateCommands(plan.Path, plan.Visits, cfg.Commands)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ 계획 완료: 장애물 %d개, 순서 %v, 거리 %.0f, 명령 %d개, %s, %v",
		len(targets), plan.Order, plan.Distance, len(cmds), plan.Algorithm, time.Since(started))
	return &Result{Plan: plan, Commands: cmds}, nil
}

// targets - 표식 있는 장애물마다 촬영 위치를 만든다
func (p *Planner) targets(grid *Grid, cfg Config, obstacles []Obstacle) ([]Target, []int, error) {
	var (
		targets []Target
		skipped []int
	)
	for _, o := range obstacles {
		if !o.Marked() {
			continue
		}
		view, err := grid.ViewingPose(o)
		if err != nil {
			if cfg.Unreachable == UnreachableSkip {
				log.Printf("⚠️ 장애물 %d 제외: %v", o.ID, err)
				skipped = append(skipped, o.ID)
				continue
			}
			return nil, nil, err
		}
		targets = append(targets, Target{Obstacle: o, View: view})
	}
	return targets, skipped, nil
}
