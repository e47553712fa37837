package algorithms

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
)

// ExactObstacleCap - 비트마스크 DP 테이블 크기의 상한 (2^16 × 16)
const ExactObstacleCap = 16

// Algorithm - 방문 순서를 결정한 알고리즘
type Algorithm string

const (
	AlgorithmNone            Algorithm = "none"
	AlgorithmExactDP         Algorithm = "exact-dp"
	AlgorithmNearestNeighbor Algorithm = "nearest-neighbor"
)

// FallbackPolicy - 장애물 수가 정확 탐색 상한을 넘을 때의 정책
type FallbackPolicy string

const (
	FallbackFail            FallbackPolicy = "fail"
	FallbackNearestNeighbor FallbackPolicy = "nearest-neighbor"
)

// ParseFallbackPolicy - 문자열을 FallbackPolicy로 변환
func ParseFallbackPolicy(s string) (FallbackPolicy, error) {
	switch FallbackPolicy(s) {
	case FallbackFail, FallbackNearestNeighbor:
		return FallbackPolicy(s), nil
	}
	return "", fmt.Errorf("unknown fallback policy %q", s)
}

// OptimizerConfig - 방문 순서 최적화 설정
type OptimizerConfig struct {
	MaxExactObstacles int            `json:"max_exact_obstacles"`
	Fallback          FallbackPolicy `json:"fallback"`
	MaxExpansions     int            `json:"max_expansions"` // 구간 탐색당 확장 상한
}

// Target - 방문해야 하는 촬영 위치
type Target struct {
	Obstacle Obstacle
	View     Pose
}

// Visit - 계획 경로에서 장애물을 촬영하는 지점
type Visit struct {
	ObstacleID int  `json:"obstacle_id"`
	PoseIndex  int  `json:"pose_index"`
	View       Pose `json:"view"`
}

// Plan - 방문 순서 + 실제 경로 + 총 거리
type Plan struct {
	Order     []int     `json:"order"`
	Visits    []Visit   `json:"visits"`
	Path      Path      `json:"path"`
	Distance  float64   `json:"distance"`
	Algorithm Algorithm `json:"algorithm"`
	Skipped   []int     `json:"skipped,omitempty"`
}

// leg - 두 노드 사이에 미리 계산한 구간
type leg struct {
	path Path
	cost float64
	ok   bool
}

// Optimizer - 촬영 위치 방문 순서 최적화기
type Optimizer struct {
	graph      *PoseGraph
	cfg        OptimizerConfig
	constraint Constraint
}

// NewOptimizer - constraint가 nil이면 재시도 시 DefaultRetryConstraint를 사용한다
func NewOptimizer(graph *PoseGraph, cfg OptimizerConfig, constraint Constraint) *Optimizer {
	if constraint == nil {
		constraint = DefaultRetryConstraint
	}
	return &Optimizer{graph: graph, cfg: cfg, constraint: constraint}
}

// legTable - 노드 0은 시작 포즈, 1..n은 대상. 구간은 처음 요청될 때 계산한다.
type legTable struct {
	ctx      context.Context
	graph    *PoseGraph
	nodes    []Pose
	ids      []int
	arrivals []func(Motion) bool
	opts     SearchOptions
	legs     [][]*leg
	searches int
}

func (t *legTable) get(i, j int) (*leg, error) {
	if l := t.legs[i][j]; l != nil {
		return l, nil
	}
	opts := t.opts
	opts.Arrival = t.arrivals[j]
	path, cost, err := ShortestPath(t.ctx, t.graph, t.nodes[i], t.nodes[j], opts)
	t.searches++
	l := &leg{path: path, cost: cost, ok: err == nil}
	if err != nil && !errors.Is(err, ErrNoPathFound) {
		return nil, err
	}
	t.legs[i][j] = l
	return l, nil
}

func (t *legTable) cost(i, j int) (float64, error) {
	l, err := t.get(i, j)
	if err != nil {
		return 0, err
	}
	if !l.ok {
		return math.Inf(1), nil
	}
	return l.cost, nil
}

// OptimalOrder - start에서 출발해 모든 촬영 위치를 정확히 한 번씩 방문하는 최소 거리 순서
func (o *Optimizer) OptimalOrder(ctx context.Context, start Pose, targets []Target, retrying bool) (Plan, error) {
	n := len(targets)
	if n == 0 {
		return Plan{Path: Path{Poses: []Pose{start}}, Algorithm: AlgorithmNone}, nil
	}

	table := &legTable{
		ctx:      ctx,
		graph:    o.graph,
		nodes:    make([]Pose, n+1),
		ids:      make([]int, n+1),
		arrivals: make([]func(Motion) bool, n+1),
		opts:     SearchOptions{MaxExpansions: o.cfg.MaxExpansions},
		legs:     make([][]*leg, n+1),
	}
	table.nodes[0] = start
	for i := range table.legs {
		table.legs[i] = make([]*leg, n+1)
	}
	for i, t := range targets {
		view := t.View
		if retrying {
			view, table.arrivals[i+1] = o.retryTarget(t)
		}
		table.nodes[i+1] = view
		table.ids[i+1] = t.Obstacle.ID
	}

	var (
		order     []int
		algorithm Algorithm
		err       error
	)
	limit := min(o.cfg.MaxExactObstacles, ExactObstacleCap)
	switch {
	case n <= limit:
		algorithm = AlgorithmExactDP
		order, err = o.heldKarp(table, n)
	case o.cfg.Fallback == FallbackNearestNeighbor:
		algorithm = AlgorithmNearestNeighbor
		log.Printf("⚠️ 장애물 %d개 > 정확 탐색 상한 %d: nearest-neighbor로 전환", n, limit)
		order, err = o.nearestNeighbor(table, n)
	default:
		return Plan{}, fmt.Errorf("%d obstacles, exact bound %d: %w", n, limit, ErrTooManyObstacles)
	}
	if err != nil {
		return Plan{}, err
	}

	plan, err := o.assemble(table, order)
	if err != nil {
		return Plan{}, err
	}
	plan.Algorithm = algorithm
	return plan, nil
}

// retryTarget - 재시도 제약 적용. 옮긴 위치가 유효하지 않으면 원래 위치를 유지한다.
func (o *Optimizer) retryTarget(t Target) (Pose, func(Motion) bool) {
	view := o.constraint.ViewingPose(t.Obstacle, t.View)
	if err := o.graph.Grid().CheckViewingPose(t.Obstacle, view); err != nil {
		log.Printf("⚠️ 재시도 촬영 위치 사용 불가, 기본 위치 유지: %v", err)
		view = t.View
	}
	return view, o.constraint.Arrival(t.Obstacle)
}

// heldKarp - (방문 집합, 마지막 노드) 상태의 비트마스크 DP
func (o *Optimizer) heldKarp(table *legTable, n int) ([]int, error) {
	inf := math.Inf(1)
	full := 1<<n - 1
	dp := make([][]float64, full+1)
	parent := make([][]int8, full+1)
	for mask := range dp {
		dp[mask] = make([]float64, n)
		parent[mask] = make([]int8, n)
		for j := range dp[mask] {
			dp[mask][j] = inf
			parent[mask][j] = -1
		}
	}

	for j := 0; j < n; j++ {
		c, err := table.cost(0, j+1)
		if err != nil {
			return nil, err
		}
		dp[1<<j][j] = c
	}

	for mask := 1; mask <= full; mask++ {
		if err := table.ctx.Err(); err != nil {
			return nil, err
		}
		for last := 0; last < n; last++ {
			cur := dp[mask][last]
			if mask&(1<<last) == 0 || math.IsInf(cur, 1) {
				continue
			}
			for next := 0; next < n; next++ {
				if mask&(1<<next) != 0 {
					continue
				}
				c, err := table.cost(last+1, next+1)
				if err != nil {
					return nil, err
				}
				nm := mask | 1<<next
				if cur+c < dp[nm][next] {
					dp[nm][next] = cur + c
					parent[nm][next] = int8(last)
				}
			}
		}
	}

	best, bestLast := inf, -1
	for last := 0; last < n; last++ {
		if dp[full][last] < best {
			best, bestLast = dp[full][last], last
		}
	}
	if bestLast < 0 {
		return nil, o.unreachableTarget(table, n)
	}

	order := make([]int, n)
	mask, last := full, bestLast
	for k := n - 1; k >= 0; k-- {
		order[k] = last
		prev := int(parent[mask][last])
		mask &^= 1 << last
		last = prev
	}
	log.Printf("🧮 DP 완료: 대상 %d개, 구간 탐색 %d회, 거리 %.0f", n, table.searches, best)
	return order, nil
}

// nearestNeighbor - 현재 위치에서 가장 가까운 미방문 대상을 차례로 고른다
func (o *Optimizer) nearestNeighbor(table *legTable, n int) ([]int, error) {
	visited := make([]bool, n)
	order := make([]int, 0, n)
	cur := 0
	for len(order) < n {
		best, bestJ := math.Inf(1), -1
		for j := 0; j < n; j++ {
			if visited[j] {
				continue
			}
			c, err := table.cost(cur, j+1)
			if err != nil {
				return nil, err
			}
			if c < best {
				best, bestJ = c, j
			}
		}
		if bestJ < 0 {
			return nil, o.unreachableTarget(table, n)
		}
		visited[bestJ] = true
		order = append(order, bestJ)
		cur = bestJ + 1
	}
	return order, nil
}

// unreachableTarget - 어떤 노드에서도 도달할 수 없는 대상을 찾아 오류로 보고한다
func (o *Optimizer) unreachableTarget(table *legTable, n int) error {
	for j := 1; j <= n; j++ {
		reachable := false
		for i := 0; i <= n && !reachable; i++ {
			if i == j {
				continue
			}
			c, err := table.cost(i, j)
			if err != nil {
				return err
			}
			reachable = !math.IsInf(c, 1)
		}
		if !reachable {
			return obstacleErr(table.ids[j], ErrNoPathFound, "viewing pose %s unreachable", table.nodes[j])
		}
	}
	return fmt.Errorf("no ordering visits all %d viewing poses: %w", n, ErrNoPathFound)
}

// assemble - 선택된 순서대로 미리 계산한 구간을 이어 붙인다
func (o *Optimizer) assemble(table *legTable, order []int) (Plan, error) {
	plan := Plan{
		Order:  make([]int, 0, len(order)),
		Visits: make([]Visit, 0, len(order)),
		Path:   Path{Poses: []Pose{table.nodes[0]}},
	}
	prev := 0
	for _, idx := range order {
		l, err := table.get(prev, idx+1)
		if err != nil {
			return Plan{}, err
		}
		if !l.ok {
			return Plan{}, obstacleErr(table.ids[idx+1], ErrNoPathFound, "leg from %s", table.nodes[prev])
		}
		if plan.Path, err = plan.Path.Concat(l.path); err != nil {
			return Plan{}, err
		}
		plan.Distance += l.cost
		id := table.ids[idx+1]
		plan.Order = append(plan.Order, id)
		plan.Visits = append(plan.Visits, Visit{ObstacleID: id, PoseIndex: plan.Path.Len() - 1, View: table.nodes[idx+1]})
		prev = idx + 1
	}
	return plan, nil
}
