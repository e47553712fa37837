package algorithms

import "fmt"

// MotionKind - 모션 프리미티브 종류
type MotionKind int

const (
	Forward MotionKind = iota
	Backward
	ForwardLeft
	ForwardRight
	BackwardLeft
	BackwardRight
)

var motionKindNames = map[MotionKind]string{
	Forward:       "FW",
	Backward:      "BW",
	ForwardLeft:   "FL",
	ForwardRight:  "FR",
	BackwardLeft:  "BL",
	BackwardRight: "BR",
}

func (k MotionKind) String() string {
	if s, ok := motionKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("MotionKind(%d)", int(k))
}

// IsTurn - 회전 프리미티브인지
func (k MotionKind) IsTurn() bool {
	return k != Forward && k != Backward
}

// TurnRadius - 회전 반경 등급
type TurnRadius int

const (
	Tight TurnRadius = iota
	Wide
)

func (r TurnRadius) String() string {
	if r == Wide {
		return "wide"
	}
	return "tight"
}

// Motion - 하나의 원자적 이동 (직진 한 칸 또는 90도 회전)
type Motion struct {
	Kind   MotionKind `json:"kind"`
	Radius TurnRadius `json:"radius"`
}

func (m Motion) String() string {
	if m.Kind.IsTurn() {
		return fmt.Sprintf("%s/%s", m.Kind, m.Radius)
	}
	return m.Kind.String()
}

// TurnGeometry - 전진 회전 시 진행 방향으로 Along, 회전 방향 옆으로 Across 칸 이동한다.
// 후진 회전은 전진 회전의 정확한 역동작이다.
type TurnGeometry struct {
	Along   int     `json:"along"`
	Across  int     `json:"across"`
	Penalty float64 `json:"penalty"`
}

// TurnMode - 사용할 회전 반경 등급
type TurnMode string

const (
	TurnTight TurnMode = "tight"
	TurnWide  TurnMode = "wide"
	TurnBoth  TurnMode = "both"
)

// ParseTurnMode - 문자열을 TurnMode로 변환
func ParseTurnMode(s string) (TurnMode, error) {
	switch TurnMode(s) {
	case TurnTight, TurnWide, TurnBoth:
		return TurnMode(s), nil
	}
	return "", fmt.Errorf("unknown turn mode %q", s)
}

// MotionConfig - 프리미티브 비용과 회전 기하
type MotionConfig struct {
	StepCost float64      `json:"step_cost"` // 한 칸 이동 비용 (거리 단위)
	Tight    TurnGeometry `json:"tight"`
	Wide     TurnGeometry `json:"wide"`
	TurnMode TurnMode     `json:"turn_mode"`
}

// Radii - 활성화된 회전 반경 등급
func (c MotionConfig) Radii() []TurnRadius {
	switch c.TurnMode {
	case TurnWide:
		return []TurnRadius{Wide}
	case TurnBoth:
		return []TurnRadius{Tight, Wide}
	}
	return []TurnRadius{Tight}
}

// Geometry - 반경 등급별 회전 기하
func (c MotionConfig) Geometry(r TurnRadius) TurnGeometry {
	if r == Wide {
		return c.Wide
	}
	return c.Tight
}

// Cost - 프리미티브 비용. 회전은 이동 칸 수에 벌점을 더한다.
func (c MotionConfig) Cost(m Motion) float64 {
	if !m.Kind.IsTurn() {
		return c.StepCost
	}
	g := c.Geometry(m.Radius)
	return c.StepCost*float64(g.Along+g.Across) + g.Penalty
}

// minTurnPenalty - 활성화된 등급 중 가장 작은 회전 벌점 (휴리스틱용)
func (c MotionConfig) minTurnPenalty() float64 {
	best := -1.0
	for _, r := range c.Radii() {
		if p := c.Geometry(r).Penalty; best < 0 || p < best {
			best = p
		}
	}
	return max(best, 0)
}

// Apply - 포즈에 모션을 적용한 결과 포즈
func (c MotionConfig) Apply(p Pose, m Motion) Pose {
	fx, fy := p.Heading.Vector()
	rx, ry := p.Heading.Right().Vector()
	lx, ly := p.Heading.Left().Vector()

	switch m.Kind {
	case Forward:
		return Pose{Cell: p.Add(fx, fy), Heading: p.Heading}
	case Backward:
		return Pose{Cell: p.Add(-fx, -fy), Heading: p.Heading}
	}

	g := c.Geometry(m.Radius)
	switch m.Kind {
	case ForwardRight:
		return Pose{Cell: p.Add(fx*g.Along+rx*g.Across, fy*g.Along+ry*g.Across), Heading: p.Heading.Right()}
	case ForwardLeft:
		return Pose{Cell: p.Add(fx*g.Along+lx*g.Across, fy*g.Along+ly*g.Across), Heading: p.Heading.Left()}
	case BackwardRight:
		return Pose{Cell: p.Add(-fx*g.Across+rx*g.Along, -fy*g.Across+ry*g.Along), Heading: p.Heading.Left()}
	case BackwardLeft:
		return Pose{Cell: p.Add(-fx*g.Across+lx*g.Along, -fy*g.Across+ly*g.Along), Heading: p.Heading.Right()}
	}
	return p
}

// Edge - 포즈 그래프 간선
type Edge struct {
	To     Pose
	Motion Motion
	Cost   float64
}

// PoseGraph - 그리드 위의 포즈 상태 공간
type PoseGraph struct {
	grid       *Grid
	motions    MotionConfig
	primitives []Motion
}

// NewPoseGraph - 활성화된 회전 등급으로 프리미티브 목록을 구성한다
func NewPoseGraph(grid *Grid, motions MotionConfig) *PoseGraph {
	prims := []Motion{{Kind: Forward}, {Kind: Backward}}
	for _, r := range motions.Radii() {
		for _, k := range []MotionKind{ForwardLeft, ForwardRight, BackwardLeft, BackwardRight} {
			prims = append(prims, Motion{Kind: k, Radius: r})
		}
	}
	return &PoseGraph{grid: grid, motions: motions, primitives: prims}
}

// Grid - 그래프가 사용하는 그리드
func (pg *PoseGraph) Grid() *Grid { return pg.grid }

// Motions - 모션 설정
func (pg *PoseGraph) Motions() MotionConfig { return pg.motions }

// Successors - p에서 유효한 모든 이웃. 결과는 buf에 덧붙인다.
func (pg *PoseGraph) Successors(p Pose, buf []Edge) []Edge {
	for _, m := range pg.primitives {
		to := pg.motions.Apply(p, m)
		if !pg.sweepValid(p.Cell, to.Cell, m) {
			continue
		}
		buf = append(buf, Edge{To: to, Motion: m, Cost: pg.motions.Cost(m)})
	}
	return buf
}

// sweepValid - 회전은 시작/끝 셀이 이루는 사각형 전체가 유효해야 한다
func (pg *PoseGraph) sweepValid(from, to Cell, m Motion) bool {
	if !m.Kind.IsTurn() {
		return pg.grid.cellValid(to)
	}
	x0, x1 := min(from.X, to.X), max(from.X, to.X)
	y0, y1 := min(from.Y, to.Y), max(from.Y, to.Y)
	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			if !pg.grid.cellValid(Cell{X: x, Y: y}) {
				return false
			}
		}
	}
	return true
}
