package algorithms

// Obstacle - 촬영 대상 장애물. Facing은 표식이 붙은 면의 방향.
type Obstacle struct {
	ID int `json:"id"`
	Cell
	Facing Heading `json:"d"`
}

// Marked - 방문(촬영)이 필요한 장애물인지 여부
func (o Obstacle) Marked() bool {
	return o.Facing.Valid()
}

// GridConfig - 그리드와 로봇 풋프린트 설정
type GridConfig struct {
	Width       int `json:"width"`
	Height      int `json:"height"`
	RobotRadius int `json:"robot_radius"` // 풋프린트 반경 (1 → 3x3)
	Clearance   int `json:"clearance"`    // 풋프린트와 장애물 사이 여유 칸
	Standoff    int `json:"standoff"`     // 장애물 ~ 촬영 위치 거리 (칸), 0이면 SafeDistance+1
}

// SafeDistance - 로봇 중심과 장애물 사이에 필요한 최소 체비셰프 거리 - 1
func (c GridConfig) SafeDistance() int {
	return c.RobotRadius + c.Clearance
}

// StandoffSteps - 실제 사용할 촬영 거리
func (c GridConfig) StandoffSteps() int {
	if c.Standoff > 0 {
		return c.Standoff
	}
	return c.SafeDistance() + 1
}

const (
	cellUnknown int8 = iota
	cellFree
	cellBlocked
)

// Grid - 한 번의 계획 요청 동안만 사용하는 그리드 모델
type Grid struct {
	cfg       GridConfig
	obstacles []Obstacle
	cells     []int8 // 중심 셀 유효성 캐시
}

// NewGrid - Grid 생성
func NewGrid(cfg GridConfig) *Grid {
	return &Grid{
		cfg:   cfg,
		cells: make([]int8, max(cfg.Width*cfg.Height, 0)),
	}
}

// Config - 그리드 설정 반환
func (g *Grid) Config() GridConfig { return g.cfg }

// Obstacles - 등록된 장애물 목록 (입력 순서 유지)
func (g *Grid) Obstacles() []Obstacle { return g.obstacles }

// AddObstacle - 장애물 추가. 검증은 ValidatePlacement에서 일괄 수행한다.
func (g *Grid) AddObstacle(o Obstacle) {
	g.obstacles = append(g.obstacles, o)
	clear(g.cells)
}

// Contains - 셀이 그리드 안에 있는지
func (g *Grid) Contains(c Cell) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < g.cfg.Width && c.Y < g.cfg.Height
}

// InBounds - 로봇 풋프린트 전체가 그리드 안에 있는지
func (g *Grid) InBounds(c Cell) bool {
	r := g.cfg.RobotRadius
	return c.X-r >= 0 && c.Y-r >= 0 && c.X+r < g.cfg.Width && c.Y+r < g.cfg.Height
}

// Collides - 로봇 중심이 c일 때 장애물 여유 영역과 겹치는지
func (g *Grid) Collides(c Cell) bool {
	return g.blockingObstacle(c, -1) >= 0
}

// blockingObstacle - c를 막는 첫 장애물의 인덱스 (skip 인덱스 제외), 없으면 -1
func (g *Grid) blockingObstacle(c Cell, skip int) int {
	safe := g.cfg.SafeDistance()
	for i, o := range g.obstacles {
		if i == skip {
			continue
		}
		if o.Cell.Chebyshev(c) <= safe {
			return i
		}
	}
	return -1
}

// IsValid - 포즈가 범위 안이고 충돌하지 않는지
func (g *Grid) IsValid(p Pose) bool {
	return g.cellValid(p.Cell)
}

func (g *Grid) cellValid(c Cell) bool {
	if !g.InBounds(c) {
		return false
	}
	idx := c.Y*g.cfg.Width + c.X
	switch g.cells[idx] {
	case cellFree:
		return true
	case cellBlocked:
		return false
	}
	if g.Collides(c) {
		g.cells[idx] = cellBlocked
		return false
	}
	g.cells[idx] = cellFree
	return true
}

// ValidatePlacement - 장애물 배치 검증 (id 중복, 범위, 셀 중복, 촬영 위치 여유 영역 침범)
func (g *Grid) ValidatePlacement() error {
	seenID := make(map[int]bool, len(g.obstacles))
	seenCell := make(map[Cell]int, len(g.obstacles))

	for _, o := range g.obstacles {
		if seenID[o.ID] {
			return obstacleErr(o.ID, ErrInvalidObstaclePlacement, "duplicate id")
		}
		seenID[o.ID] = true

		if !g.Contains(o.Cell) {
			return obstacleErr(o.ID, ErrInvalidObstaclePlacement, "cell (%d,%d) outside %dx%d grid",
				o.X, o.Y, g.cfg.Width, g.cfg.Height)
		}
		if !o.Marked() && o.Facing != None {
			return obstacleErr(o.ID, ErrInvalidObstaclePlacement, "invalid facing %d", int(o.Facing))
		}
		if other, ok := seenCell[o.Cell]; ok {
			return obstacleErr(o.ID, ErrInvalidObstaclePlacement, "shares cell (%d,%d) with obstacle %d",
				o.X, o.Y, other)
		}
		seenCell[o.Cell] = o.ID
	}

	// 촬영 위치가 다른 장애물의 여유 영역 안에 있으면 두 장애물의 배치 자체가 충돌한다
	for i, o := range g.obstacles {
		if !o.Marked() {
			continue
		}
		view := g.viewingPoseAt(o, g.cfg.StandoffSteps())
		if j := g.blockingObstacle(view.Cell, i); j >= 0 {
			return obstacleErr(o.ID, ErrInvalidObstaclePlacement,
				"viewing pose %s lies in clearance zone of obstacle %d", view, g.obstacles[j].ID)
		}
	}
	return nil
}

// ViewingPose - 장애물 표식을 촬영하기 위한 기본 위치
func (g *Grid) ViewingPose(o Obstacle) (Pose, error) {
	if !o.Marked() {
		return Pose{}, obstacleErr(o.ID, ErrUnreachableObstacle, "obstacle has no marked face")
	}
	p := g.viewingPoseAt(o, g.cfg.StandoffSteps())
	if err := g.CheckViewingPose(o, p); err != nil {
		return Pose{}, err
	}
	return p, nil
}

// CheckViewingPose - 촬영 위치가 범위 안이고 충돌하지 않는지 검사
func (g *Grid) CheckViewingPose(o Obstacle, p Pose) error {
	if !g.InBounds(p.Cell) {
		return obstacleErr(o.ID, ErrUnreachableObstacle, "viewing pose %s out of bounds", p)
	}
	if !g.IsValid(p) {
		return obstacleErr(o.ID, ErrUnreachableObstacle, "viewing pose %s is blocked", p)
	}
	return nil
}

func (g *Grid) viewingPoseAt(o Obstacle, standoff int) Pose {
	dx, dy := o.Facing.Vector()
	return Pose{
		Cell:    o.Cell.Add(dx*standoff, dy*standoff),
		Heading: o.Facing.Opposite(),
	}
}
