package algorithms

import "fmt"

// Heading - 로봇/장애물 방향 (와이어 인코딩 0/2/4/6/8)
type Heading int

const (
	North Heading = 0
	East  Heading = 2
	South Heading = 4
	West  Heading = 6
	None  Heading = 8 // 표식 없는 장애물 (충돌 전용, 방문하지 않음)
)

// Headings - 로봇이 가질 수 있는 4방향
var Headings = []Heading{North, East, South, West}

// Valid - 로봇 방향으로 사용 가능한지 여부
func (h Heading) Valid() bool {
	return h == North || h == East || h == South || h == West
}

// Vector - 한 칸 전진했을 때의 변위
func (h Heading) Vector() (int, int) {
	switch h {
	case North:
		return 0, 1
	case East:
		return 1, 0
	case South:
		return 0, -1
	case West:
		return -1, 0
	}
	return 0, 0
}

// Right - 시계 방향 90도
func (h Heading) Right() Heading { return (h + 2) % 8 }

// Left - 반시계 방향 90도
func (h Heading) Left() Heading { return (h + 6) % 8 }

// Opposite - 반대 방향
func (h Heading) Opposite() Heading { return (h + 4) % 8 }

func (h Heading) String() string {
	switch h {
	case North:
		return "N"
	case East:
		return "E"
	case South:
		return "S"
	case West:
		return "W"
	case None:
		return "-"
	}
	return fmt.Sprintf("Heading(%d)", int(h))
}

// ParseHeading - 와이어 값을 Heading으로 변환
func ParseHeading(v int) (Heading, error) {
	h := Heading(v)
	if h.Valid() || h == None {
		return h, nil
	}
	return None, fmt.Errorf("잘못된 방향 값: %d", v)
}

// quarterTurns - a에서 b로 가는 데 필요한 최소 90도 회전 수 (0, 1, 2)
func quarterTurns(a, b Heading) int {
	d := int(a-b) / 2
	if d < 0 {
		d = -d
	}
	if d == 3 {
		d = 1
	}
	return d
}

// Cell - 그리드 좌표 (한 칸 = 10 단위)
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add - 변위 적용
func (c Cell) Add(dx, dy int) Cell {
	return Cell{X: c.X + dx, Y: c.Y + dy}
}

// Manhattan - 맨해튼 거리
func (c Cell) Manhattan(o Cell) int {
	return abs(c.X-o.X) + abs(c.Y-o.Y)
}

// Chebyshev - 체비셰프 거리 (정사각형 풋프린트 충돌 판정용)
func (c Cell) Chebyshev(o Cell) int {
	return max(abs(c.X-o.X), abs(c.Y-o.Y))
}

// Pose - 위치 + 방향. 값 타입이므로 map 키로 그대로 사용한다.
type Pose struct {
	Cell
	Heading Heading `json:"d"`
}

// NewPose - Pose 생성
func NewPose(x, y int, h Heading) Pose {
	return Pose{Cell: Cell{X: x, Y: y}, Heading: h}
}

func (p Pose) String() string {
	return fmt.Sprintf("(%d,%d,%s)", p.X, p.Y, p.Heading)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
