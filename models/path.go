package models

// ========================================
// /path 요청/응답 (카메라 로봇 펌웨어 & 웹 시뮬레이터 공용)
// ========================================

// ObstacleData - 장애물 (d: 0/2/4/6 표식 방향, 8 표식 없음)
type ObstacleData struct {
	X  int `json:"x"`
	Y  int `json:"y"`
	D  int `json:"d"`
	ID int `json:"id"`
}

// PathRequest - 경로 계획 요청
type PathRequest struct {
	Obstacles []ObstacleData `json:"obstacles"`
	Retrying  bool           `json:"retrying"`
	RobotX    int            `json:"robot_x"`
	RobotY    int            `json:"robot_y"`
	RobotDir  int            `json:"robot_dir"`
	BigTurn   *int           `json:"big_turn,omitempty"`   // 0: tight, 1: wide, 2: 둘 다
	RobotSize *int           `json:"robot_size,omitempty"` // 풋프린트 반경 (칸)
}

// PathPoint - 명령 경계마다 샘플링한 포즈. S는 그 위치에서 촬영한 장애물 id, 없으면 -1.
type PathPoint struct {
	X int `json:"x"`
	Y int `json:"y"`
	D int `json:"d"`
	S int `json:"s"`
}

// PathData - 계획 결과
type PathData struct {
	PlanID    string      `json:"plan_id,omitempty"`
	Distance  float64     `json:"distance"`
	Path      []PathPoint `json:"path"`
	Commands  []string    `json:"commands"`
	Order     []int       `json:"order,omitempty"`
	Skipped   []int       `json:"skipped,omitempty"`
	Algorithm string      `json:"algorithm,omitempty"`
}

// PathResponse - {"data": ..., "error": null}
type PathResponse struct {
	Data  *PathData `json:"data"`
	Error *string   `json:"error"`
}
