package models

// ========================================
// 메시지 타입 상수
// ========================================
const (
	// Server → Web
	MessageTypePlanUpdate = "plan_update" // 새 계획 (경로 + 명령)
	MessageTypePosition   = "position"    // 재생 중인 로봇 포즈
	MessageTypeSimulation = "simulation"  // 재생 시작/종료
	MessageTypeSystemInfo = "system_info" // 시스템 정보

	// Server → Robot
	MessageTypeCommands = "commands" // 명령 목록

	// Robot → Server → Web
	MessageTypeStatus = "status" // 로봇 상태 보고
)

// ========================================
// 공통 WebSocket 메시지 형식
// ========================================
type WebSocketMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp int64       `json:"timestamp"` // Unix timestamp (ms)
}

// PositionData - 재생 중인 포즈 (그리드 좌표)
type PositionData struct {
	PlanID string `json:"plan_id"`
	Step   int    `json:"step"`  // 포즈 인덱스
	Total  int    `json:"total"` // 전체 포즈 수
	X      int    `json:"x"`
	Y      int    `json:"y"`
	D      int    `json:"d"`
	S      int    `json:"s"` // 이 포즈에서 촬영한 장애물 id, 없으면 -1
}

// CommandsData - 로봇에 전달하는 명령 목록
type CommandsData struct {
	PlanID   string   `json:"plan_id"`
	Commands []string `json:"commands"`
}

// SimulationData - 재생 상태
type SimulationData struct {
	PlanID string `json:"plan_id"`
	State  string `json:"state"` // "started" | "finished" | "stopped"
	Poses  int    `json:"poses"`
}
