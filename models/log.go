package models

import (
	"time"
)

// PlanLog - 경로 계획 감사 로그
type PlanLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	PlanID    string    `gorm:"size:36;index" json:"plan_id"`
	Source    string    `gorm:"size:16" json:"source"` // "http", "cli", "simulate"

	// 요청
	ObstacleCount int    `json:"obstacle_count"`
	Retrying      bool   `json:"retrying"`
	RobotX        int    `json:"robot_x"`
	RobotY        int    `json:"robot_y"`
	RobotDir      int    `json:"robot_dir"`
	TurnMode      string `gorm:"size:8" json:"turn_mode"`

	// 결과
	Algorithm    string  `gorm:"size:32" json:"algorithm"`
	Distance     float64 `json:"distance"`
	CommandCount int     `json:"command_count"`
	Commands     string  `gorm:"type:text" json:"commands"` // 쉼표로 이어 붙인 명령
	Skipped      string  `json:"skipped"`
	DurationMs   int64   `json:"duration_ms"`
	Error        string  `gorm:"type:text" json:"error"`

	// 메타데이터
	RequestJSON string `gorm:"type:text" json:"request_json"` // 원본 요청 JSON
}

// PlanStats - 최근 계획 통계
type PlanStats struct {
	TotalPlans      int64            `json:"total_plans"`
	FailedPlans     int64            `json:"failed_plans"`
	AvgDurationMs   float64          `json:"avg_duration_ms"`
	AlgorithmCounts map[string]int64 `json:"algorithm_counts"`
	TimeRange       string           `json:"time_range"`
}
