package services

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"mdp-backend/algorithms"

	"github.com/joho/godotenv"
)

// ServerConfig - 서버 실행 설정
type ServerConfig struct {
	Port          string
	CORSOrigins   string
	LogFlushSize  int
	LogFlushEvery time.Duration
	Planner       algorithms.Config
}

// LoadEnv - .env 파일 로드 (없으면 경고만)
func LoadEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		log.Println("⚠️  .env 파일을 찾을 수 없습니다.")
	}
}

// LoadServerConfig - 환경 변수에서 서버 설정 구성
func LoadServerConfig() ServerConfig {
	return ServerConfig{
		Port:          envString("PORT", "5000"),
		CORSOrigins:   envString("CORS_ORIGINS", "http://localhost:5173, http://localhost:3000"),
		LogFlushSize:  envInt("LOG_FLUSH_SIZE", 50),
		LogFlushEvery: envDuration("LOG_FLUSH_INTERVAL", 10*time.Second),
		Planner:       LoadPlannerConfig(),
	}
}

// LoadPlannerConfig - 기본 설정에 PLANNER_* 환경 변수를 덮어쓴다
func LoadPlannerConfig() algorithms.Config {
	cfg := algorithms.DefaultConfig()

	cfg.Grid.Width = envInt("PLANNER_GRID_WIDTH", cfg.Grid.Width)
	cfg.Grid.Height = envInt("PLANNER_GRID_HEIGHT", cfg.Grid.Height)
	cfg.Grid.RobotRadius = envInt("PLANNER_ROBOT_RADIUS", cfg.Grid.RobotRadius)
	cfg.Grid.Clearance = envInt("PLANNER_CLEARANCE", cfg.Grid.Clearance)
	cfg.Grid.Standoff = envInt("PLANNER_STANDOFF", cfg.Grid.Standoff)

	if v := os.Getenv("PLANNER_TURN_MODE"); v != "" {
		if mode, err := algorithms.ParseTurnMode(strings.ToLower(v)); err == nil {
			cfg.Motion.TurnMode = mode
		} else {
			log.Printf("⚠️ PLANNER_TURN_MODE 무시: %v", err)
		}
	}

	cfg.Optimizer.MaxExactObstacles = envInt("PLANNER_MAX_EXACT", cfg.Optimizer.MaxExactObstacles)
	cfg.Optimizer.MaxExpansions = envInt("PLANNER_MAX_EXPANSIONS", cfg.Optimizer.MaxExpansions)
	if v := os.Getenv("PLANNER_FALLBACK"); v != "" {
		if p, err := algorithms.ParseFallbackPolicy(strings.ToLower(v)); err == nil {
			cfg.Optimizer.Fallback = p
		} else {
			log.Printf("⚠️ PLANNER_FALLBACK 무시: %v", err)
		}
	}
	if v := os.Getenv("PLANNER_UNREACHABLE"); v != "" {
		if p, err := algorithms.ParseUnreachablePolicy(strings.ToLower(v)); err == nil {
			cfg.Unreachable = p
		} else {
			log.Printf("⚠️ PLANNER_UNREACHABLE 무시: %v", err)
		}
	}
	cfg.Timeout = envDuration("PLANNER_TIMEOUT", cfg.Timeout)

	return cfg
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("⚠️ %s=%q 는 정수가 아닙니다. 기본값 %d 사용", key, v, def)
		return def
	}
	return n
}

// envDuration - "10s" 형식 또는 초 단위 정수
func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	log.Printf("⚠️ %s=%q 는 시간 값이 아닙니다. 기본값 %v 사용", key, v, def)
	return def
}
