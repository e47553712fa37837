package services

import (
	"testing"
	"time"

	"mdp-backend/algorithms"

	"github.com/stretchr/testify/assert"
)

func TestLoadPlannerConfig_Defaults(t *testing.T) {
	assert.Equal(t, algorithms.DefaultConfig(), LoadPlannerConfig())
}

func TestLoadPlannerConfig_Overrides(t *testing.T) {
	t.Setenv("PLANNER_GRID_WIDTH", "30")
	t.Setenv("PLANNER_ROBOT_RADIUS", "2")
	t.Setenv("PLANNER_TURN_MODE", "WIDE")
	t.Setenv("PLANNER_MAX_EXACT", "8")
	t.Setenv("PLANNER_FALLBACK", "fail")
	t.Setenv("PLANNER_UNREACHABLE", "skip")
	t.Setenv("PLANNER_TIMEOUT", "3")

	cfg := LoadPlannerConfig()
	assert.Equal(t, 30, cfg.Grid.Width)
	assert.Equal(t, 20, cfg.Grid.Height)
	assert.Equal(t, 2, cfg.Grid.RobotRadius)
	assert.Equal(t, algorithms.TurnWide, cfg.Motion.TurnMode)
	assert.Equal(t, 8, cfg.Optimizer.MaxExactObstacles)
	assert.Equal(t, algorithms.FallbackFail, cfg.Optimizer.Fallback)
	assert.Equal(t, algorithms.UnreachableSkip, cfg.Unreachable)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
}

func TestLoadPlannerConfig_InvalidValuesKeepDefaults(t *testing.T) {
	t.Setenv("PLANNER_GRID_HEIGHT", "tall")
	t.Setenv("PLANNER_TURN_MODE", "sideways")
	t.Setenv("PLANNER_TIMEOUT", "soon")

	def := algorithms.DefaultConfig()
	cfg := LoadPlannerConfig()
	assert.Equal(t, def.Grid.Height, cfg.Grid.Height)
	assert.Equal(t, def.Motion.TurnMode, cfg.Motion.TurnMode)
	assert.Equal(t, def.Timeout, cfg.Timeout)
}

func TestEnvDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "250ms")
	assert.Equal(t, 250*time.Millisecond, envDuration("TEST_DURATION", time.Second))

	t.Setenv("TEST_DURATION", "5")
	assert.Equal(t, 5*time.Second, envDuration("TEST_DURATION", time.Second))

	t.Setenv("TEST_DURATION", "")
	assert.Equal(t, time.Second, envDuration("TEST_DURATION", time.Second))
}

func TestLoadServerConfig(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("LOG_FLUSH_SIZE", "10")

	cfg := LoadServerConfig()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10, cfg.LogFlushSize)
	assert.Equal(t, 10*time.Second, cfg.LogFlushEvery)
}
