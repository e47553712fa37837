package services

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"mdp-backend/algorithms"
	"mdp-backend/models"

	"github.com/google/uuid"
)

// Scenario - 무작위로 생성한 장애물 배치
type Scenario struct {
	ID        string             `json:"id"`
	Seed      int64              `json:"seed"`
	Request   models.PathRequest `json:"request"`
	CreatedAt time.Time          `json:"created_at"`
}

// ScenarioGenerator handles random obstacle layout generation
type ScenarioGenerator struct {
	mu             sync.RWMutex
	active         *Scenario
	generationMu   sync.Mutex
	cfg            algorithms.GridConfig
	motions        algorithms.MotionConfig
	maxExpansions  int
	start          algorithms.Pose
	attemptsPerObs int
}

// NewScenarioGenerator creates a generator for the planner config, robot starting at start
func NewScenarioGenerator(cfg algorithms.Config, start algorithms.Pose) *ScenarioGenerator {
	return &ScenarioGenerator{
		cfg:            cfg.Grid,
		motions:        cfg.Motion,
		maxExpansions:  cfg.Optimizer.MaxExpansions,
		start:          start,
		attemptsPerObs: 200,
	}
}

// Generate creates count obstacles that pass placement validation and whose
// viewing poses are all reachable from the start pose.
// seed 0 uses the current time.
func (sg *ScenarioGenerator) Generate(count int, seed int64) (*Scenario, error) {
	sg.generationMu.Lock()
	defer sg.generationMu.Unlock()

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	obstacles, err := sg.generateObstacles(rng, count)
	if err != nil {
		return nil, err
	}

	req := models.PathRequest{
		Obstacles: make([]models.ObstacleData, len(obstacles)),
		RobotX:    sg.start.X,
		RobotY:    sg.start.Y,
		RobotDir:  int(sg.start.Heading),
	}
	for i, o := range obstacles {
		req.Obstacles[i] = models.ObstacleData{X: o.X, Y: o.Y, D: int(o.Facing), ID: o.ID}
	}

	scenario := &Scenario{
		ID:        uuid.New().String(),
		Seed:      seed,
		Request:   req,
		CreatedAt: time.Now(),
	}

	sg.mu.Lock()
	sg.active = scenario
	sg.mu.Unlock()

	return scenario, nil
}

// generateObstacles - 후보를 하나씩 뽑아 배치 검증을 통과한 것만 남긴다
func (sg *ScenarioGenerator) generateObstacles(rng *rand.Rand, count int) ([]algorithms.Obstacle, error) {
	obstacles := make([]algorithms.Obstacle, 0, count)

	for attempts := 0; len(obstacles) < count; attempts++ {
		if attempts >= count*sg.attemptsPerObs {
			return nil, fmt.Errorf("%d개 중 %d개만 배치 가능 (%dx%d 그리드)",
				count, len(obstacles), sg.cfg.Width, sg.cfg.Height)
		}
		candidate := algorithms.Obstacle{
			ID: len(obstacles) + 1,
			Cell: algorithms.Cell{
				X: rng.Intn(sg.cfg.Width),
				Y: rng.Intn(sg.cfg.Height),
			},
			Facing: algorithms.Headings[rng.Intn(len(algorithms.Headings))],
		}
		if sg.accepts(obstacles, candidate) {
			obstacles = append(obstacles, candidate)
		}
	}
	return obstacles, nil
}

// accepts - 후보를 추가해도 배치가 유효하고, 시작 포즈에서 모든 촬영 위치로 갈 수 있는지.
// 모든 모션에는 역모션이 있으므로 시작 포즈와 연결된 촬영 위치끼리도 서로 연결된다.
func (sg *ScenarioGenerator) accepts(placed []algorithms.Obstacle, candidate algorithms.Obstacle) bool {
	grid := algorithms.NewGrid(sg.cfg)
	for _, o := range placed {
		grid.AddObstacle(o)
	}
	grid.AddObstacle(candidate)

	if grid.ValidatePlacement() != nil || !grid.IsValid(sg.start) {
		return false
	}

	graph := algorithms.NewPoseGraph(grid, sg.motions)
	opts := algorithms.SearchOptions{MaxExpansions: sg.maxExpansions}
	for _, o := range grid.Obstacles() {
		view, err := grid.ViewingPose(o)
		if err != nil {
			return false
		}
		if _, _, err := algorithms.ShortestPath(context.Background(), graph, sg.start, view, opts); err != nil {
			return false
		}
	}
	return true
}

// Active returns the most recently generated scenario
func (sg *ScenarioGenerator) Active() *Scenario {
	sg.mu.RLock()
	defer sg.mu.RUnlock()
	return sg.active
}

// Clear removes the active scenario
func (sg *ScenarioGenerator) Clear() {
	sg.mu.Lock()
	defer sg.mu.Unlock()
	sg.active = nil
}
