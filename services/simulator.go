package services

import (
	"fmt"
	"log"
	"sync"
	"time"

	"mdp-backend/algorithms"
	"mdp-backend/models"
)

// PlanSimulator - 계획된 명령을 재생해 포즈를 일정 주기로 브로드캐스트한다
type PlanSimulator struct {
	IsRunning     bool
	broadcastFunc func(models.WebSocketMessage)
	tick          time.Duration

	// 재생 상태
	planID string
	poses  []algorithms.Pose
	snaps  map[int]int
	step   int

	// 제어
	stopChan chan struct{}
	done     chan struct{}
	mu       sync.RWMutex
	startMu  sync.Mutex // 이전 재생 중지와 새 재생 설정을 하나로 묶는다
}

// NewPlanSimulator - 시뮬레이터 생성 (tick: 포즈 하나당 재생 시간)
func NewPlanSimulator(broadcastFunc func(models.WebSocketMessage), tick time.Duration) *PlanSimulator {
	if tick <= 0 {
		tick = 200 * time.Millisecond
	}
	return &PlanSimulator{
		broadcastFunc: broadcastFunc,
		tick:          tick,
	}
}

// Start - 계획 재생 시작. 재생 중이면 이전 재생을 멈춘다.
// 명령을 시작 포즈에서 다시 적용해 계획 경로와 일치하는지 확인한다.
func (s *PlanSimulator) Start(outcome *PlanOutcome) error {
	poses, err := algorithms.ReplayCommands(outcome.Start, outcome.Commands, outcome.Motions)
	if err != nil {
		return fmt.Errorf("명령 재생 실패: %w", err)
	}
	if len(poses) != len(outcome.Poses) || poses[len(poses)-1] != outcome.Poses[len(outcome.Poses)-1] {
		return fmt.Errorf("명령 재생 결과가 계획 경로와 다름: %d != %d 포즈", len(poses), len(outcome.Poses))
	}

	s.startMu.Lock()
	defer s.startMu.Unlock()

	s.Stop()

	s.mu.Lock()
	s.IsRunning = true
	s.planID = outcome.PlanID
	s.poses = poses
	s.snaps = outcome.Snaps
	s.step = 0
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stopChan, s.done
	s.mu.Unlock()

	log.Printf("🚀 계획 재생 시작 [%s]: 포즈 %d개", outcome.PlanID, len(poses))
	s.broadcastSimulation("started")

	go s.run(stop, done)
	return nil
}

// Stop - 재생 중지
func (s *PlanSimulator) Stop() {
	s.mu.Lock()
	if !s.IsRunning {
		s.mu.Unlock()
		return
	}
	s.IsRunning = false
	stop, done := s.stopChan, s.done
	s.mu.Unlock()

	close(stop)
	<-done
	log.Println("🛑 계획 재생 중지")
}

// run - 재생 메인 루프
func (s *PlanSimulator) run(stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		s.broadcastPosition()
		if s.advance() {
			s.finish("finished")
			return
		}

		select {
		case <-stop:
			s.finish("stopped")
			return
		case <-ticker.C:
		}
	}
}

// advance - 다음 포즈로 이동. 마지막 포즈를 보낸 뒤면 true.
func (s *PlanSimulator) advance() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step >= len(s.poses)-1 {
		return true
	}
	s.step++
	return false
}

func (s *PlanSimulator) finish(state string) {
	s.mu.Lock()
	s.IsRunning = false
	planID := s.planID
	s.mu.Unlock()
	s.broadcastSimulation(state)
	if state == "finished" {
		log.Printf("🏁 계획 재생 완료 [%s]", planID)
	}
}

// broadcastPosition - 현재 포즈 브로드캐스트
func (s *PlanSimulator) broadcastPosition() {
	if s.broadcastFunc == nil {
		return
	}

	s.mu.RLock()
	p := s.poses[s.step]
	data := models.PositionData{
		PlanID: s.planID,
		Step:   s.step,
		Total:  len(s.poses),
		X:      p.X,
		Y:      p.Y,
		D:      int(p.Heading),
		S:      -1,
	}
	if id, ok := s.snaps[s.step]; ok {
		data.S = id
	}
	s.mu.RUnlock()

	s.broadcastFunc(models.WebSocketMessage{
		Type:      models.MessageTypePosition,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	})
}

// broadcastSimulation - 재생 상태 브로드캐스트
func (s *PlanSimulator) broadcastSimulation(state string) {
	if s.broadcastFunc == nil {
		return
	}

	s.mu.RLock()
	data := models.SimulationData{PlanID: s.planID, State: state, Poses: len(s.poses)}
	s.mu.RUnlock()

	s.broadcastFunc(models.WebSocketMessage{
		Type:      models.MessageTypeSimulation,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	})
}

// GetStatus - 현재 상태 반환
func (s *PlanSimulator) GetStatus() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := map[string]interface{}{
		"running": s.IsRunning,
		"plan_id": s.planID,
		"step":    s.step,
		"poses":   len(s.poses),
	}
	if s.step < len(s.poses) {
		status["pose"] = s.poses[s.step]
	}
	return status
}
