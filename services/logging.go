package services

import (
	"fmt"
	"log"
	"sync"
	"time"

	"mdp-backend/models"

	"gorm.io/gorm"
)

// recentCapacity - DB 없이 메모리에 유지하는 최근 로그 수
const recentCapacity = 200

// LogBuffer - 계획 로그 버퍼 (비동기 일괄 저장)
type LogBuffer struct {
	logs      []models.PlanLog
	recent    []models.PlanLog // 최근 로그 (오래된 것부터)
	mu        sync.Mutex
	flushSize int           // 일괄 저장 크기
	flushTime time.Duration // 자동 플러시 시간
	stopChan  chan struct{}
	done      chan struct{}
}

var logBuffer *LogBuffer

// InitLogging - 로깅 시스템 초기화
func InitLogging(flushSize int, flushInterval time.Duration) {
	if flushSize <= 0 {
		flushSize = 50
	}
	if flushInterval <= 0 {
		flushInterval = 10 * time.Second
	}
	logBuffer = &LogBuffer{
		logs:      make([]models.PlanLog, 0, flushSize*2),
		flushSize: flushSize,
		flushTime: flushInterval,
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
	}

	// 자동 플러시 고루틴 시작
	go logBuffer.autoFlush()

	log.Printf("✅ 로깅 시스템 초기화 완료 (flushSize: %d, flushInterval: %v)", flushSize, flushInterval)
}

// autoFlush - 주기적 로그 저장
func (lb *LogBuffer) autoFlush() {
	defer close(lb.done)
	ticker := time.NewTicker(lb.flushTime)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			lb.Flush()
		case <-lb.stopChan:
			lb.Flush() // 종료 시 남은 로그 저장
			return
		}
	}
}

// AddPlanLog - 로그 버퍼에 추가 (비동기)
func AddPlanLog(entry models.PlanLog) {
	lb := logBuffer
	if lb == nil {
		log.Println("⚠️ 로깅 시스템이 초기화되지 않음")
		return
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	lb.mu.Lock()
	lb.logs = append(lb.logs, entry)
	lb.recent = append(lb.recent, entry)
	if over := len(lb.recent) - recentCapacity; over > 0 {
		lb.recent = append(lb.recent[:0], lb.recent[over:]...)
	}
	size := len(lb.logs)
	lb.mu.Unlock()

	// 버퍼 크기가 차면 즉시 플러시
	if size >= lb.flushSize {
		go lb.Flush()
	}
}

// Flush - 버퍼의 모든 로그를 DB에 저장
func (lb *LogBuffer) Flush() {
	lb.mu.Lock()
	if len(lb.logs) == 0 {
		lb.mu.Unlock()
		return
	}

	// 로그 복사 및 버퍼 초기화
	logsToSave := make([]models.PlanLog, len(lb.logs))
	copy(logsToSave, lb.logs)
	lb.logs = lb.logs[:0] // 버퍼 비우기
	lb.mu.Unlock()

	// DB 일괄 저장
	if db != nil {
		err := db.CreateInBatches(logsToSave, 100).Error
		if err != nil {
			log.Printf("❌ 로그 저장 실패: %v", err)
		} else {
			log.Printf("💾 로그 %d개 저장 완료", len(logsToSave))
		}
	}
}

// pending - 아직 저장되지 않은 로그 수
func (lb *LogBuffer) pending() int {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return len(lb.logs)
}

// recentLogs - 메모리의 최근 로그 (최신순)
func (lb *LogBuffer) recentLogs(limit int) []models.PlanLog {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	n := len(lb.recent)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]models.PlanLog, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, lb.recent[i])
	}
	return out
}

// RecentPlanLogs - 최근 계획 로그. DB가 없으면 메모리 버퍼에서 조회한다.
func RecentPlanLogs(limit int) ([]models.PlanLog, error) {
	if db != nil {
		return GetRecentPlanLogs(limit)
	}
	if logBuffer == nil {
		return []models.PlanLog{}, nil
	}
	return logBuffer.recentLogs(limit), nil
}

// GetPlanStats - 최근 hours 시간의 계획 통계
func GetPlanStats(hours int) (*models.PlanStats, error) {
	since := time.Now().Add(-time.Duration(hours) * time.Hour)
	stats := &models.PlanStats{
		AlgorithmCounts: make(map[string]int64),
		TimeRange:       fmt.Sprintf("Last %d hours", hours),
	}

	if db == nil {
		var logs []models.PlanLog
		if logBuffer != nil {
			logs = logBuffer.recentLogs(0)
		}
		var totalMs int64
		for _, l := range logs {
			if l.CreatedAt.Before(since) {
				continue
			}
			stats.TotalPlans++
			totalMs += l.DurationMs
			if l.Error != "" {
				stats.FailedPlans++
			} else {
				stats.AlgorithmCounts[l.Algorithm]++
			}
		}
		if stats.TotalPlans > 0 {
			stats.AvgDurationMs = float64(totalMs) / float64(stats.TotalPlans)
		}
		return stats, nil
	}

	base := db.Model(&models.PlanLog{}).Where("created_at >= ?", since)
	if err := base.Session(&gorm.Session{}).Count(&stats.TotalPlans).Error; err != nil {
		return nil, err
	}
	base.Session(&gorm.Session{}).Where("error <> ''").Count(&stats.FailedPlans)

	var avg struct{ Avg float64 }
	base.Session(&gorm.Session{}).Select("COALESCE(AVG(duration_ms), 0) as avg").Scan(&avg)
	stats.AvgDurationMs = avg.Avg

	// 알고리즘별 카운트
	var algoCounts []struct {
		Algorithm string
		Count     int64
	}
	base.Session(&gorm.Session{}).
		Select("algorithm, COUNT(*) as count").
		Where("error = ''").
		Group("algorithm").
		Scan(&algoCounts)
	for _, ac := range algoCounts {
		stats.AlgorithmCounts[ac.Algorithm] = ac.Count
	}
	return stats, nil
}

// StopLogging - 로깅 시스템 종료
func StopLogging() {
	if logBuffer != nil {
		close(logBuffer.stopChan)
		<-logBuffer.done
		logBuffer = nil
		log.Println("🛑 로깅 시스템 종료")
	}
}
