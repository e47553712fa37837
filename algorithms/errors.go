package algorithms

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidObstaclePlacement = errors.New("invalid obstacle placement")
	ErrUnreachableObstacle      = errors.New("unreachable obstacle")
	ErrNoPathFound              = errors.New("no path found")
	ErrTooManyObstacles         = errors.New("obstacle count exceeds exact search bound")
	ErrInvalidStartPose         = errors.New("invalid robot start pose")
	ErrSearchBudgetExceeded     = errors.New("search expansion budget exceeded")
)

// ObstacleError - 특정 장애물에 귀속되는 계획 오류
type ObstacleError struct {
	ObstacleID int
	Reason     string
	Err        error
}

func (e *ObstacleError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("obstacle %d: %v", e.ObstacleID, e.Err)
	}
	return fmt.Sprintf("obstacle %d: %v: %s", e.ObstacleID, e.Err, e.Reason)
}

func (e *ObstacleError) Unwrap() error { return e.Err }

func obstacleErr(id int, err error, format string, args ...any) error {
	return &ObstacleError{ObstacleID: id, Err: err, Reason: fmt.Sprintf(format, args...)}
}
