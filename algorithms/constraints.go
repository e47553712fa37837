package algorithms

import "slices"

// Constraint - 재시도(retrying) 모드에서 최적화기에 주입되는 제약.
// 촬영 위치를 옮기거나 촬영 위치로 진입하는 모션을 제한한다.
type Constraint interface {
	ViewingPose(ob Obstacle, view Pose) Pose
	Arrival(ob Obstacle) func(Motion) bool
}

// StandoffBackoff - 촬영 위치를 장애물에서 Steps 칸 더 떨어뜨린다
type StandoffBackoff struct {
	Steps int
}

func (b StandoffBackoff) ViewingPose(ob Obstacle, view Pose) Pose {
	dx, dy := ob.Facing.Vector()
	return Pose{Cell: view.Add(dx*b.Steps, dy*b.Steps), Heading: view.Heading}
}

func (StandoffBackoff) Arrival(Obstacle) func(Motion) bool { return nil }

// ExcludeArrival - 지정한 장애물(비어 있으면 전체)의 촬영 위치로 Kinds 모션으로 진입하지 못하게 한다
type ExcludeArrival struct {
	ObstacleIDs []int
	Kinds       []MotionKind
}

func (e ExcludeArrival) ViewingPose(_ Obstacle, view Pose) Pose { return view }

func (e ExcludeArrival) Arrival(ob Obstacle) func(Motion) bool {
	if len(e.ObstacleIDs) > 0 && !slices.Contains(e.ObstacleIDs, ob.ID) {
		return nil
	}
	kinds := slices.Clone(e.Kinds)
	return func(m Motion) bool {
		return !slices.Contains(kinds, m.Kind)
	}
}

// Constraints - 여러 제약을 순서대로 적용한다
type Constraints []Constraint

func (cs Constraints) ViewingPose(ob Obstacle, view Pose) Pose {
	for _, c := range cs {
		view = c.ViewingPose(ob, view)
	}
	return view
}

func (cs Constraints) Arrival(ob Obstacle) func(Motion) bool {
	var filters []func(Motion) bool
	for _, c := range cs {
		if f := c.Arrival(ob); f != nil {
			filters = append(filters, f)
		}
	}
	if len(filters) == 0 {
		return nil
	}
	return func(m Motion) bool {
		for _, f := range filters {
			if !f(m) {
				return false
			}
		}
		return true
	}
}

// DefaultRetryConstraint - 제약이 주어지지 않은 재시도 요청에 적용된다
var DefaultRetryConstraint Constraint = StandoffBackoff{Steps: 1}
