package algorithms

import (
	"container/heap"
	"context"
	"fmt"
	"slices"
)

// Path - 포즈 시퀀스. Motions[i]는 Poses[i] → Poses[i+1] 이동이다.
type Path struct {
	Poses   []Pose   `json:"poses"`
	Motions []Motion `json:"motions"`
}

// Len - 포즈 개수
func (p Path) Len() int { return len(p.Poses) }

// First - 시작 포즈
func (p Path) First() Pose { return p.Poses[0] }

// Last - 마지막 포즈
func (p Path) Last() Pose { return p.Poses[len(p.Poses)-1] }

// Cost - 경로 전체 비용 (프리미티브 비용 합)
func (p Path) Cost(mc MotionConfig) float64 {
	total := 0.0
	for _, m := range p.Motions {
		total += mc.Cost(m)
	}
	return total
}

// Concat - 다음 구간을 이어 붙인다. next의 첫 포즈는 p의 마지막 포즈와 같아야 한다.
func (p Path) Concat(next Path) (Path, error) {
	if p.Len() == 0 {
		return next, nil
	}
	if next.Len() == 0 {
		return p, nil
	}
	if next.First() != p.Last() {
		return Path{}, fmt.Errorf("path join mismatch: %s != %s", p.Last(), next.First())
	}
	out := Path{
		Poses:   make([]Pose, 0, p.Len()+next.Len()-1),
		Motions: make([]Motion, 0, len(p.Motions)+len(next.Motions)),
	}
	out.Poses = append(append(out.Poses, p.Poses...), next.Poses[1:]...)
	out.Motions = append(append(out.Motions, p.Motions...), next.Motions...)
	return out, nil
}

// SearchOptions - 단일 구간 탐색 옵션
type SearchOptions struct {
	// MaxExpansions - 0이면 무제한
	MaxExpansions int
	// Arrival - nil이 아니면 목표 포즈로 들어가는 간선을 이 조건으로 제한한다. 시작과 목표가 같아도 적용된다.
	Arrival func(Motion) bool
}

// ctxCheckInterval - 컨텍스트 취소 확인 주기 (확장 횟수)
const ctxCheckInterval = 256

// node - A* 노드
type node struct {
	pose   Pose
	g, h   float64
	f      float64
	via    Motion
	parent *node
	seq    int
	index  int // for heap
}

// priorityQueue - f, h, 삽입 순서로 정렬되는 A* 우선순위 큐
type priorityQueue []*node

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].f != pq[j].f {
		return pq[i].f < pq[j].f
	}
	if pq[i].h != pq[j].h {
		return pq[i].h < pq[j].h
	}
	return pq[i].seq < pq[j].seq
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x any) {
	n := x.(*node)
	n.index = len(*pq)
	*pq = append(*pq, n)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}

// heuristic - 맨해튼 거리 × 칸 비용 + 남은 최소 회전 수 × 최소 회전 벌점
func heuristic(mc MotionConfig, from, to Pose) float64 {
	return mc.StepCost*float64(from.Manhattan(to.Cell)) +
		mc.minTurnPenalty()*float64(quarterTurns(from.Heading, to.Heading))
}

// ShortestPath - A* 알고리즘으로 두 포즈 사이 최소 비용 경로 찾기
func ShortestPath(ctx context.Context, graph *PoseGraph, from, to Pose, opts SearchOptions) (Path, float64, error) {
	// 도착 조건이 있으면 제자리 구간도 목표로 한 번 이상 진입해야 한다
	loop := from == to && opts.Arrival != nil
	if from == to && !loop {
		return Path{Poses: []Pose{from}}, 0, nil
	}
	if err := ctx.Err(); err != nil {
		return Path{}, 0, err
	}
	grid := graph.Grid()
	if !grid.IsValid(from) || !grid.IsValid(to) {
		return Path{}, 0, fmt.Errorf("%s -> %s: endpoint invalid: %w", from, to, ErrNoPathFound)
	}

	mc := graph.Motions()
	openSet := make(priorityQueue, 0, 64)
	heap.Init(&openSet)
	closedSet := make(map[Pose]bool)
	gScores := make(map[Pose]float64)
	if !loop {
		gScores[from] = 0
	}

	seq := 0
	h0 := heuristic(mc, from, to)
	heap.Push(&openSet, &node{pose: from, h: h0, f: h0, seq: seq})

	expansions := 0
	edges := make([]Edge, 0, 10)

	for openSet.Len() > 0 {
		current := heap.Pop(&openSet).(*node)
		if closedSet[current.pose] {
			continue
		}
		if current.pose == to && current.parent != nil {
			return reconstructPath(current), current.g, nil
		}
		if current.parent != nil || !loop {
			closedSet[current.pose] = true
		}

		expansions++
		if opts.MaxExpansions > 0 && expansions > opts.MaxExpansions {
			return Path{}, 0, fmt.Errorf("%s -> %s after %d expansions: %w", from, to, opts.MaxExpansions, ErrSearchBudgetExceeded)
		}
		if expansions%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return Path{}, 0, err
			}
		}

		edges = graph.Successors(current.pose, edges[:0])
		for _, e := range edges {
			if closedSet[e.To] {
				continue
			}
			if e.To == to && opts.Arrival != nil && !opts.Arrival(e.Motion) {
				continue
			}

			tentativeG := current.g + e.Cost
			if existingG, ok := gScores[e.To]; ok && tentativeG >= existingG {
				continue
			}
			gScores[e.To] = tentativeG

			seq++
			h := heuristic(mc, e.To, to)
			heap.Push(&openSet, &node{
				pose:   e.To,
				g:      tentativeG,
				h:      h,
				f:      tentativeG + h,
				via:    e.Motion,
				parent: current,
				seq:    seq,
			})
		}
	}

	// 경로 없음
	return Path{}, 0, fmt.Errorf("%s -> %s: %w", from, to, ErrNoPathFound)
}

// reconstructPath - 경로 재구성
func reconstructPath(n *node) Path {
	var poses []Pose
	var motions []Motion
	for cur := n; cur != nil; cur = cur.parent {
		poses = append(poses, cur.pose)
		if cur.parent != nil {
			motions = append(motions, cur.via)
		}
	}
	slices.Reverse(poses)
	slices.Reverse(motions)
	return Path{Poses: poses, Motions: motions}
}
