package algorithms

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// CommandKind - 펌웨어 명령 종류
type CommandKind int

const (
	CmdForward CommandKind = iota
	CmdBackward
	CmdTurn
	CmdSnap
	CmdFinish
)

// 회전 명령 접미사 (반경 등급)
const (
	tightSuffix = "00"
	wideSuffix  = "01"
)

// DefaultMaxMoveSteps - 한 이동 명령에 담을 수 있는 최대 칸 수 ("FW90")
const DefaultMaxMoveSteps = 9

// Command - 로봇 펌웨어가 실행하는 이산 명령
type Command struct {
	Kind       CommandKind
	Steps      int    // CmdForward / CmdBackward
	Turn       Motion // CmdTurn
	ObstacleID int    // CmdSnap
}

func (c Command) String() string {
	switch c.Kind {
	case CmdForward:
		return fmt.Sprintf("FW%02d", c.Steps*10)
	case CmdBackward:
		return fmt.Sprintf("BW%02d", c.Steps*10)
	case CmdTurn:
		suffix := tightSuffix
		if c.Turn.Radius == Wide {
			suffix = wideSuffix
		}
		return c.Turn.Kind.String() + suffix
	case CmdSnap:
		return fmt.Sprintf("SNAP%d", c.ObstacleID)
	case CmdFinish:
		return "FIN"
	}
	return fmt.Sprintf("Command(%d)", int(c.Kind))
}

// PoseAdvance - 명령 실행 후 포즈 인덱스가 전진하는 칸 수
func (c Command) PoseAdvance() int {
	switch c.Kind {
	case CmdForward, CmdBackward:
		return c.Steps
	case CmdTurn:
		return 1
	}
	return 0
}

func (c Command) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Command) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseCommand(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

var turnKinds = map[string]MotionKind{
	"FL": ForwardLeft,
	"FR": ForwardRight,
	"BL": BackwardLeft,
	"BR": BackwardRight,
}

// ParseCommand - 명령 문자열 파싱
func ParseCommand(s string) (Command, error) {
	switch {
	case s == "FIN":
		return Command{Kind: CmdFinish}, nil
	case strings.HasPrefix(s, "SNAP"):
		id, err := strconv.Atoi(s[4:])
		if err != nil {
			return Command{}, fmt.Errorf("bad snap command %q: %w", s, err)
		}
		return Command{Kind: CmdSnap, ObstacleID: id}, nil
	case len(s) < 4:
		return Command{}, fmt.Errorf("unknown command %q", s)
	}

	prefix, arg := s[:2], s[2:]
	if kind, ok := turnKinds[prefix]; ok {
		switch arg {
		case tightSuffix:
			return Command{Kind: CmdTurn, Turn: Motion{Kind: kind, Radius: Tight}}, nil
		case wideSuffix:
			return Command{Kind: CmdTurn, Turn: Motion{Kind: kind, Radius: Wide}}, nil
		}
		return Command{}, fmt.Errorf("unknown turn radius in %q", s)
	}

	dist, err := strconv.Atoi(arg)
	if err != nil || dist <= 0 || dist%10 != 0 {
		return Command{}, fmt.Errorf("bad move distance in %q", s)
	}
	switch prefix {
	case "FW":
		return Command{Kind: CmdForward, Steps: dist / 10}, nil
	case "BW":
		return Command{Kind: CmdBackward, Steps: dist / 10}, nil
	}
	return Command{}, fmt.Errorf("unknown command %q", s)
}

// CommandOptions - 명령 생성 옵션
type CommandOptions struct {
	MaxMoveSteps int
}

// GenerateCommands - 경로와 방문 지점을 명령 시퀀스로 변환한다.
// 같은 방향 직진은 MaxMoveSteps까지 하나로 합치고, 방문 지점마다 SNAP, 마지막에 FIN 하나.
func GenerateCommands(path Path, visits []Visit, opts CommandOptions) ([]Command, error) {
	if path.Len() == 0 {
		return nil, fmt.Errorf("empty path")
	}
	if len(path.Motions) != path.Len()-1 {
		return nil, fmt.Errorf("path has %d poses but %d motions", path.Len(), len(path.Motions))
	}
	maxSteps := opts.MaxMoveSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxMoveSteps
	}

	snaps := make(map[int][]int, len(visits))
	for _, v := range visits {
		if v.PoseIndex < 0 || v.PoseIndex >= path.Len() {
			return nil, fmt.Errorf("visit of obstacle %d at pose %d outside path", v.ObstacleID, v.PoseIndex)
		}
		snaps[v.PoseIndex] = append(snaps[v.PoseIndex], v.ObstacleID)
	}

	cmds := make([]Command, 0, len(path.Motions)+len(visits)+1)
	emitSnaps := func(idx int) {
		for _, id := range snaps[idx] {
			cmds = append(cmds, Command{Kind: CmdSnap, ObstacleID: id})
		}
	}

	emitSnaps(0)
	for i, m := range path.Motions {
		switch m.Kind {
		case Forward, Backward:
			kind := CmdForward
			if m.Kind == Backward {
				kind = CmdBackward
			}
			if n := len(cmds); n > 0 && cmds[n-1].Kind == kind && cmds[n-1].Steps < maxSteps {
				cmds[n-1].Steps++
			} else {
				cmds = append(cmds, Command{Kind: kind, Steps: 1})
			}
		default:
			cmds = append(cmds, Command{Kind: CmdTurn, Turn: m})
		}
		emitSnaps(i + 1)
	}
	cmds = append(cmds, Command{Kind: CmdFinish})
	return cmds, nil
}

// PoseIndices - 각 명령 실행 직후의 포즈 인덱스
func PoseIndices(cmds []Command) []int {
	out := make([]int, len(cmds))
	idx := 0
	for i, c := range cmds {
		idx += c.PoseAdvance()
		out[i] = idx
	}
	return out
}

// ReplayCommands - start에서 명령을 적용해 지나가는 모든 포즈를 반환한다 (start 포함)
func ReplayCommands(start Pose, cmds []Command, mc MotionConfig) ([]Pose, error) {
	poses := []Pose{start}
	cur := start
	for i, c := range cmds {
		switch c.Kind {
		case CmdForward, CmdBackward:
			m := Motion{Kind: Forward}
			if c.Kind == CmdBackward {
				m.Kind = Backward
			}
			for s := 0; s < c.Steps; s++ {
				cur = mc.Apply(cur, m)
				poses = append(poses, cur)
			}
		case CmdTurn:
			cur = mc.Apply(cur, c.Turn)
			poses = append(poses, cur)
		case CmdSnap:
		case CmdFinish:
			if i != len(cmds)-1 {
				return nil, fmt.Errorf("FIN at position %d is not last", i)
			}
		default:
			return nil, fmt.Errorf("unknown command kind %d", int(c.Kind))
		}
	}
	return poses, nil
}
