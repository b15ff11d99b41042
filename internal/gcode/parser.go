package gcode

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// MoveType classifies a parsed program move.
type MoveType int

const (
	MoveRapid   MoveType = iota // G0: positioning, no cutting
	MoveFeed                    // G1/G2/G3: cutting move
	MovePlunge                  // Z descending without XY travel
	MoveRetract                 // Z ascending without cutting
)

// Move is a single parsed movement with absolute endpoints. Line is
// the one-based program line the move came from.
type Move struct {
	Type  MoveType
	FromX float64
	FromY float64
	FromZ float64
	ToX   float64
	ToY   float64
	ToZ   float64
	Feed  float64
	Line  int
}

var (
	wordRe    = regexp.MustCompile(`([XYZRQF])(-?\d+\.?\d*)`)
	lineNumRe = regexp.MustCompile(`^N\d+\s*`)
	gWordRe   = regexp.MustCompile(`G0*(\d+)`)
)

// ParseProgram parses rendered G-code into structured moves. It strips
// comments and line numbers, tracks absolute position and modal feed,
// and understands linear moves, arcs and the G73/G81 drill cycles. A
// drill cycle parses as a plunge to the hole bottom; the position
// state afterwards sits at the cycle's retract plane.
func ParseProgram(code string) []Move {
	var moves []Move

	curX, curY, curZ := 0.0, 0.0, 0.0
	curFeed := 0.0
	curR := 0.0

	for lineNo, raw := range strings.Split(code, "\n") {
		line := stripComments(raw)
		if line == "" {
			continue
		}
		upper := strings.ToUpper(line)
		upper = lineNumRe.ReplaceAllString(upper, "")

		cmd := motionCommand(upper)
		if cmd < 0 {
			continue
		}

		newX, newY, newZ, newFeed := curX, curY, curZ, curFeed
		r := curR
		for _, m := range wordRe.FindAllStringSubmatch(upper, -1) {
			val, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				continue
			}
			switch m[1] {
			case "X":
				newX = val
			case "Y":
				newY = val
			case "Z":
				newZ = val
			case "R":
				r = val
			case "F":
				newFeed = val
			}
		}

		switch cmd {
		case 73, 81:
			// The cycle feeds to the hole bottom and retracts.
			moves = append(moves, Move{
				Type:  MovePlunge,
				FromX: curX, FromY: curY, FromZ: curZ,
				ToX: newX, ToY: newY, ToZ: newZ,
				Feed: newFeed,
				Line: lineNo + 1,
			})
			curX, curY, curZ = newX, newY, r
			curFeed = newFeed
			curR = r
			continue
		}

		moves = append(moves, Move{
			Type:  classifyMove(cmd == 0, curZ, newZ, curX, curY, newX, newY),
			FromX: curX, FromY: curY, FromZ: curZ,
			ToX: newX, ToY: newY, ToZ: newZ,
			Feed: newFeed,
			Line: lineNo + 1,
		})
		curX, curY, curZ, curFeed = newX, newY, newZ, newFeed
		curR = r
	}
	return moves
}

// stripComments removes semicolon and parenthetical comments and trims
// the remainder.
func stripComments(line string) string {
	if idx := strings.Index(line, ";"); idx >= 0 {
		line = line[:idx]
	}
	for {
		start := strings.Index(line, "(")
		if start < 0 {
			break
		}
		end := strings.Index(line[start:], ")")
		if end < 0 {
			line = line[:start]
			break
		}
		line = line[:start] + line[start+end+1:]
	}
	return strings.TrimSpace(line)
}

// motionCommand returns the motion-relevant G number on the line
// (0, 1, 2, 3, 73 or 81), or -1 when the line commands no motion.
func motionCommand(upper string) int {
	cmd := -1
	for _, m := range gWordRe.FindAllStringSubmatch(upper, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		switch n {
		case 0, 1, 2, 3, 73, 81:
			cmd = n
		case 80:
			// Cycle cancel; no motion.
		}
	}
	return cmd
}

// classifyMove labels a move by its dominant motion: rapids that rise
// are retracts, pure-Z feed moves are plunges or retracts, everything
// else at feed is a cut.
func classifyMove(isRapid bool, fromZ, toZ, fromX, fromY, toX, toY float64) MoveType {
	zDelta := toZ - fromZ
	hasXY := fromX != toX || fromY != toY

	switch {
	case isRapid:
		if zDelta > 0 {
			return MoveRetract
		}
		return MoveRapid
	case zDelta < -0.001 && !hasXY:
		return MovePlunge
	case zDelta > 0.001 && !hasXY:
		return MoveRetract
	default:
		return MoveFeed
	}
}

// ProgramStats summarizes a parsed program for estimates and preview
// scaling.
type ProgramStats struct {
	RapidDistance float64 `json:"rapid_distance"`
	CutDistance   float64 `json:"cut_distance"`
	MinX          float64 `json:"min_x"`
	MinY          float64 `json:"min_y"`
	MinZ          float64 `json:"min_z"`
	MaxX          float64 `json:"max_x"`
	MaxY          float64 `json:"max_y"`
	MaxZ          float64 `json:"max_z"`
	// EstimatedMinutes sums cut distance over feed and rapid distance
	// over the machine's rapid rate.
	EstimatedMinutes float64 `json:"estimated_minutes"`
}

// Stats computes distances, the motion bounding box and a time
// estimate. rapidRate is the machine's positioning speed in
// units/minute; a zero rate skips rapid time.
func Stats(moves []Move, rapidRate float64) ProgramStats {
	var st ProgramStats
	if len(moves) == 0 {
		return st
	}

	st.MinX, st.MinY, st.MinZ = math.Inf(1), math.Inf(1), math.Inf(1)
	st.MaxX, st.MaxY, st.MaxZ = math.Inf(-1), math.Inf(-1), math.Inf(-1)
	grow := func(x, y, z float64) {
		st.MinX = math.Min(st.MinX, x)
		st.MinY = math.Min(st.MinY, y)
		st.MinZ = math.Min(st.MinZ, z)
		st.MaxX = math.Max(st.MaxX, x)
		st.MaxY = math.Max(st.MaxY, y)
		st.MaxZ = math.Max(st.MaxZ, z)
	}

	for _, mv := range moves {
		grow(mv.FromX, mv.FromY, mv.FromZ)
		grow(mv.ToX, mv.ToY, mv.ToZ)

		dx := mv.ToX - mv.FromX
		dy := mv.ToY - mv.FromY
		dz := mv.ToZ - mv.FromZ
		dist := math.Sqrt(dx*dx + dy*dy + dz*dz)

		switch mv.Type {
		case MoveRapid, MoveRetract:
			st.RapidDistance += dist
			if rapidRate > 0 {
				st.EstimatedMinutes += dist / rapidRate
			}
		default:
			st.CutDistance += dist
			if mv.Feed > 0 {
				st.EstimatedMinutes += dist / mv.Feed
			}
		}
	}
	return st
}
