package terrain

import (
	"container/heap"
	"context"
	"errors"
	"math"

	"github.com/chaugan/intelmap/internal/pkg/geospatial"
)

// ErrUnreachable is returned when the open set empties before the goal cell
// is reached: every path is blocked by edges above the slope limit at this
// grid resolution.
var ErrUnreachable = errors.New("goal cell unreachable")

const (
	// slopeLimitDeg is the steepest grade considered traversable on foot or
	// by off-road vehicle. Steeper edges are excluded from the search
	// entirely, not merely penalized.
	defaultSlopeLimitDeg = 35.0

	// slopeDivisor scales the quadratic slope penalty: a 15° grade doubles
	// the effective edge distance.
	slopeDivisor = 15.0

	// altitudeFloor / altitudeDivisor give a soft penalty for absolute
	// altitude above 500 m.
	altitudeFloor   = 500.0
	altitudeDivisor = 2000.0

	// ctxPollInterval is how many heap pops happen between context checks.
	ctxPollInterval = 64
)

// Pathfinder runs slope- and altitude-aware A* searches over elevation grids.
// It holds no per-search state; one instance serves all requests.
type Pathfinder struct {
	SlopeLimitDeg float64
}

// NewPathfinder returns a pathfinder with the given slope limit in degrees.
// A non-positive limit selects the default of 35°.
func NewPathfinder(slopeLimitDeg float64) *Pathfinder {
	if slopeLimitDeg <= 0 {
		slopeLimitDeg = defaultSlopeLimitDeg
	}
	return &Pathfinder{SlopeLimitDeg: slopeLimitDeg}
}

// Search finds the cost-optimal cell path from start to goal over the
// 8-connected grid neighborhood. It returns ErrUnreachable when no passable
// path exists and the context error when cancelled mid-search.
//
// The heuristic is the straight-line haversine distance to the goal. Every
// passable edge costs at least its haversine distance, so the heuristic never
// overestimates and the result is cost-optimal for the defined cost function.
func (p *Pathfinder) Search(ctx context.Context, g *Grid, start, goal int) ([]int, error) {
	n := g.W * g.H

	// Flat per-cell search state, indexed row*W+col.
	gScore := make([]float64, n)
	for i := range gScore {
		gScore[i] = math.Inf(1)
	}
	cameFrom := make([]int32, n)
	for i := range cameFrom {
		cameFrom[i] = -1
	}
	closed := make([]bool, n)

	gScore[start] = 0
	open := &openSet{}
	heap.Init(open)
	heap.Push(open, openNode{cell: start, f: p.heuristic(g, start, goal)})

	pops := 0
	for open.Len() > 0 {
		pops++
		if pops%ctxPollInterval == 1 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		current := heap.Pop(open).(openNode).cell
		if current == goal {
			return reconstruct(cameFrom, goal), nil
		}
		if closed[current] {
			continue
		}
		closed[current] = true

		row, col := current/g.W, current%g.W
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				if dr == 0 && dc == 0 {
					continue
				}
				nr, nc := row+dr, col+dc
				if nr < 0 || nr >= g.H || nc < 0 || nc >= g.W {
					continue
				}
				neighbor := nr*g.W + nc
				if closed[neighbor] {
					continue
				}

				cost, passable := p.EdgeCost(g, current, neighbor)
				if !passable {
					continue
				}

				tentative := gScore[current] + cost
				if tentative < gScore[neighbor] {
					gScore[neighbor] = tentative
					cameFrom[neighbor] = int32(current)
					heap.Push(open, openNode{
						cell: neighbor,
						f:    tentative + p.heuristic(g, neighbor, goal),
					})
				}
			}
		}
	}

	return nil, ErrUnreachable
}

// EdgeCost returns the traversal cost in kilometers from cell u to adjacent
// cell v, and whether the edge is passable at all. Exported so tests can
// verify heuristic admissibility directly.
func (p *Pathfinder) EdgeCost(g *Grid, u, v int) (float64, bool) {
	baseKm := geospatial.DistanceKm(g.Points[u], g.Points[v])
	elevDiff := math.Abs(g.Elevations[v] - g.Elevations[u])

	slopeDeg := math.Atan2(elevDiff, baseKm*1000) * 180 / math.Pi
	if slopeDeg > p.SlopeLimitDeg {
		return 0, false
	}

	slopePenalty := (slopeDeg / slopeDivisor) * (slopeDeg / slopeDivisor)
	elevPenalty := math.Max(0, g.Elevations[v]-altitudeFloor) / altitudeDivisor
	return baseKm * (1 + slopePenalty + elevPenalty), true
}

func (p *Pathfinder) heuristic(g *Grid, cell, goal int) float64 {
	return geospatial.DistanceKm(g.Points[cell], g.Points[goal])
}

func reconstruct(cameFrom []int32, goal int) []int {
	var path []int
	for cur := int32(goal); cur != -1; cur = cameFrom[cur] {
		path = append(path, int(cur))
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// openNode is one entry in the A* open set. Stale entries (a cell pushed
// again with a better g) are skipped via the closed bitmap on pop.
type openNode struct {
	cell int
	f    float64
}

type openSet []openNode

func (s openSet) Len() int            { return len(s) }
func (s openSet) Less(i, j int) bool  { return s[i].f < s[j].f }
func (s openSet) Swap(i, j int)       { s[i], s[j] = s[j], s[i] }
func (s *openSet) Push(x interface{}) { *s = append(*s, x.(openNode)) }
func (s *openSet) Pop() interface{} {
	old := *s
	n := len(old)
	item := old[n-1]
	*s = old[:n-1]
	return item
}
