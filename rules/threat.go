package rules

import (
	"container/heap"

	"github.com/nstehr/corridor/model"
	"github.com/nstehr/corridor/paths"
)

// ThreatEstimator bounds how much opposing force can be held at a cell.
// What matters is not how close the opponent is but how many units survive
// the thinnest link of its best supply line, so the search maximizes the
// minimum unit count along a path (a bottleneck path).
type ThreatEstimator struct {
	board *model.Board
	paths *paths.Cache
}

func NewThreatEstimator(b *model.Board, c *paths.Cache) *ThreatEstimator {
	return &ThreatEstimator{board: b, paths: c}
}

// AttackPower returns the strongest single line of reinforcement any
// opponent base can push to target: the max over bases of the bottleneck
// value. Bases that cannot reach target contribute nothing; with no base
// reaching it the result is 0.
func (t *ThreatEstimator) AttackPower(target int) int {
	best := 0
	for _, base := range t.board.OpponentBases() {
		if v, ok := t.bottleneck(base, target); ok && v > best {
			best = v
		}
	}
	return best
}

// threatNode is a frontier entry. value and est are captured at push time;
// stale entries are skipped when popped.
type threatNode struct {
	cell  int
	value int // bottleneck of the path that reached cell
	est   int // hops travelled + hops left to target
}

type frontier []threatNode

func (f frontier) Len() int { return len(f) }
func (f frontier) Less(i, j int) bool {
	if f[i].value != f[j].value {
		return f[i].value > f[j].value
	}
	return f[i].est < f[j].est
}
func (f frontier) Swap(i, j int)       { f[i], f[j] = f[j], f[i] }
func (f *frontier) Push(x interface{}) { *f = append(*f, x.(threatNode)) }
func (f *frontier) Pop() interface{} {
	old := *f
	n := old[len(old)-1]
	*f = old[:len(old)-1]
	return n
}

// bottleneck runs the max-min search from one opponent base. Only cells
// currently holding opponent units are traversed. ok is false when target
// is never finalized.
func (t *ThreatEstimator) bottleneck(base, target int) (int, bool) {
	n := t.board.Len()
	start := t.board.Cell(base).OpponentUnits
	if start <= 0 {
		return 0, false
	}

	best := make([]int, n)
	for i := range best {
		best[i] = -1
	}
	travelled := make([]int, n)
	visited := make([]bool, n)

	best[base] = start
	fr := &frontier{{cell: base, value: start, est: t.remaining(base, target)}}
	heap.Init(fr)

	for fr.Len() > 0 && !visited[target] {
		cur := heap.Pop(fr).(threatNode)
		if visited[cur.cell] {
			continue
		}
		visited[cur.cell] = true

		for _, nb := range t.board.Neighbors(cur.cell) {
			if visited[nb] {
				continue
			}
			units := t.board.Cell(nb).OpponentUnits
			if units <= 0 {
				continue
			}
			cand := min(best[cur.cell], units)
			if cand <= best[nb] {
				continue
			}
			best[nb] = cand
			travelled[nb] = travelled[cur.cell] + 1
			heap.Push(fr, threatNode{cell: nb, value: cand, est: travelled[nb] + t.remaining(nb, target)})
		}
	}

	if !visited[target] {
		return 0, false
	}
	return best[target], true
}

// unreachableEstimate sorts cells that cannot reach the target last among
// equal bottlenecks.
const unreachableEstimate = 1 << 20

func (t *ThreatEstimator) remaining(cell, target int) int {
	d, ok := t.paths.Distance(cell, target)
	if !ok {
		return unreachableEstimate
	}
	return d
}
