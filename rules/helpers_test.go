package rules

import (
	"testing"

	"github.com/nstehr/corridor/model"
	"github.com/nstehr/corridor/paths"
)

// fixtureCell describes one cell of a hand-built board.
type fixtureCell struct {
	kind      model.CellKind
	resources int
	own       int
	opp       int
}

// buildBoard creates a board from an undirected edge list. Resources in
// cells are used both as initial and current values.
func buildBoard(t *testing.T, cells []fixtureCell, edges [][2]int, own, opp []int) *model.Board {
	t.Helper()
	adj := make([][]int, len(cells))
	for _, e := range edges {
		adj[e[0]] = append(adj[e[0]], e[1])
		adj[e[1]] = append(adj[e[1]], e[0])
	}
	topo := model.Topology{OwnBases: own, OpponentBases: opp}
	for i, c := range cells {
		topo.Cells = append(topo.Cells, model.CellInit{Kind: c.kind, Resources: c.resources, Neighbors: adj[i]})
	}
	b, err := model.NewBoard(topo)
	if err != nil {
		t.Fatalf("NewBoard: %v", err)
	}
	for i, c := range cells {
		if err := b.UpdateCell(i, c.resources, c.own, c.opp); err != nil {
			t.Fatalf("UpdateCell(%d): %v", i, err)
		}
	}
	return b
}

func newTestEngine(t *testing.T, b *model.Board) *Engine {
	t.Helper()
	e, err := NewEngine(b, paths.New(b), DefaultDoctrine())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
