package model

import (
	"errors"
	"fmt"
)

// Board is the graph model: a fixed set of cells with fixed adjacency and
// fixed base assignments. Only the per-cell counters mutate between turns.
type Board struct {
	cells         []*Cell
	ownBases      []int
	opponentBases []int
	ownBaseSet    map[int]bool
	oppBaseSet    map[int]bool
	initial       map[CellKind]int

	// Turn-scoped memo of non-empty cells per kind. Dropped on any update.
	resourceCells map[CellKind][]*Cell
}

// NewBoard builds the board from the session topology. Neighbor holes (-1)
// are dropped; any other out-of-range id is rejected.
func NewBoard(t Topology) (*Board, error) {
	n := len(t.Cells)
	if n == 0 {
		return nil, errors.New("board has no cells")
	}
	if n > MaxCells {
		return nil, fmt.Errorf("board has %d cells, max %d", n, MaxCells)
	}
	if len(t.OwnBases) == 0 {
		return nil, errors.New("board has no own bases")
	}
	if len(t.OwnBases) != len(t.OpponentBases) {
		return nil, fmt.Errorf("base count mismatch: own %d, opponent %d", len(t.OwnBases), len(t.OpponentBases))
	}

	b := &Board{
		cells:      make([]*Cell, n),
		ownBaseSet: make(map[int]bool, len(t.OwnBases)),
		oppBaseSet: make(map[int]bool, len(t.OpponentBases)),
		initial:    make(map[CellKind]int, 2),
	}

	for id, ci := range t.Cells {
		if len(ci.Neighbors) > MaxNeighbors {
			return nil, fmt.Errorf("cell %d: %d neighbors, max %d", id, len(ci.Neighbors), MaxNeighbors)
		}
		if ci.Resources < 0 {
			return nil, fmt.Errorf("cell %d: negative resources %d", id, ci.Resources)
		}
		neighbors := make([]int, 0, len(ci.Neighbors))
		for _, nb := range ci.Neighbors {
			if nb == -1 {
				continue
			}
			if nb < 0 || nb >= n {
				return nil, fmt.Errorf("cell %d: neighbor %d out of range", id, nb)
			}
			neighbors = append(neighbors, nb)
		}
		b.cells[id] = &Cell{
			ID:        id,
			Kind:      ci.Kind,
			Resources: ci.Resources,
			Neighbors: neighbors,
		}
		if ci.Kind == KindGrowth || ci.Kind == KindExtraction {
			b.initial[ci.Kind] += ci.Resources
		}
	}

	for _, id := range t.OwnBases {
		if id < 0 || id >= n {
			return nil, fmt.Errorf("own base %d out of range", id)
		}
		b.ownBaseSet[id] = true
	}
	for _, id := range t.OpponentBases {
		if id < 0 || id >= n {
			return nil, fmt.Errorf("opponent base %d out of range", id)
		}
		b.oppBaseSet[id] = true
	}
	b.ownBases = append([]int(nil), t.OwnBases...)
	b.opponentBases = append([]int(nil), t.OpponentBases...)

	return b, nil
}

// Len returns the number of cells.
func (b *Board) Len() int { return len(b.cells) }

// Cell returns the cell with the given id. An unknown id means the input
// stream is corrupt, so it panics rather than returning a zero cell.
func (b *Board) Cell(id int) *Cell {
	if id < 0 || id >= len(b.cells) {
		panic(fmt.Sprintf("model: cell %d not found (board has %d cells)", id, len(b.cells)))
	}
	return b.cells[id]
}

// Neighbors returns the adjacency list of a cell. Callers must not modify it.
func (b *Board) Neighbors(id int) []int { return b.Cell(id).Neighbors }

func (b *Board) OwnBases() []int      { return b.ownBases }
func (b *Board) OpponentBases() []int { return b.opponentBases }

func (b *Board) IsOwnBase(id int) bool      { return b.ownBaseSet[id] }
func (b *Board) IsOpponentBase(id int) bool { return b.oppBaseSet[id] }

// UpdateCell overwrites the mutable counters of a cell. Negative counters
// mean a corrupt snapshot and are rejected; resource monotonicity is not
// checked.
func (b *Board) UpdateCell(id, resources, ownUnits, opponentUnits int) error {
	if id < 0 || id >= len(b.cells) {
		return fmt.Errorf("update cell %d: out of range", id)
	}
	if resources < 0 || ownUnits < 0 || opponentUnits < 0 {
		return fmt.Errorf("update cell %d: negative counter (resources %d, own %d, opponent %d)",
			id, resources, ownUnits, opponentUnits)
	}
	c := b.cells[id]
	c.Resources = resources
	c.OwnUnits = ownUnits
	c.OpponentUnits = opponentUnits
	b.resourceCells = nil
	return nil
}

// Apply overwrites every cell from a turn snapshot.
func (b *Board) Apply(s Snapshot) error {
	if len(s.Cells) != len(b.cells) {
		return fmt.Errorf("snapshot has %d cells, board has %d", len(s.Cells), len(b.cells))
	}
	for id, cs := range s.Cells {
		if err := b.UpdateCell(id, cs.Resources, cs.OwnUnits, cs.OpponentUnits); err != nil {
			return err
		}
	}
	return nil
}

// TotalOwnUnits sums own units over the board.
func (b *Board) TotalOwnUnits() int {
	total := 0
	for _, c := range b.cells {
		total += c.OwnUnits
	}
	return total
}

// ResourceCells returns the non-empty cells of the given kind in id order.
// The result is memoized until the next update.
func (b *Board) ResourceCells(kind CellKind) []*Cell {
	if b.resourceCells == nil {
		b.resourceCells = make(map[CellKind][]*Cell, 2)
		for _, c := range b.cells {
			switch {
			case c.HasGrowth():
				b.resourceCells[KindGrowth] = append(b.resourceCells[KindGrowth], c)
			case c.HasExtraction():
				b.resourceCells[KindExtraction] = append(b.resourceCells[KindExtraction], c)
			}
		}
	}
	return b.resourceCells[kind]
}

// Remaining returns the resources currently left on cells of a kind.
func (b *Board) Remaining(kind CellKind) int {
	total := 0
	for _, c := range b.ResourceCells(kind) {
		total += c.Resources
	}
	return total
}

// Initial returns the resources that cells of a kind held at session start.
func (b *Board) Initial(kind CellKind) int { return b.initial[kind] }
