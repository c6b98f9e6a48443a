package model

import "testing"

// line builds a path graph 0-1-2-...-(n-1) with own base 0 and opponent base n-1.
func line(n int) Topology {
	t := Topology{OwnBases: []int{0}, OpponentBases: []int{n - 1}}
	for i := 0; i < n; i++ {
		nb := []int{-1, -1, -1, -1, -1, -1}
		if i > 0 {
			nb[0] = i - 1
		}
		if i < n-1 {
			nb[3] = i + 1
		}
		t.Cells = append(t.Cells, CellInit{Neighbors: nb})
	}
	return t
}

func TestNewBoardDropsNeighborHoles(t *testing.T) {
	b, err := NewBoard(line(3))
	if err != nil {
		t.Fatalf("NewBoard: %v", err)
	}
	if got := b.Neighbors(1); len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("Neighbors(1) = %v, want [0 2]", got)
	}
	if got := b.Neighbors(0); len(got) != 1 || got[0] != 1 {
		t.Errorf("Neighbors(0) = %v, want [1]", got)
	}
}

func TestNewBoardRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Topology)
	}{
		{"neighbor out of range", func(tp *Topology) { tp.Cells[0].Neighbors[1] = 99 }},
		{"own base out of range", func(tp *Topology) { tp.OwnBases = []int{7} }},
		{"opponent base out of range", func(tp *Topology) { tp.OpponentBases = []int{-3} }},
		{"base count mismatch", func(tp *Topology) { tp.OpponentBases = []int{1, 2} }},
		{"no bases", func(tp *Topology) { tp.OwnBases, tp.OpponentBases = nil, nil }},
		{"negative resources", func(tp *Topology) { tp.Cells[1].Resources = -1 }},
		{"too many cells", func(tp *Topology) { tp.Cells = make([]CellInit, MaxCells+1) }},
	}
	for _, tc := range tests {
		tp := line(3)
		tc.mod(&tp)
		if _, err := NewBoard(tp); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
	if _, err := NewBoard(Topology{}); err == nil {
		t.Error("empty topology: expected error")
	}
}

func TestCellUnknownIDPanics(t *testing.T) {
	b, err := NewBoard(line(2))
	if err != nil {
		t.Fatalf("NewBoard: %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Error("Cell(5) should panic")
		}
	}()
	b.Cell(5)
}

func TestInitialAndRemainingResources(t *testing.T) {
	tp := line(4)
	tp.Cells[1].Kind, tp.Cells[1].Resources = KindGrowth, 10
	tp.Cells[2].Kind, tp.Cells[2].Resources = KindExtraction, 30
	b, err := NewBoard(tp)
	if err != nil {
		t.Fatalf("NewBoard: %v", err)
	}

	if got := b.Initial(KindGrowth); got != 10 {
		t.Errorf("Initial(growth) = %d, want 10", got)
	}
	if got := b.Initial(KindExtraction); got != 30 {
		t.Errorf("Initial(extraction) = %d, want 30", got)
	}

	if err := b.UpdateCell(2, 12, 0, 0); err != nil {
		t.Fatalf("UpdateCell: %v", err)
	}
	if got := b.Remaining(KindExtraction); got != 12 {
		t.Errorf("Remaining(extraction) = %d, want 12", got)
	}
	// Initial totals are fixed at session start.
	if got := b.Initial(KindExtraction); got != 30 {
		t.Errorf("Initial(extraction) after update = %d, want 30", got)
	}
}

func TestResourceCellsInvalidatedOnUpdate(t *testing.T) {
	tp := line(4)
	tp.Cells[1].Kind, tp.Cells[1].Resources = KindGrowth, 5
	tp.Cells[2].Kind, tp.Cells[2].Resources = KindGrowth, 5
	b, err := NewBoard(tp)
	if err != nil {
		t.Fatalf("NewBoard: %v", err)
	}
	if got := len(b.ResourceCells(KindGrowth)); got != 2 {
		t.Fatalf("ResourceCells(growth) = %d cells, want 2", got)
	}

	if err := b.UpdateCell(1, 0, 0, 0); err != nil {
		t.Fatalf("UpdateCell: %v", err)
	}
	cells := b.ResourceCells(KindGrowth)
	if len(cells) != 1 || cells[0].ID != 2 {
		t.Errorf("ResourceCells(growth) after depletion = %v, want only cell 2", cells)
	}
	if b.Cell(1).HasGrowth() {
		t.Error("depleted cell should not report growth")
	}
	if !b.Cell(1).IsEmpty() {
		t.Error("depleted cell should be empty")
	}
}

func TestUpdateCellRejectsNegativeCounters(t *testing.T) {
	b, err := NewBoard(line(3))
	if err != nil {
		t.Fatalf("NewBoard: %v", err)
	}
	if err := b.UpdateCell(1, 5, 2, 1); err != nil {
		t.Fatalf("UpdateCell: %v", err)
	}

	tests := []struct {
		name               string
		resources, own, op int
	}{
		{"resources", -1, 0, 0},
		{"own units", 0, -3, 0},
		{"opponent units", 0, 0, -1},
	}
	for _, tc := range tests {
		if err := b.UpdateCell(1, tc.resources, tc.own, tc.op); err == nil {
			t.Errorf("negative %s: expected error", tc.name)
		}
	}
	c := b.Cell(1)
	if c.Resources != 5 || c.OwnUnits != 2 || c.OpponentUnits != 1 {
		t.Errorf("rejected update changed the cell: %+v", c)
	}

	s := Snapshot{Turn: 2, Cells: make([]CellState, 3)}
	s.Cells[2].OwnUnits = -1
	if err := b.Apply(s); err == nil {
		t.Error("Apply with a negative unit count: expected error")
	}
}

func TestNewBoardAcceptsMaxCells(t *testing.T) {
	tp := Topology{Cells: make([]CellInit, MaxCells), OwnBases: []int{0}, OpponentBases: []int{MaxCells - 1}}
	b, err := NewBoard(tp)
	if err != nil {
		t.Fatalf("NewBoard at the bound: %v", err)
	}
	if b.Len() != MaxCells {
		t.Errorf("Len = %d, want %d", b.Len(), MaxCells)
	}
}

func TestApplySnapshot(t *testing.T) {
	b, err := NewBoard(line(3))
	if err != nil {
		t.Fatalf("NewBoard: %v", err)
	}
	s := Snapshot{Cells: []CellState{
		{OwnUnits: 4},
		{OwnUnits: 2, OpponentUnits: 1},
		{OpponentUnits: 6},
	}}
	if err := b.Apply(s); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := b.TotalOwnUnits(); got != 6 {
		t.Errorf("TotalOwnUnits = %d, want 6", got)
	}
	if got := b.Cell(2).OpponentUnits; got != 6 {
		t.Errorf("cell 2 opponent units = %d, want 6", got)
	}

	if err := b.Apply(Snapshot{Cells: s.Cells[:2]}); err == nil {
		t.Error("short snapshot: expected error")
	}
}

func TestBaseQueries(t *testing.T) {
	b, err := NewBoard(line(3))
	if err != nil {
		t.Fatalf("NewBoard: %v", err)
	}
	if !b.IsOwnBase(0) || b.IsOwnBase(2) {
		t.Error("IsOwnBase mismatch")
	}
	if !b.IsOpponentBase(2) || b.IsOpponentBase(0) {
		t.Error("IsOpponentBase mismatch")
	}
}
