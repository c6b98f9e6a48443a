package model

// CellKind classifies what a cell can be harvested for. It is fixed for the
// whole session; the values match the referee's wire encoding.
type CellKind int

const (
	KindEmpty      CellKind = 0 // no resource
	KindGrowth     CellKind = 1 // eggs: grows the colony
	KindExtraction CellKind = 2 // crystal: scores points
)

func (k CellKind) String() string {
	switch k {
	case KindGrowth:
		return "growth"
	case KindExtraction:
		return "extraction"
	default:
		return "empty"
	}
}

// Cell is a single vertex of the board. Kind and Neighbors never change;
// the counters are overwritten every turn.
type Cell struct {
	ID            int
	Kind          CellKind
	Resources     int
	OwnUnits      int
	OpponentUnits int
	Neighbors     []int
}

func (c *Cell) IsEmpty() bool { return c.Resources == 0 }

// HasGrowth reports whether the cell is a growth cell with resources left.
func (c *Cell) HasGrowth() bool { return c.Kind == KindGrowth && !c.IsEmpty() }

// HasExtraction reports whether the cell is an extraction cell with resources left.
func (c *Cell) HasExtraction() bool { return c.Kind == KindExtraction && !c.IsEmpty() }
