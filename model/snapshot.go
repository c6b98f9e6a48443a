package model

// MaxNeighbors is the number of neighbor slots per cell on a hex board.
const MaxNeighbors = 6

// MaxCells bounds the topology size. The path cache keeps dense N×N tables,
// so the bound caps its memory at a few tens of megabytes.
const MaxCells = 1024

// Topology is the session-constant part of the input: the cell graph and the
// base assignments. It is received once before the first turn.
type Topology struct {
	Cells         []CellInit `json:"cells"`
	OwnBases      []int      `json:"ownBases"`
	OpponentBases []int      `json:"opponentBases"`
}

// CellInit describes one cell as announced at session start. Neighbor slots
// holding -1 are holes and are dropped when the board is built.
type CellInit struct {
	Kind      CellKind `json:"kind"`
	Resources int      `json:"resources"`
	Neighbors []int    `json:"neighbors"`
}

// Snapshot is the per-turn mutable state. Cells are indexed by cell id.
type Snapshot struct {
	Turn          int         `json:"turn"`
	OwnScore      int         `json:"ownScore"`
	OpponentScore int         `json:"opponentScore"`
	Cells         []CellState `json:"cells"`
}

type CellState struct {
	Resources     int `json:"resources"`
	OwnUnits      int `json:"ownUnits"`
	OpponentUnits int `json:"opponentUnits"`
}
