package ipc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nstehr/corridor/model"
	"github.com/nstehr/corridor/rules"
)

// Reader decodes the referee's text protocol: whitespace separated integers,
// a topology block once, then one state block per turn.
type Reader struct {
	sc *bufio.Scanner
}

func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	return &Reader{sc: sc}
}

// int reads the next integer. A clean end of input before the first token
// of a block is io.EOF; callers turn it into io.ErrUnexpectedEOF mid-block.
func (r *Reader) int() (int, error) {
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return 0, err
		}
		return 0, io.EOF
	}
	v, err := strconv.Atoi(r.sc.Text())
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", r.sc.Text(), err)
	}
	return v, nil
}

// mid reads an integer inside a block, where EOF is always unexpected.
func (r *Reader) mid() (int, error) {
	v, err := r.int()
	if errors.Is(err, io.EOF) {
		return 0, io.ErrUnexpectedEOF
	}
	return v, err
}

// ReadTopology reads the session header: the cell count, one line per cell
// (kind, resources, six neighbor slots), the base count, then own and
// opponent base ids.
func (r *Reader) ReadTopology() (model.Topology, error) {
	var t model.Topology
	n, err := r.int()
	if err != nil {
		return t, fmt.Errorf("read cell count: %w", err)
	}
	if n <= 0 {
		return t, fmt.Errorf("invalid cell count %d", n)
	}

	t.Cells = make([]model.CellInit, n)
	for i := range t.Cells {
		kind, err := r.mid()
		if err != nil {
			return t, fmt.Errorf("read cell %d kind: %w", i, err)
		}
		res, err := r.mid()
		if err != nil {
			return t, fmt.Errorf("read cell %d resources: %w", i, err)
		}
		nb := make([]int, model.MaxNeighbors)
		for j := range nb {
			if nb[j], err = r.mid(); err != nil {
				return t, fmt.Errorf("read cell %d neighbor %d: %w", i, j, err)
			}
		}
		t.Cells[i] = model.CellInit{Kind: model.CellKind(kind), Resources: res, Neighbors: nb}
	}

	bases, err := r.mid()
	if err != nil {
		return t, fmt.Errorf("read base count: %w", err)
	}
	if bases <= 0 {
		return t, fmt.Errorf("invalid base count %d", bases)
	}
	t.OwnBases = make([]int, bases)
	for i := range t.OwnBases {
		if t.OwnBases[i], err = r.mid(); err != nil {
			return t, fmt.Errorf("read own base %d: %w", i, err)
		}
	}
	t.OpponentBases = make([]int, bases)
	for i := range t.OpponentBases {
		if t.OpponentBases[i], err = r.mid(); err != nil {
			return t, fmt.Errorf("read opponent base %d: %w", i, err)
		}
	}
	return t, nil
}

// ReadSnapshot reads one turn: the score pair, then resources, own units and
// opponent units per cell. io.EOF means the referee closed the stream
// between turns.
func (r *Reader) ReadSnapshot(turn, cells int) (model.Snapshot, error) {
	s := model.Snapshot{Turn: turn}
	var err error
	if s.OwnScore, err = r.int(); err != nil {
		if errors.Is(err, io.EOF) {
			return s, io.EOF
		}
		return s, fmt.Errorf("read own score: %w", err)
	}
	if s.OpponentScore, err = r.mid(); err != nil {
		return s, fmt.Errorf("read opponent score: %w", err)
	}

	s.Cells = make([]model.CellState, cells)
	for i := range s.Cells {
		cs := &s.Cells[i]
		if cs.Resources, err = r.mid(); err != nil {
			return s, fmt.Errorf("read cell %d resources: %w", i, err)
		}
		if cs.OwnUnits, err = r.mid(); err != nil {
			return s, fmt.Errorf("read cell %d own units: %w", i, err)
		}
		if cs.OpponentUnits, err = r.mid(); err != nil {
			return s, fmt.Errorf("read cell %d opponent units: %w", i, err)
		}
	}
	return s, nil
}

// FormatDirective renders the beacons as one referee action line: WAIT when
// there is nothing to mark, otherwise BEACON actions joined by semicolons.
func FormatDirective(beacons []rules.Beacon) string {
	if len(beacons) == 0 {
		return "WAIT"
	}
	actions := make([]string, len(beacons))
	for i, b := range beacons {
		actions[i] = fmt.Sprintf("BEACON %d %d", b.Cell, b.Strength)
	}
	return strings.Join(actions, ";")
}
