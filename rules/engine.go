package rules

import (
	"log/slog"
	"slices"
	"sort"
	"time"

	"github.com/nstehr/corridor/model"
	"github.com/nstehr/corridor/paths"
)

// Engine selects and commits harvesting targets each turn.
//
// A turn runs two phases. Revalidation rebuilds the committed targets from
// scratch against the current board; evaluation then walks the ranked
// candidates once and greedily commits whatever the colony can hold. The
// ranking is computed before the walk and never refreshed, so a later
// candidate is judged against the commitments made before it but keeps its
// original rank.
type Engine struct {
	board    *model.Board
	paths    *paths.Cache
	threat   *ThreatEstimator
	prio     *Prioritizer
	doctrine Doctrine

	fixed        []int // committed targets in commitment order
	lastIdleTurn int
}

// NewEngine wires the engine to a board and its path cache. The doctrine is
// clamped before use.
func NewEngine(b *model.Board, c *paths.Cache, d Doctrine) (*Engine, error) {
	d.Validate()
	prio, err := NewPrioritizer(d)
	if err != nil {
		return nil, err
	}
	return &Engine{
		board:        b,
		paths:        c,
		threat:       NewThreatEstimator(b, c),
		prio:         prio,
		doctrine:     d,
		lastIdleTurn: -1,
	}, nil
}

// TurnResult is what one engine pass decided.
type TurnResult struct {
	Mode     Mode
	Env      PriorityEnv
	Fixed    []int // committed targets after the turn
	Used     []int // corridor cells in the order they were claimed
	Depleted []int // commitments dropped because their cell ran out
	Dropped  []int // commitments dropped because they could no longer be held
	Approved []int // targets newly approved this turn
	Beacons  *BeaconMap
}

// turn is the per-turn working state. It is built fresh at the start of
// every pass and discarded afterwards.
type turn struct {
	mode     Mode
	ants     int
	used     map[int]bool
	order    []int
	beacons  *BeaconMap
	attack   map[int]int
	approved int
}

func (e *Engine) newTurn(mode Mode) *turn {
	return &turn{
		mode:    mode,
		ants:    e.board.TotalOwnUnits(),
		used:    make(map[int]bool),
		beacons: NewBeaconMap(),
		attack:  make(map[int]int),
	}
}

// Conditions returns the prioritizer's growth and extraction expr sources.
func (e *Engine) Conditions() (growth, extraction string) { return e.prio.Sources() }

// Fixed returns a copy of the committed targets.
func (e *Engine) Fixed() []int { return slices.Clone(e.fixed) }

// Turn runs one full decision pass against the board's current state.
func (e *Engine) Turn(turnNo int) (*TurnResult, error) {
	start := time.Now()

	env := NewPriorityEnv(e.board, turnNo)
	mode, err := e.prio.Mode(env)
	if err != nil {
		return nil, err
	}
	turnModes.WithLabelValues(mode.String()).Inc()

	t := e.newTurn(mode)
	depleted, dropped := e.revalidate(t)
	approved := e.evaluate(t)

	res := &TurnResult{
		Mode:     mode,
		Env:      env,
		Fixed:    slices.Clone(e.fixed),
		Used:     slices.Clone(t.order),
		Depleted: depleted,
		Dropped:  dropped,
		Approved: approved,
		Beacons:  t.beacons,
	}

	commitments.Set(float64(len(e.fixed)))
	turnDuration.Observe(time.Since(start).Seconds())

	if len(e.fixed) == 0 {
		e.logIdleDiagnostics(turnNo, t, env)
	}
	return res, nil
}

// revalidate is Phase A. Depleted targets are forgotten, the rest are
// re-checked weakest-contested first and only kept if their corridor can
// still be held given everything kept before them.
func (e *Engine) revalidate(t *turn) (depleted, dropped []int) {
	remaining := make([]int, 0, len(e.fixed))
	for _, id := range e.fixed {
		if e.board.Cell(id).IsEmpty() {
			depleted = append(depleted, id)
			continue
		}
		remaining = append(remaining, id)
	}
	sort.SliceStable(remaining, func(i, j int) bool {
		return e.board.Cell(remaining[i]).OpponentUnits < e.board.Cell(remaining[j]).OpponentUnits
	})

	kept := make([]int, 0, len(remaining))
	for _, id := range remaining {
		base, _, ok := e.paths.Nearest(e.board.OwnBases(), id)
		if !ok {
			dropped = append(dropped, id)
			revalidations.WithLabelValues("unreachable").Inc()
			continue
		}
		path, ok := e.paths.BestPathTowardUsed(base, id, t.used)
		if !ok {
			dropped = append(dropped, id)
			revalidations.WithLabelValues("unreachable").Inc()
			continue
		}
		if !e.holds(t, path, t.antsPerCell(path)) {
			dropped = append(dropped, id)
			revalidations.WithLabelValues("outgunned").Inc()
			slog.Debug("commitment dropped", "cell", id, "path", path)
			continue
		}
		t.claim(path)
		e.createLine(t, path)
		kept = append(kept, id)
		revalidations.WithLabelValues("kept").Inc()
	}
	e.fixed = kept
	return depleted, dropped
}

// Candidate skip reasons, in the order the filters run.
const (
	skipMode       = "mode_mismatch"
	skipScore      = "zero_score"
	skipSaturation = "oversaturation"
	skipConflict   = "base_conflict"
	skipRoute      = "no_route"
	skipOutgunned  = "outgunned"
	skipGarrison   = "garrison"
)

// evaluate is Phase B: one pass over the ranked candidates.
func (e *Engine) evaluate(t *turn) []int {
	candidates := e.candidates(t)

	nextToBase := 0
	for _, c := range candidates {
		if d, ok := e.baseDistance(c.ID); ok && d == 1 && c.HasExtraction() {
			nextToBase++
		}
	}

	var approved []int
	for _, c := range candidates {
		reason, path, perCell := e.consider(t, c, nextToBase)
		if reason != "" {
			candidateOutcomes.WithLabelValues(reason).Inc()
			slog.Debug("candidate skipped", "cell", c.ID, "kind", c.Kind, "filter", reason)
			continue
		}

		t.approved++
		if !slices.Contains(e.fixed, c.ID) {
			e.fixed = append(e.fixed, c.ID)
		}
		t.claim(path)
		e.createLine(t, path)
		approved = append(approved, c.ID)
		candidateOutcomes.WithLabelValues("approved").Inc()
		slog.Debug("candidate approved", "cell", c.ID, "kind", c.Kind, "path", path, "antsPerCell", perCell)
	}
	return approved
}

// consider applies the filters to one candidate and returns the first
// failing filter, or "" with the corridor to claim.
func (e *Engine) consider(t *turn, c *model.Cell, nextToBase int) (string, []int, int) {
	if (t.mode == ModeFavorGrowth && !c.HasGrowth()) || (t.mode == ModeFavorExtraction && !c.HasExtraction()) {
		return skipMode, nil, 0
	}
	if e.score(t, c) == 0 {
		return skipScore, nil, 0
	}

	base, dist, ok := e.paths.Nearest(e.board.OwnBases(), c.ID)
	if !ok {
		return skipRoute, nil, 0
	}

	// Easy extraction next to a base is only worth a slot while there are
	// contested slots left to fill.
	if t.approved-nextToBase > 0 && dist == 1 && c.HasExtraction() {
		return skipSaturation, nil, 0
	}

	// A base already feeding an adjacent growth cell keeps its effort there.
	if dist != 1 {
		for _, f := range e.fixed {
			fb, fd, ok := e.paths.Nearest(e.board.OwnBases(), f)
			if ok && fb == base && fd == 1 && e.board.Cell(f).HasGrowth() {
				return skipConflict, nil, 0
			}
		}
	}

	path, ok := e.paths.BestPathTowardUsed(base, c.ID, t.used)
	if !ok {
		return skipRoute, nil, 0
	}
	perCell := t.antsPerCell(path)
	if !e.holds(t, path, perCell) {
		return skipOutgunned, nil, perCell
	}
	if perCell < e.minGarrison(base) {
		return skipGarrison, nil, perCell
	}
	return "", path, perCell
}

// candidates lists the resource cells worth considering this turn, ranked.
func (e *Engine) candidates(t *turn) []*model.Cell {
	var pool []*model.Cell
	switch t.mode {
	case ModeFavorGrowth:
		pool = slices.Clone(e.board.ResourceCells(model.KindGrowth))
	case ModeFavorExtraction:
		pool = slices.Clone(e.board.ResourceCells(model.KindExtraction))
	default:
		pool = append(slices.Clone(e.board.ResourceCells(model.KindGrowth)), e.board.ResourceCells(model.KindExtraction)...)
		slices.SortFunc(pool, func(a, b *model.Cell) int { return a.ID - b.ID })
	}

	out := pool[:0]
	for _, c := range pool {
		if c.IsEmpty() {
			continue
		}
		// Extraction right next to an opponent base is too contested to bother.
		if c.HasExtraction() {
			if _, d, ok := e.paths.Nearest(e.board.OpponentBases(), c.ID); ok && d == 1 {
				continue
			}
		}
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return e.compare(t, out[i], out[j]) < 0
	})
	return out
}

// compare ranks two candidates. Empty cells always go last. Growth mode
// prefers high scores, extraction mode low scores; balanced puts growth
// before extraction and orders within a kind the same way.
func (e *Engine) compare(t *turn, a, b *model.Cell) int {
	switch {
	case a.IsEmpty() && b.IsEmpty():
		return 0
	case a.IsEmpty():
		return 1
	case b.IsEmpty():
		return -1
	}

	sa, sb := e.score(t, a), e.score(t, b)
	switch t.mode {
	case ModeFavorGrowth:
		return sb - sa
	case ModeFavorExtraction:
		return sa - sb
	}
	switch {
	case a.HasGrowth() && b.HasExtraction():
		return -1
	case a.HasExtraction() && b.HasGrowth():
		return 1
	case a.HasGrowth() && b.HasGrowth():
		return sb - sa
	default:
		return sa - sb
	}
}

// score is what a cell can yield given the force that can reach it:
// min(resources, ants / distance from the nearest own base).
func (e *Engine) score(t *turn, c *model.Cell) int {
	d, ok := e.baseDistance(c.ID)
	if !ok {
		return 0
	}
	if d == 0 {
		return c.Resources
	}
	return min(c.Resources, t.ants/d)
}

func (e *Engine) baseDistance(id int) (int, bool) {
	_, d, ok := e.paths.Nearest(e.board.OwnBases(), id)
	return d, ok
}

// minGarrison is the per-cell force a new commitment routed through base
// must leave behind.
func (e *Engine) minGarrison(base int) int {
	d := e.doctrine
	switch {
	case len(e.fixed) == 0:
		return d.OpeningGarrison
	case len(e.board.OwnBases()) == 1:
		return d.Garrison
	}

	first, _, _ := e.paths.Nearest(e.board.OwnBases(), e.fixed[0])
	for _, f := range e.fixed[1:] {
		if b, _, _ := e.paths.Nearest(e.board.OwnBases(), f); b != first {
			return d.Garrison
		}
	}
	if base == first {
		return d.Garrison
	}
	return d.SecondaryGarrison
}

// holds reports whether every cell of path faces at most perCell opposing
// force.
func (e *Engine) holds(t *turn, path []int, perCell int) bool {
	for _, id := range path {
		if t.attackPower(e.threat, id) > perCell {
			return false
		}
	}
	return true
}

// createLine lays beacons along path. The path end gets a boost when none
// of our units stand on it yet.
func (e *Engine) createLine(t *turn, path []int) {
	d := e.doctrine
	for i, id := range path {
		strength := d.BeaconStrength
		if i == len(path)-1 && e.board.Cell(id).OwnUnits == 0 {
			strength *= d.FrontierMultiplier
		}
		t.beacons.Add(id, strength)
	}
}

// antsPerCell divides the colony evenly over the network that would result
// from claiming path. An empty network puts no constraint on it.
func (t *turn) antsPerCell(path []int) int {
	size := len(t.used)
	for _, id := range path {
		if !t.used[id] {
			size++
		}
	}
	if size == 0 {
		return t.ants
	}
	return t.ants / size
}

func (t *turn) claim(path []int) {
	for _, id := range path {
		if !t.used[id] {
			t.used[id] = true
			t.order = append(t.order, id)
		}
	}
}

// attackPower memoizes threat estimates for the duration of the turn; the
// board does not change within a pass.
func (t *turn) attackPower(est *ThreatEstimator, id int) int {
	if v, ok := t.attack[id]; ok {
		return v
	}
	v := est.AttackPower(id)
	t.attack[id] = v
	return v
}

// logIdleDiagnostics explains an empty decision at most once every ten
// turns to keep logs readable.
func (e *Engine) logIdleDiagnostics(turnNo int, t *turn, env PriorityEnv) {
	if e.lastIdleTurn >= 0 && turnNo-e.lastIdleTurn < 10 {
		return
	}
	e.lastIdleTurn = turnNo
	slog.Info("idle diagnostics",
		"turn", turnNo,
		"mode", t.mode.String(),
		"ants", t.ants,
		"growthRatio", env.GrowthRatio,
		"extractionRatio", env.ExtractionRatio,
		"growthCells", env.GrowthCells,
		"extractionCells", env.ExtractionCells,
	)
}
