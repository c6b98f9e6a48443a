package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nstehr/corridor/ipc"
	"github.com/nstehr/corridor/journal"
	"github.com/nstehr/corridor/model"
	"github.com/nstehr/corridor/paths"
	"github.com/nstehr/corridor/rules"
)

// Recorder persists turns and their events. *journal.Journal satisfies it.
type Recorder interface {
	RecordTurn(ctx context.Context, t journal.Turn) error
	RecordEvents(ctx context.Context, events []journal.Event) error
}

// Agent owns the decision-making for a single player session.
type Agent struct {
	Session string
	Player  string

	doctrine rules.Doctrine
	recorder Recorder

	board  *model.Board
	engine *rules.Engine
	prev   *turnState
}

// Directive is the answer to one turn.
type Directive struct {
	Turn    int
	Mode    rules.Mode
	Beacons []rules.Beacon
	Line    string
	Events  []Event
}

// New creates an agent with a fresh session id. rec may be nil.
func New(d rules.Doctrine, rec Recorder) *Agent {
	return &Agent{
		Session:  uuid.NewString(),
		doctrine: d,
		recorder: rec,
	}
}

// Init builds the board, distance cache and engine for a topology. Calling it
// again starts a new game within the same session.
func (a *Agent) Init(topo model.Topology) error {
	b, err := model.NewBoard(topo)
	if err != nil {
		return fmt.Errorf("build board: %w", err)
	}
	e, err := rules.NewEngine(b, paths.New(b), a.doctrine)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	a.board, a.engine, a.prev = b, e, nil

	growthCond, extractionCond := e.Conditions()
	slog.Info("board initialized",
		"session", a.Session,
		"doctrine", a.doctrine.Name,
		"growth_condition", growthCond,
		"extraction_condition", extractionCond,
		"cells", b.Len(),
		"own_bases", b.OwnBases(),
		"opponent_bases", b.OpponentBases(),
		"growth", b.Initial(model.KindGrowth),
		"extraction", b.Initial(model.KindExtraction),
	)
	return nil
}

// PlayTurn applies the snapshot and runs one decision pass. A contract
// violation inside the engine is returned as an error and no directive is
// produced.
func (a *Agent) PlayTurn(ctx context.Context, s model.Snapshot) (d *Directive, err error) {
	if a.engine == nil {
		return nil, errors.New("turn received before topology")
	}
	defer func() {
		if r := recover(); r != nil {
			d = nil
			err = fmt.Errorf("turn %d: %v", s.Turn, r)
		}
	}()

	start := time.Now()
	if err := a.board.Apply(s); err != nil {
		return nil, fmt.Errorf("apply turn %d: %w", s.Turn, err)
	}
	res, err := a.engine.Turn(s.Turn)
	if err != nil {
		return nil, fmt.Errorf("turn %d: %w", s.Turn, err)
	}

	events := detectEvents(s, res, a.prev)
	cur := takeState(s, res)
	a.prev = &cur

	beacons := res.Beacons.Beacons()
	d = &Directive{
		Turn:    s.Turn,
		Mode:    res.Mode,
		Beacons: beacons,
		Line:    ipc.FormatDirective(beacons),
		Events:  events,
	}
	elapsed := time.Since(start)

	for _, ev := range events {
		slog.Info("turn event", "session", a.Session, "turn", ev.Turn, "kind", ev.Kind, "detail", ev.Detail)
	}
	slog.Info("turn decided",
		"session", a.Session,
		"turn", s.Turn,
		"score", fmt.Sprintf("%d-%d", s.OwnScore, s.OpponentScore),
		"mode", res.Mode,
		"fixed", res.Fixed,
		"approved", res.Approved,
		"beacons", len(beacons),
		"elapsed", elapsed,
	)

	a.record(ctx, s, res, d, elapsed)
	return d, nil
}

// record writes the turn to the journal. Journal failures are logged and
// never fail the turn.
func (a *Agent) record(ctx context.Context, s model.Snapshot, res *rules.TurnResult, d *Directive, elapsed time.Duration) {
	if a.recorder == nil {
		return
	}
	err := a.recorder.RecordTurn(ctx, journal.Turn{
		Session:   a.Session,
		Turn:      s.Turn,
		Mode:      res.Mode.String(),
		OwnScore:  s.OwnScore,
		OppScore:  s.OpponentScore,
		Fixed:     res.Fixed,
		Beacons:   d.Beacons,
		Directive: d.Line,
		Duration:  elapsed,
	})
	if err != nil {
		slog.Warn("journal turn failed", "session", a.Session, "turn", s.Turn, "error", err)
	}
	if len(d.Events) == 0 {
		return
	}
	rows := make([]journal.Event, len(d.Events))
	for i, ev := range d.Events {
		rows[i] = journal.Event{Session: a.Session, Turn: ev.Turn, Kind: string(ev.Kind), Detail: ev.Detail}
	}
	if err := a.recorder.RecordEvents(ctx, rows); err != nil {
		slog.Warn("journal events failed", "session", a.Session, "turn", s.Turn, "error", err)
	}
}

// HandleHello completes the handshake and builds the board from the topology.
func (a *Agent) HandleHello(_ context.Context, env ipc.Envelope) (*ipc.Envelope, error) {
	hello, err := ipc.Decode[ipc.HelloMessage](env)
	if err != nil {
		return nil, err
	}

	a.Player = hello.Player
	slog.Info("player identified", "player", a.Player, "session", a.Session)

	if err := a.Init(hello.Topology); err != nil {
		return nil, err
	}
	return ipc.Reply(ipc.TypeAck, ipc.AckMessage{Status: "ok", Session: a.Session})
}

// HandleTurn answers a snapshot with a directive.
func (a *Agent) HandleTurn(ctx context.Context, env ipc.Envelope) (*ipc.Envelope, error) {
	msg, err := ipc.Decode[ipc.TurnMessage](env)
	if err != nil {
		return nil, err
	}

	d, err := a.PlayTurn(ctx, msg.Snapshot)
	if err != nil {
		return nil, err
	}
	return ipc.Reply(ipc.TypeDirective, ipc.DirectiveMessage{
		Turn:    d.Turn,
		Mode:    d.Mode.String(),
		Beacons: d.Beacons,
		Line:    d.Line,
	})
}
