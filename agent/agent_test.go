package agent

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nstehr/corridor/ipc"
	"github.com/nstehr/corridor/journal"
	"github.com/nstehr/corridor/model"
	"github.com/nstehr/corridor/rules"
)

type fakeRecorder struct {
	turns  []journal.Turn
	events []journal.Event
}

func (f *fakeRecorder) RecordTurn(_ context.Context, t journal.Turn) error {
	f.turns = append(f.turns, t)
	return nil
}

func (f *fakeRecorder) RecordEvents(_ context.Context, events []journal.Event) error {
	f.events = append(f.events, events...)
	return nil
}

// starTopology is a 7-cell star: center 0 and leaves 1..6, own base on leaf 1,
// opponent base on leaf 5 and one extraction cell on leaf 3.
func starTopology() model.Topology {
	leaf := []int{0, -1, -1, -1, -1, -1}
	topo := model.Topology{OwnBases: []int{1}, OpponentBases: []int{5}}
	topo.Cells = append(topo.Cells, model.CellInit{Neighbors: []int{1, 2, 3, 4, 5, 6}})
	for id := 1; id <= 6; id++ {
		c := model.CellInit{Neighbors: leaf}
		if id == 3 {
			c.Kind, c.Resources = model.KindExtraction, 10
		}
		topo.Cells = append(topo.Cells, c)
	}
	return topo
}

func starSnapshot(turn, resources, own, opp int) model.Snapshot {
	s := model.Snapshot{Turn: turn, OwnScore: own, OpponentScore: opp, Cells: make([]model.CellState, 7)}
	s.Cells[1].OwnUnits = 6
	s.Cells[3].Resources = resources
	return s
}

func TestPlayTurnBeforeInit(t *testing.T) {
	a := New(rules.DefaultDoctrine(), nil)
	_, err := a.PlayTurn(context.Background(), starSnapshot(1, 10, 0, 0))
	assert.Error(t, err)
}

func TestPlayTurnDirectives(t *testing.T) {
	rec := &fakeRecorder{}
	a := New(rules.DefaultDoctrine(), rec)
	require.NoError(t, a.Init(starTopology()))
	ctx := context.Background()

	d, err := a.PlayTurn(ctx, starSnapshot(1, 10, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, rules.ModeFavorExtraction, d.Mode)
	assert.Equal(t, "BEACON 1 1;BEACON 0 1;BEACON 3 2", d.Line)
	assert.Empty(t, d.Events)

	// The extraction cell runs dry and the lead goes to us.
	d, err = a.PlayTurn(ctx, starSnapshot(2, 0, 10, 0))
	require.NoError(t, err)
	assert.Equal(t, "WAIT", d.Line)

	var kinds []EventKind
	for _, e := range d.Events {
		kinds = append(kinds, e.Kind)
	}
	assert.Equal(t, []EventKind{EventTargetDepleted, EventNetworkCollapsed, EventLeadChanged}, kinds)

	require.Len(t, rec.turns, 2)
	assert.Equal(t, a.Session, rec.turns[0].Session)
	assert.Equal(t, "BEACON 1 1;BEACON 0 1;BEACON 3 2", rec.turns[0].Directive)
	assert.Equal(t, []int{3}, rec.turns[0].Fixed)
	assert.Equal(t, "WAIT", rec.turns[1].Directive)
	require.Len(t, rec.events, 3)
	assert.Equal(t, "target_depleted", rec.events[0].Kind)
	assert.Equal(t, 2, rec.events[0].Turn)
}

func TestPlayTurnRejectsWrongCellCount(t *testing.T) {
	rec := &fakeRecorder{}
	a := New(rules.DefaultDoctrine(), rec)
	require.NoError(t, a.Init(starTopology()))

	_, err := a.PlayTurn(context.Background(), model.Snapshot{Turn: 1, Cells: make([]model.CellState, 3)})
	assert.Error(t, err)
	assert.Empty(t, rec.turns)
}

func TestInitRejectsBadTopology(t *testing.T) {
	a := New(rules.DefaultDoctrine(), nil)
	assert.Error(t, a.Init(model.Topology{}))
}

func TestHelloRejectsOversizedTopology(t *testing.T) {
	a := New(rules.DefaultDoctrine(), nil)
	topo := model.Topology{
		Cells:         make([]model.CellInit, model.MaxCells+1),
		OwnBases:      []int{0},
		OpponentBases: []int{1},
	}
	hello, err := ipc.NewEnvelope(ipc.TypeHello, ipc.HelloMessage{Player: "p1", Topology: topo})
	require.NoError(t, err)

	_, err = a.HandleHello(context.Background(), hello)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max")

	_, err = a.PlayTurn(context.Background(), model.Snapshot{Turn: 1})
	assert.Error(t, err, "no board after a rejected hello")
}

func TestHandlers(t *testing.T) {
	a := New(rules.DefaultDoctrine(), nil)
	ctx := context.Background()

	hello, err := ipc.NewEnvelope(ipc.TypeHello, ipc.HelloMessage{Player: "p1", Topology: starTopology()})
	require.NoError(t, err)
	resp, err := a.HandleHello(ctx, hello)
	require.NoError(t, err)
	require.Equal(t, ipc.TypeAck, resp.Type)

	var ack ipc.AckMessage
	require.NoError(t, json.Unmarshal(resp.Data, &ack))
	assert.Equal(t, "ok", ack.Status)
	assert.Equal(t, a.Session, ack.Session)
	assert.Equal(t, "p1", a.Player)

	turn, err := ipc.NewEnvelope(ipc.TypeTurn, ipc.TurnMessage{Snapshot: starSnapshot(1, 10, 0, 0)})
	require.NoError(t, err)
	resp, err = a.HandleTurn(ctx, turn)
	require.NoError(t, err)
	require.Equal(t, ipc.TypeDirective, resp.Type)

	var dir ipc.DirectiveMessage
	require.NoError(t, json.Unmarshal(resp.Data, &dir))
	assert.Equal(t, 1, dir.Turn)
	assert.Equal(t, "favor_extraction", dir.Mode)
	assert.Equal(t, []rules.Beacon{{Cell: 1, Strength: 1}, {Cell: 0, Strength: 1}, {Cell: 3, Strength: 2}}, dir.Beacons)
	assert.Equal(t, "BEACON 1 1;BEACON 0 1;BEACON 3 2", dir.Line)

	_, err = a.HandleTurn(ctx, ipc.Envelope{Type: ipc.TypeTurn, Data: json.RawMessage(`{`)})
	assert.Error(t, err)
}
