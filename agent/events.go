package agent

import (
	"fmt"

	"github.com/nstehr/corridor/model"
	"github.com/nstehr/corridor/rules"
)

// EventKind identifies a notable change between two consecutive turns.
type EventKind string

const (
	EventModeChanged       EventKind = "mode_changed"
	EventTargetDepleted    EventKind = "target_depleted"
	EventCommitmentDropped EventKind = "commitment_dropped"
	EventNetworkCollapsed  EventKind = "network_collapsed"
	EventLeadChanged       EventKind = "lead_changed"
)

// Event is detected by diffing consecutive turns. Events are logged and, when
// a journal is configured, stored next to the turn that produced them.
type Event struct {
	Kind   EventKind
	Turn   int
	Detail string
}

// turnState captures the diffable outcome of one turn.
type turnState struct {
	mode  rules.Mode
	fixed int
	lead  int // -1 opponent ahead, 0 tied, 1 own ahead
}

func takeState(s model.Snapshot, res *rules.TurnResult) turnState {
	st := turnState{mode: res.Mode, fixed: len(res.Fixed)}
	switch {
	case s.OwnScore > s.OpponentScore:
		st.lead = 1
	case s.OwnScore < s.OpponentScore:
		st.lead = -1
	}
	return st
}

// detectEvents compares this turn against the previous one. Returns nil if
// prev is nil (first turn).
func detectEvents(s model.Snapshot, res *rules.TurnResult, prev *turnState) []Event {
	if prev == nil {
		return nil
	}

	var events []Event
	cur := takeState(s, res)

	if prev.mode != cur.mode {
		events = append(events, Event{
			Kind:   EventModeChanged,
			Turn:   s.Turn,
			Detail: fmt.Sprintf("%s -> %s", prev.mode, cur.mode),
		})
	}

	for _, id := range res.Depleted {
		events = append(events, Event{
			Kind:   EventTargetDepleted,
			Turn:   s.Turn,
			Detail: fmt.Sprintf("cell %d ran out of resources", id),
		})
	}

	for _, id := range res.Dropped {
		events = append(events, Event{
			Kind:   EventCommitmentDropped,
			Turn:   s.Turn,
			Detail: fmt.Sprintf("cell %d can no longer be held", id),
		})
	}

	if prev.fixed > 0 && cur.fixed == 0 {
		events = append(events, Event{
			Kind:   EventNetworkCollapsed,
			Turn:   s.Turn,
			Detail: fmt.Sprintf("all %d commitments lost", prev.fixed),
		})
	}

	// Ties never fire; only taking the lead does.
	if cur.lead != 0 && cur.lead != prev.lead {
		side := "own"
		if cur.lead < 0 {
			side = "opponent"
		}
		events = append(events, Event{
			Kind:   EventLeadChanged,
			Turn:   s.Turn,
			Detail: fmt.Sprintf("%s side ahead %d-%d", side, s.OwnScore, s.OpponentScore),
		})
	}

	return events
}
