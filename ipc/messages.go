package ipc

import (
	"github.com/nstehr/corridor/model"
	"github.com/nstehr/corridor/rules"
)

// Message types carried in Envelope.Type.
const (
	TypeHello     = "hello"
	TypeAck       = "ack"
	TypeTurn      = "turn"
	TypeDirective = "directive"
	TypeError     = "error"
)

// HelloMessage opens a session and carries the fixed board topology.
type HelloMessage struct {
	Player   string         `json:"player"`
	Topology model.Topology `json:"topology"`
}

type AckMessage struct {
	Status  string `json:"status"`
	Session string `json:"session,omitempty"`
}

// TurnMessage carries the mutable state for one turn.
type TurnMessage struct {
	Snapshot model.Snapshot `json:"snapshot"`
}

// DirectiveMessage is the reply to a turn. Line is the same directive the
// text protocol would print.
type DirectiveMessage struct {
	Turn    int            `json:"turn"`
	Mode    string         `json:"mode"`
	Beacons []rules.Beacon `json:"beacons"`
	Line    string         `json:"line"`
}

type ErrorMessage struct {
	Error string `json:"error"`
}
