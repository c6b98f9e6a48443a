package ipc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
)

// Handler processes a received envelope. Return nil to send no reply.
type Handler func(ctx context.Context, env Envelope) (*Envelope, error)

// Connection is one client session on the sidecar socket. Messages are
// handled strictly in arrival order, one turn at a time.
type Connection struct {
	conn     net.Conn
	handlers map[string]Handler
	Session  string
}

func NewConnection(conn net.Conn, handlers map[string]Handler) *Connection {
	if handlers == nil {
		handlers = make(map[string]Handler)
	}
	return &Connection{conn: conn, handlers: handlers}
}

func (c *Connection) RegisterHandler(msgType string, handler Handler) {
	c.handlers[msgType] = handler
}

// ReadLoop serves the connection until the peer hangs up, a frame is
// corrupt, or ctx is done. It owns the conn and closes it on return.
//
// Unknown message types and handler failures are answered with an error
// envelope, so a turn never gets a partial directive.
func (c *Connection) ReadLoop(ctx context.Context) {
	defer c.conn.Close()
	stop := context.AfterFunc(ctx, func() { c.conn.Close() })
	defer stop()

	for {
		env, err := ReadEnvelope(c.conn)
		switch {
		case err == nil:
		case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
			slog.Info("connection closed", "session", c.Session)
			return
		default:
			slog.Warn("connection read failed", "session", c.Session, "error", err)
			return
		}

		resp, err := c.dispatch(ctx, env)
		if err != nil {
			slog.Error("handler error", "session", c.Session, "type", env.Type, "error", err)
			resp, err = Reply(TypeError, ErrorMessage{Error: err.Error()})
			if err != nil {
				return
			}
		}
		if resp == nil {
			continue
		}
		if err := WriteEnvelope(c.conn, *resp); err != nil {
			slog.Error("failed to send response", "session", c.Session, "type", resp.Type, "error", err)
			return
		}
		slog.Debug("sent response", "session", c.Session, "type", resp.Type)
	}
}

func (c *Connection) dispatch(ctx context.Context, env Envelope) (*Envelope, error) {
	handler, ok := c.handlers[env.Type]
	if !ok {
		return nil, &UnknownTypeError{Type: env.Type}
	}
	return handler(ctx, env)
}

// UnknownTypeError reports an envelope no handler is registered for.
type UnknownTypeError struct {
	Type string
}

func (e *UnknownTypeError) Error() string {
	return "no handler for message type " + e.Type
}
