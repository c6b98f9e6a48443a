package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nstehr/corridor/agent"
	"github.com/nstehr/corridor/ipc"
)

func runPlay(cmd *cobra.Command, _ []string) error {
	rec, closeRec, err := openRecorder(cfg.Journal)
	if err != nil {
		return err
	}
	defer closeRec()

	a := agent.New(cfg.Doctrine, rec)
	slog.Info("starting match", "session", a.Session, "doctrine", cfg.Doctrine.Name, "max_turns", cfg.MaxTurns)
	return play(cmd.Context(), a, os.Stdin, os.Stdout, cfg.MaxTurns)
}

// play runs one match: the topology block, then up to maxTurns state blocks,
// each answered with exactly one directive line. The referee closing the
// stream between turns ends the match cleanly.
func play(ctx context.Context, a *agent.Agent, in io.Reader, out io.Writer, maxTurns int) error {
	r := ipc.NewReader(in)
	topo, err := r.ReadTopology()
	if err != nil {
		return fmt.Errorf("read topology: %w", err)
	}
	if err := a.Init(topo); err != nil {
		return err
	}

	w := bufio.NewWriter(out)
	for turn := 1; turn <= maxTurns; turn++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		s, err := r.ReadSnapshot(turn, len(topo.Cells))
		if errors.Is(err, io.EOF) {
			slog.Info("input closed", "session", a.Session, "turns", turn-1)
			return nil
		}
		if err != nil {
			return fmt.Errorf("read turn %d: %w", turn, err)
		}

		d, err := a.PlayTurn(ctx, s)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, d.Line); err != nil {
			return err
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	slog.Info("turn limit reached", "session", a.Session, "turns", maxTurns)
	return nil
}
