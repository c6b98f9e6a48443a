package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nstehr/corridor/agent"
	"github.com/nstehr/corridor/ipc"
	"github.com/nstehr/corridor/rules"
)

func runServe(cmd *cobra.Command, _ []string) error {
	fmt.Fprintln(os.Stderr, banner)
	slog.Info("starting corridor sidecar", "doctrine", cfg.Doctrine.Name)

	rec, closeRec, err := openRecorder(cfg.Journal)
	if err != nil {
		return err
	}
	defer closeRec()

	// Unix sockets leave behind a file on unclean shutdown; remove it so we can rebind.
	if err := os.RemoveAll(cfg.Socket); err != nil {
		return fmt.Errorf("clean up socket %s: %w", cfg.Socket, err)
	}
	listener, err := net.Listen("unix", cfg.Socket)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Socket, err)
	}
	defer os.Remove(cfg.Socket)
	slog.Info("listening on domain socket", "path", cfg.Socket)

	return serve(cmd.Context(), listener, cfg.MetricsAddr, cfg.Doctrine, rec)
}

// serve runs the accept loop and, when metricsAddr is set, the /metrics
// endpoint until ctx is done. Open sessions are closed and awaited.
func serve(ctx context.Context, listener net.Listener, metricsAddr string, d rules.Doctrine, rec agent.Recorder) error {
	g, gctx := errgroup.WithContext(ctx)
	var sessions sync.WaitGroup

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		return listener.Close()
	})

	g.Go(func() error {
		for {
			conn, err := listener.Accept()
			if err != nil {
				if gctx.Err() != nil {
					return nil
				}
				if errors.Is(err, net.ErrClosed) {
					return err
				}
				slog.Error("failed to accept connection", "error", err)
				continue
			}
			slog.Info("new connection accepted")
			sessions.Add(1)
			go func() {
				defer sessions.Done()
				handleConn(gctx, conn, d, rec)
			}()
		}
	})

	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		g.Go(func() error {
			slog.Info("serving metrics", "addr", metricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err := g.Wait()
	sessions.Wait()
	return err
}

// handleConn runs one session. Each connection gets its own agent and board.
func handleConn(ctx context.Context, conn net.Conn, d rules.Doctrine, rec agent.Recorder) {
	c := ipc.NewConnection(conn, nil)
	a := agent.New(d, rec)
	c.Session = a.Session
	c.RegisterHandler(ipc.TypeHello, a.HandleHello)
	c.RegisterHandler(ipc.TypeTurn, a.HandleTurn)
	c.ReadLoop(ctx)
	slog.Info("session closed", "session", a.Session, "player", a.Player)
}
