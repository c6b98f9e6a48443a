package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

const banner = `
 ██████╗ ██████╗ ██████╗ ██████╗ ██╗██████╗  ██████╗ ██████╗
██╔════╝██╔═══██╗██╔══██╗██╔══██╗██║██╔══██╗██╔═══██╗██╔══██╗
██║     ██║   ██║██████╔╝██████╔╝██║██║  ██║██║   ██║██████╔╝
██║     ██║   ██║██╔══██╗██╔══██╗██║██║  ██║██║   ██║██╔══██╗
╚██████╗╚██████╔╝██║  ██║██║  ██║██║██████╔╝╚██████╔╝██║  ██║
 ╚═════╝ ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝╚═╝╚═════╝  ╚═════╝ ╚═╝  ╚═╝

Beacon Network Planner`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("corridor failed", "error", err)
		stop()
		os.Exit(1)
	}
}
