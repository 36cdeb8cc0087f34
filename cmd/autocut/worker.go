package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tycoonteritory/AutoCut/internal/server"
)

var workerPollInterval time.Duration

// WorkerCmd creates the "worker" command, which runs the analysis pipeline
// against the shared database with no HTTP front door, for deployments
// that scale ingestion and processing separately.
func WorkerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the analysis pipeline without an HTTP server",
		Run: func(cmd *cobra.Command, args []string) {
			runWorker()
		},
	}
	cmd.Flags().DurationVar(&workerPollInterval, "poll-interval", 2*time.Second, "how often to poll for uploaded jobs")
	return cmd
}

func runWorker() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nshutting down...")
		cancel()
	}()

	if err := server.RunWorker(ctx, *ServerConfig, workerPollInterval); err != nil {
		fmt.Fprintf(os.Stderr, "worker error: %v\n", err)
		os.Exit(1)
	}
}
