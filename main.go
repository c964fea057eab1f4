package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/basinlabs/baseswap/cmd"
	"github.com/basinlabs/baseswap/utils"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cancel the root context on SIGINT/SIGTERM so the server can
	// drain in-flight requests before exiting.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	err := cmd.ExecuteContext(ctx)
	utils.CleanupLogger()
	if err != nil {
		os.Exit(1)
	}
}
