package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/piwi3910/partcam/cmd/partcam/commands"
)

// Version is set via ldflags during release builds.
var Version = "dev"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cancel in-flight nesting and rendering on interrupt.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	os.Exit(commands.Execute(ctx, Version))
}
