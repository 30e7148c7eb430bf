// Command resourceview is the host bootstrap (SPEC_FULL.md §2): it
// wires a service.Service via initializeService and keeps it running
// until asked to stop.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr/funcr"

	"github.com/devdash/resourceview/internal/logger"
)

// Config is the host-supplied configuration initializeService needs to
// build a service.Dependencies (SPEC_FULL.md §2's "(NEW) host
// bootstrap"). Shared, untagged, between wire.go and wire_gen.go.
type Config struct {
	ApplicationName string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.New(funcr.New(func(prefix, args string) {
		os.Stderr.WriteString(prefix + " " + args + "\n")
	}, funcr.Options{}))
	ctx = logger.WithLogger(ctx, log)

	cfg := Config{ApplicationName: os.Getenv("RESOURCEVIEW_APPLICATION_NAME")}

	svc, err := initializeService(ctx, cfg)
	if err != nil {
		log.Errorf("initializing service: %v", err)
		os.Exit(1)
	}

	log.Infof("resourceview running as %q", svc.ApplicationName())

	<-ctx.Done()
	stop()

	log.Infof("shutting down")
	if err := svc.Dispose(context.Background()); err != nil {
		log.Errorf("disposing service: %v", err)
		os.Exit(1)
	}
}
