// Package enrich implements the one-shot container-enrichment task:
// inspect a container's environment via the runtime and feed the
// result back into the reconcile loop.
package enrich

import (
	"context"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"k8s.io/apimachinery/pkg/watch"

	"github.com/devdash/resourceview/internal/logger"
	"github.com/devdash/resourceview/internal/objects"
	"github.com/devdash/resourceview/internal/procrunner"
	"github.com/devdash/resourceview/internal/store"
)

// Timeout bounds how long an inspection task waits for docker to respond.
const Timeout = 30 * time.Second

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Enricher schedules the one-shot docker-inspect task per runtime id.
type Enricher struct {
	Runner procrunner.Runner
	Cache  *store.EnrichmentCache
	// Merged is the channel the synthetic re-emit is enqueued onto.
	Merged chan<- store.Message
}

// Schedule launches the inspection task for runtimeID in a new
// goroutine and returns immediately; the caller (the reconciler) is
// responsible for having already marked runtimeID in-flight so this
// never needs to check that set itself. It always runs exactly once
// per call.
func (e *Enricher) Schedule(ctx context.Context, runtimeID, containerName string) {
	go e.run(ctx, runtimeID, containerName)
}

func (e *Enricher) run(ctx context.Context, runtimeID, containerName string) {
	ctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	spec := procrunner.Spec{
		Exe:      "docker",
		Argv:     []string{"container", "inspect", "--format={{json .Config.Env}}", runtimeID},
		KillTree: true,
	}

	result, err := e.Runner.Run(ctx, spec)
	if err != nil {
		logger.Get(ctx).Errorf("enriching container %q (runtime id %s): %v", containerName, runtimeID, err)
		return
	}
	if result.ExitCode != 0 {
		logger.Get(ctx).Errorf("enriching container %q (runtime id %s): docker inspect exited %d", containerName, runtimeID, result.ExitCode)
		return
	}
	if len(result.Stdout) == 0 {
		logger.Get(ctx).Errorf("enriching container %q (runtime id %s): empty docker inspect output", containerName, runtimeID)
		return
	}

	env, err := parseEnv(result.Stdout)
	if err != nil {
		logger.Get(ctx).Errorf("enriching container %q (runtime id %s): %v", containerName, runtimeID, err)
		return
	}

	e.Cache.Set(runtimeID, env)

	msg := store.Message{
		Kind:   objects.KindContainer,
		Name:   containerName,
		Type:   watch.Modified,
		Object: nil, // nil payload marks this as the enrichment re-emit sentinel
	}

	select {
	case e.Merged <- msg:
	case <-ctx.Done():
	}
}

// parseEnv decodes a JSON array of "KEY=VALUE" strings into EnvVars,
// splitting each on the first "=".
func parseEnv(raw []byte) ([]objects.EnvVar, error) {
	var entries []string
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}

	env := make([]objects.EnvVar, 0, len(entries))
	for _, entry := range entries {
		name, value, _ := strings.Cut(entry, "=")
		env = append(env, objects.EnvVar{Name: name, Value: value})
	}
	return env, nil
}
