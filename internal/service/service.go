// Package service assembles the whole engine: watch streams into a
// merged channel, into the reconciler, into per-kind delta channels,
// into fan-out processors, out to subscribers. It exposes the public
// API: GetContainers/GetExecutables/GetProjects/GetResources,
// ApplicationName, Dispose.
package service

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/devdash/resourceview/internal/enrich"
	"github.com/devdash/resourceview/internal/fanout"
	"github.com/devdash/resourceview/internal/multiplex"
	"github.com/devdash/resourceview/internal/procrunner"
	"github.com/devdash/resourceview/internal/reconcile"
	"github.com/devdash/resourceview/internal/store"
	"github.com/devdash/resourceview/internal/watchapi"
	"github.com/devdash/resourceview/pkg/viewmodel"
)

// deltaBufferSize sizes the per-kind and aggregate delta channels
// between the reconciler and the fan-out processors. These are treated
// as unbounded in practice; a large buffer is the faithful translation.
const deltaBufferSize = 1024

// appHostSuffix is stripped case-insensitively from the host-supplied
// application name.
const appHostSuffix = ".apphost"

// Dependencies are the external collaborators this engine calls as
// inbound interfaces. Everything else is constructed internally.
type Dependencies struct {
	Sources           watchapi.Sources
	ProcessRunner     procrunner.Runner
	AppModel          viewmodel.AppModel
	ProtocolPredicate viewmodel.ProtocolPredicate
	ApplicationName   string // as supplied by the host environment, pre-suffix-strip
}

// Service is the assembled, running engine.
type Service struct {
	applicationName string

	containers  *fanout.Processor[viewmodel.Container]
	executables *fanout.Processor[viewmodel.Executable]
	projects    *fanout.Processor[viewmodel.Project]
	resources   *fanout.Processor[viewmodel.Resource]

	cancel context.CancelFunc
	group  *errgroup.Group
}

// New wires up the full engine and starts every task: the four
// watchers, the reconciler, and the four fan-out processors. It
// returns once everything is running; Dispose tears it all down.
func New(ctx context.Context, deps Dependencies) *Service {
	ctx, cancel := context.WithCancel(ctx)
	group, ctx := errgroup.WithContext(ctx)

	merged := multiplex.NewMerged()
	multiplex.Start(ctx, group, deps.Sources, merged)

	containerDeltas := make(chan fanout.Change[viewmodel.Container], deltaBufferSize)
	executableDeltas := make(chan fanout.Change[viewmodel.Executable], deltaBufferSize)
	projectDeltas := make(chan fanout.Change[viewmodel.Project], deltaBufferSize)
	resourceDeltas := make(chan fanout.Change[viewmodel.Resource], deltaBufferSize)

	containers := fanout.NewProcessor[viewmodel.Container]()
	executables := fanout.NewProcessor[viewmodel.Executable]()
	projects := fanout.NewProcessor[viewmodel.Project]()
	resources := fanout.NewProcessor[viewmodel.Resource]()

	group.Go(func() error { containers.Run(ctx, containerDeltas); return nil })
	group.Go(func() error { executables.Run(ctx, executableDeltas); return nil })
	group.Go(func() error { projects.Run(ctx, projectDeltas); return nil })
	group.Go(func() error { resources.Run(ctx, resourceDeltas); return nil })

	cache := store.NewEnrichmentCache()
	enricher := &enrich.Enricher{
		Runner: deps.ProcessRunner,
		Cache:  cache,
		Merged: merged,
	}

	r := reconcile.New(
		store.NewRaw(),
		store.NewAssociations(),
		cache,
		store.NewInFlight(),
		enricher,
		deps.ProtocolPredicate,
		deps.AppModel,
		reconcile.Outputs{
			Containers:  containerDeltas,
			Executables: executableDeltas,
			Projects:    projectDeltas,
			Resources:   resourceDeltas,
		},
	)
	group.Go(func() error {
		r.Run(ctx, merged)
		return nil
	})

	return &Service{
		applicationName: strings.TrimSuffix(
			deps.ApplicationName,
			caseInsensitiveSuffix(deps.ApplicationName, appHostSuffix),
		),
		containers:  containers,
		executables: executables,
		projects:    projects,
		resources:   resources,
		cancel:      cancel,
		group:       group,
	}
}

// caseInsensitiveSuffix returns suffix's original casing as it appears
// at the end of s, or "" if s doesn't end with suffix (case
// insensitively). Lets TrimSuffix do an exact-case trim while matching
// case-insensitively.
func caseInsensitiveSuffix(s, suffix string) string {
	if len(s) < len(suffix) {
		return ""
	}
	tail := s[len(s)-len(suffix):]
	if !strings.EqualFold(tail, suffix) {
		return ""
	}
	return tail
}

// GetContainers returns a snapshot-plus-stream monitor over the
// current set of container view models.
func (s *Service) GetContainers() fanout.Monitor[viewmodel.Container] { return s.containers.Subscribe() }

// GetExecutables returns a snapshot-plus-stream monitor over the
// current set of plain-executable view models.
func (s *Service) GetExecutables() fanout.Monitor[viewmodel.Executable] { return s.executables.Subscribe() }

// GetProjects returns a snapshot-plus-stream monitor over the current
// set of project view models.
func (s *Service) GetProjects() fanout.Monitor[viewmodel.Project] { return s.projects.Subscribe() }

// GetResources returns a snapshot-plus-stream monitor over the
// aggregate resource stream: the union of the container, executable,
// and project streams, with identical per-resource payloads.
func (s *Service) GetResources() fanout.Monitor[viewmodel.Resource] { return s.resources.Subscribe() }

// ApplicationName is the host-supplied name with any trailing
// ".AppHost" suffix removed.
func (s *Service) ApplicationName() string { return s.applicationName }

// Dispose cancels every task and waits for the watchers, the reconciler
// and the fan-out processors to finish. Enrichment goroutines see the
// cancellation but are not waited for.
func (s *Service) Dispose(ctx context.Context) error {
	s.cancel()
	done := make(chan error, 1)
	go func() { done <- s.group.Wait() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
