package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/watch"

	"github.com/devdash/resourceview/internal/enrich"
	"github.com/devdash/resourceview/internal/fanout"
	"github.com/devdash/resourceview/internal/objects"
	"github.com/devdash/resourceview/internal/procrunner"
	"github.com/devdash/resourceview/internal/store"
	"github.com/devdash/resourceview/pkg/viewmodel"
)

var httpPredicate = viewmodel.ProtocolPredicateFunc(func(svc objects.Service) (string, bool) {
	if svc.Spec.Protocol == "http" {
		return "http", true
	}
	return "", false
})

type noRunner struct{}

func (noRunner) Run(ctx context.Context, spec procrunner.Spec) (procrunner.Result, error) {
	return procrunner.Result{}, nil
}

// fakeInspectRunner simulates a successful "docker container inspect"
// call, yielding a JSON array of "KEY=VALUE" env entries.
type fakeInspectRunner struct {
	stdout []byte
}

func (f fakeInspectRunner) Run(ctx context.Context, spec procrunner.Spec) (procrunner.Result, error) {
	return procrunner.Result{ExitCode: 0, Stdout: f.stdout}, nil
}

type harness struct {
	r      *Reconciler
	merged chan store.Message
	outs   Outputs
	cache  *store.EnrichmentCache
	cancel context.CancelFunc
	ctx    context.Context
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithRunner(t, noRunner{})
}

func newHarnessWithRunner(t *testing.T, runner procrunner.Runner) *harness {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	outs := Outputs{
		Containers:  make(chan fanout.Change[viewmodel.Container], 16),
		Executables: make(chan fanout.Change[viewmodel.Executable], 16),
		Projects:    make(chan fanout.Change[viewmodel.Project], 16),
		Resources:   make(chan fanout.Change[viewmodel.Resource], 16),
	}
	merged := make(chan store.Message, 16)

	cache := store.NewEnrichmentCache()
	enricher := &enrich.Enricher{Runner: runner, Cache: cache, Merged: merged}

	r := New(store.NewRaw(), store.NewAssociations(), cache, store.NewInFlight(), enricher, httpPredicate, nil, outs)

	h := &harness{r: r, merged: merged, outs: outs, cache: cache, ctx: ctx, cancel: cancel}
	go r.Run(ctx, merged)
	t.Cleanup(cancel)
	return h
}

func recvContainer(t *testing.T, ch <-chan fanout.Change[viewmodel.Container]) fanout.Change[viewmodel.Container] {
	t.Helper()
	select {
	case c := <-ch:
		return c
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for container delta")
		return fanout.Change[viewmodel.Container]{}
	}
}

func recvExecutable(t *testing.T, ch <-chan fanout.Change[viewmodel.Executable]) fanout.Change[viewmodel.Executable] {
	t.Helper()
	select {
	case c := <-ch:
		return c
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for executable delta")
		return fanout.Change[viewmodel.Executable]{}
	}
}

func requireNoMore[T any](t *testing.T, ch <-chan T) {
	t.Helper()
	select {
	case v := <-ch:
		t.Fatalf("unexpected extra delta: %+v", v)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestContainerJoinWithServiceAndEndpoint(t *testing.T) {
	h := newHarness(t)

	h.merged <- store.Message{
		Kind: objects.KindService, Name: "web", Type: watch.Added,
		Object: objects.Service{Name: "web", Spec: objects.ServiceSpec{Protocol: "http"}},
	}
	h.merged <- store.Message{
		Kind: objects.KindEndpoint, Name: "web-80", Type: watch.Added,
		Object: objects.Endpoint{
			Name:      "web-80",
			OwnerRefs: []objects.OwnerRef{{Kind: objects.KindContainer, Name: "app"}},
			Spec:      objects.EndpointSpec{ServiceName: "web", Address: "10.0.0.1", Port: 80},
		},
	}
	containerUID := uuid.New().String()
	h.merged <- store.Message{
		Kind: objects.KindContainer, Name: "app", Type: watch.Added,
		Object: objects.Container{
			Name:        "app",
			UID:         containerUID,
			Image:       "api:1",
			Annotations: map[string]string{objects.AnnotationServiceProducer: `[{"service_name":"web"}]`},
		},
	}

	change := recvContainer(t, h.outs.Containers)
	require.Equal(t, watch.Added, change.Type)
	require.Equal(t, "app", change.Value.Name)
	require.Equal(t, containerUID, change.Value.UID)
	require.Equal(t, []string{"http://10.0.0.1:80"}, change.Value.Endpoints)
	require.NotNil(t, change.Value.ExpectedEndpointCount)
	require.Equal(t, 1, *change.Value.ExpectedEndpointCount)

	// Aggregate resource stream mirrors the per-kind stream.
	select {
	case agg := <-h.outs.Resources:
		require.Equal(t, "app", agg.Value.ResourceName())
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for aggregate delta")
	}
}

func TestEndpointBeforeOwnerIsSkippedSilently(t *testing.T) {
	h := newHarness(t)

	h.merged <- store.Message{
		Kind: objects.KindEndpoint, Name: "web-80", Type: watch.Added,
		Object: objects.Endpoint{
			Name:      "web-80",
			OwnerRefs: []objects.OwnerRef{{Kind: objects.KindContainer, Name: "app"}},
			Spec:      objects.EndpointSpec{ServiceName: "web", Address: "10.0.0.1", Port: 80},
		},
	}

	requireNoMore(t, h.outs.Containers)
}

func TestLateServiceReemitsExistingOwner(t *testing.T) {
	h := newHarness(t)

	h.merged <- store.Message{
		Kind: objects.KindContainer, Name: "app", Type: watch.Added,
		Object: objects.Container{
			Name:        "app",
			Annotations: map[string]string{objects.AnnotationServiceProducer: `[{"service_name":"web"}]`},
		},
	}
	first := recvContainer(t, h.outs.Containers)
	require.Nil(t, first.Value.ExpectedEndpointCount, "unknown until the service exists")

	select {
	case <-h.outs.Resources:
	case <-time.After(time.Second):
		t.Fatal("timed out draining aggregate for first emission")
	}

	h.merged <- store.Message{
		Kind: objects.KindService, Name: "web", Type: watch.Added,
		Object: objects.Service{Name: "web", Spec: objects.ServiceSpec{Protocol: "http"}},
	}

	second := recvContainer(t, h.outs.Containers)
	require.Equal(t, watch.Modified, second.Type)
	require.NotNil(t, second.Value.ExpectedEndpointCount)
	require.Equal(t, 1, *second.Value.ExpectedEndpointCount, "the declared service now exists and uses HTTP")
	require.Empty(t, second.Value.Endpoints, "no endpoint object backs it yet, only the service declaration")
}

func TestContainerDeletionCleansAssociationIndex(t *testing.T) {
	h := newHarness(t)

	h.merged <- store.Message{
		Kind: objects.KindContainer, Name: "app", Type: watch.Added,
		Object: objects.Container{
			Name:        "app",
			Annotations: map[string]string{objects.AnnotationServiceProducer: `[{"service_name":"web"}]`},
		},
	}
	recvContainer(t, h.outs.Containers)
	<-h.outs.Resources

	h.merged <- store.Message{
		Kind: objects.KindContainer, Name: "app", Type: watch.Deleted,
		Object: objects.Container{Name: "app"},
	}
	deleted := recvContainer(t, h.outs.Containers)
	require.Equal(t, watch.Deleted, deleted.Type)
	<-h.outs.Resources

	require.Empty(t, h.r.assoc.Get(objects.KindContainer, "app"))

	// A service arriving afterward must not resurrect the deleted owner.
	h.merged <- store.Message{
		Kind: objects.KindService, Name: "web", Type: watch.Added,
		Object: objects.Service{Name: "web", Spec: objects.ServiceSpec{Protocol: "http"}},
	}
	requireNoMore(t, h.outs.Containers)
}

func TestExecutableVsProjectClassification(t *testing.T) {
	h := newHarness(t)

	h.merged <- store.Message{
		Kind: objects.KindExecutable, Name: "worker", Type: watch.Added,
		Object: objects.Executable{Name: "worker"},
	}
	exe := recvExecutable(t, h.outs.Executables)
	require.Equal(t, "worker", exe.Value.Name)
	<-h.outs.Resources

	h.merged <- store.Message{
		Kind: objects.KindExecutable, Name: "api", Type: watch.Added,
		Object: objects.Executable{
			Name:        "api",
			Annotations: map[string]string{objects.AnnotationProjectPath: "src/Api/Api.csproj"},
		},
	}

	select {
	case proj := <-h.outs.Projects:
		require.Equal(t, "api", proj.Value.Name)
		require.Equal(t, "src/Api/Api.csproj", proj.Value.ProjectPath)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for project delta")
	}
	<-h.outs.Resources

	requireNoMore(t, h.outs.Executables)
}

func TestContainerEnrichmentScheduledOncePerRuntimeID(t *testing.T) {
	h := newHarness(t)

	c := objects.Container{Name: "app", Status: objects.ContainerStatus{RuntimeID: "runtime-1"}}
	h.merged <- store.Message{Kind: objects.KindContainer, Name: "app", Type: watch.Added, Object: c}
	recvContainer(t, h.outs.Containers)
	<-h.outs.Resources

	require.True(t, h.r.inFlight.Has("runtime-1"))

	// A Modified with the identical value is not a change, so it must
	// not re-schedule enrichment (no observable effect to assert beyond
	// "no panic, no extra emission" since InFlight never clears).
	h.merged <- store.Message{Kind: objects.KindContainer, Name: "app", Type: watch.Modified, Object: c}
	requireNoMore(t, h.outs.Containers)
}

func TestEnrichmentCacheFillTriggersSecondEmissionWithHarvestedEnv(t *testing.T) {
	h := newHarnessWithRunner(t, fakeInspectRunner{
		stdout: []byte(`["LANG=en_US.UTF-8","PATH=/usr/bin","POSTGRES_PASSWORD=hunter2"]`),
	})

	c := objects.Container{Name: "app", Status: objects.ContainerStatus{RuntimeID: "runtime-1"}}
	h.merged <- store.Message{Kind: objects.KindContainer, Name: "app", Type: watch.Added, Object: c}

	first := recvContainer(t, h.outs.Containers)
	require.Equal(t, watch.Added, first.Type)
	require.Empty(t, first.Value.Environment, "no enrichment cache entry yet")
	<-h.outs.Resources

	// The enricher runs in its own goroutine; its synthetic re-emit
	// arrives on merged once the fake inspection completes.
	second := recvContainer(t, h.outs.Containers)
	require.Equal(t, watch.Modified, second.Type)
	require.Equal(t, []viewmodel.EnvironmentVariable{
		{Name: "LANG", Value: "en_US.UTF-8", FromSpec: false},
		{Name: "PATH", Value: "/usr/bin", FromSpec: false},
		{Name: "POSTGRES_PASSWORD", Value: "hunter2", FromSpec: false},
	}, second.Value.Environment, "the harvested env from docker inspect must reach subscribers")
	<-h.outs.Resources

	_, ok := h.cache.Get("runtime-1")
	require.True(t, ok)
}

func TestSyntheticReemitForUnknownContainerIsLogged(t *testing.T) {
	h := newHarness(t)

	// Object == nil with no existing container entry: handled, not a panic.
	h.merged <- store.Message{Kind: objects.KindContainer, Name: "ghost", Type: watch.Modified, Object: nil}
	requireNoMore(t, h.outs.Containers)
}

func TestDuplicateAddedDoesNotStopTheLoop(t *testing.T) {
	h := newHarness(t)

	c := objects.Container{Name: "app"}
	h.merged <- store.Message{Kind: objects.KindContainer, Name: "app", Type: watch.Added, Object: c}
	recvContainer(t, h.outs.Containers)
	<-h.outs.Resources

	// A replayed Added fails this single message, but the reconciler
	// keeps draining subsequent messages.
	h.merged <- store.Message{Kind: objects.KindContainer, Name: "app", Type: watch.Added, Object: c}
	requireNoMore(t, h.outs.Containers)

	h.merged <- store.Message{
		Kind: objects.KindExecutable, Name: "worker", Type: watch.Added,
		Object: objects.Executable{Name: "worker"},
	}
	recvExecutable(t, h.outs.Executables)
}
