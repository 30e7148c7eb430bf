// Package reconcile implements the reconciler: the single serial
// consumer of the merged channel. It is the only writer of the raw
// store, the associated-services index, and the in-flight set.
package reconcile

import (
	"context"

	"k8s.io/apimachinery/pkg/watch"

	"github.com/devdash/resourceview/internal/enrich"
	"github.com/devdash/resourceview/internal/fanout"
	"github.com/devdash/resourceview/internal/logger"
	"github.com/devdash/resourceview/internal/objects"
	"github.com/devdash/resourceview/internal/store"
	"github.com/devdash/resourceview/pkg/viewmodel"
)

// Outputs bundles the per-kind and aggregate delta channels the
// reconciler emits onto.
type Outputs struct {
	Containers  chan<- fanout.Change[viewmodel.Container]
	Executables chan<- fanout.Change[viewmodel.Executable]
	Projects    chan<- fanout.Change[viewmodel.Project]
	Resources   chan<- fanout.Change[viewmodel.Resource]
}

// Reconciler is the serial merged-channel consumer.
type Reconciler struct {
	raw      *store.Raw
	assoc    *store.Associations
	cache    *store.EnrichmentCache
	inFlight *store.InFlight
	enricher *enrich.Enricher
	proto    viewmodel.ProtocolPredicate
	app      viewmodel.AppModel
	out      Outputs
}

// New builds a Reconciler over freshly-created store state.
func New(
	raw *store.Raw,
	assoc *store.Associations,
	cache *store.EnrichmentCache,
	inFlight *store.InFlight,
	enricher *enrich.Enricher,
	proto viewmodel.ProtocolPredicate,
	app viewmodel.AppModel,
	out Outputs,
) *Reconciler {
	return &Reconciler{
		raw:      raw,
		assoc:    assoc,
		cache:    cache,
		inFlight: inFlight,
		enricher: enricher,
		proto:    proto,
		app:      app,
		out:      out,
	}
}

// Run drains merged until it closes or ctx is canceled. Single-message
// failures (bad JSON in an annotation, a replayed Added) are logged and
// the loop continues rather than taking the whole engine down.
func (r *Reconciler) Run(ctx context.Context, merged <-chan store.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-merged:
			if !ok {
				return
			}
			r.handle(ctx, msg)
		}
	}
}

func (r *Reconciler) handle(ctx context.Context, msg store.Message) {
	if msg.Object == nil {
		// The enricher's synthetic re-emit: the raw container itself
		// never changed, only the enrichment cache did, so this has to
		// go through reemitOwner rather than handleContainer. Apply
		// would see the identical object and report no change, and the
		// harvested environment would never reach subscribers.
		if _, ok := r.raw.Containers[msg.Name]; !ok {
			logger.Get(ctx).Errorf("synthetic re-emit for unknown container %q", msg.Name)
			return
		}
		r.reemitOwner(ctx, objects.KindContainer, msg.Name)
		return
	}

	switch msg.Kind {
	case objects.KindContainer:
		c, ok := msg.Object.(objects.Container)
		if !ok {
			return
		}
		r.handleContainer(ctx, msg.Type, c)

	case objects.KindExecutable:
		e, ok := msg.Object.(objects.Executable)
		if !ok {
			return
		}
		if e.IsProject() {
			r.handleProject(ctx, msg.Type, e)
		} else {
			r.handleExecutable(ctx, msg.Type, e)
		}

	case objects.KindEndpoint:
		ep, ok := msg.Object.(objects.Endpoint)
		if !ok {
			return
		}
		r.handleEndpoint(ctx, msg.Type, ep)

	case objects.KindService:
		svc, ok := msg.Object.(objects.Service)
		if !ok {
			return
		}
		r.handleService(ctx, msg.Type, svc)
	}
}

func (r *Reconciler) handleContainer(ctx context.Context, evtType watch.EventType, c objects.Container) {
	changed, err := r.raw.ApplyContainer(evtType, c)
	if err != nil {
		logger.Get(ctx).Errorf("applying container %q: %v", c.Name, err)
		return
	}
	if !changed {
		return
	}

	if evtType == watch.Deleted {
		r.assoc.Delete(objects.KindContainer, c.Name)
		r.emitContainer(ctx, watch.Deleted, viewmodel.Container{Common: viewmodel.Common{Name: c.Name}})
		return
	}

	names, err := objects.ServiceProducerNames(c.Annotations)
	if err != nil {
		logger.Get(ctx).Errorf("container %q: %v", c.Name, err)
	}
	r.assoc.Set(objects.KindContainer, c.Name, names)

	r.maybeScheduleEnrichment(ctx, c)

	var cachedEnv []objects.EnvVar
	var hasCache bool
	if c.Status.RuntimeID != "" {
		cachedEnv, hasCache = r.cache.Get(c.Status.RuntimeID)
	}

	vm, err := viewmodel.BuildContainerViewModel(c, r.raw, r.proto, cachedEnv, hasCache)
	if err != nil {
		logger.Get(ctx).Errorf("building view model for container %q: %v", c.Name, err)
		return
	}
	r.emitContainer(ctx, evtType, vm)
}

// maybeScheduleEnrichment schedules enrichment at most once per
// runtime id, ever.
func (r *Reconciler) maybeScheduleEnrichment(ctx context.Context, c objects.Container) {
	id := c.Status.RuntimeID
	if id == "" {
		return
	}
	if _, cached := r.cache.Get(id); cached {
		return
	}
	if r.inFlight.Has(id) {
		return
	}
	r.inFlight.Mark(id)
	r.enricher.Schedule(ctx, id, c.Name)
}

func (r *Reconciler) handleExecutable(ctx context.Context, evtType watch.EventType, e objects.Executable) {
	changed, err := r.raw.ApplyExecutable(evtType, e)
	if err != nil {
		logger.Get(ctx).Errorf("applying executable %q: %v", e.Name, err)
		return
	}
	if !changed {
		return
	}

	if evtType == watch.Deleted {
		r.assoc.Delete(objects.KindExecutable, e.Name)
		r.emitExecutable(ctx, watch.Deleted, viewmodel.Executable{Common: viewmodel.Common{Name: e.Name}})
		return
	}

	names, err := objects.ServiceProducerNames(e.Annotations)
	if err != nil {
		logger.Get(ctx).Errorf("executable %q: %v", e.Name, err)
	}
	r.assoc.Set(objects.KindExecutable, e.Name, names)

	vm, err := viewmodel.BuildExecutableViewModel(e, r.raw, r.proto)
	if err != nil {
		logger.Get(ctx).Errorf("building view model for executable %q: %v", e.Name, err)
		return
	}
	r.emitExecutable(ctx, evtType, vm)
}

func (r *Reconciler) handleProject(ctx context.Context, evtType watch.EventType, e objects.Executable) {
	changed, err := r.raw.ApplyExecutable(evtType, e)
	if err != nil {
		logger.Get(ctx).Errorf("applying project %q: %v", e.Name, err)
		return
	}
	if !changed {
		return
	}

	if evtType == watch.Deleted {
		r.assoc.Delete(objects.KindExecutable, e.Name)
		r.emitProject(ctx, watch.Deleted, viewmodel.Project{Common: viewmodel.Common{Name: e.Name}})
		return
	}

	names, err := objects.ServiceProducerNames(e.Annotations)
	if err != nil {
		logger.Get(ctx).Errorf("project %q: %v", e.Name, err)
	}
	r.assoc.Set(objects.KindExecutable, e.Name, names)

	vm, err := viewmodel.BuildProjectViewModel(e, r.raw, r.proto, r.app)
	if err != nil {
		logger.Get(ctx).Errorf("building view model for project %q: %v", e.Name, err)
		return
	}
	r.emitProject(ctx, evtType, vm)
}

func (r *Reconciler) handleEndpoint(ctx context.Context, evtType watch.EventType, ep objects.Endpoint) {
	changed, err := r.raw.ApplyEndpoint(evtType, ep)
	if err != nil {
		logger.Get(ctx).Errorf("applying endpoint %q: %v", ep.Name, err)
		return
	}
	if !changed {
		return
	}

	// Re-emit every owner this endpoint is attached to. If the owner
	// isn't present yet, skip silently: the owner's own arrival will
	// re-emit later with this endpoint already in the table.
	for _, ref := range ep.OwnerRefs {
		if ref.Kind != objects.KindContainer && ref.Kind != objects.KindExecutable {
			continue
		}
		r.reemitOwner(ctx, ref.Kind, ref.Name)
	}
}

func (r *Reconciler) handleService(ctx context.Context, evtType watch.EventType, svc objects.Service) {
	changed, err := r.raw.ApplyService(evtType, svc)
	if err != nil {
		logger.Get(ctx).Errorf("applying service %q: %v", svc.Name, err)
		return
	}
	if !changed {
		return
	}

	if _, ok := r.proto.UsesHTTP(svc); !ok {
		return // non-HTTP services don't contribute endpoints.
	}

	for _, owner := range r.assoc.OwnersOfService(svc.Name) {
		r.reemitOwner(ctx, owner.Kind, owner.Name)
	}
}

// reemitOwner rebuilds and emits the current view model for
// (kind, name), used by both the endpoint and service handlers'
// re-emission fan-out.
func (r *Reconciler) reemitOwner(ctx context.Context, kind objects.Kind, name string) {
	switch kind {
	case objects.KindContainer:
		c, ok := r.raw.Containers[name]
		if !ok {
			return
		}
		var cachedEnv []objects.EnvVar
		var hasCache bool
		if c.Status.RuntimeID != "" {
			cachedEnv, hasCache = r.cache.Get(c.Status.RuntimeID)
		}
		vm, err := viewmodel.BuildContainerViewModel(c, r.raw, r.proto, cachedEnv, hasCache)
		if err != nil {
			logger.Get(ctx).Errorf("re-emitting container %q: %v", name, err)
			return
		}
		r.emitContainer(ctx, watch.Modified, vm)

	case objects.KindExecutable:
		e, ok := r.raw.Executables[name]
		if !ok {
			return
		}
		if e.IsProject() {
			vm, err := viewmodel.BuildProjectViewModel(e, r.raw, r.proto, r.app)
			if err != nil {
				logger.Get(ctx).Errorf("re-emitting project %q: %v", name, err)
				return
			}
			r.emitProject(ctx, watch.Modified, vm)
			return
		}
		vm, err := viewmodel.BuildExecutableViewModel(e, r.raw, r.proto)
		if err != nil {
			logger.Get(ctx).Errorf("re-emitting executable %q: %v", name, err)
			return
		}
		r.emitExecutable(ctx, watch.Modified, vm)
	}
}

// send delivers a delta to ch unless ctx is canceled first, so a
// canceled engine can't deadlock the reconciler against a fan-out
// processor that has already stopped consuming.
func send[V fanout.Named](ctx context.Context, ch chan<- fanout.Change[V], change fanout.Change[V]) {
	select {
	case ch <- change:
	case <-ctx.Done():
	}
}

func (r *Reconciler) emitContainer(ctx context.Context, t watch.EventType, vm viewmodel.Container) {
	send(ctx, r.out.Containers, fanout.Change[viewmodel.Container]{Type: t, Value: vm})
	send(ctx, r.out.Resources, fanout.Change[viewmodel.Resource]{Type: t, Value: vm})
}

func (r *Reconciler) emitExecutable(ctx context.Context, t watch.EventType, vm viewmodel.Executable) {
	send(ctx, r.out.Executables, fanout.Change[viewmodel.Executable]{Type: t, Value: vm})
	send(ctx, r.out.Resources, fanout.Change[viewmodel.Resource]{Type: t, Value: vm})
}

func (r *Reconciler) emitProject(ctx context.Context, t watch.EventType, vm viewmodel.Project) {
	send(ctx, r.out.Projects, fanout.Change[viewmodel.Project]{Type: t, Value: vm})
	send(ctx, r.out.Resources, fanout.Change[viewmodel.Resource]{Type: t, Value: vm})
}
