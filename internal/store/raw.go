// Package store holds the raw, per-kind snapshot tables, the
// associated-services index, and the enrichment cache. The tables and
// the index are owned exclusively by the reconciler (single writer, no
// lock needed); the enrichment cache is the one piece of cross-task
// shared mutable state and is the only part of this package that takes
// a lock.
package store

import (
	"fmt"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"k8s.io/apimachinery/pkg/watch"

	"github.com/devdash/resourceview/internal/objects"
)

// ErrDuplicateAdded is returned by Apply* when an Added event names a
// resource already present in the table. A replayed Added fails the
// single message, not the whole reconciler.
var ErrDuplicateAdded = errors.New("duplicate Added for existing resource")

// Raw is the four-table raw store. It is not safe for concurrent use;
// it must be touched only by the reconciler.
type Raw struct {
	Containers  map[string]objects.Container
	Executables map[string]objects.Executable
	Endpoints   map[string]objects.Endpoint
	Services    map[string]objects.Service
}

// NewRaw builds an empty raw store.
func NewRaw() *Raw {
	return &Raw{
		Containers:  map[string]objects.Container{},
		Executables: map[string]objects.Executable{},
		Endpoints:   map[string]objects.Endpoint{},
		Services:    map[string]objects.Service{},
	}
}

// apply is the generic shape every Apply* method shares: apply an event
// to a table and report whether the table actually changed.
func apply[V any](table map[string]V, name string, evtType watch.EventType, obj V) (changed bool, err error) {
	existing, had := table[name]

	switch evtType {
	case watch.Added:
		if had {
			return false, errors.Wrapf(ErrDuplicateAdded, "name %q", name)
		}
		table[name] = obj
		return true, nil

	case watch.Modified:
		if had && cmp.Equal(existing, obj) {
			return false, nil
		}
		table[name] = obj
		return true, nil

	case watch.Deleted:
		if !had {
			return false, nil
		}
		delete(table, name)
		return true, nil

	default:
		return false, fmt.Errorf("unsupported event type %q for %q", evtType, name)
	}
}

func (r *Raw) ApplyContainer(evtType watch.EventType, obj objects.Container) (bool, error) {
	return apply(r.Containers, obj.Name, evtType, obj)
}

func (r *Raw) ApplyExecutable(evtType watch.EventType, obj objects.Executable) (bool, error) {
	return apply(r.Executables, obj.Name, evtType, obj)
}

func (r *Raw) ApplyEndpoint(evtType watch.EventType, obj objects.Endpoint) (bool, error) {
	return apply(r.Endpoints, obj.Name, evtType, obj)
}

func (r *Raw) ApplyService(evtType watch.EventType, obj objects.Service) (bool, error) {
	return apply(r.Services, obj.Name, evtType, obj)
}

// ServiceByName looks up a service by name, satisfying
// pkg/viewmodel.Snapshot.
func (r *Raw) ServiceByName(name string) (objects.Service, bool) {
	svc, ok := r.Services[name]
	return svc, ok
}

// EndpointsForOwner returns every endpoint currently owned by
// (ownerKind, ownerName), indexed strictly by name.
func (r *Raw) EndpointsForOwner(ownerKind objects.Kind, ownerName string) []objects.Endpoint {
	var out []objects.Endpoint
	for _, ep := range r.Endpoints {
		for _, ref := range ep.OwnerRefs {
			if ref.Kind == ownerKind && ref.Name == ownerName {
				out = append(out, ep)
				break
			}
		}
	}
	return out
}
