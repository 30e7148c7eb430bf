// Package watchapi pins the shape of the orchestrator's watch client: a
// lazy, infinite sequence of (Added|Modified|Deleted|Bookmark|Error, T)
// events. The watch client itself is an external collaborator, so this
// package only defines the contract the rest of the engine is written
// against, plus a fake implementation for tests.
package watchapi

import (
	"context"

	"k8s.io/apimachinery/pkg/watch"

	"github.com/devdash/resourceview/internal/objects"
)

// Event is one change notification for a T. It mirrors
// k8s.io/apimachinery/pkg/watch.Event, but decodes Object into the
// concrete primitive type instead of runtime.Object, since the
// orchestrator's primitives here aren't Kubernetes API objects.
type Event[T objects.Object] struct {
	Type   watch.EventType
	Object T
}

// Source is a typed, long-lived watch stream for one primitive kind.
// Watch returns the event channel without blocking; the channel stays
// open until ctx is canceled or the underlying transport ends.
type Source[T objects.Object] interface {
	Watch(ctx context.Context) (<-chan Event[T], error)
}

// Sources bundles one Source per primitive kind, exactly the four the
// watch multiplexer needs.
type Sources struct {
	Containers  Source[objects.Container]
	Executables Source[objects.Executable]
	Endpoints   Source[objects.Endpoint]
	Services    Source[objects.Service]
}
