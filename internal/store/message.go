package store

import (
	"k8s.io/apimachinery/pkg/watch"

	"github.com/devdash/resourceview/internal/objects"
)

// Message is one entry on the merged channel: an event type, the
// object's name, and the object itself. Object is `any` because the
// merged channel multiplexes all four primitive kinds; Kind says how
// to type-assert it.
//
// A nil Object is the one documented exception: the enricher's
// synthetic re-emit signal, always Kind == KindContainer and
// Type == watch.Modified.
type Message struct {
	Kind   objects.Kind
	Name   string
	Type   watch.EventType
	Object interface{}
}
