// Package fanout implements the fan-out processor: one per view-model
// kind, plus one for the aggregate. Each maintains the current-state
// map for its kind and broadcasts deltas to subscribers with
// snapshot-plus-stream semantics.
package fanout

import (
	"context"
	"sync"

	"k8s.io/apimachinery/pkg/watch"
)

// Named is implemented by every view model type the processor handles.
type Named interface {
	ResourceName() string
}

// Change is one delta for a V.
type Change[V Named] struct {
	Type  watch.EventType
	Value V
}

// Monitor is the subscription handle: an atomically-taken snapshot plus
// the ordered stream of deltas that follow it. Stream is closed when
// the subscription is torn down, either by Processor.Close or by the
// overflow policy.
type Monitor[V Named] struct {
	Snapshot []V
	Stream   <-chan Change[V]
}

// subscriberBufferSize bounds each subscriber's channel: a slow
// subscriber is dropped rather than allowed to grow without bound or to
// block the processor.
const subscriberBufferSize = 256

type subscriber[V Named] struct {
	ch chan Change[V]
}

// Processor is a single fan-out task for one view-model kind (or the
// aggregate). It must be driven by exactly one goroutine calling Run;
// Subscribe and Close may be called from any goroutine.
type Processor[V Named] struct {
	mu          sync.Mutex
	order       []string
	current     map[string]V
	subscribers map[int]*subscriber[V]
	nextSubID   int
	closed      bool
}

// NewProcessor builds an empty Processor.
func NewProcessor[V Named]() *Processor[V] {
	return &Processor[V]{
		current:     map[string]V{},
		subscribers: map[int]*subscriber[V]{},
	}
}

// Run drains in, applying each delta to the current-state map and
// broadcasting it, until in is closed or ctx is canceled. Either way it
// calls Close before returning, completing every subscriber's stream.
func (p *Processor[V]) Run(ctx context.Context, in <-chan Change[V]) {
	defer p.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-in:
			if !ok {
				return
			}
			p.apply(change)
		}
	}
}

func (p *Processor[V]) apply(change Change[V]) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		// Close() already tore down every subscriber; nothing left to
		// broadcast to, and their channels must stay closed, not
		// receive a late send.
		return
	}

	name := change.Value.ResourceName()
	switch change.Type {
	case watch.Added:
		if _, had := p.current[name]; !had {
			p.order = append(p.order, name)
		}
		p.current[name] = change.Value
	case watch.Modified:
		if _, had := p.current[name]; !had {
			p.order = append(p.order, name)
		}
		p.current[name] = change.Value
	case watch.Deleted:
		if _, had := p.current[name]; had {
			delete(p.current, name)
			p.removeFromOrder(name)
		}
	default:
		return // any other event type is ignored.
	}

	p.broadcast(change)
}

func (p *Processor[V]) removeFromOrder(name string) {
	for i, n := range p.order {
		if n == name {
			p.order = append(p.order[:i], p.order[i+1:]...)
			return
		}
	}
}

func (p *Processor[V]) broadcast(change Change[V]) {
	for id, sub := range p.subscribers {
		select {
		case sub.ch <- change:
		default:
			// Overflow: drop this subscriber rather than block the
			// processor or any other subscriber.
			close(sub.ch)
			delete(p.subscribers, id)
		}
	}
}

// Subscribe takes the snapshot and registers a new subscriber
// atomically under the same lock apply() uses: no delta applied after
// the snapshot may be missing from the stream, and none applied before
// may appear in it.
func (p *Processor[V]) Subscribe() Monitor[V] {
	p.mu.Lock()
	defer p.mu.Unlock()

	snapshot := make([]V, 0, len(p.order))
	for _, name := range p.order {
		snapshot = append(snapshot, p.current[name])
	}

	sub := &subscriber[V]{ch: make(chan Change[V], subscriberBufferSize)}

	if p.closed {
		// Not registered: a later Close must not close this channel again.
		close(sub.ch)
		return Monitor[V]{Snapshot: snapshot, Stream: sub.ch}
	}

	id := p.nextSubID
	p.nextSubID++
	p.subscribers[id] = sub

	return Monitor[V]{Snapshot: snapshot, Stream: sub.ch}
}

// Close terminates every current subscriber's stream and marks the
// processor closed, so any later Subscribe gets an already-closed
// stream.
func (p *Processor[V]) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	for id, sub := range p.subscribers {
		close(sub.ch)
		delete(p.subscribers, id)
	}
}
