package watchapi

import (
	"context"

	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/watch"

	"github.com/devdash/resourceview/internal/objects"
)

// FakeSource adapts k8s.io/apimachinery/pkg/watch.FakeWatcher into a
// Source[T], for use in tests. Call Add/Modify/Delete/Error on the
// embedded FakeWatcher to drive it; Watch relays those as Event[T].
type FakeSource[T objects.Object] struct {
	*watch.FakeWatcher
	decode func(interface{}) T
}

// NewFakeSource builds a FakeSource. FakeWatcher only accepts
// runtime.Object, and our primitives don't implement that interface
// (they're not Kubernetes API objects), so Add/Modify/Delete take the
// fakeObject wrapper below instead.
func NewFakeSource[T objects.Object]() *FakeSource[T] {
	return &FakeSource[T]{FakeWatcher: watch.NewFake()}
}

func (f *FakeSource[T]) Watch(ctx context.Context) (<-chan Event[T], error) {
	out := make(chan Event[T])
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-f.ResultChan():
				if !ok {
					return
				}
				obj, ok := evt.Object.(fakeObject[T])
				if !ok {
					continue
				}
				select {
				case out <- Event[T]{Type: evt.Type, Object: obj.value}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// fakeObject wraps a T as a runtime.Object so it can travel through
// watch.FakeWatcher's Add/Modify/Delete, which require runtime.Object.
// The fake client never round-trips through a real apiserver, so GVK
// tracking is a no-op.
type fakeObject[T objects.Object] struct {
	value T
}

func (fakeObject[T]) GetObjectKind() schema.ObjectKind { return emptyObjectKind{} }

func (f fakeObject[T]) DeepCopyObject() runtime.Object { return f }

type emptyObjectKind struct{}

func (emptyObjectKind) SetGroupVersionKind(_ schema.GroupVersionKind) {}
func (emptyObjectKind) GroupVersionKind() schema.GroupVersionKind     { return schema.GroupVersionKind{} }

// Wrap builds the runtime.Object wrapper a test passes to
// FakeWatcher.Add/Modify/Delete.
func Wrap[T objects.Object](v T) runtime.Object { return fakeObject[T]{value: v} }
