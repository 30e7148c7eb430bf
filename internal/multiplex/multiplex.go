// Package multiplex implements the watch multiplexer: one task per
// primitive kind, each forwarding its typed watch stream into a single
// merged channel the reconciler drains serially.
package multiplex

import (
	"context"

	"golang.org/x/sync/errgroup"
	"k8s.io/apimachinery/pkg/watch"

	"github.com/devdash/resourceview/internal/logger"
	"github.com/devdash/resourceview/internal/objects"
	"github.com/devdash/resourceview/internal/store"
	"github.com/devdash/resourceview/internal/watchapi"
)

// Merged is the single multi-producer, single-consumer channel the
// four watcher tasks write into and the reconciler reads from. It is
// unbounded from the multiplexer's point of view: a generously
// buffered channel, not an actually-infinite one.
type Merged chan store.Message

const mergedBufferSize = 1024

// NewMerged allocates a merged channel sized per mergedBufferSize.
func NewMerged() Merged {
	return make(Merged, mergedBufferSize)
}

// Start launches one task per populated Source in sources into group,
// forwarding into merged, and returns once each is registered; a nil
// Source gets no task.
// Each task runs until ctx is canceled or its own stream ends/errors;
// one kind's failure never stops the others, and since each task
// always returns nil, one kind's error never cancels group's shared
// context either. group.Wait() joins every watcher task, the same way
// it joins the reconciler and fan-out processors.
func Start(ctx context.Context, group *errgroup.Group, sources watchapi.Sources, merged Merged) {
	run(ctx, group, objects.KindContainer, sources.Containers, merged)
	run(ctx, group, objects.KindExecutable, sources.Executables, merged)
	run(ctx, group, objects.KindEndpoint, sources.Endpoints, merged)
	run(ctx, group, objects.KindService, sources.Services, merged)
}

func run[T objects.Object](ctx context.Context, group *errgroup.Group, kind objects.Kind, src watchapi.Source[T], merged Merged) {
	if src == nil {
		return
	}
	group.Go(func() error {
		events, err := src.Watch(ctx)
		if err != nil {
			if ctx.Err() == nil {
				logger.Get(ctx).Errorf("starting %s watch: %v", kind, err)
			}
			return nil
		}

		for {
			select {
			case <-ctx.Done():
				return nil
			case evt, ok := <-events:
				if !ok {
					return nil
				}
				if evt.Type == watch.Bookmark || evt.Type == watch.Error {
					// Ignored at this layer.
					continue
				}

				msg := store.Message{
					Kind:   kind,
					Name:   evt.Object.GetName(),
					Type:   evt.Type,
					Object: evt.Object,
				}

				select {
				case merged <- msg:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
}
