package store

import (
	"testing"

	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/watch"

	"github.com/devdash/resourceview/internal/objects"
)

func TestRawApplyContainer(t *testing.T) {
	raw := NewRaw()

	c := objects.Container{Name: "web", Image: "nginx:1"}
	changed, err := raw.ApplyContainer(watch.Added, c)
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, c, raw.Containers["web"])

	// A duplicate Added fails the single message, leaving the existing
	// entry untouched.
	_, err = raw.ApplyContainer(watch.Added, c)
	require.ErrorIs(t, err, ErrDuplicateAdded)

	// Modified with an identical value doesn't count as a change.
	changed, err = raw.ApplyContainer(watch.Modified, c)
	require.NoError(t, err)
	require.False(t, changed)

	// Modified with a different value does.
	c2 := c
	c2.Image = "nginx:2"
	changed, err = raw.ApplyContainer(watch.Modified, c2)
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, "nginx:2", raw.Containers["web"].Image)

	changed, err = raw.ApplyContainer(watch.Deleted, c2)
	require.NoError(t, err)
	require.True(t, changed)
	_, ok := raw.Containers["web"]
	require.False(t, ok)

	// Deleting something not present is a no-op, not an error.
	changed, err = raw.ApplyContainer(watch.Deleted, c2)
	require.NoError(t, err)
	require.False(t, changed)
}

func TestRawServiceByName(t *testing.T) {
	raw := NewRaw()
	_, ok := raw.ServiceByName("web")
	require.False(t, ok)

	svc := objects.Service{Name: "web", Spec: objects.ServiceSpec{Protocol: "http"}}
	_, err := raw.ApplyService(watch.Added, svc)
	require.NoError(t, err)

	got, ok := raw.ServiceByName("web")
	require.True(t, ok)
	require.Equal(t, svc, got)
}

func TestRawEndpointsForOwner(t *testing.T) {
	raw := NewRaw()

	ep1 := objects.Endpoint{
		Name:      "web-80",
		OwnerRefs: []objects.OwnerRef{{Kind: objects.KindContainer, Name: "web"}},
		Spec:      objects.EndpointSpec{ServiceName: "web", Address: "10.0.0.1", Port: 80},
	}
	ep2 := objects.Endpoint{
		Name:      "api-80",
		OwnerRefs: []objects.OwnerRef{{Kind: objects.KindContainer, Name: "api"}},
		Spec:      objects.EndpointSpec{ServiceName: "api", Address: "10.0.0.2", Port: 80},
	}
	_, err := raw.ApplyEndpoint(watch.Added, ep1)
	require.NoError(t, err)
	_, err = raw.ApplyEndpoint(watch.Added, ep2)
	require.NoError(t, err)

	got := raw.EndpointsForOwner(objects.KindContainer, "web")
	require.Equal(t, []objects.Endpoint{ep1}, got)

	require.Empty(t, raw.EndpointsForOwner(objects.KindContainer, "nonexistent"))
}
