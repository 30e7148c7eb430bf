package store

import "github.com/devdash/resourceview/internal/objects"

// associationKey is the (kind, resource-name) key of the
// associated-services index.
type associationKey struct {
	Kind objects.Kind
	Name string
}

// Associations is the reverse map from an owning (kind, name) to the
// service names it declares via its ServiceProducer annotation.
// Owned exclusively by the reconciler, same as Raw.
type Associations struct {
	byOwner map[associationKey][]string
}

// NewAssociations builds an empty index.
func NewAssociations() *Associations {
	return &Associations{byOwner: map[associationKey][]string{}}
}

// Set replaces the declared service names for (kind, name). Passing a
// nil/empty slice is equivalent to Delete.
func (a *Associations) Set(kind objects.Kind, name string, serviceNames []string) {
	key := associationKey{Kind: kind, Name: name}
	if len(serviceNames) == 0 {
		delete(a.byOwner, key)
		return
	}
	a.byOwner[key] = serviceNames
}

// Delete drops the (kind, name) entry, e.g. on deletion of the owning
// primitive: associated-services entries follow the owning primitive.
func (a *Associations) Delete(kind objects.Kind, name string) {
	delete(a.byOwner, associationKey{Kind: kind, Name: name})
}

// Get returns the service names declared by (kind, name), or nil.
func (a *Associations) Get(kind objects.Kind, name string) []string {
	return a.byOwner[associationKey{Kind: kind, Name: name}]
}

// Owner names a resource that can own associated-service declarations.
type Owner struct {
	Kind objects.Kind
	Name string
}

// OwnersOfService returns every (kind, name) whose declared service
// list contains serviceName, for the service-change re-emission fan-out.
func (a *Associations) OwnersOfService(serviceName string) []Owner {
	var out []Owner
	for key, names := range a.byOwner {
		for _, n := range names {
			if n == serviceName {
				out = append(out, Owner{Kind: key.Kind, Name: key.Name})
				break
			}
		}
	}
	return out
}
