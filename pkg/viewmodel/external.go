package viewmodel

import "github.com/devdash/resourceview/internal/objects"

// AppModel resolves a project's on-disk path to launch-profile data.
// It is an external collaborator; this engine only calls it.
type AppModel interface {
	TryGetProjectWithPath(path string) (ResolvedProject, bool)
}

// ResolvedProject is the subset of a resolved project that endpoint
// construction needs. Named distinctly from the Project view model
// in types.go to avoid confusion between "a view model" and "an application
// model's notion of a project."
type ResolvedProject struct {
	LaunchURL string // empty if no launch profile, or no launch_url on it
}

// ProtocolPredicate decides whether a service carries HTTP and which
// scheme.
type ProtocolPredicate interface {
	UsesHTTP(svc objects.Service) (scheme string, ok bool)
}

// ProtocolPredicateFunc adapts a plain function to ProtocolPredicate.
type ProtocolPredicateFunc func(objects.Service) (string, bool)

func (f ProtocolPredicateFunc) UsesHTTP(svc objects.Service) (string, bool) { return f(svc) }
