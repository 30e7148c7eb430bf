package viewmodel

import (
	"fmt"

	"github.com/devdash/resourceview/internal/objects"
)

// Snapshot is the read-only slice of the raw store a conversion needs:
// the current service table and the endpoints owned by one resource.
// Conversions only ever read through this interface, so each one is a
// pure function of the raw store snapshot at emission time.
type Snapshot interface {
	ServiceByName(name string) (objects.Service, bool)
	EndpointsForOwner(kind objects.Kind, name string) []objects.Endpoint
}

// BuildEndpoints constructs the endpoint URL list for one owner.
// launchURL, when non-empty, is appended as "/{launch_url}" to every
// resulting URL; that's the project launch-profile case.
func BuildEndpoints(ownerKind objects.Kind, ownerName string, snap Snapshot, proto ProtocolPredicate, launchURL string) []string {
	var out []string
	for _, ep := range snap.EndpointsForOwner(ownerKind, ownerName) {
		svc, ok := snap.ServiceByName(ep.Spec.ServiceName)
		if !ok {
			continue
		}
		scheme, ok := proto.UsesHTTP(svc)
		if !ok {
			continue
		}
		url := fmt.Sprintf("%s://%s:%d", scheme, ep.Spec.Address, ep.Spec.Port)
		if launchURL != "" {
			url = url + "/" + launchURL
		}
		out = append(out, url)
	}
	return out
}

// ExpectedEndpointCount reports how many declared services use HTTP.
// nil means "unknown": no ServiceProducer annotation, or a declared
// service missing from the service table.
func ExpectedEndpointCount(annotations map[string]string, snap Snapshot, proto ProtocolPredicate) (*int, error) {
	names, err := objects.ServiceProducerNames(annotations)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, nil
	}

	count := 0
	for _, name := range names {
		svc, ok := snap.ServiceByName(name)
		if !ok {
			return nil, nil // unknown: rendered as null.
		}
		if _, ok := proto.UsesHTTP(svc); ok {
			count++
		}
	}
	return &count, nil
}

// launchURLFor resolves a project's launch URL via the application
// model, returning "" if unresolved. The project endpoint suffix is
// additive, never mandatory.
func launchURLFor(app AppModel, projectPath string) string {
	if app == nil || projectPath == "" {
		return ""
	}
	proj, ok := app.TryGetProjectWithPath(projectPath)
	if !ok {
		return ""
	}
	return proj.LaunchURL
}

// BuildContainerViewModel joins a container with the raw store's
// current snapshot into its view model. cachedEnv/hasCache reflects
// the enrichment cache lookup the reconciler already performed.
func BuildContainerViewModel(c objects.Container, snap Snapshot, proto ProtocolPredicate, cachedEnv []objects.EnvVar, hasCache bool) (Container, error) {
	expected, err := ExpectedEndpointCount(c.Annotations, snap, proto)
	if err != nil {
		return Container{}, err
	}

	source, specSource := c.EnvSpec, c.EnvSpec
	if hasCache {
		source = cachedEnv
	}

	return Container{
		Common: Common{
			Name:                  c.Name,
			UID:                   c.UID,
			NamespacedName:        c.Name,
			CreatedAt:             c.CreatedAt,
			State:                 c.Status.State,
			ExpectedEndpointCount: expected,
			Endpoints:             BuildEndpoints(objects.KindContainer, c.Name, snap, proto, ""),
			Environment:           fromProjected(objects.ProjectEnvironment(source, specSource)),
			LogSource:             LogSource{Docker: DockerLogSource{RuntimeID: c.Status.RuntimeID}},
		},
		ContainerID: c.Status.RuntimeID,
		Image:       c.Image,
		Ports:       c.Ports,
	}, nil
}

// BuildExecutableViewModel joins a plain (non-project) executable with
// the raw store's current snapshot into its view model.
func BuildExecutableViewModel(e objects.Executable, snap Snapshot, proto ProtocolPredicate) (Executable, error) {
	expected, err := ExpectedEndpointCount(e.Annotations, snap, proto)
	if err != nil {
		return Executable{}, err
	}

	return Executable{
		Common: Common{
			Name:                  e.Name,
			UID:                   e.UID,
			NamespacedName:        e.Name,
			CreatedAt:             e.CreatedAt,
			State:                 e.Status.State,
			ExpectedEndpointCount: expected,
			Endpoints:             BuildEndpoints(objects.KindExecutable, e.Name, snap, proto, ""),
			Environment:           fromProjected(objects.ProjectEnvironment(e.Status.EffectiveEnv, e.EnvSpec)),
			LogSource:             LogSource{File: FileLogSource{StdoutPath: e.Status.StdoutPath, StderrPath: e.Status.StderrPath}},
		},
		PID:        e.Status.PID,
		ExePath:    e.ExePath,
		WorkingDir: e.WorkingDir,
		Args:       e.Args,
	}, nil
}

// BuildProjectViewModel joins a project-classified executable the same
// way BuildExecutableViewModel does, but emits a Project carrying
// ProjectPath, with the launch-profile endpoint suffix applied.
func BuildProjectViewModel(e objects.Executable, snap Snapshot, proto ProtocolPredicate, app AppModel) (Project, error) {
	projectPath, _ := e.ProjectPath()

	expected, err := ExpectedEndpointCount(e.Annotations, snap, proto)
	if err != nil {
		return Project{}, err
	}

	return Project{
		Common: Common{
			Name:                  e.Name,
			UID:                   e.UID,
			NamespacedName:        e.Name,
			CreatedAt:             e.CreatedAt,
			State:                 e.Status.State,
			ExpectedEndpointCount: expected,
			Endpoints:             BuildEndpoints(objects.KindExecutable, e.Name, snap, proto, launchURLFor(app, projectPath)),
			Environment:           fromProjected(objects.ProjectEnvironment(e.Status.EffectiveEnv, e.EnvSpec)),
			LogSource:             LogSource{File: FileLogSource{StdoutPath: e.Status.StdoutPath, StderrPath: e.Status.StderrPath}},
		},
		PID:         e.Status.PID,
		ProjectPath: projectPath,
	}, nil
}
