// Package objects holds the primitive orchestrator objects: Container,
// Executable, Endpoint, Service, and the small value types they share.
// These are pure data; conversion to view models lives in pkg/viewmodel.
package objects

import "time"

// Kind tags which of the four primitive tables an object belongs to.
type Kind string

const (
	KindContainer  Kind = "Container"
	KindExecutable Kind = "Executable"
	KindEndpoint   Kind = "Endpoint"
	KindService    Kind = "Service"
)

// EnvVar is a single environment variable as reported by the
// orchestrator or the container runtime.
type EnvVar struct {
	Name  string
	Value string
}

// OwnerRef names the primitive that created or owns another primitive,
// e.g. the container or executable that owns an Endpoint.
type OwnerRef struct {
	Kind Kind
	Name string
}

// Port is a single published container port.
type Port struct {
	ContainerPort int
	Protocol      string
}

// ContainerStatus is the mutable, runtime-observed part of a Container.
type ContainerStatus struct {
	RuntimeID string // empty until the runtime has assigned one
	State     string
}

// Container is the orchestrator's view of a running container. It
// carries Annotations so it can participate in the associated-services
// index the same way Executable does, via a ServiceProducer annotation.
type Container struct {
	Name        string
	UID         string
	CreatedAt   time.Time
	Image       string
	Ports       []Port
	EnvSpec     []EnvVar
	OwnerRefs   []OwnerRef
	Annotations map[string]string
	Status      ContainerStatus
}

func (c Container) GetName() string { return c.Name }

// ExecutableStatus is the mutable, runtime-observed part of an Executable.
type ExecutableStatus struct {
	EffectiveEnv []EnvVar // nil until the orchestrator reports it
	StdoutPath   string
	StderrPath   string
	PID          *int
	State        string
}

// Executable is the orchestrator's view of a plain process or a
// compilable project (distinguished by AnnotationProjectPath).
type Executable struct {
	Name        string
	UID         string
	CreatedAt   time.Time
	ExePath     string
	WorkingDir  string
	Args        []string
	EnvSpec     []EnvVar
	OwnerRefs   []OwnerRef
	Annotations map[string]string
	Status      ExecutableStatus
}

func (e Executable) GetName() string { return e.Name }

// IsProject reports whether e carries the project annotation: an
// executable is classified as a project iff it carries
// AnnotationProjectPath.
func (e Executable) IsProject() bool {
	_, ok := e.Annotations[AnnotationProjectPath]
	return ok
}

// ProjectPath returns the value of the project annotation, if any.
func (e Executable) ProjectPath() (string, bool) {
	v, ok := e.Annotations[AnnotationProjectPath]
	return v, ok
}

// EndpointSpec names the service and network address an Endpoint
// exposes.
type EndpointSpec struct {
	ServiceName string
	Address     string
	Port        int
}

// Endpoint is a concrete network endpoint bound to one owning
// container or executable.
type Endpoint struct {
	Name      string
	OwnerRefs []OwnerRef
	Spec      EndpointSpec
}

func (e Endpoint) GetName() string { return e.Name }

// ServiceSpec carries the service's protocol and any opaque
// annotations the protocol predicate inspects.
type ServiceSpec struct {
	Protocol    string
	Annotations map[string]string
}

// Service is a named logical service that zero or more endpoints back.
type Service struct {
	Name string
	Spec ServiceSpec
}

func (s Service) GetName() string { return s.Name }

// Object is implemented by every primitive type; it is the generic
// constraint used by watchapi.Source[T] and the merged-channel
// envelope. It combines the type union with the one method every
// primitive shares, so generic code can call GetName() on a T without
// a type switch.
type Object interface {
	GetName() string
	Container | Executable | Endpoint | Service
}
