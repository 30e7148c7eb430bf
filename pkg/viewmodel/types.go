// Package viewmodel holds the denormalized, subscriber-facing view
// model types, plus the tagged-variant Resource interface used in
// place of a class hierarchy.
package viewmodel

import (
	"time"

	"github.com/devdash/resourceview/internal/objects"
)

// ResourceKind tags which concrete view model a Resource wraps.
type ResourceKind string

const (
	ResourceKindContainer  ResourceKind = "Container"
	ResourceKindExecutable ResourceKind = "Executable"
	ResourceKindProject    ResourceKind = "Project"
)

// LogSource is a tagged union of the two ways to reach a resource's
// logs: a Docker runtime id, or a pair of files.
type LogSource struct {
	Docker DockerLogSource `json:",omitempty"`
	File   FileLogSource   `json:",omitempty"`
}

type DockerLogSource struct {
	RuntimeID string
}

type FileLogSource struct {
	StdoutPath string
	StderrPath string
}

// EnvironmentVariable is a single resolved environment entry.
type EnvironmentVariable struct {
	Name     string
	Value    string
	FromSpec bool
}

func fromProjected(in []objects.ProjectedEnvVar) []EnvironmentVariable {
	out := make([]EnvironmentVariable, len(in))
	for i, e := range in {
		out[i] = EnvironmentVariable{Name: e.Name, Value: e.Value, FromSpec: e.FromSpec}
	}
	return out
}

// Common holds the fields every view model shares.
type Common struct {
	Name                  string
	UID                   string
	NamespacedName        string
	CreatedAt             time.Time
	State                 string
	ExpectedEndpointCount *int // nil means unknown
	Endpoints             []string
	Environment           []EnvironmentVariable
	LogSource             LogSource
}

// Resource is the aggregate-stream tagged variant: the common getters
// every concrete view model satisfies, plus enough to recover the
// concrete type when needed.
type Resource interface {
	ResourceName() string
	ResourceKind() ResourceKind
	CommonFields() Common
}

// Container is the view model for a single running container.
type Container struct {
	Common
	ContainerID string // runtime id, empty until the runtime assigns one
	Image       string
	Ports       []objects.Port
}

func (c Container) ResourceName() string      { return c.Name }
func (c Container) ResourceKind() ResourceKind { return ResourceKindContainer }
func (c Container) CommonFields() Common       { return c.Common }

// Executable is the view model for a locally running process.
type Executable struct {
	Common
	PID        *int
	ExePath    string
	WorkingDir string
	Args       []string
}

func (e Executable) ResourceName() string      { return e.Name }
func (e Executable) ResourceKind() ResourceKind { return ResourceKindExecutable }
func (e Executable) CommonFields() Common       { return e.Common }

// Project is the view model for a resolved on-disk project.
type Project struct {
	Common
	PID         *int
	ProjectPath string
}

func (p Project) ResourceName() string      { return p.Name }
func (p Project) ResourceKind() ResourceKind { return ResourceKindProject }
func (p Project) CommonFields() Common       { return p.Common }

var (
	_ Resource = Container{}
	_ Resource = Executable{}
	_ Resource = Project{}
)
