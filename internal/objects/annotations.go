package objects

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// Annotation keys consumed from the orchestrator. Treated as opaque
// strings agreed with the orchestrator, never parsed for meaning beyond
// what's documented here.
const (
	AnnotationServiceProducer = "ServiceProducer"
	AnnotationProjectPath     = "CSharpProjectPath"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// serviceProducerEntry is one element of the ServiceProducer JSON array.
type serviceProducerEntry struct {
	ServiceName string `json:"service_name"`
}

// ServiceProducerNames parses the ServiceProducer annotation, if
// present, into the list of service names it declares. A missing
// annotation yields an empty, non-error result: not every resource
// produces a service.
func ServiceProducerNames(annotations map[string]string) ([]string, error) {
	raw, ok := annotations[AnnotationServiceProducer]
	if !ok || raw == "" {
		return nil, nil
	}

	var entries []serviceProducerEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, errors.Wrapf(err, "parsing %s annotation", AnnotationServiceProducer)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.ServiceName != "" {
			names = append(names, e.ServiceName)
		}
	}
	return names, nil
}
