package main

import "github.com/devdash/resourceview/internal/objects"

// schemeProtocols maps a Service.Spec.Protocol value to the URI scheme
// the protocol predicate returns. Anything absent here doesn't use
// HTTP: non-HTTP services don't contribute endpoint URLs.
var schemeProtocols = map[string]string{
	"http":  "http",
	"https": "https",
}

// defaultProtocolPredicate is the stand-in host implementation of
// viewmodel.ProtocolPredicate; the predicate itself is an external
// collaborator. A real host would instead inspect svc.Spec.Annotations
// against its own protocol registry.
func defaultProtocolPredicate(svc objects.Service) (string, bool) {
	scheme, ok := schemeProtocols[svc.Spec.Protocol]
	return scheme, ok
}
