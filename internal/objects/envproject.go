package objects

import "sort"

// ProjectedEnvVar is a single row of the environment section of a view
// model.
type ProjectedEnvVar struct {
	Name     string
	Value    string
	FromSpec bool
}

// ProjectEnvironment builds the sorted environment list for a view
// model: source is compared against specSource by exact name match to
// compute FromSpec, then the result is sorted ascending by name.
//
// Container enrichment falls back to the container's declared env spec
// when no enrichment-cache entry exists. In that fallback, callers pass
// the declared env spec as *both* source and specSource, which makes
// FromSpec trivially true for every entry. This quirk is preserved as
// specified rather than "fixed."
func ProjectEnvironment(source []EnvVar, specSource []EnvVar) []ProjectedEnvVar {
	specNames := make(map[string]bool, len(specSource))
	for _, e := range specSource {
		specNames[e.Name] = true
	}

	out := make([]ProjectedEnvVar, 0, len(source))
	for _, e := range source {
		if e.Name == "" {
			continue
		}
		out = append(out, ProjectedEnvVar{
			Name:     e.Name,
			Value:    e.Value,
			FromSpec: specNames[e.Name],
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
