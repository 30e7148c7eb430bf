package objects

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProjectEnvironment(t *testing.T) {
	source := []EnvVar{
		{Name: "PATH", Value: "/usr/bin"},
		{Name: "APP_ENV", Value: "prod"},
		{Name: "", Value: "ignored"},
	}
	spec := []EnvVar{{Name: "APP_ENV", Value: "dev"}}

	got := ProjectEnvironment(source, spec)
	require.Equal(t, []ProjectedEnvVar{
		{Name: "APP_ENV", Value: "prod", FromSpec: true},
		{Name: "PATH", Value: "/usr/bin", FromSpec: false},
	}, got)
}

// TestProjectEnvironmentNoCacheQuirk documents the no-cache fallback:
// when the container handler falls back to the declared env spec
// because there's no enrichment-cache entry yet, it passes the spec as
// both source and specSource, so every entry reports FromSpec true.
func TestProjectEnvironmentNoCacheQuirk(t *testing.T) {
	spec := []EnvVar{{Name: "APP_ENV", Value: "dev"}}

	got := ProjectEnvironment(spec, spec)
	require.Equal(t, []ProjectedEnvVar{{Name: "APP_ENV", Value: "dev", FromSpec: true}}, got)
}
