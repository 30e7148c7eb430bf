package main

import "github.com/devdash/resourceview/pkg/viewmodel"

// noopAppModel is the stand-in host implementation of viewmodel.AppModel.
// It resolves nothing, so project endpoints never get a launch-profile
// suffix: the documented "additive, never mandatory" fallback in
// pkg/viewmodel/convert.go's launchURLFor.
type noopAppModel struct{}

func (noopAppModel) TryGetProjectWithPath(path string) (viewmodel.ResolvedProject, bool) {
	return viewmodel.ResolvedProject{}, false
}
