package scene

import (
	"github.com/Carmen-Shannon/scrollscene/engine/camera"
	"github.com/Carmen-Shannon/scrollscene/engine/light"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithCamera replaces the default camera.
//
// Parameters:
//   - cam: the camera to use
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCamera(cam camera.Camera) SceneBuilderOption {
	return func(s *scene) {
		s.cam = cam
	}
}

// WithLights replaces the default lighting rig.
//
// Parameters:
//   - lights: the lights to use
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLights(lights ...light.Light) SceneBuilderOption {
	return func(s *scene) {
		s.light = lights
	}
}

// WithViewport sets the initial viewport size used for the camera aspect and
// the text plane height. Non-positive sizes are ignored.
//
// Parameters:
//   - width, height: the viewport size in pixels
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithViewport(width, height int) SceneBuilderOption {
	return func(s *scene) {
		if width > 0 && height > 0 {
			s.width, s.height = width, height
		}
	}
}
