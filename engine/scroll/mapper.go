package scroll

import (
	"github.com/chewxy/math32"
)

// Transform is the pose derived from a scroll percentage.
// Angles are in radians, positions in world units, Scale is uniform.
type Transform struct {
	RotationX float32
	RotationY float32
	PositionX float32
	PositionY float32
	Scale     float32
}

// Posable is anything whose pose can be overwritten by a Transform.
type Posable interface {
	SetRotation(x, y, z float32)
	SetPosition(x, y, z float32)
	SetScale(x, y, z float32)
}

const (
	spinY           = 8 * math32.Pi
	spinX           = 4 * math32.Pi
	zigZagAmplitude = 5
	zigZagFrequency = 4
	bobAmplitude    = 3
	scaleBase       = 1.5
	scaleSwing      = 0.5
)

// MapScroll maps a scroll percentage onto rotation, position and scale.
// p is expected in [0, 1] but is not clamped here; callers obtain it from
// State.Percentage which clamps. Values outside the range extrapolate the
// same curves.
//
// Parameters:
//   - p: normalized scroll position
//
// Returns:
//   - Transform: the derived pose
func MapScroll(p float32) Transform {
	return Transform{
		RotationY: p * spinY,
		RotationX: p * spinX,
		PositionY: math32.Sin(p*math32.Pi*2) * bobAmplitude,
		PositionX: math32.Sin(p*math32.Pi*zigZagFrequency) * zigZagAmplitude,
		Scale:     scaleBase + math32.Sin(p*math32.Pi*4)*scaleSwing,
	}
}

// Apply overwrites the pose of target with t. Z components are zeroed for
// position and rotation, scale is applied uniformly.
//
// Parameters:
//   - target: the object to pose
func (t Transform) Apply(target Posable) {
	target.SetRotation(t.RotationX, t.RotationY, 0)
	target.SetPosition(t.PositionX, t.PositionY, 0)
	target.SetScale(t.Scale, t.Scale, t.Scale)
}
