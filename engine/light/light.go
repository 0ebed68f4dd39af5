package light

import "github.com/chewxy/math32"

// LightType identifies how a light contributes to the scene.
type LightType int

const (
	// LightTypeAmbient lights every surface equally.
	LightTypeAmbient LightType = iota

	// LightTypeDirectional shines from Position towards the target, like the sun.
	LightTypeDirectional
)

// String returns a readable name for the light type.
func (t LightType) String() string {
	switch t {
	case LightTypeAmbient:
		return "ambient"
	case LightTypeDirectional:
		return "directional"
	default:
		return "unknown"
	}
}

type lightImpl struct {
	lightType LightType
	position  [3]float32
	target    [3]float32
	color     [3]float32
	intensity float32
	enabled   bool
}

// Light defines the interface for a scene light.
// The unlit programs ignore lights when shading; they are kept so the scene
// carries the same lighting rig the page was designed with, and are reported
// by the inspect command.
type Light interface {
	// Type returns the light's type.
	//
	// Returns:
	//   - LightType: ambient or directional
	Type() LightType

	// Position returns the light's world-space position.
	// Ambient lights ignore it.
	//
	// Returns:
	//   - [3]float32: the position
	Position() [3]float32

	// Direction returns the normalized direction the light travels, from its
	// position towards its target. Ambient lights return zero.
	//
	// Returns:
	//   - [3]float32: the direction
	Direction() [3]float32

	// Color returns the RGB colour.
	//
	// Returns:
	//   - [3]float32: the colour
	Color() [3]float32

	// Intensity returns the scalar multiplier.
	//
	// Returns:
	//   - float32: the intensity
	Intensity() float32

	// Enabled reports whether the light is active.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// SetPosition moves the light.
	SetPosition(x, y, z float32)

	// SetTarget sets the point a directional light shines at.
	SetTarget(x, y, z float32)

	// SetColor sets the RGB colour.
	SetColor(r, g, b float32)

	// SetIntensity sets the scalar multiplier.
	SetIntensity(intensity float32)

	// SetEnabled toggles the light.
	SetEnabled(enabled bool)
}

var _ Light = &lightImpl{}

// NewLight creates a white, enabled light of the given type with intensity 1
// that targets the origin.
//
// Parameters:
//   - lightType: the light type
//   - opts: functional options to configure the light
//
// Returns:
//   - Light: the new light
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		lightType: lightType,
		color:     [3]float32{1, 1, 1},
		intensity: 1.0,
		enabled:   true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Position() [3]float32 {
	return l.position
}

func (l *lightImpl) Direction() [3]float32 {
	if l.lightType == LightTypeAmbient {
		return [3]float32{}
	}
	return normalize3(
		l.target[0]-l.position[0],
		l.target[1]-l.position[1],
		l.target[2]-l.position[2],
	)
}

func (l *lightImpl) Color() [3]float32 {
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	return l.intensity
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) SetPosition(x, y, z float32) {
	l.position = [3]float32{x, y, z}
}

func (l *lightImpl) SetTarget(x, y, z float32) {
	l.target = [3]float32{x, y, z}
}

func (l *lightImpl) SetColor(r, g, b float32) {
	l.color = [3]float32{r, g, b}
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.intensity = intensity
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}

func normalize3(x, y, z float32) [3]float32 {
	n := math32.Sqrt(x*x + y*y + z*z)
	if n == 0 {
		return [3]float32{0, -1, 0}
	}
	return [3]float32{x / n, y / n, z / n}
}
