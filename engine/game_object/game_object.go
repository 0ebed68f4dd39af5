package game_object

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/scrollscene/common"
	"github.com/Carmen-Shannon/scrollscene/engine/model"
	"github.com/Carmen-Shannon/scrollscene/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
)

type gameObject struct {
	mu      sync.RWMutex
	id      uint64
	name    string
	enabled atomic.Bool
	mdl     model.Model
	program shader.ProgramKind

	position [3]float32
	rotation [3]float32
	scale    [3]float32
}

// GameObject defines the interface for a drawable scene entity: a Model, the
// program it is drawn with, and a position/rotation/scale transform.
// Rotation is Euler XYZ in radians, applied in X, Y, Z order.
type GameObject interface {
	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// Name returns the object's label.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Enabled returns whether this object is enabled for rendering.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// Model returns the Model associated with this object, or nil if not set.
	//
	// Returns:
	//   - model.Model: the associated model or nil
	Model() model.Model

	// Program returns the shader program this object is drawn with.
	//
	// Returns:
	//   - shader.ProgramKind: the program
	Program() shader.ProgramKind

	// Position returns the object's translation.
	Position() (x, y, z float32)

	// Rotation returns the object's Euler rotation in radians.
	Rotation() (rx, ry, rz float32)

	// Scale returns the object's scale factors.
	Scale() (sx, sy, sz float32)

	// ModelMatrix composes translation, rotation and scale into a world matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the world matrix
	ModelMatrix() mgl32.Mat4

	// SetEnabled sets whether this object is rendered.
	//
	// Parameters:
	//   - enabled: true to render the object
	SetEnabled(enabled bool)

	// SetModel replaces the object's Model.
	//
	// Parameters:
	//   - m: the new Model
	SetModel(m model.Model)

	// SetPosition sets the object's translation.
	SetPosition(x, y, z float32)

	// SetRotation sets the object's Euler rotation in radians.
	SetRotation(rx, ry, rz float32)

	// SetScale sets the object's scale factors.
	SetScale(sx, sy, sz float32)
}

var _ GameObject = &gameObject{}

var nextID atomic.Uint64

// NewGameObject creates a new enabled GameObject with unit scale.
// Objects built without WithID receive a process-unique ID.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the newly created object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{
		scale:   [3]float32{1, 1, 1},
		program: shader.ProgramBasic,
	}
	obj.enabled.Store(true)
	for _, option := range options {
		option(obj)
	}
	if obj.id == 0 {
		obj.id = nextID.Add(1)
	}
	return obj
}

func (g *gameObject) ID() uint64 {
	return g.id
}

func (g *gameObject) Name() string {
	return g.name
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) Model() model.Model {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.mdl
}

func (g *gameObject) Program() shader.ProgramKind {
	return g.program
}

func (g *gameObject) Position() (x, y, z float32) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.position[0], g.position[1], g.position[2]
}

func (g *gameObject) Rotation() (rx, ry, rz float32) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.rotation[0], g.rotation[1], g.rotation[2]
}

func (g *gameObject) Scale() (sx, sy, sz float32) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.scale[0], g.scale[1], g.scale[2]
}

func (g *gameObject) ModelMatrix() mgl32.Mat4 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return common.ModelMatrix(g.position, g.rotation, g.scale)
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) SetModel(m model.Model) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mdl = m
}

func (g *gameObject) SetPosition(x, y, z float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.position = [3]float32{x, y, z}
}

func (g *gameObject) SetRotation(rx, ry, rz float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rotation = [3]float32{rx, ry, rz}
}

func (g *gameObject) SetScale(sx, sy, sz float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.scale = [3]float32{sx, sy, sz}
}
