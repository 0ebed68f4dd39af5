package scene

import (
	"sync"

	"github.com/Carmen-Shannon/scrollscene/engine/asset"
	"github.com/Carmen-Shannon/scrollscene/engine/camera"
	"github.com/Carmen-Shannon/scrollscene/engine/game_object"
	"github.com/Carmen-Shannon/scrollscene/engine/light"
	"github.com/Carmen-Shannon/scrollscene/engine/model"
	"github.com/Carmen-Shannon/scrollscene/engine/renderer/shader"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// PlaneWidth is the world-space width of the text plane. Its height follows
	// the viewport aspect so the text texture is not stretched.
	PlaneWidth float32 = 20
	// PlaneDepth is the z position of the text plane, behind the mesh.
	PlaneDepth float32 = -5

	// MeshBaseScale and MeshBaseRotationX form the pose a freshly loaded mesh
	// starts in, before the first frame maps the scroll position onto it.
	MeshBaseScale     float32 = 2
	MeshBaseRotationX float32 = math32.Pi / 2
)

// Scene holds the camera, lights, the text plane and the one scroll-driven mesh.
// The mesh lives in an asset.Slot, so every accessor that touches it checks that
// it has finished loading. Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// Lights returns the scene's lights.
	//
	// Returns:
	//   - []light.Light: ambient first, then directional
	Lights() []light.Light

	// TextPlane returns the textured plane the headings are drawn on.
	//
	// Returns:
	//   - game_object.GameObject: the plane
	TextPlane() game_object.GameObject

	// MeshSlot returns the slot the loaded mesh is resolved into.
	//
	// Returns:
	//   - *asset.Slot[game_object.GameObject]: the mesh slot
	MeshSlot() *asset.Slot[game_object.GameObject]

	// Mesh returns the mesh only once it has loaded.
	//
	// Returns:
	//   - game_object.GameObject: the mesh, or nil
	//   - bool: true if the mesh is loaded
	Mesh() (game_object.GameObject, bool)

	// HideMesh removes the mesh from the draw list. Safe before the mesh loads.
	HideMesh()

	// ShowMesh returns the mesh to the draw list. Safe before the mesh loads.
	ShowMesh()

	// MeshHidden reports whether HideMesh is in effect.
	//
	// Returns:
	//   - bool: true between HideMesh and ShowMesh
	MeshHidden() bool

	// Drawables returns the objects to draw in order: the text plane first,
	// then the mesh when it is loaded, shown and enabled.
	//
	// Returns:
	//   - []game_object.GameObject: the draw list
	Drawables() []game_object.GameObject

	// Resize updates the camera aspect and rebuilds the text plane so its
	// height is PlaneWidth * height / width. Never touches the mesh.
	// Non-positive sizes are ignored.
	//
	// Parameters:
	//   - width, height: the viewport size in pixels
	Resize(width, height int)

	// Snapshot captures the camera and the current draw list for one render pass.
	//
	// Returns:
	//   - Snapshot: an immutable view of the scene
	Snapshot() Snapshot
}

type scene struct {
	mu *sync.RWMutex

	name  string
	cam   camera.Camera
	light []light.Light

	plane      game_object.GameObject
	mesh       asset.Slot[game_object.GameObject]
	meshHidden bool

	width, height int
}

// Ensure scene implements Scene interface.
var _ Scene = &scene{}

// NewScene creates a Scene with a default camera, an ambient light (white, 0.5),
// a directional light (white, 1.0 at (5, 10, 7.5)), and a text plane sized for
// the viewport.
//
// Parameters:
//   - name: the name of the scene
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:     &sync.RWMutex{},
		name:   name,
		width:  1280,
		height: 720,
	}
	for _, option := range options {
		option(s)
	}

	if s.cam == nil {
		s.cam = camera.NewCamera()
	}
	if s.light == nil {
		s.light = []light.Light{
			light.NewLight(light.LightTypeAmbient, light.WithHexColor(0xffffff), light.WithIntensity(0.5)),
			light.NewLight(light.LightTypeDirectional, light.WithHexColor(0xffffff), light.WithIntensity(1),
				light.WithPosition(5, 10, 7.5)),
		}
	}

	s.plane = game_object.NewGameObject(
		game_object.WithName("text-plane"),
		game_object.WithProgram(shader.ProgramBasic),
		game_object.WithPosition(0, 0, PlaneDepth),
		game_object.WithModel(newPlaneModel(s.width, s.height)),
	)
	s.cam.SetViewport(s.width, s.height)
	return s
}

// NewMeshObject wraps a loaded model in the object the scene drives with the
// scroll position: composite program, scale 2, rotated a quarter turn about X.
//
// Parameters:
//   - mdl: the loaded model
//
// Returns:
//   - game_object.GameObject: the mesh object
func NewMeshObject(mdl model.Model) game_object.GameObject {
	return game_object.NewGameObject(
		game_object.WithName(mdl.Name()),
		game_object.WithModel(mdl),
		game_object.WithProgram(shader.ProgramComposite),
		game_object.WithScale(MeshBaseScale, MeshBaseScale, MeshBaseScale),
		game_object.WithRotation(MeshBaseRotationX, 0, 0),
	)
}

func newPlaneModel(width, height int) model.Model {
	h := PlaneWidth * float32(height) / float32(width)
	return model.NewModel(
		model.WithName("text-plane"),
		model.WithMesh(model.NewPlane(PlaneWidth, h)),
	)
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Camera() camera.Camera {
	return s.cam
}

func (s *scene) Lights() []light.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]light.Light(nil), s.light...)
}

func (s *scene) TextPlane() game_object.GameObject {
	return s.plane
}

func (s *scene) MeshSlot() *asset.Slot[game_object.GameObject] {
	return &s.mesh
}

func (s *scene) Mesh() (game_object.GameObject, bool) {
	return s.mesh.Get()
}

func (s *scene) HideMesh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meshHidden = true
}

func (s *scene) ShowMesh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meshHidden = false
}

func (s *scene) MeshHidden() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.meshHidden
}

func (s *scene) Drawables() []game_object.GameObject {
	s.mu.RLock()
	hidden := s.meshHidden
	s.mu.RUnlock()

	list := make([]game_object.GameObject, 0, 2)
	if s.plane.Enabled() {
		list = append(list, s.plane)
	}
	if hidden {
		return list
	}
	if mesh, ok := s.mesh.Get(); ok && mesh.Enabled() {
		list = append(list, mesh)
	}
	return list
}

func (s *scene) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if width == s.width && height == s.height {
		return
	}
	s.width, s.height = width, height
	s.cam.SetViewport(width, height)
	s.plane.SetModel(newPlaneModel(width, height))
}

func (s *scene) Snapshot() Snapshot {
	drawables := s.Drawables()
	snap := Snapshot{
		View:       s.cam.ViewMatrix(),
		Projection: s.cam.ProjectionMatrix(),
		Objects:    make([]Object, 0, len(drawables)),
	}
	x, y, z := s.cam.Position()
	snap.CameraPosition = mgl32.Vec3{x, y, z}

	for _, obj := range drawables {
		mdl := obj.Model()
		if mdl == nil {
			continue
		}
		snap.Objects = append(snap.Objects, Object{
			ID:      obj.ID(),
			Name:    obj.Name(),
			Program: obj.Program(),
			Model:   mdl,
			World:   obj.ModelMatrix(),
		})
	}
	return snap
}
