package scene

import (
	"github.com/Carmen-Shannon/scrollscene/common"
	"github.com/Carmen-Shannon/scrollscene/engine/model"
	"github.com/Carmen-Shannon/scrollscene/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
)

// Snapshot is an immutable view of the scene for one render pass.
type Snapshot struct {
	View           mgl32.Mat4
	Projection     mgl32.Mat4
	CameraPosition mgl32.Vec3
	Objects        []Object
}

// Object is one entry of a Snapshot's draw list.
type Object struct {
	ID      uint64
	Name    string
	Program shader.ProgramKind
	Model   model.Model
	World   mgl32.Mat4
}

// ModelView returns View * World.
func (o Object) ModelView(s *Snapshot) mgl32.Mat4 {
	return s.View.Mul4(o.World)
}

// NormalMatrix returns the inverse-transpose of the object's model-view matrix.
func (o Object) NormalMatrix(s *Snapshot) mgl32.Mat3 {
	return common.NormalMatrix(o.ModelView(s))
}

// Contains reports whether an object with the given program is in the draw list.
//
// Parameters:
//   - kind: the program to look for
//
// Returns:
//   - bool: true if present
func (s *Snapshot) Contains(kind shader.ProgramKind) bool {
	for _, o := range s.Objects {
		if o.Program == kind {
			return true
		}
	}
	return false
}
