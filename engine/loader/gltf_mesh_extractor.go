package loader

import (
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/scrollscene/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

const dracoExtension = "KHR_draco_mesh_compression"

// gltfMeshExtractor flattens every triangle primitive reachable from the
// document's scene graph into one model-space mesh.
type gltfMeshExtractor struct {
	doc *gltf.Document

	// material index of the first primitive that was merged, or -1
	firstMaterial int
	primitives    int
}

func newGLTFMeshExtractor(doc *gltf.Document) *gltfMeshExtractor {
	return &gltfMeshExtractor{doc: doc, firstMaterial: -1}
}

// Extract walks the active scene (or every root node when the document has no
// scene) and merges each mesh primitive with its node's world transform applied.
// Meshes not referenced by any node are merged untransformed.
func (e *gltfMeshExtractor) Extract() (model.Mesh, error) {
	if usesDraco(e.doc) {
		return model.Mesh{}, ErrDracoUnsupported
	}

	var merged model.Mesh
	visited := make(map[int]bool, len(e.doc.Meshes))
	for _, root := range e.roots() {
		if err := e.walk(root, mgl32.Ident4(), &merged, visited, 0); err != nil {
			return model.Mesh{}, err
		}
	}
	for i, mesh := range e.doc.Meshes {
		if visited[i] {
			continue
		}
		if err := e.appendMesh(i, mesh, mgl32.Ident4(), &merged); err != nil {
			return model.Mesh{}, err
		}
	}

	if merged.TriangleCount() == 0 {
		return model.Mesh{}, ErrNoMeshes
	}
	return merged, nil
}

func (e *gltfMeshExtractor) roots() []int {
	if len(e.doc.Scenes) > 0 {
		scene := 0
		if e.doc.Scene != nil && *e.doc.Scene < len(e.doc.Scenes) {
			scene = *e.doc.Scene
		}
		return e.doc.Scenes[scene].Nodes
	}

	isChild := make([]bool, len(e.doc.Nodes))
	for _, n := range e.doc.Nodes {
		for _, c := range n.Children {
			if c < len(isChild) {
				isChild[c] = true
			}
		}
	}
	var roots []int
	for i := range e.doc.Nodes {
		if !isChild[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

func (e *gltfMeshExtractor) walk(idx int, parent mgl32.Mat4, out *model.Mesh, visited map[int]bool, depth int) error {
	if idx < 0 || idx >= len(e.doc.Nodes) {
		return fmt.Errorf("loader: node index %d out of range", idx)
	}
	if depth > len(e.doc.Nodes) {
		return fmt.Errorf("loader: node hierarchy contains a cycle at node %d", idx)
	}

	node := e.doc.Nodes[idx]
	world := parent.Mul4(nodeMatrix(node))
	if node.Mesh != nil {
		mi := *node.Mesh
		if mi < 0 || mi >= len(e.doc.Meshes) {
			return fmt.Errorf("loader: node %d references missing mesh %d", idx, mi)
		}
		visited[mi] = true
		if err := e.appendMesh(mi, e.doc.Meshes[mi], world, out); err != nil {
			return err
		}
	}
	for _, child := range node.Children {
		if err := e.walk(child, world, out, visited, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (e *gltfMeshExtractor) appendMesh(idx int, mesh *gltf.Mesh, world mgl32.Mat4, out *model.Mesh) error {
	for pi, prim := range mesh.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			continue
		}
		m, err := e.readPrimitive(prim)
		if err != nil {
			return fmt.Errorf("loader: mesh %d (%s) primitive %d: %w", idx, mesh.Name, pi, err)
		}
		if e.firstMaterial < 0 && prim.Material != nil {
			e.firstMaterial = *prim.Material
		}
		e.primitives++
		out.Append(m, world)
	}
	return nil
}

func (e *gltfMeshExtractor) readPrimitive(prim *gltf.Primitive) (model.Mesh, error) {
	if _, ok := prim.Extensions[dracoExtension]; ok {
		return model.Mesh{}, ErrDracoUnsupported
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return model.Mesh{}, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(e.doc, e.doc.Accessors[posIdx], nil)
	if err != nil {
		return model.Mesh{}, fmt.Errorf("read positions: %w", err)
	}

	m := model.Mesh{Positions: make([]mgl32.Vec3, len(positions))}
	for i, p := range positions {
		m.Positions[i] = p
	}

	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, err := modeler.ReadNormal(e.doc, e.doc.Accessors[idx], nil)
		if err != nil {
			return model.Mesh{}, fmt.Errorf("read normals: %w", err)
		}
		if len(normals) == len(positions) {
			m.Normals = make([]mgl32.Vec3, len(normals))
			for i, n := range normals {
				m.Normals[i] = n
			}
		}
	}

	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, err := modeler.ReadTextureCoord(e.doc, e.doc.Accessors[idx], nil)
		if err != nil {
			return model.Mesh{}, fmt.Errorf("read texture coordinates: %w", err)
		}
		if len(uvs) == len(positions) {
			m.UVs = make([]mgl32.Vec2, len(uvs))
			for i, uv := range uvs {
				m.UVs[i] = uv
			}
		}
	}

	if prim.Indices != nil {
		indices, err := modeler.ReadIndices(e.doc, e.doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return model.Mesh{}, fmt.Errorf("read indices: %w", err)
		}
		m.Indices = indices
	}
	m.EnsureIndices()
	m.EnsureNormals()

	if err := m.Validate(); err != nil {
		return model.Mesh{}, err
	}
	return m, nil
}

// nodeMatrix returns the node's local matrix: the explicit matrix when one is
// set, otherwise T * R * S.
func nodeMatrix(n *gltf.Node) mgl32.Mat4 {
	mat := n.MatrixOrDefault()
	if mat != gltf.DefaultMatrix {
		var out mgl32.Mat4
		for i, v := range mat {
			out[i] = float32(v)
		}
		return out
	}

	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	q := mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}
	return mgl32.Translate3D(float32(t[0]), float32(t[1]), float32(t[2])).
		Mul4(q.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(float32(s[0]), float32(s[1]), float32(s[2])))
}

func usesDraco(doc *gltf.Document) bool {
	return slices.Contains(doc.ExtensionsRequired, dracoExtension)
}
