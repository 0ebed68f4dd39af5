package software

import (
	"github.com/Carmen-Shannon/scrollscene/engine/renderer/shader"
	"github.com/Carmen-Shannon/scrollscene/engine/scene"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// vertex is a vertex after the vertex stage: clip position plus the varyings
// read by the fragment stage. normal and toEye are in view space.
type vertex struct {
	clip   mgl32.Vec4
	uv     mgl32.Vec2
	normal mgl32.Vec3
	toEye  mgl32.Vec3
}

func lerpVertex(a, b vertex, t float32) vertex {
	return vertex{
		clip:   a.clip.Add(b.clip.Sub(a.clip).Mul(t)),
		uv:     a.uv.Add(b.uv.Sub(a.uv).Mul(t)),
		normal: a.normal.Add(b.normal.Sub(a.normal).Mul(t)),
		toEye:  a.toEye.Add(b.toEye.Sub(a.toEye).Mul(t)),
	}
}

// screenVertex is a vertex in window coordinates. Varyings are pre-divided
// by w for perspective-correct interpolation.
type screenVertex struct {
	x, y, z float32
	invW    float32
	uv      mgl32.Vec2
	normal  mgl32.Vec3
	toEye   mgl32.Vec3
}

type triangle struct {
	v                      [3]screenVertex
	area                   float32
	minX, minY, maxX, maxY int
}

// drawCall is one object's triangles ready for rasterization.
type drawCall struct {
	program    shader.ProgramKind
	depthWrite bool
	tris       []triangle
}

// fragmentInputs are the resources bound to the fragment stage for a pass.
type fragmentInputs struct {
	text   shader.Sampler
	input  shader.Sampler
	params shader.Params
}

// setupDraw runs the vertex stage for one object and returns its clipped,
// culled and screen-mapped triangles.
func setupDraw(obj scene.Object, snap *scene.Snapshot, width, height int) drawCall {
	dc := drawCall{
		program:    obj.Program,
		depthWrite: obj.Program == shader.ProgramBasic,
	}
	if obj.Model == nil || obj.Model.Mesh() == nil {
		return dc
	}
	mesh := obj.Model.Mesh()
	modelView := obj.ModelView(snap)
	normalMatrix := obj.NormalMatrix(snap)

	verts := make([]vertex, len(mesh.Positions))
	for i, p := range mesh.Positions {
		viewPos := modelView.Mul4x1(p.Vec4(1))
		v := vertex{
			clip:  snap.Projection.Mul4x1(viewPos),
			toEye: viewPos.Vec3().Mul(-1),
		}
		if i < len(mesh.UVs) {
			v.uv = mesh.UVs[i]
		}
		if i < len(mesh.Normals) {
			v.normal = normalMatrix.Mul3x1(mesh.Normals[i])
		}
		verts[i] = v
	}

	cullBack := obj.Program == shader.ProgramBasic
	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		a, b, c := mesh.Indices[i], mesh.Indices[i+1], mesh.Indices[i+2]
		if int(a) >= len(verts) || int(b) >= len(verts) || int(c) >= len(verts) {
			continue
		}
		poly := clipNear([]vertex{verts[a], verts[b], verts[c]})
		for j := 1; j+1 < len(poly); j++ {
			tri, ok := toScreen(poly[0], poly[j], poly[j+1], width, height, cullBack)
			if ok {
				dc.tris = append(dc.tris, tri)
			}
		}
	}
	return dc
}

// clipNear clips a polygon against the near plane (clip z >= 0).
func clipNear(poly []vertex) []vertex {
	out := make([]vertex, 0, len(poly)+1)
	for i := range poly {
		cur := poly[i]
		next := poly[(i+1)%len(poly)]
		curIn := cur.clip.Z() >= 0
		nextIn := next.clip.Z() >= 0
		if curIn {
			out = append(out, cur)
		}
		if curIn != nextIn {
			t := cur.clip.Z() / (cur.clip.Z() - next.clip.Z())
			out = append(out, lerpVertex(cur, next, t))
		}
	}
	return out
}

// toScreen performs the perspective divide and viewport mapping. Front faces
// are counter-clockwise in NDC, which maps to negative area in y-down window
// coordinates; the returned triangle is always wound to positive area.
func toScreen(a, b, c vertex, width, height int, cullBack bool) (triangle, bool) {
	var tri triangle
	for i, v := range [3]vertex{a, b, c} {
		w := v.clip.W()
		if w <= 0 {
			return tri, false
		}
		inv := 1 / w
		tri.v[i] = screenVertex{
			x:      (v.clip.X()*inv + 1) * 0.5 * float32(width),
			y:      (1 - v.clip.Y()*inv) * 0.5 * float32(height),
			z:      v.clip.Z() * inv,
			invW:   inv,
			uv:     v.uv.Mul(inv),
			normal: v.normal.Mul(inv),
			toEye:  v.toEye.Mul(inv),
		}
	}

	area := edge(tri.v[0], tri.v[1], tri.v[2].x, tri.v[2].y)
	if area == 0 || (cullBack && area > 0) {
		return tri, false
	}
	if area < 0 {
		tri.v[1], tri.v[2] = tri.v[2], tri.v[1]
		area = -area
	}
	tri.area = area

	minX, minY := tri.v[0].x, tri.v[0].y
	maxX, maxY := minX, minY
	for _, v := range tri.v[1:] {
		minX, maxX = min(minX, v.x), max(maxX, v.x)
		minY, maxY = min(minY, v.y), max(maxY, v.y)
	}
	tri.minX = max(int(math32.Floor(minX)), 0)
	tri.minY = max(int(math32.Floor(minY)), 0)
	tri.maxX = min(int(math32.Ceil(maxX)), width-1)
	tri.maxY = min(int(math32.Ceil(maxY)), height-1)
	if tri.minX > tri.maxX || tri.minY > tri.maxY {
		return tri, false
	}
	return tri, true
}

// edge is the signed area function of p against the edge a->b.
func edge(a, b screenVertex, px, py float32) float32 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// topLeft reports whether a->b is a top or left edge of a positive-area
// triangle, so pixels exactly on a shared edge are drawn once.
func topLeft(a, b screenVertex) bool {
	dx, dy := b.x-a.x, b.y-a.y
	return dy < 0 || (dy == 0 && dx > 0)
}

func covers(w float32, tl bool) bool {
	return w > 0 || (w == 0 && tl)
}

// rasterize draws the rows [y0, y1) of a draw call into t.
func rasterize(t *target, dc drawCall, in fragmentInputs, y0, y1 int) {
	for i := range dc.tris {
		tri := &dc.tris[i]
		v0, v1, v2 := tri.v[0], tri.v[1], tri.v[2]
		tl0, tl1, tl2 := topLeft(v1, v2), topLeft(v2, v0), topLeft(v0, v1)

		for py := max(tri.minY, y0); py <= tri.maxY && py < y1; py++ {
			fy := float32(py) + 0.5
			for px := tri.minX; px <= tri.maxX; px++ {
				fx := float32(px) + 0.5
				w0 := edge(v1, v2, fx, fy)
				w1 := edge(v2, v0, fx, fy)
				w2 := edge(v0, v1, fx, fy)
				if !covers(w0, tl0) || !covers(w1, tl1) || !covers(w2, tl2) {
					continue
				}
				b0, b1, b2 := w0/tri.area, w1/tri.area, w2/tri.area

				z := b0*v0.z + b1*v1.z + b2*v2.z
				if z < 0 || z > 1 {
					continue
				}
				idx := py*t.width + px
				if z >= t.depth[idx] {
					continue
				}

				invW := b0*v0.invW + b1*v1.invW + b2*v2.invW
				if invW <= 0 {
					continue
				}
				w := 1 / invW
				uv := v0.uv.Mul(b0).Add(v1.uv.Mul(b1)).Add(v2.uv.Mul(b2)).Mul(w)
				normal := v0.normal.Mul(b0).Add(v1.normal.Mul(b1)).Add(v2.normal.Mul(b2)).Mul(w)
				toEye := v0.toEye.Mul(b0).Add(v1.toEye.Mul(b1)).Add(v2.toEye.Mul(b2)).Mul(w)

				color, ok := shade(dc.program, in, mgl32.Vec2{fx, fy}, uv, normal, toEye)
				if !ok {
					continue
				}
				t.blend(idx, color)
				if dc.depthWrite {
					t.depth[idx] = z
				}
			}
		}
	}
}

// shade runs the fragment stage of a program. The second result is false
// when the fragment is discarded.
func shade(program shader.ProgramKind, in fragmentInputs, fragCoord, uv mgl32.Vec2, normal, toEye mgl32.Vec3) (mgl32.Vec4, bool) {
	switch program {
	case shader.ProgramComposite:
		if in.input == nil {
			return mgl32.Vec4{}, false
		}
		return shader.Composite(in.input, fragCoord, in.params, normal, toEye), true
	default:
		if in.text == nil {
			return mgl32.Vec4{}, false
		}
		texel := in.text.Sample(uv)
		if texel.W() <= 0 {
			return mgl32.Vec4{}, false
		}
		return texel, true
	}
}
