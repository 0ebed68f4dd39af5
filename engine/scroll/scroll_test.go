package scroll

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pose struct {
	rot, pos, scale [3]float32
}

func (p *pose) SetRotation(x, y, z float32) { p.rot = [3]float32{x, y, z} }
func (p *pose) SetPosition(x, y, z float32) { p.pos = [3]float32{x, y, z} }
func (p *pose) SetScale(x, y, z float32)    { p.scale = [3]float32{x, y, z} }

func TestMapScrollBounds(t *testing.T) {
	for i := 0; i <= 1000; i++ {
		p := float32(i) / 1000
		tr := MapScroll(p)

		assert.GreaterOrEqual(t, tr.Scale, float32(1.0), "p=%v", p)
		assert.LessOrEqual(t, tr.Scale, float32(2.0), "p=%v", p)
		assert.LessOrEqual(t, math32.Abs(tr.PositionX), float32(5.0), "p=%v", p)
		assert.LessOrEqual(t, math32.Abs(tr.PositionY), float32(3.0), "p=%v", p)
		assert.InDelta(t, 8*math32.Pi*p, tr.RotationY, 1e-4)
		assert.InDelta(t, 4*math32.Pi*p, tr.RotationX, 1e-4)
	}
}

func TestMapScrollEndpoints(t *testing.T) {
	assert.InDelta(t, 1.5, MapScroll(0).Scale, 1e-6)
	assert.InDelta(t, 1.5, MapScroll(1).Scale, 1e-5)
}

func TestMapScrollRotationYMonotonic(t *testing.T) {
	prev := MapScroll(0).RotationY
	for i := 1; i <= 500; i++ {
		cur := MapScroll(float32(i) / 500).RotationY
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestMapScrollDoesNotClamp(t *testing.T) {
	assert.InDelta(t, -8*math32.Pi, MapScroll(-1).RotationY, 1e-4)
	assert.InDelta(t, 16*math32.Pi, MapScroll(2).RotationY, 1e-4)
}

func TestTransformApply(t *testing.T) {
	var p pose
	MapScroll(0.25).Apply(&p)

	assert.InDelta(t, 2*math32.Pi, p.rot[1], 1e-5)
	assert.InDelta(t, math32.Pi, p.rot[0], 1e-5)
	assert.InDelta(t, 3.0, p.pos[1], 1e-5)
	assert.InDelta(t, 0.0, p.pos[0], 1e-5)
	assert.Equal(t, p.scale[0], p.scale[2])
}

func TestStateEndToEndHalfway(t *testing.T) {
	const vh = 600
	s := NewState(WithViewport(800, vh), WithDocumentHeight(4*vh))
	require.Equal(t, float64(3*vh), s.MaxScroll())

	s.SetScroll(1.5 * vh)
	snap := s.Snapshot()
	require.InDelta(t, 0.5, snap.Percentage, 1e-6)

	tr := MapScroll(snap.Percentage)
	assert.InDelta(t, 4*math32.Pi, tr.RotationY, 1e-5)
	assert.InDelta(t, 1.5, tr.Scale, 1e-5)
	assert.InDelta(t, 0.0, tr.PositionY, 1e-5)
	assert.InDelta(t, 0.0, tr.PositionX, 1e-5)
	assert.Equal(t, 1, snap.Section)
}

func TestStateClampsOffset(t *testing.T) {
	s := NewState(WithViewport(800, 600), WithDocumentHeight(1200))

	s.SetScroll(-50)
	assert.Equal(t, 0.0, s.Offset())

	s.SetScroll(10000)
	assert.Equal(t, 600.0, s.Offset())
	assert.Equal(t, float32(1), s.Percentage())

	s.SetViewport(800, 1000)
	assert.Equal(t, 200.0, s.Offset())
}

func TestStateNotScrollable(t *testing.T) {
	s := NewState(WithViewport(800, 600), WithDocumentHeight(300))

	s.SetScroll(100)
	assert.Equal(t, 0.0, s.Offset())
	assert.Equal(t, float32(0), s.Percentage())
}

func TestStateScrollByWheelLines(t *testing.T) {
	s := NewState(WithViewport(800, 600), WithDocumentHeight(3000), WithLineHeight(40))

	s.ScrollBy(-3)
	assert.Equal(t, 120.0, s.Offset())

	s.ScrollBy(1)
	assert.Equal(t, 80.0, s.Offset())
}

func TestStateSectionChangeCallback(t *testing.T) {
	s := NewState(WithViewport(800, 600), WithDocumentHeight(3000))

	var changes [][2]int
	s.OnSectionChange(func(prev, next int) {
		changes = append(changes, [2]int{prev, next})
	})

	s.SetScroll(100)
	s.SetScroll(650)
	s.SetScroll(700)
	s.SetScroll(1900)

	assert.Equal(t, [][2]int{{0, 1}, {1, 3}}, changes)
}

func TestActivePoints(t *testing.T) {
	tests := []struct {
		name    string
		count   int
		section int
		want    []bool
	}{
		{"first", 3, 0, []bool{true, false, false}},
		{"last", 3, 2, []bool{false, false, true}},
		{"past end", 3, 5, []bool{false, false, false}},
		{"none", 0, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ActivePoints(tt.count, tt.section))
		})
	}
}
