package text

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnchor(t *testing.T) {
	const h = 600.0
	for _, n := range []int{1, 2, 5} {
		for i := 0; i < n; i++ {
			want := float64(i)*h/float64(n) + h/(2*float64(n))
			assert.InDelta(t, want, Anchor(i, n, h), 1e-9, "i=%d n=%d", i, n)
		}
	}
	assert.Equal(t, 0.0, Anchor(0, 0, h))
}

func TestLayoutSkipsBlankHeadingsButKeepsSlots(t *testing.T) {
	placements := Layout([]string{"One", "  ", "Three"}, 800, 600, 50)

	require.Len(t, placements, 2)
	assert.Equal(t, "One", placements[0].Text)
	assert.Equal(t, 400.0, placements[0].X)
	assert.Equal(t, 100.0-50, placements[0].Y)
	assert.Equal(t, 2, placements[1].Index)
	assert.Equal(t, 500.0-50, placements[1].Y)
}

func TestLayoutNoHeadings(t *testing.T) {
	assert.Empty(t, Layout(nil, 800, 600, 0))
}

func rowsWithInk(img *image.RGBA, from, to int) int {
	count := 0
	for y := from; y < to; y++ {
		for x := 0; x < img.Rect.Dx(); x++ {
			if img.RGBAAt(x, y).A > 0 {
				count++
				break
			}
		}
	}
	return count
}

func TestGeneratorDrawsAtAnchorAndClearsBetweenRedraws(t *testing.T) {
	g := NewGenerator(WithSize(200, 200))
	defer g.Close()

	g.Redraw([]string{"H"}, 0)
	img := g.Texture().Image()
	assert.Positive(t, rowsWithInk(img, 60, 160), "heading should be drawn around the canvas centre")
	assert.Zero(t, rowsWithInk(img, 0, 40))
	assert.Zero(t, rowsWithInk(img, 170, 200))

	g.Redraw(nil, 0)
	img = g.Texture().Image()
	assert.Zero(t, rowsWithInk(img, 0, 200), "redraw must not accumulate previous text")
}

func TestGeneratorScrollMovesTextUp(t *testing.T) {
	g := NewGenerator(WithSize(200, 200))
	defer g.Close()

	g.Redraw([]string{"H"}, 100)
	img := g.Texture().Image()
	assert.Zero(t, rowsWithInk(img, 60, 200))
}

func TestGeneratorDirtyTracking(t *testing.T) {
	g := NewGenerator(WithSize(64, 64))
	defer g.Close()

	assert.False(t, g.TakeDirty())
	v0 := g.Version()

	assert.True(t, g.Update([]string{"a"}, 0))
	assert.True(t, g.TakeDirty())
	assert.False(t, g.TakeDirty())
	assert.Equal(t, v0+1, g.Version())

	assert.False(t, g.Update([]string{"a"}, 0))
	assert.False(t, g.TakeDirty())

	assert.True(t, g.Update([]string{"a"}, 10))
	assert.True(t, g.TakeDirty())
	assert.Equal(t, v0+2, g.Texture().Version)
}

func TestGeneratorResize(t *testing.T) {
	g := NewGenerator(WithSize(64, 64))
	defer g.Close()

	g.Redraw([]string{"a"}, 0)
	g.TakeDirty()

	g.Resize(128, 32)
	w, h := g.Size()
	assert.Equal(t, 128, w)
	assert.Equal(t, 32, h)
	assert.True(t, g.TakeDirty())

	tex := g.Texture()
	assert.Equal(t, uint32(128), tex.Width)
	assert.Equal(t, uint32(32), tex.Height)

	g.Resize(0, 10)
	w, _ = g.Size()
	assert.Equal(t, 128, w)
}

func TestPointLayoutCentresColumn(t *testing.T) {
	points := PointLayout([]bool{false, true, false}, 200, 200)

	require.Len(t, points, 3)
	for _, p := range points {
		assert.Equal(t, 168.0, p.X)
	}
	assert.Equal(t, 76.0, points[0].Y)
	assert.Equal(t, 100.0, points[1].Y)
	assert.Equal(t, 124.0, points[2].Y)
	assert.True(t, points[1].Active)
	assert.False(t, points[0].Active)
	assert.Empty(t, PointLayout(nil, 200, 200))
}

func TestGeneratorDrawsActivePointFilled(t *testing.T) {
	g := NewGenerator(WithSize(200, 200))
	defer g.Close()

	require.True(t, g.SetPoints([]bool{false, true, false}))
	require.True(t, g.Update(nil, 0))
	img := g.Texture().Image()

	assert.Equal(t, uint8(255), img.RGBAAt(168, 100).A, "active point is filled")
	assert.Zero(t, img.RGBAAt(168, 76).A, "inactive point is only outlined")
	assert.Positive(t, img.RGBAAt(168+int(PointRadius), 76).A, "outline of the inactive point")
	assert.Zero(t, img.RGBAAt(100, 100).A, "no headings drawn")

	// Moving to the next section redraws with the fill on the last point.
	assert.False(t, g.SetPoints([]bool{false, true, false}))
	assert.False(t, g.Update(nil, 0))
	require.True(t, g.SetPoints([]bool{false, false, true}))
	require.True(t, g.Update(nil, 0))
	img = g.Texture().Image()
	assert.Zero(t, img.RGBAAt(168, 100).A)
	assert.Equal(t, uint8(255), img.RGBAAt(168, 124).A)
}
