package text

import (
	"fmt"
	"image/color"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/scrollscene/common"
	"github.com/gogpu/gg"
	ggtext "github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"
)

// generatorImpl is the implementation of the Generator interface.
type generatorImpl struct {
	mu *sync.Mutex

	ctx      *gg.Context
	face     ggtext.Face
	fontData []byte
	fontSize float64
	color    color.Color
	width    int
	height   int

	lastHeadings []string
	lastScroll   float64
	points       []bool
	drawn        bool

	version atomic.Uint64
	dirty   atomic.Bool

	logger *slog.Logger
}

// Generator rasterizes section headings onto a transparent canvas that is used
// as the texture of the text plane.
//
// Every redraw clears the whole canvas first and marks the texture dirty. The
// renderer consumes the dirty flag through TakeDirty and re-uploads the pixels.
type Generator interface {
	// Redraw clears the canvas and draws each heading at its scrolled anchor.
	// Blank headings are skipped silently.
	//
	// Parameters:
	//   - headings: heading text per section
	//   - scrollOffset: the scroll offset in pixels
	Redraw(headings []string, scrollOffset float64)

	// Update redraws only when the headings or the scroll offset differ from the last draw.
	//
	// Parameters:
	//   - headings: heading text per section
	//   - scrollOffset: the scroll offset in pixels
	//
	// Returns:
	//   - bool: true if the canvas was redrawn
	Update(headings []string, scrollOffset float64) bool

	// SetPoints sets the navigation point states drawn as a column of dots near the
	// right edge. An active point is filled, an inactive one is outlined. The new
	// states show up on the next Update or Redraw.
	//
	// Parameters:
	//   - states: the active flag of every point
	//
	// Returns:
	//   - bool: true if the states differ from the previous ones
	SetPoints(states []bool) bool

	// Resize reallocates the canvas and redraws the last headings at the new size.
	//
	// Parameters:
	//   - width, height: the new canvas size in pixels
	Resize(width, height int)

	// Size returns the canvas size in pixels.
	//
	// Returns:
	//   - int, int: width and height
	Size() (int, int)

	// Texture copies the current canvas into staging data stamped with the current version.
	//
	// Returns:
	//   - common.TextureStagingData: the canvas pixels
	Texture() common.TextureStagingData

	// Version returns a counter that increases on every redraw.
	//
	// Returns:
	//   - uint64: the canvas version
	Version() uint64

	// TakeDirty reports whether the canvas changed since the last call and clears the flag.
	//
	// Returns:
	//   - bool: true if a redraw happened since the previous call
	TakeDirty() bool

	// Close releases the drawing context.
	Close()
}

var _ Generator = &generatorImpl{}

// NewGenerator creates a text Generator. The canvas defaults to 1280x720 with
// 48px white Go Regular text.
// Panics if the configured font data cannot be parsed.
//
// Parameters:
//   - options: functional options for the generator
//
// Returns:
//   - Generator: the newly created generator
func NewGenerator(options ...GeneratorBuilderOption) Generator {
	g := &generatorImpl{
		mu:       &sync.Mutex{},
		fontData: goregular.TTF,
		fontSize: 48,
		color:    color.White,
		width:    1280,
		height:   720,
	}
	for _, opt := range options {
		opt(g)
	}
	if g.logger == nil {
		g.logger = gg.Logger()
	}

	source, err := ggtext.NewFontSource(g.fontData)
	if err != nil {
		panic(fmt.Sprintf("failed to parse heading font: %v", err))
	}
	g.face = source.Face(g.fontSize)

	g.ctx = gg.NewContext(max(g.width, 1), max(g.height, 1))
	g.ctx.SetFont(g.face)
	g.ctx.Clear()
	return g
}

func (g *generatorImpl) Redraw(headings []string, scrollOffset float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.redraw(headings, scrollOffset)
}

func (g *generatorImpl) Update(headings []string, scrollOffset float64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.drawn && scrollOffset == g.lastScroll && slices.Equal(headings, g.lastHeadings) {
		return false
	}
	g.redraw(headings, scrollOffset)
	return true
}

func (g *generatorImpl) SetPoints(states []bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if slices.Equal(states, g.points) {
		return false
	}
	g.points = slices.Clone(states)
	g.drawn = false
	return true
}

func (g *generatorImpl) Resize(width, height int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if width <= 0 || height <= 0 {
		g.logger.Warn("ignoring text canvas resize", "width", width, "height", height)
		return
	}
	if err := g.ctx.Resize(width, height); err != nil {
		g.logger.Warn("text canvas resize failed", "error", err)
		return
	}
	g.width, g.height = width, height
	g.redraw(g.lastHeadings, g.lastScroll)
}

func (g *generatorImpl) Size() (int, int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.width, g.height
}

func (g *generatorImpl) Texture() common.TextureStagingData {
	g.mu.Lock()
	defer g.mu.Unlock()
	return common.NewTextureStagingData(g.ctx.Image(), g.version.Load())
}

func (g *generatorImpl) Version() uint64 {
	return g.version.Load()
}

func (g *generatorImpl) TakeDirty() bool {
	return g.dirty.Swap(false)
}

func (g *generatorImpl) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	_ = g.ctx.Close()
}

// redraw clears the canvas and draws the headings and points. Caller must hold the mutex.
func (g *generatorImpl) redraw(headings []string, scrollOffset float64) {
	g.ctx.Clear()
	g.ctx.SetColor(g.color)

	for _, p := range Layout(headings, g.width, g.height, scrollOffset) {
		g.ctx.DrawStringAnchored(p.Text, p.X, p.Y, 0.5, 0.5)
	}
	g.drawPoints()

	g.lastHeadings = slices.Clone(headings)
	g.lastScroll = scrollOffset
	g.drawn = true
	g.version.Add(1)
	g.dirty.Store(true)
}

// drawPoints draws the navigation column. Caller must hold the mutex.
func (g *generatorImpl) drawPoints() {
	g.ctx.SetLineWidth(2)
	for _, p := range PointLayout(g.points, g.width, g.height) {
		g.ctx.DrawCircle(p.X, p.Y, PointRadius)
		var err error
		if p.Active {
			err = g.ctx.Fill()
		} else {
			err = g.ctx.Stroke()
		}
		if err != nil {
			g.logger.Warn("drawing navigation point failed", "point", p.Index, "error", err)
		}
	}
}
