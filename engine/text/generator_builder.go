package text

import (
	"image/color"
	"log/slog"
)

// GeneratorBuilderOption is a functional option for configuring a Generator.
type GeneratorBuilderOption func(*generatorImpl)

// WithSize sets the initial canvas size, normally the viewport size.
//
// Parameters:
//   - width, height: canvas size in pixels
//
// Returns:
//   - GeneratorBuilderOption: option function to apply
func WithSize(width, height int) GeneratorBuilderOption {
	return func(g *generatorImpl) {
		g.width = width
		g.height = height
	}
}

// WithFontSize sets the heading font size in pixels.
//
// Parameters:
//   - size: font size (default 48)
//
// Returns:
//   - GeneratorBuilderOption: option function to apply
func WithFontSize(size float64) GeneratorBuilderOption {
	return func(g *generatorImpl) {
		if size > 0 {
			g.fontSize = size
		}
	}
}

// WithFont replaces the default Go Regular face with a TrueType/OpenType font.
//
// Parameters:
//   - data: raw font file bytes
//
// Returns:
//   - GeneratorBuilderOption: option function to apply
func WithFont(data []byte) GeneratorBuilderOption {
	return func(g *generatorImpl) {
		if len(data) > 0 {
			g.fontData = data
		}
	}
}

// WithColor sets the heading fill color.
//
// Parameters:
//   - c: the text color (default white)
//
// Returns:
//   - GeneratorBuilderOption: option function to apply
func WithColor(c color.Color) GeneratorBuilderOption {
	return func(g *generatorImpl) {
		g.color = c
	}
}

// WithLogger sets the logger used for canvas warnings.
//
// Parameters:
//   - l: the logger (defaults to the gg package logger)
//
// Returns:
//   - GeneratorBuilderOption: option function to apply
func WithLogger(l *slog.Logger) GeneratorBuilderOption {
	return func(g *generatorImpl) {
		g.logger = l
	}
}
