package profiler

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTickLogsOncePerInterval(t *testing.T) {
	var buf bytes.Buffer
	p := NewProfiler(slog.New(slog.NewTextHandler(&buf, nil)), time.Hour)

	for range 5 {
		assert.False(t, p.Tick(Sample{MeshDrawn: true}))
	}
	assert.Empty(t, buf.String())

	p.lastTime = time.Now().Add(-2 * time.Hour)
	assert.True(t, p.Tick(Sample{TextUploaded: true}))
	out := buf.String()
	assert.Contains(t, out, "[Profiler]")
	assert.Contains(t, out, "frames=6")
	assert.Contains(t, out, "mesh_frames=5")
	assert.Contains(t, out, "text_uploads=1")

	assert.Zero(t, p.frameCount, "counters reset after reporting")
}

func TestNewProfilerDefaults(t *testing.T) {
	p := NewProfiler(nil, 0)
	assert.Equal(t, time.Second, p.updateInterval)
	assert.NotNil(t, p.logger)
}
