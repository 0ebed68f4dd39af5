package profiler

import (
	"log/slog"
	"runtime"
	"time"
)

// Sample is what one frame reports to the profiler.
type Sample struct {
	// MeshDrawn is true when the screen pass drew the scroll-driven mesh.
	MeshDrawn bool
	// TextUploaded is true when the text texture was re-uploaded this frame.
	TextUploaded bool
}

// Profiler tracks frame rate, mesh coverage and memory statistics.
// Outputs stats to the logger at a configurable interval.
type Profiler struct {
	logger         *slog.Logger
	updateInterval time.Duration

	frameCount     int
	meshFrames     int
	textUploads    int
	lastTime       time.Time
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// NewProfiler creates a Profiler.
//
// Parameters:
//   - logger: receives one Info record per interval (nil discards)
//   - interval: the reporting interval; values <= 0 default to one second
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(logger *slog.Logger, interval time.Duration) *Profiler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Profiler{
		logger:         logger,
		updateInterval: interval,
		lastTime:       time.Now(),
	}
}

// Tick should be called once per frame.
// Logs FPS, the share of frames that drew the mesh, text uploads, heap usage,
// allocation rate and GC pauses when the interval has elapsed.
//
// Parameters:
//   - s: the frame's sample
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(s Sample) bool {
	p.frameCount++
	if s.MeshDrawn {
		p.meshFrames++
	}
	if s.TextUploaded {
		p.textUploads++
	}

	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	// PauseNs is a circular buffer of the last 256 GC pauses.
	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			maxPauseUs = max(maxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	p.logger.Info("[Profiler]",
		"fps", float64(p.frameCount)/elapsed.Seconds(),
		"mesh_frames", p.meshFrames,
		"frames", p.frameCount,
		"text_uploads", p.textUploads,
		"heap_mb", allocMB,
		"alloc_rate_mb_s", allocRateMB,
		"gc", gcCount,
		"gc_last_us", lastPauseUs,
		"gc_max_us", maxPauseUs,
		"sys_mb", sysMB,
	)

	p.frameCount = 0
	p.meshFrames = 0
	p.textUploads = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
