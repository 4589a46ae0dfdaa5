package engine

import (
	"sync"
	"time"
)

const (
	frameTraceSamplesDefault   = 240
	defaultFrameTraceThreshold = 16667 * time.Microsecond
)

// FramePhaseTimings captures time spent in each frame phase (ms).
type FramePhaseTimings struct {
	DispatchMs float64 `json:"dispatchMs"`
	BuildMs    float64 `json:"buildMs"`
	FinalizeMs float64 `json:"finalizeMs"`
	LayoutMs   float64 `json:"layoutMs"`
	PaintMs    float64 `json:"paintMs"`
}

// FrameCounts captures per-frame workload indicators.
type FrameCounts struct {
	Rebuilt       int `json:"rebuilt"`
	Retried       int `json:"retried"`
	Mounted       int `json:"mounted"`
	Destroyed     int `json:"destroyed"`
	BuildFailures int `json:"buildFailures"`
	Layouts       int `json:"layouts"`
	CacheHits     int `json:"cacheHits"`
	Paints        int `json:"paints"`
	Elements      int `json:"elements"`
	Layers        int `json:"layers"`
}

// FrameSample is a single frame trace sample.
type FrameSample struct {
	Timestamp int64             `json:"ts"`
	Frame     uint64            `json:"frame"`
	FrameMs   float64           `json:"frameMs"`
	Phases    FramePhaseTimings `json:"phases"`
	Counts    FrameCounts       `json:"counts"`
}

func newFrameSample(start time.Time, s FrameStats) FrameSample {
	return FrameSample{
		Timestamp: start.UnixMilli(),
		Frame:     s.Frame,
		FrameMs:   durationToMillis(s.Duration),
		Phases: FramePhaseTimings{
			DispatchMs: durationToMillis(s.DispatchDuration),
			BuildMs:    durationToMillis(s.BuildDuration),
			FinalizeMs: durationToMillis(s.FinalizeDuration),
			LayoutMs:   durationToMillis(s.LayoutDuration),
			PaintMs:    durationToMillis(s.PaintDuration),
		},
		Counts: FrameCounts{
			Rebuilt:       s.Build.Rebuilt,
			Retried:       s.Build.Retried,
			Mounted:       s.Mounted,
			Destroyed:     s.Destroyed,
			BuildFailures: s.BuildFailures,
			Layouts:       s.Layout.Layouts,
			CacheHits:     s.Layout.CacheHits,
			Paints:        s.Layout.Paints,
			Elements:      s.Elements,
			Layers:        s.Layers,
		},
	}
}

// FrameTimeline is the debug server response shape.
type FrameTimeline struct {
	Samples       []FrameSample `json:"samples"`
	DroppedFrames int           `json:"droppedFrames"`
	ThresholdMs   float64       `json:"thresholdMs"`
}

// FrameTraceBuffer stores recent frame samples in a ring buffer.
type FrameTraceBuffer struct {
	mu        sync.RWMutex
	samples   []FrameSample
	index     int
	count     int
	dropped   int
	threshold time.Duration
}

// NewFrameTraceBuffer creates a new frame trace buffer.
func NewFrameTraceBuffer(capacity int, threshold time.Duration) *FrameTraceBuffer {
	if capacity <= 0 {
		capacity = frameTraceSamplesDefault
	}
	if threshold <= 0 {
		threshold = defaultFrameTraceThreshold
	}
	return &FrameTraceBuffer{
		samples:   make([]FrameSample, capacity),
		threshold: threshold,
	}
}

// Capacity returns the buffer capacity.
func (b *FrameTraceBuffer) Capacity() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.samples)
}

// Threshold returns the dropped frame threshold.
func (b *FrameTraceBuffer) Threshold() time.Duration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.threshold
}

// Add records a frame sample and updates dropped frame count.
func (b *FrameTraceBuffer) Add(sample FrameSample, frameDuration time.Duration) {
	b.mu.Lock()
	b.samples[b.index] = sample
	b.index = (b.index + 1) % len(b.samples)
	if b.count < len(b.samples) {
		b.count++
	}
	if frameDuration > b.threshold {
		b.dropped++
	}
	b.mu.Unlock()
}

// Snapshot returns a chronological copy of samples and stats.
func (b *FrameTraceBuffer) Snapshot() FrameTimeline {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.count == 0 {
		return FrameTimeline{ThresholdMs: durationToMillis(b.threshold)}
	}

	result := make([]FrameSample, b.count)
	if b.count < len(b.samples) {
		copy(result, b.samples[:b.count])
	} else {
		copy(result, b.samples[b.index:])
		copy(result[len(b.samples)-b.index:], b.samples[:b.index])
	}

	return FrameTimeline{
		Samples:       result,
		DroppedFrames: b.dropped,
		ThresholdMs:   durationToMillis(b.threshold),
	}
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
