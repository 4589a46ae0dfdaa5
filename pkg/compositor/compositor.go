package compositor

import (
	"time"

	"github.com/go-drift/framecore/pkg/logging"
)

// Stats describes one composite pass.
type Stats struct {
	Layers   int
	Pictures int
	Ops      int
	// Skipped counts layers not visited because they were fully transparent
	// or clipped away.
	Skipped  int
	Duration time.Duration
}

// Compositor walks layer trees into a [Painter].
//
// A Compositor is not safe for concurrent use; frames are composited one at a
// time.
type Compositor struct {
	last Stats
}

// New returns a compositor.
func New() *Compositor {
	return &Compositor{}
}

// Composite draws root through p and returns statistics for the pass.
func (c *Compositor) Composite(root *Layer, p Painter) Stats {
	start := time.Now()
	var s Stats
	composite(root, p, &s)
	s.Duration = time.Since(start)
	c.last = s
	logging.Logger().Debug("composite", "layers", s.Layers, "ops", s.Ops, "skipped", s.Skipped, "duration", s.Duration)
	return s
}

// LastStats returns the statistics of the most recent Composite call.
func (c *Compositor) LastStats() Stats {
	return c.last
}

func composite(l *Layer, p Painter, s *Stats) {
	if l == nil {
		return
	}
	switch e := l.Effect.(type) {
	case Opacity:
		if e.Alpha <= 0 {
			s.Skipped++
			return
		}
		if e.Alpha < 1 {
			if ap, ok := p.(AlphaLayerPainter); ok {
				ap.SaveLayerAlpha(l.Bounds(), e.Alpha)
				drawContent(l, p, s)
				p.Restore()
				return
			}
			drawContent(l, withAlpha(p, e.Alpha), s)
			return
		}
	case Clip:
		if e.Rect.IsEmpty() {
			s.Skipped++
			return
		}
		p.Save()
		p.ClipRect(e.Rect)
		drawContent(l, p, s)
		p.Restore()
		return
	case Transform:
		p.Save()
		p.Transform(e.Matrix)
		drawContent(l, p, s)
		p.Restore()
		return
	}
	drawContent(l, p, s)
}

func drawContent(l *Layer, p Painter, s *Stats) {
	s.Layers++
	if n := l.Picture.Len(); n > 0 {
		s.Pictures++
		s.Ops += n
		l.Picture.Replay(p)
	}
	for _, c := range l.Children {
		composite(c, p, s)
	}
}
