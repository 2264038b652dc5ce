package tree

import (
	"github.com/benoitkugler/litebridge/backend"
	"github.com/benoitkugler/litebridge/logger"
)

// Font is a font created by the container, with its metrics.
type Font struct {
	Handle  backend.FontHandle
	Metrics backend.FontMetrics
}

// Fonts caches the fonts created through the container, so that
// each description is created once, and each handle deleted once.
type Fonts struct {
	byDescr  map[backend.FontDescription]Font
	created  []backend.FontHandle
	released bool
}

func NewFonts() *Fonts {
	return &Fonts{byDescr: make(map[backend.FontDescription]Font)}
}

// Get returns the font for `descr`, creating it if needed.
// When the container does not provide metrics, they are derived from the size.
func (fs *Fonts) Get(c backend.Container, descr backend.FontDescription) Font {
	if f, ok := fs.byDescr[descr]; ok {
		return f
	}
	if fs.released {
		logger.WarningLogger.Printf("font %s %gpx requested after release", descr.Family, descr.Size)
		return Font{Metrics: deriveMetrics(backend.FontMetrics{}, descr.Size)}
	}
	h, metrics := c.CreateFont(descr)
	f := Font{Handle: h, Metrics: deriveMetrics(metrics, descr.Size)}
	fs.byDescr[descr] = f
	fs.created = append(fs.created, h)
	return f
}

// deriveMetrics fills the metrics the host left to zero.
func deriveMetrics(m backend.FontMetrics, size Fl) backend.FontMetrics {
	if size < 0 {
		size = 0
	}
	if m.FontSize <= 0 {
		m.FontSize = size
	}
	if m.Ascent <= 0 && m.Descent <= 0 {
		if m.Height > 0 {
			m.Ascent, m.Descent = m.Height*2/3, m.Height/6
		} else {
			m.Ascent, m.Descent = size*0.8, size*0.2
		}
	}
	if m.Height <= 0 {
		m.Height = size * 1.2
		if h := m.Ascent + m.Descent; h > m.Height {
			m.Height = h
		}
	}
	if m.XHeight <= 0 {
		m.XHeight = size * 0.5
	}
	if m.ChWidth <= 0 {
		m.ChWidth = size * 0.5
	}
	if m.SubShift == 0 {
		m.SubShift = size * 0.2
	}
	if m.SuperShift == 0 {
		m.SuperShift = size * 0.3
	}
	return m
}

// Count returns the number of fonts created so far.
func (fs *Fonts) Count() int { return len(fs.created) }

// Release deletes every created font, in creation order. It is a no-op
// when called again.
func (fs *Fonts) Release(c backend.Container) {
	if fs.released {
		return
	}
	fs.released = true
	for _, h := range fs.created {
		c.DeleteFont(h)
	}
	fs.created = nil
	fs.byDescr = nil
}
