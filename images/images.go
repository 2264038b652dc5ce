// Package images stores the images fetched for a document, decoded,
// so that a host can answer size queries and draw them.
package images

import (
	"bytes"
	"fmt"
	"image"
	"sync"

	"github.com/benoitkugler/litebridge/bridge"
	"github.com/benoitkugler/litebridge/logger"
	"github.com/benoitkugler/litebridge/utils"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// An error occured when loading an image.
// The image data is probably corrupted or in an invalid format.
func imageLoadingError(src string, err error) error {
	return fmt.Errorf("error loading image %s: %w", src, err)
}

type entry struct {
	// nil for vector images, which only provide a size
	img    image.Image
	size   bridge.Size
	format string
}

// Store maps resolved image URLs to decoded images.
// It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
}

func NewStore() *Store {
	return &Store{entries: make(map[string]entry)}
}

// Key returns the URL identifying `src`, relative to `baseURL`.
func Key(src, baseURL string) string { return utils.ResolveURL(baseURL, src) }

// Add decodes `data` and stores it for `src`. Raster formats (PNG, JPEG, GIF,
// WebP, BMP, TIFF) are decoded; SVG documents only provide their size.
// Invalid data is reported with an error, and the store is not modified.
func (s *Store) Add(src, baseURL string, data []byte) error {
	e, err := decode(data)
	if err != nil {
		return imageLoadingError(src, err)
	}
	key := Key(src, baseURL)
	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
	logger.ProgressLogger.Printf("Image %s loaded (%s, %gx%g)", key, e.format, e.size.Width, e.size.Height)
	return nil
}

func decode(data []byte) (entry, error) {
	img, format, errRaster := image.Decode(bytes.NewReader(data))
	if errRaster == nil {
		b := img.Bounds()
		return entry{img: img, format: format, size: bridge.Size{Width: bridge.Fl(b.Dx()), Height: bridge.Fl(b.Dy())}}, nil
	}
	// last chance, the data may be an SVG document
	if !isSVG(data) {
		return entry{}, errRaster
	}
	size, err := svgSize(data)
	if err != nil {
		return entry{}, err
	}
	return entry{size: size, format: "svg"}, nil
}

// Size returns the size of the image, or a zero size if it is unknown.
func (s *Store) Size(src, baseURL string) bridge.Size {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[Key(src, baseURL)].size
}

// Image returns the decoded image, or nil if it is unknown or not a raster image.
func (s *Store) Image(src, baseURL string) image.Image {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[Key(src, baseURL)].img
}

// Has returns true if the image has been added.
func (s *Store) Has(src, baseURL string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[Key(src, baseURL)]
	return ok
}

// Len returns the number of stored images.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Bind answers the image size queries of `t` from the store.
func (s *Store) Bind(t *bridge.Table) { t.GetImageSize = s.Size }
