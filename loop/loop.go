// Package loop drives a document to a stable layout: it renders, fetches
// the images the layout requested, feeds them to an image store, and
// renders again until no new image is needed.
//
// Fetching is the only concurrent step. The document itself is only used
// from the goroutine calling Run.
package loop

import (
	"context"
	"errors"

	"github.com/benoitkugler/litebridge/html/document"
	"github.com/benoitkugler/litebridge/images"
	"github.com/benoitkugler/litebridge/logger"
	"github.com/benoitkugler/litebridge/utils"
	"golang.org/x/sync/errgroup"
)

// Config bounds the work done by a Coordinator.
type Config struct {
	// MaxPasses is the maximum number of layout passes.
	MaxPasses int
	// Concurrency is the maximum number of simultaneous fetches.
	Concurrency int
}

func DefaultConfig() Config { return Config{MaxPasses: 8, Concurrency: 4} }

// Result describes a completed Run.
type Result struct {
	// Height is the content height returned by the last layout.
	Height utils.Fl
	Passes int
	// Resolved and Failed list the fetched images, in request order.
	Resolved []document.PendingResource
	Failed   []document.PendingResource
	// NeedsRedraw is true when images which do not affect the layout
	// have been resolved after the last layout.
	NeedsRedraw bool
}

// Coordinator runs the render loop of Doc.
//
// The capability table of Doc must answer its image size queries
// from Store (see images.Store.Bind).
type Coordinator struct {
	Doc     *document.Document
	Fetcher Fetcher
	Store   *images.Store
	Config  Config
}

var errMissing = errors.New("loop: coordinator needs a document, a fetcher and a store")

// Run lays out the document in a containing block of width `maxWidth`,
// until a layout requests no new image, or the maximum number of passes
// is reached.
//
// Failed fetches are reported in the Result and leave the placeholder
// in place. When `ctx` is cancelled, Run returns its error; the document
// stays laid out with the images resolved so far.
func (c *Coordinator) Run(ctx context.Context, maxWidth utils.Fl) (Result, error) {
	var res Result
	if c.Doc == nil || c.Fetcher == nil || c.Store == nil {
		return res, errMissing
	}
	cfg := c.Config
	def := DefaultConfig()
	if cfg.MaxPasses <= 0 {
		cfg.MaxPasses = def.MaxPasses
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Passes++
		logger.ProgressLogger.Printf("Render pass %d", res.Passes)
		res.Height = c.Doc.Render(maxWidth)
		res.NeedsRedraw = false

		pending := c.Doc.DrainPending()
		if len(pending) == 0 {
			return res, nil
		}

		logger.ProgressLogger.Printf("Fetching %d images", len(pending))
		errs, err := c.fetchAll(ctx, pending, cfg.Concurrency)
		if err != nil {
			return res, err
		}
		relayout := false
		for i, p := range pending {
			if errs[i] != nil {
				logger.WarningLogger.Printf("Failed to load image at %q: %s", p.Src, errs[i])
				res.Failed = append(res.Failed, p)
				continue
			}
			res.Resolved = append(res.Resolved, p)
			if p.RedrawOnly {
				res.NeedsRedraw = true
			} else {
				relayout = true
			}
		}
		if !relayout {
			return res, nil
		}
		if res.Passes >= cfg.MaxPasses {
			logger.WarningLogger.Printf("Layout stopped after %d passes: some images may be misplaced", res.Passes)
			return res, nil
		}
	}
}

// fetchAll fetches and stores every pending image, with at most `limit`
// concurrent fetches. It returns one error (or nil) per image, and a
// non nil error only when `ctx` is cancelled.
func (c *Coordinator) fetchAll(ctx context.Context, pending []document.PendingResource, limit int) ([]error, error) {
	errs := make([]error, len(pending))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, p := range pending {
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := c.Fetcher.Fetch(gctx, images.Key(p.Src, p.BaseURL))
			if err == nil {
				err = c.Store.Add(p.Src, p.BaseURL, data)
			}
			if err != nil && ctx.Err() != nil {
				return ctx.Err()
			}
			errs[i] = err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return errs, nil
}
