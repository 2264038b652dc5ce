package pixbuf

import (
	"context"
	"image"

	"github.com/benoitkugler/litebridge/html/document"
	"github.com/benoitkugler/litebridge/loop"
)

// Render lays out `doc` at the canvas width, fetching its images until
// the layout is stable, then draws it at the origin.
// Data URLs are always supported; other URLs need WithFetcher.
// `doc` must have been created with the table of `c`.
func (c *Canvas) Render(ctx context.Context, doc *document.Document) (loop.Result, error) {
	routes := loop.MultiFetcher{{Scheme: "data", Fetcher: loop.DataURLFetcher{}}}
	if c.fetcher != nil {
		routes = append(routes, loop.Route{Scheme: "*", Fetcher: c.fetcher})
	}
	vp := c.viewport()
	co := loop.Coordinator{Doc: doc, Fetcher: routes, Store: c.store, Config: loop.DefaultConfig()}
	res, err := co.Run(ctx, vp.Width)
	if err != nil {
		return res, err
	}
	doc.Draw(c, 0, 0, &vp)
	return res, nil
}

// RenderToRGBA parses `markup`, lays it out in a `width` pixels wide
// viewport and draws it on a width x height image. Only data URLs are
// loaded.
func RenderToRGBA(markup string, width, height int) (*image.RGBA, error) {
	c := New(width, height)
	doc, err := document.NewFromString(markup, c.Table(), "", "")
	if err != nil {
		return nil, err
	}
	defer doc.Destroy()
	if _, err = c.Render(context.Background(), doc); err != nil {
		return nil, err
	}
	return c.Image(), nil
}
