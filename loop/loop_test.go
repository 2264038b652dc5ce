package loop

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/benoitkugler/litebridge/bridge"
	"github.com/benoitkugler/litebridge/html/document"
	"github.com/benoitkugler/litebridge/images"
	"github.com/benoitkugler/litebridge/utils/testutils"
)

func init() { testutils.Silence() }

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// newDocument returns a document whose image sizes come from `store`.
func newDocument(t *testing.T, markup string, store *images.Store) *document.Document {
	t.Helper()
	table := &bridge.Table{
		CreateFont: func(d bridge.FontDescription) (bridge.FontHandle, bridge.FontMetrics) {
			return 1, bridge.FontMetrics{FontSize: d.Size, Height: 16, Ascent: 12, Descent: 4}
		},
		TextWidth: func(text string, _ bridge.FontHandle) bridge.Fl { return bridge.Fl(10 * len(text)) },
	}
	store.Bind(table)
	doc, err := document.NewFromString(markup, table, "", "")
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

// element returns the first child of the body.
func firstInBody(doc *document.Document) document.Element {
	return doc.Root().ChildAt(1).ChildAt(0)
}

func TestConvergence(t *testing.T) {
	store := images.NewStore()
	doc := newDocument(t, `<img src="a.png">`, store)
	data := pngBytes(t, 30, 20)
	var fetched []string
	c := Coordinator{
		Doc: doc,
		Fetcher: FetcherFunc(func(_ context.Context, url string) ([]byte, error) {
			fetched = append(fetched, url)
			return data, nil
		}),
		Store:  store,
		Config: DefaultConfig(),
	}
	res, err := c.Run(context.Background(), 800)
	if err != nil {
		t.Fatal(err)
	}
	testutils.AssertEqual(t, res.Passes, 2)
	testutils.AssertEqual(t, res.Resolved, []document.PendingResource{{Src: "a.png"}})
	testutils.AssertEqual(t, len(res.Failed), 0)
	testutils.AssertEqual(t, res.NeedsRedraw, false)
	testutils.AssertEqual(t, fetched, []string{"a.png"})
	testutils.AssertEqual(t, doc.State(), document.LaidOut)
	testutils.AssertEqual(t, firstInBody(doc).Placement().Width, bridge.Fl(30))
	testutils.AssertEqual(t, res.Height, doc.Height())

	// nothing left to do
	res, err = c.Run(context.Background(), 800)
	if err != nil {
		t.Fatal(err)
	}
	testutils.AssertEqual(t, res.Passes, 1)
	testutils.AssertEqual(t, len(fetched), 1)
}

func TestResolvedAgainstBase(t *testing.T) {
	store := images.NewStore()
	doc := newDocument(t, `<base href="http://example.org/pages/"><img src="../img/a.png">`, store)
	var fetched []string
	c := Coordinator{
		Doc: doc,
		Fetcher: FetcherFunc(func(_ context.Context, url string) ([]byte, error) {
			fetched = append(fetched, url)
			return pngBytes(t, 4, 4), nil
		}),
		Store: store,
	}
	if _, err := c.Run(context.Background(), 800); err != nil {
		t.Fatal(err)
	}
	testutils.AssertEqual(t, fetched, []string{"http://example.org/img/a.png"})
	testutils.AssertEqual(t, store.Has("http://example.org/img/a.png", ""), true)
}

func TestFailedFetch(t *testing.T) {
	store := images.NewStore()
	doc := newDocument(t, `<img src="missing.png"><img src="broken.png">`, store)
	c := Coordinator{
		Doc: doc,
		Fetcher: FetcherFunc(func(_ context.Context, url string) ([]byte, error) {
			if url == "broken.png" {
				return []byte("garbage"), nil
			}
			return nil, errors.New("not found")
		}),
		Store: store,
	}
	logs := testutils.CaptureLogs()
	res, err := c.Run(context.Background(), 800)
	if err != nil {
		t.Fatal(err)
	}
	logs.CheckEqual([]string{
		`Failed to load image at "missing.png": not found`,
		`Failed to load image at "broken.png"`,
	}, t)
	testutils.AssertEqual(t, res.Passes, 1)
	testutils.AssertEqual(t, len(res.Failed), 2)
	testutils.AssertEqual(t, len(res.Resolved), 0)
	// the placeholders stay in place
	testutils.AssertEqual(t, firstInBody(doc).Placement().Width, bridge.Fl(0))
}

func TestRedrawOnly(t *testing.T) {
	store := images.NewStore()
	doc := newDocument(t, `<div style="background-image: url(bg.png); height: 10px"></div>`, store)
	c := Coordinator{
		Doc:     doc,
		Fetcher: FetcherFunc(func(context.Context, string) ([]byte, error) { return pngBytes(t, 2, 2), nil }),
		Store:   store,
	}
	res, err := c.Run(context.Background(), 800)
	if err != nil {
		t.Fatal(err)
	}
	testutils.AssertEqual(t, res.Passes, 1)
	testutils.AssertEqual(t, res.NeedsRedraw, true)
	testutils.AssertEqual(t, res.Resolved, []document.PendingResource{{Src: "bg.png", RedrawOnly: true}})
}

func TestMaxPasses(t *testing.T) {
	store := images.NewStore()
	doc := newDocument(t, `<img src="a.png">`, store)
	c := Coordinator{
		Doc:     doc,
		Fetcher: FetcherFunc(func(context.Context, string) ([]byte, error) { return pngBytes(t, 2, 2), nil }),
		Store:   store,
		Config:  Config{MaxPasses: 1},
	}
	logs := testutils.CaptureLogs()
	res, err := c.Run(context.Background(), 800)
	if err != nil {
		t.Fatal(err)
	}
	logs.CheckEqual([]string{"Layout stopped after 1 passes"}, t)
	testutils.AssertEqual(t, res.Passes, 1)
	testutils.AssertEqual(t, len(res.Resolved), 1)
}

func TestCancellation(t *testing.T) {
	store := images.NewStore()
	doc := newDocument(t, `<img src="a.png"><img src="b.png">`, store)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := Coordinator{
		Doc: doc,
		Fetcher: FetcherFunc(func(ctx context.Context, _ string) ([]byte, error) {
			cancel()
			return nil, ctx.Err()
		}),
		Store:  store,
		Config: Config{Concurrency: 1},
	}
	res, err := c.Run(ctx, 800)
	testutils.AssertEqual(t, err, context.Canceled)
	testutils.AssertEqual(t, res.Passes, 1)
	testutils.AssertEqual(t, doc.State(), document.AwaitingResources)
	testutils.AssertEqual(t, store.Len(), 0)

	_, err = c.Run(ctx, 800)
	testutils.AssertEqual(t, err, context.Canceled)
}

func TestConcurrencyLimit(t *testing.T) {
	store := images.NewStore()
	doc := newDocument(t, `<img src="a.png"><img src="b.png"><img src="c.png"><img src="d.png"><img src="e.png"><img src="f.png">`, store)
	data := pngBytes(t, 3, 3)
	var (
		inFlight, maxInFlight int32
		mu                    sync.Mutex
	)
	c := Coordinator{
		Doc: doc,
		Fetcher: FetcherFunc(func(context.Context, string) ([]byte, error) {
			n := atomic.AddInt32(&inFlight, 1)
			mu.Lock()
			if n > maxInFlight {
				maxInFlight = n
			}
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
			return data, nil
		}),
		Store:  store,
		Config: Config{Concurrency: 2},
	}
	res, err := c.Run(context.Background(), 800)
	if err != nil {
		t.Fatal(err)
	}
	testutils.AssertEqual(t, len(res.Resolved), 6)
	testutils.AssertEqual(t, store.Len(), 6)
	if maxInFlight > 2 {
		t.Fatalf("expected at most 2 concurrent fetches, got %d", maxInFlight)
	}
}

func TestMissingFields(t *testing.T) {
	_, err := (&Coordinator{}).Run(context.Background(), 800)
	testutils.AssertEqual(t, err, errMissing)
}

func TestFetchers(t *testing.T) {
	ctx := context.Background()
	fsys := fstest.MapFS{"img/a.png": {Data: []byte("png data")}}
	f := FSFetcher{FS: fsys}
	for _, url := range []string{"img/a.png", "/img/a.png", "file:///img/a.png", "img/a.png?v=2"} {
		data, err := f.Fetch(ctx, url)
		if err != nil {
			t.Fatal(err)
		}
		testutils.AssertEqual(t, string(data), "png data")
	}
	if _, err := f.Fetch(ctx, "img/../../secret"); err == nil {
		t.Fatal("expected an error for an invalid path")
	}

	encoded := "data:text/plain;base64," + base64.StdEncoding.EncodeToString([]byte("hello"))
	data, err := DataURLFetcher{}.Fetch(ctx, encoded)
	if err != nil {
		t.Fatal(err)
	}
	testutils.AssertEqual(t, string(data), "hello")
	if _, err = (DataURLFetcher{}).Fetch(ctx, "http://example.org"); err == nil {
		t.Fatal("expected an error for a non data URL")
	}

	m := MultiFetcher{
		{Scheme: "data", Fetcher: DataURLFetcher{}},
		{Scheme: "", Fetcher: f},
		{Scheme: "file", Fetcher: f},
	}
	data, err = m.Fetch(ctx, encoded)
	if err != nil {
		t.Fatal(err)
	}
	testutils.AssertEqual(t, string(data), "hello")
	data, err = m.Fetch(ctx, "img/a.png")
	if err != nil {
		t.Fatal(err)
	}
	testutils.AssertEqual(t, string(data), "png data")
	_, err = m.Fetch(ctx, "HTTPS://example.org/a.png")
	if !errors.Is(err, ErrUnsupportedScheme) {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestURLScheme(t *testing.T) {
	for url, exp := range map[string]string{
		"http://a.org":   "http",
		"DATA:,x":        "data",
		"a.png":          "",
		"dir/a:b.png":    "",
		":x":             "",
		"svn+ssh://host": "svn+ssh",
	} {
		testutils.AssertEqual(t, urlScheme(url), exp)
	}
}
