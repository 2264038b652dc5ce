package images

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"strings"
	"sync"
	"testing"

	"github.com/benoitkugler/litebridge/bridge"
	"github.com/benoitkugler/litebridge/utils/testutils"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func init() { testutils.Silence() }

func encoded(t *testing.T, format string, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	case "bmp":
		err = bmp.Encode(&buf, img)
	case "tiff":
		err = tiff.Encode(&buf, img, nil)
	}
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecodeFormats(t *testing.T) {
	s := NewStore()
	for i, format := range []string{"png", "gif", "bmp", "tiff"} {
		src := format + ".img"
		if err := s.Add(src, "", encoded(t, format, 3+i, 2)); err != nil {
			t.Fatal(err)
		}
		testutils.AssertEqual(t, s.Size(src, ""), bridge.Size{Width: bridge.Fl(3 + i), Height: 2})
		img := s.Image(src, "")
		if img == nil {
			t.Fatalf("missing image for %s", format)
		}
		if r, _, _, _ := img.At(0, 0).RGBA(); r < 0xc000 {
			t.Fatalf("unexpected pixel for %s", format)
		}
	}
	testutils.AssertEqual(t, s.Len(), 4)
}

func TestInvalidData(t *testing.T) {
	s := NewStore()
	err := s.Add("broken.png", "", []byte("not an image"))
	if err == nil || !strings.Contains(err.Error(), "broken.png") {
		t.Fatalf("unexpected error %v", err)
	}
	testutils.AssertEqual(t, s.Has("broken.png", ""), false)
	testutils.AssertEqual(t, s.Size("broken.png", ""), bridge.Size{})
	testutils.AssertEqual(t, s.Image("broken.png", ""), nil)
}

func TestResolvedKeys(t *testing.T) {
	s := NewStore()
	if err := s.Add("img/a.png", "http://example.org/dir/", encoded(t, "png", 4, 4)); err != nil {
		t.Fatal(err)
	}
	testutils.AssertEqual(t, s.Has("http://example.org/dir/img/a.png", ""), true)
	testutils.AssertEqual(t, s.Size("../img/a.png", "http://example.org/dir/sub/"), bridge.Size{Width: 4, Height: 4})
	testutils.AssertEqual(t, s.Has("img/a.png", ""), false)
}

func TestSVGSize(t *testing.T) {
	for _, test := range []struct {
		svg string
		exp bridge.Size
	}{
		{`<svg xmlns="http://www.w3.org/2000/svg" width="4" height="2"></svg>`, bridge.Size{Width: 4, Height: 2}},
		{`<?xml version="1.0"?><svg viewBox="0 0 20 10" width="40px"></svg>`, bridge.Size{Width: 40, Height: 20}},
		{`<svg viewBox="0,0,20,10" height="1in"></svg>`, bridge.Size{Width: 192, Height: 96}},
		{`<svg viewBox="0 0 20 10"></svg>`, bridge.Size{Width: 20, Height: 10}},
		{`<svg width="100%"></svg>`, bridge.Size{Width: 300, Height: 150}},
	} {
		s := NewStore()
		if err := s.Add("a.svg", "", []byte(test.svg)); err != nil {
			t.Fatal(err)
		}
		testutils.AssertEqual(t, s.Size("a.svg", ""), test.exp)
		// vector images are not decoded
		testutils.AssertEqual(t, s.Image("a.svg", ""), nil)
	}
}

func TestBind(t *testing.T) {
	s := NewStore()
	var table bridge.Table
	s.Bind(&table)
	testutils.AssertEqual(t, table.GetImageSize("a.png", ""), bridge.Size{})
	if err := s.Add("a.png", "", encoded(t, "png", 5, 6)); err != nil {
		t.Fatal(err)
	}
	testutils.AssertEqual(t, table.GetImageSize("a.png", ""), bridge.Size{Width: 5, Height: 6})
}

func TestConcurrentAdd(t *testing.T) {
	s := NewStore()
	data := encoded(t, "png", 2, 2)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			src := string(rune('a'+i)) + ".png"
			if err := s.Add(src, "", data); err != nil {
				t.Error(err)
			}
			s.Size(src, "")
		}(i)
	}
	wg.Wait()
	testutils.AssertEqual(t, s.Len(), 20)
}
