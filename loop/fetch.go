package loop

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/benoitkugler/litebridge/utils"
	"github.com/vincent-petithory/dataurl"
)

// Fetcher retrieves the content of a resolved URL.
// Implementations must be safe for concurrent use.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, url string) ([]byte, error) { return f(ctx, url) }

// FSFetcher reads relative URLs and file:// URLs from a file system.
type FSFetcher struct {
	FS fs.FS
}

func (f FSFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := strings.TrimPrefix(url, "file://")
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexAny(path, "?#"); i != -1 {
		path = path[:i]
	}
	if !fs.ValidPath(path) {
		return nil, fmt.Errorf("invalid path %q", url)
	}
	return fs.ReadFile(f.FS, path)
}

// DataURLFetcher decodes data: URLs.
type DataURLFetcher struct{}

func (DataURLFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	if !utils.IsDataURL(url) {
		return nil, fmt.Errorf("not a data URL: %.20s", url)
	}
	d, err := dataurl.DecodeString(url)
	if err != nil {
		return nil, fmt.Errorf("invalid data URL: %w", err)
	}
	return d.Data, nil
}

// ErrUnsupportedScheme is returned by MultiFetcher when no route accepts a URL.
var ErrUnsupportedScheme = errors.New("unsupported URL scheme")

// Route associates a URL scheme to a fetcher. The empty scheme matches
// relative URLs, and "*" matches every URL.
type Route struct {
	Scheme  string
	Fetcher Fetcher
}

// MultiFetcher dispatches each URL to the first route accepting its scheme.
type MultiFetcher []Route

func (m MultiFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	scheme := urlScheme(url)
	for _, r := range m {
		if r.Scheme == "*" || strings.EqualFold(r.Scheme, scheme) {
			return r.Fetcher.Fetch(ctx, url)
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
}

// urlScheme returns the lower cased scheme of `url`, or an empty string
// for relative URLs.
func urlScheme(url string) string {
	for i := 0; i < len(url); i++ {
		c := url[i]
		switch {
		case 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z':
		case i > 0 && ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.'):
		case c == ':' && i > 0:
			return utils.AsciiLower(url[:i])
		default:
			return ""
		}
	}
	return ""
}
