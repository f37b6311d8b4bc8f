// Package assets loads fonts, templates and thumbnails by reference. A
// reference is an http(s) URL, a file:// URL or a plain path.
package assets

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrNotFound       = errors.New("asset_not_found")
	ErrUnsupportedRef = errors.New("asset_unsupported_ref")
)

// Loader fetches the bytes behind ref.
type Loader interface {
	Load(ctx context.Context, ref string) ([]byte, error)
}

// Router picks a loader by the reference's scheme. Refs without a scheme go
// to the file loader.
type Router struct {
	HTTP Loader
	File Loader
}

func NewRouter(http, file Loader) *Router {
	return &Router{HTTP: http, File: file}
}

func (r *Router) Load(ctx context.Context, ref string) ([]byte, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty reference", ErrNotFound)
	}

	switch scheme(ref) {
	case "http", "https":
		if r.HTTP == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedRef, ref)
		}
		return r.HTTP.Load(ctx, ref)
	case "", "file":
		if r.File == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedRef, ref)
		}
		return r.File.Load(ctx, ref)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedRef, ref)
	}
}

func scheme(ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	// A Windows drive letter parses as a one-letter scheme.
	if len(u.Scheme) <= 1 {
		return ""
	}
	return strings.ToLower(u.Scheme)
}
