package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/smallbiznis/bingkai/internal/observability/tracing"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	// maxAssetSize bounds a single download; fonts and templates are far
	// smaller.
	maxAssetSize = 32 << 20
)

// HTTPLoader downloads assets over http(s).
type HTTPLoader struct {
	client *http.Client
}

func NewHTTPLoader(timeout time.Duration) *HTTPLoader {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &HTTPLoader{
		client: tracing.WrapHTTPClient(&http.Client{Timeout: timeout}),
	}
}

func (l *HTTPLoader) Load(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnsupportedRef, ref, err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("fetch %s returned %s", ref, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ref, err)
	}
	if len(data) > maxAssetSize {
		return nil, fmt.Errorf("fetch %s: body exceeds %d bytes", ref, maxAssetSize)
	}
	return data, nil
}
