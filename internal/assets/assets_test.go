package assets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smallbiznis/bingkai/internal/cache"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockLoader struct {
	mock.Mock
}

func (m *mockLoader) Load(ctx context.Context, ref string) ([]byte, error) {
	args := m.Called(ctx, ref)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func TestHTTPLoader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/footer.pdf":
			_, _ = w.Write([]byte("%PDF-1.4"))
		case "/missing.pdf":
			http.NotFound(w, r)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	l := NewHTTPLoader(time.Second)
	ctx := context.Background()

	data, err := l.Load(ctx, srv.URL+"/footer.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), data)

	_, err = l.Load(ctx, srv.URL+"/missing.pdf")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = l.Load(ctx, srv.URL+"/boom")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestFSLoader(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/srv/assets/fonts/regular.ttf", []byte("ttf"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/abs/footer.pdf", []byte("pdf"), 0o644))

	l := NewFSLoader(fsys, "/srv/assets")
	ctx := context.Background()

	cases := []struct {
		ref  string
		want string
	}{
		{"fonts/regular.ttf", "ttf"},
		{"/abs/footer.pdf", "pdf"},
		{"file:///abs/footer.pdf", "pdf"},
	}
	for _, tc := range cases {
		data, err := l.Load(ctx, tc.ref)
		require.NoError(t, err, tc.ref)
		assert.Equal(t, tc.want, string(data), tc.ref)
	}

	_, err := l.Load(ctx, "fonts/missing.ttf")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRouterDispatchesByScheme(t *testing.T) {
	httpLoader := new(mockLoader)
	fileLoader := new(mockLoader)
	httpLoader.On("Load", mock.Anything, "https://cdn.test/a.png").Return([]byte("remote"), nil)
	fileLoader.On("Load", mock.Anything, "fonts/a.ttf").Return([]byte("local"), nil)
	fileLoader.On("Load", mock.Anything, "file:///a.ttf").Return([]byte("url"), nil)

	r := NewRouter(httpLoader, fileLoader)
	ctx := context.Background()

	data, err := r.Load(ctx, "https://cdn.test/a.png")
	require.NoError(t, err)
	assert.Equal(t, "remote", string(data))

	data, err = r.Load(ctx, " fonts/a.ttf ")
	require.NoError(t, err)
	assert.Equal(t, "local", string(data))

	data, err = r.Load(ctx, "file:///a.ttf")
	require.NoError(t, err)
	assert.Equal(t, "url", string(data))

	_, err = r.Load(ctx, "s3://bucket/a.ttf")
	assert.ErrorIs(t, err, ErrUnsupportedRef)

	_, err = r.Load(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)

	httpLoader.AssertExpectations(t)
	fileLoader.AssertExpectations(t)
}

type countingLoader struct {
	calls atomic.Int32
	err   error
}

func (c *countingLoader) Load(_ context.Context, ref string) ([]byte, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return []byte(ref), nil
}

func TestCachedLoader(t *testing.T) {
	next := &countingLoader{}
	l := NewCachedLoader(next, cache.NewAssetCache(nil, nil, time.Minute, zap.NewNop()))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		data, err := l.Load(ctx, "fonts/bold.ttf")
		require.NoError(t, err)
		assert.Equal(t, "fonts/bold.ttf", string(data))
	}
	assert.Equal(t, int32(1), next.calls.Load())
}

func TestCachedLoaderDoesNotCacheFailures(t *testing.T) {
	next := &countingLoader{err: errors.New("down")}
	l := NewCachedLoader(next, cache.NewAssetCache(nil, nil, time.Minute, zap.NewNop()))

	_, err := l.Load(context.Background(), "footer.pdf")
	assert.Error(t, err)
	_, err = l.Load(context.Background(), "footer.pdf")
	assert.Error(t, err)
	assert.Equal(t, int32(2), next.calls.Load())
}
