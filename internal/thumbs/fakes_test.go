package thumbs

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/hackclub/lazythumbs/internal/imageproc"
	"github.com/hackclub/lazythumbs/internal/storage"
)

type fakeStore struct {
	mu      sync.Mutex
	files   map[string][]byte
	opens   int
	creates int
	// onCreate runs before the write; returning an error replaces it.
	onCreate func(s *fakeStore, path string) error
}

func newFakeStore() *fakeStore {
	return &fakeStore{files: map[string][]byte{}}
}

func (s *fakeStore) Open(_ context.Context, path string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opens++
	data, ok := s.files[path]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return data, nil
}

func (s *fakeStore) CreateExclusive(_ context.Context, path string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	if s.onCreate != nil {
		if err := s.onCreate(s, path); err != nil {
			return err
		}
	}
	if _, ok := s.files[path]; ok {
		return storage.ErrAlreadyExists
	}
	s.files[path] = data
	return nil
}

type cacheEntry struct {
	value int
	ttl   time.Duration
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	gets    int
	sets    int
	err     error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]cacheEntry{}}
}

func (c *fakeCache) Get(_ context.Context, key string) (int, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.err != nil {
		return 0, false, c.err
	}
	e, ok := c.entries[key]
	return e.value, ok, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value int, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	if c.err != nil {
		return c.err
	}
	c.entries[key] = cacheEntry{value: value, ttl: ttl}
	return nil
}

func (c *fakeCache) only(t *testing.T) cacheEntry {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.Len(t, c.entries, 1)
	for _, e := range c.entries {
		return e
	}
	return cacheEntry{}
}

type fakeSource struct {
	mu    sync.Mutex
	files map[string][]byte
	opens int
	err   error
}

func (s *fakeSource) Open(_ context.Context, path string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opens++
	if s.err != nil {
		return nil, s.err
	}
	data, ok := s.files[path]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return data, nil
}

// recordingEncoder wraps an Encoder and can fail tuned or bare encodes.
type recordingEncoder struct {
	next      imageproc.Encoder
	failTuned bool
	failBare  bool
	calls     []imageproc.EncodeOptions
	images    []image.Image
}

func (e *recordingEncoder) Encode(img image.Image, format imaging.Format, opts imageproc.EncodeOptions) ([]byte, error) {
	e.calls = append(e.calls, opts)
	e.images = append(e.images, img)
	if (opts.IsZero() && e.failBare) || (!opts.IsZero() && e.failTuned) {
		return nil, imageproc.ErrInvalidArgument
	}
	return e.next.Encode(img, format, opts)
}

type testEnv struct {
	svc     *Service
	store   *fakeStore
	cache   *fakeCache
	sources *fakeSource
	encoder *recordingEncoder
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Optimize = false
	cfg.Progressive = false
	return cfg
}

func newTestEnv(t *testing.T, cfg Config) *testEnv {
	t.Helper()
	env := &testEnv{
		store: newFakeStore(),
		cache: newFakeCache(),
		sources: &fakeSource{files: map[string][]byte{
			"i/p.png":   pngBytes(t, 100, 80),
			"i/p.jpg":   pngBytes(t, 100, 80),
			"i/anim":    gifBytes(t, 8, 8),
			"i/bad.jpg": []byte("not an image"),
		}},
		encoder: &recordingEncoder{next: imageproc.StdEncoder{}},
	}
	engine := imageproc.NewEngine(imageproc.NewStoreLoader(env.sources), color.Black)
	env.svc = NewService(engine, env.encoder, env.cache, env.store, cfg, zerolog.Nop())
	return env
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, imaging.New(w, h, color.NRGBA{R: 40, G: 160, B: 90, A: 255})))
	return buf.Bytes()
}

func gifBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, image.NewPaletted(image.Rect(0, 0, w, h), palette.Plan9), nil))
	return buf.Bytes()
}
