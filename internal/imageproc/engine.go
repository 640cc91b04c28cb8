// Package imageproc holds the thumbnail transforms and the codec they are
// decoded from and encoded with.
package imageproc

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sort"

	"github.com/hackclub/lazythumbs/internal/geometry"
	"github.com/hackclub/lazythumbs/internal/storage"
)

var (
	// ErrMissingInput is returned when a transform gets neither an image nor
	// a path to load one from.
	ErrMissingInput = errors.New("no image or source path given")
	// ErrInvalidArgument is returned for dimensions a transform can't use.
	ErrInvalidArgument = errors.New("invalid transform argument")
)

// Source is either an already decoded image or a path to load one from.
type Source struct {
	img  image.Image
	path string
}

func FromImage(img image.Image) Source { return Source{img: img} }

func FromPath(path string) Source { return Source{path: path} }

// Loader turns a source path into a decoded image.
type Loader interface {
	Load(ctx context.Context, path string) (image.Image, error)
}

// StoreLoader reads source bytes from a storage backend and decodes them.
type StoreLoader struct {
	reader storage.Reader
}

func NewStoreLoader(reader storage.Reader) *StoreLoader {
	return &StoreLoader{reader: reader}
}

func (l *StoreLoader) Load(ctx context.Context, path string) (image.Image, error) {
	data, err := l.reader.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	img, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// ActionFunc is a registered transform, driven by a parsed geometry.
type ActionFunc func(ctx context.Context, src Source, g geometry.Geometry) (image.Image, error)

// Engine runs the thumbnail transforms. It is safe for concurrent use.
type Engine struct {
	loader  Loader
	prims   Primitives
	matte   color.Color
	actions map[string]ActionFunc
}

func NewEngine(loader Loader, matte color.Color) *Engine {
	return NewEngineWithPrimitives(loader, matte, ImagingPrimitives{})
}

func NewEngineWithPrimitives(loader Loader, matte color.Color, prims Primitives) *Engine {
	if matte == nil {
		matte = color.Black
	}
	e := &Engine{
		loader: loader,
		prims:  prims,
		matte:  matte,
	}
	e.actions = map[string]ActionFunc{
		"thumbnail": func(ctx context.Context, src Source, g geometry.Geometry) (image.Image, error) {
			return e.Thumbnail(ctx, src, g.Width, g.Height)
		},
		"scale": func(ctx context.Context, src Source, g geometry.Geometry) (image.Image, error) {
			return e.Scale(ctx, src, g.Width, g.Height)
		},
		"resize": func(ctx context.Context, src Source, g geometry.Geometry) (image.Image, error) {
			return e.Resize(ctx, src, g.Width, g.Height)
		},
		"mresize": func(ctx context.Context, src Source, g geometry.Geometry) (image.Image, error) {
			return e.MResize(ctx, src, g.Width, g.Height)
		},
		"aresize": func(ctx context.Context, src Source, g geometry.Geometry) (image.Image, error) {
			return e.AResize(ctx, src, g.Width, g.Height)
		},
		"aresize_no_crop": func(ctx context.Context, src Source, g geometry.Geometry) (image.Image, error) {
			return e.AResizeNoCrop(ctx, src, g.Width, g.Height)
		},
		"matte": func(ctx context.Context, src Source, g geometry.Geometry) (image.Image, error) {
			return e.Matte(ctx, src, g.Width, g.Height)
		},
	}
	return e
}

// Action looks up a registered transform by name.
func (e *Engine) Action(name string) (ActionFunc, bool) {
	fn, ok := e.actions[name]
	return fn, ok
}

// Actions lists the registered transform names, sorted.
func (e *Engine) Actions() []string {
	names := make([]string, 0, len(e.actions))
	for name := range e.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (e *Engine) resolve(ctx context.Context, src Source) (image.Image, error) {
	if src.img != nil {
		return src.img, nil
	}
	if src.path == "" || e.loader == nil {
		return nil, ErrMissingInput
	}
	return e.loader.Load(ctx, src.path)
}
