// Package thumbs turns thumbnail requests into rendered, persisted images.
package thumbs

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"

	"github.com/hackclub/lazythumbs/internal/cache"
	"github.com/hackclub/lazythumbs/internal/geometry"
	"github.com/hackclub/lazythumbs/internal/imageproc"
	"github.com/hackclub/lazythumbs/internal/metrics"
	"github.com/hackclub/lazythumbs/internal/storage"
)

// Config holds the render settings fixed at startup.
type Config struct {
	// URLPrefix namespaces canonical rendered paths, e.g. "lt_cache".
	URLPrefix   string
	Quality     int
	Optimize    bool
	Progressive bool
	SuccessTTL  time.Duration
	NotFoundTTL time.Duration

	// MaxDimension caps each side of a requested geometry.
	MaxDimension int
}

// DefaultConfig mirrors the documented fallbacks.
func DefaultConfig() Config {
	return Config{
		URLPrefix:    "lt_cache",
		Quality:      60,
		Optimize:     true,
		Progressive:  true,
		SuccessTTL:   30 * 24 * time.Hour,
		NotFoundTTL:  5 * time.Minute,
		MaxDimension: geometry.DefaultMaxDimension,
	}
}

type Service struct {
	engine    *imageproc.Engine
	encoder   imageproc.Encoder
	cache     cache.Store
	store     storage.Store
	cfg       Config
	responder Responder
	logger    zerolog.Logger
}

func NewService(engine *imageproc.Engine, encoder imageproc.Encoder, cacheStore cache.Store, store storage.Store, cfg Config, logger zerolog.Logger) *Service {
	return &Service{
		engine:    engine,
		encoder:   encoder,
		cache:     cacheStore,
		store:     store,
		cfg:       cfg,
		responder: NewResponder(cfg.SuccessTTL, cfg.NotFoundTTL),
		logger:    logger,
	}
}

// Responder returns the builder used for this service's responses.
func (s *Service) Responder() Responder {
	return s.responder
}

// render is the per-request state carried between steps.
type render struct {
	req      Request
	action   imageproc.ActionFunc
	geometry geometry.Geometry
	quality  int
	path     string
	key      string
	format   imaging.Format
	logger   zerolog.Logger
}

// Render answers one request. The error is non-nil only for infrastructure
// failures; missing or corrupt sources and malformed requests come back as
// a not-found Response.
func (s *Service) Render(ctx context.Context, req Request) (*Response, error) {
	r, err := s.validate(req)
	if err != nil {
		s.logger.Info().Err(err).Str("action", req.Action).Str("source", req.SourcePath).Msg("rejected request")
		s.count("unknown", metrics.OutcomeInvalid)
		return s.responder.NotFound(), nil
	}

	previous, known := s.cacheGet(ctx, r)
	if known && previous == cache.Missing {
		s.count(req.Action, metrics.OutcomeNegativeHit)
		return s.responder.NotFound(), nil
	}

	data, err := s.store.Open(ctx, r.path)
	if err == nil {
		s.count(req.Action, metrics.OutcomeStored)
		s.cacheSet(ctx, r, cache.Rendered, s.cfg.SuccessTTL)
		return s.responder.OK(data, r.format), nil
	}
	switch {
	case !errors.Is(err, storage.ErrNotFound):
		r.logger.Warn().Err(err).Msg("failed to read rendered image, regenerating")
	case known && previous == cache.Rendered:
		r.logger.Info().Msg("rendered image previously on storage missing, regenerating")
	}

	data, outcome, err := s.renderAndPersist(ctx, r)
	s.count(req.Action, outcome)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return s.responder.NotFound(), nil
	}

	s.cacheSet(ctx, r, cache.Rendered, s.cfg.SuccessTTL)
	return s.responder.OK(data, r.format), nil
}

func (s *Service) validate(req Request) (*render, error) {
	quality, err := ParseQuality(req.QualityToken, s.cfg.Quality)
	if err != nil {
		return nil, err
	}
	if err := ValidateSourcePath(req.SourcePath); err != nil {
		return nil, err
	}
	action, ok := s.engine.Action(req.Action)
	if !ok {
		return nil, fmt.Errorf("%w: bad action requested: %s", ErrInvalidRequest, req.Action)
	}
	g, err := geometry.ParseMax(req.Action, req.GeometryToken, s.cfg.MaxDimension)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	path := req.Path
	if path == "" {
		path = RenderedPath(s.cfg.URLPrefix, req.Action, g, req.QualityToken, req.SourcePath)
	}
	return &render{
		req:      req,
		action:   action,
		geometry: g,
		quality:  quality,
		path:     path,
		key:      cache.Key(req.SourcePath, req.Action, g.Width, g.Height, quality),
		format:   imageproc.FormatFromPath(path),
		logger:   s.logger.With().Str("path", path).Str("action", req.Action).Logger(),
	}, nil
}

// renderAndPersist returns nil data for a not-found. Only persistence and
// source infrastructure failures return an error.
func (s *Service) renderAndPersist(ctx context.Context, r *render) ([]byte, string, error) {
	start := time.Now()
	img, err := r.action(ctx, imageproc.FromPath(r.req.SourcePath), r.geometry)
	if err != nil {
		if isPermanentMiss(err) {
			r.logger.Info().Err(err).Msg("404")
			s.cacheSet(ctx, r, cache.Missing, s.cfg.NotFoundTTL)
			return nil, metrics.OutcomeNotFound, nil
		}
		r.logger.Error().Err(err).Msg("failed to read source image")
		return nil, metrics.OutcomeError, fmt.Errorf("reading source %s: %w", r.req.SourcePath, err)
	}

	// JPEG has no palette mode
	if r.format == imaging.JPEG && imageproc.IsPaletted(img) {
		img = imaging.Clone(img)
	}

	data, err := s.encode(r, img)
	metrics.RenderDuration.WithLabelValues(r.req.Action).Observe(time.Since(start).Seconds())
	if err != nil {
		r.logger.Info().Err(err).Msg("404")
		s.cacheSet(ctx, r, cache.Missing, s.cfg.NotFoundTTL)
		return nil, metrics.OutcomeNotFound, nil
	}

	err = s.store.CreateExclusive(ctx, r.path, data)
	switch {
	case err == nil:
		r.logger.Debug().Int("bytes", len(data)).Dur("duration", time.Since(start)).Msg("rendered image")
		return data, metrics.OutcomeRendered, nil
	case errors.Is(err, storage.ErrAlreadyExists):
		// another worker wrote it first
		stored, err := s.store.Open(ctx, r.path)
		if err != nil {
			r.logger.Error().Err(err).Msg("unable to read image file, returning 404")
			return nil, metrics.OutcomeNotFound, nil
		}
		return stored, metrics.OutcomeRaceRecovered, nil
	default:
		r.logger.Error().Err(err).Msg("failed to save rendered image")
		return nil, metrics.OutcomeError, fmt.Errorf("saving rendered image %s: %w", r.path, err)
	}
}

func (s *Service) encode(r *render, img image.Image) ([]byte, error) {
	opts := imageproc.EncodeOptions{
		Quality:     r.quality,
		Optimize:    s.cfg.Optimize,
		Progressive: s.cfg.Progressive,
	}
	data, err := s.encoder.Encode(img, r.format, opts)
	if err == nil {
		return data, nil
	}

	r.logger.Warn().Err(err).Interface("options", opts).Msg("failed to create new image, trying without options")
	metrics.EncodeRetriesTotal.Inc()
	return s.encoder.Encode(img, r.format, imageproc.EncodeOptions{})
}

func isPermanentMiss(err error) bool {
	return errors.Is(err, storage.ErrNotFound) ||
		errors.Is(err, imageproc.ErrDecode) ||
		errors.Is(err, imageproc.ErrInvalidArgument) ||
		errors.Is(err, imageproc.ErrMissingInput)
}

func (s *Service) cacheGet(ctx context.Context, r *render) (int, bool) {
	value, ok, err := s.cache.Get(ctx, r.key)
	if err != nil {
		metrics.CacheErrorsTotal.WithLabelValues("get").Inc()
		r.logger.Warn().Err(err).Str("key", r.key).Msg("cache lookup failed")
		return 0, false
	}
	return value, ok
}

func (s *Service) cacheSet(ctx context.Context, r *render, value int, ttl time.Duration) {
	if err := s.cache.Set(ctx, r.key, value, ttl); err != nil {
		metrics.CacheErrorsTotal.WithLabelValues("set").Inc()
		r.logger.Warn().Err(err).Str("key", r.key).Msg("cache update failed")
	}
}

func (s *Service) count(action, outcome string) {
	if _, ok := s.engine.Action(action); !ok {
		action = "unknown"
	}
	metrics.RendersTotal.WithLabelValues(action, outcome).Inc()
}
