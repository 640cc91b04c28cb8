package thumbs

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/hackclub/lazythumbs/internal/metrics"
	"github.com/hackclub/lazythumbs/internal/util"
)

type Handler struct {
	service *Service
	logger  zerolog.Logger
}

func NewHandler(service *Service, logger zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// HandleRender serves GET/HEAD {prefix}/{action}/{geometry}/[qNN/]{source}.
func (h *Handler) HandleRender(w http.ResponseWriter, r *http.Request) {
	req, err := ParsePath(h.service.cfg.URLPrefix, r.URL.Path)
	if err != nil {
		h.logger.Info().Err(err).Str("path", r.URL.Path).Msg("unroutable thumbnail path")
		metrics.RendersTotal.WithLabelValues("unknown", metrics.OutcomeInvalid).Inc()
		h.writeResponse(w, r, h.service.Responder().NotFound())
		return
	}

	resp, err := h.service.Render(r.Context(), req)
	if err != nil {
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("failed to render image")
		http.Error(w, "Failed to render image", http.StatusInternalServerError)
		return
	}

	h.writeResponse(w, r, resp)
}

func (h *Handler) writeResponse(w http.ResponseWriter, r *http.Request, resp *Response) {
	header := w.Header()
	header.Set("Content-Type", resp.ContentType)
	header.Set("Cache-Control", resp.CacheControl)

	if resp.Status == http.StatusOK {
		etag := util.ETag(resp.Body)
		header.Set("ETag", etag)
		if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	header.Set("Content-Length", strconv.Itoa(len(resp.Body)))
	w.WriteHeader(resp.Status)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(resp.Body); err != nil {
		h.logger.Debug().Err(err).Msg("failed to write response body")
	}
}
