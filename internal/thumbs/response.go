package thumbs

import (
	"fmt"
	"net/http"
	"time"

	"github.com/disintegration/imaging"

	"github.com/hackclub/lazythumbs/internal/util"
)

// Response is a finished render: either image bytes or a not-found.
type Response struct {
	Status       int
	Body         []byte
	ContentType  string
	CacheControl string
}

// Responder builds responses with the configured cache lifetimes.
type Responder struct {
	successTTL  time.Duration
	notFoundTTL time.Duration
}

func NewResponder(successTTL, notFoundTTL time.Duration) Responder {
	return Responder{successTTL: successTTL, notFoundTTL: notFoundTTL}
}

// OK serves data as image/{format}.
func (r Responder) OK(data []byte, format imaging.Format) *Response {
	return &Response{
		Status:       http.StatusOK,
		Body:         data,
		ContentType:  util.ContentTypeForFormat(format.String()),
		CacheControl: cacheControl(r.successTTL),
	}
}

// NotFound is typed image/jpeg so <img> tags degrade quietly. The
// Cache-Control header is meant for shared caches; browsers ignore it on a
// 404.
func (r Responder) NotFound() *Response {
	return &Response{
		Status:       http.StatusNotFound,
		ContentType:  "image/jpeg",
		CacheControl: cacheControl(r.notFoundTTL),
	}
}

func cacheControl(ttl time.Duration) string {
	return fmt.Sprintf("public,max-age=%d", int64(ttl/time.Second))
}
