package thumbs

import (
	"net/http"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
)

func TestResponder(t *testing.T) {
	r := NewResponder(30*24*time.Hour, 5*time.Minute)

	ok := r.OK([]byte("img"), imaging.PNG)
	assert.Equal(t, http.StatusOK, ok.Status)
	assert.Equal(t, "image/png", ok.ContentType)
	assert.Equal(t, "public,max-age=2592000", ok.CacheControl)
	assert.Equal(t, []byte("img"), ok.Body)

	jpeg := r.OK([]byte("img"), imaging.JPEG)
	assert.Equal(t, "image/jpeg", jpeg.ContentType)

	nf := r.NotFound()
	assert.Equal(t, http.StatusNotFound, nf.Status)
	assert.Equal(t, "image/jpeg", nf.ContentType)
	assert.Equal(t, "public,max-age=300", nf.CacheControl)
	assert.Empty(t, nf.Body)
}
