package thumbs

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/hackclub/lazythumbs/internal/geometry"
)

// ErrInvalidRequest covers every malformed request: bad quality, unsafe
// source path, unknown action or unparseable geometry. They all answer 404.
var ErrInvalidRequest = errors.New("invalid render request")

// Request is one render request as it arrives, before validation.
type Request struct {
	SourcePath    string
	Action        string
	GeometryToken string
	// QualityToken is "q80" or "80"; empty means the configured default.
	QualityToken string
	// Path is the storage path of the rendered image. When empty the
	// canonical path is used.
	Path string
}

var (
	digitsRe  = regexp.MustCompile(`^\d+$`)
	qualityRe = regexp.MustCompile(`^q\d+$`)
	singleRe  = regexp.MustCompile(`^(\d+|\d+x\d+|x\d+)$`)
)

// ParseQuality reads a quality token. An empty token gives def.
func ParseQuality(token string, def int) (int, error) {
	if token == "" {
		return def, nil
	}
	q, err := strconv.Atoi(strings.TrimPrefix(token, "q"))
	if err != nil {
		return 0, fmt.Errorf("%w: corrupted quality %q", ErrInvalidRequest, token)
	}
	if q <= 0 || q > 100 {
		return 0, fmt.Errorf("%w: quality %d out of range", ErrInvalidRequest, q)
	}
	return q, nil
}

// ValidateSourcePath rejects empty, absolute and parent-traversing paths.
func ValidateSourcePath(p string) error {
	if p == "" {
		return fmt.Errorf("%w: empty source path", ErrInvalidRequest)
	}
	if strings.HasPrefix(p, "/") {
		return fmt.Errorf("%w: %s: blocked absolute path", ErrInvalidRequest, p)
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return fmt.Errorf("%w: %s: blocked parent traversal", ErrInvalidRequest, p)
		}
	}
	return nil
}

// RenderedPath builds the canonical storage path for a validated request:
// {prefix}/{action}/{geometry}/[q{quality}/]{source}.
func RenderedPath(prefix, action string, g geometry.Geometry, quality string, sourcePath string) string {
	parts := []string{action, g.String()}
	if quality != "" {
		parts = append(parts, "q"+strings.TrimPrefix(quality, "q"))
	}
	parts = append(parts, sourcePath)
	if prefix != "" {
		parts = append([]string{prefix}, parts...)
	}
	return path.Join(parts...)
}

// ParsePath splits a request URL path into a Request. Accepted forms, with
// an optional qNN segment before the source path:
//
//	{prefix}/{action}/{W}/{H}/{source}
//	{prefix}/{action}/{N}/{source}
//	{prefix}/{action}/{W}x{H}/{source}
//	{prefix}/{action}/x/{H}/{source}
//	{prefix}/{action}/x{H}/{source}
//
// The URL path itself, without the leading slash, becomes Request.Path.
func ParsePath(prefix, urlPath string) (Request, error) {
	rendered := strings.TrimPrefix(urlPath, "/")
	rest := rendered
	if prefix != "" {
		p := strings.Trim(prefix, "/") + "/"
		if !strings.HasPrefix(rest, p) {
			return Request{}, fmt.Errorf("%w: %s: outside %s", ErrInvalidRequest, urlPath, prefix)
		}
		rest = strings.TrimPrefix(rest, p)
	}

	segs := strings.Split(rest, "/")
	if len(segs) < 3 || segs[0] == "" {
		return Request{}, fmt.Errorf("%w: %s: too short", ErrInvalidRequest, urlPath)
	}
	req := Request{Action: segs[0], Path: rendered}

	var i int
	switch {
	case segs[1] == "x" && len(segs) >= 4 && digitsRe.MatchString(segs[2]):
		req.GeometryToken = "x/" + segs[2]
		i = 3
	case len(segs) >= 4 && digitsRe.MatchString(segs[1]) && digitsRe.MatchString(segs[2]) &&
		!geometry.IsSingleDimension(req.Action):
		req.GeometryToken = segs[1] + "/" + segs[2]
		i = 3
	case singleRe.MatchString(segs[1]):
		req.GeometryToken = segs[1]
		i = 2
	default:
		return Request{}, fmt.Errorf("%w: %s: no geometry", ErrInvalidRequest, urlPath)
	}

	if i < len(segs)-1 && qualityRe.MatchString(segs[i]) {
		req.QualityToken = segs[i]
		i++
	}

	req.SourcePath = strings.Join(segs[i:], "/")
	if req.SourcePath == "" {
		return Request{}, fmt.Errorf("%w: %s: no source path", ErrInvalidRequest, urlPath)
	}
	return req, nil
}
