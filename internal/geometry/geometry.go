package geometry

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrInvalidGeometry is returned when a geometry token can't be resolved
// for the requested action.
var ErrInvalidGeometry = errors.New("invalid geometry")

// Geometry is a parsed target size. A zero Width or Height means the
// dimension was not given.
type Geometry struct {
	Width  int
	Height int
}

var (
	singleRe = regexp.MustCompile(`^(\d+)$`)
	pairRe   = regexp.MustCompile(`^(\d+)[x/](\d+)$`)
	heightRe = regexp.MustCompile(`^x/?(\d+)$`)
)

// DefaultMaxDimension caps either side of a target when no limit is set.
const DefaultMaxDimension = 10000

// singleDimension lists actions that take exactly one of width or height.
var singleDimension = map[string]bool{
	"thumbnail": true,
}

// IsSingleDimension reports whether action takes width XOR height.
func IsSingleDimension(action string) bool {
	return singleDimension[action]
}

// Parse resolves a geometry token ("48", "150x200", "150/200", "x200",
// "x/200") for the given action, capped at DefaultMaxDimension.
func Parse(action, token string) (Geometry, error) {
	return ParseMax(action, token, DefaultMaxDimension)
}

// ParseMax is Parse with a per-side limit. maxDim <= 0 means
// DefaultMaxDimension.
func ParseMax(action, token string, maxDim int) (Geometry, error) {
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}
	dimension := func(s string) (int, error) {
		return parseDimension(s, maxDim)
	}

	var g Geometry
	var err error

	if IsSingleDimension(action) {
		switch {
		case singleRe.MatchString(token):
			g.Width, err = dimension(singleRe.FindStringSubmatch(token)[1])
		case heightRe.MatchString(token):
			g.Height, err = dimension(heightRe.FindStringSubmatch(token)[1])
		default:
			return Geometry{}, fmt.Errorf("%w: %q for %s", ErrInvalidGeometry, token, action)
		}
		if err != nil {
			return Geometry{}, err
		}
		return g, nil
	}

	switch {
	case pairRe.MatchString(token):
		m := pairRe.FindStringSubmatch(token)
		if g.Width, err = dimension(m[1]); err != nil {
			return Geometry{}, err
		}
		if g.Height, err = dimension(m[2]); err != nil {
			return Geometry{}, err
		}
	case singleRe.MatchString(token):
		// a lone number on a two-dimension action is a square
		if g.Width, err = dimension(token); err != nil {
			return Geometry{}, err
		}
		g.Height = g.Width
	default:
		return Geometry{}, fmt.Errorf("%w: %q for %s", ErrInvalidGeometry, token, action)
	}
	return g, nil
}

func parseDimension(s string, maxDim int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: dimension %q must be a positive integer", ErrInvalidGeometry, s)
	}
	if n > maxDim {
		return 0, fmt.Errorf("%w: dimension %d exceeds limit %d", ErrInvalidGeometry, n, maxDim)
	}
	return n, nil
}

// String renders the canonical token for g.
func (g Geometry) String() string {
	switch {
	case g.Width > 0 && g.Height > 0:
		return fmt.Sprintf("%dx%d", g.Width, g.Height)
	case g.Height > 0:
		return fmt.Sprintf("x%d", g.Height)
	default:
		return strconv.Itoa(g.Width)
	}
}
