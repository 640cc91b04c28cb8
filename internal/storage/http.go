package storage

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	MaxFileSize    = 30 * 1024 * 1024 // 30MB
	ConnectTimeout = 10 * time.Second
	OverallTimeout = 30 * time.Second
)

// HTTPSource reads source images from an HTTPS origin. It is read-only and
// refuses to dial private addresses.
type HTTPSource struct {
	client  *http.Client
	baseURL *url.URL
}

func NewHTTPSource(baseURL string) (*HTTPSource, error) {
	dialer := &net.Dialer{
		Timeout: ConnectTimeout,
	}

	// Custom dialer to prevent SSRF attacks
	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			host, port, err := net.SplitHostPort(addr)
			if err != nil {
				return nil, err
			}

			// Resolve the host to check if it's a private IP
			ips, err := net.DefaultResolver.LookupIP(ctx, "ip", host)
			if err != nil {
				return nil, err
			}

			// Check if any resolved IP is private/internal
			for _, ip := range ips {
				if isPrivateIP(ip) {
					return nil, fmt.Errorf("connection to private IP address is not allowed: %s", ip)
				}
			}

			// Dial the vetted address so a second lookup can't swap it
			return dialer.DialContext(ctx, network, net.JoinHostPort(ips[0].String(), port))
		},
		MaxIdleConns:    10,
		IdleConnTimeout: 90 * time.Second,
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   OverallTimeout,
	}

	return NewHTTPSourceWithClient(baseURL, client)
}

// NewHTTPSourceWithClient uses client as is, without the private address
// guard.
func NewHTTPSourceWithClient(baseURL string, client *http.Client) (*HTTPSource, error) {
	parsedURL, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid source base URL: %w", err)
	}

	// Only allow HTTPS
	if parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("only HTTPS source URLs are allowed")
	}

	return &HTTPSource{client: client, baseURL: parsedURL}, nil
}

// Open fetches baseURL/path.
func (s *HTTPSource) Open(ctx context.Context, path string) ([]byte, error) {
	target := s.baseURL.JoinPath(strings.Split(strings.TrimPrefix(path, "/"), "/")...)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set user agent
	req.Header.Set("User-Agent", "lazythumbs/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch source: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("HTTP %d fetching %s", resp.StatusCode, path)
	}

	// Check content length
	if resp.ContentLength > MaxFileSize {
		return nil, fmt.Errorf("file too large: %d bytes (max %d)", resp.ContentLength, MaxFileSize)
	}

	// Read body with size limit
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) > MaxFileSize {
		return nil, fmt.Errorf("file too large: more than %d bytes", MaxFileSize)
	}

	return body, nil
}

// isPrivateIP checks if an IP address is in a private/internal range
func isPrivateIP(ip net.IP) bool {
	if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() ||
		ip.IsPrivate() || ip.IsUnspecified() {
		return true
	}

	// 169.254.0.0/16 (link-local)
	if ip4 := ip.To4(); ip4 != nil && ip4[0] == 169 && ip4[1] == 254 {
		return true
	}

	return false
}
