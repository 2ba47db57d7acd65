package content

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// DefaultFetchTimeout bounds a single fetch of the remote sheet
const DefaultFetchTimeout = 20 * time.Second

// DefaultMaxPayloadBytes caps the size of a fetched sheet
const DefaultMaxPayloadBytes = 32 << 20

// Source returns the raw tabular content
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// SourceFunc adapts a function to Source
type SourceFunc func(ctx context.Context) ([]byte, error)

// Fetch calls f
func (f SourceFunc) Fetch(ctx context.Context) ([]byte, error) {
	return f(ctx)
}

// HTTPSource fetches a published sheet export over HTTP
type HTTPSource struct {
	URL      string
	Client   *http.Client
	MaxBytes int64
}

// NewHTTPSource creates a source whose requests time out after timeout
func NewHTTPSource(rawURL string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &HTTPSource{
		URL:      rawURL,
		Client:   &http.Client{Timeout: timeout},
		MaxBytes: DefaultMaxPayloadBytes,
	}
}

// Fetch downloads the sheet
func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch content: %s", resp.Status)
	}

	limit := s.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxPayloadBytes
	}
	// one extra byte tells a full payload apart from a cut one
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: payload exceeds %d bytes", ErrMalformedSource, limit)
	}
	return data, nil
}

// FileSource reads a sheet export from the local filesystem
type FileSource struct {
	Path string
}

// Fetch reads the file
func (s *FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read content file: %w", err)
	}
	return data, nil
}

// NewSource picks a source implementation for location. HTTP(S) URLs are
// fetched remotely; file:// URLs and plain paths are read from disk.
func NewSource(location string, timeout time.Duration) (Source, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("content source location is empty")
	}

	u, err := url.Parse(location)
	if err == nil {
		switch u.Scheme {
		case "http", "https":
			return NewHTTPSource(location, timeout), nil
		case "file":
			return &FileSource{Path: u.Path}, nil
		}
	}
	return &FileSource{Path: location}, nil
}

// IsRemote reports whether the source needs the network
func IsRemote(s Source) bool {
	_, ok := s.(*HTTPSource)
	return ok
}
