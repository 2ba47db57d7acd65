package content

import (
	"context"
	"net/http"
	"time"
)

// Reachability reports whether the content source can currently be reached
type Reachability interface {
	Reachable(ctx context.Context) bool
}

// ReachabilityFunc adapts a function to Reachability
type ReachabilityFunc func(ctx context.Context) bool

// Reachable calls f
func (f ReachabilityFunc) Reachable(ctx context.Context) bool {
	return f(ctx)
}

// AlwaysReachable is used for sources that need no network
var AlwaysReachable = ReachabilityFunc(func(context.Context) bool { return true })

const defaultProbeTimeout = 3 * time.Second

// HTTPProbe checks reachability with a HEAD request. Any HTTP response counts
// as reachable; only transport failures count as offline.
type HTTPProbe struct {
	URL    string
	Client *http.Client
}

// NewHTTPProbe creates a probe against url
func NewHTTPProbe(url string) *HTTPProbe {
	return &HTTPProbe{
		URL:    url,
		Client: &http.Client{Timeout: defaultProbeTimeout},
	}
}

// Reachable performs the probe
func (p *HTTPProbe) Reachable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.URL, nil)
	if err != nil {
		return false
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}
