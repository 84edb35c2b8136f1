// Package resolver looks up a usable access-point endpoint over HTTPS,
// grounded on original_source/src/http.rs's reqwest_ap_resolve_data /
// accesspoint_4070 (SPEC_FULL.md §4.1): GET the resolve endpoint, parse
// {"accesspoint": ["host:port", ...]}, and prefer an entry on the
// handshake's well-known port.
package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// DefaultURL is the production AP resolver endpoint.
const DefaultURL = "https://apresolve.spotify.com/?type=accesspoint&type=dealer&type=spclient"

// preferredPort is tried first among the returned candidates; it matches
// internal/apnet.DefaultPort.
const preferredPort = ":4070"

type response struct {
	AccessPoint []string `json:"accesspoint"`
}

// Resolver performs rate-limited HTTPS lookups against the AP resolve
// service. The zero value is not usable; construct with New.
type Resolver struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	url        string
	log        zerolog.Logger
}

// New builds a Resolver that allows at most one lookup every interval,
// bursting up to burst requests, against url (DefaultURL in production).
// log may be the zero zerolog.Logger, in which case nothing is emitted.
func New(url string, interval time.Duration, burst int, log zerolog.Logger) *Resolver {
	if url == "" {
		url = DefaultURL
	}
	return &Resolver{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(interval), burst),
		url:        url,
		log:        log,
	}
}

// Resolve returns the first advertised accesspoint entry on port 4070,
// falling back to the first entry of any port if none matches.
func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("resolver: rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return "", fmt.Errorf("resolver: build request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.log.Warn().Err(err).Msg("ap resolve request failed")
		return "", fmt.Errorf("resolver: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("resolver: unexpected status %d", resp.StatusCode)
	}

	var parsed response
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("resolver: decode response: %w", err)
	}
	if len(parsed.AccessPoint) == 0 {
		return "", fmt.Errorf("resolver: no accesspoint entries in response")
	}

	for _, ep := range parsed.AccessPoint {
		if strings.HasSuffix(ep, preferredPort) {
			r.log.Debug().Str("endpoint", ep).Msg("resolved access point")
			return ep, nil
		}
	}
	r.log.Debug().Str("endpoint", parsed.AccessPoint[0]).Msg("resolved access point (no :4070 candidate, using first)")
	return parsed.AccessPoint[0], nil
}
