// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/mhprogram/evidence-engine/internal/httputil"
)

// maxRetries bounds 429 retries per provider request. Kept low because the
// fan-out runs inside an interactive query.
const maxRetries = 2

// fetch performs one rate-limited GET and returns the response body.
// The limiter slot is held for the full request, body included, so the
// concurrency cap reflects actual load on the provider.
func fetch(ctx context.Context, client *http.Client, lim *Limiter, reqURL, userAgent string, headers map[string]string) ([]byte, error) {
	if err := lim.Acquire(ctx); err != nil {
		return nil, err
	}
	defer lim.Release()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, maxRetries)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}

// maxResults returns the configured per-variant result limit, defaulted
// and capped for the given provider ceiling.
func maxResults(configured, ceiling int) int {
	if configured <= 0 {
		configured = 10
	}
	if configured > ceiling {
		configured = ceiling
	}
	return configured
}
