// Package client talks to the League client's local API using the
// credentials from a lockfile.Descriptor.
package client

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/4throck/lcu-connector/internal/lockfile"
	"github.com/pkg/errors"
)

const (
	requestTimeout = 10 * time.Second

	// 8MB, some inventory endpoints are large
	maxResponseSize = 8 * 1024 * 1024
)

// StatusError is returned for a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("local API returned %d: %s", e.Code, e.Body)
}

// Client issues authenticated requests against the local REST API.
type Client struct {
	desc lockfile.Descriptor
	http *http.Client
}

// New returns a Client for d. The local API serves a certificate for
// 127.0.0.1 signed by Riot's own root, so verification is disabled.
func New(d lockfile.Descriptor) *Client {
	return &Client{
		desc: d,
		http: &http.Client{
			Timeout: requestTimeout,
			Transport: &http.Transport{
				TLSClientConfig: localTLSConfig(),
			},
		},
	}
}

// Get fetches path (e.g. /lol-summoner/v1/current-summoner) and returns the body.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.desc.BaseURL()+path, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Authorization", c.desc.AuthorizationHeader())
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Code: resp.StatusCode, Body: string(b)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}
	return body, nil
}

func localTLSConfig() *tls.Config {
	return &tls.Config{
		InsecureSkipVerify: true, //nolint:gosec // loopback endpoint with a self-issued certificate
	}
}
