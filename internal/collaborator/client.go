// Package collaborator holds HTTP clients for the external contract and
// payment services.
package collaborator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"pira-rental-backend/internal/logger"
)

// StatusError is returned when a collaborator answers with an unexpected status.
type StatusError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s error: status %d: %s", e.Service, e.StatusCode, e.Body)
}

// Retryable reports whether the failure is worth another attempt.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

type httpClient struct {
	service    string
	baseURL    *url.URL
	httpClient *http.Client
}

func newHTTPClient(service, baseURL string, timeout time.Duration) (*httpClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse %s url: %w", service, err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("%s url must be absolute", service)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &httpClient{
		service:    service,
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// postJSON sends body to the endpoint below the base URL and decodes a 2xx
// answer into out when out is not nil.
func (c *httpClient) postJSON(ctx context.Context, endpointPath string, headers map[string]string, body, out any) error {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, endpointPath)

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	logger.ExternalServiceCall(c.service, endpointPath)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.ExternalServiceResult(c.service, endpointPath, err)
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		logger.ExternalServiceResult(c.service, endpointPath, nil, "status", resp.StatusCode)
		if out == nil {
			return nil
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return json.Unmarshal(data, out)
	default:
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := &StatusError{Service: c.service, StatusCode: resp.StatusCode, Body: string(data)}
		logger.ExternalServiceResult(c.service, endpointPath, err)
		return err
	}
}
