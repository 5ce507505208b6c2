// Package linear is a small GraphQL client for the Linear issue tracker,
// covering only what request synchronization needs.
package linear

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"

	"github.com/orris-inc/tracksync/internal/shared/config"
	"github.com/orris-inc/tracksync/internal/shared/logger"
)

const (
	// Maximum response body size accepted from the API (1MB)
	maxResponseSize = 1 << 20
	labelPageSize   = 250
)

type Client struct {
	cfg        config.LinearConfig
	endpoint   string
	apiKey     string
	httpClient *http.Client
	logger     logger.Interface

	// Team label ids by case-folded name, loaded once per team.
	mu         sync.RWMutex
	labels     map[string]map[string]string
	labelGroup singleflight.Group
}

// NewClient builds a client authenticated with the OAuth client credentials
// when configured, otherwise with the personal API key.
func NewClient(cfg config.LinearConfig, log logger.Interface) *Client {
	base := &http.Client{Timeout: cfg.Timeout}

	httpClient := base
	if cfg.OAuth.Enabled() {
		cc := &clientcredentials.Config{
			ClientID:     cfg.OAuth.ClientID,
			ClientSecret: cfg.OAuth.ClientSecret,
			TokenURL:     cfg.OAuth.TokenURL,
			Scopes:       cfg.OAuth.Scopes,
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		httpClient = cc.Client(ctx)
		httpClient.Timeout = cfg.Timeout
	}

	return &Client{
		cfg:        cfg,
		endpoint:   cfg.Endpoint,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		httpClient: httpClient,
		logger:     log.With("component", "linear"),
		labels:     make(map[string]map[string]string),
	}
}

// Configured reports whether the client has any credential to call the API with.
func (c *Client) Configured() bool {
	return c.apiKey != "" || c.cfg.OAuth.Enabled()
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// do posts a GraphQL document and decodes its data member into out.
func (c *Client) do(ctx context.Context, query string, vars map[string]any, out any) error {
	if !c.Configured() {
		return fmt.Errorf("linear: no API key or OAuth client configured")
	}

	payload, err := json.Marshal(graphQLRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if !c.cfg.OAuth.Enabled() {
		req.Header.Set("Authorization", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("linear request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var gql graphQLResponse
	decodeErr := json.Unmarshal(body, &gql)

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if decodeErr == nil {
			apiErr.Messages = messages(gql.Errors)
		}
		if len(apiErr.Messages) == 0 {
			apiErr.Messages = []string{strings.TrimSpace(string(body))}
		}
		return apiErr
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	if len(gql.Errors) > 0 {
		return &APIError{StatusCode: resp.StatusCode, Messages: messages(gql.Errors)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(gql.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

func messages(errs []graphQLError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		if e.Message != "" {
			out = append(out, e.Message)
		}
	}
	return out
}
