// internal/shopify/client.go
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dario9661s/bundles-sub000/internal/config"
)

// Client is a thin Admin GraphQL API client. All remote reads and
// writes in this system go through a single POST endpoint carrying a
// query document and variables.
type Client struct {
	httpClient *http.Client
	endpoint   string
	token      string
	maxRetries int
	retryDelay time.Duration
	log        *logrus.Entry
}

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphqlError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

// UserError is a field-level validation failure reported by a remote
// mutation. The message text is surfaced to callers verbatim for
// diagnostics but control flow keys off Code.
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
	Code    string   `json:"code"`
}

func NewClient(cfg config.ShopifyConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoint: fmt.Sprintf("https://%s/admin/api/%s/graphql.json",
			cfg.ShopDomain, cfg.APIVersion),
		token:      cfg.AdminToken,
		maxRetries: cfg.MaxRetries,
		retryDelay: time.Duration(cfg.RetryDelay) * time.Millisecond,
		log:        logrus.WithField("component", "shopify"),
	}
}

// Execute posts a GraphQL document and unmarshals the data payload into
// out. Throttled requests are retried with linear backoff up to the
// configured retry budget; any other GraphQL-level error fails the
// call.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to encode graphql request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelay * time.Duration(attempt)):
			}
		}

		resp, err := c.post(ctx, body)
		if err != nil {
			lastErr = err
			continue
		}

		if len(resp.Errors) > 0 {
			if resp.Errors[0].Extensions.Code == "THROTTLED" {
				lastErr = fmt.Errorf("request throttled: %s", resp.Errors[0].Message)
				c.log.WithField("attempt", attempt).Warn("Admin API throttled, retrying")
				continue
			}
			return fmt.Errorf("graphql error: %s", resp.Errors[0].Message)
		}

		if out != nil {
			if err := json.Unmarshal(resp.Data, out); err != nil {
				return fmt.Errorf("failed to decode graphql response: %w", err)
			}
		}
		return nil
	}

	return fmt.Errorf("admin api request failed after %d retries: %w", c.maxRetries, lastErr)
}

func (c *Client) post(ctx context.Context, body []byte) (*graphqlResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.token)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("admin api request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("admin api returned status %d", httpResp.StatusCode)
	}

	var resp graphqlResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode admin api response: %w", err)
	}

	return &resp, nil
}
