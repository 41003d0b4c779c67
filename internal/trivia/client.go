// Package trivia is a thin client for the Open Trivia DB HTTP API. It does a
// single request per call; the retry policy lives with the question service.
package trivia

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ArnaudClarat/FactRush/internal/domain"
)

const DefaultBaseURL = "https://opentdb.com"

// BatchResponse mirrors the question endpoint payload. A ResponseCode other
// than zero means the API refused the request (pool exhausted, bad token).
type BatchResponse struct {
	ResponseCode int               `json:"response_code"`
	Questions    []domain.Question `json:"results"`
}

// TokenResponse mirrors the session-token endpoint payload. A token makes
// the API avoid repeating questions within a session.
type TokenResponse struct {
	ResponseCode    int    `json:"response_code"`
	ResponseMessage string `json:"response_message"`
	Token           string `json:"token"`
}

type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient wraps httpClient; a nil httpClient falls back to
// http.DefaultClient. baseURL defaults to the public API.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{http: httpClient, baseURL: baseURL}
}

// FetchBatch requests amount questions, optionally scoped to a session
// token. It returns the raw response; validating the response code and the
// batch size is the caller's business.
func (c *Client) FetchBatch(ctx context.Context, amount int, token string) (*BatchResponse, error) {
	q := url.Values{}
	q.Set("amount", strconv.Itoa(amount))
	if token != "" {
		q.Set("token", token)
	}

	var resp BatchResponse
	if err := c.getJSON(ctx, "/api.php?"+q.Encode(), &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// RequestToken asks the API for a fresh session token.
func (c *Client) RequestToken(ctx context.Context) (string, error) {
	var resp TokenResponse
	if err := c.getJSON(ctx, "/api_token.php?command=request", &resp); err != nil {
		return "", err
	}

	if resp.ResponseCode != 0 {
		return "", fmt.Errorf("trivia: token request refused: code=%d message=%q", resp.ResponseCode, resp.ResponseMessage)
	}

	return resp.Token, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("trivia: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("trivia: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("trivia: unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("trivia: decode response: %w", err)
	}

	return nil
}
