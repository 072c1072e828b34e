// Package remote implements syncer.Remote over the HTTP API of the
// collaboration service.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/budgetbuddy/backend/internal/syncer"
)

// Client talks JSON over HTTP to the collaboration service.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New returns a Client for the service at baseURL, authenticating with a
// bearer token.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ShareBudget registers a budget and returns the collaboration code the
// service assigned.
func (c *Client) ShareBudget(ctx context.Context, budget syncer.RemoteBudget) (string, error) {
	var response struct {
		Code string `json:"code"`
	}

	err := c.do(ctx, http.MethodPost, "/v1/budgets", budget, &response)
	if err != nil {
		return "", err
	}

	return response.Code, nil
}

// FetchBudget returns the remote snapshot for a collaboration code.
func (c *Client) FetchBudget(ctx context.Context, code string) (syncer.RemoteBudget, error) {
	var budget syncer.RemoteBudget

	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/v1/budgets/%s", url.PathEscape(code)), nil, &budget)
	if err != nil {
		return syncer.RemoteBudget{}, err
	}

	return budget, nil
}

// PushEntries uploads entries and returns the per-entry results.
func (c *Client) PushEntries(ctx context.Context, code string, entries []syncer.RemoteEntry) ([]syncer.PushResult, error) {
	var results []syncer.PushResult

	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/v1/budgets/%s/entries", url.PathEscape(code)), entries, &results)
	if err != nil {
		return nil, err
	}

	return results, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, response any) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}

	request.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(request)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusGone:
		return syncer.ErrInvalidCollaborationCode
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("the remote responded with status %d", resp.StatusCode)
	}

	if response == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(response)
}
