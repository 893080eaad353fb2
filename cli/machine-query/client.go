package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type client struct {
	server string
	user   string
	apiKey string
	http   *http.Client
}

func newClient(server, user, apiKey string, timeout time.Duration) *client {
	if !strings.Contains(server, "://") {
		server = "http://" + server
	}
	return &client{
		server: strings.TrimRight(server, "/"),
		user:   user,
		apiKey: apiKey,
		http:   &http.Client{Timeout: timeout},
	}
}

func (c *client) machineURL(model, serial string, suffix string, query url.Values) string {
	u := c.server + "/machines/" + url.PathEscape(model) + "/" + url.PathEscape(serial) + suffix
	if encoded := query.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}

func (c *client) getMachine(ctx context.Context, model, serial, view, org string) ([]byte, error) {
	query := url.Values{}
	if view != "" {
		query.Set("view", view)
	}
	if org != "" {
		query.Set("org_id", org)
	}
	return c.get(ctx, c.machineURL(model, serial, "", query))
}

func (c *client) getCrossBorderAlerts(ctx context.Context, model, serial, org string) ([]byte, error) {
	query := url.Values{}
	query.Set("org_id", org)
	return c.get(ctx, c.machineURL(model, serial, "/alerts/cross-border", query))
}

// get returns the indented body of a successful response.
func (c *client) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	if c.user != "" {
		req.Header.Set("X-User-Email", c.user)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error     string `json:"error"`
			RequestID string `json:"requestId"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("%s: %s (request %s)", resp.Status, apiErr.Error, apiErr.RequestID)
		}
		return nil, fmt.Errorf("%s", resp.Status)
	}

	var out bytes.Buffer
	if err := json.Indent(&out, body, "", "  "); err != nil {
		return nil, fmt.Errorf("unexpected response: %w", err)
	}
	return out.Bytes(), nil
}
