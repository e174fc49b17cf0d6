package remote

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

	"miru/internal/models"
)

// DefaultTimeout applies when the configured timeout is not positive.
const DefaultTimeout = 10 * time.Second

// Client calls the booking API of the remote store.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// envelope is the response wrapper used by every endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// NewClient constructs a client for baseURL, e.g. http://localhost:8080.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// List returns every booking the remote store holds, newest first.
func (c *Client) List(ctx context.Context) ([]models.Booking, error) {
	var out []models.Booking
	if err := c.doJSON(ctx, http.MethodGet, c.baseURL+"/api/bookings", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Booking{}
	}
	return out, nil
}

// Create inserts a booking and returns it with the store-assigned id.
func (c *Client) Create(ctx context.Context, f models.Fields) (models.Booking, error) {
	var out models.Booking
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/api/bookings", f, &out); err != nil {
		return models.Booking{}, err
	}
	return out, nil
}

// Update replaces the five editable fields of the booking with id.
func (c *Client) Update(ctx context.Context, id string, f models.Fields) (models.Booking, error) {
	var out models.Booking
	if err := c.doJSON(ctx, http.MethodPut, c.bookingURL(id), f, &out); err != nil {
		return models.Booking{}, err
	}
	return out, nil
}

// Delete removes the booking with id.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, c.bookingURL(id), nil, nil)
}

// HealthCheck checks if the remote store is answering.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", http.NoBody)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &UnavailableError{Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return unavailable("health check failed: %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) bookingURL(id string) string {
	return fmt.Sprintf("%s/api/bookings/%s", c.baseURL, url.PathEscape(id))
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &UnavailableError{Err: err}
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		msg := env.Error
		if decodeErr != nil || msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &RejectedError{Status: resp.StatusCode, Message: msg}
	case resp.StatusCode >= 300:
		if decodeErr == nil && env.Error != "" {
			return unavailable("http %d: %s", resp.StatusCode, env.Error)
		}
		return unavailable("http %d", resp.StatusCode)
	}

	if decodeErr != nil {
		return unavailable("decode envelope: %w", decodeErr)
	}
	if !env.Success {
		if env.Error == "" {
			env.Error = "request failed"
		}
		return unavailable("%s", env.Error)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return unavailable("decode data: %w", err)
	}
	return nil
}
