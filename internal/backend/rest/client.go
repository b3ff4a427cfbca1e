// Package rest implements the service.Service interface against a generic
// REST task collection.
package rest

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

	"golang.org/x/oauth2"

	"taskboard/internal/config"
	"taskboard/internal/service"
	"taskboard/internal/wire"
)

const (
	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	// maxBody caps how much of a response is read.
	maxBody = 4 << 20
)

var _ service.Service = (*Client)(nil)

// Client implements service.Service over HTTP + JSON. Each method issues a
// single request; there are no retries.
type Client struct {
	http       *http.Client
	collection string
	timeout    time.Duration
}

// New creates a client for cfg.APIURL. A non-empty cfg.APIToken is sent as a
// bearer token.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	httpClient := http.DefaultClient
	if cfg.APIToken != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIToken, TokenType: "Bearer"})
		httpClient = oauth2.NewClient(ctx, ts)
	}
	return NewWithHTTPClient(cfg.APIURL, httpClient)
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(collection string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(collection))
	if err != nil {
		return nil, fmt.Errorf("invalid API URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid API URL %q: scheme must be http or https", collection)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		http:       httpClient,
		collection: strings.TrimRight(u.String(), "/"),
		timeout:    APITimeout,
	}, nil
}

// Collection returns the collection URL requests are sent to.
func (c *Client) Collection() string { return c.collection }

// List fetches every task in backend order.
func (c *Client) List(ctx context.Context) ([]service.Task, error) {
	body, err := c.do(ctx, "list", http.MethodGet, c.collection, nil)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, nil
	}
	recs, err := wire.DecodeRecords(bytes.NewReader(body))
	if err != nil {
		return nil, &service.NetworkError{Op: "list", Err: err}
	}
	return wire.FromWireAll(recs), nil
}

// Create posts a new task. The created record is returned when the response
// carries one with an id; otherwise the zero Task is returned and the caller
// re-fetches.
func (c *Client) Create(ctx context.Context, task service.Task) (service.Task, error) {
	task.ID = ""
	body, err := c.do(ctx, "create", http.MethodPost, c.collection, wire.ToWire(task))
	if err != nil {
		return service.Task{}, err
	}
	if len(body) == 0 {
		return service.Task{}, nil
	}
	rec, err := wire.DecodeRecord(bytes.NewReader(body))
	if err != nil {
		// Accepted by the backend; the body is not usable.
		return service.Task{}, nil
	}
	created := wire.FromWire(rec)
	if created.ID == "" {
		return service.Task{}, nil
	}
	return created, nil
}

// Get fetches one task. A 404 matches service.ErrNotFound.
func (c *Client) Get(ctx context.Context, id string) (service.Task, error) {
	body, err := c.do(ctx, "get", http.MethodGet, c.itemURL(id), nil)
	if err != nil {
		return service.Task{}, err
	}
	rec, err := wire.DecodeRecord(bytes.NewReader(body))
	if err != nil {
		return service.Task{}, &service.NetworkError{Op: "get", Err: err}
	}
	task := wire.FromWire(rec)
	if task.ID == "" {
		task.ID = id
	}
	return task, nil
}

// Update replaces the task with the given id.
func (c *Client) Update(ctx context.Context, id string, task service.Task) error {
	task.ID = id
	_, err := c.do(ctx, "update", http.MethodPut, c.itemURL(id), wire.ToWire(task))
	return err
}

// Delete removes the task with the given id.
func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.do(ctx, "delete", http.MethodDelete, c.itemURL(id), nil)
	return err
}

func (c *Client) itemURL(id string) string {
	return c.collection + "/" + url.PathEscape(id)
}

// do sends one request and returns the body of a 2xx response. Transport
// failures become *service.NetworkError, other statuses *service.ServiceError.
func (c *Client) do(ctx context.Context, op, method, target string, payload wire.Record) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reqBody io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s: encode task: %w", op, err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &service.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return nil, &service.ServiceError{Op: op, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, &service.NetworkError{Op: op, Err: err}
	}
	return bytes.TrimSpace(body), nil
}
