// Package googletasks implements the service.Service interface using Google Tasks API.
//
// A board maps onto one task list. Google Tasks only knows "needsAction" and
// "completed", so IN_PROGRESS is stored as needsAction; priority and assignee
// are not stored at all.
package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"taskboard/internal/config"
	"taskboard/internal/service"
	"taskboard/internal/wire"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = "@default"

	// PageSize is the number of tasks per page.
	PageSize = 100

	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	// Scope is the OAuth scope for Google Tasks.
	Scope = "https://www.googleapis.com/auth/tasks"

	statusNeedsAction = "needsAction"
	statusCompleted   = "completed"
)

var _ service.Service = (*Client)(nil)

// Client implements service.Service using Google Tasks API.
type Client struct {
	svc    *tasks.Service
	listID string
}

// New creates a new Google Tasks client for cfg.TaskList.
// Requires oauth_client.json and token.json to exist.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	// Load OAuth client config
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth_client.json: %w", err)
	}

	oauthConfig, err := google.ConfigFromJSON(clientJSON, Scope)
	if err != nil {
		return nil, fmt.Errorf("invalid oauth_client.json: %w", err)
	}

	// Load token
	tokenData, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read token.json (run: taskboard login): %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("invalid token.json: %w", err)
	}

	// Token source that auto-refreshes
	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, &token))

	return NewWithHTTPClient(ctx, httpClient, cfg.TaskList)
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
// Extra options such as option.WithEndpoint are passed to the tasks service.
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, listID string, opts ...option.ClientOption) (*Client, error) {
	if listID == "" {
		listID = DefaultListID
	}
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	return &Client{svc: svc, listID: listID}, nil
}

// List returns every task in the list, completed ones included, in API order.
func (c *Client) List(ctx context.Context) ([]service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var result []service.Task
	err := c.svc.Tasks.List(c.listID).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowHidden(true).
		ShowDeleted(false).
		Pages(ctx, func(resp *tasks.Tasks) error {
			for _, t := range resp.Items {
				result = append(result, fromGoogle(t))
			}
			return nil
		})
	if err != nil {
		return nil, wrapError("list", err)
	}
	return result, nil
}

// Create inserts a task and returns it with its new ID.
func (c *Client) Create(ctx context.Context, task service.Task) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	task.ID = ""
	created, err := c.svc.Tasks.Insert(c.listID, toGoogle(task)).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError("create", err)
	}
	return fromGoogle(created), nil
}

// Get fetches one task.
func (c *Client) Get(ctx context.Context, id string) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	t, err := c.svc.Tasks.Get(c.listID, id).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError("get", err)
	}
	return fromGoogle(t), nil
}

// Update replaces the stored title, notes, status and due date.
func (c *Client) Update(ctx context.Context, id string, task service.Task) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	task.ID = id
	_, err := c.svc.Tasks.Update(c.listID, id, toGoogle(task)).Context(ctx).Do()
	if err != nil {
		return wrapError("update", err)
	}
	return nil
}

// Delete deletes a task.
func (c *Client) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	if err := c.svc.Tasks.Delete(c.listID, id).Context(ctx).Do(); err != nil {
		return wrapError("delete", err)
	}
	return nil
}

// fromGoogle runs a Google task through the field mapper, which knows the
// notes/due/needsAction spellings.
func fromGoogle(t *tasks.Task) service.Task {
	return wire.FromWire(wire.Record{
		"id":     t.Id,
		"title":  t.Title,
		"notes":  t.Notes,
		"status": t.Status,
		"due":    t.Due,
	})
}

func toGoogle(t service.Task) *tasks.Task {
	gt := &tasks.Task{
		Id:     t.ID,
		Title:  t.Title,
		Notes:  t.Description,
		Status: statusNeedsAction,
	}
	if t.Status == service.StatusDone {
		gt.Status = statusCompleted
	}
	if d, err := time.Parse(time.DateOnly, t.DueDate); err == nil {
		gt.Due = d.Format(time.RFC3339)
	}
	return gt
}

// wrapError classifies API errors: HTTP statuses become *service.ServiceError,
// everything else (timeouts, refused connections, token refresh) a
// *service.NetworkError.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &service.ServiceError{Op: op, StatusCode: gerr.Code}
	}
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) && rerr.Response != nil {
		return &service.ServiceError{Op: op, StatusCode: http.StatusUnauthorized}
	}
	return &service.NetworkError{Op: op, Err: err}
}
