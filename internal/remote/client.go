// Package remote talks to the catalog REST API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iyhunko/inventory-console/internal/model"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrRemote matches any *RemoteError.
var ErrRemote = errors.New("remote catalog call failed")

// Op names a remote catalog operation.
type Op string

const (
	OpList   Op = "list"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// RemoteError reports a transport failure or a non-2xx response.
type RemoteError struct {
	Op     Op
	ID     model.ID
	Status int
	Err    error
}

func (e *RemoteError) Error() string {
	var b strings.Builder
	b.WriteString("remote ")
	b.WriteString(string(e.Op))
	if e.ID != "" {
		b.WriteString(" " + e.ID.String())
	}
	if e.Status != 0 {
		fmt.Fprintf(&b, ": status %d", e.Status)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

func (e *RemoteError) Is(target error) bool {
	return target == ErrRemote
}

// ErrMissingServerID is wrapped in a RemoteError when a create response carries no id.
var ErrMissingServerID = errors.New("create response carries no id")

// Client is the products resource of the catalog API.
type Client interface {
	List(ctx context.Context) ([]model.RemoteProduct, error)
	Create(ctx context.Context, payload model.ProductPayload) (model.ID, error)
	Update(ctx context.Context, id model.ID, payload model.ProductPayload) error
	Delete(ctx context.Context, id model.ID) error
}

// HTTPClient implements Client over JSON/HTTP.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	timeout    time.Duration
}

// NewHTTPClient creates a client for the catalog at baseURL. Every call is bounded by timeout.
func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid catalog URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid catalog URL %q: scheme and host are required", baseURL)
	}
	return &HTTPClient{
		baseURL: u,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		timeout: timeout,
	}, nil
}

// List fetches the whole catalog.
func (c *HTTPClient) List(ctx context.Context) ([]model.RemoteProduct, error) {
	var items []model.RemoteProduct
	if err := c.do(ctx, OpList, "", http.MethodGet, "/products", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Create submits a new product and returns the id assigned by the catalog.
func (c *HTTPClient) Create(ctx context.Context, payload model.ProductPayload) (model.ID, error) {
	var created model.CreatedProduct
	if err := c.do(ctx, OpCreate, "", http.MethodPost, "/products", payload, &created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", &RemoteError{Op: OpCreate, Err: ErrMissingServerID}
	}
	return created.ID, nil
}

// Update replaces the product with the given id. The response body is ignored.
func (c *HTTPClient) Update(ctx context.Context, id model.ID, payload model.ProductPayload) error {
	return c.do(ctx, OpUpdate, id, http.MethodPut, "/products/"+url.PathEscape(id.String()), payload, nil)
}

// Delete removes the product with the given id. The response body is ignored.
func (c *HTTPClient) Delete(ctx context.Context, id model.ID) error {
	return c.do(ctx, OpDelete, id, http.MethodDelete, "/products/"+url.PathEscape(id.String()), nil, nil)
}

func (c *HTTPClient) do(ctx context.Context, op Op, id model.ID, method, path string, body, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &RemoteError{Op: op, ID: id, Err: fmt.Errorf("failed to marshal request: %w", err)}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return &RemoteError{Op: op, ID: id, Err: fmt.Errorf("failed to build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RemoteError{Op: op, ID: id, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &RemoteError{Op: op, ID: id, Status: resp.StatusCode}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &RemoteError{Op: op, ID: id, Status: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}
