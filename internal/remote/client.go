// Package remote implements adapter.Adapter against the storefront REST API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"shopsync/internal/adapter"
	"shopsync/internal/model"
	"shopsync/internal/negotiation"
	"shopsync/internal/transport"
)

// serviceName labels upstream errors returned by this client.
const serviceName = "storefront API"

// userAgent identifies this client to the storefront API.
// Some CDNs in front of storefront APIs reject requests without one.
const userAgent = "shopsync/1.0"

// DefaultClientVersion is the API version advertised in Storefront-Client.
const DefaultClientVersion = "v1.0.0"

// Config holds storefront API client configuration.
type Config struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	Fingerprint   bool   // present a browser TLS fingerprint
	ClientVersion string // defaults to DefaultClientVersion
	Logger        *slog.Logger
}

// Client talks to one collection endpoint (/cart or /wishlist).
// Every operation is a single request; nothing is retried or cached.
type Client struct {
	httpClient *http.Client
	baseURL    string
	kind       model.Kind
	version    string
	logger     *slog.Logger
}

// New creates a client for the collection of the given kind.
func New(kind model.Kind, cfg Config) (*Client, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown collection kind %q", kind)
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("API base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid API base URL: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.ClientVersion == "" {
		cfg.ClientVersion = DefaultClientVersion
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	clientHeader, err := negotiation.FormatClientHeader(negotiation.ClientInfo{
		Name:    "shopsync",
		Version: cfg.ClientVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("building %s header: %w", negotiation.ClientHeader, err)
	}

	headers := http.Header{}
	headers.Set("User-Agent", userAgent)
	headers.Set(negotiation.ClientHeader, clientHeader)
	if cfg.APIKey != "" {
		headers.Set("X-API-Key", cfg.APIKey)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: transport.New(transport.Options{
				Timeout:     cfg.Timeout,
				Fingerprint: cfg.Fingerprint,
				Headers:     headers,
			}),
		},
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		kind:    kind,
		version: cfg.ClientVersion,
		logger:  cfg.Logger.With("resource", string(kind), "store", "remote"),
	}, nil
}

// Kind reports which collection this client serves.
func (c *Client) Kind() model.Kind {
	return c.kind
}

// CloseIdleConnections releases pooled connections.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// FetchAll returns the remote collection. Records that fail validation are
// dropped and logged rather than failing the whole read.
func (c *Client) FetchAll(ctx context.Context, token string) ([]model.Item, error) {
	body, err := c.do(ctx, token, http.MethodGet, c.collectionPath(), nil)
	if err != nil {
		return nil, err
	}

	raw, err := decodeItems(body)
	if err != nil {
		return nil, model.NewUpstreamError(serviceName, fmt.Errorf("parsing %s response: %w", c.kind, err))
	}

	items := make([]model.Item, 0, len(raw))
	for _, it := range raw {
		it = it.Normalize(c.kind)
		if err := it.Validate(c.kind); err != nil {
			c.logger.Warn("dropping invalid remote item", "product_id", it.ProductID, "error", err)
			continue
		}
		items = append(items, it)
	}
	return items, nil
}

// Add posts {productId, quantity} for carts and {productId} for wishlists.
func (c *Client) Add(ctx context.Context, token string, productID model.ProductID, quantity int) error {
	if productID == "" {
		return model.NewValidationError("productId", "required")
	}
	req := addRequest{ProductID: productID}
	if c.kind.HasQuantity() {
		if quantity < 1 {
			return model.NewValidationError("quantity", "must be at least 1")
		}
		req.Quantity = quantity
	}
	_, err := c.do(ctx, token, http.MethodPost, c.collectionPath(), req)
	return err
}

func (c *Client) Remove(ctx context.Context, token string, productID model.ProductID) error {
	if productID == "" {
		return model.NewValidationError("productId", "required")
	}
	_, err := c.do(ctx, token, http.MethodDelete, c.itemPath(productID), nil)
	return err
}

// UpdateQuantity sets a cart line's quantity. Wishlists have no quantities,
// so the call fails locally without a request.
func (c *Client) UpdateQuantity(ctx context.Context, token string, productID model.ProductID, quantity int) error {
	if !c.kind.HasQuantity() {
		return model.NewUnsupportedError(c.kind, "quantity updates")
	}
	if productID == "" {
		return model.NewValidationError("productId", "required")
	}
	if quantity < 1 {
		return model.NewValidationError("quantity", "must be at least 1")
	}
	_, err := c.do(ctx, token, http.MethodPut, c.itemPath(productID), quantityRequest{Quantity: quantity})
	return err
}

func (c *Client) Clear(ctx context.Context, token string) error {
	_, err := c.do(ctx, token, http.MethodDelete, c.collectionPath(), nil)
	return err
}

// SyncBatch pushes entries to /{collection}/sync in one request.
// Cart bodies carry {productId, quantity} pairs, wishlist bodies bare ids.
func (c *Client) SyncBatch(ctx context.Context, token string, entries []adapter.SyncEntry) error {
	var body any
	if c.kind.HasQuantity() {
		items := make([]adapter.SyncEntry, 0, len(entries))
		for _, e := range entries {
			if e.Quantity < 1 {
				return model.NewValidationError("quantity", "must be at least 1")
			}
			items = append(items, e)
		}
		body = cartSyncRequest{Items: items}
	} else {
		ids := make([]model.ProductID, 0, len(entries))
		for _, e := range entries {
			ids = append(ids, e.ProductID)
		}
		body = wishlistSyncRequest{Items: ids}
	}
	_, err := c.do(ctx, token, http.MethodPost, c.collectionPath()+"/sync", body)
	return err
}

func (c *Client) collectionPath() string {
	return "/" + string(c.kind)
}

func (c *Client) itemPath(productID model.ProductID) string {
	return c.collectionPath() + "/" + url.PathEscape(string(productID))
}

// do sends one authenticated request and returns the response body.
// Non-success statuses become *model.APIError via parseErrorResponse.
func (c *Client) do(ctx context.Context, token, method, path string, body any) ([]byte, error) {
	if token == "" {
		return nil, model.NewUnauthorizedError("missing bearer token")
	}

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	requestID := uuid.NewString()
	c.setHeaders(req, token, requestID, body != nil)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, model.NewUpstreamError(serviceName, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, model.NewUpstreamError(serviceName, fmt.Errorf("reading response: %w", err))
	}

	c.logger.Debug("remote request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode >= 400 {
		return nil, c.parseErrorResponse(resp.StatusCode, respBody)
	}
	return respBody, nil
}

// setHeaders sets per-request headers. Static headers (User-Agent, API key,
// Storefront-Client) are added by the transport.
func (c *Client) setHeaders(req *http.Request, token, requestID string, hasBody bool) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Request-ID", requestID)
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
}

// parseErrorResponse converts a storefront error body to an APIError.
func (c *Client) parseErrorResponse(statusCode int, body []byte) error {
	var errBody errorResponse
	json.Unmarshal(body, &errBody) // Best effort parse

	if errBody.code() == incompatibleCode {
		apiErr := model.NewIncompatibleError(c.version, "server")
		if msg := errBody.message(); msg != "" {
			apiErr.Message = msg
		}
		return apiErr
	}
	return model.ErrorFromStatus(serviceName, string(c.kind)+" item", statusCode, errBody.message())
}

// decodeItems accepts {"items":[...]} or a bare JSON array.
func decodeItems(body []byte) ([]model.Item, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}
	if body[0] == '[' {
		var items []model.Item
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, err
		}
		return items, nil
	}
	var env itemsEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	return env.Items, nil
}

// Verify Client implements Adapter interface at compile time.
var _ adapter.Adapter = (*Client)(nil)
