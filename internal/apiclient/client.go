// Package apiclient talks to the remote commerce API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxErrorBody bounds how much of an error response is read for its message.
const maxErrorBody = 64 << 10

// Client is an HTTP client for the remote API. Once a bearer token is set it
// is attached to every request until it is cleared.
type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger

	mu    sync.RWMutex
	token string
}

// New creates a client for baseURL (for example "http://localhost:5000/api").
func New(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "api-client").Logger(),
	}
}

// SetToken sets the bearer token for later requests. An empty token removes
// the Authorization header.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Login posts credentials to /auth/login.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (*model.AuthResponse, error) {
	var out model.AuthResponse
	if err := c.sendJSON(ctx, http.MethodPost, "/auth/login", creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register posts registration details to /auth/register.
func (c *Client) Register(ctx context.Context, reg model.Registration) (*model.AuthResponse, error) {
	var out model.AuthResponse
	if err := c.sendJSON(ctx, http.MethodPost, "/auth/register", reg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListProducts fetches the remote catalogue.
func (c *Client) ListProducts(ctx context.Context) ([]model.Product, error) {
	var out []model.Product
	if err := c.do(ctx, http.MethodGet, "/products", nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateProduct submits a multipart product form to POST /products.
func (c *Client) CreateProduct(ctx context.Context, in model.ProductInput) (*model.Product, error) {
	return c.sendProduct(ctx, http.MethodPost, "/products", in)
}

// UpdateProduct submits a multipart product form to PUT /products/{id}.
func (c *Client) UpdateProduct(ctx context.Context, id string, in model.ProductInput) (*model.Product, error) {
	return c.sendProduct(ctx, http.MethodPut, "/products/"+url.PathEscape(id), in)
}

// DeleteProduct removes a product with DELETE /products/{id}.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/products/"+url.PathEscape(id), nil, "", nil)
}

// ListOrders fetches submitted orders from /order/orders.
func (c *Client) ListOrders(ctx context.Context) ([]model.OrderSummary, error) {
	var out []model.OrderSummary
	if err := c.do(ctx, http.MethodGet, "/order/orders", nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCheckout submits an order to /order/createCheckout.
func (c *Client) CreateCheckout(ctx context.Context, order model.Order) (*model.CheckoutResponse, error) {
	var out model.CheckoutResponse
	if err := c.sendJSON(ctx, http.MethodPost, "/order/createCheckout", order, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) sendProduct(ctx context.Context, method, path string, in model.ProductInput) (*model.Product, error) {
	body, contentType, err := encodeProductForm(in)
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := c.do(ctx, method, path, body, contentType, &raw); err != nil {
		return nil, err
	}

	// The API wraps the record as {"product": {...}}; accept a bare record too.
	var wrapped struct {
		Product *model.Product `json:"product"`
	}
	var p model.Product
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Product != nil {
		p = *wrapped.Product
	} else if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to decode product response: %w", err)
	}
	if p.ID == "" {
		return nil, fmt.Errorf("%s %s: %w", method, path, ErrMissingProduct)
	}
	return &p, nil
}

func encodeProductForm(in model.ProductInput) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := []struct{ name, value string }{
		{"name", in.Name},
		{"description", in.Description},
		{"price", in.Price},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("failed to write form field %s: %w", f.name, err)
		}
	}

	if in.Image != nil {
		part, err := w.CreateFormFile("image", in.Image.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create image part: %w", err)
		}
		if _, err := part.Write(in.Image.Data); err != nil {
			return nil, "", fmt.Errorf("failed to write image part: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request for %s: %w", path, err)
	}
	return c.do(ctx, method, path, bytes.NewReader(data), "application/json", out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request %s %s: %w", method, path, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("method", method).Str("path", path).Msg("remote request failed")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("remote request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Method: method, Path: path}

		var payload struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&payload); err == nil {
			apiErr.Message = payload.Message
			if apiErr.Message == "" {
				apiErr.Message = payload.Error
			}
		}

		c.logger.Warn().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("message", apiErr.Message).
			Msg("remote request rejected")
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}
