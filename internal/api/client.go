// Package api is the thin client for the remote storefront API. Every call
// goes through one normalization path: the body is read once, non-JSON and
// malformed responses become typed errors with diagnostic detail, and
// non-2xx responses surface the server's message field when it has one.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/flicky/go-storefront-client/internal/config"
	"github.com/flicky/go-storefront-client/internal/model"
)

var ErrProductNotFound = errors.New("product not found")

// snippetLimit bounds how much of a non-JSON body is kept for diagnostics.
const snippetLimit = 200

type Client struct {
	baseURL      string
	http         *http.Client
	extraHeaders map[string]string
	log          *slog.Logger
}

func New(cfg config.APIConfig, log *slog.Logger) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		http:         &http.Client{Timeout: cfg.Timeout},
		extraHeaders: map[string]string{},
		log:          log,
	}
	if cfg.TunnelBypassHeader != "" {
		if name, value, ok := strings.Cut(cfg.TunnelBypassHeader, ":"); ok {
			c.extraHeaders[strings.TrimSpace(name)] = strings.TrimSpace(value)
		}
	}
	return c
}

func (c *Client) Products(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if err := c.do(ctx, http.MethodGet, "/products", "", nil, &products); err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}
	return products, nil
}

// ProductByID tries the single-item endpoint first and falls back to
// fetching the full list and filtering client-side, for backends that only
// expose /products.
func (c *Client) ProductByID(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), "", nil, &product)
	if err == nil {
		return &product, nil
	}
	c.log.Debug("single-product endpoint failed, falling back to list", "id", id, "error", err)

	products, err := c.Products(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, ErrProductNotFound
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	if err := c.do(ctx, http.MethodPost, "/users/register", "", req, nil); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return nil
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (*model.UserSession, error) {
	var session model.UserSession
	if err := c.do(ctx, http.MethodPost, "/users/login", "", req, &session); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &session, nil
}

func (c *Client) CreateOrder(ctx context.Context, token string, productIDs []int64) (*model.Order, error) {
	var order model.Order
	req := CreateOrderRequest{Products: productIDs}
	if err := c.do(ctx, http.MethodPost, "/orders", token, req, &order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &order, nil
}

func (c *Client) Orders(ctx context.Context, token string) ([]model.Order, error) {
	var orders []model.Order
	if err := c.do(ctx, http.MethodGet, "/users/orders", token, nil, &orders); err != nil {
		return nil, fmt.Errorf("fetch orders: %w", err)
	}
	return orders, nil
}

// do runs one normalized request/response cycle. token may be empty for
// unauthenticated endpoints; out may be nil when the payload is discarded.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", bearerValue(token))
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	for name, value := range c.extraHeaders {
		req.Header.Set(name, value)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if !strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		return &Error{
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("non-JSON response (status %d)", resp.StatusCode),
			Snippet: snippet(raw),
		}
	}

	// An empty body parses as an empty object, matching servers that send
	// Content-Length: 0 on success.
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("{}")
	}

	// Parse before looking at the status so an unparseable body is reported
	// as malformed JSON no matter what the server claimed to return.
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return &Error{
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("malformed JSON (status %d): %v", resp.StatusCode, err),
			Snippet: snippet(raw),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if obj, ok := parsed.(map[string]any); ok {
			if m, ok := obj["message"].(string); ok && m != "" {
				msg = m
			}
		}
		return &Error{Status: resp.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return &Error{
				Status:  resp.StatusCode,
				Message: fmt.Sprintf("malformed JSON (status %d): %v", resp.StatusCode, err),
				Snippet: snippet(raw),
			}
		}
	}
	return nil
}

// bearerValue avoids double-prefixing tokens that already carry the scheme.
func bearerValue(token string) string {
	if strings.HasPrefix(token, "Bearer ") {
		return token
	}
	return "Bearer " + token
}

func snippet(raw []byte) string {
	s := strings.Join(strings.Fields(string(raw)), " ")
	if len(s) > snippetLimit {
		// Back up to a rune boundary so truncation never splits a
		// multi-byte character.
		cut := snippetLimit
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	return s
}
