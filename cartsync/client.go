// client.go - HTTP client for the cart endpoints

package cartsync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cafesantander/apperr"
	"cafesantander/cart"
	"cafesantander/response"
)

// APIClient calls the storefront API with a bearer token.
type APIClient struct {
	BaseURL string // e.g. http://localhost:5000
	Token   string
	HTTP    *http.Client
}

func NewAPIClient(baseURL, token string) *APIClient {
	return &APIClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Cart fetches the caller's active cart.
func (a *APIClient) Cart(ctx context.Context) (cart.Contents, error) {
	var out cart.Contents
	err := a.do(ctx, http.MethodGet, "/cart", nil, &out)
	return out, err
}

func (a *APIClient) Add(ctx context.Context, productID uint, quantity int) error {
	return a.do(ctx, http.MethodPost, "/cart/add", map[string]interface{}{"productId": productID, "quantity": quantity}, nil)
}

func (a *APIClient) Update(ctx context.Context, itemID uint, quantity int) error {
	return a.do(ctx, http.MethodPut, fmt.Sprintf("/cart/update/%d", itemID), map[string]int{"quantity": quantity}, nil)
}

func (a *APIClient) Remove(ctx context.Context, itemID uint) error {
	return a.do(ctx, http.MethodDelete, fmt.Sprintf("/cart/remove/%d", itemID), nil, nil)
}

func (a *APIClient) Clear(ctx context.Context) error {
	return a.do(ctx, http.MethodDelete, "/cart/clear", nil, nil)
}

// do sends one request and decodes the envelope. Failed envelopes come back as *apperr.Error.
func (a *APIClient) do(ctx context.Context, method, path string, body interface{}, out *cart.Contents) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, a.BaseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if a.Token != "" {
		req.Header.Set("Authorization", "Bearer "+a.Token)
	}

	client := a.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return apperr.Unexpected("cart request failed", err)
	}
	defer resp.Body.Close()

	var env response.Envelope[cart.Contents]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return apperr.Unexpected(fmt.Sprintf("unreadable response (HTTP %d)", resp.StatusCode), err)
	}
	if err := env.Err(); err != nil {
		return err
	}
	if out != nil {
		*out = env.Data
	}
	return nil
}

// SocketURL derives the cart push endpoint from the API base URL.
func (a *APIClient) SocketURL() string {
	u := a.BaseURL + "/cart/ws"
	switch {
	case strings.HasPrefix(u, "https://"):
		return "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		return "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u
}
