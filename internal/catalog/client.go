package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var ErrNotArray = errors.New("product payload is not a JSON array")

// StatusError is returned when the upstream answers with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d for %s", e.StatusCode, e.URL)
}

// Image is the binary content behind a product's imagePath.
type Image struct {
	Data        []byte
	ContentType string
}

type Client struct {
	ProductsURL string
	HTTP        *http.Client
}

func NewClient(productsURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{ProductsURL: productsURL, HTTP: httpClient}
}

// FetchProducts returns the raw elements of the product list so that each
// record can be decoded on its own.
func (c *Client) FetchProducts(ctx context.Context) ([]json.RawMessage, error) {
	body, _, err := c.get(ctx, c.ProductsURL, "application/json")
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrNotArray
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("failed to decode response from %s: %w", c.ProductsURL, err)
	}
	return items, nil
}

func (c *Client) FetchImage(ctx context.Context, url string) (Image, error) {
	body, contentType, err := c.get(ctx, url, "image/*")
	if err != nil {
		return Image{}, err
	}
	return Image{Data: body, ContentType: contentType}, nil
}

func (c *Client) get(ctx context.Context, url, accept string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request for %s: %w", url, err)
	}
	req.Header.Set("Accept", accept)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", url, err)
	}
	return b, resp.Header.Get("Content-Type"), nil
}
