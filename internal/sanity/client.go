// Package sanity talks to the Sanity HTTP API: image asset uploads, document
// mutations and GROQ queries.
package sanity

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
)

const errorBodyLimit = 512

type Config struct {
	ProjectID  string
	Dataset    string
	Token      string
	APIVersion string
	UseCDN     bool
}

type Client struct {
	cfg     Config
	http    *http.Client
	apiBase string
	cdnBase string
}

type Option func(*Client)

// WithBaseURLs overrides the write and read hosts derived from the project id.
func WithBaseURLs(api, cdn string) Option {
	return func(c *Client) {
		c.apiBase = strings.TrimRight(api, "/")
		c.cdnBase = strings.TrimRight(cdn, "/")
	}
}

func NewClient(cfg Config, httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	cfg.APIVersion = strings.TrimPrefix(cfg.APIVersion, "v")

	c := &Client{
		cfg:     cfg,
		http:    httpClient,
		apiBase: fmt.Sprintf("https://%s.api.sanity.io", cfg.ProjectID),
		cdnBase: fmt.Sprintf("https://%s.apicdn.sanity.io", cfg.ProjectID),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UploadImage stores the bytes as an image asset and returns its document id.
func (c *Client) UploadImage(ctx context.Context, upload ImageUpload) (Asset, error) {
	endpoint := c.endpoint(c.apiBase, "assets/images")
	if upload.Filename != "" {
		endpoint += "?" + url.Values{"filename": {upload.Filename}}.Encode()
	}

	contentType := upload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	var resp assetResponse
	if err := c.do(ctx, "upload asset", http.MethodPost, endpoint, contentType, bytes.NewReader(upload.Data), &resp); err != nil {
		return Asset{}, err
	}
	if resp.Document.ID == "" {
		return Asset{}, errors.New("upload asset: response carried no asset id")
	}
	return resp.Document, nil
}

// CreateDocument runs a single create mutation. The store assigns the _id.
func (c *Client) CreateDocument(ctx context.Context, doc any) (CreatedDocument, error) {
	body, err := json.Marshal(mutationRequest{Mutations: []mutation{{Create: doc}}})
	if err != nil {
		return CreatedDocument{}, fmt.Errorf("create document: %w", err)
	}

	endpoint := c.endpoint(c.apiBase, "data/mutate") + "?returnIds=true&returnDocuments=true"

	var resp mutationResponse
	if err := c.do(ctx, "create document", http.MethodPost, endpoint, "application/json", bytes.NewReader(body), &resp); err != nil {
		return CreatedDocument{}, err
	}
	if len(resp.Results) == 0 {
		return CreatedDocument{}, fmt.Errorf("create document: empty mutation result (transaction %s)", resp.TransactionID)
	}

	res := resp.Results[0]
	return CreatedDocument{ID: res.ID, TransactionID: resp.TransactionID, Document: res.Document}, nil
}

// CountDocuments counts the documents of one _type. Reads go through the CDN
// host when UseCDN is set.
func (c *Client) CountDocuments(ctx context.Context, docType string) (int, error) {
	base := c.apiBase
	if c.cfg.UseCDN {
		base = c.cdnBase
	}

	param, err := json.Marshal(docType)
	if err != nil {
		return 0, err
	}
	q := url.Values{
		"query": {"count(*[_type == $type])"},
		"$type": {string(param)},
	}
	endpoint := c.endpoint(base, "data/query") + "?" + q.Encode()

	var resp queryResponse[int]
	if err := c.do(ctx, "count documents", http.MethodGet, endpoint, "", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Result, nil
}

func (c *Client) endpoint(base, path string) string {
	return fmt.Sprintf("%s/v%s/%s/%s", base, c.cfg.APIVersion, path, url.PathEscape(c.cfg.Dataset))
}

func (c *Client) do(ctx context.Context, op, method, endpoint, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: request failed: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return &APIError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(excerpt))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return nil
}
