package sanity

import (
	"encoding/json"
	"fmt"
)

type ImageUpload struct {
	Data        []byte
	Filename    string
	ContentType string
}

// Asset is the asset document returned after an upload.
type Asset struct {
	ID  string `json:"_id"`
	URL string `json:"url"`
}

type CreatedDocument struct {
	ID            string
	TransactionID string
	Document      json.RawMessage
}

// APIError carries a non-2xx answer from the Sanity API.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: sanity status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: sanity status %d: %s", e.Op, e.StatusCode, e.Body)
}

type assetResponse struct {
	Document Asset `json:"document"`
}

type mutationRequest struct {
	Mutations []mutation `json:"mutations"`
}

type mutation struct {
	Create any `json:"create,omitempty"`
}

type mutationResponse struct {
	TransactionID string           `json:"transactionId"`
	Results       []mutationResult `json:"results"`
}

type mutationResult struct {
	ID        string          `json:"id"`
	Operation string          `json:"operation"`
	Document  json.RawMessage `json:"document"`
}

type queryResponse[T any] struct {
	Result T   `json:"result"`
	MS     int `json:"ms"`
}
