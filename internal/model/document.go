package model

import "encoding/json"

const (
	ProductType = "product"
	ImageType   = "image"
)

// ProductDocument is the shape written to the content store.
type ProductDocument struct {
	Type               string          `json:"_type"`
	ID                 json.RawMessage `json:"id,omitempty"`
	Name               string          `json:"name"`
	Image              Image           `json:"image"`
	Price              float64         `json:"price"`
	Description        string          `json:"description"`
	DiscountPercentage float64         `json:"discountPercentage"`
	IsFeaturedProduct  bool            `json:"isFeaturedProduct"`
	StockLevel         float64         `json:"stockLevel"`
	Category           string          `json:"category"`
}

type Image struct {
	Type  string    `json:"_type"`
	Asset Reference `json:"asset"`
}

type Reference struct {
	Ref string `json:"_ref"`
}

// NewImage builds an image field pointing at an uploaded asset.
func NewImage(assetID string) Image {
	return Image{Type: ImageType, Asset: Reference{Ref: assetID}}
}
