package model

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// DefaultCategory is applied when a source record has no category.
const DefaultCategory = "Uncategorized"

var ErrInvalidPrice = errors.New("price is not a number")

// SourceProduct is one element of the product API's JSON array.
type SourceProduct struct {
	ID                 json.RawMessage `json:"id"`
	Name               string          `json:"name"`
	Price              Price           `json:"price"`
	ImagePath          string          `json:"imagePath"`
	Description        Text            `json:"description"`
	DiscountPercentage Number          `json:"discountPercentage"`
	IsFeaturedProduct  Flag            `json:"isFeaturedProduct"`
	StockLevel         Number          `json:"stockLevel"`
	Category           Text            `json:"category"`
}

// MissingFields lists the required fields that are absent or empty.
func (p *SourceProduct) MissingFields() []string {
	var missing []string
	if p.ImagePath == "" {
		missing = append(missing, "imagePath")
	}
	if p.Name == "" {
		missing = append(missing, "name")
	}
	if !p.Price.Present() {
		missing = append(missing, "price")
	}
	return missing
}

// Price keeps the raw JSON value, the upstream API sends either a number or a numeric string.
type Price struct {
	raw json.RawMessage
}

func (p *Price) UnmarshalJSON(b []byte) error {
	p.raw = append(p.raw[:0], b...)
	return nil
}

func (p Price) MarshalJSON() ([]byte, error) {
	if len(p.raw) == 0 {
		return []byte("null"), nil
	}
	return p.raw, nil
}

// Present reports whether a price was sent at all. Zero and "" count as absent.
func (p Price) Present() bool {
	return truthy(p.raw)
}

func (p Price) Float64() (float64, error) {
	raw := strings.TrimSpace(string(p.raw))
	if raw == "" || raw == "null" {
		return 0, ErrInvalidPrice
	}

	text := raw
	if raw[0] == '"' {
		if err := json.Unmarshal([]byte(raw), &text); err != nil {
			return 0, ErrInvalidPrice
		}
		text = strings.TrimSpace(text)
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidPrice
	}
	return v, nil
}

// Flag accepts any JSON value and reduces it to a boolean by truthiness.
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	*f = Flag(truthy(b))
	return nil
}

// Number accepts a JSON number or numeric string. Anything else decodes to 0.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	var p Price
	_ = p.UnmarshalJSON(b)
	v, err := p.Float64()
	if err != nil {
		v = 0
	}
	*n = Number(v)
	return nil
}

// Text accepts a JSON string as is and renders numbers and true as their JSON
// text. Falsy values, objects and arrays decode to "".
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	switch {
	case !truthy(b), raw[0] == '{', raw[0] == '[':
		*t = ""
	case raw[0] == '"':
		var s string
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			*t = ""
			return nil
		}
		*t = Text(s)
	default:
		*t = Text(raw)
	}
	return nil
}

// truthy treats null, false, 0 and "" as false and every other value as true.
func truthy(raw []byte) bool {
	s := strings.TrimSpace(string(raw))
	switch {
	case s == "", s == "null", s == "false", s == `""`:
		return false
	case s[0] == '-' || (s[0] >= '0' && s[0] <= '9'):
		v, err := strconv.ParseFloat(s, 64)
		return err != nil || v != 0
	}
	return true
}
