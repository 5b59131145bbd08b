package migration

import (
	"net/url"
	"path"
	"strings"

	"prodmigrate/internal/model"
)

func buildDocument(p *model.SourceProduct, price float64, assetID string) model.ProductDocument {
	category := string(p.Category)
	if category == "" {
		category = model.DefaultCategory
	}

	return model.ProductDocument{
		Type:               model.ProductType,
		ID:                 p.ID,
		Name:               p.Name,
		Image:              model.NewImage(assetID),
		Price:              price,
		Description:        string(p.Description),
		DiscountPercentage: float64(p.DiscountPercentage),
		IsFeaturedProduct:  bool(p.IsFeaturedProduct),
		StockLevel:         float64(p.StockLevel),
		Category:           category,
	}
}

// filenameHint returns the last path segment of an image URL, "" when there is none.
func filenameHint(imageURL string) string {
	u, err := url.Parse(imageURL)
	if err != nil {
		return imageURL[strings.LastIndex(imageURL, "/")+1:]
	}
	if u.Path == "" || strings.HasSuffix(u.Path, "/") {
		return ""
	}
	return path.Base(u.Path)
}
