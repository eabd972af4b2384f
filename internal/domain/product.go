package domain

import (
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/MuthuprabhaT/BlendCart/pkg/errors"
)

// Placeholder values given to a freshly created draft product.
const (
	DraftName        = "Sample name"
	DraftImage       = "/images/sample.jpg"
	DraftBrand       = "Sample brand"
	DraftCategory    = "Sample category"
	DraftDescription = "Sample description"
)

// Prices are stored as NUMERIC(12,2): at most two decimal places and ten
// integer digits.
const PriceScale = 2

// MaxPrice is the largest price a product can carry.
var MaxPrice = decimal.RequireFromString("9999999999.99")

// DefaultTopRatedLimit is the number of products returned by the top-rated
// listing when the caller does not ask for a specific count.
const DefaultTopRatedLimit = 3

// Product is a catalog entry together with its embedded reviews.
// NumReviews and Rating are derived from Reviews and are only ever written by
// the store's atomic review append.
type Product struct {
	ID           string          `json:"_id"`
	OwnerID      string          `json:"user"`
	Name         string          `json:"name"`
	Image        string          `json:"image"`
	Brand        string          `json:"brand"`
	Category     string          `json:"category"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	CountInStock int             `json:"countInStock"`
	Rating       float64         `json:"rating"`
	NumReviews   int             `json:"numReviews"`
	Reviews      []Review        `json:"reviews"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// NewDraftProduct returns a product owned by ownerID carrying placeholder
// values only. It becomes meaningful through a later full update.
func NewDraftProduct(ownerID string, now time.Time) *Product {
	return &Product{
		OwnerID:      ownerID,
		Name:         DraftName,
		Image:        DraftImage,
		Brand:        DraftBrand,
		Category:     DraftCategory,
		Description:  DraftDescription,
		Price:        decimal.Zero,
		CountInStock: 0,
		Reviews:      []Review{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// ProductFields is the editable field set. An update replaces all of them;
// a field left out of the request is cleared.
type ProductFields struct {
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price" validate:"gte=0,lte=9999999999.99"`
	Description  string          `json:"description"`
	Image        string          `json:"image"`
	Brand        string          `json:"brand"`
	Category     string          `json:"category"`
	CountInStock int             `json:"countInStock" validate:"gte=0"`
}

// Validate enforces the price range and scale and the non-negative stock.
// A price the store would round or overflow is rejected here instead.
func (f ProductFields) Validate() error {
	if f.Price.IsNegative() {
		return apperrors.InvalidInput("price must not be negative")
	}
	if f.Price.GreaterThan(MaxPrice) {
		return apperrors.InvalidInput("price must not exceed " + MaxPrice.StringFixed(PriceScale))
	}
	if !f.Price.Equal(f.Price.Truncate(PriceScale)) {
		return apperrors.InvalidInput("price must have at most 2 decimal places")
	}
	if f.CountInStock < 0 {
		return apperrors.InvalidInput("countInStock must not be negative")
	}
	return nil
}

// Apply overwrites the editable fields of p with f.
func (p *Product) Apply(f ProductFields, now time.Time) {
	p.Name = f.Name
	p.Price = f.Price
	p.Description = f.Description
	p.Image = f.Image
	p.Brand = f.Brand
	p.Category = f.Category
	p.CountInStock = f.CountInStock
	p.UpdatedAt = now
}

// ProductPage is one page of a keyword listing.
type ProductPage struct {
	Products []Product `json:"products"`
	Page     int       `json:"page"`
	Pages    int       `json:"pages"`
}
