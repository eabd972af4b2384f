package mongodb

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/MuthuprabhaT/BlendCart/internal/domain"
)

// productDoc is the stored shape of a product: one document per product with
// its reviews embedded.
type productDoc struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty"`
	User         string               `bson:"user"`
	Name         string               `bson:"name"`
	Image        string               `bson:"image"`
	Brand        string               `bson:"brand"`
	Category     string               `bson:"category"`
	Description  string               `bson:"description"`
	Price        primitive.Decimal128 `bson:"price"`
	CountInStock int                  `bson:"countInStock"`
	Rating       float64              `bson:"rating"`
	NumReviews   int                  `bson:"numReviews"`
	Reviews      []reviewDoc          `bson:"reviews"`
	CreatedAt    time.Time            `bson:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt"`
}

type reviewDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	Name      string             `bson:"name"`
	Rating    int                `bson:"rating"`
	Comment   string             `bson:"comment"`
	User      string             `bson:"user"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("convert price %s: %w", d, err)
	}
	return v, nil
}

func toProductDoc(p *domain.Product) (productDoc, error) {
	price, err := toDecimal128(p.Price)
	if err != nil {
		return productDoc{}, err
	}

	doc := productDoc{
		User:         p.OwnerID,
		Name:         p.Name,
		Image:        p.Image,
		Brand:        p.Brand,
		Category:     p.Category,
		Description:  p.Description,
		Price:        price,
		CountInStock: p.CountInStock,
		Rating:       p.Rating,
		NumReviews:   p.NumReviews,
		Reviews:      make([]reviewDoc, 0, len(p.Reviews)),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	for _, r := range p.Reviews {
		rd, err := toReviewDoc(r)
		if err != nil {
			return productDoc{}, err
		}
		doc.Reviews = append(doc.Reviews, rd)
	}
	return doc, nil
}

func toReviewDoc(r domain.Review) (reviewDoc, error) {
	id := primitive.NewObjectID()
	if r.ID != "" {
		var err error
		if id, err = primitive.ObjectIDFromHex(r.ID); err != nil {
			return reviewDoc{}, fmt.Errorf("parse review id: %w", err)
		}
	}
	return reviewDoc{
		ID:        id,
		Name:      r.Name,
		Rating:    r.Rating,
		Comment:   r.Comment,
		User:      r.UserID,
		CreatedAt: r.CreatedAt,
	}, nil
}

func (d productDoc) toDomain() (domain.Product, error) {
	price, err := decimal.NewFromString(d.Price.String())
	if err != nil {
		return domain.Product{}, fmt.Errorf("parse price: %w", err)
	}

	p := domain.Product{
		ID:           d.ID.Hex(),
		OwnerID:      d.User,
		Name:         d.Name,
		Image:        d.Image,
		Brand:        d.Brand,
		Category:     d.Category,
		Description:  d.Description,
		Price:        price,
		CountInStock: d.CountInStock,
		Rating:       d.Rating,
		NumReviews:   d.NumReviews,
		Reviews:      make([]domain.Review, 0, len(d.Reviews)),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	for _, r := range d.Reviews {
		p.Reviews = append(p.Reviews, domain.Review{
			ID:        r.ID.Hex(),
			Name:      r.Name,
			Rating:    r.Rating,
			Comment:   r.Comment,
			UserID:    r.User,
			CreatedAt: r.CreatedAt,
		})
	}
	return p, nil
}
