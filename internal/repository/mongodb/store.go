// Package mongodb implements repository.CatalogStore on MongoDB with reviews
// embedded in the product document.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/MuthuprabhaT/BlendCart/internal/domain"
	"github.com/MuthuprabhaT/BlendCart/internal/repository"
	"github.com/MuthuprabhaT/BlendCart/pkg/database"
	apperrors "github.com/MuthuprabhaT/BlendCart/pkg/errors"
)

// CollectionName is the products collection.
const CollectionName = "products"

// Store implements repository.CatalogStore using MongoDB.
type Store struct {
	db   *mongo.Database
	coll *mongo.Collection
}

var _ repository.CatalogStore = (*Store)(nil)

// NewStore creates a MongoDB-backed catalog store on db.
func NewStore(db *mongo.Database) *Store {
	return &Store{db: db, coll: db.Collection(CollectionName)}
}

// EnsureIndexes creates the indexes used by listing and top-rated queries.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "rating", Value: -1}, {Key: "_id", Value: 1}}},
		{Keys: bson.D{{Key: "reviews.user", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create product indexes: %w", err)
	}
	return nil
}

// keywordFilter matches names containing keyword, case-insensitively, with
// regex metacharacters taken literally.
func keywordFilter(filter repository.ProductFilter) bson.D {
	if filter.Keyword == "" {
		return bson.D{}
	}
	return bson.D{{Key: "name", Value: primitive.Regex{Pattern: regexp.QuoteMeta(filter.Keyword), Options: "i"}}}
}

func findOptions(opts repository.FindOptions) *options.FindOptions {
	fo := options.Find()
	if opts.Sort == repository.SortRatingDesc {
		fo.SetSort(bson.D{{Key: "rating", Value: -1}, {Key: "_id", Value: 1}})
	} else {
		fo.SetSort(bson.D{{Key: "_id", Value: 1}})
	}
	if opts.Offset > 0 {
		fo.SetSkip(int64(opts.Offset))
	}
	if opts.Limit > 0 {
		fo.SetLimit(int64(opts.Limit))
	}
	return fo
}

// appendReviewFilter matches the product only while userID has not reviewed it.
func appendReviewFilter(id primitive.ObjectID, userID string) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "reviews.user", Value: bson.D{{Key: "$ne", Value: userID}}},
	}
}

// appendReviewUpdate is a pipeline update that appends r and recomputes
// numReviews and rating from the resulting array in the same write.
func appendReviewUpdate(r reviewDoc, now time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "reviews", Value: bson.D{{Key: "$concatArrays", Value: bson.A{
				bson.D{{Key: "$ifNull", Value: bson.A{"$reviews", bson.A{}}}},
				bson.D{{Key: "$literal", Value: bson.A{r}}},
			}}}},
		}}},
		{{Key: "$set", Value: bson.D{
			{Key: "numReviews", Value: bson.D{{Key: "$size", Value: "$reviews"}}},
			{Key: "rating", Value: bson.D{{Key: "$avg", Value: "$reviews.rating"}}},
			{Key: "updatedAt", Value: now},
		}}},
	}
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperrors.NotFound(repository.ProductResource)
	}
	return oid, nil
}

// Count implements repository.CatalogStore.
func (s *Store) Count(ctx context.Context, filter repository.ProductFilter) (n int, err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemMongo, "CountProducts", "products.countDocuments")
	defer func() { end(err) }()

	c, err := s.coll.CountDocuments(ctx, keywordFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return int(c), nil
}

// Find implements repository.CatalogStore.
func (s *Store) Find(ctx context.Context, opts repository.FindOptions) (products []domain.Product, err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemMongo, "FindProducts", "products.find")
	defer func() { end(err) }()

	cur, err := s.coll.Find(ctx, keywordFilter(opts.Filter), findOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer cur.Close(ctx)

	products = []domain.Product{}
	for cur.Next(ctx) {
		var doc productDoc
		if err = cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode product: %w", err)
		}
		p, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err = cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

// GetByID implements repository.CatalogStore.
func (s *Store) GetByID(ctx context.Context, id string) (p *domain.Product, err error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	ctx, end := database.TraceQuery(ctx, database.SystemMongo, "GetProduct", "products.findOne")
	defer func() { end(err) }()

	var doc productDoc
	if err = s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound(repository.ProductResource)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	out, err := doc.toDomain()
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Create implements repository.CatalogStore.
func (s *Store) Create(ctx context.Context, p *domain.Product) (err error) {
	doc, err := toProductDoc(p)
	if err != nil {
		return err
	}
	doc.ID = primitive.NewObjectID()

	ctx, end := database.TraceQuery(ctx, database.SystemMongo, "CreateProduct", "products.insertOne")
	defer func() { end(err) }()

	if _, err = s.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	p.ID = doc.ID.Hex()
	if p.Reviews == nil {
		p.Reviews = []domain.Review{}
	}
	return nil
}

// Update implements repository.CatalogStore.
func (s *Store) Update(ctx context.Context, p *domain.Product) (err error) {
	oid, err := parseID(p.ID)
	if err != nil {
		return err
	}
	price, err := toDecimal128(p.Price)
	if err != nil {
		return err
	}

	ctx, end := database.TraceQuery(ctx, database.SystemMongo, "UpdateProduct", "products.updateOne")
	defer func() { end(err) }()

	res, err := s.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: oid}}, bson.D{{Key: "$set", Value: bson.D{
		{Key: "name", Value: p.Name},
		{Key: "price", Value: price},
		{Key: "description", Value: p.Description},
		{Key: "image", Value: p.Image},
		{Key: "brand", Value: p.Brand},
		{Key: "category", Value: p.Category},
		{Key: "countInStock", Value: p.CountInStock},
		{Key: "updatedAt", Value: p.UpdatedAt},
	}}})
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound(repository.ProductResource)
	}
	return nil
}

// Delete implements repository.CatalogStore.
func (s *Store) Delete(ctx context.Context, id string) (err error) {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	ctx, end := database.TraceQuery(ctx, database.SystemMongo, "DeleteProduct", "products.deleteOne")
	defer func() { end(err) }()

	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.NotFound(repository.ProductResource)
	}
	return nil
}

// AppendReview implements repository.CatalogStore.
func (s *Store) AppendReview(ctx context.Context, productID string, r *domain.Review) (err error) {
	oid, err := parseID(productID)
	if err != nil {
		return err
	}
	doc, err := toReviewDoc(*r)
	if err != nil {
		return err
	}

	ctx, end := database.TraceQuery(ctx, database.SystemMongo, "AppendReview", "products.updateOne")
	defer func() { end(err) }()

	res, err := s.coll.UpdateOne(ctx, appendReviewFilter(oid, r.UserID), appendReviewUpdate(doc, r.CreatedAt))
	if err != nil {
		return fmt.Errorf("append review: %w", err)
	}
	if res.MatchedCount > 0 {
		r.ID = doc.ID.Hex()
		return nil
	}

	n, err := s.coll.CountDocuments(ctx, bson.D{{Key: "_id", Value: oid}}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("check product exists: %w", err)
	}
	if n == 0 {
		return apperrors.NotFound(repository.ProductResource)
	}
	return apperrors.DuplicateReview(repository.ProductResource)
}

// Ping implements repository.CatalogStore.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.Client().Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping mongo: %w", err)
	}
	return nil
}
