// Package postgres implements repository.CatalogStore on PostgreSQL. Reviews
// live in their own table and are attached to products on read.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/MuthuprabhaT/BlendCart/internal/domain"
	"github.com/MuthuprabhaT/BlendCart/internal/repository"
	"github.com/MuthuprabhaT/BlendCart/pkg/database"
	apperrors "github.com/MuthuprabhaT/BlendCart/pkg/errors"
)

const productColumns = `id::text, owner_id, name, image, brand, category, description,
	price::text, count_in_stock, rating, num_reviews, created_at, updated_at`

const (
	countSQL = `SELECT count(*) FROM products`

	getByIDSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	insertSQL = `
		INSERT INTO products (id, owner_id, name, image, brand, category, description,
			price, count_in_stock, rating, num_reviews, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::numeric, $9, $10, $11, $12, $13)`

	updateSQL = `
		UPDATE products
		SET name = $1, price = $2::numeric, description = $3, image = $4, brand = $5,
		    category = $6, count_in_stock = $7, updated_at = $8
		WHERE id = $9`

	deleteSQL = `DELETE FROM products WHERE id = $1`

	reviewsSQL = `
		SELECT id::text, product_id::text, user_id, name, rating, comment, created_at
		FROM product_reviews
		WHERE product_id = ANY($1::uuid[])
		ORDER BY created_at, id`

	// appendReviewSQL inserts the review only when the product exists and the
	// user has not reviewed it yet, and folds the new rating into the running
	// mean in the same statement. The products row lock serialises concurrent
	// appends so num_reviews and rating are always read fresh.
	appendReviewSQL = `
		WITH ins AS (
			INSERT INTO product_reviews (id, product_id, user_id, name, rating, comment, created_at)
			SELECT $1::uuid, p.id, $3::text, $4::text, $5::int, $6::text, $7::timestamptz
			FROM products p WHERE p.id = $2
			ON CONFLICT (product_id, user_id) DO NOTHING
			RETURNING product_id, rating
		)
		UPDATE products p
		SET num_reviews = p.num_reviews + 1,
		    rating = (p.rating * p.num_reviews + ins.rating) / (p.num_reviews + 1),
		    updated_at = $7
		FROM ins
		WHERE p.id = ins.product_id`

	existsSQL = `SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`

	pingSQL = `SELECT 1`
)

// Store implements repository.CatalogStore using PostgreSQL.
type Store struct {
	db database.DBTX
}

var _ repository.CatalogStore = (*Store)(nil)

// NewStore creates a PostgreSQL-backed catalog store.
func NewStore(db database.DBTX) *Store {
	return &Store{db: db}
}

// validID reports whether id can be a products primary key. Anything else
// cannot match a row and is treated as not found without a round trip.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// escapeLike makes s match literally inside a LIKE pattern using the default
// backslash escape.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func whereClause(filter repository.ProductFilter) (string, []any) {
	if filter.Keyword == "" {
		return "", nil
	}
	return " WHERE name ILIKE $1", []any{"%" + escapeLike(filter.Keyword) + "%"}
}

// Count implements repository.CatalogStore.
func (s *Store) Count(ctx context.Context, filter repository.ProductFilter) (n int, err error) {
	where, args := whereClause(filter)
	query := countSQL + where

	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "CountProducts", query)
	defer func() { end(err) }()

	if err = s.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// Find implements repository.CatalogStore.
func (s *Store) Find(ctx context.Context, opts repository.FindOptions) (products []domain.Product, err error) {
	where, args := whereClause(opts.Filter)

	var b strings.Builder
	b.WriteString(`SELECT ` + productColumns + ` FROM products`)
	b.WriteString(where)
	if opts.Sort == repository.SortRatingDesc {
		b.WriteString(" ORDER BY rating DESC, created_at, id")
	} else {
		b.WriteString(" ORDER BY created_at, id")
	}
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		fmt.Fprintf(&b, " OFFSET $%d", len(args))
	}
	query := b.String()

	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "FindProducts", query)
	defer func() { end(err) }()

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer rows.Close()

	products = []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}
	rows.Close()

	if err = s.attachReviews(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetByID implements repository.CatalogStore.
func (s *Store) GetByID(ctx context.Context, id string) (p *domain.Product, err error) {
	if !validID(id) {
		return nil, apperrors.NotFound(repository.ProductResource)
	}

	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "GetProduct", getByIDSQL)
	defer func() { end(err) }()

	p, err = scanProduct(s.db.QueryRow(ctx, getByIDSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound(repository.ProductResource)
		}
		return nil, err
	}

	one := []domain.Product{*p}
	if err = s.attachReviews(ctx, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

// Create implements repository.CatalogStore.
func (s *Store) Create(ctx context.Context, p *domain.Product) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "CreateProduct", insertSQL)
	defer func() { end(err) }()

	id := uuid.NewString()
	_, err = s.db.Exec(ctx, insertSQL,
		id,
		p.OwnerID,
		p.Name,
		p.Image,
		p.Brand,
		p.Category,
		p.Description,
		p.Price.String(),
		p.CountInStock,
		p.Rating,
		p.NumReviews,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	p.ID = id
	if p.Reviews == nil {
		p.Reviews = []domain.Review{}
	}
	return nil
}

// Update implements repository.CatalogStore.
func (s *Store) Update(ctx context.Context, p *domain.Product) (err error) {
	if !validID(p.ID) {
		return apperrors.NotFound(repository.ProductResource)
	}

	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "UpdateProduct", updateSQL)
	defer func() { end(err) }()

	ct, err := s.db.Exec(ctx, updateSQL,
		p.Name,
		p.Price.String(),
		p.Description,
		p.Image,
		p.Brand,
		p.Category,
		p.CountInStock,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound(repository.ProductResource)
	}
	return nil
}

// Delete implements repository.CatalogStore. Reviews are removed by the
// foreign key cascade.
func (s *Store) Delete(ctx context.Context, id string) (err error) {
	if !validID(id) {
		return apperrors.NotFound(repository.ProductResource)
	}

	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "DeleteProduct", deleteSQL)
	defer func() { end(err) }()

	ct, err := s.db.Exec(ctx, deleteSQL, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound(repository.ProductResource)
	}
	return nil
}

// AppendReview implements repository.CatalogStore.
func (s *Store) AppendReview(ctx context.Context, productID string, r *domain.Review) (err error) {
	if !validID(productID) {
		return apperrors.NotFound(repository.ProductResource)
	}
	id := r.ID
	if id == "" {
		id = uuid.NewString()
	}

	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "AppendReview", appendReviewSQL)
	defer func() { end(err) }()

	ct, err := s.db.Exec(ctx, appendReviewSQL,
		id,
		productID,
		r.UserID,
		r.Name,
		r.Rating,
		r.Comment,
		r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append review: %w", err)
	}
	if ct.RowsAffected() > 0 {
		r.ID = id
		return nil
	}

	var exists bool
	if err = s.db.QueryRow(ctx, existsSQL, productID).Scan(&exists); err != nil {
		return fmt.Errorf("check product exists: %w", err)
	}
	if !exists {
		return apperrors.NotFound(repository.ProductResource)
	}
	return apperrors.DuplicateReview(repository.ProductResource)
}

// Ping implements repository.CatalogStore.
func (s *Store) Ping(ctx context.Context) error {
	var one int
	if err := s.db.QueryRow(ctx, pingSQL).Scan(&one); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

// attachReviews loads the reviews of every product in one query.
func (s *Store) attachReviews(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]string, len(products))
	index := make(map[string]int, len(products))
	for i := range products {
		ids[i] = products[i].ID
		index[products[i].ID] = i
		products[i].Reviews = []domain.Review{}
	}

	rows, err := s.db.Query(ctx, reviewsSQL, ids)
	if err != nil {
		return fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r         domain.Review
			productID string
		)
		if err := rows.Scan(&r.ID, &productID, &r.UserID, &r.Name, &r.Rating, &r.Comment, &r.CreatedAt); err != nil {
			return fmt.Errorf("scan review row: %w", err)
		}
		if i, ok := index[productID]; ok {
			products[i].Reviews = append(products[i].Reviews, r)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate review rows: %w", err)
	}
	return nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p     domain.Product
		price string
	)
	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Name,
		&p.Image,
		&p.Brand,
		&p.Category,
		&p.Description,
		&price,
		&p.CountInStock,
		&p.Rating,
		&p.NumReviews,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	p.Price, err = decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parse price %q: %w", price, err)
	}
	return &p, nil
}
