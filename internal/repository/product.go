// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"strings"
	"time"

	"codeberg.org/nexastore/nexastore/internal/models"
	"github.com/google/uuid"
)

const productColumns = `id, name, slug, description, price_cents, compare_price_cents, sku, stock,
	category, brand, tags, images, thumbnail, product_type, roast_level, coffee_origin,
	is_active, is_featured, created_at, updated_at`

// ProductFilter narrows ListProducts.
type ProductFilter struct { //nolint:govet // fieldalignment: readability over optimization
	Category        string
	Search          string
	IncludeInactive bool
	Limit           int
	Offset          int
}

// CreateProduct inserts a product. ID and timestamps are filled in when empty.
func (r *Repository) CreateProduct(ctx context.Context, p *models.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := r.exec(ctx,
		`INSERT INTO products (`+productColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Slug, p.Description, p.PriceCents, p.ComparePriceCents, p.SKU, p.Stock,
		p.Category, p.Brand, p.Tags, p.Images, p.Thumbnail, p.ProductType, p.RoastLevel, p.CoffeeOrigin,
		p.IsActive, p.IsFeatured, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *Repository) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	if err := r.get(ctx, &p, `SELECT `+productColumns+` FROM products WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var p models.Product
	if err := r.get(ctx, &p, `SELECT `+productColumns+` FROM products WHERE slug = ?`, slug); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProducts returns one page of products, newest first, and the total match count.
func (r *Repository) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, int, error) {
	var (
		where []string
		args  []any
	)
	if !f.IncludeInactive {
		where = append(where, `is_active = ?`)
		args = append(args, true)
	}
	if f.Category != "" {
		where = append(where, `category = ?`)
		args = append(args, f.Category)
	}
	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		where = append(where, `(LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(brand) LIKE ?)`)
		args = append(args, pattern, pattern, pattern)
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.get(ctx, &total, `SELECT COUNT(*) FROM products`+clause, args...); err != nil {
		return nil, 0, err
	}

	limit, offset := pageArgs(f.Limit, f.Offset)
	products := []models.Product{}
	err := r.selectAll(ctx, &products,
		`SELECT `+productColumns+` FROM products`+clause+` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// UpdateProduct writes every mutable column of p and bumps updated_at.
func (r *Repository) UpdateProduct(ctx context.Context, p *models.Product) error {
	p.UpdatedAt = time.Now().UTC()
	n, err := r.exec(ctx,
		`UPDATE products SET name = ?, slug = ?, description = ?, price_cents = ?, compare_price_cents = ?,
		 sku = ?, stock = ?, category = ?, brand = ?, tags = ?, images = ?, thumbnail = ?, product_type = ?,
		 roast_level = ?, coffee_origin = ?, is_active = ?, is_featured = ?, updated_at = ? WHERE id = ?`,
		p.Name, p.Slug, p.Description, p.PriceCents, p.ComparePriceCents,
		p.SKU, p.Stock, p.Category, p.Brand, p.Tags, p.Images, p.Thumbnail, p.ProductType,
		p.RoastLevel, p.CoffeeOrigin, p.IsActive, p.IsFeatured, p.UpdatedAt, p.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteProduct(ctx context.Context, id string) error {
	n, err := r.exec(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
