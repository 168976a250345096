// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package products implements the product catalog.
package products

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"codeberg.org/nexastore/nexastore/internal/apperr"
	"codeberg.org/nexastore/nexastore/internal/auth"
	"codeberg.org/nexastore/nexastore/internal/models"
	"codeberg.org/nexastore/nexastore/internal/repository"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	DefaultLimit = 12
	MaxLimit     = 100
)

type Service struct {
	repo *repository.Repository
}

func NewService(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

// Fields carries product attributes. Nil fields are left untouched on update
// and take their zero value on create.
type Fields struct { //nolint:govet // fieldalignment: readability over optimization
	Name         *string
	Slug         *string
	Description  *string
	Price        *float64
	ComparePrice *float64
	SKU          *string
	Stock        *int
	Category     *string
	Brand        *string
	Tags         []string
	Images       []string
	Thumbnail    *string
	ProductType  *models.ProductType
	RoastLevel   *models.RoastLevel
	CoffeeOrigin *string
	IsActive     *bool
	IsFeatured   *bool
}

// ListParams selects a page of products.
type ListParams struct {
	Page     int
	Limit    int
	Category string
	Search   string
}

// List returns a page of products and the total match count. Inactive
// products are only listed for admins.
func (s *Service) List(ctx context.Context, actor *auth.Identity, p ListParams) ([]models.Product, int, error) {
	if err := auth.Authorize(actor, auth.ProductTarget(), auth.ActionList).Err(); err != nil {
		return nil, 0, err
	}

	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	p.Limit = min(p.Limit, MaxLimit)

	offset, ok := repository.PageOffset(p.Page, p.Limit)
	if !ok {
		return nil, 0, invalidField("page", "max", "page is out of range")
	}

	list, total, err := s.repo.ListProducts(ctx, repository.ProductFilter{
		Category:        p.Category,
		Search:          p.Search,
		IncludeInactive: actor.IsAdmin(),
		Limit:           p.Limit,
		Offset:          offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return list, total, nil
}

// GetBySlug returns a product by slug. Inactive products are hidden from
// everyone but admins.
func (s *Service) GetBySlug(ctx context.Context, actor *auth.Identity, slug string) (*models.Product, error) {
	if err := auth.Authorize(actor, auth.ProductTarget(), auth.ActionRead).Err(); err != nil {
		return nil, err
	}

	p, err := s.repo.GetProductBySlug(ctx, slug)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Wrap(apperr.ProductNotFound, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if !p.IsActive && !actor.IsAdmin() {
		return nil, apperr.New(apperr.ProductNotFound)
	}
	return p, nil
}

// Create adds a product. The slug is derived from the name when not given.
func (s *Service) Create(ctx context.Context, actor *auth.Identity, f Fields) (*models.Product, error) {
	if err := auth.Authorize(actor, auth.ProductTarget(), auth.ActionCreate).Err(); err != nil {
		return nil, err
	}

	p := &models.Product{IsActive: true, ProductType: models.ProductCoffeeBeans}
	apply(p, f)
	if f.Slug == nil || *f.Slug == "" {
		p.Slug = Slugify(p.Name)
	}
	if p.Slug == "" {
		return nil, invalidField("slug", "required", "slug could not be derived from name")
	}

	if err := s.ensureSlugFree(ctx, p.Slug, ""); err != nil {
		return nil, err
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, mapWriteError(err)
	}

	slog.InfoContext(ctx, "product_created", "product_id", p.ID, "slug", p.Slug, "actor_id", actor.UserID)
	return p, nil
}

// Update applies f to the product with id.
func (s *Service) Update(ctx context.Context, actor *auth.Identity, id string, f Fields) (*models.Product, error) {
	if err := auth.Authorize(actor, auth.ProductTarget(), auth.ActionUpdate).Err(); err != nil {
		return nil, err
	}

	p, err := s.repo.GetProductByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Wrap(apperr.ProductNotFound, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	apply(p, f)
	if p.Slug == "" {
		p.Slug = Slugify(p.Name)
	}
	if err := s.ensureSlugFree(ctx, p.Slug, p.ID); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, mapWriteError(err)
	}

	slog.InfoContext(ctx, "product_updated", "product_id", p.ID, "actor_id", actor.UserID)
	return p, nil
}

// Delete removes the product with id.
func (s *Service) Delete(ctx context.Context, actor *auth.Identity, id string) error {
	if err := auth.Authorize(actor, auth.ProductTarget(), auth.ActionDelete).Err(); err != nil {
		return err
	}

	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.Wrap(apperr.ProductNotFound, err)
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	slog.InfoContext(ctx, "product_deleted", "product_id", id, "actor_id", actor.UserID)
	return nil
}

func (s *Service) ensureSlugFree(ctx context.Context, slug, selfID string) error {
	existing, err := s.repo.GetProductBySlug(ctx, slug)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check slug: %w", err)
	}
	if existing.ID != selfID {
		return apperr.New(apperr.DuplicateSlug)
	}
	return nil
}

// mapWriteError turns constraint violations into API errors. The slug is
// checked up front, so a duplicate here is either a lost race on the slug or
// a taken SKU.
func mapWriteError(err error) error {
	if !errors.Is(err, repository.ErrDuplicate) {
		return fmt.Errorf("failed to save product: %w", err)
	}
	if strings.Contains(err.Error(), "sku") {
		return invalidField("sku", "unique", "sku is already in use")
	}
	return apperr.Wrap(apperr.DuplicateSlug, err)
}

func invalidField(field, rule, msg string) error {
	return &apperr.Error{
		Kind:    apperr.ValidationError,
		Details: []apperr.FieldError{{Field: field, Rule: rule, Message: msg}},
	}
}

func apply(p *models.Product, f Fields) {
	if f.Name != nil {
		p.Name = *f.Name
	}
	if f.Slug != nil {
		p.Slug = *f.Slug
	}
	if f.Description != nil {
		p.Description = *f.Description
	}
	if f.Price != nil {
		p.PriceCents = models.PriceToCents(*f.Price)
	}
	if f.ComparePrice != nil {
		cents := models.PriceToCents(*f.ComparePrice)
		p.ComparePriceCents = &cents
	}
	if f.SKU != nil {
		if *f.SKU == "" {
			p.SKU = nil
		} else {
			p.SKU = f.SKU
		}
	}
	if f.Stock != nil {
		p.Stock = *f.Stock
	}
	if f.Category != nil {
		p.Category = *f.Category
	}
	if f.Brand != nil {
		p.Brand = *f.Brand
	}
	if f.Tags != nil {
		p.Tags = f.Tags
	}
	if f.Images != nil {
		p.Images = f.Images
	}
	if f.Thumbnail != nil {
		p.Thumbnail = *f.Thumbnail
	}
	if f.ProductType != nil {
		p.ProductType = *f.ProductType
	}
	if f.RoastLevel != nil {
		p.RoastLevel = f.RoastLevel
	}
	if f.CoffeeOrigin != nil {
		p.CoffeeOrigin = *f.CoffeeOrigin
	}
	if f.IsActive != nil {
		p.IsActive = *f.IsActive
	}
	if f.IsFeatured != nil {
		p.IsFeatured = *f.IsFeatured
	}
}

// Slugify lowercases s, strips accents and joins alphanumeric runs with
// hyphens.
func Slugify(s string) string {
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(stripMarks, s)
	if err != nil {
		plain = s
	}

	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(plain) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			hyphen = false
		case b.Len() > 0 && !hyphen:
			b.WriteByte('-')
			hyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
