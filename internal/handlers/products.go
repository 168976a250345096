// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"codeberg.org/nexastore/nexastore/internal/apperr"
	"codeberg.org/nexastore/nexastore/internal/auth"
	"codeberg.org/nexastore/nexastore/internal/i18n"
	"codeberg.org/nexastore/nexastore/internal/models"
	"codeberg.org/nexastore/nexastore/internal/services/products"
	"github.com/labstack/echo/v4"
)

// ProductHandlers contains the catalog handlers.
type ProductHandlers struct {
	products *products.Service
}

func NewProducts(svc *products.Service) *ProductHandlers {
	return &ProductHandlers{products: svc}
}

// ProductRequest carries product attributes for create and update. Prices
// are in currency units.
type ProductRequest struct { //nolint:govet // fieldalignment: readability over optimization
	Name         *string             `json:"name" validate:"omitempty,min=2,max=200"`
	Slug         *string             `json:"slug" validate:"omitempty,max=200"`
	Description  *string             `json:"description"`
	Price        *float64            `json:"price" validate:"omitempty,gte=0"`
	ComparePrice *float64            `json:"comparePrice" validate:"omitempty,gte=0"`
	SKU          *string             `json:"sku" validate:"omitempty,max=64"`
	Stock        *int                `json:"stock" validate:"omitempty,gte=0"`
	Category     *string             `json:"category"`
	Brand        *string             `json:"brand"`
	Tags         []string            `json:"tags"`
	Images       []string            `json:"images"`
	Thumbnail    *string             `json:"thumbnail"`
	ProductType  *models.ProductType `json:"productType" validate:"omitempty,oneof=COFFEE_BEANS BREWING_EQUIPMENT ACCESSORIES MERCHANDISE"`
	RoastLevel   *models.RoastLevel  `json:"roastLevel" validate:"omitempty,oneof=LIGHT MEDIUM_LIGHT MEDIUM MEDIUM_DARK DARK"`
	CoffeeOrigin *string             `json:"coffeeOrigin"`
	IsActive     *bool               `json:"isActive"`
	IsFeatured   *bool               `json:"isFeatured"`
}

func (r *ProductRequest) fields() products.Fields {
	return products.Fields{
		Name:         r.Name,
		Slug:         r.Slug,
		Description:  r.Description,
		Price:        r.Price,
		ComparePrice: r.ComparePrice,
		SKU:          r.SKU,
		Stock:        r.Stock,
		Category:     r.Category,
		Brand:        r.Brand,
		Tags:         r.Tags,
		Images:       r.Images,
		Thumbnail:    r.Thumbnail,
		ProductType:  r.ProductType,
		RoastLevel:   r.RoastLevel,
		CoffeeOrigin: r.CoffeeOrigin,
		IsActive:     r.IsActive,
		IsFeatured:   r.IsFeatured,
	}
}

// List returns a page of products. Query: page, limit, category, search.
func (h *ProductHandlers) List(c echo.Context) error {
	var p products.ListParams
	err := echo.QueryParamsBinder(c).
		Int("page", &p.Page).
		Int("limit", &p.Limit).
		String("category", &p.Category).
		String("search", &p.Search).
		BindError()
	if err != nil {
		return apperr.Wrap(apperr.ValidationError, err).WithMessage("error_validation")
	}

	ctx := c.Request().Context()
	list, total, err := h.products.List(ctx, auth.GetIdentity(ctx), p)
	if err != nil {
		return err
	}

	views := make([]models.ProductView, 0, len(list))
	for i := range list {
		views = append(views, list[i].View())
	}
	return c.JSON(http.StatusOK, map[string]any{
		"products": views,
		"total":    total,
	})
}

// Get returns a product by slug.
func (h *ProductHandlers) Get(c echo.Context) error {
	ctx := c.Request().Context()
	p, err := h.products.GetBySlug(ctx, auth.GetIdentity(ctx), c.Param("slug"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p.View())
}

// Create adds a product. Name and price are required.
func (h *ProductHandlers) Create(c echo.Context) error {
	var req ProductRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	var missing []apperr.FieldError
	if req.Name == nil {
		missing = append(missing, apperr.FieldError{Field: "name", Rule: "required", Message: "name is required"})
	}
	if req.Price == nil {
		missing = append(missing, apperr.FieldError{Field: "price", Rule: "required", Message: "price is required"})
	}
	if len(missing) > 0 {
		return &apperr.Error{Kind: apperr.ValidationError, Details: missing}
	}

	ctx := c.Request().Context()
	p, err := h.products.Create(ctx, auth.GetIdentity(ctx), req.fields())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p.View())
}

// Update changes a product. Omitted fields are kept.
func (h *ProductHandlers) Update(c echo.Context) error {
	var req ProductRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	p, err := h.products.Update(ctx, auth.GetIdentity(ctx), c.Param("id"), req.fields())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p.View())
}

// Delete removes a product.
func (h *ProductHandlers) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.products.Delete(ctx, auth.GetIdentity(ctx), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"message": i18n.T(ctx, "product_deleted")})
}
