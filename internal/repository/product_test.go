// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"

	"codeberg.org/nexastore/nexastore/internal/models"
	"codeberg.org/nexastore/nexastore/internal/repository"
	"codeberg.org/nexastore/nexastore/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProduct(name, slug, category string, active bool) *models.Product {
	return &models.Product{
		Name:        name,
		Slug:        slug,
		Description: name + " description",
		PriceCents:  1500,
		Stock:       10,
		Category:    category,
		Brand:       "Nexa",
		Tags:        models.StringList{"coffee"},
		ProductType: models.ProductCoffeeBeans,
		IsActive:    active,
	}
}

func TestCreateProduct_RoundTrip(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	roast := models.RoastDark
	sku := "ETH-001"
	compare := int64(1900)
	p := newProduct("Ethiopia", "ethiopia", "beans", true)
	p.RoastLevel = &roast
	p.SKU = &sku
	p.ComparePriceCents = &compare
	p.Images = models.StringList{"/a.png", "/b.png"}

	require.NoError(t, repo.CreateProduct(ctx, p))
	assert.NotEmpty(t, p.ID)

	got, err := repo.GetProductBySlug(ctx, "ethiopia")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, int64(1500), got.PriceCents)
	require.NotNil(t, got.RoastLevel)
	assert.Equal(t, models.RoastDark, *got.RoastLevel)
	require.NotNil(t, got.SKU)
	assert.Equal(t, "ETH-001", *got.SKU)
	require.NotNil(t, got.ComparePriceCents)
	assert.Equal(t, int64(1900), *got.ComparePriceCents)
	assert.Equal(t, models.StringList{"coffee"}, got.Tags)
	assert.Equal(t, models.StringList{"/a.png", "/b.png"}, got.Images)

	byID, err := repo.GetProductByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "ethiopia", byID.Slug)
}

func TestCreateProduct_DuplicateSlug(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	require.NoError(t, repo.CreateProduct(ctx, newProduct("A", "same", "beans", true)))

	err := repo.CreateProduct(ctx, newProduct("B", "same", "beans", true))

	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestListProducts(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	require.NoError(t, repo.CreateProduct(ctx, newProduct("Kenya AA", "kenya", "beans", true)))
	require.NoError(t, repo.CreateProduct(ctx, newProduct("V60 Dripper", "v60", "brewing", true)))
	require.NoError(t, repo.CreateProduct(ctx, newProduct("Old Mug", "old-mug", "merch", false)))

	products, total, err := repo.ListProducts(ctx, repository.ProductFilter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, products, 2)

	_, total, err = repo.ListProducts(ctx, repository.ProductFilter{Limit: 10, IncludeInactive: true})
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	products, total, err = repo.ListProducts(ctx, repository.ProductFilter{Category: "brewing", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "v60", products[0].Slug)

	products, total, err = repo.ListProducts(ctx, repository.ProductFilter{Search: "KENYA", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "kenya", products[0].Slug)
}

func TestUpdateProduct(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	p := newProduct("Colombia", "colombia", "beans", true)
	require.NoError(t, repo.CreateProduct(ctx, p))

	p.PriceCents = 2100
	p.Stock = 3
	p.IsFeatured = true
	require.NoError(t, repo.UpdateProduct(ctx, p))

	got, err := repo.GetProductByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2100), got.PriceCents)
	assert.Equal(t, 3, got.Stock)
	assert.True(t, got.IsFeatured)

	assert.ErrorIs(t, repo.UpdateProduct(ctx, &models.Product{ID: "missing"}), repository.ErrNotFound)
}

func TestDeleteProduct(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	p := newProduct("Brazil", "brazil", "beans", true)
	require.NoError(t, repo.CreateProduct(ctx, p))

	require.NoError(t, repo.DeleteProduct(ctx, p.ID))

	_, err := repo.GetProductByID(ctx, p.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, repo.DeleteProduct(ctx, p.ID), repository.ErrNotFound)
}
