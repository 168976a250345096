// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models_test

import (
	"testing"

	"codeberg.org/nexastore/nexastore/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceConversion(t *testing.T) {
	tests := []struct {
		price float64
		cents int64
	}{
		{0, 0},
		{12.5, 1250},
		{19.99, 1999},
		{0.1 + 0.2, 30},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.cents, models.PriceToCents(tt.price))
	}
	assert.InDelta(t, 19.99, models.CentsToPrice(1999), 0.0001)
}

func TestProduct_View(t *testing.T) {
	compare := int64(2499)
	roast := models.RoastMedium
	p := &models.Product{
		ID:                "p1",
		Name:              "Ethiopia Guji",
		Slug:              "ethiopia-guji",
		PriceCents:        1999,
		ComparePriceCents: &compare,
		ProductType:       models.ProductCoffeeBeans,
		RoastLevel:        &roast,
	}

	v := p.View()

	assert.InDelta(t, 19.99, v.Price, 0.0001)
	require.NotNil(t, v.ComparePrice)
	assert.InDelta(t, 24.99, *v.ComparePrice, 0.0001)
	assert.Equal(t, []string{}, v.Tags)
	assert.Equal(t, []string{}, v.Images)
	assert.Equal(t, &roast, v.RoastLevel)
}

func TestStringList_ValueAndScan(t *testing.T) {
	v, err := models.StringList{"light", "fruity"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["light","fruity"]`, v)

	nilValue, err := models.StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", nilValue)

	var l models.StringList
	require.NoError(t, l.Scan([]byte(`["a","b"]`)))
	assert.Equal(t, models.StringList{"a", "b"}, l)

	require.NoError(t, l.Scan(nil))
	assert.Equal(t, models.StringList{}, l)

	assert.Error(t, l.Scan(42))
	assert.Error(t, l.Scan("not json"))
}
