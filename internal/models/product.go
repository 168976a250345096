// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import (
	"math"
	"time"
)

type ProductType string

const (
	ProductCoffeeBeans      ProductType = "COFFEE_BEANS"
	ProductBrewingEquipment ProductType = "BREWING_EQUIPMENT"
	ProductAccessories      ProductType = "ACCESSORIES"
	ProductMerchandise      ProductType = "MERCHANDISE"
)

type RoastLevel string

const (
	RoastLight       RoastLevel = "LIGHT"
	RoastMediumLight RoastLevel = "MEDIUM_LIGHT"
	RoastMedium      RoastLevel = "MEDIUM"
	RoastMediumDark  RoastLevel = "MEDIUM_DARK"
	RoastDark        RoastLevel = "DARK"
)

// Product is a catalog entry. Prices are stored in cents.
type Product struct { //nolint:govet // fieldalignment: readability over optimization
	ID                string      `db:"id"`
	Name              string      `db:"name"`
	Slug              string      `db:"slug"`
	Description       string      `db:"description"`
	PriceCents        int64       `db:"price_cents"`
	ComparePriceCents *int64      `db:"compare_price_cents"`
	SKU               *string     `db:"sku"`
	Stock             int         `db:"stock"`
	Category          string      `db:"category"`
	Brand             string      `db:"brand"`
	Tags              StringList  `db:"tags"`
	Images            StringList  `db:"images"`
	Thumbnail         string      `db:"thumbnail"`
	ProductType       ProductType `db:"product_type"`
	RoastLevel        *RoastLevel `db:"roast_level"`
	CoffeeOrigin      string      `db:"coffee_origin"`
	IsActive          bool        `db:"is_active"`
	IsFeatured        bool        `db:"is_featured"`
	CreatedAt         time.Time   `db:"created_at"`
	UpdatedAt         time.Time   `db:"updated_at"`
}

// ProductView is the JSON shape of a product, with prices in currency units.
type ProductView struct { //nolint:govet // fieldalignment: readability over optimization
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Slug         string      `json:"slug"`
	Description  string      `json:"description"`
	Price        float64     `json:"price"`
	ComparePrice *float64    `json:"comparePrice,omitempty"`
	SKU          *string     `json:"sku,omitempty"`
	Stock        int         `json:"stock"`
	Category     string      `json:"category"`
	Brand        string      `json:"brand"`
	Tags         []string    `json:"tags"`
	Images       []string    `json:"images"`
	Thumbnail    string      `json:"thumbnail"`
	ProductType  ProductType `json:"productType"`
	RoastLevel   *RoastLevel `json:"roastLevel,omitempty"`
	CoffeeOrigin string      `json:"coffeeOrigin,omitempty"`
	IsActive     bool        `json:"isActive"`
	IsFeatured   bool        `json:"isFeatured"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

func (p *Product) View() ProductView {
	v := ProductView{
		ID:           p.ID,
		Name:         p.Name,
		Slug:         p.Slug,
		Description:  p.Description,
		Price:        CentsToPrice(p.PriceCents),
		SKU:          p.SKU,
		Stock:        p.Stock,
		Category:     p.Category,
		Brand:        p.Brand,
		Tags:         []string(p.Tags),
		Images:       []string(p.Images),
		Thumbnail:    p.Thumbnail,
		ProductType:  p.ProductType,
		RoastLevel:   p.RoastLevel,
		CoffeeOrigin: p.CoffeeOrigin,
		IsActive:     p.IsActive,
		IsFeatured:   p.IsFeatured,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if v.Tags == nil {
		v.Tags = []string{}
	}
	if v.Images == nil {
		v.Images = []string{}
	}
	if p.ComparePriceCents != nil {
		cp := CentsToPrice(*p.ComparePriceCents)
		v.ComparePrice = &cp
	}
	return v
}

// PriceToCents converts a currency amount to cents, rounding half away from zero.
func PriceToCents(price float64) int64 {
	return int64(math.Round(price * 100))
}

func CentsToPrice(cents int64) float64 {
	return float64(cents) / 100
}
