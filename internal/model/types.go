// Package model defines domain types used by the service.
package model

// Product represents a single catalog entry.
type Product struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	PricePerKg float64 `json:"price_per_kg"`
	ImagePath  string  `json:"image_path"`
}

// Catalog is the persisted document holding every product in insertion order.
type Catalog struct {
	Products []Product `json:"products"`
}
