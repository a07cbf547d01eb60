package model

import "time"

// Item is one physical unit of reseller inventory awaiting a listing.
type Item struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Category   string `json:"category,omitempty"`
	Brand      string `json:"brand,omitempty"`
	Model      string `json:"model,omitempty"`
	Barcode    string `json:"barcode,omitempty"`
	Condition  string `json:"condition,omitempty"`
	ImageCount int    `json:"image_count"`
	Notes      string `json:"notes,omitempty"`
}

// Listing is the marketplace-ready output assembled from researched fields.
type Listing struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Price       float64        `json:"price,omitempty"`
	Category    string         `json:"category,omitempty"`
	Condition   string         `json:"condition,omitempty"`
	Brand       string         `json:"brand,omitempty"`
	Model       string         `json:"model,omitempty"`
	Barcode     string         `json:"barcode,omitempty"`
	Specs       map[string]any `json:"specs,omitempty"`
	AssembledAt time.Time      `json:"assembled_at"`
}
