package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Offer is one (product, shop) pairing as reported by the catalog.
type Offer struct {
	ProductID ID              `json:"product_id"`
	ShopID    ID              `json:"shop_id"`
	ShopName  string          `json:"shop_name"`
	ShopImage string          `json:"shop_image,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	Area      string          `json:"area"`
	City      string          `json:"city"`
	Landmark  string          `json:"landmark,omitempty"`
}

// InStock reports whether the shop has at least one unit.
func (o Offer) InStock() bool { return o.Stock > 0 }

// ProductSummary is the product part of a search row.
type ProductSummary struct {
	ProductID   ID     `json:"product_id"`
	ProductName string `json:"product_name"`
	Brand       string `json:"brand"`
	Description string `json:"description"`
	Color       string `json:"color,omitempty"`
	Category    string `json:"category"`
}

// Listing is one search result row: a product as sold by one shop.
type Listing struct {
	ProductSummary
	Offer Offer `json:"offer"`
}

// ProductAggregate is a product with every shop selling it and its reviews.
// Offers keep the order the catalog returned them in.
type ProductAggregate struct {
	ProductSummary
	Offers  []Offer  `json:"offers"`
	Reviews []Review `json:"reviews"`
}

// Review is a single rating left by a shopper.
type Review struct {
	UserName  string    `json:"user_name"`
	Rating    int       `json:"rating"`
	Text      string    `json:"review_text"`
	CreatedAt time.Time `json:"created_at"`
}

// Address is where a shop is located.
type Address struct {
	City     string `json:"city"`
	Area     string `json:"area"`
	Landmark string `json:"landmark,omitempty"`
	Pincode  string `json:"pincode,omitempty"`
}

// Timing is the opening window of a shop on one weekday. Empty times mean
// the shop is closed that day.
type Timing struct {
	Day       string `json:"day"`
	OpenTime  string `json:"open_time,omitempty"`
	CloseTime string `json:"close_time,omitempty"`
}

// ShopProduct is an in-stock product listed on a shop page.
type ShopProduct struct {
	ProductID   ID              `json:"product_id"`
	ProductName string          `json:"product_name"`
	Brand       string          `json:"brand"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
}

// Shop is a store with its address, opening hours and stock.
type Shop struct {
	ShopID    ID            `json:"shop_id"`
	ShopName  string        `json:"shop_name"`
	ShopImage string        `json:"shop_image,omitempty"`
	OwnerName string        `json:"owner_name"`
	Phone     string        `json:"phone"`
	Address   Address       `json:"address"`
	Timings   []Timing      `json:"timings"`
	Products  []ShopProduct `json:"products"`
}

// Category is a product category.
type Category struct {
	CategoryID   ID     `json:"category_id"`
	CategoryName string `json:"category_name"`
	Description  string `json:"description,omitempty"`
}
