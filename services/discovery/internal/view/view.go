// Package view turns catalog data into display cards.
package view

import (
	"strings"

	"github.com/atul950/NearBuy-ed/services/discovery/internal/domain"
)

// Mode is a display layout.
type Mode string

const (
	Grid Mode = "grid"
	List Mode = "list"
)

// ParseMode maps s to a Mode. Anything unrecognized is a grid.
func ParseMode(s string) Mode {
	if Mode(strings.ToLower(strings.TrimSpace(s))) == List {
		return List
	}
	return Grid
}

// Card is one renderable result.
type Card struct {
	Layout      Mode   `json:"layout"`
	ID          string `json:"id"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle,omitempty"`
	Category    string `json:"category,omitempty"`
	Price       string `json:"price"`
	ShopID      string `json:"shop_id,omitempty"`
	ShopName    string `json:"shop_name,omitempty"`
	Location    string `json:"location,omitempty"`
	Stock       int    `json:"stock"`
	Description string `json:"description,omitempty"`
	Link        string `json:"link"`
}

// Project renders items as cards in the given mode. It never fails: nil input
// yields an empty slice and an unknown mode renders a grid. Grid cards do not
// carry the description.
func Project[T any](items []T, mode Mode, card func(T) Card) []Card {
	if mode != List {
		mode = Grid
	}
	cards := make([]Card, 0, len(items))
	for _, it := range items {
		c := card(it)
		c.Layout = mode
		if mode == Grid {
			c.Description = ""
		}
		cards = append(cards, c)
	}
	return cards
}

// ListingCard renders a search result row.
func ListingCard(l domain.Listing) Card {
	return Card{
		ID:          l.ProductID.String(),
		Title:       l.ProductName,
		Subtitle:    l.Brand,
		Category:    l.Category,
		Price:       l.Offer.Price.StringFixed(2),
		ShopID:      l.Offer.ShopID.String(),
		ShopName:    l.Offer.ShopName,
		Location:    location(l.Offer.Area, l.Offer.City),
		Stock:       l.Offer.Stock,
		Description: l.Description,
		Link:        "/product/" + l.ProductID.String(),
	}
}

// ShopProductCard renders a product on a shop page.
func ShopProductCard(p domain.ShopProduct) Card {
	return Card{
		ID:       p.ProductID.String(),
		Title:    p.ProductName,
		Subtitle: p.Brand,
		Category: p.Category,
		Price:    p.Price.StringFixed(2),
		Stock:    p.Stock,
		Link:     "/product/" + p.ProductID.String(),
	}
}

func location(area, city string) string {
	switch {
	case area == "":
		return city
	case city == "":
		return area
	default:
		return area + ", " + city
	}
}
