// Package offers groups the shops selling one product into a comparable offer
// list with a selection cursor.
package offers

import (
	"github.com/shopspring/decimal"

	"github.com/atul950/NearBuy-ed/services/discovery/internal/domain"
)

// Aggregator holds the offers of one product in catalog order and the shop
// currently selected among them. It is not safe for concurrent use; the
// owning view serializes access.
type Aggregator struct {
	offers   []domain.Offer
	selected domain.ID
	hasSel   bool
}

// New returns an aggregator over offers with the default selection applied.
func New(offers []domain.Offer) *Aggregator {
	a := &Aggregator{}
	a.Reset(offers)
	return a
}

// Reset replaces the offer set and moves the cursor to the default selection.
func (a *Aggregator) Reset(offers []domain.Offer) {
	a.offers = append([]domain.Offer(nil), offers...)
	a.hasSel = false
	a.selected = ""
	if first, ok := a.DefaultSelection(); ok {
		a.selected, a.hasSel = first.ShopID, true
	}
}

// Offers returns a copy of the offers in catalog order.
func (a *Aggregator) Offers() []domain.Offer {
	return append([]domain.Offer(nil), a.offers...)
}

// Len returns the number of offers.
func (a *Aggregator) Len() int { return len(a.offers) }

// DefaultSelection returns the first offer in catalog order, regardless of
// price, or false when there are no offers.
func (a *Aggregator) DefaultSelection() (domain.Offer, bool) {
	if len(a.offers) == 0 {
		return domain.Offer{}, false
	}
	return a.offers[0], true
}

// Select moves the cursor to the shop with the given id. When no current
// offer comes from that shop the cursor is left unchanged and false is
// returned.
func (a *Aggregator) Select(shopID domain.ID) bool {
	if _, ok := a.find(shopID); !ok {
		return false
	}
	a.selected, a.hasSel = shopID, true
	return true
}

// Selected returns the offer under the cursor, or false when nothing is
// selected.
func (a *Aggregator) Selected() (domain.Offer, bool) {
	if !a.hasSel {
		return domain.Offer{}, false
	}
	return a.find(a.selected)
}

func (a *Aggregator) find(shopID domain.ID) (domain.Offer, bool) {
	for _, o := range a.offers {
		if o.ShopID == shopID {
			return o, true
		}
	}
	return domain.Offer{}, false
}

// AveragePrice returns the mean offer price, or false when there are no
// offers.
func (a *Aggregator) AveragePrice() (decimal.Decimal, bool) {
	if len(a.offers) == 0 {
		return decimal.Zero, false
	}
	sum := decimal.Zero
	for _, o := range a.offers {
		sum = sum.Add(o.Price)
	}
	return sum.Div(decimal.NewFromInt(int64(len(a.offers)))), true
}

// Cheapest returns the lowest-priced offer. Ties go to the earliest offer.
func (a *Aggregator) Cheapest() (domain.Offer, bool) {
	if len(a.offers) == 0 {
		return domain.Offer{}, false
	}
	best := a.offers[0]
	for _, o := range a.offers[1:] {
		if o.Price.LessThan(best.Price) {
			best = o
		}
	}
	return best, true
}

// InStockCount returns how many offers have stock.
func (a *Aggregator) InStockCount() int {
	n := 0
	for _, o := range a.offers {
		if o.InStock() {
			n++
		}
	}
	return n
}

// ShopOffers is every offer one shop makes for the product.
type ShopOffers struct {
	ShopID   domain.ID      `json:"shop_id"`
	ShopName string         `json:"shop_name"`
	Offers   []domain.Offer `json:"offers"`
}

// Shops groups the offers by shop in order of first appearance.
func (a *Aggregator) Shops() []ShopOffers {
	index := make(map[domain.ID]int, len(a.offers))
	groups := make([]ShopOffers, 0, len(a.offers))
	for _, o := range a.offers {
		i, ok := index[o.ShopID]
		if !ok {
			i = len(groups)
			index[o.ShopID] = i
			groups = append(groups, ShopOffers{ShopID: o.ShopID, ShopName: o.ShopName})
		}
		groups[i].Offers = append(groups[i].Offers, o)
	}
	return groups
}

// Stats summarizes the offer set.
type Stats struct {
	OfferCount   int           `json:"offer_count"`
	InStockCount int           `json:"in_stock_count"`
	AveragePrice *string       `json:"average_price"`
	Cheapest     *domain.Offer `json:"cheapest"`
}

// Stats returns the derived figures of the current offer set. Prices are
// rendered with two decimals.
func (a *Aggregator) Stats() Stats {
	s := Stats{OfferCount: len(a.offers), InStockCount: a.InStockCount()}
	if avg, ok := a.AveragePrice(); ok {
		text := avg.StringFixed(2)
		s.AveragePrice = &text
	}
	if c, ok := a.Cheapest(); ok {
		s.Cheapest = &c
	}
	return s
}
