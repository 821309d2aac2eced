package catalog

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/atul950/NearBuy-ed/services/discovery/internal/domain"
)

type searchRow struct {
	ProductID   domain.ID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Brand       string          `json:"brand"`
	Description string          `json:"description"`
	Color       string          `json:"color"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ShopID      domain.ID       `json:"shop_id"`
	ShopName    string          `json:"shop_name"`
	City        string          `json:"city"`
	Area        string          `json:"area"`
}

type searchPayload struct {
	Products []searchRow `json:"products"`
	Count    int         `json:"count"`
}

type shopOfferRow struct {
	ShopID    domain.ID       `json:"shop_id"`
	ShopName  string          `json:"shop_name"`
	ShopImage string          `json:"shop_image"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	City      string          `json:"city"`
	Area      string          `json:"area"`
	Landmark  string          `json:"landmark"`
}

type reviewRow struct {
	Rating    float64 `json:"rating"`
	Text      string  `json:"review_text"`
	CreatedAt string  `json:"created_at"`
	UserName  string  `json:"user_name"`
}

type productPayload struct {
	ProductID   domain.ID      `json:"product_id"`
	ProductName string         `json:"product_name"`
	Brand       string         `json:"brand"`
	Description string         `json:"description"`
	Color       string         `json:"color"`
	Category    string         `json:"category"`
	Shops       []shopOfferRow `json:"shops"`
	Reviews     []reviewRow    `json:"reviews"`
}

type addressRow struct {
	City     string    `json:"city"`
	Area     string    `json:"area"`
	Landmark string    `json:"landmark"`
	Pincode  domain.ID `json:"pincode"`
}

type shopProductRow struct {
	ProductID   domain.ID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Brand       string          `json:"brand"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
}

type shopPayload struct {
	ShopID    domain.ID        `json:"shop_id"`
	ShopName  string           `json:"shop_name"`
	ShopImage string           `json:"shop_image"`
	OwnerName string           `json:"owner_name"`
	Phone     string           `json:"phone"`
	Address   addressRow       `json:"address"`
	Timings   []domain.Timing  `json:"timings"`
	Products  []shopProductRow `json:"products"`
}

type categoriesPayload struct {
	Categories []domain.Category `json:"categories"`
}

type reviewRequest struct {
	ProductID any    `json:"product_id"`
	Rating    int    `json:"rating"`
	Text      string `json:"review_text"`
}

// timestamp layouts the catalog is known to emit.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func checkOffer(what string, price decimal.Decimal, stock int) error {
	if price.IsNegative() {
		return fmt.Errorf("%s has negative price %s", what, price)
	}
	if stock < 0 {
		return fmt.Errorf("%s has negative stock %d", what, stock)
	}
	return nil
}

func (p searchPayload) listings() ([]domain.Listing, error) {
	out := make([]domain.Listing, 0, len(p.Products))
	for i, r := range p.Products {
		if r.ProductID == "" || r.ShopID == "" {
			return nil, fmt.Errorf("search row %d has no product or shop id", i)
		}
		if err := checkOffer(fmt.Sprintf("search row %d", i), r.Price, r.Stock); err != nil {
			return nil, err
		}
		out = append(out, domain.Listing{
			ProductSummary: domain.ProductSummary{
				ProductID:   r.ProductID,
				ProductName: r.ProductName,
				Brand:       r.Brand,
				Description: r.Description,
				Color:       r.Color,
				Category:    r.Category,
			},
			Offer: domain.Offer{
				ProductID: r.ProductID,
				ShopID:    r.ShopID,
				ShopName:  r.ShopName,
				Price:     r.Price,
				Stock:     r.Stock,
				Area:      r.Area,
				City:      r.City,
			},
		})
	}
	return out, nil
}

func (p productPayload) aggregate() (*domain.ProductAggregate, error) {
	if p.ProductID == "" {
		return nil, fmt.Errorf("product has no id")
	}
	agg := &domain.ProductAggregate{
		ProductSummary: domain.ProductSummary{
			ProductID:   p.ProductID,
			ProductName: p.ProductName,
			Brand:       p.Brand,
			Description: p.Description,
			Color:       p.Color,
			Category:    p.Category,
		},
		Offers:  make([]domain.Offer, 0, len(p.Shops)),
		Reviews: make([]domain.Review, 0, len(p.Reviews)),
	}
	for i, s := range p.Shops {
		if s.ShopID == "" {
			return nil, fmt.Errorf("offer %d has no shop id", i)
		}
		if err := checkOffer(fmt.Sprintf("offer %d", i), s.Price, s.Stock); err != nil {
			return nil, err
		}
		agg.Offers = append(agg.Offers, domain.Offer{
			ProductID: p.ProductID,
			ShopID:    s.ShopID,
			ShopName:  s.ShopName,
			ShopImage: s.ShopImage,
			Price:     s.Price,
			Stock:     s.Stock,
			Area:      s.Area,
			City:      s.City,
			Landmark:  s.Landmark,
		})
	}
	for i, r := range p.Reviews {
		rv, err := r.review()
		if err != nil {
			return nil, fmt.Errorf("review %d: %w", i, err)
		}
		agg.Reviews = append(agg.Reviews, rv)
	}
	return agg, nil
}

func (r reviewRow) review() (domain.Review, error) {
	rating := int(math.Round(r.Rating))
	if rating < 1 || rating > 5 {
		return domain.Review{}, fmt.Errorf("rating %v out of range", r.Rating)
	}
	created, err := parseTimestamp(r.CreatedAt)
	if err != nil {
		return domain.Review{}, err
	}
	return domain.Review{UserName: r.UserName, Rating: rating, Text: r.Text, CreatedAt: created}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func (p shopPayload) shop() (*domain.Shop, error) {
	if p.ShopID == "" {
		return nil, fmt.Errorf("shop has no id")
	}
	shop := &domain.Shop{
		ShopID:    p.ShopID,
		ShopName:  p.ShopName,
		ShopImage: p.ShopImage,
		OwnerName: p.OwnerName,
		Phone:     p.Phone,
		Address: domain.Address{
			City:     p.Address.City,
			Area:     p.Address.Area,
			Landmark: p.Address.Landmark,
			Pincode:  p.Address.Pincode.String(),
		},
		Timings:  append([]domain.Timing{}, p.Timings...),
		Products: make([]domain.ShopProduct, 0, len(p.Products)),
	}
	for i, sp := range p.Products {
		if sp.ProductID == "" {
			return nil, fmt.Errorf("shop product %d has no id", i)
		}
		if err := checkOffer(fmt.Sprintf("shop product %d", i), sp.Price, sp.Stock); err != nil {
			return nil, err
		}
		shop.Products = append(shop.Products, domain.ShopProduct{
			ProductID:   sp.ProductID,
			ProductName: sp.ProductName,
			Brand:       sp.Brand,
			Category:    sp.Category,
			Price:       sp.Price,
			Stock:       sp.Stock,
		})
	}
	return shop, nil
}
