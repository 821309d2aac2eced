package memory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/atul950/NearBuy-ed/services/discovery/internal/domain"
)

// Seed fills c with a small demo catalog of shops in Pune and Nagpur.
func Seed(c *Catalog) error {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, cat := range []domain.Category{
		{CategoryID: "1", CategoryName: "Groceries", Description: "Staples and daily needs"},
		{CategoryID: "2", CategoryName: "Electronics", Description: "Phones, chargers and accessories"},
		{CategoryID: "3", CategoryName: "Stationery", Description: "School and office supplies"},
	} {
		c.AddCategory(cat)
	}

	week := func(open, closeAt string, sundayClosed bool) []domain.Timing {
		days := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
		out := make([]domain.Timing, 0, len(days))
		for _, d := range days {
			if d == "Sunday" && sundayClosed {
				out = append(out, domain.Timing{Day: d})
				continue
			}
			out = append(out, domain.Timing{Day: d, OpenTime: open, CloseTime: closeAt})
		}
		return out
	}

	shops := []domain.Shop{
		{
			ShopID: "1", ShopName: "Sharma Kirana Store", OwnerName: "Rakesh Sharma", Phone: "9822000001",
			Address: domain.Address{City: "Pune", Area: "Kothrud", Landmark: "Near Karve Statue", Pincode: "411038"},
			Timings: week("08:00", "22:00", false),
		},
		{
			ShopID: "2", ShopName: "Deccan Mobiles", OwnerName: "Sneha Kulkarni", Phone: "9822000002",
			Address: domain.Address{City: "Pune", Area: "Deccan Gymkhana", Pincode: "411004"},
			Timings: week("10:00", "21:00", true),
		},
		{
			ShopID: "3", ShopName: "Sitabuldi General Stores", OwnerName: "Imran Sheikh", Phone: "9822000003",
			Address: domain.Address{City: "Nagpur", Area: "Sitabuldi", Landmark: "Opp. Variety Square", Pincode: "440012"},
			Timings: week("09:00", "21:30", false),
		},
	}
	for _, s := range shops {
		c.AddShop(s)
	}

	products := []Product{
		{ID: "1", Name: "Basmati Rice 5kg", Brand: "India Gate", Description: "Aged long grain basmati", CategoryID: "1", CreatedAt: base},
		{ID: "2", Name: "Toor Dal 1kg", Brand: "Tata Sampann", Description: "Unpolished pigeon peas", CategoryID: "1", CreatedAt: base.AddDate(0, 1, 0)},
		{ID: "3", Name: "USB-C Charger 25W", Brand: "Samsung", Description: "Fast charging wall adapter", Color: "White", CategoryID: "2", CreatedAt: base.AddDate(0, 2, 0)},
		{ID: "4", Name: "Long Notebook 200 pages", Brand: "Classmate", Description: "Ruled notebook", CategoryID: "3", CreatedAt: base.AddDate(0, 3, 0)},
	}
	for _, p := range products {
		c.AddProduct(p)
	}

	stock := []struct {
		product, shop domain.ID
		price         string
		qty           int
	}{
		{"1", "1", "649", 12},
		{"1", "3", "620", 4},
		{"2", "1", "165", 30},
		{"2", "3", "158.50", 0},
		{"3", "2", "1299", 6},
		{"4", "1", "60", 40},
		{"4", "3", "55", 25},
	}
	for _, s := range stock {
		if err := c.SetStock(s.product, s.shop, decimal.RequireFromString(s.price), s.qty); err != nil {
			return err
		}
	}
	return nil
}
