// Package filter holds the search criteria of a discovery view and their
// shareable query-string encoding.
package filter

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "github.com/atul950/NearBuy-ed/pkg/errors"
)

// Query keys of the shareable representation.
const (
	KeyQuery    = "q"
	KeyCategory = "category"
	KeyCity     = "city"
	KeyMinPrice = "min_price"
	KeyMaxPrice = "max_price"
	KeySortBy   = "sortBy"
)

// Sort options accepted by the catalog.
const (
	SortRelevance = "relevance"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortNewest    = "newest"
)

// ValidSortOptions returns the list of valid sort options.
func ValidSortOptions() []string {
	return []string{SortRelevance, SortPriceAsc, SortPriceDesc, SortNewest}
}

// IsValidSort checks whether the given sort string is a valid sort option.
func IsValidSort(s string) bool {
	for _, o := range ValidSortOptions() {
		if o == s {
			return true
		}
	}
	return false
}

// Keys returns every query key in a stable order.
func Keys() []string {
	return []string{KeyQuery, KeyCategory, KeyCity, KeyMinPrice, KeyMaxPrice, KeySortBy}
}

// State is an immutable snapshot of search criteria. The empty string means
// unset for every field. Prices keep the text the caller supplied.
type State struct {
	Query    string `json:"q"`
	Category string `json:"category"`
	City     string `json:"city"`
	MinPrice string `json:"min_price"`
	MaxPrice string `json:"max_price"`
	SortBy   string `json:"sortBy"`
}

// Clear returns the all-unset state.
func Clear() State { return State{} }

// IsZero reports whether every field is unset.
func (s State) IsZero() bool { return s == State{} }

// Sort returns the effective sort order.
func (s State) Sort() string {
	if s.SortBy == "" {
		return SortRelevance
	}
	return s.SortBy
}

// With returns a copy of s with the field addressed by key replaced.
func (s State) With(key, value string) (State, error) {
	switch key {
	case KeyQuery:
		s.Query = value
	case KeyCategory:
		s.Category = value
	case KeyCity:
		s.City = value
	case KeyMinPrice:
		s.MinPrice = value
	case KeyMaxPrice:
		s.MaxPrice = value
	case KeySortBy:
		s.SortBy = value
	default:
		return s, apperrors.InvalidInput(fmt.Sprintf("unknown filter %q, expected one of %s", key, strings.Join(Keys(), ", ")))
	}
	return s, nil
}

// Validate reports a validation error when a price is not a non-negative
// decimal, when min exceeds max, or when the sort order is unknown. Nothing
// is corrected.
func (s State) Validate() error {
	if _, _, err := s.PriceRange(); err != nil {
		return err
	}
	if s.SortBy != "" && !IsValidSort(s.SortBy) {
		return apperrors.InvalidInput(fmt.Sprintf("%s must be one of %s", KeySortBy, strings.Join(ValidSortOptions(), ", ")))
	}
	return nil
}

// PriceRange parses the price bounds. An unset bound is returned invalid.
func (s State) PriceRange() (minPrice, maxPrice decimal.NullDecimal, err error) {
	if minPrice, err = parsePrice(KeyMinPrice, s.MinPrice); err != nil {
		return minPrice, maxPrice, err
	}
	if maxPrice, err = parsePrice(KeyMaxPrice, s.MaxPrice); err != nil {
		return minPrice, maxPrice, err
	}
	if minPrice.Valid && maxPrice.Valid && minPrice.Decimal.GreaterThan(maxPrice.Decimal) {
		return minPrice, maxPrice, apperrors.InvalidInput(fmt.Sprintf("%s must not exceed %s", KeyMinPrice, KeyMaxPrice))
	}
	return minPrice, maxPrice, nil
}

func parsePrice(key, raw string) (decimal.NullDecimal, error) {
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}, apperrors.InvalidInput(fmt.Sprintf("%s must be a number, got %q", key, raw))
	}
	if d.IsNegative() {
		return decimal.NullDecimal{}, apperrors.InvalidInput(fmt.Sprintf("%s must not be negative", key))
	}
	return decimal.NewNullDecimal(d), nil
}

// Query is the flat shareable representation of a State. A missing key
// means unset.
type Query map[string]string

// Encode maps s to its query representation, omitting unset fields.
func Encode(s State) Query {
	q := Query{}
	put := func(k, v string) {
		if v != "" {
			q[k] = v
		}
	}
	put(KeyQuery, s.Query)
	put(KeyCategory, s.Category)
	put(KeyCity, s.City)
	put(KeyMinPrice, s.MinPrice)
	put(KeyMaxPrice, s.MaxPrice)
	put(KeySortBy, s.SortBy)
	return q
}

// Decode maps q back to a State. Unknown keys are ignored.
func Decode(q Query) State {
	return State{
		Query:    q[KeyQuery],
		Category: q[KeyCategory],
		City:     q[KeyCity],
		MinPrice: q[KeyMinPrice],
		MaxPrice: q[KeyMaxPrice],
		SortBy:   q[KeySortBy],
	}
}

// Values converts q to url.Values.
func (q Query) Values() url.Values {
	v := make(url.Values, len(q))
	for k, val := range q {
		v.Set(k, val)
	}
	return v
}

// String renders q as a query string with sorted keys, without the leading
// question mark.
func (q Query) String() string {
	return q.Values().Encode()
}

// ParseQuery parses a shareable location. A leading "?" is tolerated and the
// first value of a repeated key wins.
func ParseQuery(raw string) (Query, error) {
	values, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if err != nil {
		return nil, apperrors.InvalidInput(fmt.Sprintf("malformed location %q", raw))
	}
	q := make(Query, len(values))
	for k, v := range values {
		if len(v) > 0 && v[0] != "" {
			q[k] = v[0]
		}
	}
	return q, nil
}

