package filter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/atul950/NearBuy-ed/pkg/errors"
)

func sampleStates() []State {
	return []State{
		{},
		{Query: "rice"},
		{Query: "basmati rice", Category: "Groceries", City: "Pune"},
		{Category: "Electronics & Gadgets", MinPrice: "100", MaxPrice: "2500.50", SortBy: SortPriceAsc},
		{City: "navi mumbai", MaxPrice: "0"},
		{Query: "tea=chai&x", SortBy: SortNewest, MinPrice: "0.5"},
		{Query: "ÇAY ☕", City: "Bengaluru"},
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	for _, s := range sampleStates() {
		assert.Equal(t, s, Decode(Encode(s)))
	}
}

func TestEncode_Idempotent(t *testing.T) {
	for _, s := range sampleStates() {
		once := Encode(s)
		assert.Equal(t, once, Encode(Decode(once)))
	}
}

func TestEncode_OmitsUnsetAndMapsKeys(t *testing.T) {
	q := Encode(State{Query: "milk", MinPrice: "10", SortBy: SortPriceDesc})

	assert.Equal(t, Query{"q": "milk", "min_price": "10", "sortBy": "price_desc"}, q)
}

func TestDecode_IgnoresUnknownKeys(t *testing.T) {
	s := Decode(Query{"q": "soap", "page": "3", "Category": "x"})

	assert.Equal(t, State{Query: "soap"}, s)
}

func TestClear(t *testing.T) {
	assert.Empty(t, Encode(Clear()))
	assert.Equal(t, Clear(), Decode(Encode(Clear())))
	assert.Equal(t, "", Encode(Clear()).String())
	assert.True(t, Clear().IsZero())
}

func TestQueryString_ParseQuery_RoundTrip(t *testing.T) {
	for _, s := range sampleStates() {
		raw := Encode(s).String()

		q, err := ParseQuery(raw)
		require.NoError(t, err)
		assert.Equal(t, s, Decode(q))
	}
}

func TestQueryString_SortedKeys(t *testing.T) {
	q := Encode(State{Query: "pen", City: "Pune", Category: "Stationery"})

	assert.Equal(t, "category=Stationery&city=Pune&q=pen", q.String())
}

func TestParseQuery(t *testing.T) {
	q, err := ParseQuery("?q=dal&q=rice&city=&min_price=5")
	require.NoError(t, err)
	assert.Equal(t, Query{"q": "dal", "min_price": "5"}, q)

	q, err = ParseQuery("")
	require.NoError(t, err)
	assert.Empty(t, q)

	_, err = ParseQuery("q=%zz")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestState_With(t *testing.T) {
	s, err := State{Query: "oil"}.With(KeyCity, "Nagpur")
	require.NoError(t, err)
	assert.Equal(t, State{Query: "oil", City: "Nagpur"}, s)

	s, err = s.With(KeyQuery, "")
	require.NoError(t, err)
	assert.Equal(t, State{City: "Nagpur"}, s)

	unchanged, err := s.With("color", "red")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	assert.Equal(t, s, unchanged)
}

func TestState_Validate(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		wantErr bool
	}{
		{"empty", State{}, false},
		{"bounds in order", State{MinPrice: "10", MaxPrice: "20"}, false},
		{"equal bounds", State{MinPrice: "20.00", MaxPrice: "20"}, false},
		{"only max", State{MaxPrice: "99.99"}, false},
		{"min above max", State{MinPrice: "500", MaxPrice: "100"}, true},
		{"not a number", State{MinPrice: "cheap"}, true},
		{"negative", State{MaxPrice: "-1"}, true},
		{"known sort", State{SortBy: SortNewest}, false},
		{"unknown sort", State{SortBy: "rating"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.state.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestState_PriceRange(t *testing.T) {
	lo, hi, err := State{MinPrice: "12.5"}.PriceRange()

	require.NoError(t, err)
	assert.True(t, lo.Valid)
	assert.Equal(t, "12.5", lo.Decimal.String())
	assert.False(t, hi.Valid)
}

func TestState_Sort(t *testing.T) {
	assert.Equal(t, SortRelevance, State{}.Sort())
	assert.Equal(t, SortPriceAsc, State{SortBy: SortPriceAsc}.Sort())
}
