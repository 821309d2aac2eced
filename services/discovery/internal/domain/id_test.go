package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/atul950/NearBuy-ed/pkg/errors"
)

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want ID
	}{
		{`12`, "12"},
		{`"shop-7"`, "shop-7"},
		{`null`, ""},
		{`1e3`, "1e3"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var id ID
			require.NoError(t, json.Unmarshal([]byte(tt.in), &id))
			assert.Equal(t, tt.want, id)
		})
	}

	var id ID
	assert.Error(t, json.Unmarshal([]byte(`{"x":1}`), &id))
}

func TestOffer_DecodesCatalogPayload(t *testing.T) {
	var o Offer
	require.NoError(t, json.Unmarshal([]byte(`{"shop_id":3,"shop_name":"Sharma Kirana","price":149.5,"stock":0}`), &o))

	assert.Equal(t, ID("3"), o.ShopID)
	assert.Equal(t, "149.5", o.Price.String())
	assert.False(t, o.InStock())
}

func TestNewFailure(t *testing.T) {
	assert.Nil(t, NewFailure(nil))

	f := NewFailure(fmt.Errorf("load: %w", apperrors.NotFound("product", "9")))
	require.NotNil(t, f)
	assert.Equal(t, "NOT_FOUND", f.Kind)
	assert.Equal(t, "product with id 9 not found", f.Message)

	f = NewFailure(errors.New("boom"))
	assert.Equal(t, "INTERNAL_ERROR", f.Kind)
	assert.Equal(t, "boom", f.Message)
}
