package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromRequest(t *testing.T) {
	tests := []struct {
		query string
		want  Params
	}{
		{"", Params{Page: 1, PerPage: 20, Offset: 0}},
		{"page=3&per_page=50", Params{Page: 3, PerPage: 50, Offset: 100}},
		{"page=0&per_page=-1", Params{Page: 1, PerPage: 20, Offset: 0}},
		{"page=abc&per_page=500", Params{Page: 1, PerPage: 20, Offset: 0}},
		{"page=2", Params{Page: 2, PerPage: 20, Offset: 20}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/cards?"+tt.query, nil)
			assert.Equal(t, tt.want, FromRequest(req))
		})
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	first := Paginate(items, Params{Page: 1, PerPage: 2, Offset: 0})
	assert.Equal(t, []int{1, 2}, first.Items)
	assert.Equal(t, 3, first.TotalPages)
	assert.True(t, first.HasNext)
	assert.False(t, first.HasPrev)

	last := Paginate(items, Params{Page: 3, PerPage: 2, Offset: 4})
	assert.Equal(t, []int{5}, last.Items)
	assert.False(t, last.HasNext)
	assert.True(t, last.HasPrev)

	beyond := Paginate(items, Params{Page: 9, PerPage: 2, Offset: 16})
	assert.Empty(t, beyond.Items)
	assert.NotNil(t, beyond.Items)
	assert.Equal(t, 5, beyond.TotalCount)
}

func TestPaginate_Empty(t *testing.T) {
	r := Paginate([]string(nil), DefaultParams())
	assert.Equal(t, 0, r.TotalPages)
	assert.Empty(t, r.Items)
	assert.False(t, r.HasNext)
}
