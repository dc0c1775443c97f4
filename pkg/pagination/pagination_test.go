package pagination

import (
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateClamps(t *testing.T) {
	p := &PaginationParams{Page: 0, PerPage: 500}
	p.Validate()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, MaxPerPage, p.PerPage)
	assert.Equal(t, 0, p.Offset())

	p = &PaginationParams{Page: 3, PerPage: 20}
	p.Validate()
	assert.Equal(t, 40, p.Offset())
}

func TestNewPagination(t *testing.T) {
	pg := NewPagination(2, 10, 25)
	assert.Equal(t, 3, pg.TotalPages)
	assert.True(t, pg.HasNext)
	assert.True(t, pg.HasPrev)

	last := NewPagination(3, 10, 25)
	assert.False(t, last.HasNext)
}

func TestEncodeAndMap(t *testing.T) {
	q := url.Values{}
	(&PaginationParams{Page: 2, PerPage: 50}).Encode(q)
	assert.Equal(t, "page=2&per_page=50", q.Encode())

	r := NewPaginatedResult([]int{1, 2}, NewPagination(1, 15, 2))
	m := Map(r, strconv.Itoa)
	assert.Equal(t, []string{"1", "2"}, m.Items)
	assert.Same(t, r.Pagination, m.Pagination)
}
