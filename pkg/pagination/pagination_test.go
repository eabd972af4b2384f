package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_ClampsPage(t *testing.T) {
	assert.Equal(t, Params{Page: 1, PageSize: 5}, New(0, 5))
	assert.Equal(t, Params{Page: 1, PageSize: 5}, New(-3, 5))
	assert.Equal(t, Params{Page: 4, PageSize: 5}, New(4, 5))
}

func TestNew_DefaultPageSize(t *testing.T) {
	assert.Equal(t, DefaultPageSize, New(1, 0).PageSize)
	assert.Equal(t, DefaultPageSize, New(1, -1).PageSize)
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 1},
		{"abc", 1},
		{"0", 1},
		{"-2", 1},
		{"1", 1},
		{"3", 3},
		{"2.5", 1},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePage(tt.raw))
		})
	}
}

func TestOffset(t *testing.T) {
	tests := []struct {
		page, size, offset int
	}{
		{1, 10, 0},
		{2, 10, 10},
		{2, 5, 5},
		{3, 25, 50},
	}

	for _, tt := range tests {
		p := New(tt.page, tt.size)
		assert.Equal(t, tt.offset, p.Offset())
		assert.Equal(t, tt.size, p.Limit())
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		name        string
		total, size int
		want        int
	}{
		{"empty", 0, 5, 0},
		{"single short page", 3, 5, 1},
		{"exact multiple has no trailing page", 10, 5, 2},
		{"one over", 11, 5, 3},
		{"twelve by five", 12, 5, 3},
		{"invalid size", 10, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TotalPages(tt.total, tt.size))
		})
	}
}
