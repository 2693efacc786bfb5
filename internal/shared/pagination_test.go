package shared

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPaginationDefaults(t *testing.T) {
	p := NewPagination(0, 0, 250)
	require.Equal(t, 1, p.Page)
	require.Equal(t, DefaultPerPage, p.PerPage)
	require.Equal(t, 3, p.TotalPages)
	require.Equal(t, 1, p.From)
	require.Equal(t, 100, p.To)
}

func TestPaginationBoundsClampLastPage(t *testing.T) {
	p := NewPagination(3, 100, 250)
	start, end := p.Bounds()
	require.Equal(t, 200, start)
	require.Equal(t, 250, end)
	require.Equal(t, 201, p.From)
	require.Equal(t, 250, p.To)
}

func TestPaginationBeyondLastPageIsEmpty(t *testing.T) {
	p := NewPagination(9, 10, 15)
	start, end := p.Bounds()
	require.Equal(t, 15, start)
	require.Equal(t, 15, end)
	require.Zero(t, p.From)
	require.Zero(t, p.To)
}

func TestPaginationHugePages(t *testing.T) {
	cases := []struct {
		name    string
		page    int
		perPage int
		total   int
	}{
		{"max int page", math.MaxInt, 100, 250},
		{"overflowing product", math.MaxInt / 50, 100, 250},
		{"huge page size", 2, math.MaxInt, 250},
		{"just past the end", 4, 100, 250},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPagination(tc.page, tc.perPage, tc.total)
			start, end := p.Bounds()
			require.Equal(t, tc.total, start)
			require.Equal(t, tc.total, end)
			require.Zero(t, p.From)
			require.Zero(t, p.To)
		})
	}
}

func TestPaginationEmptyListing(t *testing.T) {
	p := NewPagination(1, 10, 0)
	require.Zero(t, p.TotalPages)
	require.Zero(t, p.From)
	start, end := p.Bounds()
	require.Zero(t, start)
	require.Zero(t, end)
}
