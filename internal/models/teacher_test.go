package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageableOffset(t *testing.T) {
	cases := []struct {
		name string
		page Pageable
		want int
	}{
		{name: "first page", page: Pageable{Page: 0, Size: 5}, want: 0},
		{name: "third page", page: Pageable{Page: 2, Size: 5}, want: 10},
		{name: "zero size", page: Pageable{Page: 3, Size: 0}, want: 0},
		{name: "overflowing product", page: Pageable{Page: math.MaxInt/2 + 1, Size: 2}, want: math.MaxInt},
		{name: "product of exactly 2^63", page: Pageable{Page: math.MaxInt/4 + 1, Size: 4}, want: math.MaxInt},
		{name: "largest exact", page: Pageable{Page: math.MaxInt / 5, Size: 5}, want: (math.MaxInt / 5) * 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.page.Offset())
		})
	}
}
