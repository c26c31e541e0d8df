package helpers

import (
	"math"
	"testing"
)

func TestCalculateOffsetLimit(t *testing.T) {
	tests := []struct {
		name       string
		page, size int
		wantOffset uint64
		wantLimit  int
	}{
		{"defaults", 0, 0, 0, DefaultPageSize},
		{"second page", 2, 25, 25, 25},
		{"size over max", 3, MaxPageSize + 1, 20, DefaultPageSize},
		{"huge page stays in range", math.MaxInt, 10, uint64(math.MaxInt/10-1) * 10, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset, limit := CalculateOffsetLimit(tt.page, tt.size)
			if offset != tt.wantOffset || limit != tt.wantLimit {
				t.Fatalf("CalculateOffsetLimit(%d, %d) = (%d, %d), want (%d, %d)",
					tt.page, tt.size, offset, limit, tt.wantOffset, tt.wantLimit)
			}
			if offset > math.MaxInt64 {
				t.Fatalf("offset %d does not fit a signed 64-bit integer", offset)
			}
		})
	}
}

func TestCalculateSliceIndices(t *testing.T) {
	tests := []struct {
		name               string
		page, size, total  int
		wantStart, wantEnd int
	}{
		{"first page", 1, 3, 4, 0, 3},
		{"last partial page", 2, 3, 4, 3, 4},
		{"past the end", 5, 3, 4, 4, 4},
		{"huge page", math.MaxInt, 10, 4, 4, 4},
		{"empty", 1, 10, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := CalculateSliceIndices(tt.page, tt.size, tt.total)
			if start != tt.wantStart || end != tt.wantEnd {
				t.Fatalf("CalculateSliceIndices(%d, %d, %d) = (%d, %d), want (%d, %d)",
					tt.page, tt.size, tt.total, start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}
