package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllocateID(t *testing.T) {
	day := time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		existing []string
		want     string
	}{
		{
			name: "first of the day",
			want: "bv_2025_03_14_001",
		},
		{
			name:     "next after highest",
			existing: []string{"bv_2025_03_14_001", "bv_2025_03_14_007", "bv_2025_03_14_003"},
			want:     "bv_2025_03_14_008",
		},
		{
			name:     "other days ignored",
			existing: []string{"bv_2025_03_13_042", "bv_2024_03_14_005"},
			want:     "bv_2025_03_14_001",
		},
		{
			name:     "malformed ids ignored",
			existing: []string{"bv_2025_03_14_", "bv_2025_03_14_ab", "something-else", "bv_2025_03_14_01"},
			want:     "bv_2025_03_14_001",
		},
		{
			name:     "sequence grows past padding",
			existing: []string{"bv_2025_03_14_999", "bv_2025_03_14_1000"},
			want:     "bv_2025_03_14_1001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AllocateID(day, tt.existing))
		})
	}
}

func TestAllocateIDUniqueInSequence(t *testing.T) {
	day := time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC)

	var ids []string
	seen := map[string]bool{}
	for i := 0; i < 25; i++ {
		id := AllocateID(day, ids)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
		ids = append(ids, id)
	}
	assert.Equal(t, fmt.Sprintf("bv_2025_07_01_%03d", 25), ids[24])
}
