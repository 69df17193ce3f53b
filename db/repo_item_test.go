package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampAvailable(t *testing.T) {
	cases := []struct {
		name   string
		oldQty int
		newQty int
		avail  int
		want   int
	}{
		{"increase total adds to available", 5, 8, 2, 5},
		{"decrease total subtracts from available", 5, 3, 4, 2},
		{"never below zero", 5, 1, 2, 0},
		{"never above new total", 5, 2, 5, 2},
		{"unchanged total keeps available", 5, 5, 3, 3},
		{"all lent out, total shrunk to zero", 4, 0, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, clampAvailable(tc.oldQty, tc.newQty, tc.avail))
		})
	}
}
