package models

import (
	"testing"
	"time"
)

func TestIsOverdue(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)

	cases := []struct {
		name     string
		status   string
		expected time.Time
		want     bool
	}{
		{"borrowed past due", StatusBorrowed, past, true},
		{"borrowed not yet due", StatusBorrowed, future, false},
		{"pending never overdue", StatusPending, past, false},
		{"returned never overdue", StatusReturned, past, false},
		{"returning never overdue", StatusReturning, past, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := &Borrowing{Status: tc.status, ExpectedReturnDate: tc.expected}
			if got := b.IsOverdue(now); got != tc.want {
				t.Errorf("IsOverdue = %v, want %v", got, tc.want)
			}
		})
	}
}
