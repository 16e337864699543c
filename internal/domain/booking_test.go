package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func TestTotalDaysBetween(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		end      string
		expected int32
	}{
		{"Same day counts as one", "2026-01-01", "2026-01-01", 1},
		{"Inclusive on both ends", "2026-01-01", "2026-01-03", 3},
		{"Across a month boundary", "2026-01-30", "2026-02-02", 4},
		{"Across a leap day", "2028-02-28", "2028-03-01", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TotalDaysBetween(day(tt.start), day(tt.end)))
		})
	}
}
