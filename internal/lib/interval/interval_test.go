package interval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtend(t *testing.T) {
	base := time.Date(2026, 1, 31, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		interval string
		want     *time.Time
		wantErr  bool
	}{
		{"monthly", "monthly", ptr(base.AddDate(0, 1, 0)), false},
		{"quarterly", "quarterly", ptr(base.AddDate(0, 3, 0)), false},
		{"biannual", "biannual", ptr(base.AddDate(0, 6, 0)), false},
		{"yearly", "yearly", ptr(base.AddDate(1, 0, 0)), false},
		{"lifetime has no end date", "lifetime", nil, false},
		{"unknown interval fails", "weekly", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extend(base, tt.interval)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtensionBase(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	future := now.AddDate(0, 1, 0)
	past := now.AddDate(0, -2, 0)

	tests := []struct {
		name      string
		startDate time.Time
		endDate   *time.Time
		want      time.Time
	}{
		{"unexpired end extends from the end", past, &future, future},
		{"expired end extends from now, no gifted months", past, &past, now},
		{"no end date extends from now", past, nil, now},
		{"future start extends from the start", future, nil, future},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtensionBase(tt.startDate, tt.endDate, now))
		})
	}
}

func ptr(t time.Time) *time.Time { return &t }
