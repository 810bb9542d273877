package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsCancellable(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name      string
		showStart time.Time
		window    time.Duration
		want      bool
	}{
		{
			name:      "Show in a week",
			showStart: now.Add(7 * 24 * time.Hour),
			window:    DefaultCancelWindow,
			want:      true,
		},
		{
			name:      "Exactly 24 hours before",
			showStart: now.Add(24 * time.Hour),
			window:    DefaultCancelWindow,
			want:      true,
		},
		{
			name:      "One minute inside the window",
			showStart: now.Add(24*time.Hour - time.Minute),
			window:    DefaultCancelWindow,
			want:      false,
		},
		{
			name:      "One hour before the show",
			showStart: now.Add(time.Hour),
			window:    DefaultCancelWindow,
			want:      false,
		},
		{
			name:      "Show already started",
			showStart: now.Add(-time.Hour),
			window:    DefaultCancelWindow,
			want:      false,
		},
		{
			name:      "Shorter configured window",
			showStart: now.Add(3 * time.Hour),
			window:    2 * time.Hour,
			want:      true,
		},
		{
			name:      "Zero window falls back to the default",
			showStart: now.Add(23 * time.Hour),
			window:    0,
			want:      false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsCancellable(tc.showStart, now, tc.window))
		})
	}
}

func TestComputeRefund(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("Full refund outside the window", func(t *testing.T) {
		refund := ComputeRefund(750.50, now.Add(48*time.Hour), now, DefaultCancelWindow)
		assert.Equal(t, 750.50, refund)
	})

	t.Run("Full refund at exactly the boundary", func(t *testing.T) {
		refund := ComputeRefund(300, now.Add(24*time.Hour), now, DefaultCancelWindow)
		assert.Equal(t, 300.0, refund)
	})

	t.Run("No refund inside the window", func(t *testing.T) {
		refund := ComputeRefund(750.50, now.Add(23*time.Hour), now, DefaultCancelWindow)
		assert.Equal(t, 0.0, refund)
	})
}
