package forecast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "salespulse/internal/errors"
	"salespulse/internal/shared/testutil"
	"salespulse/pkg/contracts/domain"
)

func TestTemporalSplitNonLeakage(t *testing.T) {
	ds, err := BuildDataset(testutil.DailySalesTable(t, jan1, 120, linearTrend), domain.ColOrderDate, domain.ColSales, 100)
	require.NoError(t, err)

	split, err := TemporalSplit(ds.X, ds.Y, 0.2)
	require.NoError(t, err)
	assert.Equal(t, 96, split.Index)
	assert.Len(t, split.XTrain, 96)
	assert.Len(t, split.XTest, 24)
	assert.Len(t, split.YTest, 24)

	lastTrain := ds.Series[split.Index-1].Date
	for _, p := range ds.Series[split.Index:] {
		assert.False(t, p.Date.Before(lastTrain))
	}
	for i, row := range split.XTest {
		assert.Equal(t, float64(split.Index+i), row[0], "rows keep their order")
	}
}

func TestTemporalSplitErrors(t *testing.T) {
	rows := func(n int) ([][]float64, []float64) {
		X := make([][]float64, n)
		y := make([]float64, n)
		for i := range X {
			X[i] = []float64{float64(i), 0, 1, 1, 1, 0}
		}
		return X, y
	}

	tests := []struct {
		name     string
		n        int
		fraction float64
	}{
		{name: "empty input", n: 0, fraction: 0.2},
		{name: "zero test fraction leaves no test rows", n: 10, fraction: 0},
		{name: "full test fraction leaves no train rows", n: 10, fraction: 1},
		{name: "tiny input rounds train to zero", n: 1, fraction: 0.5},
		{name: "negative fraction", n: 10, fraction: -0.1},
		{name: "fraction above one", n: 10, fraction: 1.5},
		{name: "nan fraction", n: 10, fraction: math.NaN()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			X, y := rows(tt.n)
			_, err := TemporalSplit(X, y, tt.fraction)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidSplit)
		})
	}

	t.Run("length mismatch", func(t *testing.T) {
		X, _ := rows(10)
		_, err := TemporalSplit(X, make([]float64, 9), 0.2)
		assert.ErrorIs(t, err, apperrors.ErrInvalidSplit)
	})
}
