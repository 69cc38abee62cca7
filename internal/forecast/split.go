package forecast

import (
	"fmt"
	"math"

	apperrors "salespulse/internal/errors"
)

// Split is a positional train/test partition. Rows keep their order, so
// every test row comes after every train row.
type Split struct {
	Index  int
	XTrain [][]float64
	XTest  [][]float64
	YTrain []float64
	YTest  []float64
}

// TemporalSplit puts the first int(n*(1-testFraction)) rows in train and
// the rest in test. It never shuffles.
func TemporalSplit(X [][]float64, y []float64, testFraction float64) (*Split, error) {
	if len(X) != len(y) {
		return nil, apperrors.NewModelError(apperrors.CodeInvalidSplit,
			fmt.Sprintf("feature rows (%d) and targets (%d) differ in length", len(X), len(y)))
	}
	if math.IsNaN(testFraction) || testFraction < 0 || testFraction > 1 {
		return nil, apperrors.NewModelError(apperrors.CodeInvalidSplit,
			fmt.Sprintf("test fraction must be between 0 and 1, got %v", testFraction))
	}

	n := len(X)
	idx := int(float64(n) * (1 - testFraction))
	if idx <= 0 || idx >= n {
		return nil, apperrors.NewModelError(apperrors.CodeInvalidSplit,
			fmt.Sprintf("split of %d rows at test fraction %v leaves %d train and %d test rows",
				n, testFraction, max(idx, 0), n-max(idx, 0))).
			WithContext("rows", n)
	}

	return &Split{
		Index:  idx,
		XTrain: X[:idx:idx],
		XTest:  X[idx:],
		YTrain: y[:idx:idx],
		YTest:  y[idx:],
	}, nil
}
