package forecast

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	apperrors "salespulse/internal/errors"
	"salespulse/pkg/contracts/domain"
)

// Evaluate scores predictions against actuals with RMSE, MAE and R².
// When the actuals have zero variance R² is 1 for a perfect fit and 0
// otherwise.
func Evaluate(yTrue, yPred []float64) (domain.EvaluationMetrics, error) {
	if len(yTrue) == 0 || len(yTrue) != len(yPred) {
		return domain.EvaluationMetrics{}, apperrors.NewModelError(apperrors.CodeInvalidEvaluationInput,
			fmt.Sprintf("need equal, non-empty series; got %d actuals and %d predictions", len(yTrue), len(yPred)))
	}

	n := float64(len(yTrue))
	l2 := floats.Distance(yTrue, yPred, 2)
	ssRes := l2 * l2

	mean := stat.Mean(yTrue, nil)
	ssTot := 0.0
	for _, v := range yTrue {
		ssTot += (v - mean) * (v - mean)
	}

	var r2 float64
	switch {
	case ssTot > 0:
		r2 = 1 - ssRes/ssTot
	case ssRes == 0:
		r2 = 1
	}

	return domain.EvaluationMetrics{
		RMSE: math.Sqrt(ssRes / n),
		MAE:  floats.Distance(yTrue, yPred, 1) / n,
		R2:   r2,
	}, nil
}
