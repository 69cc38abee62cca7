package forecast

import (
	"context"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "salespulse/internal/errors"
	"salespulse/internal/shared/testutil"
	"salespulse/pkg/contracts/domain"
)

func linearTrend(i int) float64 { return 100 + 5*float64(i) }

func trainedPredictor(t *testing.T, days int, sales func(int) float64) (*Predictor, *Dataset) {
	t.Helper()
	ctx := context.Background()
	p := NewPredictor(Options{}, nil)
	ds, err := p.Prepare(ctx, testutil.DailySalesTable(t, jan1, days, sales), domain.ColOrderDate, domain.ColSales)
	require.NoError(t, err)
	require.NoError(t, p.Train(ctx, ds.X, ds.Y))
	return p, ds
}

func TestPredictorLinearTrend(t *testing.T) {
	p, ds := trainedPredictor(t, 120, linearTrend)
	require.Equal(t, StateTrained, p.State())

	fitted, err := p.PredictRows(ds.X)
	require.NoError(t, err)
	for i, y := range fitted {
		assert.InDelta(t, ds.Y[i], y, 1e-6)
	}

	fc, err := p.Predict(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, fc.Points, 10)
	assert.Empty(t, fc.Warnings)

	for i, pt := range fc.Points {
		assert.InDelta(t, linearTrend(120+i), pt.Predicted, 1e-6)
		if i > 0 {
			assert.Greater(t, pt.Predicted, fc.Points[i-1].Predicted)
		}
	}
}

func TestPredictorLifecycle(t *testing.T) {
	ctx := context.Background()
	p := NewPredictor(Options{}, nil)
	assert.Equal(t, StateUntrained, p.State())
	assert.Nil(t, p.Model())

	_, err := p.Predict(ctx, 10)
	assert.ErrorIs(t, err, apperrors.ErrModelNotTrained)

	_, err = p.PredictRows([][]float64{{0, 0, 0, 0, 0, 0}})
	assert.ErrorIs(t, err, apperrors.ErrModelNotTrained)

	ds, err := p.Prepare(ctx, testutil.DailySalesTable(t, jan1, 120, linearTrend), domain.ColOrderDate, domain.ColSales)
	require.NoError(t, err)
	assert.Equal(t, StateUntrained, p.State(), "prepare does not train")

	require.NoError(t, p.Train(ctx, ds.X, ds.Y))
	assert.Equal(t, StateTrained, p.State())
	assert.Equal(t, FeatureNames, p.Model().Features)

	_, err = p.Prepare(ctx, testutil.DailySalesTable(t, jan1.AddDate(1, 0, 0), 120, linearTrend), domain.ColOrderDate, domain.ColSales)
	require.Error(t, err)
	assert.Equal(t, jan1, p.Origin(), "origin survives for the life of the predictor")
}

func TestPredictWithoutPrepare(t *testing.T) {
	p := NewPredictor(Options{}, nil)
	ds, err := BuildDataset(testutil.DailySalesTable(t, jan1, 120, linearTrend), domain.ColOrderDate, domain.ColSales, 100)
	require.NoError(t, err)
	require.NoError(t, p.Train(context.Background(), ds.X, ds.Y))

	_, err = p.Predict(context.Background(), 5)
	assert.ErrorIs(t, err, apperrors.ErrModelNotTrained)
}

func TestPredictHorizon(t *testing.T) {
	p, ds := trainedPredictor(t, 120, linearTrend)

	for _, periods := range []int{0, -5} {
		_, err := p.Predict(context.Background(), periods)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInvalidHorizon)
		assert.Equal(t, apperrors.ErrTypeModel, apperrors.TypeOf(err))
	}

	fc, err := p.Predict(context.Background(), 30)
	require.NoError(t, err)
	require.Len(t, fc.Points, 30)
	for i, pt := range fc.Points {
		assert.Equal(t, ds.Last.AddDate(0, 0, i+1), pt.Date)
	}
}

func TestPredictLongHorizonWarns(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	ctx := context.Background()
	p := NewPredictor(Options{}, logger)
	ds, err := p.Prepare(ctx, testutil.DailySalesTable(t, jan1, 120, linearTrend), domain.ColOrderDate, domain.ColSales)
	require.NoError(t, err)
	require.NoError(t, p.Train(ctx, ds.X, ds.Y))

	fc, err := p.Predict(ctx, 400)
	require.NoError(t, err)
	assert.Len(t, fc.Points, 400)
	require.Len(t, fc.Warnings, 1)
	assert.Contains(t, fc.Warnings[0], "400")
	testutil.AssertLogContains(t, logs, slog.LevelWarn, "long forecast horizon")

	fc, err = p.Predict(ctx, 365)
	require.NoError(t, err)
	assert.Empty(t, fc.Warnings)
}

func TestPredictClipsAtZero(t *testing.T) {
	p, _ := trainedPredictor(t, 120, func(i int) float64 { return 1200 - 10*float64(i) })

	fc, err := p.Predict(context.Background(), 60)
	require.NoError(t, err)

	sawZero := false
	for _, pt := range fc.Points {
		assert.GreaterOrEqual(t, pt.Predicted, 0.0)
		if pt.Predicted == 0 {
			sawZero = true
		}
	}
	assert.True(t, sawZero, "a falling trend must hit the floor")
}

func TestTrainRejectsInvalidData(t *testing.T) {
	good := []float64{1, 2, 3, 4, 5, 0}
	tests := []struct {
		name string
		X    [][]float64
		y    []float64
	}{
		{name: "empty", X: nil, y: nil},
		{name: "length mismatch", X: [][]float64{good, good}, y: []float64{1}},
		{name: "wrong width", X: [][]float64{{1, 2, 3}}, y: []float64{1}},
		{name: "nan feature", X: [][]float64{good, {1, math.NaN(), 3, 4, 5, 0}}, y: []float64{1, 2}},
		{name: "infinite feature", X: [][]float64{good, {1, 2, math.Inf(1), 4, 5, 0}}, y: []float64{1, 2}},
		{name: "nan target", X: [][]float64{good, good}, y: []float64{1, math.NaN()}},
		{name: "infinite target", X: [][]float64{good, good}, y: []float64{math.Inf(-1), 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPredictor(Options{}, nil)
			err := p.Train(context.Background(), tt.X, tt.y)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidTrainingData)
			assert.Equal(t, StateUntrained, p.State())
		})
	}
}

func TestFitOLSHandlesDegenerateColumns(t *testing.T) {
	// a constant column and a duplicated column make XᵀX singular
	X := make([][]float64, 20)
	y := make([]float64, 20)
	for i := range X {
		x := float64(i)
		X[i] = []float64{x, 3, x, 1, 1, 0}
		y[i] = 2*x + 7
	}

	coef, intercept, err := fitOLS(X, y)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, coef[0], 1e-9, "weight splits evenly across duplicated columns")
	assert.InDelta(t, 1.0, coef[2], 1e-9)
	assert.InDelta(t, 0.0, coef[1], 1e-9)
	assert.InDelta(t, 7.0, intercept, 1e-9)
}

func TestFitOLSSingleRow(t *testing.T) {
	coef, intercept, err := fitOLS([][]float64{{1, 2, 3, 4, 5, 0}}, []float64{42})
	require.NoError(t, err)
	for _, w := range coef {
		assert.Zero(t, w)
	}
	assert.Equal(t, 42.0, intercept)
}
