package forecast

import (
	"context"
	"log/slog"

	"salespulse/pkg/contracts/domain"
)

// RunOptions configures Run
type RunOptions struct {
	DateColumn   string
	TargetColumn string
	TestSize     float64
	Periods      int
	Options
}

// Run executes one forecasting session on a fresh Predictor: prepare the
// daily series, split it in time order, train on the train partition,
// score the test partition and extrapolate Periods days past the series.
func Run(ctx context.Context, t *domain.Table, opts RunOptions, logger *slog.Logger) (*domain.ForecastResult, error) {
	p := NewPredictor(opts.Options, logger)

	ds, err := p.Prepare(ctx, t, opts.DateColumn, opts.TargetColumn)
	if err != nil {
		return nil, err
	}

	split, err := TemporalSplit(ds.X, ds.Y, opts.TestSize)
	if err != nil {
		return nil, err
	}
	p.logger.InfoContext(ctx, "temporal split",
		slog.Int("train_days", len(split.XTrain)),
		slog.Int("test_days", len(split.XTest)))

	if err := p.Train(ctx, split.XTrain, split.YTrain); err != nil {
		return nil, err
	}

	testPred, err := p.PredictRows(split.XTest)
	if err != nil {
		return nil, err
	}
	metrics, err := Evaluate(split.YTest, testPred)
	if err != nil {
		return nil, err
	}
	p.logger.InfoContext(ctx, "model evaluated",
		slog.Float64("rmse", metrics.RMSE),
		slog.Float64("mae", metrics.MAE),
		slog.Float64("r2", metrics.R2))

	fc, err := p.Predict(ctx, opts.Periods)
	if err != nil {
		return nil, err
	}

	return &domain.ForecastResult{
		Series:          ds.Series,
		SplitIndex:      split.Index,
		TestPredictions: testPred,
		Metrics:         metrics,
		Forecast:        fc.Points,
		Origin:          ds.Origin,
		LastDate:        ds.Last,
		Warnings:        fc.Warnings,
	}, nil
}
