// Package forecast frames sales as a gap-filled daily series and fits a
// linear regression on calendar features.
//
// The feature schema is fixed and ordered: DaysFromOrigin, DayOfWeek
// (Monday = 0), Month, Quarter, DayOfMonth and IsWeekend. Origin is the
// first date of the series when Prepare ran; future days are measured from
// it too.
//
// A Predictor is a small state machine:
//
//	p := forecast.NewPredictor(forecast.Options{}, logger)
//	ds, err := p.Prepare(ctx, cleaned, "Order Date", "Sales")
//	split, err := forecast.TemporalSplit(ds.X, ds.Y, 0.2)
//	err = p.Train(ctx, split.XTrain, split.YTrain)
//	fc, err := p.Predict(ctx, 30)
//
// Predict before Train fails with MODEL_NOT_TRAINED. Run wraps the whole
// sequence and also scores the test partition with Evaluate.
package forecast
