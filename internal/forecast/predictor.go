package forecast

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"salespulse/internal/config"
	apperrors "salespulse/internal/errors"
	"salespulse/pkg/contracts/domain"
)

// State is the lifecycle stage of a Predictor
type State int

const (
	StateUntrained State = iota
	StateTrained
)

func (s State) String() string {
	if s == StateTrained {
		return "trained"
	}
	return "untrained"
}

// Options tune a Predictor. Zero values take the package defaults.
type Options struct {
	MinRows         int
	HorizonWarnDays int
}

// Model is a fitted linear regression bound to the feature schema it was
// fit with
type Model struct {
	Features     []string  `json:"features"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

func (m *Model) predict(row []float64) float64 {
	y := m.Intercept
	for j, w := range m.Coefficients {
		y += w * row[j]
	}
	return y
}

// Forecast is the output of Predict
type Forecast struct {
	Points   []domain.ForecastPoint
	Warnings []string
}

// Predictor owns one forecasting session: Prepare records the origin and
// last date, Train fits the model, Predict extrapolates. It moves from
// untrained to trained once and never back. A Predictor is not safe for
// concurrent use.
type Predictor struct {
	opts     Options
	logger   *slog.Logger
	state    State
	prepared bool
	origin   time.Time
	last     time.Time
	model    *Model
}

// NewPredictor creates an untrained predictor
func NewPredictor(opts Options, logger *slog.Logger) *Predictor {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MinRows <= 0 {
		opts.MinRows = config.MinForecastRows
	}
	if opts.HorizonWarnDays <= 0 {
		opts.HorizonWarnDays = config.HorizonWarnDays
	}
	return &Predictor{
		opts:   opts,
		logger: logger.With(slog.String("component", "predictor")),
	}
}

// State returns the lifecycle state
func (p *Predictor) State() State { return p.state }

// Origin returns the origin date recorded by Prepare
func (p *Predictor) Origin() time.Time { return p.origin }

// LastDate returns the last series date recorded by Prepare
func (p *Predictor) LastDate() time.Time { return p.last }

// Model returns the fitted model, or nil before training
func (p *Predictor) Model() *Model { return p.model }

// Prepare builds the daily dataset and records its origin and last date.
// Both stay fixed for the life of the predictor, so it cannot be prepared
// again once trained.
func (p *Predictor) Prepare(ctx context.Context, t *domain.Table, dateCol, targetCol string) (*Dataset, error) {
	if p.state == StateTrained {
		return nil, apperrors.NewModelError(apperrors.CodeInvalidTrainingData,
			"predictor is already trained; create a new predictor for new data")
	}

	ds, err := BuildDataset(t, dateCol, targetCol, p.opts.MinRows)
	if err != nil {
		return nil, err
	}
	p.origin, p.last, p.prepared = ds.Origin, ds.Last, true

	p.logger.InfoContext(ctx, "daily series prepared",
		slog.Int("source_rows", t.Len()),
		slog.Int("days", ds.Len()),
		slog.String("origin", ds.Origin.Format(domain.DateLayout)),
		slog.String("last", ds.Last.Format(domain.DateLayout)))
	return ds, nil
}

// Train fits ordinary least squares on X and y. It rejects empty input,
// rows that do not match the feature schema and any NaN or infinite value.
func (p *Predictor) Train(ctx context.Context, X [][]float64, y []float64) error {
	if err := checkTrainingData(X, y); err != nil {
		return err
	}

	coef, intercept, err := fitOLS(X, y)
	if err != nil {
		return apperrors.NewAppError(apperrors.ErrTypeModel, apperrors.CodeInvalidTrainingData,
			"model fitting failed", err)
	}

	p.model = &Model{
		Features:     append([]string(nil), FeatureNames...),
		Coefficients: coef,
		Intercept:    intercept,
	}
	p.state = StateTrained

	fitted := make([]float64, len(X))
	for i, row := range X {
		fitted[i] = p.model.predict(row)
	}
	if m, err := Evaluate(y, fitted); err == nil {
		p.logger.InfoContext(ctx, "model trained",
			slog.Int("rows", len(X)),
			slog.Float64("train_r2", m.R2),
			slog.Float64("train_rmse", m.RMSE))
	}
	return nil
}

func checkTrainingData(X [][]float64, y []float64) error {
	invalid := func(msg string) error {
		return apperrors.NewModelError(apperrors.CodeInvalidTrainingData, msg)
	}
	if len(X) == 0 {
		return invalid("training data is empty")
	}
	if len(X) != len(y) {
		return invalid(fmt.Sprintf("feature rows (%d) and targets (%d) differ in length", len(X), len(y)))
	}
	for i, row := range X {
		if len(row) != len(FeatureNames) {
			return invalid(fmt.Sprintf("row %d has %d features, expected %d (%s)",
				i, len(row), len(FeatureNames), apperrors.JoinNames(FeatureNames)))
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return invalid(fmt.Sprintf("feature %s has a missing or infinite value at row %d", FeatureNames[j], i))
			}
		}
	}
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return invalid(fmt.Sprintf("target has a missing or infinite value at row %d", i))
		}
	}
	return nil
}

// fitOLS solves min ||Xw + b - y|| with an intercept. Columns are centered
// and the minimum-norm solution is taken from a thin SVD, so collinear or
// constant features do not fail the fit.
func fitOLS(X [][]float64, y []float64) ([]float64, float64, error) {
	n, k := len(X), len(X[0])

	xMean := make([]float64, k)
	yMean := 0.0
	for i, row := range X {
		for j, v := range row {
			xMean[j] += v
		}
		yMean += y[i]
	}
	for j := range xMean {
		xMean[j] /= float64(n)
	}
	yMean /= float64(n)

	a := mat.NewDense(n, k, nil)
	b := mat.NewVecDense(n, nil)
	for i, row := range X {
		for j, v := range row {
			a.Set(i, j, v-xMean[j])
		}
		b.SetVec(i, y[i]-yMean)
	}

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, 0, fmt.Errorf("singular value decomposition did not converge")
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	s := svd.Values(nil)

	coef := make([]float64, k)
	if len(s) > 0 && s[0] > 0 {
		// w = V * diag(1/s) * Uᵀ * b over singular values above the cutoff
		tol := s[0] * float64(max(n, k)) * eps
		var utb mat.VecDense
		utb.MulVec(u.T(), b)
		for i, sv := range s {
			if sv > tol {
				utb.SetVec(i, utb.AtVec(i)/sv)
			} else {
				utb.SetVec(i, 0)
			}
		}
		var w mat.VecDense
		w.MulVec(&v, &utb)
		for j := range coef {
			coef[j] = w.AtVec(j)
		}
	}

	intercept := yMean
	for j, w := range coef {
		intercept -= w * xMean[j]
	}
	return coef, intercept, nil
}

// eps is the float64 machine epsilon
const eps = 2.220446049250313e-16

// Predict extrapolates periods days starting the day after the last date
// recorded by Prepare, using the original origin. Predictions are floored
// at zero. Horizons past the warning threshold succeed with a warning.
func (p *Predictor) Predict(ctx context.Context, periods int) (*Forecast, error) {
	if p.state != StateTrained {
		return nil, apperrors.NewModelError(apperrors.CodeModelNotTrained,
			"model is not trained; call Train before Predict")
	}
	if !p.prepared {
		return nil, apperrors.NewModelError(apperrors.CodeModelNotTrained,
			"no training dates recorded; call Prepare before Predict")
	}
	if periods <= 0 {
		return nil, apperrors.NewModelError(apperrors.CodeInvalidHorizon,
			fmt.Sprintf("forecast periods must be a positive number of days, got %d", periods)).
			WithContext("periods", periods)
	}

	fc := &Forecast{Points: make([]domain.ForecastPoint, periods)}
	if periods > p.opts.HorizonWarnDays {
		msg := fmt.Sprintf("forecast horizon of %d days exceeds %d; accuracy may degrade", periods, p.opts.HorizonWarnDays)
		fc.Warnings = append(fc.Warnings, msg)
		p.logger.WarnContext(ctx, "long forecast horizon",
			slog.Int("periods", periods),
			slog.Int("threshold", p.opts.HorizonWarnDays))
	}

	for i := 0; i < periods; i++ {
		d := p.last.AddDate(0, 0, i+1)
		pred := p.model.predict(featureRow(calendarPoint(d, p.origin)))
		fc.Points[i] = domain.ForecastPoint{Date: d, Predicted: math.Max(pred, 0)}
	}

	p.logger.InfoContext(ctx, "forecast generated",
		slog.Int("periods", periods),
		slog.String("first_date", fc.Points[0].Date.Format(domain.DateLayout)))
	return fc, nil
}

// PredictRows applies the trained model to feature rows without clipping.
// It is used to score a held-out test partition.
func (p *Predictor) PredictRows(X [][]float64) ([]float64, error) {
	if p.state != StateTrained {
		return nil, apperrors.NewModelError(apperrors.CodeModelNotTrained,
			"model is not trained; call Train before predicting")
	}
	out := make([]float64, len(X))
	for i, row := range X {
		if len(row) != len(p.model.Features) {
			return nil, apperrors.NewModelError(apperrors.CodeInvalidTrainingData,
				fmt.Sprintf("row %d has %d features, model expects %d", i, len(row), len(p.model.Features)))
		}
		out[i] = p.model.predict(row)
	}
	return out, nil
}
