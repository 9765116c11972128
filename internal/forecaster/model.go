package forecaster

import (
	"errors"
	"fmt"
	"math"
)

// ModelConfig configures a single autoregressive model.
type ModelConfig struct {
	InputWindow  int     // observations consumed per prediction step
	Horizon      int     // points to forecast past the end of the series
	MaxSteps     int     // gradient-descent iteration budget
	LearningRate float64 // base rate, divided by InputWindow+1 during training
	ValSize      int     // trailing points held out for model selection
}

// Model is a linear autoregressive forecaster over z-scored values. Training runs
// full-batch gradient descent from a persistence start (next = last) and keeps the weights
// with the lowest validation error seen.
type Model struct {
	cfg     ModelConfig
	weights []float64
	bias    float64
	mean    float64
	std     float64
	context []float64 // last InputWindow normalized values of the fitted series
	fitted  bool
}

// FitReport summarizes one Fit call.
type FitReport struct {
	StepsRun      int
	ValidationLen int
	ValidationMAE float64
	BaselineMAE   float64
}

// NewModel validates cfg and returns an untrained model.
func NewModel(cfg ModelConfig) (*Model, error) {
	switch {
	case cfg.InputWindow < 1:
		return nil, fmt.Errorf("input window must be positive, got %d", cfg.InputWindow)
	case cfg.Horizon < 1:
		return nil, fmt.Errorf("horizon must be positive, got %d", cfg.Horizon)
	case cfg.MaxSteps < 0:
		return nil, fmt.Errorf("max steps must not be negative, got %d", cfg.MaxSteps)
	case cfg.LearningRate <= 0:
		return nil, fmt.Errorf("learning rate must be positive, got %g", cfg.LearningRate)
	case cfg.ValSize < 0:
		return nil, fmt.Errorf("validation size must not be negative, got %d", cfg.ValSize)
	}
	return &Model{cfg: cfg}, nil
}

// Fit trains on values. The trailing ValSize points are held out for selection; when that
// would leave fewer than InputWindow+1 training points, validation is skipped.
func (m *Model) Fit(values []float64) (FitReport, error) {
	w := m.cfg.InputWindow
	if len(values) < w+1 {
		return FitReport{}, fmt.Errorf("need at least %d values, got %d", w+1, len(values))
	}
	valSize := m.cfg.ValSize
	if len(values)-valSize < w+1 {
		valSize = 0
	}
	train := values[:len(values)-valSize]
	val := values[len(values)-valSize:]

	m.mean, m.std = meanStd(train)
	z := m.normalize(train)

	xs := make([][]float64, 0, len(z)-w)
	ys := make([]float64, 0, len(z)-w)
	for i := w; i < len(z); i++ {
		xs = append(xs, z[i-w:i])
		ys = append(ys, z[i])
	}

	weights := make([]float64, w)
	weights[w-1] = 1
	bias := 0.0

	report := FitReport{ValidationLen: len(val)}
	bestW := append([]float64(nil), weights...)
	bestB := bias
	bestErr := math.Inf(1)
	if len(val) > 0 {
		bestErr = m.validationMAE(weights, bias, z, val)
		report.BaselineMAE = baselineMAE(train[len(train)-1], val)
	}

	lr := m.cfg.LearningRate / float64(w+1)
	grad := make([]float64, w)
	for step := 0; step < m.cfg.MaxSteps; step++ {
		for j := range grad {
			grad[j] = 0
		}
		gradB := 0.0
		for i, x := range xs {
			resid := dot(weights, x) + bias - ys[i]
			for j := range grad {
				grad[j] += resid * x[j]
			}
			gradB += resid
		}
		scale := 2 / float64(len(xs))
		diverged := false
		for j := range weights {
			weights[j] -= lr * scale * grad[j]
			if math.IsNaN(weights[j]) || math.IsInf(weights[j], 0) {
				diverged = true
			}
		}
		bias -= lr * scale * gradB
		if diverged || math.IsNaN(bias) {
			break
		}
		report.StepsRun = step + 1

		if len(val) == 0 {
			copy(bestW, weights)
			bestB = bias
			continue
		}
		if e := m.validationMAE(weights, bias, z, val); e < bestErr {
			bestErr = e
			copy(bestW, weights)
			bestB = bias
		}
	}

	m.weights, m.bias = bestW, bestB
	if len(val) > 0 {
		report.ValidationMAE = bestErr
	}
	full := m.normalize(values)
	m.context = append([]float64(nil), full[len(full)-w:]...)
	m.fitted = true
	return report, nil
}

// Predict returns Horizon values following the fitted series.
func (m *Model) Predict() ([]float64, error) {
	if !m.fitted {
		return nil, errors.New("model is not fitted")
	}
	out := m.rollout(m.weights, m.bias, m.context, m.cfg.Horizon)
	for i := range out {
		out[i] = m.denormalize(out[i])
	}
	return out, nil
}

// validationMAE forecasts len(val) steps from the end of the normalized training series and
// compares against val in price units.
func (m *Model) validationMAE(weights []float64, bias float64, z, val []float64) float64 {
	preds := m.rollout(weights, bias, z[len(z)-m.cfg.InputWindow:], len(val))
	sum := 0.0
	for i, p := range preds {
		sum += math.Abs(m.denormalize(p) - val[i])
	}
	return sum / float64(len(val))
}

func (m *Model) rollout(weights []float64, bias float64, seed []float64, steps int) []float64 {
	w := m.cfg.InputWindow
	window := make([]float64, 0, w+steps)
	window = append(window, seed...)
	out := make([]float64, steps)
	for i := 0; i < steps; i++ {
		next := dot(weights, window[len(window)-w:]) + bias
		out[i] = next
		window = append(window, next)
	}
	return out
}

func (m *Model) normalize(values []float64) []float64 {
	z := make([]float64, len(values))
	for i, v := range values {
		z[i] = (v - m.mean) / m.std
	}
	return z
}

func (m *Model) denormalize(z float64) float64 {
	return z*m.std + m.mean
}

func meanStd(values []float64) (mean, std float64) {
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	for _, v := range values {
		std += (v - mean) * (v - mean)
	}
	std = math.Sqrt(std / float64(len(values)))
	if std == 0 {
		std = 1
	}
	return mean, std
}

func baselineMAE(last float64, val []float64) float64 {
	sum := 0.0
	for _, v := range val {
		sum += math.Abs(v - last)
	}
	return sum / float64(len(val))
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
