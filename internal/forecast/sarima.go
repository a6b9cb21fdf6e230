package forecast

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/optimize"

	"CryptoSentinel/internal/model"
)

const (
	seasonalPeriod = 7
	// One regular plus one seasonal difference consume period+1 points.
	diffOrder = seasonalPeriod + 1
	// Minimum observations to identify the weekly pattern.
	minObservations = 3 * seasonalPeriod

	paramBound = 0.99
	zScore95   = 1.959963984540054
)

// SARIMA is a seasonal ARIMA(1,1,1)(1,1,1) model with a 7-period cycle,
// estimated by conditional sum of squares. Non-stationary input is handled
// by the regular and seasonal differences.
type SARIMA struct{}

// params holds the four ARMA coefficients of the differenced series:
// (1-phi·B)(1-sphi·B^7) w_t = (1+theta·B)(1+stheta·B^7) e_t
type params struct {
	phi, theta, sphi, stheta float64
}

// Forecast fits the model and returns days forecast steps. Each step's
// timestamp is the last historical timestamp advanced by a multiple of the
// series' sampling interval.
func (SARIMA) Forecast(series model.PriceSeries, days int) ([]Point, error) {
	if days <= 0 {
		return nil, fmt.Errorf("%w: non-positive horizon", ErrUnavailable)
	}
	if len(series) < minObservations {
		return nil, fmt.Errorf("%w: %d observations, need %d", ErrUnavailable, len(series), minObservations)
	}

	y := series.Prices()
	w := difference(y)

	p, residuals, err := estimate(w)
	if err != nil {
		return nil, err
	}

	sigma2 := 0.0
	for _, e := range residuals {
		sigma2 += e * e
	}
	sigma2 /= float64(len(residuals))

	wForecast := forecastDifferenced(w, residuals, p, days)
	yForecast := integrate(y, wForecast)

	psi := psiWeights(p, days)
	interval := series.Interval()
	last := series[len(series)-1].Time

	points := make([]Point, days)
	cumVar := 0.0
	for h := 0; h < days; h++ {
		cumVar += psi[h] * psi[h]
		se := math.Sqrt(sigma2 * cumVar)
		v := yForecast[h]
		if math.IsNaN(v) || math.IsInf(v, 0) || math.IsNaN(se) {
			return nil, fmt.Errorf("%w: numerically unstable fit", ErrUnavailable)
		}
		points[h] = Point{
			Time:  last.Add(time.Duration(h+1) * interval),
			Value: v,
			Lower: v - zScore95*se,
			Upper: v + zScore95*se,
		}
	}
	return points, nil
}

// difference applies one regular and one seasonal difference:
// w_t = y_t - y_{t-1} - y_{t-7} + y_{t-8}.
func difference(y []float64) []float64 {
	w := make([]float64, len(y)-diffOrder)
	for i := diffOrder; i < len(y); i++ {
		w[i-diffOrder] = y[i] - y[i-1] - y[i-seasonalPeriod] + y[i-seasonalPeriod-1]
	}
	return w
}

// estimate minimizes the conditional sum of squared residuals over the four
// ARMA coefficients, each projected into (-1, 1).
func estimate(w []float64) (params, []float64, error) {
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			p := projectParams(x)
			residuals := computeResiduals(w, p)
			css := 0.0
			for _, e := range residuals {
				css += e * e
			}
			return css
		},
	}

	initial := []float64{0.1, 0.1, 0.1, 0.1}
	result, err := optimize.Minimize(problem, initial, &optimize.Settings{}, &optimize.NelderMead{})
	if err != nil {
		return params{}, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if math.IsNaN(result.F) || math.IsInf(result.F, 0) {
		return params{}, nil, fmt.Errorf("%w: estimation diverged", ErrUnavailable)
	}

	p := projectParams(result.X)
	return p, computeResiduals(w, p), nil
}

func projectParams(x []float64) params {
	clamp := func(v float64) float64 {
		return math.Min(paramBound, math.Max(-paramBound, v))
	}
	return params{
		phi:    clamp(x[0]),
		theta:  clamp(x[1]),
		sphi:   clamp(x[2]),
		stheta: clamp(x[3]),
	}
}

// computeResiduals runs the ARMA recursion with zero pre-sample values.
func computeResiduals(w []float64, p params) []float64 {
	e := make([]float64, len(w))
	for t := range w {
		e[t] = w[t] - p.phi*at(w, t-1) - p.sphi*at(w, t-seasonalPeriod) +
			p.phi*p.sphi*at(w, t-seasonalPeriod-1) -
			p.theta*at(e, t-1) - p.stheta*at(e, t-seasonalPeriod) -
			p.theta*p.stheta*at(e, t-seasonalPeriod-1)
	}
	return e
}

// forecastDifferenced extends the differenced series days steps ahead with
// future shocks set to zero.
func forecastDifferenced(w, residuals []float64, p params, days int) []float64 {
	n := len(w)
	wx := make([]float64, n, n+days)
	ex := make([]float64, n, n+days)
	copy(wx, w)
	copy(ex, residuals)

	for h := 0; h < days; h++ {
		t := n + h
		v := p.phi*at(wx, t-1) + p.sphi*at(wx, t-seasonalPeriod) -
			p.phi*p.sphi*at(wx, t-seasonalPeriod-1) +
			p.theta*at(ex, t-1) + p.stheta*at(ex, t-seasonalPeriod) +
			p.theta*p.stheta*at(ex, t-seasonalPeriod-1)
		wx = append(wx, v)
		ex = append(ex, 0)
	}
	return wx[n:]
}

// integrate inverts the differencing: y_t = w_t + y_{t-1} + y_{t-7} - y_{t-8}.
func integrate(y, wForecast []float64) []float64 {
	n := len(y)
	yx := make([]float64, n, n+len(wForecast))
	copy(yx, y)
	for _, w := range wForecast {
		t := len(yx)
		yx = append(yx, w+yx[t-1]+yx[t-seasonalPeriod]-yx[t-seasonalPeriod-1])
	}
	return yx[n:]
}

// psiWeights expands the model's MA(∞) representation on the undifferenced
// scale. The AR side includes the differencing operators, so the weights
// grow with the horizon as expected for a non-stationary model.
func psiWeights(p params, steps int) []float64 {
	// (1 - phi·B)(1 - sphi·B^7)(1 - B)(1 - B^7)
	ar := polyMul(
		polyMul([]float64{1, -p.phi}, sparse(seasonalPeriod, -p.sphi)),
		polyMul([]float64{1, -1}, sparse(seasonalPeriod, -1)),
	)
	// (1 + theta·B)(1 + stheta·B^7)
	ma := polyMul([]float64{1, p.theta}, sparse(seasonalPeriod, p.stheta))

	// psi_0 = 1, psi_j = ma_j - sum_{i=1..j} ar_i * psi_{j-i}
	psi := make([]float64, steps)
	for j := 0; j < steps; j++ {
		if j == 0 {
			psi[0] = 1
			continue
		}
		v := 0.0
		if j < len(ma) {
			v = ma[j]
		}
		for i := 1; i <= j && i < len(ar); i++ {
			v -= ar[i] * psi[j-i]
		}
		psi[j] = v
	}
	return psi
}

func polyMul(a, b []float64) []float64 {
	out := make([]float64, len(a)+len(b)-1)
	for i, av := range a {
		for j, bv := range b {
			out[i+j] += av * bv
		}
	}
	return out
}

// sparse returns the polynomial 1 + c·B^lag.
func sparse(lag int, c float64) []float64 {
	out := make([]float64, lag+1)
	out[0] = 1
	out[lag] = c
	return out
}

func at(s []float64, i int) float64 {
	if i < 0 || i >= len(s) {
		return 0
	}
	return s[i]
}
