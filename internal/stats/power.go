package stats

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/optimize"
)

// YeoJohnsonValue transforms a single value with the given lambda.
func YeoJohnsonValue(x, lambda float64) float64 {
	const eps = 1e-12
	if x >= 0 {
		if math.Abs(lambda) < eps {
			return math.Log1p(x)
		}
		return (math.Pow(x+1, lambda) - 1) / lambda
	}
	if math.Abs(lambda-2) < eps {
		return -math.Log1p(-x)
	}
	return -(math.Pow(-x+1, 2-lambda) - 1) / (2 - lambda)
}

func yeoJohnsonLogLik(x []float64, lambda float64) float64 {
	t := make([]float64, len(x))
	var jac float64
	for i, v := range x {
		t[i] = YeoJohnsonValue(v, lambda)
		jac += math.Copysign(math.Log1p(math.Abs(v)), v)
	}
	_, variance := popMeanVariance(t)
	if variance <= 0 {
		return math.Inf(-1)
	}
	n := float64(len(x))
	return -n/2*math.Log(variance) + (lambda-1)*jac
}

// YeoJohnsonLambda finds the maximum likelihood lambda of the Yeo-Johnson
// transform for x.
func YeoJohnsonLambda(x []float64) (float64, error) {
	return maximize(func(l float64) float64 { return yeoJohnsonLogLik(x, l) })
}

// YeoJohnson fits lambda and returns the transformed, standardised values.
func YeoJohnson(x []float64) ([]float64, float64, error) {
	lambda, err := YeoJohnsonLambda(x)
	if err != nil {
		return nil, 0, err
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = YeoJohnsonValue(v, lambda)
	}
	return Standardize(out), lambda, nil
}

// BoxCox1p returns ((1+x)^lambda - 1) / lambda, or log1p(x) for lambda 0.
func BoxCox1p(x, lambda float64) float64 {
	if math.Abs(lambda) < 1e-12 {
		return math.Log1p(x)
	}
	return (math.Pow(1+x, lambda) - 1) / lambda
}

// BoxCoxLambda finds the maximum likelihood Box-Cox lambda for strictly
// positive data.
func BoxCoxLambda(y []float64) (float64, error) {
	var logSum float64
	for _, v := range y {
		if v <= 0 {
			return 0, errors.New("box-cox requires strictly positive data")
		}
		logSum += math.Log(v)
	}
	n := float64(len(y))
	t := make([]float64, len(y))
	return maximize(func(l float64) float64 {
		for i, v := range y {
			t[i] = BoxCox1p(v-1, l)
		}
		_, variance := popMeanVariance(t)
		if variance <= 0 {
			return math.Inf(-1)
		}
		return (l-1)*logSum - n/2*math.Log(variance)
	})
}

// maximize runs a one dimensional Nelder-Mead search from lambda = 1.
func maximize(f func(float64) float64) (float64, error) {
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			v := f(x[0])
			if math.IsInf(v, -1) || math.IsNaN(v) {
				return math.MaxFloat64
			}
			return -v
		},
	}
	res, err := optimize.Minimize(problem, []float64{1}, nil, &optimize.NelderMead{})
	if res == nil {
		return 0, errors.Wrap(err, "lambda search failed")
	}
	return res.X[0], nil
}
