package stats

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// OLSResult holds the fit of an ordinary least squares regression with an
// intercept. Index 0 of Coef and PValues is the intercept; index i+1 is the
// i-th regressor.
type OLSResult struct {
	Coef    []float64
	StdErr  []float64
	PValues []float64
	RSS     float64
	DF      int
}

// OLS regresses y on the columns of x (one slice per regressor) plus a
// constant term, and reports two-sided t-test p-values for every
// coefficient.
func OLS(y []float64, x [][]float64) (*OLSResult, error) {
	n := len(y)
	p := len(x) + 1
	for i, col := range x {
		if len(col) != n {
			return nil, errors.Errorf("regressor %d has %d rows, want %d", i, len(col), n)
		}
	}
	df := n - p
	if df <= 0 {
		return nil, errors.Errorf("not enough samples (%d) for %d coefficients", n, p)
	}

	design := mat.NewDense(n, p, nil)
	for r := 0; r < n; r++ {
		design.Set(r, 0, 1)
		for c, col := range x {
			design.Set(r, c+1, col[r])
		}
	}
	target := mat.NewVecDense(n, append([]float64(nil), y...))

	var xtx mat.Dense
	xtx.Mul(design.T(), design)
	var inv mat.Dense
	if err := inv.Inverse(&xtx); err != nil {
		return nil, errors.Wrap(err, "design matrix is singular")
	}

	var xty mat.VecDense
	xty.MulVec(design.T(), target)
	var beta mat.VecDense
	beta.MulVec(&inv, &xty)

	var fitted mat.VecDense
	fitted.MulVec(design, &beta)
	var rss float64
	for r := 0; r < n; r++ {
		e := y[r] - fitted.AtVec(r)
		rss += e * e
	}
	sigma2 := rss / float64(df)

	res := &OLSResult{
		Coef:    make([]float64, p),
		StdErr:  make([]float64, p),
		PValues: make([]float64, p),
		RSS:     rss,
		DF:      df,
	}
	tdist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}
	for j := 0; j < p; j++ {
		b := beta.AtVec(j)
		se := math.Sqrt(math.Max(sigma2*inv.At(j, j), 0))
		res.Coef[j] = b
		res.StdErr[j] = se
		switch {
		case se == 0 && b == 0:
			res.PValues[j] = 1
		case se == 0:
			res.PValues[j] = 0
		default:
			t := math.Abs(b / se)
			res.PValues[j] = 2 * (1 - tdist.CDF(t))
		}
	}
	return res, nil
}
