package vem

import (
	"fmt"
	"math"

	"github.com/golang/glog"
	"gonum.org/v1/gonum/floats"
)

// OptimizeAlpha returns the prior that maximizes the alpha terms of
// the corpus likelihood bound given the statistics of an E-step pass.
// It dispatches on the kind of the prior: a symmetric prior is solved
// by scalar Newton's method in log space; a vector prior by Newton's
// method with the diagonal-plus-rank-one Hessian, or by Minka's
// fixed-point iteration if c.AlphaMethod is MethodFixedPoint.
func OptimizeAlpha(prior AlphaPrior, ss *Suffstats, c *Config) (AlphaPrior, error) {
	if ss.NumDocs <= 0 {
		return prior, nil
	}
	if prior.IsSymmetric() {
		a, e := optimizeSymmetric(ss.AlphaSS, float64(ss.NumDocs), ss.NumTopics(), c)
		if e != nil {
			return prior, e
		}
		return Symmetric(a), nil
	}

	logphat := ss.LogPHat()
	var alpha []float64
	var e error
	if c.AlphaMethod == MethodFixedPoint {
		alpha, e = optimizeVectorFixedPoint(logphat, c)
	} else {
		alpha, e = optimizeVectorNewton(logphat, float64(ss.NumDocs), c)
	}
	if e != nil {
		return prior, e
	}
	return Vector(alpha), nil
}

func alhood(a, ss, D float64, K int) float64 {
	k := float64(K)
	return D*(Lgamma(k*a)-k*Lgamma(a)) + (a-1)*ss
}

func dAlhood(a, ss, D float64, K int) float64 {
	k := float64(K)
	return D*(k*Digamma(k*a)-k*Digamma(a)) + ss
}

func d2Alhood(a, D float64, K int) float64 {
	k := float64(K)
	return D * (k*k*Trigamma(k*a) - k*Trigamma(a))
}

const initialSymmetricAlpha = 100.0

func optimizeSymmetric(ss, D float64, K int, c *Config) (float64, error) {
	return newtonSymmetric(initialSymmetricAlpha, ss, D, K, c)
}

// newtonSymmetric runs Newton's method on log(a) from a = start.
// Whenever a becomes NaN, it restarts from 10 times the last initial
// value, the first restart being from 10*initialSymmetricAlpha.
func newtonSymmetric(start, ss, D float64, K int, c *Config) (float64, error) {
	initA := initialSymmetricAlpha
	logA := math.Log(start)
	var a, df float64
	for iter := 1; ; iter++ {
		a = math.Exp(logA)
		if math.IsNaN(a) {
			initA *= 10
			glog.Warningf("alpha is nan; new init = %5.5f", initA)
			a = initA
			logA = math.Log(a)
		}
		f := alhood(a, ss, D, K)
		df = dAlhood(a, ss, D, K)
		d2f := d2Alhood(a, D, K)
		logA -= df / (d2f*a + df)
		glog.V(1).Infof("alpha maximization : %5.5f   %5.5f", f, df)
		if math.Abs(df) <= c.NewtonThresh || iter >= c.MaxAlphaIter {
			break
		}
	}
	a = math.Exp(logA)
	if math.IsNaN(a) || math.IsInf(a, 0) || a <= 0 {
		return 0, fmt.Errorf("%w: symmetric alpha %v", ErrAlphaDiverged, a)
	}
	return a, nil
}

// initialVectorAlpha is the starting point of the vector solvers:
// the average of the expected topic proportions and the uniform
// proportions, scaled to a total concentration of scale.  It depends
// on the statistics only, so re-solving the same statistics gives the
// same prior.
func initialVectorAlpha(logphat []float64, scale float64) []float64 {
	a := make([]float64, len(logphat))
	for k, l := range logphat {
		a[k] = math.Exp(l)
	}
	floats.Scale(1/floats.Sum(a), a)
	floats.AddConst(1/float64(len(a)), a)
	floats.Scale(scale/2, a)
	return a
}

// optimizeVectorNewton maximizes
//
//	D*(lgamma(sum a) - sum_k lgamma(a_k)) + D*sum_k (a_k - 1) logphat_k
//
// The Hessian is diag(h) + z*1*1' with h_k = -D*trigamma(a_k) and
// z = D*trigamma(sum a), so each Newton step costs O(K).  It stops
// when no a_k changes by more than c.NewtonThresh relatively.  If a step
// makes any a_k non-positive, the solve restarts from a ten times
// smaller initial scale, at most c.MaxRecursionLimit times.
func optimizeVectorNewton(logphat []float64, D float64, c *Config) ([]float64, error) {
	scale := float64(len(logphat))
	for depth := 0; depth <= c.MaxRecursionLimit; depth++ {
		if a, ok := vectorNewton(initialVectorAlpha(logphat, scale), logphat, D, c); ok {
			return a, nil
		}
		scale /= 10
		glog.Warningf("alpha went negative; restarting vector Newton with scale %g", scale)
	}
	return nil, fmt.Errorf("%w: vector Newton exceeded %d restarts",
		ErrAlphaDiverged, c.MaxRecursionLimit)
}

func vectorNewton(a, logphat []float64, D float64, c *Config) ([]float64, bool) {
	K := len(a)
	g := make([]float64, K)
	h := make([]float64, K)
	for iter := 0; iter < c.MaxAlphaIter; iter++ {
		sum := floats.Sum(a)
		psiSum := Digamma(sum)
		z := D * Trigamma(sum)

		gh, invh := 0.0, 0.0
		for k := range a {
			g[k] = D * (psiSum - Digamma(a[k]) + logphat[k])
			h[k] = -D * Trigamma(a[k])
			gh += g[k] / h[k]
			invh += 1 / h[k]
		}
		b := gh / (1/z + invh)

		maxStep := 0.0
		for k := range a {
			step := (g[k] - b) / h[k]
			a[k] -= step
			if !(a[k] > 0) {
				return nil, false
			}
			maxStep = math.Max(maxStep, math.Abs(step)/a[k])
		}
		glog.V(1).Infof("vector alpha newton %d: max relative step %g", iter, maxStep)
		if maxStep <= c.NewtonThresh {
			break
		}
	}
	return a, true
}

// optimizeVectorFixedPoint iterates Minka's fixed point
//
//	a_k <- InvDigamma(Digamma(sum a) + logphat_k)
//
// which increases the bound at every step and keeps a positive.
func optimizeVectorFixedPoint(logphat []float64, c *Config) ([]float64, error) {
	a := initialVectorAlpha(logphat, float64(len(logphat)))
	for iter := 0; iter < c.MaxAlphaIter; iter++ {
		psiSum := Digamma(floats.Sum(a))
		maxStep := 0.0
		for k := range a {
			next := InvDigamma(psiSum + logphat[k])
			maxStep = math.Max(maxStep, math.Abs(next-a[k])/a[k])
			a[k] = next
		}
		if maxStep <= c.NewtonThresh {
			break
		}
	}
	for _, v := range a {
		if !(v > 0) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: fixed point reached %v", ErrAlphaDiverged, v)
		}
	}
	return a, nil
}
