package vem

import (
	"math"

	"gonum.org/v1/gonum/mathext"
)

// Digamma is the logarithmic derivative of the gamma function.
func Digamma(x float64) float64 {
	return mathext.Digamma(x)
}

// Trigamma is the derivative of Digamma.  It shifts x by 6 using the
// recurrence psi'(x) = psi'(x+1) + 1/x^2 and then applies the
// asymptotic series, which is accurate to about 1e-9 for x > 0.
func Trigamma(x float64) float64 {
	x += 6
	p := 1 / (x * x)
	p = (((((0.075757575757576*p-0.033333333333333)*p+
		0.0238095238095238)*p-0.033333333333333)*p+
		0.166666666666667)*p+1)/x + 0.5*p
	for i := 0; i < 6; i++ {
		x--
		p += 1 / (x * x)
	}
	return p
}

// Lgamma returns log|Gamma(x)|.
func Lgamma(x float64) float64 {
	v, _ := math.Lgamma(x)
	return v
}

// InvDigamma solves Digamma(x) = y for x > 0 by Newton's method,
// starting from Minka's initial guess.  Five iterations reach machine
// precision.
func InvDigamma(y float64) float64 {
	var x float64
	if y >= -2.22 {
		x = math.Exp(y) + 0.5
	} else {
		x = -1 / (y - Digamma(1))
	}
	for i := 0; i < 5; i++ {
		x -= (Digamma(x) - y) / Trigamma(x)
	}
	return x
}
