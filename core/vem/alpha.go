package vem

import (
	"fmt"
	"strings"
)

// AlphaPrior is the Dirichlet prior over document topic mixtures.  It
// is either one concentration shared by all topics (Symmetric) or one
// concentration per topic (Vector).
type AlphaPrior struct {
	value  float64
	vector []float64 // nil if symmetric
}

func Symmetric(a float64) AlphaPrior {
	return AlphaPrior{value: a}
}

// Vector returns an asymmetric prior.  It copies a.
func Vector(a []float64) AlphaPrior {
	return AlphaPrior{vector: append([]float64(nil), a...)}
}

func (p AlphaPrior) IsSymmetric() bool {
	return p.vector == nil
}

// At returns the concentration of topic k.
func (p AlphaPrior) At(k int) float64 {
	if p.vector == nil {
		return p.value
	}
	return p.vector[k]
}

// Sum returns the total concentration over numTopics topics.
func (p AlphaPrior) Sum(numTopics int) float64 {
	if p.vector == nil {
		return p.value * float64(numTopics)
	}
	s := 0.0
	for _, a := range p.vector {
		s += a
	}
	return s
}

// Values returns the prior expanded to numTopics concentrations.
func (p AlphaPrior) Values(numTopics int) []float64 {
	if p.vector != nil {
		return append([]float64(nil), p.vector...)
	}
	v := make([]float64, numTopics)
	for k := range v {
		v[k] = p.value
	}
	return v
}

// Valid reports whether all concentrations are positive and the
// vector, if any, has numTopics elements.
func (p AlphaPrior) Valid(numTopics int) bool {
	if p.vector == nil {
		return p.value > 0
	}
	if len(p.vector) != numTopics {
		return false
	}
	for _, a := range p.vector {
		if !(a > 0) {
			return false
		}
	}
	return true
}

// String formats the prior as the value of the alpha line of a .other
// file.
func (p AlphaPrior) String() string {
	if p.vector == nil {
		return fmt.Sprintf("%5.10f", p.value)
	}
	fs := make([]string, len(p.vector))
	for k, a := range p.vector {
		fs[k] = fmt.Sprintf("%5.10f", a)
	}
	return strings.Join(fs, " ")
}
