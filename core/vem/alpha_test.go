package vem

import (
	"reflect"
	"testing"
)

func TestSymmetricPrior(t *testing.T) {
	p := Symmetric(0.5)
	if !p.IsSymmetric() || p.At(3) != 0.5 || p.Sum(4) != 2 {
		t.Errorf("Expecting symmetric 0.5 summing to 2, got %v, %v", p, p.Sum(4))
	}
	if !reflect.DeepEqual(p.Values(3), []float64{0.5, 0.5, 0.5}) {
		t.Errorf("Expecting [0.5 0.5 0.5], got %v", p.Values(3))
	}
	if p.String() != "0.5000000000" {
		t.Errorf("Expecting 0.5000000000, got %s", p)
	}
	if !p.Valid(10) || Symmetric(0).Valid(1) {
		t.Errorf("Expecting only positive symmetric priors to be valid")
	}
}

func TestVectorPrior(t *testing.T) {
	a := []float64{0.1, 0.2, 0.7}
	p := Vector(a)
	a[0] = 100 // Vector copies its input.
	if p.IsSymmetric() || p.At(0) != 0.1 || p.At(2) != 0.7 {
		t.Errorf("Expecting vector [0.1 0.2 0.7], got %v", p)
	}
	if s := p.Sum(3); s < 0.9999999 || s > 1.0000001 {
		t.Errorf("Expecting sum 1, got %v", s)
	}
	if p.String() != "0.1000000000 0.2000000000 0.7000000000" {
		t.Errorf("Unexpected String() %s", p)
	}
	if !p.Valid(3) || p.Valid(2) || Vector([]float64{1, 0}).Valid(2) {
		t.Errorf("Unexpected validity")
	}
}
