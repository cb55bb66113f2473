package vem

import (
	"math"
	"math/rand"
	"reflect"
	"testing"
)

func TestSuffstatsAccumulate(t *testing.T) {
	c := CreateTestingCorpus()
	d, _ := c.Doc(0) // 3 0:3 1:2 2:1
	phi := [][]float64{{1, 0}, {0.5, 0.5}, {0, 1}}
	gamma := []float64{4, 3}

	ss := NewSuffstats(testingK, testingV, true)
	ss.Accumulate(d, gamma, phi)

	want := [][]float64{{3, 1, 0, 0, 0, 0}, {0, 1, 1, 0, 0, 0}}
	if !reflect.DeepEqual(ss.ClassWord, want) {
		t.Errorf("Expecting ClassWord %v, got %v", want, ss.ClassWord)
	}
	if !reflect.DeepEqual(ss.ClassTotal, []float64{4, 2}) {
		t.Errorf("Expecting ClassTotal [4 2], got %v", ss.ClassTotal)
	}
	alphaSS := Digamma(4) + Digamma(3) - 2*Digamma(7)
	if ss.NumDocs != 1 || math.Abs(ss.AlphaSS-alphaSS) > 1e-12 {
		t.Errorf("Expecting 1 doc and AlphaSS %v, got %d and %v", alphaSS, ss.NumDocs, ss.AlphaSS)
	}
	if !reflect.DeepEqual(ss.Gammas, [][]float64{{4, 3}}) {
		t.Errorf("Expecting gammas [[4 3]], got %v", ss.Gammas)
	}

	gamma[0] = 100 // Accumulate copies gamma.
	if ss.Gammas[0][0] != 4 {
		t.Errorf("Expecting Accumulate to copy gamma")
	}

	ss.Zero()
	if ss.NumDocs != 0 || ss.AlphaSS != 0 || ss.ClassTotal[0] != 0 ||
		ss.ClassWord[0][0] != 0 || len(ss.Gammas) != 0 {
		t.Errorf("Expecting zeroed statistics, got %+v", ss)
	}
}

func TestSuffstatsMergeEqualsSequential(t *testing.T) {
	c := CreateTestingCorpus()
	rng := rand.New(rand.NewSource(1))
	seq := NewSuffstats(testingK, testingV, true)
	parts := []*Suffstats{
		NewSuffstats(testingK, testingV, true),
		NewSuffstats(testingK, testingV, true),
	}
	for i := 0; i < c.NumDocs(); i++ {
		d, _ := c.Doc(i)
		phi := make([][]float64, d.Len())
		for n := range phi {
			p := rng.Float64()
			phi[n] = []float64{p, 1 - p}
		}
		gamma := []float64{rng.Float64() + 1, rng.Float64() + 1}
		seq.Accumulate(d, gamma, phi)
		parts[i/3].Accumulate(d, gamma, phi)
	}

	merged := NewSuffstats(testingK, testingV, true)
	for _, p := range parts {
		merged.Merge(p)
	}
	if merged.NumDocs != seq.NumDocs || !reflect.DeepEqual(merged.Gammas, seq.Gammas) {
		t.Errorf("Expecting %d docs in order, got %d", seq.NumDocs, merged.NumDocs)
	}
	if math.Abs(merged.AlphaSS-seq.AlphaSS) > 1e-9 {
		t.Errorf("Expecting AlphaSS %v, got %v", seq.AlphaSS, merged.AlphaSS)
	}
	for k := range seq.ClassWord {
		if math.Abs(merged.ClassTotal[k]-seq.ClassTotal[k]) > 1e-9 {
			t.Errorf("Expecting ClassTotal %v, got %v", seq.ClassTotal, merged.ClassTotal)
		}
		for w := range seq.ClassWord[k] {
			if math.Abs(merged.ClassWord[k][w]-seq.ClassWord[k][w]) > 1e-9 {
				t.Errorf("Expecting ClassWord %v, got %v", seq.ClassWord, merged.ClassWord)
			}
		}
	}
}

func TestSuffstatsInitialize(t *testing.T) {
	c := CreateTestingCorpus()
	for _, seeded := range []bool{false, true} {
		ss := NewSuffstats(testingK, testingV, false)
		rng := rand.New(rand.NewSource(testingSeed))
		if seeded {
			ss.InitializeSeeded(c, rng)
		} else {
			ss.InitializeRandom(rng)
		}
		for k := range ss.ClassWord {
			sum := 0.0
			for _, v := range ss.ClassWord[k] {
				if v < 1.0/testingV {
					t.Errorf("Expecting positive smoothed counts, got %v", ss.ClassWord[k])
				}
				sum += v
			}
			if math.Abs(sum-ss.ClassTotal[k]) > 1e-9 {
				t.Errorf("Expecting ClassTotal %v, got %v", sum, ss.ClassTotal[k])
			}
			if seeded && sum != float64(testingV+6) {
				t.Errorf("Expecting a seeded topic of %d pseudo counts, got %v", testingV+6, sum)
			}
		}
	}
}

func TestSuffstatsLogPHat(t *testing.T) {
	ss := vectorSuffstats([]float64{1, 3}, 4)
	got := ss.LogPHat()
	want := []float64{Digamma(1) - Digamma(4), Digamma(3) - Digamma(4)}
	for k := range want {
		if math.Abs(got[k]-want[k]) > 1e-12 {
			t.Errorf("Expecting %v, got %v", want, got)
		}
	}
}
