package vem

import (
	"fmt"
	"io"
	"math"

	"github.com/golang/glog"

	"github.com/wangkuiyi/vemlda/core/hist"
)

// LogZero stands for log(0) in LogProbW, so that terms never seen
// under a topic do not yield -Inf or NaN in the E-step.
const LogZero = -100.0

// Model is an LDA model: a Dirichlet prior over topic mixtures and,
// for every topic k, the log emission probabilities LogProbW[k] over
// NumTerms terms.
type Model struct {
	NumTopics int
	NumTerms  int
	Alpha     AlphaPrior
	LogProbW  [][]float64
}

// NewModel returns a model whose emission probabilities are all zero,
// i.e., LogProbW is filled with 0.  Call MLE to make it usable.
func NewModel(numTopics, numTerms int, alpha AlphaPrior) *Model {
	if numTopics < 1 {
		panic(fmt.Sprintf("numTopics = %d, less than 1", numTopics))
	}
	if numTerms < 1 {
		panic(fmt.Sprintf("numTerms = %d, less than 1", numTerms))
	}
	if !alpha.Valid(numTopics) {
		panic(fmt.Sprintf("invalid alpha %v for %d topics", alpha, numTopics))
	}
	m := &Model{
		NumTopics: numTopics,
		NumTerms:  numTerms,
		Alpha:     alpha,
		LogProbW:  make([][]float64, numTopics),
	}
	for k := range m.LogProbW {
		m.LogProbW[k] = make([]float64, numTerms)
	}
	return m
}

// MLE is the M-step.  It recomputes LogProbW from the expected counts
// in ss and, if estimateAlpha, re-estimates Alpha.  MLE has no
// randomness; calling it twice with the same ss gives the same model.
func (m *Model) MLE(ss *Suffstats, c *Config, estimateAlpha bool) error {
	for k := 0; k < m.NumTopics; k++ {
		logTotal := math.Log(ss.ClassTotal[k])
		for w := 0; w < m.NumTerms; w++ {
			if ss.ClassWord[k][w] > 0 {
				m.LogProbW[k][w] = math.Log(ss.ClassWord[k][w]) - logTotal
			} else {
				m.LogProbW[k][w] = LogZero
			}
		}
	}

	if estimateAlpha {
		a, e := OptimizeAlpha(m.Alpha, ss, c)
		if e != nil {
			return e
		}
		m.Alpha = a
		glog.V(1).Infof("new alpha = %s", a)
	}
	return nil
}

// Clone returns a deep copy of m.
func (m *Model) Clone() *Model {
	n := &Model{
		NumTopics: m.NumTopics,
		NumTerms:  m.NumTerms,
		Alpha:     m.Alpha,
		LogProbW:  make([][]float64, m.NumTopics),
	}
	if !m.Alpha.IsSymmetric() {
		n.Alpha = Vector(m.Alpha.vector)
	}
	for k := range m.LogProbW {
		n.LogProbW[k] = append([]float64(nil), m.LogProbW[k]...)
	}
	return n
}

// TopWords returns the terms of topic k ranked by P(w|k).
func (m *Model) TopWords(k int) *hist.Ranked {
	p := make([]float64, m.NumTerms)
	for w, l := range m.LogProbW[k] {
		p[w] = math.Exp(l)
	}
	return hist.NewRanked().Assign(p)
}

// PrintTopics prints each topic as its n most probable words with
// P(w|z) in descending order.  If n is not positive, it prints the
// words accumulating to 90% of the probability mass.
func (m *Model) PrintTopics(w io.Writer, v *Vocabulary, n int) {
	for k := 0; k < m.NumTopics; k++ {
		fmt.Fprintf(w, "Topic %05d alpha %.4f:", k, m.Alpha.At(k))
		r := m.TopWords(k)
		if n > 0 {
			r.Truncate(n)
		} else {
			r.TruncateMass(0.9)
		}
		r.ForEach(func(t int, p float64) error {
			fmt.Fprintf(w, " %s (%.4f)", v.Token(int32(t)), p)
			return nil
		})
		fmt.Fprintf(w, "\n")
	}
}
