package vem

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Inference runs variational inference of one document at a time
// against a fixed model.  It owns the phi buffer, which is reused
// across documents and grows to the longest document seen.  An
// Inference is not safe for concurrent use; give each goroutine its
// own.
type Inference struct {
	model  *Model
	config *Config

	// MaxIter caps the number of variational iterations per document.
	// -1 means unbounded.  It starts as config.VarMaxIter.
	MaxIter int

	alpha      []float64
	alphaTerm  float64 // lgamma(sum alpha) - sum lgamma(alpha_k)
	phi        [][]float64
	oldPhi     []float64
	digammaGam []float64
	logits     []float64
	n          int // length of the last inferred document
}

func NewInference(m *Model, c *Config) *Inference {
	inf := &Inference{
		model:      m,
		config:     c,
		MaxIter:    c.VarMaxIter,
		alpha:      m.Alpha.Values(m.NumTopics),
		oldPhi:     make([]float64, m.NumTopics),
		digammaGam: make([]float64, m.NumTopics),
		logits:     make([]float64, m.NumTopics),
	}
	inf.alphaTerm = Lgamma(floats.Sum(inf.alpha))
	for _, a := range inf.alpha {
		inf.alphaTerm -= Lgamma(a)
	}
	return inf
}

// Phi returns phi of the last inferred document: Phi()[n][k] is the
// probability that the n-th term of the document comes from topic k.
// It is overwritten by the next call to Infer.
func (inf *Inference) Phi() [][]float64 {
	return inf.phi[:inf.n]
}

func (inf *Inference) growPhi(n int) {
	for len(inf.phi) < n {
		inf.phi = append(inf.phi, make([]float64, inf.model.NumTopics))
	}
	inf.n = n
}

// Infer fits gamma, which must have NumTopics elements, and phi to
// document d, and returns the likelihood bound of d.  It stops when
// the relative change of the bound falls below VarConverged or after
// MaxIter iterations.  The first iteration never counts as converged.
// An empty document keeps gamma at alpha.
func (inf *Inference) Infer(d *Document, gamma []float64) float64 {
	K := inf.model.NumTopics
	inf.growPhi(d.Len())
	phi := inf.Phi()

	total := float64(d.Total())
	for k := 0; k < K; k++ {
		gamma[k] = inf.alpha[k] + total/float64(K)
		for n := range phi {
			phi[n][k] = 1.0 / float64(K)
		}
	}
	if K == 1 || d.Len() == 0 {
		return inf.Likelihood(d, gamma, phi)
	}

	likelihood, likelihoodOld := 0.0, math.Inf(-1)
	for iter := 1; inf.MaxIter == -1 || iter <= inf.MaxIter; iter++ {
		for k := 0; k < K; k++ {
			inf.digammaGam[k] = Digamma(gamma[k])
		}
		for n := range phi {
			w := d.Words[n]
			for k := 0; k < K; k++ {
				inf.oldPhi[k] = phi[n][k]
				inf.logits[k] = inf.digammaGam[k] + inf.model.LogProbW[k][w]
			}
			norm := floats.LogSumExp(inf.logits)
			c := float64(d.Counts[n])
			for k := 0; k < K; k++ {
				phi[n][k] = math.Exp(inf.logits[k] - norm)
				gamma[k] += c * (phi[n][k] - inf.oldPhi[k])
			}
		}

		likelihood = inf.Likelihood(d, gamma, phi)
		if iter > 1 {
			converged := (likelihoodOld - likelihood) / likelihoodOld
			if math.IsNaN(converged) || math.Abs(converged) < inf.config.VarConverged {
				break
			}
		}
		likelihoodOld = likelihood
	}
	return likelihood
}

// Likelihood returns the variational lower bound of log p(d) given
// the posterior gamma and phi.  Entries of phi that are zero
// contribute nothing.
func (inf *Inference) Likelihood(d *Document, gamma []float64, phi [][]float64) float64 {
	K := inf.model.NumTopics
	gammaSum := floats.Sum(gamma)
	digSum := Digamma(gammaSum)

	likelihood := inf.alphaTerm - Lgamma(gammaSum)
	for k := 0; k < K; k++ {
		dig := Digamma(gamma[k]) - digSum
		likelihood += (inf.alpha[k]-1)*dig + Lgamma(gamma[k]) - (gamma[k]-1)*dig
		for n := 0; n < d.Len(); n++ {
			if p := phi[n][k]; p > 0 {
				likelihood += float64(d.Counts[n]) *
					p * (dig - math.Log(p) + inf.model.LogProbW[k][d.Words[n]])
			}
		}
	}
	return likelihood
}
