package vem

import (
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// Suffstats accumulates the expected counts of an E-step pass.  The
// M-step turns them into a Model.  ClassWord[k][v] is the expected
// number of occurrences of term v generated by topic k, and
// ClassTotal[k] is the row sum of ClassWord[k].
type Suffstats struct {
	ClassWord  [][]float64
	ClassTotal []float64
	NumDocs    int

	// AlphaSS is sum_d sum_k (digamma(gamma_dk) - digamma(sum_k gamma_dk)).
	AlphaSS float64

	// Gammas holds the posterior of every accumulated document, in
	// accumulation order, if the Suffstats was created for a vector
	// prior.
	Gammas     [][]float64
	keepGammas bool
}

func NewSuffstats(numTopics, numTerms int, keepGammas bool) *Suffstats {
	s := &Suffstats{
		ClassWord:  make([][]float64, numTopics),
		ClassTotal: make([]float64, numTopics),
		keepGammas: keepGammas,
	}
	for k := range s.ClassWord {
		s.ClassWord[k] = make([]float64, numTerms)
	}
	return s
}

func (s *Suffstats) NumTopics() int {
	return len(s.ClassTotal)
}

func (s *Suffstats) NumTerms() int {
	return len(s.ClassWord[0])
}

// Zero resets the statistics while keeping the allocated rows.
func (s *Suffstats) Zero() {
	for k := range s.ClassWord {
		for v := range s.ClassWord[k] {
			s.ClassWord[k][v] = 0
		}
		s.ClassTotal[k] = 0
	}
	s.NumDocs = 0
	s.AlphaSS = 0
	s.Gammas = s.Gammas[:0]
}

// Accumulate adds the posterior of document d, i.e., gamma and phi as
// computed by Inference.Infer, into the statistics.
func (s *Suffstats) Accumulate(d *Document, gamma []float64, phi [][]float64) {
	gammaSum := 0.0
	for k := range gamma {
		gammaSum += gamma[k]
		s.AlphaSS += Digamma(gamma[k])
	}
	s.AlphaSS -= float64(len(gamma)) * Digamma(gammaSum)

	for n := 0; n < d.Len(); n++ {
		w, c := d.Words[n], float64(d.Counts[n])
		for k := range s.ClassWord {
			p := c * phi[n][k]
			s.ClassWord[k][w] += p
			s.ClassTotal[k] += p
		}
	}

	if s.keepGammas {
		s.Gammas = append(s.Gammas, append([]float64(nil), gamma...))
	}
	s.NumDocs++
}

// Merge adds the statistics in o into s.  Gammas of o are appended
// after those of s.
func (s *Suffstats) Merge(o *Suffstats) {
	for k := range s.ClassWord {
		floats.Add(s.ClassWord[k], o.ClassWord[k])
	}
	floats.Add(s.ClassTotal, o.ClassTotal)
	s.NumDocs += o.NumDocs
	s.AlphaSS += o.AlphaSS
	if s.keepGammas {
		s.Gammas = append(s.Gammas, o.Gammas...)
	}
}

// LogPHat returns, for every topic k, the average over accumulated
// documents of digamma(gamma_dk) - digamma(sum_k gamma_dk), which is
// the expected log topic proportion under the posteriors.  It requires
// Gammas.
func (s *Suffstats) LogPHat() []float64 {
	logphat := make([]float64, s.NumTopics())
	if len(s.Gammas) == 0 {
		return logphat
	}
	for _, gamma := range s.Gammas {
		psiSum := Digamma(floats.Sum(gamma))
		for k := range gamma {
			logphat[k] += Digamma(gamma[k]) - psiSum
		}
	}
	floats.Scale(1/float64(len(s.Gammas)), logphat)
	return logphat
}

// InitializeRandom fills the statistics with 1/V plus uniform noise,
// which, after MLE, gives a random starting model.
func (s *Suffstats) InitializeRandom(rng *rand.Rand) {
	V := float64(s.NumTerms())
	for k := range s.ClassWord {
		for v := range s.ClassWord[k] {
			s.ClassWord[k][v] += 1.0/V + rng.Float64()
			s.ClassTotal[k] += s.ClassWord[k][v]
		}
	}
}

// InitializeSeeded seeds every topic with the term counts of one
// randomly chosen document of c, and adds 1 to every term.
func (s *Suffstats) InitializeSeeded(c *Corpus, rng *rand.Rand) {
	for k := range s.ClassWord {
		if c.NumDocs() > 0 {
			d := c.docs[rng.Intn(c.NumDocs())]
			for n := 0; n < d.Len(); n++ {
				s.ClassWord[k][d.Words[n]] += float64(d.Counts[n])
			}
		}
		for v := range s.ClassWord[k] {
			s.ClassWord[k][v] += 1.0
			s.ClassTotal[k] += s.ClassWord[k][v]
		}
	}
}
