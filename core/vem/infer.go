package vem

import (
	"bufio"
	"fmt"
	"io"
)

// InferResult holds the posteriors and likelihood bounds of the
// documents of a corpus under a fixed model.
type InferResult struct {
	Gammas      [][]float64
	Likelihoods []float64
}

// InferCorpus infers every document of c with model m.  It fails with
// ErrTermOutOfRange if c refers to a term that m does not know.
func InferCorpus(m *Model, c *Corpus, conf *Config) (*InferResult, error) {
	if err := checkTerms(m, c); err != nil {
		return nil, err
	}
	r := &InferResult{
		Gammas:      newGammas(c.NumDocs(), m.NumTopics),
		Likelihoods: make([]float64, c.NumDocs()),
	}
	_, err := inferAll(m, c, conf, conf.VarMaxIter, r.Gammas,
		func(_, d int, likelihood float64, _ [][]float64) error {
			r.Likelihoods[d] = likelihood
			return nil
		})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Save writes name-gamma.dat and name-lda-lhood.dat.
func (r *InferResult) Save(name string) error {
	if err := SaveGamma(name+"-gamma.dat", r.Gammas); err != nil {
		return err
	}
	return writeFile(name+"-lda-lhood.dat", func(w io.Writer) error {
		b := bufio.NewWriter(w)
		for _, l := range r.Likelihoods {
			fmt.Fprintf(b, "%5.5f\n", l)
		}
		return b.Flush()
	})
}
