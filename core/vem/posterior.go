package vem

import (
	"fmt"
	"math"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"
)

// visitFunc receives the posterior of document d of a corpus.  It runs
// on the goroutine of shard worker, and phi is valid only during the
// call.
type visitFunc func(worker, d int, likelihood float64, phi [][]float64) error

// inferAll infers every document of c against m, writing the posterior
// of document d into gammas[d].  Documents are sharded into contiguous
// ranges over at most c.Workers goroutines, each with its own
// Inference.  It returns the number of shards used.
func inferAll(m *Model, c *Corpus, conf *Config, maxIter int,
	gammas [][]float64, visit visitFunc) (int, error) {

	workers := conf.Workers
	if workers > c.NumDocs() {
		workers = c.NumDocs()
	}
	if workers < 1 {
		workers = 1
	}
	sharder := NewSharder(workers)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			inf := NewInference(m, conf)
			inf.MaxIter = maxIter
			start, end := sharder.Range(c.NumDocs(), w)
			for d := start; d < end; d++ {
				if (d-start+1)%1000 == 0 {
					glog.V(1).Infof("worker %d: document %d/%d", w, d-start+1, end-start)
				}
				likelihood := inf.Infer(c.docs[d], gammas[d])
				if math.IsNaN(likelihood) {
					return fmt.Errorf("%w: document %d", ErrNaNLikelihood, c.Index(d))
				}
				if e := visit(w, d, likelihood, inf.Phi()); e != nil {
					return e
				}
			}
			return nil
		})
	}
	return workers, g.Wait()
}

// checkTerms makes sure that every term of c is known to m.
func checkTerms(m *Model, c *Corpus) error {
	if c.NumTerms() > m.NumTerms {
		return fmt.Errorf("%w: corpus refers to term %d, model has %d terms",
			ErrTermOutOfRange, c.NumTerms()-1, m.NumTerms)
	}
	return nil
}

func newGammas(numDocs, numTopics int) [][]float64 {
	gammas := make([][]float64, numDocs)
	for d := range gammas {
		gammas[d] = make([]float64, numTopics)
	}
	return gammas
}
