package vem

import (
	"math"
)

// Evaluator computes the log-likelihood and perplexity of documents
// given a model.  The log-likelihood of a document is approximated by
// the variational lower bound of the document with the model fixed,
// so the perplexity it reports is an upper bound of the true one.
type Evaluator struct {
	model  *Model
	config *Config
	inf    *Inference
	gamma  []float64
}

func NewEvaluator(m *Model, c *Config) *Evaluator {
	return &Evaluator{
		model:  m,
		config: c,
		inf:    NewInference(m, c),
		gamma:  make([]float64, m.NumTopics),
	}
}

// Perplexity computes log-likelihood of a document.  It returns
// log-likelihood as well as the number of words in the document,
// which, when divided, get to the perplexity of the document, or when
// aggregated along documents then divided, get to the perplexity of
// corpus.
func (e *Evaluator) Perplexity(doc *Document) (float64, int) {
	if doc.Len() <= 0 {
		return 0.0, 0
	}
	return e.inf.Infer(doc, e.gamma), doc.Total()
}

// CorpusPerplexity returns exp(-sum of log-likelihoods / number of
// words) over corpus c, or NaN if c has no words.
func (e *Evaluator) CorpusPerplexity(c *Corpus) (float64, error) {
	if err := checkTerms(e.model, c); err != nil {
		return 0, err
	}
	logl, words := 0.0, 0
	for i := 0; i < c.NumDocs(); i++ {
		d, err := c.Doc(i)
		if err != nil {
			return 0, err
		}
		l, n := e.Perplexity(d)
		logl += l
		words += n
	}
	if words == 0 {
		return math.NaN(), nil
	}
	return math.Exp(-logl / float64(words)), nil
}
