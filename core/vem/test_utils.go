package vem

import (
	"math"
	"strings"
)

const (
	testingK     = 2
	testingV     = 6
	testingAlpha = 0.5
	testingSeed  = 4357
)

// testingCorpusText holds two groups of documents: the first three use
// terms 0-2 and the last three terms 3-5.
const testingCorpusText = `3 0:3 1:2 2:1
3 0:1 1:3 2:2
3 0:2 1:2 2:2

3 3:3 4:2 5:1
3 3:1 4:3 5:2
3 3:2 4:2 5:3
`

// CreateTestingVocabulary creates a vocabulary of testingV tokens.
func CreateTestingVocabulary() (*Vocabulary, error) {
	r := strings.NewReader("apple 100\norange\tfruit\nbanana\ncat\ntiger\nlion\n")
	v := NewVocabulary()
	e := v.Load(r)
	return v, e
}

// CreateTestingCorpus creates the corpus in testingCorpusText.
func CreateTestingCorpus() *Corpus {
	c, e := ReadCorpus(strings.NewReader(testingCorpusText))
	if e != nil {
		panic("CreateTestingCorpus failed: " + e.Error())
	}
	return c
}

// CreateTestingConfig returns settings that let the E-step converge
// tightly on testing corpora.
func CreateTestingConfig() *Config {
	c := DefaultConfig()
	c.VarMaxIter = 100
	c.VarConverged = 1e-10
	c.EMMaxIter = 50
	c.EMConverged = 1e-8
	c.Lag = 5
	c.Seed = testingSeed
	return c
}

// CreateTestingModel creates a model with:
//
//	symmetric alpha: testingAlpha
//	P(w|z):  term  0    1    2    3    4    5
//	     topic 0:  .3   .3   .3   .05  .05  0
//	     topic 1:  0    .05  .05  .3   .3   .3
//
// Zero probabilities are stored as LogZero.
func CreateTestingModel() *Model {
	m := NewModel(testingK, testingV, Symmetric(testingAlpha))
	p := [][]float64{
		{.3, .3, .3, .05, .05, 0},
		{0, .05, .05, .3, .3, .3},
	}
	for k := range p {
		for w, v := range p[k] {
			if v > 0 {
				m.LogProbW[k][w] = math.Log(v)
			} else {
				m.LogProbW[k][w] = LogZero
			}
		}
	}
	return m
}
