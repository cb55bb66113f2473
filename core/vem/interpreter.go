package vem

import (
	"fmt"

	"github.com/wangkuiyi/vemlda/core/hist"
)

// Interpreter infers the topic mixture of documents given as raw
// words.  Unlike Evaluator, it is safe for concurrent use: each call
// allocates its own Inference.
type Interpreter struct {
	model  *Model
	vocab  *Vocabulary
	config *Config
}

func NewInterpreter(m *Model, v *Vocabulary, c *Config) *Interpreter {
	return &Interpreter{model: m, vocab: v, config: c}
}

// Interpret returns the topics of words ranked by their expected
// proportion, i.e., the normalized gamma.  Words not in the
// vocabulary are ignored.
func (intr *Interpreter) Interpret(words []string) (*hist.Ranked, error) {
	return intr.InterpretDocument(InitializeDocument(words, intr.vocab))
}

// InterpretDocument is Interpret for a document of term ids.
func (intr *Interpreter) InterpretDocument(doc *Document) (*hist.Ranked, error) {
	if doc.Len() <= 0 {
		return nil, ErrEmptyDoc
	}
	for _, w := range doc.Words {
		if int(w) >= intr.model.NumTerms {
			return nil, fmt.Errorf("%w: term %d, model has %d terms",
				ErrTermOutOfRange, w, intr.model.NumTerms)
		}
	}

	gamma := make([]float64, intr.model.NumTopics)
	NewInference(intr.model, intr.config).Infer(doc, gamma)
	sum := 0.0
	for _, g := range gamma {
		sum += g
	}
	for k := range gamma {
		gamma[k] /= sum
	}
	return hist.NewRanked().Assign(gamma), nil
}
