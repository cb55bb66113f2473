package vem

import (
	"fmt"

	"github.com/wangkuiyi/vemlda/core/hist"
)

// Document is a sparse bag of words: Words[n] is a unique term id and
// Counts[n] its number of occurrences.  A Document is immutable once
// built and may be shared by several Corpus views.
type Document struct {
	Words  []int32
	Counts []int32
	total  int
}

// NewDocument builds a Document from a term histogram.  Terms are
// stored in ascending id order.
func NewDocument(h hist.Sparse) *Document {
	d := &Document{
		Words:  h.Ids(),
		Counts: make([]int32, h.Len()),
	}
	for n, w := range d.Words {
		d.Counts[n] = h[w]
		d.total += int(h[w])
	}
	return d
}

// Len returns the number of distinct terms.
func (d *Document) Len() int {
	return len(d.Words)
}

// Total returns the number of tokens, i.e., the sum of counts.
func (d *Document) Total() int {
	return d.total
}

func (d *Document) Word(n int) int {
	return int(d.Words[n])
}

func (d *Document) Count(n int) int {
	return int(d.Counts[n])
}

// String prints the document in the corpus line format.
func (d *Document) String() string {
	out := fmt.Sprint(d.Len())
	for n := range d.Words {
		out += fmt.Sprintf(" %d:%d", d.Words[n], d.Counts[n])
	}
	return out
}

// InitializeDocument builds a Document from raw tokens.  Tokens that
// are not in the vocabulary are skipped.
func InitializeDocument(words []string, vocab *Vocabulary) *Document {
	h := hist.NewSparse()
	for _, w := range words {
		if id := vocab.Id(w); id >= 0 {
			h.Inc(int(id), 1)
		}
	}
	return NewDocument(h)
}
