package vem

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"

	"github.com/golang/glog"

	"github.com/wangkuiyi/vemlda/core/hist"
)

// Corpus is an ordered, read-only sequence of documents over a fixed
// vocabulary of NumTerms terms.  Views produced by Split and Filter
// share Document storage with the corpus they come from.
type Corpus struct {
	docs     []*Document
	index    []int // position of each document in the loaded corpus
	numTerms int
	numWords int
}

// NewCorpus creates a Corpus.  numTerms must exceed every term id
// referenced by docs.
func NewCorpus(docs []*Document, numTerms int) (*Corpus, error) {
	index := make([]int, len(docs))
	for i := range index {
		index[i] = i
	}
	c := newView(docs, index, numTerms)
	for i, d := range docs {
		for _, w := range d.Words {
			if w < 0 || int(w) >= numTerms {
				return nil, fmt.Errorf("%w: document %d term %d, vocabulary size %d",
					ErrTermOutOfRange, i, w, numTerms)
			}
		}
	}
	return c, nil
}

func newView(docs []*Document, index []int, numTerms int) *Corpus {
	c := &Corpus{docs: docs, index: index, numTerms: numTerms}
	for _, d := range docs {
		c.numWords += d.Total()
	}
	return c
}

// ReadCorpus parses the sparse corpus format, one document per line:
//
//	N id1:count1 id2:count2 ... idN:countN
//
// N is the number of pairs on the line.  Repeated ids are merged.
// Empty lines are skipped.  The vocabulary size is one plus the largest
// term id.  Any malformed line fails the whole read.
func ReadCorpus(r io.Reader) (*Corpus, error) {
	var docs []*Document
	maxId := int32(-1)
	line := 0
	h := hist.NewSparse()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for scanner.Scan() {
		line++
		fs := strings.Fields(scanner.Text())
		if len(fs) == 0 {
			continue
		}

		n, e := strconv.Atoi(fs[0])
		if e != nil || n < 0 {
			return nil, fmt.Errorf("%w: line %d: bad term count %q",
				ErrCorpusFormat, line, fs[0])
		}
		if n != len(fs)-1 {
			return nil, fmt.Errorf("%w: line %d: declared %d terms, found %d",
				ErrCorpusFormat, line, n, len(fs)-1)
		}

		h.Clear()
		for _, kv := range fs[1:] {
			id, count, e := parsePair(kv)
			if e != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrCorpusFormat, line, e)
			}
			h.Inc(int(id), int(count))
			if id > maxId {
				maxId = id
			}
		}
		docs = append(docs, NewDocument(h))
	}
	if e := scanner.Err(); e != nil {
		return nil, fmt.Errorf("reading corpus: %w", e)
	}

	c, e := NewCorpus(docs, int(maxId)+1)
	if e != nil {
		return nil, e
	}
	glog.Infof("number of docs    : %d", c.NumDocs())
	glog.Infof("number of terms   : %d", c.NumTerms())
	return c, nil
}

func parsePair(kv string) (int32, int32, error) {
	i := strings.IndexByte(kv, ':')
	if i < 0 {
		return 0, 0, fmt.Errorf("bad word count %q", kv)
	}
	id, e := strconv.ParseInt(kv[:i], 10, 32)
	if e != nil || id < 0 {
		return 0, 0, fmt.Errorf("bad term id in %q", kv)
	}
	count, e := strconv.ParseInt(kv[i+1:], 10, 32)
	if e != nil || count <= 0 {
		return 0, 0, fmt.Errorf("bad count in %q", kv)
	}
	return int32(id), int32(count), nil
}

func (c *Corpus) NumDocs() int {
	return len(c.docs)
}

func (c *Corpus) NumTerms() int {
	return c.numTerms
}

// NumWords returns the total number of tokens in the corpus.
func (c *Corpus) NumWords() int {
	return c.numWords
}

// Doc returns the i-th document.
func (c *Corpus) Doc(i int) (*Document, error) {
	if i < 0 || i >= len(c.docs) {
		return nil, fmt.Errorf("%w: document %d, corpus has %d",
			ErrIndexOutOfRange, i, len(c.docs))
	}
	return c.docs[i], nil
}

// Index returns the position that the i-th document had in the
// corpus as it was loaded.
func (c *Corpus) Index(i int) int {
	return c.index[i]
}

// MaxDocLength returns the largest number of distinct terms in a
// document.
func (c *Corpus) MaxDocLength() int {
	max := 0
	for _, d := range c.docs {
		if d.Len() > max {
			max = d.Len()
		}
	}
	return max
}

// Filter returns a view of the documents whose total word count is at
// least minLen and at most maxLen.  A non-positive bound is ignored.
func (c *Corpus) Filter(minLen, maxLen int) *Corpus {
	docs := make([]*Document, 0, len(c.docs))
	index := make([]int, 0, len(c.docs))
	for i, d := range c.docs {
		if (minLen <= 0 || d.Total() >= minLen) &&
			(maxLen <= 0 || d.Total() <= maxLen) {
			docs = append(docs, d)
			index = append(index, c.index[i])
		}
	}
	return newView(docs, index, c.numTerms)
}

// Split partitions the documents into a train view and a test view
// for cross-validation.  Documents are permuted with seed and divided
// into folds buckets of similar size; bucket fold becomes the test
// view and the rest, in corpus order, the train view.  For a fixed
// seed, the test views of all folds are disjoint and cover the corpus.
func (c *Corpus) Split(folds, fold int, seed int64) (*Corpus, *Corpus, error) {
	if folds < 2 || folds > len(c.docs) {
		return nil, nil, fmt.Errorf("%w: %d folds for %d documents",
			ErrIndexOutOfRange, folds, len(c.docs))
	}
	if fold < 0 || fold >= folds {
		return nil, nil, fmt.Errorf("%w: fold %d not in [0, %d)",
			ErrIndexOutOfRange, fold, folds)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(len(c.docs))
	start, end := NewSharder(folds).Range(len(c.docs), fold)
	inTest := make([]bool, len(c.docs))
	for _, d := range perm[start:end] {
		inTest[d] = true
	}

	var trainDocs, testDocs []*Document
	var trainIndex, testIndex []int
	for _, d := range perm[start:end] {
		testDocs = append(testDocs, c.docs[d])
		testIndex = append(testIndex, c.index[d])
	}
	for d := range c.docs {
		if !inTest[d] {
			trainDocs = append(trainDocs, c.docs[d])
			trainIndex = append(trainIndex, c.index[d])
		}
	}
	return newView(trainDocs, trainIndex, c.numTerms),
		newView(testDocs, testIndex, c.numTerms), nil
}
