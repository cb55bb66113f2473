package vem

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/wangkuiyi/vemlda/core/hist"
)

// assignWords infers every document of c with m and assigns each term
// to the topic of largest phi.  It returns, per document, the topic of
// each term, and the number of tokens assigned to each topic.
func assignWords(m *Model, c *Corpus, conf *Config, maxIter int) (
	[][]int32, hist.Dense, error) {

	assignments := make([][]int32, c.NumDocs())
	gammas := newGammas(c.NumDocs(), m.NumTopics)
	_, err := inferAll(m, c, conf, maxIter, gammas,
		func(_, d int, _ float64, phi [][]float64) error {
			topics := make([]int32, len(phi))
			for n := range phi {
				topics[n] = int32(floats.MaxIdx(phi[n]))
			}
			assignments[d] = topics
			return nil
		})
	if err != nil {
		return nil, nil, err
	}

	counts := hist.NewDense(m.NumTopics)
	for d, topics := range assignments {
		for n, k := range topics {
			counts.Inc(int(k), int(c.docs[d].Counts[n]))
		}
	}
	return assignments, counts, nil
}

// WriteWordAssignments writes, for each document, its number of terms
// followed by term:topic pairs.
func WriteWordAssignments(w io.Writer, c *Corpus, assignments [][]int32) error {
	b := bufio.NewWriter(w)
	for d, topics := range assignments {
		doc := c.docs[d]
		fmt.Fprintf(b, "%03d", doc.Len())
		for n, k := range topics {
			fmt.Fprintf(b, " %04d:%02d", doc.Words[n], k)
		}
		fmt.Fprintf(b, "\n")
	}
	return b.Flush()
}

// ReadWordAssignments reads a file written by WriteWordAssignments.
// For each document it returns the terms and their topics.
func ReadWordAssignments(r io.Reader) (words, topics [][]int32, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for line := 1; scanner.Scan(); line++ {
		fs := strings.Fields(scanner.Text())
		if len(fs) == 0 {
			continue
		}
		n, e := strconv.Atoi(fs[0])
		if e != nil || n != len(fs)-1 {
			return nil, nil, fmt.Errorf("%w: word assignments line %d", ErrModelFormat, line)
		}
		ws, ts := make([]int32, n), make([]int32, n)
		for i, kv := range fs[1:] {
			w, t, e := parseAssignment(kv)
			if e != nil {
				return nil, nil, fmt.Errorf("%w: word assignments line %d: %v", ErrModelFormat, line, e)
			}
			ws[i], ts[i] = w, t
		}
		words = append(words, ws)
		topics = append(topics, ts)
	}
	return words, topics, scanner.Err()
}

func parseAssignment(kv string) (int32, int32, error) {
	i := strings.IndexByte(kv, ':')
	if i < 0 {
		return 0, 0, fmt.Errorf("bad pair %q", kv)
	}
	w, e := strconv.ParseInt(kv[:i], 10, 32)
	if e != nil {
		return 0, 0, e
	}
	t, e := strconv.ParseInt(kv[i+1:], 10, 32)
	if e != nil {
		return 0, 0, e
	}
	return int32(w), int32(t), nil
}
