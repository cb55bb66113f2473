// inspect prints the content of an lda output directory in human
// readable format.  It can print either the model, the topic mixture
// of documents, the topic assigned to each word, or the likelihood of
// each EM iteration.  By default, it prints the final model.  A
// checkpoint is selected by -iteration.  With -corpus, the doc content
// weights each term by its count in the training corpus.  For example:
/*
  $GOPATH/bin/inspect -dir=./out -vocab=./vocab -content=doc -corpus=./corpus.dat
*/
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang/glog"

	"github.com/wangkuiyi/vemlda/core/fileio"
	"github.com/wangkuiyi/vemlda/core/hist"
	"github.com/wangkuiyi/vemlda/core/utils"
	"github.com/wangkuiyi/vemlda/core/vem"
)

var (
	dir       = flag.String("dir", "", "The lda output directory")
	iteration = flag.Int("iteration", -1, "The checkpoint to inspect; -1 is final")
	content   = flag.String("content", "model", "{model, gamma, doc, logll}")
	vocab     = flag.String("vocab", "", "The vocabulary file")
	corpus    = flag.String("corpus", "", "The training corpus, for word counts of -content=doc")
	topN      = flag.Int("len", 10, "Max # words per topic or topics per document")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	v := vem.NewVocabulary()
	if len(*vocab) > 0 {
		v = utils.LoadVocabOrDie(*vocab)
	}
	var c *vem.Corpus
	if len(*corpus) > 0 {
		c = utils.LoadCorpusOrDie(*corpus, 0, 0)
	}

	root := checkpoint(*dir, *iteration)
	w := bufio.NewWriter(os.Stdout)
	var e error
	switch *content {
	case "model":
		e = dumpModel(w, root, v, *topN)
	case "gamma":
		dumpGamma(w, utils.LoadGammaOrDie(root+".gamma"), *topN)
	case "doc":
		e = dumpDoc(w, filepath.Join(*dir, "word-assignments.dat"), v, c)
	case "logll":
		e = dumpLogll(w, filepath.Join(*dir, "likelihood.dat"))
	default:
		e = fmt.Errorf("Unknown content %s", *content)
	}
	if e != nil {
		glog.Fatal(e)
	}
	if e := w.Flush(); e != nil {
		glog.Fatal(e)
	}
}

// checkpoint returns the root of the model saved after the given
// iteration, or of the final model if iteration is negative.
func checkpoint(dir string, iteration int) string {
	if iteration < 0 {
		return filepath.Join(dir, "final")
	}
	return filepath.Join(dir, fmt.Sprintf("%03d", iteration))
}

func dumpModel(w io.Writer, root string, v *vem.Vocabulary, n int) error {
	m, e := vem.LoadModel(root)
	if e != nil {
		return fmt.Errorf("Cannot load model %s: %v", root, e)
	}
	fmt.Fprintf(w, "%d topics, %d terms, alpha %s\n", m.NumTopics, m.NumTerms, m.Alpha)
	m.PrintTopics(w, v, n)
	return nil
}

// dumpGamma prints the n heaviest topics of each document, with
// gamma normalized into the expected topic proportions.
func dumpGamma(w io.Writer, gammas [][]float64, n int) {
	for d, g := range gammas {
		sum := 0.0
		for _, x := range g {
			sum += x
		}
		p := make([]float64, len(g))
		for k, x := range g {
			p[k] = x / sum
		}
		fmt.Fprintf(w, "%05d", d)
		hist.NewRanked().Assign(p).Truncate(n).ForEach(func(k int, x float64) error {
			fmt.Fprintf(w, " %d (%.4f)", k, x)
			return nil
		})
		fmt.Fprintln(w)
	}
}

// dumpDoc prints the topic of each term of each document, followed by
// the number of tokens per topic in descending order.  If c is nil,
// each term counts once.
func dumpDoc(w io.Writer, filename string, v *vem.Vocabulary, c *vem.Corpus) error {
	f, e := fileio.Open(filename)
	if e != nil {
		return e
	}
	defer f.Close()
	words, topics, e := vem.ReadWordAssignments(f)
	if e != nil {
		return fmt.Errorf("Cannot read %s: %v", filename, e)
	}
	if c != nil && c.NumDocs() != len(words) {
		return fmt.Errorf("%s has %d documents, corpus has %d", filename, len(words), c.NumDocs())
	}
	for d := range words {
		var doc *vem.Document
		if c != nil {
			doc, _ = c.Doc(d)
			if doc.Len() != len(words[d]) {
				return fmt.Errorf("document %d has %d terms in %s, %d in corpus",
					d, len(words[d]), filename, doc.Len())
			}
		}

		numTopics := 0
		for _, k := range topics[d] {
			if k < 0 {
				return fmt.Errorf("document %d: negative topic %d", d, k)
			}
			if int(k) >= numTopics {
				numTopics = int(k) + 1
			}
		}
		counts := hist.NewDense(numTopics)
		fmt.Fprintf(w, "%05d", d)
		for n, t := range words[d] {
			if doc == nil {
				fmt.Fprintf(w, " %s/%d", v.Token(t), topics[d][n])
				counts.Inc(int(topics[d][n]), 1)
				continue
			}
			if doc.Word(n) != int(t) {
				return fmt.Errorf("document %d term %d: %d in %s, %d in corpus",
					d, n, t, filename, doc.Word(n))
			}
			fmt.Fprintf(w, " %s:%d/%d", v.Token(t), doc.Count(n), topics[d][n])
			counts.Inc(int(topics[d][n]), doc.Count(n))
		}

		fmt.Fprint(w, " |")
		hist.NewRanked().AssignHist(counts).ForEach(func(k int, x float64) error {
			if x > 0 {
				fmt.Fprintf(w, " %d:%d", k, int64(x))
			}
			return nil
		})
		fmt.Fprintln(w)
	}
	return nil
}

func dumpLogll(w io.Writer, filename string) error {
	f, e := fileio.Open(filename)
	if e != nil {
		return e
	}
	defer f.Close()
	s := bufio.NewScanner(f)
	for i := 1; s.Scan(); i++ {
		fs := strings.Fields(s.Text())
		if len(fs) != 2 {
			return fmt.Errorf("%s line %d: expecting likelihood and convergence", filename, i)
		}
		ll, e := strconv.ParseFloat(fs[0], 64)
		if e != nil {
			return fmt.Errorf("%s line %d: %v", filename, i, e)
		}
		conv, e := strconv.ParseFloat(fs[1], 64)
		if e != nil {
			return fmt.Errorf("%s line %d: %v", filename, i, e)
		}
		fmt.Fprintf(w, "%04d %f %e\n", i, ll, conv)
	}
	return s.Err()
}
