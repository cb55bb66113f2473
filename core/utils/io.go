package utils

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/golang/glog"

	"github.com/wangkuiyi/vemlda/core/fileio"
	"github.com/wangkuiyi/vemlda/core/hist"
	"github.com/wangkuiyi/vemlda/core/vem"
)

// LoadVocab reads a vocabulary file, one token per line.
func LoadVocab(filename string) (*vem.Vocabulary, error) {
	r, e := fileio.Open(filename)
	if e != nil {
		return nil, e
	}
	defer r.Close()
	vocab := vem.NewVocabulary()
	if e := vocab.Load(r); e != nil {
		return nil, fmt.Errorf("%s: %v", filename, e)
	}
	return vocab, nil
}

func LoadVocabOrDie(filename string) *vem.Vocabulary {
	glog.Infof("Loading vocab %s ... ", filename)
	vocab, e := LoadVocab(filename)
	if e != nil {
		glog.Fatalf("Failed loading vocab file %s: %v", filename, e)
	}
	glog.Infof("Done loading vocabulary, %d tokens.", vocab.Len())
	return vocab
}

// LoadCorpus loads a corpus and keeps the documents having between
// minLen and maxLen words.  Non-positive bounds are ignored.  A corpus
// left with no document is an error.
func LoadCorpus(filename string, minLen, maxLen int) (*vem.Corpus, error) {
	r, e := fileio.Open(filename)
	if e != nil {
		return nil, e
	}
	defer r.Close()
	corpus, e := vem.ReadCorpus(r)
	if e != nil {
		return nil, fmt.Errorf("%s: %w", filename, e)
	}
	filtered := corpus.Filter(minLen, maxLen)
	if filtered.NumDocs() == 0 {
		return nil, fmt.Errorf("%s: none of %d documents has between %d and %d words",
			filename, corpus.NumDocs(), minLen, maxLen)
	}
	glog.Infof("Loaded corpus %s: %d out of %d.", filename, filtered.NumDocs(), corpus.NumDocs())
	return filtered, nil
}

func LoadCorpusOrDie(filename string, minLen, maxLen int) *vem.Corpus {
	corpus, e := LoadCorpus(filename, minLen, maxLen)
	if e != nil {
		glog.Fatalf("Failed loading corpus: %v", e)
	}
	return corpus
}

// LoadModelOrDie loads root.beta and root.other.
func LoadModelOrDie(root string) *vem.Model {
	glog.Infof("Loading model %s ...", root)
	m, e := vem.LoadModel(root)
	if e != nil {
		glog.Fatalf("Cannot load model: %v", e)
	}
	glog.Infof("Done. %d topics %d terms.", m.NumTopics, m.NumTerms)
	return m
}

func LoadSettingsOrDie(filename string) *vem.Config {
	c, e := vem.LoadSettings(filename)
	if e != nil {
		glog.Fatalf("Cannot load settings: %v", e)
	}
	return c
}

func LoadGammaOrDie(filename string) [][]float64 {
	g, e := vem.LoadGamma(filename)
	if e != nil {
		glog.Fatalf("Cannot load gamma %s: %v", filename, e)
	}
	return g
}

// LoadTopicCounts counts the tokens assigned to each of numTopics
// topics in a word-assignments.dat file.
func LoadTopicCounts(filename string, numTopics int) (hist.Dense, error) {
	r, e := fileio.Open(filename)
	if e != nil {
		return nil, e
	}
	defer r.Close()
	_, topics, e := vem.ReadWordAssignments(r)
	if e != nil {
		return nil, fmt.Errorf("%s: %w", filename, e)
	}
	counts := hist.NewDense(numTopics)
	for d, ts := range topics {
		for _, k := range ts {
			if k < 0 || int(k) >= numTopics {
				return nil, fmt.Errorf("%s: document %d: %w: topic %d, %d topics",
					filename, d, vem.ErrIndexOutOfRange, k, numTopics)
			}
			counts.Inc(int(k), 1)
		}
	}
	return counts, nil
}

func LoadTopicCountsOrDie(filename string, numTopics int) hist.Dense {
	counts, e := LoadTopicCounts(filename, numTopics)
	if e != nil {
		glog.Fatalf("Cannot load word assignments: %v", e)
	}
	glog.Infof("Loaded %d word assignments over %d topics.", counts.Sum(), counts.Len())
	return counts
}

type Trans map[string]string

// TranslatedVocab replaces tokens of v by their translations, e.g.,
// company ids by company names, for display.
func TranslatedVocab(v *vem.Vocabulary, tr Trans) *vem.Vocabulary {
	glog.Infof("Translating vocabulary ... ")
	for i, s := range v.Tokens {
		if t, exist := tr[s]; exist {
			v.Tokens[i] = t
		} else {
			glog.V(1).Infof("Cannot translate %s", s)
		}
	}
	glog.Infof("Done with translating vocabulary.")
	return v
}

func LoadTranslationOrDie(filename string) Trans {
	glog.Infof("Loading translation %s ...", filename)
	trans := make(map[string]string)

	r, e := fileio.Open(filename)
	if e != nil {
		glog.Fatalf("Cannot load from %s: %v", filename, e)
	}
	defer r.Close()
	s := bufio.NewScanner(r)
	for s.Scan() {
		fs := strings.Fields(s.Text())
		if len(fs) == 0 {
			continue
		}
		if len(fs) < 2 {
			glog.Fatalf("%v has less than 2 fields", fs)
		}
		if _, exist := trans[fs[0]]; exist {
			glog.Fatalf("Found duplicated token %s in %s", fs[0], filename)
		}
		trans[fs[0]] = strings.Join(fs[1:], " ")
	}
	if e := s.Err(); e != nil {
		glog.Fatalf("Reading %s error: %v", filename, e)
	}

	glog.Infof("Done loading translation, %d entries.", len(trans))
	return trans
}
