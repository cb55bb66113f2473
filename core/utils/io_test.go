package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/wangkuiyi/vemlda/core/fileio"
	"github.com/wangkuiyi/vemlda/core/vem"
)

func TestLoadVocabOrDie(t *testing.T) {
	dir := t.TempDir()

	v, e := vem.CreateTestingVocabulary()
	if e != nil {
		t.Fatalf("CreateTestingVocabulary: %v", e)
	}

	for _, ext := range []string{".gz", ".zst", ""} {
		file := createTempFile(t, dir, "vocab", ext, strings.Join(v.Tokens, "\n"))
		v2 := LoadVocabOrDie(file)
		if !reflect.DeepEqual(v.Tokens, v2.Tokens) {
			t.Errorf("Expecting\n%v\ngot\n%v\n", v.Tokens, v2.Tokens)
		}
		if v2.Id("tiger") != v.Id("tiger") {
			t.Errorf("Expecting id %d, got %d", v.Id("tiger"), v2.Id("tiger"))
		}
	}
}

func TestLoadTranslationOrDie(t *testing.T) {
	dir := t.TempDir()

	v, e := vem.CreateTestingVocabulary()
	if e != nil {
		t.Fatalf("CreateTestingVocabulary: %v", e)
	}
	gzFile := createTempFile(t, dir, "vocab", ".gz", strings.Join(v.Tokens, "\n"))

	trans := make([]string, len(v.Tokens))
	truth := make([]string, len(v.Tokens))
	for i, tok := range v.Tokens {
		trans[i] = tok + " " + "The " + tok
		truth[i] = "The " + tok
	}
	transFile := createTempFile(t, dir, "trans", ".gz", strings.Join(trans, "\n"))

	v = LoadVocabOrDie(gzFile)
	tr := LoadTranslationOrDie(transFile)
	v1 := TranslatedVocab(v, tr)
	if !reflect.DeepEqual(v1.Tokens, truth) {
		t.Errorf("Expecting\n%v\ngot\n%v\n", truth, v.Tokens)
	}
}

func TestLoadCorpusOrDie(t *testing.T) {
	dir := t.TempDir()
	content := "2 0:1 1:1\n1 2:5\n3 0:1 1:1 3:1\n"

	for _, ext := range []string{"", ".gz"} {
		file := createTempFile(t, dir, "corpus", ext, content)
		c := LoadCorpusOrDie(file, 2, 3)
		if c.NumDocs() != 2 || c.Index(0) != 0 || c.Index(1) != 2 {
			t.Errorf("Expecting documents 0 and 2, got %d documents", c.NumDocs())
		}
		if c.NumTerms() != 4 {
			t.Errorf("Expecting 4 terms, got %d", c.NumTerms())
		}
	}
}

func TestLoadCorpusNoDocumentLeft(t *testing.T) {
	file := createTempFile(t, t.TempDir(), "corpus", ".zst", "1 2:5\n")
	if _, e := LoadCorpus(file, 6, 10); e == nil {
		t.Errorf("Expecting an error for a corpus with no document left")
	}
	if _, e := LoadCorpus(file+".missing", 0, 0); e == nil {
		t.Errorf("Expecting an error for a missing corpus")
	}
}

func TestLoadTopicCounts(t *testing.T) {
	file := createTempFile(t, t.TempDir(), "word-assignments", ".dat",
		"002 0000:00 0001:01\n001 0003:01\n")
	counts, e := LoadTopicCounts(file, 2)
	if e != nil {
		t.Fatal(e)
	}
	if fmt.Sprint(counts) != "[1 2]" {
		t.Errorf("Expecting [1 2], got %v", counts)
	}
	if _, e := LoadTopicCounts(file, 1); !errors.Is(e, vem.ErrIndexOutOfRange) {
		t.Errorf("Expecting ErrIndexOutOfRange, got %v", e)
	}
}

func TestLoadModelOrDie(t *testing.T) {
	dir := t.TempDir()
	m := vem.CreateTestingModel()
	root := filepath.Join(dir, "final")
	if e := m.SaveModel(root); e != nil {
		t.Fatal(e)
	}
	m1 := LoadModelOrDie(root)
	if m1.NumTopics != m.NumTopics || m1.NumTerms != m.NumTerms || m1.Alpha.At(0) != m.Alpha.At(0) {
		t.Errorf("Expecting\n%v\ngot\n%v\n", *m, *m1)
	}
}

func TestLoadSettingsOrDie(t *testing.T) {
	file := createTempFile(t, t.TempDir(), "settings", ".txt",
		"var max iter 10\nvar convergence 1e-5\nem max iter 3\nem convergence 1e-3\nalpha fixed\n")
	c := LoadSettingsOrDie(file)
	if c.EMMaxIter != 3 || c.EstimateAlpha {
		t.Errorf("Unexpected settings %v", c)
	}
}

func createTempFile(t *testing.T, dir, name, ext, content string) string {
	filename := filepath.Join(dir, name+ext)
	w, e := fileio.Create(filename)
	if e != nil {
		t.Fatalf("Cannot create %s: %v", filename, e)
	}
	if _, e := w.Write([]byte(content)); e != nil {
		t.Fatalf("Failed writing to temp file %s: %v", filename, e)
	}
	if e := w.Close(); e != nil {
		t.Fatalf("Failed closing %s: %v", filename, e)
	}
	if _, e := os.Stat(filename); e != nil {
		t.Fatal(e)
	}
	return filename
}
