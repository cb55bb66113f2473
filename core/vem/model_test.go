package vem

import (
	"bytes"
	"errors"
	"math"
	"math/rand"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func randomSuffstats(rng *rand.Rand, numTopics, numTerms int) *Suffstats {
	ss := NewSuffstats(numTopics, numTerms, false)
	ss.InitializeRandom(rng)
	return ss
}

func TestModelMLERowsSumToOne(t *testing.T) {
	ss := randomSuffstats(rand.New(rand.NewSource(1)), 3, 10)
	ss.ClassWord[1][4] = 0 // becomes LogZero
	ss.ClassTotal[1] = 0
	for _, v := range ss.ClassWord[1] {
		ss.ClassTotal[1] += v
	}

	m := NewModel(3, 10, Symmetric(1))
	if e := m.MLE(ss, DefaultConfig(), false); e != nil {
		t.Fatalf("MLE failed: %v", e)
	}
	for k := range m.LogProbW {
		sum := 0.0
		for _, l := range m.LogProbW[k] {
			sum += math.Exp(l)
		}
		if math.Abs(sum-1) > 1e-6 {
			t.Errorf("Expecting topic %d to sum to 1, got %v", k, sum)
		}
	}
	if m.LogProbW[1][4] != LogZero {
		t.Errorf("Expecting LogZero for an unseen term, got %v", m.LogProbW[1][4])
	}
}

func TestModelMLEIsIdempotent(t *testing.T) {
	c := CreateTestingConfig()
	for _, prior := range []AlphaPrior{Symmetric(1), Vector([]float64{1, 1})} {
		ss := randomSuffstats(rand.New(rand.NewSource(2)), testingK, testingV)
		ss.NumDocs = 3
		ss.AlphaSS = symmetricSuffstats(0.5, 3, testingK)
		ss.keepGammas = true
		ss.Gammas = [][]float64{{1, 2}, {3, 0.5}, {2, 2}}

		m := NewModel(testingK, testingV, prior)
		if e := m.MLE(ss, c, true); e != nil {
			t.Fatalf("MLE failed: %v", e)
		}
		first := m.Clone()
		if e := m.MLE(ss, c, true); e != nil {
			t.Fatalf("MLE failed: %v", e)
		}
		if !reflect.DeepEqual(first, m) {
			t.Errorf("Expecting the same model, got %v and %v", first, m)
		}
	}
}

func TestModelClone(t *testing.T) {
	m := CreateTestingModel()
	m.Alpha = Vector([]float64{0.1, 0.2})
	n := m.Clone()
	if !reflect.DeepEqual(m, n) {
		t.Errorf("The cloned model does not equal to the original one.")
	}
	n.LogProbW[0][0] = 0
	n.Alpha.vector[0] = 5
	if m.LogProbW[0][0] == 0 || m.Alpha.At(0) != 0.1 {
		t.Errorf("Expecting a deep copy")
	}
}

func TestModelTopWords(t *testing.T) {
	m := CreateTestingModel()
	r := m.TopWords(1).Truncate(3)
	if !reflect.DeepEqual(r.Ids, []int32{3, 4, 5}) {
		t.Errorf("Expecting top words [3 4 5], got %v", r)
	}

	v, _ := CreateTestingVocabulary()
	var buf bytes.Buffer
	m.PrintTopics(&buf, v, 2)
	want := "Topic 00000 alpha 0.5000: apple (0.3000) orange (0.3000)\n" +
		"Topic 00001 alpha 0.5000: cat (0.3000) tiger (0.3000)\n"
	if buf.String() != want {
		t.Errorf("Expecting\n%s, got\n%s", want, buf.String())
	}
}

func equalModels(t *testing.T, want, got *Model) {
	if got.NumTopics != want.NumTopics || got.NumTerms != want.NumTerms {
		t.Fatalf("Expecting %d x %d, got %d x %d",
			want.NumTopics, want.NumTerms, got.NumTopics, got.NumTerms)
	}
	if got.Alpha.IsSymmetric() != want.Alpha.IsSymmetric() {
		t.Errorf("Expecting alpha %v, got %v", want.Alpha, got.Alpha)
	}
	for k := 0; k < want.NumTopics; k++ {
		if math.Abs(got.Alpha.At(k)-want.Alpha.At(k)) > 1e-9 {
			t.Errorf("Expecting alpha %v, got %v", want.Alpha, got.Alpha)
		}
		for w := 0; w < want.NumTerms; w++ {
			if math.Abs(got.LogProbW[k][w]-want.LogProbW[k][w]) > 1e-9 {
				t.Errorf("Expecting LogProbW[%d][%d] = %v, got %v",
					k, w, want.LogProbW[k][w], got.LogProbW[k][w])
			}
		}
	}
}

func TestModelWriteAndRead(t *testing.T) {
	for _, alpha := range []AlphaPrior{Symmetric(0.25), Vector([]float64{0.1, 2.5})} {
		m := CreateTestingModel()
		m.Alpha = alpha
		var beta, other bytes.Buffer
		if e := m.WriteBeta(&beta); e != nil {
			t.Fatal(e)
		}
		if e := m.WriteOther(&other); e != nil {
			t.Fatal(e)
		}
		if alpha.IsSymmetric() && other.String() != "num_topics 2\nnum_terms 6\nalpha 0.2500000000\n" {
			t.Errorf("Unexpected .other content %q", other.String())
		}
		n, e := ReadModel(&beta, &other)
		if e != nil {
			t.Fatalf("ReadModel failed: %v", e)
		}
		equalModels(t, m, n)
	}
}

func TestSaveAndLoadModel(t *testing.T) {
	dir := t.TempDir()
	m := CreateTestingModel()
	if e := m.SaveModel(filepath.Join(dir, "plain")); e != nil {
		t.Fatalf("SaveModel failed: %v", e)
	}
	// LoadModel finds compressed files given the uncompressed root.
	m.Alpha = Symmetric(3)
	if e := writeFile(filepath.Join(dir, "gz.beta.gz"), m.WriteBeta); e != nil {
		t.Fatal(e)
	}
	if e := writeFile(filepath.Join(dir, "gz.other.zst"), m.WriteOther); e != nil {
		t.Fatal(e)
	}

	for _, root := range []string{"plain", "gz"} {
		n, e := LoadModel(filepath.Join(dir, root))
		if e != nil {
			t.Fatalf("LoadModel(%s) failed: %v", root, e)
		}
		if root == "gz" {
			equalModels(t, m, n)
		} else {
			equalModels(t, CreateTestingModel(), n)
		}
	}

	if _, e := LoadModel(filepath.Join(dir, "missing")); e == nil {
		t.Errorf("Expecting an error loading a missing model")
	}
}

func TestReadModelErrors(t *testing.T) {
	good := "num_topics 2\nnum_terms 2\nalpha 0.5\n"
	for _, c := range []struct{ beta, other string }{
		{"0 0\n0 0\n", "num_topics 2\nnum_terms 2\n"},
		{"0 0\n0 0\n", "num_topics 2\nnum_terms 2\nalpha 1 2 3\n"},
		{"0 0\n0 0\n", "num_topics 2\nnum_terms 2\nalpha -1\n"},
		{"0 0\n0 0\n", good + "beta 3\n"},
		{"0 0\n0\n", good},
		{"0 0\n0 0 0\n", good},
		{"0 0\n0 x\n", good},
	} {
		_, e := ReadModel(strings.NewReader(c.beta), strings.NewReader(c.other))
		if !errors.Is(e, ErrModelFormat) {
			t.Errorf("Expecting ErrModelFormat for %q / %q, got %v", c.beta, c.other, e)
		}
	}
}

func TestGammaRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "final.gamma.gz")
	gammas := [][]float64{{1.5, 2.25}, {0.125, 10}}
	if e := SaveGamma(path, gammas); e != nil {
		t.Fatal(e)
	}
	got, e := LoadGamma(path)
	if e != nil {
		t.Fatal(e)
	}
	if !reflect.DeepEqual(got, gammas) {
		t.Errorf("Expecting %v, got %v", gammas, got)
	}
}
