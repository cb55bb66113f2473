package vem

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/wangkuiyi/vemlda/core/hist"
)

func TestInferencePhiSumsToOne(t *testing.T) {
	m := CreateTestingModel()
	c := CreateTestingCorpus()
	inf := NewInference(m, CreateTestingConfig())
	gamma := make([]float64, m.NumTopics)
	for i := 0; i < c.NumDocs(); i++ {
		d, _ := c.Doc(i)
		l := inf.Infer(d, gamma)
		if math.IsNaN(l) || math.IsInf(l, 0) || l >= 0 {
			t.Errorf("Expecting a finite negative bound, got %v", l)
		}
		phi := inf.Phi()
		if len(phi) != d.Len() {
			t.Fatalf("Expecting %d rows of phi, got %d", d.Len(), len(phi))
		}
		for n := range phi {
			sum := 0.0
			for _, p := range phi[n] {
				sum += p
			}
			if math.Abs(sum-1) > 1e-6 {
				t.Errorf("Expecting phi[%d] to sum to 1, got %v", n, sum)
			}
		}

		// gamma keeps sum alpha + total under the incremental update.
		if s := gamma[0] + gamma[1]; math.Abs(s-(2*testingAlpha+float64(d.Total()))) > 1e-9 {
			t.Errorf("Expecting gamma to sum to %v, got %v", 2*testingAlpha+float64(d.Total()), s)
		}
	}
}

func TestInferenceFindsTopics(t *testing.T) {
	m := CreateTestingModel()
	c := CreateTestingCorpus()
	inf := NewInference(m, CreateTestingConfig())
	gamma := make([]float64, m.NumTopics)

	d, _ := c.Doc(0)
	inf.Infer(d, gamma)
	if gamma[0] <= gamma[1] {
		t.Errorf("Expecting document 0 mostly in topic 0, got %v", gamma)
	}
	d, _ = c.Doc(5)
	inf.Infer(d, gamma)
	if gamma[1] <= gamma[0] {
		t.Errorf("Expecting document 5 mostly in topic 1, got %v", gamma)
	}
}

func TestInferenceIdenticalTokens(t *testing.T) {
	m := CreateTestingModel()
	// Same term, split into several positions.
	d := &Document{Words: []int32{2, 2, 2}, Counts: []int32{1, 2, 3}, total: 6}
	inf := NewInference(m, CreateTestingConfig())
	inf.Infer(d, make([]float64, m.NumTopics))
	phi := inf.Phi()
	for n := 1; n < len(phi); n++ {
		for k := range phi[n] {
			if math.Abs(phi[n][k]-phi[0][k]) > 1e-6 {
				t.Errorf("Expecting identical phi for identical terms, got %v", phi)
			}
		}
	}
}

func TestInferenceSingleTopic(t *testing.T) {
	m := NewModel(1, 3, Symmetric(0.1))
	for w := range m.LogProbW[0] {
		m.LogProbW[0][w] = math.Log(1.0 / 3)
	}
	inf := NewInference(m, CreateTestingConfig())
	d := NewDocument(hist.Sparse{0: 2, 2: 5})
	gamma := make([]float64, 1)
	l := inf.Infer(d, gamma)
	for _, row := range inf.Phi() {
		if row[0] != 1 {
			t.Errorf("Expecting phi = 1 with one topic, got %v", inf.Phi())
		}
	}
	if math.Abs(gamma[0]-7.1) > 1e-12 {
		t.Errorf("Expecting gamma 7.1, got %v", gamma[0])
	}
	// With one topic, the bound is the log-likelihood of the words.
	if want := 7 * math.Log(1.0/3); math.Abs(l-want) > 1e-9 {
		t.Errorf("Expecting likelihood %v, got %v", want, l)
	}
}

func TestInferenceImprovesWithIterations(t *testing.T) {
	m := CreateTestingModel()
	c, _ := ReadCorpus(strings.NewReader("4 0:2 1:1 3:1 4:3\n"))
	d, _ := c.Doc(0)
	conf := CreateTestingConfig()

	previous := math.Inf(-1)
	for _, iter := range []int{1, 2, 5, 100} {
		inf := NewInference(m, conf)
		inf.MaxIter = iter
		l := inf.Infer(d, make([]float64, m.NumTopics))
		if l < previous-1e-9 {
			t.Errorf("Expecting the bound not to decrease with %d iterations: %v < %v", iter, l, previous)
		}
		previous = l
	}
}

func TestInferenceReusesPhi(t *testing.T) {
	m := CreateTestingModel()
	inf := NewInference(m, CreateTestingConfig())
	long := NewDocument(hist.Sparse{0: 1, 1: 1, 2: 1, 3: 1})
	short := NewDocument(hist.Sparse{4: 1})
	gamma := make([]float64, m.NumTopics)
	inf.Infer(long, gamma)
	inf.Infer(short, gamma)
	if len(inf.Phi()) != 1 {
		t.Errorf("Expecting Phi() of the last document, got %d rows", len(inf.Phi()))
	}
	inf.Infer(NewDocument(hist.NewSparse()), gamma)
	if gamma[0] != testingAlpha || gamma[1] != testingAlpha {
		t.Errorf("Expecting gamma = alpha for an empty document, got %v", gamma)
	}
}

func TestInferenceEmptyDocumentUnboundedIterations(t *testing.T) {
	c, e := ReadCorpus(strings.NewReader("3 0:3 1:2 2:1\n0\n3 3:3 4:2 5:1\n"))
	if e != nil {
		t.Fatal(e)
	}
	d, _ := c.Doc(1)
	if d.Len() != 0 {
		t.Fatalf("Expecting document 1 to be empty, got %v", d)
	}
	conf := CreateTestingConfig()
	conf.VarMaxIter = -1
	inf := NewInference(CreateTestingModel(), conf)
	gamma := make([]float64, testingK)

	done := make(chan float64, 1)
	go func() { done <- inf.Infer(d, gamma) }()
	select {
	case l := <-done:
		if math.Abs(l) > 1e-12 {
			t.Errorf("Expecting likelihood 0 for an empty document, got %v", l)
		}
		if gamma[0] != testingAlpha || gamma[1] != testingAlpha {
			t.Errorf("Expecting gamma = alpha, got %v", gamma)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Infer did not return on an empty document with VarMaxIter -1")
	}
}

func TestInferenceStopsOnNaNBound(t *testing.T) {
	m := CreateTestingModel()
	m.LogProbW[0][1] = math.NaN()
	conf := CreateTestingConfig()
	conf.VarMaxIter = -1
	inf := NewInference(m, conf)
	d := NewDocument(hist.Sparse{0: 2, 1: 1})

	done := make(chan float64, 1)
	go func() { done <- inf.Infer(d, make([]float64, m.NumTopics)) }()
	select {
	case l := <-done:
		if !math.IsNaN(l) {
			t.Errorf("Expecting a NaN bound from a NaN model, got %v", l)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Infer did not return on a NaN bound with VarMaxIter -1")
	}
}
