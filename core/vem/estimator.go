package vem

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/golang/glog"

	"github.com/wangkuiyi/vemlda/core/fileio"
	"github.com/wangkuiyi/vemlda/core/hist"
)

const (
	StartRandom = "random"
	StartSeeded = "seeded"
)

// IterationStats describes one completed EM iteration.
type IterationStats struct {
	Iteration  int
	Likelihood float64
	Converged  float64
	VarMaxIter int
	NumDocs    int
	Duration   time.Duration
}

// Observer is notified after every EM iteration.
type Observer interface {
	Observe(s IterationStats)
}

// Result is what Estimator.Run leaves behind in addition to the files
// in the output directory.
type Result struct {
	Model       *Model
	Gammas      [][]float64 // posterior of each document, final E-step
	TopicCounts hist.Dense  // tokens assigned to each topic by the final pass
	Likelihood  float64
	Iterations  int
	Restarts    int
	Interrupted bool
}

// Estimator fits an LDA model to a corpus by variational EM.  Start
// is StartRandom, StartSeeded or the root of a saved model, whose
// number of topics then overrides NumTopics.
type Estimator struct {
	Config       *Config
	Corpus       *Corpus
	NumTopics    int
	InitialAlpha float64
	Start        string
	OutDir       string
	Observer     Observer // optional
}

func NewEstimator(corpus *Corpus, c *Config, numTopics int,
	initialAlpha float64, start, outDir string) *Estimator {
	return &Estimator{
		Config:       c,
		Corpus:       corpus,
		NumTopics:    numTopics,
		InitialAlpha: initialAlpha,
		Start:        start,
		OutDir:       outDir,
	}
}

// runState is what changes during a run besides the model.
type runState struct {
	rng        *rand.Rand
	varMaxIter int
	ss         *Suffstats
	partials   []*Suffstats
	gammas     [][]float64
}

// Run executes EM until convergence, EMMaxIter iterations, or the
// cancellation of ctx, which is checked between iterations.  Every Lag
// iterations it writes a checkpoint NNN.beta, NNN.other and NNN.gamma
// into OutDir.  At the end it writes final.beta, final.other,
// final.gamma, likelihood.dat and word-assignments.dat; a run
// cancelled before the first iteration writes no final.gamma or
// word-assignments.dat.
func (e *Estimator) Run(ctx context.Context) (*Result, error) {
	if e.Corpus.NumDocs() == 0 {
		return nil, fmt.Errorf("%w: empty corpus", ErrIndexOutOfRange)
	}
	if e.Start == StartRandom || e.Start == StartSeeded {
		if e.NumTopics < 1 || !(e.InitialAlpha > 0) {
			return nil, fmt.Errorf("%w: %d topics, initial alpha %v",
				ErrSettings, e.NumTopics, e.InitialAlpha)
		}
	}
	if err := os.MkdirAll(e.OutDir, 0755); err != nil {
		return nil, err
	}
	glog.Infof("settings: %s", e.Config)

	st := &runState{
		rng:        rand.New(rand.NewSource(e.Config.Seed)),
		varMaxIter: e.Config.VarMaxIter,
	}
	restarts := 0
	for {
		m, err := e.initialModel(st.rng, restarts > 0)
		if err != nil {
			return nil, err
		}
		if err := m.SaveModel(e.path("000")); err != nil {
			return nil, err
		}

		r, err := e.em(ctx, m, st)
		if err != nil {
			return nil, err
		}
		if e.Config.AlphaMode == AlphaVector && !r.Interrupted &&
			r.Iterations < e.Config.RestartBefore &&
			r.Iterations < e.Config.EMMaxIter &&
			restarts < e.Config.MaxRestarts {
			restarts++
			glog.Warningf("converged after %d iterations; restart %d from a random model",
				r.Iterations, restarts)
			continue
		}
		r.Restarts = restarts
		return r, e.finish(r, st)
	}
}

func (e *Estimator) path(name string) string {
	return filepath.Join(e.OutDir, name)
}

// initialModel builds the model EM starts from.  A restart always
// starts from a random model.
func (e *Estimator) initialModel(rng *rand.Rand, restart bool) (*Model, error) {
	c := e.Config
	V := e.Corpus.NumTerms()
	start := e.Start
	if restart {
		start = StartRandom
	}

	if start != StartRandom && start != StartSeeded {
		m, err := LoadModel(start)
		if err != nil {
			return nil, err
		}
		if m.NumTopics != e.NumTopics {
			glog.Warningf("model %s has %d topics instead of %d", start, m.NumTopics, e.NumTopics)
			e.NumTopics = m.NumTopics
		}
		if err := checkTerms(m, e.Corpus); err != nil {
			return nil, err
		}
		if c.AlphaMode == AlphaVector && m.Alpha.IsSymmetric() {
			m.Alpha = Vector(m.Alpha.Values(m.NumTopics))
		}
		return m, nil
	}

	prior := Symmetric(e.InitialAlpha)
	if c.AlphaMode == AlphaVector {
		prior = Vector(prior.Values(e.NumTopics))
	}
	m := NewModel(e.NumTopics, V, prior)
	ss := NewSuffstats(e.NumTopics, V, false)
	if start == StartSeeded {
		ss.InitializeSeeded(e.Corpus, rng)
	} else {
		ss.InitializeRandom(rng)
	}
	if err := m.MLE(ss, c, false); err != nil {
		return nil, err
	}
	return m, nil
}

// em runs the E_STEP, M_STEP, CONVERGENCE_CHECK cycle on m in place.
func (e *Estimator) em(ctx context.Context, m *Model, st *runState) (*Result, error) {
	c := e.Config
	K, V := m.NumTopics, m.NumTerms
	keepGammas := !m.Alpha.IsSymmetric()
	st.ss = NewSuffstats(K, V, keepGammas)
	st.partials = nil
	st.gammas = newGammas(e.Corpus.NumDocs(), K)
	st.varMaxIter = c.VarMaxIter

	lf, err := fileio.Create(e.path("likelihood.dat"))
	if err != nil {
		return nil, err
	}
	defer lf.Close()

	r := &Result{Model: m, Gammas: st.gammas}
	likelihoodOld, converged := 0.0, 1.0
	for i := 1; ; i++ {
		if ctx.Err() != nil {
			glog.Warningf("interrupted before EM iteration %d", i)
			r.Interrupted = true
			break
		}

		begin := time.Now()
		glog.Infof("**** em iteration %d ****", i)
		likelihood, err := e.eStep(m, st)
		if err != nil {
			return nil, err
		}
		if err := m.MLE(st.ss, c, c.EstimateAlpha); err != nil {
			return nil, err
		}

		if i > 1 {
			converged = (likelihoodOld - likelihood) / likelihoodOld
		}
		if converged < 0 && st.varMaxIter != -1 {
			st.varMaxIter *= 2
			glog.Warningf("likelihood decreased; var max iter doubled to %d", st.varMaxIter)
		}
		likelihoodOld = likelihood
		r.Likelihood, r.Iterations = likelihood, i

		if _, err := fmt.Fprintf(lf, "%10.10f\t%5.5e\n", likelihood, converged); err != nil {
			return nil, err
		}
		if e.Observer != nil {
			e.Observer.Observe(IterationStats{
				Iteration:  i,
				Likelihood: likelihood,
				Converged:  converged,
				VarMaxIter: st.varMaxIter,
				NumDocs:    st.ss.NumDocs,
				Duration:   time.Since(begin),
			})
		}
		glog.Infof("likelihood %10.10f converged %5.5e alpha %s", likelihood, converged, m.Alpha)

		if i%c.Lag == 0 {
			name := fmt.Sprintf("%03d", i)
			if err := m.SaveModel(e.path(name)); err != nil {
				return nil, err
			}
			if err := SaveGamma(e.path(name+".gamma"), st.gammas); err != nil {
				return nil, err
			}
		}

		if (math.Abs(converged) < c.EMConverged && i >= 3) || i >= c.EMMaxIter {
			break
		}
	}
	return r, lf.Close()
}

// eStep infers all documents with m fixed and leaves the merged
// statistics in st.ss.  Each shard accumulates into its own partial
// statistics; they are merged in shard order.
func (e *Estimator) eStep(m *Model, st *runState) (float64, error) {
	st.ss.Zero()
	K, V := m.NumTopics, m.NumTerms
	keepGammas := !m.Alpha.IsSymmetric()
	for len(st.partials) < e.Config.Workers {
		st.partials = append(st.partials, NewSuffstats(K, V, keepGammas))
	}
	likelihoods := make([]float64, len(st.partials))
	for _, p := range st.partials {
		p.Zero()
	}

	workers, err := inferAll(m, e.Corpus, e.Config, st.varMaxIter, st.gammas,
		func(w, d int, likelihood float64, phi [][]float64) error {
			likelihoods[w] += likelihood
			st.partials[w].Accumulate(e.Corpus.docs[d], st.gammas[d], phi)
			return nil
		})
	if err != nil {
		return 0, err
	}

	likelihood := 0.0
	for w := 0; w < workers; w++ {
		st.ss.Merge(st.partials[w])
		likelihood += likelihoods[w]
	}
	return likelihood, nil
}

// finish writes the final model and posteriors, and runs one more
// inference pass with the final model to assign each word to its most
// probable topic.  A run stopped before its first E-step has no
// posteriors, so only its model is written.
func (e *Estimator) finish(r *Result, st *runState) error {
	if err := r.Model.SaveModel(e.path("final")); err != nil {
		return err
	}
	if r.Iterations == 0 {
		return nil
	}
	if err := SaveGamma(e.path("final.gamma"), r.Gammas); err != nil {
		return err
	}

	assignments, counts, err := assignWords(r.Model, e.Corpus, e.Config, st.varMaxIter)
	if err != nil {
		return err
	}
	r.TopicCounts = counts
	return writeFile(e.path("word-assignments.dat"), func(w io.Writer) error {
		return WriteWordAssignments(w, e.Corpus, assignments)
	})
}
