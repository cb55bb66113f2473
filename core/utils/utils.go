package utils

import (
	"bytes"
	"fmt"
	"net"
	"net/http"
	_ "net/http/pprof"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wangkuiyi/vemlda/core/vem"
)

type Iteration struct {
	StartTime  time.Time
	Duration   time.Duration
	Likelihood float64
	Converged  float64
	VarMaxIter int
}

// Iterations records the progress of an EM run and mirrors it into
// Prometheus collectors.  It implements vem.Observer.
type Iterations struct {
	mu   sync.Mutex
	list []*Iteration

	iteration  prometheus.Gauge
	likelihood prometheus.Gauge
	converged  prometheus.Gauge
	varMaxIter prometheus.Gauge
	duration   prometheus.Histogram
	documents  prometheus.Counter
}

// NewIterations creates an Iterations whose collectors are registered
// with reg.
func NewIterations(reg prometheus.Registerer) *Iterations {
	is := &Iterations{
		iteration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lda_em_iteration",
			Help: "Number of completed EM iterations.",
		}),
		likelihood: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lda_em_likelihood",
			Help: "Corpus likelihood bound after the last EM iteration.",
		}),
		converged: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lda_em_converged",
			Help: "Relative change of the likelihood in the last EM iteration.",
		}),
		varMaxIter: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lda_var_max_iter",
			Help: "Current cap of variational iterations per document (-1 is unbounded).",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lda_em_iteration_duration_seconds",
			Help:    "Wall time of EM iterations.",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
		}),
		documents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lda_documents_inferred_total",
			Help: "Documents passed through variational inference.",
		}),
	}
	reg.MustRegister(is.iteration, is.likelihood, is.converged,
		is.varMaxIter, is.duration, is.documents)
	return is
}

func (is *Iterations) Observe(s vem.IterationStats) {
	is.mu.Lock()
	is.list = append(is.list, &Iteration{
		StartTime:  time.Now().Add(-s.Duration),
		Duration:   s.Duration,
		Likelihood: s.Likelihood,
		Converged:  s.Converged,
		VarMaxIter: s.VarMaxIter,
	})
	is.mu.Unlock()

	is.iteration.Set(float64(s.Iteration))
	is.likelihood.Set(s.Likelihood)
	is.converged.Set(s.Converged)
	is.varMaxIter.Set(float64(s.VarMaxIter))
	is.duration.Observe(s.Duration.Seconds())
	is.AddDocuments(s.NumDocs)
}

// AddDocuments counts documents inferred outside of EM iterations.
func (is *Iterations) AddDocuments(n int) {
	is.documents.Add(float64(n))
}

func (is *Iterations) Len() int {
	is.mu.Lock()
	defer is.mu.Unlock()
	return len(is.list)
}

func (is *Iterations) String() string {
	is.mu.Lock()
	defer is.mu.Unlock()
	var buf bytes.Buffer
	for i, iter := range is.list {
		fmt.Fprintf(&buf, "%05d: %s\t%s\t%10.10f\t%5.5e\n", i+1,
			iter.StartTime.Format(time.RFC3339), iter.Duration, iter.Likelihood, iter.Converged)
	}
	return buf.String()
}

// Handler serves /metrics from reg and /progress as plain text.
func Handler(is *Iterations, reg prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/progress", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, is.String())
	})
	mux.Handle("/debug/pprof/", http.DefaultServeMux)
	return mux
}

// EnableMetrics starts serving Handler on addr in the background.  If
// addr cannot be listened on, it logs the error and the returned
// Iterations still records progress.
func EnableMetrics(addr string) *Iterations {
	reg := prometheus.NewRegistry()
	is := NewIterations(reg)

	l, e := net.Listen("tcp", addr)
	if e != nil {
		glog.Errorf("Metrics disabled, cannot listen on %s: %v", addr, e)
		return is
	}
	glog.Infof("Serving metrics on %s", l.Addr())
	go func() {
		if e := http.Serve(l, Handler(is, reg)); e != nil {
			glog.Errorf("Serving metrics on %s failed: %v", addr, e)
		}
	}()
	return is
}
