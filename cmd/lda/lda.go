// lda estimates an LDA model by variational EM, or infers the topic
// posteriors of a corpus given an estimated model.
// Usage:
/*
  $GOPATH/bin/lda -logtostderr \
    estimate 0.1 20 ./settings.txt ./corpus.dat random ./out

  $GOPATH/bin/lda -logtostderr \
    infer ./inf-settings.txt ./out/final ./test.dat ./test
*/
// With -folds=N (N > 1), estimate trains on all but the -fold'th of N
// random folds of the corpus and logs the perplexity of the held-out
// fold.  Interrupting an estimation by SIGINT or SIGTERM saves the last M-step as
// the final model.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/golang/glog"

	"github.com/wangkuiyi/vemlda/core/utils"
	"github.com/wangkuiyi/vemlda/core/vem"
)

const usage = `usage: lda [flags] estimate [initial alpha] [k] [settings] [data] [random/seeded/model] [directory]
       lda [flags] infer [settings] [model] [data] [name]
`

type options struct {
	minLen, maxLen int
	folds, fold    int
	vocab          string
	topWords       int
	observer       vem.Observer
}

var (
	flagAddr      = flag.String("addr", "", "HTTP metrics address, e.g., :6060; empty disables")
	flagMinDocLen = flag.Int("minlen", 0, "minimum document length; positive values drop short documents from the outputs")
	flagMaxDocLen = flag.Int("maxlen", -1, "maximum document length")
	flagFolds     = flag.Int("folds", 0, "number of cross-validation folds")
	flagFold      = flag.Int("fold", 0, "the held-out fold")
	flagVocab     = flag.String("vocab", "", "vocabulary file; prints topics after estimation")
	flagTopWords  = flag.Int("len", 10, "max # words printed per topic")
)

func main() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	defer glog.Flush()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	opts := newOptions()
	var is *utils.Iterations
	if len(*flagAddr) > 0 {
		is = utils.EnableMetrics(*flagAddr)
		opts.observer = is
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd, args := flag.Arg(0), flag.Args()[1:]; cmd {
	case "estimate":
		r, e := estimate(ctx, args, opts)
		if e != nil {
			glog.Fatalf("estimate: %v", e)
		}
		if r.Interrupted {
			glog.Warningf("Early terminated by signal after %d iterations.", r.Iterations)
		}
	case "infer":
		r, e := infer(args, opts)
		if e != nil {
			glog.Fatalf("infer: %v", e)
		}
		if is != nil {
			is.AddDocuments(len(r.Gammas))
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func newOptions() *options {
	return &options{
		minLen:   *flagMinDocLen,
		maxLen:   *flagMaxDocLen,
		folds:    *flagFolds,
		fold:     *flagFold,
		vocab:    *flagVocab,
		topWords: *flagTopWords,
	}
}

func estimate(ctx context.Context, args []string, opts *options) (*vem.Result, error) {
	if len(args) != 6 {
		return nil, fmt.Errorf("expecting 6 arguments, got %d", len(args))
	}
	alpha, e := strconv.ParseFloat(args[0], 64)
	if e != nil {
		return nil, fmt.Errorf("initial alpha %q: %v", args[0], e)
	}
	k, e := strconv.Atoi(args[1])
	if e != nil {
		return nil, fmt.Errorf("number of topics %q: %v", args[1], e)
	}
	conf, e := vem.LoadSettings(args[2])
	if e != nil {
		return nil, e
	}
	corpus, e := utils.LoadCorpus(args[3], opts.minLen, opts.maxLen)
	if e != nil {
		return nil, e
	}

	var heldOut *vem.Corpus
	if opts.folds > 1 {
		train, test, e := corpus.Split(opts.folds, opts.fold, conf.Seed)
		if e != nil {
			return nil, e
		}
		glog.Infof("Fold %d of %d: %d training and %d held-out documents.",
			opts.fold, opts.folds, train.NumDocs(), test.NumDocs())
		corpus, heldOut = train, test
	}

	est := vem.NewEstimator(corpus, conf, k, alpha, args[4], args[5])
	if opts.observer != nil {
		est.Observer = opts.observer
	}
	r, e := est.Run(ctx)
	if e != nil {
		return nil, e
	}
	glog.Infof("Done %d iterations, %d restarts, likelihood %f.",
		r.Iterations, r.Restarts, r.Likelihood)

	if heldOut != nil {
		pp, e := vem.NewEvaluator(r.Model, conf).CorpusPerplexity(heldOut)
		if e != nil {
			return nil, e
		}
		glog.Infof("Held-out perplexity %f", pp)
	}

	if len(opts.vocab) > 0 {
		v, e := utils.LoadVocab(opts.vocab)
		if e != nil {
			return nil, e
		}
		r.Model.PrintTopics(os.Stdout, v, opts.topWords)
	}
	return r, nil
}

func infer(args []string, opts *options) (*vem.InferResult, error) {
	if len(args) != 4 {
		return nil, fmt.Errorf("expecting 4 arguments, got %d", len(args))
	}
	conf, e := vem.LoadSettings(args[0])
	if e != nil {
		return nil, e
	}
	m, e := vem.LoadModel(args[1])
	if e != nil {
		return nil, e
	}
	corpus, e := utils.LoadCorpus(args[2], opts.minLen, opts.maxLen)
	if e != nil {
		return nil, e
	}

	r, e := vem.InferCorpus(m, corpus, conf)
	if e != nil {
		return nil, e
	}
	glog.Infof("Inferred %d documents; writing %s-gamma.dat and %s-lda-lhood.dat",
		len(r.Gammas), args[3], args[3])
	return r, r.Save(args[3])
}
