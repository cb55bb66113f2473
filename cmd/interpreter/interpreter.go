// interpreter serves the topic mixture of documents given a trained
// model.  A document is either a sequence of whitespace separated
// words looked up in the vocabulary, or of term:count pairs.  The
// root page renders an HTML form; /json returns the mixture as JSON.
/*
  $GOPATH/bin/interpreter -model=./out/final -vocab=./vocab \
    -settings=./inf-settings.txt
  curl 'localhost:6061/json?q=cat+tiger+tiger'
*/
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wangkuiyi/vemlda/core/hist"
	"github.com/wangkuiyi/vemlda/core/utils"
	"github.com/wangkuiyi/vemlda/core/vem"
)

const kMaxTopics = 10

func main() {
	flagAddr := flag.String("addr", ":6061", "listening address")
	flagModel := flag.String("model", "", "model root, e.g., out/final")
	flagVocab := flag.String("vocab", "", "vocabulary file")
	flagTrans := flag.String("trans", "", "vocabulary translation file")
	flagSettings := flag.String("settings", "", "inference settings; defaults if empty")
	flagAssignments := flag.String("assignments", "", "word assignments of the model")
	flagMaxWordsPerTopic := flag.Int("len", 50, "Max # tokens shown per topic")
	flag.Parse()
	defer glog.Flush()

	m := utils.LoadModelOrDie(*flagModel)
	v := utils.LoadVocabOrDie(*flagVocab)
	conf := vem.DefaultConfig()
	if len(*flagSettings) > 0 {
		conf = utils.LoadSettingsOrDie(*flagSettings)
	}
	itr := vem.NewInterpreter(m, v, conf)

	display := v
	if len(*flagTrans) > 0 {
		display = utils.TranslatedVocab(v.Clone(),
			utils.LoadTranslationOrDie(*flagTrans))
	}
	var counts hist.Dense
	if len(*flagAssignments) > 0 {
		counts = utils.LoadTopicCountsOrDie(*flagAssignments, m.NumTopics)
	}
	descs := utils.DescribeTopics(m, display, counts, *flagMaxWordsPerTopic)

	reg := prometheus.NewRegistry()
	is := utils.NewIterations(reg)
	mux := http.NewServeMux()
	mux.HandleFunc("/", MakeSafe(NewHandler(itr, descs, is)))
	mux.HandleFunc("/json", MakeSafe(NewJSONHandler(itr, is)))
	mux.Handle("/metrics", utils.Handler(is, reg))

	glog.Infof("Listening on %s", *flagAddr)
	if e := http.ListenAndServe(*flagAddr, mux); e != nil {
		glog.Fatalf("ListenAndServe failed: %v", e)
	}
}

func MakeSafe(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if e := recover(); e != nil {
				http.Error(w, fmt.Sprint(e), http.StatusInternalServerError)
				glog.Errorf("panic: %v", e)
			}
		}()
		h(w, r)
	}
}

// interpret infers the topic mixture of query q.  If every field of q
// is a term:count pair, q is taken as a document of term ids.
func interpret(itr *vem.Interpreter, q string) (*hist.Ranked, error) {
	fs := strings.Fields(q)
	if h, ok := parsePairs(fs); ok {
		if glog.V(1) {
			glog.Infof("Interpreting term counts %v", hist.NewRanked().AssignHist(h))
		}
		return itr.InterpretDocument(vem.NewDocument(h))
	}
	return itr.Interpret(fs)
}

// parsePairs returns the term histogram of fs if every field is an
// id:count pair with both in the int32 range and count positive.
func parsePairs(fs []string) (hist.Sparse, bool) {
	if len(fs) == 0 {
		return nil, false
	}
	h := hist.NewSparse()
	for _, kv := range fs {
		i := strings.IndexByte(kv, ':')
		if i < 0 {
			return nil, false
		}
		t, e1 := strconv.ParseInt(kv[:i], 10, 32)
		c, e2 := strconv.ParseInt(kv[i+1:], 10, 32)
		if e1 != nil || e2 != nil || t < 0 || c <= 0 {
			return nil, false
		}
		h.Inc(int(t), int(c))
	}
	return h, true
}

func statusOf(e error) int {
	if errors.Is(e, vem.ErrEmptyDoc) || errors.Is(e, vem.ErrTermOutOfRange) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func NewHandler(itr *vem.Interpreter, descs []*utils.TopicDesc,
	is *utils.Iterations) http.HandlerFunc {
	tmpl := template.Must(template.New("interpret").Parse(kTemplate))

	return func(w http.ResponseWriter, r *http.Request) {
		var data []Topic

		if q := r.FormValue("q"); len(q) > 0 {
			dist, e := interpret(itr, q)
			if e != nil {
				http.Error(w, e.Error(), statusOf(e))
				glog.Errorf("Failed interpret %s: %v", q, e)
				return
			}
			is.AddDocuments(1)

			dist.Truncate(kMaxTopics)
			data = make([]Topic, dist.Len())
			for i := range data {
				data[i].Weight = dist.Weights[i]
				data[i].Desc = descs[dist.Ids[i]]
			}
		}

		if e := tmpl.Execute(w, data); e != nil {
			http.Error(w, e.Error(), http.StatusInternalServerError)
			glog.Errorf("Cannot execute HTML template: %v", e)
			return
		}
	}
}

// NewJSONHandler responds to /json?q=... with the topic mixture, as
// [{"topic": k, "weight": p}, ...] in descending weight.
func NewJSONHandler(itr *vem.Interpreter, is *utils.Iterations) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dist, e := interpret(itr, r.FormValue("q"))
		if e != nil {
			http.Error(w, e.Error(), statusOf(e))
			return
		}
		is.AddDocuments(1)

		type topicWeight struct {
			Topic  int32   `json:"topic"`
			Weight float64 `json:"weight"`
		}
		resp := make([]topicWeight, dist.Len())
		for i := range resp {
			resp[i] = topicWeight{dist.Ids[i], dist.Weights[i]}
		}
		w.Header().Set("Content-Type", "application/json")
		if e := json.NewEncoder(w).Encode(resp); e != nil {
			glog.Errorf("Cannot encode response: %v", e)
		}
	}
}

type Topic struct {
	Weight float64
	Desc   *utils.TopicDesc
}

const (
	kTemplate = `<html>
  <head>
    <style type="text/css">
      td {font-family:Courier 10px;}
    </style>
  </head>
  <body style="background-color: #B0E2FF;">
    <form name="input" action="/" method="get" >
      <input type="textarea" name="q" size=80>
      <input type="submit" value="Interpret"></input>
    </form>
    <table>
      <thead style="border: 1px; background-color: #0198E1; color: yellow;">
        <tr>
          <td>P(topic|input)</td>
          <td>N(topic)</td>
          <td colspan=100>P(word|topic)</td>
        </tr>
      </thead>
      <tbody style="background-color: #BFEFFF; border: 1px;">
        {{range .}}
        <tr>
          <td>{{printf "%.4f" .Weight}}</td>
          {{with .Desc}}
          <td>{{.Nt}}</td>
          {{range .Tokens}}
          <td>{{.Word}}</td>
          <td>{{printf "%.4f" .Prob}}</td>
          {{end}}
          {{end}}
        </tr>
      {{end}}
      </tbody>
    </table>
  </body>
</html>
`
)
