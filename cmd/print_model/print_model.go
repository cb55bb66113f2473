// print_model shows a trained model in human readable format.  It can
// output either a text file, or runs as a Web server and presents
// HTML format, depending on if -html is set.  To make the printed
// model readable, you can specify a translation file in addition to
// the vocabulary file.  If -assignments names the word-assignments.dat
// written together with the model, each topic also shows the number
// of tokens assigned to it.
/*
  $GOPATH/bin/print_model -model=./out/final -vocab=./vocab \
    -assignments=./out/word-assignments.dat
*/
package main

import (
	"flag"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"os"

	"github.com/golang/glog"

	"github.com/wangkuiyi/vemlda/core/hist"
	"github.com/wangkuiyi/vemlda/core/utils"
)

func main() {
	flagModel := flag.String("model", "", "The model root, e.g., out/final")
	flagVocab := flag.String("vocab", "", "The vocabulary file")
	flagTrans := flag.String("trans", "", "The token translation file")
	flagAssignments := flag.String("assignments", "", "The word assignments file")
	flagMaxWordsPerTopic := flag.Int("len", 50, "Max # tokens shown per topic")
	flagHtml := flag.String("html", "", "Display HTML instead generating file")
	flag.Parse()
	defer glog.Flush()

	v := utils.LoadVocabOrDie(*flagVocab)
	if len(*flagTrans) > 0 {
		v = utils.TranslatedVocab(v,
			utils.LoadTranslationOrDie(*flagTrans))
	}
	m := utils.LoadModelOrDie(*flagModel)
	var counts hist.Dense
	if len(*flagAssignments) > 0 {
		counts = utils.LoadTopicCountsOrDie(*flagAssignments, m.NumTopics)
	}
	descs := utils.DescribeTopics(m, v, counts, *flagMaxWordsPerTopic)

	if len(*flagHtml) == 0 {
		if e := printTopics(os.Stdout, descs); e != nil {
			glog.Fatalf("Cannot print topics: %v", e)
		}
		return
	}

	tmpl := template.Must(template.New("topics").Parse(kTopicDescTemplate))
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if e := tmpl.Execute(w, descs); e != nil {
			http.Error(w, e.Error(), http.StatusInternalServerError)
			glog.Errorf("Cannot execute HTML template: %v", e)
			return
		}
	})

	glog.Infof("Listening on %s", *flagHtml)
	if e := http.ListenAndServe(*flagHtml, nil); e != nil {
		glog.Fatalf("ListenAndServe failed: %v", e)
	}
}

func printTopics(w io.Writer, descs []*utils.TopicDesc) error {
	for _, d := range descs {
		if _, e := fmt.Fprintf(w, "Topic %05d Nt %05d alpha %.4f:", d.Id, d.Nt, d.Alpha); e != nil {
			return e
		}
		for _, t := range d.Tokens {
			fmt.Fprintf(w, " %s (%.4f)", t.Word, t.Prob)
		}
		if _, e := fmt.Fprintln(w); e != nil {
			return e
		}
	}
	return nil
}

const (
	kTopicDescTemplate = `<html>
<body style="background-color: #CFEDFB">
  <table>
    <thead style="background-color: #046293; color: white;">
      <tr>
        <td>ID</td>
        <td>Frequency</td>
        <td>Alpha</td>
        <td colspan=100>Words</td>
      </tr>
    </thead>
    <tbody style="background-color: #046293; color: white;">
    {{range .}}
      <tr>
        <td>{{.Id}}</td>
        <td>{{.Nt}}</td>
        <td>{{printf "%.4f" .Alpha}}</td>
        {{range .Tokens}}
          <td style="background-color: #BFEFFF;">{{.Word}}</td>
          <td style="background-color: #00A0DC; color: white;">{{printf "%.4f" .Prob}}</td>
        {{end}}
      </tr>
    {{end}}
    </tbody>
  </table>
</body>
</html>
`
)
