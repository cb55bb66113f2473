package main

import (
	"bytes"
	"html/template"
	"strings"
	"testing"

	"github.com/wangkuiyi/vemlda/core/utils"
	"github.com/wangkuiyi/vemlda/core/vem"
)

func TestPrintTopics(t *testing.T) {
	m := vem.CreateTestingModel()
	v, e := vem.CreateTestingVocabulary()
	if e != nil {
		t.Fatal(e)
	}
	descs := utils.DescribeTopics(m, v, []int64{18, 19}, 2)

	var buf bytes.Buffer
	if e := printTopics(&buf, descs); e != nil {
		t.Fatal(e)
	}
	truth :=
		`Topic 00000 Nt 00018 alpha 0.5000: apple (0.3000) orange (0.3000)
Topic 00001 Nt 00019 alpha 0.5000: cat (0.3000) tiger (0.3000)
`
	if buf.String() != truth {
		t.Errorf("Expected\n%s\ngot\n%s\n", truth, buf.String())
	}
}

func TestTopicDescTemplate(t *testing.T) {
	m := vem.CreateTestingModel()
	v, _ := vem.CreateTestingVocabulary()
	v.Tokens[0] = "<apple>"
	descs := utils.DescribeTopics(m, v, nil, 3)

	var buf bytes.Buffer
	tmpl := template.Must(template.New("topics").Parse(kTopicDescTemplate))
	if e := tmpl.Execute(&buf, descs); e != nil {
		t.Fatal(e)
	}
	for _, want := range []string{"&lt;apple&gt;", "banana", "lion", "0.3000"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("Expecting %q in\n%s", want, buf.String())
		}
	}
}
