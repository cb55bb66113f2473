package utils

import (
	"html/template"
	"runtime"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"

	"github.com/wangkuiyi/vemlda/core/hist"
	"github.com/wangkuiyi/vemlda/core/vem"
)

// DescribeTopics lists the maxWordsPerTopic most probable words of
// every topic.  counts, if not nil, holds the number of tokens
// assigned to each topic.
func DescribeTopics(m *vem.Model, v *vem.Vocabulary, counts hist.Dense,
	maxWordsPerTopic int) []*TopicDesc {

	glog.Infof("Generating topic descriptions ... ")
	descs := make([]*TopicDesc, m.NumTopics)

	var g errgroup.Group
	g.SetLimit(2 * runtime.NumCPU())
	for topic := 0; topic < m.NumTopics; topic++ {
		topic := topic
		g.Go(func() error {
			d := &TopicDesc{
				Id:     topic,
				Alpha:  m.Alpha.At(topic),
				Tokens: make([]TokenDesc, 0, maxWordsPerTopic),
			}
			if counts != nil {
				d.Nt = counts.At(topic)
			}
			m.TopWords(topic).Truncate(maxWordsPerTopic).ForEach(
				func(t int, p float64) error {
					d.Tokens = append(d.Tokens,
						TokenDesc{template.HTML(template.HTMLEscapeString(v.Token(int32(t)))), p})
					return nil
				})
			descs[topic] = d
			return nil
		})
	}
	g.Wait()

	glog.Infof("Done generating topic descriptions.")
	return descs
}

type TopicDesc struct {
	Id     int
	Nt     int64
	Alpha  float64
	Tokens []TokenDesc
}
type TokenDesc struct {
	Word template.HTML
	Prob float64
}
