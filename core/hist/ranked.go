package hist

import (
	"fmt"
	"sort"
)

// Ranked represents a list of (id, weight) pairs using two arrays,
// where Weights is in descending order.  It represents the top words
// of a topic, P(w|z), and the topic mixture of a document.
type Ranked struct {
	Ids     []int32
	Weights []float64
}

func NewRanked() *Ranked {
	return &Ranked{nil, nil}
}

// Len makes Ranked compatible with sort.Interface.
func (r *Ranked) Len() int {
	return len(r.Ids)
}

// Less sorts by descending weight; ties are broken by ascending id so
// that the order is deterministic.
func (r *Ranked) Less(i, j int) bool {
	return r.Weights[i] > r.Weights[j] ||
		(r.Weights[i] == r.Weights[j] && r.Ids[i] < r.Ids[j])
}

func (r *Ranked) Swap(i, j int) {
	r.Ids[i], r.Ids[j] = r.Ids[j], r.Ids[i]
	r.Weights[i], r.Weights[j] = r.Weights[j], r.Weights[i]
}

// Assign clears r and makes it represent the dense weight vector w.
// Zero weights are kept.
func (r *Ranked) Assign(w []float64) *Ranked {
	r.Ids = make([]int32, len(w))
	r.Weights = make([]float64, len(w))
	for i, v := range w {
		r.Ids[i] = int32(i)
		r.Weights[i] = v
	}
	sort.Sort(r)
	return r
}

// AssignHist clears r and makes it represent the counts in h.
func (r *Ranked) AssignHist(h Hist) *Ranked {
	r.Ids = make([]int32, 0, h.Len())
	r.Weights = make([]float64, 0, h.Len())
	h.ForEach(func(id int, count int64) error {
		r.Ids = append(r.Ids, int32(id))
		r.Weights = append(r.Weights, float64(count))
		return nil
	})
	sort.Sort(r)
	return r
}

// Truncate keeps at most the n heaviest entries.
func (r *Ranked) Truncate(n int) *Ranked {
	if n >= 0 && n < len(r.Ids) {
		r.Ids = r.Ids[:n]
		r.Weights = r.Weights[:n]
	}
	return r
}

// TruncateMass keeps the shortest prefix whose weights accumulate to
// at least fraction of the total weight.
func (r *Ranked) TruncateMass(fraction float64) *Ranked {
	var total float64
	for _, w := range r.Weights {
		total += w
	}
	var accum float64
	for i, w := range r.Weights {
		accum += w
		if accum >= total*fraction {
			return r.Truncate(i + 1)
		}
	}
	return r
}

// At returns the weight of id, or 0 if id is absent.
func (r *Ranked) At(id int) float64 {
	for i := range r.Ids {
		if int(r.Ids[i]) == id {
			return r.Weights[i]
		}
	}
	return 0
}

// ForEach goes over elements in the order of descending weight.
func (r *Ranked) ForEach(p func(id int, weight float64) error) error {
	for i := range r.Ids {
		if e := p(int(r.Ids[i]), r.Weights[i]); e != nil {
			return e
		}
	}
	return nil
}

// String prints a Ranked variable the same format as a slice.
func (r Ranked) String() string {
	out := "[ "
	for i, id := range r.Ids {
		out += fmt.Sprintf("%d:%g ", id, r.Weights[i])
	}
	out += "]"
	return out
}
