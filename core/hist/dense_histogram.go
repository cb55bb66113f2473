package hist

import (
	"fmt"
	"math"
)

// Dense is a plain histogram represented by a count array.  It is
// used to count the tokens assigned to each topic.
type Dense []int64

func NewDense(dim int) Dense {
	return make(Dense, dim)
}

func (d Dense) At(id int) int64 {
	return d[id]
}

func (d Dense) Inc(id, count int) {
	if count < 0 {
		panic(fmt.Sprintf("count (%d) is negative", count))
	}
	if d[id] >= math.MaxInt64-int64(count) {
		panic(fmt.Sprintf("d[%d] = %d overflow", id, d[id]))
	}
	d[id] += int64(count)
}

func (d Dense) Len() int {
	return len(d)
}

// Sum returns the total count.
func (d Dense) Sum() int64 {
	var s int64
	for _, v := range d {
		s += v
	}
	return s
}

func (d Dense) ForEach(p func(id int, count int64) error) error {
	for i, v := range d {
		if e := p(i, v); e != nil {
			return e
		}
	}
	return nil
}
