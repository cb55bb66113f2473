package hist

import (
	"fmt"
	"math"
	"sort"
)

// Sparse represents histogram using Go map.  The corpus reader
// collects the term counts of a document line into a Sparse, which
// merges repeated term ids.
type Sparse map[int32]int32

func NewSparse() Sparse {
	return make(Sparse)
}

func (s Sparse) Clear() {
	for k := range s {
		delete(s, k)
	}
}

func (s Sparse) Len() int {
	return len(s)
}

func (s Sparse) At(id int) int64 {
	return int64(s[int32(id)])
}

func (s Sparse) Inc(id, count int) {
	if count <= 0 {
		panic(fmt.Sprintf("Inc(id=%d, count=%d): count must > 0",
			id, count))
	}
	if id < 0 || id > int(math.MaxInt32) {
		panic(fmt.Sprintf("id (%d) out of the int32 range", id))
	}
	if count > int(math.MaxInt32) {
		panic(fmt.Sprintf("count (%d) larger than MaxInt32", count))
	}
	t := int32(id)
	if s[t] >= math.MaxInt32-int32(count) {
		panic(fmt.Sprintf("d[%d] = %d overflow", id, s[t]))
	}
	s[t] += int32(count)
}

// Ids returns the ids with non-zero count in ascending order.
func (s Sparse) Ids() []int32 {
	ids := make([]int32, 0, len(s))
	for k := range s {
		ids = append(ids, k)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s Sparse) ForEach(p func(id int, count int64) error) error {
	for i, v := range s {
		if e := p(int(i), int64(v)); e != nil {
			return e
		}
	}
	return nil
}
