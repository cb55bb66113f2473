package hist

// Hist is an integer histogram over non-negative ids.  Dense
// represents per-topic token counts; Sparse represents per-document
// term counts while a corpus line is parsed.
type Hist interface {
	At(id int) int64
	Inc(id, count int)
	Len() int

	// ForEach access elements in the histogram one-by-one. For each
	// element <id, count>, it calls p(id, count).  If p returns nil,
	// it goes on to rest elements; otherwise, it stops the traversal
	// and returns the error from p.
	ForEach(p func(id int, count int64) error) error
}
