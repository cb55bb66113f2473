package vem

import "fmt"

// Sharder defines a sequence of fixed number of buckets, and the
// allocation of a zero-based sequence of integers into these buckets.
// The allocations follows the principle that these buckets have
// similar size.  It assigns documents to E-step workers and to
// cross-validation folds.
type Sharder struct {
	Shards int
}

func NewSharder(shards int) Sharder {
	if shards <= 0 {
		panic(fmt.Sprintf("shards (%d) <= 0", shards))
	}
	return Sharder{shards}
}

// Range returns the half-open interval [start, end) of the i-th
// bucket when n integers are divided.  The first n%Shards buckets hold
// one more element than the rest.  When n < Shards, buckets beyond
// the n-th are empty.
func (s Sharder) Range(n, i int) (int, int) {
	if i < 0 || i >= s.Shards {
		panic(fmt.Sprintf("bucket %d out of range [0, %d)", i, s.Shards))
	}
	b := s.Shards
	if n < b {
		b = n
	}
	if i >= b {
		return n, n
	}

	bucketSize := n / b
	extendedBuckets := n % b
	if i < extendedBuckets {
		start := i * (bucketSize + 1)
		return start, start + bucketSize + 1
	}
	start := extendedBuckets*(bucketSize+1) + (i-extendedBuckets)*bucketSize
	return start, start + bucketSize
}
