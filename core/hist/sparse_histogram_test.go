package hist

import (
	"reflect"
	"testing"
)

func TestNewSparse(t *testing.T) {
	s := NewSparse()
	if len(s) != 0 {
		t.Errorf("len(s): expected %d, got %d", 0, len(s))
	}
}

func TestSparseClear(t *testing.T) {
	s := Sparse{1: 2, 3: 5}
	s.Clear()
	if len(s) != 0 {
		t.Errorf("len(s): expected %d, got %d", 0, len(s))
	}
}

func TestSparseInc(t *testing.T) {
	s := Sparse{}
	s.Inc(2, 10)
	if len(s) != 1 {
		t.Errorf("Expecting len(s) = 1, got %d", len(s))
	}
	s.Inc(2, 3)
	if s.At(2) != 13 {
		t.Errorf("Expecting s.At(2) = 13, got %d", s.At(2))
	}
}

func TestSparseIds(t *testing.T) {
	s := Sparse{7: 1, 0: 2, 3: 4}
	if ids := s.Ids(); !reflect.DeepEqual(ids, []int32{0, 3, 7}) {
		t.Errorf("Expecting [0 3 7], got %v", ids)
	}
}

func TestSparseIncRejectsIdOutOfInt32(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("Expecting Inc(1<<32+1, 1) to panic")
		}
	}()
	s := NewSparse()
	s.Inc(1<<32+1, 1)
	t.Errorf("Inc stored %v", s)
}
