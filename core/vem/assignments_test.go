package vem

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

func TestWordAssignments(t *testing.T) {
	c := CreateTestingCorpus()
	assignments, counts, e := assignWords(CreateTestingModel(), c, CreateTestingConfig(), 100)
	if e != nil {
		t.Fatal(e)
	}
	want := "[[0 0 0] [0 0 0] [0 0 0] [1 1 1] [1 1 1] [1 1 1]]"
	if fmt.Sprint(assignments) != want {
		t.Errorf("Expecting %s, got %v", want, assignments)
	}
	if fmt.Sprint(counts) != "[18 19]" {
		t.Errorf("Expecting topic counts [18 19], got %v", counts)
	}

	var buf bytes.Buffer
	if e := WriteWordAssignments(&buf, c, assignments); e != nil {
		t.Fatal(e)
	}
	if first := strings.SplitN(buf.String(), "\n", 2)[0]; first != "003 0000:00 0001:00 0002:00" {
		t.Errorf("Unexpected first line %q", first)
	}

	words, topics, e := ReadWordAssignments(&buf)
	if e != nil {
		t.Fatal(e)
	}
	if fmt.Sprint(topics) != want || fmt.Sprint(words[3]) != "[3 4 5]" {
		t.Errorf("Expecting round trip, got %v and %v", words, topics)
	}
}

func TestReadWordAssignmentsErrors(t *testing.T) {
	for _, text := range []string{"2 0001:01\n", "1 0001-01\n", "1 x:1\n"} {
		if _, _, e := ReadWordAssignments(strings.NewReader(text)); e == nil {
			t.Errorf("Expecting an error for %q", text)
		}
	}
}
