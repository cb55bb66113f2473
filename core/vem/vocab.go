package vem

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Vocabulary maintains the bi-directional mapping between tokens and
// term ids.  The vocabulary file lists one token per line, and the
// id of a token is its line number counting from 0, which is the
// convention of the sparse corpus format.  Only the first column of
// each line is taken; empty lines still consume an id so that ids
// keep matching line numbers.
type Vocabulary struct {
	Tokens []string
	ids    map[string]int
}

func NewVocabulary() *Vocabulary {
	return &Vocabulary{
		Tokens: make([]string, 0),
	}
}

func (v *Vocabulary) Load(reader io.Reader) error {
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		fs := strings.Fields(scanner.Text())
		if len(fs) > 0 {
			v.Tokens = append(v.Tokens, fs[0]) // Take only the first column.
		} else {
			v.Tokens = append(v.Tokens, "")
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	v.buildIdMap()
	return nil
}

func (v *Vocabulary) buildIdMap() {
	v.ids = make(map[string]int)
	for i := range v.Tokens {
		if _, dup := v.ids[v.Tokens[i]]; !dup && len(v.Tokens[i]) > 0 {
			v.ids[v.Tokens[i]] = i
		}
	}
}

func (v *Vocabulary) Len() int {
	return len(v.Tokens)
}

// Token returns the token of id.  Ids beyond the vocabulary, which
// happen when a vocabulary file is shorter than the model, are
// printed as "#id".
func (v *Vocabulary) Token(id int32) string {
	if int(id) < 0 || int(id) >= len(v.Tokens) || len(v.Tokens[id]) == 0 {
		return fmt.Sprintf("#%d", id)
	}
	return v.Tokens[id]
}

// Id returns the index of token.  If token is not in the vocabulary,
// it returns a negative value.
func (v *Vocabulary) Id(token string) int32 {
	if v.ids == nil {
		v.buildIdMap()
	}
	if id, ok := v.ids[token]; ok {
		return int32(id)
	}
	return int32(-1)
}

// Clone returns a copy of v whose tokens can be replaced, e.g., by
// translations for display, without affecting v.
func (v *Vocabulary) Clone() *Vocabulary {
	c := &Vocabulary{Tokens: append([]string(nil), v.Tokens...)}
	c.buildIdMap()
	return c
}
