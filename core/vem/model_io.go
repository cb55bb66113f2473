package vem

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/wangkuiyi/vemlda/core/fileio"
)

// WriteBeta writes LogProbW, one topic per line.
func (m *Model) WriteBeta(w io.Writer) error {
	b := bufio.NewWriter(w)
	for k := range m.LogProbW {
		for _, l := range m.LogProbW[k] {
			fmt.Fprintf(b, " %5.10f", l)
		}
		fmt.Fprintf(b, "\n")
	}
	return b.Flush()
}

// WriteOther writes the model dimensions and the prior.  A vector
// prior is written as K values on the alpha line.
func (m *Model) WriteOther(w io.Writer) error {
	_, e := fmt.Fprintf(w, "num_topics %d\nnum_terms %d\nalpha %s\n",
		m.NumTopics, m.NumTerms, m.Alpha)
	return e
}

// ReadModel reads a model written by WriteBeta and WriteOther.
func ReadModel(beta, other io.Reader) (*Model, error) {
	numTopics, numTerms := -1, -1
	var alpha []float64

	scanner := bufio.NewScanner(other)
	for scanner.Scan() {
		fs := strings.Fields(scanner.Text())
		if len(fs) == 0 {
			continue
		}
		if len(fs) < 2 {
			return nil, fmt.Errorf("%w: no value of %s", ErrModelFormat, fs[0])
		}
		var e error
		switch fs[0] {
		case "num_topics":
			numTopics, e = strconv.Atoi(fs[1])
		case "num_terms":
			numTerms, e = strconv.Atoi(fs[1])
		case "alpha":
			alpha = make([]float64, len(fs)-1)
			for i, f := range fs[1:] {
				if alpha[i], e = strconv.ParseFloat(f, 64); e != nil {
					break
				}
			}
		default:
			e = fmt.Errorf("unknown key")
		}
		if e != nil {
			return nil, fmt.Errorf("%w: bad line %q", ErrModelFormat, scanner.Text())
		}
	}
	if e := scanner.Err(); e != nil {
		return nil, e
	}
	if numTopics < 1 || numTerms < 1 || len(alpha) == 0 {
		return nil, fmt.Errorf("%w: incomplete header: %d topics, %d terms, %d alpha values",
			ErrModelFormat, numTopics, numTerms, len(alpha))
	}

	prior := Symmetric(alpha[0])
	if len(alpha) > 1 {
		prior = Vector(alpha)
	}
	if !prior.Valid(numTopics) {
		return nil, fmt.Errorf("%w: alpha %v for %d topics", ErrModelFormat, prior, numTopics)
	}

	m := NewModel(numTopics, numTerms, prior)
	words := bufio.NewScanner(beta)
	words.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	words.Split(bufio.ScanWords)
	for k := 0; k < numTopics; k++ {
		for w := 0; w < numTerms; w++ {
			if !words.Scan() {
				if e := words.Err(); e != nil {
					return nil, e
				}
				return nil, fmt.Errorf("%w: beta ends at topic %d term %d", ErrModelFormat, k, w)
			}
			v, e := strconv.ParseFloat(words.Text(), 64)
			if e != nil {
				return nil, fmt.Errorf("%w: topic %d term %d: %v", ErrModelFormat, k, w, e)
			}
			m.LogProbW[k][w] = v
		}
	}
	if words.Scan() {
		return nil, fmt.Errorf("%w: beta has more than %d x %d values", ErrModelFormat, numTopics, numTerms)
	}
	return m, nil
}

// SaveModel writes root.beta and root.other.
func (m *Model) SaveModel(root string) error {
	if e := writeFile(root+".beta", m.WriteBeta); e != nil {
		return e
	}
	return writeFile(root+".other", m.WriteOther)
}

// LoadModel reads root.beta and root.other.  Each of them may also be
// compressed, e.g., root.beta.gz.
func LoadModel(root string) (*Model, error) {
	betaPath, e := findFile(root + ".beta")
	if e != nil {
		return nil, e
	}
	otherPath, e := findFile(root + ".other")
	if e != nil {
		return nil, e
	}

	beta, e := fileio.Open(betaPath)
	if e != nil {
		return nil, e
	}
	defer beta.Close()
	other, e := fileio.Open(otherPath)
	if e != nil {
		return nil, e
	}
	defer other.Close()

	m, e := ReadModel(beta, other)
	if e != nil {
		return nil, fmt.Errorf("loading model %s: %w", root, e)
	}
	return m, nil
}

// findFile returns path or, if path does not exist, its first
// compressed variant that does.
func findFile(path string) (string, error) {
	for _, p := range []string{path, path + fileio.ExtGzip, path + fileio.ExtZstd} {
		if _, e := os.Stat(p); e == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%s: %w", path, os.ErrNotExist)
}

// WriteGamma writes one posterior per line.
func WriteGamma(w io.Writer, gammas [][]float64) error {
	b := bufio.NewWriter(w)
	for _, gamma := range gammas {
		for k, g := range gamma {
			if k > 0 {
				fmt.Fprintf(b, " ")
			}
			fmt.Fprintf(b, "%5.10f", g)
		}
		fmt.Fprintf(b, "\n")
	}
	return b.Flush()
}

func SaveGamma(path string, gammas [][]float64) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteGamma(w, gammas)
	})
}

// ReadGamma reads posteriors written by WriteGamma.
func ReadGamma(r io.Reader) ([][]float64, error) {
	var gammas [][]float64
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for line := 1; scanner.Scan(); line++ {
		fs := strings.Fields(scanner.Text())
		if len(fs) == 0 {
			continue
		}
		gamma := make([]float64, len(fs))
		for k, f := range fs {
			var e error
			if gamma[k], e = strconv.ParseFloat(f, 64); e != nil {
				return nil, fmt.Errorf("%w: gamma line %d: %v", ErrModelFormat, line, e)
			}
		}
		gammas = append(gammas, gamma)
	}
	return gammas, scanner.Err()
}

func LoadGamma(path string) ([][]float64, error) {
	f, e := fileio.Open(path)
	if e != nil {
		return nil, e
	}
	defer f.Close()
	return ReadGamma(f)
}

func writeFile(path string, write func(io.Writer) error) error {
	f, e := fileio.Create(path)
	if e != nil {
		return e
	}
	if e := write(f); e != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, e)
	}
	return f.Close()
}
