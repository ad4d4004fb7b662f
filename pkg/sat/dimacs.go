package sat

import (
	"bufio"
	"compress/bzip2"
	"compress/gzip"
	"io"
	"os"
	"strings"

	"github.com/go-air/gini/dimacs"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
)

// ReadCNF hands a DIMACS CNF stream to vis. Only comment and blank lines may
// precede the problem line, which is mandatory. The reader is not strict
// about the declared counts: variables may go unused, so callers check the
// clause count against what vis received.
func ReadCNF(reader io.Reader, vis dimacs.CnfVis) error {
	buffered := bufio.NewReader(reader)
	if err := skipPreamble(buffered); err != nil {
		return err
	}
	return errors.Wrap(dimacs.ReadCnfStrict(buffered, vis, false), "cannot read dimacs")
}

// skipPreamble consumes everything before the problem line.
func skipPreamble(reader *bufio.Reader) error {
	for {
		next, err := reader.Peek(1)
		if err == io.EOF {
			return errors.New("cannot read dimacs: missing problem line")
		}
		if err != nil {
			return errors.Wrap(err, "cannot read dimacs")
		}
		switch next[0] {
		case 'p':
			return nil
		case 'c':
			if _, err := reader.ReadString('\n'); err != nil && err != io.EOF {
				return errors.Wrap(err, "cannot read dimacs")
			}
		case ' ', '\t', '\r', '\n':
			reader.ReadByte()
		default:
			return errors.Errorf("cannot read dimacs: unexpected %q before the problem line", next[0])
		}
	}
}

// cnfReader collects the clauses reported by the DIMACS reader.
type cnfReader struct {
	instance SAT
	declared int
	clause   []int64
	err      error
}

func (r *cnfReader) Init(variables, clauses int) {
	if variables < 0 || clauses < 0 {
		r.err = errors.Errorf("cannot read dimacs: negative count in problem line %d %d", variables, clauses)
		return
	}
	r.instance.Variables = uint64(variables)
	r.declared = clauses
	r.instance.Clauses = make([][]int64, 0, min(clauses, 1<<16))
}

func (r *cnfReader) Add(m z.Lit) {
	if m == z.LitNull {
		r.instance.Clauses = append(r.instance.Clauses, r.clause)
		r.clause = nil
		return
	}
	r.clause = append(r.clause, int64(m.Dimacs()))
}

func (r *cnfReader) Eof() {}

// ParseDIMACS reads a DIMACS CNF instance. The problem line is mandatory,
// its variable count is taken as is and its clause count must match the
// body.
func ParseDIMACS(reader io.Reader) (SAT, error) {
	r := &cnfReader{}
	if err := ReadCNF(reader, r); err != nil {
		return SAT{}, err
	}
	if r.err != nil {
		return SAT{}, r.err
	}
	if len(r.clause) != 0 {
		return SAT{}, errors.New("cannot read dimacs: last clause is not terminated by 0")
	}
	if len(r.instance.Clauses) != r.declared {
		return SAT{}, errors.Errorf("cannot read dimacs: problem line declares %d clauses, found %d", r.declared, len(r.instance.Clauses))
	}
	if err := r.instance.Validate(); err != nil {
		return SAT{}, err
	}
	return r.instance, nil
}

// ParseDIMACSFile opens fileName with Open and parses its content.
func ParseDIMACSFile(fileName string) (SAT, error) {
	reader, err := Open(fileName)
	if err != nil {
		return SAT{}, err
	}
	defer reader.Close()
	return ParseDIMACS(reader)
}

// Open opens a DIMACS source. "-" is the standard input; files ending in .gz
// or .bz2 are decompressed on the fly.
func Open(fileName string) (io.ReadCloser, error) {
	if fileName == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	file, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrap(err, "could not open file")
	}
	switch {
	case strings.HasSuffix(fileName, ".gz"):
		reader, err := gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, errors.Wrap(err, "could not open gzip stream")
		}
		return &stackedCloser{Reader: reader, closers: []io.Closer{reader, file}}, nil
	case strings.HasSuffix(fileName, ".bz2"):
		return &stackedCloser{Reader: bzip2.NewReader(file), closers: []io.Closer{file}}, nil
	}
	return file, nil
}

type stackedCloser struct {
	io.Reader
	closers []io.Closer
}

func (s *stackedCloser) Close() error {
	var first error
	for _, closer := range s.closers {
		if err := closer.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
