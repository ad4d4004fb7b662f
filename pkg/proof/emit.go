package proof

import (
	"bufio"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// CreateError reports that the certificate destination could not be created.
type CreateError struct {
	Path string
	Err  error
}

func (e *CreateError) Error() string {
	return "cannot create proof file " + strconv.Quote(e.Path) + ": " + e.Err.Error()
}

func (e *CreateError) Unwrap() error {
	return e.Err
}

// Emit creates path and writes trace to it as DRAT text. The trace is
// consumed, or discarded when the file cannot be created.
func Emit(path string, trace *Trace) (err error) {
	file, err := os.Create(path)
	if err != nil {
		trace.Close()
		return &CreateError{Path: path, Err: err}
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = errors.Wrapf(closeErr, "cannot close proof file %q", path)
		}
	}()
	return Write(file, trace)
}

// Write renders every event of trace on its own line, in trace order:
// deletions get a "d " prefix, literals follow in stored order as signed
// decimals, and the line ends with 0.
func Write(w io.Writer, trace *Trace) error {
	out := bufio.NewWriterSize(w, 64*1024)
	line := make([]byte, 0, 128)
	for e, err := range trace.All() {
		if err != nil {
			return err
		}
		line = appendLine(line[:0], e)
		line = append(line, '\n')
		if _, err := out.Write(line); err != nil {
			return errors.Wrap(err, "cannot write proof")
		}
	}
	return errors.Wrap(out.Flush(), "cannot write proof")
}

func appendLine(line []byte, e Event) []byte {
	if e.Kind == Delete {
		line = append(line, 'd', ' ')
	}
	for _, m := range e.Clause {
		line = strconv.AppendInt(line, m.Dimacs(), 10)
		line = append(line, ' ')
	}
	return append(line, '0')
}
