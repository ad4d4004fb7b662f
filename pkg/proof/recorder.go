package proof

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
)

// Frame markers of the spool, as in binary DRAT.
const (
	addMarker    byte = 'a'
	deleteMarker byte = 'd'
)

// Recorder spools events to a temporary file while the engine searches, so
// a long refutation is never held in memory. A Recorder is not safe for
// concurrent use.
type Recorder struct {
	file   *os.File
	w      *bufio.Writer
	buf    []byte
	events int
	done   bool
}

// NewRecorder creates the spool in dir (the system temporary directory when
// dir is empty).
func NewRecorder(dir string) (*Recorder, error) {
	file, err := os.CreateTemp(dir, "satkit-proof-*.spool")
	if err != nil {
		return nil, errors.Wrap(err, "cannot create proof spool")
	}
	return &Recorder{
		file: file,
		w:    bufio.NewWriterSize(file, 64*1024),
		buf:  make([]byte, 0, 64),
	}, nil
}

// Record appends e to the spool. Literals are stored as 2*(var+1)+neg
// varints followed by a 0 terminator.
func (r *Recorder) Record(e Event) error {
	if r.done {
		return errors.New("proof recorder already finished")
	}
	marker := addMarker
	if e.Kind == Delete {
		marker = deleteMarker
	}
	r.buf = append(r.buf[:0], marker)
	for _, m := range e.Clause {
		r.buf = binary.AppendUvarint(r.buf, uint64(m)+2)
	}
	r.buf = append(r.buf, 0)
	if _, err := r.w.Write(r.buf); err != nil {
		return errors.Wrap(err, "cannot write proof spool")
	}
	r.events++
	return nil
}

// Len returns the number of recorded events.
func (r *Recorder) Len() int {
	return r.events
}

// Finish seals the spool and hands it over as a Trace. The recorder cannot
// be used afterwards.
func (r *Recorder) Finish() (*Trace, error) {
	if r.done {
		return nil, errors.New("proof recorder already finished")
	}
	r.done = true
	if err := r.w.Flush(); err != nil {
		r.remove()
		return nil, errors.Wrap(err, "cannot flush proof spool")
	}
	if _, err := r.file.Seek(0, io.SeekStart); err != nil {
		r.remove()
		return nil, errors.Wrap(err, "cannot rewind proof spool")
	}
	return &Trace{file: r.file, events: r.events}, nil
}

// Discard drops the spool without producing a trace.
func (r *Recorder) Discard() error {
	if r.done {
		return nil
	}
	r.done = true
	return r.remove()
}

func (r *Recorder) remove() error {
	closeErr := r.file.Close()
	if err := os.Remove(r.file.Name()); err != nil {
		return errors.Wrap(err, "cannot remove proof spool")
	}
	return closeErr
}
