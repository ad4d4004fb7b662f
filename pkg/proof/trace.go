package proof

import (
	"bufio"
	"encoding/binary"
	"io"
	"iter"
	"os"

	"github.com/pkg/errors"

	"github.com/limaJavier/satkit/pkg/sat"
)

// ErrConsumed is yielded when a trace is iterated a second time.
var ErrConsumed = errors.New("proof trace already consumed")

// Trace is a forward-only replay of recorded events. It can be iterated
// exactly once; the spool backing it is removed when iteration ends or when
// Close is called.
type Trace struct {
	file     *os.File
	events   int
	consumed bool
}

// EmptyTrace returns a trace without events.
func EmptyTrace() *Trace {
	return &Trace{}
}

// Len returns the number of events in the trace.
func (t *Trace) Len() int {
	return t.events
}

// All yields the events in recording order. Decoding failures are yielded
// once, with a zero Event, and end the iteration.
func (t *Trace) All() iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		if t.consumed {
			yield(Event{}, ErrConsumed)
			return
		}
		t.consumed = true
		if t.file == nil {
			return
		}
		defer t.Close()

		reader := bufio.NewReaderSize(t.file, 64*1024)
		for {
			e, err := readEvent(reader)
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(Event{}, err)
				return
			}
			if !yield(e, nil) {
				return
			}
		}
	}
}

// Close discards the trace. It is safe to call Close more than once.
func (t *Trace) Close() error {
	t.consumed = true
	if t.file == nil {
		return nil
	}
	file := t.file
	t.file = nil
	closeErr := file.Close()
	if err := os.Remove(file.Name()); err != nil {
		return errors.Wrap(err, "cannot remove proof spool")
	}
	return closeErr
}

func readEvent(reader *bufio.Reader) (Event, error) {
	marker, err := reader.ReadByte()
	if err != nil {
		return Event{}, err
	}

	var e Event
	switch marker {
	case addMarker:
		e.Kind = Add
	case deleteMarker:
		e.Kind = Delete
	default:
		return Event{}, errors.Errorf("corrupt proof spool: unexpected marker %#x", marker)
	}

	for {
		u, err := binary.ReadUvarint(reader)
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return Event{}, errors.Wrap(err, "corrupt proof spool")
		}
		if u == 0 {
			return e, nil
		}
		if u < 2 {
			return Event{}, errors.Errorf("corrupt proof spool: literal code %d", u)
		}
		e.Clause = append(e.Clause, sat.Lit(u-2))
	}
}
