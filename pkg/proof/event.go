// Package proof records the clause additions and deletions of a complete
// search and writes them out as a DRAT refutation certificate.
package proof

import "github.com/limaJavier/satkit/pkg/sat"

// Kind distinguishes clause additions from deletions.
type Kind uint8

const (
	Add Kind = iota
	Delete
)

func (k Kind) String() string {
	if k == Delete {
		return "delete"
	}
	return "add"
}

// Event is one step of a proof trace.
type Event struct {
	Kind   Kind
	Clause sat.Clause
}

func AddEvent(clause sat.Clause) Event {
	return Event{Kind: Add, Clause: clause}
}

func DeleteEvent(clause sat.Clause) Event {
	return Event{Kind: Delete, Clause: clause}
}

// String renders the event as a DRAT line without the trailing newline.
func (e Event) String() string {
	return string(appendLine(nil, e))
}
