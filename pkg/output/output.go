// Package output renders solutions in the competition line protocol: one
// status line, then a value line when an assignment is available.
package output

import (
	"bufio"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/limaJavier/satkit/pkg/sat"
)

const (
	Satisfiable   = "s SATISFIABLE"
	Unsatisfiable = "s UNSATISFIABLE"
	Unknown       = "s UNKNOWN"
)

// StatusLine returns the status line of sol. Best assignments are not
// proven models and therefore report UNKNOWN.
func StatusLine(sol sat.Solution) string {
	switch sol.Status {
	case sat.Sat:
		return Satisfiable
	case sat.Unsat:
		return Unsatisfiable
	default:
		return Unknown
	}
}

// Write renders sol to w.
func Write(w io.Writer, sol sat.Solution) error {
	out := bufio.NewWriter(w)
	out.WriteString(StatusLine(sol))
	out.WriteByte('\n')
	if sol.HasAssignment() {
		out.Write(AppendValueLine(nil, sol.Assignment))
		out.WriteByte('\n')
	}
	return errors.Wrap(out.Flush(), "cannot write result")
}

// AppendValueLine appends "v", the signed literal of every position and a
// terminating 0.
func AppendValueLine(line []byte, assignment []bool) []byte {
	line = append(line, 'v')
	for i, value := range assignment {
		line = append(line, ' ')
		if !value {
			line = append(line, '-')
		}
		line = strconv.AppendInt(line, int64(i+1), 10)
	}
	return append(line, " 0"...)
}
