package output

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/limaJavier/satkit/pkg/sat"
)

// Parse reads a result printed by Write. Comment lines are ignored. An
// UNKNOWN status with a value line is a Best result.
func Parse(text string) (sat.Solution, error) {
	lines := strings.Split(text, "\n")

	statusLines := lo.Filter(lines, func(line string, _ int) bool {
		return strings.HasPrefix(line, "s ")
	})
	if len(statusLines) != 1 {
		return sat.Solution{}, errors.Errorf("expected one status line, found %d", len(statusLines))
	}

	values := lo.Reduce(
		lo.Filter(lines, func(line string, _ int) bool {
			return len(line) > 0 && line[0] == 'v'
		}),
		func(values []string, line string, _ int) []string {
			return append(values, strings.Fields(line[1:])...)
		},
		[]string{},
	)

	var solution sat.Solution
	switch strings.TrimSpace(statusLines[0]) {
	case Satisfiable:
		solution.Status = sat.Sat
	case Unsatisfiable:
		solution.Status = sat.Unsat
	case Unknown:
		solution.Status = sat.Unknown
		if len(values) > 0 {
			solution.Status = sat.Best
		}
	default:
		return sat.Solution{}, errors.Errorf("unknown status line %q", statusLines[0])
	}

	if !solution.HasAssignment() {
		if len(values) > 0 {
			return sat.Solution{}, errors.Errorf("unexpected value line for status %s", solution.Status)
		}
		return solution, nil
	}
	if len(values) == 0 || values[len(values)-1] != "0" {
		return sat.Solution{}, errors.New("value line is not terminated by 0")
	}

	literals := values[:len(values)-1]
	solution.Assignment = make([]bool, len(literals))
	for i, value := range literals {
		literal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return sat.Solution{}, errors.Wrapf(err, "invalid literal %q", value)
		}
		if literal != int64(i+1) && literal != -int64(i+1) {
			return sat.Solution{}, errors.Errorf("literal %d at position %d", literal, i+1)
		}
		solution.Assignment[i] = literal > 0
	}
	return solution, nil
}
