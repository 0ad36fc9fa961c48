package runs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/wricardo/mcp-training/pacmanplanner/game/search"
	"github.com/wricardo/mcp-training/pacmanplanner/game/service"
	"gopkg.in/yaml.v3"
)

// Solution output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var ErrUnknownFormat = errors.New("unknown output format")

// Solution is the exported form of a run
type Solution struct {
	RunID       string          `json:"run_id" yaml:"run_id"`
	Layout      string          `json:"layout" yaml:"layout"`
	Heuristic   string          `json:"heuristic" yaml:"heuristic"`
	Status      string          `json:"status" yaml:"status"`
	Cost        int             `json:"cost" yaml:"cost"`
	Actions     []search.Action `json:"actions" yaml:"actions"`
	Expanded    int             `json:"expanded" yaml:"expanded"`
	Generated   int             `json:"generated" yaml:"generated"`
	MaxFrontier int             `json:"max_frontier" yaml:"max_frontier"`
	Elapsed     string          `json:"elapsed" yaml:"elapsed"`
}

// ParseFormat normalises a format name; "yml" and "txt" are accepted aliases
func ParseFormat(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", FormatText, "txt":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// NewSolution builds the exported form of run
func NewSolution(run *service.Run) *Solution {
	s := &Solution{
		RunID:     run.ID,
		Layout:    run.LayoutID,
		Heuristic: run.Heuristic,
		Actions:   []search.Action{},
	}
	if r := run.Result; r != nil {
		s.Status = r.Status.String()
		s.Cost = r.Cost
		s.Expanded = r.Expanded
		s.Generated = r.Generated
		s.MaxFrontier = r.MaxFrontier
		s.Elapsed = r.Elapsed.String()
		if r.Actions != nil {
			s.Actions = r.Actions
		}
	}
	return s
}

// WriteSolution writes run to w. The text format is the plain
// "Total cost" header followed by one action per line.
func WriteSolution(w io.Writer, run *service.Run, format string) error {
	format, err := ParseFormat(format)
	if err != nil {
		return err
	}
	solution := NewSolution(run)

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(solution)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(solution); err != nil {
			return err
		}
		return enc.Close()
	}

	if !run.Result.Solved() {
		_, err := fmt.Fprintf(w, "No solution found! (%s)\n", solution.Status)
		return err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Total cost: %d\n", solution.Cost)
	b.WriteString("Actions:\n")
	for _, a := range solution.Actions {
		b.WriteString(string(a))
		b.WriteByte('\n')
	}
	_, err = io.WriteString(w, b.String())
	return err
}
