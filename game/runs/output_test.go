package runs

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/pacmanplanner/game/search"
	"github.com/wricardo/mcp-training/pacmanplanner/game/service"
	"gopkg.in/yaml.v3"
)

func TestWriteSolution_Text(t *testing.T) {
	run := createTestRun(t, "text")

	var buf bytes.Buffer
	if err := WriteSolution(&buf, run, FormatText); err != nil {
		t.Fatalf("Failed to write solution: %v", err)
	}

	want := "Total cost: 4\nActions:\nEast\nEast\nEast\nEast\n"
	if buf.String() != want {
		t.Errorf("Unexpected text output:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestWriteSolution_Unsolved(t *testing.T) {
	run := createTestRun(t, "unsolved")
	run.Result = &search.Result{Status: search.StatusUnsolvable}

	var buf bytes.Buffer
	if err := WriteSolution(&buf, run, ""); err != nil {
		t.Fatalf("Failed to write solution: %v", err)
	}
	if !strings.Contains(buf.String(), "No solution found! (unsolvable)") {
		t.Errorf("Unexpected output %q", buf.String())
	}
}

func TestWriteSolution_Structured(t *testing.T) {
	run := createTestRun(t, "structured")

	tests := []struct {
		format    string
		unmarshal func([]byte, any) error
	}{
		{FormatJSON, json.Unmarshal},
		{FormatYAML, yaml.Unmarshal},
		{"yml", yaml.Unmarshal},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteSolution(&buf, run, tt.format); err != nil {
				t.Fatalf("Failed to write solution: %v", err)
			}
			var got Solution
			if err := tt.unmarshal(buf.Bytes(), &got); err != nil {
				t.Fatalf("Output does not parse: %v\n%s", err, buf.String())
			}
			if got.Cost != 4 || got.Status != "solved" || got.Layout != "corridor" {
				t.Errorf("Unexpected solution %+v", got)
			}
			if len(got.Actions) != 4 || got.Actions[0] != search.East {
				t.Errorf("Unexpected actions %v", got.Actions)
			}
		})
	}
}

func TestWriteSolution_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := WriteSolution(&buf, &service.Run{}, "xml")
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Expected ErrUnknownFormat, got %v", err)
	}
}
