package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// IndexFile is the optional catalogue index read from the layout directory
const IndexFile = "layouts.yaml"

// Index annotates layouts with a description and a preferred heuristic.
//
//	default: tinySearch
//	layouts:
//	  tinySearch:
//	    description: Small warm-up maze
//	    heuristic: mst
type Index struct {
	Default string                `yaml:"default"`
	Layouts map[string]IndexEntry `yaml:"layouts"`
}

// IndexEntry is the metadata of one layout
type IndexEntry struct {
	Description string `yaml:"description"`
	Heuristic   string `yaml:"heuristic"`
}

// LoadIndex reads the index at path. A missing file yields an empty index.
func LoadIndex(path string) (*Index, error) {
	index := &Index{Layouts: map[string]IndexEntry{}}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return index, nil
		}
		return nil, fmt.Errorf("failed to read layout index: %w", err)
	}

	if err := yaml.Unmarshal(data, index); err != nil {
		return nil, fmt.Errorf("%w: layout index %s: %v", ErrInvalidLayout, path, err)
	}
	if index.Layouts == nil {
		index.Layouts = map[string]IndexEntry{}
	}
	return index, nil
}
