package model

import (
	"sort"
)

// Artifact is one versioned entry of an artifact registry, as declared by a
// YAML manifest. It is both the searchable projection of the entry and the
// value returned by searches.
type Artifact struct {
	ID          string  `json:"id" yaml:"id"`                                       // Slash-separated identity, e.g. "microsoft/compilers/arm-gcc"
	Version     string  `json:"version" yaml:"version"`                             // Semantic version
	Summary     string  `json:"summary,omitempty" yaml:"summary,omitempty"`         // One-line summary
	Description string  `json:"description,omitempty" yaml:"description,omitempty"` // Longer free text
	Exports     Exports `json:"exports,omitempty" yaml:"exports,omitempty"`
	Location    string  `json:"location,omitempty" yaml:"-"` // Manifest path relative to the registry root
}

// Exports lists what an artifact makes available once installed.
type Exports struct {
	Tools map[string]string `json:"tools,omitempty" yaml:"tools,omitempty"` // Tool name -> path inside the artifact
}

// ToolNames returns the exported tool names in sorted order.
func (a *Artifact) ToolNames() []string {
	if len(a.Exports.Tools) == 0 {
		return nil
	}
	names := make([]string, 0, len(a.Exports.Tools))
	for name := range a.Exports.Tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
