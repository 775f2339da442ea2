// Package registry loads the insurer registry file: a JSON or YAML object
// mapping insurer names to their source. Entries keep file order, which is
// also the order of their 1-based display indices.
package registry

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/policyqa/internal/model"
	"github.com/ppiankov/policyqa/internal/validate"
)

// Registry is the ordered list of known insurers
type Registry struct {
	Entries []model.InsurerEntry
}

type rawEntry struct {
	URL         string `yaml:"url"`
	SearchType  string `yaml:"search_type"`
	Boilerplate string `yaml:"boilerplate"`
}

// Load reads and parses a registry file
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	reg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

// Parse decodes registry bytes. JSON is accepted as a subset of YAML.
func Parse(data []byte) (*Registry, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, &model.ConfigError{Reason: "registry is empty"}
	}
	obj := root.Content[0]
	if obj.Kind != yaml.MappingNode {
		return nil, &model.ConfigError{Reason: fmt.Sprintf("registry must be an object of insurers (line %d)", obj.Line)}
	}

	reg := &Registry{}
	for i := 0; i+1 < len(obj.Content); i += 2 {
		keyNode, valNode := obj.Content[i], obj.Content[i+1]
		name := strings.TrimSpace(keyNode.Value)

		var raw rawEntry
		if err := valNode.Decode(&raw); err != nil {
			return nil, &model.ConfigError{Insurer: name, Reason: fmt.Sprintf("line %d: %v", valNode.Line, err)}
		}

		kind := model.SearchKindDocument
		if raw.SearchType != "" {
			k, err := model.ParseSearchKind(raw.SearchType)
			if err != nil {
				return nil, &model.ConfigError{Insurer: name, Reason: err.Error()}
			}
			kind = k
		}

		reg.Entries = append(reg.Entries, model.InsurerEntry{
			Name:        name,
			URL:         strings.TrimSpace(raw.URL),
			SearchKind:  kind,
			Boilerplate: raw.Boilerplate,
		})
	}
	if len(reg.Entries) == 0 {
		return nil, &model.ConfigError{Reason: "registry lists no insurers"}
	}
	return reg, nil
}

// Len returns the number of entries
func (r *Registry) Len() int {
	return len(r.Entries)
}

// Pick returns the entries at the given 1-based display indices, validated
// as user input
func (r *Registry) Pick(choices []string) ([]model.InsurerEntry, error) {
	indices, err := validate.ParseChoices(choices, len(r.Entries))
	if err != nil {
		return nil, err
	}
	picked := make([]model.InsurerEntry, 0, len(indices))
	for _, i := range indices {
		picked = append(picked, r.Entries[i-1])
	}
	return picked, nil
}

// ByName returns the named entries in the order given. Names match
// ignoring case and spacing.
func (r *Registry) ByName(names []string) ([]model.InsurerEntry, error) {
	index := make(map[string]int, len(r.Entries))
	for i, e := range r.Entries {
		index[e.Key()] = i
	}
	picked := make([]model.InsurerEntry, 0, len(names))
	for _, name := range names {
		i, ok := index[model.InsurerKey(name)]
		if !ok {
			return nil, &model.ConfigError{Insurer: name, Reason: "not in registry"}
		}
		picked = append(picked, r.Entries[i])
	}
	return picked, nil
}
