package catalog

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"citykiller/internal/engine"
)

var (
	ErrUnknownGroup = errors.New("unknown group")
	ErrDuplicateJob = errors.New("job listed in more than one group")
)

// groupFile is the YAML layout of a job table:
//
//	fallback: business
//	groups:
//	  medical: [Nurse, Surgeon]
type groupFile struct {
	Fallback string              `yaml:"fallback"`
	Groups   map[string][]string `yaml:"groups"`
}

// ParseGroupTable decodes a YAML job table. An empty fallback means business.
func ParseGroupTable(data []byte) (engine.GroupTable, error) {
	var f groupFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return engine.GroupTable{}, fmt.Errorf("groups yaml: %w", err)
	}

	fallback := engine.GroupBusiness
	if f.Fallback != "" {
		fallback = engine.Group(f.Fallback)
		if !fallback.Valid() {
			return engine.GroupTable{}, fmt.Errorf("%w: fallback %q", ErrUnknownGroup, f.Fallback)
		}
	}

	jobs := make(map[string]engine.Group)
	for name, list := range f.Groups {
		g := engine.Group(name)
		if !g.Valid() {
			return engine.GroupTable{}, fmt.Errorf("%w: %q", ErrUnknownGroup, name)
		}
		for _, job := range list {
			if prev, ok := jobs[job]; ok && prev != g {
				return engine.GroupTable{}, fmt.Errorf("%w: %q in %s and %s", ErrDuplicateJob, job, prev, g)
			}
			jobs[job] = g
		}
	}
	return engine.NewGroupTable(jobs, fallback), nil
}

// LoadGroupTable reads a YAML job table from disk.
func LoadGroupTable(path string) (engine.GroupTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return engine.GroupTable{}, err
	}
	return ParseGroupTable(data)
}

// Groups loads the table at path, or the built-in table when path is empty.
func Groups(path string) (engine.GroupTable, error) {
	if path == "" {
		return engine.DefaultGroupTable(), nil
	}
	return LoadGroupTable(path)
}
