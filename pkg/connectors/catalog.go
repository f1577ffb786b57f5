// pkg/connectors/catalog.go
package connectors

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Spec declares one canonical tool connector and the vendor names that map
// to it. The table is declarative and validated at load so the allowlist is
// auditable; lookup is exact case-folded match, never fuzzy.
type Spec struct {
	Canonical   string   `json:"canonical" yaml:"canonical"`
	DisplayName string   `json:"display_name" yaml:"display_name"`
	Category    string   `json:"category" yaml:"category"`
	Aliases     []string `json:"aliases" yaml:"aliases"`
}

type Catalog struct {
	specs   []Spec
	byAlias map[string]string // folded alias -> canonical
}

// NewCatalog validates the alias table: empty canonicals and an alias
// claimed by two canonicals are load errors, not runtime surprises.
func NewCatalog(specs []Spec) (*Catalog, error) {
	c := &Catalog{byAlias: map[string]string{}}
	for _, s := range specs {
		if strings.TrimSpace(s.Canonical) == "" {
			return nil, fmt.Errorf("connector spec with empty canonical name")
		}
		names := append([]string{s.Canonical}, s.Aliases...)
		for _, n := range names {
			key := fold(n)
			if key == "" {
				continue
			}
			if owner, ok := c.byAlias[key]; ok && owner != s.Canonical {
				return nil, fmt.Errorf("alias %q claimed by both %q and %q", n, owner, s.Canonical)
			}
			c.byAlias[key] = s.Canonical
		}
		c.specs = append(c.specs, s)
	}
	sort.Slice(c.specs, func(i, j int) bool { return c.specs[i].Canonical < c.specs[j].Canonical })
	return c, nil
}

// LoadCatalog walks dir for yaml/yml/json connector spec files.
func LoadCatalog(dir string) (*Catalog, error) {
	if dir == "" {
		return NewCatalog(nil)
	}
	var specs []Spec
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yaml" && ext != ".yml" && ext != ".json" {
			return nil
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var s Spec
		if ext == ".json" {
			if err := json.Unmarshal(b, &s); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		} else {
			if err := yaml.Unmarshal(b, &s); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		}
		specs = append(specs, s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewCatalog(specs)
}

// Canonical resolves a vendor tool name to its canonical connector name.
func (c *Catalog) Canonical(name string) (string, bool) {
	canon, ok := c.byAlias[fold(name)]
	return canon, ok
}

func (c *Catalog) Specs() []Spec { return c.specs }

// fold normalizes for lookup only: lower-case, trimmed. Nothing cleverer —
// the table is supposed to enumerate its aliases.
func fold(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
