package rules

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/starford/fitch/internal/sentence"
)

// Catalog is an immutable rule dispatch table keyed by every accepted
// spelling of each rule.
type Catalog struct {
	defs   []*Definition
	byName map[string]*Definition
	byID   map[ID]*Definition
}

// NewCatalog validates defs and builds a catalog. Every conclusion
// metavariable must be bound by a premise or declared open, and names must
// be unique across the catalog.
func NewCatalog(defs []*Definition) (*Catalog, error) {
	c := &Catalog{
		byName: make(map[string]*Definition),
		byID:   make(map[ID]*Definition),
	}
	var errs []error
	for _, d := range defs {
		if err := validate(d); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := c.byID[d.ID]; dup {
			errs = append(errs, fmt.Errorf("rules: duplicate rule %s", d.ID))
			continue
		}
		c.byID[d.ID] = d
		for _, name := range d.names() {
			if other, dup := c.byName[name]; dup && other != d {
				errs = append(errs, fmt.Errorf("rules: name %q used by %s and %s", name, other.ID, d.ID))
				continue
			}
			c.byName[name] = d
		}
		c.defs = append(c.defs, d)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return c, nil
}

func (d *Definition) names() []string {
	names := append([]string{d.Symbol, string(d.ID)}, d.Aliases...)
	slices.Sort(names)
	return slices.Compact(names)
}

func validate(d *Definition) error {
	if d.ID == "" || d.Symbol == "" || d.Ruleset == "" {
		return fmt.Errorf("rules: definition %q is missing id, symbol or ruleset", d.ID)
	}
	if d.Ruleset != Core && len(d.Forms) == 0 {
		return fmt.Errorf("rules: %s has no forms", d.ID)
	}
	for i, f := range d.Forms {
		if f.Conclusion == nil {
			return fmt.Errorf("rules: %s form %d has no conclusion", d.ID, i)
		}
		if d.Unordered && len(f.Premises) > 3 {
			return fmt.Errorf("rules: %s form %d: unordered rules take at most 3 premises", d.ID, i)
		}
		bound := map[string]struct{}{}
		for _, name := range f.Open {
			bound[name] = struct{}{}
		}
		for _, p := range f.Premises {
			for _, pat := range []*sentence.Sentence{p.Line, p.Assumption, p.Result} {
				if pat == nil {
					continue
				}
				for _, m := range sentence.Metas(pat) {
					bound[m] = struct{}{}
				}
			}
			if p.Subproof() && p.Result == nil {
				return fmt.Errorf("rules: %s form %d: subproof premise has no result", d.ID, i)
			}
			if p.Subproof() && !p.Strict && p.Assumption == nil {
				return fmt.Errorf("rules: %s form %d: subproof premise has no assumption", d.ID, i)
			}
		}
		for _, m := range sentence.Metas(f.Conclusion) {
			if _, ok := bound[m]; !ok {
				return fmt.Errorf("rules: %s form %d: conclusion metavariable $%s is unbound", d.ID, i, m)
			}
		}
	}
	return nil
}

// Lookup resolves a rule by symbol, alias or ID.
func (c *Catalog) Lookup(name string) (*Definition, bool) {
	d, ok := c.byName[name]
	return d, ok
}

// Get returns the definition for id.
func (c *Catalog) Get(id ID) (*Definition, bool) {
	d, ok := c.byID[id]
	return d, ok
}

// Definitions returns all definitions in catalog order.
func (c *Catalog) Definitions() []*Definition {
	return slices.Clone(c.defs)
}

// InRuleset returns the definitions belonging to rs.
func (c *Catalog) InRuleset(rs Ruleset) []*Definition {
	var out []*Definition
	for _, d := range c.defs {
		if d.Ruleset == rs {
			out = append(out, d)
		}
	}
	return out
}

// Default returns the built-in catalog.
var Default = sync.OnceValue(func() *Catalog {
	c, err := NewCatalog(builtin())
	if err != nil {
		panic(err)
	}
	return c
})
