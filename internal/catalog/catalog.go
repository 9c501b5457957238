// Package catalog holds named formulas with the reference values they are
// compared against, and runs them through the evaluator.
package catalog

import (
	"fmt"
	"math/big"

	"github.com/talgya/apery/internal/formula"
)

// Entry is one formula and, optionally, the observed value it predicts.
// Numbers are kept as exact decimal text so an entry carries no precision of
// its own; they are rounded when a run builds its context.
type Entry struct {
	Name        string
	Title       string
	Formula     formula.Node
	Reference   string // observed value; empty when the entry is only evaluated
	Tolerance   string // bound on |relative error|; required with Reference
	Uncertainty string // quoted one-sigma uncertainty of Reference, optional
	Note        string
}

// Compared reports whether the entry has a reference value.
func (e Entry) Compared() bool { return e.Reference != "" }

// Catalog is an ordered list of entries. An entry may reference, by name,
// any entry that precedes it.
type Catalog []Entry

// Validate checks names, formulas, numeric fields and reference order.
func (c Catalog) Validate() error {
	seen := make(map[string]bool, len(c))
	for i, e := range c {
		if e.Name == "" {
			return fmt.Errorf("entry %d: missing name", i)
		}
		if seen[e.Name] {
			return fmt.Errorf("entry %q: duplicate name", e.Name)
		}
		if e.Formula == nil {
			return fmt.Errorf("entry %q: missing formula", e.Name)
		}
		for _, ref := range Refs(e.Formula) {
			if !seen[ref] {
				return fmt.Errorf("entry %q: references %q, which is not defined earlier", e.Name, ref)
			}
		}
		if err := validateNumbers(e); err != nil {
			return fmt.Errorf("entry %q: %w", e.Name, err)
		}
		seen[e.Name] = true
	}
	return nil
}

func validateNumbers(e Entry) error {
	if !e.Compared() {
		if e.Tolerance != "" || e.Uncertainty != "" {
			return fmt.Errorf("tolerance and uncertainty need a reference value")
		}
		return nil
	}
	if _, ok := new(big.Rat).SetString(e.Reference); !ok {
		return fmt.Errorf("reference %q is not a number", e.Reference)
	}
	if e.Tolerance == "" {
		return fmt.Errorf("reference given without tolerance")
	}
	if _, ok := new(big.Rat).SetString(e.Tolerance); !ok {
		return fmt.Errorf("tolerance %q is not a number", e.Tolerance)
	}
	if e.Uncertainty != "" {
		if _, ok := new(big.Rat).SetString(e.Uncertainty); !ok {
			return fmt.Errorf("uncertainty %q is not a number", e.Uncertainty)
		}
	}
	return nil
}

// Lookup returns the entry with the given name.
func (c Catalog) Lookup(name string) (Entry, bool) {
	for _, e := range c {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Refs returns the distinct names referenced by n, in first-use order.
func Refs(n formula.Node) []string {
	var out []string
	seen := map[string]bool{}
	var walk func(formula.Node)
	walk = func(n formula.Node) {
		switch v := n.(type) {
		case formula.Ref:
			if !seen[v.Name] {
				seen[v.Name] = true
				out = append(out, v.Name)
			}
		case formula.Unary:
			walk(v.X)
		case formula.Binary:
			walk(v.X)
			walk(v.Y)
		case formula.Root:
			walk(v.A)
			walk(v.B)
		}
	}
	walk(n)
	return out
}

// levels groups entry indexes so every entry comes after the entries it
// references. Entries within a level are independent of each other.
func (c Catalog) levels() [][]int {
	index := make(map[string]int, len(c))
	depth := make([]int, len(c))
	var out [][]int
	for i, e := range c {
		d := 0
		for _, ref := range Refs(e.Formula) {
			if j, ok := index[ref]; ok && depth[j]+1 > d {
				d = depth[j] + 1
			}
		}
		depth[i] = d
		index[e.Name] = i
		for len(out) <= d {
			out = append(out, nil)
		}
		out[d] = append(out[d], i)
	}
	return out
}
