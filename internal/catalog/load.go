package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/talgya/apery/internal/formula"
)

type fileEntry struct {
	Name        string       `yaml:"name"`
	Title       string       `yaml:"title"`
	Formula     formula.Tree `yaml:"formula"`
	Reference   string       `yaml:"reference"`
	Tolerance   string       `yaml:"tolerance"`
	Uncertainty string       `yaml:"uncertainty"`
	Note        string       `yaml:"note"`
}

type file struct {
	Formulas []fileEntry `yaml:"formulas"`
}

// Parse decodes a YAML catalog document and validates it.
//
//	formulas:
//	  - name: dark_energy_density
//	    formula: {div: [{pow: [pi, 2]}, {mul: [12, {zeta: 3}]}]}
//	    reference: "0.6847"
//	    tolerance: "0.01"
func Parse(data []byte) (Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	c := make(Catalog, 0, len(f.Formulas))
	for _, fe := range f.Formulas {
		c = append(c, Entry{
			Name:        fe.Name,
			Title:       fe.Title,
			Formula:     fe.Formula.Node,
			Reference:   fe.Reference,
			Tolerance:   fe.Tolerance,
			Uncertainty: fe.Uncertainty,
			Note:        fe.Note,
		})
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}
	return c, nil
}

// Load reads and parses a YAML catalog file.
func Load(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}
