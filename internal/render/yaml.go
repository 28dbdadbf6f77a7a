package render

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// WriteYAML writes r as a YAML document.
func WriteYAML(w io.Writer, r *Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding report yaml: %w", err)
	}
	return enc.Close()
}
