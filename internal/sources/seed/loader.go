package seed

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Loader reads a YAML seed file.
type Loader struct {
	filePath string
}

// NewLoader creates a new seed loader.
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads and parses the seed file.
func (l *Loader) Load() (Data, error) {
	raw, err := os.ReadFile(l.filePath)
	if err != nil {
		return Data{}, fmt.Errorf("failed to read seed file: %w", err)
	}

	raw = expandEnvReferences(raw)

	var data Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return Data{}, fmt.Errorf("failed to parse seed yaml: %w", err)
	}

	return data, nil
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvReferences replaces ${VAR} with the value of VAR (empty if unset).
// Bare $VAR is left alone so URLs containing '$' survive.
func expandEnvReferences(data []byte) []byte {
	return envRef.ReplaceAllFunc(data, func(match []byte) []byte {
		name := envRef.FindSubmatch(match)[1]
		return []byte(os.Getenv(string(name)))
	})
}
