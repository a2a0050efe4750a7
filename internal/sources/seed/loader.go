package seed

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// templateVar matches {{NAME}} placeholders.
var templateVar = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// Loader reads a seed file from disk.
type Loader struct {
	filePath string
	lookup   func(string) (string, bool)
}

// NewLoader creates a seed loader. Placeholders are resolved from the environment.
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
		lookup:   os.LookupEnv,
	}
}

// Load reads and parses the seed file.
func (l *Loader) Load() (File, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	data = expandTemplateVariables(data, l.lookup)

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse seed yaml: %w", err)
	}

	return file, nil
}

// expandTemplateVariables replaces {{NAME}} with the quoted value of NAME,
// or "" when it is unset.
// Example: {{SITELIST_DOCS_URL}} -> "https://docs.example.com"
func expandTemplateVariables(data []byte, lookup func(string) (string, bool)) []byte {
	return templateVar.ReplaceAllFunc(data, func(m []byte) []byte {
		name := templateVar.FindSubmatch(m)[1]
		v, _ := lookup(string(name))
		return []byte(fmt.Sprintf("%q", v))
	})
}
