package seed

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const sampleSeed = `---
- Development:
    - Go:
        href: https://go.dev
        description: The Go programming language
        date: "2024-01-01"
    - Broken:
        href: not a url
- Design:
    - Figma:
        href: https://figma.com
        subCategory: tools
        logo: https://figma.com/logo.png
`

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to create test YAML file: %v", err)
	}
	return path
}

func TestLoaderLoad(t *testing.T) {
	file, err := NewLoader(writeSeed(t, sampleSeed)).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(file) != 2 {
		t.Fatalf("Load() returned %d groups, want 2", len(file))
	}
}

func TestLoaderLoadFileNotFound(t *testing.T) {
	if _, err := NewLoader("/nonexistent/path/seed.yaml").Load(); err == nil {
		t.Error("Load() with non-existent file should return error")
	}
}

func TestLoaderLoadInvalidYAML(t *testing.T) {
	if _, err := NewLoader(writeSeed(t, "- [unclosed")).Load(); err == nil {
		t.Error("Load() with invalid yaml should return error")
	}
}

func TestExpandTemplateVariables(t *testing.T) {
	env := map[string]string{"DOCS_URL": "https://docs.example.com"}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "set variable", input: "href: {{DOCS_URL}}", expected: `href: "https://docs.example.com"`},
		{name: "spaces inside braces", input: "href: {{ DOCS_URL }}", expected: `href: "https://docs.example.com"`},
		{name: "unset variable", input: "href: {{MISSING}}", expected: `href: ""`},
		{name: "no variable", input: "href: https://go.dev", expected: "href: https://go.dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(expandTemplateVariables([]byte(tt.input), lookup))
			if got != tt.expected {
				t.Errorf("expandTemplateVariables() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestLoaderExpandsEnvironment(t *testing.T) {
	t.Setenv("SITELIST_TEST_HREF", "https://env.example.com")
	path := writeSeed(t, "- Docs:\n    - Env:\n        href: {{SITELIST_TEST_HREF}}\n")

	file, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	sites, err := MapSites(file)
	if err != nil {
		t.Fatalf("MapSites() error = %v", err)
	}
	if sites[0].Link != "https://env.example.com" {
		t.Errorf("Link = %q, want expanded env value", sites[0].Link)
	}
}

func TestMapSites(t *testing.T) {
	file, err := NewLoader(writeSeed(t, sampleSeed)).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	sites, err := MapSites(file)
	if err != nil {
		t.Fatalf("MapSites() error = %v", err)
	}
	if len(sites) != 2 {
		t.Fatalf("MapSites() returned %d sites, want 2", len(sites))
	}

	goSite := sites[0]
	if goSite.Name != "Go" || goSite.Category != "Development" || goSite.Link != "https://go.dev" || goSite.Date != "2024-01-01" {
		t.Errorf("first site = %+v", goSite)
	}
	figma := sites[1]
	if figma.Category != "Design" || figma.SubCategory != "tools" || figma.Logo == "" {
		t.Errorf("second site = %+v", figma)
	}
}

func TestMapSitesEmpty(t *testing.T) {
	if _, err := MapSites(File{}); !errors.Is(err, ErrNoSites) {
		t.Errorf("MapSites(empty) error = %v, want ErrNoSites", err)
	}
}

func TestValidHref(t *testing.T) {
	tests := []struct {
		href string
		want bool
	}{
		{"https://go.dev", true},
		{"http://localhost:8080/x", true},
		{"ftp://files.example.com", false},
		{"/relative/path", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := validHref(tt.href); got != tt.want {
			t.Errorf("validHref(%q) = %v, want %v", tt.href, got, tt.want)
		}
	}
}
