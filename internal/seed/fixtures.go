package seed

import (
	_ "embed"
	"fmt"
	"strings"

	"inkwell/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed categories.yml
var defaultCategoriesYAML []byte

type categoryFixture struct {
	Categories []models.Category `yaml:"categories"`
}

// ParseCategories reads category names from a YAML fixture. Blank and
// duplicate names are dropped.
func ParseCategories(data []byte) ([]string, error) {
	var fx categoryFixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parse category fixture: %w", err)
	}

	seen := make(map[string]struct{}, len(fx.Categories))
	names := make([]string, 0, len(fx.Categories))
	for _, c := range fx.Categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names, nil
}

// DefaultCategories returns the built-in category names.
func DefaultCategories() []string {
	names, err := ParseCategories(defaultCategoriesYAML)
	if err != nil {
		panic(err)
	}
	return names
}
