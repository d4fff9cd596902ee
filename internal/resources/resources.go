// Package resources serves the built-in library of CBT techniques,
// exercises, mindfulness practices and reading.
package resources

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Difficulty grades an item.
type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

// Item is one resource card.
type Item struct {
	Title       string     `yaml:"title"       json:"title"`
	Description string     `yaml:"description" json:"description"`
	Steps       []string   `yaml:"steps"       json:"steps"`
	Duration    string     `yaml:"duration"    json:"duration"`
	Difficulty  Difficulty `yaml:"difficulty"  json:"difficulty"`
}

// Category groups items under a tab.
type Category struct {
	ID    string `yaml:"id"    json:"id"`
	Label string `yaml:"label" json:"label"`
	Items []Item `yaml:"items" json:"items"`
}

// Catalog is the whole library in display order.
type Catalog struct {
	Categories []Category `yaml:"categories" json:"categories"`
}

var (
	loadOnce sync.Once
	loaded   Catalog
	loadErr  error
)

// Load returns the embedded catalog. It is parsed once.
func Load() (Catalog, error) {
	loadOnce.Do(func() {
		loaded, loadErr = Parse(catalogYAML)
	})
	return loaded, loadErr
}

// Parse decodes and checks a catalog document.
func Parse(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse resources: %w", err)
	}
	seen := map[string]bool{}
	for _, cat := range c.Categories {
		if cat.ID == "" || seen[cat.ID] {
			return Catalog{}, fmt.Errorf("resources: missing or duplicate category id %q", cat.ID)
		}
		seen[cat.ID] = true
		for _, it := range cat.Items {
			switch it.Difficulty {
			case Beginner, Intermediate, Advanced:
			default:
				return Catalog{}, fmt.Errorf("resources: %q has unknown difficulty %q", it.Title, it.Difficulty)
			}
		}
	}
	return c, nil
}

// Category returns the category with id.
func (c Catalog) Category(id string) (Category, bool) {
	for _, cat := range c.Categories {
		if cat.ID == id {
			return cat, true
		}
	}
	return Category{}, false
}

// Markdown renders the categories (all when ids is empty) as a markdown
// document for terminal display.
func (c Catalog) Markdown(ids ...string) string {
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}

	var b strings.Builder
	b.WriteString("# Resources\n")
	for _, cat := range c.Categories {
		if len(want) > 0 && !want[cat.ID] {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n", cat.Label)
		for _, it := range cat.Items {
			fmt.Fprintf(&b, "\n### %s\n\n%s\n\n*%s · %s*\n\n", it.Title, it.Description, it.Duration, it.Difficulty)
			for i, step := range it.Steps {
				fmt.Fprintf(&b, "%d. %s\n", i+1, step)
			}
		}
	}
	return b.String()
}
