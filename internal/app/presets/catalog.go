// Package presets holds the quick topics and quick feedback offered next to the input boxes.
package presets

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var defaultCatalog []byte

type Preset struct {
	ID    string `yaml:"id" json:"id"`
	Label string `yaml:"label" json:"label"`
	Text  string `yaml:"text" json:"text"`
}

type Catalog struct {
	Topics   []Preset `yaml:"topics" json:"topics"`
	Feedback []Preset `yaml:"feedback" json:"feedback"`
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("presets: embedded catalog is invalid: %v", err))
	}
	return c
}

// Load reads a catalog from path, or returns Default when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading presets file: %w", err)
	}
	return Parse(b)
}

// Parse decodes a YAML catalog and rejects duplicate or incomplete entries.
func Parse(b []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("decoding presets: %w", err)
	}
	if err := validate("topics", c.Topics); err != nil {
		return nil, err
	}
	if err := validate("feedback", c.Feedback); err != nil {
		return nil, err
	}
	return &c, nil
}

func validate(section string, ps []Preset) error {
	seen := make(map[string]bool, len(ps))
	for i, p := range ps {
		if strings.TrimSpace(p.ID) == "" || strings.TrimSpace(p.Text) == "" {
			return fmt.Errorf("presets: %s[%d] needs id and text", section, i)
		}
		if seen[p.ID] {
			return fmt.Errorf("presets: duplicate %s id %q", section, p.ID)
		}
		seen[p.ID] = true
	}
	return nil
}

// Topic looks up a quick topic by id.
func (c *Catalog) Topic(id string) (Preset, bool) {
	return find(c.Topics, id)
}

// FeedbackPreset looks up a quick feedback by id.
func (c *Catalog) FeedbackPreset(id string) (Preset, bool) {
	return find(c.Feedback, id)
}

func find(ps []Preset, id string) (Preset, bool) {
	for _, p := range ps {
		if p.ID == id {
			return p, true
		}
	}
	return Preset{}, false
}
