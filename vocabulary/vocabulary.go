// Package vocabulary holds the fixed lists the catalog is organized by:
// difficulty names, feature names and the controlled tag list. Feature names
// are fixed by the loader; a vocabulary may only retitle or drop them.
package vocabulary

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/compprog-lecture-tools/problem-list/problem_repository/models"
	"gopkg.in/yaml.v3"
)

//go:embed vocabulary.yaml
var defaultVocabulary []byte

// Feature is a named feature flag together with the title of its page
type Feature struct {
	Name  string `yaml:"name"`
	Title string `yaml:"title"`
}

// Vocabulary is read-only after loading
type Vocabulary struct {
	Difficulties []string  `yaml:"difficulties"`
	Features     []Feature `yaml:"features"`
	Tags         []string  `yaml:"tags"`

	tagSet map[string]struct{}
}

// Default returns the vocabulary shipped with the binary
func Default() *Vocabulary {
	v, err := Parse(defaultVocabulary)
	if err != nil {
		panic(fmt.Sprintf("embedded vocabulary is invalid: %v", err))
	}
	return v
}

// Load reads a vocabulary file. An empty path returns the default vocabulary.
func Load(path string) (*Vocabulary, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary file %s: %w", path, err)
	}
	v, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid vocabulary file %s: %w", path, err)
	}
	return v, nil
}

// Parse decodes and checks a YAML vocabulary document
func Parse(data []byte) (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to decode vocabulary: %w", err)
	}
	if len(v.Difficulties) == 0 {
		return nil, fmt.Errorf("vocabulary lists no difficulties")
	}

	v.tagSet = make(map[string]struct{}, len(v.Tags))
	for _, tag := range v.Tags {
		if _, dup := v.tagSet[tag]; dup {
			return nil, fmt.Errorf("duplicate tag %q", tag)
		}
		v.tagSet[tag] = struct{}{}
	}
	for _, f := range v.Features {
		if f.Name == "" {
			return nil, fmt.Errorf("feature without a name")
		}
		// only features the loader detects can have a page
		if !slices.Contains(models.FeatureNames, f.Name) {
			return nil, fmt.Errorf("unknown feature %q, expected one of %s", f.Name, strings.Join(models.FeatureNames, ", "))
		}
	}
	return &v, nil
}

// KnownTag reports whether tag is part of the controlled tag list
func (v *Vocabulary) KnownTag(tag string) bool {
	_, ok := v.tagSet[tag]
	return ok
}

// DifficultyName returns the name for a 1-based difficulty ordinal
func (v *Vocabulary) DifficultyName(ordinal int) (string, bool) {
	if ordinal < 1 || ordinal > len(v.Difficulties) {
		return "", false
	}
	return v.Difficulties[ordinal-1], true
}

// Slug turns a vocabulary entry into a file name component
func Slug(name string) string {
	return strings.ReplaceAll(name, " ", "-")
}
