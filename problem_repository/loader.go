package problem_repository

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/compprog-lecture-tools/problem-list/problem_repository/models"
	"github.com/compprog-lecture-tools/problem-list/vocabulary"
	"github.com/pterm/pterm"
)

// LoaderOptions configures the per-problem file names the loader looks at
type LoaderOptions struct {
	MetadataFile      string
	ExecutablesDir    string
	SolutionExtension string
}

var DefaultLoaderOptions = LoaderOptions{
	MetadataFile:      "problem.json",
	ExecutablesDir:    "executables",
	SolutionExtension: ".py",
}

// Loader turns problem locations into problem records
type Loader struct {
	options    LoaderOptions
	vocabulary *vocabulary.Vocabulary
	logger     *pterm.Logger
}

// NewLoader creates a loader. Unknown tags are reported through logger.
func NewLoader(options LoaderOptions, vocab *vocabulary.Vocabulary, logger *pterm.Logger) *Loader {
	if options.MetadataFile == "" {
		options.MetadataFile = DefaultLoaderOptions.MetadataFile
	}
	if options.ExecutablesDir == "" {
		options.ExecutablesDir = DefaultLoaderOptions.ExecutablesDir
	}
	if options.SolutionExtension == "" {
		options.SolutionExtension = DefaultLoaderOptions.SolutionExtension
	}
	if vocab == nil {
		vocab = vocabulary.Default()
	}
	return &Loader{options: options, vocabulary: vocab, logger: logger}
}

// Load reads the metadata and detects the features of a single problem.
// Build status is left unset.
func (l *Loader) Load(location models.Location) (*models.Problem, error) {
	metadata, err := readMetadata(filepath.Join(location.Dir, l.options.MetadataFile))
	if err != nil {
		return nil, err
	}
	if metadata != nil && l.logger != nil {
		for _, tag := range metadata.Tags {
			if !l.vocabulary.KnownTag(tag) {
				l.logger.Warn("unknown tag", l.logger.Args("problem", location.Path.String(), "tag", tag))
			}
		}
	}

	features, err := l.detectFeatures(filepath.Join(location.Dir, l.options.ExecutablesDir))
	if err != nil {
		return nil, fmt.Errorf("failed to scan executables of %s: %w", location.Path, err)
	}

	return &models.Problem{
		Location: location,
		Metadata: metadata,
		Features: features,
	}, nil
}

// LoadAll loads every location, stopping at the first error
func (l *Loader) LoadAll(locations []models.Location) ([]*models.Problem, error) {
	problems := make([]*models.Problem, 0, len(locations))
	for _, location := range locations {
		problem, err := l.Load(location)
		if err != nil {
			return nil, err
		}
		problems = append(problems, problem)
	}
	return problems, nil
}

func (l *Loader) detectFeatures(executablesDir string) (models.Features, error) {
	var features models.Features

	entries, err := os.ReadDir(executablesDir)
	if errors.Is(err, os.ErrNotExist) {
		return features, nil
	}
	if err != nil {
		return features, err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		switch {
		case strings.HasPrefix(name, "validator."):
			features.Validator = true
		case strings.HasPrefix(name, "interactor."):
			features.Interactor = true
		case strings.HasPrefix(name, "answer-generator."):
			features.AnswerGenerator = true
		case l.isReferenceSolution(name):
			features.ReferenceSolution = true
		}
	}
	return features, nil
}

// isReferenceSolution skips solutions that are meant to fail (.wa) or time out (.tle)
func (l *Loader) isReferenceSolution(name string) bool {
	ext := l.options.SolutionExtension
	if !strings.HasPrefix(name, "solution") || !strings.HasSuffix(name, ext) {
		return false
	}
	return !strings.HasSuffix(name, ".wa"+ext) && !strings.HasSuffix(name, ".tle"+ext)
}
