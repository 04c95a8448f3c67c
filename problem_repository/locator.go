// Package problem_repository discovers problem directories and loads them
// into models.Problem records.
package problem_repository

import (
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/compprog-lecture-tools/problem-list/problem_repository/models"
	"github.com/compprog-lecture-tools/problem-list/utils"
)

// LocatorOptions configures which directories count as courses, contests and problems
type LocatorOptions struct {
	StatementFile    string
	ExcludedCourses  []string
	ExcludedContests []string
}

// DefaultLocatorOptions matches the layout of the lecture problem repositories
var DefaultLocatorOptions = LocatorOptions{
	StatementFile:    "problem.tex",
	ExcludedCourses:  []string{"tools"},
	ExcludedContests: []string{"templates"},
}

// Locator walks course -> contest -> problem directories below a repository root
type Locator struct {
	root    string
	options LocatorOptions
}

// NewLocator creates a locator for the repository at root
func NewLocator(root string, options LocatorOptions) (*Locator, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve repository root %s: %w", root, err)
	}
	if options.StatementFile == "" {
		options.StatementFile = DefaultLocatorOptions.StatementFile
	}
	return &Locator{root: absRoot, options: options}, nil
}

// Root returns the absolute repository root
func (l *Locator) Root() string {
	return l.root
}

// Problems lazily yields every problem directory. Directories are visited in
// file system order. The first read error is yielded and ends the sequence.
func (l *Locator) Problems() iter.Seq2[models.Location, error] {
	return func(yield func(models.Location, error) bool) {
		courses, err := utils.ListSubdirs(l.root, l.options.ExcludedCourses)
		if err != nil {
			yield(models.Location{}, fmt.Errorf("failed to list courses in %s: %w", l.root, err))
			return
		}

		for _, course := range courses {
			courseDir := filepath.Join(l.root, course)
			contests, err := utils.ListSubdirs(courseDir, l.options.ExcludedContests)
			if err != nil {
				yield(models.Location{}, fmt.Errorf("failed to list contests in %s: %w", courseDir, err))
				return
			}

			for _, contest := range contests {
				contestDir := filepath.Join(courseDir, contest)
				candidates, err := utils.ListSubdirs(contestDir, nil)
				if err != nil {
					yield(models.Location{}, fmt.Errorf("failed to list problems in %s: %w", contestDir, err))
					return
				}

				for _, name := range candidates {
					problemDir := filepath.Join(contestDir, name)
					if !l.isProblemDir(problemDir) {
						continue
					}
					location := models.Location{
						Path: models.Path{Course: course, Contest: contest, Name: name},
						Dir:  problemDir,
					}
					if !yield(location, nil) {
						return
					}
				}
			}
		}
	}
}

// Locate resolves a single problem by path without walking the repository
func (l *Locator) Locate(path models.Path) (models.Location, error) {
	for _, component := range []string{path.Course, path.Contest, path.Name} {
		if component == "" || component == "." || component == ".." || strings.ContainsAny(component, `/\`) {
			return models.Location{}, fmt.Errorf("invalid problem path %q", path.String())
		}
	}
	dir := filepath.Join(l.root, path.Course, path.Contest, path.Name)
	if !l.isProblemDir(dir) {
		return models.Location{}, fmt.Errorf("%s is not a problem: %s not found", dir, l.options.StatementFile)
	}
	return models.Location{Path: path, Dir: dir}, nil
}

func (l *Locator) isProblemDir(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, l.options.StatementFile))
	return err == nil && info.Mode().IsRegular()
}

// FindProblems collects all problem locations below root
func FindProblems(root string, options LocatorOptions) ([]models.Location, error) {
	locator, err := NewLocator(root, options)
	if err != nil {
		return nil, err
	}

	var locations []models.Location
	for location, err := range locator.Problems() {
		if err != nil {
			return nil, err
		}
		locations = append(locations, location)
	}
	return locations, nil
}
