package catalog_indexer

import "github.com/compprog-lecture-tools/problem-list/problem_repository/models"

// Filter returns the problems matching keep, in input order. The input slice
// is never modified.
func Filter(problems []*models.Problem, keep func(*models.Problem) bool) []*models.Problem {
	filtered := make([]*models.Problem, 0)
	for _, problem := range problems {
		if keep(problem) {
			filtered = append(filtered, problem)
		}
	}
	return filtered
}

func ByDifficulty(problems []*models.Problem, ordinal int) []*models.Problem {
	return Filter(problems, func(p *models.Problem) bool {
		return p.Metadata != nil && p.Metadata.Difficulty == ordinal
	})
}

func ByFeature(problems []*models.Problem, feature string) []*models.Problem {
	return Filter(problems, func(p *models.Problem) bool {
		return p.HasFeature(feature)
	})
}

func ByTag(problems []*models.Problem, tag string) []*models.Problem {
	return Filter(problems, func(p *models.Problem) bool {
		return p.Metadata != nil && p.Metadata.HasTag(tag)
	})
}

// MissingMetadata lists problems without a problem.json
func MissingMetadata(problems []*models.Problem) []*models.Problem {
	return Filter(problems, func(p *models.Problem) bool {
		return p.Metadata == nil
	})
}

// MissingDescription lists problems that have metadata but no description
func MissingDescription(problems []*models.Problem) []*models.Problem {
	return Filter(problems, func(p *models.Problem) bool {
		return p.Metadata != nil && p.Metadata.Description == ""
	})
}

func MissingStatement(problems []*models.Problem) []*models.Problem {
	return Filter(problems, func(p *models.Problem) bool {
		return !p.Status.StatementBuilt
	})
}

func MissingNotes(problems []*models.Problem) []*models.Problem {
	return Filter(problems, func(p *models.Problem) bool {
		return !p.Status.NotesBuilt
	})
}

// IncompleteCount counts the problems that are not Complete
func IncompleteCount(problems []*models.Problem) int {
	count := 0
	for _, problem := range problems {
		if !problem.Complete() {
			count++
		}
	}
	return count
}
