package catalog_indexer

import (
	"github.com/compprog-lecture-tools/problem-list/problem_repository/models"
	"github.com/compprog-lecture-tools/problem-list/vocabulary"
)

// Listing is a filtered problem list together with its grouped form
type Listing struct {
	Courses  []CourseGroup
	Problems []*models.Problem
}

// NewListing groups problems for display
func NewListing(problems []*models.Problem) Listing {
	return Listing{Courses: Group(problems), Problems: problems}
}

// Len is the number of problems in the listing
func (l Listing) Len() int {
	return len(l.Problems)
}

// DifficultyView is the listing of one difficulty
type DifficultyView struct {
	Ordinal int
	Name    string
	Slug    string
	Listing Listing
}

// FeatureView is the listing of one feature flag
type FeatureView struct {
	Name    string
	Title   string
	Listing Listing
}

// TagView is the listing of one tag
type TagView struct {
	Name    string
	Listing Listing
}

// IncompleteViews holds one listing per reason a problem can be incomplete
type IncompleteViews struct {
	Info        Listing
	Description Listing
	Statement   Listing
	Notes       Listing
}

// Catalog contains every listing of the generated site
type Catalog struct {
	Index           Listing
	IncompleteCount int
	Difficulties    []DifficultyView
	Features        []FeatureView
	Tags            []TagView
	Incomplete      IncompleteViews
}

// BuildCatalog projects problems onto every axis of the vocabulary. Problems
// must have their build status set.
func BuildCatalog(problems []*models.Problem, vocab *vocabulary.Vocabulary) *Catalog {
	catalog := &Catalog{
		Index:           NewListing(problems),
		IncompleteCount: IncompleteCount(problems),
		Incomplete: IncompleteViews{
			Info:        NewListing(MissingMetadata(problems)),
			Description: NewListing(MissingDescription(problems)),
			Statement:   NewListing(MissingStatement(problems)),
			Notes:       NewListing(MissingNotes(problems)),
		},
	}

	for i, name := range vocab.Difficulties {
		catalog.Difficulties = append(catalog.Difficulties, DifficultyView{
			Ordinal: i + 1,
			Name:    name,
			Slug:    vocabulary.Slug(name),
			Listing: NewListing(ByDifficulty(problems, i+1)),
		})
	}
	for _, feature := range vocab.Features {
		catalog.Features = append(catalog.Features, FeatureView{
			Name:    feature.Name,
			Title:   feature.Title,
			Listing: NewListing(ByFeature(problems, feature.Name)),
		})
	}
	for _, tag := range vocab.Tags {
		catalog.Tags = append(catalog.Tags, TagView{
			Name:    tag,
			Listing: NewListing(ByTag(problems, tag)),
		})
	}
	return catalog
}
