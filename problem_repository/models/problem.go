package models

import (
	"fmt"
	"strings"
)

// Path identifies a problem by its position in the repository tree
type Path struct {
	Course  string `json:"course"`
	Contest string `json:"contest"`
	Name    string `json:"name"`
}

func (p Path) String() string {
	return p.Course + "/" + p.Contest + "/" + p.Name
}

// ParsePath is the inverse of Path.String
func ParsePath(s string) (Path, error) {
	parts := strings.Split(strings.Trim(s, "/"), "/")
	if len(parts) != 3 {
		return Path{}, fmt.Errorf("problem path %q must have the form course/contest/problem", s)
	}
	return Path{Course: parts[0], Contest: parts[1], Name: parts[2]}, nil
}

// Location pairs a problem path with the directory it was found in
type Location struct {
	Path
	Dir string `json:"dir"`
}

// Metadata holds the contents of a problem.json file
type Metadata struct {
	Difficulty  int        `json:"difficulty"`
	Tags        []string   `json:"tags"`
	Description string     `json:"description,omitempty"`
	BasedOn     Provenance `json:"-"`
}

// HasTag reports whether the problem is tagged with tag
func (m *Metadata) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Provenance kinds, as written in the based_on.type field
const (
	ProvenanceCodeforces = "codeforces"
	ProvenanceDerived    = "old-problem"
	ProvenanceOther      = "other"
)

// Provenance describes where a problem comes from. The concrete types are
// CodeforcesProvenance, DerivedProvenance and OtherProvenance.
type Provenance interface {
	Kind() string
	isProvenance()
}

// CodeforcesProvenance points at a codeforces problem, e.g. contest 988 problem C2
type CodeforcesProvenance struct {
	Contest   string
	ProblemID string
}

func (CodeforcesProvenance) Kind() string { return ProvenanceCodeforces }
func (CodeforcesProvenance) isProvenance() {}

// DerivedProvenance points at an older problem of one of the courses
type DerivedProvenance struct {
	Course  string
	Unit    string
	Problem string
}

func (DerivedProvenance) Kind() string { return ProvenanceDerived }
func (DerivedProvenance) isProvenance() {}

// OtherProvenance is a free-form note displayed as-is
type OtherProvenance struct {
	Note string
}

func (OtherProvenance) Kind() string { return ProvenanceOther }
func (OtherProvenance) isProvenance() {}

// Features are derived from the files in the executables directory
type Features struct {
	Validator         bool `json:"validator"`
	Interactor        bool `json:"interactor"`
	AnswerGenerator   bool `json:"answer_generator"`
	ReferenceSolution bool `json:"reference_solution"`
}

// Feature names used by the vocabulary and the generated pages
const (
	FeatureValidator         = "validator"
	FeatureAnswerGenerator   = "answer-generator"
	FeatureInteractor        = "interactor"
	FeatureReferenceSolution = "python"
)

// FeatureNames lists every feature HasFeature can detect
var FeatureNames = []string{FeatureValidator, FeatureAnswerGenerator, FeatureInteractor, FeatureReferenceSolution}

// BuildStatus is filled in by the build orchestrator
type BuildStatus struct {
	StatementBuilt bool `json:"statement_built"`
	NotesBuilt     bool `json:"notes_built"`
}

// Problem is the normalized record of a single problem directory
type Problem struct {
	Location
	Metadata *Metadata   `json:"metadata,omitempty"`
	Features Features    `json:"features"`
	Status   BuildStatus `json:"status"`
}

// Complete reports whether metadata, description, statement and notes are all there
func (p *Problem) Complete() bool {
	return p.Metadata != nil &&
		p.Metadata.Description != "" &&
		p.Status.StatementBuilt &&
		p.Status.NotesBuilt
}

// HasFeature looks up a feature flag by its vocabulary name
func (p *Problem) HasFeature(name string) bool {
	switch name {
	case FeatureValidator:
		return p.Features.Validator
	case FeatureAnswerGenerator:
		return p.Features.AnswerGenerator
	case FeatureInteractor:
		return p.Features.Interactor
	case FeatureReferenceSolution:
		return p.Features.ReferenceSolution
	default:
		return false
	}
}

// HTMLID is the anchor used for the problem on the generated pages
func (p *Problem) HTMLID() string {
	id := p.Course + "_" + p.Contest + "_" + p.Name
	return strings.ReplaceAll(id, " ", "-")
}
