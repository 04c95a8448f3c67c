package page_renderer

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/compprog-lecture-tools/problem-list/catalog_indexer"
	"github.com/compprog-lecture-tools/problem-list/problem_repository/models"
	"github.com/compprog-lecture-tools/problem-list/vocabulary"
)

// Site holds the values shared by every generated page
type Site struct {
	Vocabulary *vocabulary.Vocabulary
	RepoURL    string
	Branch     string
	GitHash    string
	BuildTime  time.Time
}

// SourceURL links to the problem directory in the repository browser. The
// tree/<branch>/<path> layout is understood by both GitHub and GitLab.
func (s Site) SourceURL(p models.Path) string {
	segments := []string{url.PathEscape(s.Branch), url.PathEscape(p.Course), url.PathEscape(p.Contest), url.PathEscape(p.Name)}
	return strings.TrimSuffix(s.RepoURL, "/") + "/tree/" + strings.Join(segments, "/")
}

func (s Site) CommitURL() string {
	return strings.TrimSuffix(s.RepoURL, "/") + "/commit/" + s.GitHash
}

func (s Site) BuildTimeString() string {
	return s.BuildTime.Format(time.RFC3339)
}

// DifficultyName falls back to the ordinal for values outside the vocabulary
func (s Site) DifficultyName(ordinal int) string {
	if name, ok := s.Vocabulary.DifficultyName(ordinal); ok {
		return name
	}
	return fmt.Sprintf("difficulty %d", ordinal)
}

// Page is the data every template receives. Root is the relative prefix from
// the page back to the output root.
type Page struct {
	Site            Site
	Root            string
	Title           string
	Catalog         *catalog_indexer.Catalog
	Listing         catalog_indexer.Listing
	IncompleteCount int
	Difficulty      *catalog_indexer.DifficultyView
	Feature         *catalog_indexer.FeatureView
	Tag             *catalog_indexer.TagView
}

// PDFPath is the link from the page to one of the problem's PDFs
func (p Page) PDFPath(problem *models.Problem, file string) string {
	return p.Root + strings.Join([]string{"pdfs", problem.Course, problem.Contest, problem.Name, file}, "/")
}

// IndexAnchor links to the problem's entry on the index page
func (p Page) IndexAnchor(path models.Path) string {
	problem := models.Problem{Location: models.Location{Path: path}}
	return p.Root + "index.html#" + problem.HTMLID()
}
