package page_renderer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/compprog-lecture-tools/problem-list/catalog_indexer"
	"github.com/compprog-lecture-tools/problem-list/page_renderer/contracts"
)

type pageJob struct {
	template string
	target   string
	page     Page
}

// WritePages renders every page of the catalog below outDir and returns the
// written files relative to outDir.
func WritePages(renderer contracts.IRenderer, catalog *catalog_indexer.Catalog, site Site, outDir string) ([]string, error) {
	var written []string
	for _, job := range planPages(catalog, site) {
		content, err := renderer.Render(job.template, job.page)
		if err != nil {
			return written, err
		}

		target := filepath.Join(outDir, filepath.FromSlash(job.target))
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return written, fmt.Errorf("failed to create directory for %s: %w", target, err)
		}
		if err := os.WriteFile(target, content, 0644); err != nil {
			return written, fmt.Errorf("failed to write page %s: %w", target, err)
		}
		written = append(written, job.target)
	}
	return written, nil
}

func planPages(catalog *catalog_indexer.Catalog, site Site) []pageJob {
	root := func(title string) Page {
		return Page{Site: site, Title: title, Catalog: catalog}
	}
	nested := func(title string, listing catalog_indexer.Listing) Page {
		page := root(title)
		page.Root = "../"
		page.Listing = listing
		return page
	}

	index := root("All problems")
	index.Listing = catalog.Index
	index.IncompleteCount = catalog.IncompleteCount

	jobs := []pageJob{
		{template: "index.html", target: "index.html", page: index},
		{template: "difficulties/index.html", target: "difficulties/index.html", page: nested("Problems by difficulty", catalog_indexer.Listing{})},
	}

	for i := range catalog.Difficulties {
		view := &catalog.Difficulties[i]
		page := nested("Difficulty: "+view.Name, view.Listing)
		page.Difficulty = view
		jobs = append(jobs, pageJob{template: "difficulties/by-difficulty.html", target: "difficulties/" + view.Slug + ".html", page: page})
	}

	jobs = append(jobs, pageJob{template: "features/index.html", target: "features/index.html", page: nested("Problems by feature", catalog_indexer.Listing{})})
	for i := range catalog.Features {
		view := &catalog.Features[i]
		page := nested(view.Title, view.Listing)
		page.Feature = view
		jobs = append(jobs, pageJob{template: "features/by-feature.html", target: "features/" + view.Name + ".html", page: page})
	}

	jobs = append(jobs, pageJob{template: "tagged/index.html", target: "tagged/index.html", page: nested("Problems by tag", catalog_indexer.Listing{})})
	for i := range catalog.Tags {
		view := &catalog.Tags[i]
		page := nested("Tag: "+view.Name, view.Listing)
		page.Tag = view
		jobs = append(jobs, pageJob{template: "tagged/by-tag.html", target: "tagged/" + view.Name + ".html", page: page})
	}

	jobs = append(jobs,
		pageJob{template: "incomplete/index.html", target: "incomplete/index.html", page: nested("Incomplete problems", catalog_indexer.Listing{})},
		pageJob{template: "incomplete/info.html", target: "incomplete/info.html", page: nested("Problems without problem.json", catalog.Incomplete.Info)},
		pageJob{template: "incomplete/description.html", target: "incomplete/description.html", page: nested("Problems without a description", catalog.Incomplete.Description)},
		pageJob{template: "incomplete/pdf.html", target: "incomplete/pdf.html", page: nested("Problems whose statement does not build", catalog.Incomplete.Statement)},
		pageJob{template: "incomplete/notes.html", target: "incomplete/notes.html", page: nested("Problems whose notes do not build", catalog.Incomplete.Notes)},
	)
	return jobs
}
