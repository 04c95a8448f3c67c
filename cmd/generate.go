package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/compprog-lecture-tools/problem-list/build_orchestrator"
	"github.com/compprog-lecture-tools/problem-list/catalog_indexer"
	"github.com/compprog-lecture-tools/problem-list/constants/lipgloss"
	"github.com/compprog-lecture-tools/problem-list/page_renderer"
	"github.com/compprog-lecture-tools/problem-list/problem_repository"
	"github.com/compprog-lecture-tools/problem-list/utils"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate <repo_root> <out_dir> <repo_url>",
	Short: "Build every problem PDF and generate the problem list pages",
	Long: `The 'generate' command finds every problem below repo_root, builds its
statement and notes with the configured make targets, copies the PDFs to
out_dir/pdfs and renders the problem list pages into out_dir. repo_url is the
GitHub or GitLab URL of the repository, used to link problem sources.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		branch, _ := cmd.Flags().GetString("branch")
		return handleGenerateCommand(cmd, args[0], args[1], args[2], branch)
	},
}

func init() {
	generateCmd.Flags().String("branch", "master", "Git branch used in repository links")

	rootCmd.AddCommand(generateCmd)
}

func handleGenerateCommand(cmd *cobra.Command, repoRoot string, outDir string, repoURL string, branch string) error {
	ctx := cmd.Context()

	rootDependencies, err := handleRootCommand(cmd, repoRoot)
	if err != nil {
		return err
	}
	logger := rootDependencies.Logger

	outDir, err = filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("failed to resolve output directory: %w", err)
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", outDir, err)
	}

	git := utils.NewGitOperations(rootDependencies.RepoRoot)
	if err := git.CheckGitRepo(ctx); err != nil {
		return err
	}
	gitHash, err := git.ShortHash(ctx)
	if err != nil {
		return err
	}

	locations, err := rootDependencies.findProblems()
	if err != nil {
		return err
	}
	loader := problem_repository.NewLoader(rootDependencies.loaderOptions(), rootDependencies.Vocabulary, logger)
	problems, err := loader.LoadAll(locations)
	if err != nil {
		return err
	}
	sort.Slice(problems, func(i, j int) bool {
		return problems[i].Path.String() < problems[j].Path.String()
	})

	buildConfig := rootDependencies.Config.Build
	orchestrator := build_orchestrator.NewOrchestrator(utils.NewCommandExecutor(), build_orchestrator.Options{
		StatementCommand:  buildConfig.StatementCommand,
		CheckNotesCommand: buildConfig.CheckNotesCommand,
		NotesCommand:      buildConfig.NotesCommand,
		StatementArtifact: buildConfig.StatementArtifact,
		NotesArtifact:     buildConfig.NotesArtifact,
		ShowProgress:      isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
	}, logger)
	if err := orchestrator.BuildAll(ctx, problems, outDir); err != nil {
		return err
	}
	rootDependencies.Metrics.ObserveBuilds(orchestrator.Results())

	logger.Info("generating pages", logger.Args("out_dir", outDir))
	catalog := catalog_indexer.BuildCatalog(problems, rootDependencies.Vocabulary)
	rootDependencies.Metrics.ObserveCatalog(catalog)

	renderer, err := page_renderer.NewTemplateRenderer()
	if err != nil {
		return err
	}
	site := page_renderer.Site{
		Vocabulary: rootDependencies.Vocabulary,
		RepoURL:    repoURL,
		Branch:     branch,
		GitHash:    gitHash,
		BuildTime:  time.Now(),
	}
	pages, err := page_renderer.WritePages(renderer, catalog, site, outDir)
	if err != nil {
		return err
	}

	if err := rootDependencies.writeMetrics("generate"); err != nil {
		logger.Warn("could not write metrics", logger.Args("error", err.Error()))
	}

	summary := fmt.Sprintf("%d problems, %d incomplete, %d pages written to %s",
		catalog.Index.Len(), catalog.IncompleteCount, len(pages), outDir)
	if catalog.IncompleteCount > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), lipgloss.BoxStyle.Render(lipgloss.Yellow.Render(summary)))
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), lipgloss.BoxStyle.Render(lipgloss.Green.Render(summary)))
	}
	return nil
}
