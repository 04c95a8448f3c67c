package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/compprog-lecture-tools/problem-list/constants/lipgloss"
	"github.com/compprog-lecture-tools/problem-list/problem_repository"
	"github.com/compprog-lecture-tools/problem-list/problem_repository/models"
	"github.com/compprog-lecture-tools/problem-list/utils"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <course/contest/problem>",
	Short: "Print the loaded record of one problem",
	Long: `The 'show' command loads a single problem the same way 'generate' does and
prints its metadata, detected features and the highlighted problem.json.
Use it to check a problem.json before pushing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return handleShowCommand(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func handleShowCommand(cmd *cobra.Command, problemPath string) error {
	rootDependencies, err := handleRootCommand(cmd, "")
	if err != nil {
		return err
	}

	path, err := models.ParsePath(problemPath)
	if err != nil {
		return err
	}
	locator, err := problem_repository.NewLocator(rootDependencies.RepoRoot, rootDependencies.locatorOptions())
	if err != nil {
		return err
	}
	location, err := locator.Locate(path)
	if err != nil {
		return err
	}

	loader := problem_repository.NewLoader(rootDependencies.loaderOptions(), rootDependencies.Vocabulary, rootDependencies.Logger)
	problem, err := loader.Load(location)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, lipgloss.BoxStyle.Render(problem.Path.String()))
	printField(out, "directory", problem.Dir)

	if problem.Metadata == nil {
		fmt.Fprintln(out, lipgloss.Yellow.Render("no "+problem_repository.DefaultLoaderOptions.MetadataFile+", the problem is listed as incomplete"))
	} else {
		metadata := problem.Metadata
		difficulty, _ := rootDependencies.Vocabulary.DifficultyName(metadata.Difficulty)
		printField(out, "difficulty", fmt.Sprintf("%d (%s)", metadata.Difficulty, difficulty))
		printField(out, "tags", strings.Join(metadata.Tags, ", "))
		if metadata.Description == "" {
			fmt.Fprintln(out, lipgloss.Yellow.Render("no description, the problem is listed as incomplete"))
		} else {
			printField(out, "description", metadata.Description)
		}
		if metadata.BasedOn != nil {
			printField(out, "based on", describeProvenance(metadata.BasedOn))
		}
	}

	var features []string
	for _, feature := range rootDependencies.Vocabulary.Features {
		if problem.HasFeature(feature.Name) {
			features = append(features, feature.Name)
		}
	}
	if len(features) == 0 {
		features = append(features, "none")
	}
	printField(out, "features", strings.Join(features, ", "))

	raw, err := os.ReadFile(filepath.Join(problem.Dir, problem_repository.DefaultLoaderOptions.MetadataFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read metadata of %s: %w", problem.Path, err)
	}
	fmt.Fprintln(out)
	return utils.RenderHighlightedWithContext(cmd.Context(), out, string(raw), "json", rootDependencies.Config.Theme)
}

func printField(out io.Writer, name string, value string) {
	fmt.Fprintf(out, "%s %s\n", lipgloss.Info.Render(name+":"), value)
}

func describeProvenance(provenance models.Provenance) string {
	switch p := provenance.(type) {
	case models.CodeforcesProvenance:
		return fmt.Sprintf("codeforces contest %s problem %s", p.Contest, p.ProblemID)
	case models.DerivedProvenance:
		return "old problem " + models.Path{Course: p.Course, Contest: p.Unit, Name: p.Problem}.String()
	case models.OtherProvenance:
		return p.Note
	default:
		return provenance.Kind()
	}
}
