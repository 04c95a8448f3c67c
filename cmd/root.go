package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/compprog-lecture-tools/problem-list/config"
	"github.com/compprog-lecture-tools/problem-list/constants/lipgloss"
	"github.com/compprog-lecture-tools/problem-list/metrics"
	"github.com/compprog-lecture-tools/problem-list/problem_repository"
	"github.com/compprog-lecture-tools/problem-list/problem_repository/models"
	"github.com/compprog-lecture-tools/problem-list/utils"
	"github.com/compprog-lecture-tools/problem-list/vocabulary"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set at build time with -ldflags "-X .../cmd.Version=..."
var Version = "dev"

var (
	repoRootFlag    string
	metricsFileFlag string
)

// RootDependencies is what every subcommand needs after configuration is loaded
type RootDependencies struct {
	RepoRoot   string
	Config     *config.Config
	Logger     *pterm.Logger
	Vocabulary *vocabulary.Vocabulary
	Metrics    *metrics.Recorder
	Started    time.Time
}

var rootCmd = &cobra.Command{
	Use:   "problem-list",
	Short: "Cache problem build directories in CI and generate the problem list pages",
	Long: `problem-list works on a repository of course/contest/problem directories.

The cache-* commands move the build directory of every problem into and out of
a shared cache directory so CI runs can reuse LaTeX builds. The generate
command builds every statement and notes PDF and renders the static problem
list pages.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if version, _ := cmd.Flags().GetBool("version"); version {
			fmt.Println(Version)
			return nil
		}
		return cmd.Help()
	},
}

func init() {
	config.InitFlags(rootCmd)
	rootCmd.PersistentFlags().StringVar(&repoRootFlag, "repo-root", "", "Root of the problem repository (defaults to the current directory).")
	rootCmd.PersistentFlags().StringVar(&metricsFileFlag, "metrics-file", "", "Write run metrics in Prometheus textfile format to this path.")
}

// Execute runs the root command; Ctrl-C cancels the context of the running command
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)
	cancel()
	if err != nil {
		fmt.Fprintln(os.Stderr, lipgloss.Red.Render(fmt.Sprintf("Error: %v", err)))
		os.Exit(1)
	}
}

// handleRootCommand loads the configuration of the repository at repoRoot.
// An empty repoRoot means --repo-root, or the working directory.
func handleRootCommand(cmd *cobra.Command, repoRoot string) (*RootDependencies, error) {
	if repoRoot == "" {
		repoRoot = repoRootFlag
	}
	if repoRoot == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		repoRoot = cwd
	}
	repoRoot, err := filepath.Abs(repoRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve repository root %s: %w", repoRoot, err)
	}

	cfg, err := config.LoadConfigs(viper.New(), rootCmd, repoRoot)
	if err != nil {
		return nil, err
	}

	vocab, err := vocabulary.Load(cfg.VocabularyPath(repoRoot))
	if err != nil {
		return nil, err
	}

	return &RootDependencies{
		RepoRoot:   repoRoot,
		Config:     cfg,
		Logger:     utils.NewLogger(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr()),
		Vocabulary: vocab,
		Metrics:    metrics.NewRecorder(),
		Started:    time.Now(),
	}, nil
}

func (d *RootDependencies) locatorOptions() problem_repository.LocatorOptions {
	return problem_repository.LocatorOptions{
		StatementFile:    d.Config.StatementFile,
		ExcludedCourses:  d.Config.ExcludedCourses,
		ExcludedContests: d.Config.ExcludedContests,
	}
}

func (d *RootDependencies) loaderOptions() problem_repository.LoaderOptions {
	options := problem_repository.DefaultLoaderOptions
	options.SolutionExtension = d.Config.SolutionExtension
	return options
}

// findProblems lists every problem of the repository behind a spinner
func (d *RootDependencies) findProblems() ([]models.Location, error) {
	spinner, _ := newSpinner().Start("Looking for problems...")
	locations, err := problem_repository.FindProblems(d.RepoRoot, d.locatorOptions())
	if spinner != nil {
		_ = spinner.Stop()
	}
	if err != nil {
		return nil, err
	}
	d.Logger.Debug("found problems", d.Logger.Args("count", len(locations), "root", d.RepoRoot))
	return locations, nil
}

// writeMetrics records the command duration and writes the textfile when
// --metrics-file was given
func (d *RootDependencies) writeMetrics(command string) error {
	if metricsFileFlag == "" {
		return nil
	}
	d.Metrics.ObserveRun(command, d.Started, time.Now())
	return d.Metrics.WriteTextfile(metricsFileFlag)
}

func newSpinner() *pterm.SpinnerPrinter {
	return pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgCyan)).
		WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").
		WithDelay(100 * time.Millisecond).WithRemoveWhenDone(true)
}
