package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/compprog-lecture-tools/problem-list/cache_sync"
	"github.com/compprog-lecture-tools/problem-list/constants/lipgloss"
	"github.com/compprog-lecture-tools/problem-list/problem_repository/models"
	"github.com/compprog-lecture-tools/problem-list/utils"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var cacheSetupCmd = &cobra.Command{
	Use:   "cache-setup",
	Short: "Symlink every problem build directory into the cache",
	Long: `The 'cache-setup' command creates one cache slot per problem and replaces
the problem's build directory with a symlink to it. Slots of problems that no
longer exist are deleted, so renamed or removed problems do not grow the cache.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCacheCommand(cmd, "cache-setup", (*cache_sync.Synchronizer).Link)
	},
}

var cacheImportCmd = &cobra.Command{
	Use:   "cache-import",
	Short: "Move cached build directories back into the problems",
	Long: `The 'cache-import' command renames every cache slot of a known problem to
the problem's build directory and deletes the slots of unknown problems.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCacheCommand(cmd, "cache-import", (*cache_sync.Synchronizer).Import)
	},
}

var cacheTeardownCmd = &cobra.Command{
	Use:   "cache-teardown",
	Short: "Move problem build directories into the cache",
	Long: `The 'cache-teardown' command moves every real build directory into the
cache under the problem's slot name. Problems without a build directory, or
whose build directory is already a symlink into the cache, are skipped.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCacheCommand(cmd, "cache-teardown", (*cache_sync.Synchronizer).Export)
	},
}

var cacheStatusCmd = &cobra.Command{
	Use:   "cache-status",
	Short: "Show the slots of the build cache",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return handleCacheStatusCommand(cmd)
	},
}

var cacheResetCmd = &cobra.Command{
	Use:   "cache-reset",
	Short: "Delete every slot of the build cache",
	Long: `The 'cache-reset' command removes all slot directories from the cache.
Use it when the cached LaTeX builds are corrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		return handleCacheResetCommand(cmd, force)
	},
}

func init() {
	cacheResetCmd.Flags().BoolP("force", "f", false, "Reset the cache without confirmation")

	rootCmd.AddCommand(cacheSetupCmd, cacheImportCmd, cacheTeardownCmd, cacheStatusCmd, cacheResetCmd)
}

func newSynchronizer(cmd *cobra.Command) (*RootDependencies, *cache_sync.Synchronizer, error) {
	rootDependencies, err := handleRootCommand(cmd, "")
	if err != nil {
		return nil, nil, err
	}
	synchronizer, err := cache_sync.NewSynchronizer(rootDependencies.Config.CacheRoot(rootDependencies.RepoRoot), rootDependencies.Logger)
	if err != nil {
		return nil, nil, err
	}
	return rootDependencies, synchronizer, nil
}

func runCacheCommand(cmd *cobra.Command, name string, action func(*cache_sync.Synchronizer, []models.Location) error) error {
	rootDependencies, synchronizer, err := newSynchronizer(cmd)
	if err != nil {
		return err
	}

	locations, err := rootDependencies.findProblems()
	if err != nil {
		return err
	}

	actionErr := action(synchronizer, locations)
	stats := synchronizer.Stats()
	rootDependencies.Metrics.ObserveCache(stats)
	if err := rootDependencies.writeMetrics(name); err != nil {
		rootDependencies.Logger.Warn("could not write metrics", rootDependencies.Logger.Args("error", err.Error()))
	}
	if actionErr != nil {
		return fmt.Errorf("%s failed: %w", name, actionErr)
	}

	fmt.Fprintln(cmd.OutOrStdout(), lipgloss.BoxStyle.Render(fmt.Sprintf("%s: %s", name, stats.Summary())))
	return nil
}

func handleCacheStatusCommand(cmd *cobra.Command) error {
	rootDependencies, synchronizer, err := newSynchronizer(cmd)
	if err != nil {
		return err
	}
	locations, err := rootDependencies.findProblems()
	if err != nil {
		return err
	}

	slots, err := synchronizer.Status(locations)
	if err != nil {
		return err
	}
	if len(slots) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), lipgloss.Yellow.Render(fmt.Sprintf("Cache %s is empty.", synchronizer.CacheRoot())))
		return nil
	}

	data := pterm.TableData{{"Slot", "Problem", "State", "Files", "Size", "Fingerprint"}}
	var orphans int
	for _, slot := range slots {
		state := "known"
		if !slot.Known {
			state = "orphan"
			orphans++
		}
		data = append(data, []string{
			slot.Name,
			slot.Problem,
			state,
			fmt.Sprint(slot.Files),
			formatSize(slot.SizeBytes),
			fmt.Sprintf("%016x", slot.Fingerprint),
		})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithWriter(cmd.OutOrStdout()).WithData(data).Render(); err != nil {
		return err
	}

	summary := fmt.Sprintf("%d slots in %s, %d orphaned", len(slots), synchronizer.CacheRoot(), orphans)
	fmt.Fprintln(cmd.OutOrStdout(), lipgloss.Info.Render(summary))
	return nil
}

func handleCacheResetCommand(cmd *cobra.Command, force bool) error {
	rootDependencies, synchronizer, err := newSynchronizer(cmd)
	if err != nil {
		return err
	}

	if !force {
		question := fmt.Sprintf("Are you sure you want to delete every slot in %s?", synchronizer.CacheRoot())
		confirmed, err := utils.ConfirmPrompt(cmd.Context(), bufio.NewReader(os.Stdin), cmd.OutOrStdout(), question)
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(cmd.OutOrStdout(), lipgloss.Yellow.Render("Cache reset cancelled."))
			return nil
		}
	}

	spinner, _ := newSpinner().Start("Resetting build cache...")
	removed, err := synchronizer.Reset()
	if spinner != nil {
		_ = spinner.Stop()
	}
	rootDependencies.Metrics.ObserveCache(synchronizer.Stats())
	if metricsErr := rootDependencies.writeMetrics("cache-reset"); metricsErr != nil {
		rootDependencies.Logger.Warn("could not write metrics", rootDependencies.Logger.Args("error", metricsErr.Error()))
	}
	if err != nil {
		return fmt.Errorf("error resetting cache: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), lipgloss.Green.Render(fmt.Sprintf("✓ Removed %d cache slots.", removed)))
	return nil
}

func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
