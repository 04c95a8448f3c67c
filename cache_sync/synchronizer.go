// Package cache_sync moves per-problem build directories into and out of a
// flat cache directory, so CI can save and restore it between runs.
//
// The cache root holds one slot directory per problem, named
// course__contest__problem. Each command leaves the cache holding slots for
// known problems only, except Export which just adds slots.
package cache_sync

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/compprog-lecture-tools/problem-list/problem_repository/models"
	"github.com/pterm/pterm"
)

// BuildDirName is the directory inside a problem that holds its build output
const BuildDirName = "build"

// ErrBuildDirExists means a real build directory is in the way of a link or
// import, replacing it could lose data
var ErrBuildDirExists = errors.New("build directory already exists")

// Synchronizer runs the cache commands against one cache root
type Synchronizer struct {
	cacheRoot string
	logger    *pterm.Logger
	stats     SyncStats
}

// NewSynchronizer creates the cache root if needed
func NewSynchronizer(cacheRoot string, logger *pterm.Logger) (*Synchronizer, error) {
	absRoot, err := filepath.Abs(cacheRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cache directory %s: %w", cacheRoot, err)
	}
	if err := os.MkdirAll(absRoot, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Synchronizer{
		cacheRoot: absRoot,
		logger:    logger,
		stats:     SyncStats{StartTime: time.Now()},
	}, nil
}

// CacheRoot returns the absolute cache directory
func (s *Synchronizer) CacheRoot() string {
	return s.cacheRoot
}

// Stats returns the actions taken so far
func (s *Synchronizer) Stats() SyncStats {
	return s.stats
}

func (s *Synchronizer) slotPath(key SlotKey) string {
	return filepath.Join(s.cacheRoot, key.DirName())
}

// knownSlots maps slot directory names to the problem they belong to. Every
// problem whose name cannot be cached is listed in the returned error.
func knownSlots(locations []models.Location) (map[string]models.Location, error) {
	known := make(map[string]models.Location, len(locations))
	var invalid []error
	for _, location := range locations {
		key, err := SlotKeyFor(location.Path)
		if err != nil {
			invalid = append(invalid, fmt.Errorf("problem %s at %s: %w", location.Path, location.Dir, err))
			continue
		}
		known[key.DirName()] = location
	}
	if len(invalid) > 0 {
		return nil, fmt.Errorf("%d problems cannot be cached, rename them:\n%w", len(invalid), errors.Join(invalid...))
	}
	return known, nil
}

// Link points the build directory of every problem at its cache slot, then
// deletes the slots of unknown problems.
func (s *Synchronizer) Link(locations []models.Location) error {
	known, err := knownSlots(locations)
	if err != nil {
		return err
	}

	for _, location := range locations {
		key, _ := SlotKeyFor(location.Path)
		slotDir := s.slotPath(key)

		if _, err := os.Stat(slotDir); errors.Is(err, os.ErrNotExist) {
			if err := os.Mkdir(slotDir, 0755); err != nil {
				return fmt.Errorf("failed to create cache slot %s: %w", slotDir, err)
			}
			s.stats.record(ActionCreated)
		} else if err != nil {
			return fmt.Errorf("failed to stat cache slot %s: %w", slotDir, err)
		}

		buildDir := filepath.Join(location.Dir, BuildDirName)
		if err := replaceWithSymlink(buildDir, slotDir); err != nil {
			return err
		}
		s.stats.record(ActionLinked)
		s.logger.Info("set up build caching", s.logger.Args("problem", location.Path.String(), "slot", key.DirName()))
	}

	return s.deleteOrphans(known)
}

func replaceWithSymlink(buildDir, target string) error {
	info, err := os.Lstat(buildDir)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return fmt.Errorf("failed to stat %s: %w", buildDir, err)
	case info.Mode()&os.ModeSymlink != 0:
		if err := os.Remove(buildDir); err != nil {
			return fmt.Errorf("failed to remove stale link %s: %w", buildDir, err)
		}
	default:
		return fmt.Errorf("%w: %s", ErrBuildDirExists, buildDir)
	}

	if err := os.Symlink(target, buildDir); err != nil {
		return fmt.Errorf("failed to link %s to %s: %w", buildDir, target, err)
	}
	return nil
}

// Import moves every slot of a known problem into that problem's build
// directory and deletes all other slots.
func (s *Synchronizer) Import(locations []models.Location) error {
	known, err := knownSlots(locations)
	if err != nil {
		return err
	}

	slots, err := s.slotNames()
	if err != nil {
		return err
	}

	for _, name := range slots {
		location, ok := known[name]
		if !ok {
			if err := s.deleteSlot(name); err != nil {
				return err
			}
			continue
		}

		buildDir := filepath.Join(location.Dir, BuildDirName)
		if _, err := os.Lstat(buildDir); err == nil {
			return fmt.Errorf("%w: %s", ErrBuildDirExists, buildDir)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to stat %s: %w", buildDir, err)
		}

		if err := os.Rename(filepath.Join(s.cacheRoot, name), buildDir); err != nil {
			return fmt.Errorf("failed to import cache slot %s: %w", name, err)
		}
		s.stats.record(ActionImported)
		s.logger.Info("imported cache slot", s.logger.Args("slot", name, "problem", location.Path.String()))
	}
	return nil
}

// Export moves the build directory of every problem into the cache. Problems
// without a build directory are skipped, their build may have failed. Build
// directories that are links (left by Link) already live in the cache.
func (s *Synchronizer) Export(locations []models.Location) error {
	if _, err := knownSlots(locations); err != nil {
		return err
	}

	for _, location := range locations {
		key, _ := SlotKeyFor(location.Path)
		buildDir := filepath.Join(location.Dir, BuildDirName)

		info, err := os.Lstat(buildDir)
		if errors.Is(err, os.ErrNotExist) {
			s.stats.record(ActionSkipped)
			s.logger.Debug("no build directory", s.logger.Args("problem", location.Path.String()))
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", buildDir, err)
		}
		if !info.IsDir() {
			s.stats.record(ActionSkipped)
			s.logger.Debug("build is not a directory", s.logger.Args("problem", location.Path.String()))
			continue
		}

		slotDir := s.slotPath(key)
		if _, err := os.Lstat(slotDir); err == nil {
			if err := os.RemoveAll(slotDir); err != nil {
				return fmt.Errorf("failed to replace cache slot %s: %w", slotDir, err)
			}
			s.stats.record(ActionReplaced)
			s.logger.Info("replacing stale cache slot", s.logger.Args("slot", key.DirName()))
		}

		if err := os.Rename(buildDir, slotDir); err != nil {
			return fmt.Errorf("failed to cache %s: %w", buildDir, err)
		}
		s.stats.record(ActionExported)
		s.logger.Info("cached build directory", s.logger.Args("problem", location.Path.String(), "slot", key.DirName()))
	}
	return nil
}

// slotNames lists the directories in the cache root, other entries are ignored
func (s *Synchronizer) slotNames() ([]string, error) {
	entries, err := os.ReadDir(s.cacheRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory %s: %w", s.cacheRoot, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

func (s *Synchronizer) deleteOrphans(known map[string]models.Location) error {
	slots, err := s.slotNames()
	if err != nil {
		return err
	}
	for _, name := range slots {
		if _, ok := known[name]; ok {
			continue
		}
		if err := s.deleteSlot(name); err != nil {
			return err
		}
	}
	return nil
}

func (s *Synchronizer) deleteSlot(name string) error {
	s.logger.Info("deleting unknown build dir", s.logger.Args("slot", name))
	if err := os.RemoveAll(filepath.Join(s.cacheRoot, name)); err != nil {
		return fmt.Errorf("failed to delete cache slot %s: %w", name, err)
	}
	s.stats.record(ActionDeleted)
	return nil
}
