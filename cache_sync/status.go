package cache_sync

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/compprog-lecture-tools/problem-list/problem_repository/models"
	"github.com/zeebo/xxh3"
)

// SlotInfo describes one slot directory of the cache. Problem is empty for
// names that do not parse as a slot key.
type SlotInfo struct {
	Name        string
	Problem     string
	Known       bool
	Files       int
	SizeBytes   int64
	Fingerprint uint64
}

// Status inspects every slot without changing anything. Slots are sorted by name.
func (s *Synchronizer) Status(locations []models.Location) ([]SlotInfo, error) {
	known, err := knownSlots(locations)
	if err != nil {
		return nil, err
	}

	names, err := s.slotNames()
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	infos := make([]SlotInfo, 0, len(names))
	for _, name := range names {
		digest, err := Fingerprint(filepath.Join(s.cacheRoot, name))
		if err != nil {
			return nil, err
		}
		_, ok := known[name]
		var problem string
		if key, err := ParseSlotName(name); err == nil {
			problem = key.Path().String()
		}
		infos = append(infos, SlotInfo{
			Name:        name,
			Problem:     problem,
			Known:       ok,
			Files:       digest.Files,
			SizeBytes:   digest.SizeBytes,
			Fingerprint: digest.Sum,
		})
	}
	return infos, nil
}

// Reset deletes every slot and returns how many were removed
func (s *Synchronizer) Reset() (int, error) {
	names, err := s.slotNames()
	if err != nil {
		return 0, err
	}
	for _, name := range names {
		if err := s.deleteSlot(name); err != nil {
			return 0, err
		}
	}
	return len(names), nil
}

// Digest summarizes the contents of a directory tree
type Digest struct {
	Sum       uint64
	Files     int
	SizeBytes int64
}

// Fingerprint hashes the relative path and content of every file below dir,
// in lexical order. Symlinks contribute their target instead of content.
// Equal trees give equal sums regardless of where they are located.
func Fingerprint(dir string) (Digest, error) {
	var digest Digest
	hasher := xxh3.New()

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		switch {
		case d.Type()&fs.ModeSymlink != 0:
			target, err := os.Readlink(path)
			if err != nil {
				return err
			}
			hasher.WriteString("L" + rel + "\x00" + target + "\x00")
		case d.IsDir():
			hasher.WriteString("D" + rel + "\x00")
		case d.Type().IsRegular():
			hasher.WriteString("F" + rel + "\x00")
			n, err := hashFile(hasher, path)
			if err != nil {
				return err
			}
			hasher.WriteString("\x00")
			digest.Files++
			digest.SizeBytes += n
		}
		return nil
	})
	if err != nil {
		return Digest{}, fmt.Errorf("failed to fingerprint %s: %w", dir, err)
	}

	digest.Sum = hasher.Sum64()
	return digest, nil
}

func hashFile(w io.Writer, path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return io.Copy(w, f)
}
