package cache_sync

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/compprog-lecture-tools/problem-list/problem_repository/models"
	"github.com/compprog-lecture-tools/problem-list/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	root      string
	cacheRoot string
	locations []models.Location
}

func newFixture(t *testing.T, names ...string) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{root: root, cacheRoot: filepath.Join(root, ".cache", "build")}
	for _, name := range names {
		dir := filepath.Join(root, "algo21", "week1", name)
		require.NoError(t, os.MkdirAll(dir, 0755))
		f.locations = append(f.locations, models.Location{
			Path: models.Path{Course: "algo21", Contest: "week1", Name: name},
			Dir:  dir,
		})
	}
	return f
}

func (f *fixture) synchronizer(t *testing.T) *Synchronizer {
	t.Helper()
	s, err := NewSynchronizer(f.cacheRoot, utils.DiscardLogger())
	require.NoError(t, err)
	return s
}

func (f *fixture) writeBuildFile(t *testing.T, problem int, rel, content string) {
	t.Helper()
	path := filepath.Join(f.locations[problem].Dir, BuildDirName, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func (f *fixture) addSlot(t *testing.T, name string) {
	t.Helper()
	dir := filepath.Join(f.cacheRoot, name)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "problem.pdf"), []byte(name), 0644))
}

func (f *fixture) slots(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(f.cacheRoot)
	require.NoError(t, err)
	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names
}

func TestNewSynchronizer_CreatesCacheRoot(t *testing.T) {
	f := newFixture(t)
	s := f.synchronizer(t)

	info, err := os.Stat(f.cacheRoot)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, f.cacheRoot, s.CacheRoot())
}

func TestLink_CreatesSlotsAndSymlinks(t *testing.T) {
	f := newFixture(t, "a", "b")
	s := f.synchronizer(t)

	require.NoError(t, s.Link(f.locations))

	assert.Equal(t, []string{"algo21__week1__a", "algo21__week1__b"}, f.slots(t))
	for _, location := range f.locations {
		buildDir := filepath.Join(location.Dir, BuildDirName)
		target, err := os.Readlink(buildDir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(f.cacheRoot, "algo21__week1__"+location.Name), target)
	}

	// Writes through the link end up in the cache
	f.writeBuildFile(t, 0, "problem/problem.pdf", "pdf")
	content, err := os.ReadFile(filepath.Join(f.cacheRoot, "algo21__week1__a", "problem", "problem.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "pdf", string(content))

	stats := s.Stats()
	assert.Equal(t, 2, stats.Created)
	assert.Equal(t, 2, stats.Linked)
	assert.Equal(t, 0, stats.Deleted)
}

func TestLink_DeletesOrphanSlots(t *testing.T) {
	f := newFixture(t, "a", "b", "c")
	f.addSlot(t, "algo21__week1__a")
	f.addSlot(t, "algo21__week1__renamed")
	f.addSlot(t, "algo20__week1__removed")
	f.addSlot(t, "not-a-slot-name")
	// Plain files in the cache root are left alone
	require.NoError(t, os.WriteFile(filepath.Join(f.cacheRoot, "README"), nil, 0644))

	s := f.synchronizer(t)
	require.NoError(t, s.Link(f.locations))

	assert.Equal(t, []string{"README", "algo21__week1__a", "algo21__week1__b", "algo21__week1__c"}, f.slots(t))
	assert.Equal(t, 3, s.Stats().Deleted)

	// Existing slot contents survive linking
	content, err := os.ReadFile(filepath.Join(f.locations[0].Dir, BuildDirName, "problem.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "algo21__week1__a", string(content))
}

func TestLink_FailsOnRealBuildDirectory(t *testing.T) {
	f := newFixture(t, "a")
	f.writeBuildFile(t, 0, "keep.txt", "precious")
	f.addSlot(t, "algo21__week1__orphan")

	s := f.synchronizer(t)
	err := s.Link(f.locations)

	require.ErrorIs(t, err, ErrBuildDirExists)
	assert.Contains(t, err.Error(), filepath.Join(f.locations[0].Dir, BuildDirName))
	// Nothing was deleted
	_, statErr := os.Stat(filepath.Join(f.locations[0].Dir, BuildDirName, "keep.txt"))
	assert.NoError(t, statErr)
	assert.Contains(t, f.slots(t), "algo21__week1__orphan")
}

func TestLink_IsRepeatable(t *testing.T) {
	f := newFixture(t, "a")
	require.NoError(t, f.synchronizer(t).Link(f.locations))
	require.NoError(t, f.synchronizer(t).Link(f.locations))

	assert.Equal(t, []string{"algo21__week1__a"}, f.slots(t))
}

func TestLink_RejectsSeparatorInNames(t *testing.T) {
	f := newFixture(t, "a__b")
	err := f.synchronizer(t).Link(f.locations)
	assert.ErrorIs(t, err, ErrInvalidSlotName)
}

func TestLink_NamesEveryInvalidProblem(t *testing.T) {
	f := newFixture(t, "_lead", "ok", "trail_")
	f.addSlot(t, "algo21__week1__old")

	err := f.synchronizer(t).Link(f.locations)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSlotName)
	assert.Contains(t, err.Error(), "2 problems cannot be cached")
	assert.Contains(t, err.Error(), "algo21/week1/_lead")
	assert.Contains(t, err.Error(), "algo21/week1/trail_")
	assert.NotContains(t, err.Error(), "algo21/week1/ok")
	// nothing is touched before the names are checked
	assert.Equal(t, []string{"algo21__week1__old"}, f.slots(t))
}

func TestImport_MovesKnownSlotsAndDeletesOrphans(t *testing.T) {
	f := newFixture(t, "a", "b")
	f.addSlot(t, "algo21__week1__a")
	f.addSlot(t, "algo21__week1__gone")

	s := f.synchronizer(t)
	require.NoError(t, s.Import(f.locations))

	assert.Empty(t, f.slots(t))
	content, err := os.ReadFile(filepath.Join(f.locations[0].Dir, BuildDirName, "problem.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "algo21__week1__a", string(content))

	info, err := os.Lstat(filepath.Join(f.locations[0].Dir, BuildDirName))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = os.Stat(filepath.Join(f.locations[1].Dir, BuildDirName))
	assert.True(t, os.IsNotExist(err))

	stats := s.Stats()
	assert.Equal(t, 1, stats.Imported)
	assert.Equal(t, 1, stats.Deleted)
}

func TestImport_IsIdempotent(t *testing.T) {
	f := newFixture(t, "a", "b")
	f.addSlot(t, "algo21__week1__a")
	require.NoError(t, f.synchronizer(t).Import(f.locations))

	before, err := Fingerprint(f.root)
	require.NoError(t, err)

	s := f.synchronizer(t)
	require.NoError(t, s.Import(f.locations))

	after, err := Fingerprint(f.root)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Empty(t, s.Stats().Counts())
}

func TestImport_FailsWhenBuildDirectoryExists(t *testing.T) {
	f := newFixture(t, "a")
	f.writeBuildFile(t, 0, "local.txt", "local")
	f.addSlot(t, "algo21__week1__a")

	err := f.synchronizer(t).Import(f.locations)
	require.ErrorIs(t, err, ErrBuildDirExists)
	assert.Contains(t, f.slots(t), "algo21__week1__a")
}

func TestExport_MovesBuildDirectoriesIntoCache(t *testing.T) {
	f := newFixture(t, "a", "b")
	f.writeBuildFile(t, 0, "problem/problem.pdf", "statement")

	s := f.synchronizer(t)
	require.NoError(t, s.Export(f.locations))

	assert.Equal(t, []string{"algo21__week1__a"}, f.slots(t))
	_, err := os.Stat(filepath.Join(f.locations[0].Dir, BuildDirName))
	assert.True(t, os.IsNotExist(err))

	stats := s.Stats()
	assert.Equal(t, 1, stats.Exported)
	assert.Equal(t, 1, stats.Skipped)
}

func TestExport_ReplacesStaleSlot(t *testing.T) {
	f := newFixture(t, "a")
	f.addSlot(t, "algo21__week1__a")
	f.writeBuildFile(t, 0, "fresh.txt", "new")

	s := f.synchronizer(t)
	require.NoError(t, s.Export(f.locations))

	_, err := os.Stat(filepath.Join(f.cacheRoot, "algo21__week1__a", "fresh.txt"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(f.cacheRoot, "algo21__week1__a", "problem.pdf"))
	assert.True(t, os.IsNotExist(err))
	assert.Equal(t, 1, s.Stats().Replaced)
}

func TestExport_SkipsLinkedBuildDirectories(t *testing.T) {
	f := newFixture(t, "a")
	require.NoError(t, f.synchronizer(t).Link(f.locations))
	f.writeBuildFile(t, 0, "out.txt", "x")

	s := f.synchronizer(t)
	require.NoError(t, s.Export(f.locations))

	assert.Equal(t, 1, s.Stats().Skipped)
	_, err := os.Stat(filepath.Join(f.cacheRoot, "algo21__week1__a", "out.txt"))
	assert.NoError(t, err)
}

func TestExportImport_RoundTrip(t *testing.T) {
	f := newFixture(t, "a", "b", "c")
	f.writeBuildFile(t, 0, "problem/problem.pdf", "statement a")
	f.writeBuildFile(t, 0, "a-notes.pdf", "notes a")
	f.writeBuildFile(t, 1, "problem/problem.pdf", "statement b")
	// Problem c never built

	before := map[string]Digest{}
	for i, location := range f.locations[:2] {
		digest, err := Fingerprint(filepath.Join(location.Dir, BuildDirName))
		require.NoError(t, err)
		before[f.locations[i].Name] = digest
	}

	require.NoError(t, f.synchronizer(t).Export(f.locations))
	require.NoError(t, f.synchronizer(t).Import(f.locations))

	assert.Empty(t, f.slots(t))
	for name, want := range before {
		got, err := Fingerprint(filepath.Join(f.root, "algo21", "week1", name, BuildDirName))
		require.NoError(t, err)
		assert.Equal(t, want, got, "problem %s", name)
	}
	_, err := os.Stat(filepath.Join(f.locations[2].Dir, BuildDirName))
	assert.True(t, os.IsNotExist(err))
}

func TestExportImport_DropsSlotsOfRemovedProblems(t *testing.T) {
	f := newFixture(t, "a", "b")
	f.writeBuildFile(t, 0, "x.txt", "a")
	f.writeBuildFile(t, 1, "x.txt", "b")
	require.NoError(t, f.synchronizer(t).Export(f.locations))

	// Problem b was removed before the next run
	remaining := f.locations[:1]
	s := f.synchronizer(t)
	require.NoError(t, s.Import(remaining))

	assert.Empty(t, f.slots(t))
	assert.Equal(t, 1, s.Stats().Imported)
	assert.Equal(t, 1, s.Stats().Deleted)
}

func TestStatusAndReset(t *testing.T) {
	f := newFixture(t, "a")
	f.addSlot(t, "algo21__week1__a")
	f.addSlot(t, "algo21__week1__old")
	f.addSlot(t, "stray")

	s := f.synchronizer(t)
	infos, err := s.Status(f.locations)
	require.NoError(t, err)

	require.Len(t, infos, 3)
	assert.Equal(t, "algo21__week1__a", infos[0].Name)
	assert.Equal(t, "algo21/week1/a", infos[0].Problem)
	assert.Equal(t, "algo21/week1/old", infos[1].Problem)
	assert.Equal(t, "stray", infos[2].Name)
	assert.Empty(t, infos[2].Problem)
	assert.False(t, infos[2].Known)
	assert.True(t, infos[0].Known)
	assert.Equal(t, 1, infos[0].Files)
	assert.Equal(t, int64(len("algo21__week1__a")), infos[0].SizeBytes)
	assert.False(t, infos[1].Known)
	assert.NotEqual(t, infos[0].Fingerprint, infos[1].Fingerprint)
	// Status never changes the cache
	assert.Len(t, f.slots(t), 3)

	removed, err := s.Reset()
	require.NoError(t, err)
	assert.Equal(t, 3, removed)
	assert.Empty(t, f.slots(t))
}

func TestFingerprint_DependsOnContentAndNames(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	for _, dir := range []string{dirA, dirB} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "f.txt"), []byte("same"), 0644))
	}

	a, err := Fingerprint(dirA)
	require.NoError(t, err)
	b, err := Fingerprint(dirB)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	require.NoError(t, os.WriteFile(filepath.Join(dirB, "sub", "f.txt"), []byte("diff"), 0644))
	b, err = Fingerprint(dirB)
	require.NoError(t, err)
	assert.NotEqual(t, a.Sum, b.Sum)
	assert.Equal(t, a.SizeBytes, b.SizeBytes)
}

func TestSyncStats_Summary(t *testing.T) {
	stats := SyncStats{}
	assert.Contains(t, stats.Summary(), "nothing to do")

	stats.record(ActionLinked)
	stats.record(ActionLinked)
	stats.record(ActionDeleted)
	assert.Contains(t, stats.Summary(), "2 linked, 1 deleted")
	assert.Equal(t, map[string]int{ActionLinked: 2, ActionDeleted: 1}, stats.Counts())
}
