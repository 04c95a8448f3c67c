package build_orchestrator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/compprog-lecture-tools/problem-list/problem_repository/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner simulates make targets. Each registered command may write files
// into the problem directory, print output or fail.
type fakeRunner struct {
	steps map[string]func(dir string) ([]byte, error)
	calls []string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{steps: make(map[string]func(dir string) ([]byte, error))}
}

func (f *fakeRunner) on(command string, step func(dir string) ([]byte, error)) {
	f.steps[command] = step
}

func (f *fakeRunner) exec(dir string, args []string) ([]byte, error) {
	command := strings.Join(args, " ")
	f.calls = append(f.calls, command)
	step, ok := f.steps[command]
	if !ok {
		return nil, nil
	}
	return step(dir)
}

func (f *fakeRunner) Run(_ context.Context, dir string, args []string) error {
	_, err := f.exec(dir, args)
	return err
}

func (f *fakeRunner) Output(_ context.Context, dir string, args []string) ([]byte, error) {
	return f.exec(dir, args)
}

func produce(relative string, content string) func(dir string) ([]byte, error) {
	return func(dir string) ([]byte, error) {
		path := filepath.Join(dir, relative)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, err
		}
		return nil, os.WriteFile(path, []byte(content), 0644)
	}
}

func fail(dir string) ([]byte, error) {
	return nil, errors.New("exit status 2")
}

func newProblem(t *testing.T) *models.Problem {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "algo21", "week1", "sorting")
	require.NoError(t, os.MkdirAll(dir, 0755))
	return &models.Problem{Location: models.Location{
		Path: models.Path{Course: "algo21", Contest: "week1", Name: "sorting"},
		Dir:  dir,
	}}
}

func succeedingRunner() *fakeRunner {
	runner := newFakeRunner()
	runner.on("make pdf", produce("build/problem/problem.pdf", "statement"))
	runner.on("make notes", produce("build/sorting-notes.pdf", "notes"))
	return runner
}

func TestBuild_AllStagesSucceed(t *testing.T) {
	runner := succeedingRunner()
	p := newProblem(t)
	out := t.TempDir()

	status, err := NewOrchestrator(runner, DefaultOptions, nil).Build(context.Background(), p, out)
	require.NoError(t, err)

	assert.Equal(t, models.BuildStatus{StatementBuilt: true, NotesBuilt: true}, status)
	assert.Equal(t, status, p.Status)
	assert.Equal(t, []string{"make pdf", "make check-notes", "make notes"}, runner.calls)

	target := filepath.Join(out, "pdfs", "algo21", "week1", "sorting")
	statement, err := os.ReadFile(filepath.Join(target, "statement.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "statement", string(statement))
	notes, err := os.ReadFile(filepath.Join(target, "notes.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "notes", string(notes))
}

func TestBuild_StatementFailureOnlyClearsStatement(t *testing.T) {
	runner := succeedingRunner()
	runner.on("make pdf", fail)
	p := newProblem(t)
	out := t.TempDir()

	orchestrator := NewOrchestrator(runner, DefaultOptions, nil)
	status, err := orchestrator.Build(context.Background(), p, out)
	require.NoError(t, err)

	assert.False(t, status.StatementBuilt)
	assert.True(t, status.NotesBuilt)
	assert.NoFileExists(t, filepath.Join(ProblemOutputDir(out, p), StatementFileName))
	assert.Equal(t, Results{StatementsFailed: 1, NotesBuilt: 1}, orchestrator.Results())
}

func TestBuild_MissingArtifactClearsStage(t *testing.T) {
	runner := succeedingRunner()
	runner.on("make pdf", func(string) ([]byte, error) { return nil, nil })
	p := newProblem(t)

	status, err := NewOrchestrator(runner, DefaultOptions, nil).Build(context.Background(), p, t.TempDir())
	require.NoError(t, err)
	assert.False(t, status.StatementBuilt)
}

func TestNotesGate(t *testing.T) {
	tests := []struct {
		name  string
		check func(dir string) ([]byte, error)
		want  bool
	}{
		{name: "clean exit without output", check: func(string) ([]byte, error) { return nil, nil }, want: true},
		{name: "clean exit with output", check: func(string) ([]byte, error) { return []byte("TODO in notes\n"), nil }, want: false},
		{name: "failing check", check: fail, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := succeedingRunner()
			runner.on("make check-notes", tt.check)
			p := newProblem(t)

			status, err := NewOrchestrator(runner, DefaultOptions, nil).Build(context.Background(), p, t.TempDir())
			require.NoError(t, err)

			assert.Equal(t, tt.want, status.NotesBuilt)
			assert.True(t, status.StatementBuilt)
			if !tt.want {
				assert.NotContains(t, runner.calls, "make notes")
			}
		})
	}
}

func TestBuildNotes_FailureClearsFlag(t *testing.T) {
	runner := succeedingRunner()
	runner.on("make notes", fail)
	p := newProblem(t)

	status, err := NewOrchestrator(runner, DefaultOptions, nil).Build(context.Background(), p, t.TempDir())
	require.NoError(t, err)
	assert.True(t, status.StatementBuilt)
	assert.False(t, status.NotesBuilt)
}

func TestBuild_CopyKeepsModificationTime(t *testing.T) {
	runner := succeedingRunner()
	stamp := time.Date(2021, 4, 1, 12, 0, 0, 0, time.UTC)
	runner.on("make pdf", func(dir string) ([]byte, error) {
		if _, err := produce("build/problem/problem.pdf", "statement")(dir); err != nil {
			return nil, err
		}
		return nil, os.Chtimes(filepath.Join(dir, "build/problem/problem.pdf"), stamp, stamp)
	})
	p := newProblem(t)
	out := t.TempDir()

	_, err := NewOrchestrator(runner, DefaultOptions, nil).Build(context.Background(), p, out)
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(ProblemOutputDir(out, p), StatementFileName))
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(stamp))
}

func TestBuildAll_StopsWhenCancelled(t *testing.T) {
	runner := succeedingRunner()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewOrchestrator(runner, DefaultOptions, nil).BuildAll(ctx, []*models.Problem{newProblem(t)}, t.TempDir())
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, runner.calls)
}

func TestBuildAll_BuildsEveryProblem(t *testing.T) {
	runner := succeedingRunner()
	first := newProblem(t)
	second := newProblem(t)
	second.Name = "searching"
	runner.on("make notes", func(dir string) ([]byte, error) {
		return produce("build/"+filepath.Base(dir)+"-notes.pdf", "notes")(dir)
	})

	orchestrator := NewOrchestrator(runner, DefaultOptions, nil)
	require.NoError(t, orchestrator.BuildAll(context.Background(), []*models.Problem{first, second}, t.TempDir()))

	assert.True(t, first.Status.NotesBuilt)
	// the second problem's directory is still named sorting, so its notes PDF is not found
	assert.False(t, second.Status.NotesBuilt)
	assert.Equal(t, Results{StatementsBuilt: 2, NotesBuilt: 1, NotesFailed: 1}, orchestrator.Results())
}
