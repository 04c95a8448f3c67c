// Package build_orchestrator runs the external statement and notes builds of
// every problem and collects the produced PDFs into the output tree.
package build_orchestrator

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/compprog-lecture-tools/problem-list/build_orchestrator/contracts"
	"github.com/compprog-lecture-tools/problem-list/problem_repository/models"
	"github.com/pterm/pterm"
)

const (
	PDFDirName        = "pdfs"
	StatementFileName = "statement.pdf"
	NotesFileName     = "notes.pdf"
	// NamePlaceholder is replaced by the problem name in artifact paths
	NamePlaceholder = "{name}"
)

// Options configure the build commands and where their artifacts appear,
// relative to the problem directory.
type Options struct {
	StatementCommand  []string
	CheckNotesCommand []string
	NotesCommand      []string
	StatementArtifact string
	NotesArtifact     string
	ShowProgress      bool
}

var DefaultOptions = Options{
	StatementCommand:  []string{"make", "pdf"},
	CheckNotesCommand: []string{"make", "check-notes"},
	NotesCommand:      []string{"make", "notes"},
	StatementArtifact: "build/problem/problem.pdf",
	NotesArtifact:     "build/" + NamePlaceholder + "-notes.pdf",
}

// Results counts stage outcomes over one run
type Results struct {
	StatementsBuilt  int
	StatementsFailed int
	NotesBuilt       int
	NotesFailed      int
	NotesGated       int
}

type Orchestrator struct {
	runner  contracts.ICommandRunner
	options Options
	logger  *pterm.Logger
	results Results
}

func NewOrchestrator(runner contracts.ICommandRunner, options Options, logger *pterm.Logger) *Orchestrator {
	if logger == nil {
		logger = pterm.DefaultLogger.WithWriter(io.Discard)
	}
	return &Orchestrator{runner: runner, options: options, logger: logger}
}

func (o *Orchestrator) Results() Results {
	return o.results
}

// ProblemOutputDir is where the PDFs of p are copied to
func ProblemOutputDir(outDir string, p *models.Problem) string {
	return filepath.Join(outDir, PDFDirName, p.Course, p.Contest, p.Name)
}

// BuildAll builds every problem in order and sets its build status. Build
// failures only clear status flags; an error is returned when the output
// tree cannot be created or ctx is cancelled.
func (o *Orchestrator) BuildAll(ctx context.Context, problems []*models.Problem, outDir string) error {
	var bar *pterm.ProgressbarPrinter
	if o.options.ShowProgress && len(problems) > 0 {
		started, err := pterm.DefaultProgressbar.WithTotal(len(problems)).WithTitle("Building PDFs").Start()
		if err == nil {
			bar = started
			defer bar.Stop()
		}
	}

	for _, problem := range problems {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("build interrupted before %s: %w", problem.Path, err)
		}
		if bar != nil {
			bar.UpdateTitle(problem.Path.String())
		}

		if _, err := o.Build(ctx, problem, outDir); err != nil {
			return err
		}

		if bar != nil {
			bar.Increment()
		}
	}
	return nil
}

// Build runs the statement stage, then the notes gate and the notes stage.
func (o *Orchestrator) Build(ctx context.Context, p *models.Problem, outDir string) (models.BuildStatus, error) {
	o.logger.Info("building problem", o.logger.Args("problem", p.Path.String()))

	target := ProblemOutputDir(outDir, p)
	if err := os.MkdirAll(target, 0755); err != nil {
		return models.BuildStatus{}, fmt.Errorf("failed to create output directory %s: %w", target, err)
	}

	status := models.BuildStatus{
		StatementBuilt: o.BuildStatement(ctx, p, target),
	}
	if o.NotesGate(ctx, p) {
		status.NotesBuilt = o.BuildNotes(ctx, p, target)
	}

	p.Status = status
	return status, nil
}

// BuildStatement runs the statement command and copies the statement PDF
func (o *Orchestrator) BuildStatement(ctx context.Context, p *models.Problem, target string) bool {
	err := o.runStage(ctx, p, o.options.StatementCommand, o.options.StatementArtifact, filepath.Join(target, StatementFileName))
	if err != nil {
		o.results.StatementsFailed++
		o.logger.Warn("statement build failed", o.logger.Args("problem", p.Path.String(), "error", err.Error()))
		return false
	}
	o.results.StatementsBuilt++
	return true
}

// NotesGate passes only when the check command exits cleanly without
// printing anything.
func (o *Orchestrator) NotesGate(ctx context.Context, p *models.Problem) bool {
	output, err := o.runner.Output(ctx, p.Dir, o.options.CheckNotesCommand)
	if err != nil || len(output) != 0 {
		o.results.NotesGated++
		args := []any{"problem", p.Path.String()}
		if err != nil {
			args = append(args, "error", err.Error())
		}
		if len(output) != 0 {
			args = append(args, "output", strings.TrimSpace(string(output)))
		}
		o.logger.Warn("notes check failed", o.logger.Args(args...))
		return false
	}
	return true
}

// BuildNotes runs the notes command and copies the notes PDF
func (o *Orchestrator) BuildNotes(ctx context.Context, p *models.Problem, target string) bool {
	artifact := strings.ReplaceAll(o.options.NotesArtifact, NamePlaceholder, p.Name)
	err := o.runStage(ctx, p, o.options.NotesCommand, artifact, filepath.Join(target, NotesFileName))
	if err != nil {
		o.results.NotesFailed++
		o.logger.Warn("notes build failed", o.logger.Args("problem", p.Path.String(), "error", err.Error()))
		return false
	}
	o.results.NotesBuilt++
	return true
}

func (o *Orchestrator) runStage(ctx context.Context, p *models.Problem, command []string, artifact string, destination string) error {
	if err := o.runner.Run(ctx, p.Dir, command); err != nil {
		return err
	}
	return copyFile(filepath.Join(p.Dir, artifact), destination)
}
