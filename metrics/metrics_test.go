package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/compprog-lecture-tools/problem-list/build_orchestrator"
	"github.com/compprog-lecture-tools/problem-list/cache_sync"
	"github.com/compprog-lecture-tools/problem-list/catalog_indexer"
	"github.com/compprog-lecture-tools/problem-list/problem_repository/models"
	"github.com/compprog-lecture-tools/problem-list/vocabulary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_WriteTextfile(t *testing.T) {
	recorder := NewRecorder()

	problems := []*models.Problem{
		{Location: models.Location{Path: models.Path{Course: "algo21", Contest: "week1", Name: "sorting"}}},
	}
	recorder.ObserveCatalog(catalog_indexer.BuildCatalog(problems, vocabulary.Default()))
	recorder.ObserveBuilds(build_orchestrator.Results{StatementsBuilt: 3, NotesGated: 2})
	recorder.ObserveCache(cache_sync.SyncStats{Linked: 4, Deleted: 1})
	started := time.Unix(1600000000, 0)
	finished := started.Add(90 * time.Second)
	recorder.ObserveRun("generate", started, finished)

	path := filepath.Join(t.TempDir(), "problem_list.prom")
	require.NoError(t, recorder.WriteTextfile(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)

	assert.Contains(t, text, "problem_list_problems 1\n")
	assert.Contains(t, text, `problem_list_incomplete_problems{reason="any"} 1`)
	assert.Contains(t, text, `problem_list_incomplete_problems{reason="info"} 1`)
	assert.Contains(t, text, `problem_list_build_stages_total{result="built",stage="statement"} 3`)
	assert.Contains(t, text, `problem_list_build_stages_total{result="gated",stage="notes"} 2`)
	assert.Contains(t, text, `problem_list_cache_actions_total{action="linked"} 4`)
	assert.Contains(t, text, `problem_list_cache_actions_total{action="deleted"} 1`)
	assert.NotContains(t, text, `action="imported"`)
	assert.Contains(t, text, `problem_list_run_duration_seconds{command="generate"} 90`)
	assert.Contains(t, text, `problem_list_last_run_timestamp_seconds{command="generate"} 1.60000009e+09`)
}

func TestRecorder_RegistryHoldsOnlyOwnMetrics(t *testing.T) {
	recorder := NewRecorder()
	recorder.ObserveBuilds(build_orchestrator.Results{NotesFailed: 1})
	recorder.ObserveCache(cache_sync.SyncStats{Exported: 2})

	families, err := recorder.Registry().Gather()
	require.NoError(t, err)

	values := make(map[string]float64)
	for _, family := range families {
		assert.True(t, strings.HasPrefix(family.GetName(), "problem_list_"), family.GetName())
		for _, metric := range family.GetMetric() {
			labels := ""
			for _, label := range metric.GetLabel() {
				labels += label.GetName() + "=" + label.GetValue() + ","
			}
			if counter := metric.GetCounter(); counter != nil {
				values[family.GetName()+"{"+labels+"}"] = counter.GetValue()
			}
		}
	}
	assert.Equal(t, 1.0, values["problem_list_build_stages_total{result=failed,stage=notes,}"])
	assert.Equal(t, 2.0, values["problem_list_cache_actions_total{action=exported,}"])
}

func TestRecorder_WriteTextfileFailsOnMissingDir(t *testing.T) {
	recorder := NewRecorder()
	err := recorder.WriteTextfile(filepath.Join(t.TempDir(), "missing", "out.prom"))
	assert.Error(t, err)
}
