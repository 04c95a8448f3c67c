package cache_sync

import (
	"fmt"
	"strings"
	"time"
)

// SyncStats counts the actions taken by one synchronizer run
type SyncStats struct {
	Created   int
	Linked    int
	Imported  int
	Exported  int
	Replaced  int
	Deleted   int
	Skipped   int
	StartTime time.Time
}

// Action names, also used as metric label values
const (
	ActionCreated  = "created"
	ActionLinked   = "linked"
	ActionImported = "imported"
	ActionExported = "exported"
	ActionReplaced = "replaced"
	ActionDeleted  = "deleted"
	ActionSkipped  = "skipped"
)

func (s *SyncStats) record(action string) {
	switch action {
	case ActionCreated:
		s.Created++
	case ActionLinked:
		s.Linked++
	case ActionImported:
		s.Imported++
	case ActionExported:
		s.Exported++
	case ActionReplaced:
		s.Replaced++
	case ActionDeleted:
		s.Deleted++
	case ActionSkipped:
		s.Skipped++
	}
}

// Counts returns the non-zero counters keyed by action name
func (s SyncStats) Counts() map[string]int {
	counts := make(map[string]int)
	for action, n := range map[string]int{
		ActionCreated:  s.Created,
		ActionLinked:   s.Linked,
		ActionImported: s.Imported,
		ActionExported: s.Exported,
		ActionReplaced: s.Replaced,
		ActionDeleted:  s.Deleted,
		ActionSkipped:  s.Skipped,
	} {
		if n > 0 {
			counts[action] = n
		}
	}
	return counts
}

// Summary renders the counters for the console, e.g. "3 linked, 1 deleted (12ms)"
func (s SyncStats) Summary() string {
	order := []string{ActionCreated, ActionLinked, ActionImported, ActionExported, ActionReplaced, ActionDeleted, ActionSkipped}
	counts := s.Counts()

	var parts []string
	for _, action := range order {
		if n, ok := counts[action]; ok {
			parts = append(parts, fmt.Sprintf("%d %s", n, action))
		}
	}
	if len(parts) == 0 {
		parts = append(parts, "nothing to do")
	}

	elapsed := time.Since(s.StartTime).Round(time.Millisecond)
	return fmt.Sprintf("%s (%s)", strings.Join(parts, ", "), elapsed)
}
