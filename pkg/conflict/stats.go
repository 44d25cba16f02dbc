package conflict

import (
	"time"

	"github.com/aeonsync/core/pkg/operation"
)

const movingAverageWindow = 100

// Stats summarizes the resolver's activity for observers and the
// admin API.
type Stats struct {
	ByType              map[operation.ConflictType]int `json:"byType"`
	ByStrategy          map[operation.Strategy]int      `json:"byStrategy"`
	Resolved            int                              `json:"resolved"`
	Unresolved          int                              `json:"unresolved"`
	AvgResolutionTimeMs float64                          `json:"avgResolutionTimeMs"`
	HighestSeverityUnresolved *operation.Conflict        `json:"highestSeverityUnresolved,omitempty"`
}

type statsTracker struct {
	byType     map[operation.ConflictType]int
	byStrategy map[operation.Strategy]int
	resolved   int
	unresolved int

	durations    []time.Duration
	durationsPos int
}

func newStatsTracker() *statsTracker {
	return &statsTracker{
		byType:     make(map[operation.ConflictType]int),
		byStrategy: make(map[operation.Strategy]int),
	}
}

func (s *statsTracker) recordDetected(t operation.ConflictType) {
	s.byType[t]++
}

func (s *statsTracker) recordResolved(strategy operation.Strategy, took time.Duration) {
	s.resolved++
	s.byStrategy[strategy]++
	if len(s.durations) < movingAverageWindow {
		s.durations = append(s.durations, took)
	} else {
		s.durations[s.durationsPos%movingAverageWindow] = took
		s.durationsPos++
	}
}

func (s *statsTracker) recordRetained() {
	s.unresolved++
}

func (s *statsTracker) avgResolutionMs() float64 {
	if len(s.durations) == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range s.durations {
		sum += d
	}
	return float64(sum.Milliseconds()) / float64(len(s.durations))
}

func severityRank(s operation.Severity) int {
	switch s {
	case operation.SeverityHigh:
		return 3
	case operation.SeverityMedium:
		return 2
	default:
		return 1
	}
}
