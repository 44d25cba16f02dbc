// Package conflict implements the conflict resolver (C4): classifying
// divergence between a local and a remote operation sharing a session,
// scoring its severity, and applying a configurable resolution
// strategy when the divergence is mild enough to settle automatically.
package conflict

import (
	"sync"
	"time"

	"github.com/aeonsync/core/pkg/eventbus"
	"github.com/aeonsync/core/pkg/operation"
)

// Resolver classifies and resolves conflicts between local and remote
// operations, retaining unresolved ones up to a bounded cache.
type Resolver struct {
	cfg Config
	bus *eventbus.Bus

	mu         sync.Mutex
	unresolved []*operation.Conflict // FIFO order, oldest first
	stats      *statsTracker
	metrics    Metrics
}

// New constructs a Resolver.
func New(cfg Config, bus *eventbus.Bus) *Resolver {
	return &Resolver{
		cfg:   cfg.withDefaults(),
		bus:   bus,
		stats: newStatsTracker(),
	}
}

// Evaluate detects whether local and remote conflict and, when the
// auto-resolution gate admits it, resolves the conflict immediately.
// It returns (nil, false) when no conflict was detected at all.
func (r *Resolver) Evaluate(local, remote *operation.Operation) (*operation.Conflict, bool) {
	ctype, isConflict := detect(local, remote)
	if !isConflict {
		return nil, false
	}

	sev, score := severity(ctype, local.Data, remote.Data)
	c := &operation.Conflict{
		ID:              operation.GenerateConflictID(),
		OperationID:     local.ID,
		SessionID:       local.SessionID,
		LocalData:       local.Data,
		RemoteData:      remote.Data,
		Type:            ctype,
		Severity:        sev,
		DetectedAt:      time.Now().UnixMilli(),
		ConflictingKeys: conflictingKeys(local.Data, remote.Data),
	}

	r.mu.Lock()
	r.stats.recordDetected(ctype)
	metrics := r.metrics
	r.mu.Unlock()
	if metrics != nil {
		metrics.RecordDetected(string(ctype))
	}
	r.bus.Publish(eventbus.TopicConflictDetected, eventbus.ConflictEvent{Conflict: c})

	if r.admitsAutoResolution(ctype, sev, score) {
		r.resolve(c)
		if c.Resolution != nil {
			r.bus.Publish(eventbus.TopicConflictResolved, eventbus.ConflictEvent{Conflict: c})
		} else {
			// resolve retained c itself (EnableLocalWins=false fallback
			// case); only the retained event is owed to subscribers.
			r.bus.Publish(eventbus.TopicConflictRetained, eventbus.ConflictEvent{Conflict: c})
		}
		return c, true
	}

	r.retain(c)
	r.bus.Publish(eventbus.TopicConflictRetained, eventbus.ConflictEvent{Conflict: c})
	return c, true
}

// admitsAutoResolution gates automatic resolution: low severity always
// qualifies; update_update also qualifies once similarity clears
// MergeThreshold. A configured manual strategy never auto-resolves
// (§4.4: "manual -> no resolution produced"), regardless of severity.
func (r *Resolver) admitsAutoResolution(t operation.ConflictType, sev operation.Severity, score float64) bool {
	if r.cfg.DefaultStrategy == operation.StrategyManual {
		return false
	}
	if sev == operation.SeverityLow {
		return true
	}
	if t == operation.ConflictUpdateUpdate && score > r.cfg.MergeThreshold {
		return true
	}
	return false
}

func (r *Resolver) resolve(c *operation.Conflict) {
	started := time.Now()
	strategy := r.cfg.DefaultStrategy
	if strategy == operation.StrategyMerge && (!r.cfg.EnableAutoMerge || c.Type != operation.ConflictUpdateUpdate) {
		if !r.cfg.EnableLocalWins {
			r.retain(c)
			return
		}
		strategy = operation.StrategyLocalWins
	}

	var resolved map[string]any
	switch strategy {
	case operation.StrategyRemoteWins:
		resolved = c.RemoteData
	case operation.StrategyLastModified:
		// No reliable timestamps are available on either side, so the
		// data selected is the same as local-wins (see the
		// open-question note in DESIGN.md); the strategy label itself
		// is preserved as last-modified rather than relabeled, per
		// spec §8 scenario 4.
		resolved = c.LocalData
	case operation.StrategyMerge:
		resolved = deepMerge(c.LocalData, c.RemoteData)
	default:
		if strategy != operation.StrategyLocalWins && !r.cfg.EnableLocalWins {
			// The configured strategy doesn't apply to this conflict
			// and silent local-wins fallback is disabled; retain it
			// for manual handling instead of guessing.
			r.retain(c)
			return
		}
		strategy = operation.StrategyLocalWins
		resolved = c.LocalData
	}

	c.Resolution = &operation.Resolution{
		Strategy:     strategy,
		ResolvedData: resolved,
		ResolvedAt:   time.Now().UnixMilli(),
	}

	elapsed := time.Since(started)
	r.mu.Lock()
	r.stats.recordResolved(strategy, elapsed)
	metrics := r.metrics
	r.mu.Unlock()
	if metrics != nil {
		metrics.RecordResolved(string(strategy), true)
		metrics.ObserveResolutionDuration(float64(elapsed.Milliseconds()))
	}
}

// retain appends an unresolved conflict to the bounded cache, dropping
// the oldest entry when at capacity.
func (r *Resolver) retain(c *operation.Conflict) {
	r.mu.Lock()
	r.stats.recordRetained()
	if len(r.unresolved) >= r.cfg.MaxConflictCacheSize {
		r.unresolved = r.unresolved[1:]
	}
	r.unresolved = append(r.unresolved, c)
	depth := len(r.unresolved)
	metrics := r.metrics
	r.mu.Unlock()
	if metrics != nil {
		metrics.RecordRetained()
		metrics.SetUnresolvedDepth(depth)
	}
}

// Unresolved returns a snapshot of the currently retained conflicts.
func (r *Resolver) Unresolved() []*operation.Conflict {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*operation.Conflict, len(r.unresolved))
	copy(out, r.unresolved)
	return out
}

// Stale returns the retained conflicts whose DetectedAt is older than
// ConflictTimeoutMs, for surfacing to an operator before they age out
// of relevance entirely.
func (r *Resolver) Stale(nowMs int64) []*operation.Conflict {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*operation.Conflict
	for _, c := range r.unresolved {
		if nowMs-c.DetectedAt >= r.cfg.ConflictTimeoutMs {
			out = append(out, c)
		}
	}
	return out
}

// ResolveManually applies a caller-chosen strategy to a retained
// conflict (the `manual` strategy path: "the caller enqueues the
// conflict for a human"), removing it from the unresolved set.
func (r *Resolver) ResolveManually(conflictID string, strategy operation.Strategy, resolvedData map[string]any) (*operation.Conflict, bool) {
	r.mu.Lock()
	idx := -1
	for i, c := range r.unresolved {
		if c.ID == conflictID {
			idx = i
			break
		}
	}
	if idx == -1 {
		r.mu.Unlock()
		return nil, false
	}
	c := r.unresolved[idx]
	r.unresolved = append(r.unresolved[:idx], r.unresolved[idx+1:]...)

	if resolvedData == nil {
		switch strategy {
		case operation.StrategyRemoteWins:
			resolvedData = c.RemoteData
		case operation.StrategyMerge:
			resolvedData = deepMerge(c.LocalData, c.RemoteData)
		default:
			strategy = operation.StrategyLocalWins
			resolvedData = c.LocalData
		}
	}
	c.Resolution = &operation.Resolution{
		Strategy:     strategy,
		ResolvedData: resolvedData,
		ResolvedAt:   time.Now().UnixMilli(),
	}
	r.stats.recordResolved(strategy, 0)
	depth := len(r.unresolved)
	metrics := r.metrics
	r.mu.Unlock()

	if metrics != nil {
		metrics.RecordResolved(string(strategy), false)
		metrics.SetUnresolvedDepth(depth)
	}
	r.bus.Publish(eventbus.TopicConflictResolved, eventbus.ConflictEvent{Conflict: c})
	return c, true
}

// Stats reports the resolver's current counters.
func (r *Resolver) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	byType := make(map[operation.ConflictType]int, len(r.stats.byType))
	for k, v := range r.stats.byType {
		byType[k] = v
	}
	byStrategy := make(map[operation.Strategy]int, len(r.stats.byStrategy))
	for k, v := range r.stats.byStrategy {
		byStrategy[k] = v
	}

	var highest *operation.Conflict
	for _, c := range r.unresolved {
		if highest == nil || severityRank(c.Severity) > severityRank(highest.Severity) {
			highest = c
		}
	}

	return Stats{
		ByType:                    byType,
		ByStrategy:                byStrategy,
		Resolved:                  r.stats.resolved,
		Unresolved:                r.stats.unresolved,
		AvgResolutionTimeMs:       r.stats.avgResolutionMs(),
		HighestSeverityUnresolved: highest,
	}
}
